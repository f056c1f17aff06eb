package artdex

import "sort"

// Contamination thresholds. A materials string shared verbatim by three
// works, or a description shared by two, is a template leak rather than
// a coincidence. Empirically chosen; tune per site.
const (
	DefaultMaterialsThreshold   = 3
	DefaultDescriptionThreshold = 2
)

// ContaminationCleaner detects field values leaked verbatim across
// unrelated records and scrubs the duplicates. It runs once over the
// complete batch, after every per-URL pipeline has finished; no
// single-record algorithm can see cross-record leakage. The zero value
// uses the default thresholds.
type ContaminationCleaner struct {
	// MaterialsThreshold is the duplicate count at which a materials
	// value is treated as leaked.
	MaterialsThreshold int

	// DescriptionThreshold is the duplicate count at which a
	// description value (English or Chinese, independently) is treated
	// as leaked.
	DescriptionThreshold int
}

// Clean scrubs leaked values in place. For every field value duplicated
// byte-identically on at least the threshold number of distinct URLs,
// the value is kept on the lexicographically first URL and cleared
// everywhere else. Idempotent: a second pass over a cleaned batch
// changes nothing. Returns the number of cleared fields and the works
// that changed, in batch order.
func (c *ContaminationCleaner) Clean(works []*Work) (fixes int, changed []*Work) {
	rules := []struct {
		field     Field
		threshold int
	}{
		{FieldMaterials, c.materialsThreshold()},
		{FieldDescriptionEN, c.descriptionThreshold()},
		{FieldDescriptionCN, c.descriptionThreshold()},
	}

	changedByURL := make(map[string]bool)
	for _, rule := range rules {
		groups := make(map[string][]*Work)
		for _, w := range works {
			if v := w.FieldValue(rule.field); v != "" {
				groups[v] = append(groups[v], w)
			}
		}
		for _, group := range groups {
			group = distinctByURL(group)
			if len(group) < rule.threshold {
				continue
			}
			for _, w := range group[1:] {
				w.ClearField(rule.field)
				fixes++
				changedByURL[w.URL] = true
			}
		}
	}

	for _, w := range works {
		if changedByURL[w.URL] {
			changed = append(changed, w)
		}
	}
	return fixes, changed
}

func (c *ContaminationCleaner) materialsThreshold() int {
	if c.MaterialsThreshold > 0 {
		return c.MaterialsThreshold
	}
	return DefaultMaterialsThreshold
}

func (c *ContaminationCleaner) descriptionThreshold() int {
	if c.DescriptionThreshold > 0 {
		return c.DescriptionThreshold
	}
	return DefaultDescriptionThreshold
}

// distinctByURL drops same-URL duplicates and orders the group by URL so
// the keeper is deterministic.
func distinctByURL(group []*Work) []*Work {
	seen := make(map[string]bool, len(group))
	out := make([]*Work, 0, len(group))
	for _, w := range group {
		if seen[w.URL] {
			continue
		}
		seen[w.URL] = true
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URL < out[j].URL })
	return out
}
