// Package artdex builds a verified metadata catalog for artwork pages on
// single-page-application portfolio sites. It combines a free local parse
// of the static markup (layer 1) with a paid, AI-backed remote extraction
// (layer 2), validates the remote output against the local ground truth to
// reject SPA rendering artifacts, and scrubs field values that leak across
// unrelated records.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, firecrawl/, goquery/).
package artdex
