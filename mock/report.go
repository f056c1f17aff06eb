package mock

import (
	"context"

	"github.com/fwojciec/artdex"
)

// Compile-time interface verification.
var (
	_ artdex.ReportWriter    = (*ReportWriter)(nil)
	_ artdex.ImageDownloader = (*ImageDownloader)(nil)
)

// ReportWriter is a mock implementation of artdex.ReportWriter.
type ReportWriter struct {
	WriteReportFn func(ctx context.Context, report *artdex.Report) error
}

func (w *ReportWriter) WriteReport(ctx context.Context, report *artdex.Report) error {
	return w.WriteReportFn(ctx, report)
}

// ImageDownloader is a mock implementation of artdex.ImageDownloader.
type ImageDownloader struct {
	DownloadImagesFn func(ctx context.Context, works []*artdex.Work) error
}

func (d *ImageDownloader) DownloadImages(ctx context.Context, works []*artdex.Work) error {
	return d.DownloadImagesFn(ctx, works)
}
