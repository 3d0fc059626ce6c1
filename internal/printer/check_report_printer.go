// Package printer renders domain results as human-readable text.
package printer

import (
	"fmt"
	"io"

	"github.com/mozilla-ai/urlprobe/internal/cmd/output"
	"github.com/mozilla-ai/urlprobe/internal/domain"
)

var _ output.Printer[domain.CheckReport] = (*CheckReportPrinter)(nil)

// CheckReportPrinter prints one line per checked URL, optionally followed by every probe attempt.
// NewCheckReportPrinter should be used to create instances of CheckReportPrinter.
type CheckReportPrinter struct {
	headerFunc output.WriteFunc[domain.CheckReport]
	footerFunc output.WriteFunc[domain.CheckReport]
	opts       CheckReportPrinterOptions
}

// NewCheckReportPrinter creates a CheckReportPrinter with the supplied options applied over the defaults.
func NewCheckReportPrinter(opt ...CheckReportPrinterOption) (*CheckReportPrinter, error) {
	opts, err := NewCheckReportPrinterOptions(opt...)
	if err != nil {
		return nil, err
	}

	return &CheckReportPrinter{opts: opts}, nil
}

func (p *CheckReportPrinter) Header(w io.Writer, count int) {
	if p.headerFunc != nil {
		p.headerFunc(w, count)
	}
}

func (p *CheckReportPrinter) SetHeader(fn output.WriteFunc[domain.CheckReport]) {
	p.headerFunc = fn
}

func (p *CheckReportPrinter) Item(w io.Writer, report domain.CheckReport) error {
	switch report.Verdict {
	case domain.VerdictReachable:
		_, _ = fmt.Fprintf(w, "✅ %s is reachable (%s)\n", report.Input, report.URL)
	case domain.VerdictInvalid:
		_, _ = fmt.Fprintf(w, "❌ %s is not a valid website URL\n", report.Input)
	default:
		_, _ = fmt.Fprintf(w, "❌ %s is unreachable (%s)\n", report.Input, report.URL)
	}

	if !p.opts.showAttempts {
		return nil
	}

	for _, a := range report.Attempts {
		if a.Error != "" {
			_, _ = fmt.Fprintf(w, "  %-4s %s -> error: %s (%dms)\n", a.Method, a.URL, a.Error, a.LatencyMS)
			continue
		}
		_, _ = fmt.Fprintf(w, "  %-4s %s -> %d (%dms)\n", a.Method, a.URL, a.Status, a.LatencyMS)
	}

	return nil
}

func (p *CheckReportPrinter) Footer(w io.Writer, count int) {
	if p.footerFunc != nil {
		p.footerFunc(w, count)
	}
}

func (p *CheckReportPrinter) SetFooter(fn output.WriteFunc[domain.CheckReport]) {
	p.footerFunc = fn
}
