package audit

import (
	"fmt"
	"io"
	"sort"
)

// Report collects findings across pages.
type Report struct {
	Pages    int
	Findings []Finding
}

// Add records the findings of one page.
func (r *Report) Add(findings []Finding) {
	r.Pages++
	r.Findings = append(r.Findings, findings...)
}

// Counts returns the number of findings per kind.
func (r *Report) Counts() map[Kind]int {
	counts := make(map[Kind]int)
	for _, f := range r.Findings {
		counts[f.Kind]++
	}
	return counts
}

// Clean reports whether nothing needs attention. HTML images are informational.
func (r *Report) Clean() bool {
	for _, f := range r.Findings {
		if f.Kind != KindHTMLImage {
			return false
		}
	}
	return true
}

// WriteText prints findings sorted by page and line, then a per-kind summary.
func (r *Report) WriteText(w io.Writer) error {
	findings := append([]Finding(nil), r.Findings...)
	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].Page != findings[j].Page {
			return findings[i].Page < findings[j].Page
		}
		return findings[i].Line < findings[j].Line
	})
	for _, f := range findings {
		if _, err := fmt.Fprintf(w, "%s:%d: %s: %s\n", f.Page, f.Line, f.Kind, f.Detail); err != nil {
			return err
		}
	}

	counts := r.Counts()
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	if _, err := fmt.Fprintf(w, "\n%d pages checked, %d findings\n", r.Pages, len(r.Findings)); err != nil {
		return err
	}
	for _, k := range kinds {
		if _, err := fmt.Fprintf(w, "  %-16s %d\n", k, counts[Kind(k)]); err != nil {
			return err
		}
	}
	return nil
}
