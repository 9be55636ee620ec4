// Package diag collects the non-fatal problems found while rebuilding a
// document. Stages never abort; they record a Diagnostic and continue.
package diag

import (
	"fmt"
	"log/slog"
	"sort"
)

// Kind classifies a diagnostic.
type Kind string

const (
	KindEmptyPage           Kind = "empty_page"
	KindNoTitles            Kind = "no_titles"
	KindGapSynthesized      Kind = "gap_synthesized"
	KindGapRejected         Kind = "gap_rejected"
	KindRegionTextFailed    Kind = "region_text_failed"
	KindMergeConcatenated   Kind = "merge_concatenated"
	KindTitleRepaired       Kind = "title_repaired"
	KindLevelInferred       Kind = "level_inferred"
	KindNumberingCorrected  Kind = "numbering_corrected"
	KindNumberingUnresolved Kind = "numbering_unresolved"
	KindLevelNormalized     Kind = "level_normalized"
	KindCaptionUnmatched    Kind = "caption_unmatched"
	KindMediaRenumbered     Kind = "media_renumbered"
	KindPageCountMismatch   Kind = "page_count_mismatch"
	KindMediaUncropped      Kind = "media_uncropped"
)

// Severity tells a reviewer whether a diagnostic needs attention.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Location points at the page, region, group or outline node a
// diagnostic concerns. Unset fields are -1 or empty.
type Location struct {
	Page     int    `json:"page" yaml:"page"`
	RegionID string `json:"region_id,omitempty" yaml:"region_id,omitempty"`
	GroupID  int    `json:"group_id" yaml:"group_id"`
	NodeID   int    `json:"node_id" yaml:"node_id"`
}

// Nowhere is the zero location.
var Nowhere = Location{Page: -1, GroupID: -1, NodeID: -1}

// AtPage returns a location on a page.
func AtPage(page int) Location {
	l := Nowhere
	l.Page = page
	return l
}

// AtRegion returns a location for a region on a page.
func AtRegion(page int, regionID string) Location {
	l := AtPage(page)
	l.RegionID = regionID
	return l
}

// AtGroup returns a location for a group starting on a page.
func AtGroup(page, group int) Location {
	l := AtPage(page)
	l.GroupID = group
	return l
}

// Diagnostic is one structured, non-fatal finding.
type Diagnostic struct {
	Kind     Kind              `json:"kind" yaml:"kind"`
	Severity Severity          `json:"severity" yaml:"severity"`
	Location Location          `json:"location" yaml:"location"`
	Message  string            `json:"message" yaml:"message"`
	Attrs    map[string]string `json:"attrs,omitempty" yaml:"attrs,omitempty"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s [%s] page=%d: %s", d.Kind, d.Severity, d.Location.Page, d.Message)
}

// Report accumulates diagnostics in the order they were raised.
// A nil *Report discards everything, so stages can be run without one.
type Report struct {
	items []Diagnostic
}

// NewReport returns an empty report.
func NewReport() *Report {
	return &Report{}
}

// Add appends a diagnostic.
func (r *Report) Add(d Diagnostic) {
	if r == nil {
		return
	}
	if d.Severity == "" {
		d.Severity = SeverityInfo
	}
	r.items = append(r.items, d)
}

// Info records an informational diagnostic.
func (r *Report) Info(kind Kind, loc Location, format string, args ...any) {
	r.Add(Diagnostic{Kind: kind, Severity: SeverityInfo, Location: loc, Message: fmt.Sprintf(format, args...)})
}

// Warn records a diagnostic that should be reviewed.
func (r *Report) Warn(kind Kind, loc Location, format string, args ...any) {
	r.Add(Diagnostic{Kind: kind, Severity: SeverityWarning, Location: loc, Message: fmt.Sprintf(format, args...)})
}

// All returns a copy of every diagnostic.
func (r *Report) All() []Diagnostic {
	if r == nil {
		return nil
	}
	out := make([]Diagnostic, len(r.items))
	copy(out, r.items)
	return out
}

// Filter returns the diagnostics of the given kind.
func (r *Report) Filter(kind Kind) []Diagnostic {
	if r == nil {
		return nil
	}
	var out []Diagnostic
	for _, d := range r.items {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

// Len returns the number of diagnostics.
func (r *Report) Len() int {
	if r == nil {
		return 0
	}
	return len(r.items)
}

// Counts returns the number of diagnostics per kind.
func (r *Report) Counts() map[Kind]int {
	counts := make(map[Kind]int)
	if r == nil {
		return counts
	}
	for _, d := range r.items {
		counts[d.Kind]++
	}
	return counts
}

// LogSummary writes one line per diagnostic kind, warnings at warn level.
func (r *Report) LogSummary(logger *slog.Logger) {
	if r == nil || len(r.items) == 0 {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}

	warned := make(map[Kind]bool)
	for _, d := range r.items {
		if d.Severity == SeverityWarning {
			warned[d.Kind] = true
		}
	}

	counts := r.Counts()
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)

	for _, k := range kinds {
		kind := Kind(k)
		if warned[kind] {
			logger.Warn("diagnostics", "kind", k, "count", counts[kind])
		} else {
			logger.Debug("diagnostics", "kind", k, "count", counts[kind])
		}
	}
}
