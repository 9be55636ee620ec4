package outline

import (
	"strconv"

	"github.com/jackzampolin/papertree/internal/diag"
)

// Config controls level inference and numbering correction.
type Config struct {
	// MaxDepth caps outline levels.
	MaxDepth int `mapstructure:"max_depth" yaml:"max_depth"`
	// ApplyCorrections rewrites miscounted prefixes. When false the
	// correction is only recorded in TitleInfo.Suggested.
	ApplyCorrections bool `mapstructure:"apply_corrections" yaml:"apply_corrections"`
}

// DefaultConfig returns the default outline settings.
func DefaultConfig() Config {
	return Config{MaxDepth: 4, ApplyCorrections: true}
}

// Numberer infers missing levels and repairs miscounted numbering in a
// single forward pass over titles in reading order.
type Numberer struct {
	config Config
}

// NewNumberer creates a numberer.
func NewNumberer(config Config) *Numberer {
	if config.MaxDepth < 1 {
		config.MaxDepth = DefaultConfig().MaxDepth
	}
	return &Numberer{config: config}
}

// Number updates titles in place. A numbered title is checked against the
// last title of the same scheme after that one has been finalized; a title
// without a level takes one from the title immediately before it.
func (n *Numberer) Number(titles []*TitleInfo, report *diag.Report) {
	var roman, decimal *TitleInfo
	for i, cur := range titles {
		prevRoman, prevDecimal := roman, decimal
		switch cur.Scheme {
		case SchemeRoman:
			roman, decimal = cur, nil
		case SchemeDecimal:
			roman = nil
		case SchemeAppendix:
			roman, decimal = nil, nil
		case SchemeLetter:
			if roman == nil {
				cur.Scheme, cur.Prefix, cur.Separator, cur.Level = SchemeNone, "", "", 0
				cur.Description = cur.Cleaned
			} else {
				cur.ParentPrefix = roman.Prefix
			}
		}

		if cur.Level > n.config.MaxDepth {
			report.Info(diag.KindLevelNormalized, cur.Location,
				"level %d of %q capped at %d", cur.Level, cur.Cleaned, n.config.MaxDepth)
			cur.Level = n.config.MaxDepth
		}

		switch {
		case cur.Scheme == SchemeDecimal && prevDecimal != nil:
			n.checkDecimal(prevDecimal, cur, report)
		case cur.Scheme == SchemeRoman && prevRoman != nil:
			// Roman sections are compared across their lettered sub-heads.
			n.checkRoman(prevRoman, cur, report)
		}
		if cur.Scheme == SchemeDecimal {
			if cur.Unresolved {
				// Unplaceable numbering does not set the level.
				cur.Level = 0
			} else {
				decimal = cur
			}
		}

		if cur.Level == 0 {
			var prev *TitleInfo
			if i > 0 {
				prev = titles[i-1]
			}
			n.infer(cur, n.levelAfter(prev), report)
		}
	}
}

// levelAfter is the level of an unleveled title following prev: one below
// a numbered title, level with an unnumbered one.
func (n *Numberer) levelAfter(prev *TitleInfo) int {
	if prev == nil {
		return 1
	}
	level := prev.Level
	if prev.Prefix != "" {
		level = min(prev.Level+1, n.config.MaxDepth)
	}
	return max(level, 1)
}

func (n *Numberer) infer(cur *TitleInfo, level int, report *diag.Report) {
	cur.Level = level
	cur.Inferred = true
	report.Info(diag.KindLevelInferred, cur.Location, "inferred level %d for %q", level, cur.Cleaned)
}

func (n *Numberer) checkDecimal(prev, cur *TitleInfo, report *diag.Report) {
	p, c := prev.Components(), cur.Components()
	if len(p) == 0 || len(c) == 0 {
		return
	}

	switch {
	case len(p) == len(c) && equal(p[:len(p)-1], c[:len(c)-1]):
		expected := append(clone(p[:len(p)-1]), p[len(p)-1]+1)
		if c[len(c)-1] != expected[len(expected)-1] {
			n.correct(cur, joinDecimal(expected), "sibling", report)
		}
	case len(c) > len(p) && equal(p, c[:len(p)]):
		// descends into a child of prev
	case continuesAncestor(p, c):
	case len(p) > 1 && len(c) <= len(p):
		expected := append(clone(p[:len(c)-1]), p[len(c)-1]+1)
		n.correct(cur, joinDecimal(expected), "jump", report)
	default:
		cur.Unresolved = true
		report.Warn(diag.KindNumberingUnresolved, cur.Location,
			"cannot place %s after %s", cur.Prefix, prev.Prefix)
	}
}

// continuesAncestor reports whether c starts the next sibling of p or of
// one of p's ancestors, with any deeper components equal to 1
// ("2.3" -> "3", "2.3.4" -> "2.4", "2.3" -> "3.1").
func continuesAncestor(p, c []int) bool {
	for d := 1; d <= len(p) && d <= len(c); d++ {
		if !equal(p[:d-1], c[:d-1]) || c[d-1] != p[d-1]+1 {
			continue
		}
		ok := true
		for _, v := range c[d:] {
			if v != 1 {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

func (n *Numberer) checkRoman(prev, cur *TitleInfo, report *diag.Report) {
	pv, ok1 := fromRoman(prev.Prefix)
	cv, ok2 := fromRoman(cur.Prefix)
	if !ok1 || !ok2 || cv == pv+1 {
		return
	}
	n.correct(cur, toRoman(pv+1), "sibling", report)
}

// correct rewrites a prefix, keeping the separator and description. Every
// correction is reported for review since reading order may be wrong.
func (n *Numberer) correct(cur *TitleInfo, prefix, reason string, report *diag.Report) {
	report.Add(diag.Diagnostic{
		Kind:     diag.KindNumberingCorrected,
		Severity: diag.SeverityWarning,
		Location: cur.Location,
		Message:  "low confidence " + reason + " correction of " + cur.Prefix + " to " + prefix,
		Attrs: map[string]string{
			"from":    cur.Prefix,
			"to":      prefix,
			"reason":  reason,
			"applied": strconv.FormatBool(n.config.ApplyCorrections),
		},
	})

	if !n.config.ApplyCorrections {
		cur.Suggested = prefix
		return
	}
	cur.OriginalPrefix = cur.Prefix
	cur.Prefix = prefix
	cur.Corrected = true
	if cur.Scheme == SchemeDecimal {
		parts := splitDecimal(prefix)
		cur.ParentPrefix = joinDecimal(parts[:len(parts)-1])
	}
}

func equal(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func clone(a []int) []int {
	return append([]int(nil), a...)
}
