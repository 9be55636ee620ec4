// Package caption binds figures, tables, listings and algorithms to their
// captions. All caption patterns live in one ordered table compiled by
// NewClassifier; Classify is the only place a region's final media kind is
// decided.
package caption

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/jackzampolin/papertree/internal/media"
	"github.com/jackzampolin/papertree/internal/region"
)

// AlgorithmMarkers are the words that together identify pseudo-code.
// A region is an algorithm when it contains a Names token, an End token
// and an IO token.
type AlgorithmMarkers struct {
	Names []string `mapstructure:"names" yaml:"names"`
	End   []string `mapstructure:"end" yaml:"end"`
	IO    []string `mapstructure:"io" yaml:"io"`
}

// Config is the localizable caption keyword set.
type Config struct {
	Figure    []string         `mapstructure:"figure" yaml:"figure"`
	Table     []string         `mapstructure:"table" yaml:"table"`
	List      []string         `mapstructure:"list" yaml:"list"`
	Algorithm AlgorithmMarkers `mapstructure:"algorithm" yaml:"algorithm"`
}

// DefaultConfig returns English and Chinese keywords.
func DefaultConfig() Config {
	return Config{
		Figure: []string{"figure", "fig", "图片", "图"},
		Table:  []string{"table", "tab", "表格", "表"},
		List:   []string{"listing", "list", "列表"},
		Algorithm: AlgorithmMarkers{
			Names: []string{"algorithm", "算法"},
			End:   []string{"end"},
			IO:    []string{"input", "output"},
		},
	}
}

// Match is a caption found in a piece of text.
type Match struct {
	Kind        media.Kind
	Number      int
	Label       string
	Description string
}

type pattern struct {
	kind     media.Kind
	search   *regexp.Regexp
	anchored *regexp.Regexp
}

// Classifier holds the compiled pattern table.
type Classifier struct {
	patterns  []pattern
	algoNames []*regexp.Regexp
	algoEnd   []*regexp.Regexp
	algoIO    []*regexp.Regexp
	algoNum   *regexp.Regexp
}

// NewClassifier compiles the keyword set. Kinds without keywords never match.
func NewClassifier(config Config) *Classifier {
	c := &Classifier{}
	for _, entry := range []struct {
		kind     media.Kind
		keywords []string
	}{
		{media.KindTable, config.Table},
		{media.KindList, config.List},
		{media.KindFigure, config.Figure},
	} {
		alt := alternation(entry.keywords)
		if alt == "" {
			continue
		}
		c.patterns = append(c.patterns, pattern{
			kind:     entry.kind,
			search:   regexp.MustCompile(`(?i)(?:^|[^\p{L}])(?:` + alt + `)\.?\s*(\d+)`),
			anchored: regexp.MustCompile(`(?i)^\s*(?:` + alt + `)\.?\s*\d+`),
		})
	}

	c.algoNames = tokens(config.Algorithm.Names)
	c.algoEnd = tokens(config.Algorithm.End)
	c.algoIO = tokens(config.Algorithm.IO)
	if alt := alternation(config.Algorithm.Names); alt != "" {
		c.algoNum = regexp.MustCompile(`(?i)(?:` + alt + `)\s*(\d+)`)
	}
	return c
}

// alternation quotes keywords, longest first so "figure" wins over "fig".
func alternation(keywords []string) string {
	var quoted []string
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			quoted = append(quoted, k)
		}
	}
	sort.SliceStable(quoted, func(i, j int) bool {
		return len(quoted[i]) > len(quoted[j])
	})
	for i, k := range quoted {
		quoted[i] = regexp.QuoteMeta(k)
	}
	return strings.Join(quoted, "|")
}

// tokens compiles marker words. ASCII words must match whole words;
// other scripts match anywhere.
func tokens(words []string) []*regexp.Regexp {
	var out []*regexp.Regexp
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		expr := `(?i)` + regexp.QuoteMeta(w)
		if isASCIIWord(w) {
			expr = `(?i)\b` + regexp.QuoteMeta(w) + `\b`
		}
		out = append(out, regexp.MustCompile(expr))
	}
	return out
}

func isASCIIWord(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return false
		}
	}
	return true
}

func anyMatch(res []*regexp.Regexp, text string) bool {
	for _, re := range res {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// Find searches text for a caption of the given kind.
func (c *Classifier) Find(text string, kind media.Kind) (Match, bool) {
	for _, p := range c.patterns {
		if p.kind != kind {
			continue
		}
		loc := p.search.FindStringSubmatchIndex(text)
		if loc == nil {
			return Match{}, false
		}
		n, err := strconv.Atoi(text[loc[2]:loc[3]])
		if err != nil {
			return Match{}, false
		}
		return Match{
			Kind:        kind,
			Number:      n,
			Label:       kind.Label(n),
			Description: description(text[loc[1]:]),
		}, true
	}
	return Match{}, false
}

// IsCaption reports whether text starts with a caption of any kind,
// e.g. "Figure 3: ..." or "表 2 ...". Such text stays out of paragraph flow.
func (c *Classifier) IsCaption(text string) bool {
	for _, p := range c.patterns {
		if p.anchored.MatchString(text) {
			return true
		}
	}
	return false
}

// IsAlgorithm reports whether text carries the algorithm markers.
func (c *Classifier) IsAlgorithm(text string) bool {
	if len(c.algoNames) == 0 || len(c.algoEnd) == 0 || len(c.algoIO) == 0 {
		return false
	}
	return anyMatch(c.algoNames, text) && anyMatch(c.algoEnd, text) && anyMatch(c.algoIO, text)
}

var leadingPunct = regexp.MustCompile(`^[\s:：.．]+`)

func description(rest string) string {
	rest = strings.TrimSpace(rest)
	return strings.TrimSpace(leadingPunct.ReplaceAllString(rest, ""))
}

// Binding is the resolved kind and caption of one media region.
type Binding struct {
	Kind        media.Kind
	Number      int
	Description string
	Caption     string
	Matched     bool
}

// Classify decides the media kind of a region from its own text and the
// text of its neighbors. Tables look at the preceding region, figures and
// listings at the following one. Figure, Table and List regions carrying
// algorithm markers become algorithms. Unknown regions try the preceding
// region for a table caption, then the following region for a listing and
// then a figure caption. Anything unmatched is Other with its own text kept
// as the description. ok is false for Text and Title regions.
func (c *Classifier) Classify(kind region.Kind, prev, self, next string) (Binding, bool) {
	switch kind {
	case region.KindFigure, region.KindTable, region.KindList:
		if c.IsAlgorithm(self) {
			return c.algorithm(self), true
		}
		target, text := media.KindFigure, next
		switch kind {
		case region.KindTable:
			target, text = media.KindTable, prev
		case region.KindList:
			target = media.KindList
		}
		if m, found := c.Find(text, target); found {
			return bound(m, text), true
		}
	case region.KindUnknown:
		for _, try := range []struct {
			kind media.Kind
			text string
		}{
			{media.KindTable, prev},
			{media.KindList, next},
			{media.KindFigure, next},
		} {
			if m, found := c.Find(try.text, try.kind); found {
				return bound(m, try.text), true
			}
		}
	default:
		return Binding{}, false
	}
	return Binding{Kind: media.KindOther, Description: strings.TrimSpace(self)}, true
}

func bound(m Match, caption string) Binding {
	return Binding{
		Kind:        m.Kind,
		Number:      m.Number,
		Description: m.Description,
		Caption:     strings.TrimSpace(caption),
		Matched:     true,
	}
}

func (c *Classifier) algorithm(text string) Binding {
	b := Binding{Kind: media.KindAlgorithm, Matched: true, Caption: firstLine(text)}
	if c.algoNum == nil {
		return b
	}
	loc := c.algoNum.FindStringSubmatchIndex(text)
	if loc == nil {
		b.Description = firstLine(text)
		return b
	}
	if n, err := strconv.Atoi(text[loc[2]:loc[3]]); err == nil {
		b.Number = n
	}
	b.Description = description(firstLine(text[loc[1]:]))
	return b
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
