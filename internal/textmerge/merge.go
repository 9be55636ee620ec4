// Package textmerge joins OCR text fragments, removing spans that were
// recognized twice on either side of a region, column or page boundary.
package textmerge

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Config controls overlap detection.
type Config struct {
	// MinOverlap is the shortest common span, in characters, treated as a duplicate.
	MinOverlap int `mapstructure:"min_overlap" yaml:"min_overlap"`
	// Window is how many characters of each side Stitch compares.
	Window int `mapstructure:"window" yaml:"window"`
	// Separator joins fragments that do not overlap.
	Separator string `mapstructure:"separator" yaml:"separator"`
}

// DefaultConfig returns the default overlap settings.
func DefaultConfig() Config {
	return Config{
		MinOverlap: 20,
		Window:     50,
		Separator:  "\n",
	}
}

// Strategy records how two fragments were joined.
type Strategy string

const (
	// StrategyOverlap means a duplicated span was removed.
	StrategyOverlap Strategy = "overlap"
	// StrategyConcat means the fragments were joined with the separator.
	StrategyConcat Strategy = "concat"
	// StrategyContained means the following fragment already ended the preceding one.
	StrategyContained Strategy = "contained"
	// StrategyEmpty means one side was blank.
	StrategyEmpty Strategy = "empty"
)

// Result is the outcome of joining two fragments.
type Result struct {
	Text     string
	Strategy Strategy
	// Overlap is the length of the removed span in normalized characters.
	Overlap int
}

// searchRunes bounds the overlap search to the end of a and the start of b,
// so merging into a growing document text stays linear in its length.
const searchRunes = 4096

// Merger joins text fragments.
type Merger struct {
	config Config
}

// NewMerger creates a merger with default settings.
func NewMerger() *Merger {
	return NewMergerWithConfig(DefaultConfig())
}

// NewMergerWithConfig creates a merger with the given settings.
func NewMergerWithConfig(config Config) *Merger {
	if config.MinOverlap < 1 {
		config.MinOverlap = 1
	}
	if config.Window < config.MinOverlap {
		config.Window = config.MinOverlap
	}
	return &Merger{config: config}
}

// Config returns the merger's settings.
func (m *Merger) Config() Config {
	return m.config
}

// Merge joins a and b using the longest common substring of their
// normalized forms. When that span is at least MinOverlap characters the
// result is a truncated at the span start followed by b. Otherwise the
// fragments are concatenated with the separator. Content of a that would
// be cut off is kept unless it reappears in b.
func (m *Merger) Merge(a, b string) Result {
	if r, ok := m.trivial(a, b); ok {
		return r
	}

	na, nb := normalize(a), normalize(b)
	off := max(0, len(na.runes)-searchRunes)
	ia, ib, size := longestCommonSubstring(na.runes[off:], nb.runes[:min(len(nb.runes), searchRunes)])
	ia += off
	if size < m.config.MinOverlap {
		return m.concat(a, b)
	}

	cut := na.start[ia]
	tail := normalize(a[na.end[ia+size-1]:]).String()
	if tail != "" && !strings.Contains(string(nb.runes[ib+size:]), tail) {
		return m.concat(a, b)
	}

	return Result{Text: a[:cut] + b, Strategy: StrategyOverlap, Overlap: size}
}

// Stitch joins two fragments of the same group. It only compares the last
// Window characters of a with the first Window characters of b and removes
// the longest exact suffix/prefix match of at least MinOverlap characters.
func (m *Merger) Stitch(a, b string) Result {
	if r, ok := m.trivial(a, b); ok {
		return r
	}

	ta := strings.TrimRightFunc(a, unicode.IsSpace)
	tb := strings.TrimLeftFunc(b, unicode.IsSpace)
	tail := lastRunes(ta, m.config.Window)
	head := firstRunes(tb, m.config.Window)

	k := utf8.RuneCountInString(head)
	if n := utf8.RuneCountInString(tail); n < k {
		k = n
	}
	for ; k >= m.config.MinOverlap; k-- {
		prefix := firstRunes(head, k)
		if strings.HasSuffix(tail, prefix) {
			return Result{Text: ta + tb[len(prefix):], Strategy: StrategyOverlap, Overlap: k}
		}
	}
	return m.concat(a, b)
}

// trivial handles blank inputs and a b that already ends a.
func (m *Merger) trivial(a, b string) (Result, bool) {
	tb := strings.TrimSpace(b)
	if tb == "" {
		return Result{Text: a, Strategy: StrategyEmpty}, true
	}
	ta := strings.TrimRightFunc(a, unicode.IsSpace)
	if strings.TrimSpace(ta) == "" {
		return Result{Text: b, Strategy: StrategyEmpty}, true
	}
	if strings.HasSuffix(ta, tb) {
		return Result{Text: a, Strategy: StrategyContained}, true
	}
	return Result{}, false
}

func (m *Merger) concat(a, b string) Result {
	text := strings.TrimRightFunc(a, unicode.IsSpace) + m.config.Separator + strings.TrimLeftFunc(b, unicode.IsSpace)
	return Result{Text: text, Strategy: StrategyConcat}
}

// longestCommonSubstring returns the start in a, the start in b and the
// length of the longest common run. The earliest run in a wins ties.
func longestCommonSubstring(a, b []rune) (int, int, int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}
	var ia, ib, size int
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] != b[j-1] {
				cur[j] = 0
				continue
			}
			cur[j] = prev[j-1] + 1
			if cur[j] > size {
				size = cur[j]
				ia, ib = i-size, j-size
			}
		}
		prev, cur = cur, prev
	}
	return ia, ib, size
}

func firstRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func lastRunes(s string, n int) string {
	count := utf8.RuneCountInString(s)
	if count <= n {
		return s
	}
	skip := count - n
	i := 0
	for pos := range s {
		if i == skip {
			return s[pos:]
		}
		i++
	}
	return ""
}
