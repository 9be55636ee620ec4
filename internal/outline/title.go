package outline

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/width"

	"github.com/jackzampolin/papertree/internal/diag"
)

// Scheme is the numbering style of a title prefix.
type Scheme string

const (
	SchemeNone     Scheme = ""
	SchemeDecimal  Scheme = "decimal"
	SchemeAppendix Scheme = "appendix"
	SchemeRoman    Scheme = "roman"
	SchemeLetter   Scheme = "letter"
)

// TitleInfo is a parsed section title.
type TitleInfo struct {
	Raw          string `json:"raw" yaml:"raw"`
	Cleaned      string `json:"cleaned" yaml:"cleaned"`
	Prefix       string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Scheme       Scheme `json:"scheme,omitempty" yaml:"scheme,omitempty"`
	Separator    string `json:"-" yaml:"-"`
	Description  string `json:"description" yaml:"description"`
	Level        int    `json:"level" yaml:"level"`
	ParentPrefix string `json:"parent_prefix,omitempty" yaml:"parent_prefix,omitempty"`

	Repaired       bool   `json:"repaired,omitempty" yaml:"repaired,omitempty"`
	Inferred       bool   `json:"inferred,omitempty" yaml:"inferred,omitempty"`
	Corrected      bool   `json:"corrected,omitempty" yaml:"corrected,omitempty"`
	OriginalPrefix string `json:"original_prefix,omitempty" yaml:"original_prefix,omitempty"`
	Suggested      string `json:"suggested_prefix,omitempty" yaml:"suggested_prefix,omitempty"`
	Unresolved     bool   `json:"unresolved,omitempty" yaml:"unresolved,omitempty"`

	Location diag.Location `json:"-" yaml:"-"`
}

// Name is the title as it should be displayed: the current prefix, the
// original separator and the description.
func (t *TitleInfo) Name() string {
	if t.Prefix == "" {
		return t.Cleaned
	}
	return strings.TrimSpace(t.Prefix + t.Separator + t.Description)
}

// Components returns the integers of a decimal prefix, or nil.
func (t *TitleInfo) Components() []int {
	if t.Scheme != SchemeDecimal {
		return nil
	}
	return splitDecimal(t.Prefix)
}

func splitDecimal(prefix string) []int {
	parts := strings.Split(prefix, ".")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil
		}
		out = append(out, n)
	}
	return out
}

func joinDecimal(parts []int) string {
	s := make([]string, len(parts))
	for i, p := range parts {
		s[i] = strconv.Itoa(p)
	}
	return strings.Join(s, ".")
}

var (
	cjkSeparators = strings.NewReplacer("，", ".", "、", ".", "。", ".", "．", ".")
	repeatedDots  = regexp.MustCompile(`\.{2,}`)
	spaces        = regexp.MustCompile(`\s+`)

	decimalTitle  = regexp.MustCompile(`^(\d{1,3}(?:\.\d{1,3})*)([.\s]*)(.*)$`)
	appendixTitle = regexp.MustCompile(`^((?:Appendix|APPENDIX|附录)\s*[A-Z])(?:([.:\s]+)(.*))?$`)
	romanTitle    = regexp.MustCompile(`^([IVX]{1,6})(\.\s*)(.*)$`)
	letterTitle   = regexp.MustCompile(`^([A-H])(\.\s+)(.+)$`)
	commaNumber   = regexp.MustCompile(`^(\d{1,3}),(\d{1,3})`)
)

// CleanTitle keeps the first line of a title, maps CJK separators to '.',
// folds full-width characters and collapses repeated dots and spaces.
func CleanTitle(raw string) string {
	s := strings.TrimSpace(raw)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	s = cjkSeparators.Replace(s)
	s = width.Fold.String(s)
	s = repeatedDots.ReplaceAllString(s, ".")
	s = spaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// ParseTitle parses the numbering prefix of a title. Titles without a
// recognizable prefix have Level 0.
func ParseTitle(raw string) TitleInfo {
	info := TitleInfo{Raw: raw, Cleaned: CleanTitle(raw), Location: diag.Nowhere}
	if parsePrefix(&info, info.Cleaned) {
		return info
	}

	if repaired := commaNumber.ReplaceAllString(info.Cleaned, "$1.$2"); repaired != info.Cleaned {
		if parsePrefix(&info, repaired) {
			info.Repaired = true
			return info
		}
	}

	info.Description = info.Cleaned
	return info
}

func parsePrefix(info *TitleInfo, s string) bool {
	if m := decimalTitle.FindStringSubmatch(s); m != nil {
		prefix, sep, rest := m[1], m[2], m[3]
		if rest == "" || sep != "" {
			parts := splitDecimal(prefix)
			info.Scheme = SchemeDecimal
			info.Prefix = prefix
			info.Separator = sep
			info.Description = rest
			info.Level = len(parts)
			info.ParentPrefix = joinDecimal(parts[:len(parts)-1])
			if rest == "" {
				info.Separator = strings.TrimSpace(sep)
			}
			return true
		}
	}

	if m := appendixTitle.FindStringSubmatch(s); m != nil {
		info.Scheme = SchemeAppendix
		info.Prefix = m[1]
		info.Separator = m[2]
		info.Description = m[3]
		info.Level = 1
		return true
	}

	if m := romanTitle.FindStringSubmatch(s); m != nil {
		if _, ok := fromRoman(m[1]); ok {
			info.Scheme = SchemeRoman
			info.Prefix = m[1]
			info.Separator = m[2]
			info.Description = m[3]
			info.Level = 1
			return true
		}
	}

	if m := letterTitle.FindStringSubmatch(s); m != nil {
		info.Scheme = SchemeLetter
		info.Prefix = m[1]
		info.Separator = m[2]
		info.Description = m[3]
		info.Level = 2
		return true
	}

	return false
}

var romanValues = []struct {
	value  int
	symbol string
}{
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

func toRoman(n int) string {
	var b strings.Builder
	for _, rv := range romanValues {
		for n >= rv.value {
			b.WriteString(rv.symbol)
			n -= rv.value
		}
	}
	return b.String()
}

// fromRoman parses a canonical Roman numeral below 400.
func fromRoman(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n, rest := 0, s
	for _, rv := range romanValues {
		for strings.HasPrefix(rest, rv.symbol) {
			n += rv.value
			rest = rest[len(rv.symbol):]
		}
	}
	if rest != "" || toRoman(n) != s {
		return 0, false
	}
	return n, true
}
