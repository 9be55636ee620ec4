package textmerge

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// normalized is a comparison form of a text together with the byte span
// in the original text that produced each of its runes.
type normalized struct {
	runes []rune
	start []int
	end   []int
}

func (n normalized) String() string {
	return string(n.runes)
}

// keepPunct is the punctuation that survives normalization.
const keepPunct = `.,;:!?'"()[]{}<>-_/=+*&%$#@`

// normalize folds width variants, drops CJK ideographs and symbols that
// OCR tends to garble, and collapses whitespace runs to one space.
func normalize(s string) normalized {
	var n normalized
	space := false
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		start, end := i, i+size
		i = end

		for _, f := range foldRune(r) {
			switch {
			case unicode.IsSpace(f):
				if len(n.runes) == 0 || space {
					continue
				}
				space = true
				n.push(' ', start, end)
			case keep(f):
				space = false
				n.push(f, start, end)
			}
		}
	}
	if len(n.runes) > 0 && n.runes[len(n.runes)-1] == ' ' {
		n.runes = n.runes[:len(n.runes)-1]
		n.start = n.start[:len(n.start)-1]
		n.end = n.end[:len(n.end)-1]
	}
	return n
}

func (n *normalized) push(r rune, start, end int) {
	n.runes = append(n.runes, r)
	n.start = append(n.start, start)
	n.end = append(n.end, end)
}

func foldRune(r rune) string {
	s := width.Fold.String(string(r))
	return norm.NFKC.String(s)
}

func keep(r rune) bool {
	if unicode.Is(unicode.Han, r) {
		return false
	}
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	return strings.ContainsRune(keepPunct, r)
}

// Normalize returns the comparison form of s.
func Normalize(s string) string {
	return normalize(s).String()
}
