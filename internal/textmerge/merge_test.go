package textmerge

import (
	"strings"
	"testing"
)

func TestMerge(t *testing.T) {
	tests := []struct {
		name       string
		minOverlap int
		a, b       string
		want       string
		strategy   Strategy
	}{
		{
			name:       "overlap removed",
			minOverlap: 3,
			a:          "ABCDEF",
			b:          "DEFGHI",
			want:       "ABCDEFGHI",
			strategy:   StrategyOverlap,
		},
		{
			name:       "overlap below minimum concatenates",
			minOverlap: 4,
			a:          "ABCDEF",
			b:          "DEFGHI",
			want:       "ABCDEF\nDEFGHI",
			strategy:   StrategyConcat,
		},
		{
			name:       "hyphenated page break without overlap",
			minOverlap: 20,
			a:          "The method conti-",
			b:          "nues to perform X.",
			want:       "The method conti-\nnues to perform X.",
			strategy:   StrategyConcat,
		},
		{
			name:       "repeated sentence across pages",
			minOverlap: 20,
			a:          "We evaluate on three datasets. Results are summarized below",
			b:          "Results are summarized below in Table 2 for all models.",
			want:       "We evaluate on three datasets. Results are summarized below in Table 2 for all models.",
			strategy:   StrategyOverlap,
		},
		{
			name:       "overlap ignores whitespace and CJK noise",
			minOverlap: 10,
			a:          "the encoder   maps tokens 中",
			b:          "encoder maps tokens to vectors",
			want:       "the encoder maps tokens to vectors",
			strategy:   StrategyOverlap,
		},
		{
			name:       "tail of a not repeated in b is kept",
			minOverlap: 5,
			a:          "alpha beta gamma delta epsilon",
			b:          "beta gamma is discussed later",
			want:       "alpha beta gamma delta epsilon\nbeta gamma is discussed later",
			strategy:   StrategyConcat,
		},
		{
			name:       "empty following text",
			minOverlap: 3,
			a:          "content",
			b:          "   ",
			want:       "content",
			strategy:   StrategyEmpty,
		},
		{
			name:       "empty preceding text",
			minOverlap: 3,
			a:          "",
			b:          "content",
			want:       "content",
			strategy:   StrategyEmpty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.MinOverlap = tt.minOverlap
			m := NewMergerWithConfig(cfg)

			got := m.Merge(tt.a, tt.b)
			if got.Text != tt.want {
				t.Errorf("Merge() = %q, want %q", got.Text, tt.want)
			}
			if got.Strategy != tt.strategy {
				t.Errorf("strategy = %s, want %s", got.Strategy, tt.strategy)
			}
		})
	}
}

func TestMergeIdempotent(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinOverlap = 3
	m := NewMergerWithConfig(cfg)

	pairs := [][2]string{
		{"ABCDEF", "DEFGHI"},
		{"The method conti-", "nues to perform X."},
		{"short", "x"},
	}
	for _, p := range pairs {
		once := m.Merge(p[0], p[1]).Text
		twice := m.Merge(once, p[1]).Text
		if once != twice {
			t.Errorf("merging %q again changed %q to %q", p[1], once, twice)
		}
		stitched := m.Stitch(once, p[1]).Text
		if stitched != once {
			t.Errorf("stitching %q again changed %q to %q", p[1], once, stitched)
		}
	}
}

func TestMergeNoLoss(t *testing.T) {
	m := NewMerger()
	a := "Attention layers are stacked six times in the encoder"
	b := "and the decoder uses masked attention."
	got := m.Merge(a, b).Text
	if !strings.Contains(got, a) || !strings.Contains(got, b) {
		t.Errorf("content lost: %q", got)
	}
}

func TestMergeLongDocument(t *testing.T) {
	m := NewMerger()
	body := strings.Repeat("filler words here. ", 400)
	a := body + "Results are summarized below"
	b := "Results are summarized below in Table 2."

	got := m.Merge(a, b)
	if got.Strategy != StrategyOverlap || got.Overlap != 28 {
		t.Fatalf("strategy=%s overlap=%d", got.Strategy, got.Overlap)
	}
	if got.Text != body+b {
		t.Errorf("merged text ends %q", got.Text[len(got.Text)-60:])
	}
}

func TestStitch(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinOverlap = 8
	m := NewMergerWithConfig(cfg)

	tests := []struct {
		name string
		a, b string
		want string
	}{
		{
			name: "duplicated boundary line",
			a:    "Transformers rely on self-attention mechanisms ",
			b:    "attention mechanisms to model dependencies.",
			want: "Transformers rely on self-attention mechanisms to model dependencies.",
		},
		{
			name: "short coincidental match is not removed",
			a:    "the end of a line",
			b:    "line two starts here",
			want: "the end of a line\nline two starts here",
		},
		{
			name: "no overlap",
			a:    "first paragraph.",
			b:    "second paragraph.",
			want: "first paragraph.\nsecond paragraph.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Stitch(tt.a, tt.b).Text; got != tt.want {
				t.Errorf("Stitch() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"  hello \n\t world  ", "hello world"},
		{"ＡＢＣ１２３", "ABC123"},
		{"深度学习 deep learning", "deep learning"},
		{"x → y", "x y"},
		{"fig. 3: (a)", "fig. 3: (a)"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.input); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestHelpers(t *testing.T) {
	if got := firstRunes("héllo", 2); got != "hé" {
		t.Errorf("firstRunes = %q", got)
	}
	if got := lastRunes("héllo", 4); got != "éllo" {
		t.Errorf("lastRunes = %q", got)
	}
	if got := lastRunes("ab", 5); got != "ab" {
		t.Errorf("lastRunes short = %q", got)
	}
	ia, ib, size := longestCommonSubstring([]rune("xxabcdyy"), []rune("zabcdz"))
	if ia != 2 || ib != 1 || size != 4 {
		t.Errorf("longestCommonSubstring = %d %d %d", ia, ib, size)
	}
}
