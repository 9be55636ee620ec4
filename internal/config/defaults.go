package config

import (
	"errors"
	"fmt"
	"unicode"
)

var (
	// ErrNoDefault is returned when no default value exists for a config key.
	ErrNoDefault = errors.New("no default exists")

	// ErrInvalidKey is returned when a config key contains invalid characters.
	ErrInvalidKey = errors.New("invalid config key")
)

// Entry is one documented configuration key.
type Entry struct {
	Key         string `json:"key" yaml:"key"`
	Value       any    `json:"value" yaml:"value"`
	Description string `json:"description" yaml:"description"`
}

// DefaultEntries returns every configuration key with its default value.
func DefaultEntries() []Entry {
	d := DefaultConfig()
	return []Entry{
		// ===================
		// Gap detection
		// ===================
		{
			Key:         "gaps.min_gap",
			Value:       d.Gaps.MinGap,
			Description: "Vertical gap between two regions that triggers a synthesized region",
		},
		{
			Key:         "gaps.edge_gap",
			Value:       d.Gaps.EdgeGap,
			Description: "Top and bottom margin below which a column edge is not searched",
		},
		{
			Key:         "gaps.overlap_threshold",
			Value:       d.Gaps.OverlapThreshold,
			Description: "Largest share of a candidate an existing region may cover",
		},
		{
			Key:         "gaps.padding",
			Value:       d.Gaps.Padding,
			Description: "Pixels added around a synthesized region before OCR",
		},
		{
			Key:         "gaps.min_height",
			Value:       d.Gaps.MinHeight,
			Description: "Smallest margin candidate worth keeping",
		},

		// ===================
		// Text merging
		// ===================
		{
			Key:         "merge.min_overlap",
			Value:       d.Merge.MinOverlap,
			Description: "Shortest repeated span, in characters, removed when joining text",
		},
		{
			Key:         "merge.window",
			Value:       d.Merge.Window,
			Description: "Characters compared at each side when stitching within a group",
		},
		{
			Key:         "merge.separator",
			Value:       d.Merge.Separator,
			Description: "Joins fragments that do not overlap",
		},

		// ===================
		// Captions
		// ===================
		{
			Key:         "captions.figure",
			Value:       d.Captions.Figure,
			Description: "Keywords that start a figure caption",
		},
		{
			Key:         "captions.table",
			Value:       d.Captions.Table,
			Description: "Keywords that start a table caption",
		},
		{
			Key:         "captions.list",
			Value:       d.Captions.List,
			Description: "Keywords that start a listing caption",
		},
		{
			Key:         "captions.algorithm.names",
			Value:       d.Captions.Algorithm.Names,
			Description: "Algorithm name markers",
		},
		{
			Key:         "captions.algorithm.end",
			Value:       d.Captions.Algorithm.End,
			Description: "Algorithm end markers",
		},
		{
			Key:         "captions.algorithm.io",
			Value:       d.Captions.Algorithm.IO,
			Description: "Algorithm input/output markers",
		},

		// ===================
		// Outline
		// ===================
		{
			Key:         "outline.max_depth",
			Value:       d.Outline.MaxDepth,
			Description: "Deepest outline level",
		},
		{
			Key:         "outline.apply_corrections",
			Value:       d.Outline.ApplyCorrections,
			Description: "Rewrite miscounted section numbers instead of only suggesting them",
		},

		// ===================
		// OCR
		// ===================
		{
			Key:         "ocr.enabled",
			Value:       d.OCR.Enabled,
			Description: "Recognize synthesized regions with tesseract (requires -tags ocr)",
		},
		{
			Key:         "ocr.language",
			Value:       d.OCR.Language,
			Description: "Tesseract language(s), joined with +",
		},
		{
			Key:         "ocr.attempts",
			Value:       d.OCR.Attempts,
			Description: "Recognition attempts per region",
		},
		{
			Key:         "ocr.delay",
			Value:       d.OCR.Delay,
			Description: "Delay between recognition attempts",
		},
		{
			Key:         "ocr.min_width",
			Value:       d.OCR.MinWidth,
			Description: "Crops narrower than this are upscaled before recognition",
		},

		// ===================
		// Rendering
		// ===================
		{
			Key:         "render.dpi",
			Value:       d.Render.DPI,
			Description: "Resolution of rendered page images",
		},
		{
			Key:         "render.workers",
			Value:       d.Render.Workers,
			Description: "Concurrent page renders (0 uses every CPU)",
		},

		// ===================
		// Server
		// ===================
		{
			Key:         "server.host",
			Value:       d.Server.Host,
			Description: "HTTP listen host",
		},
		{
			Key:         "server.port",
			Value:       d.Server.Port,
			Description: "HTTP listen port",
		},
	}
}

// GetDefault returns the default entry for a config key.
// Returns ErrNoDefault if no default exists for the key.
func GetDefault(key string) (*Entry, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	for _, entry := range DefaultEntries() {
		if entry.Key == key {
			return &entry, nil
		}
	}
	return nil, fmt.Errorf("%w for key %q", ErrNoDefault, key)
}

// ValidateKey checks if a config key contains only allowed characters.
// Valid keys contain: letters, digits, dots, underscores, and hyphens.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: key cannot be empty", ErrInvalidKey)
	}
	for i, r := range key {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.' && r != '_' && r != '-' {
			return fmt.Errorf("%w: invalid character %q at position %d", ErrInvalidKey, r, i)
		}
	}
	if key[0] == '.' || key[len(key)-1] == '.' {
		return fmt.Errorf("%w: key cannot start or end with a dot", ErrInvalidKey)
	}
	return nil
}
