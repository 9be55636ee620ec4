// Package media holds the figures, tables, listings and algorithms bound
// to captions, and the catalog that keeps their numbers unique.
package media

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackzampolin/papertree/internal/region"
)

var (
	// ErrMediaNotFound is returned when no asset matches a lookup.
	ErrMediaNotFound = errors.New("media not found")
	// ErrInvalidLabel is returned for labels that are not kind+number.
	ErrInvalidLabel = errors.New("invalid media label")
)

// Kind is the resolved class of a media asset.
type Kind string

const (
	KindFigure    Kind = "Figure"
	KindTable     Kind = "Table"
	KindList      Kind = "List"
	KindAlgorithm Kind = "Algorithm"
	KindOther     Kind = "Other"
)

// Kinds lists every media kind in display order.
var Kinds = []Kind{KindFigure, KindTable, KindList, KindAlgorithm, KindOther}

// ParseKind converts a case-insensitive name to a Kind.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if strings.EqualFold(s, string(k)) {
			return k, true
		}
	}
	switch strings.ToLower(s) {
	case "fig", "image", "picture":
		return KindFigure, true
	case "listing":
		return KindList, true
	}
	return "", false
}

// Label returns the canonical label for a number, e.g. "Table3".
func (k Kind) Label(number int) string {
	return string(k) + strconv.Itoa(number)
}

var labelPattern = regexp.MustCompile(`^\s*([A-Za-z]+)\s*(\d+)\s*$`)

// ParseLabel splits a canonical label like "Table3" or "figure 2".
func ParseLabel(label string) (Kind, int, error) {
	m := labelPattern.FindStringSubmatch(label)
	if m == nil {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}
	kind, ok := ParseKind(m[1])
	if !ok {
		return "", 0, fmt.Errorf("%w: unknown kind %q", ErrInvalidLabel, m[1])
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}
	return kind, n, nil
}

// ID indexes an asset in its catalog.
type ID int

// Asset is one media element and its caption.
type Asset struct {
	ID           ID          `json:"id" yaml:"id"`
	Kind         Kind        `json:"kind" yaml:"kind"`
	Number       int         `json:"number" yaml:"number"`
	Label        string      `json:"label" yaml:"label"`
	Ref          string      `json:"ref" yaml:"ref"`
	Description  string      `json:"description,omitempty" yaml:"description,omitempty"`
	Caption      string      `json:"caption,omitempty" yaml:"caption,omitempty"`
	Enabled      bool        `json:"enabled" yaml:"enabled"`
	Page         int         `json:"page" yaml:"page"`
	BBox         region.BBox `json:"bbox" yaml:"bbox"`
	RegionID     string      `json:"region_id,omitempty" yaml:"region_id,omitempty"`
	SourceKind   region.Kind `json:"source_kind,omitempty" yaml:"source_kind,omitempty"`
	UserSupplied bool        `json:"user_supplied,omitempty" yaml:"user_supplied,omitempty"`
}

// DefaultRef is the file name a cropped asset image is saved under.
func DefaultRef(page int, label string) string {
	return fmt.Sprintf("page_%d_%s.png", page+1, strings.ToLower(label))
}
