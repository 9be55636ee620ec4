package caption

import (
	"github.com/jackzampolin/papertree/internal/diag"
	"github.com/jackzampolin/papertree/internal/media"
	"github.com/jackzampolin/papertree/internal/region"
)

// Binder turns the media regions of a group into media assets.
type Binder struct {
	classifier *Classifier
}

// NewBinder creates a binder around a classifier.
func NewBinder(classifier *Classifier) *Binder {
	return &Binder{classifier: classifier}
}

// Classifier returns the binder's classifier.
func (b *Binder) Classifier() *Classifier {
	return b.classifier
}

// Bind classifies every media region of an ordered group and returns one
// asset per region in the same order. Neighbors are the adjacent regions
// of the group, whatever their kind. Assets are not yet numbered by a
// catalog; unmatched ones have Number 0.
func (b *Binder) Bind(regions []region.Region, report *diag.Report) []media.Asset {
	var out []media.Asset
	for i, r := range regions {
		var prev, next string
		if i > 0 {
			prev = regions[i-1].Text
		}
		if i+1 < len(regions) {
			next = regions[i+1].Text
		}

		binding, ok := b.classifier.Classify(r.Kind, prev, r.Text, next)
		if !ok {
			continue
		}
		if !binding.Matched {
			report.Info(diag.KindCaptionUnmatched, diag.AtRegion(r.Page, r.ID),
				"no caption found for %s region, kept as %s", r.Kind, binding.Kind)
		}

		out = append(out, media.Asset{
			Kind:        binding.Kind,
			Number:      binding.Number,
			Description: binding.Description,
			Caption:     binding.Caption,
			Enabled:     binding.Matched,
			Page:        r.Page,
			BBox:        r.BBox,
			RegionID:    r.ID,
			SourceKind:  r.Kind,
		})
	}
	return out
}
