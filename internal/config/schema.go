package config

import (
	"errors"
	"fmt"

	"github.com/jackzampolin/papertree/internal/caption"
	"github.com/jackzampolin/papertree/internal/gaps"
	"github.com/jackzampolin/papertree/internal/ocr"
	"github.com/jackzampolin/papertree/internal/outline"
	"github.com/jackzampolin/papertree/internal/pipeline"
	"github.com/jackzampolin/papertree/internal/textmerge"
)

// ErrInvalidConfig is returned when a setting is out of range.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds papertree configuration.
// Stored at: ~/.papertree/config.yaml
type Config struct {
	Gaps     gaps.Config      `mapstructure:"gaps" yaml:"gaps"`
	Merge    textmerge.Config `mapstructure:"merge" yaml:"merge"`
	Captions caption.Config   `mapstructure:"captions" yaml:"captions"`
	Outline  outline.Config   `mapstructure:"outline" yaml:"outline"`
	OCR      ocr.Config       `mapstructure:"ocr" yaml:"ocr"`
	Render   RenderConfig     `mapstructure:"render" yaml:"render"`
	Server   ServerConfig     `mapstructure:"server" yaml:"server"`
}

// RenderConfig controls PDF page rendering.
type RenderConfig struct {
	DPI     int `mapstructure:"dpi" yaml:"dpi"`
	Workers int `mapstructure:"workers" yaml:"workers"` // 0 uses every CPU
}

// ServerConfig holds the HTTP listen address.
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Gaps:     gaps.DefaultConfig(),
		Merge:    textmerge.DefaultConfig(),
		Captions: caption.DefaultConfig(),
		Outline:  outline.DefaultConfig(),
		OCR:      ocr.DefaultConfig(),
		Render:   RenderConfig{DPI: 300},
		Server:   ServerConfig{Host: "127.0.0.1", Port: "8080"},
	}
}

// Validate checks that thresholds are usable.
func (c *Config) Validate() error {
	switch {
	case c.Gaps.MinGap < 0 || c.Gaps.EdgeGap < 0 || c.Gaps.Padding < 0 || c.Gaps.MinHeight < 0:
		return fmt.Errorf("%w: gap distances must not be negative", ErrInvalidConfig)
	case c.Gaps.OverlapThreshold < 0 || c.Gaps.OverlapThreshold > 1:
		return fmt.Errorf("%w: gaps.overlap_threshold must be within [0, 1], got %g", ErrInvalidConfig, c.Gaps.OverlapThreshold)
	case c.Merge.MinOverlap < 1:
		return fmt.Errorf("%w: merge.min_overlap must be at least 1, got %d", ErrInvalidConfig, c.Merge.MinOverlap)
	case c.Merge.Window < c.Merge.MinOverlap:
		return fmt.Errorf("%w: merge.window (%d) is smaller than merge.min_overlap (%d)", ErrInvalidConfig, c.Merge.Window, c.Merge.MinOverlap)
	case c.Outline.MaxDepth < 1:
		return fmt.Errorf("%w: outline.max_depth must be at least 1, got %d", ErrInvalidConfig, c.Outline.MaxDepth)
	case c.Render.DPI < 0 || c.Render.Workers < 0:
		return fmt.Errorf("%w: render settings must not be negative", ErrInvalidConfig)
	}
	return nil
}

// ToPipelineConfig extracts the reconstruction settings.
func (c *Config) ToPipelineConfig() pipeline.Config {
	return pipeline.Config{
		Gaps:     c.Gaps,
		Merge:    c.Merge,
		Captions: c.Captions,
		Outline:  c.Outline,
	}
}

// Addr returns the server listen address.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}
