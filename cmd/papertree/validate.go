package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/papertree/internal/api"
	"github.com/jackzampolin/papertree/internal/ingest"
	"github.com/jackzampolin/papertree/internal/region"
)

// ValidateResult summarizes a well-formed region stream.
type ValidateResult struct {
	Document string              `json:"document" yaml:"document"`
	PDF      string              `json:"pdf,omitempty" yaml:"pdf,omitempty"`
	Pages    int                 `json:"pages" yaml:"pages"`
	Regions  int                 `json:"regions" yaml:"regions"`
	Kinds    map[region.Kind]int `json:"kinds" yaml:"kinds"`
}

var validateCmd = &cobra.Command{
	Use:   "validate <regions.json>",
	Short: "Check a region-stream file against its schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stream, err := ingest.Load(args[0])
		if err != nil {
			return err
		}
		res := ValidateResult{
			Document: stream.Document,
			PDF:      stream.PDF,
			Kinds:    make(map[region.Kind]int),
		}
		for _, p := range stream.RegionPages() {
			res.Pages++
			for _, r := range p.Regions {
				res.Regions++
				res.Kinds[r.Kind]++
			}
		}
		return api.Output(res)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
