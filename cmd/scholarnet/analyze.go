package main

import (
	"encoding/json"
	"fmt"

	"scholarnet/internal/analysis"
	"scholarnet/internal/config"
	"scholarnet/internal/graph"
	"scholarnet/internal/ingest"
	"scholarnet/internal/util"

	"github.com/spf13/cobra"
)

type analyzeFlags struct {
	input    string
	output   string
	top      int
	weighted bool
}

func analyzeCmd() *cobra.Command {
	var f analyzeFlags
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a document manifest and print the network report",
		Long: `Reads a JSON manifest, either {"documents": [...]} or a bare array.
Entries may name a pdf_path relative to the manifest; its text is extracted
and its SHA-256 becomes the id when none is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd, f)
		},
	}
	cmd.Flags().StringVarP(&f.input, "input", "i", "", "document manifest (JSON)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "write the report here instead of stdout")
	cmd.Flags().IntVar(&f.top, "top", analysis.MaxKeyPlayers, "number of key players to keep (max 50)")
	cmd.Flags().BoolVar(&f.weighted, "weighted", false, "use edge weights for community detection")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func runAnalyze(cmd *cobra.Command, f analyzeFlags) error {
	cfg := config.Load()
	docs, err := ingest.LoadDocuments(cmd.Context(), f.input)
	if err != nil {
		return err
	}
	if cfg.MaxDocuments > 0 && len(docs) > cfg.MaxDocuments {
		return fmt.Errorf("%w: %d > %d", util.ErrTooManyDocuments, len(docs), cfg.MaxDocuments)
	}

	detector := graph.DefaultDetectorOptions()
	detector.Weighted = f.weighted || cfg.Weighted
	res := analysis.New(analysis.Options{
		MaxPlayers: f.top,
		Detector:   detector,
		Source:     "cli",
	}).Analyze(docs)

	if f.output != "" {
		return util.WriteJSONAtomic(f.output, res)
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
