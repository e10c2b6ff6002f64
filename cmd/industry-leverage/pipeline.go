// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/industry-leverage/internal/checkpoint"
	"github.com/pdiddy/industry-leverage/pkg/types"
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Run classify, discover, ingest, ratios and export-sic in order",
	Long: `Pipeline runs every stage with the settings from the config file and
environment. The last completed step is recorded in a progress file, so a
rerun after a failure starts at the failed step. The progress file is removed
once every step has finished.`,
	Annotations: map[string]string{sectionAnnotation: "pipeline"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline(cmd.Context(), pipelineConfig(), os.Stdout)
	},
}

type pipelineStep struct {
	name string
	run  func(ctx context.Context, cfg types.PipelineConfig, w io.Writer) error
}

var pipelineSteps = []pipelineStep{
	{"classify", func(ctx context.Context, cfg types.PipelineConfig, w io.Writer) error {
		return runClassify(ctx, cfg.Classify, w)
	}},
	{"discover", func(ctx context.Context, cfg types.PipelineConfig, w io.Writer) error {
		return runDiscover(ctx, cfg.Discovery, w)
	}},
	{"ingest", func(ctx context.Context, cfg types.PipelineConfig, w io.Writer) error {
		return runIngest(ctx, cfg.Ingest, false, w)
	}},
	{"ratios", func(ctx context.Context, cfg types.PipelineConfig, w io.Writer) error {
		return runRatios(ctx, cfg.Ratios, w)
	}},
	{"export-sic", func(_ context.Context, cfg types.PipelineConfig, w io.Writer) error {
		return runExportSIC(cfg.SICExport, w)
	}},
}

func runPipeline(ctx context.Context, cfg types.PipelineConfig, w io.Writer) error {
	return executeSteps(ctx, pipelineSteps, cfg, &checkpoint.StepTracker{Path: cfg.ProgressFile}, w)
}

func executeSteps(ctx context.Context, steps []pipelineStep, cfg types.PipelineConfig, tracker *checkpoint.StepTracker, w io.Writer) error {
	last, err := tracker.LastCompleted()
	if err != nil {
		return err
	}

	for i, step := range steps {
		if i <= last {
			fmt.Fprintf(w, "skipped: %s (already completed)\n", step.name)
			continue
		}
		fmt.Fprintf(w, "== %s ==\n", step.name)
		if err := step.run(ctx, cfg, w); err != nil {
			return fmt.Errorf("step %s: %w", step.name, err)
		}
		if err := tracker.Complete(i); err != nil {
			return err
		}
	}

	if err := tracker.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(w, "All steps completed.")
	return nil
}

func init() {
	rootCmd.AddCommand(pipelineCmd)
}
