// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/industry-leverage/internal/checkpoint"
	"github.com/pdiddy/industry-leverage/internal/ingest"
	"github.com/pdiddy/industry-leverage/internal/results"
	"github.com/pdiddy/industry-leverage/internal/xbrl"
	"github.com/pdiddy/industry-leverage/pkg/types"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Extract balance-sheet concepts from every discovered filing",
	Long: `Ingest walks the report groups in file order, fetches the facts of each
report from the XBRL US API, keeps the tracked concepts and upserts one row per
report into a SQLite table. Progress is checkpointed after every group, so an
interrupted run resumes at the first unfinished group.

An HTTP 429 from the API stops the run immediately with exit status 2. Rerun
later to continue from the checkpoint. Use --reset to start over.`,
	Annotations: map[string]string{sectionAnnotation: "ingest"},
	RunE: func(cmd *cobra.Command, args []string) error {
		reset, _ := cmd.Flags().GetBool("reset")
		return runIngest(cmd.Context(), ingestConfig(), reset, os.Stdout)
	},
}

func runIngest(ctx context.Context, cfg types.IngestConfig, reset bool, w io.Writer) error {
	vocab, err := types.LoadVocabulary(cfg.VocabularyFile)
	if err != nil {
		return err
	}
	groups, err := types.ReadReportGroups(cfg.GroupsFile)
	if err != nil {
		return err
	}

	store, err := results.Open(cfg.DatabasePath, vocab)
	if err != nil {
		return err
	}
	defer store.Close()

	checkpoints := checkpoint.NewFileStore(cfg.CheckpointPath)
	if reset {
		if err := checkpoints.Reset(); err != nil {
			return err
		}
	}

	var metrics *ingest.Metrics
	if cfg.MetricsFile != "" {
		metrics = ingest.NewMetrics()
	}

	client := apiClient(cfg.XBRL)
	driver := &ingest.Driver{
		Tokens:        authenticator(client, cfg.XBRL),
		Extractor:     &xbrl.Extractor{Client: client, Vocabulary: vocab},
		Results:       store,
		Checkpoints:   checkpoints,
		Log:           logger,
		Metrics:       metrics,
		Progress:      w,
		ProgressEvery: cfg.ProgressEvery,
		RefreshAfter:  cfg.TokenRefreshAfter,
	}

	sum, runErr := driver.Run(ctx, groups, vocab)
	fmt.Fprintf(w, "\nIngest summary: %d inserted, %d updated, %d empty, %d failed, %d skipped (total: %d of %d)\n",
		sum.Inserted, sum.Updated, sum.Empty, sum.RemoteErrors, sum.Skipped, sum.Total(), groups.TotalReports())

	if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
		logger.WithError(err).Warn("metrics not written")
	}
	return runErr
}

func init() {
	ingestCmd.Flags().String("groups-file", "data/output/report_groups.json", "report group JSON from discover")
	ingestCmd.Flags().String("database-path", "data/output/reports.db", "SQLite result store")
	ingestCmd.Flags().String("checkpoint-path", "progress/ingest.json", "resumable progress file")
	ingestCmd.Flags().String("vocabulary", "", "YAML file listing tracked concepts (default: built-in list)")
	ingestCmd.Flags().Int("progress-every", ingest.DefaultProgressEvery, "print progress after this many reports")
	ingestCmd.Flags().Duration("token-refresh-after", ingest.DefaultRefreshAfter, "token age that forces re-authentication")
	ingestCmd.Flags().String("metrics-file", "", "write Prometheus text metrics here after the run")
	ingestCmd.Flags().Bool("reset", false, "discard the checkpoint before running")
	addXBRLFlags(ingestCmd)

	rootCmd.AddCommand(ingestCmd)
}
