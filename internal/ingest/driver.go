// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest walks the ordered report groups, extracts each report's
// concepts and stores them, checkpointing after every group so an
// interrupted run resumes where it stopped.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/industry-leverage/internal/checkpoint"
	"github.com/pdiddy/industry-leverage/internal/results"
	"github.com/pdiddy/industry-leverage/internal/xbrl"
	"github.com/pdiddy/industry-leverage/pkg/types"
)

// DefaultProgressEvery is how many reports pass between progress lines.
const DefaultProgressEvery = 100

// TokenSource issues API tokens.
type TokenSource = xbrl.TokenSource

// ConceptExtractor turns one report into concept values.
type ConceptExtractor interface {
	Extract(ctx context.Context, token string, ref types.ReportRef) (types.ExtractedConcepts, error)
}

// ResultWriter stores one row per report.
type ResultWriter interface {
	Upsert(ctx context.Context, row types.ResultRow) (results.Outcome, error)
}

// CheckpointStore loads and saves run progress.
type CheckpointStore interface {
	Load() (checkpoint.State, error)
	Save(checkpoint.State) error
}

// Clock tells the time. Tests substitute a manual clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Summary holds the outcome of an ingestion run.
type Summary struct {
	Inserted     int
	Updated      int
	Empty        int
	RemoteErrors int
	Skipped      int
	Groups       int
	Refreshes    int
}

// Processed returns the number of reports extracted and stored this run.
func (s Summary) Processed() int {
	return s.Inserted + s.Updated
}

// Total returns processed plus skipped reports.
func (s Summary) Total() int {
	return s.Processed() + s.Skipped
}

// HasFailures reports whether any extraction failed remotely.
func (s Summary) HasFailures() bool {
	return s.RemoteErrors > 0
}

// Driver runs one ingestion pass. Tokens, Extractor, Results and
// Checkpoints are required; the rest default.
type Driver struct {
	Tokens      TokenSource
	Extractor   ConceptExtractor
	Results     ResultWriter
	Checkpoints CheckpointStore

	Clock         Clock
	Log           logrus.FieldLogger
	Metrics       *Metrics
	Progress      io.Writer
	ProgressEvery int
	RefreshAfter  time.Duration
}

// Run processes groups in order starting at the checkpointed index. Groups
// already recorded as processed are skipped without any extractor call.
// The checkpoint is saved after each committed group.
//
// Rate limiting, context cancellation, storage failures and checkpoint
// failures stop the run and are returned. A failed extraction for a single
// report is logged and stored as zeros.
func (d *Driver) Run(ctx context.Context, groups types.ReportGroups, vocab types.Vocabulary) (Summary, error) {
	var sum Summary

	clock := d.Clock
	if clock == nil {
		clock = systemClock{}
	}
	every := d.ProgressEvery
	if every <= 0 {
		every = DefaultProgressEvery
	}
	progress := d.Progress
	if progress == nil {
		progress = io.Discard
	}

	state, err := d.Checkpoints.Load()
	if err != nil {
		return sum, fmt.Errorf("loading checkpoint: %w", err)
	}
	sess := NewSession(d.Tokens, clock, d.RefreshAfter, state)

	var log logrus.FieldLogger = logrus.StandardLogger()
	if d.Log != nil {
		log = d.Log
	}
	log = log.WithField("session", sess.ID)

	if err := sess.Authenticate(ctx); err != nil {
		return sum, fmt.Errorf("authenticating: %w", err)
	}

	total := groups.TotalReports()
	start := sess.State.NextGroupIndex
	if start > len(groups) {
		start = len(groups)
	}
	for _, g := range groups[:start] {
		sum.Skipped += len(g.Reports)
	}
	log.WithFields(logrus.Fields{
		"groups":      len(groups),
		"reports":     total,
		"start_index": start,
	}).Info("starting ingestion")

	handled, printed := sum.Skipped, -1
	printProgress := func() {
		if total > 0 && printed != handled {
			fmt.Fprintf(progress, "Progress: %.2f%%\n", 100*float64(handled)/float64(total))
			printed = handled
		}
	}
	next := (handled/every + 1) * every
	maybePrint := func() {
		if handled < next {
			return
		}
		printProgress()
		for next <= handled {
			next += every
		}
	}

	for i := start; i < len(groups); i++ {
		g := groups[i]
		if sess.State.Processed(g.Key) {
			log.WithField("key", g.Key).Debug("skipping processed group")
			sum.Skipped += len(g.Reports)
			handled += len(g.Reports)
			d.Metrics.group("skipped")
			d.Metrics.setProgress(handled, total)
			maybePrint()
			continue
		}

		for _, ref := range g.Reports {
			if err := d.ingestReport(ctx, sess, ref, vocab, log, &sum); err != nil {
				sum.Refreshes = sess.Refreshes
				return sum, err
			}
			handled++
			d.Metrics.setProgress(handled, total)
			maybePrint()
		}

		sess.State.MarkProcessed(g.Key, i)
		if err := d.Checkpoints.Save(sess.State); err != nil {
			sum.Refreshes = sess.Refreshes
			return sum, fmt.Errorf("saving checkpoint after %s: %w", g.Key, err)
		}
		sum.Groups++
		d.Metrics.group("committed")
	}

	sum.Refreshes = sess.Refreshes
	printProgress()
	log.WithFields(logrus.Fields{
		"inserted":      sum.Inserted,
		"updated":       sum.Updated,
		"empty":         sum.Empty,
		"remote_errors": sum.RemoteErrors,
		"skipped":       sum.Skipped,
	}).Info("ingestion finished")
	return sum, nil
}

func (d *Driver) ingestReport(ctx context.Context, sess *Session, ref types.ReportRef, vocab types.Vocabulary, log logrus.FieldLogger, sum *Summary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	before := sess.Refreshes
	token, err := sess.AccessToken(ctx)
	if err != nil {
		return err
	}
	if sess.Refreshes > before {
		log.Info("refreshed access token")
		d.Metrics.refreshed()
	}

	concepts, err := d.Extractor.Extract(ctx, token, ref)
	switch {
	case err == nil:
		d.Metrics.extracted("ok")
	case errors.Is(err, xbrl.ErrRateLimited):
		log.WithField("report_id", ref.ReportID).Error("rate limited, stopping run")
		d.Metrics.extracted("rate_limited")
		return fmt.Errorf("report %s: %w", ref.ReportID, err)
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(err, xbrl.ErrNoRequestSlot):
		return fmt.Errorf("report %s: %w", ref.ReportID, err)
	case errors.Is(err, xbrl.ErrEmptyResult):
		sum.Empty++
		d.Metrics.extracted("empty")
	default:
		log.WithError(err).WithField("report_id", ref.ReportID).Warn("extraction failed, storing zeros")
		sum.RemoteErrors++
		d.Metrics.extracted("remote_error")
		concepts = types.ExtractedConcepts{}
	}

	row := types.NewResultRow(ref.ReportID, concepts, vocab)
	outcome, err := d.Results.Upsert(ctx, row)
	if err != nil {
		return fmt.Errorf("storing report %s: %w", ref.ReportID, err)
	}
	switch outcome {
	case results.Updated:
		sum.Updated++
	default:
		sum.Inserted++
	}
	d.Metrics.stored(outcome.String())
	return nil
}
