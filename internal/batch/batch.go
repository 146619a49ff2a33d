// Package batch processes a set of documents with bounded concurrency and
// collects one export row per document.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/invoice-tracker/internal/common"
	"github.com/joseph-ayodele/invoice-tracker/internal/export"
	"github.com/joseph-ayodele/invoice-tracker/internal/ingest"
	"github.com/joseph-ayodele/invoice-tracker/internal/pipeline"
)

type Runner struct {
	proc    *pipeline.Processor
	archive ingest.Archiver
	workers int
	logger  *slog.Logger
}

type Option func(*Runner)

func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

func WithArchiver(a ingest.Archiver) Option {
	return func(r *Runner) { r.archive = a }
}

func NewRunner(proc *pipeline.Processor, logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Runner{proc: proc, workers: 4, logger: logger}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Summary counts the outcome of a run.
type Summary struct {
	Total, Processed, Failed int
	Elapsed                  time.Duration
}

// Run processes every path with provider (empty = the configured extractor).
// Per-document failures land in the row's Error; only a bad provider or a
// cancelled context fails the run. Rows keep the order of paths.
func (r *Runner) Run(ctx context.Context, paths []string, provider string) ([]export.Row, Summary, error) {
	start := time.Now()
	proc, err := r.proc.ProcessorFor(provider)
	if err != nil {
		return nil, Summary{}, err
	}

	rows := make([]export.Row, len(paths))
	var failed atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rows[i] = r.one(gctx, proc, path)
			if rows[i].Error != "" {
				failed.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Summary{}, fmt.Errorf("batch cancelled: %w", err)
	}

	sum := Summary{
		Total:   len(paths),
		Failed:  int(failed.Load()),
		Elapsed: time.Since(start),
	}
	sum.Processed = sum.Total - sum.Failed
	r.logger.Info("batch.run.done",
		"total", sum.Total,
		"processed", sum.Processed,
		"failed", sum.Failed,
		"elapsed_ms", sum.Elapsed.Milliseconds())
	return rows, sum, nil
}

func (r *Runner) one(ctx context.Context, proc *pipeline.Processor, path string) export.Row {
	name := filepath.Base(path)
	row := export.Row{Filename: name}

	data, err := os.ReadFile(path)
	if err != nil {
		r.logger.Warn("batch.read.failed", "path", path, "error", err)
		row.Error = err.Error()
		return row
	}
	rid := uuid.NewString()
	ctx = common.WithRequestID(ctx, rid)
	out, err := proc.ProcessInvoiceFile(ctx, data, name)
	if err != nil {
		r.logger.Warn("batch.process.failed", "path", path, "error", err)
		row.Error = err.Error()
		return row
	}
	row.Invoice = out

	if r.archive != nil {
		if _, err := r.archive.Store(ctx, rid, name, data, out); err != nil {
			r.logger.Warn("batch.archive.failed", "path", path, "error", err)
		}
	}
	return row
}
