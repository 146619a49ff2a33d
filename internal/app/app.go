// Package app wires the configured collaborators into a ready pipeline. Both
// binaries build their stack through Build.
package app

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/joseph-ayodele/invoice-tracker/internal/archive"
	"github.com/joseph-ayodele/invoice-tracker/internal/async"
	"github.com/joseph-ayodele/invoice-tracker/internal/common"
	"github.com/joseph-ayodele/invoice-tracker/internal/extractor"
	"github.com/joseph-ayodele/invoice-tracker/internal/metrics"
	"github.com/joseph-ayodele/invoice-tracker/internal/ocr"
	"github.com/joseph-ayodele/invoice-tracker/internal/pipeline"
	"github.com/joseph-ayodele/invoice-tracker/internal/rubro"
)

// Stack is the assembled pipeline plus the resources it owns.
type Stack struct {
	Processor *pipeline.Processor
	Archive   *archive.Archive // nil when archiving is disabled
	closers   []func()
}

// Close releases the metrics store. Safe to call once.
func (s *Stack) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

type options struct {
	reg  prometheus.Registerer
	text ocr.TextExtractor
}

type Option func(*options)

// WithRegisterer sets where extraction collectors are registered.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.reg = reg }
}

// WithTextExtractor replaces the tesseract OCR collaborator.
func WithTextExtractor(t ocr.TextExtractor) Option {
	return func(o *options) { o.text = t }
}

// Build opens the metrics store, loads the nomenclator, selects the extractor
// and returns the processor. The caller must Close the stack.
func Build(ctx context.Context, cfg *common.Config, logger *slog.Logger, opts ...Option) (*Stack, error) {
	if logger == nil {
		logger = slog.Default()
	}
	o := options{reg: prometheus.DefaultRegisterer}
	for _, opt := range opts {
		opt(&o)
	}
	st := &Stack{}

	var sink metrics.Sink = metrics.NewMemoryStore()
	if dsn := strings.TrimSpace(cfg.Metrics.DSN); dsn != "" {
		store, err := metrics.Open(ctx, dsn, logger)
		if err != nil {
			return nil, common.WrapError(err, "open metrics store")
		}
		st.closers = append(st.closers, store.Close)
		sink = store
	}
	if o.reg != nil {
		sink = metrics.NewInstrumented(sink, metrics.NewCollectors(o.reg))
	}

	var nomenclator *rubro.Nomenclator
	if path := cfg.Rubro.NomenclatorPath; path != "" {
		n, err := rubro.LoadFile(path)
		if err != nil {
			st.Close()
			return nil, common.WrapError(err, "load nomenclator")
		}
		logger.Info("app.nomenclator.loaded", "path", path, "entries", n.Len())
		nomenclator = n
	}

	factory := extractor.NewFactory(cfg, logger)
	ext, err := factory.Create(cfg.Extractor.Provider, cfg.Extractor.AutoDetect)
	if err != nil {
		st.Close()
		return nil, err
	}
	if cfg.Extractor.Fallback {
		ext = extractor.NewFallback(ext, logger, extractor.WithRecorder(sink))
	}

	text := o.text
	if text == nil {
		text = ocr.NewExtractor(ocr.ConfigFrom(cfg.OCR), logger)
	}

	st.Processor = pipeline.NewProcessor(text, ext, logger,
		pipeline.WithNormalizer(rubro.NewService(nomenclator, logger)),
		pipeline.WithSink(sink),
		pipeline.WithFactory(factory),
	)

	if cfg.ArchiveEnabled() {
		a, err := archive.NewS3(ctx, cfg.Archive, logger)
		if err != nil {
			st.Close()
			return nil, common.WrapError(err, "open archive")
		}
		st.Archive = a
	}

	logger.Info("app.ready",
		"provider", ext.ProviderName(),
		"fallback", cfg.Extractor.Fallback,
		"archive", st.Archive != nil)
	return st, nil
}

// NewQueue starts the inbox worker pool sized by the server settings.
func NewQueue(cfg common.ServerConfig, h async.Handler, logger *slog.Logger) *async.ProcessorQueue {
	return async.NewProcessorQueue(h, logger,
		async.WithWorkers(cfg.Workers),
		async.WithQueueSize(cfg.QueueSize),
		async.WithProcessTimeout(cfg.JobTimeout),
	)
}

// NewLogger returns a JSON slog logger at the named level (debug, info, warn, error).
func NewLogger(level string, w io.Writer) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		l = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: l}))
}
