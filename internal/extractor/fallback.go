package extractor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/invoice-tracker/internal/common"
	"github.com/joseph-ayodele/invoice-tracker/internal/entity"
)

// Recorder receives metrics for extractions that are not otherwise reported,
// such as a primary attempt that was replaced by the fallback.
type Recorder interface {
	Record(ctx context.Context, m entity.ExtractionMetrics, filename string)
}

// FallbackError is returned when the primary and the fallback both failed.
type FallbackError struct {
	Primary  error
	Fallback error
}

func (e *FallbackError) Error() string {
	return fmt.Sprintf("all extractors failed: primary: %v. fallback: %v", e.Primary, e.Fallback)
}

func (e *FallbackError) Unwrap() []error { return []error{e.Primary, e.Fallback} }

// Fallback runs the primary extractor and, when it fails, the OCR-pattern extractor.
type Fallback struct {
	primary  Extractor
	fallback Extractor
	recorder Recorder
	logger   *slog.Logger
}

type FallbackOption func(*Fallback)

// WithRecorder records the failed primary attempt before falling back.
func WithRecorder(r Recorder) FallbackOption {
	return func(f *Fallback) { f.recorder = r }
}

// WithFallbackExtractor replaces the default OCR-pattern fallback.
func WithFallbackExtractor(e Extractor) FallbackOption {
	return func(f *Fallback) { f.fallback = e }
}

func NewFallback(primary Extractor, logger *slog.Logger, opts ...FallbackOption) *Fallback {
	if logger == nil {
		logger = slog.Default()
	}
	f := &Fallback{
		primary:  primary,
		fallback: NewOCRPattern(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ProviderName is the primary's name; metrics report whichever extractor answered.
func (f *Fallback) ProviderName() string { return f.primary.ProviderName() }

func (f *Fallback) PrimaryProviderName() string { return f.primary.ProviderName() }

func (f *Fallback) Extract(ctx context.Context, req Request) (entity.RawExtraction, error) {
	raw, _, err := f.ExtractWithFallback(ctx, req)
	return raw, err
}

func (f *Fallback) ExtractWithMetrics(ctx context.Context, req Request) (entity.RawExtraction, entity.ExtractionMetrics, error) {
	return f.ExtractWithFallback(ctx, req)
}

// ExtractWithFallback returns the primary's result when it succeeds. Otherwise
// the failure is logged and recorded and the fallback result is returned. A
// cancelled context stops before the fallback runs. The filename for logs and
// metrics comes from the request, else from the context.
func (f *Fallback) ExtractWithFallback(ctx context.Context, req Request) (entity.RawExtraction, entity.ExtractionMetrics, error) {
	raw, m, primaryErr := ExtractWithMetrics(ctx, f.primary, req)
	if primaryErr == nil {
		return raw, m, nil
	}
	filename := req.Filename
	if filename == "" {
		filename = common.FilenameFromContext(ctx)
	}
	f.logger.Warn("extractor.fallback.primary_failed",
		"provider", f.primary.ProviderName(),
		"fallback", f.fallback.ProviderName(),
		"filename", filename,
		"error", primaryErr)
	if f.recorder != nil {
		f.recorder.Record(ctx, m, filename)
	}
	if err := ctx.Err(); err != nil {
		return nil, m, err
	}

	raw, fm, fallbackErr := ExtractWithMetrics(ctx, f.fallback, req)
	if fallbackErr != nil {
		ferr := &FallbackError{Primary: primaryErr, Fallback: fallbackErr}
		fm.ErrorMessage = ferr.Error()
		return nil, fm, ferr
	}
	f.logger.Info("extractor.fallback.ok", "provider", f.fallback.ProviderName(), "filename", filename)
	return raw, fm, nil
}
