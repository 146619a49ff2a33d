// Package pipeline turns an invoice document into a validated canonical
// invoice: OCR, extraction, mapping, rubro normalization and validation.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/joseph-ayodele/invoice-tracker/internal/common"
	"github.com/joseph-ayodele/invoice-tracker/internal/entity"
	"github.com/joseph-ayodele/invoice-tracker/internal/extractor"
	"github.com/joseph-ayodele/invoice-tracker/internal/metrics"
	"github.com/joseph-ayodele/invoice-tracker/internal/ocr"
	"github.com/joseph-ayodele/invoice-tracker/internal/rubro"
	"github.com/joseph-ayodele/invoice-tracker/internal/validator"
)

const tracerName = "github.com/joseph-ayodele/invoice-tracker/internal/pipeline"

// Processor runs one document through every stage. It holds no per-request
// state and can serve concurrent calls.
type Processor struct {
	OCR        ocr.TextExtractor
	Extractor  extractor.Extractor
	Normalizer rubro.Normalizer // optional
	Sink       metrics.Sink
	Factory    *extractor.Factory // optional, enables ProcessorFor

	tracer trace.Tracer
	logger *slog.Logger
}

type Option func(*Processor)

func WithNormalizer(n rubro.Normalizer) Option {
	return func(p *Processor) { p.Normalizer = n }
}

func WithSink(s metrics.Sink) Option {
	return func(p *Processor) { p.Sink = s }
}

func WithFactory(f *extractor.Factory) Option {
	return func(p *Processor) { p.Factory = f }
}

func WithTracer(t trace.Tracer) Option {
	return func(p *Processor) { p.tracer = t }
}

// NewProcessor records metrics in memory unless WithSink is given.
func NewProcessor(text ocr.TextExtractor, ext extractor.Extractor, logger *slog.Logger, opts ...Option) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{
		OCR:       text,
		Extractor: ext,
		Sink:      metrics.NewMemoryStore(),
		tracer:    otel.Tracer(tracerName),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessorFor returns a processor sharing every collaborator but using the
// extractor selected by provider. An empty provider returns p itself.
func (p *Processor) ProcessorFor(provider string) (*Processor, error) {
	if provider == "" {
		return p, nil
	}
	if p.Factory == nil {
		return nil, common.ConfigError("provider override requires an extractor factory")
	}
	ext, err := p.Factory.Create(provider, false)
	if err != nil {
		return nil, err
	}
	cp := *p
	cp.Extractor = ext
	return &cp, nil
}

// ProcessInvoiceFile runs the five stages. OCR, extraction and mapping errors
// abort and are returned as is; normalization and validation never fail.
func (p *Processor) ProcessInvoiceFile(ctx context.Context, data []byte, filename string) (*entity.ProcessedInvoice, error) {
	ctx, reqID := common.EnsureRequestID(ctx)
	ctx = common.WithFilename(ctx, filename)
	log := p.logger.With("req_id", reqID, "filename", filename)
	start := time.Now()

	ctx, span := p.tracer.Start(ctx, "pipeline.process",
		trace.WithAttributes(
			attribute.String("invoice.filename", filename),
			attribute.String("invoice.provider", p.Extractor.ProviderName()),
		))
	defer span.End()

	text, err := p.ocrStage(ctx, data, filename)
	if err != nil {
		log.Error("pipeline.ocr.failed", "error", err)
		return nil, failSpan(span, err)
	}
	log.Debug("pipeline.ocr.ok", "chars", len(text))

	raw, err := p.extractStage(ctx, data, filename, text)
	if err != nil {
		log.Error("pipeline.extract.failed", "provider", p.Extractor.ProviderName(), "error", err)
		return nil, failSpan(span, err)
	}

	inv, err := p.mapStage(ctx, raw)
	if err != nil {
		log.Error("pipeline.map.failed", "error", err)
		return nil, failSpan(span, err)
	}

	p.normalizeStage(ctx, &inv)
	res := p.validateStage(ctx, inv)

	span.SetAttributes(attribute.Bool("invoice.valid", res.IsValid))
	log.Info("pipeline.process.ok",
		"provider", p.Extractor.ProviderName(),
		"lines", len(inv.LineItems),
		"valid", res.IsValid,
		"issues", len(res.Issues),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return &entity.ProcessedInvoice{Invoice: inv, Validation: res}, nil
}

func failSpan(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func (p *Processor) ocrStage(ctx context.Context, data []byte, filename string) (string, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.ocr")
	defer span.End()
	text, err := p.OCR.ExtractText(ctx, data, filename)
	if err != nil {
		return "", failSpan(span, err)
	}
	span.SetAttributes(attribute.Int("ocr.chars", len(text)))
	return text, nil
}

// extractStage records metrics for every attempt, successful or not.
func (p *Processor) extractStage(ctx context.Context, data []byte, filename, text string) (entity.RawExtraction, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.extract")
	defer span.End()

	raw, m, err := extractor.Measure(p.Extractor).ExtractWithMetrics(ctx, extractor.Request{
		Data:     data,
		Filename: filename,
		OCRText:  text,
	})
	if p.Sink != nil {
		p.Sink.Record(ctx, m, filename)
	}
	span.SetAttributes(
		attribute.String("extract.provider", m.Provider),
		attribute.Float64("extract.seconds", m.ProcessingTime),
		attribute.Bool("extract.success", m.Success),
	)
	if err != nil {
		return nil, failSpan(span, err)
	}
	return raw, nil
}

func (p *Processor) mapStage(ctx context.Context, raw entity.RawExtraction) (entity.Invoice, error) {
	_, span := p.tracer.Start(ctx, "pipeline.map")
	defer span.End()
	s, err := DecodeShape(raw)
	if err != nil {
		return entity.Invoice{}, failSpan(span, err)
	}
	inv, err := s.Invoice()
	if err != nil {
		return entity.Invoice{}, failSpan(span, err)
	}
	span.SetAttributes(attribute.Int("invoice.lines", len(inv.LineItems)))
	return inv, nil
}

// normalizeStage fills RubroCode in place for matched lines.
func (p *Processor) normalizeStage(ctx context.Context, inv *entity.Invoice) {
	if p.Normalizer == nil || len(inv.LineItems) == 0 {
		return
	}
	_, span := p.tracer.Start(ctx, "pipeline.normalize")
	defer span.End()

	raws := make([]string, len(inv.LineItems))
	for i, li := range inv.LineItems {
		raws[i] = li.RubroRaw
	}
	matched := 0
	for _, r := range p.Normalizer.NormalizeLines(raws) {
		if r.NormalizedCode == nil || r.LineIndex < 0 || r.LineIndex >= len(inv.LineItems) {
			continue
		}
		code := *r.NormalizedCode
		inv.LineItems[r.LineIndex].RubroCode = &code
		matched++
	}
	span.SetAttributes(attribute.Int("rubro.matched", matched))
}

func (p *Processor) validateStage(ctx context.Context, inv entity.Invoice) entity.InvoiceValidationResult {
	_, span := p.tracer.Start(ctx, "pipeline.validate")
	defer span.End()
	res := validator.InvoiceNumericConsistency(inv)
	span.SetAttributes(attribute.Int("validation.issues", len(res.Issues)))
	return res
}
