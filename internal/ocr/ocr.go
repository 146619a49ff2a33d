package ocr

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/joseph-ayodele/invoice-tracker/constants"
	"github.com/joseph-ayodele/invoice-tracker/internal/common"
)

//go:generate mockgen -destination=../mocks/ocr_mock.go -package=mocks github.com/joseph-ayodele/invoice-tracker/internal/ocr TextExtractor

// TextExtractor turns a document into plain text. Lines are whitespace-normalized
// and pages of multi-page documents are separated by a blank line.
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte, filename string) (string, error)
}

type Config struct {
	Tesseract string // binary name or absolute path; if empty -> "tesseract"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"

	Lang        string // default "spa+eng"
	DPI         int    // rasterization DPI for scanned PDFs, default 300
	MaxPages    int    // 0 = no limit
	TessdataDir string
}

// ConfigFrom adapts the application OCR settings.
func ConfigFrom(c common.OCRConfig) Config {
	return Config{
		Tesseract:   c.TesseractBin,
		Pdftoppm:    c.PdfToPpmBin,
		Lang:        c.Lang,
		DPI:         c.DPI,
		MaxPages:    c.MaxPages,
		TessdataDir: c.TessdataDir,
	}
}

// Extractor is the tesseract-backed TextExtractor. PDFs with an embedded text
// layer are read directly; scanned PDFs are rasterized and OCR'd page by page.
type Extractor struct {
	cfg       Config
	runner    Runner
	textLayer func(data []byte) ([]string, error)
	logger    *slog.Logger
}

type Option func(*Extractor)

// WithRunner replaces the command runner (tests stub tesseract/pdftoppm).
func WithRunner(r Runner) Option {
	return func(e *Extractor) { e.runner = r }
}

func NewExtractor(cfg Config, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Lang == "" {
		cfg.Lang = "spa+eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	e := &Extractor{cfg: cfg, runner: execRunner{logger: logger}, textLayer: pdfTextLayer, logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractText picks a strategy based on the file extension.
func (e *Extractor) ExtractText(ctx context.Context, data []byte, filename string) (string, error) {
	start := time.Now()
	ext := strings.ToLower(filepath.Ext(filename))
	format, ok := constants.FormatForExt(ext)
	if !ok {
		e.logger.Error("ocr.unsupported_extension", "filename", filename, "ext", ext)
		return "", common.UnsupportedFormatError(ext)
	}
	e.checkContent(data, filename, format)

	var (
		text   string
		method string
		err    error
	)
	switch format {
	case constants.FormatPDF:
		text, method, err = e.extractPDF(ctx, data)
	default:
		method = "image-ocr"
		text, err = e.extractImage(ctx, data, ext)
	}
	if err != nil {
		e.logger.Error("ocr.extract.failed", "filename", filename, "method", method, "error", err)
		return "", err
	}

	e.logger.Info("ocr.extract.ok",
		"filename", filename,
		"method", method,
		"chars", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}

// checkContent logs when the bytes do not look like the claimed format.
// Routing stays extension based.
func (e *Extractor) checkContent(data []byte, filename string, format constants.FileFormat) {
	mt := mimetype.Detect(data)
	switch format {
	case constants.FormatPDF:
		if !mt.Is("application/pdf") {
			e.logger.Warn("ocr.content_type.mismatch", "filename", filename, "expected", "application/pdf", "detected", mt.String())
		}
	case constants.FormatImage:
		if !strings.HasPrefix(mt.String(), "image/") {
			e.logger.Warn("ocr.content_type.mismatch", "filename", filename, "expected", "image/*", "detected", mt.String())
		}
	}
}
