package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/invoice-tracker/internal/common"
)

// minTextLayerChars is the smallest embedded text layer trusted over raster OCR.
const minTextLayerChars = 20

func (e *Extractor) extractPDF(ctx context.Context, data []byte) (string, string, error) {
	pages, err := e.textLayer(data)
	if err != nil {
		e.logger.Debug("ocr.pdf.text_layer_unavailable", "error", err)
	} else if text := JoinPages(pages); countNonSpace(text) >= minTextLayerChars {
		return text, "pdf-text", nil
	}

	pages, err = e.rasterize(ctx, data)
	if err != nil {
		return "", "pdf-ocr", err
	}
	return JoinPages(pages), "pdf-ocr", nil
}

// pdfTextLayer reads the embedded text of every page.
func pdfTextLayer(data []byte) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf text layer: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	n := r.NumPage()
	if n == 0 {
		return nil, fmt.Errorf("pdf has no pages")
	}
	for i := 1; i <= n; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		fonts := make(map[string]*pdf.Font)
		for _, name := range page.Fonts() {
			f := page.Font(name)
			fonts[name] = &f
		}
		text, err := page.GetPlainText(fonts)
		if err != nil {
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}

// rasterize renders the PDF with pdftoppm and OCRs each page image in order.
func (e *Extractor) rasterize(ctx context.Context, data []byte) ([]string, error) {
	tmpDir, err := os.MkdirTemp("", "inv-pp-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			e.logger.Warn("ocr.pdf.cleanup_failed", "dir", tmpDir, "error", err)
		}
	}()

	in := filepath.Join(tmpDir, "in.pdf")
	if err := os.WriteFile(in, data, 0o600); err != nil {
		return nil, fmt.Errorf("write temp pdf: %w", err)
	}

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", in, prefix)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, common.OCRError("pdftoppm failed: "+strings.TrimSpace(truncate(string(errb), 512)), err)
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sortPages(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return nil, common.OCRError("pdf appears to have no pages", nil)
	}

	pages := make([]string, 0, len(matches))
	for _, img := range matches {
		txt, err := e.tesseract(ctx, img)
		if err != nil {
			return nil, err
		}
		pages = append(pages, txt)
	}
	return pages, nil
}

// sortPages orders page-N.png by N; pdftoppm zero-pads only to the page count width.
func sortPages(paths []string) {
	sort.SliceStable(paths, func(i, j int) bool {
		if len(paths[i]) != len(paths[j]) {
			return len(paths[i]) < len(paths[j])
		}
		return paths[i] < paths[j]
	})
}

func countNonSpace(s string) int {
	n := 0
	for _, r := range s {
		if r != ' ' && r != '\n' {
			n++
		}
	}
	return n
}
