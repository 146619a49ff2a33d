package ocr

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joseph-ayodele/invoice-tracker/internal/common"
)

func (e *Extractor) extractImage(ctx context.Context, data []byte, ext string) (string, error) {
	f, err := os.CreateTemp("", "inv-img-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create temp image: %w", err)
	}
	defer func() { _ = os.Remove(f.Name()) }()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write temp image: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close temp image: %w", err)
	}

	txt, err := e.tesseract(ctx, f.Name())
	if err != nil {
		return "", err
	}
	return Normalize(txt), nil
}

// tesseract <file> stdout -l <lang> [--tessdata-dir dir]
func (e *Extractor) tesseract(ctx context.Context, path string) (string, error) {
	args := []string{path, "stdout", "-l", e.cfg.Lang}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", common.OCRError("tesseract failed: "+strings.TrimSpace(truncate(string(errb), 512)), err)
	}
	return string(out), nil
}
