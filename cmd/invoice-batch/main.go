package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joseph-ayodele/invoice-tracker/internal/app"
	"github.com/joseph-ayodele/invoice-tracker/internal/batch"
	"github.com/joseph-ayodele/invoice-tracker/internal/common"
	"github.com/joseph-ayodele/invoice-tracker/internal/export"
	"github.com/joseph-ayodele/invoice-tracker/internal/ingest"
	"github.com/joseph-ayodele/invoice-tracker/internal/ocr"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	os.Exit(run())
}

// run returns the exit code so deferred cleanup runs before the process exits.
func run() int {
	var (
		dir      = flag.String("dir", "", "directory with invoices to process (required)")
		out      = flag.String("out", "", "output XLSX path (defaults to <dir>/../invoices.xlsx)")
		provider = flag.String("provider", "", "extractor override: llm-cloud, chat-completion, ocr or mock")
		workers  = flag.Int("workers", 0, "concurrent documents (defaults to WORKERS)")
		hidden   = flag.Bool("hidden", false, "include hidden files and directories")
		demo     = flag.Bool("demo", false, "skip tesseract and use the built-in demo OCR text")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		return 1
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(filepath.Clean(*dir)), "invoices.xlsx")
	}

	cfg, err := common.LoadConfig()
	if err != nil {
		printError("Error: %v\n", err)
		return 2
	}
	if *workers < 1 {
		*workers = cfg.Server.Workers
	}
	logger := app.NewLogger(cfg.LogLevel, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var buildOpts []app.Option
	if *demo {
		buildOpts = append(buildOpts, app.WithTextExtractor(ocr.Static{Text: ocr.DemoText}))
	}
	st, err := app.Build(ctx, cfg, logger, buildOpts...)
	if err != nil {
		printError("Error: %v\n", err)
		return 1
	}
	defer st.Close()

	paths, err := ingest.Discover(*dir, !*hidden)
	if err != nil {
		printError("Error: %v\n", err)
		return 1
	}
	logger.Info("batch.discovered", "dir", *dir, "files", len(paths))

	runOpts := []batch.Option{batch.WithWorkers(*workers)}
	if st.Archive != nil {
		runOpts = append(runOpts, batch.WithArchiver(st.Archive))
	}
	rows, sum, err := batch.NewRunner(st.Processor, logger, runOpts...).Run(ctx, paths, *provider)
	if err != nil {
		printError("Error: %v\n", err)
		return 1
	}

	wb, err := export.NewService(logger).InvoicesXLSX(ctx, rows)
	if err != nil {
		printError("Error: export: %v\n", err)
		return 1
	}
	if err := os.WriteFile(*out, wb, 0o644); err != nil {
		printError("Error: write %s: %v\n", *out, err)
		return 1
	}

	fmt.Printf("processed %d/%d invoices in %s (%d failed) -> %s\n",
		sum.Processed, sum.Total, sum.Elapsed.Round(time.Millisecond), sum.Failed, *out)
	if sum.Failed > 0 {
		return 3
	}
	return 0
}
