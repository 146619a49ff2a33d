package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-tracker/internal/async"
	"github.com/joseph-ayodele/invoice-tracker/internal/common"
	"github.com/joseph-ayodele/invoice-tracker/internal/ocr"
)

func baseConfig(t *testing.T) *common.Config {
	t.Helper()
	dir := t.TempDir()
	catalog := filepath.Join(dir, "rubros.csv")
	require.NoError(t, os.WriteFile(catalog, []byte("code,name\nS01,Servicio de consultoría\n"), 0o600))

	cfg := &common.Config{}
	cfg.Metrics.DSN = "file:" + dir + "/metrics.db"
	cfg.Rubro.NomenclatorPath = catalog
	cfg.Extractor.Provider = "mock"
	return cfg
}

func TestBuildRunsPipeline(t *testing.T) {
	reg := prometheus.NewRegistry()
	st, err := Build(context.Background(), baseConfig(t), nil,
		WithRegisterer(reg),
		WithTextExtractor(ocr.Static{Text: ocr.DemoText}))
	require.NoError(t, err)
	defer st.Close()

	assert.Nil(t, st.Archive)
	assert.Equal(t, "mock", st.Processor.Extractor.ProviderName())

	out, err := st.Processor.ProcessInvoiceFile(context.Background(), []byte("x"), "a.pdf")
	require.NoError(t, err)
	require.Len(t, out.Invoice.LineItems, 1)
	require.NotNil(t, out.Invoice.LineItems[0].RubroCode)
	assert.Equal(t, "S01", *out.Invoice.LineItems[0].RubroCode)

	stats, err := st.Processor.Sink.StatsByProvider(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats["mock"].TotalExtractions)
	assert.Equal(t, 1, testutil.CollectAndCount(reg, "invoice_extractions_total"))
}

func TestBuildFallbackAndAutoDetect(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Extractor.Provider = ""
	cfg.Extractor.AutoDetect = true
	cfg.Extractor.Fallback = true
	cfg.Metrics.DSN = ""

	st, err := Build(context.Background(), cfg, nil,
		WithRegisterer(nil),
		WithTextExtractor(ocr.Static{Text: ocr.DemoText}))
	require.NoError(t, err)
	defer st.Close()

	// no credentials, so auto-detection lands on the OCR pattern extractor
	assert.Equal(t, "tesseract_ocr", st.Processor.Extractor.ProviderName())
}

func TestBuildErrors(t *testing.T) {
	t.Run("missing credentials", func(t *testing.T) {
		cfg := baseConfig(t)
		cfg.Extractor.Provider = "chat-completion"
		_, err := Build(context.Background(), cfg, nil, WithRegisterer(nil))
		assert.ErrorIs(t, err, common.ErrConfig)
	})
	t.Run("missing nomenclator", func(t *testing.T) {
		cfg := baseConfig(t)
		cfg.Rubro.NomenclatorPath = filepath.Join(t.TempDir(), "nope.csv")
		_, err := Build(context.Background(), cfg, nil, WithRegisterer(nil))
		assert.Error(t, err)
	})
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger("warn", &buf)
	l.Info("hidden")
	l.Warn("shown", "k", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	buf.Reset()
	NewLogger("bogus", &buf).Info("fallback")
	assert.Contains(t, buf.String(), "fallback")
}

func TestNewQueueUsesServerSettings(t *testing.T) {
	deadlines := make(chan time.Duration, 2)
	h := async.HandlerFunc(func(ctx context.Context, _ async.Job) error {
		dl, ok := ctx.Deadline()
		assert.True(t, ok)
		deadlines <- time.Until(dl)
		return nil
	})
	q := NewQueue(common.ServerConfig{Workers: 1, QueueSize: 1, JobTimeout: 30 * time.Second}, h, nil)
	require.NoError(t, q.Enqueue(context.Background(), async.Job{Path: "a.pdf"}))
	require.NoError(t, q.Enqueue(context.Background(), async.Job{Path: "b.pdf"}))
	q.Shutdown(context.Background())

	close(deadlines)
	n := 0
	for d := range deadlines {
		n++
		assert.LessOrEqual(t, d, 30*time.Second)
		assert.Greater(t, d, 20*time.Second)
	}
	assert.Equal(t, 2, n)
}
