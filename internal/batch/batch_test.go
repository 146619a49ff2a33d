package batch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-tracker/internal/common"
	"github.com/joseph-ayodele/invoice-tracker/internal/entity"
	"github.com/joseph-ayodele/invoice-tracker/internal/extractor"
	"github.com/joseph-ayodele/invoice-tracker/internal/ocr"
	"github.com/joseph-ayodele/invoice-tracker/internal/pipeline"
)

type countingArchive struct {
	mu  sync.Mutex
	ids map[string]string
}

func (a *countingArchive) Store(_ context.Context, id, filename string, _ []byte, _ *entity.ProcessedInvoice) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ids[filename] = id
	return id + "/" + filename, nil
}

func writeDocs(t *testing.T, names ...string) []string {
	t.Helper()
	dir := t.TempDir()
	var out []string
	for _, n := range names {
		p := filepath.Join(dir, n)
		require.NoError(t, os.WriteFile(p, []byte(n), 0o600))
		out = append(out, p)
	}
	return out
}

func newProc() *pipeline.Processor {
	return pipeline.NewProcessor(ocr.Static{Text: ocr.DemoText}, extractor.NewOCRPattern(), nil,
		pipeline.WithFactory(extractor.NewFactory(nil, nil)))
}

func TestRun(t *testing.T) {
	paths := writeDocs(t, "a.pdf", "b.png", "c.jpg")
	paths = append(paths, filepath.Join(filepath.Dir(paths[0]), "missing.pdf"))
	arch := &countingArchive{ids: map[string]string{}}

	r := NewRunner(newProc(), nil, WithWorkers(2), WithArchiver(arch))
	rows, sum, err := r.Run(context.Background(), paths, "")
	require.NoError(t, err)

	require.Len(t, rows, 4)
	assert.Equal(t, []string{"a.pdf", "b.png", "c.jpg", "missing.pdf"},
		[]string{rows[0].Filename, rows[1].Filename, rows[2].Filename, rows[3].Filename})
	for _, row := range rows[:3] {
		require.NotNil(t, row.Invoice)
		assert.Equal(t, 1190.0, row.Invoice.Invoice.Totals.Total)
	}
	assert.Nil(t, rows[3].Invoice)
	assert.NotEmpty(t, rows[3].Error)

	assert.Equal(t, Summary{Total: 4, Processed: 3, Failed: 1, Elapsed: sum.Elapsed}, sum)
	assert.Len(t, arch.ids, 3)
	assert.NotEqual(t, arch.ids["a.pdf"], arch.ids["b.png"])
}

func TestRunProviderOverride(t *testing.T) {
	paths := writeDocs(t, "a.pdf")
	r := NewRunner(newProc(), nil)

	rows, _, err := r.Run(context.Background(), paths, "mock")
	require.NoError(t, err)
	require.NotNil(t, rows[0].Invoice)
	assert.Equal(t, "Calle Demo 123", rows[0].Invoice.Invoice.Provider.Address)

	_, _, err = r.Run(context.Background(), paths, "llm-cloud")
	assert.ErrorIs(t, err, common.ErrConfig)
}

func TestRunCancelled(t *testing.T) {
	paths := writeDocs(t, "a.pdf", "b.pdf")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewRunner(newProc(), nil).Run(ctx, paths, "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunEmpty(t *testing.T) {
	rows, sum, err := NewRunner(newProc(), nil).Run(context.Background(), nil, "")
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, 0, sum.Total)
}
