package llamacloud

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-tracker/internal/common"
	"github.com/joseph-ayodele/invoice-tracker/internal/llm"
)

type fakeCloud struct {
	agents      []agent
	statuses    []string // returned in order; the last one repeats
	result      string
	listCalls   atomic.Int32
	createCalls atomic.Int32
	polls       atomic.Int32
	uploadCT    atomic.Value
}

func (f *fakeCloud) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /extraction/extraction-agents", func(w http.ResponseWriter, r *http.Request) {
		f.listCalls.Add(1)
		assert.Equal(t, "Bearer llx-test", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(f.agents)
	})
	mux.HandleFunc("POST /extraction/extraction-agents", func(w http.ResponseWriter, r *http.Request) {
		f.createCalls.Add(1)
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "invoice_parser", body["name"])
		cfg, _ := body["config"].(map[string]any)
		assert.Equal(t, "PER_DOC", cfg["extraction_target"])
		assert.Equal(t, "BALANCED", cfg["extraction_mode"])
		_ = json.NewEncoder(w).Encode(agent{ID: "agent-new", Name: "invoice_parser"})
	})
	mux.HandleFunc("POST /files", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "extract", r.FormValue("purpose"))
		file, hdr, err := r.FormFile("upload_file")
		if assert.NoError(t, err) {
			_ = file.Close()
			f.uploadCT.Store(hdr.Header.Get("Content-Type"))
		}
		_, _ = io.WriteString(w, `{"id":"file-1"}`)
	})
	mux.HandleFunc("POST /extraction/jobs", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "file-1", body["file_id"])
		assert.NotEmpty(t, body["extraction_agent_id"])
		_, _ = io.WriteString(w, `{"id":"job-1"}`)
	})
	mux.HandleFunc("GET /extraction/jobs/job-1", func(w http.ResponseWriter, r *http.Request) {
		n := int(f.polls.Add(1)) - 1
		if n >= len(f.statuses) {
			n = len(f.statuses) - 1
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"status": f.statuses[n]})
	})
	mux.HandleFunc("GET /extraction/jobs/job-1/result", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, f.result)
	})
	return mux
}

func newTestClient(t *testing.T, f *fakeCloud, interval, timeout time.Duration) *Client {
	t.Helper()
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	c, err := NewClient(Config{
		APIKey:       "llx-test",
		BaseURL:      srv.URL,
		PollInterval: interval,
		PollTimeout:  timeout,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)), WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c
}

var pdfBytes = []byte("%PDF-1.4\n%âãÏÓ\n1 0 obj\n<<>>\nendobj\n")

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(Config{}, nil)
	assert.ErrorIs(t, err, common.ErrConfig)
}

func TestExtractCompleted(t *testing.T) {
	f := &fakeCloud{
		agents:   []agent{{ID: "agent-1", Name: "invoice_parser"}},
		statuses: []string{"PENDING", "SUCCESS"},
		result:   `[{"data":{"seller":{"name":"ACME"}},"extraction_metadata":{}}]`,
	}
	c := newTestClient(t, f, 5*time.Millisecond, time.Second)

	raw, err := c.Extract(context.Background(), llm.ExtractRequest{Data: pdfBytes, Filename: "inv.pdf"})
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc), "single-element list is unwrapped")
	assert.Contains(t, doc, "data")
	assert.Equal(t, int32(2), f.polls.Load())
	assert.Equal(t, int32(0), f.createCalls.Load())
	assert.Equal(t, "application/pdf", f.uploadCT.Load())

	assert.Equal(t, map[string]float64{"overall": 0.85}, c.EstimateConfidence(raw))
}

func TestExtractCreatesAgentOnce(t *testing.T) {
	f := &fakeCloud{
		statuses: []string{"completed"},
		result:   `{"data":{}}`,
	}
	c := newTestClient(t, f, 5*time.Millisecond, time.Second)

	for range 2 {
		raw, err := c.Extract(context.Background(), llm.ExtractRequest{Data: pdfBytes, Filename: "inv.pdf"})
		require.NoError(t, err)
		assert.Nil(t, c.EstimateConfidence(raw))
	}
	assert.Equal(t, int32(1), f.listCalls.Load())
	assert.Equal(t, int32(1), f.createCalls.Load())
}

func TestExtractJobFailed(t *testing.T) {
	for _, status := range []string{"failed", "cancelled", "ERROR"} {
		t.Run(status, func(t *testing.T) {
			f := &fakeCloud{agents: []agent{{ID: "a", Name: "invoice_parser"}}, statuses: []string{"PENDING", status}}
			c := newTestClient(t, f, 5*time.Millisecond, time.Second)

			_, err := c.Extract(context.Background(), llm.ExtractRequest{Data: pdfBytes, Filename: "inv.pdf"})
			assert.ErrorIs(t, err, common.ErrUpstream)
		})
	}
}

func TestExtractTimesOut(t *testing.T) {
	f := &fakeCloud{agents: []agent{{ID: "a", Name: "invoice_parser"}}, statuses: []string{"PENDING"}}
	interval, timeout := 20*time.Millisecond, 110*time.Millisecond
	c := newTestClient(t, f, interval, timeout)

	start := time.Now()
	_, err := c.Extract(context.Background(), llm.ExtractRequest{Data: pdfBytes, Filename: "inv.pdf"})
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrUpstream)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.GreaterOrEqual(t, elapsed, timeout)

	polls := f.polls.Load()
	assert.GreaterOrEqual(t, polls, int32(3), "polls at the fixed interval")
	assert.LessOrEqual(t, polls, int32(timeout/interval)+2)
}

func TestExtractCallerCancel(t *testing.T) {
	f := &fakeCloud{agents: []agent{{ID: "a", Name: "invoice_parser"}}, statuses: []string{"PENDING"}}
	c := newTestClient(t, f, 10*time.Millisecond, 10*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Extract(ctx, llm.ExtractRequest{Data: pdfBytes, Filename: "inv.pdf"})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, common.ErrUpstream)
}

func TestExtractRequiresData(t *testing.T) {
	c, err := NewClient(Config{APIKey: "k"}, nil)
	require.NoError(t, err)
	_, err = c.Extract(context.Background(), llm.ExtractRequest{Filename: "x.pdf"})
	assert.ErrorIs(t, err, common.ErrInput)
}

func TestUploadContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", uploadContentType(pdfBytes, "x.bin"))
	assert.Equal(t, "application/pdf", uploadContentType([]byte("??"), "X.PDF"))
	assert.Equal(t, "image/jpeg", uploadContentType([]byte("??"), "scan.jpg"))
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	assert.Equal(t, "image/png", uploadContentType(png, "scan.jpg"))
}
