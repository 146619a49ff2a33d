package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/joseph-ayodele/invoice-tracker/internal/async"
	"github.com/joseph-ayodele/invoice-tracker/internal/common"
	"github.com/joseph-ayodele/invoice-tracker/internal/entity"
	"github.com/joseph-ayodele/invoice-tracker/internal/pipeline"
)

// Archiver stores the source document and its result somewhere durable.
type Archiver interface {
	Store(ctx context.Context, id, filename string, data []byte, processed *entity.ProcessedInvoice) (string, error)
}

// Outcome is the JSON document written to the outbox for every inbox file.
type Outcome struct {
	Filename    string                   `json:"filename"`
	RequestID   string                   `json:"request_id"`
	Provider    string                   `json:"provider,omitempty"`
	SHA256      string                   `json:"sha256"`
	ProcessedAt time.Time                `json:"processed_at"`
	Result      *entity.ProcessedInvoice `json:"result,omitempty"`
	Error       string                   `json:"error,omitempty"`
	ArchiveKey  string                   `json:"archive_key,omitempty"`
}

// Inbox handles queued inbox files: it runs the pipeline and writes
// <outbox>/<name>.json. Identical content is processed once per process.
type Inbox struct {
	proc    *pipeline.Processor
	outbox  string
	archive Archiver
	logger  *slog.Logger

	mu   sync.Mutex
	seen map[string]struct{}
}

type InboxOption func(*Inbox)

func WithArchiver(a Archiver) InboxOption {
	return func(i *Inbox) { i.archive = a }
}

// NewInbox builds the handler. An empty outbox writes results beside the source file.
func NewInbox(proc *pipeline.Processor, outbox string, logger *slog.Logger, opts ...InboxOption) *Inbox {
	if logger == nil {
		logger = slog.Default()
	}
	i := &Inbox{proc: proc, outbox: outbox, logger: logger, seen: map[string]struct{}{}}
	for _, o := range opts {
		o(i)
	}
	return i
}

var _ async.Handler = (*Inbox)(nil)

func (i *Inbox) Handle(ctx context.Context, job async.Job) error {
	data, err := os.ReadFile(job.Path)
	if errors.Is(err, fs.ErrNotExist) {
		// removed between the event and the job
		return common.NotFoundError("inbox file "+job.Path, err)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", job.Path, err)
	}
	sum := sha256.Sum256(data)
	digest := hex.EncodeToString(sum[:])
	if !i.markSeen(digest) {
		i.logger.Info("ingest.inbox.duplicate", "path", job.Path, "sha256", digest)
		return nil
	}

	ctx, rid := common.EnsureRequestID(ctx)
	filename := filepath.Base(job.Path)
	out := Outcome{
		Filename:  filename,
		RequestID: rid,
		Provider:  job.Provider,
		SHA256:    digest,
	}

	proc, err := i.proc.ProcessorFor(job.Provider)
	if err == nil {
		out.Result, err = proc.ProcessInvoiceFile(ctx, data, filename)
	}
	if err != nil {
		// a failed file is retried if it shows up again
		i.forget(digest)
		out.Error = err.Error()
	} else if i.archive != nil {
		key, aerr := i.archive.Store(ctx, out.RequestID, filename, data, out.Result)
		if aerr != nil {
			i.logger.Warn("ingest.inbox.archive_failed", "path", job.Path, "error", aerr)
		}
		out.ArchiveKey = key
	}
	out.ProcessedAt = time.Now().UTC()

	dest, werr := i.write(job.Path, out)
	if werr != nil {
		return werr
	}
	if err != nil {
		return fmt.Errorf("process %s: %w", filename, err)
	}
	i.logger.Info("ingest.inbox.ok", "path", job.Path, "result", dest)
	return nil
}

func (i *Inbox) markSeen(digest string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, ok := i.seen[digest]; ok {
		return false
	}
	i.seen[digest] = struct{}{}
	return true
}

func (i *Inbox) forget(digest string) {
	i.mu.Lock()
	delete(i.seen, digest)
	i.mu.Unlock()
}

// ResultPath is where the outcome for src is written.
func (i *Inbox) ResultPath(src string) string {
	dir := i.outbox
	if dir == "" {
		dir = filepath.Dir(src)
	}
	base := filepath.Base(src)
	return filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base))+".json")
}

func (i *Inbox) write(src string, out Outcome) (string, error) {
	dest := i.ResultPath(src)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", common.InternalError("create outbox", err)
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", common.InternalError("encode outcome", err)
	}
	tmp := dest + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return "", common.InternalError("write outcome", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		return "", common.InternalError("write outcome", err)
	}
	return dest, nil
}

// Feed enqueues every path from events until ctx is done or events closes.
func Feed(ctx context.Context, events <-chan string, q async.Queue, provider string, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	for {
		select {
		case <-ctx.Done():
			return
		case p, ok := <-events:
			if !ok {
				return
			}
			job := async.Job{Path: p, Provider: provider, SubmittedAt: time.Now()}
			if err := q.Enqueue(ctx, job); err != nil {
				logger.Warn("ingest.feed.enqueue_failed", "path", p, "error", err)
			}
		}
	}
}
