package metrics

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-tracker/internal/entity"
)

const table = "extraction_metrics"

// SQLStore persists records in SQLite or Postgres.
type SQLStore struct {
	drv     *entsql.Driver
	closeFn func()
	logger  *slog.Logger

	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// Open connects to dsn and creates the metrics table when missing.
// postgres:// and postgresql:// DSNs use pgx, anything else is a SQLite DSN.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*SQLStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	drv, closeFn, err := openDriver(ctx, dsn, logger)
	if err != nil {
		logger.Error("metrics.db.open_failed", "error", err)
		return nil, err
	}
	s := &SQLStore{drv: drv, closeFn: closeFn, logger: logger, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		closeFn()
		return nil, err
	}
	logger.Info("metrics.db.ready", "dialect", drv.Dialect())
	return s, nil
}

func (s *SQLStore) Close() {
	if s.closeFn != nil {
		s.closeFn()
	}
}

func (s *SQLStore) builder() *entsql.DialectBuilder {
	return entsql.Dialect(s.drv.Dialect())
}

// ddl is valid for both SQLite and Postgres. ent's builder has no CREATE TABLE.
var ddl = []string{
	`CREATE TABLE IF NOT EXISTS ` + table + ` (
	id TEXT PRIMARY KEY,
	recorded_at BIGINT NOT NULL,
	filename TEXT NOT NULL,
	provider TEXT NOT NULL,
	processing_time DOUBLE PRECISION NOT NULL,
	success BOOLEAN NOT NULL,
	confidence TEXT,
	overall DOUBLE PRECISION,
	error_message TEXT
)`,
	`CREATE INDEX IF NOT EXISTS ` + table + `_recorded_at_idx ON ` + table + ` (recorded_at)`,
}

func (s *SQLStore) migrate(ctx context.Context) error {
	for _, stmt := range ddl {
		if err := s.drv.Exec(ctx, stmt, []any{}, nil); err != nil {
			return fmt.Errorf("create %s table: %w", table, err)
		}
	}
	return nil
}

// nextTimestamp is strictly increasing so Recent has a total order.
func (s *SQLStore) nextTimestamp() int64 {
	ts := s.now().UnixNano()
	if ts <= s.last {
		ts = s.last + 1
	}
	s.last = ts
	return ts
}

func (s *SQLStore) Record(ctx context.Context, m entity.ExtractionMetrics, filename string) {
	var (
		conf    sql.NullString
		overall sql.NullFloat64
		errMsg  sql.NullString
	)
	if m.Confidence != nil {
		b, err := json.Marshal(m.Confidence)
		if err == nil {
			conf = sql.NullString{String: string(b), Valid: true}
		}
	}
	if v, ok := m.Overall(); ok {
		overall = sql.NullFloat64{Float64: v, Valid: true}
	}
	if m.ErrorMessage != "" {
		errMsg = sql.NullString{String: m.ErrorMessage, Valid: true}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	query, args := s.builder().Insert(table).
		Columns("id", "recorded_at", "filename", "provider", "processing_time", "success", "confidence", "overall", "error_message").
		Values(uuid.NewString(), s.nextTimestamp(), filename, m.Provider, m.ProcessingTime, m.Success, conf, overall, errMsg).
		Query()
	if _, err := s.drv.DB().ExecContext(ctx, query, args...); err != nil {
		s.logger.Error("metrics.record.failed", "provider", m.Provider, "filename", filename, "error", err)
	}
}

func (s *SQLStore) StatsByProvider(ctx context.Context) (map[string]entity.ProviderStats, error) {
	query, args := s.builder().
		Select("provider", "processing_time", "success", "overall").
		From(entsql.Table(table)).
		Query()
	rows, err := s.drv.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query provider stats: %w", err)
	}
	defer rows.Close()

	var ms []entity.ExtractionMetrics
	for rows.Next() {
		var (
			m       entity.ExtractionMetrics
			overall sql.NullFloat64
		)
		if err := rows.Scan(&m.Provider, &m.ProcessingTime, &m.Success, &overall); err != nil {
			return nil, fmt.Errorf("scan provider stats: %w", err)
		}
		if overall.Valid {
			m.Confidence = map[string]float64{entity.ConfidenceOverall: overall.Float64}
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate provider stats: %w", err)
	}
	return aggregate(ms), nil
}

func (s *SQLStore) Recent(ctx context.Context, limit int) ([]entity.ExtractionRecord, error) {
	sel := s.builder().
		Select("recorded_at", "filename", "provider", "processing_time", "success", "confidence", "error_message").
		From(entsql.Table(table)).
		OrderBy(entsql.Desc("recorded_at"))
	if limit > 0 {
		sel = sel.Limit(limit)
	}
	query, args := sel.Query()
	rows, err := s.drv.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent extractions: %w", err)
	}
	defer rows.Close()

	var out []entity.ExtractionRecord
	for rows.Next() {
		var (
			r      entity.ExtractionRecord
			ts     int64
			conf   sql.NullString
			errMsg sql.NullString
		)
		if err := rows.Scan(&ts, &r.Filename, &r.Provider, &r.ProcessingTime, &r.Success, &conf, &errMsg); err != nil {
			return nil, fmt.Errorf("scan recent extraction: %w", err)
		}
		r.Timestamp = time.Unix(0, ts).UTC()
		r.ErrorMessage = errMsg.String
		if conf.Valid {
			if err := json.Unmarshal([]byte(conf.String), &r.Confidence); err != nil {
				s.logger.Warn("metrics.recent.bad_confidence", "error", err)
			}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent extractions: %w", err)
	}
	// newest first from the query; callers get oldest first
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (s *SQLStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	query, args := s.builder().Delete(table).Query()
	if _, err := s.drv.DB().ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear metrics: %w", err)
	}
	return nil
}
