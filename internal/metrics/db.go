package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const dialTimeout = 10 * time.Second

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// openDriver connects to Postgres through a pgx pool or to SQLite through
// modernc.org/sqlite and wraps the handle for ent's SQL builder.
func openDriver(ctx context.Context, dsn string, logger *slog.Logger) (*entsql.Driver, func(), error) {
	if isPostgres(dsn) {
		logger.Info("metrics.db.connecting", "driver", "pgx")
		pc, err := pgxpool.ParseConfig(dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("parse metrics dsn: %w", err)
		}
		pc.ConnConfig.RuntimeParams["application_name"] = "invoice-tracker"

		ctx, cancel := context.WithTimeout(ctx, dialTimeout)
		defer cancel()
		pool, err := pgxpool.NewWithConfig(ctx, pc)
		if err != nil {
			return nil, nil, fmt.Errorf("connect metrics db: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ping metrics db: %w", err)
		}
		db := stdlib.OpenDBFromPool(pool)
		closeFn := func() {
			_ = db.Close()
			pool.Close()
		}
		return entsql.OpenDB(dialect.Postgres, db), closeFn, nil
	}

	logger.Info("metrics.db.connecting", "driver", "sqlite", "dsn", dsn)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open metrics db: %w", err)
	}
	// One connection keeps :memory: databases alive and serializes writers.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping metrics db: %w", err)
	}
	return entsql.OpenDB(dialect.SQLite, db), func() { _ = db.Close() }, nil
}
