// Package sqldb implements the domain persistence contracts over a
// transactional SQL engine. Two backends are supported: PostgreSQL through
// the pgx stdlib driver and embedded SQLite through modernc.org/sqlite. The
// backend is selected once at startup via configuration; everything above
// this package is backend-agnostic.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/parlohq/parlo-backend/internal/domain"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"             // pure go sqlite driver
)

// Store wraps the pooled database handles and hands out units of work.
// Concurrent callers each acquire independent sessions; the engine itself
// serializes conflicting writes. Write-intent sessions take the engine's
// write lock at begin where the engine needs that (sqlite), so contending
// writers queue on the busy timeout instead of failing mid-transaction;
// read-only sessions never take it.
type Store struct {
	readDB  *sql.DB
	writeDB *sql.DB
	dia     dialect
	log     zerolog.Logger
}

var _ domain.Store = (*Store)(nil)

// Open connects to the configured backend, verifies connectivity and
// applies the schema idempotently.
func Open(ctx context.Context, driver, dsn string, logger zerolog.Logger) (*Store, error) {
	dia, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	readDB, err := sql.Open(dia.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", driver, err)
	}
	if err := readDB.PingContext(ctx); err != nil {
		_ = readDB.Close()
		return nil, fmt.Errorf("ping %s store: %w", driver, err)
	}
	writeDB := readDB
	if wdsn := dia.writeDSN(dsn); wdsn != dsn {
		writeDB, err = sql.Open(dia.driverName(), wdsn)
		if err != nil {
			_ = readDB.Close()
			return nil, fmt.Errorf("open %s store for writes: %w", driver, err)
		}
		if err := writeDB.PingContext(ctx); err != nil {
			_ = writeDB.Close()
			_ = readDB.Close()
			return nil, fmt.Errorf("ping %s store for writes: %w", driver, err)
		}
	}
	if err := migrate(ctx, writeDB); err != nil {
		_ = writeDB.Close()
		if readDB != writeDB {
			_ = readDB.Close()
		}
		return nil, err
	}
	logger.Info().Str("driver", driver).Msg("store opened")
	return &Store{readDB: readDB, writeDB: writeDB, dia: dia, log: logger}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// DB exposes the underlying write handle for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.writeDB }

// Close releases the connection pools.
func (s *Store) Close() error {
	err := s.writeDB.Close()
	if s.readDB != s.writeDB {
		if rerr := s.readDB.Close(); err == nil {
			err = rerr
		}
	}
	return err
}

// Begin acquires a new write-intent session. Failure to acquire aborts the
// operation with no partial state created.
func (s *Store) Begin(ctx context.Context) (domain.UnitOfWork, error) {
	return s.begin(ctx, s.writeDB)
}

// BeginRead acquires a new read-only session. It never queues behind open
// writers; repositories obtained from it must not write.
func (s *Store) BeginRead(ctx context.Context) (domain.UnitOfWork, error) {
	return s.begin(ctx, s.readDB)
}

func (s *Store) begin(ctx context.Context, db *sql.DB) (domain.UnitOfWork, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, wrapSessionErr(s.dia, "begin transaction", err)
	}
	return &UnitOfWork{tx: tx, dia: s.dia, log: s.log}, nil
}

// WithinTx runs fn inside one write-intent unit of work: commit when fn
// returns nil, rollback otherwise. The session is released on every exit
// path, including panics unwinding through fn.
func (s *Store) WithinTx(ctx context.Context, fn func(domain.RepositoryFactory) error) error {
	return s.within(ctx, s.writeDB, fn)
}

// WithinReadTx runs fn inside one read-only unit of work with the same
// release guarantees as WithinTx.
func (s *Store) WithinReadTx(ctx context.Context, fn func(domain.RepositoryFactory) error) error {
	return s.within(ctx, s.readDB, fn)
}

func (s *Store) within(ctx context.Context, db *sql.DB, fn func(domain.RepositoryFactory) error) error {
	uow, err := s.begin(ctx, db)
	if err != nil {
		return err
	}
	defer func() { _ = uow.Close() }()
	if err := fn(uow.Repositories()); err != nil {
		return err
	}
	return uow.Commit()
}

// wrapSessionErr classifies failures from session-level operations, where
// constraint violations cannot occur.
func wrapSessionErr(dia dialect, op string, err error) error {
	if cls := dia.classify(err); cls.kind == kindTransient {
		return domain.NewTransientStoreError(err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return domain.NewTransientStoreError(err)
	}
	return domain.NewPersistenceError(op, err)
}
