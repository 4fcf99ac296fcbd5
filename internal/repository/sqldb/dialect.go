package sqldb

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	sqlite "modernc.org/sqlite"
)

// Driver names accepted by Open.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type errKind int

const (
	kindUnknown errKind = iota
	kindDuplicate
	kindTransient
)

// errClass is the dialect-neutral classification of a driver failure.
// column carries the offending column for duplicates, when the engine
// reports one.
type errClass struct {
	kind   errKind
	column string
}

// dialect abstracts the engine differences that leak into the repository
// layer: registered driver name, placeholder style, pagination quirks and
// driver error classification.
type dialect interface {
	driverName() string
	rebind(query string) string
	noLimit() string
	classify(err error) errClass
	// writeDSN returns the DSN write-intent sessions connect with. It may
	// equal dsn when the engine needs no read/write distinction.
	writeDSN(dsn string) string
}

func dialectFor(driverName string) (dialect, error) {
	switch driverName {
	case DriverPostgres:
		return postgresDialect{}, nil
	case DriverSQLite:
		return sqliteDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driverName)
	}
}

type postgresDialect struct{}

func (postgresDialect) driverName() string { return "pgx" }

// rebind converts ? placeholders to the $n form pgx expects. Queries in
// this package never contain literal question marks.
func (postgresDialect) rebind(query string) string {
	if !strings.ContainsRune(query, '?') {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func (postgresDialect) noLimit() string { return "ALL" }

// MVCC handles reader/writer concurrency; one pool serves both.
func (postgresDialect) writeDSN(dsn string) string { return dsn }

func (postgresDialect) classify(err error) errClass {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505":
			return errClass{kind: kindDuplicate, column: columnFromConstraint(pgErr.ConstraintName)}
		case strings.HasPrefix(pgErr.Code, "40"),
			strings.HasPrefix(pgErr.Code, "08"),
			pgErr.Code == "55P03",
			pgErr.Code == "57014",
			pgErr.Code == "53300":
			return errClass{kind: kindTransient}
		}
		return errClass{}
	}
	if errors.Is(err, driver.ErrBadConn) {
		return errClass{kind: kindTransient}
	}
	return errClass{}
}

// columnFromConstraint recovers the column from default-named constraints
// such as users_email_key and users_pkey.
func columnFromConstraint(name string) string {
	if name == "" {
		return ""
	}
	if strings.HasSuffix(name, "_pkey") {
		return "id"
	}
	trimmed := strings.TrimSuffix(name, "_key")
	for _, tbl := range tableNames {
		if strings.HasPrefix(trimmed, tbl+"_") {
			return strings.TrimPrefix(trimmed, tbl+"_")
		}
	}
	return trimmed
}

type sqliteDialect struct{}

func (sqliteDialect) driverName() string { return "sqlite" }

func (sqliteDialect) rebind(query string) string { return query }

func (sqliteDialect) noLimit() string { return "-1" }

// writeDSN upgrades write-intent sessions to BEGIN IMMEDIATE. A deferred
// transaction that reads before writing fails its lock upgrade with
// SQLITE_BUSY the moment another writer commits first — the busy handler
// cannot retry once a stale snapshot is held. Taking the write lock at
// BEGIN makes contending writers queue on busy_timeout instead.
func (sqliteDialect) writeDSN(dsn string) string {
	if strings.Contains(dsn, "_txlock=") {
		return dsn
	}
	sep := "?"
	if strings.ContainsRune(dsn, '?') {
		sep = "&"
	}
	return dsn + sep + "_txlock=immediate"
}

// SQLite result codes, including the extended constraint variants.
const (
	sqliteBusy              = 5
	sqliteLocked            = 6
	sqliteConstraint        = 19
	sqliteConstraintPrimary = 1555
	sqliteConstraintUnique  = 2067
)

func (sqliteDialect) classify(err error) errClass {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return errClass{}
	}
	code := serr.Code()
	switch {
	case code == sqliteConstraintPrimary || code == sqliteConstraintUnique:
		return errClass{kind: kindDuplicate, column: columnFromSQLiteMessage(serr.Error())}
	case code&0xff == sqliteBusy || code&0xff == sqliteLocked:
		return errClass{kind: kindTransient}
	case code == sqliteConstraint && strings.Contains(serr.Error(), "UNIQUE constraint failed"):
		return errClass{kind: kindDuplicate, column: columnFromSQLiteMessage(serr.Error())}
	}
	return errClass{}
}

// columnFromSQLiteMessage pulls the column out of messages like
// "constraint failed: UNIQUE constraint failed: users.email (2067)".
func columnFromSQLiteMessage(msg string) string {
	idx := strings.LastIndex(msg, ": ")
	if idx < 0 {
		return ""
	}
	rest := strings.TrimSpace(msg[idx+2:])
	if cut := strings.IndexByte(rest, ' '); cut >= 0 {
		rest = rest[:cut]
	}
	if dot := strings.IndexByte(rest, '.'); dot >= 0 {
		return strings.Trim(rest[dot+1:], ",")
	}
	return ""
}
