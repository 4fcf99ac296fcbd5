package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/parlohq/parlo-backend/internal/domain"
)

// querier is the subset of database/sql satisfied by both *sql.DB and
// *sql.Tx. Repositories always run against the *sql.Tx of their owning unit
// of work.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// scanner matches both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// rowMapper is the bidirectional converter between one entity kind and its
// row representation. values must stay aligned with columns; scan must
// produce a fresh entity so callers can never mutate persisted state through
// a returned object.
type rowMapper[T any] interface {
	table() string
	entityType() string
	columns() []string
	id(e *T) string
	values(e *T) ([]any, error)
	scan(sc scanner) (*T, error)
}

// cond is one equality predicate compiled from an entity filter. Filters
// are enumerated structs per entity, so an unknown field cannot reach this
// layer.
type cond struct {
	column string
	value  any
}

// table implements the generic CRUD capability set for one entity kind.
// Entity repositories embed it and layer their domain-specific queries on
// top.
type table[T any] struct {
	q       querier
	dia     dialect
	m       rowMapper[T]
	orderBy string // primary-key ascending unless overridden
}

func (t *table[T]) order() string {
	if t.orderBy != "" {
		return t.orderBy
	}
	return "id"
}

func (t *table[T]) create(ctx context.Context, e *T) (*T, error) {
	cols := t.m.columns()
	vals, err := t.m.values(e)
	if err != nil {
		return nil, domain.NewPersistenceError("encode "+t.m.entityType(), err)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		t.m.table(), strings.Join(cols, ", "), placeholders(len(cols)))
	if _, err := t.q.ExecContext(ctx, t.dia.rebind(query), vals...); err != nil {
		return nil, t.wrap("insert "+t.m.entityType(), err, e)
	}
	created, ok, err := t.getByID(ctx, t.m.id(e))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.NewPersistenceError("read back inserted "+t.m.entityType(), nil)
	}
	return created, nil
}

func (t *table[T]) getByID(ctx context.Context, id string) (*T, bool, error) {
	return t.getWhere(ctx, []cond{{"id", id}})
}

func (t *table[T]) getWhere(ctx context.Context, conds []cond) (*T, bool, error) {
	query, args := t.selectQuery(conds, t.order(), 1, 0)
	e, err := t.m.scan(t.q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, t.wrap("select "+t.m.entityType(), err, nil)
	}
	return e, true, nil
}

func (t *table[T]) list(ctx context.Context, conds []cond, orderBy string, limit, offset int) ([]*T, error) {
	if orderBy == "" {
		orderBy = t.order()
	}
	query, args := t.selectQuery(conds, orderBy, limit, offset)
	rows, err := t.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, t.wrap("list "+t.m.entityType(), err, nil)
	}
	defer func() { _ = rows.Close() }()

	var out []*T
	for rows.Next() {
		e, err := t.m.scan(rows)
		if err != nil {
			return nil, t.wrap("scan "+t.m.entityType(), err, nil)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, t.wrap("list "+t.m.entityType(), err, nil)
	}
	return out, nil
}

func (t *table[T]) update(ctx context.Context, e *T) (*T, error) {
	cols := t.m.columns()
	vals, err := t.m.values(e)
	if err != nil {
		return nil, domain.NewPersistenceError("encode "+t.m.entityType(), err)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "UPDATE %s SET ", t.m.table())
	args := make([]any, 0, len(cols))
	n := 0
	for i, col := range cols {
		if col == "id" {
			continue
		}
		if n > 0 {
			b.WriteString(", ")
		}
		b.WriteString(col)
		b.WriteString(" = ?")
		args = append(args, vals[i])
		n++
	}
	b.WriteString(" WHERE id = ?")
	args = append(args, t.m.id(e))

	res, err := t.q.ExecContext(ctx, t.dia.rebind(b.String()), args...)
	if err != nil {
		return nil, t.wrap("update "+t.m.entityType(), err, e)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, domain.NewPersistenceError("update "+t.m.entityType(), err)
	}
	if affected == 0 {
		return nil, domain.NewEntityNotFound(t.m.entityType(), t.m.id(e), nil)
	}
	updated, ok, err := t.getByID(ctx, t.m.id(e))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.NewPersistenceError("read back updated "+t.m.entityType(), nil)
	}
	return updated, nil
}

func (t *table[T]) delete(ctx context.Context, id string) (bool, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", t.m.table())
	res, err := t.q.ExecContext(ctx, t.dia.rebind(query), id)
	if err != nil {
		return false, t.wrap("delete "+t.m.entityType(), err, nil)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, domain.NewPersistenceError("delete "+t.m.entityType(), err)
	}
	return affected > 0, nil
}

func (t *table[T]) count(ctx context.Context, conds []cond) (int64, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT COUNT(*) FROM %s", t.m.table())
	args := appendWhere(&b, conds)
	var n int64
	if err := t.q.QueryRowContext(ctx, t.dia.rebind(b.String()), args...).Scan(&n); err != nil {
		return 0, t.wrap("count "+t.m.entityType(), err, nil)
	}
	return n, nil
}

func (t *table[T]) selectQuery(conds []cond, orderBy string, limit, offset int) (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(t.m.columns(), ", "))
	b.WriteString(" FROM ")
	b.WriteString(t.m.table())
	args := appendWhere(&b, conds)
	if orderBy != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(orderBy)
	}
	t.writeLimitOffset(&b, limit, offset)
	return t.dia.rebind(b.String()), args
}

func appendWhere(b *strings.Builder, conds []cond) []any {
	if len(conds) == 0 {
		return nil
	}
	args := make([]any, 0, len(conds))
	b.WriteString(" WHERE ")
	for i, c := range conds {
		if i > 0 {
			b.WriteString(" AND ")
		}
		b.WriteString(c.column)
		b.WriteString(" = ?")
		args = append(args, c.value)
	}
	return args
}

// writeLimitOffset renders pagination. limit <= 0 means unlimited; a
// negative offset is treated as zero. Values are validated integers, so
// they are rendered inline.
func (t *table[T]) writeLimitOffset(b *strings.Builder, limit, offset int) {
	if offset < 0 {
		offset = 0
	}
	if limit > 0 {
		fmt.Fprintf(b, " LIMIT %d", limit)
	} else if offset > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(t.dia.noLimit())
	}
	if offset > 0 {
		fmt.Fprintf(b, " OFFSET %d", offset)
	}
}

// wrap translates a driver failure into the error taxonomy before it
// crosses the repository boundary. e, when present, supplies the offending
// value for duplicate reports.
func (t *table[T]) wrap(op string, err error, e *T) error {
	cls := t.dia.classify(err)
	switch cls.kind {
	case kindDuplicate:
		field := cls.column
		if field == "" {
			field = "id"
		}
		return domain.NewDuplicateEntity(t.m.entityType(), field, t.fieldValue(e, field), err)
	case kindTransient:
		return domain.NewTransientStoreError(err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return domain.NewTransientStoreError(err)
	}
	return domain.NewPersistenceError(op, err)
}

func (t *table[T]) fieldValue(e *T, column string) string {
	if e == nil {
		return ""
	}
	if column == "id" {
		return t.m.id(e)
	}
	vals, err := t.m.values(e)
	if err != nil {
		return ""
	}
	for i, col := range t.m.columns() {
		if col != column {
			continue
		}
		switch v := vals[i].(type) {
		case string:
			return v
		case []byte:
			return string(v)
		default:
			return fmt.Sprintf("%v", v)
		}
	}
	return ""
}

// existsIn reports whether a row with the given id exists. Repositories use
// it to validate cross-entity references up front so both engines produce
// the same precise not-found report.
func existsIn(ctx context.Context, q querier, dia dialect, tableName, id string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, dia.rebind("SELECT 1 FROM "+tableName+" WHERE id = ?"), id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, wrapSessionErr(dia, "check "+tableName+" reference", err)
	}
	return true, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
