package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/pribylovaa/go-sports-feed/internal/storage"
)

// Select выполняет ограниченную выборку.
//
// Порядок построения: фильтры -> keyset-предикат -> ORDER BY -> LIMIT/OFFSET.
// Если в контексте есть bearer-токен, запрос выполняется в read-only транзакции,
// где токен доступен политикам как current_setting('request.jwt').
func (s *Storage) Select(ctx context.Context, q storage.Query) ([]storage.Row, error) {
	const op = "storage.postgres.Select"

	sql, args, err := buildSelect(q)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var out []storage.Row
	err = s.run(ctx, func(db querier) error {
		rows, err := db.Query(ctx, sql, args...)
		if err != nil {
			return err
		}

		maps, err := pgx.CollectRows(rows, pgx.RowToMap)
		if err != nil {
			return err
		}

		out = make([]storage.Row, len(maps))
		for i, m := range maps {
			out[i] = storage.Row(m)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, q.Collection, classify(err))
	}

	return out, nil
}

// Count возвращает число строк под фильтрами.
func (s *Storage) Count(ctx context.Context, collection string, filters []storage.Filter) (int, error) {
	const op = "storage.postgres.Count"

	sql, args, err := buildCount(collection, filters)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var n int64
	err = s.run(ctx, func(db querier) error {
		return db.QueryRow(ctx, sql, args...).Scan(&n)
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %s: %w", op, collection, classify(err))
	}

	return int(n), nil
}

// querier — общее подмножество pgxpool.Pool и pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// run выполняет fn напрямую на пуле либо в read-only транзакции с токеном запроса.
func (s *Storage) run(ctx context.Context, fn func(db querier) error) error {
	token, ok := storage.AccessToken(ctx)
	if !ok {
		return fn(s.db)
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT set_config('request.jwt', $1, true)`, token); err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// args накапливает позиционные параметры $1..$n.
type args []any

func (a *args) add(v any) string {
	*a = append(*a, v)
	return "$" + strconv.Itoa(len(*a))
}

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func buildSelect(q storage.Query) (string, []any, error) {
	if err := q.Validate(); err != nil {
		return "", nil, err
	}

	var b strings.Builder
	var a args

	b.WriteString("SELECT ")
	if len(q.Columns) == 0 {
		b.WriteString("*")
	} else {
		cols := make([]string, len(q.Columns))
		for i, c := range q.Columns {
			cols[i] = ident(c)
		}
		b.WriteString(strings.Join(cols, ", "))
	}
	b.WriteString(" FROM ")
	b.WriteString(ident(q.Collection))

	preds := whereClauses(q.Filters, &a)
	if q.After != nil {
		preds = append(preds, keysetClause(*q.After, &a))
	}
	if len(preds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(preds, " AND "))
	}

	if len(q.Order) > 0 {
		parts := make([]string, len(q.Order))
		for i, o := range q.Order {
			dir := "ASC"
			if o.Desc {
				dir = "DESC"
			}
			parts[i] = ident(o.Field) + " " + dir
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(parts, ", "))
	}

	if q.Limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(a.add(q.Limit))
	}
	if q.Offset > 0 {
		b.WriteString(" OFFSET ")
		b.WriteString(a.add(q.Offset))
	}

	return b.String(), a, nil
}

func buildCount(collection string, filters []storage.Filter) (string, []any, error) {
	if err := (storage.Query{Collection: collection, Filters: filters}).Validate(); err != nil {
		return "", nil, err
	}

	var a args
	sql := "SELECT count(*) FROM " + ident(collection)
	if preds := whereClauses(filters, &a); len(preds) > 0 {
		sql += " WHERE " + strings.Join(preds, " AND ")
	}

	return sql, a, nil
}

func whereClauses(filters []storage.Filter, a *args) []string {
	out := make([]string, 0, len(filters))
	for _, f := range filters {
		col := ident(f.Field)
		switch f.Op {
		case storage.OpEq:
			out = append(out, col+" = "+a.add(f.Values[0]))
		case storage.OpHas:
			out = append(out, a.add(f.Values[0])+" = ANY("+col+")")
		case storage.OpIn:
			if len(f.Values) == 0 {
				out = append(out, "FALSE")
				continue
			}
			ph := make([]string, len(f.Values))
			for i, v := range f.Values {
				ph[i] = a.add(v)
			}
			out = append(out, col+" IN ("+strings.Join(ph, ", ")+")")
		}
	}

	return out
}

// keysetClause строит строгий предикат продолжения.
// Для двух полей: (A < $a OR (A = $a AND B < $b)); параметр $a используется дважды.
func keysetClause(k storage.Keyset, a *args) string {
	cmp := ">"
	if k.Desc {
		cmp = "<"
	}

	first := ident(k.Fields[0])
	pa := a.add(k.Values[0])
	if len(k.Fields) == 1 {
		return first + " " + cmp + " " + pa
	}

	second := ident(k.Fields[1])
	pb := a.add(k.Values[1])

	return "(" + first + " " + cmp + " " + pa + " OR (" + first + " = " + pa + " AND " + second + " " + cmp + " " + pb + "))"
}
