// Package repository handles all interactions with the database.
//
// It contains raw SQL queries and methods to fetch, persist,
// or update data, abstracting SQL logic away from the service layer.
package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
)

// Querier is the subset of pgx the repositories need. Both *pgxpool.Pool
// and pgx.Tx satisfy it, so the same query methods run standalone or
// inside a transaction (see Repositories.InTx).
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// scanner is satisfied by both pgx.Row and pgx.Rows, letting one scan
// helper per entity serve single- and multi-row queries.
type scanner interface {
	Scan(dest ...any) error
}

// noRows tags a pgx.ErrNoRows with its source table so the global error
// handler can phrase the 404 ("Payment not found" rather than "Resource
// not found"). errors.Is(err, pgx.ErrNoRows) keeps working on the result.
func noRows(err error, table string) error {
	return errors.Wrapf(err, "table:%s", table)
}

// prefixColumns qualifies a column list with a table alias for join
// queries: prefixColumns("r", "id, name") = "r.id, r.name".
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, part := range parts {
		parts[i] = alias + "." + part
	}
	return strings.Join(parts, ", ")
}
