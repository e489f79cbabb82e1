package schema

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

// Executor is interface of SQL connection. *sql.DB, *sql.Tx and *sqlx.DB
// satisfy it.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// CreateAll returns create statements for all tables: staging tables first,
// then dimensions and the fact table last.
func CreateAll(d Dialect) []string {
	var stmts []string
	for _, t := range Tables() {
		stmts = append(stmts, d.CreateTable(t)...)
	}
	return stmts
}

// DropAll returns drop-if-exists statements for all tables, children before
// parents.
func DropAll(d Dialect) []string {
	var stmts []string
	for _, t := range dropOrder() {
		stmts = append(stmts, d.DropTable(t)...)
	}
	return stmts
}

// Exec runs statements in order and stops at the first failure.
func Exec(ctx context.Context, x Executor, stmts []string) error {
	for _, stmt := range stmts {
		if _, err := x.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "Fail to execute: %s", stmt)
		}
	}
	return nil
}

// Reset drops and creates all tables.
func Reset(ctx context.Context, x Executor, d Dialect) error {
	if err := Exec(ctx, x, DropAll(d)); err != nil {
		return errors.Wrapf(err, "Fail to drop %s tables", d.Name())
	}
	if err := Exec(ctx, x, CreateAll(d)); err != nil {
		return errors.Wrapf(err, "Fail to create %s tables", d.Name())
	}
	return nil
}
