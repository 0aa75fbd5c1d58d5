// Package pgxutil runs pgx code on connections borrowed from a database/sql pool.
package pgxutil

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

var errNotPgx = errors.New("pool driver is not pgx stdlib")

// Conn borrows a pooled connection and hands its *pgx.Conn to fn. The
// connection goes back to the pool when fn returns.
func Conn(ctx context.Context, db *sql.DB, fn func(*pgx.Conn) error) error {
	sqlConn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire conn: %w", err)
	}
	defer func() { _ = sqlConn.Close() }()

	return sqlConn.Raw(func(driverConn any) error {
		c, ok := driverConn.(*stdlib.Conn)
		if !ok {
			return fmt.Errorf("%w: got %T", errNotPgx, driverConn)
		}
		return fn(c.Conn())
	})
}

// Tx runs fn inside a pgx transaction. A nil return commits; anything else
// rolls back and is returned unchanged so callers can match on it.
func Tx(ctx context.Context, db *sql.DB, opts pgx.TxOptions, fn func(pgx.Tx) error) error {
	return Conn(ctx, db, func(c *pgx.Conn) error {
		return pgx.BeginTxFunc(ctx, c, opts, fn)
	})
}

// SQLTx runs fn inside a database/sql transaction with the same commit rules as Tx.
func SQLTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
