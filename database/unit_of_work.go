package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// ErrUnitOfWorkDone is returned by any operation on a committed or rolled back unit of work.
var ErrUnitOfWorkDone = errors.New("unit of work already completed")

// UnitOfWork is the single transaction of a live import run. Every insert
// takes it explicitly; it is committed or rolled back exactly once.
type UnitOfWork struct {
	tx      *sqlx.Tx
	done    bool
	inserts int
	logger  *slog.Logger
}

// Begin starts the unit of work.
func (db *ImportDB) Begin(ctx context.Context) (*UnitOfWork, error) {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &UnitOfWork{
		tx:     tx,
		logger: db.logger.With("unit_of_work", true),
	}, nil
}

// Commit commits every insert of the run.
func (u *UnitOfWork) Commit() error {
	if u.done {
		return ErrUnitOfWorkDone
	}
	u.done = true
	if err := u.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	u.logger.Info("Transaction committed", "inserts", u.inserts)
	return nil
}

// Rollback discards every insert of the run. Calling it after Commit
// returns ErrUnitOfWorkDone, so it is safe to defer.
func (u *UnitOfWork) Rollback() error {
	if u.done {
		return ErrUnitOfWorkDone
	}
	u.done = true
	if err := u.tx.Rollback(); err != nil {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	u.logger.Warn("Transaction rolled back", "discarded_inserts", u.inserts)
	return nil
}

// Done reports whether the unit of work has been completed.
func (u *UnitOfWork) Done() bool {
	return u.done
}

// Inserts returns the number of rows inserted so far.
func (u *UnitOfWork) Inserts() int {
	return u.inserts
}

// Queryer exposes the transaction for reads that must see uncommitted rows.
func (u *UnitOfWork) Queryer() sqlx.QueryerContext {
	return u.tx
}

// insertNamed runs an INSERT with named parameters and returns the new id.
func (u *UnitOfWork) insertNamed(ctx context.Context, query string, arg any) (int64, error) {
	if u.done {
		return 0, ErrUnitOfWorkDone
	}
	bound, args, err := u.tx.BindNamed(query+" RETURNING id", arg)
	if err != nil {
		return 0, fmt.Errorf("failed to bind insert: %w", err)
	}
	var id int64
	if err := u.tx.QueryRowxContext(ctx, bound, args...).Scan(&id); err != nil {
		return 0, err
	}
	u.inserts++
	return id, nil
}

func (u *UnitOfWork) exec(ctx context.Context, query string, args ...any) (int64, error) {
	if u.done {
		return 0, ErrUnitOfWorkDone
	}
	res, err := u.tx.ExecContext(ctx, u.tx.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return n, nil
}

// ClearTransactional deletes every row of the tables the import writes,
// children first. Master data (ports, companies, branches) is kept.
func (u *UnitOfWork) ClearTransactional(ctx context.Context) (int64, error) {
	var total int64
	for _, table := range TransactionalTables {
		n, err := u.exec(ctx, "DELETE FROM "+table)
		if err != nil {
			return total, fmt.Errorf("failed to clear %s: %w", table, err)
		}
		total += n
	}
	u.logger.Info("Cleared transactional tables", "tables", len(TransactionalTables), "rows", total)
	return total, nil
}
