package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"contractimport/masterdata"
)

type keyedID struct {
	ID  int64  `db:"id"`
	Key string `db:"key"`
}

type branchKey struct {
	ID    string `db:"id"`
	Label string `db:"label"`
}

// LoadLookups reads master data and existing contract numbers. Pass the
// unit of work's queryer on the live path so rows cleared in the same
// transaction are not seen.
func LoadLookups(ctx context.Context, q sqlx.QueryerContext) (*masterdata.Lookups, error) {
	l := masterdata.NewLookups()

	keyed := []struct {
		query  string
		target map[string]int64
		what   string
	}{
		{`SELECT id, normalized_name AS key FROM ports`, l.Ports, "ports"},
		{`SELECT id, normalized_name AS key FROM shipping_companies`, l.ShippingCompanies, "shipping companies"},
		{`SELECT id, contract_no AS key FROM contracts`, l.Contracts, "contracts"},
	}
	for _, k := range keyed {
		var rows []keyedID
		if err := sqlx.SelectContext(ctx, q, &rows, k.query); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", k.what, err)
		}
		for _, r := range rows {
			k.target[r.Key] = r.ID
		}
	}

	var branches []branchKey
	if err := sqlx.SelectContext(ctx, q, &branches, `SELECT id, label FROM branches`); err != nil {
		return nil, fmt.Errorf("failed to load branches: %w", err)
	}
	for _, b := range branches {
		l.Branches[b.ID] = b.Label
	}

	return l, nil
}

// SeedBranches installs the curated destination warehouses inside the unit
// of work. Existing rows are left untouched.
func (u *UnitOfWork) SeedBranches(ctx context.Context, entries []masterdata.BranchEntry) (int, error) {
	const query = `INSERT INTO branches (id, label, warehouse_id, destination)
		VALUES (?, ?, ?, ?) ON CONFLICT(id) DO NOTHING`

	inserted := 0
	for _, e := range entries {
		n, err := u.exec(ctx, query, e.BranchID, e.Label, e.WarehouseID, e.Destination)
		if err != nil {
			return inserted, fmt.Errorf("failed to seed branch %s: %w", e.BranchID, err)
		}
		inserted += int(n)
	}
	if inserted > 0 {
		u.logger.Info("Seeded branches", "count", inserted)
	}
	return inserted, nil
}

// CountRows returns the number of rows in one of the import tables.
func CountRows(ctx context.Context, q sqlx.QueryerContext, table string) (int, error) {
	if err := ValidateTableName(table); err != nil {
		return 0, err
	}
	var n int
	if err := sqlx.GetContext(ctx, q, &n, "SELECT COUNT(*) FROM "+table); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}

// CountTransactional returns the row count of every transactional table.
func CountTransactional(ctx context.Context, q sqlx.QueryerContext) (map[string]int, error) {
	counts := make(map[string]int, len(TransactionalTables))
	for _, table := range TransactionalTables {
		n, err := CountRows(ctx, q, table)
		if err != nil {
			return nil, err
		}
		counts[table] = n
	}
	return counts, nil
}
