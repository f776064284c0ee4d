package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gameshelf/gameshelf/pkg/catalog"
)

// UpsertCatalogEntries stores catalog entries keyed by app id. Known ids and
// blank names are skipped. It returns how many rows were inserted.
func (d *DB) UpsertCatalogEntries(ctx context.Context, entries []catalog.Entry) (inserted int, err error) {
	tx, err := d.sql.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, "INSERT OR IGNORE INTO catalog_entries(appid, name) VALUES(?,?)")
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, e := range entries {
		if strings.TrimSpace(e.Name) == "" || e.AppID == "" {
			continue
		}
		res, xerr := stmt.ExecContext(ctx, e.AppID, e.Name)
		if xerr != nil {
			err = xerr
			return 0, err
		}
		n, xerr := res.RowsAffected()
		if xerr != nil {
			err = fmt.Errorf("counting catalog rows for %s: %w", e.AppID, xerr)
			return 0, err
		}
		inserted += int(n)
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

// CatalogEntries returns the stored catalog in insertion order.
func (d *DB) CatalogEntries(ctx context.Context) ([]catalog.Entry, error) {
	rows, err := d.sql.QueryContext(ctx, "SELECT appid, name FROM catalog_entries ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []catalog.Entry
	for rows.Next() {
		var e catalog.Entry
		if err := rows.Scan(&e.AppID, &e.Name); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// CatalogCount returns the number of stored catalog entries.
func (d *DB) CatalogCount(ctx context.Context) (int, error) {
	var n int
	err := d.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM catalog_entries").Scan(&n)
	return n, err
}
