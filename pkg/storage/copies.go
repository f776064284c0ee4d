package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gameshelf/gameshelf/pkg/games"
)

// PlatformByName looks a platform up ignoring case.
func (d *DB) PlatformByName(ctx context.Context, name string) (Platform, error) {
	var p Platform
	err := d.sql.QueryRowContext(ctx, "SELECT id, name FROM platforms WHERE name = ?", name).Scan(&p.ID, &p.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return Platform{}, ErrNotFound
	}
	return p, err
}

// ListCopies returns copies matching filters, ordered by game name.
func (d *DB) ListCopies(ctx context.Context, f CopyFilter) ([]games.Copy, error) {
	where := "WHERE 1=1"
	args := []interface{}{}
	if f.Platform != "" {
		where += " AND p.name = ?"
		args = append(args, f.Platform)
	}
	if f.GameID != "" {
		where += " AND c.game_id = ?"
		args = append(args, f.GameID)
	}
	if f.UnresolvedOnly {
		where += " AND (c.identifier IS NULL OR c.identifier = '')"
	}
	if !f.IncludeDeleted {
		where += " AND c.deleted = 0"
	}

	q := `SELECT c.id, c.game_id, g.name, p.name, c.added, c.price, v.name, c.identifier, c.deleted
		FROM game_copies c
		JOIN games g ON g.id = c.game_id
		JOIN platforms p ON p.id = c.platform_id
		LEFT JOIN vendors v ON v.id = c.vendor_id
		` + where + " ORDER BY g.name COLLATE NOCASE, c.id"
	rows, err := d.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []games.Copy
	for rows.Next() {
		var (
			c                         games.Copy
			added, price, vendor, ids sql.NullString
			deleted                   int
		)
		if err := rows.Scan(&c.ID, &c.GameID, &c.Title, &c.Platform, &added, &price, &vendor, &ids, &deleted); err != nil {
			return nil, err
		}
		c.Added = parseDate(added)
		c.Price = parsePrice(price)
		c.Vendor = vendor.String
		c.Identifier = ids.String
		c.Deleted = deleted == 1
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UnresolvedCopies returns live copies on platform that have no identifier.
func (d *DB) UnresolvedCopies(ctx context.Context, platform string) ([]games.Copy, error) {
	return d.ListCopies(ctx, CopyFilter{Platform: platform, UnresolvedOnly: true})
}

// SetIdentifier stores identifier on a copy that does not have one yet. It
// reports false when the copy is missing or already resolved, so an existing
// identifier is never overwritten.
func (d *DB) SetIdentifier(ctx context.Context, copyID int64, identifier string) (bool, error) {
	res, err := d.sql.ExecContext(ctx, "UPDATE game_copies SET identifier = ? WHERE id = ? AND (identifier IS NULL OR identifier = '')", identifier, copyID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// SoftDeleteCopy hides a copy without removing it.
func (d *DB) SoftDeleteCopy(ctx context.Context, copyID int64) error {
	return d.execOne(ctx, "UPDATE game_copies SET deleted = 1, deleted_at = CURRENT_TIMESTAMP WHERE id = ?", copyID)
}

// RestoreCopy undoes SoftDeleteCopy.
func (d *DB) RestoreCopy(ctx context.Context, copyID int64) error {
	return d.execOne(ctx, "UPDATE game_copies SET deleted = 0, deleted_at = NULL WHERE id = ?", copyID)
}

func (d *DB) execOne(ctx context.Context, q string, args ...interface{}) error {
	res, err := d.sql.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// HasPlatform reports whether a platform record named name exists.
func (d *DB) HasPlatform(ctx context.Context, name string) (bool, error) {
	_, err := d.PlatformByName(ctx, name)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}
