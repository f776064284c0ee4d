package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gameshelf/gameshelf/pkg/games"
	"github.com/google/uuid"
)

// ErrBlankTitle is returned when a draft without a title reaches the store.
var ErrBlankTitle = errors.New("game title is blank")

type gameRow struct {
	id                string
	name              string
	playPriority      sql.NullInt64
	played            sql.NullInt64
	controllerSupport sql.NullInt64
	maxPlayers        sql.NullInt64
	partyFit          sql.NullInt64
	review            sql.NullInt64
	notes             sql.NullString
}

const gameColumns = "id, name, play_priority, played, controller_support, max_players, party_fit, review, notes"

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanGame(s rowScanner) (gameRow, error) {
	var g gameRow
	err := s.Scan(&g.id, &g.name, &g.playPriority, &g.played, &g.controllerSupport, &g.maxPlayers, &g.partyFit, &g.review, &g.notes)
	return g, err
}

// CreateOrUpdate persists a draft. A game whose name matches the title
// case-insensitively is updated in place: present fields overwrite, new
// notes are prepended to old ones, genres and copies are added without
// duplicating. Otherwise a new game is created. The returned flag is true
// only for a new game.
func (d *DB) CreateOrUpdate(ctx context.Context, draft games.GameDraft) (ref games.GameRef, created bool, err error) {
	if !draft.HasTitle() {
		return ref, false, ErrBlankTitle
	}

	tx, err := d.sql.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return ref, false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	existing, err := scanGame(tx.QueryRowContext(ctx, "SELECT "+gameColumns+" FROM games WHERE name = ? COLLATE NOCASE ORDER BY created_at, rowid LIMIT 1", draft.Title))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		ref = games.GameRef{ID: uuid.New().String(), Name: draft.Title}
		_, err = tx.ExecContext(ctx, `INSERT INTO games(id, name, play_priority, played, controller_support, max_players, party_fit, review, notes) VALUES(?,?,?,?,?,?,?,?,?)`,
			ref.ID, ref.Name, nullInt(draft.PlayPriority), nullBool(draft.Played), nullBool(draft.ControllerSupport), nullInt(draft.MaxPlayers), nullBool(draft.PartyFit), nullInt(draft.Review), stringOrNil(draft.Notes))
		if err != nil {
			return ref, false, err
		}
		created = true
	case err != nil:
		return ref, false, err
	default:
		ref = games.GameRef{ID: existing.id, Name: existing.name}
		merged := mergeGame(existing, draft)
		_, err = tx.ExecContext(ctx, `UPDATE games SET play_priority = ?, played = ?, controller_support = ?, max_players = ?, party_fit = ?, review = ?, notes = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			nullableInt(merged.playPriority), nullableInt(merged.played), nullableInt(merged.controllerSupport), nullableInt(merged.maxPlayers), nullableInt(merged.partyFit), nullableInt(merged.review), nullableString(merged.notes), ref.ID)
		if err != nil {
			return ref, false, err
		}
	}

	for _, genre := range draft.Genres {
		var genreID int64
		if genreID, err = getOrCreateNamed(ctx, tx, "genres", genre); err != nil {
			return ref, false, err
		}
		if _, err = tx.ExecContext(ctx, "INSERT OR IGNORE INTO game_genres(game_id, genre_id) VALUES(?,?)", ref.ID, genreID); err != nil {
			return ref, false, err
		}
	}

	for _, p := range draft.Platforms {
		if err = addCopy(ctx, tx, ref.ID, p); err != nil {
			return ref, false, err
		}
	}

	if err = tx.Commit(); err != nil {
		return ref, false, err
	}
	return ref, created, nil
}

func mergeGame(g gameRow, draft games.GameDraft) gameRow {
	setInt := func(dst *sql.NullInt64, v *int) {
		if v != nil {
			*dst = sql.NullInt64{Int64: int64(*v), Valid: true}
		}
	}
	setBool := func(dst *sql.NullInt64, v *bool) {
		if v != nil {
			*dst = sql.NullInt64{Int64: int64(boolToInt(*v)), Valid: true}
		}
	}
	setInt(&g.playPriority, draft.PlayPriority)
	setBool(&g.played, draft.Played)
	setBool(&g.controllerSupport, draft.ControllerSupport)
	setInt(&g.maxPlayers, draft.MaxPlayers)
	setBool(&g.partyFit, draft.PartyFit)
	setInt(&g.review, draft.Review)

	if draft.Notes != nil && *draft.Notes != "" {
		switch {
		case !g.notes.Valid || g.notes.String == "":
			g.notes = sql.NullString{String: *draft.Notes, Valid: true}
		case g.notes.String != *draft.Notes:
			g.notes = sql.NullString{String: *draft.Notes + "\n\n" + g.notes.String, Valid: true}
		}
	}
	return g
}

func addCopy(ctx context.Context, tx *sql.Tx, gameID string, p games.PlatformEntryDraft) error {
	platformID, err := getOrCreateNamed(ctx, tx, "platforms", p.Platform)
	if err != nil {
		return err
	}

	added, price, identifier := nullDate(p.Added), nullPrice(p.Price), nullIfEmpty(p.Identifier)
	var (
		copyID   int64
		vendorID sql.NullInt64
	)
	err = tx.QueryRowContext(ctx, `SELECT id, vendor_id FROM game_copies WHERE game_id = ? AND platform_id = ? AND added IS ? AND price IS ? AND identifier IS ? ORDER BY id LIMIT 1`,
		gameID, platformID, added, price, identifier).Scan(&copyID, &vendorID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		res, ierr := tx.ExecContext(ctx, `INSERT INTO game_copies(game_id, platform_id, added, price, identifier) VALUES(?,?,?,?,?)`, gameID, platformID, added, price, identifier)
		if ierr != nil {
			return ierr
		}
		if copyID, err = res.LastInsertId(); err != nil {
			return err
		}
	case err != nil:
		return err
	}

	if p.Vendor == "" {
		return nil
	}
	vid, err := getOrCreateNamed(ctx, tx, "vendors", p.Vendor)
	if err != nil {
		return err
	}
	if vendorID.Valid && vendorID.Int64 == vid {
		return nil
	}
	_, err = tx.ExecContext(ctx, "UPDATE game_copies SET vendor_id = ? WHERE id = ?", vid, copyID)
	return err
}

// getOrCreateNamed returns the id of the row named name in one of the
// lookup tables, inserting it first when missing.
func getOrCreateNamed(ctx context.Context, tx *sql.Tx, table, name string) (int64, error) {
	switch table {
	case "platforms", "vendors", "genres":
	default:
		return 0, fmt.Errorf("unknown lookup table %q", table)
	}
	if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO "+table+"(name) VALUES(?)", name); err != nil {
		return 0, err
	}
	var id int64
	if err := tx.QueryRowContext(ctx, "SELECT id FROM "+table+" WHERE name = ?", name).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// FindByNameIExact returns the first game whose name equals name ignoring
// case, or nil when there is none.
func (d *DB) FindByNameIExact(ctx context.Context, name string) (*games.GameRef, error) {
	var ref games.GameRef
	err := d.sql.QueryRowContext(ctx, "SELECT id, name FROM games WHERE name = ? COLLATE NOCASE ORDER BY created_at, rowid LIMIT 1", name).Scan(&ref.ID, &ref.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// GetGame loads a game with its genres and all of its copies.
func (d *DB) GetGame(ctx context.Context, id string) (*Game, error) {
	row, err := scanGame(d.sql.QueryRowContext(ctx, "SELECT "+gameColumns+" FROM games WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	g := &Game{
		ID:                row.id,
		Name:              row.name,
		PlayPriority:      intPtr(row.playPriority),
		Played:            boolPtr(row.played),
		ControllerSupport: boolPtr(row.controllerSupport),
		MaxPlayers:        intPtr(row.maxPlayers),
		PartyFit:          boolPtr(row.partyFit),
		Review:            intPtr(row.review),
		Notes:             stringPtr(row.notes),
		Genres:            []string{},
	}

	rows, err := d.sql.QueryContext(ctx, "SELECT g.name FROM game_genres gg JOIN genres g ON g.id = gg.genre_id WHERE gg.game_id = ? ORDER BY g.name", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		g.Genres = append(g.Genres, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if g.Copies, err = d.ListCopies(ctx, CopyFilter{GameID: id, IncludeDeleted: true}); err != nil {
		return nil, err
	}
	return g, nil
}

// Remove deletes a game together with its copies and genre links.
func (d *DB) Remove(ctx context.Context, id string) error {
	res, err := d.sql.ExecContext(ctx, "DELETE FROM games WHERE id = ?", id)
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

// ListOrphanedGames returns games without any live copy.
func (d *DB) ListOrphanedGames(ctx context.Context) ([]games.GameRef, error) {
	rows, err := d.sql.QueryContext(ctx, `SELECT id, name FROM games g WHERE NOT EXISTS (SELECT 1 FROM game_copies c WHERE c.game_id = g.id AND c.deleted = 0) ORDER BY name COLLATE NOCASE`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []games.GameRef
	for rows.Next() {
		var ref games.GameRef
		if err := rows.Scan(&ref.ID, &ref.Name); err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

func stringOrNil(s *string) interface{} {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

func nullableInt(n sql.NullInt64) interface{} {
	if !n.Valid {
		return nil
	}
	return n.Int64
}

func nullableString(n sql.NullString) interface{} {
	if !n.Valid {
		return nil
	}
	return n.String
}
