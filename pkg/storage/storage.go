package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("not found")

type DB struct {
	sql *sql.DB
}

func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	// Ensure schema exists for convenience.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS games (
  id                 TEXT PRIMARY KEY,
  name               TEXT NOT NULL,
  play_priority      INTEGER,
  played             INTEGER CHECK (played IN (0,1)),
  controller_support INTEGER CHECK (controller_support IN (0,1)),
  max_players        INTEGER,
  party_fit          INTEGER CHECK (party_fit IN (0,1)),
  review             INTEGER,
  notes              TEXT,
  created_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_games_name ON games(name COLLATE NOCASE);
CREATE TABLE IF NOT EXISTS platforms (
  id   INTEGER PRIMARY KEY,
  name TEXT NOT NULL UNIQUE COLLATE NOCASE
);
CREATE TABLE IF NOT EXISTS vendors (
  id   INTEGER PRIMARY KEY,
  name TEXT NOT NULL UNIQUE COLLATE NOCASE
);
CREATE TABLE IF NOT EXISTS genres (
  id   INTEGER PRIMARY KEY,
  name TEXT NOT NULL UNIQUE COLLATE NOCASE
);
CREATE TABLE IF NOT EXISTS game_genres (
  game_id  TEXT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
  genre_id INTEGER NOT NULL REFERENCES genres(id) ON DELETE CASCADE,
  PRIMARY KEY (game_id, genre_id)
);
CREATE TABLE IF NOT EXISTS game_copies (
  id          INTEGER PRIMARY KEY,
  game_id     TEXT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
  platform_id INTEGER NOT NULL REFERENCES platforms(id),
  vendor_id   INTEGER REFERENCES vendors(id),
  added       TEXT,
  price       TEXT,
  identifier  TEXT,
  deleted     INTEGER NOT NULL DEFAULT 0 CHECK (deleted IN (0,1)),
  deleted_at  DATETIME,
  created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_copies_game ON game_copies(game_id);
CREATE INDEX IF NOT EXISTS idx_copies_platform ON game_copies(platform_id, identifier);
CREATE TABLE IF NOT EXISTS catalog_entries (
  id     INTEGER PRIMARY KEY,
  appid  TEXT NOT NULL UNIQUE,
  name   TEXT NOT NULL,
  synced_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
    `); err != nil {
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// PlatformStats summarizes the live copies owned on one platform.
type PlatformStats struct {
	Platform   string
	GameCount  int
	CopyCount  int
	Resolved   int
	Unresolved int
	Spent      decimal.Decimal
}

// GetStats aggregates live copies per platform, ordered by platform name.
func (d *DB) GetStats(ctx context.Context) ([]PlatformStats, error) {
	query := `
		SELECT
			p.name,
			c.game_id,
			c.identifier,
			c.price
		FROM
			game_copies c
			JOIN platforms p ON p.id = c.platform_id
		WHERE
			c.deleted = 0
		ORDER BY
			p.name;
	`
	rows, err := d.sql.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []PlatformStats
	seen := map[string]struct{}{}
	for rows.Next() {
		var (
			platform, gameID  string
			identifier, price sql.NullString
		)
		if err := rows.Scan(&platform, &gameID, &identifier, &price); err != nil {
			return nil, err
		}
		if len(stats) == 0 || stats[len(stats)-1].Platform != platform {
			stats = append(stats, PlatformStats{Platform: platform, Spent: decimal.Zero})
		}
		s := &stats[len(stats)-1]
		s.CopyCount++
		if identifier.String != "" {
			s.Resolved++
		} else {
			s.Unresolved++
		}
		if p := parsePrice(price); p != nil {
			s.Spent = s.Spent.Add(*p)
		}
		if _, ok := seen[platform+"|"+gameID]; !ok {
			seen[platform+"|"+gameID] = struct{}{}
			s.GameCount++
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
