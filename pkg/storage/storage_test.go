package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/gameshelf/gameshelf/pkg/catalog"
	"github.com/gameshelf/gameshelf/pkg/games"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "gameshelf.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func ptr[T any](v T) *T { return &v }

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestCreateOrUpdateCreatesGame(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	added := time.Date(2021, 3, 4, 0, 0, 0, 0, time.UTC)
	ref, created, err := db.CreateOrUpdate(ctx, games.GameDraft{
		Title:        "Hades",
		PlayPriority: ptr(8),
		Played:       ptr(true),
		Notes:        ptr("great"),
		Genres:       []string{"Roguelike", "Action"},
		Platforms: []games.PlatformEntryDraft{
			{Platform: "Steam", Added: &added, Price: price("24.99"), Vendor: "store.steampowered.com", Identifier: "1145360"},
			{Platform: "Switch"},
		},
	})
	require.NoError(t, err)
	require.True(t, created)
	require.NotEmpty(t, ref.ID)
	assert.Equal(t, "Hades", ref.Name)

	g, err := db.GetGame(ctx, ref.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, *g.PlayPriority)
	assert.True(t, *g.Played)
	assert.Nil(t, g.ControllerSupport)
	assert.Equal(t, "great", *g.Notes)
	assert.Equal(t, []string{"Action", "Roguelike"}, g.Genres)
	require.Len(t, g.Copies, 2)

	var steam games.Copy
	for _, c := range g.Copies {
		if c.Platform == "Steam" {
			steam = c
		}
	}
	assert.Equal(t, "1145360", steam.Identifier)
	assert.Equal(t, "store.steampowered.com", steam.Vendor)
	require.NotNil(t, steam.Price)
	assert.True(t, steam.Price.Equal(decimal.RequireFromString("24.99")))
	require.NotNil(t, steam.Added)
	assert.True(t, steam.Added.Equal(added))
}

func TestCreateOrUpdateMergesExisting(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	first, created, err := db.CreateOrUpdate(ctx, games.GameDraft{
		Title:  "Celeste",
		Review: ptr(9),
		Notes:  ptr("old note"),
		Genres: []string{"Platformer"},
		Platforms: []games.PlatformEntryDraft{
			{Platform: "Steam", Price: price("19.99")},
		},
	})
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := db.CreateOrUpdate(ctx, games.GameDraft{
		Title:      "CELESTE",
		MaxPlayers: ptr(1),
		Notes:      ptr("new note"),
		Genres:     []string{"platformer", "Indie"},
		Platforms: []games.PlatformEntryDraft{
			{Platform: "steam", Price: price("19.990")},
			{Platform: "Switch"},
		},
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Celeste", second.Name)

	g, err := db.GetGame(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, *g.Review, "absent fields keep their stored value")
	assert.Equal(t, 1, *g.MaxPlayers)
	assert.Equal(t, "new note\n\nold note", *g.Notes)
	assert.Equal(t, []string{"Indie", "Platformer"}, g.Genres)
	assert.Len(t, g.Copies, 2, "identical Steam copy must not be duplicated")
}

func TestCreateOrUpdateIdenticalDraftTwice(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	added := time.Date(2019, 8, 1, 0, 0, 0, 0, time.UTC)
	draft := games.GameDraft{
		Title:  "Outer Wilds",
		Notes:  ptr("finish the DLC"),
		Genres: []string{"Adventure"},
		Platforms: []games.PlatformEntryDraft{
			{Platform: "Steam", Added: &added, Price: price("24.99"), Identifier: "753640"},
			{Platform: "PS4"},
		},
	}

	first, created, err := db.CreateOrUpdate(ctx, draft)
	require.NoError(t, err)
	require.True(t, created)
	second, created, err := db.CreateOrUpdate(ctx, draft)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	var rows int
	require.NoError(t, db.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM games").Scan(&rows))
	assert.Equal(t, 1, rows)

	copies, err := db.ListCopies(ctx, CopyFilter{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Len(t, copies, 2)

	g, err := db.GetGame(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "finish the DLC", *g.Notes)
	assert.Equal(t, []string{"Adventure"}, g.Genres)
}

func TestCreateOrUpdateRejectsBlankTitle(t *testing.T) {
	db := openTestDB(t)
	_, _, err := db.CreateOrUpdate(context.Background(), games.GameDraft{Title: "  "})
	require.ErrorIs(t, err, ErrBlankTitle)
}

func TestFindByNameIExactAndRemove(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	ref, _, err := db.CreateOrUpdate(ctx, games.GameDraft{Title: "Outer Wilds", Platforms: []games.PlatformEntryDraft{{Platform: "Steam"}}})
	require.NoError(t, err)

	found, err := db.FindByNameIExact(ctx, "outer wilds")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, ref.ID, found.ID)

	missing, err := db.FindByNameIExact(ctx, "Outer")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, db.Remove(ctx, ref.ID))
	require.ErrorIs(t, db.Remove(ctx, ref.ID), ErrNotFound)
	_, err = db.GetGame(ctx, ref.ID)
	require.ErrorIs(t, err, ErrNotFound)

	copies, err := db.ListCopies(ctx, CopyFilter{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Empty(t, copies, "copies cascade with their game")
}

func TestSetIdentifierNeverOverwrites(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, _, err := db.CreateOrUpdate(ctx, games.GameDraft{Title: "Portal 2", Platforms: []games.PlatformEntryDraft{{Platform: "Steam"}}})
	require.NoError(t, err)
	_, _, err = db.CreateOrUpdate(ctx, games.GameDraft{Title: "Portal", Platforms: []games.PlatformEntryDraft{{Platform: "Steam", Identifier: "123456"}}})
	require.NoError(t, err)

	unresolved, err := db.UnresolvedCopies(ctx, "STEAM")
	require.NoError(t, err)
	require.Len(t, unresolved, 1)
	assert.Equal(t, "Portal 2", unresolved[0].Title)

	ok, err := db.SetIdentifier(ctx, unresolved[0].ID, "620")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = db.SetIdentifier(ctx, unresolved[0].ID, "999")
	require.NoError(t, err)
	assert.False(t, ok)

	all, err := db.ListCopies(ctx, CopyFilter{Platform: "Steam"})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "123456", all[0].Identifier)
	assert.Equal(t, "620", all[1].Identifier)
}

func TestPlatformByName(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.PlatformByName(ctx, "Steam")
	require.ErrorIs(t, err, ErrNotFound)

	_, _, err = db.CreateOrUpdate(ctx, games.GameDraft{Title: "Hollow Knight", Platforms: []games.PlatformEntryDraft{{Platform: "Steam"}}})
	require.NoError(t, err)

	p, err := db.PlatformByName(ctx, "steam")
	require.NoError(t, err)
	assert.Equal(t, "Steam", p.Name)
}

func TestSoftDeleteAndOrphans(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	ref, _, err := db.CreateOrUpdate(ctx, games.GameDraft{Title: "Braid", Platforms: []games.PlatformEntryDraft{{Platform: "Xbox"}}})
	require.NoError(t, err)
	_, _, err = db.CreateOrUpdate(ctx, games.GameDraft{Title: "Fez"})
	require.NoError(t, err)

	orphans, err := db.ListOrphanedGames(ctx)
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	assert.Equal(t, "Fez", orphans[0].Name)

	copies, err := db.ListCopies(ctx, CopyFilter{GameID: ref.ID})
	require.NoError(t, err)
	require.Len(t, copies, 1)

	require.NoError(t, db.SoftDeleteCopy(ctx, copies[0].ID))
	live, err := db.ListCopies(ctx, CopyFilter{GameID: ref.ID})
	require.NoError(t, err)
	assert.Empty(t, live)

	orphans, err = db.ListOrphanedGames(ctx)
	require.NoError(t, err)
	assert.Len(t, orphans, 2)

	require.NoError(t, db.RestoreCopy(ctx, copies[0].ID))
	require.ErrorIs(t, db.RestoreCopy(ctx, 9999), ErrNotFound)
	orphans, err = db.ListOrphanedGames(ctx)
	require.NoError(t, err)
	assert.Len(t, orphans, 1)
}

func TestCatalogEntries(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	n, err := db.UpsertCatalogEntries(ctx, []catalog.Entry{
		{AppID: "400", Name: "Portal"},
		{AppID: "620", Name: "Portal 2"},
		{AppID: "9", Name: " "},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = db.UpsertCatalogEntries(ctx, []catalog.Entry{
		{AppID: "620", Name: "Portal 2"},
		{AppID: "1145360", Name: "Hades"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	entries, err := db.CatalogEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []catalog.Entry{
		{AppID: "400", Name: "Portal"},
		{AppID: "620", Name: "Portal 2"},
		{AppID: "1145360", Name: "Hades"},
	}, entries)

	count, err := db.CatalogCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestGetStats(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, _, err := db.CreateOrUpdate(ctx, games.GameDraft{Title: "A", Platforms: []games.PlatformEntryDraft{
		{Platform: "Steam", Price: price("10.50"), Identifier: "1"},
		{Platform: "Switch", Price: price("30")},
	}})
	require.NoError(t, err)
	_, _, err = db.CreateOrUpdate(ctx, games.GameDraft{Title: "B", Platforms: []games.PlatformEntryDraft{
		{Platform: "Steam", Price: price("4.49")},
	}})
	require.NoError(t, err)

	stats, err := db.GetStats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	assert.Equal(t, "Steam", stats[0].Platform)
	assert.Equal(t, 2, stats[0].GameCount)
	assert.Equal(t, 2, stats[0].CopyCount)
	assert.Equal(t, 1, stats[0].Resolved)
	assert.Equal(t, 1, stats[0].Unresolved)
	assert.Equal(t, "14.99", stats[0].Spent.StringFixed(2))

	assert.Equal(t, "Switch", stats[1].Platform)
	assert.Equal(t, "30.00", stats[1].Spent.StringFixed(2))
}
