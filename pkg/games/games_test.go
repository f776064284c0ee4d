package games_test

import (
	"testing"

	"github.com/gameshelf/gameshelf/pkg/games"
	"github.com/gameshelf/gameshelf/pkg/games/gamestest"
)

func TestFromSource(t *testing.T) {
	src := gamestest.Game{
		Name: "  Hades ",
		PlatformEntries: []gamestest.Platform{
			{Name: "Switch", Store: "Nintendo eShop"},
			{Name: "PC"},
		},
	}

	d := games.FromSource(src)
	if d.Title != "Hades" {
		t.Fatalf("expected trimmed title, got %q", d.Title)
	}
	if d.Genres == nil || len(d.Genres) != 0 {
		t.Fatalf("expected empty non-nil genres, got %#v", d.Genres)
	}
	if len(d.Platforms) != 2 || d.Platforms[0].Vendor != "Nintendo eShop" || d.Platforms[1].Platform != "PC" {
		t.Fatalf("unexpected platforms: %#v", d.Platforms)
	}
}

func TestHasTitle(t *testing.T) {
	for _, title := range []string{"", "   "} {
		if (games.GameDraft{Title: title}).HasTitle() {
			t.Fatalf("title %q should not be usable", title)
		}
	}
	if !(games.GameDraft{Title: "Celeste"}).HasTitle() {
		t.Fatal("expected Celeste to be usable")
	}
}
