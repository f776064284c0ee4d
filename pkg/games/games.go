// Package games holds the typed drafts produced by importers and the record
// references returned by repositories.
package games

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// GameDraftSource exposes one imported game. Implementations adapt a raw
// input (a CSV row, a test fixture) without performing I/O.
type GameDraftSource interface {
	Title() string
	PlayPriority() *int
	Played() *bool
	ControllerSupport() *bool
	MaxPlayers() *int
	PartyFit() *bool
	Review() *int
	Notes() *string
	Genres() []string
	Platforms() []PlatformEntrySource
}

// PlatformEntrySource exposes one owned copy of a game on a platform.
type PlatformEntrySource interface {
	Platform() string
	Added() *time.Time
	Price() *decimal.Decimal
	Vendor() string
	Identifier() string
}

// GameDraft is the materialized, read-only view of an imported game.
type GameDraft struct {
	Title             string
	PlayPriority      *int
	Played            *bool
	ControllerSupport *bool
	MaxPlayers        *int
	PartyFit          *bool
	Review            *int
	Notes             *string
	Genres            []string
	Platforms         []PlatformEntryDraft
}

// PlatformEntryDraft is one owned copy. Only the first copy of a row usually
// carries purchase metadata.
type PlatformEntryDraft struct {
	Platform   string
	Added      *time.Time
	Price      *decimal.Decimal
	Vendor     string
	Identifier string
}

// HasTitle reports whether the draft may be handed to a repository.
func (g GameDraft) HasTitle() bool {
	return strings.TrimSpace(g.Title) != ""
}

// GameRef identifies a persisted game.
type GameRef struct {
	ID   string
	Name string
}

// FromSource materializes a source into a draft.
func FromSource(src GameDraftSource) GameDraft {
	d := GameDraft{
		Title:             strings.TrimSpace(src.Title()),
		PlayPriority:      src.PlayPriority(),
		Played:            src.Played(),
		ControllerSupport: src.ControllerSupport(),
		MaxPlayers:        src.MaxPlayers(),
		PartyFit:          src.PartyFit(),
		Review:            src.Review(),
		Notes:             src.Notes(),
		Genres:            src.Genres(),
	}
	if d.Genres == nil {
		d.Genres = []string{}
	}
	for _, p := range src.Platforms() {
		d.Platforms = append(d.Platforms, PlatformEntryDraft{
			Platform:   p.Platform(),
			Added:      p.Added(),
			Price:      p.Price(),
			Vendor:     p.Vendor(),
			Identifier: p.Identifier(),
		})
	}
	return d
}

// Copy is a persisted game-on-platform record: one owned copy of a game,
// optionally linked to a catalog identifier.
type Copy struct {
	ID         int64
	GameID     string
	Title      string
	Platform   string
	Added      *time.Time
	Price      *decimal.Decimal
	Vendor     string
	Identifier string
	Deleted    bool
}

// Resolved reports whether the copy already carries an identifier.
func (c Copy) Resolved() bool {
	return strings.TrimSpace(c.Identifier) != ""
}
