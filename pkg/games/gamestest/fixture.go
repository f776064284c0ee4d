// Package gamestest provides in-memory game sources for tests.
package gamestest

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/gameshelf/gameshelf/pkg/games"
)

// Game is a fixed games.GameDraftSource.
type Game struct {
	Name            string
	Priority        *int
	WasPlayed       *bool
	Controller      *bool
	Players         *int
	Party           *bool
	Rating          *int
	Note            *string
	GenreList       []string
	PlatformEntries []Platform
}

func (g Game) Title() string { return g.Name }
func (g Game) PlayPriority() *int { return g.Priority }
func (g Game) Played() *bool { return g.WasPlayed }
func (g Game) ControllerSupport() *bool { return g.Controller }
func (g Game) MaxPlayers() *int { return g.Players }
func (g Game) PartyFit() *bool { return g.Party }
func (g Game) Review() *int { return g.Rating }
func (g Game) Notes() *string { return g.Note }
func (g Game) Genres() []string { return g.GenreList }

func (g Game) Platforms() []games.PlatformEntrySource {
	out := make([]games.PlatformEntrySource, 0, len(g.PlatformEntries))
	for _, p := range g.PlatformEntries {
		out = append(out, p)
	}
	return out
}

// Platform is a fixed games.PlatformEntrySource.
type Platform struct {
	Name     string
	AddedOn  *time.Time
	Paid     *decimal.Decimal
	Store    string
	ExternID string
}

func (p Platform) Platform() string { return p.Name }
func (p Platform) Added() *time.Time { return p.AddedOn }
func (p Platform) Price() *decimal.Decimal { return p.Paid }
func (p Platform) Vendor() string { return p.Store }
func (p Platform) Identifier() string { return p.ExternID }

// Draft materializes g.
func (g Game) Draft() games.GameDraft { return games.FromSource(g) }
