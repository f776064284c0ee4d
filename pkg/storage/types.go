package storage

import "github.com/gameshelf/gameshelf/pkg/games"

// Game is a persisted game with its genres and copies.
type Game struct {
	ID                string
	Name              string
	PlayPriority      *int
	Played            *bool
	ControllerSupport *bool
	MaxPlayers        *int
	PartyFit          *bool
	Review            *int
	Notes             *string
	Genres            []string
	Copies            []games.Copy
}

// Platform is a named storefront or console.
type Platform struct {
	ID   int64
	Name string
}

// CopyFilter controls selection when listing copies.
type CopyFilter struct {
	Platform       string
	GameID         string
	UnresolvedOnly bool
	IncludeDeleted bool
}
