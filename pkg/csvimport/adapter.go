package csvimport

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gameshelf/gameshelf/pkg/coerce"
	"github.com/gameshelf/gameshelf/pkg/games"
)

// Columns names the spreadsheet columns read by RowAdapter.
type Columns struct {
	Title             string
	Platforms         [3]string
	Price             string
	Added             string
	Source            string
	Identifier        string
	PlayPriority      string
	Played            string
	ControllerSupport string
	MaxPlayers        string
	PartyFit          string
	Review            string
	Notes             string
	Genre             string
}

// DefaultColumns matches the layout of the collection spreadsheet.
func DefaultColumns() Columns {
	return Columns{
		Title:             "name",
		Platforms:         [3]string{"platform_1", "platform_2", "platform_3"},
		Price:             "price",
		Added:             "added",
		Source:            "source",
		Identifier:        "identifier",
		PlayPriority:      "play_priority",
		Played:            "played",
		ControllerSupport: "controller_support",
		MaxPlayers:        "max_players",
		PartyFit:          "party_fit",
		Review:            "review",
		Notes:             "notes",
		Genre:             "genre",
	}
}

// RowAdapter presents one RawRow as a games.GameDraftSource.
type RowAdapter struct {
	row  RawRow
	cols Columns
}

// NewRowAdapter adapts row using the default column layout.
func NewRowAdapter(row RawRow) *RowAdapter {
	return &RowAdapter{row: row, cols: DefaultColumns()}
}

// NewRowAdapterWithColumns adapts row using a custom column layout.
func NewRowAdapterWithColumns(row RawRow, cols Columns) *RowAdapter {
	return &RowAdapter{row: row, cols: cols}
}

func (a *RowAdapter) Title() string {
	if t := coerce.Text(a.row.Get(a.cols.Title)); t != nil {
		return *t
	}
	return ""
}

func (a *RowAdapter) PlayPriority() *int {
	return coerce.BoundedInt(a.row.Get(a.cols.PlayPriority), 0, 10)
}

func (a *RowAdapter) Played() *bool {
	return coerce.StrictBool(a.row.Get(a.cols.Played))
}

func (a *RowAdapter) ControllerSupport() *bool {
	return coerce.TriState(a.row.Get(a.cols.ControllerSupport))
}

func (a *RowAdapter) MaxPlayers() *int {
	return coerce.BoundedInt(a.row.Get(a.cols.MaxPlayers), 0, math.MaxInt)
}

func (a *RowAdapter) PartyFit() *bool {
	return coerce.Marker(a.row.Get(a.cols.PartyFit))
}

func (a *RowAdapter) Review() *int {
	return coerce.BoundedInt(a.row.Get(a.cols.Review), 0, 10)
}

func (a *RowAdapter) Notes() *string {
	return coerce.Text(a.row.Get(a.cols.Notes))
}

func (a *RowAdapter) Genres() []string {
	return coerce.Genres(a.row.Get(a.cols.Genre))
}

// Platforms returns the present platform slots in column order. Purchase
// metadata is recorded once per row and belongs to the first slot.
func (a *RowAdapter) Platforms() []games.PlatformEntrySource {
	var out []games.PlatformEntrySource
	for i, column := range a.cols.Platforms {
		name, ok := coerce.PlatformName(a.row.Get(column))
		if !ok {
			continue
		}
		p := &platformAdapter{name: name}
		if i == 0 {
			p.row = a.row
			p.cols = &a.cols
		}
		out = append(out, p)
	}
	return out
}

// platformAdapter is one platform slot. Slots without row access carry
// only their name.
type platformAdapter struct {
	name string
	row  RawRow
	cols *Columns
}

func (p *platformAdapter) Platform() string { return p.name }

func (p *platformAdapter) Added() *time.Time {
	if p.cols == nil {
		return nil
	}
	return coerce.Date(p.row.Get(p.cols.Added))
}

func (p *platformAdapter) Price() *decimal.Decimal {
	if p.cols == nil {
		return nil
	}
	return coerce.Price(p.row.Get(p.cols.Price))
}

func (p *platformAdapter) Vendor() string {
	if p.cols == nil {
		return ""
	}
	return coerce.VendorName(p.row.Get(p.cols.Source))
}

func (p *platformAdapter) Identifier() string {
	if p.cols == nil {
		return ""
	}
	if t := coerce.Text(p.row.Get(p.cols.Identifier)); t != nil {
		return *t
	}
	return ""
}
