package csvimport

import (
	"context"
	"fmt"

	"github.com/gameshelf/gameshelf/pkg/games"
)

// Repository persists drafts. CreateOrUpdate is idempotent by title and
// reports whether a new record was created.
type Repository interface {
	CreateOrUpdate(ctx context.Context, draft games.GameDraft) (games.GameRef, bool, error)
}

// Logger abstracts logging so callers can use logrus, stdlib log, or any
// other logger that satisfies this interface.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Debugf(string, ...interface{}) {}

// OutcomeKind classifies what happened to a row.
type OutcomeKind string

const (
	Created   OutcomeKind = "created"
	Duplicate OutcomeKind = "duplicate"
	Skipped   OutcomeKind = "skipped"
)

const ReasonBlankTitle = "blank title"

// Outcome is the result of processing one row. Row is 1-based.
type Outcome struct {
	Row    int
	Kind   OutcomeKind
	Title  string
	Record games.GameRef // set for Created and Duplicate
	Reason string        // set for Skipped
}

// Summary aggregates the outcomes of a run.
type Summary struct {
	Outcomes        []Outcome
	Created         int
	Duplicates      int
	Skipped         int
	DuplicateTitles []string
}

func (s *Summary) add(o Outcome) {
	s.Outcomes = append(s.Outcomes, o)
	switch o.Kind {
	case Created:
		s.Created++
	case Duplicate:
		s.Duplicates++
		s.DuplicateTitles = append(s.DuplicateTitles, o.Record.Name)
	case Skipped:
		s.Skipped++
	}
}

// AdapterFunc turns a raw row into a draft source.
type AdapterFunc func(RawRow) games.GameDraftSource

// Config holds everything an Importer needs.
type Config struct {
	Repository Repository
	Adapter    AdapterFunc // defaults to NewRowAdapter
	Log        Logger      // optional; nil = no logging

	// OnRow is called after each row with its outcome and the row count.
	OnRow func(o Outcome, total int)
}

// Importer drives rows through an adapter into a repository.
type Importer struct {
	repo  Repository
	adapt AdapterFunc
	log   Logger
	onRow func(Outcome, int)
}

func NewImporter(cfg Config) *Importer {
	im := &Importer{
		repo:  cfg.Repository,
		adapt: cfg.Adapter,
		log:   cfg.Log,
		onRow: cfg.OnRow,
	}
	if im.adapt == nil {
		im.adapt = func(r RawRow) games.GameDraftSource { return NewRowAdapter(r) }
	}
	if im.log == nil {
		im.log = nopLogger{}
	}
	return im
}

// Process handles rows sequentially in input order. Rows without a title
// are skipped without touching the repository. A repository error stops
// the run; the summary of the rows processed so far is returned with it.
func (im *Importer) Process(ctx context.Context, rows []RawRow) (*Summary, error) {
	summary := &Summary{}
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		draft := games.FromSource(im.adapt(row))
		outcome := Outcome{Row: i + 1, Title: draft.Title}

		if !draft.HasTitle() {
			outcome.Kind = Skipped
			outcome.Reason = ReasonBlankTitle
			im.log.Debugf("Row %d skipped: %s", outcome.Row, ReasonBlankTitle)
		} else {
			ref, created, err := im.repo.CreateOrUpdate(ctx, draft)
			if err != nil {
				return summary, fmt.Errorf("row %d (%s): %w", outcome.Row, draft.Title, err)
			}
			outcome.Record = ref
			if created {
				outcome.Kind = Created
			} else {
				outcome.Kind = Duplicate
				im.log.Infof("Duplicate %s", ref.Name)
			}
		}

		summary.add(outcome)
		if im.onRow != nil {
			im.onRow(outcome, len(rows))
		}
	}
	return summary, nil
}
