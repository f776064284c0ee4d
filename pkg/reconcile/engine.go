// Package reconcile links owned copies on one platform to canonical catalog
// entries. A run walks the copies that still lack an identifier, matches
// each title against the catalog index and writes the identifier for
// accepted matches. Existing identifiers are never touched.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gameshelf/gameshelf/pkg/catalog"
	"github.com/gameshelf/gameshelf/pkg/games"
)

// DefaultThreshold is the minimum fuzzy score assigned without review.
const DefaultThreshold = 95

// ErrPlatformNotConfigured is returned when the platform being reconciled
// has no stored record.
var ErrPlatformNotConfigured = errors.New("platform is not configured")

// CopyStore reads unresolved copies and writes identifiers. SetIdentifier
// must refuse to overwrite a non-empty identifier and report false then.
type CopyStore interface {
	HasPlatform(ctx context.Context, name string) (bool, error)
	UnresolvedCopies(ctx context.Context, platform string) ([]games.Copy, error)
	SetIdentifier(ctx context.Context, copyID int64, identifier string) (bool, error)
}

// Confirmer asks an operator whether a fuzzy candidate is the right game.
type Confirmer interface {
	Confirm(title, candidate string, score int) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(title, candidate string, score int) (bool, error)

func (f ConfirmFunc) Confirm(title, candidate string, score int) (bool, error) {
	return f(title, candidate, score)
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

// Policy selects how matches are accepted. A run uses exactly one.
type Policy string

const (
	// PolicyThreshold assigns exact matches and the best fuzzy match when it
	// scores at least the threshold. Weaker candidates are listed for review.
	PolicyThreshold Policy = "threshold"
	// PolicyReview assigns a single exact match outright, reports several
	// exact matches as ambiguous and asks the Confirmer about the best fuzzy
	// candidate whatever its score.
	PolicyReview Policy = "review"
)

// ParsePolicy resolves a configured policy name.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyThreshold, nil
	case PolicyThreshold, PolicyReview:
		return p, nil
	default:
		return "", fmt.Errorf("unknown match policy %q", s)
	}
}

// Kind classifies a match.
type Kind int

const (
	NoMatch Kind = iota
	Exact
	Fuzzy
	Ambiguous
)

func (k Kind) String() string {
	switch k {
	case Exact:
		return "exact"
	case Fuzzy:
		return "fuzzy"
	case Ambiguous:
		return "ambiguous"
	default:
		return "no match"
	}
}

// MatchResult is the outcome of matching one title. Entry and Score describe
// the preferred candidate, the first loaded among equals. Candidates lists
// every distinct entry sharing that score when there is more than one.
type MatchResult struct {
	Kind       Kind
	Entry      catalog.Entry
	Score      int
	Candidates []catalog.Entry
}

// Assignment is an identifier written to a copy.
type Assignment struct {
	Copy  games.Copy
	Entry catalog.Entry
	Score int
	Kind  Kind
}

// ReviewItem is a candidate that was not assigned automatically.
type ReviewItem struct {
	Copy      games.Copy
	Candidate catalog.Entry
	Score     int
}

// AmbiguousItem is a copy whose title matched several entries equally.
type AmbiguousItem struct {
	Copy       games.Copy
	Candidates []catalog.Entry
}

// Report lists what a run did with every copy it looked at.
type Report struct {
	Assigned  []Assignment
	NoMatches []games.Copy
	Ambiguous []AmbiguousItem
	Review    []ReviewItem
	Declined  []ReviewItem
	Skipped   []games.Copy
}

// Config wires an Engine.
type Config struct {
	Index     *catalog.Index
	Store     CopyStore
	Platform  string
	Policy    Policy
	Threshold int       // 0 = DefaultThreshold
	Confirm   Confirmer // required by PolicyReview
	Log       Logger    // optional; nil = no logging

	// OnAssign is called after each identifier is written.
	OnAssign func(a Assignment)
}

type Engine struct {
	cfg Config
	log Logger
}

// NewEngine validates cfg and builds an Engine.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Index == nil {
		return nil, errors.New("reconcile: catalog index is required")
	}
	if cfg.Policy == "" {
		cfg.Policy = PolicyThreshold
	}
	if _, err := ParsePolicy(string(cfg.Policy)); err != nil {
		return nil, err
	}
	if cfg.Policy == PolicyReview && cfg.Confirm == nil {
		return nil, errors.New("reconcile: review policy needs a confirmer")
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	log := cfg.Log
	if log == nil {
		log = nopLogger{}
	}
	return &Engine{cfg: cfg, log: log}, nil
}

// Match classifies title against the catalog without side effects.
func (e *Engine) Match(title string) MatchResult {
	exact := e.cfg.Index.Exact(title)
	switch {
	case len(exact) == 1:
		return MatchResult{Kind: Exact, Entry: exact[0], Score: 100}
	case len(exact) > 1:
		if e.cfg.Policy == PolicyReview {
			return MatchResult{Kind: Ambiguous, Entry: exact[0], Score: 100, Candidates: exact}
		}
		return MatchResult{Kind: Exact, Entry: exact[0], Score: 100}
	}

	top := e.cfg.Index.BestCandidates(title)
	if len(top) == 0 {
		return MatchResult{Kind: NoMatch}
	}
	best := MatchResult{Kind: Fuzzy, Entry: top[0].Entry, Score: top[0].Score}
	if tied := distinctEntries(top); len(tied) > 1 {
		best.Candidates = tied
	}
	return best
}

func distinctEntries(cs []catalog.Candidate) []catalog.Entry {
	seen := make(map[string]struct{}, len(cs))
	var out []catalog.Entry
	for _, c := range cs {
		if _, ok := seen[c.AppID]; ok {
			continue
		}
		seen[c.AppID] = struct{}{}
		out = append(out, c.Entry)
	}
	return out
}

// Run reconciles every unresolved copy on the configured platform. A store
// or confirmer fault stops the run; the partial report is returned with it.
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	ok, err := e.cfg.Store.HasPlatform(ctx, e.cfg.Platform)
	if err != nil {
		return nil, fmt.Errorf("looking up platform %q: %w", e.cfg.Platform, err)
	}
	if !ok {
		return nil, fmt.Errorf("%q: %w", e.cfg.Platform, ErrPlatformNotConfigured)
	}

	copies, err := e.cfg.Store.UnresolvedCopies(ctx, e.cfg.Platform)
	if err != nil {
		return nil, fmt.Errorf("loading %s copies: %w", e.cfg.Platform, err)
	}
	e.log.Infof("Reconciling %d %s copies against %d catalog entries", len(copies), e.cfg.Platform, e.cfg.Index.Len())

	report := &Report{}
	for _, c := range copies {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if c.Resolved() || !strings.EqualFold(strings.TrimSpace(c.Platform), strings.TrimSpace(e.cfg.Platform)) {
			continue
		}
		if err := e.reconcile(ctx, c, report); err != nil {
			return report, fmt.Errorf("copy %d (%s): %w", c.ID, c.Title, err)
		}
	}
	e.log.Infof("Assigned %d, no match %d, ambiguous %d, review %d, declined %d",
		len(report.Assigned), len(report.NoMatches), len(report.Ambiguous), len(report.Review), len(report.Declined))
	return report, nil
}

func (e *Engine) reconcile(ctx context.Context, c games.Copy, report *Report) error {
	m := e.Match(c.Title)
	switch m.Kind {
	case NoMatch:
		e.log.Debugf("No catalog match for %s", c.Title)
		report.NoMatches = append(report.NoMatches, c)
		return nil

	case Exact:
		return e.assign(ctx, c, m, report)

	case Ambiguous:
		e.log.Warnf("%s matches %d catalog entries exactly", c.Title, len(m.Candidates))
		report.Ambiguous = append(report.Ambiguous, AmbiguousItem{Copy: c, Candidates: m.Candidates})
		return nil
	}

	// Fuzzy
	if len(m.Candidates) > 1 {
		e.log.Debugf("%s: %d candidates tie at %d, using %s", c.Title, len(m.Candidates), m.Score, m.Entry.Name)
	}
	if e.cfg.Policy == PolicyThreshold {
		if m.Score >= e.cfg.Threshold {
			return e.assign(ctx, c, m, report)
		}
		e.log.Debugf("%s: best candidate %s scored %d", c.Title, m.Entry.Name, m.Score)
		report.Review = append(report.Review, ReviewItem{Copy: c, Candidate: m.Entry, Score: m.Score})
		return nil
	}

	yes, err := e.cfg.Confirm.Confirm(c.Title, m.Entry.Name, m.Score)
	if err != nil {
		return fmt.Errorf("confirming %s: %w", m.Entry.Name, err)
	}
	if !yes {
		report.Declined = append(report.Declined, ReviewItem{Copy: c, Candidate: m.Entry, Score: m.Score})
		return nil
	}
	return e.assign(ctx, c, m, report)
}

func (e *Engine) assign(ctx context.Context, c games.Copy, m MatchResult, report *Report) error {
	written, err := e.cfg.Store.SetIdentifier(ctx, c.ID, m.Entry.AppID)
	if err != nil {
		return err
	}
	if !written {
		e.log.Warnf("%s already has an identifier, leaving it", c.Title)
		report.Skipped = append(report.Skipped, c)
		return nil
	}
	a := Assignment{Copy: c, Entry: m.Entry, Score: m.Score, Kind: m.Kind}
	a.Copy.Identifier = m.Entry.AppID
	e.log.Infof("Assigned %s to %s (%s, %d)", m.Entry.AppID, c.Title, m.Kind, m.Score)
	report.Assigned = append(report.Assigned, a)
	if e.cfg.OnAssign != nil {
		e.cfg.OnAssign(a)
	}
	return nil
}
