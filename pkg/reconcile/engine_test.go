package reconcile

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/gameshelf/gameshelf/pkg/catalog"
	"github.com/gameshelf/gameshelf/pkg/games"
)

type fakeStore struct {
	platforms []string
	copies    []games.Copy
	setCalls  []string
	failSet   error
}

func (s *fakeStore) HasPlatform(_ context.Context, name string) (bool, error) {
	for _, p := range s.platforms {
		if strings.EqualFold(p, name) {
			return true, nil
		}
	}
	return false, nil
}

// UnresolvedCopies returns everything so the engine's own filtering is
// exercised.
func (s *fakeStore) UnresolvedCopies(context.Context, string) ([]games.Copy, error) {
	out := make([]games.Copy, len(s.copies))
	copy(out, s.copies)
	return out, nil
}

func (s *fakeStore) SetIdentifier(_ context.Context, id int64, identifier string) (bool, error) {
	if s.failSet != nil {
		return false, s.failSet
	}
	for i := range s.copies {
		if s.copies[i].ID != id {
			continue
		}
		if s.copies[i].Identifier != "" {
			return false, nil
		}
		s.copies[i].Identifier = identifier
		s.setCalls = append(s.setCalls, identifier)
		return true, nil
	}
	return false, nil
}

func (s *fakeStore) identifier(id int64) string {
	for _, c := range s.copies {
		if c.ID == id {
			return c.Identifier
		}
	}
	return ""
}

func steamIndex() *catalog.Index {
	return catalog.NewIndex([]catalog.Entry{
		{AppID: "400", Name: "Portal"},
		{AppID: "620", Name: "Portal 2"},
		{AppID: "292030", Name: "The Witcher 3: Wild Hunt"},
		{AppID: "1", Name: "Doom"},
		{AppID: "2", Name: "DOOM"},
	})
}

func steamCopy(id int64, title, identifier string) games.Copy {
	return games.Copy{ID: id, Title: title, Platform: "Steam", Identifier: identifier}
}

func newTestEngine(t *testing.T, store CopyStore, cfg Config) *Engine {
	t.Helper()
	cfg.Store = store
	if cfg.Index == nil {
		cfg.Index = steamIndex()
	}
	if cfg.Platform == "" {
		cfg.Platform = "Steam"
	}
	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestMatchThreshold(t *testing.T) {
	e := newTestEngine(t, &fakeStore{}, Config{})

	tests := []struct {
		title string
		kind  Kind
		appID string
		score int
	}{
		{"portal 2", Exact, "620", 100},
		{"DOOM", Exact, "1", 100},
		{"Witcher 3 Wild Hunt The", Fuzzy, "292030", 100},
		{"Portal 3", Fuzzy, "620", 88},
		{"zzz", NoMatch, "", 0},
	}
	for _, tc := range tests {
		t.Run(tc.title, func(t *testing.T) {
			m := e.Match(tc.title)
			if m.Kind != tc.kind || m.Entry.AppID != tc.appID || m.Score != tc.score {
				t.Fatalf("want %s/%s/%d, got %s/%s/%d", tc.kind, tc.appID, tc.score, m.Kind, m.Entry.AppID, m.Score)
			}
		})
	}
}

func TestMatchReviewReportsMultipleExactAsAmbiguous(t *testing.T) {
	e := newTestEngine(t, &fakeStore{}, Config{Policy: PolicyReview, Confirm: ConfirmFunc(func(string, string, int) (bool, error) { return false, nil })})

	m := e.Match("doom")
	if m.Kind != Ambiguous {
		t.Fatalf("expected ambiguous, got %s", m.Kind)
	}
	want := []catalog.Entry{{AppID: "1", Name: "Doom"}, {AppID: "2", Name: "DOOM"}}
	if !reflect.DeepEqual(m.Candidates, want) {
		t.Fatalf("want %#v, got %#v", want, m.Candidates)
	}
}

func TestRunThresholdPolicy(t *testing.T) {
	store := &fakeStore{
		platforms: []string{"Steam"},
		copies: []games.Copy{
			steamCopy(1, "Portal", "123456"),
			steamCopy(2, "portal 2", ""),
			steamCopy(3, "Witcher 3 Wild Hunt The", ""),
			steamCopy(4, "Portal 3", ""),
			steamCopy(5, "zzz", ""),
			{ID: 6, Title: "Portal", Platform: "Switch"},
			steamCopy(7, "Doom", ""),
		},
	}
	var hooked []string
	e := newTestEngine(t, store, Config{OnAssign: func(a Assignment) { hooked = append(hooked, a.Entry.AppID) }})

	report, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := store.identifier(1); got != "123456" {
		t.Fatalf("existing identifier was overwritten: %q", got)
	}
	if got := store.identifier(6); got != "" {
		t.Fatalf("copy on another platform was touched: %q", got)
	}
	wantSet := []string{"620", "292030", "1"}
	if !reflect.DeepEqual(store.setCalls, wantSet) {
		t.Fatalf("want identifiers %v, got %v", wantSet, store.setCalls)
	}
	if !reflect.DeepEqual(hooked, wantSet) {
		t.Fatalf("want OnAssign %v, got %v", wantSet, hooked)
	}
	if len(report.Assigned) != 3 || report.Assigned[0].Kind != Exact || report.Assigned[1].Kind != Fuzzy {
		t.Fatalf("unexpected assignments %#v", report.Assigned)
	}
	if report.Assigned[0].Copy.Identifier != "620" {
		t.Fatalf("assignment should carry the new identifier, got %q", report.Assigned[0].Copy.Identifier)
	}
	if len(report.Review) != 1 || report.Review[0].Copy.ID != 4 || report.Review[0].Candidate.AppID != "620" || report.Review[0].Score != 88 {
		t.Fatalf("unexpected review list %#v", report.Review)
	}
	if len(report.NoMatches) != 1 || report.NoMatches[0].ID != 5 {
		t.Fatalf("unexpected no-match list %#v", report.NoMatches)
	}
	if len(report.Ambiguous) != 0 || len(report.Declined) != 0 {
		t.Fatalf("threshold policy should not produce ambiguous or declined items: %#v", report)
	}
}

func TestRunThresholdSendsWeakTiesToReview(t *testing.T) {
	store := &fakeStore{platforms: []string{"Steam"}, copies: []games.Copy{steamCopy(1, "Doom", "")}}
	ix := catalog.NewIndex([]catalog.Entry{
		{AppID: "379720", Name: "Doom 2016"},
		{AppID: "2280", Name: "Doom 1993"},
	})
	e := newTestEngine(t, store, Config{Index: ix})

	report, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(store.setCalls) != 0 {
		t.Fatalf("candidates below the threshold must not be assigned, got %v", store.setCalls)
	}
	if len(report.Review) != 1 || report.Review[0].Candidate.AppID != "379720" {
		t.Fatalf("expected first loaded candidate in review list, got %#v", report.Review)
	}
}

func TestRunThresholdAssignsFirstOfTiedCandidates(t *testing.T) {
	ix := catalog.NewIndex([]catalog.Entry{
		{AppID: "10", Name: "Half-Life: Source"},
		{AppID: "20", Name: "Source Half-Life"},
	})
	store := &fakeStore{platforms: []string{"Steam"}, copies: []games.Copy{steamCopy(1, "Half Life Source", "")}}
	e := newTestEngine(t, store, Config{Index: ix})

	m := e.Match("Half Life Source")
	if m.Kind != Fuzzy || m.Entry.AppID != "10" || m.Score != 100 {
		t.Fatalf("expected fuzzy 10 at 100, got %s %s %d", m.Kind, m.Entry.AppID, m.Score)
	}
	if len(m.Candidates) != 2 {
		t.Fatalf("expected both tied entries listed, got %#v", m.Candidates)
	}

	report, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !reflect.DeepEqual(store.setCalls, []string{"10"}) {
		t.Fatalf("want identifier 10, got %v", store.setCalls)
	}
	if len(report.Review) != 0 || len(report.Ambiguous) != 0 {
		t.Fatalf("a tie above the threshold is not for review: %#v", report)
	}
}

func TestMatchExactSkipsFuzzyScoring(t *testing.T) {
	calls := 0
	counting := func(a, b string) int {
		calls++
		return catalog.TokenSortRatio(a, b)
	}
	ix := catalog.NewIndex([]catalog.Entry{
		{AppID: "400", Name: "Portal"},
		{AppID: "620", Name: "Portal 2"},
	}, catalog.WithScorer(counting))
	e := newTestEngine(t, &fakeStore{}, Config{Index: ix})

	m := e.Match("portal 2")
	if m.Kind != Exact || m.Entry.AppID != "620" {
		t.Fatalf("expected exact 620, got %s %s", m.Kind, m.Entry.AppID)
	}
	if calls != 0 {
		t.Fatalf("exact match ran the scorer %d times", calls)
	}
}

func TestRunReviewPolicy(t *testing.T) {
	store := &fakeStore{
		platforms: []string{"steam"},
		copies: []games.Copy{
			steamCopy(1, "portal 2", ""),
			steamCopy(2, "Doom", ""),
			steamCopy(3, "Portal 3", ""),
			steamCopy(4, "Portl", ""),
		},
	}
	var asked []string
	confirm := ConfirmFunc(func(title, candidate string, score int) (bool, error) {
		asked = append(asked, title+"->"+candidate)
		return title == "Portal 3", nil
	})
	e := newTestEngine(t, store, Config{Policy: PolicyReview, Confirm: confirm})

	report, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	wantAsked := []string{"Portal 3->Portal 2", "Portl->Portal"}
	if !reflect.DeepEqual(asked, wantAsked) {
		t.Fatalf("want prompts %v, got %v", wantAsked, asked)
	}
	if !reflect.DeepEqual(store.setCalls, []string{"620", "620"}) {
		t.Fatalf("unexpected identifiers %v", store.setCalls)
	}
	if len(report.Ambiguous) != 1 || report.Ambiguous[0].Copy.ID != 2 || len(report.Ambiguous[0].Candidates) != 2 {
		t.Fatalf("unexpected ambiguous list %#v", report.Ambiguous)
	}
	if store.identifier(2) != "" {
		t.Fatal("ambiguous exact matches must never be assigned")
	}
	if len(report.Declined) != 1 || report.Declined[0].Copy.ID != 4 {
		t.Fatalf("unexpected declined list %#v", report.Declined)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	store := &fakeStore{platforms: []string{"Steam"}, copies: []games.Copy{steamCopy(1, "Portal 2", ""), steamCopy(2, "Portal", "")}}
	e := newTestEngine(t, store, Config{})

	if _, err := e.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	report, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(report.Assigned) != 0 || len(store.setCalls) != 2 {
		t.Fatalf("second run should be a no-op, got %#v (calls %v)", report.Assigned, store.setCalls)
	}
}

func TestRunPlatformNotConfigured(t *testing.T) {
	e := newTestEngine(t, &fakeStore{platforms: []string{"Switch"}}, Config{})
	_, err := e.Run(context.Background())
	if !errors.Is(err, ErrPlatformNotConfigured) {
		t.Fatalf("expected ErrPlatformNotConfigured, got %v", err)
	}
}

func TestRunStopsOnStoreFault(t *testing.T) {
	boom := errors.New("disk full")
	store := &fakeStore{platforms: []string{"Steam"}, copies: []games.Copy{steamCopy(1, "Portal 2", "")}, failSet: boom}
	e := newTestEngine(t, store, Config{})

	report, err := e.Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected store fault, got %v", err)
	}
	if report == nil || len(report.Assigned) != 0 {
		t.Fatalf("expected empty partial report, got %#v", report)
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	store := &fakeStore{platforms: []string{"Steam"}, copies: []games.Copy{steamCopy(1, "Portal 2", "")}}
	e := newTestEngine(t, store, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := e.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(store.setCalls) != 0 {
		t.Fatalf("cancelled run wrote %v", store.setCalls)
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"", PolicyThreshold, false},
		{"Threshold", PolicyThreshold, false},
		{" review ", PolicyReview, false},
		{"merge", "", true},
	}
	for _, tc := range tests {
		got, err := ParsePolicy(tc.in)
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Fatalf("ParsePolicy(%q): want %q (err %t), got %q (%v)", tc.in, tc.want, tc.wantErr, got, err)
		}
	}
}

func TestNewEngineValidation(t *testing.T) {
	if _, err := NewEngine(Config{Store: &fakeStore{}}); err == nil {
		t.Fatal("expected error without index")
	}
	if _, err := NewEngine(Config{Index: steamIndex(), Store: &fakeStore{}, Policy: PolicyReview}); err == nil {
		t.Fatal("expected error for review policy without confirmer")
	}
	if _, err := NewEngine(Config{Index: steamIndex(), Store: &fakeStore{}, Policy: "both"}); err == nil {
		t.Fatal("expected error for unknown policy")
	}
}
