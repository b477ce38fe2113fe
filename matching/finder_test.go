package matching

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/Jmurp11/hockey-team-scheduler/contacts"
	"github.com/Jmurp11/hockey-team-scheduler/emaildraft"
	"github.com/Jmurp11/hockey-team-scheduler/store"
	"github.com/Jmurp11/hockey-team-scheduler/store/memstore"
)

type fakeManagerResolver struct {
	mu        sync.Mutex
	inFlight  int
	maxActive int
	calls     []string
	byTeam    map[string]*contacts.Resolution
}

func (f *fakeManagerResolver) Resolve(ctx context.Context, team string) (*contacts.Resolution, error) {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxActive {
		f.maxActive = f.inFlight
	}
	f.calls = append(f.calls, team)
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if res, ok := f.byTeam[team]; ok {
		return res, nil
	}
	return &contacts.Resolution{Status: contacts.StatusNotFound}, nil
}

type fakeDraftGenerator struct{}

func (fakeDraftGenerator) Generate(ctx context.Context, req emaildraft.Request) (string, string) {
	return "Game with " + req.RecipientTeam + "?", "Hi,\n\nWant to play us?"
}

func testUserResolver() *memstore.UserContextResolver {
	return &memstore.UserContextResolver{Context: &store.UserContext{
		Name:     "Jamie Murphy",
		TeamID:   "team-self",
		TeamName: "NJ Falcons",
		Rating:   70,
	}}
}

func TestFindRanksDescendingAndContiguous(t *testing.T) {
	mem := memstore.New()
	mem.AddCandidate(store.NearbyTeamCandidate{ID: "t1", Name: "Far Rivals", Rating: 70, DistanceMiles: 90})
	mem.AddCandidate(store.NearbyTeamCandidate{ID: "t2", Name: "Near Rivals", Rating: 70, DistanceMiles: 10})
	mem.AddCandidate(store.NearbyTeamCandidate{ID: "t3", Name: "Mid Rivals", Rating: 72, DistanceMiles: 40})

	finder := NewFinder(DefaultConfig(), testUserResolver(), mem, mem, nil, nil)
	matches, err := finder.Find(context.Background(), Request{UserID: "u1", MaxDistanceMiles: 100})
	if err != nil {
		t.Fatalf("Find() error: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("matches = %d, want 3", len(matches))
	}
	for i, m := range matches {
		if m.Rank != i+1 {
			t.Errorf("match %d: rank = %d, want %d", i, m.Rank, i+1)
		}
		if i > 0 && matches[i-1].Scores.Overall < m.Scores.Overall {
			t.Errorf("matches not sorted descending at index %d", i)
		}
		if m.Explanation == "" {
			t.Errorf("match %d: empty explanation", i)
		}
	}
	if matches[0].Team.ID != "t2" {
		t.Errorf("top match = %s, want the near equal-rated team t2", matches[0].Team.ID)
	}
}

func TestFindExcludesOwnTeam(t *testing.T) {
	mem := memstore.New()
	mem.AddCandidate(store.NearbyTeamCandidate{ID: "team-self", Name: "NJ Falcons", Rating: 70, DistanceMiles: 0})
	mem.AddCandidate(store.NearbyTeamCandidate{ID: "t1", Name: "Rivals", Rating: 70, DistanceMiles: 10})

	finder := NewFinder(DefaultConfig(), testUserResolver(), mem, mem, nil, nil)
	matches, err := finder.Find(context.Background(), Request{UserID: "u1", MaxDistanceMiles: 100})
	if err != nil {
		t.Fatalf("Find() error: %v", err)
	}
	if len(matches) != 1 || matches[0].Team.ID != "t1" {
		t.Errorf("matches = %+v, want only t1", matches)
	}
}

func TestFindPenalizesAlreadyPlayed(t *testing.T) {
	mem := memstore.New()
	mem.AddCandidate(store.NearbyTeamCandidate{ID: "t1", Name: "Played Before", Rating: 70, DistanceMiles: 20})
	mem.AddCandidate(store.NearbyTeamCandidate{ID: "t2", Name: "Fresh Faces", Rating: 70, DistanceMiles: 20})
	if err := mem.CreateGame(context.Background(), &store.Game{
		UserID: "u1", OpponentID: "t1", OpponentName: "Played Before", Date: "2026-09-01",
	}); err != nil {
		t.Fatal(err)
	}

	finder := NewFinder(DefaultConfig(), testUserResolver(), mem, mem, nil, nil)
	matches, err := finder.Find(context.Background(), Request{
		UserID:                 "u1",
		MaxDistanceMiles:       100,
		ExcludeRecentOpponents: true,
	})
	if err != nil {
		t.Fatalf("Find() error: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("matches = %d, want 2 (penalized, not excluded)", len(matches))
	}
	if matches[0].Team.ID != "t2" {
		t.Errorf("top match = %s, want the never-played team", matches[0].Team.ID)
	}
	played := matches[1]
	if !played.AlreadyPlayed {
		t.Errorf("alreadyPlayed = false for t1")
	}
	if played.Scores.Overall >= matches[0].Scores.Overall {
		t.Errorf("played overall %d not below fresh overall %d", played.Scores.Overall, matches[0].Scores.Overall)
	}
	if !strings.Contains(played.Explanation, "already played") {
		t.Errorf("explanation %q missing already-played note", played.Explanation)
	}
}

func TestFindTruncatesToLimit(t *testing.T) {
	mem := memstore.New()
	for _, c := range []store.NearbyTeamCandidate{
		{ID: "t1", Name: "A", Rating: 70, DistanceMiles: 10},
		{ID: "t2", Name: "B", Rating: 70, DistanceMiles: 20},
		{ID: "t3", Name: "C", Rating: 70, DistanceMiles: 30},
		{ID: "t4", Name: "D", Rating: 70, DistanceMiles: 40},
	} {
		mem.AddCandidate(c)
	}

	finder := NewFinder(DefaultConfig(), testUserResolver(), mem, mem, nil, nil)
	matches, err := finder.Find(context.Background(), Request{UserID: "u1", MaxDistanceMiles: 100, Limit: 2})
	if err != nil {
		t.Fatalf("Find() error: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("matches = %d, want 2", len(matches))
	}
}

func TestFindAttachesManagersInBoundedBatches(t *testing.T) {
	mem := memstore.New()
	for _, c := range []store.NearbyTeamCandidate{
		{ID: "t1", Name: "Alpha", Rating: 70, DistanceMiles: 10},
		{ID: "t2", Name: "Bravo", Rating: 70, DistanceMiles: 20},
		{ID: "t3", Name: "Charlie", Rating: 70, DistanceMiles: 30},
		{ID: "t4", Name: "Delta", Rating: 70, DistanceMiles: 40},
		{ID: "t5", Name: "Echo", Rating: 70, DistanceMiles: 50},
	} {
		mem.AddCandidate(c)
	}

	resolver := &fakeManagerResolver{byTeam: map[string]*contacts.Resolution{
		"Alpha": {
			Status:  contacts.StatusFound,
			Manager: &store.ManagerContact{Name: "Dana Cole", Email: "dana@alpha.example"},
		},
	}}

	finder := NewFinder(DefaultConfig(), testUserResolver(), mem, mem, resolver, fakeDraftGenerator{})
	matches, err := finder.Find(context.Background(), Request{
		UserID:                 "u1",
		MaxDistanceMiles:       100,
		IncludeManagerContacts: true,
		IncludeEmailDrafts:     true,
	})
	if err != nil {
		t.Fatalf("Find() error: %v", err)
	}
	if len(matches) != 5 {
		t.Fatalf("matches = %d, want 5", len(matches))
	}

	if len(resolver.calls) != 5 {
		t.Errorf("resolver calls = %d, want one per match", len(resolver.calls))
	}
	if resolver.maxActive > DefaultConfig().ManagerBatchSize {
		t.Errorf("max concurrent discoveries = %d, want at most %d", resolver.maxActive, DefaultConfig().ManagerBatchSize)
	}

	top := matches[0]
	if top.Team.Name != "Alpha" {
		t.Fatalf("top match = %s, want Alpha", top.Team.Name)
	}
	if top.ManagerStatus != contacts.StatusFound || top.Manager == nil {
		t.Errorf("top manager status = %q manager=%v", top.ManagerStatus, top.Manager)
	}
	if top.EmailDraft == nil {
		t.Fatalf("top match missing email draft")
	}
	if top.EmailDraft.To != "dana@alpha.example" {
		t.Errorf("draft to = %q", top.EmailDraft.To)
	}
	if !strings.HasPrefix(top.EmailDraft.Signature, "Best regards,") {
		t.Errorf("draft signature = %q", top.EmailDraft.Signature)
	}

	for _, m := range matches[1:] {
		if m.ManagerStatus != contacts.StatusNotFound {
			t.Errorf("match %s: status = %q, want not-found", m.Team.Name, m.ManagerStatus)
		}
		if m.EmailDraft != nil {
			t.Errorf("match %s: unexpected draft", m.Team.Name)
		}
	}
}
