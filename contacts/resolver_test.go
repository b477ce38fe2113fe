package contacts

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/Jmurp11/hockey-team-scheduler/llm"
	"github.com/Jmurp11/hockey-team-scheduler/llm/llmtest"
	"github.com/Jmurp11/hockey-team-scheduler/store"
	"github.com/Jmurp11/hockey-team-scheduler/store/memstore"
)

func searchText(text string) llmtest.MockSearchResult {
	return llmtest.MockSearchResult{Response: &llm.ModelResponse{
		Content: []llm.Part{llm.NewTextPart(text)},
	}}
}

func TestResolveStoreHitExact(t *testing.T) {
	mem := memstore.New()
	mem.AddContact(store.ManagerContact{
		Name: "Pat Doyle", Email: "pat@falcons.example", Team: "NJ Falcons",
	})
	searcher := llmtest.NewMockWebSearcher()
	resolver := NewResolver(mem, searcher)

	res, err := resolver.Resolve(context.Background(), "NJ Falcons")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if res.Status != StatusFound {
		t.Errorf("status = %q, want %q", res.Status, StatusFound)
	}
	if res.MatchType != MatchExact {
		t.Errorf("matchType = %q, want %q", res.MatchType, MatchExact)
	}
	if res.Manager == nil || res.Manager.Email != "pat@falcons.example" {
		t.Errorf("manager = %+v, want pat@falcons.example", res.Manager)
	}
	if got := len(searcher.TrackedSearchInputs()); got != 0 {
		t.Errorf("web search calls = %d, want 0 on store hit", got)
	}
}

func TestResolveStoreHitViaExpandedTerm(t *testing.T) {
	mem := memstore.New()
	mem.AddContact(store.ManagerContact{
		Name: "Sam Reyes", Email: "sam@example.com", Team: "New Jersey Falcons",
	})
	resolver := NewResolver(mem, llmtest.NewMockWebSearcher())

	res, err := resolver.Resolve(context.Background(), "NJ Falcons")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if res.Status != StatusFound {
		t.Errorf("status = %q, want %q", res.Status, StatusFound)
	}
	if res.MatchedTerm != "new jersey falcons" {
		t.Errorf("matchedTerm = %q, want expanded variant", res.MatchedTerm)
	}
}

func TestResolveStoreHitWithoutEmailIsManualContact(t *testing.T) {
	mem := memstore.New()
	mem.AddContact(store.ManagerContact{Name: "Lee Park", Team: "NJ Falcons"})
	resolver := NewResolver(mem, llmtest.NewMockWebSearcher())

	res, err := resolver.Resolve(context.Background(), "NJ Falcons")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if res.Status != StatusManualContact {
		t.Errorf("status = %q, want %q", res.Status, StatusManualContact)
	}
}

func TestResolveWebFallbackWritesBack(t *testing.T) {
	mem := memstore.New()
	searcher := llmtest.NewMockWebSearcher()
	searcher.EnqueueSearchResult(searchText(`Here is what I found:
[{"name": "Dana Cole", "email": "dana@bears.example", "phone": "555-0101", "team": "Boston Bears", "sourceUrl": "https://bears.example/contact"}]`))
	resolver := NewResolver(mem, searcher)

	res, err := resolver.Resolve(context.Background(), "Boston Bears")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if res.Status != StatusFound {
		t.Errorf("status = %q, want %q", res.Status, StatusFound)
	}
	if res.MatchType != MatchWeb {
		t.Errorf("matchType = %q, want %q", res.MatchType, MatchWeb)
	}
	if res.Manager.Email != "dana@bears.example" {
		t.Errorf("email = %q", res.Manager.Email)
	}

	stored := mem.Contacts()
	if len(stored) != 1 {
		t.Fatalf("stored contacts = %d, want 1 after write-back", len(stored))
	}

	// Second lookup hits the store without another search call.
	res2, err := resolver.Resolve(context.Background(), "Boston Bears")
	if err != nil {
		t.Fatalf("Resolve() second call error: %v", err)
	}
	if res2.MatchType == MatchWeb {
		t.Errorf("second lookup used web search, want store hit")
	}
	if got := len(searcher.TrackedSearchInputs()); got != 1 {
		t.Errorf("web search calls = %d, want 1", got)
	}
}

func TestResolveWebResultCitationMarkersStripped(t *testing.T) {
	mem := memstore.New()
	searcher := llmtest.NewMockWebSearcher()
	searcher.EnqueueSearchResult(searchText(
		`[{"name": "Dana Cole citeturn0search2", "email": "dana@bears.example citeturn0search2", "phone": "", "team": "Boston Bears", "sourceUrl": ""}]`))
	resolver := NewResolver(mem, searcher)

	res, err := resolver.Resolve(context.Background(), "Boston Bears")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	want := &store.ManagerContact{Name: "Dana Cole", Email: "dana@bears.example", Team: "Boston Bears"}
	if diff := cmp.Diff(want, res.Manager, cmpopts.IgnoreFields(store.ManagerContact{}, "ID", "CreatedAt")); diff != "" {
		t.Errorf("manager mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveWebResultWithoutEmailIsManualContact(t *testing.T) {
	mem := memstore.New()
	searcher := llmtest.NewMockWebSearcher()
	searcher.EnqueueSearchResult(searchText(
		`[{"name": "Front Desk", "email": "", "phone": "555-0199", "team": "Boston Bears", "sourceUrl": ""}]`))
	resolver := NewResolver(mem, searcher)

	res, err := resolver.Resolve(context.Background(), "Boston Bears")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if res.Status != StatusManualContact {
		t.Errorf("status = %q, want %q", res.Status, StatusManualContact)
	}
	// No email, so nothing is written back.
	if got := len(mem.Contacts()); got != 0 {
		t.Errorf("stored contacts = %d, want 0", got)
	}
}

func TestResolveNothingAnywhere(t *testing.T) {
	mem := memstore.New()
	searcher := llmtest.NewMockWebSearcher()
	searcher.EnqueueSearchResult(searchText(`[]`))
	resolver := NewResolver(mem, searcher)

	res, err := resolver.Resolve(context.Background(), "Phantom Squad")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if res.Status != StatusNotFound {
		t.Errorf("status = %q, want %q", res.Status, StatusNotFound)
	}
	if res.Manager != nil {
		t.Errorf("manager = %+v, want nil", res.Manager)
	}
}

func TestResolveWebDuplicateNotReinserted(t *testing.T) {
	mem := memstore.New()
	// Existing record under a different name but the same email; the store
	// probe misses it, the search path rediscovers it.
	mem.AddContact(store.ManagerContact{
		Name: "D. Cole", Email: "dana@bears.example", Team: "Bears",
	})
	searcher := llmtest.NewMockWebSearcher()
	searcher.EnqueueSearchResult(searchText(
		`[{"name": "Dana Cole", "email": "dana@bears.example", "phone": "", "team": "Boston Bears Hockey", "sourceUrl": ""}]`))
	resolver := NewResolver(mem, searcher)

	if _, err := resolver.Resolve(context.Background(), "Springfield Ice Cats"); err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got := len(mem.Contacts()); got != 1 {
		t.Errorf("stored contacts = %d, want 1 (duplicate email not reinserted)", got)
	}
}

func TestParseContactsBadPayload(t *testing.T) {
	if got := parseContacts("no structured data here"); got != nil {
		t.Errorf("parseContacts() = %v, want nil", got)
	}
	if got := parseContacts(`[{"email": ""}]`); got != nil {
		t.Errorf("parseContacts() = %v, want nil for empty records", got)
	}
}
