// Package contacts resolves team manager contact information: fast path
// against the contact store, fallback to a web-search-augmented model call,
// with discovered contacts written back so the next lookup hits the store.
package contacts

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/Jmurp11/hockey-team-scheduler/llm"
	"github.com/Jmurp11/hockey-team-scheduler/namematch"
	"github.com/Jmurp11/hockey-team-scheduler/store"
)

// Status classifies a resolution outcome. None of these are errors.
type Status string

const (
	// StatusFound means a contact with a usable email was located.
	StatusFound Status = "found"
	// StatusManualContact means a contact record exists but carries no
	// email, so the user has to reach out through another channel.
	StatusManualContact Status = "manual-contact"
	// StatusNotFound means no contact was located anywhere.
	StatusNotFound Status = "not-found"
)

// MatchType records which tier produced the hit.
type MatchType string

const (
	MatchExact MatchType = "exact"
	MatchFuzzy MatchType = "fuzzy"
	MatchWeb   MatchType = "web-search"
)

// Resolution is the outcome of one lookup. All match bookkeeping travels in
// the return value so a single Resolver is safe for concurrent turns.
type Resolution struct {
	Status      Status                `json:"status"`
	Manager     *store.ManagerContact `json:"manager,omitempty"`
	MatchType   MatchType             `json:"match_type,omitempty"`
	MatchedTerm string                `json:"matched_term,omitempty"`
}

// storeSearchLimit caps each partial-text probe against the contact store.
const storeSearchLimit = 5

// citationMarker matches trailing citation artifacts some models append to
// field values, e.g. "pat@example.com citeturn0search1".
var citationMarker = regexp.MustCompile(`\s+cite\S*.*$`)

// Resolver performs the three-tier lookup.
type Resolver struct {
	contacts store.ContactStore
	searcher llm.WebSearcher
}

func NewResolver(contacts store.ContactStore, searcher llm.WebSearcher) *Resolver {
	return &Resolver{contacts: contacts, searcher: searcher}
}

// Resolve looks up the manager for a team name (or id used as a label).
// Store misses fall through to web search; web-discovered contacts with an
// email are written back. A nil error with StatusNotFound is the normal
// "nothing anywhere" outcome.
func (r *Resolver) Resolve(ctx context.Context, teamNameOrID string) (*Resolution, error) {
	terms := namematch.Expand(teamNameOrID)

	if res := r.lookupStore(ctx, terms, teamNameOrID); res != nil {
		return res, nil
	}

	discovered, err := r.searchWeb(ctx, teamNameOrID)
	if err != nil {
		return nil, err
	}
	if len(discovered) == 0 {
		return &Resolution{Status: StatusNotFound}, nil
	}

	r.writeBack(ctx, discovered)

	for i := range discovered {
		if discovered[i].Email != "" {
			return &Resolution{
				Status:      StatusFound,
				Manager:     &discovered[i],
				MatchType:   MatchWeb,
				MatchedTerm: teamNameOrID,
			}, nil
		}
	}
	return &Resolution{
		Status:      StatusManualContact,
		Manager:     &discovered[0],
		MatchType:   MatchWeb,
		MatchedTerm: teamNameOrID,
	}, nil
}

// lookupStore probes the contact store with each expanded term in order and
// returns a resolution for the first non-empty hit, or nil on a miss.
func (r *Resolver) lookupStore(ctx context.Context, terms []string, original string) *Resolution {
	for _, term := range terms {
		hits, err := r.contacts.SearchContacts(ctx, term, storeSearchLimit)
		if err != nil {
			log.Printf("contacts: store lookup for %q failed: %v", term, err)
			continue
		}
		if len(hits) == 0 {
			continue
		}

		hit := hits[0]
		matchType := MatchFuzzy
		combined := strings.ToLower(strings.TrimSpace(hit.Name + " " + hit.Team))
		lowerOrig := strings.ToLower(original)
		if strings.Contains(combined, lowerOrig) ||
			(combined != "" && strings.Contains(lowerOrig, combined)) {
			matchType = MatchExact
		}

		status := StatusFound
		if hit.Email == "" {
			status = StatusManualContact
		}
		return &Resolution{
			Status:      status,
			Manager:     &hit,
			MatchType:   matchType,
			MatchedTerm: term,
		}
	}
	return nil
}

// searchWeb issues one structured web-search call and parses the strict
// JSON array it is instructed to return.
func (r *Resolver) searchWeb(ctx context.Context, team string) ([]store.ManagerContact, error) {
	systemPrompt := "You are a research assistant that finds publicly listed youth hockey team manager contact information. " +
		"Respond ONLY with a JSON array of objects with keys name, email, phone, team, sourceUrl. " +
		"Include only contact details you can verify from a source page. Use empty strings for unknown fields. " +
		"Return [] if nothing verifiable is found."
	prompt := fmt.Sprintf("Find the team manager or scheduling contact for the hockey team %q.", team)

	response, err := r.searcher.SearchCompletion(ctx, &llm.WebSearchInput{
		SystemPrompt: &systemPrompt,
		Prompt:       prompt,
	})
	if err != nil {
		return nil, err
	}

	return parseContacts(response.Text()), nil
}

// parseContacts extracts the JSON array from the model's text, tolerating
// surrounding prose or code fences, and strips citation markers from every
// field.
func parseContacts(text string) []store.ManagerContact {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil
	}

	var out []store.ManagerContact
	gjson.Parse(text[start : end+1]).ForEach(func(_, item gjson.Result) bool {
		c := store.ManagerContact{
			Name:      cleanField(item.Get("name").String()),
			Email:     cleanField(item.Get("email").String()),
			Phone:     cleanField(item.Get("phone").String()),
			Team:      cleanField(item.Get("team").String()),
			SourceURL: cleanField(item.Get("sourceUrl").String()),
		}
		if c.Name != "" || c.Email != "" {
			out = append(out, c)
		}
		return true
	})
	return out
}

func cleanField(s string) string {
	return strings.TrimSpace(citationMarker.ReplaceAllString(s, ""))
}

// writeBack inserts novel discovered contacts so the next lookup for the
// same team hits the store. Duplicates and failures are logged, never
// surfaced: the discovery itself already succeeded.
func (r *Resolver) writeBack(ctx context.Context, discovered []store.ManagerContact) {
	for i := range discovered {
		c := discovered[i]
		if c.Email == "" {
			continue
		}
		if r.existsInStore(ctx, &c) {
			continue
		}
		insert := c
		if err := r.contacts.InsertContact(ctx, &insert); err != nil {
			if err == store.ErrDuplicate {
				continue
			}
			log.Printf("contacts: write-back for %q failed: %v", c.Email, err)
		}
	}
}

// existsInStore checks for a duplicate by exact email or by fuzzy
// name+team match.
func (r *Resolver) existsInStore(ctx context.Context, c *store.ManagerContact) bool {
	probes := []string{c.Name}
	if c.Team != "" {
		probes = append(probes, c.Team)
	}
	terms := namematch.Expand(c.Name + " " + c.Team)

	for _, probe := range probes {
		if probe == "" {
			continue
		}
		hits, err := r.contacts.SearchContacts(ctx, probe, storeSearchLimit)
		if err != nil {
			continue
		}
		for _, hit := range hits {
			if hit.Email != "" && strings.EqualFold(hit.Email, c.Email) {
				return true
			}
			if namematch.Score(hit.Name, hit.Team, terms, c.Name) > 0 &&
				strings.EqualFold(hit.Team, c.Team) {
				return true
			}
		}
	}
	return false
}
