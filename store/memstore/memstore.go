// Package memstore provides in-memory implementations of the store
// collaborator interfaces, for tests and local development.
package memstore

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/Jmurp11/hockey-team-scheduler/store"
)

// Store holds all records in memory. The zero value is usable.
type Store struct {
	mu          sync.Mutex
	teams       []store.Team
	candidates  []store.NearbyTeamCandidate
	games       []store.Game
	tournaments []store.Tournament
	contacts    []store.ManagerContact
	audit       []store.AuditEntry
}

func New() *Store {
	return &Store{}
}

// AddTeam seeds a team record.
func (s *Store) AddTeam(t store.Team) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams = append(s.teams, t)
}

// AddCandidate seeds a geospatial candidate.
func (s *Store) AddCandidate(c store.NearbyTeamCandidate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates = append(s.candidates, c)
}

// AddTournament seeds a tournament record.
func (s *Store) AddTournament(t store.Tournament) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tournaments = append(s.tournaments, t)
}

// AddContact seeds a manager contact.
func (s *Store) AddContact(c store.ManagerContact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	s.contacts = append(s.contacts, c)
}

func (s *Store) GetTeam(ctx context.Context, id string) (*store.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.teams {
		if t.ID == id {
			team := t
			return &team, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) SearchTeams(ctx context.Context, term string, limit int) ([]store.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []store.Team
	needle := strings.ToLower(term)
	for _, t := range s.teams {
		if strings.Contains(strings.ToLower(t.Name), needle) {
			out = append(out, t)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (s *Store) NearbyCandidates(ctx context.Context, q store.NearbyQuery) ([]store.NearbyTeamCandidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []store.NearbyTeamCandidate
	for _, c := range s.candidates {
		if c.Rating < q.MinRating || c.Rating > q.MaxRating {
			continue
		}
		if q.MaxDistanceMiles > 0 && c.DistanceMiles > q.MaxDistanceMiles {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Store) ListGames(ctx context.Context, userID, from, to string) ([]store.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []store.Game
	for _, g := range s.games {
		if g.UserID != userID {
			continue
		}
		if from != "" && g.Date < from {
			continue
		}
		if to != "" && g.Date > to {
			continue
		}
		out = append(out, g)
	}
	return out, nil
}

func (s *Store) CreateGame(ctx context.Context, g *store.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	s.games = append(s.games, *g)
	return nil
}

func (s *Store) GetTournament(ctx context.Context, id string) (*store.Tournament, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tournaments {
		if t.ID == id {
			tournament := t
			return &tournament, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) SearchTournaments(ctx context.Context, term string, limit int) ([]store.Tournament, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []store.Tournament
	needle := strings.ToLower(term)
	for _, t := range s.tournaments {
		if strings.Contains(strings.ToLower(t.Name), needle) ||
			strings.Contains(strings.ToLower(t.Location), needle) {
			out = append(out, t)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (s *Store) SearchContacts(ctx context.Context, term string, limit int) ([]store.ManagerContact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []store.ManagerContact
	needle := strings.ToLower(term)
	for _, c := range s.contacts {
		if strings.Contains(strings.ToLower(c.Name), needle) ||
			strings.Contains(strings.ToLower(c.Team), needle) {
			out = append(out, c)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (s *Store) InsertContact(ctx context.Context, c *store.ManagerContact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.Email != "" {
		for _, existing := range s.contacts {
			if strings.EqualFold(existing.Email, c.Email) {
				return store.ErrDuplicate
			}
		}
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	s.contacts = append(s.contacts, *c)
	return nil
}

func (s *Store) Append(ctx context.Context, e store.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, e)
	return nil
}

// AuditEntries returns a copy of the recorded audit log.
func (s *Store) AuditEntries() []store.AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]store.AuditEntry(nil), s.audit...)
}

// Games returns a copy of the persisted games.
func (s *Store) Games() []store.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]store.Game(nil), s.games...)
}

// Contacts returns a copy of the stored contacts.
func (s *Store) Contacts() []store.ManagerContact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]store.ManagerContact(nil), s.contacts...)
}
