package store

import "context"

// TeamStore provides team lookups and the geospatial candidate search.
type TeamStore interface {
	// GetTeam returns the team with the given id, or ErrNotFound.
	GetTeam(ctx context.Context, id string) (*Team, error)
	// SearchTeams returns teams whose name contains term,
	// case-insensitively, capped at limit.
	SearchTeams(ctx context.Context, term string, limit int) ([]Team, error)
	// NearbyCandidates returns candidate opponents within the query's
	// rating band and radius, ordered by distance.
	NearbyCandidates(ctx context.Context, q NearbyQuery) ([]NearbyTeamCandidate, error)
}

// GameStore provides the schedule collaborator.
type GameStore interface {
	// ListGames returns the user's games with a date in [from, to]
	// inclusive. Empty bounds mean unbounded on that side.
	ListGames(ctx context.Context, userID, from, to string) ([]Game, error)
	// CreateGame persists a new game and fills in its ID.
	CreateGame(ctx context.Context, g *Game) error
}

// TournamentStore provides tournament lookup.
type TournamentStore interface {
	// GetTournament returns the tournament with the given id, or ErrNotFound.
	GetTournament(ctx context.Context, id string) (*Tournament, error)
	// SearchTournaments returns tournaments whose name or location contains
	// term, case-insensitively, capped at limit.
	SearchTournaments(ctx context.Context, term string, limit int) ([]Tournament, error)
}

// ContactStore provides manager contact lookup and discovery write-back.
type ContactStore interface {
	// SearchContacts returns contacts whose name or team contains term,
	// case-insensitively, capped at limit.
	SearchContacts(ctx context.Context, term string, limit int) ([]ManagerContact, error)
	// InsertContact persists a new contact and fills in its ID. A
	// uniqueness violation returns ErrDuplicate.
	InsertContact(ctx context.Context, c *ManagerContact) error
}

// PlaceSearcher finds places near a location.
type PlaceSearcher interface {
	SearchNearby(ctx context.Context, query, location string, radiusMiles float64) ([]Place, error)
}

// UserContextResolver resolves the caller's profile for a turn.
type UserContextResolver interface {
	ResolveUserContext(ctx context.Context, userID string) (*UserContext, error)
}

// EmailSender is the email transport collaborator. The returned bool
// reports whether the transport accepted the message for delivery.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) (bool, error)
}

// AuditLog records confirmed actions.
type AuditLog interface {
	Append(ctx context.Context, e AuditEntry) error
}
