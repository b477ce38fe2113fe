// Package store defines the domain records of the scheduling assistant and
// the collaborator interfaces through which the core reads and writes them.
// Implementations live in subpackages; the core depends only on these
// interfaces so it can be tested against fakes.
package store

import (
	"errors"
	"time"
)

// ErrDuplicate is returned by insert operations when a uniqueness check
// fails. Callers racing on discovery write-backs treat it as "someone else
// already created it", not as a failure.
var ErrDuplicate = errors.New("store: duplicate record")

// ErrNotFound is returned by point lookups when no record matches.
var ErrNotFound = errors.New("store: not found")

// Team is a registered team record.
type Team struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	AgeGroup        string  `json:"age_group"`
	Rating          float64 `json:"rating"`
	Record          string  `json:"record,omitempty"`
	AssociationID   string  `json:"association_id,omitempty"`
	AssociationName string  `json:"association_name,omitempty"`
	City            string  `json:"city,omitempty"`
	State           string  `json:"state,omitempty"`
	GirlsOnly       bool    `json:"girls_only,omitempty"`
}

// NearbyTeamCandidate is one raw result of the geospatial candidate search.
// Candidates are scored but never mutated.
type NearbyTeamCandidate struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Rating          float64 `json:"rating"`
	Record          string  `json:"record,omitempty"`
	DistanceMiles   float64 `json:"distance_miles"`
	AssociationID   string  `json:"association_id,omitempty"`
	AssociationName string  `json:"association_name,omitempty"`
}

// NearbyQuery parameterizes the geospatial candidate search.
type NearbyQuery struct {
	AssociationID    string
	AgeGroup         string
	MinRating        float64
	MaxRating        float64
	GirlsOnly        bool
	MaxDistanceMiles float64
}

// Game is one schedule entry. Tournament placeholders are games whose
// TournamentID is set and whose opponent fields name the event.
type Game struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	TeamID       string    `json:"team_id"`
	OpponentID   string    `json:"opponent_id,omitempty"`
	OpponentName string    `json:"opponent_name"`
	Date         string    `json:"date"`
	Time         string    `json:"time,omitempty"`
	Location     string    `json:"location,omitempty"`
	HomeAway     string    `json:"home_away,omitempty"`
	TournamentID string    `json:"tournament_id,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

// Tournament is an event a team can register interest in.
type Tournament struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Location  string `json:"location,omitempty"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date,omitempty"`
	AgeGroups string `json:"age_groups,omitempty"`
	URL       string `json:"url,omitempty"`
}

// ManagerContact is a team manager's contact record, created either by hand
// or written back after web discovery.
type ManagerContact struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Team      string    `json:"team,omitempty"`
	SourceURL string    `json:"source_url,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// UserContext is the caller's profile as resolved once per turn. Read-only
// within a turn.
type UserContext struct {
	UserID          string  `json:"user_id"`
	Name            string  `json:"name,omitempty"`
	Email           string  `json:"email,omitempty"`
	Phone           string  `json:"phone,omitempty"`
	TeamID          string  `json:"team_id"`
	TeamName        string  `json:"team_name"`
	AgeGroup        string  `json:"age_group,omitempty"`
	Rating          float64 `json:"rating"`
	AssociationID   string  `json:"association_id,omitempty"`
	AssociationName string  `json:"association_name,omitempty"`
	City            string  `json:"city,omitempty"`
	State           string  `json:"state,omitempty"`
}

// Place is one result of a nearby-place search (rinks, restaurants, hotels).
type Place struct {
	Name          string  `json:"name"`
	Address       string  `json:"address,omitempty"`
	Category      string  `json:"category,omitempty"`
	DistanceMiles float64 `json:"distance_miles,omitempty"`
}

// EmailMessage is the payload handed to the email transport.
type EmailMessage struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	HTMLBody string `json:"html_body"`
	TextBody string `json:"text_body,omitempty"`
	FromName string `json:"from_name,omitempty"`
	ReplyTo  string `json:"reply_to,omitempty"`
}

// AuditEntry records one confirmed action for bookkeeping. Writing one is
// always best-effort.
type AuditEntry struct {
	UserID  string    `json:"user_id"`
	Action  string    `json:"action"`
	Detail  string    `json:"detail,omitempty"`
	At      time.Time `json:"at"`
}
