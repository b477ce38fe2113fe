package matching

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Jmurp11/hockey-team-scheduler/contacts"
	"github.com/Jmurp11/hockey-team-scheduler/emaildraft"
	"github.com/Jmurp11/hockey-team-scheduler/store"
)

// ManagerResolver is the contact-discovery collaborator. Satisfied by
// *contacts.Resolver.
type ManagerResolver interface {
	Resolve(ctx context.Context, teamNameOrID string) (*contacts.Resolution, error)
}

// DraftGenerator writes intro email drafts for matched teams. Satisfied by
// *emaildraft.Generator.
type DraftGenerator interface {
	Generate(ctx context.Context, req emaildraft.Request) (subject, body string)
}

// Request describes one matching run.
type Request struct {
	UserID                 string
	MaxDistanceMiles       float64
	DateFrom               string
	DateTo                 string
	ExcludeRecentOpponents bool
	Limit                  int
	IncludeManagerContacts bool
	IncludeEmailDrafts     bool
}

// Match is one ranked opponent suggestion. Built once per run, never
// mutated afterwards.
type Match struct {
	Rank          int                       `json:"rank"`
	Team          store.NearbyTeamCandidate `json:"team"`
	DistanceMiles int                       `json:"distance_miles"`
	Scores        Scores                    `json:"scores"`
	Explanation   string                    `json:"explanation"`
	Manager       *store.ManagerContact     `json:"manager,omitempty"`
	ManagerStatus contacts.Status           `json:"manager_status,omitempty"`
	EmailDraft    *emaildraft.Draft         `json:"email_draft,omitempty"`
	AlreadyPlayed bool                      `json:"already_played"`
}

// Finder runs the opponent-matching pipeline.
type Finder struct {
	cfg      Config
	users    store.UserContextResolver
	teams    store.TeamStore
	games    store.GameStore
	managers ManagerResolver
	drafts   DraftGenerator
}

// NewFinder wires the pipeline. managers and drafts may be nil, in which
// case contact discovery and draft generation are skipped even when
// requested.
func NewFinder(cfg Config, users store.UserContextResolver, teams store.TeamStore, games store.GameStore, managers ManagerResolver, drafts DraftGenerator) *Finder {
	return &Finder{cfg: cfg, users: users, teams: teams, games: games, managers: managers, drafts: drafts}
}

// Find scores and ranks candidate opponents for the requesting user.
func (f *Finder) Find(ctx context.Context, req Request) ([]Match, error) {
	uc, err := f.users.ResolveUserContext(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolve user context: %w", err)
	}

	played, err := f.playedSet(ctx, req)
	if err != nil {
		return nil, err
	}

	candidates, err := f.teams.NearbyCandidates(ctx, store.NearbyQuery{
		AssociationID:    uc.AssociationID,
		AgeGroup:         uc.AgeGroup,
		MinRating:        clamp(uc.Rating-f.cfg.RatingBand, 0, 100),
		MaxRating:        clamp(uc.Rating+f.cfg.RatingBand, 0, 100),
		MaxDistanceMiles: req.MaxDistanceMiles,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch candidates: %w", err)
	}

	var matches []Match
	for _, c := range candidates {
		if c.ID == uc.TeamID {
			continue
		}
		alreadyPlayed := played[c.ID] || played[strings.ToLower(c.Name)]
		scores := f.cfg.Score(uc.Rating, c.Rating, c.DistanceMiles, req.MaxDistanceMiles, alreadyPlayed, req.ExcludeRecentOpponents)
		matches = append(matches, Match{
			Team:          c,
			DistanceMiles: int(math.Round(c.DistanceMiles)),
			Scores:        scores,
			AlreadyPlayed: alreadyPlayed,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Scores.Overall > matches[j].Scores.Overall
	})

	limit := req.Limit
	if limit <= 0 || limit > f.cfg.MaxResults {
		limit = f.cfg.MaxResults
	}
	if len(matches) > limit {
		matches = matches[:limit]
	}

	for i := range matches {
		matches[i].Rank = i + 1
		matches[i].Explanation = explain(&matches[i], uc)
	}

	if req.IncludeManagerContacts && f.managers != nil {
		f.attachManagers(ctx, matches, uc, req.IncludeEmailDrafts)
	}

	return matches, nil
}

// playedSet collects opponents of the user's existing games in the
// requested window, keyed by opponent id and by lowercased opponent name.
func (f *Finder) playedSet(ctx context.Context, req Request) (map[string]bool, error) {
	games, err := f.games.ListGames(ctx, req.UserID, req.DateFrom, req.DateTo)
	if err != nil {
		return nil, fmt.Errorf("fetch games: %w", err)
	}
	played := make(map[string]bool, len(games))
	for _, g := range games {
		if g.OpponentID != "" {
			played[g.OpponentID] = true
		}
		if g.OpponentName != "" {
			played[strings.ToLower(g.OpponentName)] = true
		}
	}
	return played, nil
}

// attachManagers discovers manager contacts for each match in fixed-size
// concurrent batches, sequential across batches, so simultaneous web-search
// calls stay bounded. Discovery failure downgrades a match to not-found
// rather than failing the run.
func (f *Finder) attachManagers(ctx context.Context, matches []Match, uc *store.UserContext, withDrafts bool) {
	batch := f.cfg.ManagerBatchSize
	if batch <= 0 {
		batch = 1
	}

	for start := 0; start < len(matches); start += batch {
		end := start + batch
		if end > len(matches) {
			end = len(matches)
		}

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				res, err := f.managers.Resolve(gctx, matches[i].Team.Name)
				if err != nil {
					log.Printf("matching: manager discovery for %q failed: %v", matches[i].Team.Name, err)
					matches[i].ManagerStatus = contacts.StatusNotFound
					return nil
				}
				matches[i].ManagerStatus = res.Status
				matches[i].Manager = res.Manager
				if withDrafts && f.drafts != nil && res.Status == contacts.StatusFound {
					matches[i].EmailDraft = f.draftFor(gctx, &matches[i], uc)
				}
				return nil
			})
		}
		_ = g.Wait()
	}
}

func (f *Finder) draftFor(ctx context.Context, m *Match, uc *store.UserContext) *emaildraft.Draft {
	recipientName := ""
	if m.Manager != nil {
		recipientName = m.Manager.Name
	}
	subject, body := f.drafts.Generate(ctx, emaildraft.Request{
		Intent:        emaildraft.IntentSchedule,
		Sender:        uc,
		RecipientName: recipientName,
		RecipientTeam: m.Team.Name,
	})
	d := &emaildraft.Draft{
		ToName:    recipientName,
		ToTeam:    m.Team.Name,
		Subject:   subject,
		Body:      body,
		Signature: emaildraft.Signature(uc),
		Intent:    emaildraft.IntentSchedule,
	}
	if m.Manager != nil {
		d.To = m.Manager.Email
	}
	return d
}

func explain(m *Match, uc *store.UserContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s is rated %.0f (yours: %.0f) and about %d miles away.", m.Team.Name, m.Team.Rating, uc.Rating, m.DistanceMiles)
	fmt.Fprintf(&b, " Rating closeness %d, distance %d, schedule fit %d; overall %d.",
		m.Scores.RatingCloseness, m.Scores.Distance, m.Scores.ScheduleCompatibility, m.Scores.Overall)
	if m.AlreadyPlayed {
		b.WriteString(" You have already played this team in the requested window.")
	}
	return b.String()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
