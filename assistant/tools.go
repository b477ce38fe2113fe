package assistant

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Jmurp11/hockey-team-scheduler/contacts"
	"github.com/Jmurp11/hockey-team-scheduler/emaildraft"
	"github.com/Jmurp11/hockey-team-scheduler/llm"
	"github.com/Jmurp11/hockey-team-scheduler/matching"
	"github.com/Jmurp11/hockey-team-scheduler/namematch"
	"github.com/Jmurp11/hockey-team-scheduler/store"
)

// ScheduleTool looks up the user's existing games.
type ScheduleTool struct {
	Games store.GameStore
}

func (t *ScheduleTool) Name() string { return "get_schedule" }

func (t *ScheduleTool) Description() string {
	return "Get the user's game schedule, optionally limited to a date range."
}

func (t *ScheduleTool) Parameters() llm.JSONSchema {
	return llm.JSONSchema{
		"type": "object",
		"properties": map[string]any{
			"start_date": map[string]any{"type": "string", "description": "Earliest date to include, YYYY-MM-DD"},
			"end_date":   map[string]any{"type": "string", "description": "Latest date to include, YYYY-MM-DD"},
		},
		"additionalProperties": false,
	}
}

func (t *ScheduleTool) Execute(ctx context.Context, args map[string]any, uc *store.UserContext) ToolExecutionResult {
	games, err := t.Games.ListGames(ctx, uc.UserID, stringArg(args, "start_date"), stringArg(args, "end_date"))
	if err != nil {
		return errorResult("could not load the schedule: %v", err)
	}
	return successResult(map[string]any{
		"games": games,
		"count": len(games),
	})
}

// TeamSearchTool finds teams by name, with abbreviation-aware fuzzy
// ranking.
type TeamSearchTool struct {
	Teams store.TeamStore
}

func (t *TeamSearchTool) Name() string { return "search_teams" }

func (t *TeamSearchTool) Description() string {
	return "Search for teams by name. Understands state abbreviations like NJ or PA."
}

func (t *TeamSearchTool) Parameters() llm.JSONSchema {
	return llm.JSONSchema{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{"type": "string", "description": "Team name or partial name"},
			"limit": map[string]any{"type": "integer", "description": "Maximum results, default 10"},
		},
		"required":             []string{"query"},
		"additionalProperties": false,
	}
}

func (t *TeamSearchTool) Execute(ctx context.Context, args map[string]any, uc *store.UserContext) ToolExecutionResult {
	query := strings.TrimSpace(stringArg(args, "query"))
	if query == "" {
		return errorResult("search_teams requires a query")
	}
	limit := intArg(args, "limit")
	if limit <= 0 {
		limit = 10
	}

	terms := namematch.Expand(query)
	seen := map[string]store.Team{}
	for _, term := range terms {
		teams, err := t.Teams.SearchTeams(ctx, term, limit)
		if err != nil {
			return errorResult("team search failed: %v", err)
		}
		for _, team := range teams {
			seen[team.ID] = team
		}
	}

	type scored struct {
		team  store.Team
		score int
	}
	var ranked []scored
	for _, team := range seen {
		s := namematch.Score(team.Name, team.AssociationName, terms, query)
		if s == 0 {
			continue
		}
		ranked = append(ranked, scored{team: team, score: s})
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	teams := make([]store.Team, len(ranked))
	for i, r := range ranked {
		teams[i] = r.team
	}
	return successResult(map[string]any{
		"teams": teams,
		"count": len(teams),
	})
}

// TournamentSearchTool finds tournaments by name or location.
type TournamentSearchTool struct {
	Tournaments store.TournamentStore
}

func (t *TournamentSearchTool) Name() string { return "search_tournaments" }

func (t *TournamentSearchTool) Description() string {
	return "Search for tournaments by name or location."
}

func (t *TournamentSearchTool) Parameters() llm.JSONSchema {
	return llm.JSONSchema{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{"type": "string", "description": "Tournament name or location"},
			"limit": map[string]any{"type": "integer", "description": "Maximum results, default 10"},
		},
		"required":             []string{"query"},
		"additionalProperties": false,
	}
}

func (t *TournamentSearchTool) Execute(ctx context.Context, args map[string]any, uc *store.UserContext) ToolExecutionResult {
	query := strings.TrimSpace(stringArg(args, "query"))
	if query == "" {
		return errorResult("search_tournaments requires a query")
	}
	limit := intArg(args, "limit")
	if limit <= 0 {
		limit = 10
	}
	tournaments, err := t.Tournaments.SearchTournaments(ctx, query, limit)
	if err != nil {
		return errorResult("tournament search failed: %v", err)
	}
	return successResult(map[string]any{
		"tournaments": tournaments,
		"count":       len(tournaments),
	})
}

// CreateGameTool proposes a new game. It never writes: it returns a pending
// action the user must confirm.
type CreateGameTool struct{}

func (t *CreateGameTool) Name() string { return "create_game" }

func (t *CreateGameTool) Description() string {
	return "Propose adding a game to the user's schedule. The user must confirm before anything is saved. Always ask the user for a date before calling this."
}

func (t *CreateGameTool) Parameters() llm.JSONSchema {
	return llm.JSONSchema{
		"type": "object",
		"properties": map[string]any{
			"opponent_name": map[string]any{"type": "string", "description": "Name of the opposing team"},
			"opponent_id":   map[string]any{"type": "string", "description": "Team id of the opponent, if known"},
			"date":          map[string]any{"type": "string", "description": "Game date, YYYY-MM-DD"},
			"time":          map[string]any{"type": "string", "description": "Game time, HH:MM 24-hour"},
			"location":      map[string]any{"type": "string", "description": "Rink or venue"},
			"home_away":     map[string]any{"type": "string", "description": "home or away"},
		},
		"required":             []string{"opponent_name", "date"},
		"additionalProperties": false,
	}
}

func (t *CreateGameTool) Execute(ctx context.Context, args map[string]any, uc *store.UserContext) ToolExecutionResult {
	opponent := strings.TrimSpace(stringArg(args, "opponent_name"))
	date := strings.TrimSpace(stringArg(args, "date"))
	if opponent == "" || date == "" {
		return errorResult("create_game requires an opponent name and a date")
	}

	description := fmt.Sprintf("Add a game against %s on %s", opponent, date)
	if gameTime := stringArg(args, "time"); gameTime != "" {
		description += " at " + emaildraft.FormatTime12Hour(gameTime)
	}
	if location := stringArg(args, "location"); location != "" {
		description += " (" + location + ")"
	}

	return confirmationResult(&PendingAction{
		Type:        ActionCreateGame,
		Description: description,
		Data: map[string]any{
			"opponent_name": opponent,
			"opponent_id":   stringArg(args, "opponent_id"),
			"date":          date,
			"time":          stringArg(args, "time"),
			"location":      stringArg(args, "location"),
			"home_away":     stringArg(args, "home_away"),
		},
	})
}

// TournamentRegisterTool proposes adding a tournament to the schedule.
type TournamentRegisterTool struct {
	Tournaments store.TournamentStore
}

func (t *TournamentRegisterTool) Name() string { return "add_tournament_to_schedule" }

func (t *TournamentRegisterTool) Description() string {
	return "Propose adding a tournament to the user's schedule as a placeholder entry. The user must confirm first."
}

func (t *TournamentRegisterTool) Parameters() llm.JSONSchema {
	return llm.JSONSchema{
		"type": "object",
		"properties": map[string]any{
			"tournament_id": map[string]any{"type": "string", "description": "Id of the tournament to add"},
		},
		"required":             []string{"tournament_id"},
		"additionalProperties": false,
	}
}

func (t *TournamentRegisterTool) Execute(ctx context.Context, args map[string]any, uc *store.UserContext) ToolExecutionResult {
	id := strings.TrimSpace(stringArg(args, "tournament_id"))
	if id == "" {
		return errorResult("add_tournament_to_schedule requires a tournament_id")
	}
	tournament, err := t.Tournaments.GetTournament(ctx, id)
	if err != nil {
		if err == store.ErrNotFound {
			return errorResult("no tournament found with id %s", id)
		}
		return errorResult("tournament lookup failed: %v", err)
	}

	description := fmt.Sprintf("Add tournament %q to the schedule", tournament.Name)
	if tournament.StartDate != "" {
		description += " starting " + tournament.StartDate
	}
	return confirmationResult(&PendingAction{
		Type:        ActionAddTournament,
		Description: description,
		Data: map[string]any{
			"tournament_id":   tournament.ID,
			"tournament_name": tournament.Name,
			"start_date":      tournament.StartDate,
			"location":        tournament.Location,
		},
	})
}

// EmailDraftTool drafts an email to another manager and proposes sending it.
type EmailDraftTool struct {
	Drafts   *emaildraft.Generator
	Managers matching.ManagerResolver
}

func (t *EmailDraftTool) Name() string { return "draft_email" }

func (t *EmailDraftTool) Description() string {
	return "Draft an email to another team's manager. Resolves the manager's contact info when only a team name is given. The user must confirm before anything is sent."
}

func (t *EmailDraftTool) Parameters() llm.JSONSchema {
	return llm.JSONSchema{
		"type": "object",
		"properties": map[string]any{
			"intent":         map[string]any{"type": "string", "enum": []string{"schedule", "reschedule", "cancel", "general"}},
			"to":             map[string]any{"type": "string", "description": "Recipient email address, if known"},
			"recipient_name": map[string]any{"type": "string", "description": "Recipient's name, if known"},
			"recipient_team": map[string]any{"type": "string", "description": "Recipient's team name"},
			"proposed_date":  map[string]any{"type": "string", "description": "Proposed game date, YYYY-MM-DD"},
			"proposed_time":  map[string]any{"type": "string", "description": "Proposed game time, HH:MM 24-hour"},
			"context":        map[string]any{"type": "string", "description": "Any extra context for the email"},
		},
		"additionalProperties": false,
	}
}

func (t *EmailDraftTool) Execute(ctx context.Context, args map[string]any, uc *store.UserContext) ToolExecutionResult {
	to := strings.TrimSpace(stringArg(args, "to"))
	recipientName := strings.TrimSpace(stringArg(args, "recipient_name"))
	recipientTeam := strings.TrimSpace(stringArg(args, "recipient_team"))

	if to == "" && recipientTeam != "" && t.Managers != nil {
		res, err := t.Managers.Resolve(ctx, recipientTeam)
		if err != nil {
			return errorResult("manager lookup for %q failed: %v", recipientTeam, err)
		}
		switch res.Status {
		case contacts.StatusFound:
			to = res.Manager.Email
			if recipientName == "" {
				recipientName = res.Manager.Name
			}
		case contacts.StatusManualContact:
			// A record exists but has no email; hand the details back so
			// the model can suggest another channel.
			return successResult(map[string]any{
				"status":  string(res.Status),
				"manager": res.Manager,
			})
		default:
			return successResult(map[string]any{"status": string(contacts.StatusNotFound)})
		}
	}
	if to == "" {
		return errorResult("no recipient email available; ask the user for an address or a team name")
	}

	intent := emaildraft.Intent(stringArg(args, "intent"))
	switch intent {
	case emaildraft.IntentSchedule, emaildraft.IntentReschedule, emaildraft.IntentCancel, emaildraft.IntentGeneral:
	default:
		intent = emaildraft.IntentGeneral
	}

	subject, body := t.Drafts.Generate(ctx, emaildraft.Request{
		Intent:          intent,
		Sender:          uc,
		RecipientName:   recipientName,
		RecipientTeam:   recipientTeam,
		ProposedDate:    stringArg(args, "proposed_date"),
		ProposedTime:    stringArg(args, "proposed_time"),
		ExistingContext: stringArg(args, "context"),
	})

	return confirmationResult(&PendingAction{
		Type:        ActionSendEmail,
		Description: fmt.Sprintf("Send %q to %s", subject, to),
		Data: map[string]any{
			"to":        to,
			"to_name":   recipientName,
			"to_team":   recipientTeam,
			"subject":   subject,
			"body":      body,
			"signature": emaildraft.Signature(uc),
			"intent":    string(intent),
		},
	})
}

// PlaceSearchTool finds rinks, restaurants, and hotels near a location.
type PlaceSearchTool struct {
	Places store.PlaceSearcher
}

func (t *PlaceSearchTool) Name() string { return "search_nearby_places" }

func (t *PlaceSearchTool) Description() string {
	return "Find places such as rinks, restaurants, or hotels near a location. Defaults to the user's home city."
}

func (t *PlaceSearchTool) Parameters() llm.JSONSchema {
	return llm.JSONSchema{
		"type": "object",
		"properties": map[string]any{
			"query":        map[string]any{"type": "string", "description": "What to look for, e.g. ice rink, pizza, hotel"},
			"location":     map[string]any{"type": "string", "description": "Where to search; defaults to the user's city"},
			"radius_miles": map[string]any{"type": "number", "description": "Search radius in miles, default 25"},
		},
		"required":             []string{"query"},
		"additionalProperties": false,
	}
}

func (t *PlaceSearchTool) Execute(ctx context.Context, args map[string]any, uc *store.UserContext) ToolExecutionResult {
	query := strings.TrimSpace(stringArg(args, "query"))
	if query == "" {
		return errorResult("search_nearby_places requires a query")
	}

	location := strings.TrimSpace(stringArg(args, "location"))
	if location == "" {
		location = strings.TrimSpace(strings.Join([]string{uc.City, uc.State}, " "))
	}
	if location == "" {
		return errorResult("no location available; ask the user where to search")
	}

	radius := floatArg(args, "radius_miles")
	if radius <= 0 {
		radius = 25
	}

	places, err := t.Places.SearchNearby(ctx, query, location, radius)
	if err != nil {
		return errorResult("place search failed: %v", err)
	}
	return successResult(map[string]any{
		"places":   places,
		"location": location,
		"count":    len(places),
	})
}

// OpponentMatchTool runs the opponent-matching pipeline.
type OpponentMatchTool struct {
	Finder *matching.Finder
}

func (t *OpponentMatchTool) Name() string { return "find_opponent_matches" }

func (t *OpponentMatchTool) Description() string {
	return "Find and rank candidate opponent teams near the user by rating closeness, distance, and schedule fit."
}

func (t *OpponentMatchTool) Parameters() llm.JSONSchema {
	return llm.JSONSchema{
		"type": "object",
		"properties": map[string]any{
			"max_distance_miles":       map[string]any{"type": "number", "description": "Search radius in miles, default 100"},
			"date_from":                map[string]any{"type": "string", "description": "Start of the scheduling window, YYYY-MM-DD"},
			"date_to":                  map[string]any{"type": "string", "description": "End of the scheduling window, YYYY-MM-DD"},
			"exclude_recent_opponents": map[string]any{"type": "boolean", "description": "Penalize teams already played in the window"},
			"limit":                    map[string]any{"type": "integer", "description": "Maximum matches to return, up to 10"},
			"include_contact_info":     map[string]any{"type": "boolean", "description": "Also look up each team's manager contact"},
			"include_email_drafts":     map[string]any{"type": "boolean", "description": "Also draft an intro email per matched manager"},
		},
		"additionalProperties": false,
	}
}

func (t *OpponentMatchTool) Execute(ctx context.Context, args map[string]any, uc *store.UserContext) ToolExecutionResult {
	maxDistance := floatArg(args, "max_distance_miles")
	if maxDistance <= 0 {
		maxDistance = 100
	}

	matches, err := t.Finder.Find(ctx, matching.Request{
		UserID:                 uc.UserID,
		MaxDistanceMiles:       maxDistance,
		DateFrom:               stringArg(args, "date_from"),
		DateTo:                 stringArg(args, "date_to"),
		ExcludeRecentOpponents: boolArg(args, "exclude_recent_opponents"),
		Limit:                  intArg(args, "limit"),
		IncludeManagerContacts: boolArg(args, "include_contact_info"),
		IncludeEmailDrafts:     boolArg(args, "include_email_drafts"),
	})
	if err != nil {
		return errorResult("opponent matching failed: %v", err)
	}
	return successResult(map[string]any{
		"matches": matches,
		"count":   len(matches),
	})
}
