// Package sqlitestore backs the store interfaces with a local SQLite
// database.
package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/Jmurp11/hockey-team-scheduler/store"
)

// DB implements store.TeamStore, store.GameStore, store.TournamentStore,
// store.ContactStore and store.AuditLog over one SQLite file.
type DB struct {
	conn *sql.DB
}

func Open(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "scheduler.db")
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}
	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) initSchema() error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS teams (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			age_group TEXT NOT NULL DEFAULT '',
			rating REAL NOT NULL DEFAULT 0,
			record TEXT NOT NULL DEFAULT '',
			association_id TEXT NOT NULL DEFAULT '',
			association_name TEXT NOT NULL DEFAULT '',
			city TEXT NOT NULL DEFAULT '',
			state TEXT NOT NULL DEFAULT '',
			girls_only INTEGER NOT NULL DEFAULT 0,
			distance_miles REAL NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS games (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			team_id TEXT NOT NULL DEFAULT '',
			opponent_id TEXT NOT NULL DEFAULT '',
			opponent_name TEXT NOT NULL,
			date TEXT NOT NULL,
			time TEXT NOT NULL DEFAULT '',
			location TEXT NOT NULL DEFAULT '',
			home_away TEXT NOT NULL DEFAULT '',
			tournament_id TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tournaments (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			location TEXT NOT NULL DEFAULT '',
			start_date TEXT NOT NULL DEFAULT '',
			end_date TEXT NOT NULL DEFAULT '',
			age_groups TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS manager_contacts (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			team TEXT NOT NULL DEFAULT '',
			source_url TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_manager_contacts_email
			ON manager_contacts(email) WHERE email != ''`,
		`CREATE TABLE IF NOT EXISTS audit_log (
			user_id TEXT NOT NULL,
			action TEXT NOT NULL,
			detail TEXT NOT NULL DEFAULT '',
			at TIMESTAMP NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// MARK: teams

func (d *DB) AddTeam(ctx context.Context, t *store.Team, distanceMiles float64) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	_, err := d.conn.ExecContext(ctx, `
		INSERT INTO teams (id, name, age_group, rating, record, association_id, association_name, city, state, girls_only, distance_miles)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.Name, t.AgeGroup, t.Rating, t.Record, t.AssociationID, t.AssociationName, t.City, t.State, boolToInt(t.GirlsOnly), distanceMiles)
	return err
}

func (d *DB) GetTeam(ctx context.Context, id string) (*store.Team, error) {
	t := &store.Team{}
	var girlsOnly int
	err := d.conn.QueryRowContext(ctx, `
		SELECT id, name, age_group, rating, record, association_id, association_name, city, state, girls_only
		FROM teams WHERE id = ?
	`, id).Scan(&t.ID, &t.Name, &t.AgeGroup, &t.Rating, &t.Record, &t.AssociationID, &t.AssociationName, &t.City, &t.State, &girlsOnly)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	t.GirlsOnly = girlsOnly != 0
	return t, nil
}

func (d *DB) SearchTeams(ctx context.Context, term string, limit int) ([]store.Team, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.conn.QueryContext(ctx, `
		SELECT id, name, age_group, rating, record, association_id, association_name, city, state, girls_only
		FROM teams WHERE name LIKE ? COLLATE NOCASE
		ORDER BY name LIMIT ?
	`, "%"+term+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Team
	for rows.Next() {
		var t store.Team
		var girlsOnly int
		if err := rows.Scan(&t.ID, &t.Name, &t.AgeGroup, &t.Rating, &t.Record, &t.AssociationID, &t.AssociationName, &t.City, &t.State, &girlsOnly); err != nil {
			return nil, err
		}
		t.GirlsOnly = girlsOnly != 0
		out = append(out, t)
	}
	return out, rows.Err()
}

// NearbyCandidates approximates the hosted geospatial procedure with the
// stored per-team distance column.
func (d *DB) NearbyCandidates(ctx context.Context, q store.NearbyQuery) ([]store.NearbyTeamCandidate, error) {
	query := `
		SELECT id, name, rating, record, association_id, association_name, distance_miles
		FROM teams WHERE rating >= ? AND rating <= ?`
	args := []any{q.MinRating, q.MaxRating}
	if q.MaxDistanceMiles > 0 {
		query += ` AND distance_miles <= ?`
		args = append(args, q.MaxDistanceMiles)
	}
	if q.AgeGroup != "" {
		query += ` AND age_group = ?`
		args = append(args, q.AgeGroup)
	}
	if q.GirlsOnly {
		query += ` AND girls_only = 1`
	}
	query += ` ORDER BY distance_miles`

	rows, err := d.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.NearbyTeamCandidate
	for rows.Next() {
		var c store.NearbyTeamCandidate
		if err := rows.Scan(&c.ID, &c.Name, &c.Rating, &c.Record, &c.AssociationID, &c.AssociationName, &c.DistanceMiles); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// MARK: games

func (d *DB) ListGames(ctx context.Context, userID, from, to string) ([]store.Game, error) {
	query := `
		SELECT id, user_id, team_id, opponent_id, opponent_name, date, time, location, home_away, tournament_id, notes, created_at
		FROM games WHERE user_id = ?`
	args := []any{userID}
	if from != "" {
		query += ` AND date >= ?`
		args = append(args, from)
	}
	if to != "" {
		query += ` AND date <= ?`
		args = append(args, to)
	}
	query += ` ORDER BY date, time`

	rows, err := d.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Game
	for rows.Next() {
		var g store.Game
		if err := rows.Scan(&g.ID, &g.UserID, &g.TeamID, &g.OpponentID, &g.OpponentName, &g.Date, &g.Time, &g.Location, &g.HomeAway, &g.TournamentID, &g.Notes, &g.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (d *DB) CreateGame(ctx context.Context, g *store.Game) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now()
	}
	_, err := d.conn.ExecContext(ctx, `
		INSERT INTO games (id, user_id, team_id, opponent_id, opponent_name, date, time, location, home_away, tournament_id, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, g.ID, g.UserID, g.TeamID, g.OpponentID, g.OpponentName, g.Date, g.Time, g.Location, g.HomeAway, g.TournamentID, g.Notes, g.CreatedAt)
	return err
}

// MARK: tournaments

func (d *DB) AddTournament(ctx context.Context, t *store.Tournament) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	_, err := d.conn.ExecContext(ctx, `
		INSERT INTO tournaments (id, name, location, start_date, end_date, age_groups, url)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.Name, t.Location, t.StartDate, t.EndDate, t.AgeGroups, t.URL)
	return err
}

func (d *DB) GetTournament(ctx context.Context, id string) (*store.Tournament, error) {
	t := &store.Tournament{}
	err := d.conn.QueryRowContext(ctx, `
		SELECT id, name, location, start_date, end_date, age_groups, url
		FROM tournaments WHERE id = ?
	`, id).Scan(&t.ID, &t.Name, &t.Location, &t.StartDate, &t.EndDate, &t.AgeGroups, &t.URL)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (d *DB) SearchTournaments(ctx context.Context, term string, limit int) ([]store.Tournament, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.conn.QueryContext(ctx, `
		SELECT id, name, location, start_date, end_date, age_groups, url
		FROM tournaments
		WHERE name LIKE ? COLLATE NOCASE OR location LIKE ? COLLATE NOCASE
		ORDER BY start_date LIMIT ?
	`, "%"+term+"%", "%"+term+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Tournament
	for rows.Next() {
		var t store.Tournament
		if err := rows.Scan(&t.ID, &t.Name, &t.Location, &t.StartDate, &t.EndDate, &t.AgeGroups, &t.URL); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// MARK: contacts

func (d *DB) SearchContacts(ctx context.Context, term string, limit int) ([]store.ManagerContact, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := d.conn.QueryContext(ctx, `
		SELECT id, name, email, phone, team, source_url, created_at
		FROM manager_contacts
		WHERE name LIKE ? COLLATE NOCASE OR team LIKE ? COLLATE NOCASE
		ORDER BY name LIMIT ?
	`, "%"+term+"%", "%"+term+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.ManagerContact
	for rows.Next() {
		var c store.ManagerContact
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Team, &c.SourceURL, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (d *DB) InsertContact(ctx context.Context, c *store.ManagerContact) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	_, err := d.conn.ExecContext(ctx, `
		INSERT INTO manager_contacts (id, name, email, phone, team, source_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.Name, c.Email, c.Phone, c.Team, c.SourceURL, c.CreatedAt)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return store.ErrDuplicate
	}
	return err
}

// MARK: audit

func (d *DB) Append(ctx context.Context, e store.AuditEntry) error {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	_, err := d.conn.ExecContext(ctx, `
		INSERT INTO audit_log (user_id, action, detail, at) VALUES (?, ?, ?, ?)
	`, e.UserID, e.Action, e.Detail, e.At)
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
