package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS searches (
	id          TEXT PRIMARY KEY,
	query       TEXT NOT NULL,
	location    TEXT NOT NULL,
	status      TEXT NOT NULL DEFAULT 'running',
	leads_found INTEGER NOT NULL DEFAULT 0,
	error       TEXT,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS leads (
	id              TEXT PRIMARY KEY,
	search_id       TEXT NOT NULL REFERENCES searches(id),
	name            TEXT NOT NULL,
	address         TEXT NOT NULL,
	rating          REAL,
	phone           TEXT,
	website         TEXT,
	email           TEXT,
	instagram       TEXT,
	whatsapp        TEXT,
	google_maps_uri TEXT,
	website_quality TEXT NOT NULL,
	created_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_searches_status ON searches(status);
CREATE INDEX IF NOT EXISTS idx_leads_search_id ON leads(search_id);
CREATE INDEX IF NOT EXISTS idx_leads_quality ON leads(website_quality);
CREATE INDEX IF NOT EXISTS idx_leads_created_at ON leads(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateSearch(ctx context.Context, query, location string) (*model.Search, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO searches (id, query, location, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, query, location, string(model.SearchStatusRunning), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert search")
	}

	return &model.Search{
		ID:        id,
		Query:     query,
		Location:  location,
		Status:    model.SearchStatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) CompleteSearch(ctx context.Context, searchID string, leadsFound int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE searches SET status = ?, leads_found = ?, updated_at = ? WHERE id = ?`,
		string(model.SearchStatusComplete), leadsFound, time.Now().UTC(), searchID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete search %s", searchID)
	}
	return checkRowsAffected(res, "search", searchID)
}

func (s *SQLiteStore) FailSearch(ctx context.Context, searchID string, errMsg string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE searches SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(model.SearchStatusFailed), errMsg, time.Now().UTC(), searchID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail search %s", searchID)
	}
	return checkRowsAffected(res, "search", searchID)
}

func (s *SQLiteStore) ListSearches(ctx context.Context, limit int) ([]model.Search, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query, location, status, leads_found, COALESCE(error, ''), created_at, updated_at
		 FROM searches ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list searches")
	}
	defer rows.Close()

	var searches []model.Search
	for rows.Next() {
		var sr model.Search
		var status string
		if err := rows.Scan(&sr.ID, &sr.Query, &sr.Location, &status, &sr.LeadsFound, &sr.Error, &sr.CreatedAt, &sr.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan search")
		}
		sr.Status = model.SearchStatus(status)
		searches = append(searches, sr)
	}
	return searches, eris.Wrap(rows.Err(), "sqlite: list searches iterate")
}

func (s *SQLiteStore) InsertLeads(ctx context.Context, searchID string, leads []model.Lead) (int, error) {
	if len(leads) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin insert leads")
	}
	defer tx.Rollback() //nolint:errcheck

	inserted := 0
	for _, lead := range leads {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO leads (id, search_id, name, address, rating, phone, website, email, instagram, whatsapp, google_maps_uri, website_quality)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO NOTHING`,
			lead.ID, searchID, lead.Name, lead.Address, lead.Rating, lead.Phone,
			lead.Website, lead.Email, lead.Instagram, lead.WhatsApp,
			lead.GoogleMapsURI, string(lead.WebsiteQuality),
		)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert lead %s", lead.ID)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, eris.Wrap(err, "sqlite: rows affected")
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit insert leads")
	}
	return inserted, nil
}

func (s *SQLiteStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	query := `SELECT id, name, address, rating, phone, website, email, instagram, whatsapp, google_maps_uri, website_quality
		FROM leads WHERE 1=1`
	var args []any

	if filter.SearchID != "" {
		query += ` AND search_id = ?`
		args = append(args, filter.SearchID)
	}
	if filter.Quality != "" {
		query += ` AND website_quality = ?`
		args = append(args, string(filter.Quality))
	}
	query += ` ORDER BY created_at ASC, id ASC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 500
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: list leads iterate")
}

func (s *SQLiteStore) RecentNames(ctx context.Context, bound int) ([]string, error) {
	if bound <= 0 {
		bound = 120
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM (
			SELECT name, rowid FROM leads ORDER BY rowid DESC LIMIT ?
		 ) ORDER BY rowid ASC`, bound)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: recent names")
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan name")
		}
		names = append(names, name)
	}
	return names, eris.Wrap(rows.Err(), "sqlite: recent names iterate")
}

func scanLead(rows *sql.Rows) (model.Lead, error) {
	var lead model.Lead
	var quality string
	err := rows.Scan(&lead.ID, &lead.Name, &lead.Address, &lead.Rating,
		&lead.Phone, &lead.Website, &lead.Email, &lead.Instagram,
		&lead.WhatsApp, &lead.GoogleMapsURI, &quality)
	if err != nil {
		return model.Lead{}, eris.Wrap(err, "sqlite: scan lead")
	}
	lead.WebsiteQuality = model.WebsiteQuality(quality)
	return lead, nil
}

func checkRowsAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("sqlite: %s %s not found", kind, id)
	}
	return nil
}
