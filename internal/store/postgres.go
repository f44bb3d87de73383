package store

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// PgxPool is the subset of pgxpool.Pool used by the store. pgxmock
// satisfies it in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using pgx.
type PostgresStore struct {
	pool PgxPool
}

// NewPostgres connects a pgx pool to databaseURL.
func NewPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool (tests use pgxmock here).
func NewPostgresFromPool(pool PgxPool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS searches (
	id          UUID PRIMARY KEY,
	query       TEXT NOT NULL,
	location    TEXT NOT NULL,
	status      TEXT NOT NULL DEFAULT 'running',
	leads_found INTEGER NOT NULL DEFAULT 0,
	error       TEXT,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS leads (
	id              TEXT PRIMARY KEY,
	search_id       UUID NOT NULL REFERENCES searches(id),
	name            TEXT NOT NULL,
	address         TEXT NOT NULL,
	rating          DOUBLE PRECISION,
	phone           TEXT,
	website         TEXT,
	email           TEXT,
	instagram       TEXT,
	whatsapp        TEXT,
	google_maps_uri TEXT,
	website_quality TEXT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_searches_status ON searches(status);
CREATE INDEX IF NOT EXISTS idx_leads_search_id ON leads(search_id);
CREATE INDEX IF NOT EXISTS idx_leads_quality ON leads(website_quality);
CREATE INDEX IF NOT EXISTS idx_leads_created_at ON leads(created_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateSearch(ctx context.Context, query, location string) (*model.Search, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO searches (id, query, location, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		id, query, location, string(model.SearchStatusRunning), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert search")
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

func (s *PostgresStore) CompleteSearch(ctx context.Context, searchID string, leadsFound int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE searches SET status = $1, leads_found = $2, updated_at = now() WHERE id = $3`,
		string(model.SearchStatusComplete), leadsFound, searchID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete search %s", searchID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: search %s not found", searchID)
	}
	return nil
}

func (s *PostgresStore) FailSearch(ctx context.Context, searchID string, errMsg string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE searches SET status = $1, error = $2, updated_at = now() WHERE id = $3`,
		string(model.SearchStatusFailed), errMsg, searchID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail search %s", searchID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: search %s not found", searchID)
	}
	return nil
}

func (s *PostgresStore) ListSearches(ctx context.Context, limit int) ([]model.Search, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, query, location, status, leads_found, COALESCE(error, ''), created_at, updated_at
		 FROM searches ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list searches")
	}
	defer rows.Close()

	var searches []model.Search
	for rows.Next() {
		var sr model.Search
		var status string
		if err := rows.Scan(&sr.ID, &sr.Query, &sr.Location, &status, &sr.LeadsFound, &sr.Error, &sr.CreatedAt, &sr.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan search")
		}
		sr.Status = model.SearchStatus(status)
		searches = append(searches, sr)
	}
	return searches, eris.Wrap(rows.Err(), "postgres: list searches iterate")
}

func (s *PostgresStore) InsertLeads(ctx context.Context, searchID string, leads []model.Lead) (int, error) {
	inserted := 0
	for _, lead := range leads {
		tag, err := s.pool.Exec(ctx,
			`INSERT INTO leads (id, search_id, name, address, rating, phone, website, email, instagram, whatsapp, google_maps_uri, website_quality)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			 ON CONFLICT (id) DO NOTHING`,
			lead.ID, searchID, lead.Name, lead.Address, lead.Rating, lead.Phone,
			lead.Website, lead.Email, lead.Instagram, lead.WhatsApp,
			lead.GoogleMapsURI, string(lead.WebsiteQuality),
		)
		if err != nil {
			return 0, eris.Wrapf(err, "postgres: insert lead %s", lead.ID)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

func (s *PostgresStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	query := `SELECT id, name, address, rating, phone, website, email, instagram, whatsapp, google_maps_uri, website_quality
		FROM leads WHERE 1=1`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.SearchID != "" {
		query += ` AND search_id = ` + arg(filter.SearchID)
	}
	if filter.Quality != "" {
		query += ` AND website_quality = ` + arg(string(filter.Quality))
	}
	query += ` ORDER BY created_at ASC, id ASC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 500
	}
	query += ` LIMIT ` + arg(limit)
	if filter.Offset > 0 {
		query += ` OFFSET ` + arg(filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		var lead model.Lead
		var quality string
		if err := rows.Scan(&lead.ID, &lead.Name, &lead.Address, &lead.Rating,
			&lead.Phone, &lead.Website, &lead.Email, &lead.Instagram,
			&lead.WhatsApp, &lead.GoogleMapsURI, &quality); err != nil {
			return nil, eris.Wrap(err, "postgres: scan lead")
		}
		lead.WebsiteQuality = model.WebsiteQuality(quality)
		leads = append(leads, lead)
	}
	return leads, eris.Wrap(rows.Err(), "postgres: list leads iterate")
}

func (s *PostgresStore) RecentNames(ctx context.Context, bound int) ([]string, error) {
	if bound <= 0 {
		bound = 120
	}
	rows, err := s.pool.Query(ctx,
		`SELECT name FROM (
			SELECT name, created_at, id FROM leads ORDER BY created_at DESC, id DESC LIMIT $1
		 ) recent ORDER BY created_at ASC`, bound)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: recent names")
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, eris.Wrap(err, "postgres: scan name")
		}
		names = append(names, name)
	}
	return names, eris.Wrap(rows.Err(), "postgres: recent names iterate")
}
