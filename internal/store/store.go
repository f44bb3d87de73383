package store

import (
	"context"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// LeadFilter specifies criteria for listing stored leads.
type LeadFilter struct {
	SearchID string               `json:"search_id,omitempty"`
	Quality  model.WebsiteQuality `json:"quality,omitempty"`
	Limit    int                  `json:"limit,omitempty"`
	Offset   int                  `json:"offset,omitempty"`
}

// Store defines persistence for search runs and the leads they produced.
type Store interface {
	// Searches
	CreateSearch(ctx context.Context, query, location string) (*model.Search, error)
	CompleteSearch(ctx context.Context, searchID string, leadsFound int) error
	FailSearch(ctx context.Context, searchID string, errMsg string) error
	ListSearches(ctx context.Context, limit int) ([]model.Search, error)

	// Leads. InsertLeads upserts by the content-stable lead ID and reports
	// how many rows were actually new.
	InsertLeads(ctx context.Context, searchID string, leads []model.Lead) (int, error)
	ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error)

	// RecentNames returns up to bound lead names, oldest first, for seeding
	// the exclusion suffix across CLI invocations.
	RecentNames(ctx context.Context, bound int) ([]string, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
