package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "leads.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func ptr[T any](v T) *T { return &v }

func testLead(name string) model.Lead {
	return model.Lead{
		ID:             model.LeadID(name, "123 Main St"),
		Name:           name,
		Address:        "123 Main St",
		Rating:         ptr(4.5),
		Phone:          ptr("+1 555 0100"),
		Website:        ptr("https://example.com"),
		WebsiteQuality: model.QualityGood,
	}
}

func TestSQLiteSearchLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	search, err := s.CreateSearch(ctx, "coffee shops", "Portland, OR")
	require.NoError(t, err)
	assert.NotEmpty(t, search.ID)
	assert.Equal(t, model.SearchStatusRunning, search.Status)

	require.NoError(t, s.CompleteSearch(ctx, search.ID, 12))

	searches, err := s.ListSearches(ctx, 10)
	require.NoError(t, err)
	require.Len(t, searches, 1)
	assert.Equal(t, model.SearchStatusComplete, searches[0].Status)
	assert.Equal(t, 12, searches[0].LeadsFound)
}

func TestSQLiteFailSearch(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	search, err := s.CreateSearch(ctx, "plumbers", "Austin, TX")
	require.NoError(t, err)

	require.NoError(t, s.FailSearch(ctx, search.ID, "quota exceeded"))

	searches, err := s.ListSearches(ctx, 10)
	require.NoError(t, err)
	require.Len(t, searches, 1)
	assert.Equal(t, model.SearchStatusFailed, searches[0].Status)
	assert.Equal(t, "quota exceeded", searches[0].Error)
}

func TestSQLiteCompleteSearchNotFound(t *testing.T) {
	s := newTestSQLite(t)
	err := s.CompleteSearch(context.Background(), "missing-id", 0)
	assert.Error(t, err)
}

func TestSQLiteInsertLeadsDedupes(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	search, err := s.CreateSearch(ctx, "bakeries", "Denver, CO")
	require.NoError(t, err)

	leads := []model.Lead{testLead("Blue Bakery"), testLead("Rise Bakery")}
	n, err := s.InsertLeads(ctx, search.ID, leads)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// A second pass with one duplicate and one new lead only counts the new one.
	n, err = s.InsertLeads(ctx, search.ID, []model.Lead{testLead("Blue Bakery"), testLead("Flour Power")})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := s.ListLeads(ctx, LeadFilter{SearchID: search.ID})
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestSQLiteListLeadsFilter(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	search, err := s.CreateSearch(ctx, "gyms", "Miami, FL")
	require.NoError(t, err)

	good := testLead("Iron Works")
	bad := testLead("No Site Gym")
	bad.Website = nil
	bad.WebsiteQuality = model.QualityBad

	_, err = s.InsertLeads(ctx, search.ID, []model.Lead{good, bad})
	require.NoError(t, err)

	got, err := s.ListLeads(ctx, LeadFilter{SearchID: search.ID, Quality: model.QualityBad})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "No Site Gym", got[0].Name)
	assert.Nil(t, got[0].Website)
}

func TestSQLiteListLeadsRoundTripsFields(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	search, err := s.CreateSearch(ctx, "salons", "Boise, ID")
	require.NoError(t, err)

	lead := testLead("Shear Genius")
	lead.Email = ptr("hello@sheargenius.com")
	lead.Instagram = ptr("@sheargenius")
	lead.GoogleMapsURI = ptr("https://maps.google.com/?cid=42")

	_, err = s.InsertLeads(ctx, search.ID, []model.Lead{lead})
	require.NoError(t, err)

	got, err := s.ListLeads(ctx, LeadFilter{SearchID: search.ID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, lead.ID, got[0].ID)
	assert.Equal(t, "hello@sheargenius.com", *got[0].Email)
	assert.Equal(t, "@sheargenius", *got[0].Instagram)
	assert.Equal(t, "https://maps.google.com/?cid=42", *got[0].GoogleMapsURI)
	assert.Equal(t, 4.5, *got[0].Rating)
}

func TestSQLiteRecentNames(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	search, err := s.CreateSearch(ctx, "cafes", "Seattle, WA")
	require.NoError(t, err)

	var leads []model.Lead
	for _, name := range []string{"Alpha Cafe", "Beta Cafe", "Gamma Cafe"} {
		l := testLead(name)
		l.ID = model.LeadID(name, "123 Main St")
		leads = append(leads, l)
	}
	_, err = s.InsertLeads(ctx, search.ID, leads)
	require.NoError(t, err)

	names, err := s.RecentNames(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, names, 2)
	assert.Contains(t, names, "Beta Cafe")
	assert.Contains(t, names, "Gamma Cafe")
}
