package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/model"
)

func newTestPostgres(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresFromPool(mock), mock
}

func TestPostgresMigrate(t *testing.T) {
	s, mock := newTestPostgres(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS searches").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateSearch(t *testing.T) {
	s, mock := newTestPostgres(t)

	mock.ExpectExec("INSERT INTO searches").
		WithArgs(pgxmock.AnyArg(), "coffee shops", "Portland, OR", "running", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	search, err := s.CreateSearch(context.Background(), "coffee shops", "Portland, OR")
	require.NoError(t, err)
	assert.NotEmpty(t, search.ID)
	assert.Equal(t, model.SearchStatusRunning, search.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCompleteSearch(t *testing.T) {
	s, mock := newTestPostgres(t)

	mock.ExpectExec("UPDATE searches SET status").
		WithArgs("complete", 7, "search-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, s.CompleteSearch(context.Background(), "search-1", 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCompleteSearchNotFound(t *testing.T) {
	s, mock := newTestPostgres(t)

	mock.ExpectExec("UPDATE searches SET status").
		WithArgs("complete", 0, "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.CompleteSearch(context.Background(), "missing", 0)
	assert.ErrorContains(t, err, "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFailSearch(t *testing.T) {
	s, mock := newTestPostgres(t)

	mock.ExpectExec("UPDATE searches SET status").
		WithArgs("failed", "rate limited", "search-2").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, s.FailSearch(context.Background(), "search-2", "rate limited"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// leadArgMatchers matches the 12 bound parameters of the leads INSERT
// without pinning their values.
func leadArgMatchers() []any {
	args := make([]any, 12)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func TestPostgresInsertLeadsCountsNewRows(t *testing.T) {
	s, mock := newTestPostgres(t)

	leads := []model.Lead{testLead("Blue Bakery"), testLead("Blue Bakery")}

	mock.ExpectExec("INSERT INTO leads").
		WithArgs(leadArgMatchers()...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO leads").
		WithArgs(leadArgMatchers()...).
		WillReturnResult(pgxmock.NewResult("INSERT", 0)) // conflict, skipped

	n, err := s.InsertLeads(context.Background(), "search-1", leads)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresInsertLeadsError(t *testing.T) {
	s, mock := newTestPostgres(t)

	mock.ExpectExec("INSERT INTO leads").
		WithArgs(leadArgMatchers()...).
		WillReturnError(errors.New("connection reset"))

	_, err := s.InsertLeads(context.Background(), "search-1", []model.Lead{testLead("Blue Bakery")})
	assert.ErrorContains(t, err, "insert lead")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListLeads(t *testing.T) {
	s, mock := newTestPostgres(t)

	rows := pgxmock.NewRows([]string{
		"id", "name", "address", "rating", "phone", "website",
		"email", "instagram", "whatsapp", "google_maps_uri", "website_quality",
	}).AddRow(
		"abc123", "Blue Bakery", "123 Main St", ptr(4.5), ptr("+1 555 0100"),
		ptr("https://bluebakery.com"), (*string)(nil), (*string)(nil), (*string)(nil), (*string)(nil), "Good",
	)

	mock.ExpectQuery("SELECT (.+) FROM leads").
		WithArgs("search-1", "Good", 500).
		WillReturnRows(rows)

	got, err := s.ListLeads(context.Background(), LeadFilter{SearchID: "search-1", Quality: model.QualityGood})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Blue Bakery", got[0].Name)
	assert.Equal(t, model.QualityGood, got[0].WebsiteQuality)
	assert.Nil(t, got[0].Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListSearches(t *testing.T) {
	s, mock := newTestPostgres(t)

	rows := pgxmock.NewRows([]string{
		"id", "query", "location", "status", "leads_found", "error", "created_at", "updated_at",
	}).AddRow("s1", "gyms", "Miami, FL", "complete", 9, "", time.Now(), time.Now())

	mock.ExpectQuery("SELECT (.+) FROM searches").
		WithArgs(50).
		WillReturnRows(rows)

	got, err := s.ListSearches(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.SearchStatusComplete, got[0].Status)
	assert.Equal(t, 9, got[0].LeadsFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRecentNames(t *testing.T) {
	s, mock := newTestPostgres(t)

	rows := pgxmock.NewRows([]string{"name"}).
		AddRow("Beta Cafe").
		AddRow("Gamma Cafe")

	mock.ExpectQuery("SELECT name FROM").
		WithArgs(2).
		WillReturnRows(rows)

	names, err := s.RecentNames(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Beta Cafe", "Gamma Cafe"}, names)
	assert.NoError(t, mock.ExpectationsWereMet())
}
