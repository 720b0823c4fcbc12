package repositories

import (
	"context"
	"member-locator-service/internal/domain"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var memberColumns = []string{
	"id", "email", "username", "avatar_url", "profile_url", "full_name",
	"first_name", "last_name", "formatted_address", "business_trading_name",
	"contact_number", "city", "state", "zip", "country",
	"subscription_status", "product_id", "region",
}

func TestListMembers(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows(memberColumns).
		AddRow("101", "a@example.org", "a", "", "", "Ada Hart", "Ada", "Hart", "", "Thames", "", "London", "", "", "GB",
			"active", "12", []byte(`[{"lat":51.55,"lng":-0.15},{"lat":51.65,"lng":-0.05}]`)).
		AddRow("102", "b@example.org", "b", "", "", "Ravi Patel", "Ravi", "Patel", "", "Midlands", "", "Birmingham", "", "", "GB",
			"active", "12", []byte(`[]`))

	mock.ExpectQuery(regexp.QuoteMeta("FROM members")).
		WithArgs(domain.SubscriptionActive).
		WillReturnRows(rows)

	members, err := NewPostgresMemberRepository(db).ListMembers(context.Background())
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "101", members[0].ID)
	assert.Equal(t, domain.Region{{Lat: 51.55, Lon: -0.15}, {Lat: 51.65, Lon: -0.05}}, members[0].Region)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListMembersBadRegion(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows(memberColumns).
		AddRow("101", "", "", "", "", "", "", "", "", "", "", "", "", "", "", "active", "", []byte(`{oops`))
	mock.ExpectQuery(regexp.QuoteMeta("FROM members")).WillReturnRows(rows)

	_, err = NewPostgresMemberRepository(db).ListMembers(context.Background())
	assert.Error(t, err)
}

func TestUpsertMembers(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	m := domain.Member{
		ID:                 "101",
		SubscriptionStatus: "active",
		Region:             domain.Region{{Lat: 51.5, Lon: -0.1}},
	}

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO members"))
	prep.ExpectExec().
		WithArgs("101", "", "", "", "", "", "", "", "", "", "", "", "", "", "", "active", "", `[{"lat":51.5,"lng":-0.1}]`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, NewPostgresMemberRepository(db).UpsertMembers(context.Background(), []domain.Member{m}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParseDirectoryExport(t *testing.T) {
	f, err := os.Open("testdata/members.json")
	require.NoError(t, err)
	defer f.Close()

	members, err := ParseDirectoryExport(f)
	require.NoError(t, err)
	require.Len(t, members, 4)

	first := members[0]
	assert.Equal(t, "101", first.ID)
	assert.Equal(t, "Thames Mobile Scanning", first.BusinessTradingName)
	assert.Equal(t, "London", first.City)
	assert.Equal(t, "active", first.SubscriptionStatus)
	assert.Len(t, first.Region, 4)
	assert.Equal(t, domain.GeoPoint{Lat: 51.55, Lon: -0.15}, first.Region[0])
	assert.True(t, first.Rankable())

	assert.False(t, members[3].Rankable(), "expired subscription must not be rankable")
}

func TestParseDirectoryExportRejectsMissingID(t *testing.T) {
	_, err := ParseDirectoryExport(strings.NewReader(`{"data":[{"id":""}]}`))
	assert.Error(t, err)
}

func TestParseDirectoryExportKeepsFirstDuplicate(t *testing.T) {
	export := `{"data":[
		{"id":"7","full_name":"First","subscription":{"status":"active"}},
		{"id":"8","full_name":"Other","subscription":{"status":"active"}},
		{"id":" 7 ","full_name":"Second","subscription":{"status":"expired"}}
	]}`

	members, err := ParseDirectoryExport(strings.NewReader(export))
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "7", members[0].ID)
	assert.Equal(t, "First", members[0].FullName)
	assert.Equal(t, "active", members[0].SubscriptionStatus)
	assert.Equal(t, "8", members[1].ID)
}

func TestSeedFromJSONUpsertsFirstDuplicateOnly(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	path := filepath.Join(t.TempDir(), "members.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"data":[
		{"id":"7","full_name":"First","subscription":{"status":"active"}},
		{"id":"7","full_name":"Second","subscription":{"status":"expired"}}
	]}`), 0o600))

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO members"))
	prep.ExpectExec().
		WithArgs("7", "", "", "", "", "First", "", "", "", "", "", "", "", "", "", "active", "", `[]`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := SeedFromJSON(context.Background(), db, path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
