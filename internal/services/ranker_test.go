package services

import (
	"fmt"
	"member-locator-service/internal/domain"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// box returns a four-vertex region centred on (lat, lon).
func box(lat, lon, half float64) domain.Region {
	return domain.Region{
		{Lat: lat - half, Lon: lon - half},
		{Lat: lat - half, Lon: lon + half},
		{Lat: lat + half, Lon: lon + half},
		{Lat: lat + half, Lon: lon - half},
	}
}

func member(id string, region domain.Region) domain.Member {
	return domain.Member{
		ID:                 id,
		FullName:           "Member " + id,
		SubscriptionStatus: domain.SubscriptionActive,
		Region:             region,
	}
}

func ids(r domain.RankedResult) []string {
	out := make([]string, 0, len(r))
	for _, m := range r {
		out = append(out, m.Member.ID)
	}
	return out
}

func TestRankMembersOrdersByDistance(t *testing.T) {
	point := domain.GeoPoint{Lat: 51.5, Lon: -0.1}
	members := []domain.Member{
		member("birmingham", box(52.5, -1.9, 0.1)),
		member("london", box(51.6, -0.1, 0.05)),
		member("southampton", box(50.9, -1.4, 0.1)),
	}

	got := RankMembers(point, members, DefaultRankLimit)

	require.Len(t, got, 3)
	assert.Equal(t, []string{"london", "southampton", "birmingham"}, ids(got))
	assert.InDelta(t, 11_120, got[0].DistanceMeters, 200)
	assert.InDelta(t, 112_000, got[1].DistanceMeters, 3_000)
	assert.InDelta(t, 166_000, got[2].DistanceMeters, 3_000)
	assert.InDelta(t, 51.6, got[0].Centroid.Lat, 1e-9)
	assert.InDelta(t, -0.1, got[0].Centroid.Lon, 1e-9)
}

func TestRankMembersLimit(t *testing.T) {
	point := domain.GeoPoint{Lat: 51.5, Lon: -0.1}

	var members []domain.Member
	for i := range 10 {
		members = append(members, member(fmt.Sprint(i), box(51.5+float64(i)*0.1, -0.1, 0.01)))
	}

	got := RankMembers(point, members, DefaultRankLimit)
	assert.Equal(t, []string{"0", "1", "2", "3", "4", "5"}, ids(got))

	got = RankMembers(point, members, 2)
	assert.Equal(t, []string{"0", "1"}, ids(got))

	got = RankMembers(point, members, 0)
	assert.Len(t, got, DefaultRankLimit)

	got = RankMembers(point, members[:3], DefaultRankLimit)
	assert.Len(t, got, 3)
}

func TestRankMembersExcludesInvalidCentroids(t *testing.T) {
	point := domain.GeoPoint{Lat: 51.5, Lon: -0.1}
	members := []domain.Member{
		member("empty", nil),
		member("zero-lat", domain.Region{{Lat: 0, Lon: -0.1}, {Lat: 51.6, Lon: -0.2}}),
		member("zero-lon", domain.Region{{Lat: 51.6, Lon: 0}, {Lat: 51.6, Lon: -0.2}}),
		member("ok", box(51.6, -0.1, 0.05)),
	}

	got := RankMembers(point, members, DefaultRankLimit)
	assert.Equal(t, []string{"ok"}, ids(got))
}

func TestRankMembersStableTies(t *testing.T) {
	point := domain.GeoPoint{Lat: 51.5, Lon: -0.1}
	region := box(51.6, -0.1, 0.05)
	members := []domain.Member{
		member("c", region),
		member("a", region),
		member("b", region),
	}

	got := RankMembers(point, members, DefaultRankLimit)
	assert.Equal(t, []string{"c", "a", "b"}, ids(got))
}

func TestRankMembersDoesNotMutateInput(t *testing.T) {
	point := domain.GeoPoint{Lat: 51.5, Lon: -0.1}
	members := []domain.Member{
		member("far", box(53.8, -1.5, 0.1)),
		member("near", box(51.6, -0.1, 0.05)),
	}
	before := []domain.Member{
		member("far", box(53.8, -1.5, 0.1)),
		member("near", box(51.6, -0.1, 0.05)),
	}

	got := RankMembers(point, members, 1)
	require.Equal(t, []string{"near"}, ids(got))

	if diff := cmp.Diff(before, members); diff != "" {
		t.Fatalf("input mutated (-want +got):\n%s", diff)
	}

	// Growing the result must not write into the input's backing array.
	_ = append(got, domain.RankedMember{})
	assert.Equal(t, "far", members[0].ID)
}

func TestRankMembersEmptyInputs(t *testing.T) {
	point := domain.GeoPoint{Lat: 51.5, Lon: -0.1}

	got := RankMembers(point, nil, DefaultRankLimit)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got = RankMembers(domain.GeoPoint{Lat: 91, Lon: 0}, []domain.Member{member("x", box(51.6, -0.1, 0.05))}, DefaultRankLimit)
	assert.Empty(t, got)
}
