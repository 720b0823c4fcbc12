package services

import (
	"cmp"
	"member-locator-service/internal/domain"
	"slices"
)

// DefaultRankLimit is the number of members a display shows.
const DefaultRankLimit = 6

// RankMembers orders members by great-circle distance from point to the
// centroid of each member's region and keeps the nearest limit of them.
//
// Members without a valid centroid are excluded rather than ranked at the
// (0,0) sentinel. Ties keep input order. The input slice and its members are
// never modified; the result is freshly allocated and performs no I/O.
// A limit below 1 means DefaultRankLimit.
func RankMembers(point domain.GeoPoint, members []domain.Member, limit int) domain.RankedResult {
	if limit < 1 {
		limit = DefaultRankLimit
	}
	if !point.Valid() {
		return domain.RankedResult{}
	}

	candidates := make(domain.RankedResult, 0, len(members))
	for _, m := range members {
		c, ok := m.Region.Centroid()
		if !ok {
			continue
		}
		candidates = append(candidates, domain.RankedMember{
			Member:         m,
			Centroid:       c,
			DistanceMeters: point.DistanceTo(c),
		})
	}

	slices.SortStableFunc(candidates, func(a, b domain.RankedMember) int {
		return cmp.Compare(a.DistanceMeters, b.DistanceMeters)
	})

	if len(candidates) > limit {
		candidates = candidates[:limit:limit]
	}

	return candidates
}
