package domain

// Polygon (ordered list of points) describing a member's approximate service area.
// Order matters for drawing the polygon but not for its centroid.
type Region []GeoPoint

// Centroid reduces the region to a single representative point.
//
// The result is the arithmetic mean of all vertices, not an area-weighted
// spherical centroid. That approximation holds while regions stay small
// relative to the Earth's radius.
//
// ok is false for an empty region, or when the first vertex is missing either
// coordinate. Callers must exclude such members instead of ranking (0,0).
func (r Region) Centroid() (_ GeoPoint, ok bool) {
	if len(r) == 0 || r[0].Lat == 0 || r[0].Lon == 0 {
		return GeoPoint{}, false
	}

	var latSum, lonSum float64
	for _, p := range r {
		latSum += p.Lat
		lonSum += p.Lon
	}

	n := float64(len(r))
	c := GeoPoint{Lat: latSum / n, Lon: lonSum / n}
	if !c.Valid() {
		return GeoPoint{}, false
	}

	return c, true
}
