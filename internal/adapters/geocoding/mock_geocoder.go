package geocoding

import (
	"context"
	"fmt"
	"member-locator-service/internal/domain"
	"strings"
	"sync"
)

type MockPlace struct {
	Query string
	Point domain.GeoPoint
	Label string
}

// MockGeocoder is an in-memory forward and reverse geocoder.
// When a gate channel is set, calls block until it yields or ctx ends.
type MockGeocoder struct {
	ResolveGate chan struct{}
	LabelGate   chan struct{}

	mu      sync.Mutex
	points  map[string]domain.GeoPoint
	labels  map[domain.GeoPoint]string
	queries []string
}

func NewMockGeocoder(places []MockPlace) *MockGeocoder {
	points := make(map[string]domain.GeoPoint, len(places))
	labels := make(map[domain.GeoPoint]string, len(places))
	for _, p := range places {
		if p.Query != "" {
			points[strings.ToLower(p.Query)] = p.Point
		}
		if p.Label != "" {
			labels[p.Point] = p.Label
		}
	}
	return &MockGeocoder{points: points, labels: labels}
}

func wait(ctx context.Context, gate chan struct{}) error {
	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *MockGeocoder) Resolve(ctx context.Context, query string) (domain.GeoPoint, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return domain.GeoPoint{}, domain.ErrEmptyQuery
	}

	m.mu.Lock()
	m.queries = append(m.queries, q)
	m.mu.Unlock()

	if err := wait(ctx, m.ResolveGate); err != nil {
		return domain.GeoPoint{}, fmt.Errorf("mock resolve %q: %w: %w", q, domain.ErrProvider, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.points[strings.ToLower(q)]
	if !ok {
		return domain.GeoPoint{}, fmt.Errorf("mock resolve %q: %w", q, domain.ErrNotFound)
	}
	return p, nil
}

func (m *MockGeocoder) Label(ctx context.Context, p domain.GeoPoint) string {
	if err := wait(ctx, m.LabelGate); err != nil {
		return domain.UnknownLocation
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.labels[p]; ok {
		return l
	}
	return domain.UnknownLocation
}

// Queries returns the queries Resolve has seen, in call order.
func (m *MockGeocoder) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}
