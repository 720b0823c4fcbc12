package ports

import (
	"context"
	"member-locator-service/internal/domain"
)

// Port: a boundary for retrieving Member records from the directory.
type MemberRepository interface {
	// Retrieve active, region-bearing members in directory order.
	ListMembers(ctx context.Context) ([]domain.Member, error)
}
