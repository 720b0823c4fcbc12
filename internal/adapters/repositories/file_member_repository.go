package repositories

import (
	"context"
	"fmt"
	"member-locator-service/internal/domain"
	"os"
	"slices"
)

// In-memory MemberRepository loaded from a directory export file.
// Used when no database is configured.
type FileMemberRepository struct {
	members []domain.Member
}

func LoadFileMemberRepository(path string) (*FileMemberRepository, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load members: open %q: %w", path, err)
	}
	defer f.Close()

	members, err := ParseDirectoryExport(f)
	if err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}

	return &FileMemberRepository{members: members}, nil
}

func (r *FileMemberRepository) ListMembers(ctx context.Context) ([]domain.Member, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]domain.Member, 0, len(r.members))
	for _, m := range r.members {
		if m.Rankable() {
			m.Region = slices.Clone(m.Region)
			out = append(out, m)
		}
	}
	return out, nil
}
