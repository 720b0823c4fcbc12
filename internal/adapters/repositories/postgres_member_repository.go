package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"member-locator-service/internal/domain"
	"member-locator-service/internal/platform/obs"
)

// Postgres-backed implementation of the MemberRepository port.
type PostgresMemberRepository struct{ DB *sql.DB }

func NewPostgresMemberRepository(db *sql.DB) *PostgresMemberRepository {
	return &PostgresMemberRepository{DB: db}
}

// Return active members with a non-empty region, in directory order.
func (s *PostgresMemberRepository) ListMembers(ctx context.Context) (_ []domain.Member, err error) {
	defer obs.Time(ctx, "members.List")(&err)

	if s.DB == nil {
		return nil, errors.New("postgres member repository: DB is nil")
	}

	query := `
	SELECT
		id, email, username, avatar_url, profile_url, full_name,
		first_name, last_name, formatted_address, business_trading_name,
		contact_number, city, state, zip, country,
		subscription_status, product_id, region
	FROM members
	WHERE subscription_status = $1
	  AND jsonb_array_length(region) > 0
	ORDER BY seq;
	`
	rows, err := s.DB.QueryContext(ctx, query, domain.SubscriptionActive)
	if err != nil {
		return nil, fmt.Errorf("list members: query members table: %w", err)
	}
	defer rows.Close()

	members := make([]domain.Member, 0, 64)
	for rows.Next() {
		var m domain.Member
		var region []byte
		err := rows.Scan(
			&m.ID, &m.Email, &m.Username, &m.AvatarURL, &m.ProfileURL, &m.FullName,
			&m.FirstName, &m.LastName, &m.FormattedAddress, &m.BusinessTradingName,
			&m.ContactNumber, &m.City, &m.State, &m.Zip, &m.Country,
			&m.SubscriptionStatus, &m.ProductID, &region,
		)
		if err != nil {
			return nil, fmt.Errorf("list members: scan row: %w", err)
		}

		if m.Region, err = decodeRegion(region); err != nil {
			return nil, fmt.Errorf("list members: member %q: %w", m.ID, err)
		}

		// Guard the collaborator contract even if the SQL filter drifts.
		if !m.Rankable() {
			continue
		}
		members = append(members, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list members: row iteration: %w", err)
	}

	return members, nil
}

// Insert or update members in a single transaction.
func (s *PostgresMemberRepository) UpsertMembers(ctx context.Context, members []domain.Member) error {
	if s.DB == nil {
		return errors.New("postgres member repository: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("upsert members: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO members (
		id, email, username, avatar_url, profile_url, full_name,
		first_name, last_name, formatted_address, business_trading_name,
		contact_number, city, state, zip, country,
		subscription_status, product_id, region
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18::jsonb)
	ON CONFLICT (id) DO UPDATE
	SET email = EXCLUDED.email,
		username = EXCLUDED.username,
		avatar_url = EXCLUDED.avatar_url,
		profile_url = EXCLUDED.profile_url,
		full_name = EXCLUDED.full_name,
		first_name = EXCLUDED.first_name,
		last_name = EXCLUDED.last_name,
		formatted_address = EXCLUDED.formatted_address,
		business_trading_name = EXCLUDED.business_trading_name,
		contact_number = EXCLUDED.contact_number,
		city = EXCLUDED.city,
		state = EXCLUDED.state,
		zip = EXCLUDED.zip,
		country = EXCLUDED.country,
		subscription_status = EXCLUDED.subscription_status,
		product_id = EXCLUDED.product_id,
		region = EXCLUDED.region;
	`)
	if err != nil {
		return fmt.Errorf("upsert members: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range members {
		region, err := encodeRegion(m.Region)
		if err != nil {
			return fmt.Errorf("upsert members: member %q: %w", m.ID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			m.ID, m.Email, m.Username, m.AvatarURL, m.ProfileURL, m.FullName,
			m.FirstName, m.LastName, m.FormattedAddress, m.BusinessTradingName,
			m.ContactNumber, m.City, m.State, m.Zip, m.Country,
			m.SubscriptionStatus, m.ProductID, string(region),
		); err != nil {
			return fmt.Errorf("upsert members: insert id=%q: %w", m.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("upsert members: commit tx: %w", err)
	}

	return nil
}

func encodeRegion(r domain.Region) ([]byte, error) {
	pts := make([]polygonPoint, 0, len(r))
	for _, p := range r {
		pts = append(pts, polygonPoint{Lat: p.Lat, Lng: p.Lon})
	}
	return json.Marshal(pts)
}

func decodeRegion(raw []byte) (domain.Region, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var pts []polygonPoint
	if err := json.Unmarshal(raw, &pts); err != nil {
		return nil, fmt.Errorf("decode region: %w", err)
	}
	r := make(domain.Region, 0, len(pts))
	for _, p := range pts {
		r = append(r, domain.GeoPoint{Lat: p.Lat, Lon: p.Lng})
	}
	return r, nil
}
