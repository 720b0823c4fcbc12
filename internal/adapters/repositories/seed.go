package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"member-locator-service/internal/domain"
	"os"
	"strings"
)

type polygonPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type memberCustomFields struct {
	FirstName           string         `json:"first_name"`
	LastName            string         `json:"last_name"`
	BusinessTradingName string         `json:"mepr_business_trading_name"`
	ContactNumber       string         `json:"mepr_contact_number"`
	City                string         `json:"mepr-address-city"`
	State               string         `json:"mepr-address-state"`
	Zip                 string         `json:"mepr-address-zip"`
	Country             string         `json:"mepr-address-country"`
	Polygon             []polygonPoint `json:"mepr_polygon_array"`
}

type memberSubscription struct {
	Status    string `json:"status"`
	ProductID string `json:"product_id"`
}

// MemberSeed mirrors one record of the directory export
// (GET /wp-json/aua/v1/members).
type MemberSeed struct {
	ID               string             `json:"id"`
	Email            string             `json:"email"`
	Username         string             `json:"username"`
	AvatarURL        string             `json:"avatar_url"`
	ProfileURL       string             `json:"profile_url"`
	CustomFields     memberCustomFields `json:"custom_fields"`
	Subscription     memberSubscription `json:"subscription"`
	FormattedAddress string             `json:"formatted_address"`
	FullName         string             `json:"full_name"`
}

type directoryExport struct {
	Data []MemberSeed `json:"data"`
}

// Member converts the export shape to the domain type.
func (s MemberSeed) Member() domain.Member {
	region := make(domain.Region, 0, len(s.CustomFields.Polygon))
	for _, p := range s.CustomFields.Polygon {
		region = append(region, domain.GeoPoint{Lat: p.Lat, Lon: p.Lng})
	}

	cf := s.CustomFields
	return domain.Member{
		ID:                  strings.TrimSpace(s.ID),
		Email:               s.Email,
		Username:            s.Username,
		AvatarURL:           s.AvatarURL,
		ProfileURL:          s.ProfileURL,
		FullName:            s.FullName,
		FirstName:           cf.FirstName,
		LastName:            cf.LastName,
		FormattedAddress:    s.FormattedAddress,
		BusinessTradingName: cf.BusinessTradingName,
		ContactNumber:       cf.ContactNumber,
		City:                cf.City,
		State:               cf.State,
		Zip:                 cf.Zip,
		Country:             cf.Country,
		SubscriptionStatus:  strings.TrimSpace(s.Subscription.Status),
		ProductID:           s.Subscription.ProductID,
		Region:              region,
	}
}

// ParseDirectoryExport decodes a directory export ({"data":[...]}) into members.
// Records without an id are rejected; inactive or region-less members are kept
// so the repository can filter them at read time. The export can list a member
// more than once; the first record wins.
func ParseDirectoryExport(r io.Reader) ([]domain.Member, error) {
	var export directoryExport
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return nil, fmt.Errorf("parse directory export: %w", err)
	}

	members := make([]domain.Member, 0, len(export.Data))
	seen := make(map[string]bool, len(export.Data))
	for i, item := range export.Data {
		m := item.Member()
		if m.ID == "" {
			return nil, fmt.Errorf("parse directory export: item at index %d: id cannot be empty", i+1)
		}
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		members = append(members, m)
	}

	return members, nil
}

// Populate the database with members from a directory export JSON file.
func SeedFromJSON(ctx context.Context, db *sql.DB, jsonPath string) (int, error) {
	f, err := os.Open(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("seed members: open %q: %w", jsonPath, err)
	}
	defer f.Close()

	members, err := ParseDirectoryExport(f)
	if err != nil {
		return 0, fmt.Errorf("seed members: %w", err)
	}

	repo := NewPostgresMemberRepository(db)
	if err := repo.UpsertMembers(ctx, members); err != nil {
		return 0, fmt.Errorf("seed members: %w", err)
	}

	return len(members), nil
}
