package dto

import (
	"math"
	"member-locator-service/internal/domain"
)

type PointResponse struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type LocationResponse struct {
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Label  string  `json:"label"`
	Source string  `json:"source"`
}

type MemberResponse struct {
	ID                  string        `json:"id"`
	FullName            string        `json:"full_name"`
	BusinessTradingName string        `json:"business_trading_name,omitempty"`
	FormattedAddress    string        `json:"formatted_address,omitempty"`
	City                string        `json:"city,omitempty"`
	ContactNumber       string        `json:"contact_number,omitempty"`
	Email               string        `json:"email,omitempty"`
	AvatarURL           string        `json:"avatar_url,omitempty"`
	ProfileURL          string        `json:"profile_url,omitempty"`
	Centroid            PointResponse `json:"centroid"`
	DistanceMeters      float64       `json:"distance_meters"`
	DistanceKm          float64       `json:"distance_km"`
}

type ViewResponse struct {
	Location   LocationResponse `json:"location"`
	Members    []MemberResponse `json:"members"`
	Generation uint64           `json:"generation"`
}

type CreateSessionRequest struct {
	Lat    *float64 `json:"lat"`
	Lon    *float64 `json:"lon"`
	Denied bool     `json:"denied"`
}

type CreateSessionResponse struct {
	SessionID string       `json:"session_id"`
	View      ViewResponse `json:"view"`
}

type SearchRequest struct {
	Query string `json:"query"`
}

type NearestResponse struct {
	Point   PointResponse    `json:"point"`
	Members []MemberResponse `json:"members"`
}

func NewMembersResponse(ranked domain.RankedResult) []MemberResponse {
	out := make([]MemberResponse, 0, len(ranked))
	for _, r := range ranked {
		m := r.Member
		out = append(out, MemberResponse{
			ID:                  m.ID,
			FullName:            m.FullName,
			BusinessTradingName: m.BusinessTradingName,
			FormattedAddress:    m.FormattedAddress,
			City:                m.City,
			ContactNumber:       m.ContactNumber,
			Email:               m.Email,
			AvatarURL:           m.AvatarURL,
			ProfileURL:          m.ProfileURL,
			Centroid:            PointResponse{Lat: r.Centroid.Lat, Lon: r.Centroid.Lon},
			DistanceMeters:      r.DistanceMeters,
			DistanceKm:          math.Round(r.DistanceMeters/100) / 10,
		})
	}
	return out
}

func NewViewResponse(v domain.View) ViewResponse {
	return ViewResponse{
		Location: LocationResponse{
			Lat:    v.Location.Point.Lat,
			Lon:    v.Location.Point.Lon,
			Label:  v.Location.Label,
			Source: string(v.Location.Source),
		},
		Members:    NewMembersResponse(v.Ranked),
		Generation: v.Generation,
	}
}
