package domain

// SubscriptionActive is the only subscription status the directory hands to ranking.
const SubscriptionActive = "active"

// Represents a directory member as supplied by the member data source.
// Members are read-only inside this service.
type Member struct {
	ID                  string
	Email               string
	Username            string
	AvatarURL           string
	ProfileURL          string
	FullName            string
	FirstName           string
	LastName            string
	FormattedAddress    string
	BusinessTradingName string
	ContactNumber       string
	City                string
	State               string
	Zip                 string
	Country             string
	SubscriptionStatus  string
	ProductID           string
	Region              Region
}

// Rankable reports whether the directory would hand this member to ranking:
// an active subscription and at least one region vertex.
func (m Member) Rankable() bool {
	return m.SubscriptionStatus == SubscriptionActive && len(m.Region) > 0
}

// A member annotated with its distance to one specific resolution point.
// DistanceMeters is meaningless once the resolution point changes.
type RankedMember struct {
	Member         Member
	Centroid       GeoPoint
	DistanceMeters float64
}

// Ordered nearest-first members for one resolution point.
type RankedResult []RankedMember
