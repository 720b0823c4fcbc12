package domain

// UnknownLocation is the label used whenever reverse geocoding yields nothing.
const UnknownLocation = "unknown location"

// LocationSource records how a ResolvedLocation was obtained.
type LocationSource string

const (
	SourceDevice   LocationSource = "device"
	SourceFallback LocationSource = "fallback"
	SourceSearch   LocationSource = "search"
)

// The point the display is currently centred on.
// Values are replaced wholesale; use WithLabel to derive a labelled copy.
type ResolvedLocation struct {
	Point  GeoPoint       `json:"point"`
	Label  string         `json:"label"`
	Source LocationSource `json:"source"`
}

// WithLabel returns a copy of l carrying label.
func (l ResolvedLocation) WithLabel(label string) ResolvedLocation {
	l.Label = label
	return l
}

// Snapshot of what the display shows: the current location and its ranking.
// Generation identifies the resolution the view belongs to.
type View struct {
	Location   ResolvedLocation
	Ranked     RankedResult
	Generation uint64
}
