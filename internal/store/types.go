package store

import "database/sql"

type Venue struct {
	ID          int64
	Name        string
	Address     string
	City        string
	TaxID       string
	Description string
	Phone       string
	Latitude    float64
	Longitude   float64
	Timezone    string
}

type Court struct {
	ID         int64
	VenueID    int64
	Name       string
	Capacity   int64
	Roofed     bool
	PriceCents int64
	ImageURL   sql.NullString
}

// OperatingHours is one weekly schedule row. Days with no row are closed.
// Hours are whole hours of day; the open range is [OpenHour, CloseHour).
type OperatingHours struct {
	VenueID   int64
	DayOfWeek int
	OpenHour  int
	CloseHour int
}

// Closure is an inclusive date range during which a venue does not operate.
// Dates are "2006-01-02" strings.
type Closure struct {
	ID        int64
	VenueID   int64
	StartDate string
	EndDate   string
	Reason    string
}

type Team struct {
	ID           int64
	Name         string
	CaptainID    int64
	ContactEmail string
	MaxSize      int64
	IsPublic     bool
}

// TeamLink associates a team with a reservation. Exactly one link per
// reservation carries IsCreator; a second link is the rival team.
type TeamLink struct {
	ReservationID int64
	TeamID        int64
	IsCreator     bool
}

// ReservationKind is the conflict-class of a reservation row, derived at the
// store boundary from the presence of team links.
type ReservationKind int

const (
	KindAdminBlock ReservationKind = iota
	KindTeamBooking
)

func (k ReservationKind) String() string {
	if k == KindTeamBooking {
		return "team_booking"
	}
	return "admin_block"
}

// Reservation holds one or more hour slots on one court and date. Hours are
// integers 0-23 kept sorted ascending. Cancelled rows keep their hours for
// history but no longer count toward occupancy.
type Reservation struct {
	ID       int64
	CourtID  int64
	VenueID  int64
	Date     string
	IsActive bool
	Hours    []int
	Teams    []TeamLink
}

func (r *Reservation) Kind() ReservationKind {
	if len(r.Teams) > 0 {
		return KindTeamBooking
	}
	return KindAdminBlock
}

// CreatorTeamID returns the booking team's ID, or 0 for an admin block.
func (r *Reservation) CreatorTeamID() int64 {
	for _, link := range r.Teams {
		if link.IsCreator {
			return link.TeamID
		}
	}
	return 0
}

// HourSet returns the reservation's hours as a membership set.
func (r *Reservation) HourSet() map[int]struct{} {
	set := make(map[int]struct{}, len(r.Hours))
	for _, hour := range r.Hours {
		set[hour] = struct{}{}
	}
	return set
}
