package domain

import "time"

type Train struct {
	ID             string    `json:"_id"`
	Number         string    `json:"number"`
	Name           string    `json:"name"`
	Source         string    `json:"source"`
	Destination    string    `json:"destination"`
	DepartureTime  string    `json:"departureTime"`
	TotalSeats     int       `json:"totalSeats"`
	AvailableSeats int       `json:"availableSeats"`
	Price          int64     `json:"price"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ClampAvailable enforces the save-time rule that availableSeats never
// exceeds totalSeats. Excess is clamped, not rejected.
func (t *Train) ClampAvailable() {
	if t.AvailableSeats > t.TotalSeats {
		t.AvailableSeats = t.TotalSeats
	}
}
