package domain

import "time"

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking carries a denormalized snapshot of the train taken at booking
// time. Later edits to the train must not show through on old tickets.
type Booking struct {
	ID            string        `json:"_id"`
	BookingID     string        `json:"bookingId"`
	TrainID       string        `json:"trainId"`
	TrainNumber   string        `json:"trainNumber"`
	TrainName     string        `json:"trainName"`
	Source        string        `json:"source"`
	Destination   string        `json:"destination"`
	DepartureTime string        `json:"departureTime"`
	PassengerName string        `json:"passengerName"`
	Email         string        `json:"email"`
	Phone         string        `json:"phone"`
	Age           int           `json:"age"`
	Gender        string        `json:"gender"`
	SeatCount     int           `json:"seatCount"`
	TravelDate    string        `json:"travelDate"`
	TotalAmount   int64         `json:"totalAmount"`
	BookingDate   time.Time     `json:"bookingDate"`
	Status        BookingStatus `json:"status"`
}
