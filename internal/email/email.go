package email

import (
	"context"
	"log"

	"github.com/velren/railbook/internal/kafka"
)

// Sender delivers booking notifications. The transport is a log line for
// now; the worker owns the only call site, so swapping in SMTP later stays
// local to this package.
type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	switch event.Type {
	case kafka.EventBookingCancelled:
		log.Printf("email to %s: booking %s cancelled, %d seat(s) released", event.Email, event.BookingRef, event.SeatCount)
	default:
		log.Printf("email to %s: booking %s confirmed on train %s, %d seat(s), amount %d", event.Email, event.BookingRef, event.TrainNumber, event.SeatCount, event.TotalAmount)
	}
	return nil
}
