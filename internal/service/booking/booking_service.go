package booking

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/velren/railbook/internal/domain"
	"github.com/velren/railbook/internal/kafka"
	"github.com/velren/railbook/internal/repository"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	CancelBooking(ctx context.Context, id string) (*CancelResult, error)
	SearchBooking(ctx context.Context, term string) (*domain.Booking, error)
	ListBookings(ctx context.Context) ([]domain.Booking, error)
}

type Cache interface {
	InvalidateTrains(ctx context.Context) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings           repository.BookingRepository
	trains             repository.TrainRepository
	cache              Cache
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	now                func() time.Time
}

type CreateBookingInput struct {
	TrainID       string `json:"trainId"`
	PassengerName string `json:"passengerName"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Age           int    `json:"age"`
	Gender        string `json:"gender"`
	SeatCount     int    `json:"seatCount"`
	TravelDate    string `json:"travelDate"`
}

// CancelResult reports the cancelled booking and, when the train still
// exists, its availability after the seats came back.
type CancelResult struct {
	Booking        *domain.Booking
	SeatsRestored  bool
	AvailableSeats int
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

// WithClock overrides the booking-date clock, for tests.
func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	trains repository.TrainRepository,
	cache Cache,
	producer Producer,
	bookingTopic string,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:     bookings,
		trains:       trains,
		cache:        cache,
		producer:     producer,
		bookingTopic: bookingTopic,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	train, err := s.trains.GetByID(ctx, input.TrainID)
	if err != nil {
		return nil, err
	}
	if train.AvailableSeats < input.SeatCount {
		return nil, domain.CapacityError{Requested: input.SeatCount, Available: train.AvailableSeats}
	}

	// Fare and route are copied off the train so the ticket survives later
	// catalog edits unchanged.
	booking := &domain.Booking{
		ID:            uuid.NewString(),
		BookingID:     newBookingRef(),
		TrainID:       train.ID,
		TrainNumber:   train.Number,
		TrainName:     train.Name,
		Source:        train.Source,
		Destination:   train.Destination,
		DepartureTime: train.DepartureTime,
		PassengerName: input.PassengerName,
		Email:         input.Email,
		Phone:         input.Phone,
		Age:           input.Age,
		Gender:        input.Gender,
		SeatCount:     input.SeatCount,
		TravelDate:    input.TravelDate,
		TotalAmount:   train.Price * int64(input.SeatCount),
		BookingDate:   s.now(),
		Status:        domain.BookingStatusConfirmed,
	}

	// The repository re-checks capacity inside its own transaction; the read
	// above only produces the friendlier early failure.
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.invalidateTrains(ctx)
	s.publish(ctx, kafka.EventBookingCreated, booking)
	return booking, nil
}

func (s *BookingService) CancelBooking(ctx context.Context, id string) (*CancelResult, error) {
	booking, err := s.bookings.MarkCancelled(ctx, id)
	if err != nil {
		return nil, err
	}

	result := &CancelResult{Booking: booking}
	available, err := s.trains.ReleaseSeats(ctx, booking.TrainID, booking.SeatCount)
	switch {
	case err == nil:
		result.SeatsRestored = true
		result.AvailableSeats = available
		s.invalidateTrains(ctx)
	case domain.IsNotFound(err):
		// Train was deleted after booking; the cancellation stands, the
		// seats just have nowhere to go.
		log.Printf("cancel %s: train %s gone, seats not restored", booking.BookingID, booking.TrainID)
	default:
		log.Printf("cancel %s: release seats on train %s: %v", booking.BookingID, booking.TrainID, err)
	}

	s.publish(ctx, kafka.EventBookingCancelled, booking)
	return result, nil
}

func (s *BookingService) SearchBooking(ctx context.Context, term string) (*domain.Booking, error) {
	if term == "" {
		return nil, domain.ValidationError{Msg: "Search term is required"}
	}
	return s.bookings.FindByRefOrEmail(ctx, term, strings.ToLower(term))
}

func (s *BookingService) ListBookings(ctx context.Context) ([]domain.Booking, error) {
	return s.bookings.List(ctx)
}

func validateCreate(input CreateBookingInput) error {
	switch {
	case input.TrainID == "":
		return domain.ValidationError{Field: "trainId", Msg: "is required"}
	case input.PassengerName == "":
		return domain.ValidationError{Field: "passengerName", Msg: "is required"}
	case input.Email == "":
		return domain.ValidationError{Field: "email", Msg: "is required"}
	case input.SeatCount < 1:
		return domain.ValidationError{Field: "seatCount", Msg: "must be at least 1"}
	case input.TravelDate == "":
		return domain.ValidationError{Field: "travelDate", Msg: "is required"}
	}
	return nil
}

func (s *BookingService) invalidateTrains(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.InvalidateTrains(ctx)
	}
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:        eventType,
		BookingRef:  booking.BookingID,
		TrainID:     booking.TrainID,
		TrainNumber: booking.TrainNumber,
		Email:       booking.Email,
		SeatCount:   booking.SeatCount,
		TotalAmount: booking.TotalAmount,
		Status:      string(booking.Status),
		BookingDate: booking.BookingDate,
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, booking.BookingID, event); err != nil {
		log.Printf("publish %s for booking %s: %v", eventType, booking.BookingID, err)
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, booking.BookingID, event); err != nil {
			log.Printf("publish notification for booking %s: %v", booking.BookingID, err)
		}
	}
}

var _ BookingUseCase = (*BookingService)(nil)
