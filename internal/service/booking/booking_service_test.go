package booking

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/velren/railbook/internal/domain"
)

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) List(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) FindByRefOrEmail(ctx context.Context, ref, email string) (*domain.Booking, error) {
	args := m.Called(ctx, ref, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) MarkCancelled(ctx context.Context, id string) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

type MockTrainRepository struct {
	mock.Mock
}

func (m *MockTrainRepository) List(ctx context.Context) ([]domain.Train, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Train), args.Error(1)
}

func (m *MockTrainRepository) Search(ctx context.Context, source, destination string) ([]domain.Train, error) {
	args := m.Called(ctx, source, destination)
	return args.Get(0).([]domain.Train), args.Error(1)
}

func (m *MockTrainRepository) GetByID(ctx context.Context, id string) (*domain.Train, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Train), args.Error(1)
}

func (m *MockTrainRepository) Create(ctx context.Context, train *domain.Train) error {
	args := m.Called(ctx, train)
	return args.Error(0)
}

func (m *MockTrainRepository) Update(ctx context.Context, train *domain.Train) error {
	args := m.Called(ctx, train)
	return args.Error(0)
}

func (m *MockTrainRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTrainRepository) ReleaseSeats(ctx context.Context, trainID string, count int) (int, error) {
	args := m.Called(ctx, trainID, count)
	return args.Int(0), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) InvalidateTrains(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

func sampleTrain() *domain.Train {
	return &domain.Train{
		ID:             "t1",
		Number:         "12951",
		Name:           "Rajdhani Express",
		Source:         "Mumbai Central",
		Destination:    "New Delhi",
		DepartureTime:  "17:00",
		TotalSeats:     10,
		AvailableSeats: 10,
		Price:          100,
	}
}

func sampleInput() CreateBookingInput {
	return CreateBookingInput{
		TrainID:       "t1",
		PassengerName: "Asha Rao",
		Email:         "asha@example.com",
		Phone:         "9999999999",
		Age:           30,
		Gender:        "female",
		SeatCount:     3,
		TravelDate:    "2026-09-15",
	}
}

func TestBookingService_CreateBooking_Success(t *testing.T) {
	mockBookings := &MockBookingRepository{}
	mockTrains := &MockTrainRepository{}
	mockCache := &MockCache{}
	mockProducer := &MockProducer{}

	fixed := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	service := NewBookingService(mockBookings, mockTrains, mockCache, mockProducer, "booking-events",
		WithNotificationsTopic("booking-notifications"),
		WithClock(func() time.Time { return fixed }),
	)

	ctx := context.Background()

	mockTrains.On("GetByID", ctx, "t1").Return(sampleTrain(), nil).Once()
	mockBookings.On("Create", ctx, mock.AnythingOfType("*domain.Booking")).Return(nil).Once()
	mockCache.On("InvalidateTrains", ctx).Return(nil).Once()
	mockProducer.On("Publish", ctx, "booking-events", mock.Anything, mock.Anything).Return(nil).Once()
	mockProducer.On("Publish", ctx, "booking-notifications", mock.Anything, mock.Anything).Return(nil).Once()

	created, err := service.CreateBooking(ctx, sampleInput())

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, domain.BookingStatusConfirmed, created.Status)
	assert.Equal(t, int64(300), created.TotalAmount)
	assert.Equal(t, fixed, created.BookingDate)
	assert.True(t, strings.HasPrefix(created.BookingID, "BLW"))
	// Snapshot fields come from the train, not the input.
	assert.Equal(t, "12951", created.TrainNumber)
	assert.Equal(t, "Rajdhani Express", created.TrainName)
	assert.Equal(t, "Mumbai Central", created.Source)
	assert.Equal(t, "New Delhi", created.Destination)
	assert.Equal(t, "17:00", created.DepartureTime)

	mockTrains.AssertExpectations(t)
	mockBookings.AssertExpectations(t)
	mockCache.AssertExpectations(t)
	mockProducer.AssertExpectations(t)
}

func TestBookingService_CreateBooking_ValidationErrors(t *testing.T) {
	service := NewBookingService(&MockBookingRepository{}, &MockTrainRepository{}, nil, nil, "")
	ctx := context.Background()

	testCases := []struct {
		name   string
		mutate func(*CreateBookingInput)
	}{
		{"missing train id", func(in *CreateBookingInput) { in.TrainID = "" }},
		{"missing passenger name", func(in *CreateBookingInput) { in.PassengerName = "" }},
		{"missing email", func(in *CreateBookingInput) { in.Email = "" }},
		{"zero seats", func(in *CreateBookingInput) { in.SeatCount = 0 }},
		{"negative seats", func(in *CreateBookingInput) { in.SeatCount = -2 }},
		{"missing travel date", func(in *CreateBookingInput) { in.TravelDate = "" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			input := sampleInput()
			tc.mutate(&input)
			created, err := service.CreateBooking(ctx, input)
			assert.Nil(t, created)
			assert.True(t, domain.IsValidation(err))
		})
	}
}

func TestBookingService_CreateBooking_TrainNotFound(t *testing.T) {
	mockBookings := &MockBookingRepository{}
	mockTrains := &MockTrainRepository{}
	service := NewBookingService(mockBookings, mockTrains, nil, nil, "")
	ctx := context.Background()

	mockTrains.On("GetByID", ctx, "t1").Return(nil, domain.NotFoundError{Resource: "Train"}).Once()

	created, err := service.CreateBooking(ctx, sampleInput())
	assert.Nil(t, created)
	assert.True(t, domain.IsNotFound(err))
	assert.EqualError(t, err, "Train not found")
	mockTrains.AssertExpectations(t)
}

func TestBookingService_CreateBooking_NotEnoughSeats(t *testing.T) {
	mockBookings := &MockBookingRepository{}
	mockTrains := &MockTrainRepository{}
	service := NewBookingService(mockBookings, mockTrains, nil, nil, "")
	ctx := context.Background()

	train := sampleTrain()
	train.AvailableSeats = 2
	mockTrains.On("GetByID", ctx, "t1").Return(train, nil).Once()

	created, err := service.CreateBooking(ctx, sampleInput())
	assert.Nil(t, created)
	assert.True(t, domain.IsCapacity(err))
	assert.EqualError(t, err, "Not enough seats available")
	mockBookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// The repository is the authority on capacity; a raced-away seat surfaces
// as CapacityError even after the early check passed.
func TestBookingService_CreateBooking_RepositoryLosesRace(t *testing.T) {
	mockBookings := &MockBookingRepository{}
	mockTrains := &MockTrainRepository{}
	service := NewBookingService(mockBookings, mockTrains, nil, nil, "")
	ctx := context.Background()

	mockTrains.On("GetByID", ctx, "t1").Return(sampleTrain(), nil).Once()
	mockBookings.On("Create", ctx, mock.AnythingOfType("*domain.Booking")).
		Return(domain.CapacityError{Requested: 3, Available: 1}).Once()

	created, err := service.CreateBooking(ctx, sampleInput())
	assert.Nil(t, created)
	assert.True(t, domain.IsCapacity(err))
	mockBookings.AssertExpectations(t)
}

func TestBookingService_CancelBooking_Success(t *testing.T) {
	mockBookings := &MockBookingRepository{}
	mockTrains := &MockTrainRepository{}
	mockCache := &MockCache{}
	service := NewBookingService(mockBookings, mockTrains, mockCache, nil, "")
	ctx := context.Background()

	cancelled := &domain.Booking{
		ID:        "b1",
		BookingID: "BLW1748000000000AB1CD",
		TrainID:   "t1",
		SeatCount: 5,
		Status:    domain.BookingStatusCancelled,
	}
	mockBookings.On("MarkCancelled", ctx, "b1").Return(cancelled, nil).Once()
	mockTrains.On("ReleaseSeats", ctx, "t1", 5).Return(7, nil).Once()
	mockCache.On("InvalidateTrains", ctx).Return(nil).Once()

	result, err := service.CancelBooking(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, result.Booking.Status)
	assert.True(t, result.SeatsRestored)
	assert.Equal(t, 7, result.AvailableSeats)

	mockBookings.AssertExpectations(t)
	mockTrains.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestBookingService_CancelBooking_AlreadyCancelled(t *testing.T) {
	mockBookings := &MockBookingRepository{}
	mockTrains := &MockTrainRepository{}
	service := NewBookingService(mockBookings, mockTrains, nil, nil, "")
	ctx := context.Background()

	mockBookings.On("MarkCancelled", ctx, "b1").Return(nil, domain.StateError{Msg: "Booking already cancelled"}).Once()

	result, err := service.CancelBooking(ctx, "b1")
	assert.Nil(t, result)
	assert.True(t, domain.IsState(err))
	assert.EqualError(t, err, "Booking already cancelled")
	mockTrains.AssertNotCalled(t, "ReleaseSeats", mock.Anything, mock.Anything, mock.Anything)
}

// Cancelling a booking whose train was deleted still succeeds; the seats
// are simply not restored anywhere.
func TestBookingService_CancelBooking_TrainGone(t *testing.T) {
	mockBookings := &MockBookingRepository{}
	mockTrains := &MockTrainRepository{}
	service := NewBookingService(mockBookings, mockTrains, nil, nil, "")
	ctx := context.Background()

	cancelled := &domain.Booking{ID: "b1", BookingID: "BLW1748000000000AB1CD", TrainID: "t1", SeatCount: 2, Status: domain.BookingStatusCancelled}
	mockBookings.On("MarkCancelled", ctx, "b1").Return(cancelled, nil).Once()
	mockTrains.On("ReleaseSeats", ctx, "t1", 2).Return(0, domain.NotFoundError{Resource: "Train"}).Once()

	result, err := service.CancelBooking(ctx, "b1")
	require.NoError(t, err)
	assert.False(t, result.SeatsRestored)
	assert.Equal(t, domain.BookingStatusCancelled, result.Booking.Status)
}

func TestBookingService_SearchBooking_EmptyTerm(t *testing.T) {
	service := NewBookingService(&MockBookingRepository{}, &MockTrainRepository{}, nil, nil, "")

	found, err := service.SearchBooking(context.Background(), "")
	assert.Nil(t, found)
	assert.True(t, domain.IsValidation(err))
	assert.EqualError(t, err, "Search term is required")
}

func TestBookingService_SearchBooking_LowercasesEmailOnly(t *testing.T) {
	mockBookings := &MockBookingRepository{}
	service := NewBookingService(mockBookings, &MockTrainRepository{}, nil, nil, "")
	ctx := context.Background()

	want := &domain.Booking{ID: "b1", BookingID: "BLW1748000000000AB1CD"}
	// The reference keeps its case, the email comparand is lower-cased.
	mockBookings.On("FindByRefOrEmail", ctx, "Asha@Example.COM", "asha@example.com").Return(want, nil).Once()

	found, err := service.SearchBooking(ctx, "Asha@Example.COM")
	assert.NoError(t, err)
	assert.Equal(t, want, found)
	mockBookings.AssertExpectations(t)
}

func TestBookingService_ListBookings(t *testing.T) {
	mockBookings := &MockBookingRepository{}
	service := NewBookingService(mockBookings, &MockTrainRepository{}, nil, nil, "")
	ctx := context.Background()

	bookings := []domain.Booking{{ID: "b2"}, {ID: "b1"}}
	mockBookings.On("List", ctx).Return(bookings, nil).Once()

	result, err := service.ListBookings(ctx)
	assert.NoError(t, err)
	assert.Equal(t, bookings, result)
}
