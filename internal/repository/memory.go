package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/velren/railbook/internal/domain"
)

// MemoryStore backs the in-memory repositories. Trains and bookings share
// one store so a booking create can reserve seats and insert the record
// under a single critical section, matching the Postgres transaction.
type MemoryStore struct {
	mu       sync.Mutex
	trains   map[string]domain.Train
	bookings map[string]domain.Booking
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		trains:   make(map[string]domain.Train),
		bookings: make(map[string]domain.Booking),
	}
}

type MemoryTrainRepository struct {
	store *MemoryStore
}

func NewMemoryTrainRepository(store *MemoryStore) TrainRepository {
	return &MemoryTrainRepository{store: store}
}

func (r *MemoryTrainRepository) List(ctx context.Context) ([]domain.Train, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.store.sortedTrains(), nil
}

func (r *MemoryTrainRepository) Search(ctx context.Context, source, destination string) ([]domain.Train, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	source = strings.ToLower(source)
	destination = strings.ToLower(destination)

	matched := make([]domain.Train, 0)
	for _, t := range r.store.sortedTrains() {
		if source != "" && !strings.Contains(strings.ToLower(t.Source), source) {
			continue
		}
		if destination != "" && !strings.Contains(strings.ToLower(t.Destination), destination) {
			continue
		}
		matched = append(matched, t)
	}
	return matched, nil
}

func (r *MemoryTrainRepository) GetByID(ctx context.Context, id string) (*domain.Train, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	t, ok := r.store.trains[id]
	if !ok {
		return nil, domain.NotFoundError{Resource: "Train"}
	}
	return &t, nil
}

func (r *MemoryTrainRepository) Create(ctx context.Context, train *domain.Train) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, t := range r.store.trains {
		if t.Number == train.Number {
			return domain.ConflictError{Msg: "Train number already exists"}
		}
	}
	r.store.trains[train.ID] = *train
	return nil
}

func (r *MemoryTrainRepository) Update(ctx context.Context, train *domain.Train) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.trains[train.ID]; !ok {
		return domain.NotFoundError{Resource: "Train"}
	}
	for _, t := range r.store.trains {
		if t.ID != train.ID && t.Number == train.Number {
			return domain.ConflictError{Msg: "Train number already exists"}
		}
	}
	r.store.trains[train.ID] = *train
	return nil
}

func (r *MemoryTrainRepository) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.trains[id]; !ok {
		return domain.NotFoundError{Resource: "Train"}
	}
	delete(r.store.trains, id)
	return nil
}

func (r *MemoryTrainRepository) ReleaseSeats(ctx context.Context, trainID string, count int) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	t, ok := r.store.trains[trainID]
	if !ok {
		return 0, domain.NotFoundError{Resource: "Train"}
	}
	t.AvailableSeats += count
	if t.AvailableSeats > t.TotalSeats {
		t.AvailableSeats = t.TotalSeats
	}
	r.store.trains[trainID] = t
	return t.AvailableSeats, nil
}

func (s *MemoryStore) sortedTrains() []domain.Train {
	trains := make([]domain.Train, 0, len(s.trains))
	for _, t := range s.trains {
		trains = append(trains, t)
	}
	sort.Slice(trains, func(i, j int) bool { return trains[i].Number < trains[j].Number })
	return trains
}

type MemoryBookingRepository struct {
	store *MemoryStore
}

func NewMemoryBookingRepository(store *MemoryStore) BookingRepository {
	return &MemoryBookingRepository{store: store}
}

func (r *MemoryBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	t, ok := r.store.trains[booking.TrainID]
	if !ok {
		return domain.NotFoundError{Resource: "Train"}
	}
	if t.AvailableSeats < booking.SeatCount {
		return domain.CapacityError{Requested: booking.SeatCount, Available: t.AvailableSeats}
	}
	t.AvailableSeats -= booking.SeatCount
	r.store.trains[booking.TrainID] = t

	booking.Status = domain.BookingStatusConfirmed
	r.store.bookings[booking.ID] = *booking
	return nil
}

func (r *MemoryBookingRepository) List(ctx context.Context) ([]domain.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	bookings := make([]domain.Booking, 0, len(r.store.bookings))
	for _, b := range r.store.bookings {
		bookings = append(bookings, b)
	}
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].BookingDate.After(bookings[j].BookingDate) })
	return bookings, nil
}

func (r *MemoryBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	b, ok := r.store.bookings[id]
	if !ok {
		return nil, domain.NotFoundError{Resource: "Booking"}
	}
	return &b, nil
}

func (r *MemoryBookingRepository) FindByRefOrEmail(ctx context.Context, ref, email string) (*domain.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	// Reference match wins over an email match on a different record.
	for _, b := range r.store.bookings {
		if b.BookingID == ref {
			return &b, nil
		}
	}
	for _, b := range r.store.bookings {
		if strings.ToLower(b.Email) == email {
			return &b, nil
		}
	}
	return nil, domain.NotFoundError{Resource: "Booking"}
}

func (r *MemoryBookingRepository) MarkCancelled(ctx context.Context, id string) (*domain.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	b, ok := r.store.bookings[id]
	if !ok {
		return nil, domain.NotFoundError{Resource: "Booking"}
	}
	if b.Status != domain.BookingStatusConfirmed {
		return nil, domain.StateError{Msg: "Booking already cancelled"}
	}
	b.Status = domain.BookingStatusCancelled
	r.store.bookings[id] = b
	return &b, nil
}

var (
	_ TrainRepository   = (*MemoryTrainRepository)(nil)
	_ BookingRepository = (*MemoryBookingRepository)(nil)
)
