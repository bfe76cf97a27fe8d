package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/velren/railbook/internal/domain"
)

type BookingRepository interface {
	// Create reserves booking.SeatCount seats on the referenced train and
	// inserts the booking as one atomic unit. Concurrent creates against the
	// same train can never oversell the counter.
	Create(ctx context.Context, booking *domain.Booking) error
	List(ctx context.Context) ([]domain.Booking, error)
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	FindByRefOrEmail(ctx context.Context, ref, email string) (*domain.Booking, error)
	// MarkCancelled flips status confirmed -> cancelled. Exactly one caller
	// wins; the rest see StateError.
	MarkCancelled(ctx context.Context, id string) (*domain.Booking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, booking_id, train_id, train_number, train_name, source, destination, departure_time, passenger_name, email, phone, age, gender, seat_count, travel_date, total_amount, booking_date, status`

func scanBooking(row pgx.Row, b *domain.Booking) error {
	return row.Scan(&b.ID, &b.BookingID, &b.TrainID, &b.TrainNumber, &b.TrainName, &b.Source, &b.Destination, &b.DepartureTime,
		&b.PassengerName, &b.Email, &b.Phone, &b.Age, &b.Gender, &b.SeatCount, &b.TravelDate, &b.TotalAmount, &b.BookingDate, &b.Status)
}

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.UnavailableError{Err: err}
	}
	defer tx.Rollback(ctx)

	var available int
	err = tx.QueryRow(ctx, `UPDATE trains SET available_seats = available_seats - $2, updated_at = now()
		WHERE id=$1 AND available_seats >= $2 RETURNING available_seats`, booking.TrainID, booking.SeatCount).Scan(&available)
	if errors.Is(err, pgx.ErrNoRows) {
		// Decrement refused: either the train is gone or the seats are.
		probeErr := tx.QueryRow(ctx, `SELECT available_seats FROM trains WHERE id=$1`, booking.TrainID).Scan(&available)
		if errors.Is(probeErr, pgx.ErrNoRows) {
			return domain.NotFoundError{Resource: "Train"}
		}
		if probeErr != nil {
			return domain.UnavailableError{Err: probeErr}
		}
		return domain.CapacityError{Requested: booking.SeatCount, Available: available}
	}
	if err != nil {
		return domain.UnavailableError{Err: err}
	}

	booking.Status = domain.BookingStatusConfirmed
	if _, err := tx.Exec(ctx, `INSERT INTO bookings (`+bookingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		booking.ID, booking.BookingID, booking.TrainID, booking.TrainNumber, booking.TrainName, booking.Source, booking.Destination, booking.DepartureTime,
		booking.PassengerName, booking.Email, booking.Phone, booking.Age, booking.Gender, booking.SeatCount, booking.TravelDate, booking.TotalAmount, booking.BookingDate, booking.Status); err != nil {
		return domain.UnavailableError{Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.UnavailableError{Err: err}
	}
	return nil
}

func (r *PGBookingRepository) List(ctx context.Context) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY booking_date DESC`)
	if err != nil {
		return nil, domain.UnavailableError{Err: err}
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		var b domain.Booking
		if err := scanBooking(rows, &b); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
	var b domain.Booking
	if err := scanBooking(row, &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFoundError{Resource: "Booking"}
		}
		return nil, domain.UnavailableError{Err: err}
	}
	return &b, nil
}

// FindByRefOrEmail matches the booking reference exactly or the email
// case-insensitively, preferring the reference match when both hit.
func (r *PGBookingRepository) FindByRefOrEmail(ctx context.Context, ref, email string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings
		WHERE booking_id = $1 OR lower(email) = $2
		ORDER BY (booking_id = $1) DESC, booking_date DESC
		LIMIT 1`, ref, email)
	var b domain.Booking
	if err := scanBooking(row, &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFoundError{Resource: "Booking"}
		}
		return nil, domain.UnavailableError{Err: err}
	}
	return &b, nil
}

func (r *PGBookingRepository) MarkCancelled(ctx context.Context, id string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings SET status=$2 WHERE id=$1 AND status=$3 RETURNING `+bookingColumns,
		id, domain.BookingStatusCancelled, domain.BookingStatusConfirmed)
	var b domain.Booking
	err := scanBooking(row, &b)
	if errors.Is(err, pgx.ErrNoRows) {
		// Lost the flip: absent or already cancelled.
		var status domain.BookingStatus
		probeErr := r.db.QueryRow(ctx, `SELECT status FROM bookings WHERE id=$1`, id).Scan(&status)
		if errors.Is(probeErr, pgx.ErrNoRows) {
			return nil, domain.NotFoundError{Resource: "Booking"}
		}
		if probeErr != nil {
			return nil, domain.UnavailableError{Err: probeErr}
		}
		return nil, domain.StateError{Msg: "Booking already cancelled"}
	}
	if err != nil {
		return nil, domain.UnavailableError{Err: err}
	}
	return &b, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
