package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/velren/railbook/internal/domain"
)

type TrainRepository interface {
	List(ctx context.Context) ([]domain.Train, error)
	Search(ctx context.Context, source, destination string) ([]domain.Train, error)
	GetByID(ctx context.Context, id string) (*domain.Train, error)
	Create(ctx context.Context, train *domain.Train) error
	Update(ctx context.Context, train *domain.Train) error
	Delete(ctx context.Context, id string) error
	// ReleaseSeats returns count seats to the train and reports the new
	// available total. NotFound when the train no longer exists.
	ReleaseSeats(ctx context.Context, trainID string, count int) (int, error)
}

type PGTrainRepository struct {
	db *pgxpool.Pool
}

func NewTrainRepository(db *pgxpool.Pool) TrainRepository {
	return &PGTrainRepository{db: db}
}

const trainColumns = `id, number, name, source, destination, departure_time, total_seats, available_seats, price, created_at, updated_at`

func scanTrain(row pgx.Row, t *domain.Train) error {
	return row.Scan(&t.ID, &t.Number, &t.Name, &t.Source, &t.Destination, &t.DepartureTime, &t.TotalSeats, &t.AvailableSeats, &t.Price, &t.CreatedAt, &t.UpdatedAt)
}

func (r *PGTrainRepository) List(ctx context.Context) ([]domain.Train, error) {
	rows, err := r.db.Query(ctx, `SELECT `+trainColumns+` FROM trains ORDER BY number`)
	if err != nil {
		return nil, domain.UnavailableError{Err: err}
	}
	defer rows.Close()
	return collectTrains(rows)
}

func (r *PGTrainRepository) Search(ctx context.Context, source, destination string) ([]domain.Train, error) {
	rows, err := r.db.Query(ctx, `SELECT `+trainColumns+` FROM trains
		WHERE ($1 = '' OR source ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR destination ILIKE '%' || $2 || '%')
		ORDER BY number`, source, destination)
	if err != nil {
		return nil, domain.UnavailableError{Err: err}
	}
	defer rows.Close()
	return collectTrains(rows)
}

func collectTrains(rows pgx.Rows) ([]domain.Train, error) {
	trains := make([]domain.Train, 0)
	for rows.Next() {
		var t domain.Train
		if err := scanTrain(rows, &t); err != nil {
			return nil, err
		}
		trains = append(trains, t)
	}
	return trains, rows.Err()
}

func (r *PGTrainRepository) GetByID(ctx context.Context, id string) (*domain.Train, error) {
	row := r.db.QueryRow(ctx, `SELECT `+trainColumns+` FROM trains WHERE id=$1`, id)
	var t domain.Train
	if err := scanTrain(row, &t); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFoundError{Resource: "Train"}
		}
		return nil, domain.UnavailableError{Err: err}
	}
	return &t, nil
}

func (r *PGTrainRepository) Create(ctx context.Context, train *domain.Train) error {
	err := r.db.QueryRow(ctx, `INSERT INTO trains (id, number, name, source, destination, departure_time, total_seats, available_seats, price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
		RETURNING created_at, updated_at`,
		train.ID, train.Number, train.Name, train.Source, train.Destination, train.DepartureTime, train.TotalSeats, train.AvailableSeats, train.Price).
		Scan(&train.CreatedAt, &train.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ConflictError{Msg: "Train number already exists", Err: err}
		}
		return domain.UnavailableError{Err: err}
	}
	return nil
}

func (r *PGTrainRepository) Update(ctx context.Context, train *domain.Train) error {
	err := r.db.QueryRow(ctx, `UPDATE trains SET number=$2, name=$3, source=$4, destination=$5, departure_time=$6, total_seats=$7, available_seats=$8, price=$9, updated_at=now()
		WHERE id=$1 RETURNING updated_at`,
		train.ID, train.Number, train.Name, train.Source, train.Destination, train.DepartureTime, train.TotalSeats, train.AvailableSeats, train.Price).
		Scan(&train.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.NotFoundError{Resource: "Train"}
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ConflictError{Msg: "Train number already exists", Err: err}
		}
		return domain.UnavailableError{Err: err}
	}
	return nil
}

func (r *PGTrainRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM trains WHERE id=$1`, id)
	if err != nil {
		return domain.UnavailableError{Err: err}
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFoundError{Resource: "Train"}
	}
	return nil
}

// ReleaseSeats returns seats to the train's counter, clamped so the counter
// never exceeds total_seats even if the total shrank since the booking.
func (r *PGTrainRepository) ReleaseSeats(ctx context.Context, trainID string, count int) (int, error) {
	var available int
	err := r.db.QueryRow(ctx, `UPDATE trains SET available_seats = LEAST(available_seats + $2, total_seats), updated_at = now() WHERE id=$1 RETURNING available_seats`, trainID, count).Scan(&available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.NotFoundError{Resource: "Train"}
		}
		return 0, domain.UnavailableError{Err: err}
	}
	return available, nil
}

var _ TrainRepository = (*PGTrainRepository)(nil)
