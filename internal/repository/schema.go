package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS trains (
		id TEXT PRIMARY KEY,
		number TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		source TEXT NOT NULL,
		destination TEXT NOT NULL,
		departure_time TEXT NOT NULL,
		total_seats INT NOT NULL CHECK (total_seats >= 1),
		available_seats INT NOT NULL CHECK (available_seats >= 0),
		price BIGINT NOT NULL CHECK (price >= 1),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id TEXT PRIMARY KEY,
		booking_id TEXT NOT NULL UNIQUE,
		train_id TEXT NOT NULL,
		train_number TEXT NOT NULL,
		train_name TEXT NOT NULL,
		source TEXT NOT NULL,
		destination TEXT NOT NULL,
		departure_time TEXT NOT NULL,
		passenger_name TEXT NOT NULL,
		email TEXT NOT NULL,
		phone TEXT NOT NULL,
		age INT NOT NULL,
		gender TEXT NOT NULL,
		seat_count INT NOT NULL CHECK (seat_count >= 1),
		travel_date TEXT NOT NULL,
		total_amount BIGINT NOT NULL,
		booking_date TIMESTAMPTZ NOT NULL,
		status TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_email ON bookings (lower(email))`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_booking_date ON bookings (booking_date DESC)`,
}

// EnsureSchema creates the two record collections if they do not exist.
// There is deliberately no foreign key from bookings to trains: deleting a
// train leaves its bookings behind, and cancellation tolerates the orphan.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
