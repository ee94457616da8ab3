package repository

import (
	"context"
	"database/sql"
	"errors"

	"eventhub/internal/database"
	"eventhub/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const bookingColumns = `
		b.id, b.user_id, b.event_id, b.booked_at, b.created_at, b.updated_at,
		e.id, e.name, e.event_date, e.venue, e.price, e.images`

const bookingEventJoin = ` LEFT JOIN events e ON e.id = b.event_id`

type BookingRepository struct {
	db *database.DB
}

func NewBookingRepository(db *database.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// nullableEvent receives the LEFT JOINed event columns of a booking row.
type nullableEvent struct {
	ID     uuid.NullUUID
	Name   sql.NullString
	Date   sql.NullTime
	Venue  sql.NullString
	Price  sql.NullFloat64
	Images pq.StringArray
}

func (n *nullableEvent) dest() []any {
	return []any{&n.ID, &n.Name, &n.Date, &n.Venue, &n.Price, &n.Images}
}

func (n *nullableEvent) summary() *models.EventSummary {
	if !n.ID.Valid {
		return nil
	}
	return &models.EventSummary{
		ID:     n.ID.UUID,
		Name:   n.Name.String,
		Date:   n.Date.Time,
		Venue:  n.Venue.String,
		Price:  n.Price.Float64,
		Images: []string(n.Images),
	}
}

func scanBooking(row rowScanner, extra ...any) (*models.Booking, error) {
	var booking models.Booking
	var event nullableEvent

	dest := []any{
		&booking.ID,
		&booking.UserID,
		&booking.EventID,
		&booking.BookedAt,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	}
	dest = append(dest, event.dest()...)
	dest = append(dest, extra...)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	booking.Event = event.summary()
	return &booking, nil
}

// Create records a booking. Uniqueness of (user_id, event_id) is left to the
// bookings_user_event_key constraint; a violation is reported as ErrAlreadyBooked.
func (r *BookingRepository) Create(ctx context.Context, userID, eventID uuid.UUID) (*models.Booking, error) {
	query := `
		WITH inserted AS (
			INSERT INTO bookings (user_id, event_id)
			VALUES ($1, $2)
			RETURNING id, user_id, event_id, booked_at, created_at, updated_at
		)
		SELECT ` + bookingColumns + ` FROM inserted b` + bookingEventJoin

	booking, err := scanBooking(r.db.QueryRowContext(ctx, query, userID, eventID))
	if isUniqueViolation(err) {
		return nil, models.ErrAlreadyBooked
	}
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// DeleteOwned removes a booking only when it belongs to userID. A missing
// booking and someone else's booking are both ErrBookingNotFound.
func (r *BookingRepository) DeleteOwned(ctx context.Context, bookingID, userID uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.QueryRowContext(ctx, `
		DELETE FROM bookings
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, event_id, booked_at, created_at, updated_at`,
		bookingID, userID,
	).Scan(
		&booking.ID,
		&booking.UserID,
		&booking.EventID,
		&booking.BookedAt,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b` + bookingEventJoin + `
		WHERE b.user_id = $1
		ORDER BY b.booked_at DESC, b.id DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := []models.Booking{}
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *booking)
	}
	return bookings, rows.Err()
}

// ListAll returns every booking with user and event summaries, newest first.
func (r *BookingRepository) ListAll(ctx context.Context) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + `, u.id, u.username, u.email
		FROM bookings b` + bookingEventJoin + `
		LEFT JOIN users u ON u.id = b.user_id
		ORDER BY b.booked_at DESC, b.id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := []models.Booking{}
	for rows.Next() {
		var (
			userID   uuid.NullUUID
			username sql.NullString
			email    sql.NullString
		)
		booking, err := scanBooking(rows, &userID, &username, &email)
		if err != nil {
			return nil, err
		}
		if userID.Valid {
			booking.User = &models.UserSummary{ID: userID.UUID, Username: username.String, Email: email.String}
		}
		bookings = append(bookings, *booking)
	}
	return bookings, rows.Err()
}
