package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventhub/internal/database"
	"eventhub/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const eventColumns = `
		e.id, e.name, e.description, e.category_id, COALESCE(c.name, '` + models.UncategorizedName + `'),
		e.event_date, e.venue, e.price, e.images, e.created_at, e.updated_at`

const eventCategoryJoin = ` LEFT JOIN categories c ON c.id = e.category_id`

type EventRepository struct {
	db *database.DB
}

func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*models.Event, error) {
	var event models.Event
	err := row.Scan(
		&event.ID,
		&event.Name,
		&event.Description,
		&event.Category.ID,
		&event.Category.Name,
		&event.Date,
		&event.Venue,
		&event.Price,
		pq.Array(&event.Images),
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if event.Images == nil {
		event.Images = []string{}
	}
	return &event, nil
}

func draftImages(draft *models.EventDraft) []string {
	if draft.Images == nil {
		return []string{}
	}
	return draft.Images
}

func (r *EventRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events e` + eventCategoryJoin + ` WHERE e.id = $1`

	event, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return event, nil
}

// List returns one page of events matching filter and the total match count.
// Both reads share a repeatable-read snapshot so the page and the count agree.
func (r *EventRepository) List(ctx context.Context, filter models.EventFilter, sort models.EventSort, skip, limit int) ([]models.Event, int, error) {
	where, args := buildEventWhere(filter)

	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback()

	var total int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM events e`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	argIndex := len(args) + 1
	query := `SELECT ` + eventColumns + ` FROM events e` + eventCategoryJoin + where +
		orderClause(sort) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, skip)

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("select events: %w", err)
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return events, total, tx.Commit()
}

func buildEventWhere(filter models.EventFilter) (string, []any) {
	where := " WHERE 1=1"
	var args []any
	argIndex := 1

	if filter.CategoryID != nil {
		where += fmt.Sprintf(" AND e.category_id = $%d", argIndex)
		args = append(args, *filter.CategoryID)
		argIndex++
	}

	if filter.Venue != "" {
		where += fmt.Sprintf(` AND e.venue ILIKE $%d ESCAPE '\'`, argIndex)
		args = append(args, "%"+escapeLike(filter.Venue)+"%")
		argIndex++
	}

	if filter.MinPrice != nil {
		where += fmt.Sprintf(" AND e.price >= $%d", argIndex)
		args = append(args, *filter.MinPrice)
		argIndex++
	}

	if filter.MaxPrice != nil {
		where += fmt.Sprintf(" AND e.price <= $%d", argIndex)
		args = append(args, *filter.MaxPrice)
	}

	return where, args
}

// orderClause maps the closed sort set onto columns; e.id breaks ties.
func orderClause(sort models.EventSort) string {
	column := "e.event_date"
	if sort.Field == models.SortByPrice {
		column = "e.price"
	}

	direction := "ASC"
	if sort.Order == models.SortDesc {
		direction = "DESC"
	}

	return " ORDER BY " + column + " " + direction + ", e.id ASC"
}

// Create inserts an event only if its category exists, in a single statement.
func (r *EventRepository) Create(ctx context.Context, draft *models.EventDraft) (*models.Event, error) {
	query := `
		WITH inserted AS (
			INSERT INTO events (name, description, category_id, event_date, venue, price, images)
			SELECT $1::varchar, $2::text, $3::uuid, $4::timestamptz, $5::varchar, $6::numeric, $7::text[]
			WHERE EXISTS (SELECT 1 FROM categories WHERE id = $3::uuid)
			RETURNING *
		)
		SELECT ` + eventColumns + ` FROM inserted e` + eventCategoryJoin

	event, err := scanEvent(r.db.QueryRowContext(ctx, query,
		draft.Name,
		draft.Description,
		draft.CategoryID,
		draft.Date,
		draft.Venue,
		draft.Price,
		pq.Array(draftImages(draft)),
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrUnknownCategory
	}
	if err != nil {
		return nil, err
	}
	return event, nil
}

// Update replaces every mutable field of an event.
func (r *EventRepository) Update(ctx context.Context, id uuid.UUID, draft *models.EventDraft) (*models.Event, error) {
	query := `
		WITH updated AS (
			UPDATE events
			SET name = $2, description = $3, category_id = $4, event_date = $5,
			    venue = $6, price = $7, images = $8, updated_at = NOW()
			WHERE id = $1 AND EXISTS (SELECT 1 FROM categories WHERE id = $4)
			RETURNING *
		)
		SELECT ` + eventColumns + ` FROM updated e` + eventCategoryJoin

	event, err := scanEvent(r.db.QueryRowContext(ctx, query,
		id,
		draft.Name,
		draft.Description,
		draft.CategoryID,
		draft.Date,
		draft.Venue,
		draft.Price,
		pq.Array(draftImages(draft)),
	))
	if err == nil {
		return event, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.ErrEventNotFound
	}
	return nil, models.ErrUnknownCategory
}

// Delete removes an event. Bookings referencing it are left in place.
func (r *EventRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ListAll streams every event in id order; used to rebuild the search index.
func (r *EventRepository) ListAll(ctx context.Context, fn func(*models.Event) error) error {
	rows, err := r.db.QueryContext(ctx, `SELECT `+eventColumns+` FROM events e`+eventCategoryJoin+` ORDER BY e.id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return err
		}
		if err := fn(event); err != nil {
			return err
		}
	}
	return rows.Err()
}
