package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chama/core"
	"github.com/trezcool/chama/core/event"
)

type eventRow struct {
	ID          string      `db:"id"`
	Title       string      `db:"title"`
	Slug        string      `db:"slug"`
	Description null.String `db:"description"`
	Location    null.String `db:"location"`
	StartsAt    time.Time   `db:"starts_at"`
	EndsAt      null.Time   `db:"ends_at"`
	Published   bool        `db:"published"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

type eventRepository struct {
	db *sqlx.DB
}

var _ event.Repository = (*eventRepository)(nil) // interface compliance check

func NewEventRepository(db *sqlx.DB) *eventRepository {
	return &eventRepository{db: db}
}

func (repo eventRepository) row(evt event.Event) eventRow {
	return eventRow{
		ID:          evt.ID,
		Title:       evt.Title,
		Slug:        evt.Slug,
		Description: null.NewString(evt.Description, evt.Description != ""),
		Location:    null.NewString(evt.Location, evt.Location != ""),
		StartsAt:    evt.StartsAt.UTC(),
		EndsAt:      null.NewTime(evt.EndsAt.UTC(), !evt.EndsAt.IsZero()),
		Published:   evt.Published,
		CreatedAt:   evt.CreatedAt.UTC(),
		UpdatedAt:   evt.UpdatedAt.UTC(),
	}
}

func (repo eventRepository) unrow(row eventRow) event.Event {
	return event.Event{
		ID:          row.ID,
		Title:       row.Title,
		Slug:        row.Slug,
		Description: row.Description.String,
		Location:    row.Location.String,
		StartsAt:    row.StartsAt,
		EndsAt:      row.EndsAt.Time,
		Published:   row.Published,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func (repo eventRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return event.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

// trapUniqueErr maps a unique constraint violation on slug to event.ErrSlugExists
func (repo eventRepository) trapUniqueErr(err error, msg string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return event.ErrSlugExists
	}
	return errors.Wrap(err, msg)
}

func (repo eventRepository) CreateEvent(ctx context.Context, evt event.Event) (event.Event, error) {
	evt.ID = uuid.New().String()
	row := repo.row(evt)
	query := `
		INSERT INTO events (id, title, slug, description, location, starts_at, ends_at, published, created_at, updated_at)
		VALUES (:id, :title, :slug, :description, :location, :starts_at, :ends_at, :published, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, row); err != nil {
		return event.Event{}, repo.trapUniqueErr(err, "inserting event")
	}
	return repo.unrow(row), nil
}

func (repo eventRepository) GetEventByID(ctx context.Context, id string) (event.Event, error) {
	if _, err := uuid.Parse(id); err != nil {
		return event.Event{}, event.ErrNotFound
	}
	var row eventRow
	if err := repo.db.GetContext(ctx, &row, "SELECT * FROM events WHERE id = $1", id); err != nil {
		return event.Event{}, repo.trapNoRowsErr(err, "finding event by ID")
	}
	return repo.unrow(row), nil
}

func (repo eventRepository) GetEventBySlug(ctx context.Context, slug string) (event.Event, error) {
	var row eventRow
	if err := repo.db.GetContext(ctx, &row, "SELECT * FROM events WHERE slug = $1", slug); err != nil {
		return event.Event{}, repo.trapNoRowsErr(err, "finding event by slug")
	}
	return repo.unrow(row), nil
}

func (repo eventRepository) QueryAllEvents(ctx context.Context, ordering []core.DBOrdering) ([]event.Event, error) {
	query := "SELECT * FROM events" + orderBy(ordering, eventColumns)
	var rows []eventRow
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying events")
	}
	events := make([]event.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, repo.unrow(row))
	}
	return events, nil
}

func (repo eventRepository) UpdateEvent(ctx context.Context, evt event.Event) (event.Event, error) {
	row := repo.row(evt)
	query := `
		UPDATE events
		SET title = :title, slug = :slug, description = :description, location = :location,
		    starts_at = :starts_at, ends_at = :ends_at, published = :published, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return event.Event{}, repo.trapUniqueErr(err, "updating event")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return event.Event{}, event.ErrNotFound
	}
	return repo.unrow(row), nil
}

func (repo eventRepository) DeleteEventsByID(ctx context.Context, ids ...string) error {
	query, args, err := sqlx.In("DELETE FROM events WHERE id IN (?)", ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting events")
	}
	return nil
}
