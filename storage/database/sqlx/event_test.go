package sqlxrepos

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/chama/core"
	"github.com/trezcool/chama/core/event"
)

var eventTestColumns = []string{"id", "title", "slug", "description", "location", "starts_at", "ends_at", "published", "created_at", "updated_at"}

func TestEventRepositoryCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	evt := event.Event{
		Title:     "AGM",
		Slug:      "agm",
		StartsAt:  now.Add(24 * time.Hour),
		Published: true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	t.Run("created", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO events`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		created, err := repo.CreateEvent(ctx, evt)
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "agm", created.Slug)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate slug", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO events`).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "events_slug_key"})

		_, err := repo.CreateEvent(ctx, evt)
		assert.Equal(t, event.ErrSlugExists, errors.Cause(err))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepositoryGetBySlug(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows(eventTestColumns).
			AddRow("e1", "AGM", "agm", "annual meeting", "Main Hall", now, nil, true, now, now)
		mock.ExpectQuery(`SELECT \* FROM events WHERE slug = \$1`).
			WithArgs("agm").
			WillReturnRows(rows)

		evt, err := repo.GetEventBySlug(ctx, "agm")
		require.NoError(t, err)
		assert.Equal(t, "AGM", evt.Title)
		assert.Equal(t, "Main Hall", evt.Location)
		assert.True(t, evt.EndsAt.IsZero())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT \* FROM events WHERE slug = \$1`).
			WithArgs("nope").
			WillReturnRows(sqlmock.NewRows(eventTestColumns))

		_, err := repo.GetEventBySlug(ctx, "nope")
		assert.Equal(t, event.ErrNotFound, errors.Cause(err))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepositoryQueryAllOrdering(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	rows := sqlmock.NewRows(eventTestColumns).
		AddRow("e1", "AGM", "agm", nil, nil, now, nil, true, now, now).
		AddRow("e2", "Picnic", "picnic", nil, nil, now.Add(time.Hour), nil, false, now, now)
	mock.ExpectQuery(`SELECT \* FROM events ORDER BY starts_at ASC`).
		WillReturnRows(rows)

	events, err := repo.QueryAllEvents(ctx, []core.DBOrdering{{Field: "starts_at", Ascending: true}})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "e1", events[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())

	// unknown ordering columns are dropped rather than interpolated
	mock.ExpectQuery(`SELECT \* FROM events`).
		WillReturnRows(sqlmock.NewRows(eventTestColumns))
	_, err = repo.QueryAllEvents(ctx, []core.DBOrdering{{Field: "drop table", Ascending: true}})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryUpdate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)
	ctx := context.Background()

	evt := event.Event{ID: "e1", Title: "AGM", Slug: "agm", StartsAt: time.Now().UTC()}

	t.Run("updated", func(t *testing.T) {
		mock.ExpectExec(`UPDATE events`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		got, err := repo.UpdateEvent(ctx, evt)
		require.NoError(t, err)
		assert.Equal(t, "e1", got.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no rows affected", func(t *testing.T) {
		mock.ExpectExec(`UPDATE events`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		_, err := repo.UpdateEvent(ctx, evt)
		assert.Equal(t, event.ErrNotFound, errors.Cause(err))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
