package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/chama/core"
	"github.com/trezcool/chama/core/event"
)

type eventRepository struct {
	db *eventTable
}

var _ event.Repository = (*eventRepository)(nil) // interface compliance check

func NewEventRepository(db *DB) event.Repository {
	return &eventRepository{db: db.event}
}

func (repo *eventRepository) query() []event.Event {
	events := make([]event.Event, 0, len(repo.db.table))
	for _, e := range repo.db.table {
		events = append(events, *e)
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].StartsAt.Equal(events[j].StartsAt) {
			return events[i].ID < events[j].ID
		}
		return events[i].StartsAt.Before(events[j].StartsAt)
	})
	return events
}

func (repo *eventRepository) CreateEvent(ctx context.Context, evt event.Event) (event.Event, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, e := range repo.db.table {
		if e.Slug == evt.Slug {
			return event.Event{}, event.ErrSlugExists
		}
	}
	evt.ID = uuid.New().String()
	repo.db.table[evt.ID] = &evt
	return evt, nil
}

func (repo *eventRepository) GetEventByID(ctx context.Context, id string) (event.Event, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if evt, ok := repo.db.table[id]; ok {
		return *evt, nil
	}
	return event.Event{}, event.ErrNotFound
}

func (repo *eventRepository) GetEventBySlug(ctx context.Context, slug string) (event.Event, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, evt := range repo.query() {
		if evt.Slug == slug {
			return evt, nil
		}
	}
	return event.Event{}, event.ErrNotFound
}

func (repo *eventRepository) QueryAllEvents(ctx context.Context, ordering []core.DBOrdering) ([]event.Event, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *eventRepository) UpdateEvent(ctx context.Context, evt event.Event) (event.Event, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[evt.ID]; !ok {
		return event.Event{}, event.ErrNotFound
	}
	for _, e := range repo.db.table {
		if e.ID != evt.ID && e.Slug == evt.Slug {
			return event.Event{}, event.ErrSlugExists
		}
	}
	repo.db.table[evt.ID] = &evt
	return evt, nil
}

func (repo *eventRepository) DeleteEventsByID(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
