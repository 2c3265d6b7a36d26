package event

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/chama/core"
)

var (
	// errors
	ErrNotFound   = errors.New("event not found")
	ErrSlugExists = errors.New("an event with this slug already exists")
)

const (
	WhenUpcoming = "upcoming"
	WhenPast     = "past"
)

type (
	Repository interface {
		CreateEvent(ctx context.Context, evt Event) (Event, error)
		GetEventByID(ctx context.Context, id string) (Event, error)
		GetEventBySlug(ctx context.Context, slug string) (Event, error)
		QueryAllEvents(ctx context.Context, ordering []core.DBOrdering) ([]Event, error)
		UpdateEvent(ctx context.Context, evt Event) (Event, error)
		DeleteEventsByID(ctx context.Context, ids ...string) error
	}

	ServiceInterface interface {
		Create(ctx context.Context, ne NewEvent) (Event, error)
		GetByID(ctx context.Context, id string) (Event, error)
		GetBySlug(ctx context.Context, slug string) (Event, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Event, error)
		Update(ctx context.Context, id string, ue UpdateEvent) (Event, error)
		Delete(ctx context.Context, ids ...string) error
	}

	Service struct {
		repo Repository

		nowFunc func() time.Time // mockable
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo, nowFunc: time.Now}
}

func (svc *Service) Create(ctx context.Context, ne NewEvent) (Event, error) {
	now := svc.nowFunc().UTC()
	evt := Event{
		Title:       ne.Title,
		Slug:        core.Slugify(ne.Title),
		Description: ne.Description,
		Location:    ne.Location,
		StartsAt:    ne.StartsAt.UTC(),
		EndsAt:      ne.EndsAt.UTC(),
		Published:   ne.Published,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if ne.EndsAt.IsZero() {
		evt.EndsAt = time.Time{}
	}

	created, err := svc.repo.CreateEvent(ctx, evt)
	if err != nil {
		if errors.Cause(err) == ErrSlugExists {
			return Event{}, core.NewValidationError(err, core.FieldError{Field: "title", Error: err.Error()})
		}
		return Event{}, err
	}
	return created, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Event, error) {
	return svc.repo.GetEventByID(ctx, id)
}

func (svc *Service) GetBySlug(ctx context.Context, slug string) (Event, error) {
	return svc.repo.GetEventBySlug(ctx, core.CleanString(slug, true /* lower */))
}

// Query returns events, optionally narrowed to the upcoming or past window
// relative to now. The split is computed here rather than in SQL so that
// every storage backend agrees on what "upcoming" means.
func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Event, error) {
	events, err := svc.repo.QueryAllEvents(ctx, ordering)
	if err != nil {
		return nil, err
	}
	if filter == nil {
		return events, nil
	}

	now := svc.nowFunc().UTC()
	filtered := make([]Event, 0, len(events))
	for _, evt := range events {
		if filter.PublishedOnly && !evt.Published {
			continue
		}
		switch filter.When {
		case WhenUpcoming:
			if !evt.Upcoming(now) {
				continue
			}
		case WhenPast:
			if evt.Upcoming(now) {
				continue
			}
		}
		filtered = append(filtered, evt)
	}
	return filtered, nil
}

func (svc *Service) Update(ctx context.Context, id string, ue UpdateEvent) (Event, error) {
	evt, err := svc.repo.GetEventByID(ctx, id)
	if err != nil {
		return Event{}, err
	}

	if ue.Title != evt.Title {
		evt.Title = ue.Title
		evt.Slug = core.Slugify(ue.Title)
	}
	if ue.Description != nil {
		evt.Description = *ue.Description
	}
	if ue.Location != nil {
		evt.Location = *ue.Location
	}
	evt.StartsAt = ue.StartsAt.UTC()
	if !ue.EndsAt.IsZero() {
		evt.EndsAt = ue.EndsAt.UTC()
	}
	if ue.Published != nil {
		evt.Published = *ue.Published
	}
	evt.UpdatedAt = svc.nowFunc().UTC()

	return svc.repo.UpdateEvent(ctx, evt)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteEventsByID(ctx, ids...)
}
