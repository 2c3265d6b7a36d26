package event

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/chama/core"
)

type fakeRepo struct {
	events []Event
	err    error
}

var _ Repository = (*fakeRepo)(nil)

func (r *fakeRepo) CreateEvent(ctx context.Context, evt Event) (Event, error) {
	if r.err != nil {
		return Event{}, r.err
	}
	for _, e := range r.events {
		if e.Slug == evt.Slug {
			return Event{}, ErrSlugExists
		}
	}
	evt.ID = "new"
	r.events = append(r.events, evt)
	return evt, nil
}

func (r *fakeRepo) GetEventByID(ctx context.Context, id string) (Event, error) {
	for _, e := range r.events {
		if e.ID == id {
			return e, nil
		}
	}
	return Event{}, ErrNotFound
}

func (r *fakeRepo) GetEventBySlug(ctx context.Context, slug string) (Event, error) {
	for _, e := range r.events {
		if e.Slug == slug {
			return e, nil
		}
	}
	return Event{}, ErrNotFound
}

func (r *fakeRepo) QueryAllEvents(ctx context.Context, ordering []core.DBOrdering) ([]Event, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.events, nil
}

func (r *fakeRepo) UpdateEvent(ctx context.Context, evt Event) (Event, error) {
	for i, e := range r.events {
		if e.ID == evt.ID {
			r.events[i] = evt
			return evt, nil
		}
	}
	return Event{}, ErrNotFound
}

func (r *fakeRepo) DeleteEventsByID(ctx context.Context, ids ...string) error { return nil }

func TestServiceQuery(t *testing.T) {
	now := time.Date(2021, time.June, 15, 12, 0, 0, 0, time.UTC)

	past := Event{ID: "past", Title: "AGM", Slug: "agm", StartsAt: now.Add(-48 * time.Hour), Published: true}
	running := Event{ID: "running", Title: "Hackathon", Slug: "hackathon", StartsAt: now.Add(-2 * time.Hour), EndsAt: now.Add(2 * time.Hour), Published: true}
	upcoming := Event{ID: "upcoming", Title: "Picnic", Slug: "picnic", StartsAt: now.Add(24 * time.Hour), Published: true}
	draft := Event{ID: "draft", Title: "Retreat", Slug: "retreat", StartsAt: now.Add(48 * time.Hour), Published: false}

	svc := NewService(&fakeRepo{events: []Event{past, running, upcoming, draft}})
	svc.nowFunc = func() time.Time { return now }

	tests := []struct {
		name    string
		filter  *QueryFilter
		wantIDs []string
	}{
		{name: "no filter", filter: nil, wantIDs: []string{"past", "running", "upcoming", "draft"}},
		{name: "upcoming", filter: &QueryFilter{When: WhenUpcoming}, wantIDs: []string{"running", "upcoming", "draft"}},
		{name: "upcoming published", filter: &QueryFilter{When: WhenUpcoming, PublishedOnly: true}, wantIDs: []string{"running", "upcoming"}},
		{name: "past", filter: &QueryFilter{When: WhenPast}, wantIDs: []string{"past"}},
		{name: "published only", filter: &QueryFilter{PublishedOnly: true}, wantIDs: []string{"past", "running", "upcoming"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := svc.Query(context.Background(), tt.filter, nil)
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if len(events) != len(tt.wantIDs) {
				t.Fatalf("Query() returned %d events, want %d", len(events), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if events[i].ID != id {
					t.Errorf("events[%d].ID = %q, want %q", i, events[i].ID, id)
				}
			}
		})
	}
}

func TestServiceCreate(t *testing.T) {
	now := time.Date(2021, time.June, 15, 12, 0, 0, 0, time.UTC)
	svc := NewService(&fakeRepo{})
	svc.nowFunc = func() time.Time { return now }

	evt, err := svc.Create(context.Background(), NewEvent{
		Title:    "Welcome Braai!",
		StartsAt: now.Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if evt.Slug != "welcome-braai" {
		t.Errorf("Slug = %q, want %q", evt.Slug, "welcome-braai")
	}
	if !evt.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", evt.CreatedAt, now)
	}

	// duplicate title surfaces as a field error
	_, err = svc.Create(context.Background(), NewEvent{
		Title:    "Welcome Braai!",
		StartsAt: now.Add(24 * time.Hour),
	})
	var vErr *core.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Create() error = %v, want a validation error", err)
	}
}

func TestServiceUpdate(t *testing.T) {
	now := time.Date(2021, time.June, 15, 12, 0, 0, 0, time.UTC)
	orig := Event{
		ID:        "e1",
		Title:     "AGM",
		Slug:      "agm",
		Location:  "Main Hall",
		StartsAt:  now.Add(24 * time.Hour),
		Published: true,
	}
	svc := NewService(&fakeRepo{events: []Event{orig}})
	svc.nowFunc = func() time.Time { return now }

	published := false
	evt, err := svc.Update(context.Background(), "e1", UpdateEvent{
		Title:     "Annual General Meeting",
		StartsAt:  now.Add(48 * time.Hour),
		Published: &published,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if evt.Slug != "annual-general-meeting" {
		t.Errorf("Slug = %q, want %q", evt.Slug, "annual-general-meeting")
	}
	if evt.Location != "Main Hall" {
		t.Errorf("Location = %q, want it unchanged", evt.Location)
	}
	if evt.Published {
		t.Error("Published = true, want false")
	}

	if _, err = svc.Update(context.Background(), "nope", UpdateEvent{Title: "X", StartsAt: now}); err != ErrNotFound {
		t.Errorf("Update() error = %v, want %v", err, ErrNotFound)
	}
}
