package event

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/chama/core"
)

// Event is a talk, workshop or social organized by the club.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"starts_at"` // UTC
	EndsAt      time.Time `json:"ends_at"`   // UTC
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// Upcoming reports whether the event has not ended as of `now`.
// Events with no end time are judged by their start time.
func (e Event) Upcoming(now time.Time) bool {
	if !e.EndsAt.IsZero() {
		return e.EndsAt.After(now)
	}
	return e.StartsAt.After(now)
}

// NewEvent contains information needed to create a new Event.
type NewEvent struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	EndsAt      time.Time `json:"ends_at" validate:"omitempty,gtfield=StartsAt"`
	Published   bool      `json:"published"`
}

func (ne *NewEvent) Validate(v *validator.Validate) error {
	ne.Title = core.CleanString(ne.Title)
	ne.Description = core.CleanString(ne.Description)
	ne.Location = core.CleanString(ne.Location)
	return v.Struct(ne)
}

// UpdateEvent defines what information may be provided to modify an existing Event.
type UpdateEvent struct {
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Location    *string   `json:"location"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	Published   *bool     `json:"published"`
}

func (ue *UpdateEvent) Validate(origEvt Event, v *validator.Validate) error {
	title := core.CleanString(ue.Title)
	if title != "" {
		ue.Title = title
	} else {
		ue.Title = origEvt.Title
	}
	if ue.StartsAt.IsZero() {
		ue.StartsAt = origEvt.StartsAt
	}
	if ue.EndsAt.IsZero() {
		ue.EndsAt = origEvt.EndsAt
	}
	return v.Struct(ue)
}

// QueryFilter selects events by time window relative to `now`.
type QueryFilter struct {
	// When is one of "", "upcoming" or "past".
	When          string `query:"when"`
	PublishedOnly bool
}
