package post

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/chama/core"
)

// Post is a blog/news entry on the public site.
type Post struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Body        string    `json:"body"`
	AuthorID    string    `json:"author_id"`
	PublishedAt time.Time `json:"published_at"` // UTC; zero = draft
	CreatedAt   time.Time `json:"created_at"`   // UTC
	UpdatedAt   time.Time `json:"updated_at"`   // UTC
}

func (p Post) Published() bool { return !p.PublishedAt.IsZero() }

// NewPost contains information needed to create a new Post.
type NewPost struct {
	Title   string `json:"title" validate:"required"`
	Body    string `json:"body" validate:"required"`
	Publish bool   `json:"publish"`
}

func (np *NewPost) Validate(v *validator.Validate) error {
	np.Title = core.CleanString(np.Title)
	return v.Struct(np)
}

// UpdatePost defines what information may be provided to modify an existing Post.
type UpdatePost struct {
	Title   string  `json:"title"`
	Body    *string `json:"body"`
	Publish *bool   `json:"publish"`
}

func (up *UpdatePost) Validate(origPost Post, v *validator.Validate) error {
	title := core.CleanString(up.Title)
	if title != "" {
		up.Title = title
	} else {
		up.Title = origPost.Title
	}
	return v.Struct(up)
}
