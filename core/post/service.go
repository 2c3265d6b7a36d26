package post

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/chama/core"
)

var (
	// errors
	ErrNotFound   = errors.New("post not found")
	ErrSlugExists = errors.New("a post with this slug already exists")
)

type (
	Repository interface {
		CreatePost(ctx context.Context, pst Post) (Post, error)
		GetPostByID(ctx context.Context, id string) (Post, error)
		GetPostBySlug(ctx context.Context, slug string) (Post, error)
		// QueryPosts returns all posts; publishedOnly narrows to published ones.
		QueryPosts(ctx context.Context, publishedOnly bool, ordering []core.DBOrdering) ([]Post, error)
		UpdatePost(ctx context.Context, pst Post) (Post, error)
		DeletePostsByID(ctx context.Context, ids ...string) error
	}

	ServiceInterface interface {
		Create(ctx context.Context, authorID string, np NewPost) (Post, error)
		GetByID(ctx context.Context, id string) (Post, error)
		GetBySlug(ctx context.Context, slug string) (Post, error)
		Query(ctx context.Context, publishedOnly bool, ordering []core.DBOrdering) ([]Post, error)
		Update(ctx context.Context, id string, up UpdatePost) (Post, error)
		Delete(ctx context.Context, ids ...string) error
	}

	Service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, authorID string, np NewPost) (Post, error) {
	now := time.Now().UTC()
	pst := Post{
		Title:     np.Title,
		Slug:      core.Slugify(np.Title),
		Body:      np.Body,
		AuthorID:  authorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if np.Publish {
		pst.PublishedAt = now
	}

	created, err := svc.repo.CreatePost(ctx, pst)
	if err != nil {
		if errors.Cause(err) == ErrSlugExists {
			return Post{}, core.NewValidationError(err, core.FieldError{Field: "title", Error: err.Error()})
		}
		return Post{}, err
	}
	return created, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Post, error) {
	return svc.repo.GetPostByID(ctx, id)
}

func (svc *Service) GetBySlug(ctx context.Context, slug string) (Post, error) {
	return svc.repo.GetPostBySlug(ctx, core.CleanString(slug, true /* lower */))
}

func (svc *Service) Query(ctx context.Context, publishedOnly bool, ordering []core.DBOrdering) ([]Post, error) {
	return svc.repo.QueryPosts(ctx, publishedOnly, ordering)
}

func (svc *Service) Update(ctx context.Context, id string, up UpdatePost) (Post, error) {
	pst, err := svc.repo.GetPostByID(ctx, id)
	if err != nil {
		return Post{}, err
	}

	if up.Title != pst.Title {
		pst.Title = up.Title
		pst.Slug = core.Slugify(up.Title)
	}
	if up.Body != nil {
		pst.Body = *up.Body
	}
	now := time.Now().UTC()
	if up.Publish != nil {
		if *up.Publish && !pst.Published() {
			pst.PublishedAt = now
		} else if !*up.Publish {
			pst.PublishedAt = time.Time{}
		}
	}
	pst.UpdatedAt = now

	return svc.repo.UpdatePost(ctx, pst)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeletePostsByID(ctx, ids...)
}
