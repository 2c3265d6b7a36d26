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
	"github.com/trezcool/chama/core/post"
)

type postRow struct {
	ID          string      `db:"id"`
	Title       string      `db:"title"`
	Slug        string      `db:"slug"`
	Body        string      `db:"body"`
	AuthorID    null.String `db:"author_id"`
	PublishedAt null.Time   `db:"published_at"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

type postRepository struct {
	db *sqlx.DB
}

var _ post.Repository = (*postRepository)(nil) // interface compliance check

func NewPostRepository(db *sqlx.DB) *postRepository {
	return &postRepository{db: db}
}

func (repo postRepository) row(pst post.Post) postRow {
	return postRow{
		ID:          pst.ID,
		Title:       pst.Title,
		Slug:        pst.Slug,
		Body:        pst.Body,
		AuthorID:    null.NewString(pst.AuthorID, pst.AuthorID != ""),
		PublishedAt: null.NewTime(pst.PublishedAt.UTC(), !pst.PublishedAt.IsZero()),
		CreatedAt:   pst.CreatedAt.UTC(),
		UpdatedAt:   pst.UpdatedAt.UTC(),
	}
}

func (repo postRepository) unrow(row postRow) post.Post {
	return post.Post{
		ID:          row.ID,
		Title:       row.Title,
		Slug:        row.Slug,
		Body:        row.Body,
		AuthorID:    row.AuthorID.String,
		PublishedAt: row.PublishedAt.Time,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func (repo postRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return post.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo postRepository) trapUniqueErr(err error, msg string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return post.ErrSlugExists
	}
	return errors.Wrap(err, msg)
}

func (repo postRepository) CreatePost(ctx context.Context, pst post.Post) (post.Post, error) {
	pst.ID = uuid.New().String()
	row := repo.row(pst)
	query := `
		INSERT INTO posts (id, title, slug, body, author_id, published_at, created_at, updated_at)
		VALUES (:id, :title, :slug, :body, :author_id, :published_at, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, row); err != nil {
		return post.Post{}, repo.trapUniqueErr(err, "inserting post")
	}
	return repo.unrow(row), nil
}

func (repo postRepository) GetPostByID(ctx context.Context, id string) (post.Post, error) {
	if _, err := uuid.Parse(id); err != nil {
		return post.Post{}, post.ErrNotFound
	}
	var row postRow
	if err := repo.db.GetContext(ctx, &row, "SELECT * FROM posts WHERE id = $1", id); err != nil {
		return post.Post{}, repo.trapNoRowsErr(err, "finding post by ID")
	}
	return repo.unrow(row), nil
}

func (repo postRepository) GetPostBySlug(ctx context.Context, slug string) (post.Post, error) {
	var row postRow
	if err := repo.db.GetContext(ctx, &row, "SELECT * FROM posts WHERE slug = $1", slug); err != nil {
		return post.Post{}, repo.trapNoRowsErr(err, "finding post by slug")
	}
	return repo.unrow(row), nil
}

func (repo postRepository) QueryPosts(ctx context.Context, publishedOnly bool, ordering []core.DBOrdering) ([]post.Post, error) {
	query := "SELECT * FROM posts"
	if publishedOnly {
		query += " WHERE published_at IS NOT NULL"
	}
	query += orderBy(ordering, postColumns)

	var rows []postRow
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying posts")
	}
	posts := make([]post.Post, 0, len(rows))
	for _, row := range rows {
		posts = append(posts, repo.unrow(row))
	}
	return posts, nil
}

func (repo postRepository) UpdatePost(ctx context.Context, pst post.Post) (post.Post, error) {
	row := repo.row(pst)
	query := `
		UPDATE posts
		SET title = :title, slug = :slug, body = :body, published_at = :published_at, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return post.Post{}, repo.trapUniqueErr(err, "updating post")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return post.Post{}, post.ErrNotFound
	}
	return repo.unrow(row), nil
}

func (repo postRepository) DeletePostsByID(ctx context.Context, ids ...string) error {
	query, args, err := sqlx.In("DELETE FROM posts WHERE id IN (?)", ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting posts")
	}
	return nil
}
