package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/chama/core"
	"github.com/trezcool/chama/core/post"
)

type postRepository struct {
	db *postTable
}

var _ post.Repository = (*postRepository)(nil) // interface compliance check

func NewPostRepository(db *DB) post.Repository {
	return &postRepository{db: db.post}
}

func (repo *postRepository) query() []post.Post {
	posts := make([]post.Post, 0, len(repo.db.table))
	for _, p := range repo.db.table {
		posts = append(posts, *p)
	}
	// newest first
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].ID < posts[j].ID
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts
}

func (repo *postRepository) CreatePost(ctx context.Context, pst post.Post) (post.Post, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, p := range repo.db.table {
		if p.Slug == pst.Slug {
			return post.Post{}, post.ErrSlugExists
		}
	}
	pst.ID = uuid.New().String()
	repo.db.table[pst.ID] = &pst
	return pst, nil
}

func (repo *postRepository) GetPostByID(ctx context.Context, id string) (post.Post, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if pst, ok := repo.db.table[id]; ok {
		return *pst, nil
	}
	return post.Post{}, post.ErrNotFound
}

func (repo *postRepository) GetPostBySlug(ctx context.Context, slug string) (post.Post, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, pst := range repo.query() {
		if pst.Slug == slug {
			return pst, nil
		}
	}
	return post.Post{}, post.ErrNotFound
}

func (repo *postRepository) QueryPosts(ctx context.Context, publishedOnly bool, ordering []core.DBOrdering) ([]post.Post, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	posts := repo.query()
	if publishedOnly {
		var filtered []post.Post
		for _, p := range posts {
			if p.Published() {
				filtered = append(filtered, p)
			}
		}
		posts = filtered
	}
	return posts, nil
}

func (repo *postRepository) UpdatePost(ctx context.Context, pst post.Post) (post.Post, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[pst.ID]; !ok {
		return post.Post{}, post.ErrNotFound
	}
	for _, p := range repo.db.table {
		if p.ID != pst.ID && p.Slug == pst.Slug {
			return post.Post{}, post.ErrSlugExists
		}
	}
	repo.db.table[pst.ID] = &pst
	return pst, nil
}

func (repo *postRepository) DeletePostsByID(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
