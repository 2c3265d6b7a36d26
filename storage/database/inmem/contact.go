package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/chama/core"
	"github.com/trezcool/chama/core/contact"
)

type contactRepository struct {
	db *contactTable
}

var _ contact.Repository = (*contactRepository)(nil) // interface compliance check

func NewContactRepository(db *DB) contact.Repository {
	return &contactRepository{db: db.contact}
}

func (repo *contactRepository) CreateMessage(ctx context.Context, msg contact.Message) (contact.Message, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	msg.ID = uuid.New().String()
	repo.db.table[msg.ID] = &msg
	return msg, nil
}

func (repo *contactRepository) QueryAllMessages(ctx context.Context, ordering []core.DBOrdering) ([]contact.Message, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	msgs := make([]contact.Message, 0, len(repo.db.table))
	for _, m := range repo.db.table {
		msgs = append(msgs, *m)
	}
	// newest first
	sort.Slice(msgs, func(i, j int) bool {
		if msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].ID < msgs[j].ID
		}
		return msgs[i].CreatedAt.After(msgs[j].CreatedAt)
	})
	return msgs, nil
}

func (repo *contactRepository) DeleteMessagesByID(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
