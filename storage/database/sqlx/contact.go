package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/chama/core"
	"github.com/trezcool/chama/core/contact"
)

type contactRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Subject   string    `db:"subject"`
	Body      string    `db:"body"`
	CreatedAt time.Time `db:"created_at"`
}

type contactRepository struct {
	db *sqlx.DB
}

var _ contact.Repository = (*contactRepository)(nil) // interface compliance check

func NewContactRepository(db *sqlx.DB) *contactRepository {
	return &contactRepository{db: db}
}

func (repo contactRepository) unrow(row contactRow) contact.Message {
	return contact.Message{
		ID:        row.ID,
		Name:      row.Name,
		Email:     row.Email,
		Subject:   row.Subject,
		Body:      row.Body,
		CreatedAt: row.CreatedAt,
	}
}

func (repo contactRepository) CreateMessage(ctx context.Context, msg contact.Message) (contact.Message, error) {
	msg.ID = uuid.New().String()
	row := contactRow{
		ID:        msg.ID,
		Name:      msg.Name,
		Email:     msg.Email,
		Subject:   msg.Subject,
		Body:      msg.Body,
		CreatedAt: msg.CreatedAt.UTC(),
	}
	query := `
		INSERT INTO contact_messages (id, name, email, subject, body, created_at)
		VALUES (:id, :name, :email, :subject, :body, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, row); err != nil {
		return contact.Message{}, errors.Wrap(err, "inserting contact message")
	}
	return repo.unrow(row), nil
}

func (repo contactRepository) QueryAllMessages(ctx context.Context, ordering []core.DBOrdering) ([]contact.Message, error) {
	query := "SELECT * FROM contact_messages" + orderBy(ordering, contactColumns)
	var rows []contactRow
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying contact messages")
	}
	msgs := make([]contact.Message, 0, len(rows))
	for _, row := range rows {
		msgs = append(msgs, repo.unrow(row))
	}
	return msgs, nil
}

func (repo contactRepository) DeleteMessagesByID(ctx context.Context, ids ...string) error {
	query, args, err := sqlx.In("DELETE FROM contact_messages WHERE id IN (?)", ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting contact messages")
	}
	return nil
}
