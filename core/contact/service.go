package contact

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/chama/core"
)

var ErrNotFound = errors.New("message not found")

type (
	Repository interface {
		CreateMessage(ctx context.Context, msg Message) (Message, error)
		QueryAllMessages(ctx context.Context, ordering []core.DBOrdering) ([]Message, error)
		DeleteMessagesByID(ctx context.Context, ids ...string) error
	}

	ServiceInterface interface {
		Submit(ctx context.Context, nm NewMessage) (Message, error)
		Query(ctx context.Context, ordering []core.DBOrdering) ([]Message, error)
		Delete(ctx context.Context, ids ...string) error
	}

	Service struct {
		repo Repository
		mail core.EmailService
		conf *core.Config
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{repo: repo, mail: mailSvc, conf: conf}
}

// Submit stores the message and forwards it to the org inbox. Email delivery
// is fire-and-forget; the submission succeeds once the message is persisted.
func (svc *Service) Submit(ctx context.Context, nm NewMessage) (Message, error) {
	msg := Message{
		Name:      nm.Name,
		Email:     nm.Email,
		Subject:   nm.Subject,
		Body:      nm.Body,
		CreatedAt: time.Now().UTC(),
	}
	msg, err := svc.repo.CreateMessage(ctx, msg)
	if err != nil {
		return Message{}, errors.Wrap(err, "storing contact message")
	}

	svc.mail.SendMessages(&core.EmailMessage{
		To:      []mail.Address{svc.conf.ContactEmail},
		Subject: fmt.Sprintf("Contact: %s", msg.Subject),
		BodyStr: fmt.Sprintf("From: %s <%s>\r\n\r\n%s", msg.Name, msg.Email, msg.Body),
	})
	return msg, nil
}

func (svc *Service) Query(ctx context.Context, ordering []core.DBOrdering) ([]Message, error) {
	return svc.repo.QueryAllMessages(ctx, ordering)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteMessagesByID(ctx, ids...)
}
