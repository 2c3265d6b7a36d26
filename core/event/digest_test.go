package event

import (
	"context"
	"net/mail"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/chama/core"
)

type fakeRecipients struct {
	addrs []mail.Address
	err   error
}

func (r fakeRecipients) Recipients(ctx context.Context) ([]mail.Address, error) {
	return r.addrs, r.err
}

type fakeMailer struct {
	sent []*core.EmailMessage
}

func (m *fakeMailer) SendMessages(messages ...*core.EmailMessage) {
	m.sent = append(m.sent, messages...)
}

func TestDigestRun(t *testing.T) {
	now := time.Date(2021, time.June, 15, 12, 0, 0, 0, time.UTC)
	upcoming := Event{
		ID: "e1", Title: "Picnic", Slug: "picnic", Location: "Botanic Gardens",
		StartsAt: now.Add(24 * time.Hour), Published: true,
	}
	past := Event{
		ID: "e2", Title: "AGM", Slug: "agm",
		StartsAt: now.Add(-24 * time.Hour), Published: true,
	}
	draft := Event{
		ID: "e3", Title: "Retreat", Slug: "retreat",
		StartsAt: now.Add(48 * time.Hour), Published: false,
	}
	addrs := []mail.Address{{Name: "T", Address: "t@test.cd"}, {Name: "U", Address: "u@test.cd"}}

	newSvc := func(events ...Event) *Service {
		svc := NewService(&fakeRepo{events: events})
		svc.nowFunc = func() time.Time { return now }
		return svc
	}

	t.Run("sends to all members", func(t *testing.T) {
		mailer := &fakeMailer{}
		d := NewDigest(newSvc(past, upcoming, draft), fakeRecipients{addrs: addrs}, mailer, core.NewNopLogger())
		d.Run()

		if len(mailer.sent) != 1 {
			t.Fatalf("sent %d messages, want 1", len(mailer.sent))
		}
		msg := mailer.sent[0]
		if len(msg.Bcc) != 2 {
			t.Errorf("Bcc has %d addresses, want 2", len(msg.Bcc))
		}
		if msg.Subject != "Upcoming Events" {
			t.Errorf("Subject = %q", msg.Subject)
		}
		if !strings.Contains(msg.BodyStr, "Picnic") || !strings.Contains(msg.BodyStr, "Botanic Gardens") {
			t.Errorf("body missing upcoming event:\n%s", msg.BodyStr)
		}
		if strings.Contains(msg.BodyStr, "AGM") || strings.Contains(msg.BodyStr, "Retreat") {
			t.Errorf("body includes past or unpublished events:\n%s", msg.BodyStr)
		}
	})

	t.Run("no upcoming events", func(t *testing.T) {
		mailer := &fakeMailer{}
		d := NewDigest(newSvc(past), fakeRecipients{addrs: addrs}, mailer, core.NewNopLogger())
		d.Run()
		if len(mailer.sent) != 0 {
			t.Errorf("sent %d messages, want 0", len(mailer.sent))
		}
	})

	t.Run("no recipients", func(t *testing.T) {
		mailer := &fakeMailer{}
		d := NewDigest(newSvc(upcoming), fakeRecipients{}, mailer, core.NewNopLogger())
		d.Run()
		if len(mailer.sent) != 0 {
			t.Errorf("sent %d messages, want 0", len(mailer.sent))
		}
	})

	t.Run("recipient lookup failure", func(t *testing.T) {
		mailer := &fakeMailer{}
		d := NewDigest(newSvc(upcoming), fakeRecipients{err: errors.New("boom")}, mailer, core.NewNopLogger())
		d.Run()
		if len(mailer.sent) != 0 {
			t.Errorf("sent %d messages, want 0", len(mailer.sent))
		}
	})
}
