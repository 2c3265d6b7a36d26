package contact_test

import (
	"context"
	"net/mail"
	"strings"
	"testing"

	"github.com/trezcool/chama/core"
	"github.com/trezcool/chama/core/contact"
	emailsvc "github.com/trezcool/chama/services/email"
	inmemdb "github.com/trezcool/chama/storage/database/inmem"
)

func newTestService(t *testing.T) contact.ServiceInterface {
	t.Helper()
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("opening in-memory db: %v", err)
	}
	conf := &core.Config{
		TestMode:         true,
		AppName:          "Chama",
		DefaultFromEmail: mail.Address{Name: "Chama", Address: "noreply@test.cd"},
		ContactEmail:     mail.Address{Name: "Chama", Address: "contact@test.cd"},
	}
	return contact.NewService(inmemdb.NewContactRepository(db), emailsvc.NewConsoleServiceMock(conf), conf)
}

func TestServiceSubmit(t *testing.T) {
	emailsvc.ClearSentMessages()
	svc := newTestService(t)
	ctx := context.Background()

	msg, err := svc.Submit(ctx, contact.NewMessage{
		Name:    "T",
		Email:   "t@test.cd",
		Subject: "Membership",
		Body:    "How do I join?",
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if msg.ID == "" {
		t.Error("message not assigned an ID")
	}

	// stored
	msgs, err := svc.Query(ctx, nil)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("Query() returned %d messages, want 1", len(msgs))
	}

	// forwarded to the org inbox
	if len(emailsvc.SentMessages) != 1 {
		t.Fatalf("sent %d emails, want 1", len(emailsvc.SentMessages))
	}
	sent := emailsvc.SentMessages[0]
	if len(sent.To) != 1 || sent.To[0].Address != "contact@test.cd" {
		t.Errorf("To = %+v, want the org contact inbox", sent.To)
	}
	if sent.Subject != "Contact: Membership" {
		t.Errorf("Subject = %q", sent.Subject)
	}
	if !strings.Contains(sent.TextContent, "How do I join?") {
		t.Errorf("body = %q, missing message body", sent.TextContent)
	}
}

func TestServiceDelete(t *testing.T) {
	emailsvc.ClearSentMessages()
	svc := newTestService(t)
	ctx := context.Background()

	msg, err := svc.Submit(ctx, contact.NewMessage{Name: "T", Email: "t@test.cd", Subject: "Hi", Body: "hello"})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if err = svc.Delete(ctx, msg.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	msgs, err := svc.Query(ctx, nil)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("Query() returned %d messages after delete, want 0", len(msgs))
	}
}
