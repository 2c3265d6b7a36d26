package event

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/chama/core"
)

// RecipientSource lists the addresses the digest goes to.
type RecipientSource interface {
	Recipients(ctx context.Context) ([]mail.Address, error)
}

// Digest emails members a summary of upcoming published events.
// It is wired to a cron schedule by the API app.
type Digest struct {
	events ServiceInterface
	recips RecipientSource
	mail   core.EmailService
	logger core.Logger
}

func NewDigest(events ServiceInterface, recips RecipientSource, mailSvc core.EmailService, logger core.Logger) *Digest {
	return &Digest{events: events, recips: recips, mail: mailSvc, logger: logger}
}

// Run builds and sends the digest. It is a no-op when there are no upcoming
// events or no recipients; errors are logged, not returned, since cron has
// no caller to report to.
func (d *Digest) Run() {
	ctx := context.Background()

	events, err := d.events.Query(
		ctx,
		&QueryFilter{When: WhenUpcoming, PublishedOnly: true},
		[]core.DBOrdering{{Field: "starts_at", Ascending: true}},
	)
	if err != nil {
		d.logger.Error(fmt.Sprintf("querying upcoming events: %v", err), errors.Wrap(err, "querying upcoming events"))
		return
	}
	if len(events) == 0 {
		return
	}

	recips, err := d.recips.Recipients(ctx)
	if err != nil {
		d.logger.Error(fmt.Sprintf("listing digest recipients: %v", err), errors.Wrap(err, "listing digest recipients"))
		return
	}
	if len(recips) == 0 {
		return
	}

	d.mail.SendMessages(&core.EmailMessage{
		Bcc:     recips,
		Subject: "Upcoming Events",
		BodyStr: formatDigest(events),
	})
	d.logger.Info(fmt.Sprintf("events digest sent: %d events, %d recipients", len(events), len(recips)))
}

func formatDigest(events []Event) string {
	var b strings.Builder
	b.WriteString("Here is what is coming up:\r\n\r\n")
	for _, evt := range events {
		fmt.Fprintf(&b, "- %s on %s", evt.Title, evt.StartsAt.Format(time.RFC1123))
		if evt.Location != "" {
			fmt.Fprintf(&b, " @ %s", evt.Location)
		}
		b.WriteString("\r\n")
	}
	return b.String()
}
