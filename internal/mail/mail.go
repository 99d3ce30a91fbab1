package mail

import (
	"fmt"
	"log"

	"github.com/dajohi/goemail"
	"github.com/sotex-app/mantencion-api/internal/config"
)

// Mailer sends rendered HTML messages to a recipient list. Delivery is
// best effort; callers must never roll back a committed business
// mutation because Send failed.
type Mailer interface {
	// IsEnabled reports whether outbound mail is configured.
	IsEnabled() bool

	// Send delivers an HTML body to every recipient address.
	Send(subject, htmlBody string, recipients []string) error
}

// client is the goemail-backed SMTP implementation of Mailer.
type client struct {
	smtp        *goemail.SMTP
	mailName    string
	mailAddress string
	copyAddress string
	disabled    bool
}

// New returns a Mailer. Mail is considered disabled when no SMTP URL
// is configured; the returned client then drops messages after
// logging them, which keeps the auth and notification flows usable in
// development.
func New(cfg *config.Config) (Mailer, error) {
	if cfg.SMTPURL == "" {
		log.Println("Mail: DISABLED")
		return &client{disabled: true}, nil
	}

	smtp, err := goemail.NewSMTP(cfg.SMTPURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize smtp client: %w", err)
	}

	return &client{
		smtp:        smtp,
		mailName:    cfg.MailName,
		mailAddress: cfg.MailAddress,
		copyAddress: cfg.MailCopyAddress,
	}, nil
}

func (c *client) IsEnabled() bool {
	return !c.disabled
}

func (c *client) Send(subject, htmlBody string, recipients []string) error {
	if len(recipients) == 0 {
		return nil
	}
	if c.disabled {
		log.Printf("Mail disabled, dropping %q to %v", subject, recipients)
		return nil
	}

	msg := goemail.NewHTMLMessage(c.mailAddress, subject, htmlBody)
	msg.SetName(c.mailName)
	for _, v := range recipients {
		msg.AddBCC(v)
	}
	if c.copyAddress != "" {
		msg.AddBCC(c.copyAddress)
	}

	return c.smtp.Send(msg)
}
