package smtp

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	netsmtp "net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/kusina-api/internal/config"
	"github.com/kusina-api/internal/pkg/id"
	"gopkg.in/gomail.v2"
)

// Mailer sends HTML emails and returns the Message-ID it assigned.
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, html string) (string, error)
}

// transport moves one composed message to the relay.
type transport interface {
	Send(ctx context.Context, from string, to []string, msg io.WriterTo) error
}

type mailer struct {
	transport transport
	from      string
	fromName  string
}

func NewMailer(cfg *config.Config) Mailer {
	return &mailer{
		transport: &relay{
			host:     cfg.SMTPHost,
			port:     cfg.SMTPPort,
			username: cfg.SMTPUsername,
			password: cfg.SMTPPassword,
		},
		from:     cfg.SMTPFrom,
		fromName: cfg.SMTPFromName,
	}
}

func (m *mailer) SendEmail(ctx context.Context, to, subject, html string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	messageID := newMessageID(m.from)

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, m.fromName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetHeader("Message-ID", messageID)
	msg.SetBody("text/html", html)

	if err := m.transport.Send(ctx, m.from, []string{to}, msg); err != nil {
		return "", fmt.Errorf("send email to %s: %w", to, err)
	}
	return messageID, nil
}

// relay speaks SMTP to the configured host. Every network operation is bound
// to the caller's context: its deadline becomes the connection deadline and
// cancellation aborts a stalled exchange.
type relay struct {
	host     string
	port     int
	username string
	password string
	dialer   net.Dialer
}

func (r *relay) Send(ctx context.Context, from string, to []string, msg io.WriterTo) (err error) {
	addr := net.JoinHostPort(r.host, strconv.Itoa(r.port))
	conn, err := r.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Unix(1, 0)) })
	defer func() {
		stop()
		if ctxErr := ctx.Err(); err != nil && ctxErr != nil {
			err = fmt.Errorf("%w: %v", ctxErr, err)
		}
	}()

	if r.port == 465 {
		conn = tls.Client(conn, &tls.Config{ServerName: r.host})
	}
	c, err := netsmtp.NewClient(conn, r.host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer c.Close()

	if r.port != 465 {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(&tls.Config{ServerName: r.host}); err != nil {
				return err
			}
		}
	}
	if r.username != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(netsmtp.PlainAuth("", r.username, r.password, r.host)); err != nil {
				return err
			}
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := msg.WriteTo(w); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

// newMessageID builds an RFC 5322 Message-ID on the sender's domain.
func newMessageID(from string) string {
	domain := "localhost"
	if at := strings.LastIndex(from, "@"); at >= 0 && at < len(from)-1 {
		domain = from[at+1:]
	}
	return fmt.Sprintf("<%s@%s>", id.New(), domain)
}
