package delivery

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/festy23/jira_digest/internal/config"
	"github.com/festy23/jira_digest/internal/render"
)

// MailChannel is the name of the mail channel.
const MailChannel = "mail"

// implicitTLSPort is the SMTPS port. Every other port upgrades with STARTTLS.
const implicitTLSPort = 465

// SendFunc transmits a complete RFC 5322 message.
type SendFunc func(ctx context.Context, cfg config.MailConfig, from string, to []string, msg []byte) error

// Mail sends the digest as a multipart text and HTML message.
type Mail struct {
	cfg    config.MailConfig
	send   SendFunc
	now    func() time.Time
	logger *zap.SugaredLogger
}

// NewMail creates a mail channel that talks SMTP.
func NewMail(cfg config.MailConfig, logger *zap.SugaredLogger) *Mail {
	return &Mail{
		cfg:    cfg,
		send:   sendSMTP,
		now:    time.Now,
		logger: logger,
	}
}

// Name returns the channel name.
func (m *Mail) Name() string { return MailChannel }

// Send mails the digest once to every recipient.
func (m *Mail) Send(ctx context.Context, bundle render.Bundle) error {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	from := m.cfg.Sender()
	msg, err := BuildMessage(from, m.cfg.Recipients, bundle.Subject, bundle.Text, bundle.HTML, m.now())
	if err != nil {
		return fmt.Errorf("%w: mail: %w", ErrDeliveryFailed, err)
	}

	m.logger.Debugw("sending mail", "host", m.cfg.Host, "port", m.cfg.Port, "recipients", len(m.cfg.Recipients))
	if err := m.send(ctx, m.cfg, from, m.cfg.Recipients, msg); err != nil {
		return fmt.Errorf("%w: mail: %w", ErrDeliveryFailed, err)
	}
	return nil
}

// BuildMessage assembles a multipart/alternative message. The HTML part is
// omitted when html is empty.
func BuildMessage(from string, to []string, subject, text, html string, date time.Time) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if err := writePart(mw, "text/plain; charset=utf-8", text); err != nil {
		return nil, err
	}
	if html != "" {
		if err := writePart(mw, "text/html; charset=utf-8", html); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var msg bytes.Buffer
	header := func(k, v string) { fmt.Fprintf(&msg, "%s: %s\r\n", k, v) }
	header("From", from)
	header("To", strings.Join(to, ", "))
	header("Subject", mime.QEncoding.Encode("utf-8", subject))
	header("Date", date.Format(time.RFC1123Z))
	header("MIME-Version", "1.0")
	header("Content-Type", fmt.Sprintf("multipart/alternative; boundary=%q", mw.Boundary()))
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}

func writePart(mw *multipart.Writer, contentType, content string) error {
	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {contentType},
		"Content-Transfer-Encoding": {"quoted-printable"},
	})
	if err != nil {
		return err
	}
	qp := quotedprintable.NewWriter(part)
	if _, err := qp.Write([]byte(content)); err != nil {
		return err
	}
	return qp.Close()
}

// sendSMTP delivers msg over implicit TLS on port 465 and STARTTLS otherwise.
// The whole exchange is bounded by the context deadline.
func sendSMTP(ctx context.Context, cfg config.MailConfig, from string, to []string, msg []byte) error {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	tlsCfg := &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}

	var (
		conn net.Conn
		err  error
	)
	if cfg.Port == implicitTLSPort {
		conn, err = (&tls.Dialer{Config: tlsCfg}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = (&net.Dialer{}).DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer c.Close()

	if cfg.Port != implicitTLSPort {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(tlsCfg); err != nil {
				return fmt.Errorf("smtp starttls: %w", err)
			}
		}
	}
	if cfg.Username != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)); err != nil {
				return fmt.Errorf("smtp auth: %w", err)
			}
		}
	}

	if err := c.Mail(from); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp rcpt %s: %w", rcpt, err)
		}
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp data close: %w", err)
	}
	return c.Quit()
}
