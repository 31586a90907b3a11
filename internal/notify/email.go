package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/rileyhilliard/vitals/internal/errors"
)

// EmailConfig holds SMTP settings. Port 465 uses implicit TLS; anything
// else (587, 25) dials plain and upgrades with STARTTLS when offered.
type EmailConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`
	From     string `yaml:"from" mapstructure:"from"`
	To       string `yaml:"to" mapstructure:"to"`
}

// Configured reports whether the config names a destination at all.
// An all-empty section just leaves the channel disabled.
func (c EmailConfig) Configured() bool {
	return c.Host != "" || c.To != ""
}

// Validate checks that a configured email section is complete.
func (c EmailConfig) Validate() error {
	if c.Host == "" {
		return errors.New(errors.ErrConfig,
			"Email notifications need an SMTP host",
			"Set notifications.email.host, e.g. smtp.example.com.")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return errors.New(errors.ErrConfig,
			"Email notifications need a valid SMTP port",
			"Set notifications.email.port to 587 (STARTTLS) or 465 (TLS).")
	}
	if c.From == "" {
		return errors.New(errors.ErrConfig,
			"Email notifications need a from address",
			"Set notifications.email.from.")
	}
	if c.To == "" {
		return errors.New(errors.ErrConfig,
			"Email notifications need a recipient",
			"Set notifications.email.to.")
	}
	return nil
}

// EmailNotifier delivers alerts over SMTP as plain-text MIME messages.
type EmailNotifier struct {
	config EmailConfig
}

func NewEmailNotifier(config EmailConfig) (*EmailNotifier, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &EmailNotifier{config: config}, nil
}

func (e *EmailNotifier) Name() string { return ChannelEmail }

func (e *EmailNotifier) Send(ctx context.Context, msg Message) error {
	return e.sendMail(ctx, e.buildMessage(msg))
}

func (e *EmailNotifier) Close() error { return nil }

// buildMessage assembles the MIME text message.
func (e *EmailNotifier) buildMessage(msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", e.config.From)
	fmt.Fprintf(&b, "To: %s\r\n", e.config.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Title)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	b.WriteString("\r\n\r\n")
	ev := msg.Event
	fmt.Fprintf(&b, "rule: %s\r\n", ev.RuleID)
	fmt.Fprintf(&b, "metric: %s\r\n", ev.MetricKey)
	fmt.Fprintf(&b, "value: %s (threshold %s)\r\n", formatNumber(ev.Value), formatNumber(ev.Threshold))
	fmt.Fprintf(&b, "at: %s\r\n", ev.Timestamp.Format("2006-01-02 15:04:05 MST"))
	return []byte(b.String())
}

func (e *EmailNotifier) sendMail(ctx context.Context, body []byte) error {
	addr := fmt.Sprintf("%s:%d", e.config.Host, e.config.Port)
	tlsConfig := &tls.Config{ServerName: e.config.Host}

	var client *smtp.Client
	var err error
	if e.config.Port == 465 {
		client, err = e.connectImplicitTLS(ctx, addr, tlsConfig)
	} else {
		client, err = e.connectSTARTTLS(ctx, addr, tlsConfig)
	}
	if err != nil {
		return fmt.Errorf("connect to SMTP server: %w", err)
	}
	defer client.Close()

	if e.config.Username != "" && e.config.Password != "" {
		auth := smtp.PlainAuth("", e.config.Username, e.config.Password, e.config.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}
	if err := client.Mail(extractEmail(e.config.From)); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	for _, rcpt := range splitRecipients(e.config.To) {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("add recipient %s: %w", rcpt, err)
		}
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("start data: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close data: %w", err)
	}
	return client.Quit()
}

func (e *EmailNotifier) connectImplicitTLS(ctx context.Context, addr string, tlsConfig *tls.Config) (*smtp.Client, error) {
	dialer := &tls.Dialer{Config: tlsConfig}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	return smtp.NewClient(conn, e.config.Host)
}

func (e *EmailNotifier) connectSTARTTLS(ctx context.Context, addr string, tlsConfig *tls.Config) (*smtp.Client, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	client, err := smtp.NewClient(conn, e.config.Host)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(tlsConfig); err != nil {
			client.Close()
			return nil, fmt.Errorf("STARTTLS failed: %w", err)
		}
	}
	return client, nil
}

// extractEmail pulls the address out of a "Name <email>" header value.
func extractEmail(addr string) string {
	if start := strings.Index(addr, "<"); start != -1 {
		if end := strings.Index(addr, ">"); end != -1 && end > start {
			return addr[start+1 : end]
		}
	}
	return addr
}

// splitRecipients accepts a comma-separated recipient list.
func splitRecipients(to string) []string {
	parts := strings.Split(to, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
