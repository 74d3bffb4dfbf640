package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpNotifier struct {
	cfg  SMTPConfig
	log  *zap.Logger
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTP(cfg SMTPConfig, log *zap.Logger) Notifier {
	return &smtpNotifier{
		cfg:  cfg,
		log:  log.Named("notify.smtp"),
		send: smtp.SendMail,
	}
}

func (n *smtpNotifier) Send(ctx context.Context, msg Message) error {
	to := strings.TrimSpace(msg.To)
	if to == "" {
		return fmt.Errorf("notify: empty recipient")
	}

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", n.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(msg.Body)

	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	if err := n.send(addr, auth, n.cfg.From, []string{to}, []byte(b.String())); err != nil {
		n.log.Warn("send failed", zap.String("to", to), zap.Error(err))
		return err
	}
	return nil
}
