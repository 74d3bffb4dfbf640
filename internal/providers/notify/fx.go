package notify

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/nyumbahq/nyumba/internal/config"
)

var Module = fx.Module("notify",
	fx.Provide(New),
)

// New falls back to the no-op notifier when SMTP is not configured.
func New(cfg config.Config, log *zap.Logger) Notifier {
	if cfg.Email.SMTPHost == "" {
		return NoOp{}
	}
	return NewSMTP(SMTPConfig{
		Host:     cfg.Email.SMTPHost,
		Port:     cfg.Email.SMTPPort,
		Username: cfg.Email.SMTPUsername,
		Password: cfg.Email.SMTPPassword,
		From:     cfg.Email.SMTPFrom,
	}, log)
}
