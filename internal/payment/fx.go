package payment

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/nyumbahq/nyumba/internal/config"
	"github.com/nyumbahq/nyumba/internal/payment/adapters"
	"github.com/nyumbahq/nyumba/internal/payment/adapters/paystack"
	"github.com/nyumbahq/nyumba/internal/payment/domain"
	"github.com/nyumbahq/nyumba/internal/payment/repository"
	"github.com/nyumbahq/nyumba/internal/payment/webhook"
)

var Module = fx.Module("payment",
	fx.Provide(
		fx.Annotate(
			NewPaystackAdapter,
			fx.As(new(domain.IAdapter)),
			fx.ResultTags(`group:"payment.adapters"`),
		),
		fx.Annotate(
			NewPaystackClient,
			fx.As(new(domain.IVerifier)),
		),
		adapters.NewRegistry,
		repository.New,
		webhook.New,
	),
)

func NewPaystackAdapter(cfg config.Config) *paystack.Adapter {
	return paystack.NewAdapter(cfg.Paystack.SecretKey)
}

func NewPaystackClient(cfg config.Config, log *zap.Logger) *paystack.Client {
	return paystack.NewClient(paystack.ClientConfig{
		BaseURL:   cfg.Paystack.BaseURL,
		SecretKey: cfg.Paystack.SecretKey,
		Timeout:   cfg.Paystack.VerifyTimeout,
	}, log)
}
