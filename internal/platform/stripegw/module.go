package stripegw

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	cfgpkg "github.com/lumabill/biller/pkg/config"
)

// NewClient selects the production or simulated gateway by credential
// presence, keeping environment checks out of the settlement logic.
func NewClient(cfg *cfgpkg.Config, log *zap.SugaredLogger) Client {
	if cfg.Stripe.SecretKey == "" {
		log.Warnw("stripe secret key not configured, using simulated gateway client")
		return NewSimulatedClient(cfg.Stripe.WebhookSecret, log)
	}
	return NewStripeClient(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret, log)
}

var Module = fx.Options(
	fx.Provide(NewClient),
)
