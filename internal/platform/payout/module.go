package payout

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	cfgpkg "github.com/lumabill/biller/pkg/config"
)

// NewClient selects the real or simulated payout client by credential
// presence.
func NewClient(cfg *cfgpkg.Config, log *zap.SugaredLogger) (Client, error) {
	if cfg.PayPal.ClientID == "" || cfg.PayPal.Secret == "" {
		log.Warnw("paypal credentials not configured, using simulated payout client")
		return NewSimulatedClient(log), nil
	}
	return NewPayPalClient(cfg.PayPal.ClientID, cfg.PayPal.Secret, cfg.PayPal.Live, log)
}

var Module = fx.Options(
	fx.Provide(NewClient),
)
