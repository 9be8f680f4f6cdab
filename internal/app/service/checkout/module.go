package checkout

import "go.uber.org/fx"

// Module exposes the checkout manager via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)
