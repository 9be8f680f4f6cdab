package settlement

import "go.uber.org/fx"

// Module exposes the webhook event processor via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)
