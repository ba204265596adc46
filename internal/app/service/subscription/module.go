package subscription

import "go.uber.org/fx"

// Module exposes the subscription service and event intake via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
	fx.Provide(NewEventHandler),
)
