package account

import "go.uber.org/fx"

// Module exposes the account service and token manager via Fx.
var Module = fx.Options(
	fx.Provide(NewTokenManager),
	fx.Provide(NewService),
)
