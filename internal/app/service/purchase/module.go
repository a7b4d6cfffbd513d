package purchase

import "go.uber.org/fx"

// Module exposes the purchase store via Fx.
var Module = fx.Options(
	fx.Provide(NewGormStore),
)
