package paymentevent

import "go.uber.org/fx"

// Module exposes the provider verifiers via Fx.
var Module = fx.Options(
	fx.Provide(NewStripeVerifier),
	fx.Provide(NewMercadoPagoVerifier),
)
