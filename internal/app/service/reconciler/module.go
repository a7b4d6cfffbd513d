package reconciler

import (
	"go.uber.org/fx"

	"github.com/eduforge/coursepay/internal/app/service/entitlement"
	"github.com/eduforge/coursepay/internal/app/service/purchase"
)

// Module exposes the reconciler via Fx, binding the gorm store and the
// entitlement service to the interfaces it consumes.
var Module = fx.Options(
	fx.Provide(func(s *purchase.GormStore) PurchaseStore { return s }),
	fx.Provide(func(s *entitlement.Service) AccessGrantor { return s }),
	fx.Provide(New),
)
