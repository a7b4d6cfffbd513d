package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/eduforge/coursepay/internal/app/api/server"
	"github.com/eduforge/coursepay/internal/app/service/account"
	"github.com/eduforge/coursepay/internal/app/service/catalog"
	"github.com/eduforge/coursepay/internal/app/service/checkout"
	"github.com/eduforge/coursepay/internal/app/service/entitlement"
	notificationlog "github.com/eduforge/coursepay/internal/app/service/notification_log"
	"github.com/eduforge/coursepay/internal/app/service/paymentevent"
	"github.com/eduforge/coursepay/internal/app/service/purchase"
	"github.com/eduforge/coursepay/internal/app/service/reconciler"
	"github.com/eduforge/coursepay/internal/app/service/statistics"
	"github.com/eduforge/coursepay/internal/platform/db"
	"github.com/eduforge/coursepay/internal/platform/mercadopago"
	"github.com/eduforge/coursepay/internal/platform/stripeclient"
	"github.com/eduforge/coursepay/pkg/config"
	"github.com/eduforge/coursepay/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	stripeclient.Module,
	mercadopago.Module,
	account.Module,
	catalog.Module,
	purchase.Module,
	entitlement.Module,
	paymentevent.Module,
	reconciler.Module,
	checkout.Module,
	statistics.Module,
	notificationlog.Module,
	server.Module,
)
