package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/eduforge/coursepay/docs"
	"github.com/eduforge/coursepay/internal/app/api/handlers"
	mw "github.com/eduforge/coursepay/internal/app/api/middleware"
	"github.com/eduforge/coursepay/internal/app/service/account"
	"github.com/eduforge/coursepay/internal/app/service/catalog"
	"github.com/eduforge/coursepay/internal/app/service/checkout"
	"github.com/eduforge/coursepay/internal/app/service/entitlement"
	"github.com/eduforge/coursepay/internal/app/service/purchase"
	"github.com/eduforge/coursepay/internal/app/service/statistics"
	cfgpkg "github.com/eduforge/coursepay/pkg/config"
	metrics "github.com/eduforge/coursepay/pkg/metrics"
	"github.com/eduforge/coursepay/pkg/types"
)

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// Add request tracing middleware only; request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware())
	return r
}

type routeDeps struct {
	fx.In

	Log     *zap.SugaredLogger
	Cfg     *cfgpkg.Config
	Tokens  *account.TokenManager
	Webhook *handlers.WebhookHandler

	Accounts     *account.Service
	Catalog      *catalog.Service
	Checkout     *checkout.Service
	Entitlements *entitlement.Service
	Purchases    *purchase.GormStore
	Statistics   *statistics.Service
}

func registerRoutes(r *gin.Engine, d routeDeps) {
	// Prometheus metrics
	if d.Cfg != nil && d.Cfg.MetricsAddr != "" {
		p := metrics.NewPrometheus(metrics.NewPrometheusOptions{
			ReqCntURLLabelMappingFn: func(c *gin.Context) string {
				if fp := c.FullPath(); fp != "" {
					return fp
				}
				return c.Request.URL.Path
			},
			Logger: d.Log,
		})
		p.SetListenAddress(d.Cfg.MetricsAddr)
		p.Use(r)

		d.Log.Infow("metrics started", "addr", d.Cfg.MetricsAddr)
	}

	// Public group: request logger + access log
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(d.Log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(pub)
	// Swagger UI
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiV1 := r.Group("/api/v1")
	apiV1.Use(mw.RequestLoggerMiddleware(d.Log), mw.AccessLogMiddleware())

	// Provider webhooks carry their own authenticity checks, no bearer auth
	handlers.RegisterWebhookRoutes(apiV1.Group("/payment/webhook"), d.Webhook)

	// Public catalog browsing and account entry points
	apiV1.POST("/user/register", handlers.ApiRegister(d.Accounts))
	apiV1.POST("/user/login", handlers.ApiLogin(d.Accounts))
	apiV1.GET("/course", handlers.ApiListCourses(d.Catalog))
	apiV1.GET("/course/:id", handlers.ApiGetCourse(d.Catalog))
	apiV1.GET("/ebook", handlers.ApiListEbooks(d.Catalog))
	apiV1.GET("/ebook/:id", handlers.ApiGetEbook(d.Catalog))
	apiV1.GET("/presential_course", handlers.ApiListPresentialCourses(d.Catalog))
	apiV1.GET("/presential_course/:id", handlers.ApiGetPresentialCourse(d.Catalog))

	// Authenticated user surface
	authed := apiV1.Group("/")
	authed.Use(mw.Auth(d.Tokens))
	authed.GET("/user/me", handlers.ApiMe(d.Accounts))
	authed.POST("/user/change_password", handlers.ApiChangePassword(d.Accounts))
	authed.GET("/user/courses", handlers.ApiMyCourses(d.Entitlements))
	authed.GET("/user/purchases", handlers.ApiMyPurchases(d.Purchases))
	handlers.RegisterCheckoutRoutes(authed, d.Checkout)

	// Catalog management for instructors and admins
	manage := apiV1.Group("/")
	manage.Use(mw.Auth(d.Tokens), mw.RequireRole(types.UserRoleAdmin, types.UserRoleInstructor))
	manage.POST("/course", handlers.ApiCreateCourse(d.Catalog))
	manage.PUT("/course/:id", handlers.ApiUpdateCourse(d.Catalog))
	manage.DELETE("/course/:id", handlers.ApiDeleteCourse(d.Catalog))
	manage.POST("/ebook", handlers.ApiCreateEbook(d.Catalog))
	manage.DELETE("/ebook/:id", handlers.ApiDeleteEbook(d.Catalog))
	manage.POST("/presential_course", handlers.ApiCreatePresentialCourse(d.Catalog))
	manage.PUT("/presential_course/:id", handlers.ApiUpdatePresentialCourse(d.Catalog))

	// Admin-only surface
	admin := apiV1.Group("/admin")
	admin.Use(mw.Auth(d.Tokens), mw.RequireRole(types.UserRoleAdmin))
	admin.POST("/list_purchases", handlers.ApiListPurchases(d.Purchases))
	admin.POST("/get_sales_statistic", handlers.ApiGetSalesStatistic(d.Statistics))
	admin.POST("/send_free_course", handlers.ApiSendFreeCourse(d.Entitlements))
	admin.GET("/list_users", handlers.ApiListUsers(d.Accounts))
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine),
	fx.Provide(handlers.NewWebhookHandler),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
