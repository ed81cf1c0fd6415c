package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/spicepalace/spicepalace-backend/api/controllers"
	"github.com/spicepalace/spicepalace-backend/api/middleware"
	"github.com/spicepalace/spicepalace-backend/internal/analytics"
	"github.com/spicepalace/spicepalace-backend/internal/catalog"
	"github.com/spicepalace/spicepalace-backend/internal/orders"
	"github.com/spicepalace/spicepalace-backend/internal/users"
	"github.com/spicepalace/spicepalace-backend/pkg/config"
	"github.com/spicepalace/spicepalace-backend/pkg/logger"
	"github.com/spicepalace/spicepalace-backend/pkg/metrics"
	"github.com/spicepalace/spicepalace-backend/pkg/redis"
)

// Deps carries everything the router wires together.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	Redis       *redis.Client
	HTTPMetrics *metrics.HTTPMetrics

	Catalog   catalog.Service
	Orders    orders.Service
	Analytics analytics.Service
	Users     users.Service

	// ReadyChecks are pinged by /health/ready, keyed by dependency name.
	ReadyChecks map[string]controllers.Pinger
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOriginList()),
		middleware.Metrics(deps.HTTPMetrics),
	)

	otpPolicy := middleware.NewAuthRateLimitPolicy(
		"request-otp",
		cfg.AuthRateLimit.OTPWindow,
		cfg.AuthRateLimit.OTPIPLimit,
		cfg.AuthRateLimit.OTPEmailLimit,
	)
	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	// The storefront calls mutating routes without credentials, so the admin
	// guard is opt-in.
	adminGuard := func(r chi.Router) chi.Router {
		if !cfg.FeatureFlags.AdminGuard {
			return r
		}
		return r.With(middleware.Auth(cfg.JWT, logg), middleware.RequireAdmin(logg))
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.ReadyChecks))
	})

	if deps.HTTPMetrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.HTTPMetrics.Handler())
	}

	r.Route("/category", func(r chi.Router) {
		adminGuard(r).Post("/create", controllers.CategoryCreate(deps.Catalog, logg))
		r.Get("/all", controllers.CategoryAll(deps.Catalog, logg))
		r.Get("/single/{id}", controllers.CategorySingle(deps.Catalog, logg))
		adminGuard(r).Put("/update/{id}", controllers.CategoryUpdate(deps.Catalog, logg))
		adminGuard(r).Delete("/delete/{id}", controllers.CategoryDelete(deps.Catalog, logg))
	})

	r.Route("/product", func(r chi.Router) {
		adminGuard(r).Post("/create", controllers.ProductCreate(deps.Catalog, logg))
		r.Get("/all", controllers.ProductAll(deps.Catalog, logg))
		r.Get("/single/{id}", controllers.ProductSingle(deps.Catalog, logg))
		adminGuard(r).Put("/update/{id}", controllers.ProductUpdate(deps.Catalog, logg))
		adminGuard(r).Delete("/delete/{id}", controllers.ProductDelete(deps.Catalog, logg))
		r.Get("/total", controllers.ProductTotal(deps.Catalog, logg))
	})

	r.Route("/order", func(r chi.Router) {
		r.Post("/create", controllers.OrderCreate(deps.Orders, logg))
		r.Get("/all", controllers.OrderAll(deps.Orders, logg))
		r.Get("/paged", controllers.OrderPaged(deps.Orders, logg))
		r.Get("/single/{id}", controllers.OrderSingle(deps.Orders, logg))
		adminGuard(r).Put("/update/{id}", controllers.OrderUpdate(deps.Orders, logg))
		adminGuard(r).Delete("/delete/{id}", controllers.OrderDelete(deps.Orders, logg))
		r.Get("/userOrder/{id}", controllers.OrdersByUser(deps.Orders, logg))
	})

	r.Route("/analytics", func(r chi.Router) {
		r.Get("/sales", controllers.AnalyticsSales(deps.Analytics, logg))
		r.Get("/dashboard", controllers.AnalyticsDashboard(deps.Analytics, logg))
		r.Get("/products/top", controllers.AnalyticsTopProducts(deps.Analytics, logg))
		r.Get("/categories/top", controllers.AnalyticsTopCategories(deps.Analytics, logg))
		r.Get("/orders/stats", controllers.AnalyticsOrderStats(deps.Analytics, logg))
	})

	r.Route("/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(otpPolicy, deps.Redis, logg)).Post("/request-otp", controllers.AuthRequestOTP(deps.Users, logg))
		r.Post("/verify-otp", controllers.AuthVerifyOTP(deps.Users, logg))
		r.Post("/check-email", controllers.AuthCheckEmail(deps.Users, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).Post("/register", controllers.AuthRegister(deps.Users, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.Users, logg))
		r.Put("/profile/{id}", controllers.AuthUpdateProfile(deps.Users, logg))
		r.Get("/user/{id}", controllers.AuthGetUser(deps.Users, logg))
		r.Get("/userData/{id}", controllers.AuthGetUserData(deps.Users, logg))
	})

	return r
}
