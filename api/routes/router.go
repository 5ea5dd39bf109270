package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/printforge/printshop-backend/api/controllers"
	"github.com/printforge/printshop-backend/api/middleware"
	"github.com/printforge/printshop-backend/internal/auth"
	"github.com/printforge/printshop-backend/internal/customers"
	"github.com/printforge/printshop-backend/internal/invoices"
	"github.com/printforge/printshop-backend/internal/media"
	"github.com/printforge/printshop-backend/internal/products"
	"github.com/printforge/printshop-backend/internal/projects"
	"github.com/printforge/printshop-backend/pkg/auth/session"
	"github.com/printforge/printshop-backend/pkg/config"
	"github.com/printforge/printshop-backend/pkg/logger"
	"github.com/printforge/printshop-backend/pkg/metrics"
	"github.com/printforge/printshop-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Pinger matches the health-check surface of the backing clients.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies bundles everything the router wires into handlers.
type Dependencies struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          Pinger
	Redis       *redis.Client
	GCS         Pinger
	Sessions    sessionManager
	HTTPMetrics *metrics.HTTPMetrics

	AuthService     auth.Service
	RegisterService auth.RegisterService
	Customers       customers.Service
	Products        products.Service
	Invoices        invoices.Service
	Projects        projects.Service
	Media           media.Service
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(cfg.CORS),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": deps.DB,
			"redis":    deps.Redis,
			"storage":  deps.GCS,
		}))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
			Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		if !cfg.App.IsProd() {
			r.Post("/register", controllers.AuthRegister(deps.RegisterService, deps.AuthService, logg))
		}
		r.Post("/logout", controllers.AuthLogout(deps.Sessions, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Sessions, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", controllers.CustomerList(deps.Customers, logg))
			r.Post("/", controllers.CustomerCreate(deps.Customers, logg))
			r.Get("/{customerId}", controllers.CustomerDetail(deps.Customers, logg))
			r.Patch("/{customerId}", controllers.CustomerUpdate(deps.Customers, logg))
			r.Delete("/{customerId}", controllers.CustomerDelete(deps.Customers, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(deps.Products, logg))
			r.Post("/", controllers.ProductCreate(deps.Products, logg))
			r.Get("/{productId}", controllers.ProductDetail(deps.Products, logg))
			r.Patch("/{productId}", controllers.ProductUpdate(deps.Products, logg))
			r.Delete("/{productId}", controllers.ProductDelete(deps.Products, logg))
		})

		r.Route("/invoices", func(r chi.Router) {
			r.Get("/", controllers.InvoiceList(deps.Invoices, logg))
			r.Post("/", controllers.InvoiceCreate(deps.Invoices, logg))
			r.Post("/quote", controllers.InvoiceQuote(deps.Invoices, logg))
			r.Get("/{invoiceId}", controllers.InvoiceDetail(deps.Invoices, logg))
			r.Patch("/{invoiceId}", controllers.InvoiceUpdate(deps.Invoices, logg))
			r.Delete("/{invoiceId}", controllers.InvoiceDelete(deps.Invoices, logg))
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", controllers.ProjectList(deps.Projects, logg))
			r.Post("/", controllers.ProjectCreate(deps.Projects, logg))
			r.Get("/{projectId}", controllers.ProjectDetail(deps.Projects, logg))
			r.Patch("/{projectId}", controllers.ProjectUpdate(deps.Projects, logg))
			r.Delete("/{projectId}", controllers.ProjectDelete(deps.Projects, logg))
		})

		r.Route("/media", func(r chi.Router) {
			r.Post("/presign", controllers.MediaPresign(deps.Media, logg))
			r.Get("/{mediaId}", controllers.MediaDetail(deps.Media, logg))
			r.Delete("/{mediaId}", controllers.MediaDelete(deps.Media, logg))
		})
	})

	return r
}
