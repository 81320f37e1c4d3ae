package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cafenowa/cafenowa-backend/api/controllers"
	"github.com/cafenowa/cafenowa-backend/api/middleware"
	"github.com/cafenowa/cafenowa-backend/internal/audit"
	"github.com/cafenowa/cafenowa-backend/internal/auth"
	"github.com/cafenowa/cafenowa-backend/internal/identity"
	"github.com/cafenowa/cafenowa-backend/internal/inventory"
	"github.com/cafenowa/cafenowa-backend/internal/menu"
	"github.com/cafenowa/cafenowa-backend/internal/orders"
	"github.com/cafenowa/cafenowa-backend/pkg/auth/session"
	"github.com/cafenowa/cafenowa-backend/pkg/authz"
	"github.com/cafenowa/cafenowa-backend/pkg/config"
	"github.com/cafenowa/cafenowa-backend/pkg/db"
	"github.com/cafenowa/cafenowa-backend/pkg/logger"
	"github.com/cafenowa/cafenowa-backend/pkg/redis"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config     *config.Config
	Logger     *logger.Logger
	DB         db.Pinger
	Redis      *redis.Client
	Sessions   session.Validator
	Auth       auth.Service
	Identities identity.Service
	Audit      audit.Service
	Menu       menu.Service
	Inventory  inventory.Service
	Orders     orders.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.RateLimit.LoginWindow,
		cfg.RateLimit.LoginIPLimit,
		cfg.RateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
				Post("/login", controllers.AuthLogin(deps.Auth, cfg, logg))
			r.Post("/logout", controllers.AuthLogout(deps.Auth, deps.Sessions, cfg, logg))
		})

		// The menu is browsable without a session.
		r.Get("/menu", controllers.MenuList(deps.Menu, logg))
		r.Get("/menu/{itemId}", controllers.MenuGet(deps.Menu, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.Session, deps.Sessions, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireOperation(authz.OpMenuWrite, logg))
				r.Post("/menu", controllers.MenuCreate(deps.Menu, logg))
				r.Put("/menu/{itemId}", controllers.MenuUpdate(deps.Menu, logg))
				r.Delete("/menu/{itemId}", controllers.MenuDelete(deps.Menu, logg))
			})

			r.Route("/inventory", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireOperation(authz.OpInventoryRead, logg))
					r.Get("/", controllers.InventoryList(deps.Inventory, logg))
					r.Get("/low-stock", controllers.InventoryLowStock(deps.Inventory, logg))
					r.Get("/transactions", controllers.InventoryTransactions(deps.Inventory, logg))
					r.Get("/{itemId}", controllers.InventoryGet(deps.Inventory, logg))
				})
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireOperation(authz.OpInventoryWrite, logg))
					r.Post("/", controllers.InventoryCreate(deps.Inventory, logg))
					r.Put("/{itemId}", controllers.InventoryUpdate(deps.Inventory, logg))
					r.Post("/restock", controllers.InventoryRestock(deps.Inventory, logg))
					r.Post("/use", controllers.InventoryUse(deps.Inventory, logg))
				})
			})

			r.Route("/orders", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireOperation(authz.OpOrderRead, logg))
					r.Get("/", controllers.OrdersList(deps.Orders, logg))
					r.Get("/{orderId}", controllers.OrdersGet(deps.Orders, logg))
				})
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireOperation(authz.OpOrderWrite, logg))
					r.Post("/", controllers.OrdersCreate(deps.Orders, logg))
					r.Post("/{orderId}/status", controllers.OrdersUpdateStatus(deps.Orders, logg))
				})
			})

			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.RequireOperation(authz.OpUserManage, logg))
				r.Get("/", controllers.UsersList(deps.Identities, logg))
				r.Post("/", controllers.UsersCreate(deps.Identities, logg))
				r.Put("/", controllers.UsersUpdate(deps.Identities, logg))
				r.Delete("/", controllers.UsersDelete(deps.Identities, logg))
			})

			r.With(middleware.RequireOperation(authz.OpAuditRead, logg)).
				Get("/audit-trail", controllers.AuditTrail(deps.Audit, logg))
		})
	})

	return r
}
