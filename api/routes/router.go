package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/needlink/needlink-backend/api/controllers"
	"github.com/needlink/needlink-backend/api/middleware"
	"github.com/needlink/needlink-backend/internal/accounts"
	"github.com/needlink/needlink-backend/internal/goods"
	"github.com/needlink/needlink-backend/internal/memberships"
	"github.com/needlink/needlink-backend/internal/needs"
	"github.com/needlink/needlink-backend/internal/pois"
	"github.com/needlink/needlink-backend/internal/shipments"
	"github.com/needlink/needlink-backend/pkg/auth/session"
	"github.com/needlink/needlink-backend/pkg/config"
	"github.com/needlink/needlink-backend/pkg/db"
	"github.com/needlink/needlink-backend/pkg/logger"
	"github.com/needlink/needlink-backend/pkg/redis"
)

// NewRouter assembles the HTTP surface: health probes, metrics, the public
// needs board, and the authenticated API.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessions session.AccessSessionChecker,
	accountsService accounts.Service,
	poisService pois.Service,
	goodsService goods.Service,
	needsService needs.Service,
	shipmentsService shipments.Service,
	membershipsService memberships.Service,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(accountsService, logg))
			r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(accountsService, logg))
			r.Post("/refresh", controllers.AuthRefresh(accountsService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(cfg.JWT, sessions, logg))
				r.Post("/logout", controllers.AuthLogout(accountsService, logg))
				r.Get("/me", controllers.AuthMe(accountsService, logg))
			})
		})

		// Public surface. OptionalAuth lets signed-in callers keep their
		// identity in logs without gating access.
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(cfg.JWT, sessions, logg))
			r.Get("/needs/board", controllers.NeedsBoard(needsService, logg))
			r.Get("/pois", controllers.PoiList(poisService, logg))
			r.Get("/pois/{poiId}", controllers.PoiDetail(poisService, logg))
			r.Get("/pois/{poiId}/needs/image", controllers.PoiNeedsImage(poisService, needsService, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessions, logg))

			r.Post("/pois", controllers.PoiCreate(poisService, logg))
			r.Patch("/pois/{poiId}", controllers.PoiUpdate(poisService, logg))
			r.Delete("/pois/{poiId}", controllers.PoiDelete(poisService, logg))
			r.Get("/pois/{poiId}/members", controllers.MembersList(membershipsService, logg))
			r.Post("/pois/{poiId}/members", controllers.MemberAdd(membershipsService, logg))
			r.Delete("/pois/{poiId}/members/{membershipId}", controllers.MemberDeactivate(membershipsService, logg))

			r.Get("/goods", controllers.GoodsList(goodsService, logg))
			r.Post("/goods", controllers.GoodsCreate(goodsService, logg))
			r.Get("/goods/{goodId}", controllers.GoodsDetail(goodsService, logg))
			r.Patch("/goods/{goodId}", controllers.GoodsUpdate(goodsService, logg))

			r.Get("/needs", controllers.NeedList(needsService, logg))
			r.Post("/needs", controllers.NeedCreate(needsService, logg))
			r.Get("/needs/{needId}", controllers.NeedDetail(needsService, logg))
			r.Patch("/needs/{needId}", controllers.NeedUpdate(needsService, logg))
			r.Delete("/needs/{needId}", controllers.NeedDelete(needsService, logg))
			r.Post("/needs/{needId}/status", controllers.NeedOverrideStatus(needsService, logg))
			r.Post("/needs/{needId}/pledge", controllers.NeedPledge(shipmentsService, logg))

			r.Get("/shipments", controllers.ShipmentsList(shipmentsService, logg))
			r.Get("/shipments/mine", controllers.ShipmentsMine(shipmentsService, logg))
			r.Get("/shipments/{shipmentId}", controllers.ShipmentDetail(shipmentsService, logg))
			r.Post("/shipments/{shipmentId}/done", controllers.ShipmentMarkDone(shipmentsService, logg))
		})
	})

	return r
}
