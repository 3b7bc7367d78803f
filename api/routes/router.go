package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kittipat-ch/pricebench-backend/api/controllers"
	"github.com/kittipat-ch/pricebench-backend/api/middleware"
	"github.com/kittipat-ch/pricebench-backend/internal/calculation"
	"github.com/kittipat-ch/pricebench-backend/internal/customers"
	"github.com/kittipat-ch/pricebench-backend/internal/masterdata"
	"github.com/kittipat-ch/pricebench-backend/internal/rules"
	"github.com/kittipat-ch/pricebench-backend/pkg/config"
	"github.com/kittipat-ch/pricebench-backend/pkg/logger"
	pkgredis "github.com/kittipat-ch/pricebench-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbPinger controllers.Pinger,
	redisClient *pkgredis.Client,
	registry *prometheus.Registry,
	masterDataService masterdata.Service,
	ruleService rules.Service,
	calculationService calculation.Service,
	customersRepo *customers.Repository,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	pingers := []controllers.Pinger{dbPinger}
	if redisClient != nil {
		pingers = append(pingers, redisClient)
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, pingers...))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		var store pkgredis.IdempotencyStore
		if redisClient != nil {
			store = redisClient
		}
		r.Use(middleware.Idempotency(store, logg))

		r.Route("/master-data/{entityType}", func(r chi.Router) {
			r.Post("/drafts", controllers.CreateMasterDataDraft(masterDataService, logg))
			r.Put("/drafts/{recordID}", controllers.UpdateMasterDataDraft(masterDataService, logg))
			r.Delete("/drafts/{recordID}", controllers.DeleteMasterDataDraft(masterDataService, logg))

			r.Get("/versions/{recordID}", controllers.GetMasterDataRecord(masterDataService, logg))
			r.Post("/versions/{recordID}/approve", controllers.ApproveMasterDataVersion(masterDataService, logg))
			r.Post("/versions/{recordID}/rollback", controllers.RollbackMasterDataVersion(masterDataService, logg))

			r.Get("/active", controllers.GetActiveMasterData(masterDataService, logg))
			r.Get("/resolved", controllers.GetResolvedMasterData(masterDataService, logg))
			r.Get("/records", controllers.ListActiveMasterData(masterDataService, logg))
			r.Get("/history", controllers.MasterDataHistory(masterDataService, logg))
		})

		r.Post("/pricing-rules", controllers.CreatePricingRule(ruleService, logg))
		r.Get("/pricing-rules", controllers.ListPricingRules(ruleService, logg))
		r.Get("/pricing-rules/{ruleID}", controllers.GetPricingRule(ruleService, logg))
		r.Put("/pricing-rules/{ruleID}", controllers.UpdatePricingRule(ruleService, logg))
		r.Delete("/pricing-rules/{ruleID}", controllers.DeletePricingRule(ruleService, logg))

		r.Post("/calculations/hybrid", controllers.CalculateHybrid(calculationService, logg))

		r.Get("/customer-groups", controllers.ListCustomerGroups(customersRepo, logg))
	})

	return r
}
