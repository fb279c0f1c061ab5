package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/profitlens/profitlens-backend/api/controllers"
	"github.com/profitlens/profitlens-backend/api/middleware"
	"github.com/profitlens/profitlens-backend/internal/query"
	"github.com/profitlens/profitlens-backend/internal/rollup"
	"github.com/profitlens/profitlens-backend/internal/transactions"
	"github.com/profitlens/profitlens-backend/pkg/config"
	"github.com/profitlens/profitlens-backend/pkg/db"
	"github.com/profitlens/profitlens-backend/pkg/logger"
	"github.com/profitlens/profitlens-backend/pkg/metrics"
	"github.com/profitlens/profitlens-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient db.Pinger,
	redisClient *redis.Client,
	repo transactions.Repository,
	rollupService *rollup.Service,
	m *metrics.RollupMetrics,
) (http.Handler, error) {
	queryParams := controllers.QueryControllerParams{
		Engine:       query.NewEngine(cfg.Rollup),
		Transactions: repo,
		Costs:        repo,
		Rates:        repo,
		BaseCurrency: rollupService.BaseCurrency(),
		CacheTTL:     cfg.Cache.QueryResultTTL,
		Metrics:      m,
		Logger:       logg,
	}
	if redisClient != nil {
		queryParams.Cache = redisClient
	}
	queryController, err := controllers.NewQueryController(queryParams)
	if err != nil {
		return nil, err
	}

	rollupController := controllers.NewRollupController(rollupService, logg)
	exportController := controllers.NewExportController(rollupService, repo, logg)
	costsController := controllers.NewCostsController(repo, logg)

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	readiness := map[string]controllers.Pinger{"database": dbClient}
	if redisClient != nil {
		readiness["redis"] = redisClient
	}
	r.Get("/health/live", controllers.HealthLive(cfg))
	r.Get("/health/ready", controllers.HealthReady(cfg, logg, readiness))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/rollup", func(r chi.Router) {
			r.Get("/skus", rollupController.SKUs)
			r.Get("/products", rollupController.Products)
			r.Get("/parents", rollupController.Parents)
			r.Get("/categories", rollupController.Categories)
			r.Get("/countries", rollupController.Countries)
		})

		r.Post("/query", queryController.Execute)

		r.Route("/costs", func(r chi.Router) {
			r.Put("/categories", costsController.UpsertCategoryCosts)
			r.Put("/shipping-rates", costsController.UpsertShippingRates)
			r.Put("/exchange-rates", costsController.UpsertExchangeRates)
			r.Post("/settings", costsController.SaveSetting)
		})

		r.Route("/export", func(r chi.Router) {
			r.Get("/pricing", exportController.Pricing)
			r.Get("/pricing/bulk", exportController.PricingBulk)
		})
	})

	return r, nil
}
