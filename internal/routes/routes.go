package routes

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/tiendabot/storefront/internal/config"
	"github.com/tiendabot/storefront/internal/middleware"
	"github.com/tiendabot/storefront/internal/rates"
	"github.com/tiendabot/storefront/internal/storefront"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg        config.Config
	DB         *pgxpool.Pool
	Cache      *redis.Client
	Logger     *slog.Logger
	Storefront *storefront.Service
	Rates      *rates.Cache
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if d.Storefront == nil {
		return errors.New("storefront service is required")
	}
	if d.Cfg.GatewaySecret == "" && !d.Cfg.IsDev() {
		return errors.New("GATEWAY_SECRET is required outside development")
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": middleware.RequestIDFrom(c),
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	RegisterCatalogRoutes(api, d.Storefront)

	balances := api.Group("/balances", middleware.GatewayAuth([]byte(d.Cfg.GatewaySecret)))
	mutation := []fiber.Handler{
		middleware.MutationRateLimit(d.Cache, d.Cfg.MutationRateLimit),
		middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger),
	}
	RegisterBalanceRoutes(balances, d.Storefront, mutation...)

	return nil
}
