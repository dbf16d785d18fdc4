package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/tiendabot/storefront/internal/access"
	"github.com/tiendabot/storefront/internal/config"
	"github.com/tiendabot/storefront/internal/ledger"
	"github.com/tiendabot/storefront/internal/notification"
	"github.com/tiendabot/storefront/internal/pricing"
	"github.com/tiendabot/storefront/internal/rates"
	"github.com/tiendabot/storefront/internal/storefront"
)

// Deps aggregates the infrastructure both entry points share. DB and Cache
// may be nil.
type Deps struct {
	Cfg        config.Config
	DB         *pgxpool.Pool
	Cache      *redis.Client
	Logger     *slog.Logger
	HTTPClient *http.Client
	Notifier   notification.Notifier
}

// App holds the wired domain components.
type App struct {
	Storefront *storefront.Service
	Rates      *rates.Cache
	Ledger     *ledger.Ledger
	Directory  *access.Directory
}

// Build wires catalogs, the rate cache, the ledger store and the storefront
// service from d.
func Build(ctx context.Context, d Deps) (*App, error) {
	catalogs := pricing.DefaultCatalogs()
	if d.Cfg.CatalogPath != "" {
		loaded, err := pricing.LoadCatalogs(d.Cfg.CatalogPath)
		if err != nil {
			return nil, err
		}
		catalogs = loaded
		d.Logger.Info("catalogs loaded", "path", d.Cfg.CatalogPath, "count", len(catalogs))
	}

	opts := []rates.Option{
		rates.WithTTL(d.Cfg.RateCacheTTL),
		rates.WithFetchTimeout(d.Cfg.RateFetchTimeout),
		rates.WithLogger(d.Logger),
	}
	if d.Cache != nil {
		opts = append(opts, rates.WithSharedStore(rates.NewRedisStore(d.Cache, d.Cfg.RateCacheTTL)))
	}
	rateCache := rates.NewCache(rates.NewHTTPProvider(d.Cfg.RateProviderURL, d.HTTPClient), opts...)

	var store ledger.Store
	if d.DB != nil {
		pg := ledger.NewPostgresStore(d.DB)
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure ledger schema: %w", err)
		}
		store = pg
		d.Logger.Info("ledger store ready", "backend", "postgres")
	} else {
		fs, err := ledger.NewFileStore(d.Cfg.LedgerPath)
		if err != nil {
			return nil, err
		}
		store = fs
		d.Logger.Info("ledger store ready", "backend", "file", "path", fs.Path())
	}
	led := ledger.New(store)

	notifier := d.Notifier
	if notifier == nil {
		notifier = notification.NewLoggerNotifier(d.Logger)
	}

	return &App{
		Storefront: storefront.NewService(rateCache, led, catalogs, notifier, d.Logger),
		Rates:      rateCache,
		Ledger:     led,
		Directory:  access.NewDirectory(d.Cfg.OwnerIDs, d.Cfg.StaffIDs),
	}, nil
}
