package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tiendabot/storefront/internal/access"
	"github.com/tiendabot/storefront/internal/config"
	"github.com/tiendabot/storefront/internal/logging"
)

func TestBuildWithFileLedger(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"result":"success","rates":{"CLP":950}}`))
	}))
	defer provider.Close()

	dir := t.TempDir()
	cfg := config.Config{
		RateProviderURL:  provider.URL,
		RateCacheTTL:     time.Minute,
		RateFetchTimeout: time.Second,
		LedgerPath:       filepath.Join(dir, "balances.json"),
		OwnerIDs:         []string{"1"},
	}

	app, err := Build(context.Background(), Deps{Cfg: cfg, Logger: logging.Discard(), HTTPClient: provider.Client()})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	sheet, err := app.Storefront.PriceList(context.Background(), "club", "CLP")
	if err != nil {
		t.Fatalf("price list: %v", err)
	}
	if sheet.Lines[0].Display != "2,900 CLP" {
		t.Fatalf("unexpected display %q", sheet.Lines[0].Display)
	}

	owner := app.Directory.Caller("1")
	if _, err := app.Storefront.Credit(context.Background(), owner, "9", 3); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if _, err := os.Stat(cfg.LedgerPath); err != nil {
		t.Fatalf("ledger file missing: %v", err)
	}
	if !owner.HasRole(access.RoleOwner) {
		t.Fatalf("expected owner role from directory")
	}
}

func TestBuildWithCatalogFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalogs.yaml")
	if err := os.WriteFile(path, []byte("catalogs:\n  - key: vbucks\n    items: [{label: pack, usd: 2}]\n"), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	cfg := config.Config{CatalogPath: path, LedgerPath: filepath.Join(dir, "b.json")}
	app, err := Build(context.Background(), Deps{Cfg: cfg, Logger: logging.Discard()})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	cats := app.Storefront.Catalogs()
	if len(cats) != 1 || cats[0].Key != "vbucks" {
		t.Fatalf("unexpected catalogs %+v", cats)
	}

	cfg.CatalogPath = filepath.Join(dir, "missing.yaml")
	if _, err := Build(context.Background(), Deps{Cfg: cfg, Logger: logging.Discard()}); err == nil {
		t.Fatalf("expected error for missing catalog file")
	}
}
