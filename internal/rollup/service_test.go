package rollup

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/profitlens/profitlens-backend/pkg/config"
	"github.com/profitlens/profitlens-backend/pkg/enums"
	"github.com/profitlens/profitlens-backend/pkg/logger"
	"github.com/profitlens/profitlens-backend/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type fakeTxnSource struct {
	txns []Transaction
}

func (f *fakeTxnSource) TransactionsInRange(_ context.Context, _, _ time.Time, _ []enums.Marketplace) ([]Transaction, error) {
	return f.txns, nil
}

type fakeConfigSource struct {
	cfg CostConfiguration
}

func (f *fakeConfigSource) CostConfiguration(context.Context) (CostConfiguration, error) {
	return f.cfg, nil
}

type fakeRateSource struct {
	table *RateTable
}

func (f *fakeRateSource) Rates(_ context.Context, _ enums.Currency) (*RateTable, error) {
	return f.table, nil
}

func testService(t *testing.T, txns []Transaction, cfg CostConfiguration) *Service {
	t.Helper()
	svc, err := NewService(
		&fakeTxnSource{txns: txns},
		&fakeConfigSource{cfg: cfg},
		&fakeRateSource{table: NewRateTable(enums.CurrencyUSD).SetRate(enums.CurrencyEUR, dec(t, "1.10"))},
		logger.New(logger.Options{Output: io.Discard}),
		metrics.NewRollupMetrics(prometheus.NewRegistry()),
		config.RollupConfig{
			BaseCurrency:         "USD",
			MaterialityThreshold: "50",
			AggregationWorkers:   2,
		},
	)
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	return svc
}

func TestServiceRejectsBadConfig(t *testing.T) {
	_, err := NewService(nil, nil, nil, logger.New(logger.Options{Output: io.Discard}), metrics.NewRollupMetrics(nil), config.RollupConfig{
		BaseCurrency:         "DOGE",
		MaterialityThreshold: "50",
	})
	if err == nil {
		t.Fatal("expected an error for an unknown base currency")
	}

	_, err = NewService(nil, nil, nil, logger.New(logger.Options{Output: io.Discard}), metrics.NewRollupMetrics(nil), config.RollupConfig{
		BaseCurrency:         "USD",
		MaterialityThreshold: "fifty",
	})
	if err == nil {
		t.Fatal("expected an error for a non-numeric threshold")
	}
}

func TestServicePipeline(t *testing.T) {
	txns := []Transaction{
		orderTxn(t, "A", enums.MarketplaceUS, "100", "10", 1),
		orderTxn(t, "A", enums.MarketplaceUS, "200", "20", 2),
		orderTxn(t, "B", enums.MarketplaceUS, "400", "40", 1),
	}
	svc := testService(t, txns, scenarioConfig(t))
	window := Window{Start: time.Now().AddDate(0, 0, -30), End: time.Now()}

	report, err := svc.SKUEntities(context.Background(), window, false)
	if err != nil {
		t.Fatalf("sku entities: %v", err)
	}
	if len(report.Entities) != 2 {
		t.Fatalf("expected two sku entities, got %d", len(report.Entities))
	}

	products, err := svc.ProductEntities(context.Background(), window, false)
	if err != nil {
		t.Fatalf("product entities: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected two products, got %d", len(products))
	}

	categories, err := svc.CategoryEntities(context.Background(), window)
	if err != nil {
		t.Fatalf("category entities: %v", err)
	}
	if len(categories) != 1 {
		t.Fatalf("expected one category, got %d", len(categories))
	}
	if !categories[0].TotalRevenue.Equal(dec(t, "700")) {
		t.Fatalf("category revenue: got %s, want 700", categories[0].TotalRevenue)
	}
}

func TestServiceCountryComparisons(t *testing.T) {
	us := orderTxn(t, "A", enums.MarketplaceUS, "1000", "100", 1)
	de := orderTxn(t, "A", enums.MarketplaceDE, "1000", "600", 1)
	de.Currency = enums.CurrencyUSD

	svc := testService(t, []Transaction{us, de}, scenarioConfig(t))
	window := Window{Start: time.Now().AddDate(0, 0, -30), End: time.Now()}

	comparisons, err := svc.CountryComparisons(context.Background(), window)
	if err != nil {
		t.Fatalf("country comparisons: %v", err)
	}
	got, ok := comparisons["Widget A"]
	if !ok {
		t.Fatalf("expected a comparison for Widget A, got %v", comparisons)
	}
	if got.Best == nil || got.Best.Marketplace != enums.MarketplaceUS {
		t.Fatalf("best: got %+v, want US", got.Best)
	}
	if got.Worst == nil || got.Worst.Marketplace != enums.MarketplaceDE {
		t.Fatalf("worst: got %+v, want DE", got.Worst)
	}
}
