package export

import (
	"testing"
	"time"

	"github.com/profitlens/profitlens-backend/internal/rollup"
	"github.com/profitlens/profitlens-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

func dec(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", value, err)
	}
	return d
}

func skuCell(t *testing.T, sku, category string, fulfillment enums.Fulfillment, revenue, margin string, orders int) rollup.AggregatedEntity {
	t.Helper()
	return rollup.AggregatedEntity{
		Level:        enums.LevelSKU,
		Key:          sku,
		Name:         sku,
		Category:     category,
		Fulfillment:  fulfillment,
		TotalRevenue: dec(t, revenue),
		TotalOrders:  orders,
		ProfitMargin: dec(t, margin),
		SellingFees:  rollup.MetricLine{PercentOfRevenue: dec(t, "15")},
		HasCostData:  true,
	}
}

func exportConfig(t *testing.T) rollup.CostConfiguration {
	t.Helper()
	return rollup.CostConfiguration{
		AdvertisingPercent:  dec(t, "0.10"),
		FBACostPercent:      dec(t, "0.05"),
		FBMCostPercent:      dec(t, "0.08"),
		RefundRecoveryRate:  dec(t, "0.50"),
		CustomsMarketplaces: []enums.Marketplace{enums.MarketplaceDE},
	}
}

func TestBuildPricingPayload(t *testing.T) {
	now := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	entities := []rollup.AggregatedEntity{
		skuCell(t, "A", "Kitchen", enums.FulfillmentFBA, "1000", "20", 10),
		skuCell(t, "B", "Kitchen", enums.FulfillmentFBM, "500", "10", 5),
		skuCell(t, "C", "Garden", enums.FulfillmentFBA, "500", "40", 5),
	}

	payload := BuildPricingPayload(Params{
		Entities:    entities,
		Config:      exportConfig(t),
		Marketplace: enums.MarketplaceUS,
		Start:       now.AddDate(0, 0, -30),
		End:         now,
		GeneratedAt: now,
	})

	if payload.Version != PayloadVersion {
		t.Fatalf("version: got %d, want %d", payload.Version, PayloadVersion)
	}
	if len(payload.Categories) != 3 {
		t.Fatalf("expected three category/fulfillment cells, got %d", len(payload.Categories))
	}
	// Cells sort by key, so Garden:FBA leads.
	if payload.Categories[0].Category != "Garden" || payload.Categories[0].Fulfillment != enums.FulfillmentFBA {
		t.Fatalf("unexpected first cell: %+v", payload.Categories[0])
	}
	if payload.Summary.CategoryCount != 2 {
		t.Fatalf("category count: got %d, want 2", payload.Summary.CategoryCount)
	}
	if !payload.Summary.TotalRevenue.Equal(dec(t, "2000")) {
		t.Fatalf("total revenue: got %s, want 2000", payload.Summary.TotalRevenue)
	}
	if payload.Summary.TotalOrders != 20 {
		t.Fatalf("total orders: got %d, want 20", payload.Summary.TotalOrders)
	}
	// 20%*1000 + 10%*500 + 40%*500 over 2000 revenue.
	if !payload.Summary.AverageMargin.Equal(dec(t, "22.5")) {
		t.Fatalf("average margin must be revenue-weighted: got %s, want 22.5", payload.Summary.AverageMargin)
	}
	if !payload.Settings.RefundRecoveryRate.Equal(dec(t, "0.50")) {
		t.Fatalf("settings must echo the configuration: %+v", payload.Settings)
	}
}

func TestCustomsFlagPerRoute(t *testing.T) {
	cfg := exportConfig(t)
	now := time.Now()
	entities := []rollup.AggregatedEntity{
		skuCell(t, "A", "Kitchen", enums.FulfillmentFBA, "100", "10", 1),
		skuCell(t, "B", "Kitchen", enums.FulfillmentFBM, "100", "10", 1),
	}

	importPayload := BuildPricingPayload(Params{Entities: entities, Config: cfg, Marketplace: enums.MarketplaceDE, GeneratedAt: now})
	for _, cell := range importPayload.Categories {
		want := cell.Fulfillment == enums.FulfillmentFBM
		if cell.CustomsIncluded != want {
			t.Fatalf("import route %s cell: customs=%v, want %v", cell.Fulfillment, cell.CustomsIncluded, want)
		}
	}

	domesticPayload := BuildPricingPayload(Params{Entities: entities, Config: cfg, Marketplace: enums.MarketplaceUS, GeneratedAt: now})
	for _, cell := range domesticPayload.Categories {
		if cell.CustomsIncluded {
			t.Fatalf("domestic route must never flag customs: %+v", cell)
		}
	}
}

func TestBuildBulkPayload(t *testing.T) {
	now := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	perMarketplace := map[enums.Marketplace][]rollup.AggregatedEntity{
		enums.MarketplaceUS: {skuCell(t, "A", "Kitchen", enums.FulfillmentFBA, "1000", "20", 10)},
		enums.MarketplaceDE: {skuCell(t, "A", "Kitchen", enums.FulfillmentFBA, "1000", "10", 10)},
	}

	bulk := BuildBulkPayload(perMarketplace, exportConfig(t), now.AddDate(0, 0, -30), now, now)
	if bulk.Summary.MarketplaceCount != 2 {
		t.Fatalf("marketplace count: got %d, want 2", bulk.Summary.MarketplaceCount)
	}
	if !bulk.Summary.TotalRevenue.Equal(dec(t, "2000")) {
		t.Fatalf("total revenue: got %s, want 2000", bulk.Summary.TotalRevenue)
	}
	if !bulk.Summary.AverageMargin.Equal(dec(t, "15")) {
		t.Fatalf("bulk margin must weight by revenue: got %s, want 15", bulk.Summary.AverageMargin)
	}
	us, ok := bulk.Payloads[enums.MarketplaceUS]
	if !ok || us.Marketplace != enums.MarketplaceUS {
		t.Fatalf("missing or mislabeled US payload: %+v", us)
	}
}
