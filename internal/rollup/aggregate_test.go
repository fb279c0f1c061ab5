package rollup

import (
	"context"
	"testing"

	"github.com/profitlens/profitlens-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

func orderTxn(t *testing.T, sku string, marketplace enums.Marketplace, sales, fees string, qty int64) Transaction {
	t.Helper()
	return Transaction{
		Marketplace:  marketplace,
		Type:         enums.TransactionOrder,
		SKU:          sku,
		ProductName:  "Widget " + sku,
		ParentID:     "PARENT-1",
		Category:     "Kitchen",
		Fulfillment:  enums.FulfillmentFBA,
		OrderID:      "order-" + sku + "-" + sales,
		Currency:     enums.CurrencyUSD,
		Quantity:     qty,
		ProductSales: dec(t, sales),
		SellingFees:  dec(t, fees),
	}
}

// scenarioConfig prices every unit at 40 with no percentage costs, so a row's
// cost equals 40 per unit.
func scenarioConfig(t *testing.T) CostConfiguration {
	t.Helper()
	return CostConfiguration{
		AdvertisingPercent: decimal.Zero,
		FBACostPercent:     decimal.Zero,
		FBMCostPercent:     decimal.Zero,
		RefundRecoveryRate: decimal.Zero,
		CategoryCosts: map[string]CategoryCost{
			"Kitchen": {AvgProductCost: dec(t, "40")},
		},
	}
}

func TestAggregateSKUsSingleSKU(t *testing.T) {
	txns := []Transaction{
		orderTxn(t, "A", enums.MarketplaceUS, "100", "10", 1),
		orderTxn(t, "A", enums.MarketplaceUS, "200", "20", 2),
	}

	report, err := AggregateSKUs(context.Background(), txns, scenarioConfig(t), NewRateTable(enums.CurrencyUSD), AggregateOptions{Workers: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Entities) != 1 {
		t.Fatalf("expected one entity, got %d", len(report.Entities))
	}

	entity := report.Entities[0]
	if !entity.TotalRevenue.Equal(dec(t, "300")) {
		t.Fatalf("revenue: got %s, want 300", entity.TotalRevenue)
	}
	if !entity.NetProfit.Equal(dec(t, "150")) {
		t.Fatalf("net profit: got %s, want 150", entity.NetProfit)
	}
	if !entity.ProfitMargin.Equal(dec(t, "50")) {
		t.Fatalf("margin: got %s, want 50", entity.ProfitMargin)
	}
	if entity.TotalOrders != 2 {
		t.Fatalf("orders: got %d, want 2", entity.TotalOrders)
	}
	if entity.TotalQuantity != 3 {
		t.Fatalf("quantity: got %d, want 3", entity.TotalQuantity)
	}
	if entity.Fulfillment != enums.FulfillmentFBA {
		t.Fatalf("fulfillment: got %s, want FBA", entity.Fulfillment)
	}
	if !entity.HasCostData {
		t.Fatal("cost data flag lost")
	}
}

func TestAggregateDistinctOrders(t *testing.T) {
	first := orderTxn(t, "A", enums.MarketplaceUS, "100", "0", 1)
	second := orderTxn(t, "A", enums.MarketplaceUS, "50", "0", 1)
	second.OrderID = first.OrderID // same order, two rows

	report, err := AggregateSKUs(context.Background(), []Transaction{first, second}, scenarioConfig(t), NewRateTable(enums.CurrencyUSD), AggregateOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := report.Entities[0].TotalOrders; got != 1 {
		t.Fatalf("orders must count distinct order ids: got %d, want 1", got)
	}
}

func TestAggregateFulfillmentClassification(t *testing.T) {
	tests := []struct {
		name string
		tags []enums.Fulfillment
		want enums.Fulfillment
	}{
		{name: "all fba", tags: []enums.Fulfillment{enums.FulfillmentFBA, enums.FulfillmentFBA}, want: enums.FulfillmentFBA},
		{name: "all fbm", tags: []enums.Fulfillment{enums.FulfillmentFBM}, want: enums.FulfillmentFBM},
		{name: "mixed", tags: []enums.Fulfillment{enums.FulfillmentFBA, enums.FulfillmentFBM}, want: enums.FulfillmentMixed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			txns := make([]Transaction, 0, len(tc.tags))
			for i, tag := range tc.tags {
				txn := orderTxn(t, "A", enums.MarketplaceUS, "100", "0", 1)
				txn.Fulfillment = tag
				txn.OrderID = txn.OrderID + string(rune('a'+i))
				txns = append(txns, txn)
			}
			report, err := AggregateSKUs(context.Background(), txns, scenarioConfig(t), NewRateTable(enums.CurrencyUSD), AggregateOptions{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := report.Entities[0].Fulfillment; got != tc.want {
				t.Fatalf("fulfillment: got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestAggregateRefunds(t *testing.T) {
	order := orderTxn(t, "A", enums.MarketplaceUS, "100", "10", 2)
	refund := Transaction{
		Marketplace:  enums.MarketplaceUS,
		Type:         enums.TransactionRefund,
		SKU:          "A",
		Category:     "Kitchen",
		Fulfillment:  enums.FulfillmentFBA,
		OrderID:      "refund-1",
		Currency:     enums.CurrencyUSD,
		Quantity:     -1,
		ProductSales: dec(t, "-50"),
	}

	cfg := scenarioConfig(t)
	cfg.RefundRecoveryRate = dec(t, "0.5")

	report, err := AggregateSKUs(context.Background(), []Transaction{order, refund}, cfg, NewRateTable(enums.CurrencyUSD), AggregateOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entity := report.Entities[0]
	if !entity.TotalRevenue.Equal(dec(t, "50")) {
		t.Fatalf("refund must subtract from revenue: got %s, want 50", entity.TotalRevenue)
	}
	if entity.RefundedQuantity != 1 {
		t.Fatalf("refunded quantity: got %d, want 1", entity.RefundedQuantity)
	}
	if entity.TotalOrders != 1 {
		t.Fatalf("refund rows must not inflate the order count: got %d", entity.TotalOrders)
	}
	// One unit at 40, half recoverable.
	if !entity.RefundLoss.Amount.Equal(dec(t, "20")) {
		t.Fatalf("refund loss: got %s, want 20", entity.RefundLoss.Amount)
	}
}

func TestAggregateDeterministic(t *testing.T) {
	txns := []Transaction{
		orderTxn(t, "B", enums.MarketplaceUK, "80", "8", 1),
		orderTxn(t, "A", enums.MarketplaceUS, "100", "10", 1),
		orderTxn(t, "C", enums.MarketplaceDE, "60", "6", 1),
		orderTxn(t, "A", enums.MarketplaceUS, "200", "20", 2),
	}
	reversed := make([]Transaction, len(txns))
	for i, txn := range txns {
		reversed[len(txns)-1-i] = txn
	}

	cfg := scenarioConfig(t)
	table := NewRateTable(enums.CurrencyUSD)

	forward, err := AggregateSKUs(context.Background(), txns, cfg, table, AggregateOptions{Workers: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	backward, err := AggregateSKUs(context.Background(), reversed, cfg, table, AggregateOptions{Workers: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(forward.Entities) != len(backward.Entities) {
		t.Fatalf("entity counts differ: %d vs %d", len(forward.Entities), len(backward.Entities))
	}
	for i := range forward.Entities {
		f, b := forward.Entities[i], backward.Entities[i]
		if f.Key != b.Key || !f.TotalRevenue.Equal(b.TotalRevenue) || !f.NetProfit.Equal(b.NetProfit) {
			t.Fatalf("run order changed output at %d: %+v vs %+v", i, f, b)
		}
	}
}

func TestAggregateSkipsUnconvertibleRows(t *testing.T) {
	good := orderTxn(t, "A", enums.MarketplaceUS, "100", "10", 1)
	bad := orderTxn(t, "B", enums.MarketplaceJP, "1000", "100", 1)
	bad.Currency = enums.CurrencyJPY

	report, err := AggregateSKUs(context.Background(), []Transaction{good, bad}, scenarioConfig(t), NewRateTable(enums.CurrencyUSD), AggregateOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.RowsSkipped != 1 {
		t.Fatalf("skipped rows: got %d, want 1", report.RowsSkipped)
	}
	if report.RowErrors == nil {
		t.Fatal("skipped rows must surface their errors")
	}
	if len(report.Entities) != 1 || report.Entities[0].Key != "A" {
		t.Fatalf("only the convertible row should aggregate: %+v", report.Entities)
	}
}

func TestAggregateZeroRevenueGuards(t *testing.T) {
	txn := orderTxn(t, "A", enums.MarketplaceUS, "0", "5", 1)

	report, err := AggregateSKUs(context.Background(), []Transaction{txn}, scenarioConfig(t), NewRateTable(enums.CurrencyUSD), AggregateOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	entity := report.Entities[0]
	if !entity.ProfitMargin.IsZero() {
		t.Fatalf("margin must be 0 at zero revenue: %s", entity.ProfitMargin)
	}
	if !entity.SellingFees.PercentOfRevenue.IsZero() {
		t.Fatalf("percent fields must be 0 at zero revenue: %s", entity.SellingFees.PercentOfRevenue)
	}
}
