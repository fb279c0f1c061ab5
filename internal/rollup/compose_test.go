package rollup

import (
	"testing"

	"github.com/profitlens/profitlens-backend/pkg/enums"
)

func skuEntity(t *testing.T, sku, product string, revenue, margin string, hasCostData bool) AggregatedEntity {
	t.Helper()
	rev := dec(t, revenue)
	m := dec(t, margin)
	return AggregatedEntity{
		Level:        enums.LevelSKU,
		Key:          sku,
		Name:         sku,
		ProductName:  product,
		Parent:       "PARENT-1",
		Category:     "Kitchen",
		Fulfillment:  enums.FulfillmentFBA,
		TotalRevenue: rev,
		NetProfit:    rev.Mul(m).Div(hundred),
		ProfitMargin: m,
		HasCostData:  hasCostData,
	}
}

func TestRollUpWeightedMargin(t *testing.T) {
	children := []AggregatedEntity{
		skuEntity(t, "A", "Widget", "100", "50", true),
		skuEntity(t, "B", "Widget", "900", "10", true),
	}

	products := RollUp(children, enums.LevelProduct, ProductKey)
	if len(products) != 1 {
		t.Fatalf("expected one product, got %d", len(products))
	}

	product := products[0]
	if !product.TotalRevenue.Equal(dec(t, "1000")) {
		t.Fatalf("revenue: got %s, want 1000", product.TotalRevenue)
	}
	// 50% * 100/1000 + 10% * 900/1000 = 14%, not the 30% arithmetic mean.
	if !product.ProfitMargin.Equal(dec(t, "14")) {
		t.Fatalf("margin must be revenue-weighted: got %s, want 14", product.ProfitMargin)
	}
}

func TestRollUpExcludesChildrenWithoutCostData(t *testing.T) {
	children := []AggregatedEntity{
		skuEntity(t, "A", "Widget", "100", "20", true),
		skuEntity(t, "B", "Widget", "100000", "-90", false),
	}

	product := RollUp(children, enums.LevelProduct, ProductKey)[0]
	if !product.HasCostData {
		t.Fatal("one qualifying child keeps the cost-data flag")
	}
	if !product.ProfitMargin.Equal(dec(t, "20")) {
		t.Fatalf("costless child must not weight the margin: got %s, want 20", product.ProfitMargin)
	}
	// Amounts still sum over every child.
	if !product.TotalRevenue.Equal(dec(t, "100100")) {
		t.Fatalf("revenue: got %s, want 100100", product.TotalRevenue)
	}
}

func TestRollUpNoQualifyingChildren(t *testing.T) {
	children := []AggregatedEntity{
		skuEntity(t, "A", "Widget", "100", "20", false),
		skuEntity(t, "B", "Widget", "0", "0", true),
	}

	product := RollUp(children, enums.LevelProduct, ProductKey)[0]
	if product.HasCostData {
		t.Fatal("no qualifying child must clear the cost-data flag")
	}
	if !product.ProfitMargin.IsZero() {
		t.Fatalf("fallback margin must be 0: %s", product.ProfitMargin)
	}
}

func TestRollUpFulfillmentUnanimity(t *testing.T) {
	fba := skuEntity(t, "A", "Widget", "100", "10", true)
	fbm := skuEntity(t, "B", "Widget", "100", "10", true)
	fbm.Fulfillment = enums.FulfillmentFBM

	uniform := RollUp([]AggregatedEntity{fba, fba}, enums.LevelProduct, ProductKey)[0]
	if uniform.Fulfillment != enums.FulfillmentFBA {
		t.Fatalf("uniform children: got %s, want FBA", uniform.Fulfillment)
	}

	mixed := RollUp([]AggregatedEntity{fba, fbm}, enums.LevelProduct, ProductKey)[0]
	if mixed.Fulfillment != enums.FulfillmentMixed {
		t.Fatalf("split children: got %s, want Mixed", mixed.Fulfillment)
	}
}

func TestRollUpFullHierarchy(t *testing.T) {
	skus := []AggregatedEntity{
		skuEntity(t, "A", "Widget", "100", "50", true),
		skuEntity(t, "B", "Widget", "900", "10", true),
		skuEntity(t, "C", "Gadget", "500", "20", true),
	}

	products := RollUp(skus, enums.LevelProduct, ProductKey)
	if len(products) != 2 {
		t.Fatalf("expected two products, got %d", len(products))
	}

	parents := RollUp(products, enums.LevelParent, ParentKey)
	if len(parents) != 1 {
		t.Fatalf("expected one parent, got %d", len(parents))
	}

	categories := RollUp(parents, enums.LevelCategory, CategoryKey)
	if len(categories) != 1 {
		t.Fatalf("expected one category, got %d", len(categories))
	}
	category := categories[0]
	if category.Level != enums.LevelCategory || category.Key != "Kitchen" {
		t.Fatalf("unexpected category identity: %+v", category)
	}
	if !category.TotalRevenue.Equal(dec(t, "1500")) {
		t.Fatalf("revenue must survive every level: got %s, want 1500", category.TotalRevenue)
	}
}

func TestRollUpBucketsMissingIdentity(t *testing.T) {
	orphan := skuEntity(t, "A", "", "100", "10", true)
	orphan.Category = ""
	orphan.Parent = ""

	products := RollUp([]AggregatedEntity{orphan}, enums.LevelProduct, ProductKey)
	if products[0].Name != "Unknown" {
		t.Fatalf("missing product name must bucket as Unknown: %q", products[0].Name)
	}

	parents := RollUp(products, enums.LevelParent, ParentKey)
	if parents[0].Name != "Unknown" {
		t.Fatalf("missing parent must bucket as Unknown: %q", parents[0].Name)
	}

	categories := RollUp(parents, enums.LevelCategory, CategoryKey)
	if categories[0].Name != "Uncategorized" {
		t.Fatalf("missing category must bucket as Uncategorized: %q", categories[0].Name)
	}
}
