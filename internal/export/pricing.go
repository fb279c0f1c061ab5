package export

import (
	"sort"
	"time"

	"github.com/profitlens/profitlens-backend/internal/rollup"
	"github.com/profitlens/profitlens-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// PayloadVersion tags the pricing payload schema. The schema is append-only:
// bump the version when adding fields, never change the meaning of an
// existing field.
const PayloadVersion = 1

// GlobalSettings echoes the cost configuration the breakdowns were computed
// under, so the pricing tool can reproduce the numbers.
type GlobalSettings struct {
	AdvertisingPercent decimal.Decimal `json:"advertisingPercent"`
	FBACostPercent     decimal.Decimal `json:"fbaCostPercent"`
	FBMCostPercent     decimal.Decimal `json:"fbmCostPercent"`
	RefundRecoveryRate decimal.Decimal `json:"refundRecoveryRate"`
}

// Percentages is one category/fulfillment cell's fee and cost shares of
// revenue.
type Percentages struct {
	SellingFees decimal.Decimal `json:"sellingFees"`
	FBAFees     decimal.Decimal `json:"fbaFees"`
	RefundLoss  decimal.Decimal `json:"refundLoss"`
	VAT         decimal.Decimal `json:"vat"`
	Advertising decimal.Decimal `json:"advertising"`
	FBACost     decimal.Decimal `json:"fbaCost"`
	FBMCost     decimal.Decimal `json:"fbmCost"`
	ProductCost decimal.Decimal `json:"productCost"`
	Shipping    decimal.Decimal `json:"shipping"`
	Customs     decimal.Decimal `json:"customs"`
	DDP         decimal.Decimal `json:"ddp"`
	Warehouse   decimal.Decimal `json:"warehouse"`
	GST         decimal.Decimal `json:"gst"`
	Margin      decimal.Decimal `json:"margin"`
}

// CategoryBreakdown is one category and fulfillment-type cell of the payload.
type CategoryBreakdown struct {
	Category        string            `json:"category"`
	Fulfillment     enums.Fulfillment `json:"fulfillment"`
	SampleOrders    int               `json:"sampleOrders"`
	SampleQuantity  int64             `json:"sampleQuantity"`
	Revenue         decimal.Decimal   `json:"revenue"`
	Percentages     Percentages       `json:"percentages"`
	CustomsIncluded bool              `json:"customsIncluded"`
	HasCostData     bool              `json:"hasCostData"`
}

// DateRangeInfo records the window the samples were drawn from.
type DateRangeInfo struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Summary is the payload's top-level rollup.
type Summary struct {
	CategoryCount int             `json:"categoryCount"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	TotalOrders   int             `json:"totalOrders"`
	AverageMargin decimal.Decimal `json:"averageMargin"`
}

// Payload is the versioned document the downstream pricing tool consumes.
type Payload struct {
	Version     int                 `json:"version"`
	GeneratedAt time.Time           `json:"generatedAt"`
	Marketplace enums.Marketplace   `json:"marketplace,omitempty"`
	DateRange   DateRangeInfo       `json:"dateRange"`
	Settings    GlobalSettings      `json:"settings"`
	Categories  []CategoryBreakdown `json:"categories"`
	Summary     Summary             `json:"summary"`
}

// BulkSummary rolls the per-marketplace payloads up.
type BulkSummary struct {
	MarketplaceCount int             `json:"marketplaceCount"`
	TotalRevenue     decimal.Decimal `json:"totalRevenue"`
	TotalOrders      int             `json:"totalOrders"`
	AverageMargin    decimal.Decimal `json:"averageMargin"`
}

// BulkPayload nests one pricing payload per marketplace.
type BulkPayload struct {
	Version     int                           `json:"version"`
	GeneratedAt time.Time                     `json:"generatedAt"`
	DateRange   DateRangeInfo                 `json:"dateRange"`
	Payloads    map[enums.Marketplace]Payload `json:"payloads"`
	Summary     BulkSummary                   `json:"summary"`
}

// Params feeds one payload build. Entities must be SKU-level rollups for the
// window; the builder composes its own category/fulfillment cells from them.
type Params struct {
	Entities    []rollup.AggregatedEntity
	Config      rollup.CostConfiguration
	Marketplace enums.Marketplace
	Start       time.Time
	End         time.Time
	GeneratedAt time.Time
}

// BuildPricingPayload composes SKU entities into the per-category,
// per-fulfillment percentage breakdowns the pricing tool prices against.
func BuildPricingPayload(p Params) Payload {
	cells := RollUpCells(p.Entities)

	payload := Payload{
		Version:     PayloadVersion,
		GeneratedAt: p.GeneratedAt,
		Marketplace: p.Marketplace,
		DateRange:   DateRangeInfo{Start: p.Start, End: p.End},
		Settings: GlobalSettings{
			AdvertisingPercent: p.Config.AdvertisingPercent,
			FBACostPercent:     p.Config.FBACostPercent,
			FBMCostPercent:     p.Config.FBMCostPercent,
			RefundRecoveryRate: p.Config.RefundRecoveryRate,
		},
		Categories: make([]CategoryBreakdown, 0, len(cells)),
	}

	categories := map[string]struct{}{}
	weightedMargin := decimal.Zero
	weightTotal := decimal.Zero
	for _, cell := range cells {
		categories[cell.Category] = struct{}{}
		payload.Summary.TotalRevenue = payload.Summary.TotalRevenue.Add(cell.TotalRevenue)
		payload.Summary.TotalOrders += cell.TotalOrders
		if cell.HasCostData && cell.TotalRevenue.IsPositive() {
			weightedMargin = weightedMargin.Add(cell.ProfitMargin.Mul(cell.TotalRevenue))
			weightTotal = weightTotal.Add(cell.TotalRevenue)
		}

		payload.Categories = append(payload.Categories, CategoryBreakdown{
			Category:       cell.Category,
			Fulfillment:    cell.Fulfillment,
			SampleOrders:   cell.TotalOrders,
			SampleQuantity: cell.TotalQuantity,
			Revenue:        cell.TotalRevenue,
			Percentages: Percentages{
				SellingFees: cell.SellingFees.PercentOfRevenue,
				FBAFees:     cell.FBAFees.PercentOfRevenue,
				RefundLoss:  cell.RefundLoss.PercentOfRevenue,
				VAT:         cell.VAT.PercentOfRevenue,
				Advertising: cell.Advertising.PercentOfRevenue,
				FBACost:     cell.FBACost.PercentOfRevenue,
				FBMCost:     cell.FBMCost.PercentOfRevenue,
				ProductCost: cell.ProductCost.PercentOfRevenue,
				Shipping:    cell.Shipping.PercentOfRevenue,
				Customs:     cell.Customs.PercentOfRevenue,
				DDP:         cell.DDP.PercentOfRevenue,
				Warehouse:   cell.Warehouse.PercentOfRevenue,
				GST:         cell.GST.PercentOfRevenue,
				Margin:      cell.ProfitMargin,
			},
			CustomsIncluded: fbmRouteClearsCustoms(p.Config, cell.Fulfillment, p.Marketplace),
			HasCostData:     cell.HasCostData,
		})
	}

	payload.Summary.CategoryCount = len(categories)
	if !weightTotal.IsZero() {
		payload.Summary.AverageMargin = weightedMargin.Div(weightTotal).Round(2)
	}
	return payload
}

// BuildBulkPayload builds one payload per marketplace plus a cross-market
// summary. The per-marketplace entity sets must each be SKU rollups already
// restricted to that marketplace.
func BuildBulkPayload(perMarketplace map[enums.Marketplace][]rollup.AggregatedEntity, cfg rollup.CostConfiguration, start, end, generatedAt time.Time) BulkPayload {
	bulk := BulkPayload{
		Version:     PayloadVersion,
		GeneratedAt: generatedAt,
		DateRange:   DateRangeInfo{Start: start, End: end},
		Payloads:    make(map[enums.Marketplace]Payload, len(perMarketplace)),
	}

	weightedMargin := decimal.Zero
	weightTotal := decimal.Zero
	for marketplace, entities := range perMarketplace {
		payload := BuildPricingPayload(Params{
			Entities:    entities,
			Config:      cfg,
			Marketplace: marketplace,
			Start:       start,
			End:         end,
			GeneratedAt: generatedAt,
		})
		bulk.Payloads[marketplace] = payload
		bulk.Summary.TotalRevenue = bulk.Summary.TotalRevenue.Add(payload.Summary.TotalRevenue)
		bulk.Summary.TotalOrders += payload.Summary.TotalOrders
		if payload.Summary.TotalRevenue.IsPositive() && !payload.Summary.AverageMargin.IsZero() {
			weightedMargin = weightedMargin.Add(payload.Summary.AverageMargin.Mul(payload.Summary.TotalRevenue))
			weightTotal = weightTotal.Add(payload.Summary.TotalRevenue)
		}
	}

	bulk.Summary.MarketplaceCount = len(bulk.Payloads)
	if !weightTotal.IsZero() {
		bulk.Summary.AverageMargin = weightedMargin.Div(weightTotal).Round(2)
	}
	return bulk
}

// RollUpCells composes SKU entities into category-and-fulfillment cells,
// sorted for stable payload output.
func RollUpCells(entities []rollup.AggregatedEntity) []rollup.AggregatedEntity {
	cells := rollup.RollUp(entities, enums.LevelCategory, func(child rollup.AggregatedEntity) (rollup.GroupIdentity, bool) {
		category := child.Category
		if category == "" {
			category = "Uncategorized"
		}
		return rollup.GroupIdentity{
			Key:      category + ":" + child.Fulfillment.String(),
			Name:     category,
			Category: category,
		}, true
	})
	sort.Slice(cells, func(i, j int) bool { return cells[i].Key < cells[j].Key })
	return cells
}

// fbmRouteClearsCustoms reports whether the cell's costs include customs and
// DDP lines. Warehouse-fulfilled stock clears customs upstream of the
// marketplace; merchant-fulfilled orders clear it per shipment, but only on
// routes configured as imports.
func fbmRouteClearsCustoms(cfg rollup.CostConfiguration, fulfillment enums.Fulfillment, marketplace enums.Marketplace) bool {
	if fulfillment != enums.FulfillmentFBM && fulfillment != enums.FulfillmentMixed {
		return false
	}
	return cfg.AppliesCustoms(marketplace)
}
