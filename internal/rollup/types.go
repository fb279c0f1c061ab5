package rollup

import (
	"time"

	"github.com/profitlens/profitlens-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Transaction is one immutable report row from a marketplace settlement
// report. Monetary fields are in the marketplace's local currency until the
// enrichment step normalizes them.
type Transaction struct {
	Date        time.Time             `json:"date"`
	Marketplace enums.Marketplace     `json:"marketplace"`
	Type        enums.TransactionType `json:"type"`
	SKU         string                `json:"sku"`
	ProductName string                `json:"product_name"`
	ParentID    string                `json:"parent_id"`
	Category    string                `json:"category"`
	Fulfillment enums.Fulfillment     `json:"fulfillment"`
	OrderID     string                `json:"order_id"`
	Currency    enums.Currency        `json:"currency"`
	Quantity    int64                 `json:"quantity"`

	ProductSales       decimal.Decimal `json:"product_sales"`
	PromotionalRebates decimal.Decimal `json:"promotional_rebates"`
	SellingFees        decimal.Decimal `json:"selling_fees"`
	FBAFees            decimal.Decimal `json:"fba_fees"`
	VAT                decimal.Decimal `json:"vat"`
	CustomsDuty        decimal.Decimal `json:"customs_duty"`
	DDPFee             decimal.Decimal `json:"ddp_fee"`
	WarehouseCost      decimal.Decimal `json:"warehouse_cost"`
	GSTCost            decimal.Decimal `json:"gst_cost"`
}

// Revenue returns the row's net sales amount (product sales less promotional
// rebates). Refund rows report negative sales, so no sign flip is needed.
func (t Transaction) Revenue() decimal.Decimal {
	return t.ProductSales.Sub(t.PromotionalRebates)
}

// IsRefund reports whether the row reverses a prior sale.
func (t Transaction) IsRefund() bool {
	return t.Type == enums.TransactionRefund
}

// CategoryCost is one per-category entry of the cost table.
type CategoryCost struct {
	AvgProductCost decimal.Decimal `json:"avg_product_cost"`
	WeightClass    string          `json:"weight_class"`
}

// ShippingKey addresses one cell of the shipping-rate table.
type ShippingKey struct {
	WeightClass string
	Route       string
}

// CostConfiguration is the read-only cost snapshot for one aggregation run.
// It is passed by value into every aggregation call; the engine never reads
// ambient state.
type CostConfiguration struct {
	AdvertisingPercent decimal.Decimal `json:"advertising_percent"`
	FBACostPercent     decimal.Decimal `json:"fba_cost_percent"`
	FBMCostPercent     decimal.Decimal `json:"fbm_cost_percent"`
	RefundRecoveryRate decimal.Decimal `json:"refund_recovery_rate"`

	CategoryCosts map[string]CategoryCost        `json:"category_costs"`
	ShippingRates map[ShippingKey]decimal.Decimal `json:"-"`

	// CustomsMarketplaces lists the channels whose merchant-fulfilled
	// imports carry customs duty and DDP fees.
	CustomsMarketplaces []enums.Marketplace `json:"customs_marketplaces"`
}

// AppliesCustoms reports whether FBM rows on the given marketplace carry
// customs and DDP cost lines.
func (c CostConfiguration) AppliesCustoms(m enums.Marketplace) bool {
	for _, candidate := range c.CustomsMarketplaces {
		if candidate == m {
			return true
		}
	}
	return false
}

// MetricLine pairs a raw amount with its share of entity revenue.
type MetricLine struct {
	Amount           decimal.Decimal `json:"amount"`
	PercentOfRevenue decimal.Decimal `json:"percent_of_revenue"`
}

// GroupIdentity names one composed entity while rolling children upward.
type GroupIdentity struct {
	Key         string
	Name        string
	Category    string
	Parent      string
	Marketplace enums.Marketplace
}

// AggregatedEntity is one profitability rollup at any hierarchy level.
// Entities are rebuilt from scratch on every run; a higher level's
// percentages are derived from its children, never re-measured from raw rows.
type AggregatedEntity struct {
	Level enums.EntityLevel `json:"level"`
	Key   string            `json:"key"`
	Name  string            `json:"name"`

	// ProductName is carried on SKU-level entities so the composer can
	// group siblings into products without re-reading raw rows.
	ProductName string `json:"product_name,omitempty"`

	Category    string            `json:"category,omitempty"`
	Parent      string            `json:"parent,omitempty"`
	Marketplace enums.Marketplace `json:"marketplace,omitempty"`
	Fulfillment enums.Fulfillment `json:"fulfillment"`

	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	TotalOrders      int             `json:"total_orders"`
	TotalQuantity    int64           `json:"total_quantity"`
	RefundedQuantity int64           `json:"refunded_quantity"`

	SellingFees MetricLine `json:"selling_fees"`
	FBAFees     MetricLine `json:"fba_fees"`
	RefundLoss  MetricLine `json:"refund_loss"`
	VAT         MetricLine `json:"vat"`

	Advertising MetricLine `json:"advertising"`
	FBACost     MetricLine `json:"fba_cost"`
	FBMCost     MetricLine `json:"fbm_cost"`
	ProductCost MetricLine `json:"product_cost"`
	Shipping    MetricLine `json:"shipping"`
	Customs     MetricLine `json:"customs"`
	DDP         MetricLine `json:"ddp"`
	Warehouse   MetricLine `json:"warehouse"`
	GST         MetricLine `json:"gst"`

	FBARevenue  decimal.Decimal `json:"fba_revenue"`
	FBAQuantity int64           `json:"fba_quantity"`
	FBMRevenue  decimal.Decimal `json:"fbm_revenue"`
	FBMQuantity int64           `json:"fbm_quantity"`

	GrossProfit  decimal.Decimal `json:"gross_profit"`
	NetProfit    decimal.Decimal `json:"net_profit"`
	ProfitMargin decimal.Decimal `json:"profit_margin"`
	ROI          decimal.Decimal `json:"roi"`

	HasCostData bool `json:"has_cost_data"`
}

// FeeTotal sums the marketplace-side deductions.
func (e AggregatedEntity) FeeTotal() decimal.Decimal {
	return e.SellingFees.Amount.
		Add(e.FBAFees.Amount).
		Add(e.RefundLoss.Amount).
		Add(e.VAT.Amount)
}

// CostTotal sums the seller-side cost lines.
func (e AggregatedEntity) CostTotal() decimal.Decimal {
	return e.Advertising.Amount.
		Add(e.FBACost.Amount).
		Add(e.FBMCost.Amount).
		Add(e.ProductCost.Amount).
		Add(e.Shipping.Amount).
		Add(e.Customs.Amount).
		Add(e.DDP.Amount).
		Add(e.Warehouse.Amount).
		Add(e.GST.Amount)
}

// percentOf returns amount/revenue*100 rounded to two places, or zero when
// revenue is zero. Percentage fields must never divide by zero.
func percentOf(amount, revenue decimal.Decimal) decimal.Decimal {
	if revenue.IsZero() {
		return decimal.Zero
	}
	return amount.Div(revenue).Mul(hundred).Round(2)
}

var hundred = decimal.NewFromInt(100)
