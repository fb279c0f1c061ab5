package rollup

import (
	"github.com/profitlens/profitlens-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

const defaultWeightClass = "standard"

var one = decimal.NewFromInt(1)

// CostBreakdown is the cost-line allocation for a single normalized
// transaction. Exclusive lines (customs, DDP, warehouse, fulfillment
// overheads) are zero unless the row matches their applicability rule.
type CostBreakdown struct {
	ProductCost decimal.Decimal
	Shipping    decimal.Decimal
	Customs     decimal.Decimal
	DDP         decimal.Decimal
	Warehouse   decimal.Decimal
	GST         decimal.Decimal
	Advertising decimal.Decimal
	FBACost     decimal.Decimal
	FBMCost     decimal.Decimal
	RefundLoss  decimal.Decimal

	// HasCostData is false when the cost tables have no entry for the
	// row's category: the row still counts toward revenue and volume, but
	// every cost-weighted average downstream must exclude it.
	HasCostData bool
}

// Total sums every allocated cost line.
func (b CostBreakdown) Total() decimal.Decimal {
	return b.ProductCost.
		Add(b.Shipping).
		Add(b.Customs).
		Add(b.DDP).
		Add(b.Warehouse).
		Add(b.GST).
		Add(b.Advertising).
		Add(b.FBACost).
		Add(b.FBMCost).
		Add(b.RefundLoss)
}

// Allocate computes the cost lines attributable to one normalized
// transaction under the given configuration.
//
// Shared costs (advertising, fulfillment overhead) apply a percentage of the
// row's revenue uniformly. Table-driven costs (product cost, shipping) are
// per-unit lookups. Exclusive costs are gated: customs/DDP only on
// merchant-fulfilled rows for marketplaces configured as import routes,
// warehouse cost only on merchant-fulfilled rows, FBA overhead only on
// warehouse-fulfilled rows.
func Allocate(txn Transaction, cfg CostConfiguration) CostBreakdown {
	breakdown := CostBreakdown{HasCostData: true}
	revenue := txn.Revenue()

	breakdown.Advertising = cfg.AdvertisingPercent.Mul(revenue)

	switch txn.Fulfillment {
	case enums.FulfillmentFBA:
		breakdown.FBACost = cfg.FBACostPercent.Mul(revenue)
	case enums.FulfillmentFBM:
		breakdown.FBMCost = cfg.FBMCostPercent.Mul(revenue)
		breakdown.Warehouse = txn.WarehouseCost
		if cfg.AppliesCustoms(txn.Marketplace) {
			breakdown.Customs = txn.CustomsDuty
			breakdown.DDP = txn.DDPFee
		}
	}

	breakdown.GST = txn.GSTCost

	entry, ok := cfg.CategoryCosts[txn.Category]
	if !ok {
		breakdown.HasCostData = false
		return breakdown
	}

	units := decimal.NewFromInt(absQuantity(txn.Quantity))
	unitCost := entry.AvgProductCost

	if txn.IsRefund() {
		// A refunded unit's unrecoverable share of its original cost is
		// the refund loss; the recoverable share goes back to stock.
		breakdown.RefundLoss = unitCost.Mul(units).Mul(one.Sub(cfg.RefundRecoveryRate))
		return breakdown
	}

	breakdown.ProductCost = unitCost.Mul(units)

	if txn.Fulfillment == enums.FulfillmentFBM {
		rate, ok := shippingRate(cfg, entry.WeightClass, txn.Marketplace)
		if !ok {
			breakdown.HasCostData = false
			return breakdown
		}
		breakdown.Shipping = rate.Mul(units)
	}

	return breakdown
}

func shippingRate(cfg CostConfiguration, weightClass string, m enums.Marketplace) (decimal.Decimal, bool) {
	if weightClass == "" {
		weightClass = defaultWeightClass
	}
	if rate, ok := cfg.ShippingRates[ShippingKey{WeightClass: weightClass, Route: m.String()}]; ok {
		return rate, true
	}
	rate, ok := cfg.ShippingRates[ShippingKey{WeightClass: weightClass, Route: "default"}]
	return rate, ok
}

func absQuantity(q int64) int64 {
	if q < 0 {
		return -q
	}
	return q
}
