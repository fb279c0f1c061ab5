package query

import (
	"sort"
	"time"

	"github.com/profitlens/profitlens-backend/internal/rollup"
	"github.com/profitlens/profitlens-backend/pkg/config"
	"github.com/profitlens/profitlens-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// maxLabelLength bounds display labels; product names from settlement
// reports routinely run past 200 characters.
const maxLabelLength = 60

// Item is one ranked group in a result set.
type Item struct {
	Key   string          `json:"key"`
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
}

// Summary describes the returned items only. Total deliberately sums what is
// shown after the limit, not the full filtered population.
type Summary struct {
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// Results is the executed form of a Spec.
type Results struct {
	Metric  enums.QueryMetric    `json:"metric"`
	GroupBy enums.QueryDimension `json:"groupBy"`
	Start   time.Time            `json:"start"`
	End     time.Time            `json:"end"`
	Items   []Item               `json:"items"`
	Summary Summary              `json:"summary"`

	RowsSkipped int `json:"rowsSkipped,omitempty"`
}

// Engine executes declarative queries over raw transactions. It shares the
// allocator and rate table with the rollup pipeline so a query's profit
// figures agree with the entity rollups.
type Engine struct {
	defaultLimit int
	maxLimit     int
	now          func() time.Time
}

func NewEngine(cfg config.RollupConfig) *Engine {
	return &Engine{
		defaultLimit: cfg.DefaultQueryLimit,
		maxLimit:     cfg.MaxQueryLimit,
		now:          time.Now,
	}
}

type groupAcc struct {
	label string

	revenue     decimal.Decimal
	fees        decimal.Decimal
	cost        decimal.Decimal
	sellingFees decimal.Decimal
	fbaFees     decimal.Decimal
	quantity    int64

	orderIDs       map[string]struct{}
	refundOrderIDs map[string]struct{}
}

// Execute runs the spec over the transactions. Rows outside the resolved
// window or failing a filter are dropped; rows failing currency conversion
// are skipped and counted. Empty populations return an empty item list, never
// an error.
func (e *Engine) Execute(txns []rollup.Transaction, costCfg rollup.CostConfiguration, rates *rollup.RateTable, spec Spec) (Results, error) {
	spec, err := spec.Normalize(e.defaultLimit, e.maxLimit)
	if err != nil {
		return Results{}, err
	}

	start, end := Resolve(spec.DateRange, e.now())
	results := Results{
		Metric:  spec.Metric,
		GroupBy: spec.GroupBy,
		Start:   start,
		End:     end,
		Items:   []Item{},
		Summary: Summary{Total: decimal.Zero},
	}

	groups := map[string]*groupAcc{}
	for _, txn := range txns {
		if txn.Date.Before(start) || txn.Date.After(end) {
			continue
		}
		if !matchesFilters(txn, spec.Filters) {
			continue
		}

		normalized, err := rates.NormalizeTransaction(txn)
		if err != nil {
			results.RowsSkipped++
			continue
		}

		key, label := groupKey(normalized, spec.GroupBy)
		acc, ok := groups[key]
		if !ok {
			acc = &groupAcc{
				label:          label,
				orderIDs:       map[string]struct{}{},
				refundOrderIDs: map[string]struct{}{},
			}
			groups[key] = acc
		}
		acc.observe(normalized, rollup.Allocate(normalized, costCfg))
	}

	items := make([]Item, 0, len(groups))
	for key, acc := range groups {
		items = append(items, Item{Key: key, Label: acc.label, Value: metricValue(spec.Metric, acc)})
	}
	sort.Slice(items, func(i, j int) bool {
		cmp := items[i].Value.Cmp(items[j].Value)
		if cmp == 0 {
			return items[i].Key < items[j].Key
		}
		if spec.Sort == SortAsc {
			return cmp < 0
		}
		return cmp > 0
	})
	if len(items) > spec.Limit {
		items = items[:spec.Limit]
	}

	for _, item := range items {
		results.Summary.Total = results.Summary.Total.Add(item.Value)
	}
	results.Summary.Count = len(items)
	results.Items = items
	return results, nil
}

func (g *groupAcc) observe(txn rollup.Transaction, breakdown rollup.CostBreakdown) {
	g.revenue = g.revenue.Add(txn.Revenue())
	g.sellingFees = g.sellingFees.Add(txn.SellingFees)
	g.fbaFees = g.fbaFees.Add(txn.FBAFees)
	g.fees = g.fees.Add(txn.SellingFees).Add(txn.FBAFees).Add(txn.VAT)
	g.cost = g.cost.Add(breakdown.Total())
	g.quantity += txn.Quantity

	if txn.IsRefund() {
		if txn.OrderID != "" {
			g.refundOrderIDs[txn.OrderID] = struct{}{}
		}
		return
	}
	if txn.OrderID != "" {
		g.orderIDs[txn.OrderID] = struct{}{}
	}
}

func matchesFilters(txn rollup.Transaction, f Filters) bool {
	if len(f.Marketplaces) > 0 {
		found := false
		for _, m := range f.Marketplaces {
			if txn.Marketplace == m {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Fulfillment != "" && txn.Fulfillment != f.Fulfillment {
		return false
	}
	if f.Category != "" && txn.Category != f.Category {
		return false
	}
	return true
}

func groupKey(txn rollup.Transaction, dimension enums.QueryDimension) (string, string) {
	switch dimension {
	case enums.DimensionCountry:
		if txn.Marketplace == "" || txn.Marketplace == enums.MarketplaceUnknown {
			return "Unknown", "Unknown"
		}
		return txn.Marketplace.String(), txn.Marketplace.String()
	case enums.DimensionCategory:
		if txn.Category == "" {
			return "Uncategorized", "Uncategorized"
		}
		return txn.Category, txn.Category
	case enums.DimensionSKU:
		if txn.SKU == "" {
			return "Unknown", "Unknown"
		}
		return txn.SKU, txn.SKU
	case enums.DimensionProduct:
		// Keyed by SKU so identically named listings stay distinct.
		if txn.SKU == "" {
			return "Unknown", "Unknown"
		}
		return txn.SKU, truncateLabel(txn.ProductName)
	case enums.DimensionFulfillment:
		if txn.Fulfillment == "" {
			return enums.FulfillmentUnknown.String(), enums.FulfillmentUnknown.String()
		}
		return txn.Fulfillment.String(), txn.Fulfillment.String()
	}
	return "Unknown", "Unknown"
}

func truncateLabel(label string) string {
	if label == "" {
		return "Unknown"
	}
	runes := []rune(label)
	if len(runes) <= maxLabelLength {
		return label
	}
	return string(runes[:maxLabelLength-3]) + "..."
}

func metricValue(metric enums.QueryMetric, acc *groupAcc) decimal.Decimal {
	switch metric {
	case enums.MetricRevenue:
		return acc.revenue
	case enums.MetricProfit:
		return acc.revenue.Sub(acc.fees).Sub(acc.cost)
	case enums.MetricOrders:
		return decimal.NewFromInt(int64(len(acc.orderIDs)))
	case enums.MetricQuantity:
		return decimal.NewFromInt(acc.quantity)
	case enums.MetricRefundRate:
		if len(acc.orderIDs) == 0 {
			return decimal.Zero
		}
		// Refunds can reference orders placed before the window start, so
		// the ratio is capped to keep the rate inside [0, 100].
		refunds := decimal.NewFromInt(int64(len(acc.refundOrderIDs)))
		orders := decimal.NewFromInt(int64(len(acc.orderIDs)))
		rate := refunds.Div(orders).Mul(decimal.NewFromInt(100)).Round(2)
		if hundred := decimal.NewFromInt(100); rate.GreaterThan(hundred) {
			return hundred
		}
		return rate
	case enums.MetricAvgOrderValue:
		if len(acc.orderIDs) == 0 {
			return decimal.Zero
		}
		return acc.revenue.Div(decimal.NewFromInt(int64(len(acc.orderIDs)))).Round(2)
	case enums.MetricSellingFees:
		return acc.sellingFees
	case enums.MetricFBAFees:
		return acc.fbaFees
	}
	return decimal.Zero
}
