package rollup

import (
	"context"
	"fmt"
	"sort"

	"github.com/profitlens/profitlens-backend/pkg/enums"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// AggregateOptions tunes one SKU aggregation run.
type AggregateOptions struct {
	// SplitByMarketplace keys groups by (sku, marketplace) instead of sku
	// alone, producing per-country SKU entities.
	SplitByMarketplace bool

	// Workers caps the partition fan-out. Values below one run the whole
	// batch on a single worker.
	Workers int
}

// Report is the outcome of one aggregation run. RowErrors collects the
// per-row failures (currency conversion misses) for rows that were excluded;
// a non-nil RowErrors does not invalidate the entities built from the rows
// that survived.
type Report struct {
	Entities []AggregatedEntity

	RowsProcessed     int
	RowsByMarketplace map[string]int
	RowsSkipped       int
	RowErrors         error
}

type skuKey struct {
	sku         string
	marketplace enums.Marketplace
}

// skuAccumulator carries the commutative running sums for one group. Every
// field merges by addition or set union, so partition merge order cannot
// change the result.
type skuAccumulator struct {
	sku         string
	productName string
	parentID    string
	category    string
	marketplace enums.Marketplace

	revenue          decimal.Decimal
	totalQuantity    int64
	refundedQuantity int64
	orderIDs         map[string]struct{}
	refundOrderIDs   map[string]struct{}

	sellingFees decimal.Decimal
	fbaFees     decimal.Decimal
	refundLoss  decimal.Decimal
	vat         decimal.Decimal

	advertising decimal.Decimal
	fbaCost     decimal.Decimal
	fbmCost     decimal.Decimal
	productCost decimal.Decimal
	shipping    decimal.Decimal
	customs     decimal.Decimal
	ddp         decimal.Decimal
	warehouse   decimal.Decimal
	gst         decimal.Decimal

	fbaRevenue  decimal.Decimal
	fbaQuantity int64
	fbmRevenue  decimal.Decimal
	fbmQuantity int64

	hasCostData bool
	rows        int
}

func newSKUAccumulator(txn Transaction) *skuAccumulator {
	return &skuAccumulator{
		sku:            txn.SKU,
		productName:    txn.ProductName,
		parentID:       txn.ParentID,
		category:       txn.Category,
		marketplace:    txn.Marketplace,
		orderIDs:       map[string]struct{}{},
		refundOrderIDs: map[string]struct{}{},
		hasCostData:    true,
	}
}

func (a *skuAccumulator) observe(txn Transaction, breakdown CostBreakdown) {
	a.rows++
	revenue := txn.Revenue()
	a.revenue = a.revenue.Add(revenue)

	if txn.IsRefund() {
		a.refundedQuantity += absQuantity(txn.Quantity)
		if txn.OrderID != "" {
			a.refundOrderIDs[txn.OrderID] = struct{}{}
		}
	} else {
		a.totalQuantity += txn.Quantity
		if txn.OrderID != "" {
			a.orderIDs[txn.OrderID] = struct{}{}
		}
	}

	a.sellingFees = a.sellingFees.Add(txn.SellingFees)
	a.fbaFees = a.fbaFees.Add(txn.FBAFees)
	a.vat = a.vat.Add(txn.VAT)
	a.refundLoss = a.refundLoss.Add(breakdown.RefundLoss)

	a.advertising = a.advertising.Add(breakdown.Advertising)
	a.fbaCost = a.fbaCost.Add(breakdown.FBACost)
	a.fbmCost = a.fbmCost.Add(breakdown.FBMCost)
	a.productCost = a.productCost.Add(breakdown.ProductCost)
	a.shipping = a.shipping.Add(breakdown.Shipping)
	a.customs = a.customs.Add(breakdown.Customs)
	a.ddp = a.ddp.Add(breakdown.DDP)
	a.warehouse = a.warehouse.Add(breakdown.Warehouse)
	a.gst = a.gst.Add(breakdown.GST)

	switch txn.Fulfillment {
	case enums.FulfillmentFBA:
		a.fbaRevenue = a.fbaRevenue.Add(revenue)
		a.fbaQuantity += absQuantity(txn.Quantity)
	case enums.FulfillmentFBM:
		a.fbmRevenue = a.fbmRevenue.Add(revenue)
		a.fbmQuantity += absQuantity(txn.Quantity)
	}

	if !breakdown.HasCostData {
		a.hasCostData = false
	}
}

// merge folds other into a. Both accumulators must belong to the same group
// key.
func (a *skuAccumulator) merge(other *skuAccumulator) {
	a.rows += other.rows
	if a.productName == "" {
		a.productName = other.productName
	}
	if a.parentID == "" {
		a.parentID = other.parentID
	}
	if a.category == "" {
		a.category = other.category
	}

	a.revenue = a.revenue.Add(other.revenue)
	a.totalQuantity += other.totalQuantity
	a.refundedQuantity += other.refundedQuantity
	for id := range other.orderIDs {
		a.orderIDs[id] = struct{}{}
	}
	for id := range other.refundOrderIDs {
		a.refundOrderIDs[id] = struct{}{}
	}

	a.sellingFees = a.sellingFees.Add(other.sellingFees)
	a.fbaFees = a.fbaFees.Add(other.fbaFees)
	a.refundLoss = a.refundLoss.Add(other.refundLoss)
	a.vat = a.vat.Add(other.vat)

	a.advertising = a.advertising.Add(other.advertising)
	a.fbaCost = a.fbaCost.Add(other.fbaCost)
	a.fbmCost = a.fbmCost.Add(other.fbmCost)
	a.productCost = a.productCost.Add(other.productCost)
	a.shipping = a.shipping.Add(other.shipping)
	a.customs = a.customs.Add(other.customs)
	a.ddp = a.ddp.Add(other.ddp)
	a.warehouse = a.warehouse.Add(other.warehouse)
	a.gst = a.gst.Add(other.gst)

	a.fbaRevenue = a.fbaRevenue.Add(other.fbaRevenue)
	a.fbaQuantity += other.fbaQuantity
	a.fbmRevenue = a.fbmRevenue.Add(other.fbmRevenue)
	a.fbmQuantity += other.fbmQuantity

	a.hasCostData = a.hasCostData && other.hasCostData
}

func (a *skuAccumulator) classifyFulfillment() enums.Fulfillment {
	hasFBA := a.fbaQuantity > 0 || !a.fbaRevenue.IsZero()
	hasFBM := a.fbmQuantity > 0 || !a.fbmRevenue.IsZero()
	switch {
	case hasFBA && hasFBM:
		return enums.FulfillmentMixed
	case hasFBA:
		return enums.FulfillmentFBA
	case hasFBM:
		return enums.FulfillmentFBM
	default:
		return enums.FulfillmentUnknown
	}
}

// finalize derives the percentage and profitability fields from the
// accumulated sums. Percentages are computed exactly once per run, here.
func (a *skuAccumulator) finalize(key string) AggregatedEntity {
	entity := AggregatedEntity{
		Level:       enums.LevelSKU,
		Key:         key,
		Name:        a.sku,
		ProductName: a.productName,
		Category:    a.category,
		Parent:      a.parentID,
		Marketplace: a.marketplace,
		Fulfillment: a.classifyFulfillment(),

		TotalRevenue:     a.revenue,
		TotalOrders:      len(a.orderIDs),
		TotalQuantity:    a.totalQuantity,
		RefundedQuantity: a.refundedQuantity,

		SellingFees: MetricLine{Amount: a.sellingFees, PercentOfRevenue: percentOf(a.sellingFees, a.revenue)},
		FBAFees:     MetricLine{Amount: a.fbaFees, PercentOfRevenue: percentOf(a.fbaFees, a.revenue)},
		RefundLoss:  MetricLine{Amount: a.refundLoss, PercentOfRevenue: percentOf(a.refundLoss, a.revenue)},
		VAT:         MetricLine{Amount: a.vat, PercentOfRevenue: percentOf(a.vat, a.revenue)},

		Advertising: MetricLine{Amount: a.advertising, PercentOfRevenue: percentOf(a.advertising, a.revenue)},
		FBACost:     MetricLine{Amount: a.fbaCost, PercentOfRevenue: percentOf(a.fbaCost, a.revenue)},
		FBMCost:     MetricLine{Amount: a.fbmCost, PercentOfRevenue: percentOf(a.fbmCost, a.revenue)},
		ProductCost: MetricLine{Amount: a.productCost, PercentOfRevenue: percentOf(a.productCost, a.revenue)},
		Shipping:    MetricLine{Amount: a.shipping, PercentOfRevenue: percentOf(a.shipping, a.revenue)},
		Customs:     MetricLine{Amount: a.customs, PercentOfRevenue: percentOf(a.customs, a.revenue)},
		DDP:         MetricLine{Amount: a.ddp, PercentOfRevenue: percentOf(a.ddp, a.revenue)},
		Warehouse:   MetricLine{Amount: a.warehouse, PercentOfRevenue: percentOf(a.warehouse, a.revenue)},
		GST:         MetricLine{Amount: a.gst, PercentOfRevenue: percentOf(a.gst, a.revenue)},

		FBARevenue:  a.fbaRevenue,
		FBAQuantity: a.fbaQuantity,
		FBMRevenue:  a.fbmRevenue,
		FBMQuantity: a.fbmQuantity,

		HasCostData: a.hasCostData,
	}

	entity.GrossProfit = entity.TotalRevenue.Sub(entity.FeeTotal())
	entity.NetProfit = entity.GrossProfit.Sub(entity.CostTotal())
	entity.ProfitMargin = percentOf(entity.NetProfit, entity.TotalRevenue)
	costBasis := entity.CostTotal()
	if !costBasis.IsZero() {
		entity.ROI = entity.NetProfit.Div(costBasis).Mul(hundred).Round(2)
	}
	return entity
}

// AggregateSKUs folds raw transactions into SKU-level entities. Each row is
// normalized to the rate table's base currency, costed against the
// configuration, and folded into its group accumulator. Rows that fail
// currency conversion are skipped and their errors collected on the report.
//
// Output order is fixed by group key, so two runs over the same input produce
// identical reports regardless of input ordering or worker count.
func AggregateSKUs(ctx context.Context, txns []Transaction, cfg CostConfiguration, rates *RateTable, opts AggregateOptions) (Report, error) {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(txns) {
		workers = len(txns)
	}
	if len(txns) == 0 {
		return Report{Entities: []AggregatedEntity{}}, nil
	}

	type partial struct {
		groups    map[skuKey]*skuAccumulator
		skipped   int
		rowErrors error
	}

	partials := make([]partial, workers)
	chunk := (len(txns) + workers - 1) / workers

	group, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > len(txns) {
			end = len(txns)
		}
		w, batch := w, txns[start:end]
		group.Go(func() error {
			part := partial{groups: map[skuKey]*skuAccumulator{}}
			for _, txn := range batch {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}

				normalized, err := rates.NormalizeTransaction(txn)
				if err != nil {
					part.skipped++
					part.rowErrors = multierr.Append(part.rowErrors, err)
					continue
				}

				key := skuKey{sku: normalized.SKU}
				if opts.SplitByMarketplace {
					key.marketplace = normalized.Marketplace
				}
				acc, ok := part.groups[key]
				if !ok {
					acc = newSKUAccumulator(normalized)
					if !opts.SplitByMarketplace {
						acc.marketplace = enums.MarketplaceUnknown
					}
					part.groups[key] = acc
				}
				acc.observe(normalized, Allocate(normalized, cfg))
			}
			partials[w] = part
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return Report{}, err
	}

	merged := map[skuKey]*skuAccumulator{}
	report := Report{RowsByMarketplace: map[string]int{}}
	for _, part := range partials {
		report.RowsSkipped += part.skipped
		report.RowErrors = multierr.Append(report.RowErrors, part.rowErrors)
		for key, acc := range part.groups {
			if existing, ok := merged[key]; ok {
				existing.merge(acc)
			} else {
				merged[key] = acc
			}
		}
	}

	keys := make([]skuKey, 0, len(merged))
	for key := range merged {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].sku != keys[j].sku {
			return keys[i].sku < keys[j].sku
		}
		return keys[i].marketplace < keys[j].marketplace
	})

	report.Entities = make([]AggregatedEntity, 0, len(keys))
	for _, key := range keys {
		acc := merged[key]
		report.RowsProcessed += acc.rows
		report.RowsByMarketplace[acc.marketplace.String()] += acc.rows
		report.Entities = append(report.Entities, acc.finalize(entityKey(key, opts.SplitByMarketplace)))
	}
	return report, nil
}

func entityKey(key skuKey, split bool) string {
	if split && key.marketplace != enums.MarketplaceUnknown {
		return fmt.Sprintf("%s:%s", key.sku, key.marketplace)
	}
	return key.sku
}
