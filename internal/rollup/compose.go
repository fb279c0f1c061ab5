package rollup

import (
	"sort"

	"github.com/profitlens/profitlens-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// GroupKeyFunc maps a child entity to the identity of its composed parent.
// Returning false drops the child from the composition.
type GroupKeyFunc func(child AggregatedEntity) (GroupIdentity, bool)

// composedGroup accumulates one composed entity's children before the
// weighted derivation pass.
type composedGroup struct {
	identity GroupIdentity
	children []AggregatedEntity
}

// RollUp composes child entities into the next level of the hierarchy.
// Raw amounts and volume fields sum directly across children. Every
// percentage field, the margin, and the ROI are revenue-weighted averages
// over the children that carry cost data and positive revenue; they are never
// re-measured from raw transactions, so a row can never be counted twice.
// When no child qualifies for weighting the composed entity keeps summed
// amounts but reports zero percentages and HasCostData false.
func RollUp(children []AggregatedEntity, level enums.EntityLevel, keyFn GroupKeyFunc) []AggregatedEntity {
	groups := map[string]*composedGroup{}
	order := []string{}
	for _, child := range children {
		identity, ok := keyFn(child)
		if !ok {
			continue
		}
		grp, seen := groups[identity.Key]
		if !seen {
			grp = &composedGroup{identity: identity}
			groups[identity.Key] = grp
			order = append(order, identity.Key)
		}
		grp.children = append(grp.children, child)
	}

	sort.Strings(order)
	out := make([]AggregatedEntity, 0, len(order))
	for _, key := range order {
		out = append(out, compose(level, groups[key]))
	}
	return out
}

func compose(level enums.EntityLevel, grp *composedGroup) AggregatedEntity {
	entity := AggregatedEntity{
		Level:       level,
		Key:         grp.identity.Key,
		Name:        grp.identity.Name,
		Category:    grp.identity.Category,
		Parent:      grp.identity.Parent,
		Marketplace: grp.identity.Marketplace,
	}

	for _, child := range grp.children {
		entity.TotalRevenue = entity.TotalRevenue.Add(child.TotalRevenue)
		entity.TotalOrders += child.TotalOrders
		entity.TotalQuantity += child.TotalQuantity
		entity.RefundedQuantity += child.RefundedQuantity

		entity.SellingFees.Amount = entity.SellingFees.Amount.Add(child.SellingFees.Amount)
		entity.FBAFees.Amount = entity.FBAFees.Amount.Add(child.FBAFees.Amount)
		entity.RefundLoss.Amount = entity.RefundLoss.Amount.Add(child.RefundLoss.Amount)
		entity.VAT.Amount = entity.VAT.Amount.Add(child.VAT.Amount)

		entity.Advertising.Amount = entity.Advertising.Amount.Add(child.Advertising.Amount)
		entity.FBACost.Amount = entity.FBACost.Amount.Add(child.FBACost.Amount)
		entity.FBMCost.Amount = entity.FBMCost.Amount.Add(child.FBMCost.Amount)
		entity.ProductCost.Amount = entity.ProductCost.Amount.Add(child.ProductCost.Amount)
		entity.Shipping.Amount = entity.Shipping.Amount.Add(child.Shipping.Amount)
		entity.Customs.Amount = entity.Customs.Amount.Add(child.Customs.Amount)
		entity.DDP.Amount = entity.DDP.Amount.Add(child.DDP.Amount)
		entity.Warehouse.Amount = entity.Warehouse.Amount.Add(child.Warehouse.Amount)
		entity.GST.Amount = entity.GST.Amount.Add(child.GST.Amount)

		entity.FBARevenue = entity.FBARevenue.Add(child.FBARevenue)
		entity.FBAQuantity += child.FBAQuantity
		entity.FBMRevenue = entity.FBMRevenue.Add(child.FBMRevenue)
		entity.FBMQuantity += child.FBMQuantity

		entity.GrossProfit = entity.GrossProfit.Add(child.GrossProfit)
		entity.NetProfit = entity.NetProfit.Add(child.NetProfit)
	}

	entity.Fulfillment = composeFulfillment(grp.children)

	weighted, totalWeight := weightedChildren(grp.children)
	entity.HasCostData = !totalWeight.IsZero()
	if !entity.HasCostData {
		return entity
	}

	weight := func(pick func(AggregatedEntity) decimal.Decimal) decimal.Decimal {
		sum := decimal.Zero
		for _, child := range weighted {
			sum = sum.Add(pick(child).Mul(child.TotalRevenue))
		}
		return sum.Div(totalWeight).Round(2)
	}

	entity.SellingFees.PercentOfRevenue = weight(func(c AggregatedEntity) decimal.Decimal { return c.SellingFees.PercentOfRevenue })
	entity.FBAFees.PercentOfRevenue = weight(func(c AggregatedEntity) decimal.Decimal { return c.FBAFees.PercentOfRevenue })
	entity.RefundLoss.PercentOfRevenue = weight(func(c AggregatedEntity) decimal.Decimal { return c.RefundLoss.PercentOfRevenue })
	entity.VAT.PercentOfRevenue = weight(func(c AggregatedEntity) decimal.Decimal { return c.VAT.PercentOfRevenue })
	entity.Advertising.PercentOfRevenue = weight(func(c AggregatedEntity) decimal.Decimal { return c.Advertising.PercentOfRevenue })
	entity.FBACost.PercentOfRevenue = weight(func(c AggregatedEntity) decimal.Decimal { return c.FBACost.PercentOfRevenue })
	entity.FBMCost.PercentOfRevenue = weight(func(c AggregatedEntity) decimal.Decimal { return c.FBMCost.PercentOfRevenue })
	entity.ProductCost.PercentOfRevenue = weight(func(c AggregatedEntity) decimal.Decimal { return c.ProductCost.PercentOfRevenue })
	entity.Shipping.PercentOfRevenue = weight(func(c AggregatedEntity) decimal.Decimal { return c.Shipping.PercentOfRevenue })
	entity.Customs.PercentOfRevenue = weight(func(c AggregatedEntity) decimal.Decimal { return c.Customs.PercentOfRevenue })
	entity.DDP.PercentOfRevenue = weight(func(c AggregatedEntity) decimal.Decimal { return c.DDP.PercentOfRevenue })
	entity.Warehouse.PercentOfRevenue = weight(func(c AggregatedEntity) decimal.Decimal { return c.Warehouse.PercentOfRevenue })
	entity.GST.PercentOfRevenue = weight(func(c AggregatedEntity) decimal.Decimal { return c.GST.PercentOfRevenue })
	entity.ProfitMargin = weight(func(c AggregatedEntity) decimal.Decimal { return c.ProfitMargin })
	entity.ROI = weight(func(c AggregatedEntity) decimal.Decimal { return c.ROI })

	return entity
}

// weightedChildren filters to the children eligible for weighted averaging
// and returns their combined revenue weight.
func weightedChildren(children []AggregatedEntity) ([]AggregatedEntity, decimal.Decimal) {
	eligible := make([]AggregatedEntity, 0, len(children))
	total := decimal.Zero
	for _, child := range children {
		if !child.HasCostData || !child.TotalRevenue.IsPositive() {
			continue
		}
		eligible = append(eligible, child)
		total = total.Add(child.TotalRevenue)
	}
	return eligible, total
}

// composeFulfillment keeps a single tag only when every child agrees on it.
func composeFulfillment(children []AggregatedEntity) enums.Fulfillment {
	if len(children) == 0 {
		return enums.FulfillmentUnknown
	}
	tag := children[0].Fulfillment
	for _, child := range children[1:] {
		if child.Fulfillment != tag {
			return enums.FulfillmentMixed
		}
	}
	return tag
}

// ProductKey groups SKU entities into products by product name.
func ProductKey(child AggregatedEntity) (GroupIdentity, bool) {
	name := child.ProductName
	if child.Level != enums.LevelSKU {
		name = child.Name
	}
	if name == "" {
		name = "Unknown"
	}
	return GroupIdentity{
		Key:      name,
		Name:     name,
		Category: child.Category,
		Parent:   child.Parent,
	}, true
}

// ParentKey groups product entities into parent listings.
func ParentKey(child AggregatedEntity) (GroupIdentity, bool) {
	parent := child.Parent
	if parent == "" {
		parent = "Unknown"
	}
	return GroupIdentity{
		Key:      parent,
		Name:     parent,
		Category: child.Category,
	}, true
}

// CategoryKey groups parent entities into categories.
func CategoryKey(child AggregatedEntity) (GroupIdentity, bool) {
	category := child.Category
	if category == "" {
		category = "Uncategorized"
	}
	return GroupIdentity{
		Key:      category,
		Name:     category,
		Category: category,
	}, true
}
