package rollup

import (
	"github.com/profitlens/profitlens-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// CountryStanding is one per-marketplace standing inside a comparison.
type CountryStanding struct {
	Marketplace enums.Marketplace `json:"marketplace"`
	Margin      decimal.Decimal   `json:"margin"`
	Revenue     decimal.Decimal   `json:"revenue"`
}

// CountryComparison names a product's strongest and weakest marketplaces.
// Both are nil when fewer than two marketplaces qualify.
type CountryComparison struct {
	Best  *CountryStanding `json:"best"`
	Worst *CountryStanding `json:"worst"`
}

// BestAndWorst compares each product's margin across marketplaces. The input
// entities must be per-marketplace product rollups. A marketplace qualifies
// only with cost data present and revenue above the materiality threshold;
// a near-zero-revenue marketplace would otherwise surface a meaningless
// extreme margin. Equal margins break toward the lexically smaller
// marketplace code so repeated runs agree.
func BestAndWorst(entities []AggregatedEntity, materiality decimal.Decimal) map[string]CountryComparison {
	byProduct := map[string][]CountryStanding{}
	for _, entity := range entities {
		if !entity.HasCostData {
			continue
		}
		if entity.TotalRevenue.LessThanOrEqual(materiality) {
			continue
		}
		if entity.Marketplace == enums.MarketplaceUnknown {
			continue
		}
		byProduct[entity.Name] = append(byProduct[entity.Name], CountryStanding{
			Marketplace: entity.Marketplace,
			Margin:      entity.ProfitMargin,
			Revenue:     entity.TotalRevenue,
		})
	}

	out := make(map[string]CountryComparison, len(byProduct))
	for product, standings := range byProduct {
		if len(standings) < 2 {
			out[product] = CountryComparison{}
			continue
		}
		best, worst := standings[0], standings[0]
		for _, candidate := range standings[1:] {
			if preferred(candidate, best, true) {
				best = candidate
			}
			if preferred(candidate, worst, false) {
				worst = candidate
			}
		}
		bestCopy, worstCopy := best, worst
		out[product] = CountryComparison{Best: &bestCopy, Worst: &worstCopy}
	}
	return out
}

func preferred(candidate, incumbent CountryStanding, wantHigher bool) bool {
	cmp := candidate.Margin.Cmp(incumbent.Margin)
	if cmp == 0 {
		return candidate.Marketplace < incumbent.Marketplace
	}
	if wantHigher {
		return cmp > 0
	}
	return cmp < 0
}
