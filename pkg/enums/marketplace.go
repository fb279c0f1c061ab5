package enums

import "fmt"

// Marketplace identifies the sales channel a transaction was reported from.
type Marketplace string

const (
	MarketplaceUS      Marketplace = "US"
	MarketplaceCA      Marketplace = "CA"
	MarketplaceUK      Marketplace = "UK"
	MarketplaceDE      Marketplace = "DE"
	MarketplaceFR      Marketplace = "FR"
	MarketplaceIT      Marketplace = "IT"
	MarketplaceES      Marketplace = "ES"
	MarketplaceAU      Marketplace = "AU"
	MarketplaceJP      Marketplace = "JP"
	MarketplaceUnknown Marketplace = "UNKNOWN"
)

var validMarketplaces = []Marketplace{
	MarketplaceUS,
	MarketplaceCA,
	MarketplaceUK,
	MarketplaceDE,
	MarketplaceFR,
	MarketplaceIT,
	MarketplaceES,
	MarketplaceAU,
	MarketplaceJP,
}

// localCurrencies maps each marketplace to the currency its reports settle in.
var localCurrencies = map[Marketplace]Currency{
	MarketplaceUS: CurrencyUSD,
	MarketplaceCA: CurrencyCAD,
	MarketplaceUK: CurrencyGBP,
	MarketplaceDE: CurrencyEUR,
	MarketplaceFR: CurrencyEUR,
	MarketplaceIT: CurrencyEUR,
	MarketplaceES: CurrencyEUR,
	MarketplaceAU: CurrencyAUD,
	MarketplaceJP: CurrencyJPY,
}

// String implements fmt.Stringer.
func (m Marketplace) String() string {
	return string(m)
}

// IsValid reports whether the marketplace is a recognized sales channel.
func (m Marketplace) IsValid() bool {
	for _, candidate := range validMarketplaces {
		if candidate == m {
			return true
		}
	}
	return false
}

// LocalCurrency returns the settlement currency for the marketplace.
// Unknown marketplaces settle in USD so that unrecognized channels still
// surface through the conversion diagnostics rather than vanish.
func (m Marketplace) LocalCurrency() Currency {
	if cur, ok := localCurrencies[m]; ok {
		return cur
	}
	return CurrencyUSD
}

// ParseMarketplace converts a raw string into a Marketplace.
func ParseMarketplace(value string) (Marketplace, error) {
	for _, candidate := range validMarketplaces {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return MarketplaceUnknown, fmt.Errorf("invalid marketplace %q", value)
}

// Marketplaces returns every recognized marketplace code.
func Marketplaces() []Marketplace {
	out := make([]Marketplace, len(validMarketplaces))
	copy(out, validMarketplaces)
	return out
}
