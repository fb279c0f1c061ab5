package rollup

import (
	"fmt"

	"github.com/profitlens/profitlens-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// ConversionError reports an exchange-rate lookup miss. Rows failing
// conversion are excluded from aggregation but must be surfaced to the
// caller's diagnostics; they are never silently treated as base-currency
// amounts.
type ConversionError struct {
	From enums.Currency
	To   enums.Currency
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("no exchange rate for %s/%s", e.From, e.To)
}

// Pair renders the missing pair as a metrics label.
func (e *ConversionError) Pair() string {
	return fmt.Sprintf("%s/%s", e.From, e.To)
}

type currencyPair struct {
	from enums.Currency
	to   enums.Currency
}

// RateTable converts local-currency amounts into the base currency. It is an
// immutable snapshot once populated, so it is safe for concurrent reads.
type RateTable struct {
	base  enums.Currency
	rates map[currencyPair]decimal.Decimal
}

// NewRateTable builds a table targeting the given base currency.
func NewRateTable(base enums.Currency) *RateTable {
	return &RateTable{
		base:  base,
		rates: map[currencyPair]decimal.Decimal{},
	}
}

// Base returns the table's target currency.
func (t *RateTable) Base() enums.Currency {
	return t.base
}

// SetRate registers how many units of base one unit of from is worth.
func (t *RateTable) SetRate(from enums.Currency, rate decimal.Decimal) *RateTable {
	t.rates[currencyPair{from: from, to: t.base}] = rate
	return t
}

// Convert normalizes amount from the source currency into the base currency.
// Identity conversions always succeed; any other unknown pair fails with a
// ConversionError.
func (t *RateTable) Convert(amount decimal.Decimal, from enums.Currency) (decimal.Decimal, error) {
	if from == t.base {
		return amount, nil
	}
	rate, ok := t.rates[currencyPair{from: from, to: t.base}]
	if !ok {
		return decimal.Zero, &ConversionError{From: from, To: t.base}
	}
	return amount.Mul(rate), nil
}

// NormalizeTransaction returns a copy of the transaction with every monetary
// field converted to the table's base currency. The input row is not mutated.
func (t *RateTable) NormalizeTransaction(txn Transaction) (Transaction, error) {
	if txn.Currency == t.base {
		return txn, nil
	}

	fields := []*decimal.Decimal{
		&txn.ProductSales,
		&txn.PromotionalRebates,
		&txn.SellingFees,
		&txn.FBAFees,
		&txn.VAT,
		&txn.CustomsDuty,
		&txn.DDPFee,
		&txn.WarehouseCost,
		&txn.GSTCost,
	}
	for _, field := range fields {
		converted, err := t.Convert(*field, txn.Currency)
		if err != nil {
			return Transaction{}, err
		}
		*field = converted
	}
	txn.Currency = t.base
	return txn, nil
}
