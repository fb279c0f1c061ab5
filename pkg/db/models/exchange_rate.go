package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/profitlens/profitlens-backend/pkg/enums"
)

// ExchangeRate is one currency pair's conversion factor: one unit of
// FromCurrency is worth Rate units of ToCurrency.
type ExchangeRate struct {
	FromCurrency enums.Currency  `gorm:"column:from_currency;primaryKey"`
	ToCurrency   enums.Currency  `gorm:"column:to_currency;primaryKey"`
	Rate         decimal.Decimal `gorm:"column:rate;type:numeric(14,6);not null"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (ExchangeRate) TableName() string {
	return "exchange_rates"
}
