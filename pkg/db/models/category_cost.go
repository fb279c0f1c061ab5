package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryCost holds the average landed unit cost per product category.
type CategoryCost struct {
	Category       string          `gorm:"column:category;primaryKey"`
	AvgProductCost decimal.Decimal `gorm:"column:avg_product_cost;type:numeric(14,4);not null;default:0"`
	WeightClass    string          `gorm:"column:weight_class;not null;default:'standard'"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (CategoryCost) TableName() string {
	return "category_costs"
}

// ShippingRate is one cell of the merchant-fulfilled shipping table, keyed by
// weight class and destination route. Route "default" backs any marketplace
// without a dedicated rate.
type ShippingRate struct {
	WeightClass string          `gorm:"column:weight_class;primaryKey"`
	Route       string          `gorm:"column:route;primaryKey"`
	Rate        decimal.Decimal `gorm:"column:rate;type:numeric(14,4);not null;default:0"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (ShippingRate) TableName() string {
	return "shipping_rates"
}
