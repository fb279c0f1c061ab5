package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/profitlens/profitlens-backend/pkg/enums"
)

// MarketplaceTransaction is one immutable settlement-report row. Rows are
// deduplicated on the upstream event id, so replaying a report is harmless.
type MarketplaceTransaction struct {
	ID          uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	EventID     string                `gorm:"column:event_id;not null;uniqueIndex"`
	OccurredOn  time.Time             `gorm:"column:occurred_on;not null;index"`
	Marketplace enums.Marketplace     `gorm:"column:marketplace;not null;index"`
	Type        enums.TransactionType `gorm:"column:type;not null"`
	SKU         string                `gorm:"column:sku;not null;index"`
	ProductName string                `gorm:"column:product_name;not null;default:''"`
	ParentID    string                `gorm:"column:parent_id;not null;default:''"`
	Category    string                `gorm:"column:category;not null;default:'';index"`
	Fulfillment enums.Fulfillment     `gorm:"column:fulfillment;not null"`
	OrderID     string                `gorm:"column:order_id;not null;default:''"`
	Currency    enums.Currency        `gorm:"column:currency;not null"`
	Quantity    int64                 `gorm:"column:quantity;not null;default:0"`

	ProductSales       decimal.Decimal `gorm:"column:product_sales;type:numeric(14,4);not null;default:0"`
	PromotionalRebates decimal.Decimal `gorm:"column:promotional_rebates;type:numeric(14,4);not null;default:0"`
	SellingFees        decimal.Decimal `gorm:"column:selling_fees;type:numeric(14,4);not null;default:0"`
	FBAFees            decimal.Decimal `gorm:"column:fba_fees;type:numeric(14,4);not null;default:0"`
	VAT                decimal.Decimal `gorm:"column:vat;type:numeric(14,4);not null;default:0"`
	CustomsDuty        decimal.Decimal `gorm:"column:customs_duty;type:numeric(14,4);not null;default:0"`
	DDPFee             decimal.Decimal `gorm:"column:ddp_fee;type:numeric(14,4);not null;default:0"`
	WarehouseCost      decimal.Decimal `gorm:"column:warehouse_cost;type:numeric(14,4);not null;default:0"`
	GSTCost            decimal.Decimal `gorm:"column:gst_cost;type:numeric(14,4);not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (MarketplaceTransaction) TableName() string {
	return "marketplace_transactions"
}
