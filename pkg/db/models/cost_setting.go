package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// CostSetting is the account-wide cost configuration. A single active row is
// expected; history is kept by inserting new rows.
type CostSetting struct {
	ID                  uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AdvertisingPercent  decimal.Decimal `gorm:"column:advertising_percent;type:numeric(6,4);not null;default:0"`
	FBACostPercent      decimal.Decimal `gorm:"column:fba_cost_percent;type:numeric(6,4);not null;default:0"`
	FBMCostPercent      decimal.Decimal `gorm:"column:fbm_cost_percent;type:numeric(6,4);not null;default:0"`
	RefundRecoveryRate  decimal.Decimal `gorm:"column:refund_recovery_rate;type:numeric(6,4);not null;default:0"`
	CustomsMarketplaces pq.StringArray  `gorm:"column:customs_marketplaces;type:text[]"`
	CreatedAt           time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (CostSetting) TableName() string {
	return "cost_settings"
}
