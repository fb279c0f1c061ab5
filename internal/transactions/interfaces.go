package transactions

import (
	"context"
	"time"

	"github.com/profitlens/profitlens-backend/internal/rollup"
	"github.com/profitlens/profitlens-backend/pkg/db/models"
	"github.com/profitlens/profitlens-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository reads and writes settlement rows, the cost tables, and the
// exchange-rate table. It also serves as the rollup service's
// TransactionSource, ConfigSource, and RateSource.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	// InsertTransactions writes rows, ignoring any whose event id was
	// already recorded. Returns the number of newly inserted rows.
	InsertTransactions(ctx context.Context, rows []models.MarketplaceTransaction) (int, error)

	TransactionsInRange(ctx context.Context, start, end time.Time, marketplaces []enums.Marketplace) ([]rollup.Transaction, error)
	CostConfiguration(ctx context.Context) (rollup.CostConfiguration, error)
	Rates(ctx context.Context, base enums.Currency) (*rollup.RateTable, error)

	UpsertCategoryCosts(ctx context.Context, costs []models.CategoryCost) error
	UpsertShippingRates(ctx context.Context, rates []models.ShippingRate) error
	UpsertExchangeRates(ctx context.Context, rates []models.ExchangeRate) error
	SaveCostSetting(ctx context.Context, setting *models.CostSetting) error
}
