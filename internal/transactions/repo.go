package transactions

import (
	"context"
	"errors"
	"time"

	"github.com/profitlens/profitlens-backend/internal/rollup"
	"github.com/profitlens/profitlens-backend/pkg/db/models"
	"github.com/profitlens/profitlens-backend/pkg/enums"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a transactions repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) InsertTransactions(ctx context.Context, rows []models.MarketplaceTransaction) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}},
			DoNothing: true,
		}).
		Create(&rows)
	if result.Error != nil {
		return 0, result.Error
	}
	return int(result.RowsAffected), nil
}

func (r *repository) TransactionsInRange(ctx context.Context, start, end time.Time, marketplaces []enums.Marketplace) ([]rollup.Transaction, error) {
	query := r.db.WithContext(ctx).
		Model(&models.MarketplaceTransaction{}).
		Where("occurred_on >= ? AND occurred_on <= ?", start, end)
	if len(marketplaces) > 0 {
		query = query.Where("marketplace IN ?", marketplaces)
	}

	var rows []models.MarketplaceTransaction
	if err := query.Order("occurred_on ASC, event_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	txns := make([]rollup.Transaction, 0, len(rows))
	for _, row := range rows {
		txns = append(txns, toDomain(row))
	}
	return txns, nil
}

func (r *repository) CostConfiguration(ctx context.Context) (rollup.CostConfiguration, error) {
	cfg := rollup.CostConfiguration{
		CategoryCosts: map[string]rollup.CategoryCost{},
		ShippingRates: map[rollup.ShippingKey]decimal.Decimal{},
	}

	var setting models.CostSetting
	err := r.db.WithContext(ctx).Order("created_at DESC").First(&setting).Error
	switch {
	case err == nil:
		cfg.AdvertisingPercent = setting.AdvertisingPercent
		cfg.FBACostPercent = setting.FBACostPercent
		cfg.FBMCostPercent = setting.FBMCostPercent
		cfg.RefundRecoveryRate = setting.RefundRecoveryRate
		for _, code := range setting.CustomsMarketplaces {
			if m, parseErr := enums.ParseMarketplace(code); parseErr == nil {
				cfg.CustomsMarketplaces = append(cfg.CustomsMarketplaces, m)
			}
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// No settings yet; percentages stay zero.
	default:
		return rollup.CostConfiguration{}, err
	}

	var categoryCosts []models.CategoryCost
	if err := r.db.WithContext(ctx).Find(&categoryCosts).Error; err != nil {
		return rollup.CostConfiguration{}, err
	}
	for _, cost := range categoryCosts {
		cfg.CategoryCosts[cost.Category] = rollup.CategoryCost{
			AvgProductCost: cost.AvgProductCost,
			WeightClass:    cost.WeightClass,
		}
	}

	var shippingRates []models.ShippingRate
	if err := r.db.WithContext(ctx).Find(&shippingRates).Error; err != nil {
		return rollup.CostConfiguration{}, err
	}
	for _, rate := range shippingRates {
		cfg.ShippingRates[rollup.ShippingKey{WeightClass: rate.WeightClass, Route: rate.Route}] = rate.Rate
	}

	return cfg, nil
}

func (r *repository) Rates(ctx context.Context, base enums.Currency) (*rollup.RateTable, error) {
	var rows []models.ExchangeRate
	err := r.db.WithContext(ctx).
		Where("to_currency = ?", base).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	table := rollup.NewRateTable(base)
	for _, row := range rows {
		table.SetRate(row.FromCurrency, row.Rate)
	}
	return table, nil
}

func (r *repository) UpsertCategoryCosts(ctx context.Context, costs []models.CategoryCost) error {
	if len(costs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "category"}},
			DoUpdates: clause.AssignmentColumns([]string{"avg_product_cost", "weight_class", "updated_at"}),
		}).
		Create(&costs).Error
}

func (r *repository) UpsertShippingRates(ctx context.Context, rates []models.ShippingRate) error {
	if len(rates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "weight_class"}, {Name: "route"}},
			DoUpdates: clause.AssignmentColumns([]string{"rate", "updated_at"}),
		}).
		Create(&rates).Error
}

func (r *repository) UpsertExchangeRates(ctx context.Context, rates []models.ExchangeRate) error {
	if len(rates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "from_currency"}, {Name: "to_currency"}},
			DoUpdates: clause.AssignmentColumns([]string{"rate", "updated_at"}),
		}).
		Create(&rates).Error
}

func (r *repository) SaveCostSetting(ctx context.Context, setting *models.CostSetting) error {
	return r.db.WithContext(ctx).Create(setting).Error
}

func toDomain(row models.MarketplaceTransaction) rollup.Transaction {
	return rollup.Transaction{
		Date:        row.OccurredOn,
		Marketplace: row.Marketplace,
		Type:        row.Type,
		SKU:         row.SKU,
		ProductName: row.ProductName,
		ParentID:    row.ParentID,
		Category:    row.Category,
		Fulfillment: row.Fulfillment,
		OrderID:     row.OrderID,
		Currency:    row.Currency,
		Quantity:    row.Quantity,

		ProductSales:       row.ProductSales,
		PromotionalRebates: row.PromotionalRebates,
		SellingFees:        row.SellingFees,
		FBAFees:            row.FBAFees,
		VAT:                row.VAT,
		CustomsDuty:        row.CustomsDuty,
		DDPFee:             row.DDPFee,
		WarehouseCost:      row.WarehouseCost,
		GSTCost:            row.GSTCost,
	}
}
