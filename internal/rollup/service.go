package rollup

import (
	"context"
	"errors"
	"time"

	"github.com/profitlens/profitlens-backend/pkg/config"
	"github.com/profitlens/profitlens-backend/pkg/enums"
	pkgerrors "github.com/profitlens/profitlens-backend/pkg/errors"
	"github.com/profitlens/profitlens-backend/pkg/logger"
	"github.com/profitlens/profitlens-backend/pkg/metrics"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

// TransactionSource loads settlement rows for an aggregation window.
type TransactionSource interface {
	TransactionsInRange(ctx context.Context, start, end time.Time, marketplaces []enums.Marketplace) ([]Transaction, error)
}

// ConfigSource loads the cost configuration snapshot for a run.
type ConfigSource interface {
	CostConfiguration(ctx context.Context) (CostConfiguration, error)
}

// RateSource loads the exchange-rate table targeting the given base currency.
type RateSource interface {
	Rates(ctx context.Context, base enums.Currency) (*RateTable, error)
}

// Window bounds one aggregation run.
type Window struct {
	Start        time.Time
	End          time.Time
	Marketplaces []enums.Marketplace
}

// Service runs whole aggregation pipelines against the configured sources.
// Entities are rebuilt from raw rows on every call; nothing is mutated in
// place between runs.
type Service struct {
	txns    TransactionSource
	costs   ConfigSource
	rates   RateSource
	log     *logger.Logger
	metrics *metrics.RollupMetrics

	cfg         config.RollupConfig
	base        enums.Currency
	materiality decimal.Decimal
}

func NewService(
	txns TransactionSource,
	costs ConfigSource,
	rates RateSource,
	log *logger.Logger,
	m *metrics.RollupMetrics,
	cfg config.RollupConfig,
) (*Service, error) {
	base, err := enums.ParseCurrency(cfg.BaseCurrency)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid base currency")
	}
	materiality, err := decimal.NewFromString(cfg.MaterialityThreshold)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid materiality threshold")
	}
	return &Service{
		txns:        txns,
		costs:       costs,
		rates:       rates,
		log:         log,
		metrics:     m,
		cfg:         cfg,
		base:        base,
		materiality: materiality,
	}, nil
}

// BaseCurrency returns the currency every entity is reported in.
func (s *Service) BaseCurrency() enums.Currency {
	return s.base
}

// MaterialityThreshold returns the revenue floor for country comparisons.
func (s *Service) MaterialityThreshold() decimal.Decimal {
	return s.materiality
}

// SKUEntities aggregates the window's transactions into SKU-level entities.
// splitByMarketplace keys groups per country, which the country comparator
// and the per-country views require.
func (s *Service) SKUEntities(ctx context.Context, window Window, splitByMarketplace bool) (Report, error) {
	txns, cfg, rates, err := s.loadInputs(ctx, window)
	if err != nil {
		return Report{}, err
	}

	report, err := AggregateSKUs(ctx, txns, cfg, rates, AggregateOptions{
		SplitByMarketplace: splitByMarketplace,
		Workers:            s.cfg.AggregationWorkers,
	})
	if err != nil {
		return Report{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sku aggregation failed")
	}

	s.observeReport(ctx, report)
	return report, nil
}

// ProductEntities rolls SKU entities up one level.
func (s *Service) ProductEntities(ctx context.Context, window Window, splitByMarketplace bool) ([]AggregatedEntity, error) {
	report, err := s.SKUEntities(ctx, window, splitByMarketplace)
	if err != nil {
		return nil, err
	}
	return RollUp(report.Entities, enums.LevelProduct, s.productKey(splitByMarketplace)), nil
}

// ParentEntities rolls products up into parent listings.
func (s *Service) ParentEntities(ctx context.Context, window Window) ([]AggregatedEntity, error) {
	products, err := s.ProductEntities(ctx, window, false)
	if err != nil {
		return nil, err
	}
	return RollUp(products, enums.LevelParent, ParentKey), nil
}

// CategoryEntities rolls parents up into categories.
func (s *Service) CategoryEntities(ctx context.Context, window Window) ([]AggregatedEntity, error) {
	parents, err := s.ParentEntities(ctx, window)
	if err != nil {
		return nil, err
	}
	return RollUp(parents, enums.LevelCategory, CategoryKey), nil
}

// CountryComparisons names each product's best and worst marketplace over
// the window.
func (s *Service) CountryComparisons(ctx context.Context, window Window) (map[string]CountryComparison, error) {
	products, err := s.ProductEntities(ctx, window, true)
	if err != nil {
		return nil, err
	}
	return BestAndWorst(products, s.materiality), nil
}

func (s *Service) loadInputs(ctx context.Context, window Window) ([]Transaction, CostConfiguration, *RateTable, error) {
	txns, err := s.txns.TransactionsInRange(ctx, window.Start, window.End, window.Marketplaces)
	if err != nil {
		return nil, CostConfiguration{}, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading transactions")
	}
	cfg, err := s.costs.CostConfiguration(ctx)
	if err != nil {
		return nil, CostConfiguration{}, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cost configuration")
	}
	rates, err := s.rates.Rates(ctx, s.base)
	if err != nil {
		return nil, CostConfiguration{}, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading exchange rates")
	}
	return txns, cfg, rates, nil
}

func (s *Service) observeReport(ctx context.Context, report Report) {
	for marketplace, rows := range report.RowsByMarketplace {
		s.metrics.AddRowsProcessed(marketplace, rows)
	}
	for _, entity := range report.Entities {
		if !entity.HasCostData {
			s.metrics.IncMissingCostData(entity.Category)
		}
	}

	for _, rowErr := range multierr.Errors(report.RowErrors) {
		var convErr *ConversionError
		if errors.As(rowErr, &convErr) {
			s.metrics.IncConversionFailure(convErr.Pair())
		}
	}

	if report.RowsSkipped > 0 {
		s.log.Error(
			s.log.WithField(ctx, "rows_skipped", report.RowsSkipped),
			"rows excluded from aggregation",
			report.RowErrors,
		)
	}
}

func (s *Service) productKey(splitByMarketplace bool) GroupKeyFunc {
	if !splitByMarketplace {
		return ProductKey
	}
	return func(child AggregatedEntity) (GroupIdentity, bool) {
		identity, ok := ProductKey(child)
		if !ok {
			return GroupIdentity{}, false
		}
		identity.Key = identity.Key + ":" + child.Marketplace.String()
		identity.Marketplace = child.Marketplace
		return identity, true
	}
}
