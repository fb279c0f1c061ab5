package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/profitlens/profitlens-backend/api/responses"
	"github.com/profitlens/profitlens-backend/api/validators"
	"github.com/profitlens/profitlens-backend/pkg/db/models"
	"github.com/profitlens/profitlens-backend/pkg/enums"
	pkgerrors "github.com/profitlens/profitlens-backend/pkg/errors"
	"github.com/profitlens/profitlens-backend/pkg/logger"
)

// costStore is the slice of the repository the controller needs.
type costStore interface {
	UpsertCategoryCosts(ctx context.Context, costs []models.CategoryCost) error
	UpsertShippingRates(ctx context.Context, rates []models.ShippingRate) error
	UpsertExchangeRates(ctx context.Context, rates []models.ExchangeRate) error
	SaveCostSetting(ctx context.Context, setting *models.CostSetting) error
}

// CostsController manages the cost configuration the aggregation reads:
// category cost tables, shipping rates, exchange rates, and the global
// percentage settings.
type CostsController struct {
	store costStore
	logg  *logger.Logger
}

func NewCostsController(store costStore, logg *logger.Logger) *CostsController {
	return &CostsController{store: store, logg: logg}
}

type categoryCostInput struct {
	Category       string `json:"category" validate:"required"`
	AvgProductCost string `json:"avg_product_cost" validate:"required"`
	WeightClass    string `json:"weight_class"`
}

type upsertCategoryCostsRequest struct {
	Costs []categoryCostInput `json:"costs" validate:"required,min=1,dive"`
}

func (c *CostsController) UpsertCategoryCosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req upsertCategoryCostsRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	rows := make([]models.CategoryCost, 0, len(req.Costs))
	for _, in := range req.Costs {
		cost, err := parseAmount(in.AvgProductCost, "avg_product_cost")
		if err != nil {
			responses.WriteError(ctx, c.logg, w, err)
			return
		}
		weightClass := in.WeightClass
		if weightClass == "" {
			weightClass = "standard"
		}
		rows = append(rows, models.CategoryCost{
			Category:       in.Category,
			AvgProductCost: cost,
			WeightClass:    weightClass,
		})
	}

	if err := c.store.UpsertCategoryCosts(ctx, rows); err != nil {
		responses.WriteError(ctx, c.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving category costs"))
		return
	}
	responses.WriteSuccess(w, map[string]any{"updated": len(rows)})
}

type shippingRateInput struct {
	WeightClass string `json:"weight_class" validate:"required"`
	Route       string `json:"route" validate:"required"`
	Rate        string `json:"rate" validate:"required"`
}

type upsertShippingRatesRequest struct {
	Rates []shippingRateInput `json:"rates" validate:"required,min=1,dive"`
}

func (c *CostsController) UpsertShippingRates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req upsertShippingRatesRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	rows := make([]models.ShippingRate, 0, len(req.Rates))
	for _, in := range req.Rates {
		rate, err := parseAmount(in.Rate, "rate")
		if err != nil {
			responses.WriteError(ctx, c.logg, w, err)
			return
		}
		rows = append(rows, models.ShippingRate{
			WeightClass: in.WeightClass,
			Route:       in.Route,
			Rate:        rate,
		})
	}

	if err := c.store.UpsertShippingRates(ctx, rows); err != nil {
		responses.WriteError(ctx, c.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving shipping rates"))
		return
	}
	responses.WriteSuccess(w, map[string]any{"updated": len(rows)})
}

type exchangeRateInput struct {
	From string `json:"from" validate:"required"`
	To   string `json:"to" validate:"required"`
	Rate string `json:"rate" validate:"required"`
}

type upsertExchangeRatesRequest struct {
	Rates []exchangeRateInput `json:"rates" validate:"required,min=1,dive"`
}

func (c *CostsController) UpsertExchangeRates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req upsertExchangeRatesRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	rows := make([]models.ExchangeRate, 0, len(req.Rates))
	for _, in := range req.Rates {
		from, err := enums.ParseCurrency(strings.ToUpper(in.From))
		if err != nil {
			responses.WriteError(ctx, c.logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown currency").
				WithDetails(map[string]any{"from": in.From}))
			return
		}
		to, err := enums.ParseCurrency(strings.ToUpper(in.To))
		if err != nil {
			responses.WriteError(ctx, c.logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown currency").
				WithDetails(map[string]any{"to": in.To}))
			return
		}
		rate, err := parseAmount(in.Rate, "rate")
		if err != nil {
			responses.WriteError(ctx, c.logg, w, err)
			return
		}
		if rate.IsZero() {
			responses.WriteError(ctx, c.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "rate must be positive").
				WithDetails(map[string]any{"from": in.From, "to": in.To}))
			return
		}
		rows = append(rows, models.ExchangeRate{
			FromCurrency: from,
			ToCurrency:   to,
			Rate:         rate,
		})
	}

	if err := c.store.UpsertExchangeRates(ctx, rows); err != nil {
		responses.WriteError(ctx, c.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving exchange rates"))
		return
	}
	responses.WriteSuccess(w, map[string]any{"updated": len(rows)})
}

type costSettingRequest struct {
	AdvertisingPercent  string   `json:"advertising_percent" validate:"required"`
	FBACostPercent      string   `json:"fba_cost_percent" validate:"required"`
	FBMCostPercent      string   `json:"fbm_cost_percent" validate:"required"`
	RefundRecoveryRate  string   `json:"refund_recovery_rate" validate:"required"`
	CustomsMarketplaces []string `json:"customs_marketplaces"`
}

// SaveSetting inserts a new settings row. History is kept; the newest row is
// the active configuration.
func (c *CostsController) SaveSetting(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req costSettingRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	setting := models.CostSetting{ID: uuid.New()}
	fields := []struct {
		name string
		raw  string
		dest *decimal.Decimal
	}{
		{"advertising_percent", req.AdvertisingPercent, &setting.AdvertisingPercent},
		{"fba_cost_percent", req.FBACostPercent, &setting.FBACostPercent},
		{"fbm_cost_percent", req.FBMCostPercent, &setting.FBMCostPercent},
		{"refund_recovery_rate", req.RefundRecoveryRate, &setting.RefundRecoveryRate},
	}
	for _, f := range fields {
		value, err := parseAmount(f.raw, f.name)
		if err != nil {
			responses.WriteError(ctx, c.logg, w, err)
			return
		}
		if value.GreaterThan(decimal.NewFromInt(1)) {
			responses.WriteError(ctx, c.logg, w, pkgerrors.New(pkgerrors.CodeValidation, f.name+" must lie within [0, 1]"))
			return
		}
		*f.dest = value
	}

	for _, code := range req.CustomsMarketplaces {
		m, err := enums.ParseMarketplace(strings.ToUpper(code))
		if err != nil {
			responses.WriteError(ctx, c.logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown marketplace").
				WithDetails(map[string]any{"marketplace": code}))
			return
		}
		setting.CustomsMarketplaces = append(setting.CustomsMarketplaces, m.String())
	}

	if err := c.store.SaveCostSetting(ctx, &setting); err != nil {
		responses.WriteError(ctx, c.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving cost settings"))
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"id": setting.ID})
}

func parseAmount(raw, field string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid decimal").
			WithDetails(map[string]any{"field": field})
	}
	if value.IsNegative() {
		return decimal.Decimal{}, pkgerrors.New(pkgerrors.CodeValidation, field+" must not be negative")
	}
	return value, nil
}
