package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/profitlens/profitlens-backend/pkg/db/models"
	"github.com/profitlens/profitlens-backend/pkg/enums"
)

type fakeCostStore struct {
	categoryCosts []models.CategoryCost
	shippingRates []models.ShippingRate
	exchangeRates []models.ExchangeRate
	setting       *models.CostSetting
}

func (f *fakeCostStore) UpsertCategoryCosts(_ context.Context, costs []models.CategoryCost) error {
	f.categoryCosts = costs
	return nil
}

func (f *fakeCostStore) UpsertShippingRates(_ context.Context, rates []models.ShippingRate) error {
	f.shippingRates = rates
	return nil
}

func (f *fakeCostStore) UpsertExchangeRates(_ context.Context, rates []models.ExchangeRate) error {
	f.exchangeRates = rates
	return nil
}

func (f *fakeCostStore) SaveCostSetting(_ context.Context, setting *models.CostSetting) error {
	f.setting = setting
	return nil
}

func execCosts(t *testing.T, handler http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func TestCostsControllerUpsertCategoryCosts(t *testing.T) {
	store := &fakeCostStore{}
	ctrl := NewCostsController(store, nil)

	w := execCosts(t, ctrl.UpsertCategoryCosts, http.MethodPut, "/api/v1/costs/categories",
		`{"costs":[{"category":"Kitchen","avg_product_cost":"4.25"},{"category":"Garden","avg_product_cost":"9.10","weight_class":"oversize"}]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(store.categoryCosts) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(store.categoryCosts))
	}
	if store.categoryCosts[0].WeightClass != "standard" {
		t.Fatalf("missing weight class must default to standard: %q", store.categoryCosts[0].WeightClass)
	}
	if store.categoryCosts[1].WeightClass != "oversize" {
		t.Fatalf("weight class not carried: %q", store.categoryCosts[1].WeightClass)
	}
}

func TestCostsControllerRejectsBadAmounts(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed decimal", `{"costs":[{"category":"Kitchen","avg_product_cost":"abc"}]}`},
		{"negative cost", `{"costs":[{"category":"Kitchen","avg_product_cost":"-1"}]}`},
		{"empty list", `{"costs":[]}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeCostStore{}
			ctrl := NewCostsController(store, nil)

			w := execCosts(t, ctrl.UpsertCategoryCosts, http.MethodPut, "/api/v1/costs/categories", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
			if store.categoryCosts != nil {
				t.Fatal("invalid input must not reach the store")
			}
		})
	}
}

func TestCostsControllerUpsertExchangeRates(t *testing.T) {
	store := &fakeCostStore{}
	ctrl := NewCostsController(store, nil)

	w := execCosts(t, ctrl.UpsertExchangeRates, http.MethodPut, "/api/v1/costs/exchange-rates",
		`{"rates":[{"from":"eur","to":"USD","rate":"1.08"}]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(store.exchangeRates) != 1 || store.exchangeRates[0].FromCurrency != enums.CurrencyEUR {
		t.Fatalf("unexpected rows: %+v", store.exchangeRates)
	}

	w = execCosts(t, ctrl.UpsertExchangeRates, http.MethodPut, "/api/v1/costs/exchange-rates",
		`{"rates":[{"from":"EUR","to":"USD","rate":"0"}]}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("zero rate must be rejected: %d", w.Code)
	}
}

func TestCostsControllerUpsertShippingRates(t *testing.T) {
	store := &fakeCostStore{}
	ctrl := NewCostsController(store, nil)

	w := execCosts(t, ctrl.UpsertShippingRates, http.MethodPut, "/api/v1/costs/shipping-rates",
		`{"rates":[{"weight_class":"standard","route":"default","rate":"3.40"}]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(store.shippingRates) != 1 || store.shippingRates[0].Route != "default" {
		t.Fatalf("unexpected rows: %+v", store.shippingRates)
	}
}

func TestCostsControllerSaveSetting(t *testing.T) {
	store := &fakeCostStore{}
	ctrl := NewCostsController(store, nil)

	w := execCosts(t, ctrl.SaveSetting, http.MethodPost, "/api/v1/costs/settings",
		`{"advertising_percent":"0.05","fba_cost_percent":"0.12","fbm_cost_percent":"0.08","refund_recovery_rate":"0.5","customs_marketplaces":["us","DE"]}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if store.setting == nil {
		t.Fatal("setting not saved")
	}
	if !store.setting.RefundRecoveryRate.Equal(decimal.RequireFromString("0.5")) {
		t.Fatalf("refund recovery rate: %s", store.setting.RefundRecoveryRate)
	}
	if len(store.setting.CustomsMarketplaces) != 2 || store.setting.CustomsMarketplaces[0] != "US" {
		t.Fatalf("customs marketplaces not normalized: %v", store.setting.CustomsMarketplaces)
	}

	store = &fakeCostStore{}
	ctrl = NewCostsController(store, nil)
	w = execCosts(t, ctrl.SaveSetting, http.MethodPost, "/api/v1/costs/settings",
		`{"advertising_percent":"0.05","fba_cost_percent":"0.12","fbm_cost_percent":"0.08","refund_recovery_rate":"1.5"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("out-of-range recovery rate must be rejected: %d", w.Code)
	}
	if store.setting != nil {
		t.Fatal("invalid setting must not be saved")
	}
}
