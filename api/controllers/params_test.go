package controllers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/profitlens/profitlens-backend/pkg/enums"
	pkgerrors "github.com/profitlens/profitlens-backend/pkg/errors"
)

func TestRollupWindowDefaultsToTrailing30Days(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/rollup/skus", nil)

	window, err := rollupWindow(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	span := window.End.Sub(window.Start)
	if span < 29*24*time.Hour || span > 31*24*time.Hour {
		t.Fatalf("expected roughly 30 day window, got %s", span)
	}
	if len(window.Marketplaces) != 0 {
		t.Fatalf("expected no marketplace filter, got %v", window.Marketplaces)
	}
}

func TestRollupWindowParsesBoundsAndMarketplaces(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/rollup/skus?start=2026-01-01&end=2026-01-31&marketplaces=US,de", nil)

	window, err := rollupWindow(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if window.Start.Format("2006-01-02") != "2026-01-01" {
		t.Fatalf("unexpected start %s", window.Start)
	}
	if window.End.Format("2006-01-02") != "2026-01-31" {
		t.Fatalf("expected end on the requested day, got %s", window.End)
	}
	if window.End.Hour() != 23 {
		t.Fatalf("expected end snapped to end of day, got %s", window.End)
	}
	want := []enums.Marketplace{enums.MarketplaceUS, enums.MarketplaceDE}
	if len(window.Marketplaces) != len(want) {
		t.Fatalf("expected %v, got %v", want, window.Marketplaces)
	}
	for i := range want {
		if window.Marketplaces[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, window.Marketplaces)
		}
	}
}

func TestRollupWindowRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"malformed date", "/x?start=January"},
		{"inverted bounds", "/x?start=2026-02-01&end=2026-01-01"},
		{"unknown marketplace", "/x?marketplaces=ZZ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.url, nil)
			_, err := rollupWindow(r)
			if err == nil {
				t.Fatal("expected an error")
			}
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestSplitParam(t *testing.T) {
	if splitParam(httptest.NewRequest("GET", "/x", nil)) {
		t.Fatal("expected split to default to false")
	}
	if !splitParam(httptest.NewRequest("GET", "/x?split=true", nil)) {
		t.Fatal("expected split=true to enable splitting")
	}
	if !splitParam(httptest.NewRequest("GET", "/x?split=1", nil)) {
		t.Fatal("expected split=1 to enable splitting")
	}
}

func TestCountriesParam(t *testing.T) {
	if countriesParam(httptest.NewRequest("GET", "/x", nil)) {
		t.Fatal("expected countries to default to false")
	}
	if !countriesParam(httptest.NewRequest("GET", "/x?countries=TRUE", nil)) {
		t.Fatal("expected countries=TRUE to be accepted")
	}
}
