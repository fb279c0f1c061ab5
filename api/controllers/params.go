package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/profitlens/profitlens-backend/api/validators"
	"github.com/profitlens/profitlens-backend/internal/rollup"
	"github.com/profitlens/profitlens-backend/pkg/enums"
	pkgerrors "github.com/profitlens/profitlens-backend/pkg/errors"
)

const defaultWindowDays = 30

// rollupWindow reads start/end/marketplaces query parameters into an
// aggregation window. Missing bounds default to the trailing 30 days.
func rollupWindow(r *http.Request) (rollup.Window, error) {
	now := time.Now()

	start, hasStart, err := validators.ParseQueryDate(r, "start")
	if err != nil {
		return rollup.Window{}, err
	}
	end, hasEnd, err := validators.ParseQueryDate(r, "end")
	if err != nil {
		return rollup.Window{}, err
	}

	if !hasEnd {
		end = now
	} else {
		end = end.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	if !hasStart {
		start = end.AddDate(0, 0, -defaultWindowDays)
	}
	if end.Before(start) {
		return rollup.Window{}, pkgerrors.New(pkgerrors.CodeValidation, "end must not precede start").
			WithDetails(map[string]any{"start": start.Format("2006-01-02"), "end": end.Format("2006-01-02")})
	}

	marketplaces, err := marketplacesParam(r)
	if err != nil {
		return rollup.Window{}, err
	}

	return rollup.Window{Start: start, End: end, Marketplaces: marketplaces}, nil
}

func marketplacesParam(r *http.Request) ([]enums.Marketplace, error) {
	values := validators.ParseQueryList(r, "marketplaces")
	if len(values) == 0 {
		return nil, nil
	}
	marketplaces := make([]enums.Marketplace, 0, len(values))
	for _, v := range values {
		m, err := enums.ParseMarketplace(strings.ToUpper(v))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown marketplace").
				WithDetails(map[string]any{"marketplace": v})
		}
		marketplaces = append(marketplaces, m)
	}
	return marketplaces, nil
}

func splitParam(r *http.Request) bool {
	return boolParam(r, "split")
}

func countriesParam(r *http.Request) bool {
	return boolParam(r, "countries")
}

func boolParam(r *http.Request, key string) bool {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	return strings.EqualFold(v, "true") || v == "1"
}
