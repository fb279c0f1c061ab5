package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/profitlens/profitlens-backend/api/responses"
	"github.com/profitlens/profitlens-backend/internal/export"
	"github.com/profitlens/profitlens-backend/internal/rollup"
	"github.com/profitlens/profitlens-backend/pkg/enums"
	pkgerrors "github.com/profitlens/profitlens-backend/pkg/errors"
	"github.com/profitlens/profitlens-backend/pkg/logger"
)

// ExportController builds the versioned pricing payloads.
type ExportController struct {
	svc   *rollup.Service
	costs rollup.ConfigSource
	logg  *logger.Logger
	now   func() time.Time
}

func NewExportController(svc *rollup.Service, costs rollup.ConfigSource, logg *logger.Logger) *ExportController {
	return &ExportController{svc: svc, costs: costs, logg: logg, now: time.Now}
}

// Pricing exports the payload for a single marketplace.
func (c *ExportController) Pricing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	raw := strings.TrimSpace(r.URL.Query().Get("marketplace"))
	if raw == "" {
		responses.WriteError(ctx, c.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "marketplace is required"))
		return
	}
	marketplace, err := enums.ParseMarketplace(strings.ToUpper(raw))
	if err != nil {
		responses.WriteError(ctx, c.logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown marketplace").
			WithDetails(map[string]any{"marketplace": raw}))
		return
	}

	window, err := rollupWindow(r)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	window.Marketplaces = []enums.Marketplace{marketplace}

	report, err := c.svc.SKUEntities(ctx, window, false)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	cfg, err := c.costs.CostConfiguration(ctx)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cost configuration"))
		return
	}

	payload := export.BuildPricingPayload(export.Params{
		Entities:    report.Entities,
		Config:      cfg,
		Marketplace: marketplace,
		Start:       window.Start,
		End:         window.End,
		GeneratedAt: c.now(),
	})
	responses.WriteSuccess(w, payload)
}

// PricingBulk exports one payload per marketplace seen in the window.
func (c *ExportController) PricingBulk(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	window, err := rollupWindow(r)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	report, err := c.svc.SKUEntities(ctx, window, true)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	cfg, err := c.costs.CostConfiguration(ctx)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cost configuration"))
		return
	}

	perMarketplace := map[enums.Marketplace][]rollup.AggregatedEntity{}
	for _, entity := range report.Entities {
		perMarketplace[entity.Marketplace] = append(perMarketplace[entity.Marketplace], entity)
	}

	payload := export.BuildBulkPayload(perMarketplace, cfg, window.Start, window.End, c.now())
	responses.WriteSuccess(w, payload)
}
