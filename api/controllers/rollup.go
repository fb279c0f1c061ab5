package controllers

import (
	"net/http"

	"github.com/profitlens/profitlens-backend/api/responses"
	"github.com/profitlens/profitlens-backend/internal/rollup"
	"github.com/profitlens/profitlens-backend/pkg/logger"
)

// RollupController serves the aggregated entity views.
type RollupController struct {
	svc  *rollup.Service
	logg *logger.Logger
}

func NewRollupController(svc *rollup.Service, logg *logger.Logger) *RollupController {
	return &RollupController{svc: svc, logg: logg}
}

func (c *RollupController) SKUs(w http.ResponseWriter, r *http.Request) {
	window, err := rollupWindow(r)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	report, err := c.svc.SKUEntities(r.Context(), window, splitParam(r))
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	responses.WriteSuccess(w, map[string]any{
		"entities":      report.Entities,
		"rowsProcessed": report.RowsProcessed,
		"rowsSkipped":   report.RowsSkipped,
	})
}

func (c *RollupController) Products(w http.ResponseWriter, r *http.Request) {
	window, err := rollupWindow(r)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	entities, err := c.svc.ProductEntities(r.Context(), window, splitParam(r))
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	body := map[string]any{"entities": entities}
	if countriesParam(r) {
		comparisons, err := c.svc.CountryComparisons(r.Context(), window)
		if err != nil {
			responses.WriteError(r.Context(), c.logg, w, err)
			return
		}
		body["countries"] = comparisons
	}

	responses.WriteSuccess(w, body)
}

func (c *RollupController) Parents(w http.ResponseWriter, r *http.Request) {
	window, err := rollupWindow(r)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	entities, err := c.svc.ParentEntities(r.Context(), window)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	responses.WriteSuccess(w, map[string]any{"entities": entities})
}

func (c *RollupController) Categories(w http.ResponseWriter, r *http.Request) {
	window, err := rollupWindow(r)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	entities, err := c.svc.CategoryEntities(r.Context(), window)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	responses.WriteSuccess(w, map[string]any{"entities": entities})
}

func (c *RollupController) Countries(w http.ResponseWriter, r *http.Request) {
	window, err := rollupWindow(r)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	comparisons, err := c.svc.CountryComparisons(r.Context(), window)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	responses.WriteSuccess(w, map[string]any{
		"comparisons": comparisons,
		"materiality": c.svc.MaterialityThreshold(),
	})
}
