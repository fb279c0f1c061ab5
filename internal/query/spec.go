package query

import (
	"time"

	"github.com/profitlens/profitlens-backend/pkg/enums"
	pkgerrors "github.com/profitlens/profitlens-backend/pkg/errors"
)

// SortDirection orders query results by the computed metric.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Filters narrow the transaction population before grouping. All conditions
// are combined with AND; zero values mean "no restriction".
type Filters struct {
	Marketplaces []enums.Marketplace `json:"marketplaces,omitempty"`
	Fulfillment  enums.Fulfillment   `json:"fulfillment,omitempty"`
	Category     string              `json:"category,omitempty"`
}

// DateRange selects the reporting window, either by preset or by explicit
// bounds when the preset is custom.
type DateRange struct {
	Preset enums.DatePreset `json:"preset"`
	Start  *time.Time       `json:"start,omitempty"`
	End    *time.Time       `json:"end,omitempty"`
}

// Spec is one declarative query: a single metric, grouped along one
// dimension, over a filtered window, ranked and truncated.
type Spec struct {
	Metric    enums.QueryMetric    `json:"metric"`
	GroupBy   enums.QueryDimension `json:"groupBy"`
	Filters   Filters              `json:"filters"`
	DateRange DateRange            `json:"dateRange"`
	Sort      SortDirection        `json:"sort,omitempty"`
	Limit     int                  `json:"limit,omitempty"`
}

// Normalize fills defaults and validates the spec against the configured
// limits. The returned spec is the one the engine executes.
func (s Spec) Normalize(defaultLimit, maxLimit int) (Spec, error) {
	if !s.Metric.IsValid() {
		return Spec{}, pkgerrors.New(pkgerrors.CodeInvalidQuery, "unsupported metric "+string(s.Metric))
	}
	if !s.GroupBy.IsValid() {
		return Spec{}, pkgerrors.New(pkgerrors.CodeInvalidQuery, "unsupported dimension "+string(s.GroupBy))
	}
	for _, m := range s.Filters.Marketplaces {
		if !m.IsValid() {
			return Spec{}, pkgerrors.New(pkgerrors.CodeInvalidQuery, "unknown marketplace filter "+string(m))
		}
	}
	if s.Filters.Fulfillment != "" && !s.Filters.Fulfillment.IsValid() {
		return Spec{}, pkgerrors.New(pkgerrors.CodeInvalidQuery, "unknown fulfillment filter "+string(s.Filters.Fulfillment))
	}
	if s.DateRange.Preset == enums.PresetCustom {
		if s.DateRange.Start == nil || s.DateRange.End == nil {
			return Spec{}, pkgerrors.New(pkgerrors.CodeInvalidQuery, "custom date range requires start and end")
		}
		if s.DateRange.End.Before(*s.DateRange.Start) {
			return Spec{}, pkgerrors.New(pkgerrors.CodeInvalidQuery, "custom date range end precedes start")
		}
	}

	switch s.Sort {
	case SortAsc, SortDesc:
	case "":
		s.Sort = SortDesc
	default:
		return Spec{}, pkgerrors.New(pkgerrors.CodeInvalidQuery, "sort must be asc or desc")
	}

	if s.Limit <= 0 {
		s.Limit = defaultLimit
	}
	if maxLimit > 0 && s.Limit > maxLimit {
		s.Limit = maxLimit
	}
	return s, nil
}
