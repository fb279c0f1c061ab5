package controllers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/profitlens/profitlens-backend/api/responses"
	"github.com/profitlens/profitlens-backend/api/validators"
	"github.com/profitlens/profitlens-backend/internal/query"
	"github.com/profitlens/profitlens-backend/internal/rollup"
	"github.com/profitlens/profitlens-backend/pkg/enums"
	pkgerrors "github.com/profitlens/profitlens-backend/pkg/errors"
	"github.com/profitlens/profitlens-backend/pkg/logger"
	"github.com/profitlens/profitlens-backend/pkg/metrics"
	"github.com/profitlens/profitlens-backend/pkg/redis"
)

// queryCache is the slice of the redis client the controller needs.
type queryCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	QueryCacheKey(hash string) string
}

// QueryController executes declarative queries, serving repeated specs from
// the result cache.
type QueryController struct {
	engine  *query.Engine
	txns    rollup.TransactionSource
	costs   rollup.ConfigSource
	rates   rollup.RateSource
	base    enums.Currency
	cache   queryCache
	ttl     time.Duration
	metrics *metrics.RollupMetrics
	logg    *logger.Logger
}

type QueryControllerParams struct {
	Engine       *query.Engine
	Transactions rollup.TransactionSource
	Costs        rollup.ConfigSource
	Rates        rollup.RateSource
	BaseCurrency enums.Currency
	Cache        queryCache
	CacheTTL     time.Duration
	Metrics      *metrics.RollupMetrics
	Logger       *logger.Logger
}

func NewQueryController(p QueryControllerParams) (*QueryController, error) {
	if p.Engine == nil {
		return nil, errors.New("engine is required")
	}
	if p.Transactions == nil || p.Costs == nil || p.Rates == nil {
		return nil, errors.New("transaction, cost, and rate sources are required")
	}
	return &QueryController{
		engine:  p.Engine,
		txns:    p.Transactions,
		costs:   p.Costs,
		rates:   p.Rates,
		base:    p.BaseCurrency,
		cache:   p.Cache,
		ttl:     p.CacheTTL,
		metrics: p.Metrics,
		logg:    p.Logger,
	}, nil
}

func (c *QueryController) Execute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var spec query.Spec
	if err := validators.DecodeJSONBody(r, &spec); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	if cached, ok := c.lookupCache(ctx, spec); ok {
		responses.WriteSuccess(w, cached)
		return
	}

	start, end := query.Resolve(spec.DateRange, time.Now())
	txns, err := c.txns.TransactionsInRange(ctx, start, end, spec.Filters.Marketplaces)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading transactions"))
		return
	}
	costCfg, err := c.costs.CostConfiguration(ctx)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cost configuration"))
		return
	}
	rates, err := c.rates.Rates(ctx, c.base)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading exchange rates"))
		return
	}

	began := time.Now()
	results, err := c.engine.Execute(txns, costCfg, rates, spec)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	c.metrics.ObserveQueryDuration(string(results.Metric), string(results.GroupBy), time.Since(began))

	c.storeCache(ctx, spec, results)
	responses.WriteSuccess(w, results)
}

func (c *QueryController) lookupCache(ctx context.Context, spec query.Spec) (query.Results, bool) {
	if c.cache == nil {
		return query.Results{}, false
	}
	key, err := c.cacheKey(spec)
	if err != nil {
		return query.Results{}, false
	}
	raw, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, redis.ErrCacheMiss) && c.logg != nil {
			c.logg.Warn(c.logg.WithField(ctx, "cache_key", key), "query cache lookup failed")
		}
		c.metrics.IncCacheMiss()
		return query.Results{}, false
	}
	var results query.Results
	if err := json.Unmarshal([]byte(raw), &results); err != nil {
		c.metrics.IncCacheMiss()
		return query.Results{}, false
	}
	c.metrics.IncCacheHit()
	return results, true
}

func (c *QueryController) storeCache(ctx context.Context, spec query.Spec, results query.Results) {
	if c.cache == nil || c.ttl <= 0 {
		return
	}
	key, err := c.cacheKey(spec)
	if err != nil {
		return
	}
	encoded, err := json.Marshal(results)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, string(encoded), c.ttl); err != nil && c.logg != nil {
		c.logg.Warn(c.logg.WithField(ctx, "cache_key", key), "query cache store failed")
	}
}

// cacheKey hashes the spec JSON so identical requests share an entry.
func (c *QueryController) cacheKey(spec query.Spec) (string, error) {
	encoded, err := json.Marshal(spec)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(encoded)
	return c.cache.QueryCacheKey(hex.EncodeToString(sum[:])), nil
}
