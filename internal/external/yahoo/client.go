package yahoo

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"time"

	"github.com/HarminderAI/Vedic-Market-Energy/internal/contracts"
	"github.com/HarminderAI/Vedic-Market-Energy/pkg/httputil"
	"github.com/HarminderAI/Vedic-Market-Energy/pkg/logger"
	"github.com/HarminderAI/Vedic-Market-Energy/pkg/redis"
)

// DefaultBaseURL is the public chart API host
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Client downloads daily bars from the chart API
// ⭐ SSOT: market data HTTP calls live here only
type Client struct {
	httpClient *httputil.Client
	baseURL    string
	cache      *redis.Cache
	logger     *logger.Logger
}

// NewClient creates a new chart client
func NewClient(httpClient *httputil.Client, baseURL string, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Client{httpClient: httpClient, baseURL: baseURL, logger: log}
}

// WithCache reuses series fetched earlier the same day
func (c *Client) WithCache(cache *redis.Cache) *Client {
	c.cache = cache
	return c
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Symbol    string `json:"symbol"`
		GMTOffset int    `json:"gmtoffset"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*float64 `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

// FetchSeries implements contracts.SeriesFetcher. Every failure is
// reported as contracts.ErrNoData.
func (c *Client) FetchSeries(ctx context.Context, symbol string, lookbackDays int) (*contracts.PriceSeries, error) {
	cacheKey := redis.SeriesKey(symbol, lookbackDays, time.Now().UTC().Format("2006-01-02"))
	var cached contracts.PriceSeries
	if found, err := c.cache.Get(ctx, cacheKey, &cached); err == nil && found {
		return &cached, nil
	}

	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?range=%dd&interval=1d&includePrePost=false&events=div%%2Csplit",
		c.baseURL, url.PathEscape(symbol), lookbackDays)

	var resp chartResponse
	if err := c.httpClient.GetJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", symbol, contracts.ErrNoData, err)
	}

	series, err := parseChart(symbol, &resp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", symbol, contracts.ErrNoData, err)
	}

	if err := c.cache.Set(ctx, cacheKey, cacheable(series), redis.TTLSeries); err != nil {
		c.logger.WithError(err).WithField("symbol", symbol).Debug("Series cache write failed")
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"bars":   series.Len(),
	}).Debug("Fetched series")

	return series, nil
}

// parseChart converts the chart payload into bars. A bar without a close
// keeps a NaN close for the validator to drop; other missing prices fall
// back to the close and a missing volume to zero. A second bar on the
// same exchange date replaces the first.
func parseChart(symbol string, resp *chartResponse) (*contracts.PriceSeries, error) {
	if e := resp.Chart.Error; e != nil {
		return nil, fmt.Errorf("chart error %s: %s", e.Code, e.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("empty chart result")
	}

	res := resp.Chart.Result[0]
	if len(res.Indicators.Quote) == 0 || len(res.Timestamp) == 0 {
		return nil, fmt.Errorf("no quotes")
	}
	q := res.Indicators.Quote[0]
	loc := time.FixedZone("exchange", res.Meta.GMTOffset)

	series := &contracts.PriceSeries{Symbol: symbol, Bars: make([]contracts.Bar, 0, len(res.Timestamp))}
	for i, ts := range res.Timestamp {
		t := time.Unix(ts, 0).In(loc)
		bar := contracts.Bar{
			Date:  time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC),
			Close: at(q.Close, i, math.NaN()),
		}
		bar.Open = at(q.Open, i, bar.Close)
		bar.High = at(q.High, i, bar.Close)
		bar.Low = at(q.Low, i, bar.Close)
		bar.Volume = at(q.Volume, i, 0)

		if n := len(series.Bars); n > 0 && series.Bars[n-1].Date.Equal(bar.Date) {
			series.Bars[n-1] = bar
			continue
		}
		series.Bars = append(series.Bars, bar)
	}

	return series, nil
}

// cacheable returns series without the NaN-close bars, which JSON cannot
// encode. The validator drops those bars anyway.
func cacheable(series *contracts.PriceSeries) *contracts.PriceSeries {
	out := &contracts.PriceSeries{Symbol: series.Symbol, Bars: make([]contracts.Bar, 0, len(series.Bars))}
	for _, b := range series.Bars {
		if math.IsNaN(b.Close) {
			continue
		}
		out.Bars = append(out.Bars, b)
	}
	return out
}

func at(values []*float64, i int, fallback float64) float64 {
	if i >= len(values) || values[i] == nil {
		return fallback
	}
	return *values[i]
}
