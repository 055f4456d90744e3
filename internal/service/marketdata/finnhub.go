package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"StockCast/internal/domain/models"
	dservice "StockCast/internal/domain/service"
	"StockCast/internal/service/cache"
	svcmetrics "StockCast/internal/service/metrics"
	"StockCast/internal/service/ratelimit"
	phttp "StockCast/pkg/http"
	"StockCast/pkg/logger"
)

const defaultBaseURL = "https://finnhub.io/api/v1"

// Finnhub's free tier allows 60 calls per minute. The bucket refills at
// that rate and tolerates a short burst.
const (
	rateKey          = "finnhub"
	rateCapacity     = 30
	rateRefillPerSec = 1
)

// millionsScale converts Finnhub's market capitalization, reported in
// millions of USD, to absolute dollars.
const millionsScale = 1e6

// metricKeys maps Finnhub metric names to the canonical info-map keys the
// ratio extractor consumes.
var metricKeys = map[string]string{
	"peTTM":                       "trailingPE",
	"pbAnnual":                    "priceToBook",
	"totalDebt/totalEquityAnnual": "debtToEquity",
	"currentRatioAnnual":          "currentRatio",
	"roeTTM":                      "returnOnEquity",
	"roaTTM":                      "returnOnAssets",
	"enterpriseValue":             "enterpriseValue",
}

// Client fetches daily bars and fundamentals from the Finnhub REST API.
// It implements both the price-source and fundamentals-source contracts.
type Client struct {
	http    *phttp.Client
	log     *logger.Logger
	baseURL string
	apiKey  string
	limiter *ratelimit.Limiter

	fundCache cache.BytesCache
	fundTTL   time.Duration
}

// NewClient builds a Finnhub REST client on the shared HTTP client. All
// requests pass through a token-bucket limiter sized for the provider's
// per-minute quota.
func NewClient(httpClient *phttp.Client, log *logger.Logger, baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	svcmetrics.Register()
	return &Client{
		http:    httpClient,
		log:     log,
		baseURL: baseURL,
		apiKey:  apiKey,
		limiter: ratelimit.New(),
	}
}

// WithFundamentalsCache caches raw fundamentals per ticker. Fundamentals
// move slowly, so a generous TTL saves most of the metric-endpoint quota.
func (c *Client) WithFundamentalsCache(store cache.BytesCache, ttl time.Duration) *Client {
	c.fundCache = store
	c.fundTTL = ttl
	return c
}

type candleResponse struct {
	Status string    `json:"s"`
	T      []int64   `json:"t"`
	O      []float64 `json:"o"`
	H      []float64 `json:"h"`
	L      []float64 `json:"l"`
	C      []float64 `json:"c"`
	V      []float64 `json:"v"`
}

// FetchDailyBars fetches daily candles for [from, to], ordered by date.
// A "no_data" response or an empty candle set maps to models.ErrNoData.
func (c *Client) FetchDailyBars(ctx context.Context, ticker string, from, to time.Time) ([]models.PriceBar, error) {
	var resp candleResponse
	err := c.get(ctx, "/stock/candle", map[string][]string{
		"symbol":     {ticker},
		"resolution": {"D"},
		"from":       {fmt.Sprintf("%d", from.Unix())},
		"to":         {fmt.Sprintf("%d", to.Unix())},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("fetch candles %s: %w", ticker, err)
	}
	if resp.Status == "no_data" || len(resp.T) == 0 {
		return nil, fmt.Errorf("candles %s %s..%s: %w",
			ticker, from.Format("2006-01-02"), to.Format("2006-01-02"), models.ErrNoData)
	}
	if len(resp.O) != len(resp.T) || len(resp.C) != len(resp.T) {
		return nil, fmt.Errorf("candles %s: %w", ticker, models.ErrMalformedInput)
	}

	bars := make([]models.PriceBar, len(resp.T))
	for i := range resp.T {
		bars[i] = models.PriceBar{
			Date:   time.Unix(resp.T[i], 0).UTC(),
			Open:   resp.O[i],
			High:   resp.H[i],
			Low:    resp.L[i],
			Close:  resp.C[i],
			Volume: resp.V[i],
		}
	}
	c.log.Debug("fetched daily bars",
		logger.String("ticker", ticker), logger.Int("bars", len(bars)))
	return bars, nil
}

type profileResponse struct {
	MarketCapitalization float64 `json:"marketCapitalization"` // millions USD
	FinnhubIndustry      string  `json:"finnhubIndustry"`
	Sector               string  `json:"gsector"`
}

type metricsResponse struct {
	Metric map[string]float64 `json:"metric"`
}

type financialsResponse struct {
	Data []struct {
		Year   int `json:"year"`
		Report struct {
			IC []reportLine `json:"ic"`
			BS []reportLine `json:"bs"`
			CF []reportLine `json:"cf"`
		} `json:"report"`
	} `json:"data"`
}

type reportLine struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// FetchFundamentals assembles the raw fundamentals record from the
// profile, metric, and reported-financials endpoints. Partial provider
// data is fine: whatever is missing is simply absent from the result, and
// downstream shaping treats absence as undefined.
func (c *Client) FetchFundamentals(ctx context.Context, ticker string) (*dservice.RawFundamentals, error) {
	if cached, ok := c.cachedFundamentals(ticker); ok {
		return cached, nil
	}
	raw := &dservice.RawFundamentals{Info: map[string]float64{}}

	var profile profileResponse
	if err := c.get(ctx, "/stock/profile2", map[string][]string{"symbol": {ticker}}, &profile); err != nil {
		return nil, fmt.Errorf("fetch profile %s: %w", ticker, err)
	}
	if profile.MarketCapitalization > 0 {
		raw.Info["marketCap"] = profile.MarketCapitalization * millionsScale
	}
	raw.Sector = profile.Sector
	raw.Industry = profile.FinnhubIndustry

	var metrics metricsResponse
	if err := c.get(ctx, "/stock/metric", map[string][]string{
		"symbol": {ticker},
		"metric": {"all"},
	}, &metrics); err != nil {
		return nil, fmt.Errorf("fetch metrics %s: %w", ticker, err)
	}
	for provider, canonical := range metricKeys {
		if v, ok := metrics.Metric[provider]; ok {
			raw.Info[canonical] = v
		}
	}

	var fin financialsResponse
	if err := c.get(ctx, "/stock/financials-reported", map[string][]string{
		"symbol": {ticker},
		"freq":   {"annual"},
	}, &fin); err != nil {
		// Statements only feed fallback derivations; their absence is
		// not fatal when the metric endpoint answered.
		c.log.Warn("reported financials unavailable",
			logger.String("ticker", ticker), logger.Error(err))
		c.storeFundamentals(ticker, raw)
		return raw, nil
	}
	for _, period := range fin.Data {
		raw.IncomeStmt = append(raw.IncomeStmt, linesToMap(period.Report.IC))
		raw.BalanceSheet = append(raw.BalanceSheet, linesToMap(period.Report.BS))
		raw.CashFlow = append(raw.CashFlow, linesToMap(period.Report.CF))
	}
	c.storeFundamentals(ticker, raw)
	return raw, nil
}

func fundamentalsKey(ticker string) string { return "stockcast:fundamentals:" + ticker }

func (c *Client) cachedFundamentals(ticker string) (*dservice.RawFundamentals, bool) {
	if c.fundCache == nil {
		return nil, false
	}
	b, ok, err := c.fundCache.GetBytes(fundamentalsKey(ticker))
	if err != nil || !ok {
		return nil, false
	}
	var raw dservice.RawFundamentals
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, false
	}
	return &raw, true
}

func (c *Client) storeFundamentals(ticker string, raw *dservice.RawFundamentals) {
	if c.fundCache == nil {
		return
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return
	}
	if err := c.fundCache.SetBytes(fundamentalsKey(ticker), b, c.fundTTL); err != nil {
		c.log.Warn("cache fundamentals", logger.String("ticker", ticker), logger.Error(err))
	}
}

func (c *Client) get(ctx context.Context, path string, params map[string][]string, dest interface{}) error {
	if err := c.limiter.Wait(ctx, rateKey, rateCapacity, rateRefillPerSec); err != nil {
		return err
	}
	params["token"] = []string{c.apiKey}
	start := time.Now()
	err := c.http.SendAndParse(ctx, &phttp.RequestOptions{
		Method:      phttp.MethodGet,
		URL:         c.baseURL + path,
		QueryParams: params,
	}, dest)
	svcmetrics.ProviderLatency.WithLabelValues(path).Observe(time.Since(start).Seconds())
	if err != nil {
		svcmetrics.ProviderErrors.WithLabelValues(path).Inc()
	}
	return err
}

func linesToMap(lines []reportLine) map[string]float64 {
	out := make(map[string]float64, len(lines))
	for _, l := range lines {
		out[l.Label] = l.Value
	}
	return out
}
