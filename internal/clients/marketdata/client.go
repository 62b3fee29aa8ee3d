// Package marketdata provides a client for the price and FX-rate provider.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/foliotrack/folio/internal/common"
	"github.com/foliotrack/folio/internal/models"
)

const (
	DefaultBaseURL   = "https://api.foliotrack.io/v1"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10 // requests per second
)

// flexFloat64 handles JSON values that may be either a number or a string.
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" || s == "N/A" {
			*f = 0
			return nil
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat64(num)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

// Client implements the MarketDataClient interface.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new market data client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents a provider error response.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("market data API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", c.apiKey)

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("Market data API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

type priceResponse struct {
	Symbol   string      `json:"symbol"`
	Price    flexFloat64 `json:"price"`
	Currency string      `json:"currency"`
}

// GetPrices retrieves current prices for the given asset keys. Symbols the
// provider does not know are simply absent from the result.
func (c *Client) GetPrices(ctx context.Context, keys []models.AssetKey) (models.PriceTable, error) {
	if len(keys) == 0 {
		return models.PriceTable{}, nil
	}

	seen := make(map[string]bool, len(keys))
	var symbols []string
	for _, key := range keys {
		if name := key.Name(); !seen[name] {
			seen[name] = true
			symbols = append(symbols, name)
		}
	}

	params := url.Values{}
	params.Set("symbols", strings.Join(symbols, ","))

	var quotes []priceResponse
	if err := c.get(ctx, "/prices", params, &quotes); err != nil {
		return nil, err
	}

	bySymbol := make(map[string]priceResponse, len(quotes))
	for _, q := range quotes {
		bySymbol[q.Symbol] = q
	}

	table := make(models.PriceTable, len(keys))
	for _, key := range keys {
		q, ok := bySymbol[key.Name()]
		if !ok {
			continue
		}
		table[key] = models.AssetPrice{Amount: float64(q.Price), Currency: q.Currency}
	}
	return table, nil
}

type ratesResponse struct {
	Base  string                 `json:"base"`
	Rates map[string]flexFloat64 `json:"rates"`
}

// GetRates retrieves current FX rates relative to the base currency.
func (c *Client) GetRates(ctx context.Context, base string, currencies []string) (*models.RateTable, error) {
	params := url.Values{}
	params.Set("base", base)
	params.Set("symbols", strings.Join(currencies, ","))

	var resp ratesResponse
	if err := c.get(ctx, "/rates", params, &resp); err != nil {
		return nil, err
	}

	rates := make(map[string]float64, len(resp.Rates))
	for code, r := range resp.Rates {
		rates[code] = float64(r)
	}
	return models.NewRateTable(base, rates)
}
