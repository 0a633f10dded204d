// Package eastmoney provides a client for the Eastmoney realtime fund estimate feed
package eastmoney

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/fundwatch/internal/clients/browser"
	"github.com/bobmcallan/fundwatch/internal/clients/providererr"
	"github.com/bobmcallan/fundwatch/internal/common"
	"github.com/bobmcallan/fundwatch/internal/interfaces"
	"github.com/bobmcallan/fundwatch/internal/models"
)

const (
	DefaultBaseURL   = "http://fundgz.1234567.com.cn/js"
	DefaultTimeout   = 2 * time.Second
	DefaultRateLimit = 20 // requests per second
	Referer          = "http://fund.eastmoney.com/"

	providerName = "estimator"
	maxBodyBytes = 64 << 10
)

var jsonpPattern = regexp.MustCompile(`(?s)jsonpgz\((.*?)\);`)

// Client implements QuoteProvider against the Eastmoney estimate endpoint
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
	now        func() time.Time // cache-buster clock
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
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
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithTimeout bounds each quote fetch
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Eastmoney estimate client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		timeout: DefaultTimeout,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Source reports the estimator as the primary provider.
func (c *Client) Source() models.Source {
	return models.SourcePrimary
}

// estimateResponse is the JSON object wrapped in jsonpgz(...).
// Numbers arrive as strings.
type estimateResponse struct {
	FundCode string `json:"fundcode"`
	Name     string `json:"name"`
	Gsz      string `json:"gsz"`    // estimate
	Dwjz     string `json:"dwjz"`   // last net value
	Gszzl    string `json:"gszzl"`  // percent change
	GzTime   string `json:"gztime"` // estimate timestamp
}

// GetQuote fetches the intraday estimate for a fund code.
func (c *Client) GetQuote(ctx context.Context, code string) (*models.Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, providererr.New(providerName, code, providererr.ErrTimeout, fmt.Errorf("rate limit wait: %w", err))
	}

	reqURL := fmt.Sprintf("%s/%s.js?rt=%d", c.baseURL, code, c.now().UnixMilli())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, providererr.New(providerName, code, providererr.ErrNetwork, fmt.Errorf("failed to create request: %w", err))
	}
	browser.Apply(req, Referer)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.logger.Debug().Err(err).Str("code", code).Dur("elapsed", elapsed).Msg("Estimator request failed")
		return nil, providererr.Transport(providerName, code, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug().Str("code", code).Int("status", resp.StatusCode).Dur("elapsed", elapsed).Msg("Estimator non-OK response")
		return nil, providererr.New(providerName, code, providererr.ErrStatus, fmt.Errorf("status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, providererr.Transport(providerName, code, err)
	}

	quote, err := parseEstimate(code, body)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().Str("code", code).Float64("estimate", quote.Estimate).Dur("elapsed", elapsed).Msg("Estimator call")
	return quote, nil
}

// parseEstimate extracts and validates the JSON object embedded in a JSONP payload.
func parseEstimate(code string, body []byte) (*models.Quote, error) {
	match := jsonpPattern.FindSubmatch(body)
	if match == nil {
		return nil, providererr.New(providerName, code, providererr.ErrMalformed, fmt.Errorf("missing jsonpgz wrapper"))
	}

	var data estimateResponse
	if err := json.Unmarshal(match[1], &data); err != nil {
		return nil, providererr.New(providerName, code, providererr.ErrMalformed, fmt.Errorf("decode payload: %w", err))
	}

	estimate, err := parseRequired(data.Gsz)
	if err != nil {
		return nil, providererr.New(providerName, code, providererr.ErrMalformed, fmt.Errorf("gsz: %w", err))
	}
	lastNet, err := parseRequired(data.Dwjz)
	if err != nil {
		return nil, providererr.New(providerName, code, providererr.ErrMalformed, fmt.Errorf("dwjz: %w", err))
	}
	pct := 0.0
	if strings.TrimSpace(data.Gszzl) != "" {
		if pct, err = parseRequired(data.Gszzl); err != nil {
			return nil, providererr.New(providerName, code, providererr.ErrMalformed, fmt.Errorf("gszzl: %w", err))
		}
	}

	name := data.Name
	if name == "" {
		name = models.PlaceholderName(code)
	}

	quote, err := models.NewQuote(models.SourcePrimary, name, estimate, lastNet, pct, data.GzTime)
	if err != nil {
		return nil, providererr.New(providerName, code, providererr.ErrMalformed, err)
	}
	return quote, nil
}

func parseRequired(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("missing value")
	}
	return strconv.ParseFloat(s, 64)
}

// Ensure Client implements QuoteProvider
var _ interfaces.QuoteProvider = (*Client)(nil)
