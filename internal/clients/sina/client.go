// Package sina provides a client for the Sina fund net value snapshot feed
package sina

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/time/rate"

	"github.com/bobmcallan/fundwatch/internal/clients/browser"
	"github.com/bobmcallan/fundwatch/internal/clients/providererr"
	"github.com/bobmcallan/fundwatch/internal/common"
	"github.com/bobmcallan/fundwatch/internal/interfaces"
	"github.com/bobmcallan/fundwatch/internal/models"
)

const (
	DefaultBaseURL   = "http://hq.sinajs.cn"
	DefaultTimeout   = 2 * time.Second
	DefaultRateLimit = 20 // requests per second
	Referer          = "https://finance.sina.com.cn/"

	providerName = "snapshot"
	maxBodyBytes = 64 << 10
	minFields    = 5
)

var recordPattern = regexp.MustCompile(`(?s)="(.*?)"`)

// Client implements QuoteProvider against the Sina snapshot endpoint
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
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

// NewClient creates a new Sina snapshot client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		timeout: DefaultTimeout,
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

// Source reports the snapshot as the secondary provider.
func (c *Client) Source() models.Source {
	return models.SourceSecondary
}

// GetQuote fetches the official net value snapshot for a fund code.
func (c *Client) GetQuote(ctx context.Context, code string) (*models.Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, providererr.New(providerName, code, providererr.ErrTimeout, fmt.Errorf("rate limit wait: %w", err))
	}

	reqURL := fmt.Sprintf("%s/list=f_%s", c.baseURL, code)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, providererr.New(providerName, code, providererr.ErrNetwork, fmt.Errorf("failed to create request: %w", err))
	}
	browser.Apply(req, Referer)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.logger.Debug().Err(err).Str("code", code).Dur("elapsed", elapsed).Msg("Snapshot request failed")
		return nil, providererr.Transport(providerName, code, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug().Str("code", code).Int("status", resp.StatusCode).Dur("elapsed", elapsed).Msg("Snapshot non-OK response")
		return nil, providererr.New(providerName, code, providererr.ErrStatus, fmt.Errorf("status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, providererr.Transport(providerName, code, err)
	}

	quote, err := parseSnapshot(code, decodeGBK(body))
	if err != nil {
		return nil, err
	}

	c.logger.Debug().Str("code", code).Float64("estimate", quote.Estimate).Dur("elapsed", elapsed).Msg("Snapshot call")
	return quote, nil
}

// decodeGBK converts the GBK payload to UTF-8, keeping the raw bytes when
// they do not decode.
func decodeGBK(body []byte) string {
	decoded, err := simplifiedchinese.GBK.NewDecoder().Bytes(body)
	if err != nil || !utf8.Valid(decoded) {
		return string(body)
	}
	return string(decoded)
}

// parseSnapshot reads the positional record: 0 name, 1 estimate, 3 last net
// value, 4 display timestamp.
func parseSnapshot(code, content string) (*models.Quote, error) {
	match := recordPattern.FindStringSubmatch(content)
	if match == nil {
		return nil, providererr.New(providerName, code, providererr.ErrMalformed, fmt.Errorf("missing quoted record"))
	}

	fields := strings.Split(match[1], ",")
	if len(fields) < minFields {
		return nil, providererr.New(providerName, code, providererr.ErrMalformed, fmt.Errorf("expected at least %d fields, got %d", minFields, len(fields)))
	}

	estimate, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	if err != nil {
		return nil, providererr.New(providerName, code, providererr.ErrMalformed, fmt.Errorf("estimate: %w", err))
	}
	lastNet, err := strconv.ParseFloat(strings.TrimSpace(fields[3]), 64)
	if err != nil {
		return nil, providererr.New(providerName, code, providererr.ErrMalformed, fmt.Errorf("last net value: %w", err))
	}

	quote, err := models.NewQuote(
		models.SourceSecondary,
		strings.TrimSpace(fields[0]),
		estimate,
		lastNet,
		models.PercentChangeOf(estimate, lastNet),
		strings.TrimSpace(fields[4]),
	)
	if err != nil {
		return nil, providererr.New(providerName, code, providererr.ErrMalformed, err)
	}
	return quote, nil
}

// Ensure Client implements QuoteProvider
var _ interfaces.QuoteProvider = (*Client)(nil)
