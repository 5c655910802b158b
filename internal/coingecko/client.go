package coingecko

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"coin-dashboard/internal/models"
)

const (
	DefaultBaseURL = "https://api.coingecko.com/api/v3"

	opTopCoins   = "top_coins"
	opCoinDetail = "coin_detail"
)

// Client is the market data gateway. It owns no state beyond its
// configuration and is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	log        logrus.FieldLogger
}

type Option func(*Client)

// WithBaseURL points the client at another CoinGecko compatible host.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithAPIKey sends the key as the demo API key header.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: NewHTTPClient(10 * time.Second),
		baseURL:    DefaultBaseURL,
		log:        logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewHTTPClient returns an HTTP client with pooled connections.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// DefaultUserAgent returns a user agent string for the dashboard
func DefaultUserAgent() string {
	return "coin-dashboard/1.0"
}

// FetchTopCoins returns one page of coins ordered by descending market cap.
func (c *Client) FetchTopCoins(ctx context.Context, currency models.Currency, pageSize, page int, windows []models.ChangeWindow) ([]models.CoinSummary, error) {
	q := url.Values{}
	q.Set("vs_currency", currency.String())
	q.Set("order", "market_cap_desc")
	q.Set("per_page", strconv.Itoa(pageSize))
	q.Set("page", strconv.Itoa(page))
	q.Set("sparkline", "false")
	if len(windows) > 0 {
		q.Set("price_change_percentage", joinWindows(windows))
	}

	body, err := c.get(ctx, opTopCoins, "/coins/markets", q)
	if err != nil {
		return nil, err
	}

	coins, err := decodeMarkets(body, windows)
	if err != nil {
		return nil, &ParseError{Op: opTopCoins, Err: err}
	}

	c.log.WithFields(logrus.Fields{
		"source": "coingecko",
		"status": "success",
		"count":  len(coins),
	}).Debug("top coins fetched")
	return coins, nil
}

// FetchCoinDetail returns the detail record for id. The id is passed
// through untouched; an unknown id surfaces as an HTTPStatusError.
func (c *Client) FetchCoinDetail(ctx context.Context, id string, currency models.Currency) (models.CoinDetail, error) {
	q := url.Values{}
	q.Set("sparkline", "true")
	q.Set("vs_currency", currency.String())
	q.Set("localisation", currency.String())

	body, err := c.get(ctx, opCoinDetail, "/coins/"+url.PathEscape(id), q)
	if err != nil {
		return models.CoinDetail{}, err
	}

	detail, err := decodeCoin(body, id, currency)
	if err != nil {
		return models.CoinDetail{}, &ParseError{Op: opCoinDetail, Err: err}
	}

	c.log.WithFields(logrus.Fields{
		"coin":   id,
		"source": "coingecko",
		"status": "success",
		"points": len(detail.SparklinePrices),
	}).Debug("coin detail fetched")
	return detail, nil
}

func (c *Client) get(ctx context.Context, op, path string, q url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", DefaultUserAgent())
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &HTTPStatusError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}

func joinWindows(windows []models.ChangeWindow) string {
	parts := make([]string, len(windows))
	for i, w := range windows {
		parts[i] = string(w)
	}
	return strings.Join(parts, ",")
}
