// Package marketdata queries the primary and secondary market-data providers
// for canonical coin records, caching results per symbol with a per-source
// TTL and falling back to the secondary provider when the primary cannot
// resolve a symbol or its image.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"coinlens/internal/domain"
	"coinlens/internal/util"
)

// secondaryImageTemplate builds an image URL from the secondary provider's
// numeric coin id.
const secondaryImageTemplate = "https://s2.coinmarketcap.com/static/img/coins/64x64/%d.png"

// Client fetches coin records from one provider.
type Client struct {
	source  domain.Source
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *util.RateLimiter
}

// NewClient creates a provider client. rateLimitPerMin <= 0 disables rate
// limiting.
func NewClient(source domain.Source, baseURL, apiKey string, rateLimitPerMin int) *Client {
	var limiter *util.RateLimiter
	if rateLimitPerMin > 0 {
		limiter = util.NewRateLimiter(rateLimitPerMin)
	}
	return &Client{
		source:  source,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: limiter,
	}
}

// Source returns the provider this client talks to.
func (c *Client) Source() domain.Source { return c.source }

// Fetch resolves a batch of symbols to canonical records. Symbols the
// provider does not know are absent from the result, not errors.
func (c *Client) Fetch(ctx context.Context, symbols []string) ([]domain.CanonicalCoin, error) {
	if len(symbols) == 0 {
		return nil, nil
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	switch c.source {
	case domain.SourceSecondary:
		return c.fetchSecondary(ctx, symbols)
	default:
		return c.fetchPrimary(ctx, symbols)
	}
}

// primaryMarket is one row of the primary provider's /coins/markets response.
type primaryMarket struct {
	ID                string  `json:"id"`
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	Image             string  `json:"image"`
	CurrentPrice      float64 `json:"current_price"`
	MarketCap         float64 `json:"market_cap"`
	TotalVolume       float64 `json:"total_volume"`
	PriceChangePct24h float64 `json:"price_change_percentage_24h"`
	CirculatingSupply float64 `json:"circulating_supply"`
}

func (c *Client) fetchPrimary(ctx context.Context, symbols []string) ([]domain.CanonicalCoin, error) {
	q := url.Values{}
	q.Set("vs_currency", "usd")
	q.Set("symbols", strings.ToLower(strings.Join(symbols, ",")))
	q.Set("per_page", "250")

	var markets []primaryMarket
	if err := c.getJSON(ctx, "/coins/markets?"+q.Encode(), &markets); err != nil {
		return nil, err
	}

	coins := make([]domain.CanonicalCoin, 0, len(markets))
	for _, m := range markets {
		coins = append(coins, domain.CanonicalCoin{
			ID:                m.ID,
			Symbol:            strings.ToLower(m.Symbol),
			Name:              m.Name,
			Price:             m.CurrentPrice,
			MarketCap:         m.MarketCap,
			Volume24h:         m.TotalVolume,
			PercentChange24h:  m.PriceChangePct24h,
			CirculatingSupply: m.CirculatingSupply,
			ImageURL:          m.Image,
			Source:            domain.SourcePrimary,
		})
	}
	return coins, nil
}

// secondaryQuote is one entry of the secondary provider's quotes response.
type secondaryQuote struct {
	ID                int     `json:"id"`
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	Slug              string  `json:"slug"`
	CirculatingSupply float64 `json:"circulating_supply"`
	Quote             struct {
		USD struct {
			Price            float64 `json:"price"`
			Volume24h        float64 `json:"volume_24h"`
			PercentChange24h float64 `json:"percent_change_24h"`
			MarketCap        float64 `json:"market_cap"`
		} `json:"USD"`
	} `json:"quote"`
}

type secondaryResponse struct {
	Data map[string][]secondaryQuote `json:"data"`
}

func (c *Client) fetchSecondary(ctx context.Context, symbols []string) ([]domain.CanonicalCoin, error) {
	q := url.Values{}
	q.Set("symbol", strings.ToUpper(strings.Join(symbols, ",")))
	q.Set("skip_invalid", "true")

	var resp secondaryResponse
	if err := c.getJSON(ctx, "/v1/cryptocurrency/quotes/latest?"+q.Encode(), &resp); err != nil {
		return nil, err
	}

	var coins []domain.CanonicalCoin
	for _, quotes := range resp.Data {
		for _, sq := range quotes {
			usd := sq.Quote.USD
			coins = append(coins, domain.CanonicalCoin{
				ID:                sq.Slug,
				Symbol:            strings.ToLower(sq.Symbol),
				Name:              sq.Name,
				Price:             usd.Price,
				MarketCap:         usd.MarketCap,
				Volume24h:         usd.Volume24h,
				PercentChange24h:  usd.PercentChange24h,
				CirculatingSupply: sq.CirculatingSupply,
				ImageURL:          fmt.Sprintf(secondaryImageTemplate, sq.ID),
				Source:            domain.SourceSecondary,
			})
		}
	}
	return coins, nil
}

func (c *Client) getJSON(ctx context.Context, pathAndQuery string, v any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+pathAndQuery, nil)
	if err != nil {
		return err
	}
	if c.apiKey != "" {
		switch c.source {
		case domain.SourceSecondary:
			req.Header.Set("X-CMC_PRO_API_KEY", c.apiKey)
		default:
			req.Header.Set("x-cg-demo-api-key", c.apiKey)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return newAPIError(resp, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding %s response: %w", c.source, err)
	}
	return nil
}
