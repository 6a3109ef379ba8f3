package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

const defaultBaseURL = "https://api.coingecko.com/api/v3"

// CoinGecko implements Service using the CoinGecko simple-price API.
type CoinGecko struct {
	Client  *http.Client
	BaseURL string
	APIKey  string
}

// NewCoinGecko creates a CoinGecko price service. The API key is optional;
// without it the public rate-limited endpoint is used.
func NewCoinGecko(apiKey string) *CoinGecko {
	return &CoinGecko{
		Client:  &http.Client{Timeout: 10 * time.Second},
		BaseURL: defaultBaseURL,
		APIKey:  apiKey,
	}
}

// NativeUSD implements Service. Any failure (transport, status, decode,
// unlisted coin) yields an unavailable quote, never an error.
func (c *CoinGecko) NativeUSD(ctx context.Context, coinID string) Quote {
	if coinID == "" {
		return Unavailable()
	}

	rate, err := c.fetchUSD(ctx, coinID)
	if err != nil {
		return Unavailable()
	}
	return Quote{Rate: rate, Available: true}
}

func (c *CoinGecko) fetchUSD(ctx context.Context, coinID string) (decimal.Decimal, error) {
	u := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd",
		c.BaseURL, url.QueryEscape(coinID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return decimal.Zero, err
	}
	req.Header.Set("Accept", "application/json")
	if c.APIKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.APIKey)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("coingecko fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return decimal.Zero, fmt.Errorf("coingecko read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("coingecko: status %d, body: %s", resp.StatusCode, string(body))
	}

	var prices map[string]struct {
		USD decimal.Decimal `json:"usd"`
	}
	if err := json.Unmarshal(body, &prices); err != nil {
		return decimal.Zero, fmt.Errorf("coingecko decode: %w", err)
	}

	entry, ok := prices[coinID]
	if !ok {
		return decimal.Zero, fmt.Errorf("coingecko: no price for %s", coinID)
	}
	return entry.USD, nil
}
