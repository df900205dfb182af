// Package pricefeed fetches spot prices used as round closing prices.
package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Client struct {
	HTTP   *http.Client
	Logger *zap.Logger

	BaseURL string
	// Symbols maps a chain name ("btc") to an exchange symbol ("BTCUSDT").
	Symbols map[string]string
	// FallbackPrices keep the orchestrator moving when the feed is down.
	FallbackPrices map[string]float64
}

type tickerResponse struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// ClosingPrice never fails: any feed error falls back to the configured
// static price so a feed outage cannot stall round resolution.
func (c *Client) ClosingPrice(ctx context.Context, chain string) decimal.Decimal {
	price, err := c.fetch(ctx, chain)
	if err == nil {
		return price
	}
	if c.Logger != nil {
		c.Logger.Warn("price feed failed, using fallback",
			zap.String("chain", chain),
			zap.Error(err),
		)
	}
	return decimal.NewFromFloat(c.FallbackPrices[strings.ToLower(chain)])
}

func (c *Client) fetch(ctx context.Context, chain string) (decimal.Decimal, error) {
	symbol := c.Symbols[strings.ToLower(chain)]
	if symbol == "" {
		return decimal.Zero, fmt.Errorf("no symbol configured for chain %q", chain)
	}
	base := strings.TrimRight(c.BaseURL, "/")
	if base == "" {
		base = "https://api.binance.com/api/v3"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/ticker/price?symbol="+symbol, nil)
	if err != nil {
		return decimal.Zero, err
	}
	req.Header.Set("Accept", "application/json")

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("ticker status %d: %s", resp.StatusCode, string(body))
	}
	var ticker tickerResponse
	if err := json.Unmarshal(body, &ticker); err != nil {
		return decimal.Zero, fmt.Errorf("malformed ticker: %w", err)
	}
	price, err := decimal.NewFromString(ticker.Price)
	if err != nil {
		return decimal.Zero, fmt.Errorf("bad price %q: %w", ticker.Price, err)
	}
	return price, nil
}
