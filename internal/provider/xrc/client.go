package xrc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/pricebot/internal/domain"
)

// DefaultCanisterID is the mainnet exchange rate canister.
const DefaultCanisterID = "uf6dk-hyaaa-aaaaq-qaaaq-cai"

// expiryBuffer is added to the rate timestamp. The canister serves a cached
// rate about 30s after its timestamp and the next rate a minute later.
const expiryBuffer = 90

// Caller invokes a canister method and returns its JSON result.
type Caller interface {
	Call(ctx context.Context, canisterID, method string, args ...any) ([]byte, error)
}

// Client quotes asset pairs from the exchange rate canister.
type Client struct {
	caller     Caller
	canisterID string
}

// NewClient creates a client for the canister at canisterID.
func NewClient(caller Caller, canisterID string) *Client {
	return &Client{caller: caller, canisterID: canisterID}
}

type rateRequest struct {
	BaseAsset  domain.Asset `json:"base_asset"`
	QuoteAsset domain.Asset `json:"quote_asset"`
	Timestamp  *uint64      `json:"timestamp"`
}

type exchangeRate struct {
	Rate      uint64 `json:"rate"`
	Timestamp uint64 `json:"timestamp"`
	Metadata  struct {
		Decimals uint32 `json:"decimals"`
	} `json:"metadata"`
}

type rateResult struct {
	Ok  *exchangeRate `json:"Ok"`
	Err *RateError    `json:"Err"`
}

// LatestPrice returns the current base/quote price and the time, in unix
// nanoseconds, until which it may be served from cache.
func (c *Client) LatestPrice(ctx context.Context, base, quote domain.Asset) (float64, uint64, error) {
	body, err := c.caller.Call(ctx, c.canisterID, "get_exchange_rate", rateRequest{
		BaseAsset:  base,
		QuoteAsset: quote,
	})
	if err != nil {
		return 0, 0, fmt.Errorf("Failed to get Price. XRC call failed: %w", err)
	}

	var res rateResult
	if err := json.Unmarshal(body, &res); err != nil {
		return 0, 0, fmt.Errorf("Failed to get Price. XRC call failed: decoding response: %w", err)
	}
	if res.Err != nil {
		return 0, 0, fmt.Errorf("Failed to get Price. XRC returned %w", res.Err)
	}
	if res.Ok == nil {
		return 0, 0, errors.New("Failed to get Price. XRC call failed: empty response")
	}

	return PriceFromRate(res.Ok.Rate, res.Ok.Metadata.Decimals), ExpiresAt(res.Ok.Timestamp), nil
}

// PriceFromRate scales the integer rate by 10^-decimals.
func PriceFromRate(rate uint64, decimals uint32) float64 {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(rate), -int32(decimals)).InexactFloat64()
}

// ExpiresAt returns (timestamp + 90s) in nanoseconds for a rate timestamp in seconds.
func ExpiresAt(timestampSec uint64) uint64 {
	return (timestampSec + expiryBuffer) * 1_000_000_000
}
