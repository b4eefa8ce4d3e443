package amm

import (
	"context"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// DefaultNodeIndexID is the AMM node index canister.
const DefaultNodeIndexID = "ggzvv-5qaaa-aaaag-qck7a-cai"

// Window passed to getTokenPricesData: one record from the last day.
const (
	priceWindowStart = 0
	priceWindowSpan  = 86400
	priceLimit       = 1
)

var (
	// ErrTokenNotIndexed means the node index has no storage canister for the token.
	ErrTokenNotIndexed = errors.New("Failed to get Price. Token storage not found.")
	// ErrNoPriceData means the storage canister returned no price records.
	ErrNoPriceData = errors.New("Failed to get Price. No data found.")
	// ErrStorageNode wraps a failed call to the token's storage canister.
	ErrStorageNode = errors.New("Failed to get Price.")
)

// Caller invokes a canister method and returns its JSON result.
type Caller interface {
	Call(ctx context.Context, canisterID, method string, args ...any) ([]byte, error)
}

// Client resolves token prices through the AMM node index.
type Client struct {
	caller      Caller
	nodeIndexID string
}

// NewClient creates a client that starts lookups at nodeIndexID.
func NewClient(caller Caller, nodeIndexID string) *Client {
	return &Client{caller: caller, nodeIndexID: nodeIndexID}
}

// LatestPrice returns the most recent close price of the token with ledger
// canister tokenID and the ledger's display name.
func (c *Client) LatestPrice(ctx context.Context, tokenID string) (float64, string, error) {
	storageID, err := c.tokenStorage(ctx, tokenID)
	if err != nil {
		return 0, "", err
	}

	price, err := c.latestClose(ctx, storageID, tokenID)
	if err != nil {
		return 0, "", err
	}

	name, err := c.TokenName(ctx, tokenID)
	if err != nil {
		return 0, "", err
	}

	return price, name, nil
}

// TokenName returns the ICRC-1 name of a ledger.
func (c *Client) TokenName(ctx context.Context, ledgerID string) (string, error) {
	body, err := c.caller.Call(ctx, ledgerID, "icrc1_name")
	if err != nil {
		return "", fmt.Errorf("Failed to get token name: %w", err)
	}
	res := gjson.ParseBytes(body)
	if res.Type != gjson.String {
		return "", fmt.Errorf("Failed to get token name: unexpected result %s", body)
	}
	return res.String(), nil
}

// tokenStorage accepts null, a bare id, or an optional encoded as [] / ["id"].
func (c *Client) tokenStorage(ctx context.Context, tokenID string) (string, error) {
	body, err := c.caller.Call(ctx, c.nodeIndexID, "tokenStorage", tokenID)
	if err != nil {
		return "", fmt.Errorf("Failed to get token storage: %w", err)
	}

	res := gjson.ParseBytes(body)
	if res.IsArray() {
		res = res.Get("0")
	}
	if !res.Exists() || res.Type == gjson.Null || res.String() == "" {
		return "", ErrTokenNotIndexed
	}
	return res.String(), nil
}

func (c *Client) latestClose(ctx context.Context, storageID, tokenID string) (float64, error) {
	body, err := c.caller.Call(ctx, storageID, "getTokenPricesData",
		tokenID, priceWindowStart, priceWindowSpan, priceLimit)
	if err != nil {
		return 0, fmt.Errorf("%w %v", ErrStorageNode, err)
	}

	res := gjson.ParseBytes(body)
	if !res.IsArray() {
		return 0, fmt.Errorf("%w unexpected result %s", ErrStorageNode, body)
	}
	last := res.Get("0.close")
	if !last.Exists() {
		return 0, ErrNoPriceData
	}
	return last.Float(), nil
}
