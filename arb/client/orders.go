package client

import (
	"context"
	"net/http"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/arborter/arborter-go/arb/signing"
	"github.com/arborter/arborter-go/arb/types"
)

// orderRequest carries the structured intent for the service plus the exact
// canonical bytes the signature was computed over. The payload field is the
// envelope's bytes verbatim — the intent is never re-serialized after
// signing.
type orderRequest struct {
	Order     types.TradingIntent `json:"order"`
	Payload   string              `json:"payload"`
	Signature string              `json:"signatureBytes"`
}

type cancelRequest struct {
	Order     types.CancelIntent `json:"order"`
	Payload   string             `json:"payload"`
	Signature string             `json:"signatureBytes"`
}

// SubmitOrder signs the intent with the wallet key and submits it. A session
// token is not involved: mutating operations authenticate by signature.
//
// snap may be nil. When it is present and the service rejects the order for
// insufficient balance, the rejection is enriched with the on-chain balance
// of the side the order spends from; enrichment is best-effort and any
// failure there returns the original rejection untouched.
func (c *Client) SubmitOrder(ctx context.Context, id *signing.Identity, intent types.TradingIntent, snap *types.ConfigurationSnapshot) (*types.OrderResult, error) {
	env, err := signing.SignOrder(id, intent)
	if err != nil {
		return nil, err
	}
	req := orderRequest{
		Order:     intent,
		Payload:   hexutil.Encode(env.Payload),
		Signature: hexutil.Encode(env.Signature),
	}
	var result types.OrderResult
	if err := c.do(c.http.R().SetContext(ctx).SetBody(req), http.MethodPost, EndpointOrders, &result); err != nil {
		return nil, c.enrichInsufficientBalance(ctx, snap, intent, err)
	}
	return &result, nil
}

// CancelOrder signs and submits a cancel request for a resting order.
func (c *Client) CancelOrder(ctx context.Context, id *signing.Identity, intent types.CancelIntent) (*types.CancelResult, error) {
	env, err := signing.SignCancel(id, intent)
	if err != nil {
		return nil, err
	}
	req := cancelRequest{
		Order:     intent,
		Payload:   hexutil.Encode(env.Payload),
		Signature: hexutil.Encode(env.Signature),
	}
	var result types.CancelResult
	if err := c.do(c.http.R().SetContext(ctx).SetBody(req), http.MethodPost, EndpointCancel, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// OpenOrders lists the caller's resting orders. Token-gated: the lifetime
// guard runs here, before any bytes go out, so an expired token fails fast
// with ErrExpiredSession instead of a round-trip rejection.
func (c *Client) OpenOrders(ctx context.Context, tok types.SessionToken) ([]types.OpenOrder, error) {
	if !tok.Usable() {
		return nil, types.ErrExpiredSession
	}
	var out []types.OpenOrder
	req := c.http.R().SetContext(ctx).SetAuthToken(tok.Token)
	if err := c.do(req, http.MethodGet, EndpointOpenOrders, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchConfig retrieves the configuration snapshot the resolver and order
// builder work against. Read-only and unauthenticated.
func (c *Client) FetchConfig(ctx context.Context) (*types.ConfigurationSnapshot, error) {
	var snap types.ConfigurationSnapshot
	if err := c.do(c.http.R().SetContext(ctx), http.MethodGet, EndpointConfig, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
