package client

import (
	"context"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/sirupsen/logrus"

	"github.com/arborter/arborter-go/arb/signing"
	"github.com/arborter/arborter-go/arb/types"
)

// loginRequest is the wire form of the auth handshake. The address is
// EIP-55 checksum formatted; the signature covers the EIP-712 digest of
// exactly these three fields under the Arborter domain.
type loginRequest struct {
	Address   string `json:"address"`
	Timestamp uint64 `json:"timestamp"`
	Nonce     string `json:"nonce"`
	Signature string `json:"signature"`
}

type initAdminRequest struct {
	Address string `json:"address"`
}

// Authenticate performs the login handshake and returns a bearer session
// token with its expiry. The timestamp is taken here, at signing time, to
// keep clock-skew rejections to a minimum; the nonce is fresh per attempt.
func (c *Client) Authenticate(ctx context.Context, id *signing.Identity, chainID uint64) (*types.SessionToken, error) {
	msg := signing.AuthMessage{
		Address:   id.Address(),
		Timestamp: uint64(time.Now().Unix()),
		Nonce:     signing.NewNonce(),
	}
	sig, err := signing.SignAuth(id, signing.NewDomain(chainID), msg)
	if err != nil {
		return nil, err
	}

	req := loginRequest{
		Address:   id.Address().Hex(),
		Timestamp: msg.Timestamp,
		Nonce:     msg.Nonce,
		Signature: hexutil.Encode(sig),
	}
	var tok types.SessionToken
	if err := c.do(c.http.R().SetContext(ctx).SetBody(req), http.MethodPost, EndpointLogin, &tok); err != nil {
		return nil, err
	}
	c.log.WithFields(logrus.Fields{
		"address":   tok.Address,
		"expiresAt": tok.ExpiresAt,
	}).Debug("authenticated")
	return &tok, nil
}

// InitAdmin bootstraps the very first administrative identity on a fresh
// deployment. Intentionally unauthenticated: the service refuses it once an
// admin exists, and that refusal is surfaced as-is.
func (c *Client) InitAdmin(ctx context.Context, address string) (*types.SessionToken, error) {
	var tok types.SessionToken
	req := initAdminRequest{Address: address}
	if err := c.do(c.http.R().SetContext(ctx).SetBody(req), http.MethodPost, EndpointInitAdmin, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}
