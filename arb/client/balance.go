package client

import (
	"context"
	stderrors "errors"
	"math/big"
	"strings"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/arborter/arborter-go/arb/resolve"
	"github.com/arborter/arborter-go/arb/types"
)

const erc20BalanceOfABI = `[{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"type":"function"}]`

// enrichInsufficientBalance decorates an insufficient-balance rejection with
// the wallet's actual on-chain balance of the token the order spends. Every
// failure path falls back to the original error: the diagnostic must never
// replace a real error with a less informative one.
func (c *Client) enrichInsufficientBalance(ctx context.Context, snap *types.ConfigurationSnapshot, intent types.TradingIntent, err error) error {
	var rr *types.RemoteRejection
	if snap == nil || !stderrors.As(err, &rr) || rr.Code != types.CodeInsufficientBalance {
		return err
	}
	market, merr := resolve.MarketByID(snap, intent.MarketID)
	if merr != nil {
		return err
	}
	chain, token, rerr := resolve.BalanceSide(snap, market, intent.Side)
	if rerr != nil || chain.RPCURL == "" {
		return err
	}
	account := intent.BaseAccount
	if intent.Side == types.SideBuy {
		account = intent.QuoteAccount
	}
	raw, berr := erc20Balance(ctx, chain.RPCURL, token.Address, account)
	if berr != nil {
		c.log.WithError(berr).Debug("balance diagnostic unavailable")
		return err
	}
	held := decimal.NewFromBigInt(raw, -int32(token.Decimals))
	return errors.Wrapf(err, "wallet %s holds %s %s on %s", account, held.String(), token.Symbol, chain.Network)
}

// erc20Balance calls balanceOf(owner) on the token contract over the chain's
// RPC endpoint.
func erc20Balance(ctx context.Context, rpcURL, tokenAddr, owner string) (*big.Int, error) {
	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, errors.Wrap(err, "dial rpc")
	}
	defer eth.Close()

	parsed, err := abi.JSON(strings.NewReader(erc20BalanceOfABI))
	if err != nil {
		return nil, errors.Wrap(err, "parse erc20 abi")
	}
	data, err := parsed.Pack("balanceOf", common.HexToAddress(owner))
	if err != nil {
		return nil, errors.Wrap(err, "pack balanceOf")
	}
	contract := common.HexToAddress(tokenAddr)
	out, err := eth.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: data}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "call balanceOf")
	}
	results, err := parsed.Unpack("balanceOf", out)
	if err != nil || len(results) == 0 {
		return nil, errors.Wrap(err, "unpack balanceOf")
	}
	bal, ok := results[0].(*big.Int)
	if !ok {
		return nil, errors.New("unexpected balanceOf result type")
	}
	return bal, nil
}
