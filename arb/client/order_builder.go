package client

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/arborter/arborter-go/arb/resolve"
	"github.com/arborter/arborter-go/arb/types"
)

// OrderParams are the user-level inputs to a trading intent. Quantity and
// price stay decimal strings end to end; the builder only checks that they
// parse and fit the market's scale — it never rounds.
type OrderParams struct {
	MarketID      string
	Side          types.Side
	Quantity      string
	Price         string // empty for market orders
	Account       string // wallet address, used on both legs unless overridden
	BaseAccount   string
	QuoteAccount  string
	ExecutionType types.ExecutionType

	// MatchingOrderIDs pins the resting orders a taker intends to cross
	// with, when the caller has already picked them from the book.
	MatchingOrderIDs []uint64
}

// BuildOrder resolves the market out of the snapshot and assembles a
// validated trading intent ready for signing.
func BuildOrder(snap *types.ConfigurationSnapshot, p OrderParams) (types.TradingIntent, error) {
	var zero types.TradingIntent
	if !p.Side.Valid() {
		return zero, &types.EncodingError{Field: "side", Reason: fmt.Sprintf("unknown side %q", p.Side)}
	}
	market, err := resolve.MarketByID(snap, p.MarketID)
	if err != nil {
		return zero, err
	}
	_, baseToken, err := resolve.TokenBySymbol(snap, market.Base.Network, market.Base.Symbol)
	if err != nil {
		return zero, err
	}
	_, quoteToken, err := resolve.TokenBySymbol(snap, market.Quote.Network, market.Quote.Symbol)
	if err != nil {
		return zero, err
	}

	if err := checkScale("quantity", p.Quantity, baseToken.Decimals); err != nil {
		return zero, err
	}
	if p.Price != "" {
		if err := checkScale("price", p.Price, quoteToken.Decimals); err != nil {
			return zero, err
		}
	}

	base, quote := p.BaseAccount, p.QuoteAccount
	if base == "" {
		base = p.Account
	}
	if quote == "" {
		quote = p.Account
	}
	if base == "" || quote == "" {
		return zero, &types.EncodingError{Field: "account", Reason: "no account address supplied"}
	}

	return types.TradingIntent{
		MarketID:         market.ID,
		Side:             p.Side,
		Quantity:         p.Quantity,
		Price:            p.Price,
		BaseAccount:      base,
		QuoteAccount:     quote,
		ExecutionType:    p.ExecutionType,
		MatchingOrderIDs: p.MatchingOrderIDs,
	}, nil
}

// checkScale rejects values that cannot be represented at the token's
// decimal scale. The comparison is on value, not digits, so "1.100" passes a
// 2-decimal market while "1.101" does not; the original string is what gets
// signed and transmitted either way.
func checkScale(field, value string, decimals uint32) error {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return &types.EncodingError{Field: field, Reason: fmt.Sprintf("not a decimal: %q", value)}
	}
	if d.Sign() <= 0 {
		return &types.EncodingError{Field: field, Reason: fmt.Sprintf("must be positive, got %q", value)}
	}
	if !d.Equal(d.Truncate(int32(decimals))) {
		return &types.EncodingError{
			Field:  field,
			Reason: fmt.Sprintf("%q exceeds the market scale of %d decimals", value, decimals),
		}
	}
	return nil
}
