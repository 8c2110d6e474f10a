// Package resolve looks up chain, token and market records inside a
// configuration snapshot by their logical identifiers. All lookups are pure
// functions over the immutable snapshot; a miss names the identifier that
// failed and the alternatives the snapshot knows, so users can self-diagnose
// without re-running with more verbosity.
package resolve

import (
	"github.com/arborter/arborter-go/arb/types"
)

// ChainByNetwork returns the chain with the given logical network name.
func ChainByNetwork(snap *types.ConfigurationSnapshot, network string) (*types.Chain, error) {
	for i := range snap.Chains {
		if snap.Chains[i].Network == network {
			return &snap.Chains[i], nil
		}
	}
	return nil, &types.ResolutionError{Kind: "chain", Requested: network, Known: networkNames(snap)}
}

// TokenBySymbol returns the token listed as symbol on the named network.
func TokenBySymbol(snap *types.ConfigurationSnapshot, network, symbol string) (*types.Chain, *types.Token, error) {
	chain, err := ChainByNetwork(snap, network)
	if err != nil {
		return nil, nil, err
	}
	if tok, ok := chain.Tokens[symbol]; ok {
		return chain, &tok, nil
	}
	known := make([]string, 0, len(chain.Tokens))
	for sym := range chain.Tokens {
		known = append(known, sym)
	}
	return nil, nil, &types.ResolutionError{Kind: "token", Requested: network + "/" + symbol, Known: known}
}

// MarketByID returns the market with the given id.
func MarketByID(snap *types.ConfigurationSnapshot, id string) (*types.Market, error) {
	for i := range snap.Markets {
		if snap.Markets[i].ID == id {
			return &snap.Markets[i], nil
		}
	}
	return nil, &types.ResolutionError{Kind: "market", Requested: id, Known: marketIDs(snap)}
}

// MarketByPair returns the market whose base and quote legs match the given
// chain/token pairs.
func MarketByPair(snap *types.ConfigurationSnapshot, base, quote types.MarketLeg) (*types.Market, error) {
	for i := range snap.Markets {
		m := &snap.Markets[i]
		if m.Base == base && m.Quote == quote {
			return m, nil
		}
	}
	return nil, &types.ResolutionError{
		Kind:      "market",
		Requested: base.Network + "/" + base.Symbol + "-" + quote.Network + "/" + quote.Symbol,
		Known:     marketIDs(snap),
	}
}

// BalanceSide determines which chain/token pair backs an order of the given
// side: a buy spends the quote-side token, a sell spends the base-side token.
// Diagnostic only; order construction never depends on it.
func BalanceSide(snap *types.ConfigurationSnapshot, market *types.Market, side types.Side) (*types.Chain, *types.Token, error) {
	leg := market.Base
	if side == types.SideBuy {
		leg = market.Quote
	}
	return TokenBySymbol(snap, leg.Network, leg.Symbol)
}

func networkNames(snap *types.ConfigurationSnapshot) []string {
	names := make([]string, 0, len(snap.Chains))
	for i := range snap.Chains {
		names = append(names, snap.Chains[i].Network)
	}
	return names
}

func marketIDs(snap *types.ConfigurationSnapshot) []string {
	ids := make([]string, 0, len(snap.Markets))
	for i := range snap.Markets {
		ids = append(ids, snap.Markets[i].ID)
	}
	return ids
}
