package types

// Token is a single asset listed on a chain.
type Token struct {
	Symbol   string `json:"symbol"`
	Address  string `json:"address"`
	Decimals uint32 `json:"decimals"`
}

// Chain is one network known to the service, with its listed tokens keyed by
// symbol and the optional trading contract deployed on it.
type Chain struct {
	Network       string           `json:"network"` // logical name, e.g. "anvil-1"
	ChainID       uint64           `json:"chainId"`
	RPCURL        string           `json:"rpcUrl,omitempty"`
	TradeContract string           `json:"tradeContract,omitempty"`
	Tokens        map[string]Token `json:"tokens"`
}

// MarketLeg references one side of a market as a chain/token pair.
type MarketLeg struct {
	Network string `json:"network"`
	Symbol  string `json:"symbol"`
}

// Market links a base leg to a quote leg under a market id.
type Market struct {
	ID    string    `json:"id"`
	Base  MarketLeg `json:"base"`
	Quote MarketLeg `json:"quote"`
}

// ConfigurationSnapshot is the service-side configuration fetched once per
// command invocation. It is never mutated after decoding; sharing it across
// goroutines is safe.
type ConfigurationSnapshot struct {
	Chains  []Chain  `json:"chains"`
	Markets []Market `json:"markets"`
}
