package types

// TradingIntent is an order to be signed and submitted. Quantity and price
// are decimal strings: the service owns the authoritative decimal scale per
// market, so the client carries the user's text through untouched.
type TradingIntent struct {
	MarketID         string        `json:"marketId"`
	Side             Side          `json:"side"`
	Quantity         string        `json:"quantity"`
	Price            string        `json:"price,omitempty"` // empty for market orders
	BaseAccount      string        `json:"baseAccount"`
	QuoteAccount     string        `json:"quoteAccount"`
	ExecutionType    ExecutionType `json:"executionType"`
	MatchingOrderIDs []uint64      `json:"matchingOrderIds,omitempty"`
}

// CancelIntent asks the service to remove a resting order.
type CancelIntent struct {
	MarketID     string `json:"marketId"`
	Side         Side   `json:"side"`
	TokenAddress string `json:"tokenAddress"`
	OrderID      uint64 `json:"orderId"`
}

// SignedEnvelope pairs the canonical payload bytes with the recoverable
// signature computed over exactly those bytes. The payload here is what goes
// on the wire; re-serializing the intent after signing is forbidden.
type SignedEnvelope struct {
	Payload   []byte
	Signature []byte // 65 bytes: r || s || v
}

// TxHash is a typed transaction hash reported by the service.
type TxHash struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Fill is one trade produced by matching a submitted order.
type Fill struct {
	TradeID      uint64 `json:"tradeId"`
	MarketID     string `json:"marketId"`
	Price        string `json:"price"`
	Quantity     string `json:"quantity"`
	TakerSide    Side   `json:"takerSide"`
	MakerOrderID uint64 `json:"makerOrderId"`
	TakerOrderID uint64 `json:"takerOrderId"`
}

// OrderResult is the service's answer to an order submission.
type OrderResult struct {
	Accepted          bool          `json:"orderAccepted"`
	Order             TradingIntent `json:"order"`
	OrderID           uint64        `json:"orderId,omitempty"`
	Trades            []Fill        `json:"trades,omitempty"`
	TransactionHashes []TxHash      `json:"transactionHashes,omitempty"`
}

// CancelResult is the service's answer to a cancel request.
type CancelResult struct {
	Canceled          bool     `json:"orderCanceled"`
	TransactionHashes []TxHash `json:"transactionHashes,omitempty"`
}

// OpenOrder is one resting order as reported by the token-gated listing.
type OpenOrder struct {
	OrderID  uint64 `json:"orderId"`
	MarketID string `json:"marketId"`
	Side     Side   `json:"side"`
	Quantity string `json:"quantity"`
	Price    string `json:"price"`
}
