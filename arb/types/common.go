package types

// Side is the direction of a trading intent.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Valid reports whether the side is one of the two known values.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// ExecutionType tags how an order should be matched.
type ExecutionType int32

const (
	ExecutionLimit  ExecutionType = 0 // rest on the book until filled or canceled
	ExecutionMarket ExecutionType = 1 // cross immediately at best available price
	ExecutionFAK    ExecutionType = 2 // fill what crosses, cancel the remainder
)
