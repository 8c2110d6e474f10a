package client

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arborter/arborter-go/arb/types"
	"github.com/arborter/arborter-go/internal/devserver"
)

func fixture() *types.ConfigurationSnapshot {
	snap := devserver.Fixture()
	return &snap
}

func TestBuildOrderFillsAccounts(t *testing.T) {
	snap := fixture()

	intent, err := BuildOrder(snap, OrderParams{
		MarketID: "A1USDC-A2USDT",
		Side:     types.SideSell,
		Quantity: "10.25",
		Price:    "0.998",
		Account:  devKeyAddress,
	})
	require.NoError(t, err)
	require.Equal(t, devKeyAddress, intent.BaseAccount)
	require.Equal(t, devKeyAddress, intent.QuoteAccount)
	require.Equal(t, "10.25", intent.Quantity)

	override, err := BuildOrder(snap, OrderParams{
		MarketID:     "A1USDC-A2USDT",
		Side:         types.SideSell,
		Quantity:     "10.25",
		Price:        "0.998",
		Account:      devKeyAddress,
		QuoteAccount: "0x0000000000000000000000000000000000000002",
	})
	require.NoError(t, err)
	require.Equal(t, devKeyAddress, override.BaseAccount)
	require.Equal(t, "0x0000000000000000000000000000000000000002", override.QuoteAccount)
}

func TestBuildOrderScaleChecks(t *testing.T) {
	snap := fixture()
	base := OrderParams{
		MarketID: "A1USDC-A2USDT", // 6-decimal legs on both sides
		Side:     types.SideBuy,
		Account:  devKeyAddress,
	}

	cases := []struct {
		name     string
		quantity string
		price    string
		ok       bool
	}{
		{"exact scale", "1.000001", "1.002", true},
		{"trailing zeros beyond scale are value-equal", "1.1000000", "1.50", true},
		{"quantity too fine", "1.0000001", "1.002", false},
		{"price too fine", "1.5", "1.0000001", false},
		{"zero quantity", "0", "1.002", false},
		{"negative quantity", "-1", "1.002", false},
		{"not a number", "ten", "1.002", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := base
			p.Quantity = tc.quantity
			p.Price = tc.price
			_, err := BuildOrder(snap, p)
			if tc.ok {
				require.NoError(t, err)
				return
			}
			var ee *types.EncodingError
			require.ErrorAs(t, err, &ee)
		})
	}
}

func TestBuildOrderMarketOrderSkipsPriceCheck(t *testing.T) {
	snap := fixture()
	intent, err := BuildOrder(snap, OrderParams{
		MarketID:      "A1USDC-A2USDT",
		Side:          types.SideBuy,
		Quantity:      "5",
		Account:       devKeyAddress,
		ExecutionType: types.ExecutionMarket,
	})
	require.NoError(t, err)
	require.Empty(t, intent.Price)
}

func TestBuildOrderUnknownMarket(t *testing.T) {
	_, err := BuildOrder(fixture(), OrderParams{
		MarketID: "NO-SUCH-MARKET",
		Side:     types.SideBuy,
		Quantity: "1",
		Account:  devKeyAddress,
	})
	var re *types.ResolutionError
	require.ErrorAs(t, err, &re)
	require.Equal(t, "market", re.Kind)
}

func TestBuildOrderRequiresAccount(t *testing.T) {
	_, err := BuildOrder(fixture(), OrderParams{
		MarketID: "A1USDC-A2USDT",
		Side:     types.SideBuy,
		Quantity: "1",
		Price:    "1",
	})
	var ee *types.EncodingError
	require.ErrorAs(t, err, &ee)
	require.Equal(t, "account", ee.Field)
}
