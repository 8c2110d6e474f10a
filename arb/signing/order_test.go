package signing

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arborter/arborter-go/arb/types"
)

func sampleOrder() types.TradingIntent {
	return types.TradingIntent{
		MarketID:         "A1USDC-A2USDT",
		Side:             types.SideBuy,
		Quantity:         "12.500000",
		Price:            "1.002000",
		BaseAccount:      "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266",
		QuoteAccount:     "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266",
		ExecutionType:    types.ExecutionLimit,
		MatchingOrderIDs: []uint64{7, 42},
	}
}

func TestEncodeOrderRoundTrip(t *testing.T) {
	intent := sampleOrder()
	payload, err := EncodeOrder(intent)
	require.NoError(t, err)

	again, err := EncodeOrder(intent)
	require.NoError(t, err)
	require.True(t, bytes.Equal(payload, again), "canonical encoding must be deterministic")

	decoded, err := DecodeOrder(payload)
	require.NoError(t, err)
	require.Equal(t, intent, decoded)
}

func TestEncodeOrderPreservesDecimalText(t *testing.T) {
	// string content is authoritative: leading zeros and trailing fractional
	// zeros must survive the round trip untouched
	for _, q := range []string{"007.25", "1.100", "0.000001", "1000000"} {
		intent := sampleOrder()
		intent.Quantity = q
		intent.Price = "01.50"

		payload, err := EncodeOrder(intent)
		require.NoError(t, err)
		decoded, err := DecodeOrder(payload)
		require.NoError(t, err)
		require.Equal(t, q, decoded.Quantity)
		require.Equal(t, "01.50", decoded.Price)
	}
}

func TestEncodeOrderMarketOrderOmitsPrice(t *testing.T) {
	intent := sampleOrder()
	intent.Price = ""
	intent.ExecutionType = types.ExecutionMarket

	payload, err := EncodeOrder(intent)
	require.NoError(t, err)
	decoded, err := DecodeOrder(payload)
	require.NoError(t, err)
	require.Empty(t, decoded.Price)
	require.Equal(t, types.ExecutionMarket, decoded.ExecutionType)
}

func TestEncodeOrderValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*types.TradingIntent)
	}{
		{"empty market", func(i *types.TradingIntent) { i.MarketID = "" }},
		{"bad side", func(i *types.TradingIntent) { i.Side = "SIDEWAYS" }},
		{"empty quantity", func(i *types.TradingIntent) { i.Quantity = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			intent := sampleOrder()
			tc.mutate(&intent)
			_, err := EncodeOrder(intent)
			var ee *types.EncodingError
			require.ErrorAs(t, err, &ee)
		})
	}
}

func TestSignOrderPayloadIsWhatWasSigned(t *testing.T) {
	id, err := IdentityFromHex(devKeyHex)
	require.NoError(t, err)

	intent := sampleOrder()
	env, err := SignOrder(id, intent)
	require.NoError(t, err)
	require.Len(t, env.Signature, 65)

	// re-hash exactly the transmitted bytes: the signature must recover the
	// signing address from them without any re-serialization
	recovered, err := RecoverMessage(env.Payload, env.Signature)
	require.NoError(t, err)
	require.Equal(t, id.Address(), recovered)

	decoded, err := DecodeOrder(env.Payload)
	require.NoError(t, err)
	require.Equal(t, intent, decoded)
}

func TestSignCancelRoundTrip(t *testing.T) {
	id, err := IdentityFromHex(devKeyHex)
	require.NoError(t, err)

	intent := types.CancelIntent{
		MarketID:     "A1USDC-A2USDT",
		Side:         types.SideSell,
		TokenAddress: "0x1111111111111111111111111111111111111111",
		OrderID:      99,
	}
	env, err := SignCancel(id, intent)
	require.NoError(t, err)
	require.True(t, VerifyMessage(id.Address(), env.Payload, env.Signature))

	decoded, err := DecodeCancel(env.Payload)
	require.NoError(t, err)
	require.Equal(t, intent, decoded)
}

func TestEncodeCancelValidation(t *testing.T) {
	// strings longer than the uint16 length prefix would wrap and corrupt the
	// canonical bytes, so they must be rejected before anything is signed
	oversized := strings.Repeat("m", math.MaxUint16+1)
	cases := []struct {
		name   string
		mutate func(*types.CancelIntent)
	}{
		{"empty market", func(i *types.CancelIntent) { i.MarketID = "" }},
		{"bad side", func(i *types.CancelIntent) { i.Side = "SIDEWAYS" }},
		{"oversized market id", func(i *types.CancelIntent) { i.MarketID = oversized }},
		{"oversized token address", func(i *types.CancelIntent) { i.TokenAddress = oversized }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			intent := types.CancelIntent{
				MarketID:     "A1USDC-A2USDT",
				Side:         types.SideSell,
				TokenAddress: "0x1111111111111111111111111111111111111111",
				OrderID:      99,
			}
			tc.mutate(&intent)
			_, err := EncodeCancel(intent)
			var ee *types.EncodingError
			require.ErrorAs(t, err, &ee)
		})
	}

	// at the boundary the payload still round-trips exactly
	intent := types.CancelIntent{
		MarketID: strings.Repeat("m", math.MaxUint16),
		Side:     types.SideSell,
		OrderID:  1,
	}
	payload, err := EncodeCancel(intent)
	require.NoError(t, err)
	decoded, err := DecodeCancel(payload)
	require.NoError(t, err)
	require.Equal(t, intent, decoded)
}

func TestPayloadKindsDoNotCross(t *testing.T) {
	orderPayload, err := EncodeOrder(sampleOrder())
	require.NoError(t, err)
	cancelPayload, err := EncodeCancel(types.CancelIntent{
		MarketID: "A1USDC-A2USDT",
		Side:     types.SideBuy,
		OrderID:  1,
	})
	require.NoError(t, err)

	_, err = DecodeCancel(orderPayload)
	require.Error(t, err)
	_, err = DecodeOrder(cancelPayload)
	require.Error(t, err)
}

func TestDecodeOrderRejectsDamage(t *testing.T) {
	payload, err := EncodeOrder(sampleOrder())
	require.NoError(t, err)

	_, err = DecodeOrder(payload[:len(payload)-1])
	require.Error(t, err)

	_, err = DecodeOrder(append(append([]byte{}, payload...), 0x00))
	require.Error(t, err)

	_, err = DecodeOrder(nil)
	require.Error(t, err)
}
