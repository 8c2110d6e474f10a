package signing

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/arborter/arborter-go/arb/types"
)

// Canonical payload layout. The first byte tags the payload kind so an order
// signature can never be presented as a cancel or vice versa. All integers
// are big-endian; strings are uint16-length-prefixed UTF-8.
const (
	payloadVersion = 0x01

	kindOrder  = 0x01
	kindCancel = 0x02
)

const sideSell = 0x02 // buy encodes as 0x01

// EncodeOrder serializes a trading intent to its canonical byte form. The
// returned bytes are what gets signed AND what crosses the wire; callers
// must not re-serialize.
func EncodeOrder(intent types.TradingIntent) ([]byte, error) {
	if err := validateOrder(intent); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteByte(kindOrder)
	buf.WriteByte(payloadVersion)
	writeString(&buf, intent.MarketID)
	writeSide(&buf, intent.Side)
	writeString(&buf, intent.Quantity)
	if intent.Price != "" {
		buf.WriteByte(0x01)
		writeString(&buf, intent.Price)
	} else {
		buf.WriteByte(0x00)
	}
	writeString(&buf, intent.BaseAccount)
	writeString(&buf, intent.QuoteAccount)
	binary.Write(&buf, binary.BigEndian, uint32(intent.ExecutionType))
	binary.Write(&buf, binary.BigEndian, uint16(len(intent.MatchingOrderIDs)))
	for _, id := range intent.MatchingOrderIDs {
		binary.Write(&buf, binary.BigEndian, id)
	}
	return buf.Bytes(), nil
}

// EncodeCancel serializes a cancel intent; same rules as EncodeOrder.
func EncodeCancel(intent types.CancelIntent) ([]byte, error) {
	if err := validateCancel(intent); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteByte(kindCancel)
	buf.WriteByte(payloadVersion)
	writeString(&buf, intent.MarketID)
	writeSide(&buf, intent.Side)
	writeString(&buf, intent.TokenAddress)
	binary.Write(&buf, binary.BigEndian, intent.OrderID)
	return buf.Bytes(), nil
}

// SignOrder builds the canonical payload for intent and signs exactly those
// bytes through the personal-message path.
func SignOrder(id *Identity, intent types.TradingIntent) (types.SignedEnvelope, error) {
	payload, err := EncodeOrder(intent)
	if err != nil {
		return types.SignedEnvelope{}, err
	}
	sig, err := id.SignMessage(payload)
	if err != nil {
		return types.SignedEnvelope{}, err
	}
	return types.SignedEnvelope{Payload: payload, Signature: sig}, nil
}

// SignCancel is SignOrder for cancel intents.
func SignCancel(id *Identity, intent types.CancelIntent) (types.SignedEnvelope, error) {
	payload, err := EncodeCancel(intent)
	if err != nil {
		return types.SignedEnvelope{}, err
	}
	sig, err := id.SignMessage(payload)
	if err != nil {
		return types.SignedEnvelope{}, err
	}
	return types.SignedEnvelope{Payload: payload, Signature: sig}, nil
}

// DecodeOrder parses canonical order bytes back into an intent. Used by the
// verifying side and by round-trip tests.
func DecodeOrder(payload []byte) (types.TradingIntent, error) {
	r := &reader{buf: payload}
	var intent types.TradingIntent
	kind := r.byte()
	version := r.byte()
	if r.err == nil && (kind != kindOrder || version != payloadVersion) {
		return intent, &types.EncodingError{Field: "payload", Reason: fmt.Sprintf("unexpected kind/version %#x/%#x", kind, version)}
	}
	intent.MarketID = r.string()
	intent.Side = r.side()
	intent.Quantity = r.string()
	if r.byte() == 0x01 {
		intent.Price = r.string()
	}
	intent.BaseAccount = r.string()
	intent.QuoteAccount = r.string()
	intent.ExecutionType = types.ExecutionType(r.uint32())
	n := int(r.uint16())
	for i := 0; i < n && r.err == nil; i++ {
		intent.MatchingOrderIDs = append(intent.MatchingOrderIDs, r.uint64())
	}
	if r.err != nil {
		return types.TradingIntent{}, r.err
	}
	if r.rest() != 0 {
		return types.TradingIntent{}, &types.EncodingError{Field: "payload", Reason: "trailing bytes"}
	}
	return intent, nil
}

// DecodeCancel parses canonical cancel bytes.
func DecodeCancel(payload []byte) (types.CancelIntent, error) {
	r := &reader{buf: payload}
	var intent types.CancelIntent
	kind := r.byte()
	version := r.byte()
	if r.err == nil && (kind != kindCancel || version != payloadVersion) {
		return intent, &types.EncodingError{Field: "payload", Reason: fmt.Sprintf("unexpected kind/version %#x/%#x", kind, version)}
	}
	intent.MarketID = r.string()
	intent.Side = r.side()
	intent.TokenAddress = r.string()
	intent.OrderID = r.uint64()
	if r.err != nil {
		return types.CancelIntent{}, r.err
	}
	if r.rest() != 0 {
		return types.CancelIntent{}, &types.EncodingError{Field: "payload", Reason: "trailing bytes"}
	}
	return intent, nil
}

func validateOrder(intent types.TradingIntent) error {
	if intent.MarketID == "" {
		return &types.EncodingError{Field: "marketId", Reason: "empty"}
	}
	if !intent.Side.Valid() {
		return &types.EncodingError{Field: "side", Reason: fmt.Sprintf("unknown side %q", intent.Side)}
	}
	if intent.Quantity == "" {
		return &types.EncodingError{Field: "quantity", Reason: "empty"}
	}
	if len(intent.MatchingOrderIDs) > math.MaxUint16 {
		return &types.EncodingError{Field: "matchingOrderIds", Reason: "too many entries"}
	}
	for _, f := range []struct{ name, val string }{
		{"marketId", intent.MarketID},
		{"quantity", intent.Quantity},
		{"price", intent.Price},
		{"baseAccount", intent.BaseAccount},
		{"quoteAccount", intent.QuoteAccount},
	} {
		if len(f.val) > math.MaxUint16 {
			return &types.EncodingError{Field: f.name, Reason: "exceeds 65535 bytes"}
		}
	}
	return nil
}

func validateCancel(intent types.CancelIntent) error {
	if intent.MarketID == "" {
		return &types.EncodingError{Field: "marketId", Reason: "empty"}
	}
	if !intent.Side.Valid() {
		return &types.EncodingError{Field: "side", Reason: fmt.Sprintf("unknown side %q", intent.Side)}
	}
	for _, f := range []struct{ name, val string }{
		{"marketId", intent.MarketID},
		{"tokenAddress", intent.TokenAddress},
	} {
		if len(f.val) > math.MaxUint16 {
			return &types.EncodingError{Field: f.name, Reason: "exceeds 65535 bytes"}
		}
	}
	return nil
}

func writeString(buf *bytes.Buffer, s string) {
	binary.Write(buf, binary.BigEndian, uint16(len(s)))
	buf.WriteString(s)
}

func writeSide(buf *bytes.Buffer, s types.Side) {
	if s == types.SideSell {
		buf.WriteByte(sideSell)
	} else {
		buf.WriteByte(0x01)
	}
}

// reader is a cursor over a canonical payload that records the first error
// and short-circuits the rest.
type reader struct {
	buf []byte
	off int
	err error
}

func (r *reader) fail() {
	if r.err == nil {
		r.err = &types.EncodingError{Field: "payload", Reason: "truncated"}
	}
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.off+n > len(r.buf) {
		r.fail()
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) byte() byte {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *reader) uint16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint16(b)
}

func (r *reader) uint32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

func (r *reader) uint64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

func (r *reader) string() string {
	n := int(r.uint16())
	return string(r.take(n))
}

func (r *reader) side() types.Side {
	if r.byte() == sideSell {
		return types.SideSell
	}
	return types.SideBuy
}

func (r *reader) rest() int {
	return len(r.buf) - r.off
}
