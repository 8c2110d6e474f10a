package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrExpiredSession is reported when the token lifetime guard rejects a held
// token before an authenticated call is attempted.
var ErrExpiredSession = errors.New("session token expired or inside the skew buffer")

// Well-known rejection codes the service returns. The message text that
// accompanies them is surfaced verbatim.
const (
	CodeInvalidSignature    = "INVALID_SIGNATURE"
	CodeStaleTimestamp      = "STALE_TIMESTAMP"
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	CodeMarketNotFound      = "MARKET_NOT_FOUND"
	CodeAdminExists         = "ADMIN_EXISTS"
)

// KeyError wraps a failure to parse an identity string as a private key.
// Never retried: it indicates bad input, not a transient condition.
type KeyError struct {
	Err error
}

func (e *KeyError) Error() string { return fmt.Sprintf("invalid private key: %v", e.Err) }
func (e *KeyError) Unwrap() error { return e.Err }

// EncodingError marks a canonical serialization defect. Never retried.
type EncodingError struct {
	Field  string
	Reason string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encode %s: %s", e.Field, e.Reason)
}

// TransportError wraps connection, TLS and timeout failures. Retry policy
// belongs to the caller; the client never retries on its own.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("transport %s: %v", e.Op, e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// RemoteRejection is a structured failure returned by the service. Message
// keeps the server's text verbatim; local context is appended by callers via
// wrapping, never by rewriting Message.
type RemoteRejection struct {
	Code    string
	Message string
}

func (e *RemoteRejection) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ResolutionError reports a failed configuration lookup, naming what was
// requested and what the snapshot actually knows.
type ResolutionError struct {
	Kind      string // "market", "chain" or "token"
	Requested string
	Known     []string
}

func (e *ResolutionError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("unknown %s %q", e.Kind, e.Requested)
	}
	return fmt.Sprintf("unknown %s %q (known: %s)", e.Kind, e.Requested, strings.Join(e.Known, ", "))
}
