package signing

import "github.com/google/uuid"

// NewNonce returns a fresh nonce for one authentication attempt. A random
// UUID keeps nonces unpredictable as well as unique, so a verifier that does
// not track used nonces still cannot be replayed against predictably.
func NewNonce() string {
	return uuid.NewString()
}
