package types

import "time"

// SkewBuffer absorbs clock drift between client and server: a token inside
// this window of its expiry is treated as already unusable.
const SkewBuffer = 30 * time.Second

// SessionToken is the bearer credential returned by a successful login.
// The client never refreshes it automatically; callers re-authenticate when
// UsableAt reports false.
type SessionToken struct {
	Token     string `json:"jwtToken"`
	ExpiresAt uint64 `json:"expiresAt"` // epoch seconds
	Address   string `json:"address"`
}

// UsableAt reports whether the token is still good at the given instant.
// Validity is time-dependent, so callers must re-check on every use rather
// than cache the answer.
func (t SessionToken) UsableAt(now time.Time) bool {
	return t.ExpiresAt > uint64(now.Add(SkewBuffer).Unix())
}

// Usable is UsableAt against the wall clock.
func (t SessionToken) Usable() bool {
	return t.UsableAt(time.Now())
}
