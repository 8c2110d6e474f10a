package signing

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	hdwallet "github.com/miguelmota/go-ethereum-hdwallet"

	"github.com/arborter/arborter-go/arb/types"
)

// Identity wraps a secp256k1 private key and its derived address. It is
// immutable after construction and safe to share across goroutines. The key
// is held only in memory and never persisted by this package.
type Identity struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

// IdentityFromHex parses a hex-encoded private key ("0x" prefix optional).
func IdentityFromHex(hexKey string) (*Identity, error) {
	k := strings.TrimSpace(hexKey)
	k = strings.TrimPrefix(k, "0x")
	k = strings.TrimSpace(k)
	if k == "" {
		return nil, &types.KeyError{Err: fmt.Errorf("private key is empty")}
	}
	priv, err := crypto.HexToECDSA(k)
	if err != nil {
		return nil, &types.KeyError{Err: err}
	}
	return newIdentity(priv), nil
}

// IdentityFromMnemonic derives an identity from a BIP-39 mnemonic at the
// standard Ethereum path m/44'/60'/0'/0/<index>.
func IdentityFromMnemonic(mnemonic string, index uint32) (*Identity, error) {
	wallet, err := hdwallet.NewFromMnemonic(strings.TrimSpace(mnemonic))
	if err != nil {
		return nil, &types.KeyError{Err: err}
	}
	path := hdwallet.MustParseDerivationPath(fmt.Sprintf("m/44'/60'/0'/0/%d", index))
	account, err := wallet.Derive(path, false)
	if err != nil {
		return nil, &types.KeyError{Err: err}
	}
	priv, err := wallet.PrivateKey(account)
	if err != nil {
		return nil, &types.KeyError{Err: err}
	}
	return newIdentity(priv), nil
}

// GenerateIdentity creates a fresh random identity. Used by tests and the
// dev tooling.
func GenerateIdentity() (*Identity, error) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	return newIdentity(priv), nil
}

func newIdentity(priv *ecdsa.PrivateKey) *Identity {
	return &Identity{
		privateKey: priv,
		address:    crypto.PubkeyToAddress(priv.PublicKey),
	}
}

// Address returns the 20-byte account identifier derived from the key.
func (id *Identity) Address() common.Address {
	return id.address
}

// SignDigest signs a 32-byte digest directly (EIP-712 path). The result is
// the 65-byte recoverable r || s || v form.
func (id *Identity) SignDigest(digest []byte) ([]byte, error) {
	if len(digest) != 32 {
		return nil, fmt.Errorf("digest must be 32 bytes, got %d", len(digest))
	}
	return crypto.Sign(digest, id.privateKey)
}

// SignMessage signs arbitrary bytes through the Ethereum personal-message
// convention: the "\x19Ethereum Signed Message:\n<len>" prefix is applied
// before hashing. This path must never be fed an EIP-712 digest.
func (id *Identity) SignMessage(message []byte) ([]byte, error) {
	return crypto.Sign(accounts.TextHash(message), id.privateKey)
}

// RecoverDigest recovers the address that produced sig over a raw 32-byte
// digest.
func RecoverDigest(digest, sig []byte) (common.Address, error) {
	if len(sig) != 65 {
		return common.Address{}, fmt.Errorf("invalid signature length: %d", len(sig))
	}
	if len(digest) != 32 {
		return common.Address{}, fmt.Errorf("invalid digest length: %d", len(digest))
	}
	pub, err := crypto.SigToPub(digest, sig)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// RecoverMessage recovers the address that produced sig over message via the
// personal-message path.
func RecoverMessage(message, sig []byte) (common.Address, error) {
	return RecoverDigest(accounts.TextHash(message), sig)
}

// VerifyMessage reports whether sig over message recovers to addr.
func VerifyMessage(addr common.Address, message, sig []byte) bool {
	got, err := RecoverMessage(message, sig)
	if err != nil {
		return false
	}
	return got == addr
}
