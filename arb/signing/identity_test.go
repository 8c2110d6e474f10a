package signing

import (
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/arborter/arborter-go/arb/types"
)

// well-known anvil/hardhat dev key, account 0
const (
	devKeyHex     = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	devKeyAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

func TestIdentityFromHex(t *testing.T) {
	for _, input := range []string{devKeyHex, "0x" + devKeyHex, "  0x" + devKeyHex + "  "} {
		id, err := IdentityFromHex(input)
		require.NoError(t, err, "input %q", input)
		require.Equal(t, devKeyAddress, id.Address().Hex())
	}
}

func TestIdentityFromHexRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "0x", "zzzz", "1234", "0x" + devKeyHex + "00"} {
		_, err := IdentityFromHex(input)
		require.Error(t, err, "input %q", input)
		var ke *types.KeyError
		require.ErrorAs(t, err, &ke, "input %q", input)
	}
}

func TestSignDigestRecoverRoundTrip(t *testing.T) {
	for i := 0; i < 16; i++ {
		id, err := GenerateIdentity()
		require.NoError(t, err)

		digest := crypto.Keccak256([]byte(fmt.Sprintf("message %d", i)))
		sig, err := id.SignDigest(digest)
		require.NoError(t, err)
		require.Len(t, sig, 65)

		recovered, err := RecoverDigest(digest, sig)
		require.NoError(t, err)
		require.Equal(t, id.Address(), recovered)
	}
}

func TestSignDigestRejectsWrongLength(t *testing.T) {
	id, err := GenerateIdentity()
	require.NoError(t, err)
	_, err = id.SignDigest([]byte("short"))
	require.Error(t, err)
}

func TestSignMessageUsesPersonalPrefix(t *testing.T) {
	id, err := IdentityFromHex(devKeyHex)
	require.NoError(t, err)

	msg := []byte("hello arborter")
	sig, err := id.SignMessage(msg)
	require.NoError(t, err)

	// the prepared pre-image is the personal-message convention, and it is
	// deterministic: same bytes, same hash, every time
	expected := crypto.Keccak256(
		[]byte(fmt.Sprintf("\x19Ethereum Signed Message:\n%d", len(msg))),
		msg,
	)
	require.Equal(t, expected, accounts.TextHash(msg))
	require.Equal(t, accounts.TextHash(msg), accounts.TextHash(msg))

	recovered, err := RecoverMessage(msg, sig)
	require.NoError(t, err)
	require.Equal(t, id.Address(), recovered)
	require.True(t, VerifyMessage(id.Address(), msg, sig))
	require.False(t, VerifyMessage(common.HexToAddress("0x01"), msg, sig))
}

func TestMessageAndDigestPathsDiffer(t *testing.T) {
	id, err := IdentityFromHex(devKeyHex)
	require.NoError(t, err)

	digest := crypto.Keccak256([]byte("payload"))
	rawSig, err := id.SignDigest(digest)
	require.NoError(t, err)

	// a raw-digest signature must not verify through the prefixed path
	recovered, err := RecoverMessage(digest, rawSig)
	if err == nil {
		require.NotEqual(t, id.Address(), recovered)
	}
}

func TestIdentityFromMnemonic(t *testing.T) {
	// standard BIP-39 test vector mnemonic
	const mnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

	a, err := IdentityFromMnemonic(mnemonic, 0)
	require.NoError(t, err)
	b, err := IdentityFromMnemonic(mnemonic, 0)
	require.NoError(t, err)
	require.Equal(t, a.Address(), b.Address())

	c, err := IdentityFromMnemonic(mnemonic, 1)
	require.NoError(t, err)
	require.NotEqual(t, a.Address(), c.Address())

	_, err = IdentityFromMnemonic("definitely not a mnemonic", 0)
	require.Error(t, err)
}
