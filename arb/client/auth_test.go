package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arborter/arborter-go/arb/signing"
	"github.com/arborter/arborter-go/arb/types"
	"github.com/arborter/arborter-go/internal/devserver"
)

// well-known anvil/hardhat dev key, account 0
const (
	devKeyHex     = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	devKeyAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

const testChainID = 84531

func newTestServer(t *testing.T) (*devserver.Server, *Client) {
	t.Helper()
	srv := devserver.New(testChainID, devserver.Fixture())
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return srv, New(ts.URL)
}

func TestAuthenticateEndToEnd(t *testing.T) {
	_, c := newTestServer(t)
	id, err := signing.IdentityFromHex(devKeyHex)
	require.NoError(t, err)

	tok, err := c.Authenticate(context.Background(), id, testChainID)
	require.NoError(t, err)
	require.Equal(t, devKeyAddress, tok.Address, "token address must match the signing key")
	require.NotEmpty(t, tok.Token)
	require.True(t, tok.Usable())
}

func TestAuthenticateWrongChainRejected(t *testing.T) {
	_, c := newTestServer(t)
	id, err := signing.IdentityFromHex(devKeyHex)
	require.NoError(t, err)

	// signing for chain 1 against a verifier expecting 84531: the domain
	// separator differs, so recovery lands on some other address
	_, err = c.Authenticate(context.Background(), id, 1)
	var rr *types.RemoteRejection
	require.ErrorAs(t, err, &rr)
	require.Equal(t, types.CodeInvalidSignature, rr.Code)
	require.NotEmpty(t, rr.Message)
}

func TestInitAdminOnlyOnce(t *testing.T) {
	_, c := newTestServer(t)
	ctx := context.Background()

	tok, err := c.InitAdmin(ctx, devKeyAddress)
	require.NoError(t, err)
	require.Equal(t, devKeyAddress, tok.Address)

	_, err = c.InitAdmin(ctx, "0x0000000000000000000000000000000000000001")
	var rr *types.RemoteRejection
	require.ErrorAs(t, err, &rr)
	require.Equal(t, types.CodeAdminExists, rr.Code)
}

func TestRemoteRejectionKeepsCodeOnlyBody(t *testing.T) {
	// some rejections carry a code with no message; the code must survive
	// instead of collapsing into the generic HTTP fallback
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"code":"INSUFFICIENT_BALANCE"}`))
	}))
	t.Cleanup(ts.Close)

	_, err := New(ts.URL).FetchConfig(context.Background())
	var rr *types.RemoteRejection
	require.ErrorAs(t, err, &rr)
	require.Equal(t, types.CodeInsufficientBalance, rr.Code)
	require.Empty(t, rr.Message)
}

func TestAuthenticateTransportError(t *testing.T) {
	id, err := signing.IdentityFromHex(devKeyHex)
	require.NoError(t, err)

	// nothing listens here
	c := New("http://127.0.0.1:1")
	_, err = c.Authenticate(context.Background(), id, testChainID)
	var te *types.TransportError
	require.ErrorAs(t, err, &te)
}
