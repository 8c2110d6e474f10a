package signing

import (
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/pkg/errors"
)

// Eip712Domain scopes an auth signature to this application and chain.
// Name and Version are fixed; only the chain id varies per deployment.
type Eip712Domain struct {
	Name    string
	Version string
	ChainID uint64
}

// NewDomain returns the Arborter signing domain for a chain. A zero chainID
// falls back to DefaultChainID.
func NewDomain(chainID uint64) Eip712Domain {
	if chainID == 0 {
		chainID = DefaultChainID
	}
	return Eip712Domain{Name: DomainName, Version: DomainVersion, ChainID: chainID}
}

// AuthMessage is the typed message signed during the login handshake.
// The timestamp is taken at signing time; the nonce must be unique per
// attempt.
type AuthMessage struct {
	Address   common.Address
	Timestamp uint64
	Nonce     string
}

// authTypes mirrors the verifier's schema exactly. Field order, spacing and
// casing all feed the type hash; any deviation changes the digest.
var authTypes = apitypes.Types{
	"EIP712Domain": {
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
	},
	"AuthRequest": {
		{Name: "address", Type: "address"},
		{Name: "timestamp", Type: "uint64"},
		{Name: "nonce", Type: "string"},
	},
}

// AuthDigest computes the 32-byte EIP-712 digest for the login handshake:
// keccak256(0x19 || 0x01 || domainSeparator || structHash). Deterministic,
// no I/O.
func AuthDigest(domain Eip712Domain, msg AuthMessage) ([]byte, error) {
	typedData := apitypes.TypedData{
		Types:       authTypes,
		PrimaryType: "AuthRequest",
		Domain: apitypes.TypedDataDomain{
			Name:    domain.Name,
			Version: domain.Version,
			// via big.Int so chain ids above 2^63 stay unsigned
			ChainId: (*math.HexOrDecimal256)(new(big.Int).SetUint64(domain.ChainID)),
		},
		Message: apitypes.TypedDataMessage{
			"address":   msg.Address.Hex(),
			"timestamp": strconv.FormatUint(msg.Timestamp, 10),
			"nonce":     msg.Nonce,
		},
	}

	domainSeparator, err := typedData.HashStruct("EIP712Domain", typedData.Domain.Map())
	if err != nil {
		return nil, errors.Wrap(err, "hash domain separator")
	}
	structHash, err := typedData.HashStruct(typedData.PrimaryType, typedData.Message)
	if err != nil {
		return nil, errors.Wrap(err, "hash auth message")
	}

	raw := make([]byte, 0, 2+len(domainSeparator)+len(structHash))
	raw = append(raw, 0x19, 0x01)
	raw = append(raw, domainSeparator...)
	raw = append(raw, structHash...)
	return crypto.Keccak256(raw), nil
}

// SignAuth computes the digest for msg under domain and signs it over the
// raw-digest path.
func SignAuth(id *Identity, domain Eip712Domain, msg AuthMessage) ([]byte, error) {
	digest, err := AuthDigest(domain, msg)
	if err != nil {
		return nil, err
	}
	return id.SignDigest(digest)
}
