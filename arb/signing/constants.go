package signing

// DomainName is the EIP-712 domain name the auth verifier expects.
const DomainName = "Arborter"

// DomainVersion is the EIP-712 domain version.
const DomainVersion = "1"

// DefaultChainID is used when the caller does not supply one.
const DefaultChainID uint64 = 1
