package ledger

// Asset identifies what an order pays out: the ledger's native currency or a
// fungible token referenced by its contract identifier. The zero value is the
// native currency, mirroring the wire convention where the zero identifier is
// the native sentinel.
type Asset struct {
	contract string
}

// NativeAsset returns the Asset denoting the ledger's native currency.
func NativeAsset() Asset {
	return Asset{}
}

// TokenAsset returns the Asset for the fungible token at contract.
func TokenAsset(contract string) Asset {
	return Asset{contract: contract}
}

// IsNative reports whether the asset is the native currency.
func (a Asset) IsNative() bool {
	return a.contract == ""
}

// Contract returns the token contract identifier, or "" for native currency.
func (a Asset) Contract() string {
	return a.contract
}

// String returns a stable textual form used in config, storage keys and RPC
// payloads. ParseAsset inverts it.
func (a Asset) String() string {
	if a.IsNative() {
		return "native"
	}
	return a.contract
}

// ParseAsset maps the textual form back to an Asset. Both "" and "native"
// denote the native currency; anything else is a token contract identifier.
func ParseAsset(s string) Asset {
	if s == "" || s == "native" {
		return NativeAsset()
	}
	return TokenAsset(s)
}
