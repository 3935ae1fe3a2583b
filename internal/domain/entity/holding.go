package entity

import "strings"

// AssetClass describes the broad class of a holding.
type AssetClass string

const (
	AssetClassCrypto AssetClass = "crypto"
	AssetClassStock  AssetClass = "stock"
)

// AssetSubtype describes how a holding is held and priced.
type AssetSubtype string

const (
	// SubtypeInvestment marks the recorded invested amount (local currency), not a priced asset.
	SubtypeInvestment AssetSubtype = "inv"
	// SubtypeDEX marks a crypto asset priced via exchange / on-chain sources.
	SubtypeDEX AssetSubtype = "dex"
	// SubtypeKRStock marks a Korean stock priced in KRW.
	SubtypeKRStock AssetSubtype = "kr"
	// SubtypeUSStock marks a US stock priced in USD.
	SubtypeUSStock AssetSubtype = "us"
)

// Holding is one row of the asset sheet. It is an immutable snapshot per run.
type Holding struct {
	Symbol   string
	Amount   float64
	Class    AssetClass
	Subtype  AssetSubtype
	Address  string
	Decimals uint8
	Ticker   string
}

// TokenMeta is the on-chain metadata for a symbol, taken from the holdings address book.
type TokenMeta struct {
	Symbol   string
	Address  string
	Decimals uint8
}

// AddressBook maps an asset symbol to its on-chain metadata.
type AddressBook map[string]TokenMeta

// BuildAddressBook collects token metadata from crypto holdings that carry an address.
func BuildAddressBook(holdings []Holding) AddressBook {
	book := make(AddressBook)
	for _, h := range holdings {
		if h.Class != AssetClassCrypto || h.Address == "" {
			continue
		}
		book[strings.ToUpper(h.Symbol)] = TokenMeta{
			Symbol:   h.Symbol,
			Address:  h.Address,
			Decimals: h.Decimals,
		}
	}
	return book
}

// Lookup returns the metadata for a symbol, case-insensitively.
func (b AddressBook) Lookup(symbol string) (TokenMeta, bool) {
	meta, ok := b[strings.ToUpper(symbol)]
	return meta, ok
}
