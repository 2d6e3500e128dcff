package dexscreener

import "github.com/shopspring/decimal"

// TokensResponse is the body of GET /latest/dex/tokens/{address}.
type TokensResponse struct {
	SchemaVersion string `json:"schemaVersion"`
	Pairs         []Pair `json:"pairs"`
}

// Pair is a single DEX trading pair. Every field is optional on the wire;
// numbers decode into NullDecimal or pointers so absence stays visible.
type Pair struct {
	ChainID     string              `json:"chainId"`
	DexID       string              `json:"dexId"`
	URL         string              `json:"url"`
	PairAddress string              `json:"pairAddress"`
	BaseToken   *Token              `json:"baseToken"`
	QuoteToken  *Token              `json:"quoteToken"`
	PriceUsd    string              `json:"priceUsd"`
	Txns        *Txns               `json:"txns"`
	Volume      *Window             `json:"volume"`
	PriceChange *Window             `json:"priceChange"`
	Liquidity   *Liquidity          `json:"liquidity"`
	FDV         decimal.NullDecimal `json:"fdv"`
	MarketCap   decimal.NullDecimal `json:"marketCap"`
}

type Token struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

type Txns struct {
	H24 *TxnCount `json:"h24"`
}

type TxnCount struct {
	Buys  *int64 `json:"buys"`
	Sells *int64 `json:"sells"`
}

// Window holds a per-timeframe metric; only the 24h window is used.
type Window struct {
	H24 decimal.NullDecimal `json:"h24"`
}

type Liquidity struct {
	USD decimal.NullDecimal `json:"usd"`
}
