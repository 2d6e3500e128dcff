// Package market projects DEX Screener pairs into a typed record and renders
// the token card shown by the !token command.
package market

import (
	"github.com/shopspring/decimal"

	"github.com/dgnsrekt/chartbot/internal/dexscreener"
)

// TokenPairInfo is the typed view of one pair. Empty strings, nil pointers and
// invalid NullDecimals mean the upstream omitted the field.
type TokenPairInfo struct {
	Address     string
	Name        string
	Symbol      string
	PairAddress string
	ChainID     string
	URL         string

	Buys24h  *int64
	Sells24h *int64

	Volume24h      decimal.NullDecimal
	PriceChange24h decimal.NullDecimal
	LiquidityUSD   decimal.NullDecimal
	FDV            decimal.NullDecimal
}

// Project converts the first pair of a lookup for address. It reports false
// when there is no pair to show.
func Project(address string, pairs []dexscreener.Pair) (TokenPairInfo, bool) {
	if len(pairs) == 0 {
		return TokenPairInfo{}, false
	}
	p := pairs[0]

	info := TokenPairInfo{
		Address:     address,
		PairAddress: p.PairAddress,
		ChainID:     p.ChainID,
		URL:         p.URL,
		FDV:         p.FDV,
	}
	// A zero FDV means DEX Screener has no market cap for the pair.
	if info.FDV.Valid && info.FDV.Decimal.IsZero() {
		info.FDV = decimal.NullDecimal{}
	}
	if p.BaseToken != nil {
		info.Name = p.BaseToken.Name
		info.Symbol = p.BaseToken.Symbol
	}
	if p.Txns != nil && p.Txns.H24 != nil {
		info.Buys24h = p.Txns.H24.Buys
		info.Sells24h = p.Txns.H24.Sells
	}
	if p.Volume != nil {
		info.Volume24h = p.Volume.H24
	}
	if p.PriceChange != nil {
		info.PriceChange24h = p.PriceChange.H24
	}
	if p.Liquidity != nil {
		info.LiquidityUSD = p.Liquidity.USD
	}
	return info, true
}
