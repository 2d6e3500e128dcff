package market

import (
	"fmt"
	"net/url"

	"github.com/samber/lo"
)

const (
	dexScreenerTokenURL = "https://dexscreener.com/ethereum/"
	dextoolsWidgetURL   = "https://www.dextools.io/widget-chart/en/"
	dextoolsChartQuery  = "theme=light&chartType=2&chartResolution=30&drawingToolbars=false"
	uniswapSwapURL      = "https://app.uniswap.org/#/swap"
)

// ChainSlug maps a DEX Screener chain id onto the segment DEXTools uses.
func ChainSlug(chainID string) string {
	return lo.Ternary(chainID == "ethereum", "ether", chainID)
}

// DisplayURL is the pair page, falling back to the token's DEX Screener page.
func DisplayURL(info TokenPairInfo) string {
	return lo.CoalesceOrEmpty(info.URL, dexScreenerTokenURL+info.Address)
}

// ChartURL is the light-theme DEXTools chart widget for the pair.
func ChartURL(chainID, pairAddress string) string {
	return fmt.Sprintf("%s%s/pe-light/%s?%s",
		dextoolsWidgetURL, url.PathEscape(ChainSlug(chainID)), url.PathEscape(pairAddress), dextoolsChartQuery)
}

// TradeURL opens the Uniswap swap page buying the token.
func TradeURL(address string) string {
	return uniswapSwapURL + "?outputCurrency=" + url.QueryEscape(address) + "&chain=ethereum"
}
