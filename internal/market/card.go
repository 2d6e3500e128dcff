package market

import "github.com/dgnsrekt/chartbot/internal/reply"

const (
	TradeLabel     = "Trade"
	OrangeLabel    = "ORANGE"
	OrangeCustomID = "orange_button"
)

// Footer identifies the bot on every token card.
type Footer struct {
	Text    string
	IconURL string
}

// BuildTokenReply renders the token card. chart may be nil when no image is
// attached, e.g. for previews.
func BuildTokenReply(info TokenPairInfo, chart []byte, footer Footer) reply.Payload {
	name := Text(info.Name)

	p := reply.Payload{
		Title:       name,
		Description: Text(info.Symbol),
		Color:       reply.ColorDarkOrange,
		Footer:      reply.Footer{Text: footer.Text, IconURL: footer.IconURL},
		Fields: []reply.Field{
			{Name: "Symbol", Value: Text(info.Symbol), Inline: false},
			{Name: "Buys", Value: Count(info.Buys24h), Inline: true},
			{Name: "Sells", Value: Count(info.Sells24h), Inline: true},
			{Name: "Volume 24hrs", Value: Amount(info.Volume24h), Inline: true},
			{Name: "Price Change 24hrs", Value: Percent(info.PriceChange24h), Inline: true},
			{Name: "Liquidity", Value: USD(info.LiquidityUSD), Inline: true},
			{Name: "Market Cap", Value: USD(info.FDV), Inline: true},
		},
		Buttons: []reply.Button{
			{Label: name, URL: DisplayURL(info), Style: reply.ButtonLink},
			{Label: TradeLabel, URL: TradeURL(info.Address), Style: reply.ButtonLink},
			// No interaction handler is registered for this one.
			{Label: OrangeLabel, CustomID: OrangeCustomID, Style: reply.ButtonSuccess},
		},
	}
	if chart != nil {
		p.Image = reply.PNG(reply.ChartAttachmentName, chart)
	}
	return p
}
