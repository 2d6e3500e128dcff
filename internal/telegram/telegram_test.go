package telegram

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tb "gopkg.in/tucnak/telebot.v2"

	"github.com/dgnsrekt/chartbot/internal/bot"
	"github.com/dgnsrekt/chartbot/internal/market"
	"github.com/dgnsrekt/chartbot/internal/reply"
)

func tokenCard(chart []byte) reply.Payload {
	info := market.TokenPairInfo{Address: "0xABC", Name: "Apples & <Oranges>", Symbol: "AAO"}
	return market.BuildTokenReply(info, chart, market.Footer{Text: "i1n4r"})
}

func TestCaptionEscapesHTML(t *testing.T) {
	got := Caption(tokenCard(nil))

	assert.True(t, strings.HasPrefix(got, "<b>Apples &amp; &lt;Oranges&gt;</b>\nAAO\n\n"))
	assert.Contains(t, got, "<b>Buys:</b> not available\n")
	assert.Contains(t, got, "<b>Market Cap:</b> not available\n")
	assert.True(t, strings.HasSuffix(got, "\n<i>i1n4r</i>"))
}

func TestKeyboard(t *testing.T) {
	kb := Keyboard(tokenCard(nil).Buttons)
	require.NotNil(t, kb)
	require.Len(t, kb.InlineKeyboard, 1)
	row := kb.InlineKeyboard[0]
	require.Len(t, row, 3)

	assert.Equal(t, "https://dexscreener.com/ethereum/0xABC", row[0].URL)
	assert.Equal(t, "Trade", row[1].Text)
	assert.Equal(t, "https://app.uniswap.org/#/swap?outputCurrency=0xABC&chain=ethereum", row[1].URL)
	assert.Equal(t, "ORANGE", row[2].Text)
	assert.Equal(t, "orange_button", row[2].Data)
	assert.Empty(t, row[2].URL)

	assert.Nil(t, Keyboard(nil))
}

func TestOutbound(t *testing.T) {
	what, opts := Outbound(tokenCard([]byte("png")))
	photo, ok := what.(*tb.Photo)
	require.True(t, ok)
	assert.Contains(t, photo.Caption, "<b>Symbol:</b> AAO")
	assert.Equal(t, tb.ModeHTML, opts.ParseMode)
	assert.NotNil(t, opts.ReplyMarkup)

	what, _ = Outbound(tokenCard(nil))
	text, ok := what.(string)
	require.True(t, ok)
	assert.Contains(t, text, "<b>Liquidity:</b>")
}

type call struct {
	reply bool
	what  interface{}
	opts  []interface{}
}

type fakeSender struct {
	calls []call
}

func (f *fakeSender) Send(_ tb.Recipient, what interface{}, options ...interface{}) (*tb.Message, error) {
	f.calls = append(f.calls, call{what: what, opts: options})
	return &tb.Message{}, nil
}

func (f *fakeSender) Reply(_ *tb.Message, what interface{}, options ...interface{}) (*tb.Message, error) {
	f.calls = append(f.calls, call{reply: true, what: what, opts: options})
	return &tb.Message{}, nil
}

type recordingHandler struct {
	msgs []bot.Message
}

func (h *recordingHandler) Handle(ctx context.Context, msg bot.Message, r bot.Responder) {
	h.msgs = append(h.msgs, msg)
	_ = r.Reply(ctx, "pong")
	_ = r.Send(ctx, strings.Repeat("x", 5000))
	_ = r.ReplyRich(ctx, tokenCard([]byte("png")))
}

func TestOnTextRoutesThroughResponder(t *testing.T) {
	h := &recordingHandler{}
	api := &fakeSender{}
	b := &Bot{handler: h}

	b.onText(context.Background(), api, &tb.Message{
		Text:   "!fp 0xabc",
		Sender: &tb.User{Username: "orange", IsBot: false},
		Chat:   &tb.Chat{ID: -100123},
	})

	require.Len(t, h.msgs, 1)
	assert.Equal(t, bot.Message{Text: "!fp 0xabc", Channel: "-100123", Author: "orange"}, h.msgs[0])

	require.Len(t, api.calls, 3)
	assert.True(t, api.calls[0].reply)
	assert.Equal(t, "pong", api.calls[0].what)

	assert.False(t, api.calls[1].reply)
	assert.Len(t, []rune(api.calls[1].what.(string)), maxText)

	assert.True(t, api.calls[2].reply)
	_, isPhoto := api.calls[2].what.(*tb.Photo)
	assert.True(t, isPhoto)
}
