package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgnsrekt/chartbot/internal/alchemy"
	"github.com/dgnsrekt/chartbot/internal/apperr"
	"github.com/dgnsrekt/chartbot/internal/dexscreener"
	"github.com/dgnsrekt/chartbot/internal/market"
	"github.com/dgnsrekt/chartbot/internal/reply"
	"github.com/dgnsrekt/chartbot/internal/snapshot"
)

type recorder struct {
	replies []string
	sends   []string
	rich    []reply.Payload
}

func (r *recorder) Reply(_ context.Context, text string) error {
	r.replies = append(r.replies, text)
	return nil
}

func (r *recorder) Send(_ context.Context, text string) error {
	r.sends = append(r.sends, text)
	return nil
}

func (r *recorder) ReplyRich(_ context.Context, p reply.Payload) error {
	r.rich = append(r.rich, p)
	return nil
}

func (r *recorder) total() int { return len(r.replies) + len(r.sends) + len(r.rich) }

type fakeTokens struct {
	resp  *dexscreener.TokensResponse
	err   error
	calls []string
}

func (f *fakeTokens) TokenPairs(_ context.Context, address string) (*dexscreener.TokensResponse, error) {
	f.calls = append(f.calls, address)
	return f.resp, f.err
}

type fakeNFTs struct {
	rarity      json.RawMessage
	floor       *alchemy.FloorPriceResponse
	err         error
	rarityCalls int
	floorCalls  []string
}

func (f *fakeNFTs) ComputeRarity(context.Context, string, string) (json.RawMessage, error) {
	f.rarityCalls++
	return f.rarity, f.err
}

func (f *fakeNFTs) GetFloorPrice(_ context.Context, contract string) (*alchemy.FloorPriceResponse, error) {
	f.floorCalls = append(f.floorCalls, contract)
	return f.floor, f.err
}

type fakeCharts struct {
	png  []byte
	err  error
	urls []string
}

func (f *fakeCharts) Capture(_ context.Context, url string) ([]byte, error) {
	f.urls = append(f.urls, url)
	return f.png, f.err
}

type fakeArchive struct {
	err   error
	saved []string
}

func (f *fakeArchive) Archive(sourceURL string, _ []byte) (snapshot.Meta, error) {
	f.saved = append(f.saved, sourceURL)
	return snapshot.Meta{SourceURL: sourceURL}, f.err
}

func nd(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

type fixture struct {
	tokens  *fakeTokens
	nfts    *fakeNFTs
	charts  *fakeCharts
	archive *fakeArchive
	d       *Dispatcher
}

func newFixture() *fixture {
	f := &fixture{
		tokens:  &fakeTokens{},
		nfts:    &fakeNFTs{},
		charts:  &fakeCharts{png: []byte("png")},
		archive: &fakeArchive{},
	}
	f.d = NewDispatcher(Deps{
		Tokens:  f.tokens,
		NFTs:    f.nfts,
		Charts:  f.charts,
		Archive: f.archive,
		Footer:  market.Footer{Text: "i1n4r", IconURL: "https://example.test/icon.png"},
	})
	return f
}

func (f *fixture) handle(text string) *recorder {
	r := &recorder{}
	f.d.Handle(context.Background(), Message{Text: text}, r)
	return r
}

type failingResponder struct {
	err error
}

func (r *failingResponder) Reply(context.Context, string) error { return r.err }

func (r *failingResponder) Send(context.Context, string) error { return r.err }

func (r *failingResponder) ReplyRich(context.Context, reply.Payload) error { return r.err }

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestIgnoresNonCommandsAndBots(t *testing.T) {
	f := newFixture()

	r := f.handle("hello there")
	assert.Zero(t, r.total())

	r = &recorder{}
	f.d.Handle(context.Background(), Message{Text: "!token 0xABC", FromBot: true}, r)
	assert.Zero(t, r.total())
	assert.Empty(t, f.tokens.calls)
}

func TestUsageErrorsNeverCallUpstream(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"!token", "You must provide a token address."},
		{"!rarity 0xabc", "Please use the command as follows: !rarity contract_address token_id"},
		{"!rarity 0xabc 1 2", "Please use the command as follows: !rarity contract_address token_id"},
		{"!fp", "You must provide a contract address."},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			f := newFixture()
			r := f.handle(tt.text)

			assert.Equal(t, []string{tt.want}, r.replies)
			assert.Equal(t, 1, r.total())
			assert.Empty(t, f.tokens.calls)
			assert.Zero(t, f.nfts.rarityCalls)
			assert.Empty(t, f.nfts.floorCalls)
			assert.Empty(t, f.charts.urls)
		})
	}
}

func TestUsageRejectionLogsCommand(t *testing.T) {
	logs := captureLogs(t)
	f := newFixture()
	f.handle("!rarity 0xabc")

	assert.Contains(t, logs.String(), "command rejected")
	assert.Contains(t, logs.String(), "command=!rarity")
	assert.NotContains(t, logs.String(), "command=unknown")
}

func TestDeliveryFailureKeepsCommandContext(t *testing.T) {
	logs := captureLogs(t)
	f := newFixture()
	f.nfts.floor = &alchemy.FloorPriceResponse{}

	r := &failingResponder{err: errors.New("channel gone")}
	f.d.Handle(context.Background(), Message{Text: "!fp 0xabc", Channel: "c1", Author: "alice"}, r)

	out := logs.String()
	assert.Contains(t, out, "response delivery failed")
	assert.Contains(t, out, "command=!fp")
	assert.Contains(t, out, "channel=c1")
	assert.Contains(t, out, "author=alice")
	assert.NotContains(t, out, "reply failed")
}

func TestTokenNoData(t *testing.T) {
	f := newFixture()
	r := f.handle("!token 0xABC")

	assert.Equal(t, []string{NoData}, r.replies)
	assert.Empty(t, f.charts.urls)
}

func TestTokenNoPairs(t *testing.T) {
	f := newFixture()
	f.tokens.resp = &dexscreener.TokensResponse{Pairs: []dexscreener.Pair{}}
	r := f.handle("!token 0xABC")

	assert.Equal(t, []string{NoPairs}, r.replies)
	assert.Empty(t, f.charts.urls)
}

func TestTokenSuccess(t *testing.T) {
	f := newFixture()
	buys, sells := int64(1234567), int64(12)
	f.tokens.resp = &dexscreener.TokensResponse{Pairs: []dexscreener.Pair{{
		ChainID:     "ethereum",
		PairAddress: "0xPAIR",
		BaseToken:   &dexscreener.Token{Name: "Orange", Symbol: "ORNG"},
		Txns:        &dexscreener.Txns{H24: &dexscreener.TxnCount{Buys: &buys, Sells: &sells}},
		Liquidity:   &dexscreener.Liquidity{USD: nd("1000000")},
		FDV:         nd("2500000.5"),
	}}}

	r := f.handle("!token 0xABC extra")

	require.Len(t, r.rich, 1)
	assert.Equal(t, 1, r.total())
	assert.Equal(t, []string{"0xABC"}, f.tokens.calls)

	wantChart := "https://www.dextools.io/widget-chart/en/ether/pe-light/0xPAIR?theme=light&chartType=2&chartResolution=30&drawingToolbars=false"
	assert.Equal(t, []string{wantChart}, f.charts.urls)
	assert.Equal(t, []string{wantChart}, f.archive.saved)

	p := r.rich[0]
	assert.Equal(t, "Orange", p.Title)
	require.NotNil(t, p.Image)
	assert.Equal(t, reply.ChartAttachmentName, p.Image.Name)
	assert.Equal(t, []byte("png"), p.Image.Data)
	assert.Equal(t, "i1n4r", p.Footer.Text)
	require.Len(t, p.Fields, 7)
	assert.Equal(t, "1,234,567", p.Fields[1].Value)
	assert.Equal(t, "$1,000,000", p.Fields[5].Value)
	assert.Equal(t, "$2,500,000.5", p.Fields[6].Value)
	assert.Equal(t, market.NotAvailable, p.Fields[4].Value)
}

func TestTokenCaptureFailureGivesGenericReply(t *testing.T) {
	f := newFixture()
	f.tokens.resp = &dexscreener.TokensResponse{Pairs: []dexscreener.Pair{{ChainID: "ethereum", PairAddress: "0xPAIR"}}}
	f.charts.err = apperr.New(apperr.CodeCapture, "navigate to chart", errors.New("net::ERR_TIMED_OUT"))

	r := f.handle("!token 0xABC")

	assert.Equal(t, []string{GenericFailure}, r.replies)
	assert.Equal(t, 1, r.total())
	assert.Empty(t, f.archive.saved)
}

func TestArchiveFailureDoesNotFailCommand(t *testing.T) {
	f := newFixture()
	f.tokens.resp = &dexscreener.TokensResponse{Pairs: []dexscreener.Pair{{ChainID: "bsc", PairAddress: "0xPAIR"}}}
	f.archive.err = errors.New("disk full")

	r := f.handle("!token 0xABC")
	assert.Len(t, r.rich, 1)
	assert.Empty(t, r.replies)
}

func TestUpstreamFailureGivesGenericReply(t *testing.T) {
	f := newFixture()
	f.tokens.err = apperr.New(apperr.CodeUpstream, "dexscreener returned status 502", nil)

	r := f.handle("!token 0xABC")
	assert.Equal(t, []string{GenericFailure}, r.replies)
}

func TestRarityPrettyPrints(t *testing.T) {
	f := newFixture()
	f.nfts.rarity = json.RawMessage(`{"rarities":[{"traitType":"Hat","value":"Cap","prevalence":0.1}]}`)

	r := f.handle("!rarity 0xabc 42")

	require.Len(t, r.sends, 1)
	assert.Empty(t, r.replies)
	want := "NFT Rarity Info for Contract 0xabc, Token ID 42:\n" +
		"{\n" +
		"  \"rarities\": [\n" +
		"    {\n" +
		"      \"traitType\": \"Hat\",\n" +
		"      \"value\": \"Cap\",\n" +
		"      \"prevalence\": 0.1\n" +
		"    }\n" +
		"  ]\n" +
		"}"
	assert.Equal(t, want, r.sends[0])
}

func TestRarityEmptyBody(t *testing.T) {
	f := newFixture()
	r := f.handle("!rarity 0xabc 42")
	assert.Equal(t, []string{NoData}, r.replies)
	assert.Empty(t, r.sends)
}

func TestFloorPrice(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		f := newFixture()
		f.nfts.floor = &alchemy.FloorPriceResponse{OpenSea: &alchemy.Marketplace{
			FloorPrice:    nd("0.0123"),
			PriceCurrency: "ETH",
			CollectionURL: "https://opensea.io/collection/oranges",
		}}

		r := f.handle("!fp 0xabc")
		assert.Equal(t, []string{"0xabc"}, f.nfts.floorCalls)
		assert.Equal(t, []string{"The floor price on OpenSea is 0.0123 ETH. Check it out: https://opensea.io/collection/oranges"}, r.replies)
	})

	t.Run("missing", func(t *testing.T) {
		f := newFixture()
		f.nfts.floor = &alchemy.FloorPriceResponse{OpenSea: &alchemy.Marketplace{Error: "unable to fetch"}}

		r := f.handle("!fp 0xabc")
		assert.Equal(t, []string{"No NFT floor price found for contract address 0xabc"}, r.replies)
	})

	t.Run("upstream_error", func(t *testing.T) {
		f := newFixture()
		f.nfts.err = errors.New("connection reset")

		r := f.handle("!fp 0xabc")
		assert.Equal(t, []string{GenericFailure}, r.replies)
	})
}

type panickyCharts struct{}

func (panickyCharts) Capture(context.Context, string) ([]byte, error) { panic("boom") }

func TestPanicIsContained(t *testing.T) {
	d := NewDispatcher(Deps{
		Tokens: &fakeTokens{resp: &dexscreener.TokensResponse{Pairs: []dexscreener.Pair{{}}}},
		Charts: panickyCharts{},
	})
	r := &recorder{}
	d.Handle(context.Background(), Message{Text: "!token 0xABC"}, r)
	assert.Equal(t, []string{GenericFailure}, r.replies)
}

func TestPreviewToken(t *testing.T) {
	f := newFixture()
	f.tokens.resp = &dexscreener.TokensResponse{Pairs: []dexscreener.Pair{{BaseToken: &dexscreener.Token{Name: "Orange"}}}}

	p, err := f.d.PreviewToken(context.Background(), "0xABC")
	require.NoError(t, err)
	assert.Equal(t, "Orange", p.Title)
	assert.Nil(t, p.Image)
	assert.Empty(t, f.charts.urls)
}

type fakeAlerter struct {
	messages []string
}

func (f *fakeAlerter) Notify(_ context.Context, message string) error {
	f.messages = append(f.messages, message)
	return errors.New("webhook down")
}

func TestFailuresAlertOperator(t *testing.T) {
	alerts := &fakeAlerter{}
	tokens := &fakeTokens{err: apperr.New(apperr.CodeUpstream, "dexscreener returned status 502", nil)}
	d := NewDispatcher(Deps{Tokens: tokens, NFTs: &fakeNFTs{}, Alerts: alerts})

	r := &recorder{}
	d.Handle(context.Background(), Message{Text: "!token 0xABC"}, r)
	assert.Equal(t, []string{GenericFailure}, r.replies)
	require.Len(t, alerts.messages, 1)
	assert.Contains(t, alerts.messages[0], "!token failed")
	assert.Contains(t, alerts.messages[0], "status 502")

	r = &recorder{}
	d.Handle(context.Background(), Message{Text: "!fp"}, r)
	assert.Equal(t, []string{"You must provide a contract address."}, r.replies)
	assert.Len(t, alerts.messages, 1)
}
