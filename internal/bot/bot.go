// Package bot routes parsed chat commands to their handlers and owns the
// single error boundary between handlers and the chat user.
package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgnsrekt/chartbot/internal/alchemy"
	"github.com/dgnsrekt/chartbot/internal/apperr"
	"github.com/dgnsrekt/chartbot/internal/command"
	"github.com/dgnsrekt/chartbot/internal/dexscreener"
	"github.com/dgnsrekt/chartbot/internal/market"
	"github.com/dgnsrekt/chartbot/internal/reply"
	"github.com/dgnsrekt/chartbot/internal/snapshot"
)

const (
	GenericFailure = "An error occurred while processing your request."
	NoData         = "No data received from the API."
	NoPairs        = "No pairs found for the token address."
)

// Message is an inbound chat message as seen by the dispatcher.
type Message struct {
	Text    string
	FromBot bool

	// Channel and Author are only used for logging.
	Channel string
	Author  string
}

// Responder delivers output for one inbound message.
type Responder interface {
	// Reply answers the message that triggered the command.
	Reply(ctx context.Context, text string) error
	// Send posts into the same channel without referencing the message.
	Send(ctx context.Context, text string) error
	ReplyRich(ctx context.Context, p reply.Payload) error
}

type TokenLookup interface {
	TokenPairs(ctx context.Context, address string) (*dexscreener.TokensResponse, error)
}

type NFTData interface {
	ComputeRarity(ctx context.Context, contract, tokenID string) (json.RawMessage, error)
	GetFloorPrice(ctx context.Context, contract string) (*alchemy.FloorPriceResponse, error)
}

type Capturer interface {
	Capture(ctx context.Context, url string) ([]byte, error)
}

type Archiver interface {
	Archive(sourceURL string, data []byte) (snapshot.Meta, error)
}

// Alerter tells the operator about failures the user only sees as
// GenericFailure.
type Alerter interface {
	Notify(ctx context.Context, message string) error
}

// Deps are the collaborators of a Dispatcher. Archive and Alerts may be nil.
type Deps struct {
	Tokens  TokenLookup
	NFTs    NFTData
	Charts  Capturer
	Archive Archiver
	Alerts  Alerter
	Footer  market.Footer
}

const alertTimeout = 5 * time.Second

// Dispatcher is safe for concurrent use; it keeps no per-message state.
type Dispatcher struct {
	deps Deps
}

func NewDispatcher(deps Deps) *Dispatcher {
	return &Dispatcher{deps: deps}
}

// Handle processes one inbound message. Messages that are not commands, and
// messages from bots, are ignored. Every recognised command produces exactly
// one response: its result, a user-facing notice, or GenericFailure.
func (d *Dispatcher) Handle(ctx context.Context, msg Message, r Responder) {
	if msg.FromBot {
		return
	}

	cmd, err := command.Parse(msg.Text)
	if err == nil && cmd == nil {
		return
	}

	name := cmd.Name()
	log := slog.With("command", name, "channel", msg.Channel, "author", msg.Author)

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("command handler panicked", "panic", rec)
			d.respond(ctx, log, r, GenericFailure)
		}
	}()

	if err == nil {
		start := time.Now()
		err = d.run(ctx, log, cmd, r)
		if err == nil {
			log.Info("command handled", "duration_ms", time.Since(start).Milliseconds())
			return
		}
	}

	if text, ok := apperr.UserVisible(err); ok {
		log.Info("command rejected", "code", apperr.CodeOf(err), "reason", text)
		d.respond(ctx, log, r, text)
		return
	}
	log.Error("command failed", "code", apperr.CodeOf(err), "error", err)
	d.respond(ctx, log, r, GenericFailure)
	d.alert(ctx, log, fmt.Sprintf("%s failed: %v", name, err))
}

func (d *Dispatcher) alert(ctx context.Context, log *slog.Logger, message string) {
	if d.deps.Alerts == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), alertTimeout)
	defer cancel()
	if err := d.deps.Alerts.Notify(ctx, message); err != nil {
		log.Warn("failure alert not delivered", "error", err)
	}
}

func (d *Dispatcher) respond(ctx context.Context, log *slog.Logger, r Responder, text string) {
	if err := r.Reply(ctx, text); err != nil {
		log.Error("reply failed", "error", err)
	}
}

// run executes cmd. A non-nil error means nothing has been sent yet.
func (d *Dispatcher) run(ctx context.Context, log *slog.Logger, cmd command.Command, r Responder) error {
	switch c := cmd.(type) {
	case command.Token:
		p, err := d.tokenReply(ctx, c.Address)
		if err != nil {
			return err
		}
		return deliveryErr(log, r.ReplyRich(ctx, p))

	case command.Rarity:
		text, err := d.rarityText(ctx, c)
		if err != nil {
			return err
		}
		return deliveryErr(log, r.Send(ctx, text))

	case command.FloorPrice:
		text, err := d.floorPriceText(ctx, c.Contract)
		if err != nil {
			return err
		}
		return deliveryErr(log, r.Reply(ctx, text))

	default:
		return fmt.Errorf("unhandled command %T", cmd)
	}
}

// deliveryErr keeps a failed send from triggering a second response.
func deliveryErr(log *slog.Logger, err error) error {
	if err != nil {
		log.Error("response delivery failed", "error", err)
	}
	return nil
}

// LookupToken fetches and projects the first DEX pair of address.
func (d *Dispatcher) LookupToken(ctx context.Context, address string) (market.TokenPairInfo, error) {
	resp, err := d.deps.Tokens.TokenPairs(ctx, address)
	if err != nil {
		return market.TokenPairInfo{}, err
	}
	if resp == nil {
		return market.TokenPairInfo{}, apperr.New(apperr.CodeNoData, NoData, nil)
	}
	info, ok := market.Project(address, resp.Pairs)
	if !ok {
		return market.TokenPairInfo{}, apperr.New(apperr.CodeNotFound, NoPairs, nil)
	}
	return info, nil
}

// PreviewToken builds the token card without capturing a chart.
func (d *Dispatcher) PreviewToken(ctx context.Context, address string) (reply.Payload, error) {
	info, err := d.LookupToken(ctx, address)
	if err != nil {
		return reply.Payload{}, err
	}
	return market.BuildTokenReply(info, nil, d.deps.Footer), nil
}

func (d *Dispatcher) tokenReply(ctx context.Context, address string) (reply.Payload, error) {
	info, err := d.LookupToken(ctx, address)
	if err != nil {
		return reply.Payload{}, err
	}

	chartURL := market.ChartURL(info.ChainID, info.PairAddress)
	png, err := d.deps.Charts.Capture(ctx, chartURL)
	if err != nil {
		return reply.Payload{}, err
	}

	if d.deps.Archive != nil {
		if _, err := d.deps.Archive.Archive(chartURL, png); err != nil {
			slog.Warn("chart archive failed", "url", chartURL, "error", err)
		}
	}

	return market.BuildTokenReply(info, png, d.deps.Footer), nil
}

func (d *Dispatcher) rarityText(ctx context.Context, c command.Rarity) (string, error) {
	raw, err := d.deps.NFTs.ComputeRarity(ctx, c.Contract, c.TokenID)
	if err != nil {
		return "", err
	}
	if len(raw) == 0 {
		return "", apperr.New(apperr.CodeNoData, NoData, nil)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		return "", apperr.New(apperr.CodeDecode, "indent rarity response", err)
	}
	return fmt.Sprintf("NFT Rarity Info for Contract %s, Token ID %s:\n%s", c.Contract, c.TokenID, pretty.String()), nil
}

func (d *Dispatcher) floorPriceText(ctx context.Context, contract string) (string, error) {
	resp, err := d.deps.NFTs.GetFloorPrice(ctx, contract)
	if err != nil {
		return "", err
	}
	listing, ok := resp.OpenSeaFloor()
	if !ok {
		return fmt.Sprintf("No NFT floor price found for contract address %s", contract), nil
	}
	return fmt.Sprintf("The floor price on OpenSea is %s %s. Check it out: %s",
		listing.FloorPrice.Decimal.String(), listing.PriceCurrency, listing.CollectionURL), nil
}
