// Package telegram connects the command dispatcher to the Telegram Bot API
// through long polling.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	tb "gopkg.in/tucnak/telebot.v2"

	"github.com/dgnsrekt/chartbot/internal/bot"
	"github.com/dgnsrekt/chartbot/internal/reply"
)

const pollingTimeout = 10 * time.Second

// Handler consumes inbound messages.
type Handler interface {
	Handle(ctx context.Context, msg bot.Message, r bot.Responder)
}

// Bot is a long-polling Telegram client.
type Bot struct {
	client  *tb.Bot
	handler Handler
}

func New(token string, h Handler) (*Bot, error) {
	client, err := tb.NewBot(tb.Settings{
		Token:  token,
		Poller: &tb.LongPoller{Timeout: pollingTimeout},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &Bot{client: client, handler: h}, nil
}

// Run polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.client.Handle(tb.OnText, func(m *tb.Message) {
		b.onText(ctx, b.client, m)
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		b.client.Start()
	}()
	slog.Info("telegram polling started", "bot", b.client.Me.Username)

	<-ctx.Done()
	b.client.Stop()
	<-done
	slog.Info("telegram polling stopped")
	return nil
}

func (b *Bot) onText(ctx context.Context, api sender, m *tb.Message) {
	msg := bot.Message{Text: m.Text}
	if m.Sender != nil {
		msg.FromBot = m.Sender.IsBot
		msg.Author = m.Sender.Username
	}
	if m.Chat != nil {
		msg.Channel = strconv.FormatInt(m.Chat.ID, 10)
	}
	b.handler.Handle(ctx, msg, &responder{api: api, msg: m})
}

// sender is the subset of *tb.Bot used to answer a message.
type sender interface {
	Send(to tb.Recipient, what interface{}, options ...interface{}) (*tb.Message, error)
	Reply(to *tb.Message, what interface{}, options ...interface{}) (*tb.Message, error)
}

type responder struct {
	api sender
	msg *tb.Message
}

func (r *responder) Reply(_ context.Context, text string) error {
	_, err := r.api.Reply(r.msg, reply.Truncate(text, maxText))
	return err
}

func (r *responder) Send(_ context.Context, text string) error {
	_, err := r.api.Send(r.msg.Chat, reply.Truncate(text, maxText))
	return err
}

func (r *responder) ReplyRich(_ context.Context, p reply.Payload) error {
	what, opts := Outbound(p)
	_, err := r.api.Reply(r.msg, what, opts)
	return err
}
