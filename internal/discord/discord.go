// Package discord connects the command dispatcher to a Discord gateway session.
package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/dgnsrekt/chartbot/internal/bot"
	"github.com/dgnsrekt/chartbot/internal/reply"
)

const intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent

// Handler consumes inbound messages.
type Handler interface {
	Handle(ctx context.Context, msg bot.Message, r bot.Responder)
}

// Bot is a Discord gateway client.
type Bot struct {
	session *discordgo.Session
	handler Handler
	status  string
}

func New(token, status string, h Handler) (*Bot, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord: new session: %w", err)
	}
	s.Identify.Intents = intents
	return &Bot{session: s, handler: h, status: status}, nil
}

// Run opens the gateway connection and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	removeReady := b.session.AddHandler(b.onReady)
	removeMsg := b.session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		b.onMessageCreate(ctx, s, m)
	})
	defer removeReady()
	defer removeMsg()

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("discord: open gateway: %w", err)
	}
	slog.Info("discord gateway connected")

	<-ctx.Done()

	if err := b.session.Close(); err != nil {
		slog.Warn("discord: close gateway", "error", err)
	}
	slog.Info("discord gateway closed")
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	user := ""
	if r.User != nil {
		user = r.User.String()
	}
	slog.Info("discord session ready", "user", user, "guilds", len(r.Guilds))
	if b.status == "" {
		return
	}
	if err := s.UpdateGameStatus(0, b.status); err != nil {
		slog.Warn("discord: set status", "error", err)
	}
}

func (b *Bot) onMessageCreate(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Message == nil || m.Author == nil {
		return
	}
	msg := bot.Message{
		Text:    m.Content,
		FromBot: m.Author.Bot,
		Channel: m.ChannelID,
		Author:  m.Author.Username,
	}
	b.handler.Handle(ctx, msg, newResponder(s, m.ChannelID, m.Reference()))
}

// messenger is the subset of *discordgo.Session used to answer a message.
type messenger interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendReply(channelID, content string, reference *discordgo.MessageReference, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type responder struct {
	api       messenger
	channelID string
	ref       *discordgo.MessageReference
}

func newResponder(api messenger, channelID string, ref *discordgo.MessageReference) *responder {
	return &responder{api: api, channelID: channelID, ref: ref}
}

func (r *responder) Reply(ctx context.Context, text string) error {
	_, err := r.api.ChannelMessageSendReply(r.channelID, reply.Truncate(text, maxContent), r.ref, discordgo.WithContext(ctx))
	return err
}

func (r *responder) Send(ctx context.Context, text string) error {
	_, err := r.api.ChannelMessageSend(r.channelID, reply.Truncate(text, maxContent), discordgo.WithContext(ctx))
	return err
}

func (r *responder) ReplyRich(ctx context.Context, p reply.Payload) error {
	_, err := r.api.ChannelMessageSendComplex(r.channelID, MessageSend(p, r.ref), discordgo.WithContext(ctx))
	return err
}
