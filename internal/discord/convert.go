package discord

import (
	"bytes"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/lo"

	"github.com/dgnsrekt/chartbot/internal/reply"
)

// Discord API limits.
const (
	maxContent     = 2000
	maxTitle       = 256
	maxDescription = 4096
	maxFieldName   = 256
	maxFieldValue  = 1024
	maxButtonLabel = 80
)

// MessageSend converts a payload into a Discord message with one embed, the
// optional chart attachment and a single row of buttons.
func MessageSend(p reply.Payload, ref *discordgo.MessageReference) *discordgo.MessageSend {
	embed := &discordgo.MessageEmbed{
		Title:       reply.Truncate(p.Title, maxTitle),
		Description: reply.Truncate(p.Description, maxDescription),
		Color:       p.Color,
	}
	if p.Footer.Text != "" || p.Footer.IconURL != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: p.Footer.Text, IconURL: p.Footer.IconURL}
	}
	embed.Fields = lo.Map(p.Fields, func(f reply.Field, _ int) *discordgo.MessageEmbedField {
		return &discordgo.MessageEmbedField{
			Name:   reply.Truncate(f.Name, maxFieldName),
			Value:  reply.Truncate(f.Value, maxFieldValue),
			Inline: f.Inline,
		}
	})

	msg := &discordgo.MessageSend{
		Embeds:    []*discordgo.MessageEmbed{embed},
		Reference: ref,
	}
	if p.Image != nil {
		embed.Image = &discordgo.MessageEmbedImage{URL: "attachment://" + p.Image.Name}
		msg.Files = []*discordgo.File{{
			Name:        p.Image.Name,
			ContentType: p.Image.ContentType,
			Reader:      bytes.NewReader(p.Image.Data),
		}}
	}
	if len(p.Buttons) > 0 {
		row := discordgo.ActionsRow{Components: lo.Map(p.Buttons, func(b reply.Button, _ int) discordgo.MessageComponent {
			return button(b)
		})}
		msg.Components = []discordgo.MessageComponent{row}
	}
	return msg
}

func button(b reply.Button) discordgo.Button {
	out := discordgo.Button{Label: reply.Truncate(b.Label, maxButtonLabel)}
	switch b.Style {
	case reply.ButtonLink:
		out.Style = discordgo.LinkButton
		out.URL = b.URL
	case reply.ButtonSuccess:
		out.Style = discordgo.SuccessButton
		out.CustomID = b.CustomID
	default:
		out.Style = discordgo.PrimaryButton
		out.CustomID = b.CustomID
	}
	return out
}
