package telegram

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	tb "gopkg.in/tucnak/telebot.v2"

	"github.com/dgnsrekt/chartbot/internal/reply"
)

// Telegram API limits.
const (
	maxText    = 4096
	maxCaption = 1024

	maxHeading    = 128
	maxFieldValue = 96
)

// Caption renders the payload as Telegram HTML: bold title, description, one
// line per field and the footer in italics.
func Caption(p reply.Payload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>\n", esc(p.Title, maxHeading))
	if p.Description != "" {
		fmt.Fprintf(&b, "%s\n", esc(p.Description, maxHeading))
	}
	if len(p.Fields) > 0 {
		b.WriteString("\n")
		for _, f := range p.Fields {
			fmt.Fprintf(&b, "<b>%s:</b> %s\n", esc(f.Name, maxHeading), esc(f.Value, maxFieldValue))
		}
	}
	if p.Footer.Text != "" {
		fmt.Fprintf(&b, "\n<i>%s</i>", esc(p.Footer.Text, maxHeading))
	}
	return strings.TrimRight(b.String(), "\n")
}

func esc(s string, maxRunes int) string {
	return html.EscapeString(reply.Truncate(s, maxRunes))
}

// Keyboard lays the payload buttons out as one inline keyboard row. Link
// buttons become URL buttons, everything else a callback button.
func Keyboard(buttons []reply.Button) *tb.ReplyMarkup {
	if len(buttons) == 0 {
		return nil
	}
	row := make([]tb.InlineButton, 0, len(buttons))
	for _, b := range buttons {
		btn := tb.InlineButton{Text: b.Label}
		if b.Style == reply.ButtonLink {
			btn.URL = b.URL
		} else {
			btn.Data = b.CustomID
		}
		row = append(row, btn)
	}
	return &tb.ReplyMarkup{InlineKeyboard: [][]tb.InlineButton{row}}
}

// Outbound converts a payload into what telebot sends: a photo with caption
// when the payload carries an image, otherwise an HTML text message.
func Outbound(p reply.Payload) (interface{}, *tb.SendOptions) {
	opts := &tb.SendOptions{ParseMode: tb.ModeHTML, ReplyMarkup: Keyboard(p.Buttons)}
	caption := Caption(p)
	if p.Image == nil {
		return reply.Truncate(caption, maxText), opts
	}
	if len([]rune(caption)) > maxCaption {
		// Cutting HTML could leave an unclosed tag; send the plain title.
		caption = esc(p.Title, maxHeading)
	}
	return &tb.Photo{File: tb.FromReader(bytes.NewReader(p.Image.Data)), Caption: caption}, opts
}
