// Package reply describes bot answers independently of the chat platform.
package reply

import "unicode/utf8"

// ButtonStyle selects how a button renders.
type ButtonStyle int

const (
	// ButtonLink opens URL when pressed.
	ButtonLink ButtonStyle = iota
	// ButtonSuccess is a plain button identified by CustomID.
	ButtonSuccess
)

const (
	ChartAttachmentName = "chart.png"
	ColorDarkOrange     = 0xE67E22
)

// Payload is a rich reply: a titled card with a field table, an optional
// image attachment and a row of buttons.
type Payload struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Color       int         `json:"color"`
	Footer      Footer      `json:"footer"`
	Image       *Attachment `json:"-"`
	Fields      []Field     `json:"fields"`
	Buttons     []Button    `json:"buttons"`
}

type Footer struct {
	Text    string `json:"text"`
	IconURL string `json:"icon_url,omitempty"`
}

type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type Button struct {
	Label    string      `json:"label"`
	URL      string      `json:"url,omitempty"`
	CustomID string      `json:"custom_id,omitempty"`
	Style    ButtonStyle `json:"style"`
}

// Attachment is a binary file referenced from the payload by Name.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// PNG wraps image bytes as a PNG attachment.
func PNG(name string, data []byte) *Attachment {
	return &Attachment{Name: name, ContentType: "image/png", Data: data}
}

// Truncate shortens s to at most maxRunes runes, ending with an ellipsis
// when anything was cut. maxRunes <= 0 disables truncation.
func Truncate(s string, maxRunes int) string {
	if maxRunes <= 0 || utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	if maxRunes == 1 {
		return "…"
	}
	runes := []rune(s)
	return string(runes[:maxRunes-1]) + "…"
}
