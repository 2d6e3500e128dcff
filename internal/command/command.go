// Package command turns chat message text into a typed bot command.
package command

import (
	"strings"

	"github.com/dgnsrekt/chartbot/internal/apperr"
)

const (
	PrefixToken      = "!token"
	PrefixRarity     = "!rarity"
	PrefixFloorPrice = "!fp"

	// floorPriceArgOffset is len("!fp "); the contract is whatever follows.
	floorPriceArgOffset = 4

	UsageToken      = "You must provide a token address."
	UsageRarity     = "Please use the command as follows: !rarity contract_address token_id"
	UsageFloorPrice = "You must provide a contract address."
)

// Command is one of Token, Rarity or FloorPrice.
type Command interface {
	Name() string
}

// Token looks up DEX pair data for a token address and renders its chart.
type Token struct {
	Address string
}

// Rarity asks for the rarity of one NFT in a collection.
type Rarity struct {
	Contract string
	TokenID  string
}

// FloorPrice asks for the OpenSea floor price of a collection.
type FloorPrice struct {
	Contract string
}

func (Token) Name() string      { return PrefixToken }
func (Rarity) Name() string     { return PrefixRarity }
func (FloorPrice) Name() string { return PrefixFloorPrice }

// Parse classifies text by literal prefix, in the order !token, !rarity, !fp.
// Text that matches no prefix yields (nil, nil). Missing or malformed
// arguments yield the zero value of the matched command together with a
// CodeUsage error carrying the message to show the user.
func Parse(text string) (Command, error) {
	switch {
	case strings.HasPrefix(text, PrefixToken):
		args := strings.Fields(text)
		if len(args) < 2 {
			return Token{}, usage(UsageToken)
		}
		return Token{Address: args[1]}, nil

	case strings.HasPrefix(text, PrefixRarity):
		args := strings.Fields(text)
		if len(args) != 3 {
			return Rarity{}, usage(UsageRarity)
		}
		return Rarity{Contract: args[1], TokenID: args[2]}, nil

	case strings.HasPrefix(text, PrefixFloorPrice):
		var contract string
		if len(text) > floorPriceArgOffset {
			contract = text[floorPriceArgOffset:]
		}
		if strings.TrimSpace(contract) == "" {
			return FloorPrice{}, usage(UsageFloorPrice)
		}
		return FloorPrice{Contract: contract}, nil
	}
	return nil, nil
}

func usage(msg string) error {
	return apperr.New(apperr.CodeUsage, msg, nil)
}
