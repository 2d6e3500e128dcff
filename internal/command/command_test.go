package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgnsrekt/chartbot/internal/apperr"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Command
	}{
		{name: "token", text: "!token 0xABC", want: Token{Address: "0xABC"}},
		{name: "token_extra_args_ignored", text: "!token 0xABC please", want: Token{Address: "0xABC"}},
		{name: "token_double_space", text: "!token  0xABC", want: Token{Address: "0xABC"}},
		{name: "rarity", text: "!rarity 0xabc 42", want: Rarity{Contract: "0xabc", TokenID: "42"}},
		{name: "floor_price", text: "!fp 0xdef", want: FloorPrice{Contract: "0xdef"}},
		{name: "floor_price_fixed_offset", text: "!fpx0xdef", want: FloorPrice{Contract: "0xdef"}},
		{name: "unmatched", text: "hello there", want: nil},
		{name: "empty", text: "", want: nil},
		{name: "prefix_not_at_start", text: "say !token 0xABC", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseUsageErrors(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    string
		command string
	}{
		{name: "token_missing_address", text: "!token", want: UsageToken, command: PrefixToken},
		{name: "token_only_spaces", text: "!token   ", want: UsageToken, command: PrefixToken},
		{name: "rarity_missing_token_id", text: "!rarity 0xabc", want: UsageRarity, command: PrefixRarity},
		{name: "rarity_too_many", text: "!rarity 0xabc 42 43", want: UsageRarity, command: PrefixRarity},
		{name: "rarity_bare", text: "!rarity", want: UsageRarity, command: PrefixRarity},
		{name: "fp_bare", text: "!fp", want: UsageFloorPrice, command: PrefixFloorPrice},
		{name: "fp_blank", text: "!fp    ", want: UsageFloorPrice, command: PrefixFloorPrice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.text)
			require.Error(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.command, got.Name())

			var coded *apperr.CodedError
			require.ErrorAs(t, err, &coded)
			assert.Equal(t, apperr.CodeUsage, coded.Code)
			assert.Equal(t, tt.want, coded.Message)
		})
	}
}

func TestParsePriorityOrder(t *testing.T) {
	got, err := Parse("!token !rarity a b")
	require.NoError(t, err)
	assert.Equal(t, Token{Address: "!rarity"}, got)
}
