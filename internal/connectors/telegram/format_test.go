package telegram

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatForTelegram(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "bold becomes highlight",
			in:   "**MACBA** is open today",
			want: "🎨 MACBA is open today",
		},
		{
			name: "field labels get emoji prefixes",
			in:   "When: Saturday\nWhere: El Raval\nPrice: Free\nMore Info: https://example.com",
			want: "📅 When: Saturday\n📍 Where: El Raval\n💰 Price: Free\n🔗 More Info: https://example.com",
		},
		{
			name: "why label matches with suffix",
			in:   "Why you might like it: sculpture focus",
			want: "💡 Why you might like it: sculpture focus",
		},
		{
			name: "numbered list items re-spaced",
			in:   "1. First show\n2. Second show",
			want: "1️⃣ First show\n\n2️⃣ Second show",
		},
		{
			name: "excess blank lines collapsed",
			in:   "top\n\n\n\nbottom",
			want: "top\n\nbottom",
		},
		{
			name: "surrounding whitespace trimmed",
			in:   "  hello  \n",
			want: "hello",
		},
		{
			name: "plain text untouched",
			in:   "just a reply",
			want: "just a reply",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatForTelegram(tc.in))
		})
	}
}

func TestFormatForTelegramTruncatesLongReplies(t *testing.T) {
	long := strings.Repeat("a", 5000)

	got := FormatForTelegram(long)

	assert.Len(t, []rune(got), truncatedMessageSize+3)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.LessOrEqual(t, len([]rune(got)), 4096, "must stay under the Telegram limit")
}

func TestFormatForTelegramShortRepliesNotTruncated(t *testing.T) {
	exact := strings.Repeat("b", maxMessageRunes)
	assert.Equal(t, exact, FormatForTelegram(exact))
}
