package telegram

import (
	"regexp"
	"strings"
)

// Telegram rejects messages over 4096 characters; replies are cut a bit
// earlier to leave room for the ellipsis.
const (
	maxMessageRunes      = 4000
	truncatedMessageSize = 3996
)

var (
	boldRe       = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	whyRe        = regexp.MustCompile(`(Why you[^:]*:)`)
	whenRe       = regexp.MustCompile(`(When:)`)
	whereRe      = regexp.MustCompile(`(Where:)`)
	locationRe   = regexp.MustCompile(`(Location:)`)
	priceRe      = regexp.MustCompile(`(Price:)`)
	moreInfoRe   = regexp.MustCompile(`(More Info:)`)
	numberedRe   = regexp.MustCompile(`(?m)^(\d+)\.\s+`)
	blankLinesRe = regexp.MustCompile(`\n{3,}`)
)

// FormatForTelegram converts the orchestrator's Markdown-flavored reply
// into plain text with emoji highlights, then enforces the Telegram
// message length limit.
func FormatForTelegram(text string) string {
	text = boldRe.ReplaceAllString(text, "🎨 $1")

	text = whyRe.ReplaceAllString(text, "💡 $1")
	text = whenRe.ReplaceAllString(text, "📅 $1")
	text = whereRe.ReplaceAllString(text, "📍 $1")
	text = locationRe.ReplaceAllString(text, "📍 $1")
	text = priceRe.ReplaceAllString(text, "💰 $1")
	text = moreInfoRe.ReplaceAllString(text, "🔗 $1")

	text = numberedRe.ReplaceAllString(text, "\n$1️⃣ ")
	text = blankLinesRe.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)

	return truncate(text)
}

// truncate caps the message at the Telegram limit, marking the cut.
func truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= maxMessageRunes {
		return text
	}
	return string(runes[:truncatedMessageSize]) + "..."
}
