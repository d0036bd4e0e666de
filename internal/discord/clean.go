package discord

import "strings"

const maxMessageLength = 2000

var massMentions = strings.NewReplacer(
	"@everyone", "@​everyone",
	"@here", "@​here",
)

// Clean neutralizes mass mentions in outgoing text and truncates it to the
// Discord message length limit.
func Clean(text string) string {
	text = massMentions.Replace(text)
	if len(text) > maxMessageLength {
		runes := []rune(text)
		if len(runes) > maxMessageLength-1 {
			runes = runes[:maxMessageLength-1]
		}
		text = string(runes) + "…"
	}
	return text
}
