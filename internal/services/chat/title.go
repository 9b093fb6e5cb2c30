package chat

import (
	"strings"
	"unicode/utf8"
)

const (
	titleMaxWords  = 5
	titleMaxLength = 30
	titleCutLength = 27
	fallbackTitle  = "New Chat"
)

// DeriveTitle builds a conversation title from the first prompt: the first five
// whitespace-separated words, cut to 27 characters plus "..." when the joined
// words are longer than 30 characters.
func DeriveTitle(prompt string) string {
	words := strings.Fields(prompt)
	if len(words) > titleMaxWords {
		words = words[:titleMaxWords]
	}
	title := strings.Join(words, " ")
	if title == "" {
		return fallbackTitle
	}
	if utf8.RuneCountInString(title) > titleMaxLength {
		return TruncateText(title, titleCutLength) + "..."
	}
	return title
}

// TruncateText cuts input to at most maxLen runes.
func TruncateText(input string, maxLen int) string {
	if input == "" || maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(input) <= maxLen {
		return input
	}

	var b strings.Builder
	count := 0
	for _, r := range input {
		if count >= maxLen {
			break
		}
		b.WriteRune(r)
		count++
	}
	return b.String()
}
