package domain

import "strings"

const trimCutset = " \n"

// SplitMessage splits text into chunks whose untrimmed length never exceeds
// limit. Text at or below the limit becomes a single trimmed chunk. Longer
// text is cut into consecutive fixed-width windows of exactly limit runes,
// each trimmed; the remainder past the last full window is appended as one
// more chunk when non-empty. Rejoining the chunks, modulo the whitespace
// trimmed at each boundary, reproduces the input. Windows are
// character-exact and may split inside a word.
func SplitMessage(text string, limit int) []string {
	runes := []rune(text)
	if limit <= 0 || len(runes) <= limit {
		return []string{strings.Trim(text, trimCutset)}
	}

	var chunks []string
	end := 0
	for ; end+limit <= len(runes); end += limit {
		chunks = append(chunks, strings.Trim(string(runes[end:end+limit]), trimCutset))
	}

	if rest := strings.Trim(string(runes[end:]), trimCutset); rest != "" {
		chunks = append(chunks, rest)
	}
	return chunks
}
