// Package sanitize censors profanity and strips markup from user-supplied
// forum content. The wordlist is go-away's default dictionary, loaded once
// at package init and read-only afterwards.
package sanitize

import (
	"html"
	"regexp"
	"strconv"
	"strings"

	goaway "github.com/TwiN/go-away"
)

var detector = goaway.NewProfanityDetector()

var (
	mentionPattern = regexp.MustCompile(`@[\p{L}\p{N}_]+`)
	nonWordPattern = regexp.MustCompile(`[^\p{L}\p{N}_]`)
	tagPattern     = regexp.MustCompile(`<[^>]+>`)
)

// Censor returns a copy of s with profane terms redacted.
func Censor(s string) string {
	return detector.Censor(s)
}

// ProfanityOnly reports whether s consists entirely of profanity or noise:
// after removing @mention tokens and everything that is not a letter, digit
// or underscore, nothing is left. Letters and digits of any script count as
// content. Censored text qualifies because the redaction characters are
// non-word.
func ProfanityOnly(s string) bool {
	s = mentionPattern.ReplaceAllString(s, "")
	s = nonWordPattern.ReplaceAllString(s, "")
	return len(s) == 0
}

// CensorName censors a display name and applies the identifier fallback:
// if censorship leaves nothing but noise, the decimal form of id is used
// instead. The result is never an empty string.
func CensorName(name string, id int64) string {
	censored := Censor(name)
	if ProfanityOnly(censored) {
		return strconv.FormatInt(id, 10)
	}
	return censored
}

// StripHTML converts rendered forum HTML to plain text: tags removed,
// entities decoded, newlines flattened to spaces.
func StripHTML(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	return strings.ReplaceAll(s, "\n", " ")
}
