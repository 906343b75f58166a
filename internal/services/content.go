package services

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MaxMessageLength  = 8000
	MaxReactionLength = 32
	maxMediaURLLength = 2048
)

var scriptTagRegex = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)

// SanitizeText removes script blocks from a message body and trims it.
// Everything else is stored as sent. An empty result is an error so callers
// never store blank text messages.
func SanitizeText(content string) (string, error) {
	if utf8.RuneCountInString(content) > MaxMessageLength {
		return "", ErrMessageTooLong
	}
	content = strings.TrimSpace(scriptTagRegex.ReplaceAllString(content, ""))
	if content == "" {
		return "", ErrEmptyMessage
	}
	return content, nil
}

// SanitizeReaction accepts a short emoji or word.
func SanitizeReaction(reaction string) (string, error) {
	reaction = strings.TrimSpace(reaction)
	if reaction == "" {
		return "", ErrEmptyMessage
	}
	if utf8.RuneCountInString(reaction) > MaxReactionLength {
		return "", ErrMessageTooLong
	}
	return reaction, nil
}

// ValidateMediaURL checks a file, gif or photo reference. Any absolute
// http(s) URL is accepted since uploads may live on a custom bucket domain.
func ValidateMediaURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > maxMediaURLLength {
		return "", ErrInvalidMediaURL
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", ErrInvalidMediaURL
	}
	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return "", ErrInvalidMediaURL
	}
	if parsed.Host == "" || strings.ContainsAny(raw, "<>\"") {
		return "", ErrInvalidMediaURL
	}
	return raw, nil
}
