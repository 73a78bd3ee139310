package telegram

import "strings"

const mask = "***"

// MaskToken keeps the first and last two characters of a secret.
// Secrets of four characters or fewer are fully masked; blank input yields "".
func MaskToken(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	if len(s) <= 4 {
		return mask
	}
	return s[:2] + mask + s[len(s)-2:]
}

// scrub replaces every occurrence of token in s with its masked form.
func scrub(s, token string) string {
	if token == "" {
		return s
	}
	return strings.ReplaceAll(s, token, MaskToken(token))
}

// clip truncates s to n bytes for logging without splitting a rune.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}

func utf8RuneStart(b byte) bool { return b&0xC0 != 0x80 }
