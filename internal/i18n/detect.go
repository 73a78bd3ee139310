package i18n

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// greetings maps a folded greeting word to the locale it identifies.
var greetings = buildIndex(map[string][]string{
	"en": {"hello", "hi", "hey"},
	"de": {"hallo", "servus", "moin"},
	"es": {"hola", "buenas"},
	"it": {"ciao", "salve"},
	"fr": {"bonjour", "salut"},
	"pt": {"olá", "ola"},
	"nl": {"hoi"},
	"pl": {"cześć", "czesc"},
	"sl": {"živjo", "zivjo"},
	"hu": {"szia", "sziasztok"},
	"ro": {"bună", "buna"},
	"bg": {"здравей", "здравейте"},
	"el": {"γεια", "γειά"},
	"da": {"halløj", "halloj"},
	"sv": {"hallå", "halla"},
	"fi": {"moi"},
	"is": {"hæ", "hae"},
	"et": {"tere"},
	"lv": {"sveiki"},
	"lt": {"labas"},
	"hr": {"bok"},
	"sr": {"здраво"},
	"ru": {"привет", "здравствуйте"},
	"uk": {"привіт", "вітаю"},
	"sk": {"ahojte"},
})

var languageNames = buildIndex(NameVariants())

var lower = cases.Lower(language.Und)

func buildIndex(src map[string][]string) map[string]string {
	out := make(map[string]string)
	for code, words := range src {
		for _, w := range words {
			if k := foldToken(w); k != "" {
				out[k] = code
			}
		}
	}
	return out
}

// foldToken lower-cases raw, decomposes it (NFKD) and keeps letters only,
// so "Español" and "espanol" fold to the same key.
func foldToken(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	t := transform.Chain(norm.NFKD, runes.Remove(runes.NotIn(unicode.L)))
	out, _, err := transform.String(t, lower.String(raw))
	if err != nil {
		return ""
	}
	return out
}

// words splits raw into runs of letters and combining marks.
func words(raw string) []string {
	s := norm.NFKD.String(lower.String(raw))
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.Is(unicode.M, r)
	})
}

// DetectByGreeting inspects the first word of raw and returns the locale of
// a known greeting.
func DetectByGreeting(raw string) (string, bool) {
	ws := words(raw)
	if len(ws) == 0 {
		return "", false
	}
	code, ok := greetings[foldToken(ws[0])]
	return code, ok
}

// DetectByName matches raw against language names and synonyms, first as a
// whole (so "eesti keel" works) and then word by word.
func DetectByName(raw string) (string, bool) {
	ws := words(raw)
	if len(ws) == 0 {
		return "", false
	}
	if code, ok := languageNames[foldToken(strings.Join(ws, " "))]; ok {
		return code, true
	}
	for _, w := range ws {
		if code, ok := languageNames[foldToken(w)]; ok {
			return code, true
		}
	}
	return "", false
}
