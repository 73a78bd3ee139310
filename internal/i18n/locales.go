package i18n

import "strings"

// Language describes one supported locale.
type Language struct {
	Code        string
	NativeName  string
	InlineLabel string // button label; empty for locales not on the inline menu
	Synonyms    []string
}

// BaseLocale is the locale the string tables are authored in.
const BaseLocale = "en"

var languages = []Language{
	{"en", "English", "🇬🇧 EN", []string{"english", "en", "eng"}},
	{"de", "Deutsch", "🇩🇪 DE", []string{"deutsch", "german", "de", "ger"}},
	{"it", "Italiano", "🇮🇹 IT", []string{"italiano", "italian", "it", "ita"}},
	{"es", "Español", "🇪🇸 ES", []string{"español", "espanol", "spanish", "es", "spa"}},
	{"fr", "Français", "🇫🇷 FR", []string{"français", "francais", "french", "fr", "fra"}},
	{"pt", "Português", "", []string{"portuguese", "portugues", "português", "português brasileiro", "portugues brasileiro", "pt"}},
	{"nl", "Nederlands", "", []string{"dutch", "nederlands", "hollands", "vlaams", "nl"}},
	{"pl", "Polski", "", []string{"polski", "polish", "polska", "pl"}},
	{"cs", "Čeština", "", []string{"čeština", "cestina", "česky", "cesky", "czech", "cs"}},
	{"sk", "Slovenčina", "", []string{"slovenčina", "slovencina", "slovenský", "slovensky", "slovak", "sk"}},
	{"sl", "Slovenščina", "", []string{"slovenščina", "slovenscina", "slovenski", "slovene", "slovenian", "sl", "slo"}},
	{"hu", "Magyar", "", []string{"magyar", "hungarian", "hu"}},
	{"ro", "Română", "", []string{"română", "romana", "românesc", "romanes", "romanian", "ro"}},
	{"bg", "Български", "", []string{"български", "bulgarski", "bulgarian", "bg"}},
	{"el", "Ελληνικά", "", []string{"ελληνικά", "ellinika", "greek", "hellenic", "el"}},
	{"da", "Dansk", "", []string{"dansk", "danske", "danish", "da"}},
	{"sv", "Svenska", "", []string{"svenska", "svensk", "swedish", "sv"}},
	{"fi", "Suomi", "", []string{"suomi", "suomea", "finnish", "finska", "fi"}},
	{"no", "Norsk", "", []string{"norsk", "norwegian", "nynorsk", "bokmål", "bokmal", "no"}},
	{"is", "Íslenska", "", []string{"íslenska", "islenska", "islensku", "icelandic", "is"}},
	{"et", "Eesti", "", []string{"eesti", "estonian", "eesti keel", "et"}},
	{"lv", "Latviešu", "", []string{"latviešu", "latviesu", "latviski", "latvian", "lv"}},
	{"lt", "Lietuvių", "", []string{"lietuvių", "lietuviu", "lietuviskai", "lithuanian", "lt"}},
	{"hr", "Hrvatski", "", []string{"hrvatski", "hrvatski jezik", "croatian", "croatia", "hr"}},
	{"sr", "Српски", "", []string{"српски", "srpski", "srpski jezik", "serbian", "sr"}},
	{"ru", "Русский", "", []string{"русский", "russkiy", "russian", "ru"}},
	{"uk", "Українська", "", []string{"українська", "ukrainska", "ukrayinska", "ukrainian", "uk"}},
}

var byCode = func() map[string]Language {
	m := make(map[string]Language, len(languages))
	for _, l := range languages {
		m[l.Code] = l
	}
	return m
}()

// IsSupported reports whether code is one of the supported locales.
func IsSupported(code string) bool {
	_, ok := byCode[code]
	return ok
}

// Languages returns all supported locales in menu order.
func Languages() []Language {
	return append([]Language(nil), languages...)
}

// NativeName returns the locale's own name, or the upper-cased code.
func NativeName(code string) string {
	if l, ok := byCode[code]; ok {
		return l.NativeName
	}
	return strings.ToUpper(code)
}

// InlineLabel returns the flag label for menu buttons, or the upper-cased code.
func InlineLabel(code string) string {
	if l, ok := byCode[code]; ok && l.InlineLabel != "" {
		return l.InlineLabel
	}
	return strings.ToUpper(code)
}

// SupportedLanguageList joins all native names with ", ".
func SupportedLanguageList() string {
	names := make([]string, len(languages))
	for i, l := range languages {
		names[i] = l.NativeName
	}
	return strings.Join(names, ", ")
}

// NameVariants maps every code to the words that name it: the code itself,
// the native name, and the synonyms.
func NameVariants() map[string][]string {
	out := make(map[string][]string, len(languages))
	for _, l := range languages {
		seen := map[string]struct{}{}
		var vs []string
		for _, v := range append([]string{l.Code, l.NativeName}, l.Synonyms...) {
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			vs = append(vs, v)
		}
		out[l.Code] = vs
	}
	return out
}

// Normalize lower-cases tag and keeps its first two letters. It returns the
// code and whether that code is supported.
func Normalize(tag string) (string, bool) {
	t := strings.ToLower(strings.TrimSpace(tag))
	if t == "" {
		return "", false
	}
	if r := []rune(t); len(r) > 2 {
		t = string(r[:2])
	}
	return t, IsSupported(t)
}
