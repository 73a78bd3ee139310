// Package i18n resolves user locales and renders localized UI strings.
//
// String tables are embedded JSON objects (catalog/<locale>.json); the "en"
// table is mandatory and acts as the base every other locale falls back to.
// Array values are joined with commas, which is how keyword lists are stored.
// When an AutoTranslator is configured, keys missing from a locale's table are
// machine-translated from the base template and cached in a bounded LRU.
// Failed translations are remembered for a short while so the base text is
// served without calling the provider again.
package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog/log"
)

//go:embed catalog/*.json
var catalogFS embed.FS

// DefaultCacheSize bounds the auto-translation cache.
const DefaultCacheSize = 512

// DefaultFailureTTL is how long a failed auto-translation is not retried.
const DefaultFailureTTL = 5 * time.Minute

// AutoTranslator translates an English UI template into locale, keeping
// {placeholders} intact.
type AutoTranslator interface {
	Translate(ctx context.Context, locale, text string) (string, error)
}

// Options configures a Translator.
type Options struct {
	// DefaultLocale is used for unknown tags; ignored unless supported.
	DefaultLocale string
	// Auto is optional.
	Auto AutoTranslator
	// AutoTimeout bounds one auto-translation call. Zero means 15s.
	AutoTimeout time.Duration
	// CacheSize defaults to DefaultCacheSize.
	CacheSize int
	// FailureTTL defaults to DefaultFailureTTL.
	FailureTTL time.Duration
}

// cacheKey identifies a translated template; placeholders are substituted
// after lookup, so vars are not part of it.
type cacheKey struct {
	locale, key string
}

// Translator is safe for concurrent use.
type Translator struct {
	tables      map[string]map[string]string
	def         string
	auto        AutoTranslator
	autoTimeout time.Duration
	cache       *lru.Cache[cacheKey, string]
	failed      *expirable.LRU[cacheKey, struct{}]
}

// New loads the embedded string tables.
func New(opts Options) (*Translator, error) {
	tables, err := loadCatalog()
	if err != nil {
		return nil, err
	}
	if _, ok := tables[BaseLocale]; !ok {
		return nil, fmt.Errorf("i18n: missing base table %q", BaseLocale)
	}

	def := BaseLocale
	if d := strings.ToLower(strings.TrimSpace(opts.DefaultLocale)); IsSupported(d) {
		def = d
	}
	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[cacheKey, string](size)
	if err != nil {
		return nil, err
	}
	timeout := opts.AutoTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	failureTTL := opts.FailureTTL
	if failureTTL <= 0 {
		failureTTL = DefaultFailureTTL
	}
	return &Translator{
		tables:      tables,
		def:         def,
		auto:        opts.Auto,
		autoTimeout: timeout,
		cache:       cache,
		failed:      expirable.NewLRU[cacheKey, struct{}](size, nil, failureTTL),
	}, nil
}

func loadCatalog() (map[string]map[string]string, error) {
	entries, err := catalogFS.ReadDir("catalog")
	if err != nil {
		return nil, err
	}
	tables := make(map[string]map[string]string, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || path.Ext(name) != ".json" {
			continue
		}
		data, err := catalogFS.ReadFile(path.Join("catalog", name))
		if err != nil {
			return nil, err
		}
		table, err := parseTable(data)
		if err != nil {
			return nil, fmt.Errorf("i18n: %s: %w", name, err)
		}
		tables[strings.TrimSuffix(name, ".json")] = table
	}
	return tables, nil
}

// parseTable decodes a flat JSON object whose values are strings or arrays
// of strings.
func parseTable(data []byte) (map[string]string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			out[k] = s
			continue
		}
		var list []string
		if err := json.Unmarshal(v, &list); err != nil {
			return nil, fmt.Errorf("key %q: value must be a string or an array of strings", k)
		}
		out[k] = strings.Join(list, ",")
	}
	return out, nil
}

// DefaultLocale returns the locale used for unknown tags.
func (t *Translator) DefaultLocale() string { return t.def }

// Resolve maps a platform or user tag to a supported locale, falling back
// to the default locale. Resolve(Resolve(x)) == Resolve(x).
func (t *Translator) Resolve(tag string) string {
	if code, ok := Normalize(tag); ok {
		return code
	}
	return t.def
}

// ResolvePtr is Resolve for optional tags.
func (t *Translator) ResolvePtr(tag *string) string {
	if tag == nil {
		return t.def
	}
	return t.Resolve(*tag)
}

// Translate renders key for locale with {placeholder} substitution.
//
// Lookup order: the locale's own table, then (when an AutoTranslator is
// configured) a machine translation of the base template, then the default
// locale's table, then the base table, and finally the key itself.
func (t *Translator) Translate(locale, key string, vars map[string]string) string {
	locale = t.Resolve(locale)
	if tmpl, ok := t.tables[locale][key]; ok {
		return format(tmpl, vars)
	}
	base, ok := t.tables[BaseLocale][key]
	if !ok {
		if tmpl, ok := t.tables[t.def][key]; ok {
			return format(tmpl, vars)
		}
		return format(key, vars)
	}
	if locale != BaseLocale && t.auto != nil {
		return format(t.autoTranslate(locale, key, base), vars)
	}
	if tmpl, ok := t.tables[t.def][key]; ok {
		return format(tmpl, vars)
	}
	return format(base, vars)
}

func (t *Translator) autoTranslate(locale, key, base string) string {
	ck := cacheKey{locale: locale, key: key}
	if s, ok := t.cache.Get(ck); ok {
		return s
	}
	if _, ok := t.failed.Get(ck); ok {
		return base
	}
	ctx, cancel := context.WithTimeout(context.Background(), t.autoTimeout)
	defer cancel()
	out, err := t.auto.Translate(ctx, locale, base)
	if err != nil || strings.TrimSpace(out) == "" {
		if err != nil {
			log.Warn().Err(err).Str("component", "i18n").Str("locale", locale).Str("key", key).Msg("auto-localization failed")
		}
		t.failed.Add(ck, struct{}{})
		return base
	}
	t.cache.Add(ck, out)
	return out
}

// Keywords returns the comma-separated entries of key, trimmed and
// lower-cased. A key without a table entry yields nil.
func (t *Translator) Keywords(locale, key string) []string {
	raw := t.Translate(locale, key, nil)
	if raw == key {
		return nil
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if w := strings.ToLower(strings.TrimSpace(p)); w != "" {
			out = append(out, w)
		}
	}
	return out
}

// Has reports whether key exists in the base table.
func (t *Translator) Has(key string) bool {
	_, ok := t.tables[BaseLocale][key]
	return ok
}

func format(tmpl string, vars map[string]string) string {
	if len(vars) == 0 {
		return tmpl
	}
	pairs := make([]string, 0, 2*len(vars))
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
