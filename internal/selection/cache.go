package selection

import (
	"regexp"
	"sort"
	"strings"

	"github.com/danielpatrickdp/scaffold-engine/internal/template"
	"github.com/danielpatrickdp/scaffold-engine/internal/textmatch"
)

// #region cache-entry

// cacheEntry holds precomputed matching state for one template. Entries are
// keyed by a signature of the template's trigger phrases; editing a
// template's triggers invalidates its entry on the next lookup.
type cacheEntry struct {
	signature string

	// Intent phrases, normalized, with per-phrase token sets and compiled
	// boundary matchers aligned by index.
	intentPhrases []string
	intentTokens  []map[string]struct{}
	intentRegex   []*regexp.Regexp

	// Keyword matchers aligned with the template's keyword list.
	keywords     []string
	keywordRegex []*regexp.Regexp

	// Union of all intent and keyword tokens, for the inverted index.
	matchTokens map[string]struct{}

	// A keyword made of no tokens at all (punctuation-only) contributes no
	// index entries; such templates are scored on every call.
	alwaysScore bool

	descTokens map[string]struct{}
}

// signatureOf fingerprints the trigger surface of a template. Only fields
// that feed the surface and intent layers participate.
func signatureOf(tpl *template.Template) string {
	parts := make([]string, 0, len(tpl.Applicability.IntentPhrases)+len(tpl.Applicability.Keywords))
	for _, p := range tpl.Applicability.IntentPhrases {
		parts = append(parts, "i:"+textmatch.NormalizePhrase(p))
	}
	for _, k := range tpl.Applicability.Keywords {
		parts = append(parts, "k:"+textmatch.NormalizePhrase(k))
	}
	sort.Strings(parts)
	return strings.Join(parts, "\x1f")
}

func buildEntry(tpl *template.Template) *cacheEntry {
	e := &cacheEntry{
		signature:   signatureOf(tpl),
		matchTokens: make(map[string]struct{}),
		descTokens:  textmatch.Tokenize(tpl.Description),
	}

	for _, raw := range tpl.Applicability.IntentPhrases {
		phrase := textmatch.NormalizePhrase(raw)
		if phrase == "" {
			continue
		}
		tokens := textmatch.Tokenize(phrase)
		e.intentPhrases = append(e.intentPhrases, phrase)
		e.intentTokens = append(e.intentTokens, tokens)
		e.intentRegex = append(e.intentRegex, textmatch.CompilePhrase(phrase))
		for tok := range tokens {
			e.matchTokens[tok] = struct{}{}
		}
	}

	for _, raw := range tpl.Applicability.Keywords {
		kw := textmatch.NormalizePhrase(raw)
		if kw == "" {
			continue
		}
		tokens := textmatch.Tokenize(kw)
		e.keywords = append(e.keywords, kw)
		e.keywordRegex = append(e.keywordRegex, textmatch.CompilePhrase(kw))
		if len(tokens) == 0 {
			e.alwaysScore = true
		}
		for tok := range tokens {
			e.matchTokens[tok] = struct{}{}
		}
	}

	return e
}

// #endregion cache-entry

// #region cache

// Cache precomputes and indexes per-template matching state. It is owned by
// a single Engine and carries no locking; callers coordinating concurrent
// use must serialize access themselves.
type Cache struct {
	entries map[string]*cacheEntry
	index   map[string]map[string]struct{} // token -> template ids
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]*cacheEntry),
		index:   make(map[string]map[string]struct{}),
	}
}

// ensure returns the cached entry for tpl, rebuilding it when the template's
// trigger signature has changed since the entry was built.
func (c *Cache) ensure(tpl *template.Template) *cacheEntry {
	if existing, ok := c.entries[tpl.ID]; ok {
		if existing.signature == signatureOf(tpl) {
			return existing
		}
		c.evict(tpl.ID, existing)
	}

	e := buildEntry(tpl)
	c.entries[tpl.ID] = e
	for tok := range e.matchTokens {
		ids, ok := c.index[tok]
		if !ok {
			ids = make(map[string]struct{})
			c.index[tok] = ids
		}
		ids[tpl.ID] = struct{}{}
	}
	return e
}

// Prepare warms entries for every template in the registry.
func (c *Cache) Prepare(reg *template.Registry) {
	for _, tpl := range reg.All() {
		c.ensure(tpl)
	}
}

// Invalidate drops the entry for a template ID, if present.
func (c *Cache) Invalidate(id string) {
	if e, ok := c.entries[id]; ok {
		c.evict(id, e)
	}
}

// InvalidateAll clears every entry and the inverted index. Used between
// independent evaluation runs.
func (c *Cache) InvalidateAll() {
	c.entries = make(map[string]*cacheEntry)
	c.index = make(map[string]map[string]struct{})
}

func (c *Cache) evict(id string, e *cacheEntry) {
	for tok := range e.matchTokens {
		if ids, ok := c.index[tok]; ok {
			delete(ids, id)
			if len(ids) == 0 {
				delete(c.index, tok)
			}
		}
	}
	delete(c.entries, id)
}

// candidates returns the IDs of templates sharing at least one token with
// the input. When the index produced any hits, always-score templates join
// the set; when it produced none, nothing is scored on the fast path.
// Entries must already be warm for the templates being scored.
func (c *Cache) candidates(inputTokens map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	for tok := range inputTokens {
		for id := range c.index[tok] {
			out[id] = struct{}{}
		}
	}
	if len(out) == 0 {
		return out
	}
	for id, e := range c.entries {
		if e.alwaysScore {
			out[id] = struct{}{}
		}
	}
	return out
}

// #endregion cache
