package taxonomy

import (
	"context"
	"regexp"
	"strings"
	"sync"
)

// Vocabulary names understood by a Source.
const (
	VocabSkills = "skills"
	VocabTitles = "titles"
)

// Entry is one canonical term with its alias spellings.
type Entry struct {
	Canon   string   `json:"canon"`
	Aliases []string `json:"alts"`
	EscoID  string   `json:"esco_id,omitempty"`
	Label   string   `json:"label,omitempty"`
}

// Source is the authoritative vocabulary backing. Writes must land here
// before they are reflected in memory so they survive restarts.
type Source interface {
	LoadVocab(ctx context.Context, vocab string) ([]Entry, error)
	SaveEntry(ctx context.Context, vocab string, e Entry) error
}

// Taxonomy canonicalizes free-text skill and title strings against two
// independent vocabularies. Lookups never fail: unknown terms fall back to a
// deterministic lowercase/underscore transform so they still get a stable key.
type Taxonomy struct {
	mu     sync.RWMutex
	source Source

	skills map[string]Entry
	titles map[string]Entry
	// alias (lowercased) -> canon, one index per vocabulary
	skillAlias map[string]string
	titleAlias map[string]string
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// Load reads both vocabularies from the source and builds the in-memory maps.
func Load(ctx context.Context, source Source) (*Taxonomy, error) {
	t := &Taxonomy{
		source:     source,
		skills:     make(map[string]Entry),
		titles:     make(map[string]Entry),
		skillAlias: make(map[string]string),
		titleAlias: make(map[string]string),
	}

	skills, err := source.LoadVocab(ctx, VocabSkills)
	if err != nil {
		return nil, err
	}
	titles, err := source.LoadVocab(ctx, VocabTitles)
	if err != nil {
		return nil, err
	}

	for _, e := range skills {
		t.index(t.skills, t.skillAlias, e)
	}
	for _, e := range titles {
		t.index(t.titles, t.titleAlias, e)
	}
	return t, nil
}

// NewStatic builds a taxonomy from literal vocabularies with no backing
// source. AddSynonym is rejected on a static taxonomy.
func NewStatic(skills, titles []Entry) *Taxonomy {
	t := &Taxonomy{
		skills:     make(map[string]Entry),
		titles:     make(map[string]Entry),
		skillAlias: make(map[string]string),
		titleAlias: make(map[string]string),
	}
	for _, e := range skills {
		t.index(t.skills, t.skillAlias, e)
	}
	for _, e := range titles {
		t.index(t.titles, t.titleAlias, e)
	}
	return t
}

func (t *Taxonomy) index(entries map[string]Entry, aliasIdx map[string]string, e Entry) {
	canon := strings.ToLower(strings.TrimSpace(e.Canon))
	if canon == "" {
		return
	}
	aliases := make([]string, 0, len(e.Aliases))
	for _, a := range e.Aliases {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "" {
			continue
		}
		aliases = append(aliases, a)
		aliasIdx[a] = canon
	}
	e.Canon = canon
	e.Aliases = aliases
	entries[canon] = e
}

// CanonicalSkill returns the canonical skill key for a raw string.
// Idempotent: canonical keys map to themselves.
func (t *Taxonomy) CanonicalSkill(raw string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return canonicalize(raw, t.skills, t.skillAlias)
}

// CanonicalTitle follows the same exact/alias-then-fallback pattern over the
// title vocabulary.
func (t *Taxonomy) CanonicalTitle(raw string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return canonicalize(raw, t.titles, t.titleAlias)
}

// SkillEntry returns the vocabulary entry behind a canonical key, when known.
func (t *Taxonomy) SkillEntry(canon string) (Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.skills[strings.ToLower(strings.TrimSpace(canon))]
	return e, ok
}

// AddSynonym appends a new alias under a canonical skill key. Returns false
// for empty input or an alias identical to the key. The alias is persisted to
// the source before the in-memory map is touched.
func (t *Taxonomy) AddSynonym(ctx context.Context, canon, alias string) (bool, error) {
	canon = strings.ToLower(strings.TrimSpace(canon))
	alias = strings.ToLower(strings.TrimSpace(alias))
	if canon == "" || alias == "" || canon == alias {
		return false, nil
	}
	if t.source == nil {
		return false, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.skills[canon]
	if !ok {
		e = Entry{Canon: canon}
	}
	for _, a := range e.Aliases {
		if a == alias {
			return true, nil
		}
	}

	updated := e
	updated.Aliases = append(append([]string(nil), e.Aliases...), alias)
	if err := t.source.SaveEntry(ctx, VocabSkills, updated); err != nil {
		return false, err
	}

	t.skills[canon] = updated
	t.skillAlias[alias] = canon
	return true, nil
}

func canonicalize(raw string, entries map[string]Entry, aliasIdx map[string]string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	if _, ok := entries[s]; ok {
		return s
	}
	if canon, ok := aliasIdx[s]; ok {
		return canon
	}
	return Fallback(s)
}

// Fallback is the deterministic transform applied to terms outside the
// vocabulary: lowercase with whitespace collapsed to underscores.
func Fallback(s string) string {
	return whitespaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "_")
}
