package l10n

import (
	"reflect"
	"sync"

	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Memoizer caches language specific derived values (plural rules, number
// printers) for the lifetime of the bundles that share it. Entries are never
// invalidated, so construct functions must be pure for (language, args).
type Memoizer struct {
	lang  language.Tag
	mu    *sync.Mutex
	items map[memoKey]any
}

type memoKey struct {
	kind reflect.Type
	args string
}

// NewMemoizer returns a memoizer meant for a single goroutine
func NewMemoizer(lang language.Tag) *Memoizer {
	return &Memoizer{lang: lang, items: make(map[memoKey]any)}
}

// NewConcurrentMemoizer returns a mutex guarded memoizer safe to share across goroutines
func NewConcurrentMemoizer(lang language.Tag) *Memoizer {
	return &Memoizer{lang: lang, mu: &sync.Mutex{}, items: make(map[memoKey]any)}
}

func (m *Memoizer) Language() language.Tag {
	if m == nil {
		return language.Und
	}
	return m.lang
}

// Len reports the number of cached entries
func (m *Memoizer) Len() int {
	if m == nil {
		return 0
	}
	if m.mu != nil {
		m.mu.Lock()
		defer m.mu.Unlock()
	}
	return len(m.items)
}

// WithTryGet looks up the value of type V constructed for args, building it
// once on a miss, and hands it to use. Construct errors are returned and not
// cached. construct must not call back into the same memoizer.
func WithTryGet[V any, R any](m *Memoizer, args string, construct func(lang language.Tag, args string) (V, error), use func(V) R) (R, error) {
	var zero R
	if m == nil {
		return zero, ErrNilMemoizer
	}

	key := memoKey{kind: reflect.TypeFor[V](), args: args}

	if m.mu != nil {
		m.mu.Lock()
		defer m.mu.Unlock()
	}

	if cached, ok := m.items[key]; ok {
		return use(cached.(V)), nil
	}

	value, err := construct(m.lang, args)
	if err != nil {
		return zero, err
	}
	m.items[key] = value
	return use(value), nil
}

// MemoizerRegistry hands out one shared concurrent memoizer per language
type MemoizerRegistry struct {
	mu    sync.Mutex
	langs map[language.Tag]*Memoizer
}

func NewMemoizerRegistry() *MemoizerRegistry {
	return &MemoizerRegistry{langs: make(map[language.Tag]*Memoizer)}
}

func (r *MemoizerRegistry) Get(lang language.Tag) *Memoizer {
	r.mu.Lock()
	defer r.mu.Unlock()

	if memo, ok := r.langs[lang]; ok {
		return memo
	}
	memo := NewConcurrentMemoizer(lang)
	r.langs[lang] = memo
	return memo
}

// Len reports how many languages have a memoizer
func (r *MemoizerRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.langs)
}

// pluralRules selects CLDR cardinal categories for one language
type pluralRules struct {
	tag language.Tag
}

func newPluralRules(lang language.Tag, _ string) (pluralRules, error) {
	return pluralRules{tag: lang}, nil
}

func (p pluralRules) category(n int) PluralCategory {
	if n < 0 {
		n = -n
	}
	switch plural.Cardinal.MatchPlural(p.tag, n, 0, 0, 0, 0) {
	case plural.Zero:
		return PluralZero
	case plural.One:
		return PluralOne
	case plural.Two:
		return PluralTwo
	case plural.Few:
		return PluralFew
	case plural.Many:
		return PluralMany
	default:
		return PluralOther
	}
}

func newNumberPrinter(lang language.Tag, _ string) (*message.Printer, error) {
	return message.NewPrinter(lang), nil
}
