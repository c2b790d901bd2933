package l10n

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"golang.org/x/text/language"
)

type greeting struct {
	text string
}

type farewell struct {
	text string
}

func TestMemoizerConstructsOnce(t *testing.T) {
	memo := NewMemoizer(language.Polish)
	calls := 0
	construct := func(lang language.Tag, args string) (greeting, error) {
		calls++
		return greeting{text: lang.String() + ":" + args}, nil
	}
	use := func(g greeting) string { return g.text }

	for i := 0; i < 3; i++ {
		got, err := WithTryGet(memo, "formal", construct, use)
		if err != nil || got != "pl:formal" {
			t.Fatalf("WithTryGet = %q, %v", got, err)
		}
	}
	if calls != 1 {
		t.Fatalf("construct called %d times", calls)
	}

	if _, err := WithTryGet(memo, "casual", construct, use); err != nil {
		t.Fatalf("WithTryGet casual: %v", err)
	}
	if calls != 2 || memo.Len() != 2 {
		t.Fatalf("different args must build a new entry, calls=%d len=%d", calls, memo.Len())
	}
}

func TestMemoizerKeyedByType(t *testing.T) {
	memo := NewMemoizer(language.English)

	hello, _ := WithTryGet(memo, "", func(language.Tag, string) (greeting, error) {
		return greeting{text: "hello"}, nil
	}, func(g greeting) string { return g.text })
	bye, _ := WithTryGet(memo, "", func(language.Tag, string) (farewell, error) {
		return farewell{text: "bye"}, nil
	}, func(f farewell) string { return f.text })

	if hello != "hello" || bye != "bye" {
		t.Fatalf("values collided: %q %q", hello, bye)
	}
	if memo.Len() != 2 {
		t.Fatalf("Len = %d", memo.Len())
	}
}

func TestMemoizerDoesNotCacheErrors(t *testing.T) {
	memo := NewMemoizer(language.German)
	boom := errors.New("boom")
	fail := true
	construct := func(language.Tag, string) (greeting, error) {
		if fail {
			return greeting{}, boom
		}
		return greeting{text: "ok"}, nil
	}
	use := func(g greeting) string { return g.text }

	if _, err := WithTryGet(memo, "", construct, use); !errors.Is(err, boom) {
		t.Fatalf("expected construct error, got %v", err)
	}
	if memo.Len() != 0 {
		t.Fatal("failed construction must not be cached")
	}

	fail = false
	if got, err := WithTryGet(memo, "", construct, use); err != nil || got != "ok" {
		t.Fatalf("retry = %q, %v", got, err)
	}
}

func TestNilMemoizer(t *testing.T) {
	var memo *Memoizer
	_, err := WithTryGet(memo, "", newPluralRules, func(p pluralRules) PluralCategory { return p.category(1) })
	if !errors.Is(err, ErrNilMemoizer) {
		t.Fatalf("expected ErrNilMemoizer, got %v", err)
	}
	if memo.Len() != 0 || memo.Language() != language.Und {
		t.Fatal("nil memoizer accessors must be zero valued")
	}
}

func TestConcurrentMemoizer(t *testing.T) {
	memo := NewConcurrentMemoizer(language.Polish)
	var calls atomic.Int32
	construct := func(lang language.Tag, _ string) (pluralRules, error) {
		calls.Add(1)
		return pluralRules{tag: lang}, nil
	}

	var wg sync.WaitGroup
	categories := make([]PluralCategory, 16)
	for i := range categories {
		wg.Add(1)
		go func() {
			defer wg.Done()
			categories[i], _ = WithTryGet(memo, "cardinal", construct, func(p pluralRules) PluralCategory {
				return p.category(5)
			})
		}()
	}
	wg.Wait()

	if calls.Load() != 1 {
		t.Fatalf("construct called %d times", calls.Load())
	}
	for i, category := range categories {
		if category != PluralMany {
			t.Fatalf("category[%d] = %q", i, category)
		}
	}
}

func TestMemoizerRegistry(t *testing.T) {
	memoizers := NewMemoizerRegistry()
	first := memoizers.Get(language.Polish)
	if memoizers.Get(language.Polish) != first {
		t.Fatal("same language must share a memoizer")
	}
	if memoizers.Get(language.English) == first {
		t.Fatal("different languages must not share a memoizer")
	}
	if memoizers.Len() != 2 {
		t.Fatalf("Len = %d", memoizers.Len())
	}
	if first.Language() != language.Polish {
		t.Fatalf("Language = %v", first.Language())
	}
}

func TestPluralRulesCategories(t *testing.T) {
	tests := []struct {
		lang language.Tag
		n    int
		want PluralCategory
	}{
		{lang: language.English, n: 1, want: PluralOne},
		{lang: language.English, n: 2, want: PluralOther},
		{lang: language.Polish, n: 2, want: PluralFew},
		{lang: language.Polish, n: 12, want: PluralMany},
		{lang: language.Polish, n: -1, want: PluralOne},
		{lang: language.Arabic, n: 0, want: PluralZero},
		{lang: language.Arabic, n: 2, want: PluralTwo},
	}
	for _, tc := range tests {
		rules, _ := newPluralRules(tc.lang, "")
		if got := rules.category(tc.n); got != tc.want {
			t.Fatalf("%v/%d: got %q want %q", tc.lang, tc.n, got, tc.want)
		}
	}
}
