package l10n

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func threeLocaleRegistry(t *testing.T) (*Registry, *MapFetcher) {
	t.Helper()
	source, fetcher := mapSource("browser", "", "browser/{locale}/", []string{"en-US", "pl", "de"}, map[string]string{
		"browser/pl/menu.ftl": "menu = Menu PL",
		"browser/de/menu.ftl": "menu = Menü",
	})
	return newTestRegistry(t, source), fetcher
}

func TestBundleIteratorAll(t *testing.T) {
	registry, _ := threeLocaleRegistry(t)
	it := registry.GenerateBundlesSync([]string{"en-US", "pl", "de"}, ResourceIDs("menu.ftl"))

	var locales []string
	var failures int
	for bundle, err := range it.All() {
		locales = append(locales, bundle.Locale())
		if err != nil {
			failures++
			continue
		}
		if bundle.Locale() == "pl" {
			break
		}
	}
	if diff := cmp.Diff([]string{"en-US", "pl"}, locales); diff != "" {
		t.Fatalf("locales mismatch (-want +got):\n%s", diff)
	}
	if failures != 1 {
		t.Fatalf("failures = %d", failures)
	}

	// breaking out of All leaves the iterator usable
	result, ok := it.Next()
	if !ok || result.Locale != "de" {
		t.Fatalf("expected de after break, got %+v", result)
	}
	if _, ok := it.Next(); ok {
		t.Fatal("iterator must be exhausted")
	}
}

func TestPrefetchSyncDoesNotAdvance(t *testing.T) {
	registry, fetcher := threeLocaleRegistry(t)
	it := registry.GenerateBundlesSync([]string{"en-US", "pl", "de"}, ResourceIDs("menu.ftl"))

	it.PrefetchSync()
	if calls := fetcher.Calls("browser/de/menu.ftl"); calls != 1 {
		t.Fatalf("prefetch should fetch de once, got %d", calls)
	}

	results := collectAll(it)
	if len(results) != 3 || results[0].Locale != "en-US" {
		t.Fatalf("prefetch changed the sequence: %+v", results)
	}
	if calls := fetcher.Calls("browser/de/menu.ftl"); calls != 1 {
		t.Fatalf("resolution after prefetch should hit the cache, got %d calls", calls)
	}
}

func TestBundleStream(t *testing.T) {
	registry, fetcher := threeLocaleRegistry(t)
	stream := registry.GenerateBundles([]string{"en-US", "pl", "de"}, ResourceIDs("menu.ftl"))

	if err := stream.PrefetchAsync(context.Background()); err != nil {
		t.Fatalf("PrefetchAsync: %v", err)
	}
	if calls := fetcher.Calls("browser/pl/menu.ftl"); calls != 1 {
		t.Fatalf("prefetch fetched pl %d times", calls)
	}

	var got []string
	for {
		result, err := stream.Next(context.Background())
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		got = append(got, result.Locale)
	}
	if diff := cmp.Diff([]string{"en-US", "pl", "de"}, got); diff != "" {
		t.Fatalf("stream order mismatch (-want +got):\n%s", diff)
	}
	if _, err := stream.Next(context.Background()); !errors.Is(err, io.EOF) {
		t.Fatalf("exhausted stream must keep returning io.EOF, got %v", err)
	}
}

func TestBundleStreamCancellation(t *testing.T) {
	var (
		mu      sync.Mutex
		started = make(chan struct{}, 1)
		block   = true
	)
	fetcher := FetcherFunc(func(ctx context.Context, path string) (string, error) {
		mu.Lock()
		wait := block
		mu.Unlock()
		if wait {
			started <- struct{}{}
			<-ctx.Done()
			return "", ctx.Err()
		}
		return "menu = Menu", nil
	})
	source := MustFileSource("slow", "", []string{"en-US"}, "slow/{locale}/", fetcher)
	registry := newTestRegistry(t, source)
	stream := registry.GenerateBundles([]string{"en-US"}, ResourceIDs("menu.ftl"))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()
	if _, err := stream.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if diff := cmp.Diff([]string{"en-US"}, stream.Remaining()); diff != "" {
		t.Fatalf("cancelled Next must not advance (-want +got):\n%s", diff)
	}

	mu.Lock()
	block = false
	mu.Unlock()

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	result, err := stream.Next(ctx2)
	if err != nil || !result.Ready() {
		t.Fatalf("retry after cancel = %+v, %v", result, err)
	}
}

func TestBundleStreamCancellationIsolated(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{})
	fetcher := FetcherFunc(func(ctx context.Context, path string) (string, error) {
		if calls.Add(1) == 1 {
			close(started)
			<-ctx.Done()
			return "", ctx.Err()
		}
		return "menu = Menu", nil
	})
	source := MustFileSource("slow", "", []string{"en-US"}, "slow/{locale}/", fetcher)
	registry := newTestRegistry(t, source)

	cancelled := registry.GenerateBundles([]string{"en-US"}, ResourceIDs("menu.ftl"))
	live := registry.GenerateBundles([]string{"en-US"}, ResourceIDs("menu.ftl"))

	ctx, cancel := context.WithCancel(context.Background())
	cancelledErr := make(chan error, 1)
	go func() {
		_, err := cancelled.Next(ctx)
		cancelledErr <- err
	}()
	<-started

	type outcome struct {
		result BundleResult
		err    error
	}
	liveOutcome := make(chan outcome, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		result, err := live.Next(ctx)
		liveOutcome <- outcome{result: result, err: err}
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	if err := <-cancelledErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled stream = %v", err)
	}
	got := <-liveOutcome
	if got.err != nil || !got.result.Ready() {
		t.Fatalf("live stream = %+v, %v", got.result, got.err)
	}
	if msg, ok := got.result.Bundle.Message("menu"); !ok || msg.Variants[PluralOther].Template != "Menu" {
		t.Fatalf("live bundle message = %+v, %v", msg, ok)
	}
}

func TestSyncAndAsyncAgree(t *testing.T) {
	primary, fetcher := mapSource("primary", "", "p/{locale}/", []string{"en-US", "pl"}, map[string]string{
		"p/en-US/a.ftl": "a = A",
		"p/pl/a.ftl":    "a = A pl",
		"p/pl/b.ftl":    "b = B pl",
	})
	fetcher.Fail("p/en-US/c.ftl", errors.New("flaky"))
	secondary, _ := mapSource("secondary", "", "s/{locale}/", []string{"pl"}, map[string]string{
		"s/pl/c.ftl": "c = C pl",
	})
	registry := newTestRegistry(t, primary, secondary)
	ids := []ResourceID{Required("a.ftl"), Required("b.ftl"), Optional("c.ftl")}

	syncResults := collectAll(registry.GenerateBundlesSync([]string{"en-US", "pl"}, ids))

	stream := registry.GenerateBundles([]string{"en-US", "pl"}, ids)
	var asyncResults []BundleResult
	for {
		result, err := stream.Next(context.Background())
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		asyncResults = append(asyncResults, result)
	}

	describe := func(results []BundleResult) []string {
		var out []string
		for _, r := range results {
			line := r.Locale
			if r.Err != nil {
				line += " err: " + r.Err.Error()
			}
			for _, id := range r.Bundle.MessageIDs() {
				line += " " + id
			}
			out = append(out, line)
		}
		return out
	}
	if diff := cmp.Diff(describe(syncResults), describe(asyncResults)); diff != "" {
		t.Fatalf("sync and async differ (-sync +async):\n%s", diff)
	}
}

func TestResolutionHooks(t *testing.T) {
	var before, after []string
	var loadErrs int
	hook := ResolutionHookFuncs{
		Before: func(ctx *ResolutionHookContext) {
			before = append(before, ctx.Locale)
		},
		After: func(ctx *ResolutionHookContext) {
			state := "err"
			if ctx.Ready() {
				state = "ready"
			}
			after = append(after, ctx.Locale+":"+state)
			loadErrs += len(ctx.LoadErrors())
		},
	}

	source, _ := mapSource("browser", "", "browser/{locale}/", []string{"en-US", "pl"}, map[string]string{
		"browser/pl/menu.ftl": "menu = Menu PL",
	})
	registry, err := NewRegistry(WithResolutionHooks(hook, nil))
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if err := registry.RegisterSources(source); err != nil {
		t.Fatalf("RegisterSources: %v", err)
	}

	collectAll(registry.GenerateBundlesSync([]string{"en-US", "pl"}, ResourceIDs("menu.ftl")))

	if diff := cmp.Diff([]string{"en-US", "pl"}, before); diff != "" {
		t.Fatalf("before mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"en-US:err", "pl:ready"}, after); diff != "" {
		t.Fatalf("after mismatch (-want +got):\n%s", diff)
	}
	if loadErrs != 1 {
		t.Fatalf("expected one load error reported to hooks, got %d", loadErrs)
	}
}
