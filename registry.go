package l10n

import (
	"context"
	"fmt"
	"sync"
)

// Registry holds the ordered file sources bundles are generated from.
// Registration order is source priority. Mutations never affect
// generators that were already created.
type Registry struct {
	mu         sync.RWMutex
	sources    []*FileSource
	generation uint64
	cfg        *registryConfig
}

func NewRegistry(opts ...RegistryOption) (*Registry, error) {
	cfg, err := newRegistryConfig(opts...)
	if err != nil {
		return nil, err
	}
	return &Registry{cfg: cfg}, nil
}

// RegisterSources appends sources at the lowest priority
func (r *Registry) RegisterSources(sources ...*FileSource) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, len(sources))
	for _, source := range sources {
		if source == nil {
			return validationError(codeInvalidSource, "l10n: nil file source")
		}
		if r.indexOf(source.Name()) >= 0 {
			return fmt.Errorf("%w: %s", ErrDuplicateSource, source.Name())
		}
		if _, dup := seen[source.Name()]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateSource, source.Name())
		}
		seen[source.Name()] = struct{}{}
	}

	r.sources = append(r.sources, sources...)
	r.generation++
	for _, source := range sources {
		r.cfg.logger.Debug("l10n.source.registered",
			"source", source.Name(),
			"metasource", source.Metasource(),
			"locales", source.Locales())
	}
	return nil
}

// UpdateSources replaces sources by name keeping their priority
func (r *Registry) UpdateSources(sources ...*FileSource) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	positions := make([]int, len(sources))
	for i, source := range sources {
		if source == nil {
			return validationError(codeInvalidSource, "l10n: nil file source")
		}
		idx := r.indexOf(source.Name())
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrUnknownSource, source.Name())
		}
		positions[i] = idx
	}

	next := append([]*FileSource(nil), r.sources...)
	for i, source := range sources {
		next[positions[i]] = source
	}
	r.sources = next
	r.generation++
	return nil
}

// RemoveSources drops the named sources; unknown names are ignored
func (r *Registry) RemoveSources(names ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	drop := make(map[string]struct{}, len(names))
	for _, name := range names {
		drop[name] = struct{}{}
	}

	next := make([]*FileSource, 0, len(r.sources))
	for _, source := range r.sources {
		if _, ok := drop[source.Name()]; ok {
			continue
		}
		next = append(next, source)
	}
	if len(next) != len(r.sources) {
		r.sources = next
		r.generation++
	}
}

func (r *Registry) ClearSources() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources = nil
	r.generation++
}

func (r *Registry) HasSource(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.indexOf(name) >= 0
}

func (r *Registry) Source(name string) (*FileSource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx := r.indexOf(name)
	if idx < 0 {
		return nil, false
	}
	return r.sources[idx], true
}

// SourceNames returns names in priority order
func (r *Registry) SourceNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.sources) == 0 {
		return nil
	}
	out := make([]string, 0, len(r.sources))
	for _, source := range r.sources {
		out = append(out, source.Name())
	}
	return out
}

// AvailableLocales is the union of source locales ordered by first appearance
func (r *Registry) AvailableLocales() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var all []string
	for _, source := range r.sources {
		all = append(all, source.locales...)
	}
	return dedupeLocales(all)
}

// Generation increases on every mutation
func (r *Registry) Generation() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.generation
}

// GenerateBundlesSync returns a lazy iterator yielding one result per locale
// in order. Fetches block the caller.
func (r *Registry) GenerateBundlesSync(locales []string, ids []ResourceID) *BundleIterator {
	return &BundleIterator{cur: r.newCursor(locales, ids)}
}

// GenerateBundles returns a lazy stream. Resources of one locale are fetched
// concurrently and joined before the locale result is produced.
func (r *Registry) GenerateBundles(locales []string, ids []ResourceID) *BundleStream {
	return &BundleStream{cur: r.newCursor(locales, ids)}
}

// GenerateBundleSync resolves a single locale. The bundle is partial when err is not nil.
func (r *Registry) GenerateBundleSync(locale string, ids []ResourceID) (*Bundle, error) {
	result := r.snapshot(ids).resolve(context.Background(), normalizeLocale(locale), false)
	return result.Bundle, result.Err
}

// GenerateBundle is the asynchronous single locale variant
func (r *Registry) GenerateBundle(ctx context.Context, locale string, ids []ResourceID) (*Bundle, error) {
	result := r.snapshot(ids).resolve(ctx, normalizeLocale(locale), true)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return result.Bundle, result.Err
}

func (r *Registry) newCursor(locales []string, ids []ResourceID) cursor {
	return cursor{gen: r.snapshot(ids), locales: dedupeLocales(locales)}
}

// snapshot freezes the current sources for one generator
func (r *Registry) snapshot(ids []ResourceID) *generation {
	r.mu.RLock()
	defer r.mu.RUnlock()

	gen := &generation{
		id:  r.generation,
		ids: cloneResourceIDs(ids),
		cfg: r.cfg,
	}

	byMeta := map[string]int{}
	for _, source := range r.sources {
		idx, ok := byMeta[source.Metasource()]
		if !ok {
			idx = len(gen.groups)
			byMeta[source.Metasource()] = idx
			gen.groups = append(gen.groups, sourceGroup{metasource: source.Metasource()})
		}
		gen.groups[idx].sources = append(gen.groups[idx].sources, source)
	}
	return gen
}

func (r *Registry) indexOf(name string) int {
	for i, source := range r.sources {
		if source.Name() == name {
			return i
		}
	}
	return -1
}
