package l10n

import (
	"context"
	"errors"
	"strings"

	"github.com/bluele/gcache"
	"golang.org/x/sync/singleflight"
)

const localePlaceholder = "{locale}"

const defaultSourceCacheSize = 512

// FilePresence is the answer of a cache/index peek
type FilePresence uint8

const (
	FileUnknown FilePresence = iota
	FilePresent
	FileMissing
)

// FileSource is one localization repository: a locale templated path scheme
// plus the locales it has content for. Immutable after construction.
type FileSource struct {
	name       string
	metasource string
	locales    []string
	localeSet  map[string]struct{}
	pathScheme string
	fetcher    FileFetcher
	index      map[string]struct{}
	cache      gcache.Cache
	flight     singleflight.Group
}

type fileSourceConfig struct {
	index     []string
	hasIndex  bool
	cacheSize int
	noCache   bool
}

type FileSourceOption func(*fileSourceConfig)

// WithIndex declares the complete list of paths the source holds. Paths not
// listed resolve as not found without reaching the fetcher.
func WithIndex(paths ...string) FileSourceOption {
	return func(cfg *fileSourceConfig) {
		cfg.hasIndex = true
		cfg.index = append(cfg.index, paths...)
	}
}

func WithCacheSize(size int) FileSourceOption {
	return func(cfg *fileSourceConfig) {
		cfg.cacheSize = size
	}
}

func WithoutCache() FileSourceOption {
	return func(cfg *fileSourceConfig) {
		cfg.noCache = true
	}
}

type cachedFile struct {
	content string
	found   bool
}

// NewFileSource validates and builds a source. pathScheme must contain the
// {locale} placeholder, e.g. "browser/{locale}/".
func NewFileSource(name, metasource string, locales []string, pathScheme string, fetcher FileFetcher, opts ...FileSourceOption) (*FileSource, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationError(codeInvalidSource, "l10n: file source name is required")
	}
	if fetcher == nil {
		return nil, validationError(codeInvalidSource, "l10n: file source "+name+" has no fetcher")
	}
	if !strings.Contains(pathScheme, localePlaceholder) {
		return nil, validationError(codeInvalidSource, "l10n: file source "+name+" path scheme must contain "+localePlaceholder)
	}

	cfg := fileSourceConfig{cacheSize: defaultSourceCacheSize}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	normalized := dedupeLocales(locales)
	source := &FileSource{
		name:       name,
		metasource: strings.TrimSpace(metasource),
		locales:    normalized,
		localeSet:  make(map[string]struct{}, len(normalized)),
		pathScheme: pathScheme,
		fetcher:    fetcher,
	}
	for _, locale := range normalized {
		source.localeSet[locale] = struct{}{}
	}

	if cfg.hasIndex {
		source.index = make(map[string]struct{}, len(cfg.index))
		for _, path := range cfg.index {
			source.index[path] = struct{}{}
		}
	}

	if !cfg.noCache && cfg.cacheSize > 0 {
		source.cache = gcache.New(cfg.cacheSize).ARC().Build()
	}

	return source, nil
}

// MustFileSource panics on configuration errors
func MustFileSource(name, metasource string, locales []string, pathScheme string, fetcher FileFetcher, opts ...FileSourceOption) *FileSource {
	source, err := NewFileSource(name, metasource, locales, pathScheme, fetcher, opts...)
	if err != nil {
		panic(err)
	}
	return source
}

func (s *FileSource) Name() string { return s.name }

func (s *FileSource) Metasource() string { return s.metasource }

func (s *FileSource) PathScheme() string { return s.pathScheme }

// Locales returns the locales the source claims, in declaration order
func (s *FileSource) Locales() []string {
	if len(s.locales) == 0 {
		return nil
	}
	out := make([]string, len(s.locales))
	copy(out, s.locales)
	return out
}

func (s *FileSource) HasLocale(locale string) bool {
	_, ok := s.localeSet[normalizeLocale(locale)]
	return ok
}

// PathFor substitutes locale into the path scheme and appends the resource value
func (s *FileSource) PathFor(locale string, id ResourceID) string {
	return strings.ReplaceAll(s.pathScheme, localePlaceholder, normalizeLocale(locale)) + id.Value
}

// HasFile answers from the index and the fetch cache only; it never fetches.
func (s *FileSource) HasFile(locale string, id ResourceID) FilePresence {
	if !s.HasLocale(locale) {
		return FileMissing
	}
	path := s.PathFor(locale, id)
	if s.index != nil {
		if _, ok := s.index[path]; !ok {
			return FileMissing
		}
	}
	if entry, ok := s.cached(path); ok {
		if entry.found {
			return FilePresent
		}
		return FileMissing
	}
	if s.index != nil {
		return FilePresent
	}
	return FileUnknown
}

// FetchFileSync blocks on the fetcher. NotFound and IO failures are reported as *FetchError.
func (s *FileSource) FetchFileSync(locale string, id ResourceID) (string, error) {
	return s.fetch(context.Background(), locale, id, true)
}

// FetchFile is the cancellable variant used by asynchronous generation
func (s *FileSource) FetchFile(ctx context.Context, locale string, id ResourceID) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return s.fetch(ctx, locale, id, false)
}

// ClearCache drops every cached fetch result
func (s *FileSource) ClearCache() {
	if s.cache != nil {
		s.cache.Purge()
	}
}

func (s *FileSource) fetch(ctx context.Context, locale string, id ResourceID, sync bool) (string, error) {
	if !s.HasLocale(locale) {
		return "", notFoundError(s.name, s.PathFor(locale, id))
	}

	path := s.PathFor(locale, id)
	if s.index != nil {
		if _, ok := s.index[path]; !ok {
			return "", notFoundError(s.name, path)
		}
	}

	for {
		if entry, ok := s.cached(path); ok {
			if !entry.found {
				return "", notFoundError(s.name, path)
			}
			return entry.content, nil
		}

		// Callers share one in-flight fetch but each waits on its own ctx. A
		// fetch abandoned by the caller that started it is retried by the
		// callers still waiting.
		ch := s.flight.DoChan(path, func() (any, error) {
			return s.load(ctx, path, sync)
		})
		select {
		case <-ctx.Done():
			return "", classifyFetchError(s.name, path, ctx.Err())
		case res := <-ch:
			if res.Err == nil {
				return res.Val.(string), nil
			}
			if errors.Is(res.Err, errFetchAbandoned) {
				if err := ctx.Err(); err != nil {
					return "", classifyFetchError(s.name, path, err)
				}
				continue
			}
			return "", classifyFetchError(s.name, path, res.Err)
		}
	}
}

// errFetchAbandoned marks a shared fetch whose starting ctx was cancelled
var errFetchAbandoned = errors.New("l10n: fetch abandoned")

func (s *FileSource) load(ctx context.Context, path string, sync bool) (string, error) {
	var (
		content string
		err     error
	)
	if sync {
		content, err = s.fetcher.FetchSync(path)
	} else {
		content, err = s.fetcher.Fetch(ctx, path)
	}
	if err != nil {
		if ctx.Err() != nil {
			return "", errFetchAbandoned
		}
		fetchErr := classifyFetchError(s.name, path, err)
		if fetchErr.Kind == FetchNotFound {
			s.store(path, cachedFile{})
		}
		return "", fetchErr
	}
	s.store(path, cachedFile{content: content, found: true})
	return content, nil
}

func (s *FileSource) cached(path string) (cachedFile, bool) {
	if s.cache == nil {
		return cachedFile{}, false
	}
	value, err := s.cache.Get(path)
	if err != nil {
		return cachedFile{}, false
	}
	entry, ok := value.(cachedFile)
	return entry, ok
}

func (s *FileSource) store(path string, entry cachedFile) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Set(path, entry)
}
