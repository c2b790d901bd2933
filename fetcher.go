package l10n

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
	"sync"
)

// FileFetcher loads raw resource content for an already locale-substituted path.
// Implementations decide where the bytes come from (disk, archive, network).
type FileFetcher interface {
	// FetchSync blocks until the content is available
	FetchSync(path string) (string, error)
	// Fetch honours ctx cancellation and may be called concurrently
	Fetch(ctx context.Context, path string) (string, error)
}

// FetcherFunc adapts a bare function to the FileFetcher interface
type FetcherFunc func(ctx context.Context, path string) (string, error)

func (fn FetcherFunc) FetchSync(path string) (string, error) {
	return fn(context.Background(), path)
}

func (fn FetcherFunc) Fetch(ctx context.Context, path string) (string, error) {
	return fn(ctx, path)
}

// FSFetcher reads resources from an fs.FS (os.DirFS, embed.FS, fstest.MapFS)
type FSFetcher struct {
	fsys fs.FS
}

var _ FileFetcher = &FSFetcher{}

func NewFSFetcher(fsys fs.FS) *FSFetcher {
	return &FSFetcher{fsys: fsys}
}

// NewDirFetcher reads resources below a directory on disk
func NewDirFetcher(root string) *FSFetcher {
	return NewFSFetcher(os.DirFS(root))
}

func (f *FSFetcher) FetchSync(name string) (string, error) {
	if f == nil || f.fsys == nil {
		return "", errors.New("l10n: fs fetcher has no file system")
	}
	data, err := fs.ReadFile(f.fsys, cleanFSPath(name))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (f *FSFetcher) Fetch(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return f.FetchSync(name)
}

func cleanFSPath(name string) string {
	cleaned := path.Clean(strings.TrimPrefix(name, "/"))
	if cleaned == "." {
		return ""
	}
	return cleaned
}

// MapFetcher serves resources from memory. Failures can be injected per path to
// simulate operational errors.
type MapFetcher struct {
	mu       sync.RWMutex
	files    map[string]string
	failures map[string]error
	calls    map[string]int
}

var _ FileFetcher = &MapFetcher{}

func NewMapFetcher(files map[string]string) *MapFetcher {
	f := &MapFetcher{
		files:    make(map[string]string, len(files)),
		failures: make(map[string]error),
		calls:    make(map[string]int),
	}
	for name, content := range files {
		f.files[name] = content
	}
	return f
}

// Set adds or replaces a file
func (f *MapFetcher) Set(path, content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[path] = content
}

// Fail makes every fetch of path return err
func (f *MapFetcher) Fail(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failures, path)
		return
	}
	f.failures[path] = err
}

// Calls reports how many times path reached the fetcher
func (f *MapFetcher) Calls(path string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.calls[path]
}

func (f *MapFetcher) FetchSync(path string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[path]++
	if err, ok := f.failures[path]; ok {
		return "", err
	}
	content, ok := f.files[path]
	if !ok {
		return "", fmt.Errorf("%s: %w", path, fs.ErrNotExist)
	}
	return content, nil
}

func (f *MapFetcher) Fetch(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return f.FetchSync(path)
}

// classifyFetchError maps fetcher errors onto the NotFound/IO taxonomy.
func classifyFetchError(source, path string, err error) *FetchError {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		out := *fetchErr
		if out.Source == "" {
			out.Source = source
		}
		if out.Path == "" {
			out.Path = path
		}
		return &out
	}

	kind := FetchIO
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, ErrResourceNotFound) {
		kind = FetchNotFound
	}
	return &FetchError{Kind: kind, Source: source, Path: path, Err: err}
}
