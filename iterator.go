package l10n

import (
	"context"
	"io"
	"iter"
	"sync"

	"golang.org/x/sync/errgroup"
)

// BundleIterator yields one BundleResult per requested locale, resolving each
// locale only when asked. Not safe for concurrent use.
type BundleIterator struct {
	cur cursor
}

// Next resolves the next locale; ok is false once every locale was attempted
func (it *BundleIterator) Next() (BundleResult, bool) {
	result, ok, _ := it.cur.next(context.Background(), false)
	return result, ok
}

// All ranges over the remaining results as (bundle, err) pairs
func (it *BundleIterator) All() iter.Seq2[*Bundle, error] {
	return func(yield func(*Bundle, error) bool) {
		for {
			result, ok := it.Next()
			if !ok {
				return
			}
			if !yield(result.Bundle, result.Err) {
				return
			}
		}
	}
}

// Remaining lists the locales not yet attempted
func (it *BundleIterator) Remaining() []string {
	return it.cur.remaining()
}

// PrefetchSync warms the source caches for every remaining locale without
// advancing the iterator.
func (it *BundleIterator) PrefetchSync() {
	ctx := context.Background()
	for _, locale := range it.cur.remaining() {
		it.cur.gen.prefetch(ctx, locale, false)
	}
}

// BundleStream is the asynchronous counterpart of BundleIterator. Calls are
// serialized; results come in locale order.
type BundleStream struct {
	mu  sync.Mutex
	cur cursor
}

// Next resolves the next locale. It returns io.EOF after the last locale and
// the context error, without advancing, when ctx is done.
func (s *BundleStream) Next(ctx context.Context) (BundleResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	result, ok, err := s.cur.next(ctx, true)
	if err != nil {
		return BundleResult{}, err
	}
	if !ok {
		return BundleResult{}, io.EOF
	}
	return result, nil
}

// Remaining lists the locales not yet attempted
func (s *BundleStream) Remaining() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur.remaining()
}

// PrefetchAsync warms the source caches for every remaining locale
// concurrently and waits for completion. The stream position is unchanged.
func (s *BundleStream) PrefetchAsync(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s.mu.Lock()
	gen := s.cur.gen
	locales := s.cur.remaining()
	s.mu.Unlock()

	group, groupCtx := errgroup.WithContext(ctx)
	if gen.cfg.concurrency > 0 {
		group.SetLimit(gen.cfg.concurrency)
	}
	for _, locale := range locales {
		group.Go(func() error {
			gen.prefetch(groupCtx, locale, true)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
