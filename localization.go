package l10n

import (
	"context"
	"errors"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// L10nKey names a message and its arguments
type L10nKey struct {
	ID   string
	Args map[string]any
}

// Localization formats messages against the bundles a registry generates for
// an ordered locale list. Bundles are pulled lazily and cached; a message the
// first ready bundle lacks is taken from the next ready bundle defining it.
type Localization struct {
	mu       sync.Mutex
	registry *Registry
	locales  []string
	ids      []ResourceID
	logger   Logger

	cur       cursor
	results   []BundleResult
	listeners []func()
}

type LocalizationOption func(*Localization)

func WithLocalizationLogger(logger Logger) LocalizationOption {
	return func(l *Localization) {
		if logger != nil {
			l.logger = logger
		}
	}
}

func NewLocalization(registry *Registry, locales []string, ids []ResourceID, opts ...LocalizationOption) *Localization {
	l := &Localization{
		registry: registry,
		locales:  dedupeLocales(locales),
		ids:      cloneResourceIDs(ids),
		logger:   registry.cfg.logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	l.reset()
	return l
}

func (l *Localization) Locales() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.locales...)
}

func (l *Localization) ResourceIDs() []ResourceID {
	l.mu.Lock()
	defer l.mu.Unlock()
	return cloneResourceIDs(l.ids)
}

// SetLocales replaces the locale preference list
func (l *Localization) SetLocales(locales ...string) {
	l.mu.Lock()
	l.locales = dedupeLocales(locales)
	l.mu.Unlock()
	l.OnChange()
}

// AddResourceIDs appends resources not already requested
func (l *Localization) AddResourceIDs(ids ...ResourceID) {
	l.mu.Lock()
	for _, id := range ids {
		if !containsResource(l.ids, id.Value) {
			l.ids = append(l.ids, id)
		}
	}
	l.mu.Unlock()
	l.OnChange()
}

// RemoveResourceIDs drops resources by value and reports how many remain
func (l *Localization) RemoveResourceIDs(values ...string) int {
	l.mu.Lock()
	drop := make(map[string]struct{}, len(values))
	for _, value := range values {
		drop[value] = struct{}{}
	}
	kept := l.ids[:0:0]
	for _, id := range l.ids {
		if _, ok := drop[id.Value]; !ok {
			kept = append(kept, id)
		}
	}
	l.ids = kept
	remaining := len(l.ids)
	l.mu.Unlock()
	l.OnChange()
	return remaining
}

// OnChange discards cached bundles so the next format call resolves against
// the current registry, locales and resources.
func (l *Localization) OnChange() {
	l.mu.Lock()
	l.reset()
	listeners := append([]func(){}, l.listeners...)
	l.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// Subscribe registers fn to run after every OnChange
func (l *Localization) Subscribe(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, fn)
}

func (l *Localization) reset() {
	l.cur = l.registry.newCursor(l.locales, l.ids)
	l.results = nil
}

// Prefetch resolves every locale now
func (l *Localization) Prefetch(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for {
		ok, err := l.pull(ctx, true)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
}

// Errors returns the resolution errors of the locales pulled so far
func (l *Localization) Errors() []error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []error
	for _, result := range l.results {
		if result.Err != nil {
			out = append(out, result.Err)
		}
	}
	return out
}

// Bundles returns the ready bundles pulled so far in locale order
func (l *Localization) Bundles() []*Bundle {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*Bundle
	for _, result := range l.results {
		if result.Ready() {
			out = append(out, result.Bundle)
		}
	}
	return out
}

// FormatValueSync formats one message. When the message is missing everywhere
// the id is returned as the value together with the error.
func (l *Localization) FormatValueSync(id string, args map[string]any) (string, error) {
	values, err := l.FormatValuesSync([]L10nKey{{ID: id, Args: args}})
	return values[0], err
}

// FormatValuesSync formats keys positionally. The error aggregates one
// *MessageError per locale that lacked a message and per message that failed.
func (l *Localization) FormatValuesSync(keys []L10nKey) ([]string, error) {
	return l.formatValues(context.Background(), keys, false)
}

func (l *Localization) FormatValue(ctx context.Context, id string, args map[string]any) (string, error) {
	values, err := l.FormatValues(ctx, []L10nKey{{ID: id, Args: args}})
	if len(values) == 0 {
		return "", err
	}
	return values[0], err
}

func (l *Localization) FormatValues(ctx context.Context, keys []L10nKey) ([]string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return l.formatValues(ctx, keys, true)
}

func (l *Localization) formatValues(ctx context.Context, keys []L10nKey, async bool) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	values := make([]string, len(keys))
	done := make([]bool, len(keys))
	pending := len(keys)
	var merr *multierror.Error

	for idx := 0; pending > 0; idx++ {
		if idx == len(l.results) {
			ok, err := l.pull(ctx, async)
			if err != nil {
				return nil, err
			}
			if !ok {
				break
			}
		}

		result := l.results[idx]
		if !result.Ready() {
			continue
		}
		bundle := result.Bundle

		for i, key := range keys {
			if done[i] {
				continue
			}
			if !bundle.HasMessage(key.ID) {
				merr = multierror.Append(merr, &MessageError{
					Kind: MessageMissingInLocale, Key: key.ID, Locale: bundle.Locale(),
				})
				continue
			}
			value, err := bundle.FormatMessage(key.ID, key.Args)
			if err != nil {
				merr = multierror.Append(merr, err)
			}
			values[i] = value
			done[i] = true
			pending--
		}
	}

	for i, key := range keys {
		if done[i] {
			continue
		}
		values[i] = key.ID
		merr = multierror.Append(merr, &MessageError{Kind: MessageMissing, Key: key.ID})
		l.logger.Debug("l10n.message.missing", "id", key.ID, "locales", l.locales)
	}

	return values, merr.ErrorOrNil()
}

func (l *Localization) pull(ctx context.Context, async bool) (bool, error) {
	result, ok, err := l.cur.next(ctx, async)
	if err != nil || !ok {
		return false, err
	}
	l.results = append(l.results, result)
	return true, nil
}

func containsResource(ids []ResourceID, value string) bool {
	for _, id := range ids {
		if id.Value == value {
			return true
		}
	}
	return false
}

// MessageErrors unpacks the per message errors returned by format calls
func MessageErrors(err error) []*MessageError {
	if err == nil {
		return nil
	}
	var merr *multierror.Error
	if !errors.As(err, &merr) {
		var single *MessageError
		if errors.As(err, &single) {
			return []*MessageError{single}
		}
		return nil
	}
	out := make([]*MessageError, 0, len(merr.Errors))
	for _, e := range merr.Errors {
		var msgErr *MessageError
		if errors.As(e, &msgErr) {
			out = append(out, msgErr)
		}
	}
	return out
}
