package l10n

import (
	"context"
	"errors"
)

// BundleResult is the outcome for one attempted locale. Err is nil for a ready
// bundle; otherwise it is a *ResolutionError and Bundle is the partial bundle.
type BundleResult struct {
	Locale string
	Bundle *Bundle
	Err    error
}

func (r BundleResult) Ready() bool {
	return r.Err == nil && r.Bundle != nil
}

type sourceGroup struct {
	metasource string
	sources    []*FileSource
}

// generation is the frozen input of one generator
type generation struct {
	id     uint64
	ids    []ResourceID
	groups []sourceGroup
	cfg    *registryConfig
}

type groupOutcome struct {
	metasource string
	bundle     *Bundle
	errs       []*ResourceLoadError
	complete   bool
}

// resolve runs the fallback algorithm for one locale. A cancelled ctx yields
// a result the caller must discard.
func (g *generation) resolve(ctx context.Context, locale string, parallel bool) BundleResult {
	hookCtx := &ResolutionHookContext{
		Locale:    locale,
		Resources: cloneResourceIDs(g.ids),
		Async:     parallel,
	}
	for _, hook := range g.cfg.hooks {
		hook.BeforeLocale(hookCtx)
	}

	result := g.resolveGroups(ctx, locale, parallel, hookCtx)

	hookCtx.Bundle = result.Bundle
	hookCtx.Error = result.Err
	for _, hook := range g.cfg.hooks {
		hook.AfterLocale(hookCtx)
	}
	return BundleResult{Locale: locale, Bundle: hookCtx.Bundle, Err: hookCtx.Error}
}

func (g *generation) resolveGroups(ctx context.Context, locale string, parallel bool, hookCtx *ResolutionHookContext) BundleResult {
	logger := withFields(g.cfg.logger, map[string]any{"generation": g.id})
	memo := g.cfg.memoizers.Get(localeTag(locale))

	var (
		outcomes []groupOutcome
		all      []*ResourceLoadError
	)
	for _, group := range g.groups {
		sources := make([]*FileSource, 0, len(group.sources))
		for _, source := range group.sources {
			if source.HasLocale(locale) {
				sources = append(sources, source)
			}
		}
		if len(sources) == 0 {
			continue
		}

		outcome := g.solveGroup(ctx, locale, sources, memo, parallel)
		outcome.metasource = group.metasource
		all = append(all, outcome.errs...)
		if outcome.complete {
			hookCtx.SetMetadata(metadataMetasource, group.metasource)
			hookCtx.SetMetadata(metadataLoadErrors, all)
			logger.Debug("l10n.locale.ready",
				"locale", locale,
				"metasource", group.metasource,
				"sources", outcome.bundle.Sources())
			return BundleResult{Locale: locale, Bundle: outcome.bundle}
		}
		outcomes = append(outcomes, outcome)
	}

	if len(outcomes) == 0 {
		noSource := &ResourceLoadError{Kind: LoadNoSource, Locale: locale}
		all = append(all, noSource)
		hookCtx.SetMetadata(metadataLoadErrors, all)
		logger.Debug("l10n.locale.fallback", "locale", locale, "reason", LoadNoSource.String())

		builder := newBundleBuilder(locale, memo)
		for _, id := range g.ids {
			builder.addMissing(id)
		}
		builder.addDiagnostics(noSource)
		return BundleResult{
			Locale: locale,
			Bundle: builder.build(),
			Err:    &ResolutionError{Locale: locale, Errors: []*ResourceLoadError{noSource}},
		}
	}

	hookCtx.SetMetadata(metadataLoadErrors, all)
	resErr := &ResolutionError{Locale: locale, Errors: all}
	logger.Debug("l10n.locale.fallback",
		"locale", locale,
		"reason", LoadMissingRequired.String(),
		"missing", resErr.MissingRequired())
	return BundleResult{Locale: locale, Bundle: outcomes[0].bundle, Err: resErr}
}

// attempt keeps what one resource collected across the sources it probed
type attempt struct {
	source   string
	messages []Message
	errs     []*ResourceLoadError
}

func (g *generation) solveGroup(ctx context.Context, locale string, sources []*FileSource, memo *Memoizer, parallel bool) groupOutcome {
	attempts := make([]attempt, len(g.ids))

	probe := func(ctx context.Context, res, src int) bool {
		id := g.ids[res]
		source := sources[src]

		var (
			content string
			err     error
		)
		if parallel {
			content, err = source.FetchFile(ctx, locale, id)
		} else {
			content, err = source.FetchFileSync(locale, id)
		}
		if err != nil {
			var fetchErr *FetchError
			if errors.As(err, &fetchErr) && fetchErr.Kind == FetchNotFound {
				return false
			}
			if ctx.Err() != nil {
				return false
			}
			path := source.PathFor(locale, id)
			g.cfg.logger.Warn("l10n.fetch.io_error",
				"locale", locale,
				"source", source.Name(),
				"path", path,
				"error", err)
			attempts[res].errs = append(attempts[res].errs, &ResourceLoadError{
				Kind: LoadIO, Locale: locale, Resource: id, Source: source.Name(), Path: path, Err: err,
			})
			return false
		}

		path := source.PathFor(locale, id)
		messages, err := g.cfg.parser.Parse(locale, path, content)
		if err != nil {
			g.cfg.logger.Warn("l10n.parse.error",
				"locale", locale,
				"source", source.Name(),
				"path", path,
				"error", err)
			attempts[res].errs = append(attempts[res].errs, &ResourceLoadError{
				Kind: LoadParse, Locale: locale, Resource: id, Source: source.Name(), Path: path, Err: err,
			})
			return false
		}

		attempts[res].source = source.Name()
		attempts[res].messages = messages
		return true
	}

	stop := func(res int) bool {
		return !g.ids[res].IsOptional()
	}

	var sol solution
	if parallel {
		sol = solveParallel(ctx, len(g.ids), len(sources), g.cfg.concurrency, probe, stop)
	} else {
		sol = solveSerial(ctx, len(g.ids), len(sources), probe, stop)
	}

	builder := newBundleBuilder(locale, memo)
	var errs []*ResourceLoadError
	for res, pick := range sol.picks {
		id := g.ids[res]
		if pick == pickSkipped {
			continue
		}
		errs = append(errs, attempts[res].errs...)
		if pick >= 0 {
			builder.addResource(id, attempts[res].source, attempts[res].messages)
			continue
		}

		kind := LoadMissingOptional
		if !id.IsOptional() {
			kind = LoadMissingRequired
		}
		errs = append(errs, &ResourceLoadError{Kind: kind, Locale: locale, Resource: id})
		builder.addMissing(id)
	}
	builder.addDiagnostics(errs...)

	return groupOutcome{
		bundle:   builder.build(),
		errs:     errs,
		complete: sol.stoppedAt < 0,
	}
}

// prefetch warms the fetch caches for every resource of locale
func (g *generation) prefetch(ctx context.Context, locale string, parallel bool) {
	for _, group := range g.groups {
		for _, source := range group.sources {
			if !source.HasLocale(locale) {
				continue
			}
			for _, id := range g.ids {
				if ctx.Err() != nil {
					return
				}
				if parallel {
					_, _ = source.FetchFile(ctx, locale, id)
				} else {
					_, _ = source.FetchFileSync(locale, id)
				}
			}
		}
	}
}

// cursor is the position shared by the iterator and the stream
type cursor struct {
	gen     *generation
	locales []string
	pos     int
}

func (c *cursor) done() bool {
	return c.pos >= len(c.locales)
}

// next resolves the locale at the current position. On ctx cancellation the
// position is kept so the locale can be attempted again.
func (c *cursor) next(ctx context.Context, parallel bool) (BundleResult, bool, error) {
	if c.done() {
		return BundleResult{}, false, nil
	}
	if err := ctx.Err(); err != nil {
		return BundleResult{}, false, err
	}

	result := c.gen.resolve(ctx, c.locales[c.pos], parallel)
	if err := ctx.Err(); err != nil {
		return BundleResult{}, false, err
	}
	c.pos++
	return result, true, nil
}

// remaining lists the locales not yet attempted
func (c *cursor) remaining() []string {
	if c.done() {
		return nil
	}
	return append([]string(nil), c.locales[c.pos:]...)
}
