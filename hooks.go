package l10n

// ResolutionHook observes each locale attempt of a generation
type ResolutionHook interface {
	BeforeLocale(ctx *ResolutionHookContext)
	AfterLocale(ctx *ResolutionHookContext)
}

type ResolutionHookContext struct {
	Locale    string
	Resources []ResourceID
	Async     bool
	// Bundle and Error are set before AfterLocale runs
	Bundle   *Bundle
	Error    error
	Metadata map[string]any
}

const (
	metadataMetasource = "metasource"
	metadataLoadErrors = "load_errors"
)

func (ctx *ResolutionHookContext) SetMetadata(key string, value any) {
	if ctx == nil || key == "" {
		return
	}
	if ctx.Metadata == nil {
		ctx.Metadata = make(map[string]any)
	}
	ctx.Metadata[key] = value
}

func (ctx *ResolutionHookContext) MetadataValue(key string) (any, bool) {
	if ctx == nil || ctx.Metadata == nil {
		return nil, false
	}
	val, ok := ctx.Metadata[key]
	return val, ok
}

// Ready reports whether the attempt produced a usable bundle
func (ctx *ResolutionHookContext) Ready() bool {
	return ctx != nil && ctx.Error == nil && ctx.Bundle != nil
}

// LoadErrors returns every load diagnostic of the attempt, fatal or not
func (ctx *ResolutionHookContext) LoadErrors() []*ResourceLoadError {
	value, ok := ctx.MetadataValue(metadataLoadErrors)
	if !ok {
		return nil
	}
	errs, _ := value.([]*ResourceLoadError)
	return errs
}

type ResolutionHookFuncs struct {
	Before func(ctx *ResolutionHookContext)
	After  func(ctx *ResolutionHookContext)
}

func (h ResolutionHookFuncs) BeforeLocale(ctx *ResolutionHookContext) {
	if h.Before != nil {
		h.Before(ctx)
	}
}

func (h ResolutionHookFuncs) AfterLocale(ctx *ResolutionHookContext) {
	if h.After != nil {
		h.After(ctx)
	}
}

func filterHooks(hooks []ResolutionHook) []ResolutionHook {
	if len(hooks) == 0 {
		return nil
	}
	filtered := make([]ResolutionHook, 0, len(hooks))
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		filtered = append(filtered, hook)
	}
	if len(filtered) == 0 {
		return nil
	}
	return filtered
}
