package l10n

import (
	"fmt"
	"strings"
)

// HelperConfig tunes TemplateHelpers
type HelperConfig struct {
	// TemplateHelperKey names the translate helper; defaults to "translate"
	TemplateHelperKey string
	// OnMissing renders a message no ready bundle defines. The id is used when nil.
	OnMissing func(id string, err error) string
}

// TemplateHelpers exposes a Localization to text/template and html/template.
//
//	{{ translate "welcome" "name" .User }}
//	{{ plural "items" .Count }}
//	{{ current_locale }}
func TemplateHelpers(l *Localization, cfg HelperConfig) map[string]any {
	key := strings.TrimSpace(cfg.TemplateHelperKey)
	if key == "" {
		key = "translate"
	}

	format := func(id string, args map[string]any) string {
		if l == nil {
			return id
		}
		value, err := l.FormatValueSync(id, args)
		if err == nil {
			return value
		}
		for _, msgErr := range MessageErrors(err) {
			if msgErr.Kind == MessageMissing && cfg.OnMissing != nil {
				return cfg.OnMissing(id, msgErr)
			}
		}
		return value
	}

	return map[string]any{
		key: func(id string, pairs ...any) string {
			return format(id, pairsToArgs(pairs))
		},
		"plural": func(id string, count int, pairs ...any) string {
			args := pairsToArgs(pairs)
			if args == nil {
				args = make(map[string]any, 1)
			}
			args["count"] = count
			return format(id, args)
		},
		"current_locale": func() string {
			if l == nil {
				return ""
			}
			for _, bundle := range l.Bundles() {
				return bundle.Locale()
			}
			if locales := l.Locales(); len(locales) > 0 {
				return locales[0]
			}
			return ""
		},
	}
}

// pairsToArgs turns "name", value, ... into an argument map; a trailing key
// without value is dropped.
func pairsToArgs(pairs []any) map[string]any {
	if len(pairs) < 2 {
		return nil
	}
	args := make(map[string]any, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		args[fmt.Sprint(pairs[i])] = pairs[i+1]
	}
	return args
}
