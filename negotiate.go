package l10n

import (
	"strings"

	"golang.org/x/text/language"
)

// NegotiateLocales filters available by the requested preference list.
// For each requested locale it takes an exact match, then the available
// locales on its parent chain (en-GB -> en), then any available locale of the
// same base language. defaultLocale is appended when not already selected.
func NegotiateLocales(requested, available []string, defaultLocale string) []string {
	avail := dedupeLocales(available)
	byLower := make(map[string]string, len(avail))
	for _, locale := range avail {
		byLower[strings.ToLower(locale)] = locale
	}

	var out []string
	picked := make(map[string]struct{}, len(avail))
	take := func(locale string) {
		if _, ok := picked[locale]; ok {
			return
		}
		picked[locale] = struct{}{}
		out = append(out, locale)
	}

	for _, req := range dedupeLocales(requested) {
		if match, ok := byLower[strings.ToLower(req)]; ok {
			take(match)
		}

		for _, parent := range localeParentChain(req) {
			if match, ok := byLower[strings.ToLower(parent)]; ok {
				take(match)
			}
		}

		base, conf := localeTag(req).Base()
		if conf == language.No {
			continue
		}
		for _, locale := range avail {
			if candidate, c := localeTag(locale).Base(); c != language.No && candidate == base {
				take(locale)
			}
		}
	}

	if def := normalizeLocale(defaultLocale); def != "" {
		if match, ok := byLower[strings.ToLower(def)]; ok {
			take(match)
		} else {
			take(def)
		}
	}

	return out
}
