package l10n

import (
	"strings"

	"golang.org/x/text/language"
)

// normalizeLocale trims the identifier, swaps underscores for hyphens and
// applies BCP 47 casing ("EN_us" -> "en-US"). Tags x/text would rewrite beyond
// case (aliases, deprecated codes) keep their spelling.
func normalizeLocale(locale string) string {
	locale = strings.ReplaceAll(strings.TrimSpace(locale), "_", "-")
	if locale == "" {
		return ""
	}
	if tag, err := language.Parse(locale); err == nil {
		if canonical := tag.String(); strings.EqualFold(canonical, locale) {
			return canonical
		}
	}
	return locale
}

// dedupeLocales normalizes locales, dropping blanks and repeats while keeping
// preference order.
func dedupeLocales(locales []string) []string {
	if len(locales) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(locales))
	out := make([]string, 0, len(locales))
	for _, raw := range locales {
		locale := normalizeLocale(raw)
		if locale == "" {
			continue
		}
		if _, dup := seen[locale]; dup {
			continue
		}
		seen[locale] = struct{}{}
		out = append(out, locale)
	}
	return out
}

// localeTag parses locale, falling back to language.Make for identifiers
// x/text cannot fully validate.
func localeTag(locale string) language.Tag {
	if tag, err := language.Parse(locale); err == nil {
		return tag
	}
	return language.Make(locale)
}

// localeParentChain lists the ancestors of locale from nearest to root. CLDR
// parents are used when x/text understands the tag (es-MX -> es-419 -> es);
// otherwise trailing subtags are cut one by one.
func localeParentChain(locale string) []string {
	var chain []string
	seen := make(map[string]struct{}, 4)
	add := func(parent string) bool {
		if _, dup := seen[parent]; dup || parent == "" || parent == "und" {
			return false
		}
		seen[parent] = struct{}{}
		chain = append(chain, parent)
		return true
	}

	if tag, err := language.Parse(locale); err == nil {
		for parent := tag.Parent(); parent != language.Und; parent = parent.Parent() {
			if !add(parent.String()) {
				break
			}
		}
		return chain
	}

	for current := locale; ; {
		idx := strings.LastIndex(current, "-")
		if idx <= 0 {
			return chain
		}
		current = current[:idx]
		add(current)
	}
}
