// Package l10ntest holds the fixed resolution scenarios used to check the
// fallback engine, plus presence matrices for the source solver.
package l10ntest

import (
	l10n "github.com/goliatone/go-l10n"
)

// SourceDef describes an in-memory file source. Files are keyed by the full
// locale substituted path.
type SourceDef struct {
	Name       string
	Metasource string
	PathScheme string
	Locales    []string
	Files      map[string]string
}

// Expectation is the outcome expected for one attempted locale
type Expectation struct {
	Locale string
	Ready  bool
	// Missing lists resources the bundle is expected to lack
	Missing []string
}

// Request resolves IDs against the scenario locales
type Request struct {
	IDs    []l10n.ResourceID
	Expect []Expectation
	// Values maps message ids to the string Localization must produce
	Values map[string]string
	// MissingMessages are ids no ready bundle defines
	MissingMessages []string
}

type Scenario struct {
	Name     string
	Locales  []string
	Sources  []SourceDef
	Requests []Request
}

// Registry builds a registry with one MapFetcher backed source per SourceDef
func (s Scenario) Registry(opts ...l10n.RegistryOption) (*l10n.Registry, error) {
	registry, err := l10n.NewRegistry(opts...)
	if err != nil {
		return nil, err
	}
	for _, def := range s.Sources {
		source, err := l10n.NewFileSource(def.Name, def.Metasource, def.Locales, def.PathScheme, l10n.NewMapFetcher(def.Files))
		if err != nil {
			return nil, err
		}
		if err := registry.RegisterSources(source); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

const (
	sanitizeFTL = "browser/sanitize.ftl"
	historyFTL  = "toolkit/updates/history.ftl"
	missingFTL  = "missing/resource.ftl"
	emptyFTL    = "empty/placeholder.ftl"
)

func browserSource() SourceDef {
	return SourceDef{
		Name:       "browser",
		PathScheme: "browser/{locale}/",
		Locales:    []string{"en-US", "pl"},
		Files: map[string]string{
			"browser/en-US/browser/sanitize.ftl": "history-section-label = History\nclear-data-button = Clear { $count } items\n",
			"browser/pl/browser/sanitize.ftl":    "history-section-label = Historia\nclear-data-button = Wyczyść { $count } elementów\n",
		},
	}
}

// toolkitSource lacks the history resource for en-US
func toolkitSource() SourceDef {
	return SourceDef{
		Name:       "toolkit",
		PathScheme: "toolkit/{locale}/",
		Locales:    []string{"en-US", "pl"},
		Files: map[string]string{
			"toolkit/pl/toolkit/updates/history.ftl": "update-history-missing = zaginiony\n",
		},
	}
}

// emptySource claims both locales but only ships the pl file
func emptySource() SourceDef {
	return SourceDef{
		Name:       "empty",
		PathScheme: "empty/{locale}/",
		Locales:    []string{"en-US", "pl"},
		Files: map[string]string{
			"empty/pl/empty/placeholder.ftl": "placeholder-label = Pusty\n",
		},
	}
}

// Scenarios returns a fresh copy of the scenario table
func Scenarios() []Scenario {
	locales := []string{"en-US", "pl"}

	return []Scenario{
		{
			Name:    "simple",
			Locales: locales,
			Sources: []SourceDef{browserSource()},
			Requests: []Request{{
				IDs: []l10n.ResourceID{l10n.Required(sanitizeFTL)},
				Expect: []Expectation{
					{Locale: "en-US", Ready: true},
					{Locale: "pl", Ready: true},
				},
				Values: map[string]string{"history-section-label": "History"},
			}},
		},
		{
			Name:    "empty_resource_one_locale",
			Locales: locales,
			Sources: []SourceDef{browserSource(), emptySource()},
			Requests: []Request{
				{
					IDs: []l10n.ResourceID{l10n.Required(sanitizeFTL), l10n.Optional(emptyFTL)},
					Expect: []Expectation{
						{Locale: "en-US", Ready: true, Missing: []string{emptyFTL}},
						{Locale: "pl", Ready: true},
					},
					Values: map[string]string{
						"history-section-label": "History",
						"placeholder-label":     "Pusty",
					},
				},
				{
					IDs: []l10n.ResourceID{l10n.Required(sanitizeFTL), l10n.Required(emptyFTL)},
					Expect: []Expectation{
						{Locale: "en-US", Ready: false, Missing: []string{emptyFTL}},
						{Locale: "pl", Ready: true},
					},
					Values: map[string]string{
						"history-section-label": "Historia",
						"placeholder-label":     "Pusty",
					},
				},
			},
		},
		{
			Name:    "missing_required_one_locale",
			Locales: locales,
			Sources: []SourceDef{browserSource(), toolkitSource()},
			Requests: []Request{{
				IDs: []l10n.ResourceID{l10n.Required(sanitizeFTL), l10n.Required(historyFTL)},
				Expect: []Expectation{
					{Locale: "en-US", Ready: false, Missing: []string{historyFTL}},
					{Locale: "pl", Ready: true},
				},
				Values: map[string]string{
					"history-section-label":  "Historia",
					"update-history-missing": "zaginiony",
				},
			}},
		},
		{
			Name:    "missing_optional_one_locale",
			Locales: locales,
			Sources: []SourceDef{browserSource(), toolkitSource()},
			Requests: []Request{{
				IDs: []l10n.ResourceID{l10n.Required(sanitizeFTL), l10n.Optional(historyFTL)},
				Expect: []Expectation{
					{Locale: "en-US", Ready: true, Missing: []string{historyFTL}},
					{Locale: "pl", Ready: true},
				},
				Values: map[string]string{
					"history-section-label":  "History",
					"update-history-missing": "zaginiony",
				},
			}},
		},
		{
			Name:    "missing_required_all_locales",
			Locales: locales,
			Sources: []SourceDef{browserSource()},
			Requests: []Request{{
				IDs: []l10n.ResourceID{l10n.Required(sanitizeFTL), l10n.Required(missingFTL)},
				Expect: []Expectation{
					{Locale: "en-US", Ready: false, Missing: []string{missingFTL}},
					{Locale: "pl", Ready: false, Missing: []string{missingFTL}},
				},
				MissingMessages: []string{"history-section-label"},
			}},
		},
		{
			Name:    "empty_resource_all_locales",
			Locales: locales,
			Sources: []SourceDef{browserSource()},
			Requests: []Request{{
				IDs: []l10n.ResourceID{l10n.Required(sanitizeFTL), l10n.Optional(missingFTL)},
				Expect: []Expectation{
					{Locale: "en-US", Ready: true, Missing: []string{missingFTL}},
					{Locale: "pl", Ready: true, Missing: []string{missingFTL}},
				},
				Values: map[string]string{"history-section-label": "History"},
			}},
		},
	}
}
