package l10n

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Manifest declares the file sources of a registry and the default locales
// to request. It is read from YAML or TOML:
//
//	default_locale: en-US
//	locales: [en-US, pl]
//	sources:
//	  - name: browser
//	    path_scheme: "browser/{locale}/"
//	    locales: [en-US, pl]
type Manifest struct {
	DefaultLocale string             `yaml:"default_locale" toml:"default_locale"`
	Locales       []string           `yaml:"locales" toml:"locales"`
	Sources       []SourceDefinition `yaml:"sources" toml:"sources"`
}

type SourceDefinition struct {
	Name       string   `yaml:"name" toml:"name"`
	Metasource string   `yaml:"metasource" toml:"metasource"`
	Locales    []string `yaml:"locales" toml:"locales"`
	PathScheme string   `yaml:"path_scheme" toml:"path_scheme"`
	Index      []string `yaml:"index" toml:"index"`
}

// LoadManifest reads a manifest file; the format follows the extension
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("l10n: read manifest: %w", err)
	}
	return ParseManifest(path, data)
}

// ParseManifest decodes data using the extension of path (.yaml, .yml or .toml)
// and validates the result. Unknown keys are rejected.
func ParseManifest(path string, data []byte) (*Manifest, error) {
	manifest := &Manifest{}

	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")); ext {
	case "yaml", "yml":
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(manifest); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("l10n: decode manifest %s: %w", path, err)
		}
	case "toml":
		meta, err := toml.Decode(string(data), manifest)
		if err != nil {
			return nil, fmt.Errorf("l10n: decode manifest %s: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, validationError(codeInvalidManifest,
				fmt.Sprintf("l10n: manifest %s has unknown keys %v", path, undecoded))
		}
	default:
		return nil, validationError(codeInvalidManifest,
			fmt.Sprintf("l10n: unsupported manifest format %q", ext))
	}

	if err := manifest.Validate(); err != nil {
		return nil, err
	}
	return manifest, nil
}

func (m *Manifest) Validate() error {
	if len(m.Sources) == 0 {
		return validationError(codeInvalidManifest, "l10n: manifest declares no sources")
	}
	seen := make(map[string]struct{}, len(m.Sources))
	for i, def := range m.Sources {
		name := strings.TrimSpace(def.Name)
		if name == "" {
			return validationError(codeInvalidManifest, fmt.Sprintf("l10n: manifest source %d has no name", i))
		}
		if _, dup := seen[name]; dup {
			return validationError(codeInvalidManifest, fmt.Sprintf("l10n: manifest source %q declared twice", name))
		}
		seen[name] = struct{}{}
		if !strings.Contains(def.PathScheme, localePlaceholder) {
			return validationError(codeInvalidManifest,
				fmt.Sprintf("l10n: manifest source %q path_scheme must contain %s", name, localePlaceholder))
		}
		if len(def.Locales) == 0 {
			return validationError(codeInvalidManifest, fmt.Sprintf("l10n: manifest source %q lists no locales", name))
		}
	}
	return nil
}

// RequestedLocales returns Locales, or the default locale alone when empty
func (m *Manifest) RequestedLocales() []string {
	if len(m.Locales) > 0 {
		return dedupeLocales(m.Locales)
	}
	if m.DefaultLocale != "" {
		return []string{normalizeLocale(m.DefaultLocale)}
	}
	return nil
}

// BuildRegistry creates a registry with one file source per definition, in
// declaration order. fetcherFor supplies the fetcher of each source.
func (m *Manifest) BuildRegistry(fetcherFor func(SourceDefinition) FileFetcher, opts ...RegistryOption) (*Registry, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	sources := make([]*FileSource, 0, len(m.Sources))
	for _, def := range m.Sources {
		var sourceOpts []FileSourceOption
		if len(def.Index) > 0 {
			sourceOpts = append(sourceOpts, WithIndex(def.Index...))
		}
		source, err := NewFileSource(def.Name, def.Metasource, def.Locales, def.PathScheme, fetcherFor(def), sourceOpts...)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}

	registry, err := NewRegistry(opts...)
	if err != nil {
		return nil, err
	}
	if err := registry.RegisterSources(sources...); err != nil {
		return nil, err
	}
	return registry, nil
}
