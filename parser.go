package l10n

import (
	"bufio"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"gopkg.in/yaml.v3"
)

var (
	placeholderPattern     = regexp.MustCompile(`\{([a-zA-Z0-9_-]+)\}`)
	fluentPlaceablePattern = regexp.MustCompile(`\{\s*\$([a-zA-Z0-9_-]+)\s*\}`)
	fluentMessageIDPattern = regexp.MustCompile(`^(-?[a-zA-Z][a-zA-Z0-9_-]*)\s*=\s?(.*)$`)
	fluentAttributePattern = regexp.MustCompile(`^\.([a-zA-Z][a-zA-Z0-9_-]*)\s*=\s?(.*)$`)
)

// BundleParser turns fetched resource content into messages
type BundleParser interface {
	Parse(locale, path, content string) ([]Message, error)
}

// BundleParserFunc adapts a bare function to BundleParser
type BundleParserFunc func(locale, path, content string) ([]Message, error)

func (fn BundleParserFunc) Parse(locale, path, content string) ([]Message, error) {
	return fn(locale, path, content)
}

// MessageFileParser decodes message files through go-i18n. The format is picked
// from the path extension; json, yaml, yml, toml and ftl are registered.
type MessageFileParser struct {
	unmarshalers map[string]i18n.UnmarshalFunc
}

var _ BundleParser = &MessageFileParser{}

func NewMessageFileParser() *MessageFileParser {
	return &MessageFileParser{
		unmarshalers: map[string]i18n.UnmarshalFunc{
			"json": json.Unmarshal,
			"yaml": yaml.Unmarshal,
			"yml":  yaml.Unmarshal,
			"toml": toml.Unmarshal,
			"ftl":  unmarshalFTL,
		},
	}
}

// RegisterUnmarshalFunc adds or replaces the decoder for a file extension
func (p *MessageFileParser) RegisterUnmarshalFunc(format string, fn i18n.UnmarshalFunc) {
	if format == "" || fn == nil {
		return
	}
	p.unmarshalers[strings.ToLower(format)] = fn
}

func (p *MessageFileParser) Parse(locale, path, content string) ([]Message, error) {
	file, err := i18n.ParseMessageFileBytes([]byte(content), strings.ToLower(path), p.unmarshalers)
	if err != nil {
		return nil, err
	}

	messages := make([]Message, 0, len(file.Messages))
	for _, raw := range file.Messages {
		if raw == nil {
			continue
		}
		if raw.ID == "" {
			return nil, errors.New("message without id: reserved keys such as \"other\" at the top level")
		}
		message, err := buildMessage(locale, path, raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", raw.ID, err)
		}
		messages = append(messages, message)
	}

	// go-i18n walks maps in random order
	slices.SortFunc(messages, func(a, b Message) int {
		return strings.Compare(a.ID, b.ID)
	})
	return messages, nil
}

// pluralForms maps go-i18n message fields onto plural categories
var pluralForms = []struct {
	category PluralCategory
	template func(*i18n.Message) string
}{
	{PluralZero, func(m *i18n.Message) string { return m.Zero }},
	{PluralOne, func(m *i18n.Message) string { return m.One }},
	{PluralTwo, func(m *i18n.Message) string { return m.Two }},
	{PluralFew, func(m *i18n.Message) string { return m.Few }},
	{PluralMany, func(m *i18n.Message) string { return m.Many }},
	{PluralOther, func(m *i18n.Message) string { return m.Other }},
}

func buildMessage(locale, resource string, raw *i18n.Message) (Message, error) {
	msg := Message{
		MessageMetadata: MessageMetadata{
			ID:          raw.ID,
			Domain:      messageDomain(raw.ID),
			Locale:      locale,
			Resource:    resource,
			Description: raw.Description,
		},
		Variants: make(map[PluralCategory]MessageVariant, 1),
	}
	for _, form := range pluralForms {
		if template := form.template(raw); template != "" {
			msg.SetVariant(form.category, newVariant(template, resource))
		}
	}

	if _, ok := msg.Variants[PluralOther]; ok {
		return msg, nil
	}
	switch len(msg.Variants) {
	case 0:
		// an empty translation renders blank
		msg.SetVariant(PluralOther, newVariant("", resource))
	case 1:
		for category, variant := range msg.Variants {
			delete(msg.Variants, category)
			msg.Variants[PluralOther] = variant
		}
	default:
		return Message{}, fmt.Errorf("plural message has no %q form", PluralOther)
	}
	return msg, nil
}

func newVariant(template, resource string) MessageVariant {
	sum := sha1.Sum([]byte(template))
	return MessageVariant{
		Template:   template,
		FormatArgs: placeholderNames(template),
		UsesCount:  strings.Contains(template, "{count}"),
		Source:     resource,
		Checksum:   hex.EncodeToString(sum[:]),
	}
}

// placeholderNames lists the distinct {name} placeholders of template, sorted,
// leaving out count.
func placeholderNames(template string) []string {
	var names []string
	for _, match := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		name := match[1]
		if strings.EqualFold(name, "count") || slices.Contains(names, name) {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// messageDomain is the id prefix before the first "." or "-"
func messageDomain(id string) string {
	if idx := strings.IndexAny(id, ".-"); idx > 0 {
		return id[:idx]
	}
	return "default"
}

// unmarshalFTL decodes the flat subset of Fluent used by resource files:
//
//	# comment
//	id = value with { $arg }
//	multi =
//	    continued line
//	    .attribute = value
//
// Attributes become "id.attribute" entries. Selectors and terms references are
// kept verbatim.
func unmarshalFTL(data []byte, v any) error {
	entries := map[string]any{}

	var (
		current   string
		attribute string
		lines     []string
	)

	flush := func() {
		if current == "" {
			return
		}
		key := current
		if attribute != "" {
			key = current + "." + attribute
		}
		// wrapped so ids like "description" or "other" stay message ids
		entries[key] = map[string]any{
			"other": fluentPlaceablePattern.ReplaceAllString(strings.Join(lines, "\n"), "{$1}"),
		}
		lines = nil
		attribute = ""
	}

	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			continue
		case strings.HasPrefix(line, "#"):
			flush()
			current = ""
			continue
		case line[0] == ' ' || line[0] == '\t':
			if current == "" {
				return fmt.Errorf("ftl: line %d: indented text outside of a message", lineNo)
			}
			if match := fluentAttributePattern.FindStringSubmatch(trimmed); match != nil {
				if attribute != "" || len(lines) > 0 {
					flush()
				}
				attribute = match[1]
				if match[2] != "" {
					lines = append(lines, match[2])
				}
				continue
			}
			lines = append(lines, trimmed)
			continue
		}

		match := fluentMessageIDPattern.FindStringSubmatch(line)
		if match == nil {
			return fmt.Errorf("ftl: line %d: expected \"id = value\"", lineNo)
		}
		flush()
		current = match[1]
		if value := strings.TrimSpace(match[2]); value != "" {
			lines = append(lines, value)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	flush()

	target, ok := v.(*any)
	if !ok {
		return fmt.Errorf("ftl: unsupported target %T", v)
	}
	*target = entries
	return nil
}
