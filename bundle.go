package l10n

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/message"
)

// Bundle is the resolved, read only message set for one locale. It owns its
// parsed messages and borrows the language memoizer.
type Bundle struct {
	locale      string
	resources   []ResourceID
	sources     []string
	missing     []ResourceID
	diagnostics []*ResourceLoadError
	messages    map[string]Message
	ids         []string
	origins     map[string]string
	memo        *Memoizer
}

// bundleBuilder accumulates resources while a locale is resolved; it is never
// exposed, so bundles stay immutable once built.
type bundleBuilder struct {
	bundle *Bundle
	seen   map[string]struct{}
}

func newBundleBuilder(locale string, memo *Memoizer) *bundleBuilder {
	if memo == nil {
		memo = NewConcurrentMemoizer(localeTag(locale))
	}
	return &bundleBuilder{
		bundle: &Bundle{
			locale:   locale,
			messages: make(map[string]Message),
			origins:  make(map[string]string),
			memo:     memo,
		},
		seen: make(map[string]struct{}),
	}
}

// addResource attaches parsed messages; the first resource defining an id wins
func (b *bundleBuilder) addResource(id ResourceID, source string, messages []Message) {
	b.bundle.resources = append(b.bundle.resources, id)
	b.bundle.origins[id.Value] = source
	if _, ok := b.seen[source]; !ok && source != "" {
		b.seen[source] = struct{}{}
		b.bundle.sources = append(b.bundle.sources, source)
	}
	for _, msg := range messages {
		if _, exists := b.bundle.messages[msg.ID]; exists {
			continue
		}
		b.bundle.messages[msg.ID] = msg
		b.bundle.ids = append(b.bundle.ids, msg.ID)
	}
}

func (b *bundleBuilder) addMissing(id ResourceID) {
	b.bundle.missing = append(b.bundle.missing, id)
}

func (b *bundleBuilder) addDiagnostics(errs ...*ResourceLoadError) {
	b.bundle.diagnostics = append(b.bundle.diagnostics, errs...)
}

func (b *bundleBuilder) build() *Bundle {
	sort.Strings(b.bundle.ids)
	return b.bundle
}

func (b *Bundle) Locale() string {
	if b == nil {
		return ""
	}
	return b.locale
}

// Memoizer returns the language cache shared with other bundles of the same language
func (b *Bundle) Memoizer() *Memoizer {
	if b == nil {
		return nil
	}
	return b.memo
}

func (b *Bundle) HasMessage(id string) bool {
	if b == nil {
		return false
	}
	_, ok := b.messages[id]
	return ok
}

func (b *Bundle) Message(id string) (Message, bool) {
	if b == nil {
		return Message{}, false
	}
	msg, ok := b.messages[id]
	if !ok {
		return Message{}, false
	}
	return msg.Clone(), true
}

// MessageIDs returns the sorted ids defined by the bundle
func (b *Bundle) MessageIDs() []string {
	if b == nil || len(b.ids) == 0 {
		return nil
	}
	return append([]string(nil), b.ids...)
}

// Resources lists the resources attached to the bundle in request order
func (b *Bundle) Resources() []ResourceID {
	if b == nil {
		return nil
	}
	return cloneResourceIDs(b.resources)
}

// Sources lists the file source names the bundle drew from
func (b *Bundle) Sources() []string {
	if b == nil || len(b.sources) == 0 {
		return nil
	}
	return append([]string(nil), b.sources...)
}

// ResourceSource names the file source a resource was taken from
func (b *Bundle) ResourceSource(value string) (string, bool) {
	if b == nil {
		return "", false
	}
	source, ok := b.origins[value]
	return source, ok
}

// Missing lists requested resources absent from the bundle
func (b *Bundle) Missing() []ResourceID {
	if b == nil {
		return nil
	}
	return cloneResourceIDs(b.missing)
}

// Diagnostics returns non fatal load errors recorded while building the bundle
func (b *Bundle) Diagnostics() []*ResourceLoadError {
	if b == nil || len(b.diagnostics) == 0 {
		return nil
	}
	return append([]*ResourceLoadError(nil), b.diagnostics...)
}

// FormatMessage renders the message with {name} placeholders replaced by args.
// A "count" argument selects the plural variant.
func (b *Bundle) FormatMessage(id string, args map[string]any) (string, error) {
	if b == nil {
		return "", &MessageError{Kind: MessageMissing, Key: id}
	}
	msg, ok := b.messages[id]
	if !ok {
		return "", &MessageError{Kind: MessageMissing, Key: id, Locale: b.locale}
	}

	category := PluralOther
	if raw, ok := args["count"]; ok && msg.IsPlural() {
		count, ok := toInt(raw)
		if !ok {
			return "", &MessageError{Kind: MessageFormat, Key: id, Locale: b.locale,
				Err: fmt.Errorf("count must be an integer, got %T", raw)}
		}
		selected, err := b.PluralCategory(count)
		if err != nil {
			return "", &MessageError{Kind: MessageFormat, Key: id, Locale: b.locale, Err: err}
		}
		category = selected
	}

	variant, ok := msg.Variant(category)
	if !ok {
		return "", &MessageError{Kind: MessageFormat, Key: id, Locale: b.locale,
			Err: fmt.Errorf("no %s variant", category)}
	}

	out, err := b.render(variant.Template, args)
	if err != nil {
		return "", &MessageError{Kind: MessageFormat, Key: id, Locale: b.locale, Err: err}
	}
	return out, nil
}

// FormatPlural is FormatMessage with count set
func (b *Bundle) FormatPlural(id string, count int, args map[string]any) (string, error) {
	merged := make(map[string]any, len(args)+1)
	for key, value := range args {
		merged[key] = value
	}
	merged["count"] = count
	return b.FormatMessage(id, merged)
}

// PluralCategory selects the CLDR cardinal category of n for the bundle language
func (b *Bundle) PluralCategory(n int) (PluralCategory, error) {
	return WithTryGet(b.memo, "cardinal", newPluralRules, func(rules pluralRules) PluralCategory {
		return rules.category(n)
	})
}

func (b *Bundle) render(template string, args map[string]any) (string, error) {
	if !strings.Contains(template, "{") {
		return template, nil
	}

	var firstErr error
	out := placeholderPattern.ReplaceAllStringFunc(template, func(token string) string {
		name := token[1 : len(token)-1]
		value, ok := args[name]
		if !ok {
			return token
		}
		text, err := b.formatArg(value)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return text
	})
	return out, firstErr
}

func (b *Bundle) formatArg(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return WithTryGet(b.memo, "", newNumberPrinter, func(p *message.Printer) string {
			return p.Sprintf("%v", v)
		})
	case fmt.Stringer:
		return v.String(), nil
	default:
		return fmt.Sprint(v), nil
	}
}

func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int8:
		return int(v), true
	case int16:
		return int(v), true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case uint:
		return int(v), true
	case uint8:
		return int(v), true
	case uint16:
		return int(v), true
	case uint32:
		return int(v), true
	case uint64:
		return int(v), true
	case float64:
		if v == float64(int(v)) {
			return int(v), true
		}
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n, true
		}
	}
	return 0, false
}
