package l10n

import "strings"

// ResourceType tags a resource request as required or optional
type ResourceType uint8

const (
	// ResourceRequired resources force a locale fallback when absent
	ResourceRequired ResourceType = iota
	// ResourceOptional resources are attached when found and skipped otherwise
	ResourceOptional
)

func (t ResourceType) String() string {
	switch t {
	case ResourceOptional:
		return "optional"
	default:
		return "required"
	}
}

// ResourceID identifies one localization resource relative to a source path scheme
type ResourceID struct {
	Value string
	Type  ResourceType
}

// Required builds a required resource identifier
func Required(value string) ResourceID {
	return ResourceID{Value: value, Type: ResourceRequired}
}

// Optional builds an optional resource identifier
func Optional(value string) ResourceID {
	return ResourceID{Value: value, Type: ResourceOptional}
}

// ResourceIDs converts plain values into required identifiers
func ResourceIDs(values ...string) []ResourceID {
	if len(values) == 0 {
		return nil
	}
	out := make([]ResourceID, 0, len(values))
	for _, value := range values {
		out = append(out, Required(value))
	}
	return out
}

func (id ResourceID) IsOptional() bool {
	return id.Type == ResourceOptional
}

func (id ResourceID) String() string {
	if id.IsOptional() {
		return id.Value + "?"
	}
	return id.Value
}

// ParseResourceID reads the CLI/manifest notation where a trailing "?" marks
// the resource optional.
func ParseResourceID(raw string) ResourceID {
	value := strings.TrimSpace(raw)
	if trimmed, ok := strings.CutSuffix(value, "?"); ok {
		return Optional(trimmed)
	}
	return Required(value)
}

func cloneResourceIDs(ids []ResourceID) []ResourceID {
	if len(ids) == 0 {
		return nil
	}
	out := make([]ResourceID, len(ids))
	copy(out, ids)
	return out
}

type PluralCategory string

const (
	PluralZero  PluralCategory = "zero"
	PluralOne   PluralCategory = "one"
	PluralTwo   PluralCategory = "two"
	PluralFew   PluralCategory = "few"
	PluralMany  PluralCategory = "many"
	PluralOther PluralCategory = "other"
)

type MessageMetadata struct {
	ID          string
	Domain      string
	Locale      string
	Resource    string
	Description string
}

type MessageVariant struct {
	Template   string
	FormatArgs []string
	UsesCount  bool
	Source     string
	Checksum   string
}

// Message is a parsed localization unit with one variant per plural category
type Message struct {
	MessageMetadata
	Variants map[PluralCategory]MessageVariant
}

func (m Message) Variant(category PluralCategory) (MessageVariant, bool) {
	if m.Variants == nil {
		return MessageVariant{}, false
	}

	if variant, ok := m.Variants[category]; ok {
		return variant, true
	}

	variant, ok := m.Variants[PluralOther]
	return variant, ok
}

func (m *Message) SetVariant(category PluralCategory, variant MessageVariant) {
	if m.Variants == nil {
		m.Variants = make(map[PluralCategory]MessageVariant)
	}
	m.Variants[category] = variant
}

func (m Message) Content() string {
	if variant, ok := m.Variant(PluralOther); ok {
		return variant.Template
	}
	return ""
}

func (m Message) IsPlural() bool {
	return len(m.Variants) > 1
}

func (m Message) Clone() Message {
	out := Message{MessageMetadata: m.MessageMetadata}
	if len(m.Variants) == 0 {
		return out
	}

	out.Variants = make(map[PluralCategory]MessageVariant, len(m.Variants))
	for category, variant := range m.Variants {
		out.Variants[category] = variant.clone()
	}
	return out
}

func (v MessageVariant) clone() MessageVariant {
	copy := v
	if len(v.FormatArgs) > 0 {
		copy.FormatArgs = append([]string(nil), v.FormatArgs...)
	}
	return copy
}
