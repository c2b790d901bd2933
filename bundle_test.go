package l10n

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func buildTestBundle(t *testing.T, locale, path, content string) *Bundle {
	t.Helper()
	messages, err := NewMessageFileParser().Parse(locale, path, content)
	if err != nil {
		t.Fatalf("Parse(%s): %v", path, err)
	}
	builder := newBundleBuilder(locale, NewMemoizer(localeTag(locale)))
	builder.addResource(Required(path), "test", messages)
	return builder.build()
}

func TestBundleFormatMessage(t *testing.T) {
	bundle := buildTestBundle(t, "en-US", "app/en-US/main.ftl", `
welcome = Welcome, { $name }!
plain = Nothing to replace
partial = Hello { $name }, you have { $unread } messages
`)

	tests := []struct {
		name string
		id   string
		args map[string]any
		want string
	}{
		{name: "placeholder", id: "welcome", args: map[string]any{"name": "Ana"}, want: "Welcome, Ana!"},
		{name: "no placeholders", id: "plain", want: "Nothing to replace"},
		{name: "unknown args kept", id: "partial", args: map[string]any{"name": "Ana"}, want: "Hello Ana, you have {unread} messages"},
		{name: "numeric arg", id: "partial", args: map[string]any{"name": "Ana", "unread": 3}, want: "Hello Ana, you have 3 messages"},
	}

	for _, tc := range tests {
		got, err := bundle.FormatMessage(tc.id, tc.args)
		if err != nil {
			t.Fatalf("%s: FormatMessage: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: got %q want %q", tc.name, got, tc.want)
		}
	}

	_, err := bundle.FormatMessage("absent", nil)
	var msgErr *MessageError
	if !errors.As(err, &msgErr) || msgErr.Kind != MessageMissing || msgErr.Locale != "en-US" {
		t.Fatalf("expected missing message error, got %v", err)
	}
	if !errors.Is(err, ErrMissingMessage) {
		t.Fatalf("expected ErrMissingMessage, got %v", err)
	}
}

func TestBundlePlural(t *testing.T) {
	polish := buildTestBundle(t, "pl", "app/pl/items.yaml", `
items:
  one: "{count} element"
  few: "{count} elementy"
  many: "{count} elementów"
  other: "{count} elementu"
`)
	english := buildTestBundle(t, "en-US", "app/en-US/items.yaml", `
items:
  one: "{count} item"
  other: "{count} items"
`)

	tests := []struct {
		bundle *Bundle
		count  int
		want   string
	}{
		{bundle: polish, count: 1, want: "1 element"},
		{bundle: polish, count: 3, want: "3 elementy"},
		{bundle: polish, count: 5, want: "5 elementów"},
		{bundle: polish, count: 22, want: "22 elementy"},
		{bundle: english, count: 1, want: "1 item"},
		{bundle: english, count: 0, want: "0 items"},
		{bundle: english, count: 7, want: "7 items"},
	}
	for _, tc := range tests {
		got, err := tc.bundle.FormatPlural("items", tc.count, nil)
		if err != nil {
			t.Fatalf("%s/%d: %v", tc.bundle.Locale(), tc.count, err)
		}
		if got != tc.want {
			t.Fatalf("%s/%d: got %q want %q", tc.bundle.Locale(), tc.count, got, tc.want)
		}
	}

	if _, err := polish.FormatMessage("items", map[string]any{"count": "many"}); err == nil {
		t.Fatal("expected format error for non numeric count")
	}
	if polish.Memoizer().Len() == 0 {
		t.Fatal("plural rules should be memoized")
	}
}

func TestBundleFirstResourceWins(t *testing.T) {
	parser := NewMessageFileParser()
	first, _ := parser.Parse("en-US", "a.ftl", "shared = from a\nonly-a = A")
	second, _ := parser.Parse("en-US", "b.ftl", "shared = from b\nonly-b = B")

	builder := newBundleBuilder("en-US", nil)
	builder.addResource(Required("a.ftl"), "main", first)
	builder.addResource(Optional("b.ftl"), "extra", second)
	builder.addMissing(Optional("c.ftl"))
	bundle := builder.build()

	if got, _ := bundle.FormatMessage("shared", nil); got != "from a" {
		t.Fatalf("shared = %q", got)
	}
	if diff := cmp.Diff([]string{"only-a", "only-b", "shared"}, bundle.MessageIDs()); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"main", "extra"}, bundle.Sources()); diff != "" {
		t.Fatalf("sources mismatch (-want +got):\n%s", diff)
	}
	if source, ok := bundle.ResourceSource("b.ftl"); !ok || source != "extra" {
		t.Fatalf("ResourceSource(b.ftl) = %q, %v", source, ok)
	}
	if diff := cmp.Diff([]ResourceID{Optional("c.ftl")}, bundle.Missing()); diff != "" {
		t.Fatalf("missing mismatch (-want +got):\n%s", diff)
	}

	msg, _ := bundle.Message("shared")
	msg.Variants[PluralOther] = MessageVariant{Template: "mutated"}
	if got, _ := bundle.FormatMessage("shared", nil); got != "from a" {
		t.Fatal("Message must return a copy")
	}
}

func TestNilBundle(t *testing.T) {
	var bundle *Bundle
	if bundle.Locale() != "" || bundle.HasMessage("x") || bundle.MessageIDs() != nil {
		t.Fatal("nil bundle accessors must be zero valued")
	}
	if _, err := bundle.FormatMessage("x", nil); !errors.Is(err, ErrMissingMessage) {
		t.Fatalf("expected ErrMissingMessage, got %v", err)
	}
}
