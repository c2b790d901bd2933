package l10n

import (
	"errors"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/hashicorp/go-multierror"
)

// ErrResourceNotFound indicates that a source has no file for locale/resource.
var ErrResourceNotFound = errors.New("l10n: resource not found")

// ErrResourceIO marks fetch failures other than absence (permissions, transport, corrupt archives).
var ErrResourceIO = errors.New("l10n: resource io error")

// ErrMissingMessage indicates that no resolved bundle defines a message id.
var ErrMissingMessage = errors.New("l10n: missing message")

var (
	ErrDuplicateSource = errors.New("l10n: duplicate file source")
	ErrUnknownSource   = errors.New("l10n: unknown file source")
	ErrNilMemoizer     = errors.New("l10n: nil memoizer")
)

const (
	codeInvalidSource   = "L10N_INVALID_SOURCE"
	codeInvalidManifest = "L10N_INVALID_MANIFEST"
)

func validationError(code, message string) error {
	return goerrors.Wrap(errors.New(message), goerrors.CategoryValidation, message).
		WithTextCode(code)
}

// FetchErrorKind distinguishes expected absence from operational failures
type FetchErrorKind uint8

const (
	FetchNotFound FetchErrorKind = iota
	FetchIO
)

func (k FetchErrorKind) String() string {
	if k == FetchIO {
		return "io"
	}
	return "not_found"
}

// FetchError is returned by FileSource fetches
type FetchError struct {
	Kind   FetchErrorKind
	Source string
	Path   string
	Err    error
}

func (e *FetchError) Error() string {
	var b strings.Builder
	b.WriteString("l10n: fetch ")
	if e.Source != "" {
		b.WriteString(e.Source)
		b.WriteString(":")
	}
	b.WriteString(e.Path)
	if e.Kind == FetchNotFound {
		b.WriteString(": not found")
	} else {
		b.WriteString(": io error")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool {
	switch target {
	case ErrResourceNotFound:
		return e.Kind == FetchNotFound
	case ErrResourceIO:
		return e.Kind == FetchIO
	}
	return false
}

func notFoundError(source, path string) *FetchError {
	return &FetchError{Kind: FetchNotFound, Source: source, Path: path}
}

// LoadErrorKind classifies per (locale, resource, source) diagnostics
type LoadErrorKind uint8

const (
	// LoadMissingRequired: a required resource was found in no source for the locale
	LoadMissingRequired LoadErrorKind = iota
	// LoadMissingOptional: an optional resource was found in no source; never fatal
	LoadMissingOptional
	// LoadIO: one source failed with an operational error
	LoadIO
	// LoadParse: one source returned content that could not be parsed
	LoadParse
	// LoadNoSource: no registered source claims the locale
	LoadNoSource
)

func (k LoadErrorKind) String() string {
	switch k {
	case LoadMissingRequired:
		return "missing_required"
	case LoadMissingOptional:
		return "missing_optional"
	case LoadIO:
		return "io"
	case LoadParse:
		return "parse"
	case LoadNoSource:
		return "no_source"
	default:
		return "unknown"
	}
}

// ResourceLoadError records one failed attempt while resolving a locale
type ResourceLoadError struct {
	Kind     LoadErrorKind
	Locale   string
	Resource ResourceID
	Source   string
	Path     string
	Err      error
}

func (e *ResourceLoadError) Error() string {
	switch e.Kind {
	case LoadMissingRequired, LoadMissingOptional:
		return fmt.Sprintf("l10n: [%s] %s resource %q not found in any source", e.Locale, e.Resource.Type, e.Resource.Value)
	case LoadNoSource:
		return fmt.Sprintf("l10n: [%s] no file source offers this locale", e.Locale)
	case LoadParse:
		return fmt.Sprintf("l10n: [%s] parse %s (%s): %v", e.Locale, e.Path, e.Source, e.Err)
	default:
		return fmt.Sprintf("l10n: [%s] fetch %s (%s): %v", e.Locale, e.Path, e.Source, e.Err)
	}
}

func (e *ResourceLoadError) Unwrap() error { return e.Err }

// IsFatal reports whether the error prevents the locale from producing a ready bundle.
func (e *ResourceLoadError) IsFatal() bool {
	return e.Kind == LoadMissingRequired || e.Kind == LoadNoSource
}

// ResolutionError is the error half of a failed locale: at least one required
// resource is missing. The partial bundle is returned alongside it.
type ResolutionError struct {
	Locale string
	Errors []*ResourceLoadError
}

func (e *ResolutionError) Error() string {
	var merr *multierror.Error
	for _, err := range e.Errors {
		merr = multierror.Append(merr, err)
	}
	if merr == nil {
		return fmt.Sprintf("l10n: locale %q could not be resolved", e.Locale)
	}
	merr.ErrorFormat = func(errs []error) string {
		parts := make([]string, 0, len(errs))
		for _, err := range errs {
			parts = append(parts, err.Error())
		}
		return fmt.Sprintf("l10n: locale %q could not be resolved (%d errors): %s",
			e.Locale, len(errs), strings.Join(parts, "; "))
	}
	return merr.Error()
}

func (e *ResolutionError) Unwrap() []error {
	out := make([]error, 0, len(e.Errors))
	for _, err := range e.Errors {
		out = append(out, err)
	}
	return out
}

// MissingRequired lists the required resources that caused the fallback
func (e *ResolutionError) MissingRequired() []ResourceID {
	var out []ResourceID
	for _, err := range e.Errors {
		if err.Kind == LoadMissingRequired {
			out = append(out, err.Resource)
		}
	}
	return out
}

// MessageErrorKind classifies message level formatting diagnostics
type MessageErrorKind uint8

const (
	// MessageMissing: no ready bundle defines the message
	MessageMissing MessageErrorKind = iota
	// MessageMissingInLocale: the message was served by a later locale
	MessageMissingInLocale
	// MessageFormat: the message exists but formatting failed
	MessageFormat
)

// MessageError is returned by Localization formatting calls
type MessageError struct {
	Kind   MessageErrorKind
	Key    string
	Locale string
	Err    error
}

func (e *MessageError) Error() string {
	switch e.Kind {
	case MessageMissingInLocale:
		return fmt.Sprintf("l10n: message %q missing in locale %q", e.Key, e.Locale)
	case MessageFormat:
		return fmt.Sprintf("l10n: format message %q (%s): %v", e.Key, e.Locale, e.Err)
	default:
		return fmt.Sprintf("l10n: message %q missing in every locale", e.Key)
	}
}

func (e *MessageError) Unwrap() error {
	if e.Kind == MessageFormat {
		return e.Err
	}
	return ErrMissingMessage
}
