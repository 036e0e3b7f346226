package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoteNotFound signals a missing or soft-deleted note.
	ErrNoteNotFound = errors.New("note not found")
	// ErrInvalidInput signals a request that failed validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrUnauthorized signals a missing or unknown bearer token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrProviderUnreachable signals that the inference endpoint could not be reached.
	ErrProviderUnreachable = errors.New("inference provider unreachable")
	// ErrProviderBadResponse signals a non-200 status or a body of the wrong shape.
	ErrProviderBadResponse = errors.New("inference provider bad response")
	// ErrProviderEmptyResult signals a well-formed but semantically empty response.
	ErrProviderEmptyResult = errors.New("inference provider empty result")
	// ErrUnsupportedTask signals a provider asked for a task it cannot serve.
	ErrUnsupportedTask = errors.New("unsupported inference task")
	// ErrStageInternal signals an unexpected failure inside an analysis stage.
	ErrStageInternal = errors.New("analysis stage internal error")
)

// ProviderErrorKind classifies a failed provider call.
type ProviderErrorKind string

// Provider failure kinds.
const (
	KindUnreachable ProviderErrorKind = "unreachable"
	KindBadStatus   ProviderErrorKind = "bad_status"
	KindMalformed   ProviderErrorKind = "malformed"
	KindTimeout     ProviderErrorKind = "timeout"
	KindUnsupported ProviderErrorKind = "unsupported"
)

// ProviderError is a typed failure of one inference call.
// errors.Is matches both the kind's sentinel and the underlying cause.
type ProviderError struct {
	Provider   string
	Model      string
	Kind       ProviderErrorKind
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s %s: %s: status %d", e.Provider, e.Model, e.Kind, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %s: %v", e.Provider, e.Model, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s %s: %s", e.Provider, e.Model, e.Kind)
	}
}

// Unwrap exposes the kind sentinel and the cause.
func (e *ProviderError) Unwrap() []error {
	errs := []error{e.Kind.sentinel()}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func (k ProviderErrorKind) sentinel() error {
	switch k {
	case KindBadStatus, KindMalformed:
		return ErrProviderBadResponse
	case KindUnsupported:
		return ErrUnsupportedTask
	default:
		return ErrProviderUnreachable
	}
}

// NewProviderError creates a ProviderError.
func NewProviderError(provider, model string, kind ProviderErrorKind, err error) error {
	return &ProviderError{Provider: provider, Model: model, Kind: kind, Err: err}
}

// NewStatusError creates a bad_status ProviderError.
func NewStatusError(provider, model string, status int) error {
	return &ProviderError{Provider: provider, Model: model, Kind: KindBadStatus, StatusCode: status}
}

// ProviderErrorKindOf returns the kind of err, or "" if err is not a ProviderError.
func ProviderErrorKindOf(err error) ProviderErrorKind {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}
