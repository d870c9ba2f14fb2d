// Package apperr defines the error kinds surfaced by the HTTP layer.
//
// Every error that reaches a handler is classified into an AppError; the
// Cause is kept for server-side logging and never written to the client.
package apperr

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

type Kind int

const (
	KindInvalidParameter Kind = iota + 1
	KindUnknownIdentifier
	KindInvalidFilter
	KindInvalidAddress
	KindUnsupportedRepresentation
	KindDataSourceUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindInvalidParameter:
		return "invalid_parameter"
	case KindUnknownIdentifier:
		return "unknown_identifier"
	case KindInvalidFilter:
		return "invalid_filter"
	case KindInvalidAddress:
		return "invalid_address"
	case KindUnsupportedRepresentation:
		return "unsupported_representation"
	case KindDataSourceUnavailable:
		return "data_source_unavailable"
	default:
		return "unknown"
	}
}

// UnknownCollectionMessage is the body returned for collection ids missing from the catalog.
const UnknownCollectionMessage = "You have entered an unknown Collection ID"

// GenericFailureMessage is the only body clients see for 5xx errors.
const GenericFailureMessage = "The data source is currently unavailable. Please try again later."

type AppError struct {
	Kind    Kind
	Message string
	Status  int
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Cause }

// Is matches any AppError of the same kind.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if errors.As(target, &t) {
		return t.Kind == e.Kind && t.Message == ""
	}
	return false
}

// Sentinels for errors.Is checks on kind only.
var (
	ErrInvalidParameter          = &AppError{Kind: KindInvalidParameter}
	ErrUnknownIdentifier         = &AppError{Kind: KindUnknownIdentifier}
	ErrInvalidFilter             = &AppError{Kind: KindInvalidFilter}
	ErrInvalidAddress            = &AppError{Kind: KindInvalidAddress}
	ErrUnsupportedRepresentation = &AppError{Kind: KindUnsupportedRepresentation}
	ErrDataSourceUnavailable     = &AppError{Kind: KindDataSourceUnavailable}
)

func InvalidParameter(name string) *AppError {
	return &AppError{
		Kind:    KindInvalidParameter,
		Message: fmt.Sprintf("The parameter %s you supplied is not allowed", name),
		Status:  http.StatusBadRequest,
	}
}

// InvalidParameterValue reports a known parameter carrying an unusable value.
func InvalidParameterValue(name, reason string) *AppError {
	return &AppError{
		Kind:    KindInvalidParameter,
		Message: fmt.Sprintf("The parameter %s %s", name, reason),
		Status:  http.StatusBadRequest,
	}
}

func UnknownIdentifier(msg string) *AppError {
	return &AppError{Kind: KindUnknownIdentifier, Message: msg, Status: http.StatusBadRequest}
}

func UnknownCollection() *AppError {
	return UnknownIdentifier(UnknownCollectionMessage)
}

func InvalidFilter(value string, accepted []string) *AppError {
	return &AppError{
		Kind: KindInvalidFilter,
		Message: fmt.Sprintf("The bbox value %q is not supported. Accepted shapes: %s",
			value, strings.Join(accepted, "; ")),
		Status: http.StatusBadRequest,
	}
}

func InvalidAddress(addr string) *AppError {
	return &AppError{
		Kind:    KindInvalidAddress,
		Message: fmt.Sprintf("%q is not a valid zone address", addr),
		Status:  http.StatusBadRequest,
	}
}

func UnsupportedRepresentation(profile, mediaType string) *AppError {
	return &AppError{
		Kind:    KindUnsupportedRepresentation,
		Message: fmt.Sprintf("No representation is available for profile %s and media type %s", profile, mediaType),
		Status:  http.StatusBadRequest,
	}
}

func DataSourceUnavailable(cause error) *AppError {
	return &AppError{
		Kind:    KindDataSourceUnavailable,
		Message: GenericFailureMessage,
		Status:  http.StatusInternalServerError,
		Cause:   cause,
	}
}

// As extracts the AppError from err, classifying anything else as a data source failure.
func As(err error) *AppError {
	if err == nil {
		return nil
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return DataSourceUnavailable(err)
}

// Write renders err as a plain-text response. Causes are logged, never written.
func Write(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	ae := As(err)
	if ae.Status >= 500 && log != nil {
		log.ErrorContext(r.Context(), "request failed",
			"kind", ae.Kind.String(),
			"path", r.URL.Path,
			"err", err,
		)
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(ae.Status)
	_, _ = w.Write([]byte(ae.Message))
}
