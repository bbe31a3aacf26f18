package quiz

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/study-ai/backend/internal/extractor"
	"github.com/study-ai/backend/internal/gateway"
)

type Kind string

const (
	KindInvalidRequest       Kind = "InvalidRequest"
	KindConfigurationMissing Kind = "ConfigurationMissing"
	KindModelUnavailable     Kind = "ModelUnavailable"
	KindQuotaExceeded        Kind = "QuotaExceeded"
	KindAuthenticationFailed Kind = "AuthenticationFailed"
	KindExtractionFailed     Kind = "ExtractionFailed"
	KindUnknown              Kind = "Unknown"
)

// Error is the classified failure returned by GenerateQuiz. Message is
// meant for the end user; Details keeps the underlying cause.
type Error struct {
	Kind        Kind
	Message     string
	Details     string
	RawResponse string
	Err         error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus is 400 for bad input and 500 for every pipeline failure.
func (e *Error) HTTPStatus() int {
	if e.Kind == KindInvalidRequest {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// KindOf returns the classification of err, or KindUnknown.
func KindOf(err error) Kind {
	var qErr *Error
	if errors.As(err, &qErr) {
		return qErr.Kind
	}
	return KindUnknown
}

func invalidRequest(msg string) *Error {
	return &Error{Kind: KindInvalidRequest, Message: msg}
}

// classify turns a gateway or extractor failure into a caller-facing error.
func classify(err error) *Error {
	var existing *Error
	if errors.As(err, &existing) {
		return existing
	}

	if errors.Is(err, gateway.ErrMissingCredential) {
		return &Error{
			Kind:    KindConfigurationMissing,
			Message: "API key not configured",
			Details: err.Error(),
			Err:     err,
		}
	}

	var extErr *extractor.Error
	if errors.As(err, &extErr) {
		return &Error{
			Kind:        KindExtractionFailed,
			Message:     "Failed to parse quiz from AI response.",
			Details:     "The AI response could not be parsed as valid JSON. Please try again.",
			RawResponse: extErr.Prefix,
			Err:         err,
		}
	}

	switch gateway.KindOf(err) {
	case gateway.KindModelUnavailable, gateway.KindNotFound:
		return &Error{
			Kind:    KindModelUnavailable,
			Message: "AI model not available. Please check your API key and model configuration.",
			Details: err.Error(),
			Err:     err,
		}
	case gateway.KindQuota:
		return &Error{
			Kind:    KindQuotaExceeded,
			Message: "API quota exceeded. Please check your API usage limits.",
			Details: err.Error(),
			Err:     err,
		}
	case gateway.KindAuth:
		return &Error{
			Kind:    KindAuthenticationFailed,
			Message: "API key authentication failed. Please check your API key configuration.",
			Details: err.Error(),
			Err:     err,
		}
	}

	return &Error{
		Kind:    KindUnknown,
		Message: "Failed to generate quiz. Please try again.",
		Details: err.Error(),
		Err:     err,
	}
}
