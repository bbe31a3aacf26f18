package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

type Kind string

const (
	KindModelUnavailable Kind = "model_unavailable"
	KindQuota            Kind = "quota"
	KindAuth             Kind = "auth"
	KindNotFound         Kind = "not_found"
	KindNetwork          Kind = "network"
	KindUnknown          Kind = "unknown"
)

// Error is a classified model failure.
type Error struct {
	Kind   Kind
	Model  string
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Model == "" {
		return fmt.Sprintf("gateway %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("gateway %s (model %s): %v", e.Kind, e.Model, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the classification of err, or KindUnknown.
func KindOf(err error) Kind {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr.Kind
	}
	return KindUnknown
}

// Classify maps a provider error onto a Kind. The HTTP status carried by
// the SDK error wins; message text is only consulted when there is none.
func Classify(model string, err error) *Error {
	var existing *Error
	if errors.As(err, &existing) {
		return existing
	}

	status := statusOf(err)
	kind := kindForStatus(status)
	if kind == "" {
		kind = kindForMessage(err)
	}
	return &Error{Kind: kind, Model: model, Status: status, Err: err}
}

func statusOf(err error) int {
	var geminiErr genai.APIError
	if errors.As(err, &geminiErr) {
		return geminiErr.Code
	}
	var geminiPtr *genai.APIError
	if errors.As(err, &geminiPtr) && geminiPtr != nil {
		return geminiPtr.Code
	}
	var openaiErr *openai.APIError
	if errors.As(err, &openaiErr) {
		return openaiErr.HTTPStatusCode
	}
	var openaiReqErr *openai.RequestError
	if errors.As(err, &openaiReqErr) {
		return openaiReqErr.HTTPStatusCode
	}
	var anthropicErr *anthropic.Error
	if errors.As(err, &anthropicErr) {
		return anthropicErr.StatusCode
	}
	return 0
}

func kindForStatus(status int) Kind {
	switch {
	case status == 0:
		return ""
	case status == http.StatusTooManyRequests:
		return KindQuota
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusNotFound:
		return KindNotFound
	case status >= 500:
		return KindModelUnavailable
	case status == http.StatusBadRequest:
		// Gemini reports an invalid key as a 400 with API_KEY_INVALID.
		return ""
	default:
		return KindUnknown
	}
}

func kindForMessage(err error) Kind {
	msg := err.Error()
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(msg, "API_KEY_INVALID"):
		return KindAuth
	case strings.Contains(msg, "429") || strings.Contains(lower, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED"):
		return KindQuota
	case strings.Contains(msg, "API_KEY") || strings.Contains(msg, "API key") ||
		strings.Contains(lower, "authentication") || strings.Contains(msg, "401") || strings.Contains(msg, "403"):
		return KindAuth
	case strings.Contains(msg, "404") || strings.Contains(lower, "not found"):
		return KindNotFound
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindNetwork
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindNetwork
	}
	return KindUnknown
}
