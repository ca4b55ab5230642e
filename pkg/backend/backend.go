// Package backend provides HTTP clients for the upstream LLM backends the
// gateway can be pointed at: any OpenAI-compatible server (hosted API or a
// local one such as LocalAI) and Ollama.
package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jeeves-ai/jeeves/pkg/config"
	"github.com/jeeves-ai/jeeves/pkg/models"
)

// Caller is the outbound call interface consumed by the gateway.
type Caller interface {
	// Complete sends a prompt to the backend and returns the answer text.
	Complete(ctx context.Context, req models.Request) (string, error)
	// Reachable reports whether the backend currently responds at all.
	// It never issues a full completion.
	Reachable(ctx context.Context) bool
}

// Error is a failure reported by a backend. Retryable failures (quota
// signals, transient server errors) may be retried by the caller; fatal
// ones (auth, malformed request) must not be.
type Error struct {
	Status    int
	Message   string
	Retryable bool
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("backend: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend: %s", e.Message)
}

// statusError classifies an HTTP status into a backend Error. 429 is the
// quota/rate-limit signal; 5xx is transient. Everything else in the 4xx
// range (bad request, auth) is fatal.
func statusError(status int, message string) *Error {
	retryable := status == http.StatusTooManyRequests || status >= 500
	return &Error{Status: status, Message: message, Retryable: retryable}
}

// transportError wraps a network-level failure, which is always retryable.
func transportError(err error) *Error {
	return &Error{Message: err.Error(), Retryable: true}
}

// IsRetryable reports whether the gateway may retry after err. Transport
// errors without a backend classification default to retryable.
func IsRetryable(err error) bool {
	var be *Error
	if errors.As(err, &be) {
		return be.Retryable
	}
	return err != nil
}

// New constructs a Caller from backend configuration.
func New(cfg config.BackendConfig) (Caller, error) {
	switch cfg.Type {
	case "", "openai":
		return NewOpenAI(cfg), nil
	case "ollama":
		return NewOllama(cfg), nil
	default:
		return nil, fmt.Errorf("unknown backend type %q", cfg.Type)
	}
}
