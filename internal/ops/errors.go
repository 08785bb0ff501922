package ops

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stakewatch/stakewatch/internal/registry"
)

// Kind classifies an operation error.
type Kind string

const (
	// KindValidation marks missing or malformed required fields.
	KindValidation Kind = "validation_error"
	// KindNotFound marks an unknown group or coalition id in strict mode.
	KindNotFound Kind = "not_found"
	// KindInvalidRequest marks an unknown operation name.
	KindInvalidRequest Kind = "invalid_request"
	// KindPartialFailure tags a result that completed with failed sub-steps.
	// It is carried in-band beside the partial data, not as a call failure.
	KindPartialFailure Kind = "partial_failure"
	// KindInternal marks an unexpected failure wrapped into the envelope.
	KindInternal Kind = "internal_error"
)

// Error is the structured error returned at the operation boundary.
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Envelope renders the error as the JSON error envelope callers receive.
func (e *Error) Envelope() string {
	raw, err := json.Marshal(map[string]any{"error": e})
	if err != nil {
		return fmt.Sprintf(`{"error":{"kind":"internal_error","message":%q}}`, e.Message)
	}
	return string(raw)
}

// validationf builds a validation error.
func validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// wrapEngineErr maps engine/registry failures onto the error taxonomy.
func wrapEngineErr(op string, err error) *Error {
	var opErr *Error
	if errors.As(err, &opErr) {
		return opErr
	}
	switch {
	case errors.Is(err, registry.ErrNotFound):
		return &Error{Kind: KindNotFound, Message: err.Error()}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindInternal, Message: fmt.Sprintf("%s cancelled: %v", op, err)}
	default:
		return &Error{Kind: KindInternal, Message: fmt.Sprintf("%s failed: %v", op, err)}
	}
}
