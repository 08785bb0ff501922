// Package ops provides the operation framework for the analysis engine:
// named operations with JSON-schema parameters, decoded and validated at the
// boundary, executed against the engine, and returned as JSON results or a
// structured error envelope.
package ops

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// Operation is the interface every analysis operation implements.
type Operation interface {
	// Name returns the operation identifier used in calls.
	Name() string
	// Description returns a human-readable description for the caller.
	Description() string
	// Parameters returns the JSON Schema for the operation arguments.
	Parameters() map[string]any
	// Execute runs the operation. The returned string is the JSON result;
	// errors are *Error values carrying a structured kind.
	Execute(ctx context.Context, params map[string]any) (string, error)
}

// Registry manages operation registration and dispatch.
type Registry struct {
	named map[string]Operation
	order []string
}

// NewRegistry creates an empty operation registry.
func NewRegistry() *Registry {
	return &Registry{named: make(map[string]Operation)}
}

// Register adds an operation to the registry.
func (r *Registry) Register(op Operation) {
	if _, exists := r.named[op.Name()]; !exists {
		r.order = append(r.order, op.Name())
	}
	r.named[op.Name()] = op
}

// Get returns an operation by name.
func (r *Registry) Get(name string) (Operation, bool) {
	op, ok := r.named[name]
	return op, ok
}

// List returns all operations in registration order.
func (r *Registry) List() []Operation {
	out := make([]Operation, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.named[name])
	}
	return out
}

// Execute dispatches an operation by name. Unknown names yield an
// invalid_request error; panics are caught and returned as internal_error
// rather than crashing the process.
func (r *Registry) Execute(ctx context.Context, name string, params map[string]any) (out string, err error) {
	op, ok := r.named[name]
	if !ok {
		return "", &Error{Kind: KindInvalidRequest, Message: fmt.Sprintf("unknown operation: %s", name)}
	}
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("Operation panicked", "operation", name, "panic", rec)
			out = ""
			err = &Error{Kind: KindInternal, Message: fmt.Sprintf("internal error in %s", name)}
		}
	}()
	return op.Execute(ctx, params)
}

// decodeParams converts the loosely-typed argument bag into the operation's
// typed request struct.
func decodeParams(params map[string]any, req any) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return &Error{Kind: KindValidation, Message: fmt.Sprintf("malformed arguments: %v", err)}
	}
	if err := json.Unmarshal(raw, req); err != nil {
		return &Error{Kind: KindValidation, Message: fmt.Sprintf("malformed arguments: %v", err)}
	}
	return nil
}

// partialResult is implemented by engine results that can complete with
// failed sub-steps noted as warnings.
type partialResult interface {
	PartialWarnings() []string
}

// marshalResult renders an operation result as indented JSON. Results whose
// sub-steps failed keep their partial data and are tagged with the
// partial_failure kind in-band.
func marshalResult(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", &Error{Kind: KindInternal, Message: fmt.Sprintf("failed to encode result: %v", err)}
	}
	if pr, ok := v.(partialResult); ok && len(pr.PartialWarnings()) > 0 {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return "", &Error{Kind: KindInternal, Message: fmt.Sprintf("failed to encode result: %v", err)}
		}
		fields["error_kind"], _ = json.Marshal(KindPartialFailure)
		if raw, err = json.Marshal(fields); err != nil {
			return "", &Error{Kind: KindInternal, Message: fmt.Sprintf("failed to encode result: %v", err)}
		}
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return "", &Error{Kind: KindInternal, Message: fmt.Sprintf("failed to encode result: %v", err)}
	}
	return out.String(), nil
}

// stringSchema is a shorthand for a string-typed JSON schema property.
func stringSchema(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

// stringListSchema is a shorthand for a string-array JSON schema property.
func stringListSchema(desc string) map[string]any {
	return map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "string"},
		"description": desc,
	}
}
