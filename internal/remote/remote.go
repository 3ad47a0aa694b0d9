package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Operation describes a named GraphQL query or mutation. The cache layers treat
// it as opaque; only the transport looks at Document.
type Operation struct {
	Name     string
	Document string
}

// Variables are the operation arguments sent alongside the document.
type Variables map[string]any

// Payload is the "data" object of a GraphQL response keyed by root field.
type Payload map[string]json.RawMessage

// Decode unmarshals a single root field of the payload into dest.
func (p Payload) Decode(field string, dest any) error {
	raw, ok := p[field]
	if !ok {
		return fmt.Errorf("payload missing field %q", field)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode field %q: %w", field, err)
	}
	return nil
}

// Client executes operations against a remote endpoint.
type Client interface {
	Query(ctx context.Context, op Operation, vars Variables) (Payload, error)
	Mutate(ctx context.Context, op Operation, vars Variables) (Payload, error)
}

// Error is returned for transport failures and server-reported errors alike.
type Error struct {
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op == "" {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ServerError is a single entry of a GraphQL "errors" array.
type ServerError struct {
	Message string `json:"message"`
}

func joinServerErrors(errs []ServerError) string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		if m := strings.TrimSpace(e.Message); m != "" {
			msgs = append(msgs, m)
		}
	}
	if len(msgs) == 0 {
		return "server returned errors"
	}
	return strings.Join(msgs, "; ")
}
