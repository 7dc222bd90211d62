package link

import (
	"fmt"

	"github.com/google/uuid"
)

// Kind identifies the GraphQL operation type.
type Kind string

const (
	KindQuery        Kind = "query"
	KindMutation     Kind = "mutation"
	KindSubscription Kind = "subscription"
)

// Operation is a named unit of request/response work. Links and observers
// hold references to it but never modify it after dispatch.
type Operation struct {
	// ID is unique per dispatched instance; two operations with the same
	// Name are still distinct.
	ID        string
	Name      string
	Kind      Kind
	Query     string
	Variables map[string]any
}

// NewOperation builds an operation with a fresh ID.
func NewOperation(kind Kind, name, query string, variables map[string]any) *Operation {
	if kind == "" {
		kind = KindQuery
	}
	return &Operation{
		ID:        uuid.NewString(),
		Name:      name,
		Kind:      kind,
		Query:     query,
		Variables: variables,
	}
}

// Query is shorthand for NewOperation(KindQuery, ...).
func Query(name string, variables map[string]any) *Operation {
	return NewOperation(KindQuery, name, "", variables)
}

// Mutation is shorthand for NewOperation(KindMutation, ...).
func Mutation(name string, variables map[string]any) *Operation {
	return NewOperation(KindMutation, name, "", variables)
}

// String returns "kind Name" for logs and error messages.
func (o *Operation) String() string {
	if o == nil {
		return "<nil operation>"
	}
	return fmt.Sprintf("%s %s", o.Kind, o.Name)
}

// GraphQLError is one entry of a response's "errors" array.
type GraphQLError struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (e GraphQLError) Error() string { return e.Message }

// Result is the payload produced for an operation.
type Result struct {
	Data       map[string]any `json:"data,omitempty"`
	Errors     []GraphQLError `json:"errors,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}
