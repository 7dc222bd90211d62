// Package mockserver exposes a Controller over HTTP so non-Go clients can be
// pointed at canned GraphQL responses. Every request is dispatched through
// the controller's client and resolved immediately.
package mockserver

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/mycelian/gqltest"
	"github.com/mycelian/gqltest/link"
	"github.com/mycelian/gqltest/operations"
)

// GraphQLRequest is the POST body accepted on /graphql.
type GraphQLRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// OperationRecord is one entry of the /operations listing.
type OperationRecord struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Kind      link.Kind      `json:"kind"`
	Variables map[string]any `json:"variables,omitempty"`
}

// ErrorResponse is written for requests that never reach the resolver.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
}

// Handler serves GraphQL requests from a Controller.
type Handler struct {
	gql *gqltest.Controller
	log zerolog.Logger
}

// NewHandler wraps gql.
func NewHandler(gql *gqltest.Controller, log zerolog.Logger) *Handler {
	return &Handler{gql: gql, log: log}
}

// Router wires the handler's routes.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(h.recover)
	r.HandleFunc("/graphql", h.HandleGraphQL).Methods("POST")
	r.HandleFunc("/operations", h.ListOperations).Methods("GET")
	r.HandleFunc("/healthz", h.Health).Methods("GET")
	return r
}

// HandleGraphQL dispatches one operation, drains the controller and writes
// the operation's outcome in GraphQL response form.
func (h *Handler) HandleGraphQL(w http.ResponseWriter, r *http.Request) {
	var req GraphQLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OperationName == "" {
		writeError(w, http.StatusBadRequest, "operationName is required")
		return
	}

	ctx := r.Context()
	op := link.NewOperation(kindOf(req.Query), req.OperationName, req.Query, req.Variables)
	fut := h.gql.Client().Execute(ctx, op)

	// Failures are reported per request below; the aggregate only matters for logs.
	if err := h.gql.Resolve(ctx, operations.Filter{ID: op.ID}); err != nil && ctx.Err() == nil {
		h.log.Debug().Err(err).Str("operation", op.Name).Msg("drain reported failures")
	}

	res, err := fut.Wait(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		h.log.Info().Err(err).Str("operation", op.Name).Msg("operation failed")
		out := link.Result{Errors: []link.GraphQLError{{Message: err.Error()}}}
		if res != nil {
			out.Data = res.Data
			out.Extensions = res.Extensions
		}
		writeJSON(w, http.StatusOK, out)
		return
	}
	if res == nil {
		res = &link.Result{}
	}
	writeJSON(w, http.StatusOK, res)
}

// ListOperations writes the resolved operations in completion order.
func (h *Handler) ListOperations(w http.ResponseWriter, _ *http.Request) {
	ops := h.gql.Operations().All()
	records := make([]OperationRecord, 0, len(ops))
	for _, op := range ops {
		records = append(records, OperationRecord{ID: op.ID, Name: op.Name, Kind: op.Kind, Variables: op.Variables})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"operations": records,
		"pending":    h.gql.PendingCount(),
	})
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				h.log.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("handler panic")
				writeError(w, http.StatusInternalServerError, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func kindOf(query string) link.Kind {
	q := strings.TrimSpace(query)
	switch {
	case strings.HasPrefix(q, "mutation"):
		return link.KindMutation
	case strings.HasPrefix(q, "subscription"):
		return link.KindSubscription
	default:
		return link.KindQuery
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: http.StatusText(status), Code: status, Message: message})
}
