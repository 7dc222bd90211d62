package link

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGraphQLServer(t *testing.T, handler func(body httpRequestBody) (int, any)) *httptest.Server {
	t.Helper()
	r := mux.NewRouter()
	r.HandleFunc("/graphql", func(w http.ResponseWriter, req *http.Request) {
		var body httpRequestBody
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		status, payload := handler(body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(payload)
	}).Methods(http.MethodPost)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTP_Success(t *testing.T) {
	t.Parallel()
	srv := newGraphQLServer(t, func(body httpRequestBody) (int, any) {
		return http.StatusOK, map[string]any{
			"data": map[string]any{"echo": body.OperationName, "id": body.Variables["id"]},
		}
	})

	l, err := NewHTTP(HTTPConfig{Endpoint: srv.URL + "/graphql"})
	require.NoError(t, err)

	op := NewOperation(KindQuery, "Pet", "query Pet($id: ID!) { pet(id: $id) { name } }", map[string]any{"id": "p1"})
	res, err := From(l)(context.Background(), op).Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Pet", res.Data["echo"])
	assert.Equal(t, "p1", res.Data["id"])
}

func TestHTTP_GraphQLErrors(t *testing.T) {
	t.Parallel()
	srv := newGraphQLServer(t, func(httpRequestBody) (int, any) {
		return http.StatusOK, map[string]any{
			"data":   map[string]any{"pet": nil},
			"errors": []map[string]any{{"message": "pet not found"}},
		}
	})
	l, err := NewHTTP(HTTPConfig{Endpoint: srv.URL + "/graphql"})
	require.NoError(t, err)

	res, err := l.Request(context.Background(), Query("Pet", nil), nil).Wait(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrGraphQL))
	assert.Contains(t, err.Error(), "pet not found")
	require.NotNil(t, res)
	assert.Len(t, res.Errors, 1)
}

func TestHTTP_StatusError(t *testing.T) {
	t.Parallel()
	srv := newGraphQLServer(t, func(httpRequestBody) (int, any) {
		return http.StatusInternalServerError, map[string]any{"error": "down"}
	})
	l, err := NewHTTP(HTTPConfig{Endpoint: srv.URL + "/graphql"})
	require.NoError(t, err)

	_, err = l.Request(context.Background(), Query("Pet", nil), nil).Wait(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrHTTPStatus))

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
}

func TestNewHTTP_RequiresEndpoint(t *testing.T) {
	t.Parallel()
	_, err := NewHTTP(HTTPConfig{})
	assert.ErrorIs(t, err, ErrEmptyEndpoint)
}
