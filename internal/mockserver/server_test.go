package mockserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mycelian/gqltest"
	"github.com/mycelian/gqltest/link"
	"github.com/mycelian/gqltest/mock"
)

func newServer(t *testing.T, m *mock.Mock) (*gqltest.Controller, *httptest.Server) {
	t.Helper()
	gql, err := gqltest.New(m, gqltest.WithLogger(zerolog.Nop()), gqltest.WithMetrics(false))
	require.NoError(t, err)
	srv := httptest.NewServer(NewHandler(gql, zerolog.Nop()).Router())
	t.Cleanup(srv.Close)
	return gql, srv
}

func execute(t *testing.T, srv *httptest.Server, op *link.Operation) (*link.Result, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	l, err := link.NewHTTP(link.HTTPConfig{Endpoint: srv.URL + "/graphql"})
	require.NoError(t, err)
	return link.From(l)(ctx, op).Wait(ctx)
}

func TestHandleGraphQL_ServesMockedData(t *testing.T) {
	t.Parallel()
	m := mock.New(mock.Config{})
	m.On("Pets").WithVariables(map[string]any{"first": float64(2)}).ReturnData(map[string]any{"pets": []any{"Rex", "Tom"}})
	gql, srv := newServer(t, m)

	res, err := execute(t, srv, link.NewOperation(link.KindQuery, "Pets", "query Pets($first: Int) { pets }", map[string]any{"first": 2}))
	require.NoError(t, err)
	assert.Equal(t, []any{"Rex", "Tom"}, res.Data["pets"])
	assert.Equal(t, []string{"Pets"}, gql.Operations().Names())
	assert.Zero(t, gql.PendingCount())
}

func TestHandleGraphQL_NoMockBecomesGraphQLError(t *testing.T) {
	t.Parallel()
	_, srv := newServer(t, mock.New(mock.Config{}))

	res, err := execute(t, srv, link.NewOperation(link.KindQuery, "Alpha", "query Alpha { a }", nil))
	require.ErrorIs(t, err, link.ErrGraphQL)
	require.NotNil(t, res)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "can't perform GraphQL operation 'Alpha' because no mocks were set", res.Errors[0].Message)
}

func TestListOperations(t *testing.T) {
	t.Parallel()
	m := mock.New(mock.Config{})
	m.On("AdoptPet")
	_, srv := newServer(t, m)

	_, err := execute(t, srv, link.NewOperation(link.KindMutation, "AdoptPet", "  mutation AdoptPet { adopt }", nil))
	require.NoError(t, err)

	resp, err := http.Get(srv.URL + "/operations")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Operations []OperationRecord `json:"operations"`
		Pending    int               `json:"pending"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Operations, 1)
	assert.Equal(t, "AdoptPet", body.Operations[0].Name)
	assert.Equal(t, link.KindMutation, body.Operations[0].Kind)
	assert.Zero(t, body.Pending)
}

func TestHandleGraphQL_BadRequests(t *testing.T) {
	t.Parallel()
	_, srv := newServer(t, mock.New(mock.Config{}))

	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "malformed", body: "{", want: "invalid request body"},
		{name: "anonymous", body: `{"query":"{ pets }"}`, want: "operationName is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/graphql", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var e ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
			assert.Equal(t, tt.want, e.Message)
		})
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()
	_, srv := newServer(t, mock.New(mock.Config{}))
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestKindOf(t *testing.T) {
	t.Parallel()
	assert.Equal(t, link.KindQuery, kindOf("{ pets }"))
	assert.Equal(t, link.KindQuery, kindOf("query Pets { pets }"))
	assert.Equal(t, link.KindMutation, kindOf("\n mutation Adopt { adopt }"))
	assert.Equal(t, link.KindSubscription, kindOf("subscription OnPet { pet }"))
}
