package link

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

var (
	// ErrHTTPStatus is wrapped by HTTPError for non-2xx responses.
	ErrHTTPStatus = errors.New("unexpected HTTP status")

	// ErrGraphQL is joined with the messages of a response's "errors" array.
	ErrGraphQL = errors.New("graphql response contained errors")

	// ErrEmptyEndpoint is returned by NewHTTP when no endpoint is given.
	ErrEmptyEndpoint = errors.New("endpoint cannot be empty")
)

// HTTPError describes a non-2xx response from the GraphQL endpoint.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s: %d: %s", ErrHTTPStatus, e.StatusCode, e.Body)
}

// Is lets errors.Is(err, ErrHTTPStatus) match.
func (e *HTTPError) Is(target error) bool { return target == ErrHTTPStatus }

// HTTPConfig configures the HTTP terminating link.
type HTTPConfig struct {
	// Endpoint is the GraphQL URL operations are POSTed to.
	Endpoint string
	// Timeout bounds a single request. Defaults to 30s.
	Timeout time.Duration
	// Header is sent with every request.
	Header map[string]string
	// Logger receives resty diagnostics. Defaults to a disabled logger.
	Logger *zerolog.Logger
}

// HTTP is the terminating link used outside tests: it sends each operation to
// a GraphQL endpoint over HTTP.
type HTTP struct {
	endpoint string
	client   *resty.Client
}

var _ Link = (*HTTP)(nil)

type httpRequestBody struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// NewHTTP builds the link. Debug dumps are enabled with GQLTEST_DEBUG=true or
// DEBUG=true.
func NewHTTP(cfg HTTPConfig) (*HTTP, error) {
	if cfg.Endpoint == "" {
		return nil, ErrEmptyEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	c := resty.New().
		SetTimeout(cfg.Timeout).
		SetLogger(restyLogger{log: logger}).
		SetDebug(debugLoggingRequested()).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	for k, v := range cfg.Header {
		c.SetHeader(k, v)
	}

	return &HTTP{endpoint: cfg.Endpoint, client: c}, nil
}

// Request implements Link. forward is never called.
func (l *HTTP) Request(ctx context.Context, op *Operation, _ Forward) *Future {
	f := NewFuture()
	go func() {
		f.Complete(l.do(ctx, op))
	}()
	return f
}

func (l *HTTP) do(ctx context.Context, op *Operation) (*Result, error) {
	var out Result
	resp, err := l.client.R().
		SetContext(ctx).
		SetBody(httpRequestBody{Query: op.Query, OperationName: op.Name, Variables: op.Variables}).
		SetResult(&out).
		Post(l.endpoint)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if resp.IsError() {
		return nil, &HTTPError{StatusCode: resp.StatusCode(), Body: strings.TrimSpace(resp.String())}
	}
	if len(out.Errors) > 0 {
		errs := make([]error, 0, len(out.Errors)+1)
		errs = append(errs, ErrGraphQL)
		for _, e := range out.Errors {
			errs = append(errs, e)
		}
		return &out, errors.Join(errs...)
	}
	return &out, nil
}

// restyLogger routes resty output through zerolog.
type restyLogger struct{ log zerolog.Logger }

func (l restyLogger) Errorf(format string, v ...any) { l.log.Error().Msgf(format, v...) }
func (l restyLogger) Warnf(format string, v ...any)  { l.log.Warn().Msgf(format, v...) }
func (l restyLogger) Debugf(format string, v ...any) { l.log.Debug().Msgf(format, v...) }

// debugLoggingRequested checks GQLTEST_DEBUG and the general DEBUG flag.
func debugLoggingRequested() bool {
	return os.Getenv("GQLTEST_DEBUG") == "true" || os.Getenv("DEBUG") == "true"
}
