package daemon

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/mozilla-ai/urlprobe/internal/api"
	"github.com/mozilla-ai/urlprobe/internal/errors"
	"github.com/mozilla-ai/urlprobe/internal/metrics"
)

// Tests that build a router are not run in parallel: the router installs the package level huma error constructor.

func testAPIServer(t *testing.T, checker *mockChecker, opt ...APIOption) *APIServer {
	t.Helper()

	deps, err := NewAPIDependencies(hclog.NewNullLogger(), checker, metrics.New(), "localhost:8080")
	require.NoError(t, err)

	server, err := NewAPIServer(deps, opt...)
	require.NoError(t, err)

	return server
}

func testHandler(t *testing.T, checker *mockChecker, opt ...APIOption) http.Handler {
	t.Helper()

	h, err := testAPIServer(t, checker, opt...).Handler()
	require.NoError(t, err)

	return h
}

func serve(h http.Handler, method string, path string, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

var jsonHeaders = map[string]string{"Content-Type": "application/json"}

func TestNewAPIServer_AppliesDefaults(t *testing.T) {
	t.Parallel()

	deps, err := NewAPIDependencies(hclog.NewNullLogger(), &mockChecker{}, metrics.New(), "localhost:8080")
	require.NoError(t, err)

	// Test with no options - should get defaults
	server, err := NewAPIServer(deps)
	require.NoError(t, err)
	require.NotNil(t, server)
	require.Equal(t, DefaultAPIShutdownTimeout(), server.shutdownTimeout)
	require.True(t, server.cors.Enabled)
	require.False(t, server.debugEndpoint)
	require.True(t, server.webUI)

	// Test with some options - should get defaults + overrides
	server2, err := NewAPIServer(deps, WithShutdownTimeout(10*time.Second), WithCORSEnabled(false))
	require.NoError(t, err)
	require.Equal(t, 10*time.Second, server2.shutdownTimeout)
	require.False(t, server2.cors.Enabled)

	// Test with nil options - should still work
	server3, err := NewAPIServer(deps, nil, WithShutdownTimeout(3*time.Second), nil)
	require.NoError(t, err)
	require.Equal(t, 3*time.Second, server3.shutdownTimeout)

	_, err = NewAPIServer(APIDependencies{})
	require.ErrorContains(t, err, "invalid dependencies for API server")

	_, err = NewAPIServer(deps, WithShutdownTimeout(0))
	require.ErrorContains(t, err, "invalid API options")
}

func TestAPIServer_Health(t *testing.T) {
	h := testHandler(t, &mockChecker{})

	for _, path := range []string{"/api/health", "/api/health/"} {
		rec := serve(h, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		require.Contains(t, rec.Header().Get("Content-Type"), "application/json")
		require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	}
}

func TestAPIServer_CheckURL(t *testing.T) {
	tests := []struct {
		name      string
		reachable bool
		body      string
		status    int
		expected  string
		calls     int32
	}{
		{
			name:      "reachable",
			reachable: true,
			body:      `{"url":"example.com"}`,
			status:    http.StatusOK,
			expected:  `{"message":"✅ Valid website URL"}`,
			calls:     1,
		},
		{
			name:      "unknown properties are ignored",
			reachable: true,
			body:      `{"url":"example.com","source":"web"}`,
			status:    http.StatusOK,
			expected:  `{"message":"✅ Valid website URL"}`,
			calls:     1,
		},
		{
			name:     "unknown properties without a url",
			body:     `{"source":"web"}`,
			status:   http.StatusBadRequest,
			expected: `{"message":"Missing url field"}`,
		},
		{
			name:     "unreachable is still a 200",
			body:     `{"url":"nope.invalid"}`,
			status:   http.StatusOK,
			expected: `{"message":"❌ Invalid or unreachable website URL"}`,
			calls:    1,
		},
		{
			name:     "empty url",
			body:     `{"url":""}`,
			status:   http.StatusBadRequest,
			expected: `{"message":"Missing url field"}`,
		},
		{
			name:     "blank url",
			body:     `{"url":"   "}`,
			status:   http.StatusBadRequest,
			expected: `{"message":"Missing url field"}`,
		},
		{
			name:     "missing field",
			body:     `{}`,
			status:   http.StatusBadRequest,
			expected: `{"message":"Missing url field"}`,
		},
		{
			name:     "missing body",
			body:     "",
			status:   http.StatusBadRequest,
			expected: `{"message":"Missing url field"}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			checker := &mockChecker{reachable: tc.reachable}
			h := testHandler(t, checker)

			rec := serve(h, http.MethodPost, "/api/check-url", tc.body, jsonHeaders)

			require.Equal(t, tc.status, rec.Code)
			require.JSONEq(t, tc.expected, rec.Body.String())
			require.Equal(t, tc.calls, checker.calls.Load())
		})
	}
}

func TestAPIServer_CheckURL_MalformedJSON(t *testing.T) {
	checker := &mockChecker{}
	h := testHandler(t, checker)

	rec := serve(h, http.MethodPost, "/api/check-url", `{"url":`, jsonHeaders)

	require.GreaterOrEqual(t, rec.Code, http.StatusBadRequest)
	require.Less(t, rec.Code, http.StatusInternalServerError)
	require.Contains(t, rec.Body.String(), `"message"`)
	require.Zero(t, checker.calls.Load())
}

func TestAPIServer_CheckURL_NonStringURL(t *testing.T) {
	checker := &mockChecker{}
	h := testHandler(t, checker)

	rec := serve(h, http.MethodPost, "/api/check-url", `{"url":123}`, jsonHeaders)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), `"message"`)
	require.Zero(t, checker.calls.Load())
}

func TestAPIServer_CheckURL_CheckerPanicIsRecovered(t *testing.T) {
	h := testHandler(t, &mockChecker{panics: true})

	rec := serve(h, http.MethodPost, "/api/check-url", `{"url":"example.com"}`, jsonHeaders)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	// The server keeps serving after a panic.
	rec = serve(h, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIServer_CORS(t *testing.T) {
	h := testHandler(t, &mockChecker{reachable: true})

	t.Run("preflight on the API", func(t *testing.T) {
		rec := serve(h, http.MethodOptions, "/api/check-url", "", map[string]string{
			"Origin":                         "https://somewhere.example",
			"Access-Control-Request-Method":  http.MethodPost,
			"Access-Control-Request-Headers": "Content-Type",
		})

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		require.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("actual request on the API", func(t *testing.T) {
		rec := serve(h, http.MethodPost, "/api/check-url", `{"url":"example.com"}`, map[string]string{
			"Origin":       "https://somewhere.example",
			"Content-Type": "application/json",
		})

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("no CORS outside the API", func(t *testing.T) {
		for _, path := range []string{MetricsPath, "/", "/apiary"} {
			rec := serve(h, http.MethodGet, path, "", map[string]string{"Origin": "https://somewhere.example"})
			require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"), path)
		}
	})
}

func TestAPIServer_CORS_Disabled(t *testing.T) {
	h := testHandler(t, &mockChecker{}, WithCORSEnabled(false))

	rec := serve(h, http.MethodGet, "/api/health", "", map[string]string{"Origin": "https://somewhere.example"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestAPIServer_CORS_SpecificOrigins(t *testing.T) {
	h := testHandler(
		t,
		&mockChecker{},
		WithCORSAllowOrigins([]string{" https://allowed.example "}),
		WithCORSAllowCredentials(true),
	)

	rec := serve(h, http.MethodGet, "/api/health", "", map[string]string{"Origin": "https://allowed.example"})
	require.Equal(t, "https://allowed.example", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	rec = serve(h, http.MethodGet, "/api/health", "", map[string]string{"Origin": "https://other.example"})
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestAPIServer_CORS_WildcardDisablesCredentials(t *testing.T) {
	h := testHandler(
		t,
		&mockChecker{},
		WithCORSAllowOrigins([]string{"https://a.example", "*"}),
		WithCORSAllowCredentials(true),
	)

	rec := serve(h, http.MethodGet, "/api/health", "", map[string]string{"Origin": "https://b.example"})
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestAPIServer_DebugEndpoint(t *testing.T) {
	t.Run("disabled by default", func(t *testing.T) {
		h := testHandler(t, &mockChecker{}, WithWebUI(false))

		rec := serve(h, http.MethodPost, DebugRawBodyPath, "url=example.com", nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("enabled", func(t *testing.T) {
		h := testHandler(t, &mockChecker{}, WithDebugEndpoint(true))

		rec := serve(h, http.MethodPost, DebugRawBodyPath, "url=example.com", map[string]string{
			"Content-Type": "application/x-www-form-urlencoded",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `{"receivedBody":"url=example.com"}`, rec.Body.String())
	})
}

func TestAPIServer_Metrics(t *testing.T) {
	h := testHandler(t, &mockChecker{})

	rec := serve(h, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(h, http.MethodGet, MetricsPath, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `urlprobe_http_requests_total{method="GET",route="/api/health",status="200"} 1`)
}

func TestAPIServer_MCPHandler(t *testing.T) {
	mcp := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	h := testHandler(t, &mockChecker{}, WithMCPHandler(mcp))

	rec := serve(h, http.MethodPost, MCPPath, `{}`, jsonHeaders)
	require.Equal(t, http.StatusAccepted, rec.Code)
}

func TestAPIServer_WebUIAndDocs(t *testing.T) {
	h := testHandler(t, &mockChecker{})

	rec := serve(h, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	rec = serve(h, http.MethodGet, "/openapi.json", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "/api/check-url")
	require.Contains(t, rec.Body.String(), "/api/health")

	rec = serve(h, http.MethodGet, "/docs", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIServer_Start_GracefulShutdown(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	deps, err := NewAPIDependencies(hclog.NewNullLogger(), &mockChecker{}, metrics.New(), addr)
	require.NoError(t, err)
	server, err := NewAPIServer(deps, WithShutdownTimeout(time.Second))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- server.Start(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get(fmt.Sprintf("http://%s/api/health", addr))
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestAPIServer_Start_AddressInUse(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	deps, err := NewAPIDependencies(hclog.NewNullLogger(), &mockChecker{}, metrics.New(), l.Addr().String())
	require.NoError(t, err)
	server, err := NewAPIServer(deps)
	require.NoError(t, err)

	err = server.Start(context.Background())
	require.Error(t, err)
}

func TestHasPathPrefix(t *testing.T) {
	t.Parallel()

	require.True(t, hasPathPrefix("/api", "/api"))
	require.True(t, hasPathPrefix("/api/health", "/api"))
	require.False(t, hasPathPrefix("/apiary", "/api"))
	require.False(t, hasPathPrefix("/metrics", "/api"))
}

func TestMapError(t *testing.T) {
	t.Parallel()

	logger := hclog.NewNullLogger()

	tests := []struct {
		name            string
		status          int
		msg             string
		err             error
		expectedStatus  int
		expectedMessage string
	}{
		{
			name:            "ErrMissingURL maps to 400 with the missing field message",
			status:          http.StatusInternalServerError,
			err:             fmt.Errorf("%w: %w", errors.ErrBadRequest, errors.ErrMissingURL),
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: api.MessageMissingURL,
		},
		{
			name:            "ErrInvalidURL maps to 400",
			status:          http.StatusInternalServerError,
			err:             errors.ErrInvalidURL,
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "invalid url",
		},
		{
			name:            "ErrBadRequest maps to 400",
			status:          http.StatusInternalServerError,
			err:             errors.ErrBadRequest,
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "bad request",
		},
		{
			name:            "API error keeps its status",
			status:          http.StatusInternalServerError,
			err:             api.NewErrorResponse(http.StatusRequestEntityTooLarge, "Request body too large"),
			expectedStatus:  http.StatusRequestEntityTooLarge,
			expectedMessage: "Request body too large",
		},
		{
			name:            "validation errors keep their status",
			status:          http.StatusUnprocessableEntity,
			msg:             "validation failed",
			err:             fmt.Errorf("expected string"),
			expectedStatus:  http.StatusUnprocessableEntity,
			expectedMessage: "validation failed: expected string",
		},
		{
			name:            "Unknown error maps to 500",
			status:          http.StatusInternalServerError,
			msg:             "unexpected error occurred",
			err:             fmt.Errorf("unknown error"),
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: "Internal server error",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			statusErr := mapError(logger, tc.status, tc.msg, tc.err)
			require.Equal(t, tc.expectedStatus, statusErr.GetStatus())
			require.Equal(t, tc.expectedMessage, statusErr.Error())
		})
	}
}

func TestErrorHandler(t *testing.T) {
	t.Parallel()

	handler := errorHandler(hclog.NewNullLogger())

	noErrs := handler(nil, http.StatusNotFound, "Not found")
	require.Equal(t, http.StatusNotFound, noErrs.GetStatus())
	require.Equal(t, "Not found", noErrs.Error())

	single := handler(nil, http.StatusInternalServerError, "", errors.ErrMissingURL)
	require.Equal(t, http.StatusBadRequest, single.GetStatus())

	multi := handler(nil, http.StatusUnprocessableEntity, "validation failed", fmt.Errorf("a"), fmt.Errorf("b"))
	require.Equal(t, http.StatusUnprocessableEntity, multi.GetStatus())
	require.Equal(t, "validation failed: a\nb", multi.Error())
}
