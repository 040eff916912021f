package web

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func Test_RequestIDInjector(t *testing.T) {
	testCases := []struct {
		name     string
		incoming string
	}{
		{name: "Generates a UUID", incoming: ""},
		{name: "Reuses the incoming header", incoming: "req-42"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			var seen string
			h := RequestIDInjector(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				seen = middleware.GetReqID(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.incoming != "" {
				req.Header.Set(RequestIDHeader, tc.incoming)
			}
			rr := httptest.NewRecorder()

			// when
			h.ServeHTTP(rr, req)

			// then
			assert.Equal(t, seen, rr.Header().Get(RequestIDHeader))
			if tc.incoming != "" {
				assert.Equal(t, tc.incoming, seen)
				return
			}
			_, err := uuid.Parse(seen)
			assert.NoError(t, err)
		})
	}
}

func Test_StructuredLogger(t *testing.T) {
	// given
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	h := RequestIDInjector(StructuredLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	// when
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/products?page=2", nil))

	// then
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"msg":"Request received"`)
	assert.Contains(t, lines[0], `"url":"/api/products?page=2"`)
	assert.Contains(t, lines[1], `"msg":"Request completed"`)
	assert.Contains(t, lines[1], `"status":418`)
}

func Test_Recoverer(t *testing.T) {
	h := Recoverer(newTestResponder())(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		panic("kaboom")
	}))
	rr := httptest.NewRecorder()

	require.NotPanics(t, func() {
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"status":"error","message":"panic: kaboom"}`, rr.Body.String())
}

func Test_Recoverer_RepanicsAbort(t *testing.T) {
	h := Recoverer(newTestResponder())(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.Panics(t, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func Test_Metrics_Middleware(t *testing.T) {
	// given
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	r := chi.NewRouter()
	r.Use(m.Middleware(DefaultMetricsPath))
	r.Get("/api/products/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get(DefaultMetricsPath, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// when
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/products/a", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/products/b", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, DefaultMetricsPath, nil))

	// then
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues(http.MethodGet, "/api/products/{id}", "200")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestsTotal), "metrics path should not be recorded")
	assert.Equal(t, 0.0, testutil.ToFloat64(m.InflightRequests))
}

func Test_Trace(t *testing.T) {
	const traceparent = "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"

	testCases := []struct {
		name           string
		path           string
		traceparent    string
		expectedName   string
		expectedStatus codes.Code
		expectedSpans  int
	}{
		{name: "Span named after the route pattern", path: "/api/products/42", expectedName: "GET /api/products/{id}", expectedStatus: codes.Unset, expectedSpans: 1},
		{name: "Continues the incoming trace", path: "/api/products/42", traceparent: traceparent, expectedName: "GET /api/products/{id}", expectedStatus: codes.Unset, expectedSpans: 1},
		{name: "Error status for failed requests", path: "/api/products/missing", expectedName: "GET /api/products/{id}", expectedStatus: codes.Error, expectedSpans: 1},
		{name: "Skipped path", path: DefaultMetricsPath, expectedSpans: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			recorder := tracetest.NewSpanRecorder()
			tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
			propagator := propagation.TraceContext{}
			var handlerSpan trace.SpanContext

			r := chi.NewRouter()
			r.Use(Trace(tp.Tracer("test"), propagator, DefaultMetricsPath))
			r.Get("/api/products/{id}", func(w http.ResponseWriter, r *http.Request) {
				handlerSpan = trace.SpanContextFromContext(r.Context())
				if chi.URLParam(r, "id") == "missing" {
					w.WriteHeader(http.StatusNotFound)
					return
				}
				w.WriteHeader(http.StatusOK)
			})
			r.Get(DefaultMetricsPath, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.traceparent != "" {
				req.Header.Set("traceparent", tc.traceparent)
			}

			// when
			r.ServeHTTP(httptest.NewRecorder(), req)

			// then
			spans := recorder.Ended()
			require.Len(t, spans, tc.expectedSpans)
			if tc.expectedSpans == 0 {
				return
			}
			span := spans[0]
			assert.Equal(t, tc.expectedName, span.Name())
			assert.Equal(t, trace.SpanKindServer, span.SpanKind())
			assert.Equal(t, tc.expectedStatus, span.Status().Code)
			assert.Equal(t, span.SpanContext(), handlerSpan, "handler should see the server span")
			if tc.traceparent != "" {
				assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", span.SpanContext().TraceID().String())
				assert.Equal(t, "00f067aa0ba902b7", span.Parent().SpanID().String())
			}
		})
	}
}
