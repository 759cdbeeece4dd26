package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"
	"go.opentelemetry.io/otel/trace"
)

func TestRequireInternalJobTokenRejectsWhenUnconfigured(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not run")
	})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/grade", nil)
	request.Header.Set("X-Internal-Job-Token", "anything")

	RequireInternalJobToken("", next).ServeHTTP(recorder, request)

	if recorder.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", recorder.Code)
	}
}

func TestRequireInternalJobTokenRejectsMismatch(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not run")
	})

	for _, provided := range []string{"", "wrong-token"} {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/grade", nil)
		if provided != "" {
			request.Header.Set("X-Internal-Job-Token", provided)
		}

		RequireInternalJobToken("secret", next).ServeHTTP(recorder, request)

		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("token %q: expected 401, got %d", provided, recorder.Code)
		}

		var envelope googleResponseEnvelope
		if err := sonic.Unmarshal(recorder.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if envelope.Error == nil || envelope.Error.Status != "UNAUTHENTICATED" {
			t.Fatalf("expected UNAUTHENTICATED error, got %+v", envelope.Error)
		}
	}
}

func TestRequireInternalJobTokenAllowsMatch(t *testing.T) {
	t.Parallel()

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/grade", nil)
	request.Header.Set("X-Internal-Job-Token", "  secret  ")

	RequireInternalJobToken("secret", next).ServeHTTP(recorder, request)

	if !called {
		t.Fatal("expected next handler to run")
	}
	if recorder.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", recorder.Code)
	}
}

func TestShouldTraceRequestSkipsHealthEndpoints(t *testing.T) {
	t.Parallel()

	for _, path := range []string{"/healthz", "/health", "/livez", "/readyz", " /HEALTHZ "} {
		if shouldTraceRequest(path) {
			t.Fatalf("expected %q to be excluded from tracing", path)
		}
	}
	if !shouldTraceRequest("/v1/internal/jobs/grade") {
		t.Fatal("expected job route to be traced")
	}
}

func TestStartSpanWithoutParentReturnsNoop(t *testing.T) {
	t.Parallel()

	ctx, span := startSpan(context.Background(), "httpapi.Handler.RunGradingJob")
	defer span.End()

	if span.SpanContext().IsValid() {
		t.Fatal("expected noop span without a parent")
	}
	if got := trace.SpanFromContext(ctx); got.SpanContext().IsValid() {
		t.Fatal("context should not carry a recording span")
	}
}
