package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type noContentRoute struct{}

func (noContentRoute) RegisterRoutes(s *echo.Echo) {
	s.GET("/", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})
}

// Installs a global tracer provider, so it does not run in parallel.
func TestRequestsGetServerSpanWithRequestID(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))

	srv := New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv.RegisterRouter(noContentRoute{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderXRequestID, "req-7")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected one server span, got %d", len(spans))
	}
	if spans[0].Name() != "GET /" {
		t.Fatalf("unexpected span name %q", spans[0].Name())
	}
	found := false
	for _, attr := range spans[0].Attributes() {
		if string(attr.Key) == "request.id" && attr.Value.AsString() == "req-7" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected request.id attribute on span, got %v", spans[0].Attributes())
	}
}
