package observability

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const httpServiceName = "guildwatch"

// EchoMiddleware starts a server span for every request.
func EchoMiddleware() echo.MiddlewareFunc {
	return echo.WrapMiddleware(otelhttp.NewMiddleware(httpServiceName,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	))
}

// HTTPTransport wraps base so outbound requests are traced and carry the
// trace context headers.
func HTTPTransport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return otelhttp.NewTransport(base)
}
