package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Logging writes one access line per request. Requests to quiet paths
// (probes, scrapes) drop to debug unless they fail.
func Logging(log zerolog.Logger, quiet ...string) gin.HandlerFunc {
	quietPaths := pathSet(quiet)

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		_, isQuiet := quietPaths[c.Request.URL.Path]

		event := log.WithLevel(accessLevel(status, isQuiet)).
			Str("method", c.Request.Method).
			Str("route", routeLabel(c)).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Str("request_id", RequestIDFromContext(c))

		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.IsValid() {
			event = event.Str("trace_id", sc.TraceID().String()).Str("span_id", sc.SpanID().String())
		}
		if len(c.Errors) > 0 {
			event = event.Str("error", c.Errors.String())
		}
		// the query string is never logged; Telegram sends none and it may carry secrets
		event.Msg("http request")
	}
}

func accessLevel(status int, quiet bool) zerolog.Level {
	switch {
	case status >= 500:
		return zerolog.ErrorLevel
	case status >= 400:
		return zerolog.WarnLevel
	case quiet:
		return zerolog.DebugLevel
	default:
		return zerolog.InfoLevel
	}
}
