// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/holomush/msgboard/internal/api"

// unmatchedRoute labels requests that matched no route.
const unmatchedRoute = "unmatched"

// instrument wraps each request in a server span, resolves handler errors
// through the error handler and then records the outcome in the metrics and
// the request log.
func (s *Server) instrument(next echo.HandlerFunc) echo.HandlerFunc {
	tracer := otel.Tracer(tracerName)

	return func(c echo.Context) error {
		req := c.Request()
		start := time.Now()

		route := c.Path()
		if route == "" {
			route = unmatchedRoute
		}

		ctx, span := tracer.Start(req.Context(), req.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", req.Method),
				attribute.String("http.route", route),
			))
		defer span.End()
		c.SetRequest(req.WithContext(ctx))

		if err := next(c); err != nil {
			span.RecordError(err)
			c.Error(err)
		}

		status := c.Response().Status
		span.SetAttributes(attribute.Int("http.response.status_code", status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}

		elapsed := time.Since(start)
		s.metrics.ObserveRequest(req.Method, route, status, elapsed)
		s.logger.InfoContext(ctx, "request handled",
			"method", req.Method,
			"route", route,
			"status", status,
			"latency_ms", elapsed.Milliseconds(),
			"remote_ip", c.RealIP())
		return nil
	}
}
