package middleware

import (
	"fmt"
	"strings"

	"socialvim/internal/observability"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// untracedPrefixes are health check and tooling routes polled often enough to
// drown out API traffic.
var untracedPrefixes = []string{"/health", "/metrics", "/swagger"}

// routeEntities names the entity behind the :id parameter of each route group.
var routeEntities = map[string]string{
	"/posts/":         "post.id",
	"/conversations/": "conversation.id",
	"/notifications/": "notification.id",
}

func untraced(path string) bool {
	for _, prefix := range untracedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// TracingMiddleware starts a server span per API request. The span is renamed
// to the matched route template once routing is done, so /posts/7/like and
// /posts/8/like share the name "POST /posts/:id/like" and carry the post id as
// an attribute instead.
func TracingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if untraced(c.Path()) {
			return c.Next()
		}

		ctx := otel.GetTextMapPropagator().Extract(c.UserContext(), propagation.HeaderCarrier(c.GetReqHeaders()))
		ctx, span := observability.Tracer.Start(ctx, c.Method()+" "+c.Path(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Method()),
				attribute.String("http.url", c.OriginalURL()),
				attribute.String("http.ip", c.IP()),
				attribute.String("http.user_agent", c.Get("User-Agent")),
			),
		)
		defer span.End()

		traceID := span.SpanContext().TraceID().String()
		c.Locals("traceID", traceID)
		c.Locals("spanID", span.SpanContext().SpanID().String())
		c.Set("X-Trace-ID", traceID)

		if requestID := c.Locals("requestid"); requestID != nil {
			span.SetAttributes(attribute.String("request.id", fmt.Sprintf("%v", requestID)))
		}
		if handle := c.Query("handle"); handle != "" {
			span.SetAttributes(attribute.String("user.handle", handle))
		}

		c.SetUserContext(ctx)
		err := c.Next()

		route := c.Route().Path
		span.SetName(c.Method() + " " + route)
		span.SetAttributes(attribute.String("http.route", route))
		for prefix, key := range routeEntities {
			if strings.HasPrefix(route, prefix) {
				if id, perr := c.ParamsInt("id"); perr == nil {
					span.SetAttributes(attribute.Int(key, id))
				}
				break
			}
		}

		status := c.Response().StatusCode()
		span.SetAttributes(attribute.Int("http.status_code", status))
		switch {
		case err != nil:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		case status >= fiber.StatusInternalServerError:
			span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", status))
		}

		return err
	}
}
