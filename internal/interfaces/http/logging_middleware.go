package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/storefront-api/internal/infrastructure/metrics"
	"github.com/jhoicas/storefront-api/pkg/logger"
)

// HeaderRequestID header de correlación que se devuelve en cada respuesta.
const HeaderRequestID = "X-Request-ID"

const localRequestID = "requestid"

var httpTracer = otel.Tracer("github.com/jhoicas/storefront-api/internal/interfaces/http")

// RequestLogger extrae el trace context W3C, abre un span por request, escribe una línea de log
// al terminar y alimenta las métricas HTTP. La ruta de métricas es el template registrado, no el path.
func RequestLogger(log *logger.Logger, m *metrics.Metrics) fiber.Handler {
	if log == nil {
		log = logger.Nop()
	}
	log = log.Named("http")
	prop := otel.GetTextMapPropagator()

	return func(c *fiber.Ctx) error {
		start := time.Now()

		headers := make(propagation.MapCarrier)
		c.Request().Header.VisitAll(func(k, v []byte) {
			headers.Set(string(k), string(v))
		})
		ctx := prop.Extract(c.UserContext(), headers)
		ctx, span := httpTracer.Start(ctx, c.Method()+" "+c.Path(), trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()
		c.SetUserContext(ctx)

		rid := requestID(c)
		if rid == "" {
			rid = uuid.NewString()
			c.Locals(localRequestID, rid)
		}
		c.Set(HeaderRequestID, rid)

		chainErr := c.Next()
		if chainErr != nil {
			// el error handler escribe el envelope y fija el status real
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		route := c.Route().Path
		elapsed := time.Since(start)

		span.SetName(c.Method() + " " + route)
		span.SetAttributes(
			attribute.String("http.method", c.Method()),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
			attribute.String("request.id", rid),
		)
		if status >= fiber.StatusInternalServerError {
			span.SetStatus(codes.Error, "server error")
		}
		m.ObserveHTTP(c.Method(), route, status, elapsed)

		ev := log.Info()
		switch {
		case status >= fiber.StatusInternalServerError:
			ev = log.Error()
		case status >= fiber.StatusBadRequest:
			ev = log.Warn()
		}
		ev = ev.Str("method", c.Method()).Str("path", c.Path()).Str("route", route).
			Int("status", status).Dur("latency", elapsed).Str("request_id", rid)
		if sc := span.SpanContext(); sc.IsValid() {
			ev = ev.Str("trace_id", sc.TraceID().String())
		}
		ev.Msg("request")
		return nil
	}
}

// requestID id de la request: el del middleware requestid de fiber, el propio, o el header entrante.
func requestID(c *fiber.Ctx) string {
	if rid, ok := c.Locals(localRequestID).(string); ok && rid != "" {
		return rid
	}
	return c.Get(HeaderRequestID)
}
