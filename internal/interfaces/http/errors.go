package http

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/storefront-api/internal/application/dto"
	"github.com/jhoicas/storefront-api/internal/application/ordering"
	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/pkg/logger"
)

// Códigos de error del envelope { "error": { code, message, status } }.
const (
	CodeInvalidBody      = "INVALID_BODY"
	CodeValidation       = "VALIDATION_ERROR"
	CodeInvalidState     = "INVALID_TRANSITION"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeMissingToken     = "MISSING_TOKEN"
	CodeInvalidToken     = "INVALID_TOKEN"
	CodeMissingRole      = "MISSING_ROLE"
	CodeForbidden        = "FORBIDDEN"
	CodeNotFound         = "NOT_FOUND"
	CodeConflict         = "CONFLICT"
	CodeEmailExists      = "EMAIL_EXISTS"
	CodeDuplicate        = "DUPLICATE"
	CodeInvalidSignature = "INVALID_SIGNATURE"
	CodeUpstream         = "UPSTREAM_FAILURE"
	CodeUnavailable      = "SERVICE_UNAVAILABLE"
	CodeInternal         = "INTERNAL"
)

const msgUpstream = "un servicio externo no respondió correctamente; intenta de nuevo más tarde"

// errorSpec status y código HTTP de un error de dominio.
type errorSpec struct {
	status int
	code   string
}

// classify traduce sentinels de dominio a status/código. El orden importa: el primero que matchea gana.
func classify(err error) (errorSpec, bool) {
	table := []struct {
		target error
		spec   errorSpec
	}{
		{domain.ErrInvalidSignature, errorSpec{fiber.StatusBadRequest, CodeInvalidSignature}},
		{domain.ErrInvalidInput, errorSpec{fiber.StatusBadRequest, CodeValidation}},
		{domain.ErrInvalidTransition, errorSpec{fiber.StatusBadRequest, CodeInvalidState}},
		{domain.ErrUnauthorized, errorSpec{fiber.StatusUnauthorized, CodeUnauthorized}},
		{domain.ErrForbidden, errorSpec{fiber.StatusForbidden, CodeForbidden}},
		{domain.ErrNotFound, errorSpec{fiber.StatusNotFound, CodeNotFound}},
		{domain.ErrEmailAlreadyExists, errorSpec{fiber.StatusConflict, CodeEmailExists}},
		{domain.ErrDuplicate, errorSpec{fiber.StatusConflict, CodeDuplicate}},
		{domain.ErrConflict, errorSpec{fiber.StatusConflict, CodeConflict}},
		{domain.ErrUpstream, errorSpec{fiber.StatusInternalServerError, CodeUpstream}},
		{ordering.ErrReceiptsDisabled, errorSpec{fiber.StatusServiceUnavailable, CodeUnavailable}},
	}
	for _, t := range table {
		if errors.Is(err, t.target) {
			return t.spec, true
		}
	}
	return errorSpec{}, false
}

// errorWriter arma respuestas de error con el mismo envelope en toda la API.
type errorWriter struct {
	log          *logger.Logger
	exposeStacks bool
}

func newErrorWriter(log *logger.Logger, isProduction bool) *errorWriter {
	if log == nil {
		log = logger.Nop()
	}
	return &errorWriter{log: log, exposeStacks: !isProduction}
}

// detailedError agrega datos al envelope (por ejemplo la orden ya creada cuando falla la pasarela).
type detailedError struct {
	err     error
	details map[string]any
}

func (e *detailedError) Error() string { return e.err.Error() }
func (e *detailedError) Unwrap() error { return e.err }

func withDetails(err error, details map[string]any) error {
	return &detailedError{err: err, details: details}
}

// respond escribe el envelope para err. Los errores no clasificados se loguean con stack y salen como 500 INTERNAL.
func (w *errorWriter) respond(c *fiber.Ctx, err error) error {
	spec, known := classify(err)
	body := dto.ErrorBody{}
	var de *detailedError
	if errors.As(err, &de) {
		body.Details = de.details
	}
	switch {
	case known:
		body.Code, body.Status, body.Message = spec.code, spec.status, err.Error()
		if spec.code == CodeUpstream {
			w.log.Error().Err(err).Str("path", c.Path()).Str("request_id", requestID(c)).Msg("fallo en servicio externo")
			// el texto trae la respuesta cruda de Stripe/Shopify; en producción solo queda en el log
			if !w.exposeStacks {
				body.Message = msgUpstream
			}
		}
	default:
		var fe *fiber.Error
		if errors.As(err, &fe) {
			body.Status, body.Message = fe.Code, fe.Message
			body.Code = codeForStatus(fe.Code)
			break
		}
		stack := string(debug.Stack())
		w.log.Error().Err(err).Str("path", c.Path()).Str("request_id", requestID(c)).Msg("error interno")
		body.Code, body.Status, body.Message = CodeInternal, fiber.StatusInternalServerError, "error interno del servidor"
		if w.exposeStacks {
			body.Message = err.Error()
			body.Stack = stack
		}
	}
	return c.Status(body.Status).JSON(dto.ErrorResponse{Error: body})
}

// ErrorHandler fiber.ErrorHandler: cualquier error que llegue hasta fiber sale con el envelope.
func (w *errorWriter) ErrorHandler(c *fiber.Ctx, err error) error {
	return w.respond(c, err)
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
		return CodeInvalidBody
	case fiber.StatusUnauthorized:
		return CodeUnauthorized
	case fiber.StatusForbidden:
		return CodeForbidden
	case fiber.StatusNotFound:
		return CodeNotFound
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	}
	return fmt.Sprintf("HTTP_%d", status)
}

// NewErrorHandler handler de errores de la app fiber. Stack traces solo fuera de producción.
func NewErrorHandler(log *logger.Logger, isProduction bool) fiber.ErrorHandler {
	return newErrorWriter(log, isProduction).ErrorHandler
}

// fail respuesta de error sin pasar por un error de dominio (middlewares).
func fail(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: dto.ErrorBody{Code: code, Message: message, Status: status}})
}

// badBody 400 cuando el JSON no se puede parsear.
func badBody(c *fiber.Ctx) error {
	return fail(c, fiber.StatusBadRequest, CodeInvalidBody, "cuerpo inválido")
}
