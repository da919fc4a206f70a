package dto

import (
	"fmt"

	"github.com/jhoicas/storefront-api/internal/domain"
)

// Límites de paginación.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// PageRequest paginación por número de página (1-based).
type PageRequest struct {
	Page  int `query:"page"`
	Limit int `query:"limit"`
}

// Normalize aplica defaults y acota Limit a [1, MaxPageLimit].
func (p *PageRequest) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
}

// Offset filas a saltar.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Pagination metadatos de página en respuestas.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NewPagination calcula la cantidad de páginas.
func NewPagination(p PageRequest, total int) Pagination {
	pages := 0
	if p.Limit > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	return Pagination{Page: p.Page, Limit: p.Limit, Total: total, Pages: pages}
}

// ErrorBody detalle del error HTTP. Stack solo se llena fuera de producción.
type ErrorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Status  int            `json:"status"`
	Details map[string]any `json:"details,omitempty"`
	Stack   string         `json:"stack,omitempty"`
}

// ErrorResponse cuerpo de error HTTP: { "error": { code, message, status } }.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// MessageResponse respuesta simple con mensaje.
type MessageResponse struct {
	Message string `json:"message"`
}

// invalid arma un error de validación que el handler traduce a 400.
func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, fmt.Sprintf(format, args...))
}
