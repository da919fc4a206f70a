package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/storefront-api/internal/application/catalog"
	"github.com/jhoicas/storefront-api/internal/application/dto"
	"github.com/jhoicas/storefront-api/internal/application/usecase"
)

// ProductHandler catálogo: lectura pública y administración.
type ProductHandler struct {
	uc   *usecase.ProductUseCase
	sync *catalog.SyncUseCase
}

// NewProductHandler construye el handler. sync puede ser nil si Shopify no está configurado.
func NewProductHandler(uc *usecase.ProductUseCase, sync *catalog.SyncUseCase) *ProductHandler {
	return &ProductHandler{uc: uc, sync: sync}
}

// List godoc
// @Summary      Listar productos
// @Description  Sin token solo se ven productos activos. Un admin puede filtrar por cualquier status.
// @Tags         products
// @Produce      json
// @Param        category  query  string  false  "Categoría"
// @Param        tags      query  string  false  "Tags separados por coma"
// @Param        status    query  string  false  "active, draft o archived (admin)"
// @Param        search    query  string  false  "Texto en título o descripción"
// @Param        page      query  int     false  "Página (1-based)"
// @Param        limit     query  int     false  "Tamaño de página (máx. 100)"
// @Success      200  {object}  dto.ProductListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	var q dto.ListProductsQuery
	if err := c.QueryParser(&q); err != nil {
		return fail(c, fiber.StatusBadRequest, CodeValidation, "query inválida")
	}
	q.Tags = splitTags(q.Tags)
	out, err := h.uc.List(c.UserContext(), q, IsAdmin(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// splitTags acepta ?tags=a,b y ?tags=a&tags=b.
func splitTags(raw []string) []string {
	var out []string
	for _, r := range raw {
		for _, t := range strings.Split(r, ",") {
			if t = strings.TrimSpace(t); t != "" {
				out = append(out, t)
			}
		}
	}
	return out
}

// GetByID godoc
// @Summary      Obtener producto por ID
// @Tags         products
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"), IsAdmin(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear producto
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "Datos del producto"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Actualizar producto
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID del producto"
// @Param        body  body  dto.UpdateProductRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{id} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Archive godoc
// @Summary      Archivar producto (borrado lógico)
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [delete]
func (h *ProductHandler) Archive(c *fiber.Ctx) error {
	out, err := h.uc.Archive(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Sync godoc
// @Summary      Sincronizar catálogo desde Shopify
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SyncReport
// @Failure      500  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/products/sync/shopify [post]
func (h *ProductHandler) Sync(c *fiber.Ctx) error {
	if h.sync == nil {
		return fail(c, fiber.StatusServiceUnavailable, CodeUnavailable, "sincronización con Shopify no configurada")
	}
	report, err := h.sync.SyncAll(c.UserContext())
	if err != nil {
		if report != nil {
			return withDetails(err, map[string]any{"report": report})
		}
		return err
	}
	return c.JSON(report)
}
