package handler

import (
	"net/http"

	"puntoventa/internal/apierror"
	"puntoventa/internal/dto"
	"puntoventa/internal/middleware"
	"puntoventa/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type VentasHandler struct{ svc service.VentaService }

func NewVentasHandler(svc service.VentaService) *VentasHandler { return &VentasHandler{svc: svc} }

// RegistrarVenta godoc
// @Summary      Registrar una nueva venta
// @Description  Crea una venta ACID: asigna folio, descuenta stock con guardas y calcula IVA 16%.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RegistrarVentaRequest true "Detalle de la venta"
// @Success      201  {object} dto.VentaResponse
// @Failure      400  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/ventas [post]
func (h *VentasHandler) RegistrarVenta(c *gin.Context) {
	var req dto.RegistrarVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	usuarioID, err := middleware.UserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token mal formado"))
		return
	}

	resp, err := h.svc.RegistrarVenta(c.Request.Context(), usuarioID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// AnularVenta godoc
// @Summary      Anular venta
// @Description  Anula una venta: restaura stock, registra entradas de auditoría y pone los montos en cero.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string                 true "UUID de la venta"
// @Param        body body     dto.AnularVentaRequest true "Motivo de anulación"
// @Success      204
// @Failure      400  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/ventas/{id} [delete]
func (h *VentasHandler) AnularVenta(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req dto.AnularVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	usuarioID, err := middleware.UserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token mal formado"))
		return
	}
	if err := h.svc.AnularVenta(c.Request.Context(), usuarioID, id, req.Motivo); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ObtenerVenta returns one sale with its lines.
func (h *VentasHandler) ObtenerVenta(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.ObtenerVenta(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarVentas godoc
// @Summary      Listar ventas
// @Description  Retorna lista paginada de ventas filtrada por fecha y estado.
// @Tags         ventas
// @Produce      json
// @Security     BearerAuth
// @Param        fecha  query string false "Fecha YYYY-MM-DD (default: hoy)"
// @Param        estado query string false "completada | anulada | all"
// @Param        page   query int    false "Página (default 1)"
// @Param        limit  query int    false "Registros por página (default 50)"
// @Success      200    {object} dto.VentaListResponse
// @Failure      400    {object} apierror.APIError
// @Router       /v1/ventas [get]
func (h *VentasHandler) ListarVentas(c *gin.Context) {
	var filter dto.VentaFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.ListVentas(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
