package handler

import (
	"net/http"
	"strconv"

	"puntoventa/internal/apierror"
	"puntoventa/internal/dto"
	"puntoventa/internal/middleware"
	"puntoventa/internal/repository"
	"puntoventa/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InventarioHandler struct{ svc service.InventarioService }

func NewInventarioHandler(svc service.InventarioService) *InventarioHandler {
	return &InventarioHandler{svc: svc}
}

// RecibirStock godoc
// @Summary Registra una entrada manual de inventario
// @Tags inventario
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.EntradaInventarioRequest true "Entrada de inventario"
// @Success 201 {object} dto.EntradaInventarioResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/inventario/entradas [post]
func (h *InventarioHandler) RecibirStock(c *gin.Context) {
	var req dto.EntradaInventarioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	usuarioID, err := middleware.UserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token mal formado"))
		return
	}
	resp, err := h.svc.RecibirStock(c.Request.Context(), usuarioID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarEntradas returns the stock-increase audit trail, optionally filtered
// by producto_id or pedido_id.
func (h *InventarioHandler) ListarEntradas(c *gin.Context) {
	var filter repository.EntradaInventarioFilter
	if s := c.Query("producto_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("producto_id inválido"))
			return
		}
		filter.ProductoID = &id
	}
	if s := c.Query("pedido_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("pedido_id inválido"))
			return
		}
		filter.PedidoID = &id
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "100"))

	resp, err := h.svc.ListarEntradas(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerAlertas godoc
// @Summary Lista productos con stock en o bajo su mínimo
// @Tags inventario
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.AlertaStockResponse
// @Router /v1/inventario/alertas [get]
func (h *InventarioHandler) ObtenerAlertas(c *gin.Context) {
	resp, err := h.svc.ObtenerAlertas(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
