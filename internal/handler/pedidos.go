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

type PedidosHandler struct{ svc service.PedidoService }

func NewPedidosHandler(svc service.PedidoService) *PedidosHandler {
	return &PedidosHandler{svc: svc}
}

// Crear godoc
// @Summary Registra un pedido a proveedor
// @Tags pedidos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CrearPedidoRequest true "Detalle del pedido"
// @Success 201 {object} dto.PedidoResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/pedidos [post]
func (h *PedidosHandler) Crear(c *gin.Context) {
	var req dto.CrearPedidoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	usuarioID, err := middleware.UserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token mal formado"))
		return
	}
	resp, err := h.svc.RegistrarPedido(c.Request.Context(), usuarioID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Recibir godoc
// @Summary Marca un pedido como recibido e incrementa el inventario
// @Description Idempotente: una segunda recepción responde 409 y no vuelve a sumar stock.
// @Tags pedidos
// @Produce json
// @Security BearerAuth
// @Param id path string true "UUID del pedido"
// @Success 200 {object} dto.PedidoResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/pedidos/{id}/recibir [post]
func (h *PedidosHandler) Recibir(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	usuarioID, err := middleware.UserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token mal formado"))
		return
	}
	resp, err := h.svc.RecibirPedido(c.Request.Context(), usuarioID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancelar godoc
// @Summary Cancela un pedido pendiente
// @Tags pedidos
// @Produce json
// @Security BearerAuth
// @Param id path string true "UUID del pedido"
// @Success 204
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/pedidos/{id} [delete]
func (h *PedidosHandler) Cancelar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	if err := h.svc.CancelarPedido(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Obtener returns one purchase order with its lines.
func (h *PedidosHandler) Obtener(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.ObtenerPedido(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Listar returns a paginated list filtered by estado and proveedor.
func (h *PedidosHandler) Listar(c *gin.Context) {
	var filter dto.PedidoFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.ListPedidos(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
