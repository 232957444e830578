package handler

import (
	"net/http"

	"puntoventa/internal/apierror"
	"puntoventa/internal/dto"
	"puntoventa/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReportesHandler serves the read-only aggregate panels. Nothing here mutates.
type ReportesHandler struct{ ventaSvc service.VentaService }

func NewReportesHandler(ventaSvc service.VentaService) *ReportesHandler {
	return &ReportesHandler{ventaSvc: ventaSvc}
}

// VentasPorMetodo godoc
// @Summary Totales de ventas completadas por método de pago para una sesión
// @Tags reportes
// @Produce json
// @Security BearerAuth
// @Param sesion_caja_id query string true "UUID de la sesión de caja"
// @Success 200 {object} dto.VentasPorMetodoResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/reportes/ventas-por-metodo [get]
func (h *ReportesHandler) VentasPorMetodo(c *gin.Context) {
	sesionID, err := uuid.Parse(c.Query("sesion_caja_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("sesion_caja_id inválido"))
		return
	}
	resp, err := h.ventaSvc.TotalesPorMetodo(c.Request.Context(), sesionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// VentasPorRango godoc
// @Summary Suma y conteo de ventas completadas entre dos fechas (inclusive)
// @Tags reportes
// @Produce json
// @Security BearerAuth
// @Param desde query string true "Fecha YYYY-MM-DD"
// @Param hasta query string true "Fecha YYYY-MM-DD"
// @Success 200 {object} dto.VentasPorRangoResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/reportes/ventas [get]
func (h *ReportesHandler) VentasPorRango(c *gin.Context) {
	var req dto.VentasPorRangoRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	if err := validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("rango de fechas inválido (YYYY-MM-DD)"))
		return
	}
	resp, err := h.ventaSvc.VentasPorRango(c.Request.Context(), req.Desde, req.Hasta)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
