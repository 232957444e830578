package handler

import (
	"net/http"
	"strconv"

	"puntoventa/internal/apierror"
	"puntoventa/internal/dto"
	"puntoventa/internal/middleware"
	"puntoventa/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CajaHandler struct{ svc service.CajaService }

func NewCajaHandler(svc service.CajaService) *CajaHandler { return &CajaHandler{svc: svc} }

// Abrir godoc
// @Summary Abre una nueva sesión de caja
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AbrirCajaRequest true "Monto inicial"
// @Success 201 {object} dto.SesionCajaResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/caja/abrir [post]
func (h *CajaHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	usuarioID, err := middleware.UserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token mal formado"))
		return
	}
	resp, err := h.svc.Abrir(c.Request.Context(), usuarioID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Cerrar godoc
// @Summary Cierra la sesión con el conteo físico y devuelve la conciliación
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CerrarCajaRequest true "Monto contado"
// @Success 200 {object} dto.CierreCajaResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/caja/cerrar [post]
func (h *CajaHandler) Cerrar(c *gin.Context) {
	var req dto.CerrarCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Cerrar(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegistrarMovimiento godoc
// @Summary Registra un ingreso o egreso manual en caja
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.MovimientoManualRequest true "Movimiento manual"
// @Success 201 {object} dto.MovimientoCajaResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/caja/movimiento [post]
func (h *CajaHandler) RegistrarMovimiento(c *gin.Context) {
	var req dto.MovimientoManualRequest
	if !bindAndValidate(c, &req) {
		return
	}
	usuarioID, err := middleware.UserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token mal formado"))
		return
	}
	resp, err := h.svc.RegistrarMovimiento(c.Request.Context(), usuarioID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ObtenerReporte returns the session report: movements, aggregates and
// reconciliation figures when closed.
func (h *CajaHandler) ObtenerReporte(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.Reporte(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetActiva returns the currently open cash session for the authenticated user.
func (h *CajaHandler) GetActiva(c *gin.Context) {
	usuarioID, err := middleware.UserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token mal formado"))
		return
	}
	resp, err := h.svc.SesionActiva(c.Request.Context(), usuarioID)
	if err != nil {
		respondError(c, err)
		return
	}
	if resp == nil {
		c.JSON(http.StatusNotFound, apierror.New("Sin sesión activa"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Historial returns a paginated list of cash sessions.
func (h *CajaHandler) Historial(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	resp, err := h.svc.Historial(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
