package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"puntoventa/internal/apierror"
	"puntoventa/internal/dto"
	"puntoventa/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const precioCacheTTL = 4 * time.Hour

// ConsultaPreciosHandler serves the public price check endpoint.
// No authentication required — no side effects whatsoever.
type ConsultaPreciosHandler struct {
	repo repository.ProductoRepository
	rdb  *redis.Client
}

func NewConsultaPreciosHandler(repo repository.ProductoRepository, rdb *redis.Client) *ConsultaPreciosHandler {
	return &ConsultaPreciosHandler{repo: repo, rdb: rdb}
}

// GetPrecioPorCodigo godoc
// @Summary Consulta de precio por código de producto (sin autenticación)
// @Tags precio
// @Produce json
// @Param codigo path string true "Código de producto"
// @Success 200 {object} dto.ConsultaPrecioResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/precio/{codigo} [get]
func (h *ConsultaPreciosHandler) GetPrecioPorCodigo(c *gin.Context) {
	codigo := c.Param("codigo")
	ctx := c.Request.Context()
	cacheKey := "precio:" + codigo

	// 1. Try Redis cache
	if cached, err := h.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
		var resp dto.ConsultaPrecioResponse
		if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
			c.JSON(http.StatusOK, resp)
			return
		}
	}

	// 2. Cache miss — query DB
	producto, err := h.repo.FindByCodigo(ctx, codigo)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Producto no encontrado"))
		return
	}

	resp := dto.ConsultaPrecioResponse{
		Nombre:          producto.Nombre,
		PrecioVenta:     producto.PrecioVenta,
		StockDisponible: producto.StockActual,
	}

	// 3. Populate cache — best effort, ignore errors
	if b, jsonErr := json.Marshal(resp); jsonErr == nil {
		_ = h.rdb.Set(context.Background(), cacheKey, b, precioCacheTTL).Err()
	}

	c.JSON(http.StatusOK, resp)
}
