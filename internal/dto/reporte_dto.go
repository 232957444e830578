package dto

import "github.com/shopspring/decimal"

// Read-only aggregates consumed by report panels. The core never mutates
// through these.

type VentasPorMetodoResponse struct {
	SesionCajaID string          `json:"sesion_caja_id"`
	Efectivo     decimal.Decimal `json:"efectivo"`
	Tarjeta      decimal.Decimal `json:"tarjeta"`
	Total        decimal.Decimal `json:"total"`
}

type VentasPorRangoRequest struct {
	Desde string `form:"desde" validate:"required,datetime=2006-01-02"`
	Hasta string `form:"hasta" validate:"required,datetime=2006-01-02"`
}

type VentasPorRangoResponse struct {
	Desde       string          `json:"desde"`
	Hasta       string          `json:"hasta"`
	TotalVentas decimal.Decimal `json:"total_ventas"`
	NumVentas   int64           `json:"num_ventas"`
}
