package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirCajaRequest struct {
	MontoInicial decimal.Decimal `json:"monto_inicial" validate:"min=0"`
}

type CerrarCajaRequest struct {
	SesionCajaID string          `json:"sesion_caja_id" validate:"required,uuid"`
	MontoContado decimal.Decimal `json:"monto_contado"  validate:"min=0"`
}

type MovimientoManualRequest struct {
	SesionCajaID string          `json:"sesion_caja_id" validate:"required,uuid"`
	Tipo         string          `json:"tipo"           validate:"required,oneof=ingreso egreso"`
	Monto        decimal.Decimal `json:"monto"          validate:"required,gt=0"`
	Descripcion  string          `json:"descripcion"    validate:"required,min=3"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// CierreCajaResponse carries the reconciliation result of a close.
// Diferencia: positive = surplus, negative = shortfall.
type CierreCajaResponse struct {
	SesionCajaID   string          `json:"sesion_caja_id"`
	MontoInicial   decimal.Decimal `json:"monto_inicial"`
	VentasEfectivo decimal.Decimal `json:"ventas_efectivo"`
	VentasTarjeta  decimal.Decimal `json:"ventas_tarjeta"`
	MontoEsperado  decimal.Decimal `json:"monto_esperado"`
	MontoContado   decimal.Decimal `json:"monto_contado"`
	Diferencia     decimal.Decimal `json:"diferencia"`
	Estado         string          `json:"estado"`
}

type MovimientoCajaResponse struct {
	ID          string          `json:"id"`
	Tipo        string          `json:"tipo"`
	Monto       decimal.Decimal `json:"monto"`
	Descripcion string          `json:"descripcion"`
	CreatedAt   string          `json:"created_at"`
}

type SesionCajaResponse struct {
	SesionCajaID string          `json:"sesion_caja_id"`
	UsuarioID    string          `json:"usuario_id"`
	Fecha        string          `json:"fecha"`
	MontoInicial decimal.Decimal `json:"monto_inicial"`
	Estado       string          `json:"estado"`
	// Manual movement aggregates — informational; they are not part of the
	// monto_esperado formula.
	TotalIngresos decimal.Decimal          `json:"total_ingresos"`
	TotalEgresos  decimal.Decimal          `json:"total_egresos"`
	Movimientos   []MovimientoCajaResponse `json:"movimientos"`
	// Close-time figures — nil while the session is open.
	VentasEfectivo *decimal.Decimal `json:"ventas_efectivo"`
	VentasTarjeta  *decimal.Decimal `json:"ventas_tarjeta"`
	MontoEsperado  *decimal.Decimal `json:"monto_esperado"`
	MontoContado   *decimal.Decimal `json:"monto_contado"`
	Diferencia     *decimal.Decimal `json:"diferencia"`
	OpenedAt       string           `json:"opened_at"`
	ClosedAt       *string          `json:"closed_at"`
}

type SesionCajaListResponse struct {
	Data  []SesionCajaResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}
