package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// VentaFilter is bound from the query string of GET /v1/ventas.
type VentaFilter struct {
	Fecha        string `form:"fecha"`                     // YYYY-MM-DD; empty = today
	Estado       string `form:"estado,default=completada"` // completada | anulada | all
	SesionCajaID string `form:"sesion_caja_id"`
	Page         int    `form:"page,default=1"   validate:"min=1"`
	Limit        int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemVentaRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"    validate:"required,min=1"`
}

type RegistrarVentaRequest struct {
	SesionCajaID string             `json:"sesion_caja_id" validate:"required,uuid"`
	ClienteID    string             `json:"cliente_id"     validate:"required,uuid"`
	MetodoPago   string             `json:"metodo_pago"    validate:"required,oneof=efectivo tarjeta"`
	Descuento    decimal.Decimal    `json:"descuento"      validate:"min=0"`
	Items        []ItemVentaRequest `json:"items"          validate:"required,min=1,dive"`
}

type AnularVentaRequest struct {
	Motivo string `json:"motivo" validate:"required,min=5"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemVentaResponse struct {
	Producto       string          `json:"producto"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type VentaResponse struct {
	ID           string              `json:"id"`
	Folio        int                 `json:"folio"`
	SesionCajaID string              `json:"sesion_caja_id"`
	ClienteID    string              `json:"cliente_id"`
	UsuarioID    string              `json:"usuario_id"`
	MetodoPago   string              `json:"metodo_pago"`
	Items        []ItemVentaResponse `json:"items"`
	Subtotal     decimal.Decimal     `json:"subtotal"`
	Descuento    decimal.Decimal     `json:"descuento"`
	Impuesto     decimal.Decimal     `json:"impuesto"`
	Total        decimal.Decimal     `json:"total"`
	Estado       string              `json:"estado"`
	CreatedAt    string              `json:"created_at"`
}

type VentaListResponse struct {
	Data  []VentaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
