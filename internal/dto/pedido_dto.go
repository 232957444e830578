package dto

import "github.com/shopspring/decimal"

// ─── Filter ──────────────────────────────────────────────────────────────────

type PedidoFilter struct {
	Estado      string `form:"estado"` // pendiente | recibido | cancelado | all
	ProveedorID string `form:"proveedor_id"`
	Page        int    `form:"page,default=1"   validate:"min=1"`
	Limit       int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemPedidoRequest struct {
	ProductoID    string          `json:"producto_id"    validate:"required,uuid"`
	Cantidad      int             `json:"cantidad"       validate:"required,min=1"`
	CostoUnitario decimal.Decimal `json:"costo_unitario" validate:"required"`
}

type CrearPedidoRequest struct {
	ProveedorID string              `json:"proveedor_id" validate:"required,uuid"`
	Items       []ItemPedidoRequest `json:"items"        validate:"required,min=1,dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemPedidoResponse struct {
	ProductoID    string          `json:"producto_id"`
	Descripcion   string          `json:"descripcion"`
	Cantidad      int             `json:"cantidad"`
	CostoUnitario decimal.Decimal `json:"costo_unitario"`
}

type PedidoResponse struct {
	ID          string               `json:"id"`
	ProveedorID string               `json:"proveedor_id"`
	Proveedor   string               `json:"proveedor"`
	Estado      string               `json:"estado"`
	Items       []ItemPedidoResponse `json:"items"`
	CreatedAt   string               `json:"created_at"`
	ReceivedAt  *string              `json:"received_at"`
}

type PedidoListResponse struct {
	Data  []PedidoResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}
