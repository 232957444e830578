package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProductoRequest struct {
	Codigo      string          `json:"codigo"       validate:"required,min=3,max=32"`
	Nombre      string          `json:"nombre"       validate:"required,min=2,max=120"`
	Descripcion *string         `json:"descripcion"`
	PrecioVenta decimal.Decimal `json:"precio_venta" validate:"required"`
	StockActual int             `json:"stock_actual" validate:"min=0"`
	StockMinimo int             `json:"stock_minimo" validate:"min=0"`
	CategoriaID *string         `json:"categoria_id" validate:"omitempty,uuid"`
	ProveedorID *string         `json:"proveedor_id" validate:"omitempty,uuid"`
}

type ActualizarProductoRequest struct {
	Nombre      *string          `json:"nombre"       validate:"omitempty,min=2,max=120"`
	Descripcion *string          `json:"descripcion"`
	PrecioVenta *decimal.Decimal `json:"precio_venta"`
	StockMinimo *int             `json:"stock_minimo" validate:"omitempty,min=0"`
	CategoriaID *string          `json:"categoria_id" validate:"omitempty,uuid"`
	ProveedorID *string          `json:"proveedor_id" validate:"omitempty,uuid"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductoFilter struct {
	Codigo      string `form:"codigo"`
	Nombre      string `form:"nombre"`
	CategoriaID string `form:"categoria_id"`
	ProveedorID string `form:"proveedor_id"`
	Activo      string `form:"activo"` // "false" | "all" | default activos
	Page        int    `form:"page,default=1"  validate:"min=1"`
	Limit       int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID          string          `json:"id"`
	Codigo      string          `json:"codigo"`
	Nombre      string          `json:"nombre"`
	Descripcion *string         `json:"descripcion"`
	PrecioVenta decimal.Decimal `json:"precio_venta"`
	StockActual int             `json:"stock_actual"`
	StockMinimo int             `json:"stock_minimo"`
	CategoriaID *string         `json:"categoria_id"`
	ProveedorID *string         `json:"proveedor_id"`
	Activo      bool            `json:"activo"`
}

type ProductoListResponse struct {
	Data  []ProductoResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

// ConsultaPrecioResponse is returned by the public price check endpoint.
type ConsultaPrecioResponse struct {
	Nombre          string          `json:"nombre"`
	PrecioVenta     decimal.Decimal `json:"precio_venta"`
	StockDisponible int             `json:"stock_disponible"`
}
