package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

// EntradaInventarioRequest registers a direct manual restock (goods received
// outside a pedido).
type EntradaInventarioRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"    validate:"required,min=1"`
	Nota       string `json:"nota"        validate:"required,min=3"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type EntradaInventarioResponse struct {
	ID         string  `json:"id"`
	ProductoID string  `json:"producto_id"`
	Producto   string  `json:"producto"`
	Cantidad   int     `json:"cantidad"`
	Nota       string  `json:"nota"`
	PedidoID   *string `json:"pedido_id"`
	CreatedAt  string  `json:"created_at"`
}

type EntradaInventarioListResponse struct {
	Data  []EntradaInventarioResponse `json:"data"`
	Total int64                       `json:"total"`
}

// AlertaStockResponse flags a product at or below its minimum threshold.
type AlertaStockResponse struct {
	ProductoID  string `json:"producto_id"`
	Codigo      string `json:"codigo"`
	Nombre      string `json:"nombre"`
	StockActual int    `json:"stock_actual"`
	StockMinimo int    `json:"stock_minimo"`
}
