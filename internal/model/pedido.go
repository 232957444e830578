package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Pedido is a purchase order to a supplier.
// Estado: "pendiente" | "recibido" | "cancelado" — recibido and cancelado
// are terminal. Stock is only touched when the pedido is received.
type Pedido struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProveedorID uuid.UUID `gorm:"type:uuid;index;not null"`
	UsuarioID   uuid.UUID `gorm:"type:uuid;not null"`
	Estado      string    `gorm:"type:varchar(20);not null;default:'pendiente'"`
	CreatedAt   time.Time
	ReceivedAt  *time.Time

	Items     []PedidoItem `gorm:"foreignKey:PedidoID"`
	Proveedor *Proveedor   `gorm:"foreignKey:ProveedorID"`
}

// PedidoItem is one ordered line. Descripcion snapshots the product name at
// order time so the historical record survives catalog renames.
type PedidoItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PedidoID      uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductoID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	Cantidad      int             `gorm:"not null"`
	CostoUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Descripcion   string          `gorm:"not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (PedidoItem) TableName() string { return "pedido_items" }
