package model

import (
	"time"

	"github.com/google/uuid"
)

// EntradaInventario is the append-only audit trail of stock increases.
// One row per restocked line, written in the same transaction as the stock
// increment — from a manual restock or from receiving a pedido.
// Rows are never mutated.
type EntradaInventario struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID uuid.UUID `gorm:"type:uuid;not null;index"`
	UsuarioID  uuid.UUID `gorm:"type:uuid;not null"`
	Cantidad   int       `gorm:"not null"`
	Nota       string
	// PedidoID links the entrada to the pedido that produced it; nil for
	// manual restocks.
	PedidoID  *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (EntradaInventario) TableName() string { return "entradas_inventario" }
