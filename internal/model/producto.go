package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Producto is a catalog entry. StockActual is the single piece of shared
// mutable state touched by the ledgers: ventas decrement it, recepciones de
// pedido y entradas manuales lo incrementan, anulaciones lo restauran.
// All stock writes go through guarded UPDATEs (stock_actual >= cantidad)
// inside the owning transaction.
type Producto struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Codigo      string    `gorm:"uniqueIndex;not null"`
	Nombre      string    `gorm:"index;not null"`
	Descripcion *string
	PrecioVenta decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	StockActual int             `gorm:"not null;default:0"`
	StockMinimo int             `gorm:"not null;default:5"`
	CategoriaID *uuid.UUID      `gorm:"type:uuid;index"`
	ProveedorID *uuid.UUID      `gorm:"type:uuid;index"`
	Activo      bool            `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Categoria *Categoria `gorm:"foreignKey:CategoriaID"`
	Proveedor *Proveedor `gorm:"foreignKey:ProveedorID"`
}
