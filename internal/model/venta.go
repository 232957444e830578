package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Venta is a committed sale. Estado: "completada" | "anulada".
// MetodoPago: "efectivo" | "tarjeta".
// A venta is immutable once committed; anulación zeroes the financial
// fields and restores stock but never deletes the historical row.
type Venta struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Folio        int             `gorm:"uniqueIndex;not null"`
	SesionCajaID uuid.UUID       `gorm:"type:uuid;index;not null"`
	ClienteID    uuid.UUID       `gorm:"type:uuid;not null"`
	UsuarioID    uuid.UUID       `gorm:"type:uuid;not null"`
	MetodoPago   string          `gorm:"type:varchar(20);not null"`
	Subtotal     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Descuento    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Impuesto     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Total        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Estado       string          `gorm:"type:varchar(20);not null;default:'completada'"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Items   []VentaItem `gorm:"foreignKey:VentaID"`
	Cliente *Cliente    `gorm:"foreignKey:ClienteID"`
	Usuario *Usuario    `gorm:"foreignKey:UsuarioID"`
}

// VentaItem is one product/quantity/price line of a Venta.
// PrecioUnitario is a snapshot of the catalog price at commit time.
type VentaItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID        uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;index;not null"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (VentaItem) TableName() string { return "venta_items" }
