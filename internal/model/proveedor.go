package model

import (
	"time"

	"github.com/google/uuid"
)

// Proveedor represents a supplier. Every pedido references exactly one
// proveedor and all of its lines must belong to that proveedor's catalog.
type Proveedor struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string    `gorm:"not null"`
	RFC       string    `gorm:"column:rfc;uniqueIndex;not null"`
	Telefono  *string
	Email     *string
	Direccion *string
	Activo    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Productos []Producto `gorm:"foreignKey:ProveedorID"`
}

func (Proveedor) TableName() string { return "proveedores" }
