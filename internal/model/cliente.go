package model

import (
	"time"

	"github.com/google/uuid"
)

// Cliente is a sale counterparty.
type Cliente struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string    `gorm:"not null"`
	Telefono  *string
	Email     *string
	Direccion *string
	Activo    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
