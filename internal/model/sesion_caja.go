package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SesionCaja represents one cashier's drawer session, from open with a
// starting float to close with a physical count and reconciliation.
// Estado: "abierta" | "cerrada". At most one open session per operator per
// calendar day — enforced by a partial unique index on (usuario_id, fecha)
// WHERE estado = 'abierta', never by a read-then-write check alone.
// Closing is a one-way transition; no reopen exists.
type SesionCaja struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UsuarioID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Fecha        time.Time       `gorm:"type:date;not null"`
	MontoInicial decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// Close-time figures — nil until the session is closed.
	VentasEfectivo *decimal.Decimal `gorm:"type:decimal(12,2)"`
	VentasTarjeta  *decimal.Decimal `gorm:"type:decimal(12,2)"`
	MontoEsperado  *decimal.Decimal `gorm:"type:decimal(12,2)"`
	MontoContado   *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Diferencia     *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Estado         string           `gorm:"type:varchar(20);not null;default:'abierta'"`
	OpenedAt       time.Time
	ClosedAt       *time.Time

	Usuario     *Usuario         `gorm:"foreignKey:UsuarioID"`
	Movimientos []MovimientoCaja `gorm:"foreignKey:SesionCajaID"`
}

func (SesionCaja) TableName() string { return "sesiones_caja" }

// MovimientoCaja is a manual drawer movement (ingreso | egreso) tied to an
// open session. Movements are immutable — there is no update or delete path.
// They are informational for the session report; the reconciliation formula
// folds in cash-method sales only.
type MovimientoCaja struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SesionCajaID uuid.UUID       `gorm:"type:uuid;index;not null"`
	UsuarioID    uuid.UUID       `gorm:"type:uuid;not null"`
	Tipo         string          `gorm:"type:varchar(20);not null"` // "ingreso" | "egreso"
	Monto        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Descripcion  string          `gorm:"not null"`
	CreatedAt    time.Time
}

func (MovimientoCaja) TableName() string { return "movimientos_caja" }
