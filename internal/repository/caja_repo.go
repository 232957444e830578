package repository

import (
	"context"
	"time"

	"puntoventa/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CierreSesion carries the reconciliation figures persisted at close time.
type CierreSesion struct {
	VentasEfectivo decimal.Decimal
	VentasTarjeta  decimal.Decimal
	MontoEsperado  decimal.Decimal
	MontoContado   decimal.Decimal
	Diferencia     decimal.Decimal
}

type CajaRepository interface {
	// CreateSesion inserts a new open session. The partial unique index on
	// (usuario_id, fecha) WHERE estado = 'abierta' makes a duplicate open
	// attempt fail at the store, so two racing opens cannot both succeed.
	CreateSesion(ctx context.Context, s *model.SesionCaja) error
	FindSesionByID(ctx context.Context, id uuid.UUID) (*model.SesionCaja, error)
	// FindSesionAbiertaHoy returns the operator's open session for the
	// current date, or gorm.ErrRecordNotFound.
	FindSesionAbiertaHoy(ctx context.Context, usuarioID uuid.UUID) (*model.SesionCaja, error)
	// CerrarSesionTx persists every close-time figure and the estado flip in
	// one guarded update. Returns false when the session was not abierta.
	CerrarSesionTx(tx *gorm.DB, id uuid.UUID, cierre CierreSesion) (bool, error)
	ListSesiones(ctx context.Context, page, limit int) ([]model.SesionCaja, int64, error)

	CreateMovimiento(ctx context.Context, m *model.MovimientoCaja) error
	ListMovimientos(ctx context.Context, sesionID uuid.UUID) ([]model.MovimientoCaja, error)
	SumMovimientosPorTipo(ctx context.Context, sesionID uuid.UUID, tipo string) (decimal.Decimal, error)

	DB() *gorm.DB
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

func (r *cajaRepo) DB() *gorm.DB { return r.db }

func (r *cajaRepo) CreateSesion(ctx context.Context, s *model.SesionCaja) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *cajaRepo) FindSesionByID(ctx context.Context, id uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := r.db.WithContext(ctx).Preload("Movimientos").Preload("Usuario").First(&s, id).Error
	return &s, err
}

func (r *cajaRepo) FindSesionAbiertaHoy(ctx context.Context, usuarioID uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := r.db.WithContext(ctx).
		Where("usuario_id = ? AND fecha = ? AND estado = 'abierta'", usuarioID, time.Now().Format("2006-01-02")).
		First(&s).Error
	return &s, err
}

func (r *cajaRepo) CerrarSesionTx(tx *gorm.DB, id uuid.UUID, cierre CierreSesion) (bool, error) {
	res := tx.Model(&model.SesionCaja{}).
		Where("id = ? AND estado = 'abierta'", id).
		Updates(map[string]interface{}{
			"ventas_efectivo": cierre.VentasEfectivo,
			"ventas_tarjeta":  cierre.VentasTarjeta,
			"monto_esperado":  cierre.MontoEsperado,
			"monto_contado":   cierre.MontoContado,
			"diferencia":      cierre.Diferencia,
			"estado":          "cerrada",
			"closed_at":       gorm.Expr("NOW()"),
		})
	return res.RowsAffected > 0, res.Error
}

func (r *cajaRepo) ListSesiones(ctx context.Context, page, limit int) ([]model.SesionCaja, int64, error) {
	var sesiones []model.SesionCaja
	var total int64

	q := r.db.WithContext(ctx).Model(&model.SesionCaja{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := q.Preload("Usuario").
		Order("opened_at DESC").
		Offset(offset).Limit(limit).
		Find(&sesiones).Error
	return sesiones, total, err
}

func (r *cajaRepo) CreateMovimiento(ctx context.Context, m *model.MovimientoCaja) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *cajaRepo) ListMovimientos(ctx context.Context, sesionID uuid.UUID) ([]model.MovimientoCaja, error) {
	var movs []model.MovimientoCaja
	err := r.db.WithContext(ctx).
		Where("sesion_caja_id = ?", sesionID).
		Order("created_at ASC").Find(&movs).Error
	return movs, err
}

func (r *cajaRepo) SumMovimientosPorTipo(ctx context.Context, sesionID uuid.UUID, tipo string) (decimal.Decimal, error) {
	var suma decimal.Decimal
	err := r.db.WithContext(ctx).Model(&model.MovimientoCaja{}).
		Select("COALESCE(SUM(monto), 0)").
		Where("sesion_caja_id = ? AND tipo = ?", sesionID, tipo).
		Scan(&suma).Error
	return suma, err
}
