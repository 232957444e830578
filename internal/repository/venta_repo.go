package repository

import (
	"context"

	"puntoventa/internal/dto"
	"puntoventa/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VentaRepository interface {
	// Create inserts the header and its items in order: GORM writes the
	// venta row first, assigns the id, then inserts every item referencing
	// it. Must run inside the tx passed by the service.
	Create(ctx context.Context, tx *gorm.DB, v *model.Venta) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error)
	NextFolio(ctx context.Context, tx *gorm.DB) (int, error)
	// AnularTx zeroes the financial fields and flips estado inside the
	// caller's transaction. The row and its items survive for history.
	AnularTx(tx *gorm.DB, id uuid.UUID) error
	List(ctx context.Context, filter dto.VentaFilter) ([]model.Venta, int64, error)

	// SumPorMetodo aggregates completed-sale totals by payment method for
	// one session — the read that feeds cash reconciliation.
	SumPorMetodo(ctx context.Context, sesionID uuid.UUID) (map[string]decimal.Decimal, error)
	// SumPorMetodoTx is the same aggregate on the caller's transaction, so a
	// close can snapshot the totals and flip the estado under one tx.
	SumPorMetodoTx(tx *gorm.DB, sesionID uuid.UUID) (map[string]decimal.Decimal, error)
	// SumPorRango aggregates completed sales between two dates (inclusive),
	// consumed by report panels only.
	SumPorRango(ctx context.Context, desde, hasta string) (decimal.Decimal, int64, error)

	DB() *gorm.DB
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) DB() *gorm.DB { return r.db }

func (r *ventaRepo) Create(ctx context.Context, tx *gorm.DB, v *model.Venta) error {
	return tx.WithContext(ctx).Create(v).Error
}

func (r *ventaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).
		Preload("Items.Producto").Preload("Cliente").Preload("Usuario").
		First(&v, id).Error
	return &v, err
}

func (r *ventaRepo) NextFolio(ctx context.Context, tx *gorm.DB) (int, error) {
	// PostgreSQL sequence — atomic folio assignment under concurrency.
	var num int
	err := tx.WithContext(ctx).Raw("SELECT nextval('ventas_folio_seq')").Scan(&num).Error
	return num, err
}

func (r *ventaRepo) AnularTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Model(&model.Venta{}).Where("id = ?", id).Updates(map[string]interface{}{
		"estado":   "anulada",
		"subtotal": decimal.Zero,
		"impuesto": decimal.Zero,
		"total":    decimal.Zero,
	}).Error
}

func (r *ventaRepo) List(ctx context.Context, filter dto.VentaFilter) ([]model.Venta, int64, error) {
	var ventas []model.Venta
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Venta{})

	if filter.Estado != "" && filter.Estado != "all" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.Fecha != "" {
		q = q.Where("DATE(created_at) = ?", filter.Fecha)
	} else {
		q = q.Where("DATE(created_at) = CURRENT_DATE")
	}
	if filter.SesionCajaID != "" {
		q = q.Where("sesion_caja_id = ?", filter.SesionCajaID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Items.Producto").Preload("Cliente").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&ventas).Error

	return ventas, total, err
}

func (r *ventaRepo) SumPorMetodo(ctx context.Context, sesionID uuid.UUID) (map[string]decimal.Decimal, error) {
	return r.SumPorMetodoTx(r.db.WithContext(ctx), sesionID)
}

func (r *ventaRepo) SumPorMetodoTx(tx *gorm.DB, sesionID uuid.UUID) (map[string]decimal.Decimal, error) {
	type row struct {
		MetodoPago string
		Suma       decimal.Decimal
	}
	var rows []row
	err := tx.Model(&model.Venta{}).
		Select("metodo_pago, COALESCE(SUM(total), 0) AS suma").
		Where("sesion_caja_id = ? AND estado = 'completada'", sesionID).
		Group("metodo_pago").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	sums := map[string]decimal.Decimal{
		"efectivo": decimal.Zero,
		"tarjeta":  decimal.Zero,
	}
	for _, r := range rows {
		sums[r.MetodoPago] = r.Suma
	}
	return sums, nil
}

func (r *ventaRepo) SumPorRango(ctx context.Context, desde, hasta string) (decimal.Decimal, int64, error) {
	type row struct {
		Suma   decimal.Decimal
		Conteo int64
	}
	var res row
	err := r.db.WithContext(ctx).Model(&model.Venta{}).
		Select("COALESCE(SUM(total), 0) AS suma, COUNT(*) AS conteo").
		Where("estado = 'completada' AND DATE(created_at) BETWEEN ? AND ?", desde, hasta).
		Scan(&res).Error
	return res.Suma, res.Conteo, err
}
