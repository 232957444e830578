package repository

import (
	"context"

	"puntoventa/internal/dto"
	"puntoventa/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PedidoRepository interface {
	// Create inserts the pedido header then its items, inside the caller's tx.
	Create(ctx context.Context, tx *gorm.DB, p *model.Pedido) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Pedido, error)
	List(ctx context.Context, filter dto.PedidoFilter) ([]model.Pedido, int64, error)

	// MarcarRecibidoTx flips pendiente → recibido with a guarded update.
	// Returns false when the pedido was not pendiente — the transition
	// already happened or the pedido was cancelled. Guarantees a pedido is
	// received (and stocked) at most once even under concurrent calls.
	MarcarRecibidoTx(tx *gorm.DB, id uuid.UUID) (bool, error)
	// MarcarCanceladoTx flips pendiente → cancelado, same guard semantics.
	MarcarCanceladoTx(tx *gorm.DB, id uuid.UUID) (bool, error)

	DB() *gorm.DB
}

type pedidoRepo struct{ db *gorm.DB }

func NewPedidoRepository(db *gorm.DB) PedidoRepository { return &pedidoRepo{db: db} }

func (r *pedidoRepo) DB() *gorm.DB { return r.db }

func (r *pedidoRepo) Create(ctx context.Context, tx *gorm.DB, p *model.Pedido) error {
	return tx.WithContext(ctx).Create(p).Error
}

func (r *pedidoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Pedido, error) {
	var p model.Pedido
	err := r.db.WithContext(ctx).
		Preload("Items.Producto").Preload("Proveedor").
		First(&p, id).Error
	return &p, err
}

func (r *pedidoRepo) List(ctx context.Context, filter dto.PedidoFilter) ([]model.Pedido, int64, error) {
	var pedidos []model.Pedido
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Pedido{})
	if filter.Estado != "" && filter.Estado != "all" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.ProveedorID != "" {
		q = q.Where("proveedor_id = ?", filter.ProveedorID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Items.Producto").Preload("Proveedor").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&pedidos).Error
	return pedidos, total, err
}

func (r *pedidoRepo) MarcarRecibidoTx(tx *gorm.DB, id uuid.UUID) (bool, error) {
	res := tx.Model(&model.Pedido{}).
		Where("id = ? AND estado = 'pendiente'", id).
		Updates(map[string]interface{}{
			"estado":      "recibido",
			"received_at": gorm.Expr("NOW()"),
		})
	return res.RowsAffected > 0, res.Error
}

func (r *pedidoRepo) MarcarCanceladoTx(tx *gorm.DB, id uuid.UUID) (bool, error) {
	res := tx.Model(&model.Pedido{}).
		Where("id = ? AND estado = 'pendiente'", id).
		Update("estado", "cancelado")
	return res.RowsAffected > 0, res.Error
}
