package repository

import (
	"context"

	"puntoventa/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EntradaInventarioFilter defines filters for listing audit entries.
type EntradaInventarioFilter struct {
	ProductoID *uuid.UUID
	PedidoID   *uuid.UUID
	Page       int
	Limit      int
}

// EntradaInventarioRepository is the append-only audit trail of stock
// increases. No update or delete exists on the interface — immutability is a
// compile-time guarantee.
type EntradaInventarioRepository interface {
	Create(ctx context.Context, e *model.EntradaInventario) error
	CreateTx(tx *gorm.DB, e *model.EntradaInventario) error
	List(ctx context.Context, filter EntradaInventarioFilter) ([]model.EntradaInventario, int64, error)
}

type entradaInventarioRepo struct{ db *gorm.DB }

func NewEntradaInventarioRepository(db *gorm.DB) EntradaInventarioRepository {
	return &entradaInventarioRepo{db: db}
}

func (r *entradaInventarioRepo) Create(ctx context.Context, e *model.EntradaInventario) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *entradaInventarioRepo) CreateTx(tx *gorm.DB, e *model.EntradaInventario) error {
	return tx.Create(e).Error
}

func (r *entradaInventarioRepo) List(ctx context.Context, filter EntradaInventarioFilter) ([]model.EntradaInventario, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.EntradaInventario{}).Preload("Producto")
	if filter.ProductoID != nil {
		q = q.Where("producto_id = ?", *filter.ProductoID)
	}
	if filter.PedidoID != nil {
		q = q.Where("pedido_id = ?", *filter.PedidoID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}
	offset := (page - 1) * limit

	var entradas []model.EntradaInventario
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&entradas).Error
	return entradas, total, err
}
