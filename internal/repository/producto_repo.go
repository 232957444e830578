package repository

import (
	"context"
	"errors"

	"puntoventa/internal/dto"
	"puntoventa/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrStockInsuficiente is returned by DescontarStockTx when the guarded
// decrement matches no row — the product is missing, inactive, or its stock
// is below the requested quantity. The caller's transaction must roll back.
var ErrStockInsuficiente = errors.New("stock insuficiente")

// ProductoRepository defines the data access contract for the catalog.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via in-memory fakes.
type ProductoRepository interface {
	Create(ctx context.Context, p *model.Producto) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error)
	FindByCodigo(ctx context.Context, codigo string) (*model.Producto, error)
	SearchByNombre(ctx context.Context, nombre string) ([]model.Producto, error)
	List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error)
	Update(ctx context.Context, p *model.Producto) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Reactivar(ctx context.Context, id uuid.UUID) error
	FindByProveedorID(ctx context.Context, proveedorID uuid.UUID) ([]model.Producto, error)
	ListBajoMinimo(ctx context.Context) ([]model.Producto, error)

	// Used inside transactions — callers must pass the tx instance.
	// DescontarStockTx fails with ErrStockInsuficiente unless
	// stock_actual >= cantidad at the moment of the update.
	DescontarStockTx(tx *gorm.DB, id uuid.UUID, cantidad int) error
	IncrementarStockTx(tx *gorm.DB, id uuid.UUID, cantidad int) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) Create(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *productoRepo) FindByCodigo(ctx context.Context, codigo string) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).Where("codigo = ? AND activo = true", codigo).First(&p).Error
	return &p, err
}

func (r *productoRepo) SearchByNombre(ctx context.Context, nombre string) ([]model.Producto, error) {
	var productos []model.Producto
	err := r.db.WithContext(ctx).
		Where("nombre ILIKE ? AND activo = true", "%"+nombre+"%").
		Order("nombre ASC").Limit(50).Find(&productos).Error
	return productos, err
}

func (r *productoRepo) List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error) {
	var productos []model.Producto
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Producto{})

	// Activo filter: "false" = inactivos, "all" = todos, default = activos
	switch filter.Activo {
	case "false":
		q = q.Where("activo = false")
	case "all":
		// no filter
	default:
		q = q.Where("activo = true")
	}
	if filter.Codigo != "" {
		q = q.Where("codigo = ?", filter.Codigo)
	}
	if filter.Nombre != "" {
		q = q.Where("nombre ILIKE ?", "%"+filter.Nombre+"%")
	}
	if filter.CategoriaID != "" {
		q = q.Where("categoria_id = ?", filter.CategoriaID)
	}
	if filter.ProveedorID != "" {
		q = q.Where("proveedor_id = ?", filter.ProveedorID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("nombre ASC").Limit(filter.Limit).Offset(offset).Find(&productos).Error
	return productos, total, err
}

func (r *productoRepo) Update(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *productoRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Producto{}).Where("id = ?", id).Update("activo", false).Error
}

func (r *productoRepo) Reactivar(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Producto{}).Where("id = ?", id).Update("activo", true).Error
}

func (r *productoRepo) FindByProveedorID(ctx context.Context, proveedorID uuid.UUID) ([]model.Producto, error) {
	var productos []model.Producto
	err := r.db.WithContext(ctx).Where("proveedor_id = ? AND activo = true", proveedorID).Find(&productos).Error
	return productos, err
}

func (r *productoRepo) ListBajoMinimo(ctx context.Context) ([]model.Producto, error) {
	var productos []model.Producto
	err := r.db.WithContext(ctx).
		Where("stock_actual <= stock_minimo AND activo = true").
		Order("stock_actual ASC").Find(&productos).Error
	return productos, err
}

// DescontarStockTx is a compare-and-swap style guarded update: the WHERE
// clause rejects the decrement when stock is short, preventing overselling
// under concurrent sales of the same product.
func (r *productoRepo) DescontarStockTx(tx *gorm.DB, id uuid.UUID, cantidad int) error {
	res := tx.Model(&model.Producto{}).
		Where("id = ? AND stock_actual >= ?", id, cantidad).
		Update("stock_actual", gorm.Expr("stock_actual - ?", cantidad))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStockInsuficiente
	}
	return nil
}

func (r *productoRepo) IncrementarStockTx(tx *gorm.DB, id uuid.UUID, cantidad int) error {
	return tx.Model(&model.Producto{}).Where("id = ?", id).
		Update("stock_actual", gorm.Expr("stock_actual + ?", cantidad)).Error
}

func (r *productoRepo) DB() *gorm.DB { return r.db }
