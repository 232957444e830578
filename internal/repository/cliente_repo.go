package repository

import (
	"context"

	"puntoventa/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClienteRepository interface {
	Create(ctx context.Context, c *model.Cliente) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error)
	SearchByNombre(ctx context.Context, nombre string) ([]model.Cliente, error)
	List(ctx context.Context) ([]model.Cliente, error)
	Update(ctx context.Context, c *model.Cliente) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type clienteRepo struct{ db *gorm.DB }

func NewClienteRepository(db *gorm.DB) ClienteRepository { return &clienteRepo{db: db} }

func (r *clienteRepo) Create(ctx context.Context, c *model.Cliente) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *clienteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error) {
	var c model.Cliente
	err := r.db.WithContext(ctx).First(&c, id).Error
	return &c, err
}

func (r *clienteRepo) SearchByNombre(ctx context.Context, nombre string) ([]model.Cliente, error) {
	var clientes []model.Cliente
	err := r.db.WithContext(ctx).
		Where("nombre ILIKE ? AND activo = true", "%"+nombre+"%").
		Order("nombre ASC").Limit(50).Find(&clientes).Error
	return clientes, err
}

func (r *clienteRepo) List(ctx context.Context) ([]model.Cliente, error) {
	var clientes []model.Cliente
	err := r.db.WithContext(ctx).Where("activo = true").Order("nombre ASC").Find(&clientes).Error
	return clientes, err
}

func (r *clienteRepo) Update(ctx context.Context, c *model.Cliente) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *clienteRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Cliente{}).Where("id = ?", id).Update("activo", false).Error
}
