package service

import (
	"context"

	"puntoventa/internal/dto"
	"puntoventa/internal/model"
	"puntoventa/internal/repository"

	"github.com/google/uuid"
)

// CategoriaService defines business operations for product categories.
type CategoriaService interface {
	Crear(ctx context.Context, req dto.CrearCategoriaRequest) (dto.CategoriaResponse, error)
	Listar(ctx context.Context) ([]dto.CategoriaResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
}

type categoriaService struct {
	repo repository.CategoriaRepository
}

func NewCategoriaService(repo repository.CategoriaRepository) CategoriaService {
	return &categoriaService{repo: repo}
}

func mapCategoria(c model.Categoria) dto.CategoriaResponse {
	return dto.CategoriaResponse{
		ID:          c.ID.String(),
		Nombre:      c.Nombre,
		Descripcion: c.Descripcion,
		Activo:      c.Activo,
	}
}

func (s *categoriaService) Crear(ctx context.Context, req dto.CrearCategoriaRequest) (dto.CategoriaResponse, error) {
	c := &model.Categoria{
		Nombre:      req.Nombre,
		Descripcion: req.Descripcion,
		Activo:      true,
	}
	if err := s.repo.Crear(ctx, c); err != nil {
		if esViolacionUnicidad(err) {
			return dto.CategoriaResponse{}, conflicto("ya existe una categoría con ese nombre")
		}
		return dto.CategoriaResponse{}, persistencia("no se pudo crear la categoría", err)
	}
	return mapCategoria(*c), nil
}

func (s *categoriaService) Listar(ctx context.Context) ([]dto.CategoriaResponse, error) {
	list, err := s.repo.Listar(ctx)
	if err != nil {
		return nil, persistencia("no se pudieron listar las categorías", err)
	}
	result := make([]dto.CategoriaResponse, 0, len(list))
	for _, c := range list {
		result = append(result, mapCategoria(c))
	}
	return result, nil
}

func (s *categoriaService) Desactivar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.ObtenerPorID(ctx, id); err != nil {
		return validacion("categoría no encontrada")
	}
	if err := s.repo.Desactivar(ctx, id); err != nil {
		return persistencia("no se pudo desactivar la categoría", err)
	}
	return nil
}
