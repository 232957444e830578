package service

import (
	"context"
	"strings"

	"puntoventa/internal/dto"
	"puntoventa/internal/model"
	"puntoventa/internal/repository"

	"github.com/google/uuid"
)

type ProveedorService interface {
	Crear(ctx context.Context, req dto.CrearProveedorRequest) (*dto.ProveedorResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProveedorResponse, error)
	Listar(ctx context.Context) ([]dto.ProveedorResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProveedorRequest) (*dto.ProveedorResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
}

type proveedorService struct {
	repo repository.ProveedorRepository
}

func NewProveedorService(repo repository.ProveedorRepository) ProveedorService {
	return &proveedorService{repo: repo}
}

func (s *proveedorService) Crear(ctx context.Context, req dto.CrearProveedorRequest) (*dto.ProveedorResponse, error) {
	p := &model.Proveedor{
		Nombre:    strings.TrimSpace(req.Nombre),
		RFC:       strings.ToUpper(strings.TrimSpace(req.RFC)),
		Telefono:  req.Telefono,
		Email:     req.Email,
		Direccion: req.Direccion,
		Activo:    true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if esViolacionUnicidad(err) {
			return nil, conflicto("ya existe un proveedor con ese RFC")
		}
		return nil, persistencia("no se pudo crear el proveedor", err)
	}
	return proveedorToResponse(p), nil
}

func (s *proveedorService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProveedorResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, validacion("proveedor no encontrado")
	}
	return proveedorToResponse(p), nil
}

func (s *proveedorService) Listar(ctx context.Context) ([]dto.ProveedorResponse, error) {
	proveedores, err := s.repo.List(ctx)
	if err != nil {
		return nil, persistencia("no se pudieron listar los proveedores", err)
	}
	resp := make([]dto.ProveedorResponse, 0, len(proveedores))
	for i := range proveedores {
		resp = append(resp, *proveedorToResponse(&proveedores[i]))
	}
	return resp, nil
}

func (s *proveedorService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProveedorRequest) (*dto.ProveedorResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, validacion("proveedor no encontrado")
	}
	if req.Nombre != nil {
		p.Nombre = strings.TrimSpace(*req.Nombre)
	}
	if req.Telefono != nil {
		p.Telefono = req.Telefono
	}
	if req.Email != nil {
		p.Email = req.Email
	}
	if req.Direccion != nil {
		p.Direccion = req.Direccion
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, persistencia("no se pudo actualizar el proveedor", err)
	}
	return proveedorToResponse(p), nil
}

func (s *proveedorService) Desactivar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return validacion("proveedor no encontrado")
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return persistencia("no se pudo desactivar el proveedor", err)
	}
	return nil
}

func proveedorToResponse(p *model.Proveedor) *dto.ProveedorResponse {
	return &dto.ProveedorResponse{
		ID:        p.ID.String(),
		Nombre:    p.Nombre,
		RFC:       p.RFC,
		Telefono:  p.Telefono,
		Email:     p.Email,
		Direccion: p.Direccion,
		Activo:    p.Activo,
	}
}
