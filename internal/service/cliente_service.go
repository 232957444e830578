package service

import (
	"context"
	"strings"

	"puntoventa/internal/dto"
	"puntoventa/internal/model"
	"puntoventa/internal/repository"

	"github.com/google/uuid"
)

type ClienteService interface {
	Crear(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error)
	Buscar(ctx context.Context, nombre string) ([]dto.ClienteResponse, error)
	Listar(ctx context.Context) ([]dto.ClienteResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarClienteRequest) (*dto.ClienteResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
}

type clienteService struct {
	repo repository.ClienteRepository
}

func NewClienteService(repo repository.ClienteRepository) ClienteService {
	return &clienteService{repo: repo}
}

func (s *clienteService) Crear(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error) {
	c := &model.Cliente{
		Nombre:    strings.TrimSpace(req.Nombre),
		Telefono:  req.Telefono,
		Email:     req.Email,
		Direccion: req.Direccion,
		Activo:    true,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, persistencia("no se pudo crear el cliente", err)
	}
	return clienteToResponse(c), nil
}

func (s *clienteService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, validacion("cliente no encontrado")
	}
	return clienteToResponse(c), nil
}

func (s *clienteService) Buscar(ctx context.Context, nombre string) ([]dto.ClienteResponse, error) {
	clientes, err := s.repo.SearchByNombre(ctx, nombre)
	if err != nil {
		return nil, persistencia("no se pudo buscar clientes", err)
	}
	return clientesToResponse(clientes), nil
}

func (s *clienteService) Listar(ctx context.Context) ([]dto.ClienteResponse, error) {
	clientes, err := s.repo.List(ctx)
	if err != nil {
		return nil, persistencia("no se pudieron listar los clientes", err)
	}
	return clientesToResponse(clientes), nil
}

func (s *clienteService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarClienteRequest) (*dto.ClienteResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, validacion("cliente no encontrado")
	}
	if req.Nombre != nil {
		c.Nombre = strings.TrimSpace(*req.Nombre)
	}
	if req.Telefono != nil {
		c.Telefono = req.Telefono
	}
	if req.Email != nil {
		c.Email = req.Email
	}
	if req.Direccion != nil {
		c.Direccion = req.Direccion
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, persistencia("no se pudo actualizar el cliente", err)
	}
	return clienteToResponse(c), nil
}

func (s *clienteService) Desactivar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return validacion("cliente no encontrado")
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return persistencia("no se pudo desactivar el cliente", err)
	}
	return nil
}

func clienteToResponse(c *model.Cliente) *dto.ClienteResponse {
	return &dto.ClienteResponse{
		ID:        c.ID.String(),
		Nombre:    c.Nombre,
		Telefono:  c.Telefono,
		Email:     c.Email,
		Direccion: c.Direccion,
		Activo:    c.Activo,
	}
}

func clientesToResponse(clientes []model.Cliente) []dto.ClienteResponse {
	resp := make([]dto.ClienteResponse, 0, len(clientes))
	for i := range clientes {
		resp = append(resp, *clienteToResponse(&clientes[i]))
	}
	return resp
}
