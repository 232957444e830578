package service

import (
	"context"
	"errors"
	"strings"

	"puntoventa/internal/dto"
	"puntoventa/internal/model"
	"puntoventa/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ProductoService defines the business logic contract for the catalog.
type ProductoService interface {
	Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	ObtenerPorCodigo(ctx context.Context, codigo string) (*dto.ProductoResponse, error)
	Buscar(ctx context.Context, nombre string) ([]dto.ProductoResponse, error)
	Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
	Reactivar(ctx context.Context, id uuid.UUID) error
}

type productoService struct {
	repo repository.ProductoRepository
	rdb  *redis.Client
}

func NewProductoService(repo repository.ProductoRepository, rdb *redis.Client) ProductoService {
	return &productoService{repo: repo, rdb: rdb}
}

func (s *productoService) Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	if req.PrecioVenta.IsNegative() {
		return nil, validacion("el precio de venta no puede ser negativo")
	}
	if req.StockActual < 0 || req.StockMinimo < 0 {
		return nil, validacion("el stock no puede ser negativo")
	}
	if _, err := s.repo.FindByCodigo(ctx, req.Codigo); err == nil {
		return nil, conflicto("ya existe un producto con ese código")
	}

	producto := &model.Producto{
		Codigo:      strings.TrimSpace(req.Codigo),
		Nombre:      strings.TrimSpace(req.Nombre),
		Descripcion: req.Descripcion,
		PrecioVenta: req.PrecioVenta,
		StockActual: req.StockActual,
		StockMinimo: req.StockMinimo,
		Activo:      true,
	}
	var err error
	if producto.CategoriaID, err = parseUUIDPtr(req.CategoriaID); err != nil {
		return nil, validacion("categoria_id inválido")
	}
	if producto.ProveedorID, err = parseUUIDPtr(req.ProveedorID); err != nil {
		return nil, validacion("proveedor_id inválido")
	}

	if err := s.repo.Create(ctx, producto); err != nil {
		if esViolacionUnicidad(err) {
			return nil, conflicto("ya existe un producto con ese código")
		}
		return nil, persistencia("no se pudo crear el producto", err)
	}

	log.Info().Str("codigo", producto.Codigo).Msg("producto creado")
	return productoToResponse(producto), nil
}

func (s *productoService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, validacion("producto no encontrado")
	}
	return productoToResponse(p), nil
}

func (s *productoService) ObtenerPorCodigo(ctx context.Context, codigo string) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByCodigo(ctx, codigo)
	if err != nil {
		return nil, validacion("producto no encontrado")
	}
	return productoToResponse(p), nil
}

func (s *productoService) Buscar(ctx context.Context, nombre string) ([]dto.ProductoResponse, error) {
	if strings.TrimSpace(nombre) == "" {
		return nil, validacion("el término de búsqueda no puede estar vacío")
	}
	productos, err := s.repo.SearchByNombre(ctx, nombre)
	if err != nil {
		return nil, persistencia("no se pudo buscar productos", err)
	}
	resp := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		resp = append(resp, *productoToResponse(&productos[i]))
	}
	return resp, nil
}

func (s *productoService) Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	productos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, persistencia("no se pudieron listar los productos", err)
	}
	data := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		data = append(data, *productoToResponse(&productos[i]))
	}
	return &dto.ProductoListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *productoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, validacion("producto no encontrado")
	}

	if req.Nombre != nil {
		p.Nombre = strings.TrimSpace(*req.Nombre)
	}
	if req.Descripcion != nil {
		p.Descripcion = req.Descripcion
	}
	if req.PrecioVenta != nil {
		if req.PrecioVenta.IsNegative() {
			return nil, validacion("el precio de venta no puede ser negativo")
		}
		p.PrecioVenta = *req.PrecioVenta
	}
	if req.StockMinimo != nil {
		if *req.StockMinimo < 0 {
			return nil, validacion("el stock mínimo no puede ser negativo")
		}
		p.StockMinimo = *req.StockMinimo
	}
	if req.CategoriaID != nil {
		if p.CategoriaID, err = parseUUIDPtr(req.CategoriaID); err != nil {
			return nil, validacion("categoria_id inválido")
		}
	}
	if req.ProveedorID != nil {
		if p.ProveedorID, err = parseUUIDPtr(req.ProveedorID); err != nil {
			return nil, validacion("proveedor_id inválido")
		}
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, persistencia("no se pudo actualizar el producto", err)
	}
	s.invalidarCachePrecio(ctx, p.Codigo)
	return productoToResponse(p), nil
}

func (s *productoService) Desactivar(ctx context.Context, id uuid.UUID) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return validacion("producto no encontrado")
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return persistencia("no se pudo desactivar el producto", err)
	}
	s.invalidarCachePrecio(ctx, p.Codigo)
	log.Info().Str("codigo", p.Codigo).Msg("producto desactivado")
	return nil
}

func (s *productoService) Reactivar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return validacion("producto no encontrado")
	}
	if err := s.repo.Reactivar(ctx, id); err != nil {
		return persistencia("no se pudo reactivar el producto", err)
	}
	return nil
}

// invalidarCachePrecio drops the public price cache entry — best effort, a
// stale read expires with the TTL anyway.
func (s *productoService) invalidarCachePrecio(ctx context.Context, codigo string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, "precio:"+codigo).Err(); err != nil && !errors.Is(err, redis.Nil) {
		log.Warn().Err(err).Str("codigo", codigo).Msg("no se pudo invalidar el cache de precio")
	}
}

func parseUUIDPtr(s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func productoToResponse(p *model.Producto) *dto.ProductoResponse {
	resp := &dto.ProductoResponse{
		ID:          p.ID.String(),
		Codigo:      p.Codigo,
		Nombre:      p.Nombre,
		Descripcion: p.Descripcion,
		PrecioVenta: p.PrecioVenta,
		StockActual: p.StockActual,
		StockMinimo: p.StockMinimo,
		Activo:      p.Activo,
	}
	if p.CategoriaID != nil {
		s := p.CategoriaID.String()
		resp.CategoriaID = &s
	}
	if p.ProveedorID != nil {
		s := p.ProveedorID.String()
		resp.ProveedorID = &s
	}
	return resp
}
