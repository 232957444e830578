package service

import (
	"context"
	"time"

	"puntoventa/internal/dto"
	"puntoventa/internal/model"
	"puntoventa/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type InventarioService interface {
	// RecibirStock registers a direct manual restock: stock increment plus
	// audit entry, atomically.
	RecibirStock(ctx context.Context, usuarioID uuid.UUID, req dto.EntradaInventarioRequest) (*dto.EntradaInventarioResponse, error)
	ListarEntradas(ctx context.Context, filter repository.EntradaInventarioFilter) (*dto.EntradaInventarioListResponse, error)
	// ObtenerAlertas lists active products at or below their minimum stock.
	ObtenerAlertas(ctx context.Context) ([]dto.AlertaStockResponse, error)
}

type inventarioService struct {
	entradaRepo  repository.EntradaInventarioRepository
	productoRepo repository.ProductoRepository
}

func NewInventarioService(entradaRepo repository.EntradaInventarioRepository, productoRepo repository.ProductoRepository) InventarioService {
	return &inventarioService{entradaRepo: entradaRepo, productoRepo: productoRepo}
}

func (s *inventarioService) RecibirStock(ctx context.Context, usuarioID uuid.UUID, req dto.EntradaInventarioRequest) (*dto.EntradaInventarioResponse, error) {
	if req.Cantidad <= 0 {
		return nil, validacion("la cantidad debe ser mayor a cero")
	}
	pid, err := uuid.Parse(req.ProductoID)
	if err != nil {
		return nil, validacion("producto_id inválido")
	}
	producto, err := s.productoRepo.FindByID(ctx, pid)
	if err != nil {
		return nil, validacion("producto no encontrado")
	}

	entrada := &model.EntradaInventario{
		ProductoID: pid,
		UsuarioID:  usuarioID,
		Cantidad:   req.Cantidad,
		Nota:       req.Nota,
	}
	txErr := runTx(ctx, s.productoRepo.DB(), func(tx *gorm.DB) error {
		if err := s.productoRepo.IncrementarStockTx(tx, pid, req.Cantidad); err != nil {
			return err
		}
		return s.entradaRepo.CreateTx(tx, entrada)
	})
	if txErr != nil {
		return nil, persistencia("no se pudo registrar la entrada de inventario", txErr)
	}

	log.Info().
		Str("producto_id", pid.String()).
		Int("cantidad", req.Cantidad).
		Msg("entrada de inventario registrada")

	resp := entradaToResponse(entrada)
	resp.Producto = producto.Nombre
	return resp, nil
}

func (s *inventarioService) ListarEntradas(ctx context.Context, filter repository.EntradaInventarioFilter) (*dto.EntradaInventarioListResponse, error) {
	entradas, total, err := s.entradaRepo.List(ctx, filter)
	if err != nil {
		return nil, persistencia("no se pudieron listar las entradas", err)
	}
	data := make([]dto.EntradaInventarioResponse, 0, len(entradas))
	for i := range entradas {
		data = append(data, *entradaToResponse(&entradas[i]))
	}
	return &dto.EntradaInventarioListResponse{Data: data, Total: total}, nil
}

func (s *inventarioService) ObtenerAlertas(ctx context.Context) ([]dto.AlertaStockResponse, error) {
	productos, err := s.productoRepo.ListBajoMinimo(ctx)
	if err != nil {
		return nil, persistencia("no se pudieron consultar las alertas de stock", err)
	}
	alertas := make([]dto.AlertaStockResponse, 0, len(productos))
	for _, p := range productos {
		alertas = append(alertas, dto.AlertaStockResponse{
			ProductoID:  p.ID.String(),
			Codigo:      p.Codigo,
			Nombre:      p.Nombre,
			StockActual: p.StockActual,
			StockMinimo: p.StockMinimo,
		})
	}
	return alertas, nil
}

func entradaToResponse(e *model.EntradaInventario) *dto.EntradaInventarioResponse {
	resp := &dto.EntradaInventarioResponse{
		ID:         e.ID.String(),
		ProductoID: e.ProductoID.String(),
		Cantidad:   e.Cantidad,
		Nota:       e.Nota,
		CreatedAt:  e.CreatedAt.Format(time.RFC3339),
	}
	if e.Producto != nil {
		resp.Producto = e.Producto.Nombre
	}
	if e.PedidoID != nil {
		pid := e.PedidoID.String()
		resp.PedidoID = &pid
	}
	return resp
}
