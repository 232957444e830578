package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"puntoventa/internal/dto"
	"puntoventa/internal/model"
	"puntoventa/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type PedidoService interface {
	// RegistrarPedido creates a pendiente purchase order. Stock is untouched
	// until recepción.
	RegistrarPedido(ctx context.Context, usuarioID uuid.UUID, req dto.CrearPedidoRequest) (*dto.PedidoResponse, error)
	// RecibirPedido increments stock for every line, writes one audit entry
	// per line and flips pendiente → recibido, all in one transaction. Safe
	// to call twice: the second call fails with a state conflict and stocks
	// nothing.
	RecibirPedido(ctx context.Context, usuarioID, id uuid.UUID) (*dto.PedidoResponse, error)
	// CancelarPedido flips pendiente → cancelado. No stock effect ever.
	CancelarPedido(ctx context.Context, id uuid.UUID) error
	ObtenerPedido(ctx context.Context, id uuid.UUID) (*dto.PedidoResponse, error)
	ListPedidos(ctx context.Context, filter dto.PedidoFilter) (*dto.PedidoListResponse, error)
}

type pedidoService struct {
	repo          repository.PedidoRepository
	productoRepo  repository.ProductoRepository
	proveedorRepo repository.ProveedorRepository
	entradaRepo   repository.EntradaInventarioRepository
}

func NewPedidoService(
	repo repository.PedidoRepository,
	productoRepo repository.ProductoRepository,
	proveedorRepo repository.ProveedorRepository,
	entradaRepo repository.EntradaInventarioRepository,
) PedidoService {
	return &pedidoService{
		repo:          repo,
		productoRepo:  productoRepo,
		proveedorRepo: proveedorRepo,
		entradaRepo:   entradaRepo,
	}
}

func (s *pedidoService) RegistrarPedido(ctx context.Context, usuarioID uuid.UUID, req dto.CrearPedidoRequest) (*dto.PedidoResponse, error) {
	proveedorID, err := uuid.Parse(req.ProveedorID)
	if err != nil {
		return nil, validacion("proveedor_id inválido")
	}
	if len(req.Items) == 0 {
		return nil, validacion("el pedido debe tener al menos un artículo")
	}
	if _, err := s.proveedorRepo.FindByID(ctx, proveedorID); err != nil {
		return nil, validacion("proveedor no encontrado")
	}

	items := make([]model.PedidoItem, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Cantidad <= 0 {
			return nil, validacion("la cantidad debe ser mayor a cero")
		}
		if item.CostoUnitario.IsNegative() {
			return nil, validacion("el costo unitario no puede ser negativo")
		}
		pid, err := uuid.Parse(item.ProductoID)
		if err != nil {
			return nil, validacion("producto_id inválido")
		}
		p, err := s.productoRepo.FindByID(ctx, pid)
		if err != nil {
			return nil, validacion(fmt.Sprintf("producto %s no encontrado", item.ProductoID))
		}
		// Every line must belong to the pedido's supplier when the product
		// declares one.
		if p.ProveedorID != nil && *p.ProveedorID != proveedorID {
			return nil, validacion(fmt.Sprintf("el producto %s pertenece a otro proveedor", p.Nombre))
		}
		items = append(items, model.PedidoItem{
			ProductoID:    pid,
			Cantidad:      item.Cantidad,
			CostoUnitario: item.CostoUnitario,
			Descripcion:   p.Nombre,
		})
	}

	pedido := &model.Pedido{
		ProveedorID: proveedorID,
		UsuarioID:   usuarioID,
		Estado:      "pendiente",
		Items:       items,
	}
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.Create(ctx, tx, pedido)
	})
	if txErr != nil {
		return nil, persistencia("no se pudo registrar el pedido", txErr)
	}

	log.Info().
		Str("pedido_id", pedido.ID.String()).
		Str("proveedor_id", proveedorID.String()).
		Int("items", len(items)).
		Msg("pedido registrado")

	return pedidoToResponse(pedido), nil
}

func (s *pedidoService) RecibirPedido(ctx context.Context, usuarioID, id uuid.UUID) (*dto.PedidoResponse, error) {
	pedido, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, validacion("pedido no encontrado")
	}
	if pedido.Estado != "pendiente" {
		return nil, conflicto(fmt.Sprintf("el pedido ya está %s", pedido.Estado))
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Status flip first: the guard is what makes a concurrent double
		// receive impossible. Stock only moves after this row claims the
		// transition.
		ok, err := s.repo.MarcarRecibidoTx(tx, id)
		if err != nil {
			return err
		}
		if !ok {
			return conflicto("el pedido ya fue procesado")
		}
		for _, item := range pedido.Items {
			if err := s.productoRepo.IncrementarStockTx(tx, item.ProductoID, item.Cantidad); err != nil {
				return err
			}
			entrada := &model.EntradaInventario{
				ProductoID: item.ProductoID,
				UsuarioID:  usuarioID,
				PedidoID:   &pedido.ID,
				Cantidad:   item.Cantidad,
				Nota:       fmt.Sprintf("Recepción de pedido %s", pedido.ID),
			}
			if err := s.entradaRepo.CreateTx(tx, entrada); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		if errors.Is(txErr, ErrConflictoEstado) {
			return nil, txErr
		}
		return nil, persistencia("no se pudo recibir el pedido", txErr)
	}

	log.Info().
		Str("pedido_id", id.String()).
		Int("items", len(pedido.Items)).
		Msg("pedido recibido, inventario actualizado")

	pedido.Estado = "recibido"
	now := time.Now()
	pedido.ReceivedAt = &now
	return pedidoToResponse(pedido), nil
}

func (s *pedidoService) CancelarPedido(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return validacion("pedido no encontrado")
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		ok, err := s.repo.MarcarCanceladoTx(tx, id)
		if err != nil {
			return err
		}
		if !ok {
			return conflicto("el pedido ya fue procesado")
		}
		return nil
	})
	if txErr != nil {
		if errors.Is(txErr, ErrConflictoEstado) {
			return txErr
		}
		return persistencia("no se pudo cancelar el pedido", txErr)
	}

	log.Info().Str("pedido_id", id.String()).Msg("pedido cancelado")
	return nil
}

func (s *pedidoService) ObtenerPedido(ctx context.Context, id uuid.UUID) (*dto.PedidoResponse, error) {
	pedido, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, validacion("pedido no encontrado")
	}
	return pedidoToResponse(pedido), nil
}

func (s *pedidoService) ListPedidos(ctx context.Context, filter dto.PedidoFilter) (*dto.PedidoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	pedidos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, persistencia("no se pudieron listar los pedidos", err)
	}
	data := make([]dto.PedidoResponse, 0, len(pedidos))
	for i := range pedidos {
		data = append(data, *pedidoToResponse(&pedidos[i]))
	}
	return &dto.PedidoListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func pedidoToResponse(p *model.Pedido) *dto.PedidoResponse {
	items := make([]dto.ItemPedidoResponse, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, dto.ItemPedidoResponse{
			ProductoID:    item.ProductoID.String(),
			Descripcion:   item.Descripcion,
			Cantidad:      item.Cantidad,
			CostoUnitario: item.CostoUnitario,
		})
	}
	resp := &dto.PedidoResponse{
		ID:          p.ID.String(),
		ProveedorID: p.ProveedorID.String(),
		Estado:      p.Estado,
		Items:       items,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
	if p.Proveedor != nil {
		resp.Proveedor = p.Proveedor.Nombre
	}
	if p.ReceivedAt != nil {
		received := p.ReceivedAt.Format(time.RFC3339)
		resp.ReceivedAt = &received
	}
	return resp
}
