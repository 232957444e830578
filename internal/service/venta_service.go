package service

import (
	"context"
	"errors"
	"fmt"

	"puntoventa/internal/dto"
	"puntoventa/internal/model"
	"puntoventa/internal/repository"
	"puntoventa/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TasaIVA is the fixed tax rate applied to the taxable base of every sale.
var TasaIVA = decimal.RequireFromString("0.16")

// Totales holds the derived financial fields of a sale. Always recomputed
// from the lines and the discount — never trusted from a cached value.
type Totales struct {
	Subtotal decimal.Decimal
	Impuesto decimal.Decimal
	Total    decimal.Decimal
}

// CalcularTotales is pure: subtotal = Σ(cantidad × precio), taxable base =
// max(subtotal − descuento, 0), impuesto = base × TasaIVA, total = base +
// impuesto. A discount exceeding the subtotal clamps everything to zero.
func CalcularTotales(items []model.VentaItem, descuento decimal.Decimal) Totales {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.PrecioUnitario.Mul(decimal.NewFromInt(int64(it.Cantidad))))
	}
	base := subtotal.Sub(descuento)
	if base.IsNegative() {
		base = decimal.Zero
	}
	impuesto := base.Mul(TasaIVA).Round(2)
	return Totales{
		Subtotal: subtotal,
		Impuesto: impuesto,
		Total:    base.Add(impuesto),
	}
}

type VentaService interface {
	RegistrarVenta(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error)
	AnularVenta(ctx context.Context, usuarioID, id uuid.UUID, motivo string) error
	ObtenerVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error)
	ListVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error)

	// Read-only aggregates feeding reconciliation and report panels.
	TotalesPorMetodo(ctx context.Context, sesionID uuid.UUID) (*dto.VentasPorMetodoResponse, error)
	VentasPorRango(ctx context.Context, desde, hasta string) (*dto.VentasPorRangoResponse, error)
}

type ventaService struct {
	repo         repository.VentaRepository
	productoRepo repository.ProductoRepository
	clienteRepo  repository.ClienteRepository
	entradaRepo  repository.EntradaInventarioRepository
	caja         CajaService
	dispatcher   *worker.Dispatcher
}

func NewVentaService(
	repo repository.VentaRepository,
	productoRepo repository.ProductoRepository,
	clienteRepo repository.ClienteRepository,
	entradaRepo repository.EntradaInventarioRepository,
	caja CajaService,
	dispatcher *worker.Dispatcher,
) VentaService {
	return &ventaService{
		repo:         repo,
		productoRepo: productoRepo,
		clienteRepo:  clienteRepo,
		entradaRepo:  entradaRepo,
		caja:         caja,
		dispatcher:   dispatcher,
	}
}

// runTx executes fn inside a GORM transaction when db is available, or calls
// fn(nil) directly when db is nil (unit test mode with in-memory fakes).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── RegistrarVenta ────────────────────────────────────────────────────────────
// One atomic unit of work:
//  1. validate session open, cliente, items
//  2. resolve products and snapshot prices (pre-flight, outside tx)
//  3. BEGIN TX: folio, insert header + items, guarded stock decrement per line
//  4. COMMIT — any failure aborts the whole unit; the in-memory venta keeps
//     id uuid.Nil so the caller can re-edit and resubmit safely
//  5. (async) low-stock alert, fire & forget

func (s *ventaService) RegistrarVenta(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error) {
	sesionID, err := uuid.Parse(req.SesionCajaID)
	if err != nil {
		return nil, validacion("sesion_caja_id inválido")
	}
	clienteID, err := uuid.Parse(req.ClienteID)
	if err != nil {
		return nil, validacion("cliente_id inválido")
	}
	if len(req.Items) == 0 {
		return nil, validacion("la venta debe tener al menos un artículo")
	}
	if req.Descuento.IsNegative() {
		return nil, validacion("el descuento no puede ser negativo")
	}
	if req.MetodoPago != "efectivo" && req.MetodoPago != "tarjeta" {
		return nil, validacion("método de pago inválido")
	}

	// Session gate: every sale belongs to an open drawer session.
	if err := s.caja.ValidarSesionAbierta(ctx, sesionID); err != nil {
		return nil, err
	}

	if _, err := s.clienteRepo.FindByID(ctx, clienteID); err != nil {
		return nil, validacion("cliente no encontrado")
	}

	// Resolve products and snapshot prices. The stock check here is a
	// pre-flight read and may be stale; the guarded decrement inside the
	// transaction is the authoritative check.
	items := make([]model.VentaItem, 0, len(req.Items))
	nombres := make([]string, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Cantidad <= 0 {
			return nil, validacion("la cantidad debe ser mayor a cero")
		}
		pid, err := uuid.Parse(item.ProductoID)
		if err != nil {
			return nil, validacion("producto_id inválido")
		}
		p, err := s.productoRepo.FindByID(ctx, pid)
		if err != nil {
			return nil, validacion(fmt.Sprintf("producto %s no encontrado", item.ProductoID))
		}
		if !p.Activo {
			return nil, validacion(fmt.Sprintf("producto %s está inactivo y no puede venderse", p.Nombre))
		}
		if p.StockActual < item.Cantidad {
			return nil, conflicto(fmt.Sprintf("stock insuficiente de %s (disponible: %d)", p.Nombre, p.StockActual))
		}
		precio := p.PrecioVenta
		items = append(items, model.VentaItem{
			ProductoID:     pid,
			Cantidad:       item.Cantidad,
			PrecioUnitario: precio,
			Subtotal:       precio.Mul(decimal.NewFromInt(int64(item.Cantidad))),
		})
		nombres = append(nombres, p.Nombre)
	}

	// Totals are recomputed here, immediately before commit.
	totales := CalcularTotales(items, req.Descuento)

	var venta model.Venta
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		folio, err := s.repo.NextFolio(ctx, tx)
		if err != nil {
			return err
		}

		venta = model.Venta{
			Folio:        folio,
			SesionCajaID: sesionID,
			ClienteID:    clienteID,
			UsuarioID:    usuarioID,
			MetodoPago:   req.MetodoPago,
			Subtotal:     totales.Subtotal,
			Descuento:    req.Descuento,
			Impuesto:     totales.Impuesto,
			Total:        totales.Total,
			Estado:       "completada",
			Items:        items,
		}

		// Header first, then items (GORM association insert), then the
		// stock decrements — no line references an unassigned header id and
		// no stock moves before its line is durable.
		if err := s.repo.Create(ctx, tx, &venta); err != nil {
			return err
		}

		for _, it := range venta.Items {
			if err := s.productoRepo.DescontarStockTx(tx, it.ProductoID, it.Cantidad); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		if errors.Is(txErr, repository.ErrStockInsuficiente) {
			return nil, conflicto("stock insuficiente para completar la venta")
		}
		return nil, persistencia("no se pudo registrar la venta", txErr)
	}

	// Low-stock alert — best effort, never blocks the sale.
	if s.dispatcher != nil {
		ids := make([]string, len(venta.Items))
		for i, it := range venta.Items {
			ids[i] = it.ProductoID.String()
		}
		_ = s.dispatcher.EnqueueAlertaStock(ctx, worker.AlertaStockPayload{ProductoIDs: ids})
	}

	resp := ventaToResponse(&venta)
	for i, n := range nombres {
		resp.Items[i].Producto = n
	}
	return resp, nil
}

// ── AnularVenta ───────────────────────────────────────────────────────────────
// Restores stock for every line, zeroes the financial fields and flips estado
// to "anulada". The historical row and its items survive. Each restock is
// audited as an entrada de inventario.

func (s *ventaService) AnularVenta(ctx context.Context, usuarioID, id uuid.UUID, motivo string) error {
	venta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return validacion("venta no encontrada")
	}
	if venta.Estado == "anulada" {
		return conflicto("la venta ya está anulada")
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		for _, item := range venta.Items {
			if err := s.productoRepo.IncrementarStockTx(tx, item.ProductoID, item.Cantidad); err != nil {
				return err
			}
			entrada := &model.EntradaInventario{
				ProductoID: item.ProductoID,
				UsuarioID:  usuarioID,
				Cantidad:   item.Cantidad,
				Nota:       fmt.Sprintf("Anulación venta #%d: %s", venta.Folio, motivo),
			}
			if err := s.entradaRepo.CreateTx(tx, entrada); err != nil {
				return err
			}
		}
		return s.repo.AnularTx(tx, id)
	})
	if txErr != nil {
		return persistencia("no se pudo anular la venta", txErr)
	}

	log.Info().
		Int("folio", venta.Folio).
		Str("motivo", motivo).
		Msg("venta anulada")
	return nil
}

func (s *ventaService) ObtenerVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error) {
	venta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, validacion("venta no encontrada")
	}
	return ventaToResponse(venta), nil
}

// ListVentas returns a paginated list of sales filtered by date and estado.
// Default filter: today's completed sales.
func (s *ventaService) ListVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	if filter.Estado == "" {
		filter.Estado = "completada"
	}
	ventas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, persistencia("no se pudieron listar las ventas", err)
	}
	items := make([]dto.VentaResponse, 0, len(ventas))
	for i := range ventas {
		items = append(items, *ventaToResponse(&ventas[i]))
	}
	return &dto.VentaListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *ventaService) TotalesPorMetodo(ctx context.Context, sesionID uuid.UUID) (*dto.VentasPorMetodoResponse, error) {
	sums, err := s.repo.SumPorMetodo(ctx, sesionID)
	if err != nil {
		return nil, persistencia("no se pudieron calcular los totales", err)
	}
	return &dto.VentasPorMetodoResponse{
		SesionCajaID: sesionID.String(),
		Efectivo:     sums["efectivo"],
		Tarjeta:      sums["tarjeta"],
		Total:        sums["efectivo"].Add(sums["tarjeta"]),
	}, nil
}

func (s *ventaService) VentasPorRango(ctx context.Context, desde, hasta string) (*dto.VentasPorRangoResponse, error) {
	suma, conteo, err := s.repo.SumPorRango(ctx, desde, hasta)
	if err != nil {
		return nil, persistencia("no se pudo calcular el rango", err)
	}
	return &dto.VentasPorRangoResponse{
		Desde:       desde,
		Hasta:       hasta,
		TotalVentas: suma,
		NumVentas:   conteo,
	}, nil
}

func ventaToResponse(v *model.Venta) *dto.VentaResponse {
	items := make([]dto.ItemVentaResponse, 0, len(v.Items))
	for _, item := range v.Items {
		nombre := ""
		if item.Producto != nil {
			nombre = item.Producto.Nombre
		}
		items = append(items, dto.ItemVentaResponse{
			Producto:       nombre,
			Cantidad:       item.Cantidad,
			PrecioUnitario: item.PrecioUnitario,
			Subtotal:       item.Subtotal,
		})
	}
	return &dto.VentaResponse{
		ID:           v.ID.String(),
		Folio:        v.Folio,
		SesionCajaID: v.SesionCajaID.String(),
		ClienteID:    v.ClienteID.String(),
		UsuarioID:    v.UsuarioID.String(),
		MetodoPago:   v.MetodoPago,
		Items:        items,
		Subtotal:     v.Subtotal,
		Descuento:    v.Descuento,
		Impuesto:     v.Impuesto,
		Total:        v.Total,
		Estado:       v.Estado,
		CreatedAt:    v.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
