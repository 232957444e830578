package service_test

// In-memory repository fakes. Each fake tracks just enough state for the
// behavior under test; compile-time assertions keep them honest against the
// real interfaces.

import (
	"context"
	"errors"
	"time"

	"puntoventa/internal/dto"
	"puntoventa/internal/model"
	"puntoventa/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var errNotFound = gorm.ErrRecordNotFound

// ── ProductoRepository ───────────────────────────────────────────────────────

type fakeProductoRepo struct {
	productos map[uuid.UUID]*model.Producto
	// failDescuentoID makes DescontarStockTx fail for one product, simulating
	// a concurrent sale draining stock between pre-check and commit.
	failDescuentoID uuid.UUID
}

func newFakeProductoRepo() *fakeProductoRepo {
	return &fakeProductoRepo{productos: make(map[uuid.UUID]*model.Producto)}
}

func (r *fakeProductoRepo) add(p *model.Producto) *model.Producto {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.productos[p.ID] = p
	return p
}

func (r *fakeProductoRepo) Create(_ context.Context, p *model.Producto) error {
	r.add(p)
	return nil
}

func (r *fakeProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, errNotFound
	}
	return p, nil
}

func (r *fakeProductoRepo) FindByCodigo(_ context.Context, codigo string) (*model.Producto, error) {
	for _, p := range r.productos {
		if p.Codigo == codigo && p.Activo {
			return p, nil
		}
	}
	return nil, errNotFound
}

func (r *fakeProductoRepo) SearchByNombre(_ context.Context, _ string) ([]model.Producto, error) {
	return nil, nil
}

func (r *fakeProductoRepo) List(_ context.Context, _ dto.ProductoFilter) ([]model.Producto, int64, error) {
	return nil, 0, nil
}

func (r *fakeProductoRepo) Update(_ context.Context, p *model.Producto) error {
	r.productos[p.ID] = p
	return nil
}

func (r *fakeProductoRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if p, ok := r.productos[id]; ok {
		p.Activo = false
	}
	return nil
}

func (r *fakeProductoRepo) Reactivar(_ context.Context, id uuid.UUID) error {
	if p, ok := r.productos[id]; ok {
		p.Activo = true
	}
	return nil
}

func (r *fakeProductoRepo) FindByProveedorID(_ context.Context, _ uuid.UUID) ([]model.Producto, error) {
	return nil, nil
}

func (r *fakeProductoRepo) ListBajoMinimo(_ context.Context) ([]model.Producto, error) {
	var out []model.Producto
	for _, p := range r.productos {
		if p.Activo && p.StockActual <= p.StockMinimo {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProductoRepo) DescontarStockTx(_ *gorm.DB, id uuid.UUID, cantidad int) error {
	if id == r.failDescuentoID {
		return repository.ErrStockInsuficiente
	}
	p, ok := r.productos[id]
	if !ok || p.StockActual < cantidad {
		return repository.ErrStockInsuficiente
	}
	p.StockActual -= cantidad
	return nil
}

func (r *fakeProductoRepo) IncrementarStockTx(_ *gorm.DB, id uuid.UUID, cantidad int) error {
	p, ok := r.productos[id]
	if !ok {
		return errNotFound
	}
	p.StockActual += cantidad
	return nil
}

func (r *fakeProductoRepo) DB() *gorm.DB { return nil }

var _ repository.ProductoRepository = (*fakeProductoRepo)(nil)

// ── VentaRepository ──────────────────────────────────────────────────────────

type fakeVentaRepo struct {
	ventas   map[uuid.UUID]*model.Venta
	folioSeq int
	// sumErr makes the aggregate fail, simulating a store error mid-close.
	sumErr error
}

func newFakeVentaRepo() *fakeVentaRepo {
	return &fakeVentaRepo{ventas: make(map[uuid.UUID]*model.Venta)}
}

func (r *fakeVentaRepo) Create(_ context.Context, _ *gorm.DB, v *model.Venta) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	for i := range v.Items {
		if v.Items[i].ID == uuid.Nil {
			v.Items[i].ID = uuid.New()
		}
		v.Items[i].VentaID = v.ID
	}
	v.CreatedAt = time.Now()
	r.ventas[v.ID] = v
	return nil
}

func (r *fakeVentaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Venta, error) {
	v, ok := r.ventas[id]
	if !ok {
		return nil, errNotFound
	}
	return v, nil
}

func (r *fakeVentaRepo) NextFolio(_ context.Context, _ *gorm.DB) (int, error) {
	r.folioSeq++
	return r.folioSeq, nil
}

func (r *fakeVentaRepo) AnularTx(_ *gorm.DB, id uuid.UUID) error {
	v, ok := r.ventas[id]
	if !ok {
		return errNotFound
	}
	v.Estado = "anulada"
	v.Subtotal = decimal.Zero
	v.Impuesto = decimal.Zero
	v.Total = decimal.Zero
	return nil
}

func (r *fakeVentaRepo) List(_ context.Context, _ dto.VentaFilter) ([]model.Venta, int64, error) {
	var out []model.Venta
	for _, v := range r.ventas {
		out = append(out, *v)
	}
	return out, int64(len(out)), nil
}

func (r *fakeVentaRepo) SumPorMetodo(_ context.Context, sesionID uuid.UUID) (map[string]decimal.Decimal, error) {
	return r.SumPorMetodoTx(nil, sesionID)
}

func (r *fakeVentaRepo) SumPorMetodoTx(_ *gorm.DB, sesionID uuid.UUID) (map[string]decimal.Decimal, error) {
	if r.sumErr != nil {
		return nil, r.sumErr
	}
	sums := map[string]decimal.Decimal{"efectivo": decimal.Zero, "tarjeta": decimal.Zero}
	for _, v := range r.ventas {
		if v.SesionCajaID == sesionID && v.Estado == "completada" {
			sums[v.MetodoPago] = sums[v.MetodoPago].Add(v.Total)
		}
	}
	return sums, nil
}

func (r *fakeVentaRepo) SumPorRango(_ context.Context, _, _ string) (decimal.Decimal, int64, error) {
	total := decimal.Zero
	var n int64
	for _, v := range r.ventas {
		if v.Estado == "completada" {
			total = total.Add(v.Total)
			n++
		}
	}
	return total, n, nil
}

func (r *fakeVentaRepo) DB() *gorm.DB { return nil }

var _ repository.VentaRepository = (*fakeVentaRepo)(nil)

// ── ClienteRepository ────────────────────────────────────────────────────────

type fakeClienteRepo struct {
	clientes map[uuid.UUID]*model.Cliente
}

func newFakeClienteRepo() *fakeClienteRepo {
	return &fakeClienteRepo{clientes: make(map[uuid.UUID]*model.Cliente)}
}

func (r *fakeClienteRepo) add(c *model.Cliente) *model.Cliente {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.clientes[c.ID] = c
	return c
}

func (r *fakeClienteRepo) Create(_ context.Context, c *model.Cliente) error {
	r.add(c)
	return nil
}

func (r *fakeClienteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Cliente, error) {
	c, ok := r.clientes[id]
	if !ok {
		return nil, errNotFound
	}
	return c, nil
}

func (r *fakeClienteRepo) SearchByNombre(_ context.Context, _ string) ([]model.Cliente, error) {
	return nil, nil
}

func (r *fakeClienteRepo) List(_ context.Context) ([]model.Cliente, error) { return nil, nil }

func (r *fakeClienteRepo) Update(_ context.Context, c *model.Cliente) error {
	r.clientes[c.ID] = c
	return nil
}

func (r *fakeClienteRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if c, ok := r.clientes[id]; ok {
		c.Activo = false
	}
	return nil
}

var _ repository.ClienteRepository = (*fakeClienteRepo)(nil)

// ── EntradaInventarioRepository ──────────────────────────────────────────────

type fakeEntradaRepo struct {
	entradas []model.EntradaInventario
}

func (r *fakeEntradaRepo) Create(_ context.Context, e *model.EntradaInventario) error {
	return r.CreateTx(nil, e)
}

func (r *fakeEntradaRepo) CreateTx(_ *gorm.DB, e *model.EntradaInventario) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.CreatedAt = time.Now()
	r.entradas = append(r.entradas, *e)
	return nil
}

func (r *fakeEntradaRepo) List(_ context.Context, filter repository.EntradaInventarioFilter) ([]model.EntradaInventario, int64, error) {
	var out []model.EntradaInventario
	for _, e := range r.entradas {
		if filter.ProductoID != nil && e.ProductoID != *filter.ProductoID {
			continue
		}
		if filter.PedidoID != nil && (e.PedidoID == nil || *e.PedidoID != *filter.PedidoID) {
			continue
		}
		out = append(out, e)
	}
	return out, int64(len(out)), nil
}

var _ repository.EntradaInventarioRepository = (*fakeEntradaRepo)(nil)

// ── CajaRepository ───────────────────────────────────────────────────────────

type fakeCajaRepo struct {
	sesiones    map[uuid.UUID]*model.SesionCaja
	movimientos []model.MovimientoCaja
}

func newFakeCajaRepo() *fakeCajaRepo {
	return &fakeCajaRepo{sesiones: make(map[uuid.UUID]*model.SesionCaja)}
}

func (r *fakeCajaRepo) CreateSesion(_ context.Context, s *model.SesionCaja) error {
	// Mirror of the partial unique index: one open session per operator per
	// day.
	for _, existing := range r.sesiones {
		if existing.UsuarioID == s.UsuarioID && existing.Estado == "abierta" &&
			existing.Fecha.Equal(s.Fecha) {
			return errors.New("duplicate key value violates unique constraint \"uniq_sesion_abierta_por_dia\"")
		}
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.sesiones[s.ID] = s
	return nil
}

func (r *fakeCajaRepo) FindSesionByID(_ context.Context, id uuid.UUID) (*model.SesionCaja, error) {
	s, ok := r.sesiones[id]
	if !ok {
		return nil, errNotFound
	}
	return s, nil
}

func (r *fakeCajaRepo) FindSesionAbiertaHoy(_ context.Context, usuarioID uuid.UUID) (*model.SesionCaja, error) {
	for _, s := range r.sesiones {
		if s.UsuarioID == usuarioID && s.Estado == "abierta" {
			return s, nil
		}
	}
	return nil, errNotFound
}

func (r *fakeCajaRepo) CerrarSesionTx(_ *gorm.DB, id uuid.UUID, cierre repository.CierreSesion) (bool, error) {
	s, ok := r.sesiones[id]
	if !ok || s.Estado != "abierta" {
		return false, nil
	}
	s.VentasEfectivo = &cierre.VentasEfectivo
	s.VentasTarjeta = &cierre.VentasTarjeta
	s.MontoEsperado = &cierre.MontoEsperado
	s.MontoContado = &cierre.MontoContado
	s.Diferencia = &cierre.Diferencia
	s.Estado = "cerrada"
	now := time.Now()
	s.ClosedAt = &now
	return true, nil
}

func (r *fakeCajaRepo) ListSesiones(_ context.Context, _, _ int) ([]model.SesionCaja, int64, error) {
	var out []model.SesionCaja
	for _, s := range r.sesiones {
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (r *fakeCajaRepo) CreateMovimiento(_ context.Context, m *model.MovimientoCaja) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *fakeCajaRepo) ListMovimientos(_ context.Context, sesionID uuid.UUID) ([]model.MovimientoCaja, error) {
	var out []model.MovimientoCaja
	for _, m := range r.movimientos {
		if m.SesionCajaID == sesionID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeCajaRepo) SumMovimientosPorTipo(_ context.Context, sesionID uuid.UUID, tipo string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, m := range r.movimientos {
		if m.SesionCajaID == sesionID && m.Tipo == tipo {
			total = total.Add(m.Monto)
		}
	}
	return total, nil
}

func (r *fakeCajaRepo) DB() *gorm.DB { return nil }

var _ repository.CajaRepository = (*fakeCajaRepo)(nil)

// ── PedidoRepository ─────────────────────────────────────────────────────────

type fakePedidoRepo struct {
	pedidos map[uuid.UUID]*model.Pedido
}

func newFakePedidoRepo() *fakePedidoRepo {
	return &fakePedidoRepo{pedidos: make(map[uuid.UUID]*model.Pedido)}
}

func (r *fakePedidoRepo) Create(_ context.Context, _ *gorm.DB, p *model.Pedido) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	for i := range p.Items {
		p.Items[i].PedidoID = p.ID
	}
	p.CreatedAt = time.Now()
	r.pedidos[p.ID] = p
	return nil
}

func (r *fakePedidoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Pedido, error) {
	p, ok := r.pedidos[id]
	if !ok {
		return nil, errNotFound
	}
	return p, nil
}

func (r *fakePedidoRepo) List(_ context.Context, _ dto.PedidoFilter) ([]model.Pedido, int64, error) {
	var out []model.Pedido
	for _, p := range r.pedidos {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *fakePedidoRepo) MarcarRecibidoTx(_ *gorm.DB, id uuid.UUID) (bool, error) {
	p, ok := r.pedidos[id]
	if !ok || p.Estado != "pendiente" {
		return false, nil
	}
	p.Estado = "recibido"
	now := time.Now()
	p.ReceivedAt = &now
	return true, nil
}

func (r *fakePedidoRepo) MarcarCanceladoTx(_ *gorm.DB, id uuid.UUID) (bool, error) {
	p, ok := r.pedidos[id]
	if !ok || p.Estado != "pendiente" {
		return false, nil
	}
	p.Estado = "cancelado"
	return true, nil
}

func (r *fakePedidoRepo) DB() *gorm.DB { return nil }

var _ repository.PedidoRepository = (*fakePedidoRepo)(nil)

// ── ProveedorRepository ──────────────────────────────────────────────────────

type fakeProveedorRepo struct {
	proveedores map[uuid.UUID]*model.Proveedor
}

func newFakeProveedorRepo() *fakeProveedorRepo {
	return &fakeProveedorRepo{proveedores: make(map[uuid.UUID]*model.Proveedor)}
}

func (r *fakeProveedorRepo) add(p *model.Proveedor) *model.Proveedor {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.proveedores[p.ID] = p
	return p
}

func (r *fakeProveedorRepo) Create(_ context.Context, p *model.Proveedor) error {
	r.add(p)
	return nil
}

func (r *fakeProveedorRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Proveedor, error) {
	p, ok := r.proveedores[id]
	if !ok {
		return nil, errNotFound
	}
	return p, nil
}

func (r *fakeProveedorRepo) List(_ context.Context) ([]model.Proveedor, error) { return nil, nil }

func (r *fakeProveedorRepo) Update(_ context.Context, p *model.Proveedor) error {
	r.proveedores[p.ID] = p
	return nil
}

func (r *fakeProveedorRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if p, ok := r.proveedores[id]; ok {
		p.Activo = false
	}
	return nil
}

var _ repository.ProveedorRepository = (*fakeProveedorRepo)(nil)
