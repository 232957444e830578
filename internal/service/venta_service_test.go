package service_test

import (
	"context"
	"testing"
	"time"

	"puntoventa/internal/dto"
	"puntoventa/internal/model"
	"puntoventa/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type ventaFixture struct {
	svc          service.VentaService
	ventaRepo    *fakeVentaRepo
	productoRepo *fakeProductoRepo
	clienteRepo  *fakeClienteRepo
	entradaRepo  *fakeEntradaRepo
	cajaRepo     *fakeCajaRepo
	sesion       *model.SesionCaja
	cliente      *model.Cliente
	usuarioID    uuid.UUID
}

func newVentaFixture(t *testing.T) *ventaFixture {
	t.Helper()
	f := &ventaFixture{
		ventaRepo:    newFakeVentaRepo(),
		productoRepo: newFakeProductoRepo(),
		clienteRepo:  newFakeClienteRepo(),
		entradaRepo:  &fakeEntradaRepo{},
		cajaRepo:     newFakeCajaRepo(),
		usuarioID:    uuid.New(),
	}
	f.sesion = &model.SesionCaja{
		UsuarioID:    f.usuarioID,
		Fecha:        time.Now().Truncate(24 * time.Hour),
		MontoInicial: dec("100"),
		Estado:       "abierta",
		OpenedAt:     time.Now(),
	}
	require.NoError(t, f.cajaRepo.CreateSesion(context.Background(), f.sesion))
	f.cliente = f.clienteRepo.add(&model.Cliente{Nombre: "Público general", Activo: true})

	cajaSvc := service.NewCajaService(f.cajaRepo, f.ventaRepo)
	f.svc = service.NewVentaService(f.ventaRepo, f.productoRepo, f.clienteRepo, f.entradaRepo, cajaSvc, nil)
	return f
}

func (f *ventaFixture) producto(codigo string, precio string, stock int) *model.Producto {
	return f.productoRepo.add(&model.Producto{
		Codigo:      codigo,
		Nombre:      "Producto " + codigo,
		PrecioVenta: dec(precio),
		StockActual: stock,
		StockMinimo: 5,
		Activo:      true,
	})
}

func TestCalcularTotales(t *testing.T) {
	items := []model.VentaItem{
		{Cantidad: 2, PrecioUnitario: dec("50"), Subtotal: dec("100")},
		{Cantidad: 1, PrecioUnitario: dec("100"), Subtotal: dec("100")},
	}

	tot := service.CalcularTotales(items, dec("50"))
	assert.True(t, tot.Subtotal.Equal(dec("200")), "subtotal = %s", tot.Subtotal)
	assert.True(t, tot.Impuesto.Equal(dec("24")), "impuesto = %s", tot.Impuesto)
	assert.True(t, tot.Total.Equal(dec("174")), "total = %s", tot.Total)
}

func TestCalcularTotalesDescuentoMayorQueSubtotal(t *testing.T) {
	items := []model.VentaItem{
		{Cantidad: 1, PrecioUnitario: dec("80"), Subtotal: dec("80")},
	}

	// The discounted base clamps at zero; no negative totals ever.
	tot := service.CalcularTotales(items, dec("200"))
	assert.True(t, tot.Subtotal.Equal(dec("80")))
	assert.True(t, tot.Impuesto.IsZero(), "impuesto = %s", tot.Impuesto)
	assert.True(t, tot.Total.IsZero(), "total = %s", tot.Total)
}

func TestCalcularTotalesRedondeaImpuesto(t *testing.T) {
	items := []model.VentaItem{
		{Cantidad: 1, PrecioUnitario: dec("33.33"), Subtotal: dec("33.33")},
	}

	tot := service.CalcularTotales(items, decimal.Zero)
	// 33.33 * 0.16 = 5.3328 → 5.33
	assert.True(t, tot.Impuesto.Equal(dec("5.33")), "impuesto = %s", tot.Impuesto)
	assert.True(t, tot.Total.Equal(dec("38.66")), "total = %s", tot.Total)
}

func TestRegistrarVenta(t *testing.T) {
	f := newVentaFixture(t)
	p := f.producto("COCA-600", "20", 10)

	resp, err := f.svc.RegistrarVenta(context.Background(), f.usuarioID, dto.RegistrarVentaRequest{
		SesionCajaID: f.sesion.ID.String(),
		ClienteID:    f.cliente.ID.String(),
		MetodoPago:   "efectivo",
		Items: []dto.ItemVentaRequest{
			{ProductoID: p.ID.String(), Cantidad: 3},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Folio)
	assert.Equal(t, "completada", resp.Estado)
	assert.True(t, resp.Subtotal.Equal(dec("60")))
	assert.True(t, resp.Impuesto.Equal(dec("9.6")), "impuesto = %s", resp.Impuesto)
	assert.True(t, resp.Total.Equal(dec("69.6")), "total = %s", resp.Total)
	assert.Equal(t, 7, p.StockActual, "el stock debe descontarse al confirmar")
}

func TestRegistrarVentaFolioConsecutivo(t *testing.T) {
	f := newVentaFixture(t)
	p := f.producto("PAN-BCO", "35", 50)

	for esperado := 1; esperado <= 3; esperado++ {
		resp, err := f.svc.RegistrarVenta(context.Background(), f.usuarioID, dto.RegistrarVentaRequest{
			SesionCajaID: f.sesion.ID.String(),
			ClienteID:    f.cliente.ID.String(),
			MetodoPago:   "tarjeta",
			Items:        []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 1}},
		})
		require.NoError(t, err)
		assert.Equal(t, esperado, resp.Folio)
	}
}

func TestRegistrarVentaStockInsuficiente(t *testing.T) {
	f := newVentaFixture(t)
	p := f.producto("LECHE-1L", "28", 2)

	_, err := f.svc.RegistrarVenta(context.Background(), f.usuarioID, dto.RegistrarVentaRequest{
		SesionCajaID: f.sesion.ID.String(),
		ClienteID:    f.cliente.ID.String(),
		MetodoPago:   "efectivo",
		Items:        []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 5}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrConflictoEstado)
	assert.Equal(t, 2, p.StockActual, "el stock no debe tocarse en una venta rechazada")
}

func TestRegistrarVentaStockDrenadoEnCommit(t *testing.T) {
	// The pre-flight read passes but the guarded decrement fails, as when a
	// concurrent sale drains the stock between read and commit.
	f := newVentaFixture(t)
	p := f.producto("CAFE-250", "95", 10)
	f.productoRepo.failDescuentoID = p.ID

	_, err := f.svc.RegistrarVenta(context.Background(), f.usuarioID, dto.RegistrarVentaRequest{
		SesionCajaID: f.sesion.ID.String(),
		ClienteID:    f.cliente.ID.String(),
		MetodoPago:   "efectivo",
		Items:        []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 1}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrConflictoEstado)
}

func TestRegistrarVentaSesionCerrada(t *testing.T) {
	f := newVentaFixture(t)
	p := f.producto("GALLETAS", "15", 10)
	f.sesion.Estado = "cerrada"

	_, err := f.svc.RegistrarVenta(context.Background(), f.usuarioID, dto.RegistrarVentaRequest{
		SesionCajaID: f.sesion.ID.String(),
		ClienteID:    f.cliente.ID.String(),
		MetodoPago:   "efectivo",
		Items:        []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 1}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrConflictoEstado)
	assert.Equal(t, 10, p.StockActual)
}

func TestRegistrarVentaProductoInactivo(t *testing.T) {
	f := newVentaFixture(t)
	p := f.producto("DESCONT", "10", 10)
	p.Activo = false

	_, err := f.svc.RegistrarVenta(context.Background(), f.usuarioID, dto.RegistrarVentaRequest{
		SesionCajaID: f.sesion.ID.String(),
		ClienteID:    f.cliente.ID.String(),
		MetodoPago:   "efectivo",
		Items:        []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 1}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrValidacion)
}

func TestAnularVentaRestauraStock(t *testing.T) {
	f := newVentaFixture(t)
	p := f.producto("AGUA-1L", "12", 10)

	resp, err := f.svc.RegistrarVenta(context.Background(), f.usuarioID, dto.RegistrarVentaRequest{
		SesionCajaID: f.sesion.ID.String(),
		ClienteID:    f.cliente.ID.String(),
		MetodoPago:   "efectivo",
		Items:        []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 4}},
	})
	require.NoError(t, err)
	require.Equal(t, 6, p.StockActual)

	ventaID := uuid.MustParse(resp.ID)
	require.NoError(t, f.svc.AnularVenta(context.Background(), f.usuarioID, ventaID, "cobro duplicado"))

	assert.Equal(t, 10, p.StockActual, "la anulación debe restaurar el stock completo")

	venta, err := f.ventaRepo.FindByID(context.Background(), ventaID)
	require.NoError(t, err)
	assert.Equal(t, "anulada", venta.Estado)
	assert.True(t, venta.Total.IsZero(), "total tras anular = %s", venta.Total)
	assert.Len(t, venta.Items, 1, "las líneas históricas sobreviven")

	require.Len(t, f.entradaRepo.entradas, 1, "cada restauración deja rastro de auditoría")
	entrada := f.entradaRepo.entradas[0]
	assert.Equal(t, p.ID, entrada.ProductoID)
	assert.Equal(t, 4, entrada.Cantidad)
	assert.Contains(t, entrada.Nota, "cobro duplicado")
}

func TestAnularVentaDosVeces(t *testing.T) {
	f := newVentaFixture(t)
	p := f.producto("CHICLE", "8", 10)

	resp, err := f.svc.RegistrarVenta(context.Background(), f.usuarioID, dto.RegistrarVentaRequest{
		SesionCajaID: f.sesion.ID.String(),
		ClienteID:    f.cliente.ID.String(),
		MetodoPago:   "efectivo",
		Items:        []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 2}},
	})
	require.NoError(t, err)

	ventaID := uuid.MustParse(resp.ID)
	require.NoError(t, f.svc.AnularVenta(context.Background(), f.usuarioID, ventaID, "error de captura"))

	err = f.svc.AnularVenta(context.Background(), f.usuarioID, ventaID, "error de captura")
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrConflictoEstado)
	assert.Equal(t, 10, p.StockActual, "la segunda anulación no debe volver a sumar stock")
}

func TestTotalesPorMetodo(t *testing.T) {
	f := newVentaFixture(t)
	p := f.producto("REFRESCO", "25", 100)

	vender := func(metodo string, cantidad int) {
		_, err := f.svc.RegistrarVenta(context.Background(), f.usuarioID, dto.RegistrarVentaRequest{
			SesionCajaID: f.sesion.ID.String(),
			ClienteID:    f.cliente.ID.String(),
			MetodoPago:   metodo,
			Items:        []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: cantidad}},
		})
		require.NoError(t, err)
	}
	vender("efectivo", 2) // 50 + 8 IVA = 58
	vender("efectivo", 1) // 25 + 4 IVA = 29
	vender("tarjeta", 4)  // 100 + 16 IVA = 116

	resp, err := f.svc.TotalesPorMetodo(context.Background(), f.sesion.ID)
	require.NoError(t, err)
	assert.True(t, resp.Efectivo.Equal(dec("87")), "efectivo = %s", resp.Efectivo)
	assert.True(t, resp.Tarjeta.Equal(dec("116")), "tarjeta = %s", resp.Tarjeta)
	assert.True(t, resp.Total.Equal(dec("203")), "total = %s", resp.Total)
}
