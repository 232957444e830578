package service_test

import (
	"context"
	"testing"

	"puntoventa/internal/dto"
	"puntoventa/internal/model"
	"puntoventa/internal/repository"
	"puntoventa/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inventarioFixture struct {
	svc          service.InventarioService
	productoRepo *fakeProductoRepo
	entradaRepo  *fakeEntradaRepo
	usuarioID    uuid.UUID
}

func newInventarioFixture() *inventarioFixture {
	f := &inventarioFixture{
		productoRepo: newFakeProductoRepo(),
		entradaRepo:  &fakeEntradaRepo{},
		usuarioID:    uuid.New(),
	}
	f.svc = service.NewInventarioService(f.entradaRepo, f.productoRepo)
	return f
}

func TestRecibirStock(t *testing.T) {
	f := newInventarioFixture()
	p := f.productoRepo.add(&model.Producto{
		Codigo:      "JABON-200",
		Nombre:      "Jabón de tocador",
		PrecioVenta: dec("18"),
		StockActual: 4,
		StockMinimo: 5,
		Activo:      true,
	})

	resp, err := f.svc.RecibirStock(context.Background(), f.usuarioID, dto.EntradaInventarioRequest{
		ProductoID: p.ID.String(),
		Cantidad:   24,
		Nota:       "reposición directa de bodega",
	})
	require.NoError(t, err)

	assert.Equal(t, 28, p.StockActual)
	assert.Equal(t, 24, resp.Cantidad)
	assert.Nil(t, resp.PedidoID, "una entrada manual no referencia pedido")

	require.Len(t, f.entradaRepo.entradas, 1)
	entrada := f.entradaRepo.entradas[0]
	assert.Equal(t, p.ID, entrada.ProductoID)
	assert.Equal(t, f.usuarioID, entrada.UsuarioID)
	assert.Equal(t, "reposición directa de bodega", entrada.Nota)
}

func TestRecibirStockProductoInexistente(t *testing.T) {
	f := newInventarioFixture()

	_, err := f.svc.RecibirStock(context.Background(), f.usuarioID, dto.EntradaInventarioRequest{
		ProductoID: uuid.NewString(),
		Cantidad:   10,
		Nota:       "producto fantasma",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrValidacion)
	assert.Empty(t, f.entradaRepo.entradas)
}

func TestRecibirStockCantidadInvalida(t *testing.T) {
	f := newInventarioFixture()
	p := f.productoRepo.add(&model.Producto{
		Codigo:      "CLORO-1L",
		Nombre:      "Cloro",
		PrecioVenta: dec("22"),
		StockActual: 10,
		Activo:      true,
	})

	_, err := f.svc.RecibirStock(context.Background(), f.usuarioID, dto.EntradaInventarioRequest{
		ProductoID: p.ID.String(),
		Cantidad:   0,
		Nota:       "cantidad cero",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrValidacion)
	assert.Equal(t, 10, p.StockActual)
}

func TestObtenerAlertas(t *testing.T) {
	f := newInventarioFixture()

	enAlerta := f.productoRepo.add(&model.Producto{
		Codigo: "PILAS-AA", Nombre: "Pilas AA",
		PrecioVenta: dec("45"), StockActual: 2, StockMinimo: 5, Activo: true,
	})
	f.productoRepo.add(&model.Producto{
		Codigo: "VELAS-12", Nombre: "Velas",
		PrecioVenta: dec("30"), StockActual: 40, StockMinimo: 5, Activo: true,
	})
	// Inactive products never alert, whatever their stock.
	f.productoRepo.add(&model.Producto{
		Codigo: "FUERA-01", Nombre: "Descontinuado",
		PrecioVenta: dec("10"), StockActual: 0, StockMinimo: 5, Activo: false,
	})
	// At exactly the minimum the product already alerts.
	enLimite := f.productoRepo.add(&model.Producto{
		Codigo: "FOCOS-E27", Nombre: "Focos",
		PrecioVenta: dec("60"), StockActual: 5, StockMinimo: 5, Activo: true,
	})

	alertas, err := f.svc.ObtenerAlertas(context.Background())
	require.NoError(t, err)
	require.Len(t, alertas, 2)

	ids := []string{alertas[0].ProductoID, alertas[1].ProductoID}
	assert.Contains(t, ids, enAlerta.ID.String())
	assert.Contains(t, ids, enLimite.ID.String())
}

func TestListarEntradasFiltraPorProducto(t *testing.T) {
	f := newInventarioFixture()
	a := f.productoRepo.add(&model.Producto{
		Codigo: "CERILLO", Nombre: "Cerillos", PrecioVenta: dec("5"), Activo: true,
	})
	b := f.productoRepo.add(&model.Producto{
		Codigo: "SERVILLETA", Nombre: "Servilletas", PrecioVenta: dec("14"), Activo: true,
	})

	for _, pid := range []uuid.UUID{a.ID, a.ID, b.ID} {
		_, err := f.svc.RecibirStock(context.Background(), f.usuarioID, dto.EntradaInventarioRequest{
			ProductoID: pid.String(),
			Cantidad:   5,
			Nota:       "surtido semanal",
		})
		require.NoError(t, err)
	}

	resp, err := f.svc.ListarEntradas(context.Background(), repository.EntradaInventarioFilter{ProductoID: &a.ID})
	require.NoError(t, err)
	assert.Len(t, resp.Data, 2)
	assert.EqualValues(t, 2, resp.Total)
}
