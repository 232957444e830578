package service_test

import (
	"context"
	"errors"
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

type cajaFixture struct {
	svc       service.CajaService
	cajaRepo  *fakeCajaRepo
	ventaRepo *fakeVentaRepo
	usuarioID uuid.UUID
}

func newCajaFixture() *cajaFixture {
	f := &cajaFixture{
		cajaRepo:  newFakeCajaRepo(),
		ventaRepo: newFakeVentaRepo(),
		usuarioID: uuid.New(),
	}
	f.svc = service.NewCajaService(f.cajaRepo, f.ventaRepo)
	return f
}

// ventaEfectivo seeds a completed cash sale directly in the repo; the
// reconciliation only cares about totals per method.
func (f *cajaFixture) venta(t *testing.T, sesionID uuid.UUID, metodo, total string) {
	t.Helper()
	err := f.ventaRepo.Create(context.Background(), nil, &model.Venta{
		SesionCajaID: sesionID,
		ClienteID:    uuid.New(),
		UsuarioID:    f.usuarioID,
		MetodoPago:   metodo,
		Total:        dec(total),
		Estado:       "completada",
	})
	require.NoError(t, err)
}

func TestAbrirCaja(t *testing.T) {
	f := newCajaFixture()

	resp, err := f.svc.Abrir(context.Background(), f.usuarioID, dto.AbrirCajaRequest{
		MontoInicial: dec("500"),
	})
	require.NoError(t, err)

	assert.Equal(t, "abierta", resp.Estado)
	assert.True(t, resp.MontoInicial.Equal(dec("500")))
	assert.Nil(t, resp.MontoEsperado, "sin cifras de cierre mientras está abierta")
}

func TestAbrirCajaDosVecesMismoDia(t *testing.T) {
	f := newCajaFixture()

	_, err := f.svc.Abrir(context.Background(), f.usuarioID, dto.AbrirCajaRequest{MontoInicial: dec("500")})
	require.NoError(t, err)

	_, err = f.svc.Abrir(context.Background(), f.usuarioID, dto.AbrirCajaRequest{MontoInicial: dec("500")})
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrConflictoEstado)
}

func TestAbrirCajaOtroOperador(t *testing.T) {
	f := newCajaFixture()

	_, err := f.svc.Abrir(context.Background(), f.usuarioID, dto.AbrirCajaRequest{MontoInicial: dec("500")})
	require.NoError(t, err)

	// La exclusividad es por operador, no por tienda.
	_, err = f.svc.Abrir(context.Background(), uuid.New(), dto.AbrirCajaRequest{MontoInicial: dec("300")})
	assert.NoError(t, err)
}

func TestCerrarCajaReconcilia(t *testing.T) {
	f := newCajaFixture()

	resp, err := f.svc.Abrir(context.Background(), f.usuarioID, dto.AbrirCajaRequest{MontoInicial: dec("100")})
	require.NoError(t, err)
	sesionID := uuid.MustParse(resp.SesionCajaID)

	f.venta(t, sesionID, "efectivo", "150.75")
	f.venta(t, sesionID, "efectivo", "100")
	f.venta(t, sesionID, "tarjeta", "480")

	cierre, err := f.svc.Cerrar(context.Background(), dto.CerrarCajaRequest{
		SesionCajaID: resp.SesionCajaID,
		MontoContado: dec("340"),
	})
	require.NoError(t, err)

	// esperado = 100 inicial + 250.75 en efectivo; la tarjeta nunca entra al
	// cajón.
	assert.True(t, cierre.VentasEfectivo.Equal(dec("250.75")), "efectivo = %s", cierre.VentasEfectivo)
	assert.True(t, cierre.VentasTarjeta.Equal(dec("480")), "tarjeta = %s", cierre.VentasTarjeta)
	assert.True(t, cierre.MontoEsperado.Equal(dec("350.75")), "esperado = %s", cierre.MontoEsperado)
	assert.True(t, cierre.Diferencia.Equal(dec("-10.75")), "diferencia = %s", cierre.Diferencia)
	assert.Equal(t, "cerrada", cierre.Estado)

	// The row persisted by the close carries the same snapshot the caller
	// got back.
	sesion, err := f.cajaRepo.FindSesionByID(context.Background(), sesionID)
	require.NoError(t, err)
	require.NotNil(t, sesion.VentasEfectivo)
	require.NotNil(t, sesion.MontoEsperado)
	require.NotNil(t, sesion.Diferencia)
	assert.True(t, sesion.VentasEfectivo.Equal(cierre.VentasEfectivo))
	assert.True(t, sesion.MontoEsperado.Equal(cierre.MontoEsperado))
	assert.True(t, sesion.Diferencia.Equal(cierre.Diferencia))
}

func TestCerrarCajaFalloDeSumaNoCierra(t *testing.T) {
	f := newCajaFixture()

	resp, err := f.svc.Abrir(context.Background(), f.usuarioID, dto.AbrirCajaRequest{MontoInicial: dec("100")})
	require.NoError(t, err)

	f.ventaRepo.sumErr = errors.New("connection reset by peer")
	_, err = f.svc.Cerrar(context.Background(), dto.CerrarCajaRequest{
		SesionCajaID: resp.SesionCajaID,
		MontoContado: dec("100"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrPersistencia)

	// The whole close aborts together: the session stays open and a retry
	// can still succeed.
	sesion, err := f.cajaRepo.FindSesionByID(context.Background(), uuid.MustParse(resp.SesionCajaID))
	require.NoError(t, err)
	assert.Equal(t, "abierta", sesion.Estado)
	assert.Nil(t, sesion.MontoEsperado)

	f.ventaRepo.sumErr = nil
	cierre, err := f.svc.Cerrar(context.Background(), dto.CerrarCajaRequest{
		SesionCajaID: resp.SesionCajaID,
		MontoContado: dec("100"),
	})
	require.NoError(t, err)
	assert.Equal(t, "cerrada", cierre.Estado)
}

func TestCerrarCajaIgnoraMovimientosManuales(t *testing.T) {
	f := newCajaFixture()

	resp, err := f.svc.Abrir(context.Background(), f.usuarioID, dto.AbrirCajaRequest{MontoInicial: dec("200")})
	require.NoError(t, err)

	_, err = f.svc.RegistrarMovimiento(context.Background(), f.usuarioID, dto.MovimientoManualRequest{
		SesionCajaID: resp.SesionCajaID,
		Tipo:         "egreso",
		Monto:        dec("50"),
		Descripcion:  "compra de papelería",
	})
	require.NoError(t, err)

	cierre, err := f.svc.Cerrar(context.Background(), dto.CerrarCajaRequest{
		SesionCajaID: resp.SesionCajaID,
		MontoContado: dec("200"),
	})
	require.NoError(t, err)

	// Los movimientos manuales son informativos: el egreso de 50 no altera
	// el esperado.
	assert.True(t, cierre.MontoEsperado.Equal(dec("200")), "esperado = %s", cierre.MontoEsperado)
	assert.True(t, cierre.Diferencia.IsZero(), "diferencia = %s", cierre.Diferencia)
}

func TestCerrarCajaDosVeces(t *testing.T) {
	f := newCajaFixture()

	resp, err := f.svc.Abrir(context.Background(), f.usuarioID, dto.AbrirCajaRequest{MontoInicial: dec("100")})
	require.NoError(t, err)

	req := dto.CerrarCajaRequest{SesionCajaID: resp.SesionCajaID, MontoContado: dec("100")}
	_, err = f.svc.Cerrar(context.Background(), req)
	require.NoError(t, err)

	_, err = f.svc.Cerrar(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrConflictoEstado)
}

func TestRegistrarMovimientoSesionCerrada(t *testing.T) {
	f := newCajaFixture()

	resp, err := f.svc.Abrir(context.Background(), f.usuarioID, dto.AbrirCajaRequest{MontoInicial: dec("100")})
	require.NoError(t, err)
	_, err = f.svc.Cerrar(context.Background(), dto.CerrarCajaRequest{
		SesionCajaID: resp.SesionCajaID,
		MontoContado: dec("100"),
	})
	require.NoError(t, err)

	_, err = f.svc.RegistrarMovimiento(context.Background(), f.usuarioID, dto.MovimientoManualRequest{
		SesionCajaID: resp.SesionCajaID,
		Tipo:         "ingreso",
		Monto:        dec("20"),
		Descripcion:  "cambio de billetes",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrConflictoEstado)
}

func TestRegistrarMovimientoMontoInvalido(t *testing.T) {
	f := newCajaFixture()

	resp, err := f.svc.Abrir(context.Background(), f.usuarioID, dto.AbrirCajaRequest{MontoInicial: dec("100")})
	require.NoError(t, err)

	_, err = f.svc.RegistrarMovimiento(context.Background(), f.usuarioID, dto.MovimientoManualRequest{
		SesionCajaID: resp.SesionCajaID,
		Tipo:         "egreso",
		Monto:        decimal.Zero,
		Descripcion:  "monto cero",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrValidacion)
}

func TestSesionActivaSinSesion(t *testing.T) {
	f := newCajaFixture()

	resp, err := f.svc.SesionActiva(context.Background(), f.usuarioID)
	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestReporteIncluyeMovimientos(t *testing.T) {
	f := newCajaFixture()

	abierta, err := f.svc.Abrir(context.Background(), f.usuarioID, dto.AbrirCajaRequest{MontoInicial: dec("100")})
	require.NoError(t, err)

	for _, m := range []struct {
		tipo, monto, desc string
	}{
		{"ingreso", "30", "fondo extra"},
		{"egreso", "10", "propina repartidor"},
		{"egreso", "15", "garrafón de agua"},
	} {
		_, err = f.svc.RegistrarMovimiento(context.Background(), f.usuarioID, dto.MovimientoManualRequest{
			SesionCajaID: abierta.SesionCajaID,
			Tipo:         m.tipo,
			Monto:        dec(m.monto),
			Descripcion:  m.desc,
		})
		require.NoError(t, err)
	}

	reporte, err := f.svc.Reporte(context.Background(), uuid.MustParse(abierta.SesionCajaID))
	require.NoError(t, err)
	assert.True(t, reporte.TotalIngresos.Equal(dec("30")), "ingresos = %s", reporte.TotalIngresos)
	assert.True(t, reporte.TotalEgresos.Equal(dec("25")), "egresos = %s", reporte.TotalEgresos)
	assert.Len(t, reporte.Movimientos, 3)
}

// sanity: the date used for session exclusivity is a calendar date, not a
// timestamp.
func TestFechaSesionEsFechaCalendario(t *testing.T) {
	f := newCajaFixture()

	resp, err := f.svc.Abrir(context.Background(), f.usuarioID, dto.AbrirCajaRequest{MontoInicial: dec("0")})
	require.NoError(t, err)

	var sesion *model.SesionCaja
	for _, s := range f.cajaRepo.sesiones {
		sesion = s
	}
	require.NotNil(t, sesion)
	assert.Equal(t, "abierta", resp.Estado)
	h, m, s := sesion.Fecha.Clock()
	assert.Zero(t, h+m+s, "fecha debe ir truncada a medianoche")
	assert.Equal(t, time.Now().Day(), sesion.Fecha.Day())
}
