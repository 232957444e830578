package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"puntoventa/internal/dto"
	"puntoventa/internal/model"
	"puntoventa/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type CajaService interface {
	// Abrir opens a drawer session for the operator with a starting float.
	// Fails with a state conflict when the operator already has an open
	// session today.
	Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCajaRequest) (*dto.SesionCajaResponse, error)
	// Cerrar reconciles and closes: esperado = montoInicial + ventas en
	// efectivo. Card sales never enter the drawer. One-way transition.
	Cerrar(ctx context.Context, req dto.CerrarCajaRequest) (*dto.CierreCajaResponse, error)

	// ValidarSesionAbierta is the gate every sale passes through.
	ValidarSesionAbierta(ctx context.Context, sesionID uuid.UUID) error
	// SesionActiva returns the operator's open session for today, or nil.
	SesionActiva(ctx context.Context, usuarioID uuid.UUID) (*dto.SesionCajaResponse, error)

	RegistrarMovimiento(ctx context.Context, usuarioID uuid.UUID, req dto.MovimientoManualRequest) (*dto.MovimientoCajaResponse, error)

	Reporte(ctx context.Context, sesionID uuid.UUID) (*dto.SesionCajaResponse, error)
	Historial(ctx context.Context, page, limit int) (*dto.SesionCajaListResponse, error)
}

type cajaService struct {
	repo      repository.CajaRepository
	ventaRepo repository.VentaRepository
}

func NewCajaService(repo repository.CajaRepository, ventaRepo repository.VentaRepository) CajaService {
	return &cajaService{repo: repo, ventaRepo: ventaRepo}
}

func (s *cajaService) Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCajaRequest) (*dto.SesionCajaResponse, error) {
	if req.MontoInicial.IsNegative() {
		return nil, validacion("el monto inicial no puede ser negativo")
	}

	// Friendly pre-check. The partial unique index is the real guard: two
	// racing opens both pass this read, and the second insert fails below.
	if _, err := s.repo.FindSesionAbiertaHoy(ctx, usuarioID); err == nil {
		return nil, conflicto("ya existe una sesión de caja abierta para hoy")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, persistencia("no se pudo verificar la sesión activa", err)
	}

	sesion := &model.SesionCaja{
		UsuarioID:    usuarioID,
		Fecha:        hoy(),
		MontoInicial: req.MontoInicial,
		Estado:       "abierta",
		OpenedAt:     time.Now(),
	}
	if err := s.repo.CreateSesion(ctx, sesion); err != nil {
		if esViolacionUnicidad(err) {
			return nil, conflicto("ya existe una sesión de caja abierta para hoy")
		}
		return nil, persistencia("no se pudo abrir la sesión de caja", err)
	}

	log.Info().
		Str("sesion_id", sesion.ID.String()).
		Str("usuario_id", usuarioID.String()).
		Str("monto_inicial", req.MontoInicial.String()).
		Msg("sesión de caja abierta")

	return s.sesionToResponse(ctx, sesion)
}

func (s *cajaService) Cerrar(ctx context.Context, req dto.CerrarCajaRequest) (*dto.CierreCajaResponse, error) {
	sesionID, err := uuid.Parse(req.SesionCajaID)
	if err != nil {
		return nil, validacion("sesion_caja_id inválido")
	}
	if req.MontoContado.IsNegative() {
		return nil, validacion("el monto contado no puede ser negativo")
	}

	sesion, err := s.repo.FindSesionByID(ctx, sesionID)
	if err != nil {
		return nil, validacion("sesión de caja no encontrada")
	}
	if sesion.Estado != "abierta" {
		return nil, conflicto("la sesión de caja ya está cerrada")
	}

	// The sale totals are snapshotted on the same transaction that flips the
	// estado: a sale committing mid-close either lands before the snapshot
	// or fails the session gate, never between the figures and the flip.
	var cierre repository.CierreSesion
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		sums, err := s.ventaRepo.SumPorMetodoTx(tx, sesionID)
		if err != nil {
			return err
		}
		efectivo := sums["efectivo"]

		// esperado = fondo inicial + ventas en efectivo. Manual movements
		// are reported alongside but not folded into the formula.
		esperado := sesion.MontoInicial.Add(efectivo)
		cierre = repository.CierreSesion{
			VentasEfectivo: efectivo,
			VentasTarjeta:  sums["tarjeta"],
			MontoEsperado:  esperado,
			MontoContado:   req.MontoContado,
			Diferencia:     req.MontoContado.Sub(esperado),
		}

		ok, err := s.repo.CerrarSesionTx(tx, sesionID, cierre)
		if err != nil {
			return err
		}
		if !ok {
			// Someone else closed it between our read and the guarded
			// update.
			return conflicto("la sesión de caja ya está cerrada")
		}
		return nil
	})
	if txErr != nil {
		if errors.Is(txErr, ErrConflictoEstado) {
			return nil, txErr
		}
		return nil, persistencia("no se pudo cerrar la sesión de caja", txErr)
	}
	diferencia := cierre.Diferencia

	evt := log.Info()
	if !diferencia.IsZero() {
		evt = log.Warn()
	}
	evt.Str("sesion_id", sesionID.String()).
		Str("esperado", cierre.MontoEsperado.String()).
		Str("contado", req.MontoContado.String()).
		Str("diferencia", diferencia.String()).
		Msg("sesión de caja cerrada")

	return &dto.CierreCajaResponse{
		SesionCajaID:   sesionID.String(),
		MontoInicial:   sesion.MontoInicial,
		VentasEfectivo: cierre.VentasEfectivo,
		VentasTarjeta:  cierre.VentasTarjeta,
		MontoEsperado:  cierre.MontoEsperado,
		MontoContado:   req.MontoContado,
		Diferencia:     diferencia,
		Estado:         "cerrada",
	}, nil
}

func (s *cajaService) ValidarSesionAbierta(ctx context.Context, sesionID uuid.UUID) error {
	sesion, err := s.repo.FindSesionByID(ctx, sesionID)
	if err != nil {
		return validacion("sesión de caja no encontrada")
	}
	if sesion.Estado != "abierta" {
		return conflicto("la sesión de caja está cerrada")
	}
	return nil
}

func (s *cajaService) SesionActiva(ctx context.Context, usuarioID uuid.UUID) (*dto.SesionCajaResponse, error) {
	sesion, err := s.repo.FindSesionAbiertaHoy(ctx, usuarioID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, persistencia("no se pudo consultar la sesión activa", err)
	}
	return s.sesionToResponse(ctx, sesion)
}

func (s *cajaService) RegistrarMovimiento(ctx context.Context, usuarioID uuid.UUID, req dto.MovimientoManualRequest) (*dto.MovimientoCajaResponse, error) {
	sesionID, err := uuid.Parse(req.SesionCajaID)
	if err != nil {
		return nil, validacion("sesion_caja_id inválido")
	}
	if req.Tipo != "ingreso" && req.Tipo != "egreso" {
		return nil, validacion("tipo de movimiento inválido")
	}
	if !req.Monto.IsPositive() {
		return nil, validacion("el monto debe ser mayor a cero")
	}
	if err := s.ValidarSesionAbierta(ctx, sesionID); err != nil {
		return nil, err
	}

	mov := &model.MovimientoCaja{
		SesionCajaID: sesionID,
		UsuarioID:    usuarioID,
		Tipo:         req.Tipo,
		Monto:        req.Monto,
		Descripcion:  req.Descripcion,
	}
	if err := s.repo.CreateMovimiento(ctx, mov); err != nil {
		return nil, persistencia("no se pudo registrar el movimiento", err)
	}

	return movimientoToResponse(mov), nil
}

func (s *cajaService) Reporte(ctx context.Context, sesionID uuid.UUID) (*dto.SesionCajaResponse, error) {
	sesion, err := s.repo.FindSesionByID(ctx, sesionID)
	if err != nil {
		return nil, validacion("sesión de caja no encontrada")
	}
	return s.sesionToResponse(ctx, sesion)
}

func (s *cajaService) Historial(ctx context.Context, page, limit int) (*dto.SesionCajaListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	sesiones, total, err := s.repo.ListSesiones(ctx, page, limit)
	if err != nil {
		return nil, persistencia("no se pudo listar el historial de sesiones", err)
	}
	data := make([]dto.SesionCajaResponse, 0, len(sesiones))
	for i := range sesiones {
		resp, err := s.sesionToResponse(ctx, &sesiones[i])
		if err != nil {
			return nil, err
		}
		data = append(data, *resp)
	}
	return &dto.SesionCajaListResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

func (s *cajaService) sesionToResponse(ctx context.Context, sesion *model.SesionCaja) (*dto.SesionCajaResponse, error) {
	ingresos, err := s.repo.SumMovimientosPorTipo(ctx, sesion.ID, "ingreso")
	if err != nil {
		return nil, persistencia("no se pudieron sumar los movimientos", err)
	}
	egresos, err := s.repo.SumMovimientosPorTipo(ctx, sesion.ID, "egreso")
	if err != nil {
		return nil, persistencia("no se pudieron sumar los movimientos", err)
	}

	movs := sesion.Movimientos
	if movs == nil {
		movs, err = s.repo.ListMovimientos(ctx, sesion.ID)
		if err != nil {
			return nil, persistencia("no se pudieron listar los movimientos", err)
		}
	}
	movResp := make([]dto.MovimientoCajaResponse, 0, len(movs))
	for i := range movs {
		movResp = append(movResp, *movimientoToResponse(&movs[i]))
	}

	resp := &dto.SesionCajaResponse{
		SesionCajaID:   sesion.ID.String(),
		UsuarioID:      sesion.UsuarioID.String(),
		Fecha:          sesion.Fecha.Format("2006-01-02"),
		MontoInicial:   sesion.MontoInicial,
		Estado:         sesion.Estado,
		TotalIngresos:  ingresos,
		TotalEgresos:   egresos,
		Movimientos:    movResp,
		VentasEfectivo: sesion.VentasEfectivo,
		VentasTarjeta:  sesion.VentasTarjeta,
		MontoEsperado:  sesion.MontoEsperado,
		MontoContado:   sesion.MontoContado,
		Diferencia:     sesion.Diferencia,
		OpenedAt:       sesion.OpenedAt.Format(time.RFC3339),
	}
	if sesion.ClosedAt != nil {
		closed := sesion.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &closed
	}
	return resp, nil
}

func movimientoToResponse(m *model.MovimientoCaja) *dto.MovimientoCajaResponse {
	return &dto.MovimientoCajaResponse{
		ID:          m.ID.String(),
		Tipo:        m.Tipo,
		Monto:       m.Monto,
		Descripcion: m.Descripcion,
		CreatedAt:   m.CreatedAt.Format(time.RFC3339),
	}
}

func hoy() time.Time {
	y, m, d := time.Now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func esViolacionUnicidad(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "duplicate key")
}
