package worker

// Processes low-stock check jobs from QueueAlertasStock.
// A sale enqueues the ids of the products it touched; the worker re-reads the
// catalog and emails the store manager about any product at or below its
// minimum. Re-reading keeps the alert truthful even when the queue lags.

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"puntoventa/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Mailer is the subset of infra.Mailer the worker needs.
type Mailer interface {
	Send(to, subject, body string) error
}

type AlertaStockWorker struct {
	productoRepo repository.ProductoRepository
	mailer       Mailer
	alertEmail   string
}

func NewAlertaStockWorker(productoRepo repository.ProductoRepository, mailer Mailer, alertEmail string) *AlertaStockWorker {
	return &AlertaStockWorker{productoRepo: productoRepo, mailer: mailer, alertEmail: alertEmail}
}

func (w *AlertaStockWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload AlertaStockPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("alerta_stock: invalid payload")
		return nil // malformed payloads never succeed on retry
	}

	var lineas []string
	for _, idStr := range payload.ProductoIDs {
		id, err := uuid.Parse(idStr)
		if err != nil {
			continue
		}
		p, err := w.productoRepo.FindByID(ctx, id)
		if err != nil {
			continue
		}
		if p.Activo && p.StockActual <= p.StockMinimo {
			lineas = append(lineas, fmt.Sprintf("- %s (%s): stock %d, mínimo %d",
				p.Nombre, p.Codigo, p.StockActual, p.StockMinimo))
		}
	}
	if len(lineas) == 0 {
		return nil
	}

	if w.alertEmail == "" {
		log.Warn().Int("productos", len(lineas)).Msg("alerta_stock: ALERT_EMAIL no configurado")
		return nil
	}

	body := "Productos con stock bajo:\n\n" + strings.Join(lineas, "\n")
	if err := w.mailer.Send(w.alertEmail, "Alerta de stock bajo", body); err != nil {
		log.Error().Err(err).Msg("alerta_stock: failed to send email")
		return err
	}
	log.Info().Int("productos", len(lineas)).Msg("alerta_stock: notificación enviada")
	return nil
}
