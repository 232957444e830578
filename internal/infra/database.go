package infra

import (
	"fmt"

	"puntoventa/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that
// AutoMigrate cannot express (the partial unique index, the folio sequence).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates / updates every table and applies the schema patches.
// Also used by integration tests against a throwaway container.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Categoria{},
		&model.Proveedor{},
		&model.Producto{},
		&model.Cliente{},
		&model.SesionCaja{},
		&model.MovimientoCaja{},
		&model.Venta{},
		&model.VentaItem{},
		&model.Pedido{},
		&model.PedidoItem{},
		&model.EntradaInventario{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that GORM AutoMigrate cannot handle.
// Re-running on an already-patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// Folio assignment: a sequence so concurrent sales never collide.
		{"ventas folio sequence",
			`CREATE SEQUENCE IF NOT EXISTS ventas_folio_seq START 1`},

		// One open session per operator per calendar day. The partial unique
		// index is the authoritative guard; the service pre-check only exists
		// for a friendly error message.
		{"partial unique index: one open session per operator per day", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'uniq_sesion_abierta_por_dia') THEN
    CREATE UNIQUE INDEX uniq_sesion_abierta_por_dia
        ON sesiones_caja (usuario_id, fecha)
        WHERE estado = 'abierta';
  END IF;
END $$`},

		// Guard against negative stock at the store even if a guarded update
		// is ever bypassed.
		{"productos stock non-negative check", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_productos_stock_no_negativo') THEN
    ALTER TABLE productos
      ADD CONSTRAINT chk_productos_stock_no_negativo CHECK (stock_actual >= 0);
  END IF;
END $$`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
