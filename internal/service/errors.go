package service

import "errors"

// Error kinds surfaced by every ledger operation. Handlers map them to HTTP
// status codes; callers test with errors.Is. The failing entity is never
// partially persisted: on any kind the caller can discard or re-edit and
// resubmit safely.
var (
	// ErrValidacion — malformed input, rejected before touching the store.
	ErrValidacion = errors.New("validacion")
	// ErrConflictoEstado — the entity is in the wrong state for the
	// operation (recibir un pedido no pendiente, cerrar una caja cerrada,
	// abrir una segunda caja el mismo dia). No side effects.
	ErrConflictoEstado = errors.New("conflicto de estado")
	// ErrPersistencia — the store rejected a write mid-transaction; the
	// whole unit of work was rolled back.
	ErrPersistencia = errors.New("persistencia")
)

// fallo pairs an error kind with a human-readable Spanish reason.
type fallo struct {
	kind   error
	motivo string
	causa  error
}

func (f *fallo) Error() string { return f.motivo }

func (f *fallo) Unwrap() []error {
	if f.causa != nil {
		return []error{f.kind, f.causa}
	}
	return []error{f.kind}
}

func validacion(motivo string) error {
	return &fallo{kind: ErrValidacion, motivo: motivo}
}

func conflicto(motivo string) error {
	return &fallo{kind: ErrConflictoEstado, motivo: motivo}
}

func persistencia(motivo string, causa error) error {
	return &fallo{kind: ErrPersistencia, motivo: motivo, causa: causa}
}
