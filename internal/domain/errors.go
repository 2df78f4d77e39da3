package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")

	// Errores del flujo de importación masiva.
	ErrInvalidFormat     = errors.New("formato CSV inválido")
	ErrPersistence       = errors.New("fallo de persistencia")
	ErrNoValidRecords    = errors.New("no valid records to import")
	ErrInvalidTransition = errors.New("transición de estado inválida")
	ErrCommitInProgress  = errors.New("importación en curso")
	ErrCancelled         = errors.New("importación cancelada")
)

// FormatError indica que el CSV no se puede leer estructuralmente. Aborta toda la importación.
type FormatError struct {
	Line   int // 0 cuando aplica al archivo completo
	Reason string
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: línea %d: %s", ErrInvalidFormat, e.Line, e.Reason)
	}
	return fmt.Sprintf("%s: %s", ErrInvalidFormat, e.Reason)
}

func (e *FormatError) Unwrap() error { return ErrInvalidFormat }

// ValidationError violación de un campo; en importación se acumula en la fila.
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// InsufficientStockError salida mayor al stock disponible; la cantidad queda igual.
type InsufficientStockError struct {
	ItemID    string
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	if e.ItemID != "" {
		return fmt.Sprintf("%s: item %s disponible %d, solicitado %d", ErrInsufficientStock, e.ItemID, e.Available, e.Requested)
	}
	return fmt.Sprintf("%s: disponible %d, solicitado %d", ErrInsufficientStock, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// PersistenceError fallo o timeout del almacenamiento externo durante el commit.
type PersistenceError struct {
	Op     string // create_item, update_stock, ping, ...
	ItemID string
	Err    error
}

func (e *PersistenceError) Error() string {
	if e.ItemID != "" {
		return fmt.Sprintf("%s: %s (%s): %v", ErrPersistence, e.Op, e.ItemID, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", ErrPersistence, e.Op, e.Err)
}

// Unwrap expone tanto el sentinel como la causa (context.DeadlineExceeded, ErrConflict, ...).
func (e *PersistenceError) Unwrap() []error { return []error{ErrPersistence, e.Err} }
