package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/sjperalta/fintera-ledger/internal/models"
)

// Common service errors
var (
	ErrNotFound       = errors.New("registro no encontrado")
	ErrUnauthorized   = errors.New("no autorizado")
	ErrInvalidState   = errors.New("transición de estado inválida")
	ErrDuplicate      = errors.New("registro duplicado")
	ErrShiftClosed    = errors.New("el turno ya fue cerrado")
	ErrShiftNotOwned  = errors.New("el turno pertenece a otro cajero")
	ErrInvalidPeriod  = errors.New("período inválido: la fecha inicial es posterior a la final")
	ErrSaleReturned   = errors.New("la venta ya fue devuelta")
	ErrUnknownExport  = errors.New("tipo o formato de exportación no soportado")
	ErrChartNotSeeded = errors.New("el catálogo de cuentas no ha sido inicializado")
)

// PostingError means a business event could not be turned into a balanced
// journal entry. Nothing was written; the event needs investigation.
type PostingError struct {
	SourceType models.SourceType
	SourceRef  string
	Reason     string
}

func (e *PostingError) Error() string {
	if e.SourceRef == "" {
		return fmt.Sprintf("posting %s rejected: %s", e.SourceType, e.Reason)
	}
	return fmt.Sprintf("posting %s %s rejected: %s", e.SourceType, e.SourceRef, e.Reason)
}

func postingErrorf(source models.SourceType, ref, format string, args ...any) *PostingError {
	return &PostingError{SourceType: source, SourceRef: ref, Reason: fmt.Sprintf(format, args...)}
}

// SeedConflictError means a tenant's chart is partially present or its
// tree is corrupt. It is never repaired automatically.
type SeedConflictError struct {
	TenantID string
	Missing  []string
	Reason   string // set when all codes exist but the tree is invalid
}

func (e *SeedConflictError) Error() string {
	if len(e.Missing) == 0 && e.Reason != "" {
		return fmt.Sprintf("chart of accounts for tenant %s is corrupt: %s", e.TenantID, e.Reason)
	}
	return fmt.Sprintf("chart of accounts for tenant %s is partial: missing %s", e.TenantID, strings.Join(e.Missing, ", "))
}

// IsPostingError reports whether err wraps a *PostingError
func IsPostingError(err error) bool {
	var pe *PostingError
	return errors.As(err, &pe)
}

// IsSeedConflict reports whether err wraps a *SeedConflictError
func IsSeedConflict(err error) bool {
	var se *SeedConflictError
	return errors.As(err, &se)
}

// captureError reports an operator-facing failure to Sentry, using the
// request hub when one is attached. Without a DSN this is a no-op.
func captureError(ctx context.Context, err error) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.CaptureException(err)
}
