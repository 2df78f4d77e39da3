package inventory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stock-import/internal/domain"
	"github.com/jhoicas/stock-import/internal/domain/csvimport"
	"github.com/jhoicas/stock-import/internal/domain/entity"
	ledger "github.com/jhoicas/stock-import/internal/domain/inventory"
	"github.com/jhoicas/stock-import/pkg/logger"
)

// ImportState estado de una sesión de importación.
type ImportState string

const (
	StateIdle       ImportState = "idle"
	StateParsed     ImportState = "parsed"
	StateValidated  ImportState = "validated"
	StateCommitting ImportState = "committing"
	StateDone       ImportState = "done"
	StateFailed     ImportState = "failed"
)

// Terminal indica si la sesión ya no admite transiciones.
func (s ImportState) Terminal() bool {
	return s == StateDone || s == StateFailed
}

const (
	defaultWorkers    = 4
	defaultRowTimeout = 10 * time.Second
	pingTimeout       = 5 * time.Second

	openingReason = "bulk import: opening stock"
	importReason  = "bulk import"
)

// ImportConfig parámetros del commit.
type ImportConfig struct {
	Workers         int
	RowTimeout      time.Duration
	DefaultLowStock int // 0 es un umbral válido; negativo = entity.DefaultLowStockThreshold
}

// ImportUseCase crea sesiones de importación que comparten persistencia, reporter y bloqueos por artículo.
type ImportUseCase struct {
	store    Persistence
	reporter BatchReporter
	log      *logger.Logger
	cfg      ImportConfig
	locks    *KeyedMutex
	opts     []csvimport.ValidatorOption
	now      func() time.Time
}

// ImportOption configura el caso de uso.
type ImportOption func(*ImportUseCase)

// WithReporter registra el destino de los resúmenes.
func WithReporter(r BatchReporter) ImportOption {
	return func(uc *ImportUseCase) {
		if r != nil {
			uc.reporter = r
		}
	}
}

// WithLogger inyecta el logger.
func WithLogger(l *logger.Logger) ImportOption {
	return func(uc *ImportUseCase) {
		if l != nil {
			uc.log = l
		}
	}
}

// WithValidatorOptions opciones extra para el validador (reloj, generador de ids).
func WithValidatorOptions(opts ...csvimport.ValidatorOption) ImportOption {
	return func(uc *ImportUseCase) { uc.opts = append(uc.opts, opts...) }
}

// WithLocks comparte los bloqueos por artículo con otros casos de uso.
func WithLocks(k *KeyedMutex) ImportOption {
	return func(uc *ImportUseCase) {
		if k != nil {
			uc.locks = k
		}
	}
}

// NewImportUseCase construye el caso de uso.
func NewImportUseCase(store Persistence, cfg ImportConfig, opts ...ImportOption) *ImportUseCase {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.RowTimeout <= 0 {
		cfg.RowTimeout = defaultRowTimeout
	}
	if cfg.DefaultLowStock < 0 {
		cfg.DefaultLowStock = entity.DefaultLowStockThreshold
	}
	uc := &ImportUseCase{
		store:    store,
		reporter: noopReporter{},
		log:      logger.Nop(),
		cfg:      cfg,
		locks:    NewKeyedMutex(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(uc)
	}
	return uc
}

// NewSession abre una sesión en estado Idle.
func (uc *ImportUseCase) NewSession(userID string) *ImportSession {
	id := uuid.New().String()
	return &ImportSession{
		ID:        id,
		CreatedBy: userID,
		CreatedAt: uc.now(),
		uc:        uc,
		log:       uc.log.WithBatch(id),
		state:     StateIdle,
	}
}

// ImportSession una importación: Idle → Parsed → Validated → Committing → Done | Failed.
// Los métodos son seguros para uso concurrente; las transiciones inválidas devuelven domain.ErrInvalidTransition.
type ImportSession struct {
	ID        string
	CreatedBy string
	CreatedAt time.Time

	uc  *ImportUseCase
	log *logger.Logger

	mu      sync.Mutex
	state   ImportState
	failure error
	parsed  *csvimport.ParseResult
	batch   *csvimport.BatchResult
	report  *ImportReport
}

// State estado actual.
func (s *ImportSession) State() ImportState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err motivo del estado Failed; nil en cualquier otro estado.
func (s *ImportSession) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failure
}

// Batch resultado de la validación, si ya existe.
func (s *ImportSession) Batch() (csvimport.BatchResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.batch == nil {
		return csvimport.BatchResult{}, false
	}
	return *s.batch, true
}

// Report reporte final, si la sesión llegó a Done.
func (s *ImportSession) Report() (*ImportReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.report, s.report != nil
}

// Parse decodifica y lee el CSV. Un FormatError deja la sesión en Failed.
func (s *ImportSession) Parse(raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return s.invalidTransition("parse")
	}

	text, err := csvimport.DecodeInput(raw)
	if err != nil {
		s.failLocked(&domain.FormatError{Reason: err.Error()})
		return s.failure
	}
	res, err := csvimport.Parse(text)
	if err != nil {
		s.failLocked(err)
		return err
	}
	s.parsed = res
	s.state = StateParsed
	s.log.Debug().Int("records", len(res.Records)).Strs("header", res.Header).Msg("CSV leído")
	return nil
}

// Validate clasifica todas las filas. Siempre pasa a Validated, aunque todas tengan error.
func (s *ImportSession) Validate(ctx context.Context) (csvimport.BatchResult, error) {
	s.mu.Lock()
	if s.state != StateParsed {
		err := s.invalidTransition("validate")
		s.mu.Unlock()
		return csvimport.BatchResult{}, err
	}
	opts := append([]csvimport.ValidatorOption{csvimport.WithDefaultLowStock(s.uc.cfg.DefaultLowStock)}, s.uc.opts...)
	rows := csvimport.NewValidator(opts...).ValidateAll(s.parsed.Records)
	result := csvimport.Aggregate(rows)
	s.batch = &result
	s.state = StateValidated
	s.mu.Unlock()

	s.log.Info().
		Int("total", result.Total).
		Int("valid", result.ValidCount).
		Int("warnings", result.WarningCount).
		Int("errors", result.ErrorCount).
		Msg("lote validado")
	s.uc.reporter.ReportValidation(ctx, s.ID, result)
	return result, nil
}

// Load hace Parse y Validate en un solo paso.
func (s *ImportSession) Load(ctx context.Context, raw []byte) (csvimport.BatchResult, error) {
	if err := s.Parse(raw); err != nil {
		return csvimport.BatchResult{}, err
	}
	return s.Validate(ctx)
}

// Commit persiste cada fila válida o con advertencia de forma independiente.
// Sin filas confirmables devuelve domain.ErrNoValidRecords y la sesión sigue en Validated.
// Una vez iniciado no se detiene al cancelar ctx: cada fila termina o vence su timeout.
func (s *ImportSession) Commit(ctx context.Context) (*ImportReport, error) {
	s.mu.Lock()
	if s.state != StateValidated {
		err := s.invalidTransition("commit")
		s.mu.Unlock()
		return nil, err
	}
	if s.batch.ValidCount == 0 {
		s.mu.Unlock()
		return nil, domain.ErrNoValidRecords
	}
	s.state = StateCommitting
	batch := *s.batch
	s.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	started := s.uc.now()

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := s.uc.store.Ping(pingCtx)
	cancel()
	if err != nil {
		perr := &domain.PersistenceError{Op: "ping", Err: err}
		s.log.Error().Err(err).Msg("almacenamiento no disponible, commit abortado")
		s.fail(perr)
		return nil, perr
	}

	outcomes := s.uc.commitRows(ctx, s.ID, s.CreatedBy, batch.Valid)
	report := newImportReport(s.ID, batch, outcomes, started, s.uc.now())

	s.mu.Lock()
	s.report = &report
	s.state = StateDone
	s.mu.Unlock()

	ev := s.log.Info()
	if report.Failed > 0 {
		ev = s.log.Warn()
	}
	ev.Int("committed", report.Committed).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Bool("partial", report.Partial).
		Dur("elapsed", report.FinishedAt.Sub(report.StartedAt)).
		Msg("importación confirmada")
	s.uc.reporter.ReportCommit(ctx, report)
	return &report, nil
}

// Cancel descarta la sesión antes del commit (pasa a Failed sin efectos).
// Durante el commit devuelve domain.ErrCommitInProgress.
func (s *ImportSession) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateCommitting:
		return domain.ErrCommitInProgress
	case StateDone, StateFailed:
		return s.invalidTransition("cancel")
	}
	s.failLocked(domain.ErrCancelled)
	s.log.Info().Msg("importación cancelada")
	return nil
}

func (s *ImportSession) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failLocked(err)
}

func (s *ImportSession) failLocked(err error) {
	s.state = StateFailed
	s.failure = err
}

func (s *ImportSession) invalidTransition(op string) error {
	return fmt.Errorf("%w: %s en estado %s", domain.ErrInvalidTransition, op, s.state)
}

// commitRows reparte las filas en un pool acotado. Los resultados conservan el orden del archivo.
func (uc *ImportUseCase) commitRows(ctx context.Context, batchID, userID string, rows []csvimport.ImportRow) []RowOutcome {
	outcomes := make([]RowOutcome, len(rows))
	var g errgroup.Group
	g.SetLimit(uc.cfg.Workers)
	for i, row := range rows {
		g.Go(func() error {
			outcomes[i] = uc.commitRow(ctx, batchID, userID, row)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func (uc *ImportUseCase) commitRow(ctx context.Context, batchID, userID string, row csvimport.ImportRow) RowOutcome {
	item := *row.Item
	out := RowOutcome{Line: row.Line, SKU: item.SKU, ProductID: item.ProductID}

	unlock := uc.locks.LockAll(identityKeys(item.BranchID, item.SKU, item.ProductID)...)
	defer unlock()

	rowCtx, cancel := context.WithTimeout(ctx, uc.cfg.RowTimeout)
	defer cancel()

	existing, err := uc.store.FindItem(rowCtx, item.BranchID, item.SKU, item.ProductID)
	if err != nil {
		return uc.rowFailed(batchID, out, &domain.PersistenceError{Op: "find_item", Err: err})
	}

	now := uc.now()
	if existing == nil {
		if row.MovementType == entity.MovementOutward {
			return uc.rowFailed(batchID, out, fmt.Errorf("salida sobre artículo inexistente: %w", domain.ErrNotFound))
		}
		item.ID = uuid.New().String()
		item.CreatedAt, item.UpdatedAt = now, now

		var opening *entity.StockMovement
		if item.Quantity > 0 {
			mov, err := ledger.Record(ledger.MovementInput{
				ItemID:           item.ID,
				PreviousQuantity: 0,
				Type:             entity.MovementInward,
				Delta:            item.Quantity,
				Reason:           openingReason,
				ReferenceNumber:  batchID,
				CreatedBy:        userID,
				Now:              now,
			})
			if err != nil {
				return uc.rowFailed(batchID, out, err)
			}
			opening = &mov
		}
		out.Movement = opening

		created, err := uc.store.CreateItem(rowCtx, item, opening)
		if err != nil {
			return uc.rowFailed(batchID, out, &domain.PersistenceError{Op: "create_item", ItemID: item.ID, Err: err})
		}
		out.ItemID, out.Quantity = created.ID, created.Quantity
		out.Action, out.Status = ActionCreated, RowCommitted
		return out
	}

	out.ItemID = existing.ID
	out.Action = ActionUpdated

	// Otra fila puede llegar al mismo artículo por otra identidad (sku vs product_id):
	// se serializa por item_id y se relee la cantidad con el bloqueo tomado.
	unlockItem := uc.locks.Lock(itemIDKey(existing.ID))
	defer unlockItem()
	existing, err = uc.store.GetItem(rowCtx, existing.ID)
	if err != nil {
		return uc.rowFailed(batchID, out, &domain.PersistenceError{Op: "get_item", ItemID: out.ItemID, Err: err})
	}
	if existing == nil {
		return uc.rowFailed(batchID, out, fmt.Errorf("artículo %s: %w", out.ItemID, domain.ErrNotFound))
	}
	movType := row.MovementType
	if movType == "" {
		movType = entity.MovementAdjustment
	}
	mov, err := ledger.Record(ledger.MovementInput{
		ItemID:           existing.ID,
		PreviousQuantity: existing.Quantity,
		Type:             movType,
		Delta:            item.Quantity,
		Reason:           importReason,
		ReferenceNumber:  batchID,
		CreatedBy:        userID,
		Now:              now,
	})
	if err != nil {
		return uc.rowFailed(batchID, out, err)
	}
	out.Movement = &mov

	updated, err := uc.store.UpdateStock(rowCtx, existing.ID, mov)
	if err != nil {
		return uc.rowFailed(batchID, out, &domain.PersistenceError{Op: "update_stock", ItemID: existing.ID, Err: err})
	}
	out.Quantity = updated.Quantity
	out.Status = RowCommitted
	return out
}

func (uc *ImportUseCase) rowFailed(batchID string, out RowOutcome, err error) RowOutcome {
	out.Status = RowFailed
	out.Err = err
	ev := uc.log.Warn()
	if errors.Is(err, domain.ErrPersistence) {
		ev = uc.log.Error()
	}
	ev.Str("batch_id", batchID).Int("line", out.Line).Str("sku", out.SKU).Err(err).Msg("fila no confirmada")
	return out
}
