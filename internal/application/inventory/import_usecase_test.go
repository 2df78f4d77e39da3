package inventory_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-import/internal/application/inventory"
	"github.com/jhoicas/stock-import/internal/domain"
	"github.com/jhoicas/stock-import/internal/domain/csvimport"
	"github.com/jhoicas/stock-import/internal/domain/entity"
	"github.com/jhoicas/stock-import/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var fixedNow = time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)

const testHeader = "name,category,quantity,branch_id,sku,price_per_unit,movement_type"

func newUseCase(store inventory.Persistence, workers int, opts ...inventory.ImportOption) *inventory.ImportUseCase {
	opts = append(opts, inventory.WithValidatorOptions(csvimport.WithClock(func() time.Time { return fixedNow })))
	return inventory.NewImportUseCase(store, inventory.ImportConfig{Workers: workers, RowTimeout: time.Second}, opts...)
}

func csvOf(rows ...string) []byte {
	return []byte(testHeader + "\n" + strings.Join(rows, "\n") + "\n")
}

func loadSession(t *testing.T, uc *inventory.ImportUseCase, raw []byte) *inventory.ImportSession {
	t.Helper()
	s := uc.NewSession("user-1")
	_, err := s.Load(context.Background(), raw)
	require.NoError(t, err)
	require.Equal(t, inventory.StateValidated, s.State())
	return s
}

func seedItem(t *testing.T, store *memory.Store, sku string, qty int64) *entity.StockItem {
	t.Helper()
	it, err := store.CreateItem(context.Background(), entity.StockItem{
		ID: "item-" + sku, SKU: sku, ProductID: "PRD-" + sku, Name: sku, Category: "General",
		Quantity: qty, BranchID: 1, LowStockThreshold: 10,
	}, nil)
	require.NoError(t, err)
	return it
}

// failingStore falla CreateItem para los SKUs indicados, o Ping si pingErr != nil.
type failingStore struct {
	*memory.Store
	failSKUs map[string]bool
	pingErr  error
}

func (f *failingStore) Ping(ctx context.Context) error {
	if f.pingErr != nil {
		return f.pingErr
	}
	return f.Store.Ping(ctx)
}

func (f *failingStore) CreateItem(ctx context.Context, item entity.StockItem, opening *entity.StockMovement) (*entity.StockItem, error) {
	if f.failSKUs[item.SKU] {
		return nil, errors.New("connection reset by peer")
	}
	return f.Store.CreateItem(ctx, item, opening)
}

// recordingReporter guarda lo que recibe.
type recordingReporter struct {
	mu          sync.Mutex
	validations []csvimport.BatchResult
	commits     []inventory.ImportReport
}

func (r *recordingReporter) ReportValidation(_ context.Context, _ string, res csvimport.BatchResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validations = append(r.validations, res)
}

func (r *recordingReporter) ReportCommit(_ context.Context, rep inventory.ImportReport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commits = append(r.commits, rep)
}

// ──────────────────────────────────────────────────────────────────────────────
// Commit
// ──────────────────────────────────────────────────────────────────────────────

func TestCommit_HundredRowsTenInvalid(t *testing.T) {
	store := memory.NewStore()
	rep := &recordingReporter{}
	uc := newUseCase(store, 4, inventory.WithReporter(rep))

	rows := make([]string, 0, 100)
	for i := 1; i <= 100; i++ {
		qty := fmt.Sprint(i)
		if i%10 == 0 {
			qty = "-1"
		}
		rows = append(rows, fmt.Sprintf("Item %d,General,%s,1,SKU-%03d,1.50,", i, qty, i))
	}
	s := loadSession(t, uc, csvOf(rows...))

	report, err := s.Commit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, inventory.StateDone, s.State())
	assert.Equal(t, 90, report.Committed)
	assert.Equal(t, 10, report.Skipped)
	assert.Equal(t, 0, report.Failed)
	assert.False(t, report.Partial)
	require.Len(t, report.Outcomes, 90)
	assert.Len(t, report.Invalid, 10)

	// Orden del archivo y acción de creación
	assert.Equal(t, 2, report.Outcomes[0].Line)
	for _, o := range report.Outcomes {
		assert.Equal(t, inventory.ActionCreated, o.Action)
		require.NotNil(t, o.Movement)
		assert.Equal(t, entity.MovementInward, o.Movement.Type)
		assert.Equal(t, int64(0), o.Movement.PreviousQuantity)
		assert.Equal(t, o.Quantity, o.Movement.NewQuantity)
	}

	items, err := store.ListItems(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, items, 90)
	assert.Equal(t, 90, store.MovementCount())
	assert.Len(t, report.Movements(), 90)

	require.Len(t, rep.validations, 1)
	assert.Equal(t, 90, rep.validations[0].ValidCount)
	require.Len(t, rep.commits, 1)
	assert.Equal(t, report.Committed, rep.commits[0].Committed)
}

func TestCommit_PartialFailure(t *testing.T) {
	store := &failingStore{Store: memory.NewStore(), failSKUs: map[string]bool{"B-2": true}}
	uc := newUseCase(store, 2)
	s := loadSession(t, uc, csvOf(
		"Uno,General,5,1,B-1,,",
		"Dos,General,5,1,B-2,,",
		"Tres,General,5,1,B-3,,",
	))

	report, err := s.Commit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Committed)
	assert.Equal(t, 1, report.Failed)
	assert.True(t, report.Partial)
	assert.Contains(t, report.Summary(), "parcial")

	failed := report.FailedRows()
	require.Len(t, failed, 1)
	assert.Equal(t, 3, failed[0].Line)
	assert.True(t, errors.Is(failed[0].Err, domain.ErrPersistence))
	var perr *domain.PersistenceError
	require.ErrorAs(t, failed[0].Err, &perr)
	assert.Equal(t, "create_item", perr.Op)

	// sin reintentos: el artículo fallido no existe
	it, err := store.FindItem(context.Background(), 1, "B-2", "")
	require.NoError(t, err)
	assert.Nil(t, it)
}

func TestCommit_NoValidRecords(t *testing.T) {
	uc := newUseCase(memory.NewStore(), 2)
	s := loadSession(t, uc, csvOf(
		",General,5,1,X-1,,",
		"Sin cantidad,General,,1,X-2,,",
	))

	report, err := s.Commit(context.Background())
	assert.Nil(t, report)
	require.ErrorIs(t, err, domain.ErrNoValidRecords)
	assert.Equal(t, "no valid records to import", err.Error())
	assert.Equal(t, inventory.StateValidated, s.State())
}

func TestCommit_PingFailureFailsSession(t *testing.T) {
	store := &failingStore{Store: memory.NewStore(), pingErr: errors.New("dial tcp: connection refused")}
	uc := newUseCase(store, 2)
	s := loadSession(t, uc, csvOf("Uno,General,5,1,P-1,,"))

	_, err := s.Commit(context.Background())
	require.ErrorIs(t, err, domain.ErrPersistence)
	assert.Equal(t, inventory.StateFailed, s.State())
	assert.ErrorIs(t, s.Err(), domain.ErrPersistence)
	assert.Equal(t, 0, store.MovementCount())
}

func TestCommit_TwiceIsInvalidTransition(t *testing.T) {
	uc := newUseCase(memory.NewStore(), 1)
	s := loadSession(t, uc, csvOf("Uno,General,5,1,T-1,,"))

	_, err := s.Commit(context.Background())
	require.NoError(t, err)
	_, err = s.Commit(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCommit_IgnoresCallerCancellation(t *testing.T) {
	store := memory.NewStore()
	uc := newUseCase(store, 2)
	s := loadSession(t, uc, csvOf("Uno,General,5,1,C-1,,", "Dos,General,5,1,C-2,,"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report, err := s.Commit(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Committed)
}

func TestCommit_SameSKUIsSerialized(t *testing.T) {
	store := memory.NewStore()
	uc := newUseCase(store, 8)

	rows := make([]string, 0, 20)
	for i := 0; i < 20; i++ {
		rows = append(rows, "Tornillo,Ferretería,1,1,TOR-1,0.10,inward")
	}
	s := loadSession(t, uc, csvOf(rows...))

	report, err := s.Commit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 20, report.Committed)
	assert.Equal(t, 0, report.Failed)

	it, err := store.FindItem(context.Background(), 1, "TOR-1", "")
	require.NoError(t, err)
	require.NotNil(t, it)
	assert.Equal(t, int64(20), it.Quantity)

	hist, err := store.Movements(context.Background(), it.ID, 0)
	require.NoError(t, err)
	assert.Len(t, hist, 20)
}

func TestCommit_ExistingItemMovements(t *testing.T) {
	store := memory.NewStore()
	seedItem(t, store, "E-1", 5)
	seedItem(t, store, "E-2", 5)
	seedItem(t, store, "E-3", 5)
	uc := newUseCase(store, 1)

	s := loadSession(t, uc, csvOf(
		"Ajuste,General,12,1,E-1,,",
		"Salida,General,10,1,E-2,,outward",
		"Entrada,General,3,1,E-3,,inward",
		"Nuevo,General,4,1,E-4,,outward",
	))
	report, err := s.Commit(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Outcomes, 4)

	adj := report.Outcomes[0]
	assert.Equal(t, inventory.RowCommitted, adj.Status)
	assert.Equal(t, inventory.ActionUpdated, adj.Action)
	assert.Equal(t, entity.MovementAdjustment, adj.Movement.Type)
	assert.Equal(t, int64(5), adj.Movement.PreviousQuantity)
	assert.Equal(t, int64(12), adj.Quantity)

	out := report.Outcomes[1]
	assert.Equal(t, inventory.RowFailed, out.Status)
	assert.ErrorIs(t, out.Err, domain.ErrInsufficientStock)
	var ins *domain.InsufficientStockError
	require.ErrorAs(t, out.Err, &ins)
	assert.Equal(t, int64(5), ins.Available)
	assert.Equal(t, int64(10), ins.Requested)
	e2, _ := store.FindItem(context.Background(), 1, "E-2", "")
	assert.Equal(t, int64(5), e2.Quantity)

	in := report.Outcomes[2]
	assert.Equal(t, inventory.RowCommitted, in.Status)
	assert.Equal(t, int64(8), in.Quantity)

	missing := report.Outcomes[3]
	assert.Equal(t, inventory.RowFailed, missing.Status)
	assert.ErrorIs(t, missing.Err, domain.ErrNotFound)

	assert.Equal(t, 2, report.Committed)
	assert.Equal(t, 2, report.Failed)
	assert.True(t, report.Partial)
}

func TestCommit_ZeroQuantityCreatesWithoutMovement(t *testing.T) {
	store := memory.NewStore()
	uc := newUseCase(store, 1)
	s := loadSession(t, uc, csvOf("Vacío,General,0,1,Z-1,,"))

	report, err := s.Commit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Committed)
	assert.Nil(t, report.Outcomes[0].Movement)
	assert.Equal(t, 0, store.MovementCount())
}

// ──────────────────────────────────────────────────────────────────────────────
// Parse, Validate, Cancel
// ──────────────────────────────────────────────────────────────────────────────

func TestParse_FormatErrorFailsSession(t *testing.T) {
	uc := newUseCase(memory.NewStore(), 1)
	s := uc.NewSession("user-1")

	err := s.Parse([]byte(testHeader + "\n"))
	var ferr *domain.FormatError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, inventory.StateFailed, s.State())
	assert.ErrorIs(t, s.Err(), domain.ErrInvalidFormat)

	_, err = s.Validate(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestValidate_OrderEnforced(t *testing.T) {
	uc := newUseCase(memory.NewStore(), 1)
	s := uc.NewSession("user-1")

	_, err := s.Validate(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = s.Commit(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	require.NoError(t, s.Parse(csvOf("Uno,General,abc,1,V-1,,")))
	assert.Equal(t, inventory.StateParsed, s.State())
	assert.ErrorIs(t, s.Parse(csvOf("Uno,General,1,1,V-1,,")), domain.ErrInvalidTransition)

	res, err := s.Validate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.ErrorCount)
	assert.Equal(t, inventory.StateValidated, s.State())

	b, ok := s.Batch()
	require.True(t, ok)
	assert.Equal(t, res.Total, b.Total)
}

func TestCancel(t *testing.T) {
	store := memory.NewStore()
	uc := newUseCase(store, 1)
	s := loadSession(t, uc, csvOf("Uno,General,5,1,K-1,,"))

	require.NoError(t, s.Cancel())
	assert.Equal(t, inventory.StateFailed, s.State())
	assert.ErrorIs(t, s.Err(), domain.ErrCancelled)

	_, err := s.Commit(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.ErrorIs(t, s.Cancel(), domain.ErrInvalidTransition)
	assert.Equal(t, 0, store.MovementCount())
}

// blockingStore detiene UpdateStock/CreateItem hasta que se cierre release.
type blockingStore struct {
	*memory.Store
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingStore) CreateItem(ctx context.Context, item entity.StockItem, opening *entity.StockMovement) (*entity.StockItem, error) {
	b.once.Do(func() { close(b.entered) })
	<-b.release
	return b.Store.CreateItem(ctx, item, opening)
}

func TestCancel_RefusedWhileCommitting(t *testing.T) {
	store := &blockingStore{Store: memory.NewStore(), entered: make(chan struct{}), release: make(chan struct{})}
	uc := newUseCase(store, 1)
	s := loadSession(t, uc, csvOf("Uno,General,5,1,W-1,,"))

	done := make(chan error, 1)
	go func() {
		_, err := s.Commit(context.Background())
		done <- err
	}()

	<-store.entered
	assert.Equal(t, inventory.StateCommitting, s.State())
	assert.ErrorIs(t, s.Cancel(), domain.ErrCommitInProgress)

	close(store.release)
	require.NoError(t, <-done)
	assert.Equal(t, inventory.StateDone, s.State())
}

// slowFindStore retrasa FindItem para que filas concurrentes resuelvan el artículo a la vez.
type slowFindStore struct {
	*memory.Store
	delay time.Duration
}

func (s *slowFindStore) FindItem(ctx context.Context, branchID int64, sku, productID string) (*entity.StockItem, error) {
	time.Sleep(s.delay)
	return s.Store.FindItem(ctx, branchID, sku, productID)
}

func TestCommit_SameItemByDifferentIdentitiesIsSerialized(t *testing.T) {
	ctx := context.Background()
	base := memory.NewStore()
	item := seedItem(t, base, "S1", 0) // product_id PRD-S1
	uc := newUseCase(&slowFindStore{Store: base, delay: 20 * time.Millisecond}, 4)

	// por sku+product_id, solo por product_id, y por sku con otro product_id
	raw := []byte("name,category,quantity,branch_id,sku,product_id,movement_type\n" +
		"S1,General,1,1,S1,PRD-S1,inward\n" +
		"S1,General,1,1,,PRD-S1,inward\n" +
		"S1,General,1,1,s1,PRD-OTRO,inward\n")
	s := loadSession(t, uc, raw)

	report, err := s.Commit(ctx)
	require.NoError(t, err)
	for _, o := range report.Outcomes {
		assert.Equal(t, inventory.RowCommitted, o.Status, "línea %d: %v", o.Line, o.Err)
		assert.Equal(t, item.ID, o.ItemID)
	}
	assert.Equal(t, 3, report.Committed)
	assert.Equal(t, 0, report.Failed)

	got, err := base.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.Quantity)

	// cada movimiento parte de la cantidad que dejó el anterior
	prev := make(map[int64]bool)
	for _, m := range report.Movements() {
		assert.Equal(t, m.PreviousQuantity+1, m.NewQuantity)
		prev[m.PreviousQuantity] = true
	}
	assert.Equal(t, map[int64]bool{0: true, 1: true, 2: true}, prev)
}

// stuckStore no responde para un SKU (CreateItem) o un artículo (UpdateStock) hasta que vence el contexto.
type stuckStore struct {
	*memory.Store
	stuckSKU    string
	stuckItemID string
	creates     atomic.Int32
	updates     atomic.Int32
}

func (s *stuckStore) CreateItem(ctx context.Context, item entity.StockItem, opening *entity.StockMovement) (*entity.StockItem, error) {
	if item.SKU == s.stuckSKU {
		s.creates.Add(1)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.Store.CreateItem(ctx, item, opening)
}

func (s *stuckStore) UpdateStock(ctx context.Context, itemID string, movement entity.StockMovement) (*entity.StockItem, error) {
	if itemID == s.stuckItemID {
		s.updates.Add(1)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.Store.UpdateStock(ctx, itemID, movement)
}

func TestCommit_RowTimeoutFailsOnlyThatRow(t *testing.T) {
	ctx := context.Background()
	base := memory.NewStore()
	stuck := seedItem(t, base, "T1", 5)
	store := &stuckStore{Store: base, stuckSKU: "N1", stuckItemID: stuck.ID}
	uc := inventory.NewImportUseCase(store,
		inventory.ImportConfig{Workers: 3, RowTimeout: 50 * time.Millisecond},
		inventory.WithValidatorOptions(csvimport.WithClock(func() time.Time { return fixedNow })))

	s := loadSession(t, uc, csvOf(
		"Tapa,General,7,1,T1,,",
		"Nuevo,General,3,1,N1,,",
		"Listo,General,2,1,OK1,,",
	))

	started := time.Now()
	report, err := s.Commit(ctx)
	require.NoError(t, err)
	assert.Less(t, time.Since(started), 2*time.Second)

	assert.Equal(t, inventory.StateDone, s.State())
	assert.Equal(t, 1, report.Committed)
	assert.Equal(t, 2, report.Failed)
	assert.True(t, report.Partial)

	require.Len(t, report.Outcomes, 3)
	for _, o := range report.Outcomes[:2] {
		assert.Equal(t, inventory.RowFailed, o.Status, "línea %d", o.Line)
		assert.ErrorIs(t, o.Err, context.DeadlineExceeded)
		assert.ErrorIs(t, o.Err, domain.ErrPersistence)
	}
	assert.Equal(t, inventory.RowCommitted, report.Outcomes[2].Status)

	// sin reintentos
	assert.Equal(t, int32(1), store.creates.Load())
	assert.Equal(t, int32(1), store.updates.Load())

	got, err := base.GetItem(ctx, stuck.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.Quantity)
}

func TestNewImportUseCase_DefaultLowStock(t *testing.T) {
	cases := []struct {
		name string
		cfg  int
		want int
	}{
		{"cero explícito", 0, 0},
		{"negativo usa el predeterminado", -1, entity.DefaultLowStockThreshold},
		{"valor propio", 4, 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := memory.NewStore()
			uc := inventory.NewImportUseCase(store, inventory.ImportConfig{Workers: 1, RowTimeout: time.Second, DefaultLowStock: tc.cfg})
			s := loadSession(t, uc, csvOf("Uno,General,5,1,LS-1,,"))
			_, err := s.Commit(context.Background())
			require.NoError(t, err)

			items, err := store.ListItems(context.Background(), 1)
			require.NoError(t, err)
			require.Len(t, items, 1)
			assert.Equal(t, tc.want, items[0].LowStockThreshold)
		})
	}
}
