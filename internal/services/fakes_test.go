package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-ledger/internal/models"
	"github.com/sjperalta/fintera-ledger/internal/repository"
	"gorm.io/gorm"
)

// memStore is an in-memory stand-in for the gorm repositories. Transactions
// are serialized and roll back to a snapshot when fn fails.
type memStore struct {
	txMu     sync.Mutex
	mu       sync.Mutex
	tenants  map[string]models.Tenant
	accounts []models.Account
	entries  []models.JournalEntry
	shifts   map[string]models.Shift
	sales    []models.Sale
	audits   []models.AuditLog
	nextID   uint

	failLedgerCreate error
	failCountAccount error
}

func newMemStore() *memStore {
	return &memStore{
		tenants: map[string]models.Tenant{},
		shifts:  map[string]models.Shift{},
	}
}

func (m *memStore) repos() *repository.Repositories {
	return &repository.Repositories{
		Tenant:  &memTenantRepo{m},
		Account: &memAccountRepo{m},
		Ledger:  &memLedgerRepo{m},
		Shift:   &memShiftRepo{m},
		Sale:    &memSaleRepo{m},
		Audit:   &memAuditRepo{m},
		Tx:      &memTx{m},
	}
}

func (m *memStore) id() uint {
	m.nextID++
	return m.nextID
}

type memSnapshot struct {
	tenants  map[string]models.Tenant
	accounts []models.Account
	entries  []models.JournalEntry
	shifts   map[string]models.Shift
	sales    []models.Sale
}

func (m *memStore) snapshot() memSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := memSnapshot{
		tenants:  make(map[string]models.Tenant, len(m.tenants)),
		accounts: append([]models.Account(nil), m.accounts...),
		entries:  append([]models.JournalEntry(nil), m.entries...),
		shifts:   make(map[string]models.Shift, len(m.shifts)),
		sales:    append([]models.Sale(nil), m.sales...),
	}
	for k, v := range m.tenants {
		s.tenants[k] = v
	}
	for k, v := range m.shifts {
		s.shifts[k] = v
	}
	return s
}

func (m *memStore) restore(s memSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tenants, m.accounts, m.entries, m.shifts, m.sales = s.tenants, s.accounts, s.entries, s.shifts, s.sales
}

func (m *memStore) entryCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *memStore) saleCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sales)
}

type memTx struct{ m *memStore }

func (t *memTx) WithinTransaction(ctx context.Context, fn func(repos *repository.Repositories) error) error {
	t.m.txMu.Lock()
	defer t.m.txMu.Unlock()
	snap := t.m.snapshot()
	if err := fn(t.m.repos()); err != nil {
		t.m.restore(snap)
		return err
	}
	return nil
}

type memTenantRepo struct{ m *memStore }

func (r *memTenantRepo) FindByID(ctx context.Context, id string) (*models.Tenant, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t, ok := r.m.tenants[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &t, nil
}

func (r *memTenantRepo) Create(ctx context.Context, tenant *models.Tenant) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	tenant.CreatedAt = time.Now()
	r.m.tenants[tenant.ID] = *tenant
	return nil
}

type memAccountRepo struct{ m *memStore }

func (r *memAccountRepo) ListByTenant(ctx context.Context, tenantID string) ([]models.Account, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []models.Account
	for _, a := range r.m.accounts {
		if a.TenantID == tenantID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *memAccountRepo) CountByTenant(ctx context.Context, tenantID string) (int64, error) {
	if r.m.failCountAccount != nil {
		return 0, r.m.failCountAccount
	}
	accounts, _ := r.ListByTenant(ctx, tenantID)
	return int64(len(accounts)), nil
}

func (r *memAccountRepo) CreateBatch(ctx context.Context, accounts []models.Account) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, a := range accounts {
		for _, existing := range r.m.accounts {
			if existing.TenantID == a.TenantID && existing.Code == a.Code {
				return repository.ErrDuplicateAccount
			}
		}
	}
	for _, a := range accounts {
		a.ID = r.m.id()
		r.m.accounts = append(r.m.accounts, a)
	}
	return nil
}

func (r *memAccountRepo) ExistingCodes(ctx context.Context, tenantID string, codes []string) (map[string]bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	want := map[string]bool{}
	for _, c := range codes {
		want[c] = true
	}
	found := map[string]bool{}
	for _, a := range r.m.accounts {
		if a.TenantID == tenantID && want[a.Code] {
			found[a.Code] = true
		}
	}
	return found, nil
}

type memLedgerRepo struct{ m *memStore }

func (r *memLedgerRepo) Create(ctx context.Context, entry *models.JournalEntry) error {
	if r.m.failLedgerCreate != nil {
		return r.m.failLedgerCreate
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	stored := *entry
	stored.CreatedAt = time.Now()
	stored.Lines = make([]models.JournalLine, len(entry.Lines))
	for i, l := range entry.Lines {
		l.ID = r.m.id()
		l.EntryID = entry.ID
		stored.Lines[i] = l
	}
	r.m.entries = append(r.m.entries, stored)
	return nil
}

func (r *memLedgerRepo) FindByID(ctx context.Context, tenantID, id string) (*models.JournalEntry, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, e := range r.m.entries {
		if e.TenantID == tenantID && e.ID == id {
			return &e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memLedgerRepo) List(ctx context.Context, q *repository.EntryQuery) ([]models.JournalEntry, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []models.JournalEntry
	for _, e := range r.m.entries {
		if e.TenantID != q.TenantID {
			continue
		}
		if q.SourceType != "" && e.SourceType != q.SourceType {
			continue
		}
		if q.SourceRef != "" && e.SourceRef != q.SourceRef {
			continue
		}
		if !inWindow(e.EntryDate, q.From, q.To) {
			continue
		}
		out = append(out, e)
	}
	return out, int64(len(out)), nil
}

func inWindow(at time.Time, from, to *time.Time) bool {
	if from != nil && at.Before(*from) {
		return false
	}
	if to != nil && at.After(*to) {
		return false
	}
	return true
}

func (r *memLedgerRepo) lines(tenantID string, from, to *time.Time) []models.JournalLine {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []models.JournalLine
	for _, e := range r.m.entries {
		if e.TenantID == tenantID && inWindow(e.EntryDate, from, to) {
			out = append(out, e.Lines...)
		}
	}
	return out
}

func (r *memLedgerRepo) SumByPrefix(ctx context.Context, tenantID, prefix string, from, to *time.Time) (repository.Sums, error) {
	s := repository.Sums{Debit: decimal.Zero, Credit: decimal.Zero}
	for _, l := range r.lines(tenantID, from, to) {
		if models.CodeHasPrefix(l.AccountCode, prefix) {
			s.Debit = s.Debit.Add(l.Debit)
			s.Credit = s.Credit.Add(l.Credit)
		}
	}
	return s, nil
}

func (r *memLedgerRepo) SumByAccount(ctx context.Context, tenantID string, from, to *time.Time) ([]repository.AccountSums, error) {
	byCode := map[string]*repository.AccountSums{}
	var codes []string
	for _, l := range r.lines(tenantID, from, to) {
		s, ok := byCode[l.AccountCode]
		if !ok {
			s = &repository.AccountSums{AccountCode: l.AccountCode, Debit: decimal.Zero, Credit: decimal.Zero}
			byCode[l.AccountCode] = s
			codes = append(codes, l.AccountCode)
		}
		s.Debit = s.Debit.Add(l.Debit)
		s.Credit = s.Credit.Add(l.Credit)
	}
	sort.Strings(codes)
	out := make([]repository.AccountSums, 0, len(codes))
	for _, c := range codes {
		out = append(out, *byCode[c])
	}
	return out, nil
}

func (r *memLedgerRepo) CountByTenant(ctx context.Context, tenantID string) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var n int64
	for _, e := range r.m.entries {
		if e.TenantID == tenantID {
			n++
		}
	}
	return n, nil
}

type memShiftRepo struct{ m *memStore }

func (r *memShiftRepo) Create(ctx context.Context, shift *models.Shift) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.shifts[shift.ID] = *shift
	return nil
}

func (r *memShiftRepo) FindByID(ctx context.Context, tenantID, id string) (*models.Shift, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.shifts[id]
	if !ok || s.TenantID != tenantID {
		return nil, gorm.ErrRecordNotFound
	}
	return &s, nil
}

func (r *memShiftRepo) FindByIDForUpdate(ctx context.Context, tenantID, id string) (*models.Shift, error) {
	return r.FindByID(ctx, tenantID, id)
}

func (r *memShiftRepo) Update(ctx context.Context, shift *models.Shift) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.shifts[shift.ID] = *shift
	return nil
}

func (r *memShiftRepo) ListClosed(ctx context.Context, tenantID string, limit int) ([]models.Shift, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []models.Shift
	for _, s := range r.m.shifts {
		if s.TenantID == tenantID && s.Status == models.ShiftStatusClosed {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClosedAt.After(*out[j].ClosedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memShiftRepo) List(ctx context.Context, tenantID string, query *repository.ListQuery) ([]models.Shift, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []models.Shift
	for _, s := range r.m.shifts {
		if s.TenantID == tenantID {
			out = append(out, s)
		}
	}
	return out, int64(len(out)), nil
}

type memSaleRepo struct{ m *memStore }

func (r *memSaleRepo) Create(ctx context.Context, sale *models.Sale) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, s := range r.m.sales {
		if s.TenantID == sale.TenantID && s.Reference == sale.Reference {
			return repository.ErrDuplicateSale
		}
	}
	sale.ID = r.m.id()
	r.m.sales = append(r.m.sales, *sale)
	return nil
}

func (r *memSaleRepo) FindByReference(ctx context.Context, tenantID, reference string) (*models.Sale, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, s := range r.m.sales {
		if s.TenantID == tenantID && s.Reference == reference {
			return &s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memSaleRepo) MarkReturned(ctx context.Context, sale *models.Sale) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for i, s := range r.m.sales {
		if s.ID == sale.ID && s.Status == models.SaleStatusCompleted {
			r.m.sales[i].Status = models.SaleStatusReturned
			sale.Status = models.SaleStatusReturned
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *memSaleRepo) SumBetween(ctx context.Context, tenantID string, from, to time.Time) (decimal.Decimal, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	total := decimal.Zero
	for _, s := range r.m.sales {
		if s.TenantID == tenantID && s.Status == models.SaleStatusCompleted &&
			!s.SoldAt.Before(from) && !s.SoldAt.After(to) {
			total = total.Add(s.Total)
		}
	}
	return total, nil
}

type memAuditRepo struct{ m *memStore }

func (r *memAuditRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	entry.ID = r.m.id()
	r.m.audits = append(r.m.audits, *entry)
	return nil
}

func (r *memAuditRepo) List(ctx context.Context, tenantID string, query *repository.ListQuery) ([]models.AuditLog, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []models.AuditLog
	for _, a := range r.m.audits {
		if a.TenantID == tenantID {
			out = append(out, a)
		}
	}
	return out, int64(len(out)), nil
}

// d parses a decimal literal; test inputs are always well formed
func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// testEnv wires real services over one memStore with synchronous audit writes
type testEnv struct {
	store      *memStore
	repos      *repository.Repositories
	audit      *AuditService
	chart      *ChartService
	poster     *PostingService
	ledger     *LedgerService
	statements *StatementService
	shifts     *ShiftService
	sales      *SaleService
	score      *ScoreService
}

func newTestEnv() *testEnv {
	store := newMemStore()
	repos := store.repos()
	audit := NewAuditService(repos.Audit, nil)
	chart := NewChartService(repos.Account, repos.Tx, audit)
	poster := NewPostingService(repos, d("0.15"), audit)
	ledger := NewLedgerService(repos.Ledger, repos.Account)
	statements := NewStatementService(ledger)
	return &testEnv{
		store:      store,
		repos:      repos,
		audit:      audit,
		chart:      chart,
		poster:     poster,
		ledger:     ledger,
		statements: statements,
		shifts:     NewShiftService(repos.Shift, repos.Tx, audit, d("500")),
		sales:      NewSaleService(repos.Tx, poster),
		score:      NewScoreService(repos.Shift, repos.Sale, chart, ledger, statements),
	}
}

// seeded returns an env whose tenant already has the standard chart
func seededEnv(tenantID string) *testEnv {
	env := newTestEnv()
	if _, err := env.chart.Seed(context.Background(), tenantID); err != nil {
		panic(err)
	}
	return env
}
