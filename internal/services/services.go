package services

import (
	"github.com/sjperalta/fintera-ledger/internal/config"
	"github.com/sjperalta/fintera-ledger/internal/jobs"
	"github.com/sjperalta/fintera-ledger/internal/repository"
	"github.com/sjperalta/fintera-ledger/internal/storage"
)

// Services holds all service instances
type Services struct {
	Auth       *AuthService
	Audit      *AuditService
	Chart      *ChartService
	Posting    *PostingService
	Ledger     *LedgerService
	Statements *StatementService
	Score      *ScoreService
	Shift      *ShiftService
	Sale       *SaleService
	Export     *ExportService
	Job        *JobService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, worker *jobs.Worker, storage *storage.LocalStorage, cfg *config.Config) *Services {
	auditSvc := NewAuditService(repos.Audit, worker)
	chartSvc := NewChartService(repos.Account, repos.Tx, auditSvc)
	postingSvc := NewPostingService(repos, cfg.TaxRate, auditSvc)
	ledgerSvc := NewLedgerService(repos.Ledger, repos.Account)
	statementSvc := NewStatementService(ledgerSvc)

	return &Services{
		Auth:       NewAuthService(repos.Tenant, cfg),
		Audit:      auditSvc,
		Chart:      chartSvc,
		Posting:    postingSvc,
		Ledger:     ledgerSvc,
		Statements: statementSvc,
		Score:      NewScoreService(repos.Shift, repos.Sale, chartSvc, ledgerSvc, statementSvc),
		Shift:      NewShiftService(repos.Shift, repos.Tx, auditSvc, cfg.TheftThreshold),
		Sale:       NewSaleService(repos.Tx, postingSvc),
		Export:     NewExportService(statementSvc, storage, worker),
		Job:        NewJobService(worker),
	}
}
