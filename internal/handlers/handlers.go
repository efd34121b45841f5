package handlers

import (
	"github.com/sjperalta/fintera-ledger/internal/services"
)

// Handlers holds all handler instances
type Handlers struct {
	Health    *HealthHandler
	Auth      *AuthHandler
	Chart     *ChartHandler
	Posting   *PostingHandler
	Ledger    *LedgerHandler
	Statement *StatementHandler
	Shift     *ShiftHandler
	Score     *ScoreHandler
	Audit     *AuditHandler
	Job       *JobHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services) *Handlers {
	return &Handlers{
		Health:    NewHealthHandler(),
		Auth:      NewAuthHandler(svcs.Auth),
		Chart:     NewChartHandler(svcs.Chart),
		Posting:   NewPostingHandler(svcs.Posting, svcs.Sale),
		Ledger:    NewLedgerHandler(svcs.Ledger),
		Statement: NewStatementHandler(svcs.Statements, svcs.Export),
		Shift:     NewShiftHandler(svcs.Shift),
		Score:     NewScoreHandler(svcs.Score),
		Audit:     NewAuditHandler(svcs.Audit),
		Job:       NewJobHandler(svcs.Job),
	}
}
