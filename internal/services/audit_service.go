package services

import (
	"context"
	"fmt"

	"github.com/sjperalta/fintera-ledger/internal/jobs"
	"github.com/sjperalta/fintera-ledger/internal/models"
	"github.com/sjperalta/fintera-ledger/internal/repository"
	"github.com/sjperalta/fintera-ledger/pkg/logger"
)

// Actor identifies who triggered an operation, for the audit trail
type Actor struct {
	UserID    string
	IPAddress string
	UserAgent string
}

type actorKey struct{}

// WithActor attaches the acting tenant user to ctx
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the actor attached to ctx, if any
func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}

type AuditService struct {
	repo   repository.AuditRepository
	worker *jobs.Worker
}

func NewAuditService(repo repository.AuditRepository, worker *jobs.Worker) *AuditService {
	return &AuditService{repo: repo, worker: worker}
}

// Record writes an audit entry in the background. Failures are logged and
// never reach the caller. A nil service records nothing.
func (s *AuditService) Record(ctx context.Context, tenantID, action, entity, entityID, details string) {
	if s == nil {
		return
	}

	entry := &models.AuditLog{
		TenantID: tenantID,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Details:  details,
	}
	if actor, ok := ActorFrom(ctx); ok {
		entry.Actor = actor.UserID
		entry.IPAddress = actor.IPAddress
		entry.UserAgent = actor.UserAgent
	}

	write := func(jobCtx context.Context) error {
		if err := s.repo.Create(jobCtx, entry); err != nil {
			return fmt.Errorf("audit %s %s: %w", action, entity, err)
		}
		return nil
	}

	if s.worker == nil {
		if err := write(ctx); err != nil {
			logger.Error("[AuditService] write failed", "error", err)
		}
		return
	}
	s.worker.EnqueueAsync(write)
}

// List retrieves a tenant's audit logs, newest first
func (s *AuditService) List(ctx context.Context, tenantID string, query *repository.ListQuery) ([]models.AuditLog, int64, error) {
	return s.repo.List(ctx, tenantID, query)
}
