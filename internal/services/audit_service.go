package services

import (
	"context"
	"fmt"

	"github.com/veskar/guildhall/internal/models"
)

// AuditService backs the admin audit viewer. Records are written by the
// signup ledger and the reconciler, never through this service.
type AuditService struct {
	auditRepo models.AuditRepo
}

func NewAuditService(auditRepo models.AuditRepo) *AuditService {
	return &AuditService{
		auditRepo: auditRepo,
	}
}

func (as *AuditService) ListByEvent(ctx context.Context, eventID string, offset, limit int) ([]*models.AuditRecord, int, error) {
	if offset < 0 || limit <= 0 {
		return nil, 0, fmt.Errorf("invalid offset or limit")
	}
	return as.auditRepo.ListByEvent(ctx, eventID, offset, limit)
}
