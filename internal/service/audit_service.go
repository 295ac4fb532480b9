package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ithaka-ucu/backoffice-api/internal/models"
	appErrors "github.com/ithaka-ucu/backoffice-api/pkg/errors"
)

// txRunner runs a function inside a single database transaction. Audited
// services use it so the mutation and its audit record share one commit.
type txRunner interface {
	Transact(ctx context.Context, fn func(ex sqlx.ExtContext) error) error
}

type auditRecorder interface {
	Create(ctx context.Context, ex sqlx.ExtContext, rec *models.AuditRecord) error
	List(ctx context.Context, filter models.AuditFilter) ([]models.AuditRecord, int, error)
}

// auditValue serializes an audit before/after value. Nil stays nil, plain
// strings pass through unquoted, everything else becomes JSON with a
// string-form fallback.
func auditValue(v interface{}) *string {
	if v == nil {
		return nil
	}
	if s, ok := v.(string); ok {
		return &s
	}
	b, err := json.Marshal(v)
	if err != nil {
		s := fmt.Sprintf("%v", v)
		return &s
	}
	s := string(b)
	return &s
}

// AuditService exposes the read-only audit trail.
type AuditService struct {
	repo   auditRecorder
	logger *zap.Logger
}

// NewAuditService constructs an AuditService.
func NewAuditService(repo auditRecorder, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{repo: repo, logger: logger}
}

// List returns audit records plus pagination data.
func (s *AuditService) List(ctx context.Context, filter models.AuditFilter) ([]models.AuditRecord, *models.Pagination, error) {
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list audit records")
	}
	return records, paginationFor(filter.Skip, filter.Limit, total), nil
}

// paginationFor normalizes skip/limit into response pagination metadata.
func paginationFor(skip, limit, total int) *models.Pagination {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = 100
	}
	return &models.Pagination{Skip: skip, Limit: limit, TotalCount: total}
}
