package audit

import (
	"context"
	"time"

	common_models "go-negotiation/internal/common/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Entry describes one audited transition.
type Entry struct {
	Action   common_models.AuditAction
	Module   string
	RecordID string
	Actor    common_models.Actor
	Changes  map[string]common_models.Change
	Reason   string
}

type AuditService interface {
	Record(ctx context.Context, entry Entry) error
	ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]common_models.AuditLog, error)
}

type AuditServiceImpl struct {
	Repo AuditRepository
	log  *zap.Logger
	now  func() time.Time
}

func NewAuditService(repo AuditRepository, log *zap.Logger) AuditService {
	return &AuditServiceImpl{
		Repo: repo,
		log:  log,
		now:  time.Now,
	}
}

func (s *AuditServiceImpl) Record(ctx context.Context, entry Entry) error {
	actorID := entry.Actor.ID
	if actorID == "" {
		actorID = common_models.SystemActor.ID
	}

	log := common_models.AuditLog{
		ID:        primitive.NewObjectID(),
		Action:    entry.Action,
		Module:    entry.Module,
		RecordID:  entry.RecordID,
		ActorID:   actorID,
		Changes:   entry.Changes,
		Reason:    entry.Reason,
		Timestamp: s.now(),
	}

	if err := s.Repo.Create(ctx, log); err != nil {
		s.log.Error("audit write failed",
			zap.String("module", entry.Module),
			zap.String("record_id", entry.RecordID),
			zap.String("action", string(entry.Action)),
			zap.Error(err))
		return err
	}
	return nil
}

func (s *AuditServiceImpl) ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]common_models.AuditLog, error) {
	p := common_models.Page{Page: page, Limit: limit}.Normalize()
	return s.Repo.List(ctx, filters, p.Limit, p.Offset())
}
