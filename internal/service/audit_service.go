package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/library-service/internal/events"
)

// AuditService writes an audit trail entry for every security-relevant event.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, eventType := range events.AuditTypes {
		a.dispatcher.Subscribe(eventType, a.handle)
	}
}

func (a *AuditService) handle(_ context.Context, event events.Event) error {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.Time("at", event.Timestamp),
	}
	if event.SubjectID != "" {
		fields = append(fields, zap.String("subject_id", event.SubjectID))
	}
	if event.Actor.LibrarianID != "" {
		fields = append(fields,
			zap.String("actor_id", event.Actor.LibrarianID),
			zap.String("actor_role", string(event.Actor.Role)))
	}
	if event.Payload != nil {
		fields = append(fields, zap.Any("payload", event.Payload))
	}

	switch event.Type {
	case events.EventLoginFailed, events.EventBootstrapAdminCreated:
		a.logger.Warn("audit", fields...)
	default:
		a.logger.Info("audit", fields...)
	}
	return nil
}
