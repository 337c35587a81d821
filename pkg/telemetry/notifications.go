package telemetry

import (
	"context"

	"go.uber.org/zap"

	"github.com/goliatone/go-audience-dashboard/components/audience"
	"github.com/goliatone/go-audience-dashboard/components/dashboard"
)

// AuditReasons are the session events worth an audit line: batches resolving and
// audiences being applied.
var AuditReasons = []string{
	string(audience.EventGenerationCompleted),
	string(audience.EventGenerationFailed),
	string(audience.EventAudiencesApplied),
	string(audience.EventSessionClosed),
}

// EventLog is a dashboard.NotificationsClient that writes forwarded events to a
// zap logger, one entry per event.
type EventLog struct {
	logger *zap.Logger
}

var _ dashboard.NotificationsClient = (*EventLog)(nil)

// NewEventLog wraps logger. A nil logger discards events.
func NewEventLog(logger *zap.Logger) *EventLog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventLog{logger: logger.Named("audit")}
}

// PublishDashboardEvent logs event under channel.
func (l *EventLog) PublishDashboardEvent(_ context.Context, channel string, event dashboard.RefreshEvent) error {
	fields := []zap.Field{
		zap.String("channel", channel),
		zap.String("session_id", event.SessionID),
	}
	if event.State != nil {
		fields = append(fields,
			zap.Int("batch", event.State.Batch),
			zap.Int("audiences", len(event.State.Audiences)),
		)
	}
	if event.Error != "" {
		l.logger.Warn(event.Reason, append(fields, zap.String("error", event.Error))...)
		return nil
	}
	l.logger.Info(event.Reason, fields...)
	return nil
}

// NewAuditHook forwards AuditReasons events to an EventLog on channel.
func NewAuditHook(logger *zap.Logger, channel string) *dashboard.NotificationsHook {
	return &dashboard.NotificationsHook{
		Client:  NewEventLog(logger),
		Channel: channel,
		Reasons: AuditReasons,
	}
}
