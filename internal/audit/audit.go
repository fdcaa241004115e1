// Package audit appends lifecycle events to the append-only audit log.
// Writes are best effort: a failed append is logged and counted, never returned.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"depotChangeManagement/models"
)

// ActorSystem is recorded for transitions made by the expiry sweep.
const ActorSystem = "system"

// Store is the persistence used by Logger.
type Store interface {
	Append(ctx context.Context, e *models.AuditLogEntry) error
	ListByRequest(ctx context.Context, requestID string) ([]models.AuditLogEntry, error)
	ListByContainer(ctx context.Context, containerID string) ([]models.AuditLogEntry, error)
}

// Entry is one event to record. RequestID is empty for container-only transitions.
type Entry struct {
	RequestID    string
	ContainerID  string
	ActorUserID  string
	ActorOrgName string
	Action       models.AuditAction
	Details      map[string]any
}

type Logger struct {
	store Store
	log   logrus.FieldLogger
	now   func() time.Time
}

func NewLogger(store Store, log logrus.FieldLogger) *Logger {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Logger{store: store, log: log.WithField("component", "audit"), now: time.Now}
}

// Append records e. It never fails the caller.
func (l *Logger) Append(ctx context.Context, e Entry) {
	row := &models.AuditLogEntry{
		RequestID:    e.RequestID,
		ContainerID:  e.ContainerID,
		ActorUserID:  e.ActorUserID,
		ActorOrgName: e.ActorOrgName,
		Action:       e.Action,
		Details:      normalize(e.Details),
		CreatedAt:    l.now().UTC(),
	}
	if err := l.store.Append(ctx, row); err != nil {
		writeFailures.WithLabelValues(string(e.Action)).Inc()
		l.log.WithError(err).WithFields(logrus.Fields{
			"action":       e.Action,
			"request_id":   e.RequestID,
			"container_id": e.ContainerID,
		}).Error("audit log write failed")
		return
	}
	writes.WithLabelValues(string(e.Action)).Inc()
}

// Trail returns the entries recorded for a request, oldest first.
func (l *Logger) Trail(ctx context.Context, requestID string) ([]models.AuditLogEntry, error) {
	return l.store.ListByRequest(ctx, requestID)
}

// ContainerTrail returns every entry recorded against a container, including cancelled requests.
func (l *Logger) ContainerTrail(ctx context.Context, containerID string) ([]models.AuditLogEntry, error) {
	return l.store.ListByContainer(ctx, containerID)
}

// normalize converts detail values into the JSON-compatible set accepted by structpb.
func normalize(in map[string]any) map[string]any {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch x := v.(type) {
	case nil, bool, string, int, int32, int64, uint, uint32, uint64, float32, float64:
		return x
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	case *time.Time:
		if x == nil {
			return nil
		}
		return x.UTC().Format(time.RFC3339)
	case *string:
		if x == nil {
			return nil
		}
		return *x
	case *int64:
		if x == nil {
			return nil
		}
		return *x
	case *float64:
		if x == nil {
			return nil
		}
		return *x
	case map[string]any:
		return normalize(x)
	case []any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = normalizeValue(x[i])
		}
		return out
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
