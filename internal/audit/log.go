package audit

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"crudstore.app/internal/auth"
)

// Security events written by the HTTP layer.
const (
	EventLoginSucceeded = "auth.login.succeeded"
	EventLoginFailed    = "auth.login.failed"
	EventAccountCreated = "auth.account.created"
	EventSignUpRejected = "auth.signup.rejected"
	EventAccessDenied   = "authz.access.denied"
)

type requestIDKey struct{}

// WithRequestID attaches the request identifier to the context for audit logging.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the request id if one was attached.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// Logger writes audit entries through zap.
type Logger struct {
	log *zap.Logger
}

// New returns an audit logger. A nil zap logger discards entries.
func New(l *zap.Logger) *Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return &Logger{log: l.Named("audit")}
}

// LogEvent writes an audit entry enriched with request id and subject.
func (a *Logger) LogEvent(ctx context.Context, event string, fields ...zap.Field) error {
	event = strings.TrimSpace(event)
	if event == "" {
		return errors.New("event name is required")
	}
	all := make([]zap.Field, 0, len(fields)+4)
	all = append(all, zap.String("type", "audit"), zap.String("event", event))
	if rid := RequestIDFromContext(ctx); rid != "" {
		all = append(all, zap.String("request_id", rid))
	}
	if sub, ok := auth.SubjectFromContext(ctx); ok {
		all = append(all, zap.String("subject", sub))
	}
	all = append(all, fields...)
	a.log.Info(event, all...)
	return nil
}
