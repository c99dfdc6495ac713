// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/felix-ong/volunteer-board/internal/app/store/audit"
	"github.com/felix-ong/volunteer-board/internal/app/system/ratelimit"
	"github.com/felix-ong/volunteer-board/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destinations for audit events.
const (
	ModeAll = "all" // store + zap
	ModeDB  = "db"  // store only
	ModeLog = "log" // zap only
	ModeOff = "off"
)

// Sink persists audit events. *audit.Store satisfies it.
type Sink interface {
	Log(ctx context.Context, event audit.Event) error
}

// Logger writes audit events to a Sink and to zap, depending on mode.
// A nil *Logger is a valid no-op.
type Logger struct {
	sink   Sink
	zapLog *zap.Logger
	mode   string
}

// New creates a Logger. sink may be nil, in which case "all" and "db"
// degrade to zap-only.
func New(sink Sink, zapLog *zap.Logger, mode string) *Logger {
	switch mode {
	case ModeAll, ModeDB, ModeLog, ModeOff:
	default:
		mode = ModeAll
	}
	if zapLog == nil {
		zapLog = zap.NewNop()
	}
	return &Logger{sink: sink, zapLog: zapLog, mode: mode}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.JobID != nil {
		fields = append(fields, zap.String("job_id", event.JobID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records event according to the configured mode.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil || l.mode == ModeOff {
		return
	}
	toLog := l.mode == ModeAll || l.mode == ModeLog || l.sink == nil
	if toLog {
		l.logToZap(event)
	}
	if l.sink != nil && (l.mode == ModeAll || l.mode == ModeDB) {
		if err := l.sink.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Authentication events ---

func authEvent(r *http.Request, eventType string, success bool) audit.Event {
	return audit.Event{
		Category:  audit.CategoryAuth,
		EventType: eventType,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   success,
	}
}

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	ev := authEvent(r, audit.EventLoginSuccess, true)
	ev.UserID = &userID
	ev.Details = map[string]string{"email": email}
	l.Log(ctx, ev)
}

// LoginFailedUserNotFound logs a login for an unknown email.
func (l *Logger) LoginFailedUserNotFound(ctx context.Context, r *http.Request, email string) {
	ev := authEvent(r, audit.EventLoginFailedUserNotFound, false)
	ev.FailureReason = "user not found"
	ev.Details = map[string]string{"attempted_email": email}
	l.Log(ctx, ev)
}

// LoginFailedWrongPassword logs a login with a bad password.
func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	ev := authEvent(r, audit.EventLoginFailedWrongPassword, false)
	ev.UserID = &userID
	ev.FailureReason = "wrong password"
	ev.Details = map[string]string{"email": email}
	l.Log(ctx, ev)
}

// LoginFailedRateLimit logs a throttled login or signup.
func (l *Logger) LoginFailedRateLimit(ctx context.Context, r *http.Request, email string) {
	ev := authEvent(r, audit.EventLoginFailedRateLimit, false)
	ev.FailureReason = "rate limit exceeded"
	ev.Details = map[string]string{"email": email, "path": r.URL.Path}
	l.Log(ctx, ev)
}

// Signup logs a new account.
func (l *Logger) Signup(ctx context.Context, r *http.Request, user models.User) {
	ev := authEvent(r, audit.EventSignup, true)
	ev.UserID = &user.ID
	ev.Details = map[string]string{"email": user.Email, "role": user.Role}
	l.Log(ctx, ev)
}

// AdminPromoted logs the startup promotion of the configured admin account.
func (l *Logger) AdminPromoted(ctx context.Context, userID primitive.ObjectID, email string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventAdminPromoted,
		UserID:    &userID,
		Success:   true,
		Details:   map[string]string{"email": email},
	})
}

// --- Job events ---

// JobEvent logs a create, update, delete, register or unregister on a job.
// details may be nil.
func (l *Logger) JobEvent(ctx context.Context, eventType string, actorID primitive.ObjectID, job models.Job, details map[string]string) {
	l.Log(ctx, jobEvent(audit.CategoryJobs, eventType, actorID, job, details))
}

// Moderation logs an approve, unapprove or reject. note is the feedback or
// rejection reason, if any.
func (l *Logger) Moderation(ctx context.Context, eventType string, actorID primitive.ObjectID, job models.Job, note string) {
	var details map[string]string
	switch eventType {
	case audit.EventJobUnapproved:
		details = map[string]string{"feedback": note}
	case audit.EventJobRejected:
		details = map[string]string{
			"reason":        note,
			"created_by_id": job.CreatedByID.Hex(),
		}
	}
	l.Log(ctx, jobEvent(audit.CategoryModeration, eventType, actorID, job, details))
}

func jobEvent(category, eventType string, actorID primitive.ObjectID, job models.Job, details map[string]string) audit.Event {
	d := map[string]string{"title": job.Title, "organizer": job.Organizer}
	for k, v := range details {
		d[k] = v
	}
	jobID := job.ID
	return audit.Event{
		Category:  category,
		EventType: eventType,
		ActorID:   &actorID,
		JobID:     &jobID,
		Success:   true,
		Details:   d,
	}
}
