package memberauth

import (
	"context"
	"errors"
	"time"

	internalaudit "github.com/MrEthical07/memberauth/internal/audit"
	"github.com/google/uuid"
)

const (
	auditEventRestore     = internalaudit.TypeRestore
	auditEventCachePurged = internalaudit.TypeCachePurged
	auditEventLogin       = internalaudit.TypeLogin
	auditEventLogout      = internalaudit.TypeLogout
)

// AuditErrorCode is the coarse error class recorded on failed audit events.
// Raw error text is never recorded because collaborator errors may echo input.
type AuditErrorCode string

const (
	auditErrInvalidCredentials AuditErrorCode = "invalid_credentials"
	auditErrIncompleteSession  AuditErrorCode = "incomplete_session"
	auditErrCacheCorrupt       AuditErrorCode = "cache_corrupt"
	auditErrCanceled           AuditErrorCode = "canceled"
	auditErrTimeout            AuditErrorCode = "timeout"
	auditErrRemote             AuditErrorCode = "remote_error"
)

func (s *Store) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	memberID int64,
	err error,
	metadataBuilder func() map[string]string,
) {
	if s == nil || s.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		MemberID:  memberID,
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	s.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrIncompleteSession):
		return auditErrIncompleteSession
	case errors.Is(err, ErrCacheCorrupt):
		return auditErrCacheCorrupt
	case errors.Is(err, context.Canceled):
		return auditErrCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return auditErrTimeout
	default:
		return auditErrRemote
	}
}

func memberIDOf(a *Account) int64 {
	if a == nil {
		return 0
	}
	return a.ID
}
