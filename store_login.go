package memberauth

import (
	"context"
	"strings"
	"time"
)

// Login exchanges email and password for a session through the [AuthClient].
//
// No local validation is performed. On success account and token are replaced
// together and listeners are notified; persisting the new session is the auth
// client's job. On failure the session is left exactly as it was and the
// client's error is returned wrapped in a *CredentialError.
//
// A login while already authenticated replaces the session without an
// intermediate logged-out state.
func (s *Store) Login(ctx context.Context, email, password string) error {
	if err := s.checkUsable(); err != nil {
		return err
	}
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.restoreOnce(ctx)

	start := time.Now()
	result, err := s.client.Login(ctx, email, password)
	if s.metrics.LatencyEnabled() {
		s.metrics.Observe(MetricLoginLatency, time.Since(start))
	}
	if err == nil && !result.complete() {
		err = ErrIncompleteSession
	}
	if err != nil {
		s.metricInc(MetricLoginFailure)
		domain := emailDomain(email)
		s.logger.Info().
			Str("reason", string(auditErrorCode(err))).
			Str("email_domain", domain).
			Msg("login rejected")
		s.emitAudit(ctx, auditEventLogin, false, 0, err, func() map[string]string {
			return map[string]string{"email_domain": domain}
		})
		return &CredentialError{Email: email, Err: err}
	}

	snap := s.install(result.Account.clone(), result.Token)
	s.metricInc(MetricLoginSuccess)
	s.logger.Info().Int64("member_id", result.Account.ID).Msg("member signed in")
	s.emitAudit(ctx, auditEventLogin, true, result.Account.ID, nil, func() map[string]string {
		return map[string]string{"email_domain": emailDomain(email)}
	})
	s.publish(snap)
	return nil
}

// emailDomain returns the lower-cased domain part of email, the only part of a
// login identifier that is logged or audited.
func emailDomain(email string) string {
	at := strings.LastIndexByte(email, '@')
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(email[at+1:]))
}
