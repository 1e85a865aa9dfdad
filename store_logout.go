package memberauth

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Logout signs the member out.
//
// The remote notification is best-effort: whatever the [AuthClient] reports,
// account and token end absent in memory and both cache keys are deleted before
// Logout returns. A failed remote call is returned as a *RemoteLogoutError; a
// failed cache delete is joined to the returned error. In both cases the
// in-memory session is already cleared.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.checkUsable(); err != nil {
		return err
	}
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.restoreOnce(ctx)

	memberID := memberIDOf(s.Account())

	start := time.Now()
	remoteErr := s.client.Logout(ctx)
	if s.metrics.LatencyEnabled() {
		s.metrics.Observe(MetricLogoutLatency, time.Since(start))
	}

	snap := s.install(nil, "")
	purgeErr := s.purge(ctx)

	s.metricInc(MetricLogout)
	if remoteErr != nil {
		s.metricInc(MetricLogoutRemoteFailure)
		s.logger.Warn().Err(remoteErr).Int64("member_id", memberID).Msg("remote logout failed; local session cleared")
	} else {
		s.logger.Info().Int64("member_id", memberID).Msg("member signed out")
	}
	s.emitAudit(context.WithoutCancel(ctx), auditEventLogout, remoteErr == nil, memberID, remoteErr, func() map[string]string {
		if purgeErr != nil {
			return map[string]string{"cache_purge": "failed"}
		}
		return nil
	})
	s.publish(snap)

	var err error
	if remoteErr != nil {
		err = &RemoteLogoutError{Err: remoteErr}
	}
	if purgeErr != nil {
		err = errors.Join(err, fmt.Errorf("purge session cache: %w", purgeErr))
	}
	return err
}
