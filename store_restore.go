package memberauth

import (
	"context"
	"errors"
)

// Restore loads the persisted session exactly once per Store.
//
// A complete persisted session is installed atomically. An empty cache leaves
// the store logged out. Any read failure leaves the store logged out and purges
// the token and account keys so the same corruption is not met again; the failure
// is recorded as a *CacheCorruptionError (see [Store.RestoreErr]) and never
// returned. A restore interrupted by ctx cancellation does not purge the cache.
//
// Later calls return immediately. Login and Logout run the restore first when it
// has not happened yet.
func (s *Store) Restore(ctx context.Context) {
	if s == nil || s.client == nil {
		return
	}
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.restoreOnce(ctx)
}

// restoreOnce must be called with opMu held.
func (s *Store) restoreOnce(ctx context.Context) {
	s.initOnce.Do(func() {
		defer close(s.ready)
		s.runRestore(ctx)
	})
}

func (s *Store) runRestore(ctx context.Context) {
	result, err := s.client.StoredAuth(ctx)
	if err == nil && result != nil && !result.complete() {
		err = ErrIncompleteSession
	}

	switch {
	case err == nil && result == nil:
		snap := s.install(nil, "")
		s.metricInc(MetricRestoreEmpty)
		s.logger.Debug().Msg("no persisted session")
		s.emitAudit(ctx, auditEventRestore, true, 0, nil, func() map[string]string {
			return map[string]string{"outcome": "empty"}
		})
		s.publish(snap)

	case err == nil:
		snap := s.install(result.Account.clone(), result.Token)
		s.metricInc(MetricRestoreSuccess)
		s.logger.Debug().Int64("member_id", result.Account.ID).Msg("session restored from cache")
		s.emitAudit(ctx, auditEventRestore, true, result.Account.ID, nil, func() map[string]string {
			return map[string]string{"outcome": "restored"}
		})
		s.publish(snap)

	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		snap := s.install(nil, "")
		s.logger.Warn().Err(err).Msg("session restore interrupted; continuing logged out")
		s.emitAudit(context.WithoutCancel(ctx), auditEventRestore, false, 0, err, func() map[string]string {
			return map[string]string{"outcome": "interrupted"}
		})
		s.publish(snap)

	default:
		purgeErr := s.purge(ctx)
		corruption := &CacheCorruptionError{Err: err, PurgeErr: purgeErr}

		s.mu.Lock()
		s.restoreErr = corruption
		s.mu.Unlock()
		snap := s.install(nil, "")

		s.metricInc(MetricCacheCorruption)
		s.logger.Warn().Err(corruption).Msg("persisted session unreadable; cache purged")
		s.emitAudit(ctx, auditEventCachePurged, purgeErr == nil, 0, corruption, func() map[string]string {
			return map[string]string{"keys": s.config.Cache.TokenKey + "," + s.config.Cache.AccountKey}
		})
		s.publish(snap)
	}
}

// purge deletes both session keys. It is detached from ctx cancellation so a
// cancelled caller cannot leave credentials behind, and bounded by PurgeTimeout.
func (s *Store) purge(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	pctx := context.WithoutCancel(ctx)
	if s.config.Cache.PurgeTimeout > 0 {
		var cancel context.CancelFunc
		pctx, cancel = context.WithTimeout(pctx, s.config.Cache.PurgeTimeout)
		defer cancel()
	}
	if err := s.cache.Delete(pctx, s.config.Cache.Keys()...); err != nil {
		s.metricInc(MetricCachePurgeFailure)
		s.logger.Error().Err(err).Msg("session cache purge failed")
		return err
	}
	return nil
}
