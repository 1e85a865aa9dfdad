package memberauth

import "context"

type storeContextKey struct{}

// WithStore returns a copy of ctx carrying s. Use it to hand the session store
// down a call tree instead of reaching for a package-level variable.
func WithStore(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, storeContextKey{}, s)
}

// StoreFromContext returns the Store attached by [WithStore].
func StoreFromContext(ctx context.Context) (*Store, bool) {
	if ctx == nil {
		return nil, false
	}

	s, ok := ctx.Value(storeContextKey{}).(*Store)
	return s, ok && s != nil
}
