package memberauth

import (
	"context"
	"testing"
	"time"

	"github.com/MrEthical07/memberauth/cache"
)

func receive(t *testing.T, ch <-chan Snapshot) Snapshot {
	t.Helper()
	select {
	case snap, ok := <-ch:
		if !ok {
			t.Fatal("watch channel closed unexpectedly")
		}
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	return Snapshot{}
}

func waitClosed(t *testing.T, ch <-chan Snapshot) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("watch channel not closed")
		}
	}
}

func TestWatchDeliversCurrentThenChanges(t *testing.T) {
	client := &fakeClient{
		loginResult: &AuthResult{Account: &Account{ID: 1}, Token: "tok"},
	}
	s := buildTestStore(t, client, cache.NewMemoryCache(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := s.Watch(ctx, 8)

	if snap := receive(t, ch); snap.State() != StateInitializing {
		t.Fatalf("expected initializing first, got %v", snap.State())
	}

	s.Restore(context.Background())
	if snap := receive(t, ch); snap.State() != StateUnauthenticated {
		t.Fatalf("expected unauthenticated, got %v", snap.State())
	}

	if err := s.Login(context.Background(), "a@example.com", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if snap := receive(t, ch); snap.State() != StateAuthenticated {
		t.Fatalf("expected authenticated, got %v", snap.State())
	}

	cancel()
	waitClosed(t, ch)
}

func TestWatchSlowConsumerGetsLatest(t *testing.T) {
	client := &fakeClient{
		loginResult: &AuthResult{Account: &Account{ID: 1}, Token: "tok"},
	}
	s := buildTestStore(t, client, cache.NewMemoryCache(), nil)

	ch := s.Watch(context.Background(), 1)
	s.Restore(context.Background())
	if err := s.Login(context.Background(), "a@example.com", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}

	if snap := receive(t, ch); snap.State() != StateAuthenticated {
		t.Fatalf("expected latest snapshot, got %v", snap.State())
	}
}

func TestWatchClosedByStoreClose(t *testing.T) {
	s := buildTestStore(t, &fakeClient{}, cache.NewMemoryCache(), nil)

	ch := s.Watch(context.Background(), 0)
	s.Close()
	waitClosed(t, ch)

	late := s.Watch(context.Background(), 0)
	waitClosed(t, late)
}

func TestSubscribeCancelStopsDelivery(t *testing.T) {
	client := &fakeClient{
		loginResult: &AuthResult{Account: &Account{ID: 1}, Token: "tok"},
	}
	s := buildTestStore(t, client, cache.NewMemoryCache(), nil)

	var first, second int
	cancelFirst := s.Subscribe(func(Snapshot) { first++ })
	s.Subscribe(func(Snapshot) { second++ })

	s.Restore(context.Background())
	cancelFirst()
	cancelFirst()

	if err := s.Login(context.Background(), "a@example.com", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}

	if first != 1 {
		t.Fatalf("expected cancelled listener to see 1 change, got %d", first)
	}
	if second != 2 {
		t.Fatalf("expected remaining listener to see 2 changes, got %d", second)
	}
}

func TestListenersRunInRegistrationOrder(t *testing.T) {
	s := buildTestStore(t, &fakeClient{}, cache.NewMemoryCache(), nil)

	var order []int
	for i := 0; i < 3; i++ {
		s.Subscribe(func(Snapshot) { order = append(order, i) })
	}
	s.Restore(context.Background())

	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Fatalf("unexpected listener order: %v", order)
	}
}

func TestListenerMayReadStore(t *testing.T) {
	client := &fakeClient{
		loginResult: &AuthResult{Account: &Account{ID: 4}, Token: "tok-4"},
	}
	s := buildTestStore(t, client, cache.NewMemoryCache(), nil)
	s.Restore(context.Background())

	var seenToken string
	s.Subscribe(func(Snapshot) { seenToken = s.Token() })

	if err := s.Login(context.Background(), "a@example.com", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if seenToken != "tok-4" {
		t.Fatalf("listener read %q, want tok-4", seenToken)
	}
}
