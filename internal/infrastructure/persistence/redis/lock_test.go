package redis

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

const testLockPrefix = "test-lock:"

func TestTryLock_MutualExclusion(t *testing.T) {
	conn := getTestConnection(t)
	defer conn.Close()

	ctx := context.Background()
	lock := NewLock(conn, testLockPrefix)
	conn.GetClient().Del(ctx, testLockPrefix+"user-1")

	token, ok, err := lock.TryLock(ctx, "user-1", 10*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected first acquisition to succeed")
	}

	_, ok, err = lock.TryLock(ctx, "user-1", 10*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected second acquisition to fail while held")
	}

	if err := lock.Unlock(ctx, "user-1", token); err != nil {
		t.Fatalf("unlock: %v", err)
	}

	_, ok, err = lock.TryLock(ctx, "user-1", 10*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected acquisition to succeed after release")
	}

	conn.GetClient().Del(ctx, testLockPrefix+"user-1")
}

func TestUnlock_WrongTokenKeepsLock(t *testing.T) {
	conn := getTestConnection(t)
	defer conn.Close()

	ctx := context.Background()
	lock := NewLock(conn, testLockPrefix)
	conn.GetClient().Del(ctx, testLockPrefix+"user-2")

	_, ok, err := lock.TryLock(ctx, "user-2", 10*time.Second)
	if err != nil || !ok {
		t.Fatalf("acquire: ok=%v err=%v", ok, err)
	}

	// A stale holder must not release a lock it no longer owns.
	if err := lock.Unlock(ctx, "user-2", "stale-token"); err != nil {
		t.Fatalf("unlock with wrong token: %v", err)
	}

	_, ok, err = lock.TryLock(ctx, "user-2", 10*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected lock to still be held after wrong-token unlock")
	}

	conn.GetClient().Del(ctx, testLockPrefix+"user-2")
}

func TestTryLock_LeaseExpiry(t *testing.T) {
	conn := getTestConnection(t)
	defer conn.Close()

	ctx := context.Background()
	lock := NewLock(conn, testLockPrefix)
	conn.GetClient().Del(ctx, testLockPrefix+"user-3")

	_, ok, err := lock.TryLock(ctx, "user-3", 100*time.Millisecond)
	if err != nil || !ok {
		t.Fatalf("acquire: ok=%v err=%v", ok, err)
	}

	time.Sleep(150 * time.Millisecond)

	_, ok, err = lock.TryLock(ctx, "user-3", time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected acquisition to succeed after lease expiry")
	}

	conn.GetClient().Del(ctx, testLockPrefix+"user-3")
}

func TestTryLock_Concurrent(t *testing.T) {
	conn := getTestConnection(t)
	defer conn.Close()

	ctx := context.Background()
	lock := NewLock(conn, testLockPrefix)
	conn.GetClient().Del(ctx, testLockPrefix+"user-4")

	var acquired atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := lock.TryLock(ctx, "user-4", 10*time.Second)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if ok {
				acquired.Add(1)
			}
		}()
	}

	wg.Wait()

	if acquired.Load() != 1 {
		t.Errorf("expected exactly 1 acquisition, got %d", acquired.Load())
	}

	conn.GetClient().Del(ctx, testLockPrefix+"user-4")
}
