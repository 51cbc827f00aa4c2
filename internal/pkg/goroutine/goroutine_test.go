package goroutine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestManagerCollectsErrorsAndRecovers(t *testing.T) {
	m := NewManager(4)
	ctx := context.Background()

	errBoom := errors.New("boom")
	var ran atomic.Int32

	m.Go(ctx, "ok", func(context.Context) error { ran.Add(1); return nil })
	m.Go(ctx, "fail", func(context.Context) error { ran.Add(1); return errBoom })
	m.Go(ctx, "panic", func(context.Context) error { ran.Add(1); panic("kaboom") })
	m.Go(ctx, "canceled", func(context.Context) error { ran.Add(1); return context.Canceled })

	err := m.Wait()
	if !errors.Is(err, errBoom) {
		t.Fatalf("Wait() = %v, want errBoom", err)
	}
	if errors.Is(err, context.Canceled) {
		t.Fatalf("context.Canceled should not be reported: %v", err)
	}
	if ran.Load() != 4 {
		t.Fatalf("ran = %d, want 4", ran.Load())
	}
}

func TestManagerRejectsAfterWait(t *testing.T) {
	m := NewManager(1)
	if err := m.Wait(); err != nil {
		t.Fatalf("Wait() = %v", err)
	}

	if m.Go(context.Background(), "late", func(context.Context) error { return nil }) {
		t.Fatal("closed manager accepted a job")
	}
}

func TestManagerLimit(t *testing.T) {
	m := NewManager(1)
	ctx := context.Background()

	release := make(chan struct{})
	started := make(chan struct{})
	if !m.Go(ctx, "blocker", func(context.Context) error {
		close(started)
		<-release
		return nil
	}) {
		t.Fatal("first job was not scheduled")
	}
	<-started

	if m.Go(ctx, "overflow", func(context.Context) error { return nil }) {
		t.Fatal("job scheduled beyond the limit")
	}

	close(release)
	if err := m.Wait(); !errors.Is(err, ErrLimitReached) {
		t.Fatalf("Wait() = %v, want ErrLimitReached", err)
	}
}

func TestNilManager(t *testing.T) {
	var m *Manager
	if m.Go(context.Background(), "x", nil) {
		t.Fatal("nil manager scheduled a job")
	}
	if err := m.Wait(); err != nil {
		t.Fatalf("nil Wait() = %v", err)
	}
}
