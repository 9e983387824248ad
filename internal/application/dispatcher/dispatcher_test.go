package dispatcher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pkamnerd/dorm-billing/internal/domain/event"
)

type testLogger struct{}

func (l *testLogger) Info(msg string, keysAndValues ...interface{})  {}
func (l *testLogger) Error(msg string, keysAndValues ...interface{}) {}

func TestDispatch_InRegistrationOrder(t *testing.T) {
	d := New(&testLogger{})

	var order []string
	d.Subscribe(event.TypePaymentRecorded, "first", func(ctx context.Context, evt *event.Event) error {
		order = append(order, "first")
		return nil
	})
	d.Subscribe(event.TypePaymentRecorded, "second", func(ctx context.Context, evt *event.Event) error {
		order = append(order, "second")
		return nil
	})

	evt := event.New(event.TypePaymentRecorded, 1, 1, nil)
	if err := d.Dispatch(context.Background(), evt); err != nil {
		t.Fatalf("Dispatch() error: %v", err)
	}

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("handler order = %v, want [first second]", order)
	}
}

func TestDispatch_StopsOnError(t *testing.T) {
	d := New(&testLogger{})

	handlerErr := errors.New("handler failed")
	var secondCalled bool

	d.Subscribe(event.TypeItemChanged, "failing", func(ctx context.Context, evt *event.Event) error {
		return handlerErr
	})
	d.Subscribe(event.TypeItemChanged, "after", func(ctx context.Context, evt *event.Event) error {
		secondCalled = true
		return nil
	})

	err := d.Dispatch(context.Background(), event.New(event.TypeItemChanged, 1, 1, nil))
	if !errors.Is(err, handlerErr) {
		t.Errorf("Dispatch() error = %v, want wrapped %v", err, handlerErr)
	}
	if secondCalled {
		t.Error("handlers after a failure must not run")
	}
}

func TestDispatch_RecoversPanic(t *testing.T) {
	d := New(&testLogger{})

	d.Subscribe(event.TypeInvoiceSettled, "panicking", func(ctx context.Context, evt *event.Event) error {
		panic("boom")
	})

	err := d.Dispatch(context.Background(), event.New(event.TypeInvoiceSettled, 1, 1, nil))
	if err == nil {
		t.Fatal("Dispatch() expected error from panicking handler")
	}
}

func TestDispatch_NoHandlers(t *testing.T) {
	d := New(&testLogger{})

	if err := d.Dispatch(context.Background(), event.New(event.TypeReminderSent, 1, 1, nil)); err != nil {
		t.Errorf("Dispatch() with no handlers error: %v", err)
	}
}

func TestDispatchAsync_WaitsOnClose(t *testing.T) {
	d := New(&testLogger{})

	var mu sync.Mutex
	var handled int

	d.Subscribe(event.TypePaymentDeleted, "slow", func(ctx context.Context, evt *event.Event) error {
		time.Sleep(10 * time.Millisecond)
		mu.Lock()
		handled++
		mu.Unlock()
		return nil
	})

	for i := 0; i < 3; i++ {
		d.DispatchAsync(context.Background(), event.New(event.TypePaymentDeleted, 1, int64(i), nil))
	}

	if err := d.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if handled != 3 {
		t.Errorf("handled = %d, want 3 after Close", handled)
	}
}

func TestDispatchAsync_SurvivesCallerCancel(t *testing.T) {
	d := New(&testLogger{})

	errCh := make(chan error, 1)
	d.Subscribe(event.TypeInvoiceDeleted, "detached", func(ctx context.Context, evt *event.Event) error {
		errCh <- ctx.Err()
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.DispatchAsync(ctx, event.New(event.TypeInvoiceDeleted, 1, 1, nil))

	if err := <-errCh; err != nil {
		t.Errorf("handler context error = %v, want nil after caller cancellation", err)
	}
}

func TestDispatch_AfterClose(t *testing.T) {
	d := New(&testLogger{})

	if err := d.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if err := d.Close(); err == nil {
		t.Error("second Close() must fail")
	}
	if err := d.Dispatch(context.Background(), event.New(event.TypePaymentRecorded, 1, 1, nil)); err == nil {
		t.Error("Dispatch() after Close must fail")
	}
}
