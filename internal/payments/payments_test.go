package payments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func TestHTTPSyncer_PostsWithBearerSecret(t *testing.T) {
	var (
		gotAuth string
		gotBody SyncRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	discount := int64(900)
	product := &domain.Product{ID: uuid.New(), Name: "Course", Price: 1200, DiscountPrice: &discount}
	creator := &domain.Creator{ID: uuid.New(), PaymentAccountID: "acct_123"}
	req := NewSyncRequest(ActionPublish, product, creator, "usd")

	syncer := NewHTTPSyncer(srv.URL, "s3cret", time.Second)
	if err := syncer.Sync(context.Background(), req); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	if gotAuth != "Bearer s3cret" {
		t.Errorf("unexpected Authorization header %q", gotAuth)
	}
	if gotBody.PaymentAccountID != "acct_123" || gotBody.Price != 900 || gotBody.Action != ActionPublish {
		t.Errorf("unexpected body %+v", gotBody)
	}
}

func TestHTTPSyncer_Non2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "account not connected", http.StatusBadRequest)
	}))
	defer srv.Close()

	err := NewHTTPSyncer(srv.URL, "", time.Second).Sync(context.Background(), SyncRequest{})

	var syncErr *SyncError
	if !errors.As(err, &syncErr) || syncErr.StatusCode != http.StatusBadRequest || syncErr.Body != "account not connected" {
		t.Errorf("expected SyncError, got %v", err)
	}
}

func TestHTTPSyncer_NotConfigured(t *testing.T) {
	err := NewHTTPSyncer("", "", time.Second).Sync(context.Background(), SyncRequest{})
	if !errors.Is(err, ErrSyncNotConfigured) {
		t.Errorf("expected ErrSyncNotConfigured, got %v", err)
	}
}

type fakeSyncer struct {
	mu    sync.Mutex
	calls []SyncRequest
	err   error
	delay time.Duration
}

func (f *fakeSyncer) Sync(ctx context.Context, req SyncRequest) error {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	return f.err
}

func (f *fakeSyncer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestDispatcher_DrainsOnClose(t *testing.T) {
	syncer := &fakeSyncer{}
	d := NewDispatcher(syncer, DispatcherConfig{QueueSize: 10, RatePerSecond: 1000}, zap.NewNop())

	for i := 0; i < 5; i++ {
		if err := d.Dispatch(SyncRequest{ProductID: uuid.New(), Action: ActionCreate}); err != nil {
			t.Fatalf("Dispatch failed: %v", err)
		}
	}

	if err := d.Close(context.Background()); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if syncer.count() != 5 {
		t.Errorf("expected 5 syncs, got %d", syncer.count())
	}
	if err := d.Dispatch(SyncRequest{}); !errors.Is(err, ErrDispatcherClosed) {
		t.Errorf("expected ErrDispatcherClosed, got %v", err)
	}
	if err := d.Close(context.Background()); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
}

func TestDispatcher_ReportsErrors(t *testing.T) {
	syncer := &fakeSyncer{err: errors.New("processor down")}
	d := NewDispatcher(syncer, DispatcherConfig{QueueSize: 4, RatePerSecond: 1000}, zap.NewNop())

	_ = d.Dispatch(SyncRequest{ProductID: uuid.New(), Action: ActionUpdate})
	_ = d.Close(context.Background())

	var got []error
	for err := range d.Errors() {
		got = append(got, err)
	}
	if len(got) != 1 || !errors.Is(got[0], syncer.err) {
		t.Errorf("expected one wrapped processor error, got %v", got)
	}
}

func TestDispatcher_QueueFull(t *testing.T) {
	syncer := &fakeSyncer{delay: 200 * time.Millisecond}
	d := NewDispatcher(syncer, DispatcherConfig{QueueSize: 1, RatePerSecond: 1000}, zap.NewNop())
	defer d.Close(context.Background())

	var full bool
	for i := 0; i < 5; i++ {
		if err := d.Dispatch(SyncRequest{ProductID: uuid.New()}); errors.Is(err, ErrQueueFull) {
			full = true
		}
	}
	if !full {
		t.Errorf("expected the queue to fill up")
	}
}

func TestDispatcher_CloseHonorsDeadline(t *testing.T) {
	syncer := &fakeSyncer{delay: time.Second}
	d := NewDispatcher(syncer, DispatcherConfig{QueueSize: 10, RatePerSecond: 1000, Timeout: 5 * time.Second}, zap.NewNop())

	for i := 0; i < 3; i++ {
		_ = d.Dispatch(SyncRequest{ProductID: uuid.New()})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	if err := d.Close(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline error, got %v", err)
	}
	if time.Since(start) > 900*time.Millisecond {
		t.Errorf("Close did not abort in-flight syncs")
	}
}
