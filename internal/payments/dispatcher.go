package payments

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"storefront/internal/metrics"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	ErrDispatcherClosed = errors.New("sync dispatcher closed")
	ErrQueueFull        = errors.New("sync queue full")
)

// DispatcherConfig tunes the background sync worker
type DispatcherConfig struct {
	QueueSize     int
	RatePerSecond float64
	Timeout       time.Duration
}

// Dispatcher runs sync requests on a single background worker. Callers hand
// off requests and never wait for the outcome; failures are reported on the
// Errors channel.
type Dispatcher struct {
	syncer  Syncer
	limiter *rate.Limiter
	timeout time.Duration
	logger  *zap.Logger

	queue  chan SyncRequest
	errs   chan error
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(syncer Syncer, cfg DispatcherConfig, logger *zap.Logger) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		syncer:  syncer,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1),
		timeout: cfg.Timeout,
		logger:  logger,
		queue:   make(chan SyncRequest, cfg.QueueSize),
		errs:    make(chan error, cfg.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}

	d.wg.Add(1)
	go d.run()
	return d
}

// Dispatch queues req without blocking
func (d *Dispatcher) Dispatch(req SyncRequest) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrDispatcherClosed
	}
	select {
	case d.queue <- req:
		return nil
	default:
		return ErrQueueFull
	}
}

// Errors reports failed syncs. It is closed once the worker exits.
func (d *Dispatcher) Errors() <-chan error {
	return d.errs
}

// LogErrors drains the Errors channel into the logger until it closes
func (d *Dispatcher) LogErrors() {
	for err := range d.errs {
		d.logger.Warn("Payment sync failed", zap.Error(err))
	}
}

// Close stops accepting requests, works off the queue and waits for the
// worker. Requests still queued when ctx ends are dropped.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		d.cancel()
		<-done
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	defer close(d.errs)
	defer d.cancel()

	for req := range d.queue {
		if err := d.limiter.Wait(d.ctx); err != nil {
			d.report(fmt.Errorf("sync %s for product %s dropped: %w", req.Action, req.ProductID, err))
			continue
		}

		ctx, cancel := context.WithTimeout(d.ctx, d.timeout)
		err := d.syncer.Sync(ctx, req)
		cancel()

		metrics.RecordSync(string(req.Action), err)
		if err != nil {
			d.report(fmt.Errorf("sync %s for product %s: %w", req.Action, req.ProductID, err))
			continue
		}
		d.logger.Debug("Payment sync completed",
			zap.String("action", string(req.Action)),
			zap.String("product_id", req.ProductID.String()),
		)
	}
}

// report never blocks the worker; errors beyond the buffer are only logged
func (d *Dispatcher) report(err error) {
	select {
	case d.errs <- err:
	default:
		d.logger.Error("Payment sync error dropped", zap.Error(err))
	}
}
