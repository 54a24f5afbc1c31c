// Package dispatcher is the ledger's write path. Track never fails or blocks
// the caller: entries are persisted inline (default) or through a bounded
// buffer drained by one worker, and every persistence failure stays inside
// this package as a log line and a metric.
package dispatcher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"homedisclose/internal/ledger/metrics"
	"homedisclose/internal/ledger/models"
	"homedisclose/pkg/domain"
	"homedisclose/pkg/platform/circuit"
	"homedisclose/pkg/requestcontext"
)

const persistTimeout = 5 * time.Second

// Store is the append side of the ledger store.
type Store interface {
	Append(ctx context.Context, event models.Event) error
}

// Sink mirrors persisted entries to an external stream.
type Sink interface {
	Publish(ctx context.Context, event models.Event) error
}

type Dispatcher struct {
	store   Store
	sink    Sink
	logger  *slog.Logger
	metrics *metrics.Metrics
	breaker *circuit.Breaker
	now     func() time.Time

	mu     sync.RWMutex
	closed bool
	buffer chan models.Event
	wg     sync.WaitGroup
}

type Option func(*Dispatcher)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// WithBreaker stops store calls while the store is failing.
func WithBreaker(b *circuit.Breaker) Option {
	return func(d *Dispatcher) {
		d.breaker = b
	}
}

func WithSink(s Sink) Option {
	return func(d *Dispatcher) {
		d.sink = s
	}
}

// WithAsyncBuffer switches to async persistence with the given buffer size.
func WithAsyncBuffer(size int) Option {
	return func(d *Dispatcher) {
		if size > 0 {
			d.buffer = make(chan models.Event, size)
		}
	}
}

// New returns a dispatcher. Without WithAsyncBuffer entries are persisted
// synchronously, which keeps tests deterministic.
func New(store Store, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.buffer != nil {
		d.wg.Add(1)
		go d.run()
	}
	return d
}

// Track records one ledger entry. It fills the id, timestamps, origin and
// request id from ctx when the caller left them empty.
func (d *Dispatcher) Track(ctx context.Context, event models.Event) {
	event = d.enrich(ctx, event)

	if d.buffer == nil {
		d.persist(context.WithoutCancel(ctx), event)
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.drop(ctx, event, "closed")
		return
	}
	select {
	case d.buffer <- event:
		if d.metrics != nil {
			d.metrics.SetQueueDepth(len(d.buffer))
		}
	default:
		d.drop(ctx, event, "buffer_full")
	}
}

// Close stops accepting entries and waits until the buffer is drained.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	if d.buffer != nil {
		close(d.buffer)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for event := range d.buffer {
		d.persist(context.Background(), event)
		if d.metrics != nil {
			d.metrics.SetQueueDepth(len(d.buffer))
		}
	}
}

func (d *Dispatcher) enrich(ctx context.Context, event models.Event) models.Event {
	if event.ID.IsNil() {
		event.ID = domain.NewEventID()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = requestcontext.Now(ctx).UTC()
	}
	if event.ActorUserID == nil {
		if caller := requestcontext.UserID(ctx); !caller.IsNil() {
			event.ActorUserID = &caller
		}
	}
	if event.Origin == (models.Origin{}) {
		event.Origin = models.NewOrigin(requestcontext.ClientIP(ctx), requestcontext.UserAgent(ctx))
	}

	metadata := make(map[string]any, len(event.Metadata)+2)
	for k, v := range event.Metadata {
		metadata[k] = v
	}
	if event.ShareID != nil && !event.ShareID.IsNil() {
		metadata[models.MetaShareID] = event.ShareID.String()
	}
	if reqID := requestcontext.RequestID(ctx); reqID != "" {
		if _, ok := metadata[models.MetaRequestID]; !ok {
			metadata[models.MetaRequestID] = reqID
		}
	}
	event.Metadata = metadata
	return event
}

func (d *Dispatcher) persist(ctx context.Context, event models.Event) {
	if d.breaker != nil && !d.breaker.Allow() {
		d.drop(ctx, event, "circuit_open")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, persistTimeout)
	defer cancel()

	event.RecordedAt = d.now().UTC()
	if err := d.store.Append(ctx, event); err != nil {
		d.recordFailure(ctx, event, err)
		return
	}
	d.recordSuccess(ctx)
	if d.metrics != nil {
		d.metrics.IncTracked(string(event.Type))
	}

	if d.sink == nil {
		return
	}
	if err := d.sink.Publish(ctx, event); err != nil {
		if d.metrics != nil {
			d.metrics.IncSinkFailures()
		}
		d.logger.WarnContext(ctx, "ledger sink publish failed",
			"event_id", event.ID.String(),
			"event_type", string(event.Type),
			"error", err,
		)
	}
}

func (d *Dispatcher) recordFailure(ctx context.Context, event models.Event, err error) {
	if d.metrics != nil {
		d.metrics.IncPersistFailures()
	}
	d.logger.ErrorContext(ctx, "failed to persist ledger event",
		"event_id", event.ID.String(),
		"document_id", event.DocumentID.String(),
		"event_type", string(event.Type),
		"error", err,
	)
	if d.breaker == nil {
		return
	}
	if _, change := d.breaker.RecordFailure(); change.Opened {
		d.logger.WarnContext(ctx, "ledger circuit breaker opened, entries will be dropped",
			"breaker", d.breaker.Name(),
		)
		if d.metrics != nil {
			d.metrics.SetCircuitBreakerState(true)
		}
	}
}

func (d *Dispatcher) recordSuccess(ctx context.Context) {
	if d.breaker == nil {
		return
	}
	if _, change := d.breaker.RecordSuccess(); change.Closed {
		d.logger.InfoContext(ctx, "ledger circuit breaker closed", "breaker", d.breaker.Name())
		if d.metrics != nil {
			d.metrics.SetCircuitBreakerState(false)
		}
	}
}

func (d *Dispatcher) drop(ctx context.Context, event models.Event, reason string) {
	if d.metrics != nil {
		d.metrics.IncDropped(reason)
	}
	d.logger.WarnContext(ctx, "ledger event dropped",
		"reason", reason,
		"event_type", string(event.Type),
		"document_id", event.DocumentID.String(),
	)
}
