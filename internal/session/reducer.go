package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/salescoach-api/internal/kv"
	"github.com/wolfman30/salescoach-api/internal/observability/metrics"
	"github.com/wolfman30/salescoach-api/pkg/logging"
)

const (
	DefaultTTL         = 24 * time.Hour
	DefaultKeyPrefix   = "sess:"
	defaultSaveTimeout = 5 * time.Second
)

// Store is the byte store sessions are persisted in. A miss is reported as
// kv.ErrNotFound.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Reducer loads and saves session state. Storage failures are logged and
// absorbed; callers never see them.
type Reducer struct {
	store       Store
	ttl         time.Duration
	prefix      string
	saveTimeout time.Duration
	logger      *logging.Logger
	metrics     *metrics.CoachMetrics
	tracer      trace.Tracer

	pending sync.WaitGroup
}

// Option configures a Reducer.
type Option func(*Reducer)

func WithTTL(ttl time.Duration) Option {
	return func(r *Reducer) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

func WithKeyPrefix(prefix string) Option {
	return func(r *Reducer) { r.prefix = prefix }
}

func WithSaveTimeout(d time.Duration) Option {
	return func(r *Reducer) {
		if d > 0 {
			r.saveTimeout = d
		}
	}
}

func WithLogger(logger *logging.Logger) Option {
	return func(r *Reducer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithMetrics(m *metrics.CoachMetrics) Option {
	return func(r *Reducer) { r.metrics = m }
}

func WithTracer(tracer trace.Tracer) Option {
	return func(r *Reducer) {
		if tracer != nil {
			r.tracer = tracer
		}
	}
}

// NewReducer builds a reducer over store. A nil store is treated as
// unavailable: loads return defaults and saves are skipped.
func NewReducer(store Store, opts ...Option) *Reducer {
	r := &Reducer{
		store:       store,
		ttl:         DefaultTTL,
		prefix:      DefaultKeyPrefix,
		saveTimeout: defaultSaveTimeout,
		logger:      logging.Default(),
		tracer:      otel.Tracer("salescoach.internal.session"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Key returns the store key for a session.
func (r *Reducer) Key(sessionID string) string {
	return r.prefix + sessionID
}

func (r *Reducer) available(sessionID string) bool {
	return r != nil && r.store != nil && sessionID != ""
}

// Load returns the stored state, or the empty default when the session is
// unknown, the store is unavailable, or the read fails.
func (r *Reducer) Load(ctx context.Context, sessionID string) State {
	if !r.available(sessionID) {
		return NewState()
	}
	key := r.Key(sessionID)
	ctx, span := r.tracer.Start(ctx, "session.load", trace.WithAttributes(attribute.String("session.key", key)))
	defer span.End()

	data, err := r.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			span.RecordError(err)
			r.metrics.ObserveStoreError("load")
			r.logger.WithSession(sessionID).Warn("session load failed, using defaults", "key", key, "error", err)
		}
		return NewState()
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		span.RecordError(err)
		r.metrics.ObserveStoreError("decode")
		r.logger.WithSession(sessionID).Warn("session decode failed, using defaults", "key", key, "error", err)
		return NewState()
	}
	st.fillDefaults()
	return st
}

// Save sanitizes st and writes it in the background. The write is detached
// from ctx cancellation and bounded by the save timeout; call Flush before
// the process or invocation ends.
func (r *Reducer) Save(ctx context.Context, sessionID string, st State) {
	if !r.available(sessionID) {
		return
	}
	// Encode now so later mutations by the caller cannot race the write.
	data, err := r.encode(sessionID, st)
	if err != nil {
		return
	}
	detached := context.WithoutCancel(ctx)

	r.pending.Add(1)
	go func() {
		defer r.pending.Done()
		_ = r.put(detached, sessionID, data)
	}()
}

// SaveSync sanitizes and writes st before returning. Failures are logged and
// also returned for callers that want them.
func (r *Reducer) SaveSync(ctx context.Context, sessionID string, st State) error {
	if !r.available(sessionID) {
		return nil
	}
	data, err := r.encode(sessionID, st)
	if err != nil {
		return err
	}
	return r.put(ctx, sessionID, data)
}

// Flush waits for background saves to finish or ctx to end.
func (r *Reducer) Flush(ctx context.Context) error {
	if r == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		r.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("session: flush: %w", ctx.Err())
	}
}

// Clear empties the chat history of a session, leaving its roleplay, queries
// and signals intact, and saves the result.
func (r *Reducer) Clear(ctx context.Context, sessionID string) State {
	st := r.Load(ctx, sessionID)
	st.ClearChat()
	r.Save(ctx, sessionID, st)
	return st
}

func (r *Reducer) encode(sessionID string, st State) ([]byte, error) {
	data, err := json.Marshal(Sanitize(st))
	if err != nil {
		r.metrics.ObserveStoreError("encode")
		r.logger.WithSession(sessionID).Error("session encode failed", "error", err)
		return nil, fmt.Errorf("session: failed to marshal state: %w", err)
	}
	return data, nil
}

func (r *Reducer) put(ctx context.Context, sessionID string, data []byte) error {
	key := r.Key(sessionID)
	ctx, cancel := context.WithTimeout(ctx, r.saveTimeout)
	defer cancel()
	ctx, span := r.tracer.Start(ctx, "session.save", trace.WithAttributes(
		attribute.String("session.key", key),
		attribute.Int("session.bytes", len(data)),
	))
	defer span.End()

	if err := r.store.Put(ctx, key, data, r.ttl); err != nil {
		span.RecordError(err)
		r.metrics.ObserveStoreError("save")
		r.logger.WithSession(sessionID).Error("session save failed", "key", key, "error", err)
		return fmt.Errorf("session: failed to persist state: %w", err)
	}
	return nil
}
