package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/authkit/pkg/logger"
)

// BatchStorage stores many events in one round trip.
type BatchStorage interface {
	StoreBatch(ctx context.Context, events []Event) error
}

// AsyncOptions configures an AsyncWriter. Zero values take the defaults.
type AsyncOptions struct {
	BufferSize     int           `env:"AUDIT_BUFFER_SIZE" envDefault:"1000"`    // Events queued before Store returns ErrBufferFull
	BatchSize      int           `env:"AUDIT_BATCH_SIZE" envDefault:"100"`      // Events per write
	BatchTimeout   time.Duration `env:"AUDIT_BATCH_TIMEOUT" envDefault:"500ms"` // Max wait for a partial batch
	StorageTimeout time.Duration `env:"AUDIT_STORAGE_TIMEOUT" envDefault:"5s"`  // Per-batch write timeout
}

func (o AsyncOptions) withDefaults() AsyncOptions {
	if o.BufferSize <= 0 {
		o.BufferSize = 1000
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 100
	}
	if o.BatchTimeout <= 0 {
		o.BatchTimeout = 500 * time.Millisecond
	}
	if o.StorageTimeout <= 0 {
		o.StorageTimeout = 5 * time.Second
	}
	return o
}

// AsyncWriter queues events and writes them in batches from one goroutine.
// Store never waits for the database. Write failures are logged and the
// batch is dropped.
type AsyncWriter struct {
	storage BatchStorage
	opts    AsyncOptions
	log     *slog.Logger

	events chan Event
	done   chan struct{}
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewAsyncWriter starts the writer. It panics when storage is nil.
func NewAsyncWriter(storage BatchStorage, opts AsyncOptions, log *slog.Logger) *AsyncWriter {
	if storage == nil {
		panic("audit: batch storage cannot be nil")
	}
	opts = opts.withDefaults()
	w := &AsyncWriter{
		storage: storage,
		opts:    opts,
		log:     logger.OrDiscard(log).With(logger.Component("audit")),
		events:  make(chan Event, opts.BufferSize),
		done:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w
}

// Store queues e.
func (w *AsyncWriter) Store(_ context.Context, e Event) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return ErrStorageNotAvailable
	}
	select {
	case w.events <- e:
		return nil
	default:
		return ErrBufferFull
	}
}

func (w *AsyncWriter) run() {
	defer w.wg.Done()

	batch := make([]Event, 0, w.opts.BatchSize)
	ticker := time.NewTicker(w.opts.BatchTimeout)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), w.opts.StorageTimeout)
		defer cancel()
		if err := w.storage.StoreBatch(ctx, batch); err != nil {
			w.log.Error("failed to store audit events", slog.Int("count", len(batch)), logger.Error(err))
		}
		clear(batch)
		batch = batch[:0]
	}

	for {
		select {
		case e := <-w.events:
			batch = append(batch, e)
			if len(batch) >= w.opts.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-w.done:
			for {
				select {
				case e := <-w.events:
					batch = append(batch, e)
					if len(batch) >= w.opts.BatchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

// Close stops accepting events and flushes the queue. ctx bounds the wait.
func (w *AsyncWriter) Close(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.done)
	w.mu.Unlock()

	flushed := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(flushed)
	}()

	select {
	case <-flushed:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
