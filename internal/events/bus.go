package events

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tphakala/vocab-manager/internal/errors"
	"github.com/tphakala/vocab-manager/internal/logger"
)

// Config sizes the bus.
type Config struct {
	BufferSize int
	Workers    int
}

// DefaultConfig returns the default bus configuration.
func DefaultConfig() Config {
	return Config{BufferSize: 256, Workers: 2}
}

// Stats counts bus activity.
type Stats struct {
	Received       uint64
	Processed      uint64
	Dropped        uint64
	ConsumerErrors uint64
}

// Bus fans events out to consumers on worker goroutines. Publishing never
// blocks; events are dropped when the buffer is full. A nil *Bus accepts
// nothing.
type Bus struct {
	eventChan chan ChangeEvent
	workers   int
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	running   atomic.Bool

	mu        sync.Mutex
	consumers []Consumer

	received, processed, dropped, consumerErrors atomic.Uint64

	log logger.Logger
}

// NewBus starts a bus with cfg.Workers workers.
func NewBus(cfg Config, log logger.Logger) *Bus {
	def := DefaultConfig()
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = def.BufferSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if log == nil {
		log = logger.Global("events")
	}

	ctx, cancel := context.WithCancel(context.Background())
	eb := &Bus{
		eventChan: make(chan ChangeEvent, cfg.BufferSize),
		workers:   cfg.Workers,
		ctx:       ctx,
		cancel:    cancel,
		log:       log.Module("events"),
	}
	eb.running.Store(true)
	for i := range eb.workers {
		eb.wg.Add(1)
		go eb.worker(i)
	}
	eb.log.Info("event bus started", logger.Int("workers", eb.workers), logger.Int("buffer", cfg.BufferSize))
	return eb
}

// RegisterConsumer adds a consumer. Names must be unique.
func (eb *Bus) RegisterConsumer(consumer Consumer) error {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	for _, c := range eb.consumers {
		if c.Name() == consumer.Name() {
			return errors.Newf("consumer %s already registered", consumer.Name()).
				Component("events").
				Category(errors.CategoryConflict).
				Build()
		}
	}
	eb.consumers = append(eb.consumers, consumer)
	eb.log.Info("event consumer registered", logger.String("consumer", consumer.Name()))
	return nil
}

// TryPublish queues event and reports whether it was accepted.
func (eb *Bus) TryPublish(event ChangeEvent) bool {
	if eb == nil || !eb.running.Load() {
		return false
	}

	eb.mu.Lock()
	hasConsumers := len(eb.consumers) > 0
	eb.mu.Unlock()
	if !hasConsumers {
		return false
	}

	select {
	case eb.eventChan <- event:
		eb.received.Add(1)
		return true
	default:
		eb.dropped.Add(1)
		eb.log.Debug("event dropped due to full buffer",
			logger.String("resource", event.Resource),
			logger.String("action", event.Action))
		return false
	}
}

// Shutdown stops accepting events, drains what is queued and waits up to
// timeout for the workers to finish.
func (eb *Bus) Shutdown(timeout time.Duration) error {
	if eb == nil || !eb.running.Swap(false) {
		return nil
	}

	done := make(chan struct{})
	go func() {
		eb.cancel()
		eb.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		eb.log.Info("event bus stopped")
		return nil
	case <-time.After(timeout):
		eb.log.Warn("event bus shutdown timeout exceeded", logger.Duration("timeout", timeout))
		return fmt.Errorf("event bus shutdown timeout exceeded")
	}
}

// Stats returns a snapshot of the counters.
func (eb *Bus) Stats() Stats {
	if eb == nil {
		return Stats{}
	}
	return Stats{
		Received:       eb.received.Load(),
		Processed:      eb.processed.Load(),
		Dropped:        eb.dropped.Load(),
		ConsumerErrors: eb.consumerErrors.Load(),
	}
}

func (eb *Bus) worker(id int) {
	defer eb.wg.Done()
	log := eb.log.With(logger.Int("worker_id", id))

	for {
		select {
		case event := <-eb.eventChan:
			eb.process(event, log)
		case <-eb.ctx.Done():
			// drain what was accepted before shutdown
			for {
				select {
				case event := <-eb.eventChan:
					eb.process(event, log)
				default:
					return
				}
			}
		}
	}
}

func (eb *Bus) process(event ChangeEvent, log logger.Logger) {
	eb.mu.Lock()
	consumers := append([]Consumer(nil), eb.consumers...)
	eb.mu.Unlock()

	for _, consumer := range consumers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					eb.consumerErrors.Add(1)
					log.Error("consumer panicked",
						logger.String("consumer", consumer.Name()),
						logger.Any("panic", r))
				}
			}()

			if err := consumer.ProcessEvent(event); err != nil {
				eb.consumerErrors.Add(1)
				log.Warn("consumer error",
					logger.String("consumer", consumer.Name()),
					logger.String("topic", event.Topic("")),
					logger.Error(err))
				return
			}
			eb.processed.Add(1)
		}()
	}
}
