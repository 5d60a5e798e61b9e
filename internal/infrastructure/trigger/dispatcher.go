package trigger

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"pairchat/internal/domain/entity"
	"pairchat/internal/domain/repository"
	"pairchat/internal/infrastructure/metrics"
	"pairchat/pkg/errors"
	"pairchat/pkg/logger"
	"pairchat/pkg/utils"
)

type eventMask int

const (
	eventCreate eventMask = 1 << iota
	eventUpdate
	eventDelete

	eventWrite = eventCreate | eventUpdate | eventDelete
)

// Change is the before/after value of one node matched by a template.
type Change struct {
	Path   string
	Before interface{}
	After  interface{}
}

func (c Change) kind() eventMask {
	switch {
	case c.Before == nil:
		return eventCreate
	case c.After == nil:
		return eventDelete
	default:
		return eventUpdate
	}
}

type EventContext struct {
	EventID   string
	Params    map[string]string
	Timestamp time.Time
}

type Handler func(ctx context.Context, change Change, event EventContext) error

type Options struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	DeadLetters    repository.DeadLetterRepository
}

type registration struct {
	name     string
	template []string
	events   eventMask
	handler  Handler
}

// Dispatcher invokes registered handlers for node changes. Delivery is
// at-least-once: failed invocations are retried with exponential backoff and
// recorded as dead letters when every attempt fails.
type Dispatcher struct {
	opts Options

	mu     sync.RWMutex
	regs   []registration
	closed bool

	wg sync.WaitGroup
}

func NewDispatcher(opts Options) *Dispatcher {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = 100 * time.Millisecond
	}
	return &Dispatcher{opts: opts}
}

func (d *Dispatcher) OnCreate(template, name string, handler Handler) {
	d.register(template, name, eventCreate, handler)
}

func (d *Dispatcher) OnUpdate(template, name string, handler Handler) {
	d.register(template, name, eventUpdate, handler)
}

func (d *Dispatcher) OnDelete(template, name string, handler Handler) {
	d.register(template, name, eventDelete, handler)
}

func (d *Dispatcher) OnWrite(template, name string, handler Handler) {
	d.register(template, name, eventWrite, handler)
}

func (d *Dispatcher) register(template, name string, events eventMask, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.regs = append(d.regs, registration{
		name:     name,
		template: utils.SplitPath(template),
		events:   events,
		handler:  handler,
	})
}

// templates returns the distinct registered templates.
func (d *Dispatcher) templates() [][]string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	seen := make(map[string]bool)
	var out [][]string
	for _, reg := range d.regs {
		key := strings.Join(reg.template, "/")
		if !seen[key] {
			seen[key] = true
			out = append(out, reg.template)
		}
	}
	return out
}

// Publish starts one invocation per handler whose template and event kind
// match the change. It never blocks on handler execution.
func (d *Dispatcher) Publish(ctx context.Context, change Change) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		logger.Warn("Dispatcher closed, dropping change at %s", change.Path)
		return
	}

	segs := utils.SplitPath(change.Path)
	kind := change.kind()
	for _, reg := range d.regs {
		if reg.events&kind == 0 {
			continue
		}
		params, ok := matchTemplate(reg.template, segs)
		if !ok {
			continue
		}

		event := EventContext{
			EventID:   uuid.New().String(),
			Params:    params,
			Timestamp: time.Now(),
		}
		d.wg.Add(1)
		go d.invoke(context.WithoutCancel(ctx), reg, change, event)
	}
}

// Wait blocks until every in-flight invocation, including ones started by
// the writes of other handlers, has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Close stops accepting changes and waits for in-flight invocations.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) invoke(ctx context.Context, reg registration, change Change, event EventContext) {
	defer d.wg.Done()

	start := time.Now()
	attempts := 0

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = d.opts.InitialBackoff
	b.Reset()

	operation := func() error {
		attempts++
		err := safeCall(ctx, reg.handler, change, event)
		if err == nil {
			return nil
		}
		if !errors.Retryable(err) {
			return backoff.Permanent(err)
		}
		if attempts < d.opts.MaxAttempts {
			metrics.IncTriggerRetry(reg.name)
			logger.Warn("Trigger attempt %d failed, retrying: %s error=%v", attempts, logger.Event(reg.name, event.EventID, event.Params), err)
		}
		return err
	}

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(b, uint64(d.opts.MaxAttempts-1)), ctx))
	if err == nil {
		metrics.ObserveTrigger(reg.name, "success", time.Since(start))
		logger.Debug("Trigger succeeded: %s attempts=%d", logger.Event(reg.name, event.EventID, event.Params), attempts)
		return
	}

	metrics.ObserveTrigger(reg.name, "failed", time.Since(start))
	logger.Error("Trigger failed after %d attempts: %s error=%v", attempts, logger.Event(reg.name, event.EventID, event.Params), err)
	d.deadLetter(ctx, reg, change, event, attempts, err)
}

func safeCall(ctx context.Context, handler Handler, change Change, event EventContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Internal("handler panicked", fmt.Errorf("%v", r))
		}
	}()
	return handler(ctx, change, event)
}

func (d *Dispatcher) deadLetter(ctx context.Context, reg registration, change Change, event EventContext, attempts int, cause error) {
	if d.opts.DeadLetters == nil {
		return
	}

	letter := &entity.DeadLetter{
		ID:       event.EventID,
		Handler:  reg.name,
		EventID:  event.EventID,
		Path:     change.Path,
		Params:   event.Params,
		Before:   encode(change.Before),
		After:    encode(change.After),
		Error:    cause.Error(),
		Attempts: attempts,
		FailedAt: time.Now().UTC(),
	}
	if err := d.opts.DeadLetters.Record(ctx, letter); err != nil {
		logger.Error("Record dead letter Error: %v", err)
	}
}

func encode(value interface{}) string {
	if value == nil {
		return ""
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(raw)
}

// matchTemplate matches path segments against a template such as
// messages/{chatId}/{messageId} and returns the captured parameters.
func matchTemplate(template, segs []string) (map[string]string, bool) {
	if len(template) != len(segs) {
		return nil, false
	}
	params := make(map[string]string)
	for i, part := range template {
		if name, ok := captureName(part); ok {
			params[name] = segs[i]
			continue
		}
		if part != segs[i] {
			return nil, false
		}
	}
	return params, true
}

func captureName(part string) (string, bool) {
	if strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}") && len(part) > 2 {
		return part[1 : len(part)-1], true
	}
	return "", false
}
