// Package uploadqueue coordinates concurrent photo uploads through a bounded
// worker pool. Each item moves through a small state machine and every
// transition is published on the Events channel.
package uploadqueue

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

type State string

const (
	StateQueued    State = "queued"
	StateUploading State = "uploading"
	StateCompleted State = "completed"
	StateError     State = "error"
	StateDuplicate State = "duplicate"
	StateCancelled State = "cancelled"
)

func (s State) Terminal() bool {
	return s == StateCompleted || s == StateDuplicate || s == StateCancelled
}

var (
	ErrQueueFull          = errors.New("upload queue is full")
	ErrItemNotFound       = errors.New("upload item not found")
	ErrNotRetryable       = errors.New("upload item is not in error state")
	ErrNotCancellable     = errors.New("upload item already finished")
	ErrRetryLimitExceeded = errors.New("upload retry limit exceeded")
	ErrDuplicate          = errors.New("duplicate upload")
	ErrQueueClosed        = errors.New("upload queue is closed")
)

// File is one upload payload.
type File struct {
	Name        string
	ContentType string
	Data        []byte
	Metadata    map[string]string
}

// Transport performs a single upload attempt. It must honour ctx
// cancellation and return ErrDuplicate when the server already has the file.
type Transport interface {
	Upload(ctx context.Context, f File) error
}

type TransportFunc func(ctx context.Context, f File) error

func (fn TransportFunc) Upload(ctx context.Context, f File) error { return fn(ctx, f) }

type Options struct {
	MaxConcurrency int
	MaxRetries     int
	MaxQueued      int
	AutoRetry      bool
	RetryBackoff   time.Duration
	EventBuffer    int
}

const (
	defaultConcurrency  = 3
	defaultMaxRetries   = 3
	defaultRetryBackoff = time.Second
	defaultEventBuffer  = 64
)

// Item is a snapshot of one upload.
type Item struct {
	ID          string
	Name        string
	Size        int
	Hash        string
	State       State
	Attempts    int
	Retries     int
	Err         string
	DuplicateOf string
	UpdatedAt   time.Time
}

type Event struct {
	ItemID  string
	Name    string
	State   State
	Attempt int
	Err     error
}

type entry struct {
	Item
	file            File
	cancel          context.CancelFunc
	cancelRequested bool
}

// Queue is safe for concurrent use. Callers must drain Events until it is
// closed; workers block while the event buffer is full.
type Queue struct {
	opts      Options
	transport Transport
	logger    *slog.Logger

	mu       sync.Mutex
	entries  map[string]*entry
	order    []string
	pending  []string
	hashes   map[string]string
	active   int
	retrying int
	paused   bool
	started  bool
	closed   bool
	wake     chan struct{}
	changed  chan struct{}
	workers  sync.WaitGroup

	emitMu       sync.RWMutex
	eventsClosed bool
	events       chan Event
}

func New(transport Transport, opts Options, logger *slog.Logger) *Queue {
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = defaultConcurrency
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = defaultRetryBackoff
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = defaultEventBuffer
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		opts:      opts,
		transport: transport,
		logger:    logger,
		entries:   make(map[string]*entry),
		hashes:    make(map[string]string),
		wake:      make(chan struct{}, 1),
		changed:   make(chan struct{}),
		events:    make(chan Event, opts.EventBuffer),
	}
}

// DefaultOptions mirrors the upload defaults used by the CLI.
func DefaultOptions() Options {
	return Options{
		MaxConcurrency: defaultConcurrency,
		MaxRetries:     defaultMaxRetries,
		RetryBackoff:   defaultRetryBackoff,
		EventBuffer:    defaultEventBuffer,
	}
}

func (q *Queue) Events() <-chan Event { return q.events }

// Add enqueues files in order. A file whose content hash matches an earlier,
// non-cancelled item goes straight to the duplicate state.
func (q *Queue) Add(files ...File) ([]string, error) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil, ErrQueueClosed
	}
	if q.opts.MaxQueued > 0 && len(q.pending)+len(files) > q.opts.MaxQueued {
		q.mu.Unlock()
		return nil, fmt.Errorf("%w: %d pending, limit %d", ErrQueueFull, len(q.pending), q.opts.MaxQueued)
	}

	ids := make([]string, 0, len(files))
	events := make([]Event, 0, len(files))
	now := time.Now()
	for _, f := range files {
		sum := sha256.Sum256(f.Data)
		e := &entry{
			Item: Item{
				ID:        uuid.NewString(),
				Name:      f.Name,
				Size:      len(f.Data),
				Hash:      hex.EncodeToString(sum[:]),
				UpdatedAt: now,
			},
			file: f,
		}
		if prev, ok := q.hashes[e.Hash]; ok {
			e.State = StateDuplicate
			e.DuplicateOf = prev
		} else {
			e.State = StateQueued
			q.hashes[e.Hash] = e.ID
			q.pending = append(q.pending, e.ID)
		}
		q.entries[e.ID] = e
		q.order = append(q.order, e.ID)
		ids = append(ids, e.ID)
		events = append(events, e.event(nil))
	}
	q.notifyLocked()
	q.mu.Unlock()

	q.emit(events...)
	q.signal()
	return ids, nil
}

// Start launches the dispatcher. It is a no-op after the first call.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	if q.started || q.closed {
		q.mu.Unlock()
		return
	}
	q.started = true
	q.mu.Unlock()
	go q.dispatch(ctx)
}

// Pause stops new dispatches; in-flight uploads keep running.
func (q *Queue) Pause() {
	q.mu.Lock()
	q.paused = true
	q.mu.Unlock()
}

func (q *Queue) Resume() {
	q.mu.Lock()
	q.paused = false
	q.mu.Unlock()
	q.signal()
}

// Cancel removes a queued item immediately. For an uploading item it aborts
// the transfer; the item becomes cancelled once the transport returns.
func (q *Queue) Cancel(id string) error {
	q.mu.Lock()
	e, ok := q.entries[id]
	if !ok {
		q.mu.Unlock()
		return ErrItemNotFound
	}
	var events []Event
	switch e.State {
	case StateQueued, StateError:
		q.removePendingLocked(id)
		e.setState(StateCancelled)
		q.forgetHashLocked(e)
		events = append(events, e.event(nil))
		q.notifyLocked()
	case StateUploading:
		e.cancelRequested = true
		if e.cancel != nil {
			e.cancel()
		}
	default:
		q.mu.Unlock()
		return fmt.Errorf("%w: %s is %s", ErrNotCancellable, id, e.State)
	}
	q.mu.Unlock()
	q.emit(events...)
	return nil
}

// Retry puts an errored item back at the tail of the queue.
func (q *Queue) Retry(id string) error {
	q.mu.Lock()
	e, ok := q.entries[id]
	if !ok {
		q.mu.Unlock()
		return ErrItemNotFound
	}
	if e.State != StateError {
		q.mu.Unlock()
		return fmt.Errorf("%w: %s is %s", ErrNotRetryable, id, e.State)
	}
	if e.Retries >= q.opts.MaxRetries {
		q.mu.Unlock()
		return fmt.Errorf("%w: %d of %d", ErrRetryLimitExceeded, e.Retries, q.opts.MaxRetries)
	}
	e.Retries++
	ev := q.requeueLocked(e)
	q.mu.Unlock()
	q.emit(ev)
	q.signal()
	return nil
}

// Items returns snapshots in insertion order.
func (q *Queue) Items() []Item {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := make([]Item, 0, len(q.order))
	for _, id := range q.order {
		items = append(items, q.entries[id].Item)
	}
	return items
}

func (q *Queue) Item(id string) (Item, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	e, ok := q.entries[id]
	if !ok {
		return Item{}, ErrItemNotFound
	}
	return e.Item, nil
}

// Wait blocks until nothing is queued, uploading or waiting on an automatic retry.
func (q *Queue) Wait(ctx context.Context) error {
	for {
		q.mu.Lock()
		if q.idleLocked() {
			q.mu.Unlock()
			return nil
		}
		ch := q.changed
		q.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close aborts in-flight uploads, waits for them to return and closes Events.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	for _, e := range q.entries {
		if e.State == StateUploading && e.cancel != nil {
			e.cancelRequested = true
			e.cancel()
		}
	}
	q.notifyLocked()
	q.mu.Unlock()
	q.signal()

	q.workers.Wait()

	q.emitMu.Lock()
	q.eventsClosed = true
	close(q.events)
	q.emitMu.Unlock()
}

type launch struct {
	ctx context.Context
	e   *entry
}

func (q *Queue) dispatch(ctx context.Context) {
	for {
		q.mu.Lock()
		var events []Event
		var started []launch
		for q.canDispatchLocked() {
			id := q.pending[0]
			q.pending = q.pending[1:]
			e := q.entries[id]
			e.Attempts++
			e.setState(StateUploading)
			uploadCtx, cancel := context.WithCancel(ctx)
			e.cancel = cancel
			q.active++
			q.workers.Add(1)
			events = append(events, e.event(nil))
			started = append(started, launch{ctx: uploadCtx, e: e})
		}
		closed := q.closed
		q.mu.Unlock()

		// The uploading event must precede whatever the worker reports.
		q.emit(events...)
		for _, l := range started {
			go q.upload(l.ctx, l.e)
		}
		if closed {
			return
		}
		select {
		case <-ctx.Done():
			q.logger.Debug("upload dispatcher stopped", "reason", ctx.Err())
			return
		case <-q.wake:
		}
	}
}

func (q *Queue) upload(ctx context.Context, e *entry) {
	defer q.workers.Done()

	err := q.transport.Upload(ctx, e.file)

	q.mu.Lock()
	e.cancel()
	e.cancel = nil
	q.active--

	var scheduleRetry bool
	switch {
	case err == nil:
		e.Err = ""
		e.setState(StateCompleted)
	case e.cancelRequested:
		e.Err = ""
		e.setState(StateCancelled)
		q.forgetHashLocked(e)
	case errors.Is(err, ErrDuplicate):
		e.setState(StateDuplicate)
	default:
		e.Err = err.Error()
		e.setState(StateError)
		if q.opts.AutoRetry && !q.closed && e.Retries < q.opts.MaxRetries {
			e.Retries++
			q.retrying++
			scheduleRetry = true
		}
	}
	e.cancelRequested = false
	ev := e.event(err)
	retries := e.Retries
	q.notifyLocked()
	q.mu.Unlock()

	if err != nil && ev.State == StateError {
		q.logger.Warn("upload failed", "item_id", e.ID, "file", e.Name, "attempt", ev.Attempt, "error", err)
	}
	q.emit(ev)
	if scheduleRetry {
		time.AfterFunc(q.backoff(retries), func() { q.autoRetry(e.ID) })
	}
	q.signal()
}

func (q *Queue) autoRetry(id string) {
	q.mu.Lock()
	q.retrying--
	e := q.entries[id]
	if q.closed || e.State != StateError {
		q.notifyLocked()
		q.mu.Unlock()
		return
	}
	ev := q.requeueLocked(e)
	q.mu.Unlock()
	q.emit(ev)
	q.signal()
}

// backoff doubles the base delay for each retry already spent.
func (q *Queue) backoff(retries int) time.Duration {
	d := q.opts.RetryBackoff
	for i := 1; i < retries; i++ {
		d *= 2
	}
	return d
}

func (q *Queue) requeueLocked(e *entry) Event {
	e.Err = ""
	e.setState(StateQueued)
	q.pending = append(q.pending, e.ID)
	q.notifyLocked()
	return e.event(nil)
}

func (q *Queue) canDispatchLocked() bool {
	return !q.paused && !q.closed && len(q.pending) > 0 && q.active < q.opts.MaxConcurrency
}

func (q *Queue) idleLocked() bool {
	return len(q.pending) == 0 && q.active == 0 && q.retrying == 0
}

func (q *Queue) removePendingLocked(id string) {
	for i, p := range q.pending {
		if p == id {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return
		}
	}
}

// forgetHashLocked lets the same content be added again after a cancel.
func (q *Queue) forgetHashLocked(e *entry) {
	if q.hashes[e.Hash] == e.ID {
		delete(q.hashes, e.Hash)
	}
}

// notifyLocked wakes every Wait call.
func (q *Queue) notifyLocked() {
	close(q.changed)
	q.changed = make(chan struct{})
}

func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *Queue) emit(events ...Event) {
	if len(events) == 0 {
		return
	}
	q.emitMu.RLock()
	defer q.emitMu.RUnlock()
	if q.eventsClosed {
		return
	}
	for _, ev := range events {
		q.events <- ev
	}
}

func (e *entry) setState(s State) {
	e.State = s
	e.UpdatedAt = time.Now()
}

func (e *entry) event(err error) Event {
	return Event{ItemID: e.ID, Name: e.Name, State: e.State, Attempt: e.Attempts, Err: err}
}
