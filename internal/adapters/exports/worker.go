// Package exports renders filtered page listings to CSV or JSON artifacts in
// the background and stores them in a blob store.
package exports

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"immunizetrack/internal/blob"
	"immunizetrack/internal/core"
	"immunizetrack/pkg/domain"
)

// Status describes the lifecycle stage of an export.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Done reports whether s is terminal.
func (s Status) Done() bool { return s == StatusSucceeded || s == StatusFailed }

// ErrQueueFull is returned when the worker cannot accept more requests.
var ErrQueueFull = errors.New("exports: queue full")

// ErrStopped is returned by Enqueue after Stop.
var ErrStopped = errors.New("exports: worker stopped")

// Source produces the listing to export.
type Source interface {
	List(ctx context.Context, kind domain.EntityType, q string, fields ...string) (core.Listing, error)
}

// Request asks for an export of one page.
type Request struct {
	Kind        domain.EntityType `json:"kind"`
	Query       string            `json:"query"`
	Fields      []string          `json:"fields,omitempty"`
	Formats     []Format          `json:"formats,omitempty"`
	RequestedBy string            `json:"requestedBy,omitempty"`
}

// Artifact is a stored export file.
type Artifact struct {
	Key         string    `json:"key"`
	Format      Format    `json:"format"`
	ContentType string    `json:"contentType"`
	SizeBytes   int64     `json:"sizeBytes"`
	ETag        string    `json:"etag,omitempty"`
	URL         string    `json:"url,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Record tracks an export and its artifacts.
type Record struct {
	ID          string            `json:"id"`
	Kind        domain.EntityType `json:"kind"`
	Query       string            `json:"query"`
	Fields      []string          `json:"fields,omitempty"`
	Formats     []Format          `json:"formats"`
	Status      Status            `json:"status"`
	Error       string            `json:"error,omitempty"`
	Matched     int               `json:"matched"`
	Revision    uint64            `json:"revision"`
	Artifacts   []Artifact        `json:"artifacts,omitempty"`
	RequestedBy string            `json:"requestedBy,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
	CompletedAt *time.Time        `json:"completedAt,omitempty"`
}

func (r Record) clone() Record {
	r.Fields = slices.Clone(r.Fields)
	r.Formats = slices.Clone(r.Formats)
	r.Artifacts = slices.Clone(r.Artifacts)
	if r.CompletedAt != nil {
		at := *r.CompletedAt
		r.CompletedAt = &at
	}
	return r
}

type job struct {
	record Record
	done   chan struct{}
}

// Option configures a Worker.
type Option func(*Worker)

// WithLogger sets the worker logger.
func WithLogger(logger core.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithClock sets the worker clock.
func WithClock(clock core.Clock) Option {
	return func(w *Worker) {
		if clock != nil {
			w.clock = clock
		}
	}
}

// WithQueueSize bounds the number of pending requests.
func WithQueueSize(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.queueSize = n
		}
	}
}

// WithIDGenerator replaces the uuid generator.
func WithIDGenerator(fn func() string) Option {
	return func(w *Worker) {
		if fn != nil {
			w.newID = fn
		}
	}
}

// WithKeyPrefix sets the blob key prefix (default "exports").
func WithKeyPrefix(prefix string) Option {
	return func(w *Worker) { w.prefix = prefix }
}

// Worker executes exports on a single background goroutine.
type Worker struct {
	source    Source
	store     blob.Store
	logger    core.Logger
	clock     core.Clock
	newID     func() string
	prefix    string
	queueSize int

	queue chan string
	mu    sync.RWMutex
	jobs  map[string]*job
	order []string

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
	stopped bool
}

// NewWorker constructs a worker; call Start to begin processing.
func NewWorker(source Source, store blob.Store, opts ...Option) *Worker {
	w := &Worker{
		source:    source,
		store:     store,
		logger:    nopLogger{},
		clock:     core.ClockFunc(func() time.Time { return time.Now().UTC() }),
		newID:     func() string { return uuid.NewString() },
		prefix:    "exports",
		queueSize: 32,
		jobs:      make(map[string]*job),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.queue = make(chan string, w.queueSize)
	w.ctx, w.cancel = context.WithCancel(context.Background())
	return w
}

// Start launches the processing goroutine. Calling it twice is a no-op.
func (w *Worker) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return
	}
	w.started = true
	w.wg.Add(1)
	go w.loop()
}

// Stop cancels in-flight work and waits for the goroutine to exit.
func (w *Worker) Stop(ctx context.Context) error {
	w.mu.Lock()
	w.stopped = true
	w.cancel()
	w.mu.Unlock()
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			w.drain()
			return
		case id := <-w.queue:
			w.process(id)
		}
	}
}

// drain fails requests still queued at shutdown.
func (w *Worker) drain() {
	for {
		select {
		case id := <-w.queue:
			w.finish(id, nil, 0, 0, ErrStopped)
		default:
			return
		}
	}
}

// Enqueue validates req and queues it.
func (w *Worker) Enqueue(_ context.Context, req Request) (Record, error) {
	kind, ok := domain.ParseEntityType(string(req.Kind))
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", core.ErrUnknownKind, req.Kind)
	}
	formats := req.Formats
	if len(formats) == 0 {
		formats = []Format{FormatCSV}
	}
	unique := make([]Format, 0, len(formats))
	for _, f := range formats {
		parsed, err := ParseFormat(string(f))
		if err != nil {
			return Record{}, err
		}
		if !slices.Contains(unique, parsed) {
			unique = append(unique, parsed)
		}
	}

	now := w.clock.Now()
	rec := Record{
		ID:          w.newID(),
		Kind:        kind,
		Query:       req.Query,
		Fields:      slices.Clone(req.Fields),
		Formats:     unique,
		Status:      StatusQueued,
		RequestedBy: req.RequestedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return Record{}, ErrStopped
	}
	if _, exists := w.jobs[rec.ID]; exists {
		w.mu.Unlock()
		return Record{}, fmt.Errorf("duplicate export id %s", rec.ID)
	}
	select {
	case w.queue <- rec.ID:
	default:
		w.mu.Unlock()
		return Record{}, ErrQueueFull
	}
	w.jobs[rec.ID] = &job{record: rec, done: make(chan struct{})}
	w.order = append(w.order, rec.ID)
	w.mu.Unlock()

	w.logger.Info("export queued", "id", rec.ID, "kind", kind, "formats", len(unique), "requestedBy", req.RequestedBy)
	return rec.clone(), nil
}

// Get returns a copy of the export record.
func (w *Worker) Get(id string) (Record, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	j, ok := w.jobs[id]
	if !ok {
		return Record{}, false
	}
	return j.record.clone(), true
}

// List returns every export in request order.
func (w *Worker) List() []Record {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]Record, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.jobs[id].record.clone())
	}
	return out
}

// Wait blocks until export id completes or ctx is done.
func (w *Worker) Wait(ctx context.Context, id string) (Record, error) {
	w.mu.RLock()
	j, ok := w.jobs[id]
	w.mu.RUnlock()
	if !ok {
		return Record{}, fmt.Errorf("export %s not found", id)
	}
	select {
	case <-j.done:
		rec, _ := w.Get(id)
		return rec, nil
	case <-ctx.Done():
		return Record{}, ctx.Err()
	}
}

// Download opens the artifact of export id in format.
func (w *Worker) Download(ctx context.Context, id string, format Format) (Artifact, []byte, error) {
	rec, ok := w.Get(id)
	if !ok {
		return Artifact{}, nil, fmt.Errorf("export %s not found", id)
	}
	for _, a := range rec.Artifacts {
		if a.Format != format {
			continue
		}
		_, rc, err := w.store.Get(ctx, a.Key)
		if err != nil {
			return Artifact{}, nil, err
		}
		defer func() { _ = rc.Close() }()
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(rc); err != nil {
			return Artifact{}, nil, err
		}
		return a, buf.Bytes(), nil
	}
	return Artifact{}, nil, fmt.Errorf("export %s has no %s artifact", id, format)
}

func (w *Worker) process(id string) {
	rec, ok := w.setRunning(id)
	if !ok {
		return
	}
	started := w.clock.Now()
	listing, err := w.source.List(w.ctx, rec.Kind, rec.Query, rec.Fields...)
	if err != nil {
		w.finish(id, nil, 0, 0, fmt.Errorf("list %s: %w", rec.Kind, err))
		return
	}
	artifacts := make([]Artifact, 0, len(rec.Formats))
	for _, format := range rec.Formats {
		a, err := w.storeArtifact(rec, format, listing)
		if err != nil {
			w.finish(id, artifacts, listing.Matched, listing.Revision, err)
			return
		}
		artifacts = append(artifacts, a)
	}
	w.finish(id, artifacts, listing.Matched, listing.Revision, nil)
	w.logger.Debug("export rendered", "id", id, "rows", listing.Matched, "duration", w.clock.Now().Sub(started))
}

func (w *Worker) storeArtifact(rec Record, format Format, listing core.Listing) (Artifact, error) {
	payload, err := Render(format, listing)
	if err != nil {
		return Artifact{}, fmt.Errorf("render %s: %w", format, err)
	}
	key := path.Join(w.prefix, rec.ID, fmt.Sprintf("%s.%s", rec.Kind, format))
	info, err := w.store.Put(w.ctx, key, bytes.NewReader(payload), blob.PutOptions{
		ContentType: format.ContentType(),
		Metadata:    map[string]string{"export-id": rec.ID, "kind": string(rec.Kind)},
	})
	if err != nil {
		return Artifact{}, fmt.Errorf("store %s: %w", key, err)
	}
	a := Artifact{
		Key:         key,
		Format:      format,
		ContentType: format.ContentType(),
		SizeBytes:   info.Size,
		ETag:        info.ETag,
		CreatedAt:   w.clock.Now(),
	}
	if url, err := w.store.PresignURL(w.ctx, key, blob.SignedURLOptions{}); err == nil {
		a.URL = url
	}
	return a, nil
}

func (w *Worker) setRunning(id string) (Record, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	j, ok := w.jobs[id]
	if !ok {
		return Record{}, false
	}
	j.record.Status = StatusRunning
	j.record.UpdatedAt = w.clock.Now()
	return j.record.clone(), true
}

func (w *Worker) finish(id string, artifacts []Artifact, matched int, revision uint64, err error) {
	now := w.clock.Now()
	w.mu.Lock()
	j, ok := w.jobs[id]
	if !ok {
		w.mu.Unlock()
		return
	}
	j.record.Artifacts = artifacts
	j.record.Matched = matched
	j.record.Revision = revision
	j.record.UpdatedAt = now
	j.record.CompletedAt = &now
	if err != nil {
		j.record.Status = StatusFailed
		j.record.Error = err.Error()
	} else {
		j.record.Status = StatusSucceeded
	}
	close(j.done)
	w.mu.Unlock()

	if err != nil {
		w.logger.Error("export failed", "id", id, "error", err)
		return
	}
	w.logger.Info("export completed", "id", id, "artifacts", len(artifacts))
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
