// Package actionlog records committed canvas changes and drives autosave.
package actionlog

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"brain2-canvas/application/ports"
	"brain2-canvas/domain/config"
	"brain2-canvas/domain/core/aggregates"
	"brain2-canvas/domain/core/valueobjects"
	"brain2-canvas/domain/events"
	pkgerrors "brain2-canvas/pkg/errors"
)

// autosaveKinds are the actions that make the project dirty
var autosaveKinds = map[events.ActionName]bool{
	events.ActionCreateNode: true,
	events.ActionUpdateNode: true,
	events.ActionDeleteNode: true,
	events.ActionCreateLink: true,
	events.ActionUpdateLink: true,
	events.ActionDeleteLink: true,
	events.ActionMove:       true,
}

// IsAutosaveKind reports whether an action name is on the autosave allow-list
func IsAutosaveKind(name events.ActionName) bool {
	return autosaveKinds[name]
}

// SaveRunner executes a save off the event loop
type SaveRunner func(func())

// GoRunner runs every save on its own goroutine
func GoRunner(f func()) { go f() }

// SyncRunner runs saves inline; used in tests and by the replay CLI
func SyncRunner(f func()) { f() }

// SnapshotFunc captures the project state to persist
type SnapshotFunc func() aggregates.GraphSnapshot

// Metrics receives log and save outcomes
type Metrics interface {
	ActionRecorded(name string, merged bool)
	SaveCompleted(operation string, err error, duration time.Duration)
}

type nopMetrics struct{}

func (nopMetrics) ActionRecorded(string, bool)                {}
func (nopMetrics) SaveCompleted(string, error, time.Duration) {}

// SaveStatus is the "saved" indicator shown to the user
type SaveStatus struct {
	Dirty     bool      `json:"dirty"`
	Saving    int       `json:"saving"`
	LastSaved time.Time `json:"lastSaved,omitempty"`
	LastError string    `json:"lastError,omitempty"`
}

// Log is the append-only change/action log of one canvas.
// Append is called from the event loop only; save callbacks run on the
// SaveRunner and touch nothing but the mutex-guarded status.
type Log struct {
	persistence ports.Persistence
	snapshot    SnapshotFunc
	config      *config.Holder
	runner      SaveRunner
	clock       ports.Clock
	metrics     Metrics
	logger      *zap.Logger
	timeout     time.Duration

	entries     []events.Action
	open        *events.Action
	openRuns    int
	openStarted time.Time

	// revision counts dirtying changes; a save clears the dirty flag only if
	// nothing happened after its snapshot was taken
	mu            sync.Mutex
	status        SaveStatus
	revision      uint64
	savedRevision uint64
	inflight      sync.WaitGroup
}

// Option configures a Log
type Option func(*Log)

// WithRunner replaces the goroutine save runner
func WithRunner(r SaveRunner) Option {
	return func(l *Log) { l.runner = r }
}

// WithClock replaces the wall clock
func WithClock(c ports.Clock) Option {
	return func(l *Log) { l.clock = c }
}

// WithMetrics attaches a metrics sink
func WithMetrics(m Metrics) Option {
	return func(l *Log) { l.metrics = m }
}

// WithRevision continues the revision count of a loaded project, so its
// next save is newer than the stored one
func WithRevision(revision uint64) Option {
	return func(l *Log) {
		l.revision = revision
		l.savedRevision = revision
	}
}

// WithSaveTimeout bounds each background save
func WithSaveTimeout(d time.Duration) Option {
	return func(l *Log) { l.timeout = d }
}

// New creates an action log
func New(persistence ports.Persistence, snapshot SnapshotFunc, cfg *config.Holder, logger *zap.Logger, opts ...Option) *Log {
	if persistence == nil {
		persistence = ports.NopPersistence{}
	}
	if cfg == nil {
		cfg = config.NewHolder(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Log{
		persistence: persistence,
		snapshot:    snapshot,
		config:      cfg,
		runner:      GoRunner,
		clock:       ports.SystemClock{},
		metrics:     nopMetrics{},
		logger:      logger,
		timeout:     10 * time.Second,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record builds an action stamped with a fresh id and the current time and
// appends it.
func (l *Log) Record(name events.ActionName, nodes []valueobjects.NodeID, extra map[string]interface{}, links ...valueobjects.LinkID) events.Action {
	action := events.NewAction(uuid.New().String(), l.clock.Now(), name, nodes, extra)
	if len(links) > 0 {
		action = action.WithLinks(links...)
	}
	l.Append(action)
	return action
}

// Append adds an action. Consecutive pan (or zoom) actions merge into the
// open run; any other action first closes that run. Persistence failures are
// logged and leave the project dirty; they are never returned.
func (l *Log) Append(action events.Action) {
	if action.Name.IsViewChange() {
		if l.open != nil && l.open.Name == action.Name {
			l.mergeIntoRun(action)
			l.metrics.ActionRecorded(string(action.Name), true)
			return
		}
		l.closeRun()
		run := action.WithExtra("count", 1)
		l.open = &run
		l.openRuns = 1
		l.openStarted = action.Time
		l.metrics.ActionRecorded(string(action.Name), false)
		l.logger.Debug("view change run opened", zap.String("action", string(action.Name)))
		return
	}

	l.closeRun()
	l.entries = append(l.entries, action)
	l.metrics.ActionRecorded(string(action.Name), false)
	l.logger.Debug("action recorded",
		zap.String("action", string(action.Name)),
		zap.Int("nodes", len(action.NodeRefs)),
		zap.Int("links", len(action.LinkRefs)))

	l.saveAction(action)
	l.applyAutosavePolicy(action.Name)
}

// mergeIntoRun folds a view change into the open run. The run keeps its id,
// records its start time in extraInfo and takes the latest time and extras.
func (l *Log) mergeIntoRun(action events.Action) {
	l.openRuns++
	merged := *l.open
	merged.Time = action.Time
	merged.NodeRefs = action.NodeRefs
	merged.ExtraInfo = nil
	for k, v := range action.ExtraInfo {
		merged = merged.WithExtra(k, v)
	}
	merged = merged.WithExtra("count", l.openRuns).WithExtra("startedAt", l.openStarted)
	l.open = &merged
}

// closeRun commits the open pan/zoom run and hands its summary to the sink
func (l *Log) closeRun() {
	if l.open == nil {
		return
	}
	summary := *l.open
	l.open = nil
	l.openRuns = 0
	l.entries = append(l.entries, summary)
	l.saveAction(summary)
	l.applyAutosavePolicy(summary.Name)
}

// Flush closes any open pan/zoom run
func (l *Log) Flush() {
	l.closeRun()
}

// Actions returns committed actions followed by the open run, if any
func (l *Log) Actions() []events.Action {
	out := make([]events.Action, 0, len(l.entries)+1)
	out = append(out, l.entries...)
	if l.open != nil {
		out = append(out, *l.open)
	}
	return out
}

// Len returns the number of logged actions including the open run
func (l *Log) Len() int {
	n := len(l.entries)
	if l.open != nil {
		n++
	}
	return n
}

// Last returns the most recent action
func (l *Log) Last() (events.Action, bool) {
	if l.open != nil {
		return *l.open, true
	}
	if len(l.entries) == 0 {
		return events.Action{}, false
	}
	return l.entries[len(l.entries)-1], true
}

func (l *Log) applyAutosavePolicy(name events.ActionName) {
	if !IsAutosaveKind(name) {
		return
	}
	l.markDirty()
	if !l.config.Load().AutoSave {
		return
	}
	l.saveProjectAsync(true)
}

func (l *Log) markDirty() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.revision++
	l.status.Dirty = true
}

func (l *Log) saveAction(action events.Action) {
	l.inflight.Add(1)
	l.runner(func() {
		defer l.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
		defer cancel()

		start := time.Now()
		err := l.persistence.SaveAction(ctx, action)
		l.metrics.SaveCompleted("save_action", err, time.Since(start))
		if err != nil {
			l.logger.Error("failed to save action",
				zap.String("action", string(action.Name)),
				zap.String("action_id", action.ID),
				zap.Error(err))
			l.recordFailure(err)
		}
	})
}

func (l *Log) saveProjectAsync(quiet bool) {
	if l.snapshot == nil {
		return
	}
	snap := l.beginSave()

	l.inflight.Add(1)
	l.runner(func() {
		defer l.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
		defer cancel()
		_ = l.saveProject(ctx, snap, quiet)
	})
}

// Save is the user-triggered save. It runs synchronously and returns the
// persistence error, if any.
func (l *Log) Save(ctx context.Context) error {
	l.closeRun()
	if l.snapshot == nil {
		return pkgerrors.NewPersistenceError("save_project", pkgerrors.NewInternalError("no snapshot source configured"))
	}
	return l.saveProject(ctx, l.beginSave(), false)
}

// beginSave captures the project stamped with the revision it includes
func (l *Log) beginSave() aggregates.GraphSnapshot {
	snap := l.snapshot()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.status.Saving++
	snap.Revision = l.revision
	return snap
}

// Revision returns the number of dirtying changes made so far
func (l *Log) Revision() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.revision
}

func (l *Log) saveProject(ctx context.Context, snap aggregates.GraphSnapshot, quiet bool) error {
	start := time.Now()
	err := l.persistence.SaveProject(ctx, snap, quiet)
	l.metrics.SaveCompleted("save_project", err, time.Since(start))

	l.mu.Lock()
	defer l.mu.Unlock()
	l.status.Saving--
	if pkgerrors.IsConflict(err) {
		// a newer snapshot is already stored; dirty stays as the newer save left it
		l.logger.Warn("project save superseded",
			zap.String("project", snap.ID),
			zap.Uint64("revision", snap.Revision),
			zap.Error(err))
		return err
	}
	if err != nil {
		l.status.Dirty = true
		l.status.LastError = err.Error()
		l.logger.Error("failed to save project",
			zap.String("project", snap.ID),
			zap.Bool("quiet", quiet),
			zap.Error(err))
		if pkgerrors.IsPersistence(err) {
			return err
		}
		return pkgerrors.NewPersistenceError("save_project", err)
	}

	if snap.Revision > l.savedRevision {
		l.savedRevision = snap.Revision
	}
	if l.savedRevision >= l.revision {
		l.status.Dirty = false
	}
	l.status.LastError = ""
	l.status.LastSaved = l.clock.Now()
	l.logger.Debug("project saved", zap.String("project", snap.ID), zap.Bool("quiet", quiet))
	return nil
}

func (l *Log) recordFailure(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.status.Dirty = true
	l.status.LastError = err.Error()
}

// Status returns the current save indicator
func (l *Log) Status() SaveStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

// Wait blocks until every background save has finished
func (l *Log) Wait() {
	l.inflight.Wait()
}
