package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	domainconfig "brain2-canvas/domain/config"
)

const debounceDuration = 100 * time.Millisecond

// Watcher reloads the interaction config file when it changes and pushes the
// new values to its listeners. An invalid file is logged and ignored; the
// last good config stays in effect.
type Watcher struct {
	path        string
	environment string
	watcher     *fsnotify.Watcher
	logger      *zap.Logger

	mu       sync.RWMutex
	current  *domainconfig.InteractionConfig
	onChange []func(*domainconfig.InteractionConfig)

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewWatcher loads the file once and prepares to watch it
func NewWatcher(environment, path string, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg, err := LoadInteractionConfig(environment, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load initial config: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch the directory so atomic saves (write temp, rename) are seen
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch config directory: %w", err)
	}

	return &Watcher{
		path:        path,
		environment: environment,
		watcher:     watcher,
		logger:      logger,
		current:     cfg,
		stopCh:      make(chan struct{}),
	}, nil
}

// Start begins watching for configuration changes
func (w *Watcher) Start() {
	go w.watchLoop()
	w.logger.Info("Interaction config watcher started", zap.String("path", w.path))
}

// Stop stops watching; it is safe to call more than once
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.watcher.Close()
		w.logger.Info("Interaction config watcher stopped")
	})
}

// OnChange registers a callback for configuration changes
func (w *Watcher) OnChange(handler func(*domainconfig.InteractionConfig)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, handler)
}

// Current returns the last successfully loaded config
func (w *Watcher) Current() *domainconfig.InteractionConfig {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current.Clone()
}

func (w *Watcher) watchLoop() {
	var debounceTimer *time.Timer

	for {
		select {
		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDuration, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))
		}
	}
}

// reload reads the file again and notifies listeners on success
func (w *Watcher) reload() {
	cfg, err := LoadInteractionConfig(w.environment, w.path)
	if err != nil {
		w.logger.Error("Invalid interaction config, keeping current",
			zap.String("path", w.path),
			zap.Error(err))
		return
	}

	w.mu.Lock()
	old := w.current
	w.current = cfg
	handlers := append([]func(*domainconfig.InteractionConfig){}, w.onChange...)
	w.mu.Unlock()

	if changes := diff(old, cfg); len(changes) > 0 {
		w.logger.Info("Interaction config reloaded", zap.Strings("changes", changes))
	}
	for _, handler := range handlers {
		handler(cfg.Clone())
	}
}

func diff(old, cur *domainconfig.InteractionConfig) []string {
	var changes []string
	add := func(name string, a, b interface{}) {
		if a != b {
			changes = append(changes, fmt.Sprintf("%s: %v -> %v", name, a, b))
		}
	}
	add("discrete_pan_factor", old.DiscretePanFactor, cur.DiscretePanFactor)
	add("continuous_pan_factor", old.ContinuousPanFactor, cur.ContinuousPanFactor)
	add("discrete_zoom_factor", old.DiscreteZoomFactor, cur.DiscreteZoomFactor)
	add("continuous_zoom_factor", old.ContinuousZoomFactor, cur.ContinuousZoomFactor)
	add("nudge_fraction", old.NudgeFraction, cur.NudgeFraction)
	add("merge_radius", old.MergeRadius, cur.MergeRadius)
	add("node_radius", old.NodeRadius, cur.NodeRadius)
	add("click_tolerance", old.ClickTolerance, cur.ClickTolerance)
	add("link_modifier", old.LinkModifier, cur.LinkModifier)
	add("pan_modifier", old.PanModifier, cur.PanModifier)
	add("additive_modifier", old.AdditiveModifier, cur.AdditiveModifier)
	add("auto_save", old.AutoSave, cur.AutoSave)
	add("log_rectangle_selection", old.LogRectangleSelection, cur.LogRectangleSelection)
	add("confirm_merge_delete", old.ConfirmMergeDelete, cur.ConfirmMergeDelete)
	return changes
}
