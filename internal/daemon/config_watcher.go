package daemon

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/grovetools/lookout/config"
	"github.com/grovetools/lookout/logging"
	"github.com/sirupsen/logrus"
)

// ConfigWatcher watches the directory holding the configuration file and
// triggers a debounced reload callback when it changes. Editors replace
// files rather than writing in place, so the parent directory is watched
// instead of the file itself.
type ConfigWatcher struct {
	watcher    *fsnotify.Watcher
	configFile string
	debounce   time.Duration
	mu         sync.Mutex
	lastChange time.Time
	logger     *logrus.Entry
	onReload   func(file string)
}

// NewConfigWatcher creates a watcher for the given configuration file. The
// onReload callback fires with the file path after each debounced change.
func NewConfigWatcher(configFile string, debounce time.Duration, onReload func(string)) (*ConfigWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := watcher.Add(filepath.Dir(configFile)); err != nil {
		watcher.Close()
		return nil, err
	}

	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}

	return &ConfigWatcher{
		watcher:    watcher,
		configFile: configFile,
		debounce:   debounce,
		logger:     logging.NewLogger("config-watcher"),
		onReload:   onReload,
	}, nil
}

// Start begins watching for config changes. It blocks until the context is
// cancelled.
func (w *ConfigWatcher) Start(ctx context.Context) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !w.isConfigFile(event.Name) {
				continue
			}
			w.handleChange(event.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Errorf("Watcher error: %v", err)
		case <-ctx.Done():
			w.watcher.Close()
			return
		}
	}
}

// isConfigFile matches the watched file itself plus sibling spellings, so a
// rename from lookout.yml to lookout.yaml still triggers a reload.
func (w *ConfigWatcher) isConfigFile(name string) bool {
	if name == w.configFile {
		return true
	}
	base := filepath.Base(name)
	return strings.HasPrefix(base, "lookout.") &&
		(strings.HasSuffix(base, ".yml") || strings.HasSuffix(base, ".yaml") || strings.HasSuffix(base, ".toml"))
}

// handleChange processes a config file change with debouncing.
func (w *ConfigWatcher) handleChange(file string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	elapsed := time.Since(w.lastChange)
	if elapsed < w.debounce {
		w.logger.Debugf("Debounced: %s (only %v since last change)", filepath.Base(file), elapsed)
		return
	}
	w.lastChange = time.Now()

	w.logger.Infof("Config changed: %s", filepath.Base(file))
	if w.onReload != nil {
		w.onReload(file)
	}
}

// Close stops the watcher and releases resources.
func (w *ConfigWatcher) Close() error {
	return w.watcher.Close()
}

// ReloadConfig re-reads the configuration file from disk.
func ReloadConfig(file string) (*config.Config, error) {
	return config.Load(file)
}
