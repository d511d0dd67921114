// Package daemon assembles the long-running lookout process: the watch
// pipeline, the session registry, the state store, and the API server over a
// unix socket.
package daemon

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/grovetools/lookout/config"
	"github.com/grovetools/lookout/git"
	"github.com/grovetools/lookout/internal/daemon/pidfile"
	"github.com/grovetools/lookout/internal/daemon/server"
	"github.com/grovetools/lookout/internal/daemon/store"
	"github.com/grovetools/lookout/logging"
	"github.com/grovetools/lookout/session"
	"github.com/grovetools/lookout/state"
	"github.com/grovetools/lookout/watch"
	"github.com/sirupsen/logrus"
)

// StateDirName is the daemon's state directory under the main root.
const StateDirName = ".lookout"

// Daemon owns the assembled pipeline for one main workspace root.
type Daemon struct {
	mainRoot   string
	cfg        *config.Config
	configFile string

	provider *git.CLIProvider
	engine   *watch.Engine
	manager  *session.Manager
	store    *store.Store
	server   *server.Server

	logger *logrus.Entry
}

// New assembles a daemon for the given main root. cfg and configFile come
// from config discovery; configFile may be empty when no file was found.
func New(mainRoot string, cfg *config.Config, configFile string) *Daemon {
	provider := git.NewCLIProvider()
	manager := session.NewManager(mainRoot)
	st := store.New()

	logger := logging.NewLogger("daemon")

	engine := watch.NewEngine(watch.EngineConfig{
		Config:   cfg,
		Provider: provider,
		Diff:     provider,
		Sessions: manager.SessionsFor,
		OnEvent: func(evt watch.Event) {
			st.NotifyFileChange(store.FileChange{
				Root: evt.Root,
				Path: evt.RelPath,
				Kind: string(evt.Kind),
				At:   evt.At,
			})
		},
		OnCommit: func(root, commit string, dirty int) {
			st.NotifyCommit(store.CommitNotice{Root: root, Commit: commit, Dirty: dirty})
			if err := state.Update(root, "last_commit", commit); err != nil {
				logger.WithError(err).Debugf("Failed to persist state for %s", root)
			}
		},
	})
	manager.OnPatternsChanged(func(root string, patterns []string) {
		if err := engine.SetSessionPatterns(root, patterns); err != nil {
			logger.WithError(err).Warnf("Failed to apply patterns for %s", root)
		}
	})

	return &Daemon{
		mainRoot:   mainRoot,
		cfg:        cfg,
		configFile: configFile,
		provider:   provider,
		engine:     engine,
		manager:    manager,
		store:      st,
		server:     server.New(st),
		logger:     logger,
	}
}

// Engine exposes the watch pipeline, mainly for tests and the status command.
func (d *Daemon) Engine() *watch.Engine { return d.engine }

// Sessions exposes the session registry.
func (d *Daemon) Sessions() *session.Manager { return d.manager }

// Store exposes the daemon state store.
func (d *Daemon) Store() *store.Store { return d.store }

// StateDir returns the daemon's state directory for the main root.
func (d *Daemon) StateDir() string {
	return filepath.Join(d.mainRoot, StateDirName)
}

// SocketPath returns the API socket path.
func (d *Daemon) SocketPath() string {
	return filepath.Join(d.StateDir(), "daemon.sock")
}

// PidPath returns the pidfile path.
func (d *Daemon) PidPath() string {
	return filepath.Join(d.StateDir(), "daemon.pid")
}

// Run starts the daemon and blocks until the context is cancelled or a fatal
// error occurs.
func (d *Daemon) Run(ctx context.Context) error {
	if err := os.MkdirAll(d.StateDir(), 0755); err != nil {
		return err
	}
	if err := pidfile.Acquire(d.PidPath()); err != nil {
		return err
	}
	defer pidfile.Release(d.PidPath())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := d.engine.AddRoot(ctx, d.mainRoot); err != nil {
		return err
	}
	defer d.engine.Stop()

	d.store.SetRoots(d.rootModes())
	d.server.SetRunningConfig(&server.RunningConfig{
		DebounceMs:      int(d.cfg.DebounceDelay() / time.Millisecond),
		StatusPollMs:    int(d.cfg.StatusPollInterval() / time.Millisecond),
		IncludePatterns: d.cfg.IncludePatterns,
		StartedAt:       time.Now(),
	})

	if d.configFile != "" {
		watcher, err := NewConfigWatcher(d.configFile, 100*time.Millisecond, d.onConfigReload)
		if err != nil {
			d.logger.WithError(err).Warn("Config watcher unavailable")
		} else {
			go watcher.Start(ctx)
		}
	}

	engineDone := make(chan error, 1)
	go func() { engineDone <- d.engine.Run(ctx) }()

	go d.refreshLoop(ctx)

	serverDone := make(chan error, 1)
	go func() { serverDone <- d.server.ListenAndServe(d.SocketPath()) }()

	select {
	case <-ctx.Done():
	case err := <-serverDone:
		d.logger.WithError(err).Error("Server exited")
		cancel()
	case err := <-engineDone:
		if err != nil && err != context.Canceled {
			d.logger.WithError(err).Error("Pipeline exited")
		}
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return d.server.Shutdown(shutdownCtx)
}

// AttachSession registers a session, adds its worktree root to the watch set
// when dedicated, and seeds its baseline from the current uncommitted files.
func (d *Daemon) AttachSession(ctx context.Context, s *session.Session) error {
	root := d.mainRoot
	if wt := s.WorktreeRoot(); wt != "" {
		root = wt
		if err := d.engine.AddRoot(ctx, wt); err != nil {
			return err
		}
	}

	uncommitted, err := d.provider.ListUncommittedFiles(ctx, root)
	if err != nil {
		d.logger.WithError(err).Warnf("Baseline unavailable for %s", root)
	} else {
		d.manager.SeedBaseline(s, uncommitted)
	}

	d.manager.Register(s)
	d.store.SetRoots(d.rootModes())
	d.publishSessions()
	return nil
}

// DetachSession removes a session. A dedicated worktree root stops being
// watched when its owning session leaves.
func (d *Daemon) DetachSession(id string) {
	s := d.manager.Get(id)
	d.manager.Remove(id)
	if s != nil && s.WorktreeRoot() != "" {
		d.engine.RemoveRoot(s.WorktreeRoot())
	}
	d.store.SetRoots(d.rootModes())
	d.publishSessions()
}

// refreshLoop periodically mirrors pipeline state into the store so
// streaming clients see metrics and session counts move.
func (d *Daemon) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.store.SetMetrics(d.engine.Metrics())
			d.publishSessions()
		}
	}
}

func (d *Daemon) onConfigReload(file string) {
	cfg, err := ReloadConfig(file)
	if err != nil {
		d.logger.WithError(err).Warnf("Config reload failed: %s", filepath.Base(file))
		return
	}
	d.cfg = cfg
	// Include patterns propagate immediately through the filter rebuild;
	// debounce and poll intervals apply to roots added after the reload.
	d.engine.SetConfig(cfg)
	d.store.BroadcastConfigReload(filepath.Base(file))
}

func (d *Daemon) rootModes() map[string]string {
	modes := make(map[string]string)
	for root, mode := range d.engine.Roots() {
		modes[root] = string(mode)
	}
	return modes
}

func (d *Daemon) publishSessions() {
	sessions := d.manager.List()
	infos := make([]*store.SessionInfo, 0, len(sessions))
	for _, s := range sessions {
		infos = append(infos, &store.SessionInfo{
			ID:            s.ID(),
			WorktreeRoot:  s.WorktreeRoot(),
			BaselineCount: len(s.BaselineFiles()),
			TrackedCount:  len(s.SessionFiles()),
			SelectedFile:  s.SelectedFile(),
		})
	}
	d.store.SetSessions(infos)
}
