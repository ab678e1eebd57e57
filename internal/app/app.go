// Package app wires configuration, logging, git integration and the
// project model into one runnable application.
package app

import (
	"context"
	"io"
	"os"
	"sync/atomic"

	"github.com/inkwelldev/inkwell/internal/config"
	"github.com/inkwelldev/inkwell/internal/integration/git"
	"github.com/inkwelldev/inkwell/internal/project"
	"github.com/inkwelldev/inkwell/internal/service"
)

// gitProviderVersion is the version the built-in git repository
// provider is offered at on the service hub.
const gitProviderVersion = "1.0.0"

// Application owns the long-lived pieces: configuration, the logger,
// the git manager, the service hub and the project. New wires them,
// Close tears them down in reverse order.
type Application struct {
	cfg     config.Config
	logger  *Logger
	logFile *os.File

	git     *git.Manager
	hub     *service.Hub
	project *project.Project

	services service.Disposable
	gitOffer service.Disposable

	closed atomic.Bool
}

// Options configures the application.
type Options struct {
	// ConfigPath is the configuration file path. Empty loads defaults
	// plus environment overrides.
	ConfigPath string

	// LogOutput overrides the log destination. When nil, output goes
	// to the configured log file, or stderr.
	LogOutput io.Writer

	// Watch forces file watching on regardless of configuration.
	Watch bool
}

// New builds an application. The project consumes directory and
// repository providers from the service hub, and the built-in git
// provider is offered on it immediately, so roots opened later resolve
// their repositories without further wiring.
func New(opts Options) (*Application, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, &InitError{Component: "config", Err: err}
	}
	if opts.Watch {
		cfg.Watcher.Enabled = true
	}

	app := &Application{cfg: cfg}
	if err := app.initLogger(opts.LogOutput); err != nil {
		return nil, &InitError{Component: "logging", Err: err}
	}

	app.git = git.NewManager(git.ManagerConfig{})
	app.hub = service.NewHub()

	app.gitOffer, err = app.hub.Provide(project.ServiceRepositoryProvider, gitProviderVersion, git.NewProvider(app.git))
	if err != nil {
		_ = app.git.Close()
		app.closeLogFile()
		return nil, &InitError{Component: "git provider", Err: err}
	}

	app.project = project.New(project.WithConfig(cfg))
	app.services, err = app.project.ConsumeServices(app.hub)
	if err != nil {
		app.gitOffer.Dispose()
		_ = app.git.Close()
		app.closeLogFile()
		return nil, &InitError{Component: "services", Err: err}
	}

	return app, nil
}

// initLogger builds the application logger from the logging section of
// the configuration. out, when non-nil, wins over the configured file.
func (app *Application) initLogger(out io.Writer) error {
	lcfg := DefaultLoggerConfig()
	lcfg.Level = ParseLogLevel(app.cfg.Logging.Level)

	switch {
	case out != nil:
		lcfg.Output = out
	case app.cfg.Logging.File != "":
		f, err := os.OpenFile(app.cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		app.logFile = f
		lcfg.Output = f
	}

	app.logger = NewLogger(lcfg)
	SetLogger(app.logger)
	return nil
}

func (app *Application) closeLogFile() {
	if app.logFile != nil {
		_ = app.logFile.Close()
		app.logFile = nil
	}
}

// Open opens the project on the given roots.
func (app *Application) Open(ctx context.Context, roots ...string) error {
	if err := app.project.Open(ctx, roots...); err != nil {
		return err
	}
	app.logger.Info("project open, %d root(s)", len(roots))
	return nil
}

// Close shuts the application down. The project closes first so its
// watcher and buffers are gone before the git manager destroys the
// repositories beneath them. Close is idempotent.
func (app *Application) Close(ctx context.Context) error {
	if app.closed.Swap(true) {
		return nil
	}

	var firstErr error
	if app.project != nil && app.project.IsOpen() {
		if err := app.project.Close(ctx); err != nil {
			firstErr = err
			app.Logger().WithComponent("project").Error("close: %v", err)
		}
	}

	if app.services != nil {
		app.services.Dispose()
	}
	if app.gitOffer != nil {
		app.gitOffer.Dispose()
	}

	if app.git != nil {
		if err := app.git.Close(); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			app.Logger().WithComponent("git").Error("close: %v", err)
		}
	}

	app.closeLogFile()
	return firstErr
}

// Project returns the project model.
func (app *Application) Project() *project.Project {
	return app.project
}

// Git returns the git manager.
func (app *Application) Git() *git.Manager {
	return app.git
}

// Hub returns the service hub. Extensions register their providers
// here.
func (app *Application) Hub() *service.Hub {
	return app.hub
}

// Config returns the effective configuration.
func (app *Application) Config() config.Config {
	return app.cfg
}

// Logger returns the application logger.
func (app *Application) Logger() *Logger {
	if app.logger == nil {
		return GetLogger()
	}
	return app.logger
}
