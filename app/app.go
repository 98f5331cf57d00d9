package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/voxnote/credential"
	"github.com/kbukum/voxnote/logger"
	"github.com/kbukum/voxnote/observability"
	"github.com/kbukum/voxnote/pipeline"
	"github.com/kbukum/voxnote/recovery"
	"github.com/kbukum/voxnote/refinement"
	"github.com/kbukum/voxnote/server"
	"github.com/kbukum/voxnote/storage"
	"github.com/kbukum/voxnote/transcription/openai"

	// Storage backends register themselves with storage.New.
	_ "github.com/kbukum/voxnote/storage/local"
	_ "github.com/kbukum/voxnote/storage/s3"
)

// App holds the wired voxnote services and runs them with a uniform
// lifecycle.
//
// Example:
//
//	cfg, _ := app.Load()
//	a, err := app.New(ctx, cfg)
//	a.RunTask(ctx, func(ctx context.Context) error {
//	    _, err := a.Pipeline.Submit(ctx, req)
//	    return err
//	})
type App struct {
	Name     string
	Version  string
	Cfg      *Config
	Logger   *logger.Logger
	Pipeline *pipeline.Service
	Recovery *recovery.Persister
	Metrics  *observability.Metrics
	Health   []observability.HealthChecker

	gracefulTimeout   time.Duration
	shutdownTelemetry observability.ShutdownFunc

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// New applies defaults, validates cfg and builds every service: telemetry,
// credentials, recovery storage, both provider clients and the pipeline.
func New(ctx context.Context, cfg *Config, opts ...Option) (*App, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	o := resolveOptions(opts)
	a := &App{
		Name:            cfg.Name,
		Version:         cfg.Version,
		Cfg:             cfg,
		gracefulTimeout: o.grace,
	}
	if o.log != nil {
		a.Logger = o.log
	} else {
		logger.Init(cfg.Logging)
		a.Logger = logger.GetGlobalLogger()
	}

	shutdown, err := observability.Setup(ctx, cfg.Telemetry, observability.Resource{
		Name:        cfg.Name,
		Version:     cfg.Version,
		Environment: cfg.Environment,
	}, a.Logger)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}
	a.shutdownTelemetry = shutdown

	a.Metrics, err = observability.NewMetrics(observability.Meter(observability.InstrumentationName))
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	creds := o.creds
	if creds == nil {
		creds = Credentials(cfg.Credentials)
	}

	store, err := storage.New(cfg.Recovery.Config, a.Logger)
	if err != nil {
		return nil, fmt.Errorf("recovery storage: %w", err)
	}
	a.Recovery = recovery.New(store,
		recovery.WithDirectory(cfg.Recovery.Directory),
		recovery.WithLogger(a.Logger),
	)

	transcriber, providerName := o.transcriber, "custom"
	if transcriber == nil {
		providerName = openai.ProviderName
		p, err := openai.NewProvider(cfg.Transcription, creds, a.Logger)
		if err != nil {
			return nil, fmt.Errorf("transcription: %w", err)
		}
		transcriber = p
	}

	refiner, err := refinement.NewFromConfig(cfg.Refinement, creds, a.Logger)
	if err != nil {
		return nil, fmt.Errorf("refinement: %w", err)
	}

	a.Pipeline, err = pipeline.New(pipeline.Options{
		Transcriber:  transcriber,
		Refiner:      refiner,
		Recovery:     a.Recovery,
		Model:        cfg.Transcription.Model,
		Prompt:       cfg.Transcription.Prompt,
		ProviderName: providerName,
		Logger:       a.Logger,
		Metrics:      a.Metrics,
	})
	if err != nil {
		return nil, err
	}

	a.Health = []observability.HealthChecker{
		credentialCheck(creds, cfg.Credentials.Env),
		recoveryCheck(a.Recovery),
	}
	return a, nil
}

// Credentials builds the provider described by cfg: the environment
// variable, then the configured key.
func Credentials(cfg CredentialsConfig) credential.Provider {
	if cfg.APIKey == "" {
		return credential.Env(cfg.Env)
	}
	return credential.Chain(credential.Env(cfg.Env), credential.Static(cfg.APIKey))
}

// NewServer builds the HTTP server with every route mounted.
func (a *App) NewServer() *server.Server {
	srv := server.New(a.Cfg.Server, a.Logger)
	srv.RegisterDefaultEndpoints(a.Name, a.Health...)
	srv.RegisterHandlers(server.NewHandlers(a.Pipeline, a.Recovery, a.Cfg.Server.TempDir, a.Logger))
	return srv
}

// ReadyCheck reports the first component that is not up.
func (a *App) ReadyCheck(ctx context.Context) error {
	sh := observability.Check(ctx, a.Name, a.Version, a.Health...)
	var unhealthy []string
	for _, h := range sh.Components {
		if h.Status != observability.HealthStatusUp {
			detail := h.Name + "=" + string(h.Status)
			if h.Message != "" {
				detail += "(" + h.Message + ")"
			}
			unhealthy = append(unhealthy, detail)
		}
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %v", unhealthy)
	}
	return nil
}

// Serve starts the HTTP server and blocks until a shutdown signal or ctx
// cancellation, then shuts down gracefully.
func (a *App) Serve(ctx context.Context) error {
	srv := a.NewServer()
	a.OnStop(srv.Stop)
	if err := a.startup(ctx); err != nil {
		return err
	}
	if err := srv.Start(ctx); err != nil {
		_ = a.stop()
		return err
	}

	a.Logger.Info("Application ready, waiting for shutdown signal", logger.Fields("addr", srv.Addr()))
	a.WaitForSignal(ctx)

	return a.stop()
}

// RunTask executes a finite task with the same lifecycle as Serve. The task
// context is cancelled on SIGINT or SIGTERM.
func (a *App) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		return err
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			a.Logger.Info("Received signal, canceling task", map[string]interface{}{
				"signal": sig.String(),
			})
			cancel()
		case <-taskCtx.Done():
		}
	}()

	taskErr := task(taskCtx)

	if stopErr := a.stop(); stopErr != nil && taskErr == nil {
		return stopErr
	}
	return taskErr
}

func (a *App) startup(ctx context.Context) error {
	start := time.Now()
	a.Logger.Debug("Starting application", logger.Fields("name", a.Name, "version", a.Version))

	if err := runHooks(ctx, "start", a.onStart); err != nil {
		return err
	}

	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("Ready check reported issues", logger.ErrorFields("ready_check", err))
	}

	if err := runHooks(ctx, "ready", a.onReady); err != nil {
		return err
	}

	a.Logger.Debug("Application started", logger.Fields(
		"recovery", a.Recovery.Directory(),
		"storage", a.Cfg.Recovery.Provider,
		"telemetry", a.Cfg.Telemetry.Enabled(),
		logger.FieldDuration, time.Since(start).Milliseconds(),
	))
	return nil
}

// WaitForSignal blocks until an OS interrupt/term signal or context cancellation.
func (a *App) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("Received shutdown signal, graceful shutdown starting", map[string]interface{}{
			"signal": sig.String(),
		})
		return sig
	case <-ctx.Done():
		a.Logger.Info("Context canceled, shutting down")
		return nil
	}
}

// Shutdown runs the stop hooks and flushes telemetry. Use when managing
// your own lifecycle.
func (a *App) Shutdown() error {
	return a.stop()
}

func (a *App) stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var shutdownErr error
	if err := runStopHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("OnStop hook error", logger.ErrorFields("shutdown", err))
		shutdownErr = err
	}
	if a.shutdownTelemetry != nil {
		if err := a.shutdownTelemetry(ctx); err != nil {
			a.Logger.Error("Telemetry shutdown error", logger.ErrorFields("shutdown", err))
			if shutdownErr == nil {
				shutdownErr = err
			}
		}
	}

	a.Logger.Debug("Application shutdown complete")
	return shutdownErr
}
