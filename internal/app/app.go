package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	bvcore "github.com/jaskrrish/Go-BV/internal/bv"
	"github.com/jaskrrish/Go-BV/internal/bv/quantum"
	"github.com/jaskrrish/Go-BV/internal/config"
	"github.com/jaskrrish/Go-BV/internal/handlers"
	"github.com/jaskrrish/Go-BV/internal/scheduler"
	"github.com/jaskrrish/Go-BV/internal/server"
	"github.com/jaskrrish/Go-BV/internal/store"
	"github.com/rs/zerolog"
)

// App wires the backend, experiment manager, persistence and HTTP server
type App struct {
	cfg       *config.Config
	log       zerolog.Logger
	backend   quantum.QuantumBackend
	manager   *bvcore.ExperimentManager
	store     *store.Store
	scheduler *scheduler.Scheduler
	server    *server.Server
}

// New builds every component described by cfg
func New(cfg *config.Config, log zerolog.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}

	backend, err := NewBackend(cfg)
	if err != nil {
		return nil, err
	}
	a.backend = backend

	profiles := make(map[string]*quantum.NoiseModel)
	if cfg.NoiseProfilesPath != "" {
		profiles, err = quantum.LoadNoiseProfiles(cfg.NoiseProfilesPath)
		if err != nil {
			return nil, fmt.Errorf("load noise profiles: %w", err)
		}
		log.Info().Int("profiles", len(profiles)).Str("path", cfg.NoiseProfilesPath).Msg("Noise profiles loaded")
	}

	opts := bvcore.ManagerOptions{
		MaxQubits:          cfg.MaxQubits,
		DefaultShots:       cfg.DefaultShots,
		NoiseProfiles:      profiles,
		MaxNoisyAmplitudes: int64(cfg.MaxNoisyAmplitudes),
		Logger:             log,
	}

	if cfg.PersistenceEnabled() {
		st, err := store.New(cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		a.store = st
		opts.Store = st
		log.Info().Str("path", st.Path()).Msg("Run persistence enabled")
	}

	a.manager = bvcore.NewExperimentManager(bvcore.NewEvaluator(backend, log), opts)

	a.scheduler = scheduler.New(log)
	var purger scheduler.Purger
	if a.store != nil {
		purger = a.store
	}
	retention := scheduler.NewRetentionJob(a.manager, purger, time.Duration(cfg.RetentionHours)*time.Hour, log)
	if err := a.scheduler.AddJob(cfg.CleanupSchedule, retention); err != nil {
		a.Close()
		return nil, fmt.Errorf("register retention job: %w", err)
	}

	a.server = server.New(server.Config{
		Port:    cfg.Port,
		Log:     log,
		BV:      handlers.NewBVHandler(a.manager),
		DevMode: cfg.DevMode,
	})

	return a, nil
}

// NewBackend returns the quantum backend selected by cfg.Backend
func NewBackend(cfg *config.Config) (quantum.QuantumBackend, error) {
	switch cfg.Backend {
	case config.BackendSimulator:
		return quantum.NewSimulatorBackend(cfg.SimSeed).WithMaxQubits(cfg.MaxQubits), nil
	case config.BackendQiskit:
		client, err := quantum.NewQiskitClient(&quantum.QiskitConfig{
			APIKey:      cfg.QiskitAPIKey,
			BaseURL:     cfg.QiskitBaseURL,
			BackendName: cfg.QiskitBackend,
		})
		if err != nil {
			return nil, fmt.Errorf("create qiskit client: %w", err)
		}
		return quantum.NewQiskitBackend(client, cfg.QiskitBackend, 0), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// Manager returns the experiment manager
func (a *App) Manager() *bvcore.ExperimentManager {
	return a.manager
}

// Handler returns the HTTP router
func (a *App) Handler() http.Handler {
	return a.server.Handler()
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully
func (a *App) Run(ctx context.Context) error {
	a.scheduler.Start()
	defer a.scheduler.Stop()

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	a.log.Info().
		Int("port", a.cfg.Port).
		Str("backend", a.backend.Name()).
		Msg("Server started successfully")

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.log.Error().Err(err).Msg("Server forced to shutdown")
		return err
	}

	a.log.Info().Msg("Server stopped")
	return nil
}

// Close releases the store, if one is open
func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}
