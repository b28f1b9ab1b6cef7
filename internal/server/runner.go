// Package server turns the simulation into a long-lived process: it
// owns signal handling and the ordered teardown of tick delivery and
// the final profile save.
package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Simulation is the game loop as seen by the process runner.
type Simulation interface {
	// Run starts tick delivery and blocks until ctx is cancelled or the
	// loop fails. The runner cancels ctx when shutdown begins.
	Run(ctx context.Context) error
	// Shutdown stops tick delivery and flushes pending state. ctx
	// carries the grace deadline.
	Shutdown(ctx context.Context) error
}

// SimulationFuncs adapts a run/shutdown function pair into Simulation.
type SimulationFuncs struct {
	RunFn      func(context.Context) error
	ShutdownFn func(context.Context) error
}

// Run calls the underlying run function.
func (s SimulationFuncs) Run(ctx context.Context) error { return s.RunFn(ctx) }

// Shutdown calls the underlying shutdown function.
func (s SimulationFuncs) Shutdown(ctx context.Context) error { return s.ShutdownFn(ctx) }

// Runner drives a Simulation until SIGINT or SIGTERM arrives, then
// shuts it down within a fixed grace period.
type Runner struct {
	sim    Simulation
	grace  time.Duration
	logger *zap.Logger
}

// NewRunner creates a runner for sim.
//
// Precondition: sim and logger must be non-nil; grace must be positive.
func NewRunner(sim Simulation, grace time.Duration, logger *zap.Logger) *Runner {
	return &Runner{sim: sim, grace: grace, logger: logger}
}

// Run blocks until the simulation exits, the context is cancelled, or a
// termination signal is received.
//
// Postcondition: the simulation has fully shut down when this returns.
// The returned error is the first failure observed, run or shutdown.
func (r *Runner) Run(ctx context.Context) error {
	start := time.Now()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- r.sim.Run(runCtx)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var runErr error
	exited := false
	select {
	case sig := <-sigCh:
		r.logger.Info("received signal, shutting down",
			zap.String("signal", sig.String()),
		)
	case runErr = <-errCh:
		exited = true
		if runErr != nil {
			r.logger.Error("simulation failed", zap.Error(runErr))
		}
	case <-ctx.Done():
		r.logger.Info("context cancelled, shutting down")
	}

	cancel()

	shutStart := time.Now()
	shutCtx, shutCancel := context.WithTimeout(context.Background(), r.grace)
	defer shutCancel()
	if err := r.sim.Shutdown(shutCtx); err != nil {
		r.logger.Error("shutdown failed", zap.Error(err))
		if runErr == nil {
			runErr = err
		}
	}
	if !exited {
		if err := <-errCh; err != nil && runErr == nil {
			runErr = err
		}
	}

	r.logger.Info("shutdown complete",
		zap.Duration("shutdown_elapsed", time.Since(shutStart)),
		zap.Duration("total_uptime", time.Since(start)),
	)
	return runErr
}
