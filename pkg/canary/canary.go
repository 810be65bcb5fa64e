// canary
// (C) 2024, Deutsche Telekom IT GmbH
//
// Deutsche Telekom IT GmbH and all other contributors /
// copyright owners license this file to you under the Apache
// License, Version 2.0 (the "License"); you may not use this
// file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package canary

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/caas-team/canary/internal/logger"
	"github.com/caas-team/canary/pkg/api"
	"github.com/caas-team/canary/pkg/canary/metrics"
	"github.com/caas-team/canary/pkg/config"
	"github.com/caas-team/canary/pkg/db"
	"github.com/caas-team/canary/pkg/factory"
	"github.com/caas-team/canary/pkg/probes/runtime"
)

const shutdownTimeout = 30 * time.Second

// Canary is the agent. It loads the runtime configuration, schedules
// checks of the configured probes and serves their results.
type Canary struct {
	cfg        *config.Config
	api        api.API
	db         db.DB
	metrics    metrics.Provider
	pools      pools
	loader     config.Loader
	controller *ProbesController

	cRuntime chan runtime.Config
	cErr     chan error
	cDone    chan struct{}
	shutOnce sync.Once
}

// New creates a new canary agent from the given startup configuration.
func New(cfg *config.Config, version string) (*Canary, error) {
	m := metrics.New(cfg.Telemetry, version)
	dbase := db.NewInMemory()

	p, err := newPools(cfg.Pool)
	if err != nil {
		return nil, err
	}

	cRuntime := make(chan runtime.Config, 1)
	loader, err := config.NewLoader(cfg, cRuntime)
	if err != nil {
		return nil, err
	}

	return &Canary{
		cfg:        cfg,
		api:        api.New(cfg.Api),
		db:         dbase,
		metrics:    m,
		pools:      p,
		loader:     loader,
		controller: NewProbesController(dbase, m, factory.Deps{PoolStats: p}),
		cRuntime:   cRuntime,
		cErr:       make(chan error, 2),
		cDone:      make(chan struct{}, 1),
	}, nil
}

// Run starts the canary agent. It blocks until the context is done,
// Shutdown is called or a component fails fatally.
func (c *Canary) Run(ctx context.Context) error {
	ctx, cancel := logger.NewContextWithLogger(ctx)
	defer cancel()
	log := logger.FromContext(ctx)

	if err := c.metrics.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	go func() {
		c.cErr <- c.loader.Run(ctx)
	}()
	go func() {
		c.cErr <- c.serveAPI(ctx)
	}()

	ticker := time.NewTicker(c.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case cfg := <-c.cRuntime:
			c.controller.Reconcile(ctx, cfg)
			// run a check round right away so a delivery is visible
			// without waiting for the next tick
			c.scheduleChecks(ctx)
		case <-ticker.C:
			c.scheduleChecks(ctx)
		case err := <-c.cErr:
			if err != nil {
				log.ErrorContext(ctx, "Fatal error while running canary", "error", err)
				return errors.Join(err, c.shutdown(ctx))
			}
		case <-ctx.Done():
			return errors.Join(ctx.Err(), c.shutdown(ctx))
		case <-c.cDone:
			return nil
		}
	}
}

// Shutdown stops a running agent from outside its Run loop.
func (c *Canary) Shutdown(ctx context.Context) {
	_ = c.shutdown(ctx)
	select {
	case c.cDone <- struct{}{}:
	default:
	}
}

// shutdown stops all components of the agent. Only the first call
// tears down; later calls return nil.
func (c *Canary) shutdown(ctx context.Context) (err error) {
	c.shutOnce.Do(func() {
		log := logger.FromContext(ctx)
		log.InfoContext(ctx, "Shutting down canary gracefully")

		// teardown gets its own deadline so a canceled run context
		// cannot cut the graceful shutdown short
		teardownCtx, cancel := context.WithTimeout(logger.IntoContext(context.Background(), log), shutdownTimeout)
		defer cancel()

		c.loader.Shutdown(teardownCtx)
		errP := c.pools.shutdown(teardownCtx)
		errA := c.api.Shutdown(teardownCtx)
		c.controller.Shutdown(teardownCtx)
		err = errors.Join(errP, errA, c.metrics.Shutdown(teardownCtx))
		if err != nil {
			log.ErrorContext(teardownCtx, "Failed to shutdown gracefully", "error", err)
		}
	})
	return err
}

// serveAPI registers the agent's routes and serves the status api.
func (c *Canary) serveAPI(ctx context.Context) error {
	if err := c.api.RegisterRoutes(ctx, c.routes()...); err != nil {
		return fmt.Errorf("failed to register routes: %w", err)
	}
	return c.api.Run(ctx)
}

// scheduleChecks submits one check per registered probe to the pool its
// work belongs on. A saturated pool skips the probe's run; the skip is
// visible to the workerpool probe as pool pressure.
func (c *Canary) scheduleChecks(ctx context.Context) {
	for name := range c.controller.Probes() {
		c.submitCheck(ctx, name)
	}
}

// submitCheck hands one check of the named probe to its pool. Each
// check gets at most one scheduling interval to finish.
func (c *Canary) submitCheck(ctx context.Context, name string) {
	log := logger.FromContext(ctx)

	p := c.pools.forProbe(name)
	err := p.Submit(ctx, func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, c.cfg.Interval)
		defer cancel()
		c.controller.RunProbe(ctx, name)
	})
	if err != nil {
		log.WarnContext(ctx, "Skipping scheduled check", "probe", name, "pool", p.Name(), "error", err)
	}
}
