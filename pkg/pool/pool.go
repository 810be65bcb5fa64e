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

// Package pool provides the bounded worker pools the agent schedules its
// work on. A pool is sized with a minimum reserve and a hard concurrency
// cap; its live counters are the signal the starvation probe evaluates.
package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrSaturated is returned by Submit when every slot of the pool is busy.
var ErrSaturated = errors.New("pool has no free slot")

// ErrClosed is returned by Submit after the pool has been shut down.
var ErrClosed = errors.New("pool is shut down")

// Config holds the sizing of a pool.
type Config struct {
	// Min is the concurrency the pool is provisioned for under normal load.
	// Usage above Min is the starvation signal, not an execution limit.
	Min int `yaml:"min" mapstructure:"min"`
	// Max is the hard cap of concurrently running tasks.
	Max int `yaml:"max" mapstructure:"max"`
}

// Validate checks the sizing for consistency.
func (c Config) Validate() error {
	if c.Min < 0 {
		return fmt.Errorf("min must not be negative, got %d", c.Min)
	}
	if c.Max < 1 {
		return fmt.Errorf("max must be at least 1, got %d", c.Max)
	}
	if c.Min > c.Max {
		return fmt.Errorf("min (%d) must not exceed max (%d)", c.Min, c.Max)
	}
	return nil
}

// Stats is a consistent snapshot of a pool's counters.
// The identity Active == Max - Available holds for every snapshot.
type Stats struct {
	Min       int
	Max       int
	Available int
	Active    int
}

// Pool runs submitted tasks with bounded concurrency. Its sizing can be
// retuned at runtime; the next Stats call reflects the new bounds.
type Pool struct {
	name string

	mu     sync.Mutex
	min    int
	max    int
	active int
	closed bool
	wg     sync.WaitGroup
}

// New creates a pool with the given name and sizing.
func New(name string, cfg Config) (*Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sizing for pool %q: %w", name, err)
	}
	return &Pool{
		name: name,
		min:  cfg.Min,
		max:  cfg.Max,
	}, nil
}

// Name returns the name of the pool.
func (p *Pool) Name() string {
	return p.name
}

// Submit starts the task on a free slot of the pool. The task runs on its
// own goroutine and releases the slot when it returns. Submit never queues:
// when all slots are busy it fails fast with ErrSaturated so callers observe
// the pressure instead of hiding it in a backlog.
func (p *Pool) Submit(ctx context.Context, task func(context.Context)) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return fmt.Errorf("pool %q: %w", p.name, ErrClosed)
	}
	if p.active >= p.max {
		p.mu.Unlock()
		return fmt.Errorf("pool %q: %w", p.name, ErrSaturated)
	}
	p.active++
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer func() {
			p.mu.Lock()
			p.active--
			p.mu.Unlock()
			p.wg.Done()
		}()
		task(ctx)
	}()
	return nil
}

// Stats returns a snapshot of the pool's counters.
// Available may be negative for a short while after the pool was shrunk
// below its current load; the arithmetic identity still holds.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		Min:       p.min,
		Max:       p.max,
		Available: p.max - p.active,
		Active:    p.active,
	}
}

// Resize retunes the pool bounds. Running tasks are unaffected; the new
// bounds apply to subsequent submissions and snapshots.
func (p *Pool) Resize(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid sizing for pool %q: %w", p.name, err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.min = cfg.Min
	p.max = cfg.Max
	return nil
}

// Shutdown stops accepting tasks and waits for the running ones to finish
// or for the context to fire, whichever comes first.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("pool %q: %w", p.name, ctx.Err())
	}
}
