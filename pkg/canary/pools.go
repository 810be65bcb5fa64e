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

	"github.com/caas-team/canary/pkg/config"
	"github.com/caas-team/canary/pkg/pool"
	"github.com/caas-team/canary/pkg/probes/certificate"
)

// pools bundles the two execution pools the agent schedules its checks on.
// The bundle doubles as the stats source of the workerpool probe, so the
// probe observes exactly the pools the checks run on.
type pools struct {
	worker *pool.Pool
	io     *pool.Pool
}

// newPools creates the worker and io pool with the configured sizing.
func newPools(cfg config.PoolConfig) (pools, error) {
	worker, err := pool.New("worker", cfg.Worker)
	if err != nil {
		return pools{}, err
	}
	ioPool, err := pool.New("io", cfg.IO)
	if err != nil {
		return pools{}, err
	}
	return pools{worker: worker, io: ioPool}, nil
}

// WorkerStats returns a snapshot of the worker pool counters.
func (p pools) WorkerStats() pool.Stats {
	return p.worker.Stats()
}

// IOStats returns a snapshot of the io pool counters.
func (p pools) IOStats() pool.Stats {
	return p.io.Stats()
}

// forProbe returns the pool the given probe's checks belong on.
// Outbound network checks run on the io pool so a slow remote cannot
// starve the local checks; everything else runs on the worker pool.
func (p pools) forProbe(name string) *pool.Pool {
	if name == certificate.ProbeName {
		return p.io
	}
	return p.worker
}

// shutdown stops both pools and waits for their in-flight checks.
func (p pools) shutdown(ctx context.Context) error {
	return errors.Join(p.worker.Shutdown(ctx), p.io.Shutdown(ctx))
}
