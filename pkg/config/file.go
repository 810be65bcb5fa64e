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

package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/caas-team/canary/internal/logger"
	"github.com/caas-team/canary/pkg/probes/runtime"
)

var _ Loader = (*FileLoader)(nil)

// FileLoader reads the runtime configuration from a local file
type FileLoader struct {
	path     string
	interval time.Duration
	cRuntime chan<- runtime.Config
	done     chan struct{}
}

func NewFileLoader(cfg *Config, cRuntime chan<- runtime.Config) *FileLoader {
	return &FileLoader{
		path:     cfg.Loader.File.Path,
		interval: cfg.Loader.Interval,
		cRuntime: cRuntime,
		done:     make(chan struct{}, 1),
	}
}

// Run reads the runtime configuration from the file and delivers it
// on the runtime channel. The file is read again every loader
// interval; a zero interval reads it once.
func (f *FileLoader) Run(ctx context.Context) error {
	ctx, cancel := logger.NewContextWithLogger(ctx)
	defer cancel()
	log := logger.FromContext(ctx)

	for {
		cfg, err := f.getRuntimeConfig(ctx)
		if err != nil {
			log.Error("Failed to get runtime configuration", "file", f.path, "error", err)
			if f.interval == 0 {
				return err
			}
		} else {
			select {
			case f.cRuntime <- cfg:
				log.Info("Successfully loaded runtime configuration", "file", f.path)
			case <-ctx.Done():
				return ctx.Err()
			case <-f.done:
				log.Info("File loader terminated")
				return nil
			}
		}

		if f.interval == 0 {
			log.Debug("Loader interval is zero, not reloading")
			return nil
		}

		timer := time.NewTimer(f.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-f.done:
			timer.Stop()
			log.Info("File loader terminated")
			return nil
		case <-timer.C:
		}
	}
}

// getRuntimeConfig reads the runtime configuration from the file
func (f *FileLoader) getRuntimeConfig(ctx context.Context) (runtime.Config, error) {
	log := logger.FromContext(ctx)
	log.Debug("Reading config from file", "file", f.path)

	var cfg runtime.Config
	b, err := os.ReadFile(f.path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Shutdown stops a running file loader
func (f *FileLoader) Shutdown(ctx context.Context) {
	log := logger.FromContext(ctx)
	select {
	case f.done <- struct{}{}:
		log.Debug("Sending signal to shut down file loader")
	default:
	}
}
