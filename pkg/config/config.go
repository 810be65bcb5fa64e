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
	"time"

	"github.com/caas-team/canary/internal/helper"
	"github.com/caas-team/canary/pkg/canary/metrics"
	"github.com/caas-team/canary/pkg/pool"
)

// DefaultRetry is the retry configuration the loaders fall back to
var DefaultRetry = helper.RetryConfig{Count: 3, Delay: time.Second}

// Config is the startup configuration of the agent
type Config struct {
	// Interval is the rate at which the registered probes are checked
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
	// Api is the configuration for the status api
	Api ApiConfig `yaml:"api" mapstructure:"api"`
	// Pool sizes the worker pools the checks are scheduled on
	Pool PoolConfig `yaml:"pool" mapstructure:"pool"`
	// Telemetry is the configuration for the telemetry provider
	Telemetry metrics.Config `yaml:"telemetry" mapstructure:"telemetry"`
	// Loader is the configuration for the runtime configuration loader
	Loader LoaderConfig `yaml:"loader" mapstructure:"loader"`
}

// ApiConfig is the configuration for the status api
type ApiConfig struct {
	// ListeningAddress is the address the api server listens on
	ListeningAddress string `yaml:"address" mapstructure:"address"`
}

// PoolConfig sizes the two pools the agent runs its checks on.
// Outbound network checks run on the io pool, local checks on the
// worker pool.
type PoolConfig struct {
	Worker pool.Config `yaml:"worker" mapstructure:"worker"`
	IO     pool.Config `yaml:"io" mapstructure:"io"`
}

// LoaderConfig is the configuration for the loader
// of the runtime configuration
type LoaderConfig struct {
	// Type selects the loader: file, http or git
	Type string `yaml:"type" mapstructure:"type"`
	// Interval is the rate at which the runtime configuration is
	// reloaded. Zero loads it once and stops.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
	// File configures the file loader
	File FileLoaderConfig `yaml:"file" mapstructure:"file"`
	// Http configures the http loader
	Http HttpLoaderConfig `yaml:"http" mapstructure:"http"`
	// Git configures the git loader
	Git GitLoaderConfig `yaml:"git" mapstructure:"git"`
}

// FileLoaderConfig is the configuration
// for the specific file loader
type FileLoaderConfig struct {
	// Path is the path to the runtime configuration file
	Path string `yaml:"path" mapstructure:"path"`
}

// HttpLoaderConfig is the configuration
// for the specific http loader
type HttpLoaderConfig struct {
	// Url is the url the runtime configuration is fetched from
	Url string `yaml:"url" mapstructure:"url"`
	// Token is the bearer token used to authenticate with the endpoint
	Token string `yaml:"token" mapstructure:"token"`
	// Timeout is the timeout for a single fetch
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// RetryCfg configures the retries for a failed fetch
	RetryCfg helper.RetryConfig `yaml:"retry" mapstructure:"retry"`
}

// GitLoaderConfig is the configuration
// for the specific git loader
type GitLoaderConfig struct {
	// Url is the clone url of the repository holding the runtime configuration
	Url string `yaml:"url" mapstructure:"url"`
	// Path is the path of the runtime configuration file inside the repository
	Path string `yaml:"path" mapstructure:"path"`
	// Branch is the branch to read from. Empty uses the default branch.
	Branch string `yaml:"branch" mapstructure:"branch"`
	// Token is the access token used to authenticate with the remote
	Token string `yaml:"token" mapstructure:"token"`
	// Timeout is the timeout for a single clone or pull
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// RetryCfg configures the retries for a failed sync
	RetryCfg helper.RetryConfig `yaml:"retry" mapstructure:"retry"`
}

// NewConfig creates a new Config with the agent's defaults
func NewConfig() *Config {
	return &Config{
		Interval: 60 * time.Second,
		Api: ApiConfig{
			ListeningAddress: ":8080",
		},
		Pool: PoolConfig{
			Worker: pool.Config{Min: 2, Max: 8},
			IO:     pool.Config{Min: 2, Max: 16},
		},
		Telemetry: metrics.Config{
			Exporter: metrics.NOOP,
		},
		Loader: LoaderConfig{
			Type:     "file",
			Interval: 300 * time.Second,
			File: FileLoaderConfig{
				Path: "probes.yaml",
			},
			Http: HttpLoaderConfig{
				Timeout:  30 * time.Second,
				RetryCfg: DefaultRetry,
			},
			Git: GitLoaderConfig{
				Timeout:  30 * time.Second,
				RetryCfg: DefaultRetry,
			},
		},
	}
}
