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
	"errors"
	"testing"
	"time"

	"github.com/caas-team/canary/internal/logger"
)

func TestConfig_Validate(t *testing.T) {
	ctx, cancel := logger.NewContextWithLogger(context.Background())
	defer cancel()

	tests := []struct {
		name string
		// mutate adjusts the default config for the case
		mutate func(c *Config)
		// wantErr is the sentinel the validation must return
		wantErr error
		// wantAnyErr expects a failure without a dedicated sentinel
		wantAnyErr bool
	}{
		{
			name: "default config is valid",
		},
		{
			name:    "api address missing",
			mutate:  func(c *Config) { c.Api.ListeningAddress = "" },
			wantErr: ErrInvalidApiAddress,
		},
		{
			name:    "interval zero",
			mutate:  func(c *Config) { c.Interval = 0 },
			wantErr: ErrInvalidInterval,
		},
		{
			name:    "interval negative",
			mutate:  func(c *Config) { c.Interval = -time.Second },
			wantErr: ErrInvalidInterval,
		},
		{
			name:       "worker pool min above max",
			mutate:     func(c *Config) { c.Pool.Worker.Min = 10 },
			wantAnyErr: true,
		},
		{
			name:       "io pool max zero",
			mutate:     func(c *Config) { c.Pool.IO.Max = 0 },
			wantAnyErr: true,
		},
		{
			name:       "telemetry exporter unknown",
			mutate:     func(c *Config) { c.Telemetry.Exporter = "carrier-pigeon" },
			wantAnyErr: true,
		},
		{
			name:    "loader interval negative",
			mutate:  func(c *Config) { c.Loader.Interval = -time.Second },
			wantErr: ErrInvalidLoaderInterval,
		},
		{
			name:    "file path missing",
			mutate:  func(c *Config) { c.Loader.File.Path = "" },
			wantErr: ErrInvalidLoaderFilePath,
		},
		{
			name: "http url missing",
			mutate: func(c *Config) {
				c.Loader.Type = "http"
			},
			wantErr: ErrInvalidLoaderHttpURL,
		},
		{
			name: "http url malformed",
			mutate: func(c *Config) {
				c.Loader.Type = "http"
				c.Loader.Http.Url = "this is not a valid url"
			},
			wantErr: ErrInvalidLoaderHttpURL,
		},
		{
			name: "http retry count too high",
			mutate: func(c *Config) {
				c.Loader.Type = "http"
				c.Loader.Http.Url = "https://api.test.com/config"
				c.Loader.Http.RetryCfg.Count = 100000
			},
			wantErr: ErrInvalidLoaderHttpRetryCount,
		},
		{
			name: "valid http loader",
			mutate: func(c *Config) {
				c.Loader.Type = "http"
				c.Loader.Http.Url = "https://api.test.com/config"
			},
		},
		{
			name: "git url missing",
			mutate: func(c *Config) {
				c.Loader.Type = "git"
				c.Loader.Git.Path = "probes.yaml"
			},
			wantErr: ErrInvalidLoaderGitURL,
		},
		{
			name: "git path missing",
			mutate: func(c *Config) {
				c.Loader.Type = "git"
				c.Loader.Git.Url = "https://git.example.com/repo.git"
			},
			wantErr: ErrInvalidLoaderGitPath,
		},
		{
			name: "valid git loader",
			mutate: func(c *Config) {
				c.Loader.Type = "git"
				c.Loader.Git.Url = "https://git.example.com/repo.git"
				c.Loader.Git.Path = "probes.yaml"
			},
		},
		{
			name:    "unknown loader type",
			mutate:  func(c *Config) { c.Loader.Type = "carrier-pigeon" },
			wantErr: ErrInvalidLoaderType,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConfig()
			if tt.mutate != nil {
				tt.mutate(c)
			}

			err := c.Validate(ctx)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if (err != nil) != tt.wantAnyErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantAnyErr)
			}
		})
	}
}
