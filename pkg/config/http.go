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
	"io"
	"net/http"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/caas-team/canary/internal/helper"
	"github.com/caas-team/canary/internal/logger"
	"github.com/caas-team/canary/pkg/probes/runtime"
)

var _ Loader = (*HttpLoader)(nil)

// HttpLoader fetches the runtime configuration from a remote http endpoint
type HttpLoader struct {
	cfg      *Config
	cRuntime chan<- runtime.Config
	client   *http.Client
	done     chan struct{}
}

func NewHttpLoader(cfg *Config, cRuntime chan<- runtime.Config) *HttpLoader {
	return &HttpLoader{
		cfg:      cfg,
		cRuntime: cRuntime,
		client: &http.Client{
			Timeout: cfg.Loader.Http.Timeout,
		},
		done: make(chan struct{}, 1),
	}
}

// Run fetches the runtime configuration from the http remote endpoint
// and delivers it on the runtime channel. The endpoint is polled again
// every loader interval; a zero interval fetches it once. Failed
// requests are retried according to the retry configuration.
func (h *HttpLoader) Run(ctx context.Context) error {
	ctx, cancel := logger.NewContextWithLogger(ctx)
	defer cancel()
	log := logger.FromContext(ctx)

	for {
		var cfg runtime.Config
		getConfigRetry := helper.Retry(func(ctx context.Context) error {
			var err error
			cfg, err = h.GetRuntimeConfig(ctx)
			return err
		}, h.cfg.Loader.Http.RetryCfg)

		if err := getConfigRetry(ctx); err != nil {
			log.Warn("Could not get remote runtime configuration", "error", err)
			if h.cfg.Loader.Interval == 0 {
				return err
			}
		} else {
			select {
			case h.cRuntime <- cfg:
				log.Info("Successfully got remote runtime configuration")
			case <-ctx.Done():
				return ctx.Err()
			case <-h.done:
				log.Info("Http loader terminated")
				return nil
			}
		}

		if h.cfg.Loader.Interval == 0 {
			log.Debug("Loader interval is zero, not reloading")
			return nil
		}

		timer := time.NewTimer(h.cfg.Loader.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-h.done:
			timer.Stop()
			log.Info("Http loader terminated")
			return nil
		case <-timer.C:
		}
	}
}

// GetRuntimeConfig fetches the remote runtime configuration
func (h *HttpLoader) GetRuntimeConfig(ctx context.Context) (runtime.Config, error) {
	log := logger.FromContext(ctx).With("url", h.cfg.Loader.Http.Url)
	var cfg runtime.Config

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.cfg.Loader.Http.Url, http.NoBody)
	if err != nil {
		log.Error("Could not create http GET request", "error", err.Error())
		return cfg, err
	}
	if h.cfg.Loader.Http.Token != "" {
		req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", h.cfg.Loader.Http.Token))
	}

	res, err := h.client.Do(req) //nolint:bodyclose
	if err != nil {
		log.Error("Http get request failed", "error", err.Error())
		return cfg, err
	}
	defer func(body io.ReadCloser) {
		err = body.Close()
		if err != nil {
			log.Error("Failed to close response body", "error", err.Error())
		}
	}(res.Body)

	if res.StatusCode != http.StatusOK {
		log.Error("Http get request failed", "status", res.Status)
		return cfg, fmt.Errorf("request failed, status is %s", res.Status)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		log.Error("Could not read response body", "error", err.Error())
		return cfg, err
	}
	log.Debug("Successfully got response")

	if err := yaml.Unmarshal(body, &cfg); err != nil {
		log.Error("Could not unmarshal response", "error", err.Error())
		return cfg, err
	}

	return cfg, nil
}

// Shutdown stops a running http loader
func (h *HttpLoader) Shutdown(ctx context.Context) {
	log := logger.FromContext(ctx)
	select {
	case h.done <- struct{}{}:
		log.Debug("Sending signal to shut down http loader")
	default:
	}
}
