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
	"net/url"

	"github.com/caas-team/canary/internal/logger"
)

// Validate validates the startup configuration
func (c *Config) Validate(ctx context.Context) error {
	log := logger.FromContext(ctx)

	if c.Api.ListeningAddress == "" {
		log.ErrorContext(ctx, "The api listening address is empty")
		return ErrInvalidApiAddress
	}

	if c.Interval <= 0 {
		log.ErrorContext(ctx, "The check interval must be positive", "interval", c.Interval)
		return ErrInvalidInterval
	}

	if err := c.Pool.Worker.Validate(); err != nil {
		log.ErrorContext(ctx, "Invalid worker pool sizing", "error", err)
		return fmt.Errorf("invalid worker pool sizing: %w", err)
	}
	if err := c.Pool.IO.Validate(); err != nil {
		log.ErrorContext(ctx, "Invalid io pool sizing", "error", err)
		return fmt.Errorf("invalid io pool sizing: %w", err)
	}

	if err := c.Telemetry.Validate(ctx); err != nil {
		return err
	}

	return c.Loader.Validate(ctx)
}

// Validate validates the loader configuration
func (c *LoaderConfig) Validate(ctx context.Context) error {
	log := logger.FromContext(ctx)

	if c.Interval < 0 {
		log.ErrorContext(ctx, "The loader interval must not be negative", "interval", c.Interval)
		return ErrInvalidLoaderInterval
	}

	switch c.Type {
	case "file":
		if c.File.Path == "" {
			log.ErrorContext(ctx, "The loader file path is empty")
			return ErrInvalidLoaderFilePath
		}
	case "http":
		if _, err := url.ParseRequestURI(c.Http.Url); err != nil {
			log.ErrorContext(ctx, "The loader http url is not a valid url", "url", c.Http.Url)
			return ErrInvalidLoaderHttpURL
		}
		if c.Http.RetryCfg.Count < 0 || c.Http.RetryCfg.Count > 5 {
			log.ErrorContext(ctx, "The amount of loader http retries should be between 0 and 5", "count", c.Http.RetryCfg.Count)
			return ErrInvalidLoaderHttpRetryCount
		}
	case "git":
		if _, err := url.ParseRequestURI(c.Git.Url); err != nil {
			log.ErrorContext(ctx, "The loader git url is not a valid url", "url", c.Git.Url)
			return ErrInvalidLoaderGitURL
		}
		if c.Git.Path == "" {
			log.ErrorContext(ctx, "The loader git path is empty")
			return ErrInvalidLoaderGitPath
		}
	default:
		log.ErrorContext(ctx, "Unknown loader type", "type", c.Type)
		return ErrInvalidLoaderType
	}

	return nil
}
