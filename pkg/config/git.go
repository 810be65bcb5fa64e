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
	"fmt"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/storage/memory"
	"gopkg.in/yaml.v3"

	"github.com/caas-team/canary/internal/helper"
	"github.com/caas-team/canary/internal/logger"
	"github.com/caas-team/canary/pkg/probes/runtime"
)

var _ Loader = (*GitLoader)(nil)

// GitLoader reads the runtime configuration from a file in a git
// repository. The repository is cloned into memory and kept in sync
// with the remote.
type GitLoader struct {
	cfg      *Config
	cRuntime chan<- runtime.Config
	// auth is the authentication used to interact with the repository.
	// A nil auth accesses the remote anonymously.
	auth *githttp.BasicAuth
	repo *repository
	done chan struct{}
}

func NewGitLoader(cfg *Config, cRuntime chan<- runtime.Config) *GitLoader {
	var auth *githttp.BasicAuth
	if cfg.Loader.Git.Token != "" {
		auth = &githttp.BasicAuth{
			Username: "canary",
			Password: cfg.Loader.Git.Token,
		}
	}

	return &GitLoader{
		cfg:      cfg,
		cRuntime: cRuntime,
		auth:     auth,
		repo: &repository{
			Repository: nil,
			remote:     newRemoteOperator(),
		},
		done: make(chan struct{}, 1),
	}
}

// Run reads the runtime configuration from the repository and delivers
// it on the runtime channel. The remote is synced again every loader
// interval; a zero interval reads it once. Failed syncs are retried
// according to the retry configuration.
func (g *GitLoader) Run(ctx context.Context) error {
	ctx, cancel := logger.NewContextWithLogger(ctx)
	defer cancel()
	log := logger.FromContext(ctx)

	for {
		var cfg runtime.Config
		getConfigRetry := helper.Retry(func(ctx context.Context) error {
			var err error
			cfg, err = g.GetRuntimeConfig(ctx)
			return err
		}, g.cfg.Loader.Git.RetryCfg)

		if err := getConfigRetry(ctx); err != nil {
			log.Warn("Could not get remote runtime configuration", "error", err)
			if g.cfg.Loader.Interval == 0 {
				return err
			}
		} else {
			select {
			case g.cRuntime <- cfg:
				log.Info("Successfully got remote runtime configuration")
			case <-ctx.Done():
				return ctx.Err()
			case <-g.done:
				log.Info("Git loader terminated")
				return nil
			}
		}

		if g.cfg.Loader.Interval == 0 {
			log.Debug("Loader interval is zero, not reloading")
			return nil
		}

		timer := time.NewTimer(g.cfg.Loader.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-g.done:
			timer.Stop()
			log.Info("Git loader terminated")
			return nil
		case <-timer.C:
		}
	}
}

// GetRuntimeConfig syncs the repository with the remote and reads the
// runtime configuration from the configured file
func (g *GitLoader) GetRuntimeConfig(ctx context.Context) (runtime.Config, error) {
	log := logger.FromContext(ctx).With("url", g.cfg.Loader.Git.Url)
	var cfg runtime.Config

	if g.cfg.Loader.Git.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Loader.Git.Timeout)
		defer cancel()
	}

	if err := g.syncWithRemote(ctx); err != nil {
		log.Error("Failed to sync local repository with remote", "error", err)
		return cfg, err
	}

	content, err := g.readConfigFile()
	if err != nil {
		log.Error("Failed to read config file from repository", "file", g.cfg.Loader.Git.Path, "error", err)
		return cfg, err
	}

	if err := yaml.Unmarshal([]byte(content), &cfg); err != nil {
		log.Error("Could not unmarshal config file", "error", err.Error())
		return cfg, err
	}

	log.Debug("Successfully read config file from repository")
	return cfg, nil
}

// syncWithRemote ensures the local repository is up to date with the remote repository
func (g *GitLoader) syncWithRemote(ctx context.Context) error {
	log := logger.FromContext(ctx)

	if g.repo.Repository == nil {
		if err := g.cloneRepository(ctx); err != nil {
			log.Error("Failed to clone repository", "error", err)
			return err
		}
		return nil
	}

	w, err := g.repo.Worktree()
	if err != nil {
		log.Error("Failed to get worktree", "error", err)
		return err
	}

	err = w.Reset(&git.ResetOptions{Mode: git.HardReset})
	if err != nil {
		log.Error("Failed to reset the worktree", "error", err)
		return err
	}

	err = g.repo.remote.PullContext(ctx, w, &git.PullOptions{
		RemoteName: "origin",
		Auth:       g.auth,
		Depth:      1,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		log.Error("Failed to pull from repository", "error", err)
		return err
	}

	return nil
}

// cloneRepository clones the git repository into memory
func (g *GitLoader) cloneRepository(ctx context.Context) error {
	opts := &git.CloneOptions{
		URL:   g.cfg.Loader.Git.Url,
		Auth:  g.auth,
		Depth: 1,
	}
	if b := g.cfg.Loader.Git.Branch; b != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(b)
		opts.SingleBranch = true
	}

	repo, err := g.repo.remote.CloneContext(ctx, memory.NewStorage(), memfs.New(), opts)
	if err != nil {
		return fmt.Errorf("failed to clone repository: %w", err)
	}
	g.repo = repo
	return nil
}

// readConfigFile reads the configured file from the latest commit of the repository
func (g *GitLoader) readConfigFile() (string, error) {
	ref, err := g.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}

	commit, err := g.repo.CommitObject(ref.Hash())
	if err != nil {
		return "", fmt.Errorf("failed to get commit: %w", err)
	}

	tree, err := commit.Tree()
	if err != nil {
		return "", fmt.Errorf("failed to get tree: %w", err)
	}

	f, err := tree.File(g.cfg.Loader.Git.Path)
	if err != nil {
		return "", fmt.Errorf("failed to find %q in repository: %w", g.cfg.Loader.Git.Path, err)
	}

	return f.Contents()
}

// Shutdown stops a running git loader
func (g *GitLoader) Shutdown(ctx context.Context) {
	log := logger.FromContext(ctx)
	select {
	case g.done <- struct{}{}:
		log.Debug("Sending signal to shut down git loader")
	default:
	}
}
