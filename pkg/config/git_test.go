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
	"reflect"
	"testing"

	"github.com/go-git/go-billy/v5"
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/storage"

	configtest "github.com/caas-team/canary/pkg/config/test"
	"github.com/caas-team/canary/pkg/probes/runtime"
)

func TestNewGitLoader(t *testing.T) {
	t.Run("anonymous without token", func(t *testing.T) {
		cfg := NewConfig()
		cfg.Loader.Type = "git"

		gl := NewGitLoader(cfg, make(chan<- runtime.Config))
		if gl.auth != nil {
			t.Errorf("Expected no auth, got %v", gl.auth)
		}
	})

	t.Run("basic auth with token", func(t *testing.T) {
		cfg := NewConfig()
		cfg.Loader.Type = "git"
		cfg.Loader.Git.Token = "s3cret"

		gl := NewGitLoader(cfg, make(chan<- runtime.Config))
		if gl.auth == nil {
			t.Fatal("Expected auth to be set")
		}
		if gl.auth.Username != "canary" || gl.auth.Password != "s3cret" {
			t.Errorf("Expected basic auth for canary, got %v", gl.auth)
		}
	})
}

func TestGitLoader_GetRuntimeConfig(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		operator *remoteOperatorMock
		want     runtime.Config
		wantErr  bool
	}{
		{
			name: "success",
			operator: &remoteOperatorMock{
				CloneContextFunc: func(ctx context.Context, store storage.Storer, fs billy.Filesystem, o *git.CloneOptions) (*repository, error) {
					rm := configtest.NewInMemoryRepo(t)
					err := rm.AddFiles(configtest.RepoFile{
						Name:    "probes.yaml",
						Content: "probes:\n  memory:\n    warningThresholdMB: 512\n",
					})
					if err != nil {
						t.Fatalf("Failed to add file to repo: %s", err)
					}
					return &repository{Repository: rm.Repository, remote: &remoteOperatorMock{}}, nil
				},
			},
			want: runtime.Config{
				Probes: map[string]any{
					"memory": map[string]any{
						"warningThresholdMB": 512,
					},
				},
			},
		},
		{
			name: "clone fails",
			operator: &remoteOperatorMock{
				CloneContextFunc: func(ctx context.Context, store storage.Storer, fs billy.Filesystem, o *git.CloneOptions) (*repository, error) {
					return nil, fmt.Errorf("clone error")
				},
			},
			wantErr: true,
		},
		{
			name: "config file missing",
			operator: &remoteOperatorMock{
				CloneContextFunc: func(ctx context.Context, store storage.Storer, fs billy.Filesystem, o *git.CloneOptions) (*repository, error) {
					rm := configtest.NewInMemoryRepo(t)
					return &repository{Repository: rm.Repository, remote: &remoteOperatorMock{}}, nil
				},
			},
			wantErr: true,
		},
		{
			name: "config file not yaml",
			operator: &remoteOperatorMock{
				CloneContextFunc: func(ctx context.Context, store storage.Storer, fs billy.Filesystem, o *git.CloneOptions) (*repository, error) {
					rm := configtest.NewInMemoryRepo(t)
					err := rm.AddFiles(configtest.RepoFile{
						Name:    "probes.yaml",
						Content: "this is not yaml",
					})
					if err != nil {
						t.Fatalf("Failed to add file to repo: %s", err)
					}
					return &repository{Repository: rm.Repository, remote: &remoteOperatorMock{}}, nil
				},
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gl := newTestGitLoader(tt.operator)

			got, err := gl.GetRuntimeConfig(ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("GitLoader.GetRuntimeConfig() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("GitLoader.GetRuntimeConfig() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGitLoader_GetRuntimeConfig_pullsOnSecondSync(t *testing.T) {
	ctx := context.Background()

	op := &remoteOperatorMock{
		PullContextFunc: func(ctx context.Context, w *git.Worktree, o *git.PullOptions) error {
			return git.NoErrAlreadyUpToDate
		},
	}
	op.CloneContextFunc = func(ctx context.Context, store storage.Storer, fs billy.Filesystem, o *git.CloneOptions) (*repository, error) {
		rm := configtest.NewInMemoryRepo(t)
		err := rm.AddFiles(configtest.RepoFile{
			Name:    "probes.yaml",
			Content: "probes:\n  memory:\n    warningThresholdMB: 512\n",
		})
		if err != nil {
			t.Fatalf("Failed to add file to repo: %s", err)
		}
		return &repository{Repository: rm.Repository, remote: op}, nil
	}

	gl := newTestGitLoader(op)
	if _, err := gl.GetRuntimeConfig(ctx); err != nil {
		t.Fatalf("GitLoader.GetRuntimeConfig() error = %v", err)
	}
	if _, err := gl.GetRuntimeConfig(ctx); err != nil {
		t.Fatalf("GitLoader.GetRuntimeConfig() error = %v", err)
	}

	if calls := len(op.CloneContextCalls()); calls != 1 {
		t.Errorf("CloneContext called %d times, want 1", calls)
	}
	if calls := len(op.PullContextCalls()); calls != 1 {
		t.Errorf("PullContext called %d times, want 1", calls)
	}
}

func newTestGitLoader(op remoteOperator) *GitLoader {
	cfg := NewConfig()
	cfg.Loader.Type = "git"
	cfg.Loader.Git.Url = "https://git.example.com/repo.git"
	cfg.Loader.Git.Path = "probes.yaml"

	return &GitLoader{
		cfg:      cfg,
		cRuntime: make(chan<- runtime.Config),
		repo:     &repository{remote: op},
		done:     make(chan struct{}, 1),
	}
}
