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

package test

import (
	"fmt"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
)

// Repository is an in-memory git repository for loader tests
type Repository struct {
	*git.Repository
}

// RepoFile is a file committed to the test repository
type RepoFile struct {
	Name    string
	Content string
}

// NewInMemoryRepo initializes an in-memory git repository with a single empty commit
func NewInMemoryRepo(t *testing.T) *Repository {
	fsys := memfs.New()
	storer := memory.NewStorage()

	r, err := git.Init(storer, fsys)
	if err != nil {
		t.Fatalf("Failed to initialize in-memory git repository: %v", err)
	}

	w, err := r.Worktree()
	if err != nil {
		t.Fatalf("Failed to get worktree while initializing in-memory git repository: %v", err)
	}

	_, err = w.Commit("Initial commit", &git.CommitOptions{
		AllowEmptyCommits: true,
		Author: &object.Signature{
			Name:  "Test Author",
			Email: "author@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("Failed to commit to in-memory git repository: %v", err)
	}

	return &Repository{Repository: r}
}

// AddFiles commits files to the repository
func (r *Repository) AddFiles(files ...RepoFile) error {
	for _, f := range files {
		w, err := r.Worktree()
		if err != nil {
			return err
		}

		fl, err := w.Filesystem.Create(f.Name)
		if err != nil {
			return err
		}

		_, err = fl.Write([]byte(f.Content))
		if err != nil {
			return err
		}

		_, err = w.Add(f.Name)
		if err != nil {
			return err
		}

		_, err = w.Commit(fmt.Sprintf("Add %s", f.Name), &git.CommitOptions{
			Author: &object.Signature{
				Name:  "Test Author",
				Email: "author@example.com",
				When:  time.Now(),
			},
		})
		if err != nil {
			return err
		}
	}
	return nil
}
