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

package db

import (
	"sync"

	"github.com/caas-team/canary/pkg/probes"
)

type DB interface {
	Save(result probes.ResultDTO)
	Get(probe string) (result probes.Result, ok bool)
	List() map[string]probes.Result
}

var _ DB = (*InMemory)(nil)

// InMemory keeps the latest result per probe.
// A map of ring buffers would hold a series per probe instead,
// but one value is all the API serves.
type InMemory struct {
	data sync.Map
}

// NewInMemory creates a new in-memory database
func NewInMemory() *InMemory {
	return &InMemory{
		data: sync.Map{},
	}
}

func (i *InMemory) Save(result probes.ResultDTO) {
	i.data.Store(result.Name, result.Result)
}

func (i *InMemory) Get(probe string) (probes.Result, bool) {
	tmp, ok := i.data.Load(probe)
	if !ok {
		return probes.Result{}, false
	}
	// this should not fail, otherwise this will panic
	result := tmp.(*probes.Result)

	return *result, true
}

// List returns a copy of the stored results
func (i *InMemory) List() map[string]probes.Result {
	results := make(map[string]probes.Result)
	i.data.Range(func(key, value any) bool {
		// this assertion should not fail, unless we have a bug somewhere
		probe := key.(string)
		result := value.(*probes.Result)

		results[probe] = *result
		return true
	})

	return results
}
