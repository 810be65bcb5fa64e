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
	"reflect"
	"sync"
	"testing"

	"github.com/caas-team/canary/pkg/probes"
)

func TestInMemory_Save(t *testing.T) {
	tests := []struct {
		name   string
		result probes.ResultDTO
	}{
		{
			name: "Saves without error",
			result: probes.ResultDTO{
				Name:   "memory",
				Result: &probes.Result{Status: probes.StatusHealthy, Description: "Memory usage is within normal range. Allocated: 100MB, Working Set: 200MB"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i := NewInMemory()

			i.Save(tt.result)
			val, ok := i.data.Load(tt.result.Name)
			if !ok {
				t.Fatalf("Expected to find key %s in map", tt.result.Name)
			}

			if !reflect.DeepEqual(val, tt.result.Result) {
				t.Fatalf("Expected val to be %v but got: %v", tt.result.Result, val)
			}
		})
	}
}

func TestNewInMemory(t *testing.T) {
	tests := []struct {
		name string
		want *InMemory
	}{
		{name: "Creates without nil pointers", want: &InMemory{data: sync.Map{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewInMemory(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NewInMemory() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInMemory_Get(t *testing.T) {
	type want struct {
		result probes.Result
		ok     bool
	}
	tests := []struct {
		name   string
		stored map[string]*probes.Result
		probe  string
		want   want
	}{
		{
			name: "Can get value",
			stored: map[string]*probes.Result{
				"memory":      {Status: probes.StatusHealthy},
				"certificate": {Status: probes.StatusDegraded},
			},
			probe: "certificate",
			want:  want{ok: true, result: probes.Result{Status: probes.StatusDegraded}},
		},
		{
			name: "Not found",
			stored: map[string]*probes.Result{
				"memory": {Status: probes.StatusHealthy},
			},
			probe: "NOTFOUND",
			want:  want{ok: false, result: probes.Result{}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i := NewInMemory()
			for k, v := range tt.stored {
				i.data.Store(k, v)
			}
			if got, ok := i.Get(tt.probe); !reflect.DeepEqual(got, tt.want.result) || ok != tt.want.ok {
				t.Errorf("Get() = %v, %v, want %v, %v", got, ok, tt.want.result, tt.want.ok)
			}
		})
	}
}

func TestInMemory_List(t *testing.T) {
	i := NewInMemory()
	stored := map[string]*probes.Result{
		"memory":     {Status: probes.StatusHealthy},
		"workerpool": {Status: probes.StatusUnhealthy},
	}
	for k, v := range stored {
		i.data.Store(k, v)
	}

	got := i.List()
	if len(got) != len(stored) {
		t.Fatalf("List() returned %d entries, want %d", len(got), len(stored))
	}
	for name, want := range stored {
		if !reflect.DeepEqual(got[name], *want) {
			t.Errorf("List()[%s] = %v, want %v", name, got[name], *want)
		}
	}
}

func TestInMemory_SaveOverwritesLatest(t *testing.T) {
	i := NewInMemory()
	i.Save(probes.ResultDTO{Name: "memory", Result: &probes.Result{Status: probes.StatusHealthy}})
	i.Save(probes.ResultDTO{Name: "memory", Result: &probes.Result{Status: probes.StatusUnhealthy}})

	got, ok := i.Get("memory")
	if !ok {
		t.Fatal("Expected to find the memory result")
	}
	if got.Status != probes.StatusUnhealthy {
		t.Errorf("Get() status = %v, want the latest save %v", got.Status, probes.StatusUnhealthy)
	}
}
