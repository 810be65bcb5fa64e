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

package memory

import (
	"context"
	"fmt"
	"runtime"

	"github.com/prometheus/procfs"
)

// Metrics is a snapshot of the process's memory counters,
// collected fresh on every check and never persisted.
type Metrics struct {
	// AllocatedBytes is the live heap, the bytes currently allocated and reachable.
	AllocatedBytes uint64 `json:"allocated_bytes"`
	// WorkingSetBytes is the resident physical memory of the process.
	WorkingSetBytes uint64 `json:"working_set_bytes"`
	// PrivateMemoryBytes is the anonymous, non-file-backed resident memory.
	PrivateMemoryBytes uint64 `json:"private_memory_bytes"`
	// GCCycles is the number of completed garbage collection cycles.
	GCCycles uint32 `json:"gc_cycles"`
	// AutomaticGCCycles is the number of cycles triggered by the runtime pacer.
	AutomaticGCCycles uint32 `json:"automatic_gc_cycles"`
	// ForcedGCCycles is the number of cycles forced by the application.
	ForcedGCCycles uint32 `json:"forced_gc_cycles"`
	// HeapSizeBytes is the heap memory obtained from the operating system.
	HeapSizeBytes uint64 `json:"heap_size_bytes"`
	// CommittedBytes is the total memory obtained from the operating system.
	CommittedBytes uint64 `json:"committed_bytes"`
	// FragmentedBytes is heap memory in use by spans but not allocated.
	FragmentedBytes uint64 `json:"fragmented_bytes"`
	// MemoryLoadPercent is the heap footprint relative to total system memory.
	MemoryLoadPercent float64 `json:"memory_load_percent"`
	// UsableHeapBytes is the heap footprint not lost to fragmentation.
	UsableHeapBytes uint64 `json:"usable_heap_bytes"`
}

// Data returns the snapshot as the metric key map exposed on the result.
// The key names are part of the public contract.
func (m Metrics) Data() map[string]any {
	return map[string]any{
		"allocated_bytes":      m.AllocatedBytes,
		"working_set_bytes":    m.WorkingSetBytes,
		"private_memory_bytes": m.PrivateMemoryBytes,
		"gc_cycles":            m.GCCycles,
		"automatic_gc_cycles":  m.AutomaticGCCycles,
		"forced_gc_cycles":     m.ForcedGCCycles,
		"heap_size_bytes":      m.HeapSizeBytes,
		"committed_bytes":      m.CommittedBytes,
		"fragmented_bytes":     m.FragmentedBytes,
		"memory_load_percent":  m.MemoryLoadPercent,
		"usable_heap_bytes":    m.UsableHeapBytes,
	}
}

// Collector provides the memory counters the probe evaluates.
// The production collector reads the Go runtime and procfs; tests
// substitute their own implementation.
type Collector interface {
	Collect(ctx context.Context) (Metrics, error)
}

// NewCollector creates the production collector.
func NewCollector() Collector {
	return &runtimeCollector{}
}

// runtimeCollector reads the runtime's memory statistics and complements
// them with the process and system counters from procfs.
type runtimeCollector struct{}

// Collect builds a fresh snapshot of the process's memory counters.
func (c *runtimeCollector) Collect(ctx context.Context) (Metrics, error) {
	select {
	case <-ctx.Done():
		return Metrics{}, ctx.Err()
	default:
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	proc, err := procfs.Self()
	if err != nil {
		return Metrics{}, fmt.Errorf("accessing procfs: %w", err)
	}
	status, err := proc.NewStatus()
	if err != nil {
		return Metrics{}, fmt.Errorf("reading process status: %w", err)
	}
	fs, err := procfs.NewDefaultFS()
	if err != nil {
		return Metrics{}, fmt.Errorf("accessing procfs: %w", err)
	}
	meminfo, err := fs.Meminfo()
	if err != nil {
		return Metrics{}, fmt.Errorf("reading meminfo: %w", err)
	}
	if meminfo.MemTotal == nil || *meminfo.MemTotal == 0 {
		return Metrics{}, fmt.Errorf("meminfo reports no total memory")
	}
	totalBytes := *meminfo.MemTotal * 1024

	heap := ms.HeapSys
	fragmented := ms.HeapInuse - ms.HeapAlloc

	return Metrics{
		AllocatedBytes:     ms.HeapAlloc,
		WorkingSetBytes:    status.VmRSS,
		PrivateMemoryBytes: status.RssAnon,
		GCCycles:           ms.NumGC,
		AutomaticGCCycles:  ms.NumGC - ms.NumForcedGC,
		ForcedGCCycles:     ms.NumForcedGC,
		HeapSizeBytes:      heap,
		CommittedBytes:     ms.Sys,
		FragmentedBytes:    fragmented,
		MemoryLoadPercent:  float64(heap) / float64(totalBytes) * 100,
		UsableHeapBytes:    heap - fragmented,
	}, nil
}
