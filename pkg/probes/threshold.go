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

package probes

import "cmp"

// bytesPerMegabyte is the exact conversion factor between the two units.
const bytesPerMegabyte = 1 << 20

// Evaluate compares a measured value against a warning and a critical
// threshold where larger values are worse. The critical threshold is
// checked first, so warning <= value < critical yields StatusDegraded
// and value >= critical yields StatusUnhealthy.
func Evaluate[T cmp.Ordered](value, warning, critical T) Status {
	switch {
	case value >= critical:
		return StatusUnhealthy
	case value >= warning:
		return StatusDegraded
	default:
		return StatusHealthy
	}
}

// EvaluateInverted compares a measured value against thresholds where
// smaller values are worse, such as the days remaining until an expiry.
// Here warning must be larger than critical.
func EvaluateInverted[T cmp.Ordered](value, warning, critical T) Status {
	switch {
	case value <= critical:
		return StatusUnhealthy
	case value <= warning:
		return StatusDegraded
	default:
		return StatusHealthy
	}
}

// Worst returns the more severe of two statuses. Probes evaluating
// several dimensions combine them with Worst, so one critical dimension
// is never masked by a healthy one.
func Worst(a, b Status) Status {
	if a >= b {
		return a
	}
	return b
}

// MegabytesToBytes converts a configured megabyte threshold to bytes.
func MegabytesToBytes(mb uint64) uint64 {
	return mb * bytesPerMegabyte
}

// BytesToMegabytes converts a byte count to megabytes for display,
// rounding up. A value just above a full megabyte must report the next
// megabyte so memory pressure is never under-reported.
func BytesToMegabytes(b uint64) uint64 {
	return (b + bytesPerMegabyte - 1) / bytesPerMegabyte
}
