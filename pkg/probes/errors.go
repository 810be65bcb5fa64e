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

import (
	"errors"
	"fmt"
)

// ErrNilContext is returned when CheckHealth is called with a nil context.
// This is a programmer error, not a health signal.
var ErrNilContext = errors.New("context must not be nil")

// ErrProbeClosed is returned when CheckHealth is called on a probe
// that has already been shut down.
var ErrProbeClosed = errors.New("probe has been shut down")

// ErrConfigMismatch is returned when a configuration is of the wrong type
type ErrConfigMismatch struct {
	Expected string
	Current  string
}

func (e ErrConfigMismatch) Error() string {
	return fmt.Sprintf("config mismatch: expected type %v, got %v", e.Expected, e.Current)
}

// ErrInvalidConfig is returned when a configuration is invalid
type ErrInvalidConfig struct {
	ProbeName string
	Field     string
	Reason    string
}

func (e ErrInvalidConfig) Error() string {
	return fmt.Sprintf("invalid configuration field %q in probe %q: %s", e.Field, e.ProbeName, e.Reason)
}
