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

package workerpool

// Config holds the configuration for the workerpool probe.
// The probe has no tunables of its own; the starvation thresholds are
// the pools' configured minimum counts, read fresh at check time.
type Config struct{}

// For returns the name of the probe the configuration is for
func (c *Config) For() string {
	return ProbeName
}

// Validate validates the configuration
func (c *Config) Validate() error {
	return nil
}
