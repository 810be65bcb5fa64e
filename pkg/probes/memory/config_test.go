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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name: "valid thresholds",
			config: Config{
				WarningThresholdMB:   800,
				CriticalThresholdMB:  1024,
				WorkingSetWarningMB:  1536,
				WorkingSetCriticalMB: 2048,
			},
			wantErr: false,
		},
		{
			name: "allocated warning equals critical",
			config: Config{
				WarningThresholdMB:   1024,
				CriticalThresholdMB:  1024,
				WorkingSetWarningMB:  1536,
				WorkingSetCriticalMB: 2048,
			},
			wantErr: true,
		},
		{
			name: "allocated warning above critical",
			config: Config{
				WarningThresholdMB:   2048,
				CriticalThresholdMB:  1024,
				WorkingSetWarningMB:  1536,
				WorkingSetCriticalMB: 2048,
			},
			wantErr: true,
		},
		{
			name: "working set warning equals critical",
			config: Config{
				WarningThresholdMB:   800,
				CriticalThresholdMB:  1024,
				WorkingSetWarningMB:  2048,
				WorkingSetCriticalMB: 2048,
			},
			wantErr: true,
		},
		{
			name: "zero allocated warning",
			config: Config{
				WarningThresholdMB:   0,
				CriticalThresholdMB:  1024,
				WorkingSetWarningMB:  1536,
				WorkingSetCriticalMB: 2048,
			},
			wantErr: true,
		},
		{
			name: "zero working set warning",
			config: Config{
				WarningThresholdMB:   800,
				CriticalThresholdMB:  1024,
				WorkingSetWarningMB:  0,
				WorkingSetCriticalMB: 2048,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestConfig_For(t *testing.T) {
	cfg := Config{}
	assert.Equal(t, ProbeName, cfg.For())
}
