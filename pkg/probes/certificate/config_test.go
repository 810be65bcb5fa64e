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

package certificate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "valid configuration",
			config:  Config{Hostname: "example.com", Port: 443, WarningThresholdDays: 15, CriticalThresholdDays: 10, Timeout: time.Second},
			wantErr: false,
		},
		{
			name:    "empty hostname",
			config:  Config{Port: 443, WarningThresholdDays: 15, CriticalThresholdDays: 10, Timeout: time.Second},
			wantErr: true,
		},
		{
			name:    "hostname with scheme",
			config:  Config{Hostname: "https://example.com", Port: 443, WarningThresholdDays: 15, CriticalThresholdDays: 10, Timeout: time.Second},
			wantErr: true,
		},
		{
			name:    "hostname with path",
			config:  Config{Hostname: "example.com/health", Port: 443, WarningThresholdDays: 15, CriticalThresholdDays: 10, Timeout: time.Second},
			wantErr: true,
		},
		{
			name:    "port out of range",
			config:  Config{Hostname: "example.com", Port: 65536, WarningThresholdDays: 15, CriticalThresholdDays: 10, Timeout: time.Second},
			wantErr: true,
		},
		{
			name:    "warning equals critical",
			config:  Config{Hostname: "example.com", Port: 443, WarningThresholdDays: 10, CriticalThresholdDays: 10, Timeout: time.Second},
			wantErr: true,
		},
		{
			name:    "warning below critical",
			config:  Config{Hostname: "example.com", Port: 443, WarningThresholdDays: 5, CriticalThresholdDays: 10, Timeout: time.Second},
			wantErr: true,
		},
		{
			name:    "negative critical threshold",
			config:  Config{Hostname: "example.com", Port: 443, WarningThresholdDays: 15, CriticalThresholdDays: -1, Timeout: time.Second},
			wantErr: true,
		},
		{
			name:    "zero timeout",
			config:  Config{Hostname: "example.com", Port: 443, WarningThresholdDays: 15, CriticalThresholdDays: 10},
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

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(Config{Hostname: "example.com", Port: 443, WarningThresholdDays: 10, CriticalThresholdDays: 15, Timeout: time.Second})
	require.Error(t, err, "construction must fail before any check is attempted")
}

func TestConfig_DefaultPort(t *testing.T) {
	tests := []struct {
		name string
		urls string
		want int
	}{
		{
			name: "https entry with explicit port",
			urls: "http://localhost:8080;https://localhost:8443",
			want: 8443,
		},
		{
			name: "https entry without port",
			urls: "https://localhost;http://localhost:8080",
			want: 443,
		},
		{
			name: "first https entry wins",
			urls: "https://localhost:9443;https://localhost:8443",
			want: 9443,
		},
		{
			name: "no https entry",
			urls: "http://localhost:8080",
			want: 443,
		},
		{
			name: "unset",
			urls: "",
			want: 443,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(urlsEnvVar, tt.urls)

			cfg := Config{Hostname: "example.com", WarningThresholdDays: 15, CriticalThresholdDays: 10, Timeout: time.Second}
			cfg.applyDefaults()
			assert.Equal(t, tt.want, cfg.Port)
		})
	}
}

func TestConfig_DefaultPort_ExplicitWins(t *testing.T) {
	t.Setenv(urlsEnvVar, "https://localhost:8443")

	cfg := Config{Hostname: "example.com", Port: 9000, WarningThresholdDays: 15, CriticalThresholdDays: 10, Timeout: time.Second}
	cfg.applyDefaults()
	assert.Equal(t, 9000, cfg.Port, "a configured port is never overridden")
}
