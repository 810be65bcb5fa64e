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
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caas-team/canary/pkg/probes"
)

// urlsEnvVar holds the addresses the host application serves on, as a
// semicolon separated URL list. The probe's default port is taken from
// the first https entry.
const urlsEnvVar = "CANARY_URLS"

const defaultHTTPSPort = 443

// Config defines the configuration parameters for the certificate probe
type Config struct {
	// Hostname is the host presenting the certificate, without scheme or path.
	Hostname string `json:"hostname" yaml:"hostname" mapstructure:"hostname"`
	// Port is the TLS port to connect to. Zero resolves to the host
	// application's own https port, falling back to 443.
	Port int `json:"port" yaml:"port" mapstructure:"port"`
	// WarningThresholdDays is the days remaining at or below which the probe degrades.
	WarningThresholdDays int `json:"warningThresholdDays" yaml:"warningThresholdDays" mapstructure:"warningThresholdDays"`
	// CriticalThresholdDays is the days remaining at or below which the probe is unhealthy.
	CriticalThresholdDays int `json:"criticalThresholdDays" yaml:"criticalThresholdDays" mapstructure:"criticalThresholdDays"`
	// Timeout bounds the connect and handshake of a single check.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// For returns the name of the probe
func (c *Config) For() string {
	return ProbeName
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Hostname == "" {
		return probes.ErrInvalidConfig{ProbeName: c.For(), Field: "hostname", Reason: "must not be empty"}
	}
	if strings.Contains(c.Hostname, "://") || strings.Contains(c.Hostname, "/") {
		return probes.ErrInvalidConfig{ProbeName: c.For(), Field: "hostname", Reason: "must be a bare hostname without scheme or path"}
	}
	if c.Port < 1 || c.Port > 65535 {
		return probes.ErrInvalidConfig{ProbeName: c.For(), Field: "port", Reason: "must be between 1 and 65535"}
	}
	if c.CriticalThresholdDays < 0 {
		return probes.ErrInvalidConfig{ProbeName: c.For(), Field: "criticalThresholdDays", Reason: "must not be negative"}
	}
	if c.WarningThresholdDays <= c.CriticalThresholdDays {
		return probes.ErrInvalidConfig{ProbeName: c.For(), Field: "warningThresholdDays", Reason: "must be greater than criticalThresholdDays"}
	}
	if c.Timeout <= 0 {
		return probes.ErrInvalidConfig{ProbeName: c.For(), Field: "timeout", Reason: "must be greater than zero"}
	}
	return nil
}

// applyDefaults fills unset fields before validation.
func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = defaultPort()
	}
}

// defaultPort resolves the port from the application's own serving
// URLs, preferring the first https entry, falling back to 443.
func defaultPort() int {
	for _, entry := range strings.Split(os.Getenv(urlsEnvVar), ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		u, err := url.Parse(entry)
		if err != nil || u.Scheme != "https" {
			continue
		}
		if p := u.Port(); p != "" {
			if n, err := strconv.Atoi(p); err == nil {
				return n
			}
		}
		return defaultHTTPSPort
	}
	return defaultHTTPSPort
}
