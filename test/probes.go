package test

import (
	"testing"
	"time"

	"github.com/caas-team/canary/pkg/probes"
	"github.com/caas-team/canary/pkg/probes/certificate"
	"github.com/caas-team/canary/pkg/probes/memory"
	"github.com/caas-team/canary/pkg/probes/workerpool"
	"github.com/goccy/go-yaml"
)

type ProbeBuilder interface {
	// For returns the name of the probe.
	For() string
	// YAML returns the yaml representation of the probe's runtime configuration.
	YAML(t *testing.T) []byte
	// ExpectedWaitTime returns the expected wait time for a check of the probe.
	ExpectedWaitTime() time.Duration
}

// probeConfig is a map of probe names to their raw configuration.
type probeConfig map[string]any

// newProbeAsYAML renders one probe's runtime configuration fragment.
// The failure status is merged into the probe's own settings, the way
// the loader delivers them.
func newProbeAsYAML(t *testing.T, cfg probes.Runtime, failureStatus *probes.Status) []byte {
	t.Helper()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("[%T] is not a valid config: %v", cfg, err)
		return []byte{}
	}

	raw, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("[%T] failed to marshal config: %v", cfg, err)
		return []byte{}
	}

	settings := map[string]any{}
	if err := yaml.Unmarshal(raw, &settings); err != nil {
		t.Fatalf("[%T] failed to remarshal config: %v", cfg, err)
		return []byte{}
	}
	if failureStatus != nil {
		settings["failureStatus"] = failureStatus.String()
	}

	out, err := yaml.Marshal(probeConfig{cfg.For(): settings})
	if err != nil {
		t.Fatalf("[%T] failed to marshal config: %v", cfg, err)
		return []byte{}
	}
	return out
}

var _ ProbeBuilder = (*memoryProbeBuilder)(nil)

type memoryProbeBuilder struct {
	cfg           memory.Config
	failureStatus *probes.Status
}

// NewMemoryProbe returns a new memory probe builder with valid thresholds.
func NewMemoryProbe() *memoryProbeBuilder {
	return &memoryProbeBuilder{
		cfg: memory.Config{
			WarningThresholdMB:   512,
			CriticalThresholdMB:  1024,
			WorkingSetWarningMB:  768,
			WorkingSetCriticalMB: 1536,
		},
	}
}

// WithHeapThresholds sets the allocated heap thresholds for the memory probe.
func (b *memoryProbeBuilder) WithHeapThresholds(warningMB, criticalMB uint64) *memoryProbeBuilder {
	b.cfg.WarningThresholdMB = warningMB
	b.cfg.CriticalThresholdMB = criticalMB
	return b
}

// WithWorkingSetThresholds sets the working set thresholds for the memory probe.
func (b *memoryProbeBuilder) WithWorkingSetThresholds(warningMB, criticalMB uint64) *memoryProbeBuilder {
	b.cfg.WorkingSetWarningMB = warningMB
	b.cfg.WorkingSetCriticalMB = criticalMB
	return b
}

// WithFailureStatus sets the status the probe reports when its check fails.
func (b *memoryProbeBuilder) WithFailureStatus(s probes.Status) *memoryProbeBuilder {
	b.failureStatus = &s
	return b
}

// YAML returns the yaml representation of the memory probe.
func (b *memoryProbeBuilder) YAML(t *testing.T) []byte {
	t.Helper()
	return newProbeAsYAML(t, &b.cfg, b.failureStatus)
}

// ExpectedWaitTime returns the expected wait time for a memory check.
func (b *memoryProbeBuilder) ExpectedWaitTime() time.Duration {
	return 0
}

// For returns the name of the probe.
func (b *memoryProbeBuilder) For() string {
	return b.cfg.For()
}

var _ ProbeBuilder = (*workerpoolProbeBuilder)(nil)

type workerpoolProbeBuilder struct {
	cfg           workerpool.Config
	failureStatus *probes.Status
}

// NewWorkerpoolProbe returns a new workerpool probe builder.
func NewWorkerpoolProbe() *workerpoolProbeBuilder {
	return &workerpoolProbeBuilder{}
}

// WithFailureStatus sets the status the probe reports when its check fails.
func (b *workerpoolProbeBuilder) WithFailureStatus(s probes.Status) *workerpoolProbeBuilder {
	b.failureStatus = &s
	return b
}

// YAML returns the yaml representation of the workerpool probe.
func (b *workerpoolProbeBuilder) YAML(t *testing.T) []byte {
	t.Helper()
	return newProbeAsYAML(t, &b.cfg, b.failureStatus)
}

// ExpectedWaitTime returns the expected wait time for a workerpool check.
func (b *workerpoolProbeBuilder) ExpectedWaitTime() time.Duration {
	return 0
}

// For returns the name of the probe.
func (b *workerpoolProbeBuilder) For() string {
	return b.cfg.For()
}

var _ ProbeBuilder = (*certificateProbeBuilder)(nil)

type certificateProbeBuilder struct {
	cfg           certificate.Config
	failureStatus *probes.Status
}

// NewCertificateProbe returns a new certificate probe builder with
// defaults that pass validation.
func NewCertificateProbe() *certificateProbeBuilder {
	return &certificateProbeBuilder{
		cfg: certificate.Config{
			Hostname:              "example.com",
			Port:                  443,
			WarningThresholdDays:  14,
			CriticalThresholdDays: 7,
			Timeout:               10 * time.Second,
		},
	}
}

// WithHostname sets the host presenting the certificate.
func (b *certificateProbeBuilder) WithHostname(hostname string) *certificateProbeBuilder {
	b.cfg.Hostname = hostname
	return b
}

// WithPort sets the TLS port to connect to.
func (b *certificateProbeBuilder) WithPort(port int) *certificateProbeBuilder {
	b.cfg.Port = port
	return b
}

// WithThresholds sets the expiry thresholds in days remaining.
func (b *certificateProbeBuilder) WithThresholds(warningDays, criticalDays int) *certificateProbeBuilder {
	b.cfg.WarningThresholdDays = warningDays
	b.cfg.CriticalThresholdDays = criticalDays
	return b
}

// WithTimeout sets the timeout for the connect and handshake.
func (b *certificateProbeBuilder) WithTimeout(timeout time.Duration) *certificateProbeBuilder {
	b.cfg.Timeout = timeout
	return b
}

// WithFailureStatus sets the status the probe reports when its check fails.
func (b *certificateProbeBuilder) WithFailureStatus(s probes.Status) *certificateProbeBuilder {
	b.failureStatus = &s
	return b
}

// YAML returns the yaml representation of the certificate probe.
func (b *certificateProbeBuilder) YAML(t *testing.T) []byte {
	t.Helper()
	return newProbeAsYAML(t, &b.cfg, b.failureStatus)
}

// ExpectedWaitTime returns the expected wait time for a certificate check.
func (b *certificateProbeBuilder) ExpectedWaitTime() time.Duration {
	return b.cfg.Timeout
}

// For returns the name of the probe.
func (b *certificateProbeBuilder) For() string {
	return b.cfg.For()
}
