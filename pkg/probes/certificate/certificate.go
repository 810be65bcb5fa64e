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
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/caas-team/canary/internal/logger"
	"github.com/caas-team/canary/pkg/probes"
	"github.com/getkin/kin-openapi/openapi3"
)

var (
	_ probes.Probe   = (*probe)(nil)
	_ probes.Runtime = (*Config)(nil)
)

const ProbeName = "certificate"

// lockWaitTimeout bounds how long a caller waits for an in-flight
// check before reporting Degraded. Busy is not broken.
const lockWaitTimeout = 5 * time.Second

// Info is the data reported for an inspected certificate.
type Info struct {
	Hostname      string `json:"hostname"`
	Port          int    `json:"port"`
	ExpiryDate    string `json:"expiry_date"`
	DaysRemaining int    `json:"days_remaining"`
	ChainValid    bool   `json:"chain_valid"`
}

// probe is the implementation of the certificate expiry probe.
// At most one retrieval is in flight per instance; the capacity-1
// guard bounds outbound TLS connections to one.
type probe struct {
	probes.Base
	config  Config
	fetcher Fetcher
	// baseData is immutable after construction and copied per check.
	baseData map[string]any
	guard    chan struct{}
	lockWait time.Duration
	metrics  metrics
}

// New creates a new instance of the certificate probe.
// The port default is resolved and the configuration validated here;
// an invalid configuration fails construction.
func New(cfg Config) (probes.Probe, error) {
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &probe{
		Base:    probes.NewBase(),
		config:  cfg,
		fetcher: NewFetcher(),
		baseData: map[string]any{
			"hostname": cfg.Hostname,
			"port":     cfg.Port,
		},
		guard:    make(chan struct{}, 1),
		lockWait: lockWaitTimeout,
		metrics:  newMetrics(),
	}, nil
}

// Name returns the name of the probe
func (*probe) Name() string {
	return ProbeName
}

// CheckHealth retrieves the peer certificate and evaluates its
// remaining lifetime against the configured day thresholds.
func (p *probe) CheckHealth(ctx context.Context, reg probes.Registration) (probes.Result, error) {
	if err := p.Guard(ctx); err != nil {
		return probes.Result{}, err
	}
	log := logger.FromContext(ctx).With("probe", ProbeName, "hostname", p.config.Hostname)

	select {
	case p.guard <- struct{}{}:
		defer func() { <-p.guard }()
	case <-time.After(p.lockWait):
		log.Warn("Previous check still running, reporting busy")
		return probes.Result{
			Status:      probes.StatusDegraded,
			Description: "Health check is already in progress",
			Data:        map[string]any{},
			Timestamp:   time.Now().UTC(),
		}, nil
	case <-ctx.Done():
		log.Error("Certificate retrieval timed out", "error", ctx.Err())
		return p.failure(reg, "Certificate retrieval timed out", ctx.Err(), nil), nil
	case <-p.Done:
		return probes.Result{}, probes.ErrProbeClosed
	}

	data := p.data()

	fetchCtx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	certs, err := p.fetcher.Fetch(fetchCtx, p.config.Hostname, p.config.Port)
	if err != nil {
		return p.classify(log, reg, err, data), nil
	}
	if len(certs) == 0 {
		log.Error("Peer presented no certificate")
		p.metrics.status.WithLabelValues(p.config.Hostname).Set(float64(probes.StatusUnhealthy))
		return probes.Result{
			Status:      probes.StatusUnhealthy,
			Description: fmt.Sprintf("Could not retrieve SSL/TLS certificate for %s.", p.config.Hostname),
			Data:        data,
			Timestamp:   time.Now().UTC(),
		}, nil
	}

	now := time.Now().UTC()
	leaf := certs[0]
	days := daysUntil(leaf.NotAfter, now)
	data["expiry_date"] = leaf.NotAfter.UTC().Format(time.RFC3339)
	data["days_remaining"] = days
	data["chain_valid"] = p.verifyChain(log, certs)

	status := probes.EvaluateInverted(days, p.config.WarningThresholdDays, p.config.CriticalThresholdDays)
	switch status {
	case probes.StatusDegraded:
		log.Warn("Certificate is approaching expiry",
			"days_remaining", days, "warningThresholdDays", p.config.WarningThresholdDays)
	case probes.StatusUnhealthy:
		log.Error("Certificate is inside the critical expiry window",
			"days_remaining", days, "criticalThresholdDays", p.config.CriticalThresholdDays)
	}

	p.metrics.update(p.config.Hostname, days, status)

	return probes.Result{
		Status:      status,
		Description: fmt.Sprintf("SSL/TLS certificate for %s expires in %d days.", p.config.Hostname, days),
		Data:        data,
		Timestamp:   now,
	}, nil
}

// Schema provides the schema of the data that will be provided
// by the certificate probe
func (p *probe) Schema() (*openapi3.SchemaRef, error) {
	return probes.OpenapiFromData(Info{})
}

// GetMetricCollectors returns all metric collectors of the probe
func (p *probe) GetMetricCollectors() []prometheus.Collector {
	return p.metrics.collectors()
}

// data copies the immutable base data into a fresh map for one check.
func (p *probe) data() map[string]any {
	d := make(map[string]any, len(p.baseData)+3)
	for k, v := range p.baseData {
		d[k] = v
	}
	return d
}

// classify maps a retrieval fault onto the probe's failure taxonomy.
// Cancellation is checked before the network class since a dial error
// on a fired context wraps both.
func (p *probe) classify(log *slog.Logger, reg probes.Registration, err error, data map[string]any) probes.Result {
	var desc string
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		desc = "Certificate retrieval timed out"
	case errors.As(err, &netErr):
		desc = "Network error occurred while retrieving certificate"
	default:
		desc = "Unexpected error during certificate check"
	}
	log.Error(desc, "error", err)
	p.metrics.status.WithLabelValues(p.config.Hostname).Set(float64(reg.FailureStatus))
	return p.failure(reg, desc, err, data)
}

// failure builds the result for an operational failure with the
// severity the host assigned at registration.
func (p *probe) failure(reg probes.Registration, desc string, err error, data map[string]any) probes.Result {
	if data == nil {
		data = map[string]any{}
	}
	return probes.Result{
		Status:      reg.FailureStatus,
		Description: desc,
		Err:         err.Error(),
		Data:        data,
		Timestamp:   time.Now().UTC(),
	}
}

// verifyChain runs the certificate's own chain verification as a side
// check. The outcome lands in the data and the logs; the returned
// status stays a function of the remaining lifetime.
func (p *probe) verifyChain(log *slog.Logger, certs []*x509.Certificate) bool {
	intermediates := x509.NewCertPool()
	for _, c := range certs[1:] {
		intermediates.AddCert(c)
	}
	if _, err := certs[0].Verify(x509.VerifyOptions{
		DNSName:       p.config.Hostname,
		Intermediates: intermediates,
	}); err != nil {
		log.Warn("Certificate chain verification failed", "error", err)
		return false
	}
	return true
}

// daysUntil is the whole-day distance from now to the expiry, rounded
// to nearest; negative once the certificate is expired.
func daysUntil(expiry, now time.Time) int {
	return int(math.Round(expiry.Sub(now).Hours() / 24))
}
