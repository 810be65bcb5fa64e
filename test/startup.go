package test

import (
	"context"
	"testing"
	"time"

	"github.com/caas-team/canary/internal/helper"
	"github.com/caas-team/canary/pkg/canary/metrics"
	"github.com/caas-team/canary/pkg/config"
	"github.com/goccy/go-yaml"
)

// checkInterval is the rate the e2e agent schedules its check rounds at.
// Short enough that a test observes a few rounds, long enough that a
// slow certificate handshake fits into one.
const checkInterval = 10 * time.Second

type CanaryConfig struct{ cfg config.Config }

// NewCanaryConfig returns a startup configuration builder for an e2e agent.
func NewCanaryConfig() *CanaryConfig {
	cfg := config.NewConfig()
	cfg.Interval = checkInterval
	cfg.Api = NewAPIConfig("localhost:8080")
	cfg.Loader = NewLoaderConfig().Build()
	return &CanaryConfig{cfg: *cfg}
}

func (b *CanaryConfig) WithCheckInterval(i time.Duration) *CanaryConfig {
	b.cfg.Interval = i
	return b
}

func (b *CanaryConfig) WithApi(cfg config.ApiConfig) *CanaryConfig {
	b.cfg.Api = cfg
	return b
}

func (b *CanaryConfig) WithPool(cfg config.PoolConfig) *CanaryConfig {
	b.cfg.Pool = cfg
	return b
}

func (b *CanaryConfig) WithLoader(cfg config.LoaderConfig) *CanaryConfig { //nolint:gocritic // Performance is not a concern here
	b.cfg.Loader = cfg
	return b
}

func (b *CanaryConfig) WithTelemetry(cfg metrics.Config) *CanaryConfig {
	b.cfg.Telemetry = cfg
	return b
}

func (b *CanaryConfig) Config(t *testing.T) *config.Config {
	t.Helper()
	if err := b.cfg.Validate(context.Background()); err != nil {
		t.Fatalf("config is not valid: %v", err)
	}
	return &b.cfg
}

func (b *CanaryConfig) YAML(t *testing.T) []byte {
	t.Helper()
	out, err := yaml.Marshal(b.cfg)
	if err != nil {
		t.Fatalf("[%T] failed to marshal config: %v", b.cfg, err)
		return []byte{}
	}
	return out
}

type LoaderConfigBuilder struct{ cfg config.LoaderConfig }

func NewLoaderConfig() *LoaderConfigBuilder {
	return &LoaderConfigBuilder{
		cfg: config.LoaderConfig{
			Type:     "file",
			Interval: 0,
			File: config.FileLoaderConfig{
				Path: "testdata/probes.yaml",
			},
		},
	}
}

func (b *LoaderConfigBuilder) WithInterval(i time.Duration) *LoaderConfigBuilder {
	b.cfg.Interval = i
	return b
}

func (b *LoaderConfigBuilder) FromFile(path string) *LoaderConfigBuilder {
	b.cfg.Type = "file"
	b.cfg.File.Path = path
	return b
}

func (b *LoaderConfigBuilder) FromHTTP(cfg config.HttpLoaderConfig) *LoaderConfigBuilder {
	if cfg.RetryCfg == (helper.RetryConfig{}) {
		cfg.RetryCfg = config.DefaultRetry
	}

	b.cfg.Type = "http"
	b.cfg.Http = cfg
	return b
}

func (b *LoaderConfigBuilder) Build() config.LoaderConfig {
	return b.cfg
}

func NewAPIConfig(address string) config.ApiConfig {
	return config.ApiConfig{ListeningAddress: address}
}
