package config

import (
	"context"
	"fmt"

	"github.com/caas-team/canary/pkg/probes/runtime"
)

// Loader delivers the runtime configuration of the agent
// on the runtime channel
type Loader interface {
	// Run starts the loader. It blocks until the context is done,
	// the loader is shut down, or a run-once loader has delivered.
	Run(context.Context) error
	// Shutdown stops a running loader
	Shutdown(context.Context)
}

// NewLoader creates a loader of the configured type
func NewLoader(cfg *Config, cRuntime chan<- runtime.Config) (Loader, error) {
	switch cfg.Loader.Type {
	case "file":
		return NewFileLoader(cfg, cRuntime), nil
	case "http":
		return NewHttpLoader(cfg, cRuntime), nil
	case "git":
		return NewGitLoader(cfg, cRuntime), nil
	default:
		return nil, fmt.Errorf("unknown loader type %q", cfg.Loader.Type)
	}
}
