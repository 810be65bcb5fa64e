package helper

import (
	"context"
	"math"
	"time"

	"github.com/caas-team/canary/internal/logger"
)

type RetryConfig struct {
	Count int           `yaml:"count" mapstructure:"count"`
	Delay time.Duration `yaml:"delay" mapstructure:"delay"`
}

// Effector will be the function that is called by the Retry function
type Effector func(context.Context) error

// Retry retries the effector function with an exponential backoff
func Retry(effector Effector, rc RetryConfig) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		log := logger.FromContext(ctx)
		for r := 1; ; r++ {
			err := effector(ctx)
			if err == nil || r > rc.Count {
				return err
			}

			delay := getExpBackoff(rc.Delay, r)
			log.Debug("Effector call failed, retrying", "delay", delay, "attempt", r)

			timer := time.NewTimer(delay)
			defer timer.Stop()

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
}

// calculate the exponential delay for a given iteration
// first iteration is 1
func getExpBackoff(initialDelay time.Duration, iteration int) time.Duration {
	if iteration <= 1 {
		return initialDelay
	}
	return time.Duration(math.Pow(2, float64(iteration-1))) * initialDelay
}
