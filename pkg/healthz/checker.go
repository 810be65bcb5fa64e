package healthz

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/caas-team/canary/internal/httpclient"
	"github.com/caas-team/canary/internal/logger"
)

type Checker interface {
	// IsHealthy reports whether the agent at the configured address is serving
	IsHealthy(ctx context.Context) bool
}

// checker is used to check the health of a running agent's endpoints
type checker struct {
	addr string
}

// New creates a new healthz checker
// address is the listening address of the agent's API
func New(address string) Checker {
	return &checker{
		addr: formatAddress(address),
	}
}

// IsHealthy checks the agent's liveness endpoint. The http client is
// taken from the context.
func (c *checker) IsHealthy(ctx context.Context) bool {
	log := logger.FromContext(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("http://%s/healthz", c.addr), http.NoBody)
	if err != nil {
		log.Error("Failed to create request", "error", err)
		return false
	}

	resp, err := httpclient.FromContext(ctx).Do(req) //nolint:bodyclose // closed in defer
	if err != nil {
		log.Error("Failed to send request", "error", err)
		return false
	}
	defer func(b io.ReadCloser) {
		err = b.Close()
		if err != nil {
			log.Error("Failed to close response body", "error", err)
		}
	}(resp.Body)

	return resp.StatusCode == http.StatusOK
}

// formatAddress formats the address to be used in the healthz checker
func formatAddress(addr string) string {
	// Localhost is a special case, since it's the only address that doesn't need to be formatted
	if addr == "localhost" || addr == "127.0.0.1" || addr == net.IPv6loopback.String() {
		return addr
	}

	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return net.JoinHostPort("localhost", "8080")
	}

	return net.JoinHostPort("localhost", port)
}
