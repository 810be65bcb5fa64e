package canary

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/caas-team/canary/internal/logger"
	"github.com/caas-team/canary/pkg/api"
	"github.com/caas-team/canary/pkg/probes"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

type encoder interface {
	Encode(v any) error
}

const urlParamProbeName = "probeName"

// routes are the endpoints the agent serves.
func (c *Canary) routes() []api.Route {
	return []api.Route{
		{Path: "/openapi", Method: http.MethodGet, Handler: c.getOpenapi},
		{Path: "/v1/status", Method: http.MethodGet, Handler: c.getStatusList},
		{Path: fmt.Sprintf("/v1/status/{%s}", urlParamProbeName), Method: http.MethodGet, Handler: c.getProbeStatus},
		{Path: "/v1/health", Method: http.MethodGet, Handler: c.getHealth},
		{Path: "/healthz", Method: http.MethodGet, Handler: c.getHealthz},
		{
			Path: "/metrics", Method: "Handle",
			Handler: promhttp.HandlerFor(
				c.metrics.GetRegistry(),
				promhttp.HandlerOpts{Registry: c.metrics.GetRegistry()},
			).ServeHTTP,
		},
	}
}

// getOpenapi serves the aggregated OpenAPI document of all registered
// probes. The Accept header selects json; anything else gets yaml.
func (c *Canary) getOpenapi(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	oapi, err := api.GenerateProbeSpecs(r.Context(), c.controller.Probes())
	if err != nil {
		log.Error("Failed to create openapi", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		_, err = w.Write([]byte(http.StatusText(http.StatusInternalServerError)))
		if err != nil {
			log.Error("Failed to write response", "error", err)
		}
		return
	}

	mime := r.Header.Get("Accept")

	var marshaler encoder
	switch mime {
	case "application/json":
		marshaler = json.NewEncoder(w)
		w.Header().Add("Content-Type", "application/json")
	default:
		marshaler = yaml.NewEncoder(w)
		w.Header().Add("Content-Type", "text/yaml")
	}

	err = marshaler.Encode(oapi)
	if err != nil {
		log.Error("Failed to marshal openapi", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		_, err = w.Write([]byte(http.StatusText(http.StatusInternalServerError)))
		if err != nil {
			log.Error("Failed to write response", "error", err)
		}
		return
	}
}

// getStatusList serves the latest stored result of every probe.
func (c *Canary) getStatusList(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	w.Header().Add("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(c.db.List()); err != nil {
		log.Error("Failed to encode response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		_, err = w.Write([]byte(http.StatusText(http.StatusInternalServerError)))
		if err != nil {
			log.Error("Failed to write response", "error", err)
		}
		return
	}
}

// getProbeStatus serves the latest stored result of a single probe.
// Unknown probes are answered with a 404.
func (c *Canary) getProbeStatus(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	name := chi.URLParam(r, urlParamProbeName)
	if name == "" {
		w.WriteHeader(http.StatusBadRequest)
		_, err := w.Write([]byte(http.StatusText(http.StatusBadRequest)))
		if err != nil {
			log.Error("Failed to write response", "error", err)
		}
		return
	}
	res, ok := c.db.Get(name)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte(http.StatusText(http.StatusNotFound)))
		if err != nil {
			log.Error("Failed to write response", "error", err)
		}
		return
	}

	w.Header().Add("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(res); err != nil {
		log.Error("Failed to encode response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		_, err = w.Write([]byte(http.StatusText(http.StatusInternalServerError)))
		if err != nil {
			log.Error("Failed to write response", "error", err)
		}
		return
	}
}

// healthReport is the response body of the health endpoint.
type healthReport struct {
	Status probes.Status            `json:"status"`
	Probes map[string]probes.Result `json:"probes"`
}

// getHealth runs every registered probe once and reports the results
// together with the aggregate, which is the worst status any probe
// reported. Unhealthy maps to a 503 so load balancers can act on the
// status code alone.
func (c *Canary) getHealth(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	entries := c.controller.entries()
	var mu sync.Mutex
	report := healthReport{
		Status: probes.StatusHealthy,
		Probes: make(map[string]probes.Result, len(entries)),
	}

	g, ctx := errgroup.WithContext(r.Context())
	for name, entry := range entries {
		name, entry := name, entry
		g.Go(func() error {
			res, err := entry.probe.CheckHealth(ctx, entry.reg)
			if err != nil {
				return fmt.Errorf("probe %s: %w", name, err)
			}
			mu.Lock()
			defer mu.Unlock()
			report.Probes[name] = res
			report.Status = probes.Worst(report.Status, res.Status)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error("Failed to run health checks", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		_, err = w.Write([]byte(http.StatusText(http.StatusInternalServerError)))
		if err != nil {
			log.Error("Failed to write response", "error", err)
		}
		return
	}

	w.Header().Add("Content-Type", "application/json")
	if report.Status == probes.StatusUnhealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}

// getHealthz answers the liveness check. Serving at all is the signal.
func (c *Canary) getHealthz(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	w.WriteHeader(http.StatusOK)
	_, err := w.Write([]byte("ok"))
	if err != nil {
		log.Error("Failed to write response", "error", err)
	}
}
