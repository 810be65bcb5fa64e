package canary

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/caas-team/canary/internal/logger"
	"github.com/caas-team/canary/pkg/canary/metrics"
	"github.com/caas-team/canary/pkg/config"
	"github.com/caas-team/canary/pkg/db"
	"github.com/caas-team/canary/pkg/factory"
	"github.com/caas-team/canary/pkg/probes"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"
)

func newTestCanary(t *testing.T) *Canary {
	t.Helper()
	p, err := newPools(config.NewConfig().Pool)
	if err != nil {
		t.Fatalf("newPools() error = %v", err)
	}
	m := metrics.New(metrics.Config{Exporter: metrics.NOOP}, "test")
	dbase := db.NewInMemory()
	return &Canary{
		cfg:        config.NewConfig(),
		db:         dbase,
		metrics:    m,
		pools:      p,
		controller: NewProbesController(dbase, m, factory.Deps{PoolStats: p}),
	}
}

func chiRequest(r *http.Request, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(urlParamProbeName, value)

	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func testDb() *db.InMemory {
	d := db.NewInMemory()
	d.Save(probes.ResultDTO{Name: "memory", Result: &probes.Result{Status: probes.StatusDegraded, Description: "Memory usage is degraded", Timestamp: time.Now().UTC()}})
	d.Save(probes.ResultDTO{Name: "certificate", Result: &probes.Result{Status: probes.StatusHealthy, Description: "All certificates are healthy", Timestamp: time.Now().UTC()}})

	return d
}

func TestCanary_getOpenapi(t *testing.T) {
	ctx, cancel := logger.NewContextWithLogger(context.Background())
	defer cancel()

	c := newTestCanary(t)
	c.controller.RegisterProbe(ctx, newStubProbe("memory", probes.Result{}), probes.DefaultRegistration("memory"), nil)

	tests := []struct {
		name    string
		accept  string
		decoder func(*httptest.ResponseRecorder) error
	}{
		{name: "yaml is default", decoder: func(rr *httptest.ResponseRecorder) error {
			return yaml.Unmarshal(rr.Body.Bytes(), &openapi3.T{})
		}},
		{name: "set json via accept header", accept: "application/json", decoder: func(rr *httptest.ResponseRecorder) error {
			return json.Unmarshal(rr.Body.Bytes(), &openapi3.T{})
		}},
		{name: "set yaml via accept header", accept: "text/yaml", decoder: func(rr *httptest.ResponseRecorder) error {
			return yaml.Unmarshal(rr.Body.Bytes(), &openapi3.T{})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/openapi", http.NoBody)
			if tt.accept != "" {
				r.Header.Add("Accept", tt.accept)
			}
			rr := httptest.NewRecorder()

			c.getOpenapi(rr, r)

			if err := tt.decoder(rr); err != nil {
				t.Errorf("Failed to decode response: %v", err)
			}
			if rr.Code != http.StatusOK {
				t.Errorf("getOpenapi() = %v, want %v", rr.Code, http.StatusOK)
			}
		})
	}
}

func TestCanary_getProbeStatus(t *testing.T) {
	tests := []struct {
		name     string
		db       db.DB
		probe    string
		wantCode int
	}{
		{name: "no data", db: db.NewInMemory(), probe: "memory", wantCode: http.StatusNotFound},
		{name: "bad request", db: db.NewInMemory(), probe: "", wantCode: http.StatusBadRequest},
		{name: "has data", db: testDb(), probe: "memory", wantCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCanary(t)
			c.db = tt.db

			rr := httptest.NewRecorder()
			r := chiRequest(httptest.NewRequest(http.MethodGet, "/v1/status/"+tt.probe, http.NoBody), tt.probe)

			c.getProbeStatus(rr, r)

			if rr.Code != tt.wantCode {
				t.Errorf("getProbeStatus() = %v, want %v", rr.Code, tt.wantCode)
			}
			if tt.wantCode == http.StatusOK {
				var got probes.Result
				if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
					t.Fatalf("Expected valid json: %v", err)
				}
				assert.Equal(t, probes.StatusDegraded, got.Status)
				assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			}
		})
	}
}

func TestCanary_getStatusList(t *testing.T) {
	c := newTestCanary(t)
	c.db = testDb()

	rr := httptest.NewRecorder()
	c.getStatusList(rr, httptest.NewRequest(http.MethodGet, "/v1/status", http.NoBody))

	if rr.Code != http.StatusOK {
		t.Fatalf("getStatusList() = %v, want %v", rr.Code, http.StatusOK)
	}

	var got map[string]probes.Result
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("Expected valid json: %v", err)
	}
	assert.Len(t, got, 2)
	assert.Equal(t, probes.StatusDegraded, got["memory"].Status)
	assert.Equal(t, probes.StatusHealthy, got["certificate"].Status)
}

func TestCanary_getHealth(t *testing.T) {
	ctx, cancel := logger.NewContextWithLogger(context.Background())
	defer cancel()

	tests := []struct {
		name       string
		results    map[string]probes.Result
		checkErr   error
		wantCode   int
		wantStatus probes.Status
	}{
		{
			name: "all healthy",
			results: map[string]probes.Result{
				"memory":      {Status: probes.StatusHealthy},
				"certificate": {Status: probes.StatusHealthy},
			},
			wantCode:   http.StatusOK,
			wantStatus: probes.StatusHealthy,
		},
		{
			name: "degraded probe degrades the aggregate",
			results: map[string]probes.Result{
				"memory":      {Status: probes.StatusDegraded},
				"certificate": {Status: probes.StatusHealthy},
			},
			wantCode:   http.StatusOK,
			wantStatus: probes.StatusDegraded,
		},
		{
			name: "unhealthy probe makes the aggregate unhealthy",
			results: map[string]probes.Result{
				"memory":      {Status: probes.StatusHealthy},
				"certificate": {Status: probes.StatusUnhealthy},
			},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: probes.StatusUnhealthy,
		},
		{
			name:     "programmer fault",
			results:  map[string]probes.Result{"memory": {Status: probes.StatusHealthy}},
			checkErr: errors.New("nil context passed to probe"),
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCanary(t)
			for name, res := range tt.results {
				p := newStubProbe(name, res)
				p.checkErr = tt.checkErr
				c.controller.RegisterProbe(ctx, p, probes.DefaultRegistration(name), nil)
			}

			rr := httptest.NewRecorder()
			c.getHealth(rr, httptest.NewRequest(http.MethodGet, "/v1/health", http.NoBody))

			if rr.Code != tt.wantCode {
				t.Errorf("getHealth() = %v, want %v", rr.Code, tt.wantCode)
			}
			if tt.wantCode == http.StatusInternalServerError {
				return
			}

			var got healthReport
			if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
				t.Fatalf("Expected valid json: %v", err)
			}
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Len(t, got.Probes, len(tt.results))
		})
	}
}

func TestCanary_getHealthz(t *testing.T) {
	c := newTestCanary(t)

	rr := httptest.NewRecorder()
	c.getHealthz(rr, httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody))

	if rr.Code != http.StatusOK {
		t.Errorf("getHealthz() = %v, want %v", rr.Code, http.StatusOK)
	}
	if rr.Body.String() != "ok" {
		t.Errorf("getHealthz() body = %q, want %q", rr.Body.String(), "ok")
	}
}

func TestCanary_routes(t *testing.T) {
	c := newTestCanary(t)

	var paths []string
	for _, route := range c.routes() {
		paths = append(paths, route.Path)
	}

	assert.ElementsMatch(t, []string{
		"/openapi",
		"/v1/status",
		"/v1/status/{probeName}",
		"/v1/health",
		"/healthz",
		"/metrics",
	}, paths)
}
