package core

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const healthCheckTimeout = 2 * time.Second

type componentStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type healthResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components,omitempty"`
}

// HandleHealth runs every probe concurrently under a 2s deadline. Any
// failing or unfinished probe yields 503.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if len(s.HealthProbes) == 0 {
		JSON(w, r, http.StatusOK, healthResponse{Status: "healthy"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	type probeResult struct {
		name string
		err  error
	}
	results := make(chan probeResult, len(s.HealthProbes))
	for _, p := range s.HealthProbes {
		go func(p HealthProbe) {
			var err error
			func() {
				defer func() {
					if rvr := recover(); rvr != nil {
						err = fmt.Errorf("probe panicked: %v", rvr)
					}
				}()
				err = p.Check(ctx)
			}()
			results <- probeResult{name: p.Name(), err: err}
		}(p)
	}

	components := make(map[string]componentStatus, len(s.HealthProbes))
	healthy := true
collect:
	for range s.HealthProbes {
		select {
		case res := <-results:
			if res.err != nil {
				healthy = false
				components[res.name] = componentStatus{Status: "unhealthy", Message: res.err.Error()}
			} else {
				components[res.name] = componentStatus{Status: "healthy"}
			}
		case <-ctx.Done():
			break collect
		}
	}

	for _, p := range s.HealthProbes {
		if _, ok := components[p.Name()]; !ok {
			healthy = false
			components[p.Name()] = componentStatus{Status: "unhealthy", Message: "health check timed out"}
		}
	}

	if healthy {
		JSON(w, r, http.StatusOK, healthResponse{Status: "healthy", Components: components})
		return
	}
	JSON(w, r, http.StatusServiceUnavailable, healthResponse{Status: "unhealthy", Components: components})
}
