package main

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/qpdf-utils/internal/api"
	"github.com/JaimeStill/qpdf-utils/internal/config"
	"github.com/JaimeStill/qpdf-utils/pkg/lifecycle"
	"github.com/JaimeStill/qpdf-utils/pkg/openapi"
	"github.com/JaimeStill/qpdf-utils/pkg/routes"
)

// registerRoutes configures all HTTP routes for the service, then publishes the
// OpenAPI specification generated from them.
func registerRoutes(r routes.System, lc *lifecycle.Coordinator, pdf *api.Handler, cfg *config.Config) error {
	r.RegisterGroup(routes.Group{
		Prefix:      "/api",
		Description: "qpdf-utils API",
		Children:    []routes.Group{pdf.Routes()},
	})

	r.RegisterRoute(routes.Route{
		Method:  "GET",
		Pattern: "/healthz",
		Handler: handleHealthCheck,
		OpenAPI: &openapi.Operation{
			Summary: "Health check endpoint",
			Tags:    []string{"Infrastructure"},
			Responses: map[int]*openapi.Response{
				200: {Description: "Service is healthy"},
			},
		},
	})

	r.RegisterRoute(routes.Route{
		Method:  "GET",
		Pattern: "/readyz",
		Handler: func(w http.ResponseWriter, r *http.Request) {
			handleReadinessCheck(w, lc)
		},
		OpenAPI: &openapi.Operation{
			Summary: "Readiness check endpoint",
			Tags:    []string{"Infrastructure"},
			Responses: map[int]*openapi.Response{
				200: {Description: "Service is ready"},
				503: {Description: "Service not ready"},
			},
		},
	})

	spec := openapi.NewSpec(&cfg.OpenAPI)
	spec.Components.AddSchemas(api.Schemas)
	r.Describe(spec)

	specBytes, err := openapi.MarshalJSON(spec)
	if err != nil {
		return fmt.Errorf("marshal openapi spec: %w", err)
	}

	r.RegisterRoute(routes.Route{
		Method:  "GET",
		Pattern: "/api/openapi.json",
		Handler: openapi.ServeSpec(specBytes),
	})

	return nil
}

// handleHealthCheck responds with OK status for health monitoring.
func handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func handleReadinessCheck(w http.ResponseWriter, lc *lifecycle.Coordinator) {
	if !lc.Ready() {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("NOT READY"))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("READY"))
}
