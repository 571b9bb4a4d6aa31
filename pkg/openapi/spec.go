package openapi

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Version is the OpenAPI specification version produced by NewSpec.
const Version = "3.1.0"

// NewSpec creates an empty specification with shared components.
func NewSpec(cfg *Config) *Spec {
	return &Spec{
		OpenAPI: Version,
		Info: &Info{
			Title:       cfg.Title,
			Version:     cfg.Version,
			Description: cfg.Description,
		},
		Paths:      make(map[string]*PathItem),
		Components: NewComponents(),
	}
}

// NewComponents returns the error schema and the error responses shared by every handler.
func NewComponents() *Components {
	errorResponse := func(description string) *Response {
		return ResponseJSON(description, "Error")
	}

	return &Components{
		Schemas: map[string]*Schema{
			"Error": {
				Type: "object",
				Properties: map[string]*Schema{
					"error": {Type: "string", Description: "Error message"},
				},
				Required: []string{"error"},
			},
		},
		Responses: map[string]*Response{
			"BadRequest":      errorResponse("Invalid request or document"),
			"Forbidden":       errorResponse("Invalid or missing password"),
			"TooLarge":        errorResponse("Upload or document exceeds the size limit"),
			"ProcessingError": errorResponse("The engine failed to process the document"),
		},
	}
}

// AddSchemas registers additional component schemas.
func (c *Components) AddSchemas(schemas map[string]*Schema) {
	for name, schema := range schemas {
		c.Schemas[name] = schema
	}
}

// AddOperation records op under path for the given HTTP method.
// Methods other than GET and POST are ignored.
func (s *Spec) AddOperation(method, path string, op *Operation) {
	item, ok := s.Paths[path]
	if !ok {
		item = &PathItem{}
		s.Paths[path] = item
	}

	switch strings.ToUpper(method) {
	case http.MethodGet:
		item.Get = op
	case http.MethodPost:
		item.Post = op
	}
}

// MarshalJSON encodes the specification as indented JSON.
func MarshalJSON(spec *Spec) ([]byte, error) {
	return json.MarshalIndent(spec, "", "  ")
}

// ServeSpec returns a handler that serves the encoded specification.
func ServeSpec(spec []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(spec)
	}
}
