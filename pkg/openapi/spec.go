package openapi

import (
	"encoding/json"
	"net/http"
)

// NewSpec creates an empty 3.1 spec with initialized paths and components.
func NewSpec(title, version string) *Spec {
	return &Spec{
		OpenAPI: "3.1.0",
		Info: &Info{
			Title:   title,
			Version: version,
		},
		Paths: make(map[string]*PathItem),
		Components: &Components{
			Schemas:   make(map[string]*Schema),
			Responses: make(map[string]*Response),
		},
	}
}

func (s *Spec) SetDescription(desc string) {
	s.Info.Description = desc
}

func (s *Spec) AddServer(url string) {
	if url == "" {
		return
	}
	s.Servers = append(s.Servers, &Server{URL: url})
}

// AddSchema registers a reusable schema under components/schemas.
func (s *Spec) AddSchema(name string, schema *Schema) {
	if s.Components == nil {
		s.Components = &Components{}
	}
	if s.Components.Schemas == nil {
		s.Components.Schemas = make(map[string]*Schema)
	}
	s.Components.Schemas[name] = schema
}

// AddResponse registers a reusable response under components/responses.
func (s *Spec) AddResponse(name string, resp *Response) {
	if s.Components == nil {
		s.Components = &Components{}
	}
	if s.Components.Responses == nil {
		s.Components.Responses = make(map[string]*Response)
	}
	s.Components.Responses[name] = resp
}

// AddSecurityScheme registers an authentication scheme under components/securitySchemes.
func (s *Spec) AddSecurityScheme(name string, scheme *SecurityScheme) {
	if s.Components == nil {
		s.Components = &Components{}
	}
	if s.Components.SecuritySchemes == nil {
		s.Components.SecuritySchemes = make(map[string]*SecurityScheme)
	}
	s.Components.SecuritySchemes[name] = scheme
}

// AddOperation sets op on the path item for method. Unsupported methods are ignored.
func (s *Spec) AddOperation(path, method string, op *Operation) {
	if s.Paths[path] == nil {
		s.Paths[path] = &PathItem{}
	}

	switch method {
	case http.MethodGet:
		s.Paths[path].Get = op
	case http.MethodPost:
		s.Paths[path].Post = op
	case http.MethodPut:
		s.Paths[path].Put = op
	case http.MethodDelete:
		s.Paths[path].Delete = op
	}
}

// MarshalJSON encodes the spec as indented JSON.
func MarshalJSON(spec *Spec) ([]byte, error) {
	return json.MarshalIndent(spec, "", "  ")
}

// ServeSpec returns a handler that writes pre-rendered spec bytes.
func ServeSpec(spec []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(spec)
	}
}
