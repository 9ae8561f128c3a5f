package routes

import (
	"net/http"

	"github.com/JaimeStill/worksheet-lab/pkg/openapi"
)

// Group represents a collection of routes under a common URL prefix.
// Groups can contain child groups for hierarchical route organization.
type Group struct {
	Prefix      string
	Tags        []string
	Description string
	Routes      []Route
	Children    []Group
	Schemas     map[string]*openapi.Schema
}

// Route represents an HTTP route with method, pattern, handler, and optional OpenAPI operation.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
	OpenAPI *openapi.Operation
}

// AddToSpec adds the group's operations and schemas to spec. Paths are
// prefixed with basePath. Operations without tags inherit the group tags.
func (g Group) AddToSpec(basePath string, spec *openapi.Spec) {
	g.addToSpec(basePath, spec)
}

func (g Group) addToSpec(parentPrefix string, spec *openapi.Spec) {
	fullPrefix := parentPrefix + g.Prefix

	for name, schema := range g.Schemas {
		spec.AddSchema(name, schema)
	}

	for _, route := range g.Routes {
		if route.OpenAPI == nil {
			continue
		}

		op := route.OpenAPI
		if len(op.Tags) == 0 {
			op.Tags = g.Tags
		}

		spec.AddOperation(fullPrefix+route.Pattern, route.Method, op)
	}

	for _, child := range g.Children {
		child.addToSpec(fullPrefix, spec)
	}
}
