// Package routes registers route groups on a ServeMux and documents them in an OpenAPI spec.
package routes

import (
	"net/http"

	"github.com/JaimeStill/worksheet-lab/pkg/openapi"
)

// Register mounts every group on mux and adds it to spec. Mux patterns are
// relative to the module mount point; spec paths include basePath.
func Register(mux *http.ServeMux, basePath string, spec *openapi.Spec, groups ...Group) {
	for _, group := range groups {
		registerGroup(mux, "", group)
		group.AddToSpec(basePath, spec)
	}
}

func registerGroup(mux *http.ServeMux, parentPrefix string, group Group) {
	fullPrefix := parentPrefix + group.Prefix
	for _, route := range group.Routes {
		mux.HandleFunc(route.Method+" "+fullPrefix+route.Pattern, route.Handler)
	}
	for _, child := range group.Children {
		registerGroup(mux, fullPrefix, child)
	}
}
