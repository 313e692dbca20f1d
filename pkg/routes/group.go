package routes

import (
	"net/http"

	"github.com/JaimeStill/docroute/pkg/middleware"
)

// Group organizes routes under a common prefix. Middleware applies to the
// group's routes and to all children.
type Group struct {
	Prefix     string
	Routes     []Route
	Children   []Group
	Middleware []middleware.Func
}

// Register adds all routes from the given groups to the mux.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, group := range groups {
		registerGroup(mux, "", nil, group)
	}
}

func registerGroup(mux *http.ServeMux, parentPrefix string, inherited []middleware.Func, group Group) {
	fullPrefix := parentPrefix + group.Prefix
	chain := append(append([]middleware.Func{}, inherited...), group.Middleware...)

	for _, route := range group.Routes {
		pattern := route.Method + " " + fullPrefix + route.Pattern
		mux.Handle(pattern, middleware.Chain(route.Handler, chain...))
	}
	for _, child := range group.Children {
		registerGroup(mux, fullPrefix, chain, child)
	}
}
