// Package router mounts the barcode and print route groups under a
// versioned /api prefix.
package router

import (
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
)

// RouteRegistrar mounts its routes on the versioned API group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router mounts registrars under /api/<version>
type Router struct {
	engine     *gin.Engine
	apiVersion string
	middleware []gin.HandlerFunc
	registrars []RouteRegistrar
}

// RouterOption configures a Router
type RouterOption func(*Router)

// WithAPIVersion sets the version segment, "v1" by default
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) { r.apiVersion = version }
}

// WithAPIMiddleware adds middleware that runs for every /api route but not
// for engine-level routes such as /health
func WithAPIMiddleware(middleware ...gin.HandlerFunc) RouterOption {
	return func(r *Router) { r.middleware = append(r.middleware, middleware...) }
}

func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, apiVersion: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register queues a registrar for Setup
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

func (r *Router) BasePath() string {
	return "/api/" + r.apiVersion
}

// Setup mounts every registered group on the engine
func (r *Router) Setup() {
	api := r.engine.Group(r.BasePath(), r.middleware...)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// RouteInfo describes one registered route
type RouteInfo struct {
	Group  string
	Method string
	Path   string
}

// Routes lists the routes of every registered DomainGroup with their full
// paths, in registration order
func (r *Router) Routes() []RouteInfo {
	var out []RouteInfo
	for _, registrar := range r.registrars {
		if dg, ok := registrar.(*DomainGroup); ok {
			out = dg.appendRoutes(out, r.BasePath())
		}
	}
	return out
}

// DomainGroup collects the routes of one resource before they are mounted
type DomainGroup struct {
	name      string
	prefix    string
	routes    []route
	subgroups []*DomainGroup
}

type route struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

func (dg *DomainGroup) Handle(method, path string, handlers ...gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, route{method: method, path: path, handlers: handlers})
	return dg
}

func (dg *DomainGroup) GET(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodGet, path, handlers...)
}

func (dg *DomainGroup) POST(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPost, path, handlers...)
}

func (dg *DomainGroup) PATCH(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPatch, path, handlers...)
}

func (dg *DomainGroup) DELETE(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodDelete, path, handlers...)
}

// Group nests a sub-group under this group's prefix
func (dg *DomainGroup) Group(name, prefix string) *DomainGroup {
	sub := NewDomainGroup(dg.name+"."+name, prefix)
	dg.subgroups = append(dg.subgroups, sub)
	return sub
}

// RegisterRoutes implements RouteRegistrar
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix)
	for _, rt := range dg.routes {
		group.Handle(rt.method, rt.path, rt.handlers...)
	}
	for _, sub := range dg.subgroups {
		sub.RegisterRoutes(group)
	}
}

func (dg *DomainGroup) appendRoutes(out []RouteInfo, base string) []RouteInfo {
	prefix := joinPath(base, dg.prefix)
	for _, rt := range dg.routes {
		out = append(out, RouteInfo{Group: dg.name, Method: rt.method, Path: joinPath(prefix, rt.path)})
	}
	for _, sub := range dg.subgroups {
		out = sub.appendRoutes(out, prefix)
	}
	return out
}

// joinPath joins like gin does: a trailing slash on relative is kept
func joinPath(base, relative string) string {
	if relative == "" {
		return base
	}
	joined := path.Join(base, relative)
	if relative[len(relative)-1] == '/' && joined[len(joined)-1] != '/' {
		return joined + "/"
	}
	return joined
}
