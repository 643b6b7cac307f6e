package router

import (
	"sort"

	"github.com/gin-gonic/gin"
)

// Module mounts a set of routes on the authenticated group.
type Module interface{ Mount(*gin.RouterGroup) }

// Implementing prioritizer controls mount order (lower first); the default is 100.
type prioritizer interface{ Priority() int }

// Registry collects modules for one engine. Each engine builds its own, so
// tests can assemble engines side by side.
type Registry struct {
	mods []Module
}

func NewRegistry() *Registry { return &Registry{} }

func (r *Registry) Register(mods ...Module) {
	r.mods = append(r.mods, mods...)
}

func (r *Registry) Len() int { return len(r.mods) }

func (r *Registry) MountAll(g *gin.RouterGroup) {
	mods := append([]Module(nil), r.mods...)
	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	for _, m := range mods {
		m.Mount(g)
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
