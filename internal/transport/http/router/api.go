package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"marketplace-admin/internal/core/auth"
	"marketplace-admin/internal/core/cache"
	"marketplace-admin/internal/core/server"
	"marketplace-admin/internal/domain"
	"marketplace-admin/internal/store"
	httpez "marketplace-admin/internal/transport/http/ez"
	"marketplace-admin/internal/transport/http/handler"
	mdw "marketplace-admin/internal/transport/http/middleware"
	resp "marketplace-admin/internal/transport/http/response"
)

type Deps struct {
	Log       *zap.Logger
	Store     store.Store
	JWT       *auth.JWTer
	Cache     *cache.Cache // nil disables caching
	Server    server.Options
	Resources []*domain.Resource // defaults to domain.Catalog()
	Now       func() time.Time
}

// resourceModule mounts the generic admin CRUD routes of one resource.
type resourceModule struct{ cfg httpez.CrudConfig }

func (m resourceModule) Mount(g *gin.RouterGroup) {
	cfg := m.cfg
	cfg.Group = g
	httpez.Crud(cfg)
}

type bannerModule struct{ h *handler.Banner }

func (m bannerModule) Mount(g *gin.RouterGroup) { m.h.MountAdmin(g) }
func (bannerModule) Priority() int              { return 10 }

func NewAPIEngine(d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Resources == nil {
		d.Resources = domain.Catalog()
	}

	r := server.NewRouter(d.Log, d.Server)

	r.GET("/", func(c *gin.Context) { c.JSON(http.StatusOK, resp.Msg("marketplace admin server is running")) })
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	public := r.Group("")
	(&handler.Auth{JWT: d.JWT, Log: d.Log}).Mount(public)

	banner := &handler.Banner{Store: d.Store, Cache: d.Cache, Log: d.Log}
	banner.MountPublic(public)

	reg := NewRegistry()
	reg.Register(bannerModule{h: banner})
	for _, res := range d.Resources {
		cfg := httpez.CrudConfig{Store: d.Store, Resource: res, Log: d.Log, Now: d.Now}
		if res.Name == domain.Banner().Name {
			cfg.Hooks = banner.Hooks()
		}
		reg.Register(resourceModule{cfg: cfg})
	}

	authed := r.Group("")
	authed.Use(mdw.AuthJWT(d.JWT))
	reg.MountAll(authed)

	d.Log.Info("routes mounted", zap.Int("modules", reg.Len()), zap.Int("routes", len(r.Routes())))
	return r
}
