package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"marketplace-admin/internal/core/cache"
	"marketplace-admin/internal/domain"
	"marketplace-admin/internal/store"
	httpez "marketplace-admin/internal/transport/http/ez"
	mdw "marketplace-admin/internal/transport/http/middleware"
)

const (
	bannerTTL        = 5 * time.Minute
	keyDefaultBanner = "banner:default"
	keyBannerType    = "banner:type:"
)

// Banner keeps at most one default banner and serves the storefront reads.
type Banner struct {
	Store store.Store
	Cache *cache.Cache
	Log   *zap.Logger
}

func (h *Banner) coll() store.Collection {
	return h.Store.Collection(domain.Banner().Collection)
}

func opposite(typ string) string {
	if typ == "image" {
		return "video"
	}
	return "image"
}

// clearDefaults unsets default on every other banner of typ or the opposite
// type. The clear and the following write are separate store calls; two
// concurrent writers can leave zero or two defaults until the next write.
func (h *Banner) clearDefaults(ctx context.Context, self primitive.ObjectID, typ string) error {
	r, err := h.coll().UpdateMany(ctx, bson.M{
		"_id":     bson.M{"$ne": self},
		"type":    bson.M{"$in": bson.A{typ, opposite(typ)}},
		"default": true,
	}, bson.M{"default": false})
	if err != nil {
		return httpez.Internal("Error updating banner defaults", err)
	}
	if r.ModifiedCount > 0 {
		h.Log.Info("banner defaults cleared", zap.String("type", typ), zap.Int64("count", r.ModifiedCount))
		// the write that follows may still fail
		h.invalidate(ctx)
	}
	return nil
}

func (h *Banner) invalidate(ctx context.Context) {
	err := h.Cache.Delete(ctx, keyDefaultBanner, keyBannerType+"image", keyBannerType+"video")
	if err != nil {
		h.Log.Warn("banner cache invalidation failed", zap.Error(err))
		return
	}
	h.Log.Debug("banner cache invalidated")
}

// Hooks wire the default-banner rule into the generic CRUD routes.
func (h *Banner) Hooks() httpez.CrudHooks {
	return httpez.CrudHooks{
		BeforeCreate: func(c *gin.Context, doc store.Document) error {
			if doc["default"] != true {
				return nil
			}
			typ, _ := doc["type"].(string)
			id, _ := doc["_id"].(primitive.ObjectID)
			return h.clearDefaults(c.Request.Context(), id, typ)
		},
		BeforeUpdate: func(c *gin.Context, id primitive.ObjectID, set bson.M) error {
			if set["default"] != true {
				return nil
			}
			typ, _ := set["type"].(string)
			if typ == "" {
				cur, err := h.coll().FindOne(c.Request.Context(), bson.M{"_id": id})
				if errors.Is(err, store.ErrNotFound) {
					return httpez.BadRequest("type is required to make a new banner the default")
				}
				if err != nil {
					return httpez.Internal("Error updating banner", err)
				}
				typ, _ = cur["type"].(string)
			}
			return h.clearDefaults(c.Request.Context(), id, typ)
		},
		AfterWrite: func(c *gin.Context) {
			h.invalidate(c.Request.Context())
		},
	}
}

type defaultBannerQuery struct {
	Type  string `form:"type" binding:"required,oneof=image video"`
	Email string `form:"email"`
}

// MountAdmin registers GET /admin-default-banner on an authenticated group.
func (h *Banner) MountAdmin(g *gin.RouterGroup) {
	httpez.RegisterAction(httpez.New(g), httpez.Action[defaultBannerQuery, store.Document]{
		Method:     http.MethodGet,
		Path:       "/admin-default-banner",
		Binder:     httpez.BindQuery,
		Middleware: []gin.HandlerFunc{mdw.Ownership(mdw.FromQuery)},
		Handler: func(c *gin.Context, in *defaultBannerQuery) (store.Document, error) {
			doc, err := h.coll().FindOne(c.Request.Context(), bson.M{"type": in.Type, "default": true})
			if errors.Is(err, store.ErrNotFound) {
				return nil, httpez.NotFound("No default banner found")
			}
			if err != nil {
				return nil, httpez.Internal("Error fetching banner", err)
			}
			return doc, nil
		},
	})
}

// MountPublic registers the storefront reads. They answer 204 when no
// banner matches.
func (h *Banner) MountPublic(g *gin.RouterGroup) {
	g.GET("/banner", func(c *gin.Context) {
		h.serve(c, keyDefaultBanner, bson.M{"default": true})
	})
	g.GET("/banner/:type", func(c *gin.Context) {
		typ := c.Param("type")
		if typ != "image" && typ != "video" {
			httpez.Fail(c, httpez.BadRequest("type must be one of image, video"))
			return
		}
		h.serve(c, keyBannerType+typ, bson.M{"type": typ})
	})
}

func (h *Banner) serve(c *gin.Context, key string, filter bson.M) {
	doc, err := cache.GetOrLoadJSON(h.Cache, c.Request.Context(), key, bannerTTL,
		func(ctx context.Context) (*store.Document, error) {
			docs, err := h.coll().Find(ctx, filter, store.FindOptions{
				Sort:  []store.SortField{{Field: "createdAt", Desc: true}},
				Limit: 1,
			})
			if err != nil || len(docs) == 0 {
				return nil, err
			}
			return &docs[0], nil
		})
	if err != nil {
		httpez.Fail(c, httpez.Internal("Error fetching banner", err))
		return
	}
	if doc == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, doc)
}
