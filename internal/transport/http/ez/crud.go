package ez

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"marketplace-admin/internal/domain"
	"marketplace-admin/internal/query"
	"marketplace-admin/internal/store"
	mdw "marketplace-admin/internal/transport/http/middleware"
	resp "marketplace-admin/internal/transport/http/response"
)

// CrudHooks run inside the write handlers. Returning an error aborts the
// request; AErr values keep their status, anything else becomes a 500.
type CrudHooks struct {
	BeforeCreate func(c *gin.Context, doc store.Document) error
	BeforeUpdate func(c *gin.Context, id primitive.ObjectID, set bson.M) error
	AfterWrite   func(c *gin.Context)
}

type CrudConfig struct {
	Group    *gin.RouterGroup // already behind AuthJWT
	Store    store.Store
	Resource *domain.Resource
	Hooks    CrudHooks
	Log      *zap.Logger
	Now      func() time.Time

	AllowCreate bool
	AllowList   bool
	AllowGet    bool
	AllowUpdate bool
	AllowDelete bool
}

type idQuery struct {
	ID    string `form:"id" binding:"required,objectid"`
	Email string `form:"email"`
}

type createBody struct {
	Email string         `json:"email"`
	Data  map[string]any `json:"data" binding:"required"`
}

type updateBody struct {
	ID    string         `json:"_id" binding:"required,objectid"`
	Email string         `json:"email"`
	Data  map[string]any `json:"data" binding:"required"`
}

// Crud mounts /admin-{all,get,create,update,delete}-<name> for one resource.
// Every route checks the caller's email against the token before touching
// the store.
func Crud(cfg CrudConfig) {
	if !cfg.AllowCreate && !cfg.AllowGet && !cfg.AllowList && !cfg.AllowUpdate && !cfg.AllowDelete {
		cfg.AllowCreate, cfg.AllowList, cfg.AllowGet, cfg.AllowUpdate, cfg.AllowDelete = true, true, true, true, true
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}

	res := cfg.Resource
	coll := cfg.Store.Collection(res.Collection)
	name := res.Name
	log := cfg.Log.With(zap.String("resource", name))
	e := New(cfg.Group)

	afterWrite := func(c *gin.Context) {
		if cfg.Hooks.AfterWrite != nil {
			cfg.Hooks.AfterWrite(c)
		}
	}

	if cfg.AllowList {
		RegisterAction(e, Action[query.Params, resp.List]{
			Method:     http.MethodGet,
			Path:       "/admin-all-" + name,
			Binder:     BindQuery,
			Middleware: []gin.HandlerFunc{mdw.Ownership(mdw.FromQuery)},
			Handler: func(c *gin.Context, in *query.Params) (resp.List, error) {
				q, err := query.Build(res.Search, res.ScopeFilter(c.Query), *in)
				if err != nil {
					return resp.List{}, err
				}
				q.Opts.Exclude = res.Hidden()
				items, total, err := store.FindMany(c.Request.Context(), coll, q.Filter, q.Base, q.Opts)
				if err != nil {
					return resp.List{}, Internal("Error fetching "+name+" list", err)
				}
				return resp.NewList(total, items), nil
			},
		})
	}

	if cfg.AllowGet {
		RegisterAction(e, Action[idQuery, store.Document]{
			Method:     http.MethodGet,
			Path:       "/admin-get-" + name,
			Binder:     BindQuery,
			Middleware: []gin.HandlerFunc{mdw.Ownership(mdw.FromQuery)},
			Handler: func(c *gin.Context, in *idQuery) (store.Document, error) {
				id, err := primitive.ObjectIDFromHex(in.ID)
				if err != nil {
					return nil, BadRequest("invalid id")
				}
				doc, err := coll.FindOne(c.Request.Context(), bson.M{"_id": id}, res.Hidden()...)
				if errors.Is(err, store.ErrNotFound) {
					return nil, NotFound(res.Title() + " not found")
				}
				if err != nil {
					return nil, Internal("Error fetching "+name, err)
				}
				return doc, nil
			},
		})
	}

	if cfg.AllowCreate {
		RegisterAction(e, Action[createBody, resp.Created]{
			Method:     http.MethodPost,
			Path:       "/admin-create-" + name,
			Binder:     BindJSON,
			Status:     http.StatusCreated,
			Middleware: []gin.HandlerFunc{mdw.Ownership(mdw.FromBody)},
			Handler: func(c *gin.Context, in *createBody) (resp.Created, error) {
				doc, err := res.Sanitize(in.Data, true)
				if err != nil {
					return resp.Created{}, err
				}
				now := cfg.Now().UTC()
				for k, v := range res.Defaults {
					if _, ok := doc[k]; !ok {
						doc[k] = v
					}
				}
				for _, s := range res.Stamps {
					doc[s] = now
				}
				id := primitive.NewObjectID()
				doc["_id"] = id
				doc["createdAt"] = now

				if cfg.Hooks.BeforeCreate != nil {
					if err := cfg.Hooks.BeforeCreate(c, doc); err != nil {
						return resp.Created{}, err
					}
				}
				if _, err := coll.InsertOne(c.Request.Context(), doc); err != nil {
					if errors.Is(err, store.ErrDuplicateKey) {
						return resp.Created{}, Duplicate(res.DuplicateMessage)
					}
					return resp.Created{}, Internal("Error creating "+name, err)
				}
				afterWrite(c)
				log.Info("created", zap.String("id", id.Hex()))
				return resp.Created{Message: res.Title() + " created successfully", InsertedID: id}, nil
			},
		})
	}

	if cfg.AllowUpdate {
		RegisterAction(e, Action[updateBody, store.UpdateResult]{
			Method:     http.MethodPatch,
			Path:       "/admin-update-" + name,
			Binder:     BindJSON,
			Middleware: []gin.HandlerFunc{mdw.Ownership(mdw.FromBody)},
			Handler: func(c *gin.Context, in *updateBody) (store.UpdateResult, error) {
				id, err := primitive.ObjectIDFromHex(in.ID)
				if err != nil {
					return store.UpdateResult{}, BadRequest("invalid id")
				}
				set, err := res.Sanitize(in.Data, false)
				if err != nil {
					return store.UpdateResult{}, err
				}
				if len(set) == 0 {
					return store.UpdateResult{}, BadRequest("data must contain at least one field")
				}
				now := cfg.Now().UTC()
				for _, s := range res.Stamps {
					set[s] = now
				}
				var onInsert bson.M
				if res.Upsert {
					onInsert = bson.M{"createdAt": now}
					for k, v := range res.Defaults {
						if _, ok := set[k]; !ok {
							onInsert[k] = v
						}
					}
					n, err := coll.Count(c.Request.Context(), bson.M{"_id": id})
					if err != nil {
						return store.UpdateResult{}, Internal("An error occurred while updating the "+name, err)
					}
					if n == 0 {
						doc := bson.M{}
						for k, v := range onInsert {
							doc[k] = v
						}
						for k, v := range set {
							doc[k] = v
						}
						if err := res.CheckRequired(doc); err != nil {
							return store.UpdateResult{}, err
						}
					}
				}

				if cfg.Hooks.BeforeUpdate != nil {
					if err := cfg.Hooks.BeforeUpdate(c, id, set); err != nil {
						return store.UpdateResult{}, err
					}
				}
				r, err := coll.UpdateOne(c.Request.Context(), bson.M{"_id": id},
					store.Update{Set: set, SetOnInsert: onInsert}, res.Upsert)
				if err != nil {
					if errors.Is(err, store.ErrDuplicateKey) {
						return store.UpdateResult{}, Duplicate(res.DuplicateMessage)
					}
					return store.UpdateResult{}, Internal("An error occurred while updating the "+name, err)
				}
				if !res.Upsert && r.MatchedCount == 0 {
					return store.UpdateResult{}, NotFound(res.Title() + " not found")
				}
				afterWrite(c)
				log.Info("updated", zap.String("id", id.Hex()), zap.Int64("upserted", r.UpsertedCount))
				return r, nil
			},
		})
	}

	if cfg.AllowDelete {
		RegisterAction(e, Action[idQuery, resp.Message]{
			Method:     http.MethodDelete,
			Path:       "/admin-delete-" + name,
			Binder:     BindQuery,
			Middleware: []gin.HandlerFunc{mdw.Ownership(mdw.FromQuery)},
			Handler: func(c *gin.Context, in *idQuery) (resp.Message, error) {
				id, err := primitive.ObjectIDFromHex(in.ID)
				if err != nil {
					return resp.Message{}, BadRequest("invalid id")
				}
				n, err := coll.DeleteOne(c.Request.Context(), bson.M{"_id": id})
				if err != nil {
					return resp.Message{}, Internal("Error deleting "+name, err)
				}
				if n == 0 {
					return resp.Message{}, NotFound(res.Title() + " not found")
				}
				afterWrite(c)
				log.Info("deleted", zap.String("id", id.Hex()))
				return resp.Msg(res.Title() + " deleted successfully"), nil
			},
		})
	}
}
