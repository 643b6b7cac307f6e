package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"marketplace-admin/internal/core/auth"
	httpez "marketplace-admin/internal/transport/http/ez"
	resp "marketplace-admin/internal/transport/http/response"
)

type Auth struct {
	JWT *auth.JWTer
	Log *zap.Logger
}

// Mount registers the session endpoints on a public group.
func (h *Auth) Mount(g *gin.RouterGroup) {
	e := httpez.New(g)

	httpez.RegisterAction(e, httpez.Action[auth.Identity, resp.Message]{
		Method: http.MethodPost,
		Path:   "/jwt",
		Binder: httpez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *auth.Identity) (resp.Message, error) {
			tok, err := h.JWT.Issue(*in)
			if err != nil {
				return resp.Message{}, httpez.Internal("could not issue token", err)
			}
			h.JWT.SetCookie(c, tok)
			h.Log.Debug("session issued", zap.String("email", in.Email))
			return resp.Msg("Token issued"), nil
		},
	})

	httpez.RegisterAction(e, httpez.Action[struct{}, resp.Message]{
		Method: http.MethodGet,
		Path:   "/logout",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (resp.Message, error) {
			h.JWT.ClearCookie(c)
			return resp.Msg("Logged out"), nil
		},
	})
}
