package ez

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"marketplace-admin/internal/domain"
	"marketplace-admin/internal/query"
	"marketplace-admin/internal/store"
	resp "marketplace-admin/internal/transport/http/response"
)

type EZ struct{ g *gin.RouterGroup }

func New(g *gin.RouterGroup) EZ {
	registerValidators()
	return EZ{g: g}
}

type Binder string

const (
	BindJSON  Binder = "json"  // JSON body; the raw body stays cached for other binders
	BindQuery Binder = "query" // URL ?a=b
	BindNone  Binder = "none"
)

// AErr carries the HTTP status a handler wants to fail with. Err, when set,
// is recorded on the gin context for the access log and never sent to clients.
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error   { return &AErr{Code: http.StatusBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &AErr{Code: http.StatusUnauthorized, Msg: msg} }
func Forbidden(msg string) error    { return &AErr{Code: http.StatusForbidden, Msg: msg} }
func NotFound(msg string) error     { return &AErr{Code: http.StatusNotFound, Msg: msg} }
func Duplicate(msg string) error {
	if msg == "" {
		msg = "Duplicate key"
	}
	return &AErr{Code: http.StatusBadRequest, Msg: msg}
}
func Internal(msg string, err error) error {
	return &AErr{Code: http.StatusInternalServerError, Msg: msg, Err: err}
}

// classify maps lower-layer errors that reached a handler unwrapped.
func classify(err error) *AErr {
	var ae *AErr
	if errors.As(err, &ae) {
		return ae
	}
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return &AErr{Code: http.StatusBadRequest, Msg: ve.Error()}
	case errors.Is(err, query.ErrInvalidPagination):
		return &AErr{Code: http.StatusBadRequest, Msg: err.Error()}
	case errors.Is(err, store.ErrDuplicateKey):
		return &AErr{Code: http.StatusBadRequest, Msg: "Duplicate key", Err: err}
	case errors.Is(err, store.ErrNotFound):
		return &AErr{Code: http.StatusNotFound, Err: err}
	}
	return &AErr{Code: http.StatusInternalServerError, Err: err}
}

// Fail writes err as a terminal JSON response.
func Fail(c *gin.Context, err error) {
	ae := classify(err)
	if ae.Code == http.StatusInternalServerError && errors.Is(ae.Err, context.DeadlineExceeded) {
		ae = &AErr{Code: http.StatusGatewayTimeout, Err: ae.Err}
	}
	if ae.Err != nil {
		_ = c.Error(ae.Err)
	}
	c.AbortWithStatusJSON(ae.Code, resp.Error(ae.Code, ae.Msg))
}

// Action is a single route: I is bound from the request, O is rendered as JSON
// with Status (200 when zero).
type Action[I any, O any] struct {
	Method     string
	Path       string
	Binder     Binder
	Status     int
	Middleware []gin.HandlerFunc // run before binding, e.g. the ownership guard
	Handler    func(c *gin.Context, in *I) (O, error)
}

func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindBodyWith(&in, binding.JSON)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		}
		if bindErr != nil {
			Fail(c, BadRequest(bindMessage(bindErr)))
			return
		}

		out, err := a.Handler(c, &in)
		if err != nil {
			Fail(c, err)
			return
		}
		status := a.Status
		if status == 0 {
			status = http.StatusOK
		}
		c.JSON(status, out)
	}

	handlers := append(append([]gin.HandlerFunc{}, a.Middleware...), h)
	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, handlers...)
	case http.MethodPut:
		e.g.PUT(a.Path, handlers...)
	case http.MethodPatch:
		e.g.PATCH(a.Path, handlers...)
	case http.MethodDelete:
		e.g.DELETE(a.Path, handlers...)
	default:
		e.g.POST(a.Path, handlers...)
	}
}

var validatorsOnce sync.Once

// registerValidators adds the "objectid" rule and makes validation errors
// report json/form names instead of Go field names.
func registerValidators() {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
			return primitive.IsValidObjectID(fl.Field().String())
		})
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				if name := strings.Split(f.Tag.Get(tag), ",")[0]; name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
	})
}

func bindMessage(err error) string {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return "invalid request: " + err.Error()
	}
	fe := ves[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "objectid":
		return fe.Field() + " is not a valid id"
	case "email":
		return fe.Field() + " must be an email address"
	}
	return fe.Field() + " is invalid"
}
