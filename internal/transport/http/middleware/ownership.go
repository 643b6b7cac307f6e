package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	resp "marketplace-admin/internal/transport/http/response"
)

type EmailSource int

const (
	FromQuery EmailSource = iota // ?email=
	FromBody                     // {"email": ...}
)

type emailBody struct {
	Email string `json:"email"`
}

// Ownership rejects the request with 403 unless the email it names is the
// authenticated one. It must run after AuthJWT. The body stays readable for
// later ShouldBindBodyWith calls.
func Ownership(src EmailSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(http.StatusUnauthorized, ""))
			return
		}

		var email string
		switch src {
		case FromBody:
			var in emailBody
			if err := c.ShouldBindBodyWith(&in, binding.JSON); err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, resp.Error(http.StatusBadRequest, "invalid request body"))
				return
			}
			email = in.Email
		default:
			email = c.Query("email")
		}

		if email == "" || email != claims.Email {
			c.AbortWithStatusJSON(http.StatusForbidden, resp.Error(http.StatusForbidden, ""))
			return
		}
		c.Next()
	}
}
