package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var ErrMissingEmail = errors.New("identity email is required")

// Identity is what a session token vouches for. Only Email takes part in
// ownership checks.
type Identity struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
	UID   string `json:"uid,omitempty"`
}

type Claims struct {
	Identity
	jwt.RegisteredClaims
}

type JWTer struct {
	Secret []byte
	Issuer string
	TTL    time.Duration

	CookieName string
	Secure     bool // production: Secure + SameSite=None; otherwise SameSite=Strict
}

func (j *JWTer) Issue(id Identity) (string, error) {
	if strings.TrimSpace(id.Email) == "" {
		return "", ErrMissingEmail
	}
	now := time.Now()
	claims := Claims{
		Identity: id,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.Issuer,
			Subject:   id.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.TTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

func (j *JWTer) Parse(tokenStr string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected alg %v", token.Header["alg"])
		}
		return j.Secret, nil
	}, jwt.WithIssuer(j.Issuer), jwt.WithLeeway(60*time.Second), jwt.WithExpirationRequired())

	if err != nil {
		return nil, err
	}
	if c, ok := t.Claims.(*Claims); ok && t.Valid && c.Email != "" {
		return c, nil
	}
	return nil, errors.New("invalid token")
}

func (j *JWTer) sameSite() http.SameSite {
	if j.Secure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteStrictMode
}

// SetCookie delivers token as an HTTP-only session cookie living as long as the token.
func (j *JWTer) SetCookie(c *gin.Context, token string) {
	c.SetSameSite(j.sameSite())
	c.SetCookie(j.CookieName, token, int(j.TTL/time.Second), "/", "", j.Secure, true)
}

// ClearCookie overwrites the session cookie with an empty, already expired one.
func (j *JWTer) ClearCookie(c *gin.Context) {
	c.SetSameSite(j.sameSite())
	c.SetCookie(j.CookieName, "", -1, "/", "", j.Secure, true)
}
