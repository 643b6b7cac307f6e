package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	mdw "marketplace-admin/internal/transport/http/middleware"
)

type Options struct {
	AllowOrigins   []string
	RateLimitRPS   float64 // per client IP; 0 disables
	RateLimitBurst int
	GlobalRPS      float64 // shared by every client; 0 disables
	GlobalBurst    int
	MaxConcurrent  int64
	MaxBodyBytes   int64
	RequestTimeout time.Duration
}

// CORSConfig allows credentials for the listed origins. An empty list or
// "*" allows every origin without credentials, since browsers refuse that
// combination anyway.
func CORSConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", mdw.KeyRequestID}
	cfg.ExposeHeaders = []string{mdw.KeyRequestID}
	cfg.MaxAge = 12 * time.Hour

	wildcard := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			wildcard = true
		}
	}
	if wildcard {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

// NewRouter returns an engine with the shared middleware chain installed.
func NewRouter(l *zap.Logger, o Options) *gin.Engine {
	r := gin.New()
	r.Use(
		mdw.RequestID(),
		mdw.Recovery(l),
		mdw.AccessLog(l),
		mdw.Metrics(),
		cors.New(CORSConfig(o.AllowOrigins)),
	)
	if o.GlobalRPS > 0 {
		burst := o.GlobalBurst
		if burst <= 0 {
			burst = int(o.GlobalRPS)
		}
		r.Use(mdw.RateLimit(rate.Limit(o.GlobalRPS), burst))
	}
	if o.RateLimitRPS > 0 {
		burst := o.RateLimitBurst
		if burst <= 0 {
			burst = int(o.RateLimitRPS)
		}
		r.Use(mdw.RateLimitPerIP(rate.Limit(o.RateLimitRPS), burst))
	}
	r.Use(
		mdw.ConcurrencyLimit(o.MaxConcurrent),
		mdw.MaxBodyBytes(o.MaxBodyBytes),
		mdw.Timeout(o.RequestTimeout),
	)
	return r
}

func StartHTTP(srv *http.Server, l *zap.Logger) error {
	l.Info("http starting", zap.String("addr", srv.Addr))
	return srv.ListenAndServe()
}

func BuildServer(addr string, handler http.Handler, rt, wt, it time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       rt,
		ReadHeaderTimeout: rt,
		WriteTimeout:      wt,
		IdleTimeout:       it,
		MaxHeaderBytes:    1 << 20,
	}
}

func Addr(host string, port int) string { return fmt.Sprintf("%s:%d", host, port) }
