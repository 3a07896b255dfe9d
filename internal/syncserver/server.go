// Package syncserver exposes a docstore.Store over HTTP with Server-Sent
// Events for watches. It is the shared store hearth clients sync through.
package syncserver

import (
	"net/http"

	"github.com/alexanderramin/hearth/internal/docstore"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/logger"
	"github.com/gin-contrib/pprof"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Options configures the optional middleware.
type Options struct {
	// CORSAllowOrigins enables CORS for these origins when non-empty.
	CORSAllowOrigins []string
	EnablePprof      bool
}

// Server routes HTTP requests to a document store.
type Server struct {
	store   docstore.Store
	log     zerolog.Logger
	metrics *metrics
	engine  *gin.Engine
}

// New builds the router. The registry receives the server's metrics; pass
// prometheus.NewRegistry() in tests.
func New(store docstore.Store, log zerolog.Logger, reg *prometheus.Registry, opts Options) (*Server, error) {
	m, err := newMetrics(reg)
	if err != nil {
		return nil, err
	}
	s := &Server{
		store:   store,
		log:     log.With().Str("component", "syncserver").Logger(),
		metrics: m,
	}

	r := gin.New()
	r.ForwardedByClientIP = false
	r.HandleMethodNotAllowed = true

	r.Use(gin.Recovery())
	r.Use(requestid.New())
	r.NoMethod(func(c *gin.Context) {
		writeError(c, http.StatusMethodNotAllowed, "This HTTP method is not allowed for the endpoint you called")
	})
	r.Use(logger.SetLogger(
		logger.WithDefaultLevel(zerolog.InfoLevel),
		logger.WithClientErrorLevel(zerolog.InfoLevel),
		logger.WithServerErrorLevel(zerolog.ErrorLevel),
		logger.WithLogger(func(c *gin.Context, _ zerolog.Logger) zerolog.Logger {
			return s.log.With().
				Str("request-id", requestid.Get(c)).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Int("status", c.Writer.Status()).
				Logger()
		})))
	r.Use(m.middleware())

	if len(opts.CORSAllowOrigins) > 0 {
		s.log.Debug().Strs("origins", opts.CORSAllowOrigins).Msg("CORS enabled")
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSAllowOrigins,
			AllowMethods:     []string{"OPTIONS", "GET", "POST", "PUT", "PATCH", "DELETE"},
			AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type"},
			AllowCredentials: true,
		}))
	}

	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, numHandlers int) {}
	_ = r.SetTrustedProxies([]string{})

	if opts.EnablePprof {
		pprof.Register(r, "debug/pprof")
	}

	r.GET("/healthz", s.healthz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	v1 := r.Group("/v1")
	{
		v1.GET("/docs/*path", s.getDoc)
		v1.PUT("/docs/*path", s.setDoc)
		v1.PATCH("/docs/*path", s.mergeDoc)
		v1.DELETE("/docs/*path", s.deleteDoc)
		v1.POST("/docs/*path", s.addDoc)
		v1.GET("/query/*path", s.query)
		v1.POST("/batch", s.batch)
		v1.GET("/watch/*path", s.watch)
	}

	s.engine = r
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
