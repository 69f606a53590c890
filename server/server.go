// Package server is the browser shell: a JSON API over generator sessions
// plus the embedded single-page UI.
package server

import (
	_ "embed"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/singleflight"

	"seo_content_studio/generator"
)

//go:embed web/index.html
var indexHTML []byte

const defaultRequestTimeout = 150 * time.Second

type Options struct {
	Store          Store
	RequestTimeout time.Duration

	// Provider and Model are reported by /api/status.
	Provider string
	Model    string

	ServiceName    string
	Tracing        bool
	Metrics        bool
	MetricsPath    string
	AllowedOrigins []string
}

type Server struct {
	agent  *generator.Agent
	store  Store
	opts   Options
	locks  *sessionLocks
	flight singleflight.Group
}

func New(agent *generator.Agent, opts Options) (*Server, error) {
	if agent == nil {
		return nil, errors.New("generator agent required")
	}
	if opts.Store == nil {
		return nil, errors.New("session store required")
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}
	return &Server{
		agent: agent,
		store: opts.Store,
		opts:  opts,
		locks: newSessionLocks(),
	}, nil
}

func (s *Server) Routes() *gin.Engine {
	engine := gin.New()
	engine.Use(recovery(), requestID())
	engine.Use(corsMiddleware(s.opts.AllowedOrigins))
	if s.opts.Tracing {
		engine.Use(traceMiddleware(s.opts.ServiceName), traceContext())
	}
	if s.opts.Metrics {
		engine.Use(metricsMiddleware())
	}
	engine.Use(accessLog())

	engine.GET("/", s.handleIndex)
	engine.GET("/health", s.handleHealth)
	if s.opts.Metrics {
		engine.GET(s.opts.MetricsPath, gin.WrapH(promhttp.Handler()))
	}

	api := engine.Group("/api")
	{
		api.GET("/status", s.handleStatus)

		sessions := api.Group("/sessions")
		sessions.POST("", s.handleSessionCreate)
		sessions.GET("/:id", s.handleSessionGet)
		sessions.DELETE("/:id", s.handleSessionDelete)
		sessions.POST("/:id/mode", s.handleMode)
		sessions.POST("/:id/outline", s.handleOutline)
		sessions.POST("/:id/draft", s.handleDraft)
		sessions.POST("/:id/diagnose", s.handleDiagnose)
		sessions.POST("/:id/metadata", s.handleMetadata)
		sessions.POST("/:id/checklist", s.handleChecklist)
		sessions.POST("/:id/revise", s.handleRevise)
		sessions.GET("/:id/export", s.handleExport)
	}

	engine.NoRoute(func(c *gin.Context) {
		fail(c, ErrRouteNotFound)
	})
	return engine
}

// ErrRouteNotFound answers unknown paths with the JSON error envelope.
var ErrRouteNotFound = errors.New("route not found")

func (s *Server) handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// sessionLocks serialises stage actions per session id. An entry lives only
// while someone holds or waits for it.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sessionLock)}
}

func (l *sessionLocks) lock(id string) func() {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &sessionLock{}
		l.locks[id] = m
	}
	m.refs++
	l.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		l.mu.Lock()
		if m.refs--; m.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

