// Package api serves the local status and control API of a running checker.
package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/moyoez/gtranslate-ipcheck/api/controllers"
	"github.com/moyoez/gtranslate-ipcheck/api/middlewares"
	"github.com/moyoez/gtranslate-ipcheck/api/notifyhub"
	"github.com/moyoez/gtranslate-ipcheck/notify"
	"github.com/moyoez/gtranslate-ipcheck/probe"
	"github.com/moyoez/gtranslate-ipcheck/scan"
	"github.com/moyoez/gtranslate-ipcheck/tool"
)

// Server is the local HTTP API.
type Server struct {
	listen   string
	engine   *gin.Engine
	server   *http.Server
	hub      *notifyhub.Hub
	registry *prometheus.Registry
	mu       sync.RWMutex
}

// NewServer creates the API server. trigger may be nil when no run loop exists.
func NewServer(listen string, trigger controllers.RunTrigger) *Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(probe.Collectors()...)
	registry.MustRegister(scan.Collectors()...)

	controllers.SetRunTrigger(trigger)
	s := &Server{listen: listen, hub: notifyhub.New(), registry: registry}
	s.engine = s.setupRoutes()
	return s
}

// Handler exposes the router, used by tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) setupRoutes() *gin.Engine {
	if tool.DefaultLogger.GetLevel() == log.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())

	v1 := engine.Group("/api/v1", middlewares.OnlyAllowLocal)
	{
		v1.GET("/status", controllers.Status)
		v1.GET("/results", controllers.Results)
		v1.GET("/best", controllers.Best)
		v1.POST("/scan-now", controllers.ScanNow)
		v1.POST("/pause", controllers.Pause)
		v1.POST("/resume", controllers.Resume)
		v1.GET("/hosts/lines", controllers.HostsLines)
		v1.GET("/hosts/qrcode", controllers.HostsQRCode)
		v1.GET("/notify", controllers.HandleNotifyWS(s.hub))
	}
	engine.GET("/metrics", middlewares.OnlyAllowLocal, gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	return engine
}

// Start serves until Shutdown is called. Notifications are mirrored to websocket clients while it runs.
func (s *Server) Start() error {
	s.mu.Lock()
	s.server = &http.Server{
		Addr:              s.listen,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.server
	s.mu.Unlock()

	notify.SetNotifyHub(s.hub)
	defer notify.SetNotifyHub(nil)

	tool.DefaultLogger.Infof("Starting API server on http://%s", s.listen)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	srv := s.server
	s.mu.RUnlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
