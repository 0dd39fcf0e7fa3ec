package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/muurk/ampwatch/internal/logging"
	"github.com/muurk/ampwatch/internal/store"
	"github.com/muurk/ampwatch/internal/version"
)

// Limits for GET /readings
const (
	DefaultReadingsLimit = 50
	MaxReadingsLimit     = 1000
)

// History is the part of the reading store the API reads from
type History interface {
	Recent(ctx context.Context, limit int) ([]store.Entry, error)
}

// Config holds the server configuration
type Config struct {
	Listen          string        // host:port, ":0" picks a free port
	ReadTimeout     time.Duration // request header read timeout
	ShutdownTimeout time.Duration // grace period for in-flight requests
}

// Server serves the HTTP API and the live reading feed.
type Server struct {
	config   Config
	hub      *Hub
	history  History
	metrics  http.Handler
	srv      *http.Server
	listener net.Listener
}

// New creates a Server. history and metrics may be nil; their endpoints then
// answer 503 and 404 respectively.
func New(config Config, hub *Hub, history History, metrics http.Handler) *Server {
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = 5 * time.Second
	}
	if hub == nil {
		hub = NewHub(0)
	}

	s := &Server{
		config:  config,
		hub:     hub,
		history: history,
		metrics: metrics,
	}
	s.srv = &http.Server{
		Addr:              config.Listen,
		Handler:           s.Router(),
		ReadHeaderTimeout: config.ReadTimeout,
	}
	return s
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/healthz", s.handleHealth)
	r.GET("/readings", s.handleReadings)
	r.GET("/ws", func(c *gin.Context) {
		s.hub.ServeWS(c.Writer, c.Request)
	})
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics))
	}
	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logging.Debug("HTTP request",
			zap.String("remote_addr", c.ClientIP()),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status_code", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": version.UserAgent(),
		"clients": s.hub.Clients(),
	})
}

func (s *Server) handleReadings(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "reading store not enabled"})
		return
	}

	limit := DefaultReadingsLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, MaxReadingsLimit)
	}

	entries, err := s.history.Recent(c.Request.Context(), limit)
	if err != nil {
		logging.Error("Failed to read history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read history"})
		return
	}
	if entries == nil {
		entries = []store.Entry{}
	}
	c.JSON(http.StatusOK, entries)
}

// Listen binds the listening socket. Serve must be called afterwards.
func (s *Server) Listen() (net.Addr, error) {
	ln, err := net.Listen("tcp", s.config.Listen)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", s.config.Listen, err)
	}
	s.listener = ln
	logging.Info("HTTP server listening", zap.String("addr", ln.Addr().String()))
	return ln.Addr(), nil
}

// Serve serves requests until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		if _, err := s.Listen(); err != nil {
			return err
		}
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.srv.Serve(s.listener)
	}()

	select {
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		return s.Shutdown()
	}
}

// Shutdown closes the live feed and waits for in-flight requests.
func (s *Server) Shutdown() error {
	logging.Info("Shutting down HTTP server...")
	s.hub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		logging.Warn("Shutdown timeout, forcing close", zap.Error(err))
		return s.srv.Close()
	}
	return nil
}
