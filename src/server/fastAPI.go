package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"options-flow/src/helpers"
	"options-flow/src/interfaces"
	"options-flow/src/logger"
	"options-flow/src/models"
	"options-flow/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// -----------------------------------------------------------------------------
// FastAPIServer
// -----------------------------------------------------------------------------

type FastAPIServer struct {
	Config       *models.MConfig
	Logger       *logger.Logger
	Flow         interfaces.IFlowService
	Scheduler    *utils.MarketScheduler
	ErrorHandler *helpers.ErrorHandler
	engine       *gin.Engine
	httpServer   *http.Server

	// WebSocket watch clients
	clients    map[*Client]struct{}
	reserved   int // slots taken by upgrades not yet registered
	clientsMu  sync.RWMutex
	register   chan *Client
	unregister chan *Client
	quit       chan struct{}
	stopOnce   sync.Once

	pollInterval atomic.Int64 // nanoseconds
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewFastAPIServer(cfg *models.MConfig, flow interfaces.IFlowService, scheduler *utils.MarketScheduler, logger *logger.Logger) *FastAPIServer {
	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	interval := time.Duration(cfg.Watch.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}

	s := &FastAPIServer{
		Config:       cfg,
		Logger:       logger,
		Flow:         flow,
		Scheduler:    scheduler,
		ErrorHandler: helpers.NewErrorHandler(logger.Named("ErrorHandler")),
		engine:       gin.Default(),
		clients:      make(map[*Client]struct{}),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		quit:         make(chan struct{}),
	}
	s.SetPollInterval(interval)

	s.engine.Use(requestID())

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	s.setupRoutes()
	go s.handleWebsockets()
	return s
}

// -----------------------------------------------------------------------------

// requestID tags every request with an X-Request-ID, reusing the caller's if present.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *FastAPIServer) setupRoutes() {
	api := s.engine.Group("/api")
	api.GET("/options/flow", s.getFlow)
	api.POST("/options/flow", s.postFlow)
	api.GET("/health", s.getHealth)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// SetPollInterval changes the watch refresh period for subscriptions started afterwards.
func (s *FastAPIServer) SetPollInterval(d time.Duration) {
	if d > 0 {
		s.pollInterval.Store(int64(d))
	}
}

// Handler exposes the router, mainly for tests.
func (s *FastAPIServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *FastAPIServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		close(s.quit)
		if s.httpServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			err = s.httpServer.Shutdown(ctx)
		}
		s.Logger.Info("Server stopped")
	})
	return err
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *FastAPIServer) getFlow(c *gin.Context) {
	req := models.MFlowRequest{Ticker: c.Query("ticker")}

	if raw := strings.TrimSpace(c.Query("expiration")); raw != "" {
		exp, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			s.respondError(c, helpers.NewValidationError("Invalid expiration: %s", raw))
			return
		}
		req.Expiration = &exp
	}
	s.serveFlow(c, req)
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) postFlow(c *gin.Context) {
	var req models.MFlowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, helpers.NewValidationError("Invalid request body: %v", err))
		return
	}
	s.serveFlow(c, req)
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) serveFlow(c *gin.Context, req models.MFlowRequest) {
	data, err := s.Flow.GetFlow(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.MFlowResponse{Data: data})
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) respondError(c *gin.Context, err error) {
	s.ErrorHandler.Handle(err, fmt.Sprintf("%s %s [%s]", c.Request.Method, c.Request.URL.Path, c.GetString("request_id")))
	c.JSON(helpers.HTTPStatus(err), models.MErrorResponse{Error: err.Error()})
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, s.Status())
}

// Status reports provider session state and watch-stream usage.
func (s *FastAPIServer) Status() models.MServiceStatus {
	return models.MServiceStatus{
		Status:       "ok",
		Source:       s.Flow.SourceName(),
		AuthCached:   s.Flow.AuthCached(),
		WatchClients: s.ClientCount(),
	}
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}
