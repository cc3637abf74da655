package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jon4hz/bankdesk/internal/api/handler"
	"github.com/jon4hz/bankdesk/internal/config"
	"github.com/jon4hz/bankdesk/internal/engine"
	"github.com/jon4hz/bankdesk/internal/static"
)

const sessionCookieName = "bankdesk_session"

type Server struct {
	cfg        *config.Config
	ginEngine  *gin.Engine
	engine     *engine.Engine
	httpServer *http.Server
}

func New(cfg *config.Config, e *engine.Engine, debug bool) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if e == nil {
		return nil, fmt.Errorf("engine is required")
	}
	if cfg.SessionKey == "" {
		return nil, fmt.Errorf("session key is required")
	}
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:       cfg,
		ginEngine: gin.New(),
		engine:    e,
	}
	s.ginEngine.Use(gin.Recovery(), requestLogger())
	s.ginEngine.Use(gzip.Gzip(gzip.DefaultCompression))

	if err := s.setupRoutes(); err != nil {
		return nil, err
	}

	s.httpServer = &http.Server{
		Addr:              cfg.Listen,
		Handler:           s.ginEngine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *Server) setupSession() {
	store := cookie.NewStore([]byte(s.cfg.SessionKey))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   s.cfg.SessionMaxAge,
		HttpOnly: true,
		Secure:   s.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	s.ginEngine.Use(sessions.Sessions(sessionCookieName, store))
}

func (s *Server) setupRoutes() error {
	staticFS, err := static.FS()
	if err != nil {
		return err
	}
	s.ginEngine.StaticFS("/static", http.FS(staticFS))

	h := handler.New(s.engine, s.cfg)
	s.ginEngine.GET("/healthz", h.Healthz)

	s.setupSession()
	app := s.ginEngine.Group("/")
	app.Use(sessionID())

	app.GET("/", h.Home)
	app.POST("/users", h.AddUsers)
	app.POST("/banks", h.AddBanks)
	app.POST("/users/:id/edit", h.EditUser)
	app.POST("/banks/:id/edit", h.EditBank)
	app.POST("/users/:id/delete", h.DeleteUser)
	app.POST("/banks/:id/delete", h.DeleteBank)
	app.POST("/edit/save", h.SaveEdit)
	app.POST("/edit/cancel", h.CancelEdit)
	app.POST("/reset", h.Reset)
	app.POST("/session/end", h.EndSession)

	// API routes
	api := app.Group("/api")
	api.GET("/state", h.GetState)
	api.POST("/users", h.APIAddUsers)
	api.POST("/banks", h.APIAddBanks)
	api.DELETE("/users/:id", h.APIDeleteUser)
	api.DELETE("/banks/:id", h.APIDeleteBank)
	api.POST("/edit", h.APIBeginEdit)
	api.PATCH("/edit", h.APIUpdateEditField)
	api.POST("/edit/commit", h.APICommitEdit)
	api.DELETE("/edit", h.APICancelEdit)
	api.POST("/reset", h.APIReset)

	return nil
}

// sessionID makes sure every request carries a session id, issuing a new one
// on the first visit.
func sessionID() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		id, _ := session.Get(handler.SessionIDKey).(string)
		if id == "" {
			id = uuid.NewString()
			session.Set(handler.SessionIDKey, id)
			if err := session.Save(); err != nil {
				log.Error("Failed to save session", "error", err)
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
		}
		c.Set(handler.SessionIDKey, id)
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	logger := log.Default().WithPrefix("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// Handler returns the http handler of the server.
func (s *Server) Handler() http.Handler {
	return s.ginEngine
}

// Run serves until the server is shut down.
func (s *Server) Run() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server, waiting for open requests until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
