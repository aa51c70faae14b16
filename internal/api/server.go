// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package api serves the message board's JSON HTTP interface.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/holomush/msgboard/internal/auth"
	"github.com/holomush/msgboard/internal/board"
	"github.com/holomush/msgboard/internal/observability"
)

// AuthService is the account and session API the handlers call.
type AuthService interface {
	Register(ctx context.Context, email, password string) (auth.PublicView, error)
	Login(ctx context.Context, handle auth.SessionHandle, email, password string) (auth.PublicView, string, error)
	CurrentSession(ctx context.Context, handle auth.SessionHandle) (auth.PublicView, error)
	Logout(ctx context.Context, handle auth.SessionHandle) error
}

// BoardService is the author, article and comment API the handlers call.
type BoardService interface {
	CreateAuthor(ctx context.Context, actor auth.PublicView, nickName string) (*board.Author, error)
	ListAuthors(ctx context.Context) ([]board.Author, error)
	GetAuthor(ctx context.Context, id ulid.ULID) (*board.Author, error)
	UpdateAuthor(ctx context.Context, actor auth.PublicView, id ulid.ULID, nickName string) (*board.Author, error)
	DeleteAuthor(ctx context.Context, actor auth.PublicView, id ulid.ULID) error

	CreateArticle(ctx context.Context, actor auth.PublicView, authorID ulid.ULID, title, text string) (*board.Article, error)
	ListArticles(ctx context.Context, authorID ulid.ULID) ([]board.Article, error)
	GetArticle(ctx context.Context, authorID, articleID ulid.ULID) (*board.Article, error)
	UpdateArticle(ctx context.Context, actor auth.PublicView, authorID, articleID ulid.ULID, title, text string) (*board.Article, error)
	DeleteArticle(ctx context.Context, actor auth.PublicView, authorID, articleID ulid.ULID) error

	AddComment(ctx context.Context, actor auth.PublicView, authorID, articleID ulid.ULID, title, text string) (*board.Comment, error)
	ListComments(ctx context.Context, authorID, articleID ulid.ULID) ([]board.Comment, error)
	DeleteComment(ctx context.Context, actor auth.PublicView, authorID, articleID, commentID ulid.ULID) error
}

// Compile-time interface checks.
var (
	_ AuthService  = (*auth.Service)(nil)
	_ BoardService = (*board.Service)(nil)
)

// Options configures a Server.
type Options struct {
	// Addr is the listen address in "host:port" form.
	Addr              string
	ReadHeaderTimeout time.Duration

	CookieName    string
	SessionTTL    time.Duration
	SecureCookies bool

	// Logger defaults to slog.Default.
	Logger *slog.Logger
	// Metrics may be nil.
	Metrics *observability.Metrics
}

// Server is the HTTP API.
type Server struct {
	auth    AuthService
	board   BoardService
	opts    Options
	logger  *slog.Logger
	metrics *observability.Metrics

	echo    *echo.Echo
	running atomic.Bool

	mu         sync.RWMutex
	listener   net.Listener
	httpServer *http.Server
}

// NewServer builds the API and registers its routes.
func NewServer(authSvc AuthService, boardSvc BoardService, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = auth.DefaultSessionTTL
	}
	if opts.ReadHeaderTimeout <= 0 {
		opts.ReadHeaderTimeout = 10 * time.Second
	}

	s := &Server{
		auth:    authSvc,
		board:   boardSvc,
		opts:    opts,
		logger:  logger,
		metrics: opts.Metrics,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = newErrorHandler(logger)
	e.Use(s.instrument)
	e.Use(middleware.Recover())
	s.routes(e)
	s.echo = e

	return s
}

func (s *Server) routes(e *echo.Echo) {
	e.POST("/api/user", s.register)
	e.POST("/api/auth", s.login)
	e.GET("/api/auth", s.currentSession)
	e.DELETE("/api/auth", s.logout)

	authors := e.Group("/authors")
	authors.POST("", s.createAuthor)
	authors.GET("", s.listAuthors)
	authors.GET("/:id", s.getAuthor)
	authors.PUT("/:id", s.updateAuthor)
	authors.DELETE("/:id", s.deleteAuthor)

	authors.POST("/:id/articles", s.createArticle)
	authors.GET("/:id/articles", s.listArticles)
	authors.GET("/:id/articles/:articleId", s.getArticle)
	authors.PUT("/:id/articles/:articleId", s.updateArticle)
	authors.DELETE("/:id/articles/:articleId", s.deleteArticle)

	authors.POST("/:id/articles/:articleId/comments", s.addComment)
	authors.GET("/:id/articles/:articleId/comments", s.listComments)
	authors.DELETE("/:id/articles/:articleId/comments/:commentId", s.deleteComment)
}

// Handler returns the API as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start begins serving the API.
// It returns an error channel that receives any error from the HTTP server
// after it starts. The channel is closed when the server stops gracefully.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("api server already running")
	}

	listener, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", s.opts.Addr).Wrap(err)
	}
	httpSrv := &http.Server{
		Handler:           s.echo,
		ReadHeaderTimeout: s.opts.ReadHeaderTimeout,
	}
	s.mu.Lock()
	s.listener = listener
	s.httpServer = httpSrv
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			s.logger.Error("api server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.logger.Info("api server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop gracefully shuts down the API, waiting for in-flight requests until
// ctx ends.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	s.mu.RLock()
	httpSrv := s.httpServer
	s.mu.RUnlock()

	if httpSrv != nil {
		if err := httpSrv.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown_api_server").Wrap(err)
		}
	}

	s.logger.Info("api server stopped")
	return nil
}

// Addr returns the address the server is listening on, or "" before Start.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
