package endnotes

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Server is a preview server for a site. It serves pages from the latest
// build held in memory; call Rebuild after sources change.
type Server struct {
	Echo  *echo.Echo
	Cache *PageCache

	builder   *Builder
	log       *slog.Logger
	staticDir string
	rebuildMu sync.Mutex
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithStaticDir serves the directory under /public/.
func WithStaticDir(dir string) ServerOption {
	return func(s *Server) {
		s.staticDir = dir
	}
}

// NewServer creates a preview server for builder. No build is run until
// Rebuild is called.
func NewServer(builder *Builder, opts ...ServerOption) *Server {
	s := &Server{
		Echo:    echo.New(),
		Cache:   NewPageCache(),
		builder: builder,
		log:     builder.Config().Logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Echo.HideBanner = true
	s.Echo.HidePort = true
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Rebuild runs a full build and swaps it into the cache. On failure the
// previous build keeps being served.
func (s *Server) Rebuild(ctx context.Context) error {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()
	res, err := s.builder.Build(ctx)
	if err != nil {
		s.log.Error("rebuild failed", "error", err)
		return err
	}
	s.Cache.Replace(res)
	return nil
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.Echo
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.log.Info("preview server listening", "addr", addr)
	if err := s.Echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.Echo.Shutdown(ctx)
}

func (s *Server) setupMiddleware() {
	e := s.Echo
	e.HTTPErrorHandler = s.httpErrorHandler

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.log.Info("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/public/")
		},
	}))
	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' https: data:",
	}))
	e.Use(middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		RedirectCode: http.StatusMovedPermanently,
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return strings.HasPrefix(path, "/public") || path == "/blog" || strings.HasSuffix(path, ".xml")
		},
	}))
	e.Use(cacheControlMiddleware)
}

func (s *Server) setupRoutes() {
	e := s.Echo
	if s.staticDir != "" {
		e.Static("/public", s.staticDir)
	}
	e.GET("/", s.handleIndex)
	e.GET("/blog", handleBlogRedirect)
	e.GET("/feed.xml", handleXML(s.Cache.Feed, "application/rss+xml; charset=utf-8"))
	e.GET("/sitemap.xml", handleXML(s.Cache.Sitemap, "application/xml; charset=utf-8"))
	e.GET("/blog/:slug/", s.handlePage)
}

// cacheControlMiddleware keeps browsers from caching pages that change on
// every rebuild.
func cacheControlMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if strings.HasPrefix(c.Request().URL.Path, "/public/") {
			c.Response().Header().Set("Cache-Control", "public, max-age=60")
		} else {
			c.Response().Header().Set("Cache-Control", "no-cache")
		}
		return next(c)
	}
}

func (s *Server) handleIndex(c echo.Context) error {
	if tag := c.QueryParam("tag"); tag != "" {
		pages := s.Cache.List(tag)
		if len(pages) == 0 {
			return echo.ErrNotFound
		}
		return Render(c, s.builder.views.Index(s.builder.cfg, pages))
	}
	index := s.Cache.Index()
	if index == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "site has not been built yet")
	}
	return c.HTMLBlob(http.StatusOK, index)
}

func (s *Server) handlePage(c echo.Context) error {
	page, err := s.Cache.Get(c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.ErrNotFound
		}
		return err
	}
	return c.HTMLBlob(http.StatusOK, page.HTML)
}

func handleXML(get func() []byte, contentType string) echo.HandlerFunc {
	return func(c echo.Context) error {
		data := get()
		if data == nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "site has not been built yet")
		}
		return c.Blob(http.StatusOK, contentType, data)
	}
}

func handleBlogRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/")
}

func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, s.builder.views.NotFound(s.builder.cfg))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 && code != http.StatusServiceUnavailable {
		s.log.Error("server error", "error", err, "uri", c.Request().RequestURI)
		_ = RenderStatus(c, code, s.builder.views.ServerError(s.builder.cfg))
		return
	}
	s.Echo.DefaultHTTPErrorHandler(err, c)
}

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}
