// Package server exposes the dashboard to browsers: the page, a websocket
// per tab driving a navigation shell, a static fallback, health and
// metrics.
package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log"
	"net"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/rewired-gh/arbdash/internal/config"
	"github.com/rewired-gh/arbdash/internal/form"
	"github.com/rewired-gh/arbdash/internal/logger"
	"github.com/rewired-gh/arbdash/internal/metrics"
	"github.com/rewired-gh/arbdash/internal/models"
	"github.com/rewired-gh/arbdash/internal/route"
	"github.com/rewired-gh/arbdash/internal/shell"
)

//go:embed templates/*.tmpl
var embeddedFS embed.FS

const shutdownTimeout = 5 * time.Second

// Server hosts the dashboard.
type Server struct {
	cfg        config.ServerConfig
	opts       shell.Options
	pairs      []string
	upgrader   websocket.Upgrader
	httpServer *http.Server
	sessions   atomic.Int64

	// sessionCtx outlives individual requests: hijacked websocket
	// connections are not closed by http.Server.Shutdown.
	sessionCtx    context.Context
	closeSessions context.CancelFunc
}

// New builds a server. pairs feeds the navigation links.
func New(cfg config.ServerConfig, opts shell.Options, pairs []string) *Server {
	cfg.Address = normalizeAddress(cfg.Address)
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		cfg:           cfg,
		opts:          opts,
		pairs:         pairs,
		sessionCtx:    ctx,
		closeSessions: cancel,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 64 << 10,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// Address reports the network address the server listens on.
func (s *Server) Address() string {
	return s.cfg.Address
}

// Run starts the HTTP server and blocks until ctx is cancelled or the
// listener fails.
func (s *Server) Run(ctx context.Context) error {
	defer s.closeSessions()

	s.httpServer = &http.Server{
		Addr:         s.cfg.Address,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		ErrorLog:     log.New(logger.Writer(), "http: ", 0),
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.closeSessions()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		<-errCh
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) sessionContext() (context.Context, context.CancelFunc) {
	return context.WithCancel(s.sessionCtx)
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestTimer())

	tmpl := template.Must(template.New("page").ParseFS(embeddedFS, "templates/*.tmpl"))
	router.SetHTMLTemplate(tmpl)

	router.GET("/", s.handlePage)
	router.GET("/ws", s.handleSession)
	router.GET("/view/*path", s.handleView)
	router.GET("/search/:kind", s.handleSearch)
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"sessions": s.sessions.Load(),
		})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	return router
}

// requestTimer logs every request with its duration.
func requestTimer() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("%s %s %d in %v", c.Request.Method, c.Request.URL.RequestURI(), c.Writer.Status(), time.Since(start))
	}
}

type navLink struct {
	Href  string
	Label string
}

func (s *Server) nav(static bool) []navLink {
	prefix := "#"
	if static {
		prefix = "/view"
	}
	pair := ""
	if len(s.pairs) > 0 {
		pair = "/" + s.pairs[0]
	}

	links := make([]navLink, 0, len(models.ViewKinds))
	for _, k := range models.ViewKinds {
		href := prefix + "/" + k.String()
		if k.RequiresPair() {
			href += pair
		}
		links = append(links, navLink{Href: href, Label: k.Title()})
	}
	return links
}

func (s *Server) handlePage(c *gin.Context) {
	c.HTML(http.StatusOK, "page.tmpl", gin.H{
		"Title":           "bitbot",
		"Nav":             s.nav(false),
		"DefaultLocation": s.opts.DefaultLocation.String(),
		"Static":          false,
		"HTML":            template.HTML(""),
	})
}

func (s *Server) handleView(c *gin.Context) {
	// The escaped path keeps %2F and %3F inside a segment intact.
	path := strings.TrimPrefix(c.Request.URL.EscapedPath(), "/view")
	loc := models.ParseLocation(path + "?" + c.Request.URL.RawQuery)

	frame, err := shell.Render(c.Request.Context(), s.opts, loc)
	if err != nil {
		logger.Error("Failed to render %s: %v", loc, err)
		c.String(http.StatusInternalServerError, "render failed")
		return
	}

	status := http.StatusOK
	if route.Parse(loc).Kind == models.NotFound && loc.Path != "/" {
		status = http.StatusNotFound
	}
	s.static(c, status, frame)
}

func (s *Server) handleSearch(c *gin.Context) {
	loc := models.NewLocation("/"+c.Param("kind"), nil)

	fields := make(map[string]string)
	for k, vs := range c.Request.URL.Query() {
		if len(vs) > 0 {
			fields[k] = vs[0]
		}
	}

	next, frame, err := shell.Search(s.opts, loc, fields)
	var verr *form.ValidationError
	switch {
	case err == nil:
		c.Redirect(http.StatusSeeOther, "/view"+next.String())
	case errors.As(err, &verr):
		s.static(c, http.StatusUnprocessableEntity, frame)
	default:
		logger.Error("Search on %s failed: %v", loc, err)
		c.String(http.StatusInternalServerError, "search failed")
	}
}

func (s *Server) static(c *gin.Context, status int, frame shell.Frame) {
	c.HTML(status, "page.tmpl", gin.H{
		"Title":           "bitbot",
		"Nav":             s.nav(true),
		"DefaultLocation": s.opts.DefaultLocation.String(),
		"Static":          true,
		"HTML":            frame.HTML,
	})
}

// checkOrigin accepts same-origin upgrades, plus any origin listed in the
// configuration ("*" allows all).
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if slices.Contains(s.cfg.AllowedOrigins, "*") || slices.Contains(s.cfg.AllowedOrigins, origin) {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

func normalizeAddress(addr string) string {
	addr = strings.TrimSpace(addr)

	if addr == "" {
		return "localhost:8080"
	}

	if strings.Contains(addr, "://") {
		if parsed, err := url.Parse(addr); err == nil {
			if host := parsed.Host; host != "" {
				addr = host
			} else if parsed.Opaque != "" {
				addr = parsed.Opaque
			}
		}
	}

	if strings.HasPrefix(addr, ":") {
		if len(addr) > 1 && addr[1] >= '0' && addr[1] <= '9' {
			return "0.0.0.0" + addr
		}
	}

	host, port, err := net.SplitHostPort(addr)
	if err == nil {
		if host == "" || host == "*" {
			host = "0.0.0.0"
		}
		if port == "" {
			port = "8080"
		}
		return net.JoinHostPort(host, port)
	}

	if ip := net.ParseIP(addr); ip != nil {
		return net.JoinHostPort(addr, "8080")
	}

	if !strings.Contains(addr, ":") {
		return net.JoinHostPort(addr, "8080")
	}

	return addr
}
