package server

import (
	"context"
	"html/template"
	"io"
	"net/http"
	"time"

	"DietWallah/internal/utility"
	"DietWallah/web"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"golang.org/x/sync/errgroup"
)

// TemplateRenderer is a custom html/template renderer for Echo framework
type TemplateRenderer struct {
	templates *template.Template
}

// Render renders a template document
func (t *TemplateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	// Use ExecuteTemplate to select the correct template by name
	return t.templates.ExecuteTemplate(w, name, data)
}

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(s.metrics.Middleware)
	e.Use(LoggerMiddleware)

	e.StaticFS("/static", echo.MustSubFS(web.Static, "static"))

	e.Renderer = &TemplateRenderer{
		templates: template.Must(template.ParseFS(web.Templates, "templates/*.html")),
	}

	// Operational routes
	e.GET("/health", s.healthHandler)
	e.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))

	limiter := s.submitLimiter()

	// Form pages
	e.GET("/", s.renderFormHandler)
	e.POST("/field/:name", s.updateFieldHandler)
	e.POST("/submit", s.submitFormHandler, limiter)
	e.POST("/reset", s.resetFormHandler)
	e.GET("/ws", s.refreshSocketHandler)

	// JSON API
	api := e.Group("/api/plan")
	api.GET("", s.getPlanHandler)
	api.PUT("/fields/:name", s.updatePlanFieldHandler)
	api.POST("/submit", s.submitPlanHandler, limiter)
	api.POST("/reset", s.resetPlanHandler)

	return e
}

// submitLimiter throttles plan requests per client IP, since each one is a
// paid call upstream.
func (s *Server) submitLimiter() echo.MiddlewareFunc {
	if s.submitRate <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      s.submitRate,
		Burst:     s.submitBurst,
		ExpiresIn: 3 * time.Minute,
	})
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return utility.GetRealIP(c), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			requestLogger(c).Warn().Str("ip", identifier).Msg("Submit rate limit exceeded")
			return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "Too many plan requests, please wait"})
		},
	})
}

type healthResponse struct {
	Status         string  `json:"status"`
	ActiveSessions int     `json:"active_sessions"`
	CPUPercent     float64 `json:"cpu_percent"`
	MemoryPercent  float64 `json:"memory_percent"`
}

// healthHandler reports liveness plus host load. Host figures that cannot be
// read are left at zero.
func (s *Server) healthHandler(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), time.Second)
	defer cancel()

	res := healthResponse{
		Status:         "up",
		ActiveSessions: s.store.Len(),
	}

	g, grpCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		percent, err := cpu.PercentWithContext(grpCtx, 0, false)
		if err != nil {
			return err
		}
		if len(percent) > 0 {
			res.CPUPercent = percent[0]
		}
		return nil
	})
	g.Go(func() error {
		v, err := mem.VirtualMemoryWithContext(grpCtx)
		if err != nil {
			return err
		}
		res.MemoryPercent = v.UsedPercent
		return nil
	})
	if err := g.Wait(); err != nil {
		requestLogger(c).Warn().Err(err).Msg("Host stats unavailable")
	}

	return c.JSON(http.StatusOK, res)
}

func LoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Response().Header().Set("X-Request-ID", requestID)

		logger := log.With().Str("request_id", requestID).Logger()

		c.Set("logger", &logger)

		return next(c)
	}
}

// requestLogger returns the logger set by LoggerMiddleware, or the global one.
func requestLogger(c echo.Context) *zerolog.Logger {
	if l, ok := c.Get("logger").(*zerolog.Logger); ok {
		return l
	}
	return &log.Logger
}
