package api

import (
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"docnorm/pkg/pipeline"
)

// ServerOptions configures NewServer.
type ServerOptions struct {
	MaxUploadBytes int64
	RequestLogging bool
}

// NewServer builds the echo instance with middleware and every route registered.
func NewServer(h *Handler, opts ServerOptions, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize:         1024 * 4,
		DisablePrintStack: false,
	}))

	if opts.RequestLogging {
		e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
			LogMethod:  true,
			LogURI:     true,
			LogStatus:  true,
			LogLatency: true,
			Skipper: func(c echo.Context) bool {
				return c.Request().URL.Path == "/api/health"
			},
			LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
				log.Info().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Msg("request")
				return nil
			},
		}))
	}

	if opts.MaxUploadBytes > 0 {
		e.Use(middleware.BodyLimit(bodyLimit(opts.MaxUploadBytes)))
	}

	RegisterRoutes(e, h)
	return e
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, h *Handler) {
	apiGroup := e.Group("/api")
	apiGroup.GET("/health", h.HandleHealth)

	apiGroup.GET("/scrap", h.HandleScrap)

	apiGroup.POST("/upload", h.HandleUpload(pipeline.KindPDF))
	apiGroup.POST("/upload/pdf", h.HandleUpload(pipeline.KindPDF))
	apiGroup.POST("/upload/word", h.HandleUpload(pipeline.KindWord))
	apiGroup.POST("/upload/excel", h.HandleUpload(pipeline.KindExcel))
}

func bodyLimit(n int64) string {
	kb := n >> 10
	if kb < 1 {
		kb = 1
	}
	return fmt.Sprintf("%dK", kb)
}

