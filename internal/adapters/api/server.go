package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mikey/lead-qualifier/internal/core"
	"go.uber.org/zap"
)

// QualifyResponse is the success body of POST /qualify
type QualifyResponse struct {
	Success      bool       `json:"success"`
	Score        int        `json:"score"`
	Band         string     `json:"band"`
	ExtraEntries int        `json:"extraEntries"`
	Entries      int        `json:"entries"`
	Variant      string     `json:"variant"`
	Tags         []core.Tag `json:"tags"`
}

// ErrorResponse is the error body of every endpoint
type ErrorResponse struct {
	Error string `json:"error"`
}

// Server exposes the qualification pipeline over HTTP
type Server struct {
	service    *core.QualificationService
	logger     *zap.Logger
	listenAddr string
	echo       *echo.Echo
}

// NewServer creates a new HTTP server
func NewServer(service *core.QualificationService, logger *zap.Logger, listenAddr string) *Server {
	s := &Server{
		service:    service,
		logger:     logger,
		listenAddr: listenAddr,
		echo:       echo.New(),
	}

	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("Request handled",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency))
			return nil
		},
	}))

	s.echo.POST("/qualify", s.handleQualify)
	s.echo.GET("/health", s.handleHealth)

	return s
}

// Handler returns the underlying HTTP handler
func (s *Server) Handler() http.Handler {
	return s.echo
}

// ProcessSubmission runs one submission through the pipeline
func (s *Server) ProcessSubmission(ctx context.Context, sub *core.Submission) (*core.Outcome, error) {
	return s.service.Submit(ctx, sub)
}

// Start starts listening in the background
func (s *Server) Start() error {
	s.logger.Info("HTTP server starting", zap.String("address", s.listenAddr))

	go func() {
		if err := s.echo.Start(s.listenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop gracefully shuts the server down
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleQualify(c echo.Context) error {
	var sub core.Submission
	if err := c.Bind(&sub); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	out, err := s.ProcessSubmission(c.Request().Context(), &sub)
	if err != nil {
		var verr *core.ValidationError
		if errors.As(err, &verr) {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: verr.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to save entry"})
	}

	return c.JSON(http.StatusOK, QualifyResponse{
		Success:      true,
		Score:        out.Classification.Score,
		Band:         string(out.Classification.Band),
		ExtraEntries: out.BonusGranted,
		Entries:      out.Entry.EntriesCount,
		Variant:      string(out.Classification.Variant),
		Tags:         out.Classification.Tags.Sorted(),
	})
}
