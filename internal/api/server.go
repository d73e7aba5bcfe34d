package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"SignalDesk/internal/classifier"
	"SignalDesk/internal/model"
	"SignalDesk/internal/scheduler"
	"SignalDesk/internal/workbook"
)

// Server exposes the latest signals and workbook notes over HTTP.
type Server struct {
	echo      *echo.Echo
	sched     *scheduler.Scheduler
	workbook  *workbook.Workbook
	threshold float64
	validate  *validator.Validate
	log       zerolog.Logger
}

// NewServer builds the echo server and registers all routes. threshold is the
// configured slope significance default, used when a request does not supply
// one.
func NewServer(sched *scheduler.Scheduler, wb *workbook.Workbook, threshold float64,
	metricsEnabled bool, log zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:      e,
		sched:     sched,
		workbook:  wb,
		threshold: threshold,
		validate:  validator.New(),
		log:       log,
	}

	e.GET("/healthz", s.health)
	if metricsEnabled {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}

	v1 := e.Group("/api/v1")
	v1.GET("/signals", s.signals)
	v1.PUT("/notes", s.updateNote)
	v1.POST("/refresh", s.refresh)

	return s
}

// Start listens on addr until the server is shut down.
func (s *Server) Start(addr string) error {
	s.log.Info().Str("addr", addr).Msg("http server listening")
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the underlying http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type signalsResponse struct {
	Timeframe string               `json:"timeframe"`
	Threshold float64              `json:"threshold"`
	Count     int                  `json:"count"`
	Signals   []model.SignalRecord `json:"signals"`
}

// signals returns the latest classified batch for a timeframe. A threshold
// query parameter re-runs classification over the cached indicator rows with
// that slope significance, so callers can explore sensitivity without waiting
// for the next scheduled refresh.
func (s *Server) signals(c echo.Context) error {
	tf := model.TimeframeDaily
	if raw := c.QueryParam("timeframe"); raw != "" {
		parsed, err := model.ParseTimeframe(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		tf = parsed
	}

	threshold := s.threshold
	if raw := c.QueryParam("threshold"); raw != "" {
		if err := echo.QueryParamsBinder(c).Float64("threshold", &threshold).BindError(); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "threshold must be a number")
		}
	}

	cls, err := classifier.New(threshold)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	records := s.sched.Latest(tf)
	out := make([]model.SignalRecord, 0, len(records))
	for _, rec := range records {
		signal, err := cls.Classify(rec.Row)
		if err != nil {
			s.log.Warn().Err(err).Str("symbol", rec.Row.Symbol).Msg("skipping row")
			continue
		}
		rec.Signal = signal
		out = append(out, rec)
	}

	if want := c.QueryParam("signal"); want != "" {
		filtered := out[:0]
		for _, rec := range out {
			if string(rec.Signal) == want {
				filtered = append(filtered, rec)
			}
		}
		out = filtered
	}
	if want := c.QueryParam("symbol"); want != "" {
		filtered := out[:0]
		for _, rec := range out {
			if rec.Row.Symbol == want {
				filtered = append(filtered, rec)
			}
		}
		out = filtered
	}

	return c.JSON(http.StatusOK, signalsResponse{
		Timeframe: string(tf),
		Threshold: threshold,
		Count:     len(out),
		Signals:   out,
	})
}

type noteRequest struct {
	Timeframe string `json:"timeframe" validate:"required"`
	Datetime  string `json:"datetime" validate:"required"`
	Symbol    string `json:"symbol" validate:"required"`
	Signal    string `json:"signal" validate:"required"`
	Note      string `json:"note"`
}

func (s *Server) updateNote(c echo.Context) error {
	var req noteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := s.validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	tf, err := model.ParseTimeframe(req.Timeframe)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ts, err := time.Parse("2006-01-02 15:04", req.Datetime)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "datetime must be formatted as 2006-01-02 15:04")
	}

	err = s.workbook.UpdateNote(tf, ts, req.Symbol, model.Signal(req.Signal), req.Note)
	if errors.Is(err, workbook.ErrRowNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) refresh(c echo.Context) error {
	tf := model.TimeframeDaily
	if raw := c.QueryParam("timeframe"); raw != "" {
		parsed, err := model.ParseTimeframe(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		tf = parsed
	}

	go func() {
		if err := s.sched.Refresh(tf); err != nil {
			s.log.Error().Err(err).Str("timeframe", string(tf)).Msg("api-triggered refresh failed")
		}
	}()
	return c.JSON(http.StatusAccepted, map[string]string{
		"status":    "refresh started",
		"timeframe": string(tf),
	})
}
