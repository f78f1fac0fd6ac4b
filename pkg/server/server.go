package server

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"pronounfix/pkg/glossary"
	"pronounfix/pkg/inference"
	"pronounfix/pkg/pronoun"
	"pronounfix/pkg/utils"
)

type Reports = utils.SyncMap[map[string]pronoun.Report, string, pronoun.Report]

type Server struct {
	Echo       *echo.Echo
	Glossary   *glossary.Loader
	Inferencer inference.Inferencer
	Reports    *Reports
	Ctx        context.Context

	// ReportsPath is where pass reports are kept between runs. Empty disables it.
	ReportsPath string
}

// NewServer wires the HTTP API. inf may be nil, in which case suggestions use
// the local heuristic only.
func NewServer(ctx context.Context, loader *glossary.Loader, inf inference.Inferencer) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit("8M"))

	s := &Server{
		Echo:       e,
		Glossary:   loader,
		Inferencer: inf,
		Reports:    utils.NewSyncMap[map[string]pronoun.Report](),
		Ctx:        ctx,
	}

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.Echo.GET("/", s.handleGetRoot)

	api := s.Echo.Group("/api")
	api.POST("/fix", s.handlePostFix)             // blocks in, fixed blocks + report out
	api.GET("/characters", s.handleGetCharacters) // resolved glossary for ?url=
	api.GET("/schema", s.handleGetSchema)
	api.GET("/report/:id", s.handleGetReport)
	api.POST("/reload", s.handlePostReload)
	api.POST("/suggest", s.handlePostSuggest) // text -> proposed glossary entries
}

// LoadReports restores reports saved by a previous Shutdown.
func (s *Server) LoadReports() error {
	if s.ReportsPath == "" {
		return nil
	}
	saved, err := utils.Load[map[string]pronoun.Report](s.ReportsPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	for id, rep := range saved {
		s.Reports.Store(id, rep)
	}
	log.Info("restored reports", "count", len(saved), "path", s.ReportsPath)
	return nil
}

func (s *Server) Start(addr string) error {
	log.Info("server listening", "addr", addr)
	return s.Echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Info("shutting down server")

	var saveErr error
	if s.ReportsPath != "" {
		saveErr = utils.Save(s.ReportsPath, s.Reports.Snapshot())
	}
	if err := s.Echo.Shutdown(ctx); err != nil {
		return err
	}

	return saveErr
}
