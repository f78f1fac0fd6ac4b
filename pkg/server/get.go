package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"pronounfix/pkg/pronoun"
	"pronounfix/pkg/schema"
	"pronounfix/pkg/utils"
)

func (s *Server) handleGetRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"service": "Pronoun Fix API",
		"status":  "ok",
	})
}

type charactersResp struct {
	Key        string                    `json:"key,omitempty"`
	Characters []pronoun.CharacterStatus `json:"characters"`
	Primary    string                    `json:"primaryCharacter,omitempty"`
	Force      string                    `json:"forceGender,omitempty"`
	Carry      int                       `json:"carryParagraphs"`
	Unusable   bool                      `json:"unusable,omitempty"`
	Reason     string                    `json:"reason,omitempty"`
}

// GET /api/characters?url=
func (s *Server) handleGetCharacters(c echo.Context) error {
	view, err := s.Glossary.View(c.Request().Context(), c.QueryParam("url"))
	resp := charactersResp{
		Key:        view.Key,
		Characters: pronoun.Statuses(view),
		Primary:    view.Primary,
		Carry:      view.Carry,
	}
	if view.Force.Definite() {
		resp.Force = view.Force.String()
	}
	if err != nil {
		if !pronoun.IsUnusable(err) {
			return c.JSON(http.StatusInternalServerError, utils.ErrJSON(err.Error()))
		}
		resp.Unusable = true
		resp.Reason = err.Error()
	}
	return c.JSON(http.StatusOK, resp)
}

// GET /api/schema
func (s *Server) handleGetSchema(c echo.Context) error {
	return c.JSON(http.StatusOK, schema.GlossarySchema)
}

// GET /api/report/:id
func (s *Server) handleGetReport(c echo.Context) error {
	rep, ok := s.Reports.Load(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "report not found")
	}
	return c.JSON(http.StatusOK, rep)
}

// POST /api/reload
func (s *Server) handlePostReload(c echo.Context) error {
	doc, err := s.Glossary.Refresh(c.Request().Context())
	if err != nil {
		c.Logger().Warnf("glossary reload failed: %v", err)
		return c.JSON(http.StatusServiceUnavailable, utils.ErrJSON(err.Error()))
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"keys":    doc.Keys(),
	})
}
