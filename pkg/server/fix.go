package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"pronounfix/pkg/diff"
	"pronounfix/pkg/pronoun"
	"pronounfix/pkg/utils"
)

type fixReq struct {
	URL    string   `json:"url"`
	Blocks []string `json:"blocks"`
	// Text is split on blank lines when Blocks is empty.
	Text string `json:"text"`
	Diff bool   `json:"diff"`
}

type fixResp struct {
	Blocks []string         `json:"blocks"`
	Report pronoun.Report   `json:"report"`
	Diffs  []diff.BlockDiff `json:"diffs,omitempty"`
}

// POST /api/fix
func (s *Server) handlePostFix(c echo.Context) error {
	var req fixReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	if len(req.Blocks) == 0 && req.Text != "" {
		req.Blocks = utils.Paragraphs(req.Text)
	}

	view, err := s.Glossary.View(c.Request().Context(), req.URL)
	if err != nil {
		if !pronoun.IsUnusable(err) {
			return c.JSON(http.StatusInternalServerError, utils.ErrJSON(err.Error()))
		}
		rep := pronoun.Unusable(view, err)
		s.Reports.Store(rep.ID, rep)
		c.Logger().Warnf("glossary unusable for %q: %v", req.URL, err)
		return c.JSON(http.StatusOK, fixResp{Blocks: req.Blocks, Report: rep})
	}

	blocks := pronoun.TextBlocks(req.Blocks...)
	rep := pronoun.Run(view, blocks)
	s.Reports.Store(rep.ID, rep)

	resp := fixResp{
		Blocks: make([]string, len(blocks)),
		Report: rep,
	}
	for i, b := range blocks {
		resp.Blocks[i] = b.Text()
	}
	if req.Diff {
		resp.Diffs = diff.Blocks(rep.Changes)
	}
	c.Logger().Debugf("fixed %d/%d blocks for key %q", rep.Changed, len(blocks), rep.Key)
	return c.JSON(http.StatusOK, resp)
}
