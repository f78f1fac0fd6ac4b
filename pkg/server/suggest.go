package server

import (
	"encoding/json"
	"net/http"
	"regexp"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/openai/openai-go/v3"

	"pronounfix/pkg/glossary"
	"pronounfix/pkg/schema"
	"pronounfix/pkg/utils"
)

const suggestChunkRunes = 8192 * 4

type suggestReq struct {
	Text string `json:"text"`
	// URL, when set, drops characters the glossary already knows for that page.
	URL string `json:"url"`
}

type suggestResp struct {
	Characters []schema.SuggestedCharacter `json:"characters"`
	Site       schema.SiteConfig           `json:"site"`
	Source     string                      `json:"source"`
}

// POST /api/suggest
func (s *Server) handlePostSuggest(c echo.Context) error {
	var req suggestReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		return c.JSON(http.StatusOK, suggestResp{Site: siteFragment(nil), Source: "none"})
	}

	ctx := c.Request().Context()
	source := "model"
	var accum []schema.SuggestedCharacter
	for i, chunk := range utils.ChunkText(req.Text, suggestChunkRunes) {
		if c.Logger().Level() <= log.DEBUG {
			if tokens, err := utils.CountTokens(chunk); err == nil {
				c.Logger().Debugf("suggesting from chunk %d (%d tokens)", i+1, tokens)
			}
		}

		part, err := s.inferSuggestion(c, chunk)
		if err != nil {
			c.Logger().Warnf("suggestion inference failed on chunk %d, falling back to heuristic: %v", i+1, err)
			source = "heuristic"
			part = heuristicSuggestion(chunk)
		}
		accum = mergeSuggested(accum, part)
	}

	if req.URL != "" {
		if view, err := s.Glossary.View(ctx, req.URL); err == nil {
			accum = slices.DeleteFunc(accum, func(ch schema.SuggestedCharacter) bool {
				_, known := view.Lookup(ch.Name)
				return known
			})
		}
	}

	return c.JSON(http.StatusOK, suggestResp{
		Characters: accum,
		Site:       siteFragment(accum),
		Source:     source,
	})
}

func (s *Server) inferSuggestion(c echo.Context, chunk string) ([]schema.SuggestedCharacter, error) {
	if s.Inferencer == nil {
		return nil, errNoInferencer
	}
	params := &openai.ChatCompletionNewParams{
		MaxCompletionTokens: openai.Int(4096),
		ResponseFormat:      schema.SuggestionResponseFormat(),
	}
	out, err := s.Inferencer.Infer(c.Request().Context(), params, suggestPrompt, chunk)
	if err != nil {
		return nil, err
	}

	if idx := strings.LastIndex(out, "</think>"); idx != -1 {
		out = out[idx+len("</think>"):]
	}
	var parsed schema.Suggestion
	if err := json.Unmarshal([]byte(utils.CleanJSON(out)), &parsed); err != nil {
		c.Logger().Debugf("model output:\n```\n%s\n```", utils.LimitStr(out, 2000))
		return nil, err
	}
	if len(parsed.Characters) == 0 {
		return nil, errEmptySuggestion
	}
	return parsed.Characters, nil
}

// siteFragment shapes suggestions as a glossary site entry ready to paste.
func siteFragment(chars []schema.SuggestedCharacter) schema.SiteConfig {
	site := schema.SiteConfig{Characters: make(map[string]schema.Character, len(chars))}
	for _, ch := range chars {
		site.Characters[ch.Name] = schema.Character{
			Gender:  glossary.ParseGender(ch.Gender).String(),
			Aliases: ch.Aliases,
		}
	}
	return site
}

// mergeSuggested merges characters by name ignoring case and unions their
// aliases. The first definite gender seen for a name is kept.
func mergeSuggested(base, updates []schema.SuggestedCharacter) []schema.SuggestedCharacter {
	by := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

	idx := make(map[string]int, len(base))
	for i, ch := range base {
		if k := by(ch.Name); k != "" {
			idx[k] = i
		}
	}

	for _, up := range updates {
		name := strings.TrimSpace(up.Name)
		if name == "" {
			continue
		}
		gender := glossary.ParseGender(up.Gender)
		i, ok := idx[by(name)]
		if !ok {
			base = append(base, schema.SuggestedCharacter{Name: name, Gender: gender.String()})
			i = len(base) - 1
			idx[by(name)] = i
		}
		cur := &base[i]
		if !glossary.ParseGender(cur.Gender).Definite() && gender.Definite() {
			cur.Gender = gender.String()
		}
		for _, a := range up.Aliases {
			a = strings.TrimSpace(a)
			if a == "" || strings.EqualFold(a, cur.Name) {
				continue
			}
			if slices.ContainsFunc(cur.Aliases, func(x string) bool { return strings.EqualFold(x, a) }) {
				continue
			}
			cur.Aliases = append(cur.Aliases, a)
		}
	}
	return base
}

const honorifics = `Mr|Mrs|Ms|Miss|Lord|Lady|Sir|Madam|Brother|Sister|Young Master|Young Miss`

var (
	nameRX          = regexp.MustCompile(`\b[[:upper:]][[:lower:]]+(?:\s+[[:upper:]][[:lower:]]+){0,2}\b`)
	honorificRX     = regexp.MustCompile(`\b(` + honorifics + `)\.?\s+([[:upper:]][[:lower:]]+)`)
	leadHonorificRX = regexp.MustCompile(`^(?:` + honorifics + `)\.?\s+`)
)

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "but": {}, "then": {}, "when": {}, "what": {}, "this": {},
	"that": {}, "there": {}, "they": {}, "she": {}, "her": {}, "his": {}, "him": {},
	"chapter": {}, "after": {}, "before": {}, "however": {}, "meanwhile": {},
}

var honorificGender = map[string]glossary.Gender{
	"mr": glossary.Male, "lord": glossary.Male, "sir": glossary.Male,
	"brother": glossary.Male, "young master": glossary.Male,
	"mrs": glossary.Female, "ms": glossary.Female, "miss": glossary.Female,
	"lady": glossary.Female, "madam": glossary.Female, "sister": glossary.Female,
	"young miss": glossary.Female,
}

// heuristicSuggestion is a conservative local fallback: capitalized names
// seen at least twice, with a gender only when an honorific gives it away.
func heuristicSuggestion(text string) []schema.SuggestedCharacter {
	genders := make(map[string]glossary.Gender)
	for _, m := range honorificRX.FindAllStringSubmatch(text, -1) {
		genders[m[2]] = honorificGender[strings.ToLower(m[1])]
	}

	counts := map[string]int{}
	var order []string
	for _, m := range nameRX.FindAllString(text, -1) {
		m = leadHonorificRX.ReplaceAllString(m, "")
		if _, stop := stopWords[strings.ToLower(m)]; stop {
			continue
		}
		if _, title := honorificGender[strings.ToLower(m)]; title {
			continue
		}
		if counts[m] == 0 {
			order = append(order, m)
		}
		counts[m]++
	}

	// most frequent first, document order among equals
	slices.SortStableFunc(order, func(a, b string) int { return counts[b] - counts[a] })

	var out []schema.SuggestedCharacter
	for _, name := range order {
		if counts[name] < 2 {
			continue
		}
		out = append(out, schema.SuggestedCharacter{
			Name:   name,
			Gender: genders[name].String(),
		})
	}
	return out
}
