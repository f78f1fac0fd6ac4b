package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/openai/openai-go/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pronounfix/pkg/glossary"
	"pronounfix/pkg/inference"
	"pronounfix/pkg/pronoun"
	"pronounfix/pkg/schema"
)

const testGlossary = `{
  "default": {
    "characters": {
      "John": {"gender": "male"},
      "Mary": {"gender": "female", "aliases": ["Mare"]}
    }
  },
  "novels.example": {
    "characters": {"Wei": {"gender": "male"}},
    "carryParagraphs": 1
  },
  "empty.example": {"forceGender": "female"}
}`

type fakeInferencer struct {
	out string
	err error
}

func (f fakeInferencer) Infer(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string) (string, error) {
	return f.out, f.err
}

var _ inference.Inferencer = fakeInferencer{}

func newTestServer(t *testing.T, body string, inf inference.Inferencer) *Server {
	t.Helper()
	path := filepath.Join(t.TempDir(), "glossary.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return NewServer(context.Background(), glossary.NewLoader(path, time.Hour), inf)
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestGetRoot(t *testing.T) {
	s := newTestServer(t, testGlossary, nil)
	rec := do(t, s, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestPostFix(t *testing.T) {
	s := newTestServer(t, testGlossary, nil)

	rec := do(t, s, http.MethodPost, "/api/fix",
		`{"url":"https://other.example/1","blocks":["Mary lifted his blade. He smiled.","***","He waited."],"diff":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[fixResp](t, rec)
	assert.Equal(t, []string{"Mary lifted her blade. She smiled.", "***", "He waited."}, resp.Blocks)
	assert.Equal(t, 1, resp.Report.Changed)
	assert.Equal(t, glossary.DefaultKey, resp.Report.Key)
	require.Len(t, resp.Diffs, 1)
	assert.Equal(t, 2, resp.Diffs[0].Swaps)

	stored, ok := s.Reports.Load(resp.Report.ID)
	require.True(t, ok)
	assert.Equal(t, 1, stored.Changed)

	rec = do(t, s, http.MethodGet, "/api/report/"+resp.Report.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, resp.Report.ID, decode[pronoun.Report](t, rec).ID)
}

func TestPostFixText(t *testing.T) {
	s := newTestServer(t, testGlossary, nil)

	rec := do(t, s, http.MethodPost, "/api/fix",
		`{"url":"https://novels.example/c/2","text":"Wei raised her cup.\n\nShe drank."}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[fixResp](t, rec)
	assert.Equal(t, []string{"Wei raised his cup.", "He drank."}, resp.Blocks)
	assert.Equal(t, "novels.example", resp.Report.Key)
	assert.Empty(t, resp.Diffs)
}

func TestPostFixUnusable(t *testing.T) {
	s := newTestServer(t, `{"default": {"characters": {}}}`, nil)

	rec := do(t, s, http.MethodPost, "/api/fix", `{"blocks":["He smiled."]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[fixResp](t, rec)
	assert.True(t, resp.Report.Unusable)
	assert.Contains(t, resp.Report.Reason, glossary.ErrGlossaryEmpty.Error())
	assert.Equal(t, []string{"He smiled."}, resp.Blocks)
}

func TestPostFixInvalidJSON(t *testing.T) {
	s := newTestServer(t, testGlossary, nil)
	rec := do(t, s, http.MethodPost, "/api/fix", `{"blocks":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetReportMissing(t *testing.T) {
	s := newTestServer(t, testGlossary, nil)
	rec := do(t, s, http.MethodGet, "/api/report/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetCharacters(t *testing.T) {
	s := newTestServer(t, testGlossary, nil)

	rec := do(t, s, http.MethodGet, "/api/characters?url=https://novels.example/9", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[charactersResp](t, rec)
	assert.Equal(t, "novels.example", resp.Key)
	assert.Equal(t, 1, resp.Carry)
	assert.Equal(t, []pronoun.CharacterStatus{
		{Name: "John", Gender: "male"},
		{Name: "Mary", Gender: "female"},
		{Name: "Wei", Gender: "male"},
	}, resp.Characters)

	rec = do(t, s, http.MethodGet, "/api/characters?url=https://empty.example", "")
	resp = decode[charactersResp](t, rec)
	assert.Equal(t, "female", resp.Force)
	assert.False(t, resp.Unusable)
}

func TestGetCharactersUnavailable(t *testing.T) {
	s := newTestServer(t, `not json`, nil)
	rec := do(t, s, http.MethodGet, "/api/characters", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[charactersResp](t, rec)
	assert.True(t, resp.Unusable)
	assert.Contains(t, resp.Reason, glossary.ErrGlossaryUnavailable.Error())
}

func TestGetSchema(t *testing.T) {
	s := newTestServer(t, testGlossary, nil)
	rec := do(t, s, http.MethodGet, "/api/schema", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "primaryCharacter")
	assert.Contains(t, rec.Body.String(), "carryParagraphs")
}

func TestPostReload(t *testing.T) {
	s := newTestServer(t, testGlossary, nil)
	rec := do(t, s, http.MethodPost, "/api/reload", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "novels.example")
}

func TestPostReloadBrokenGlossary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glossary.json")
	require.NoError(t, os.WriteFile(path, []byte(testGlossary), 0o644))
	s := NewServer(context.Background(), glossary.NewLoader(path, time.Hour), nil)

	rec := do(t, s, http.MethodGet, "/api/characters?url=https://novels.example/1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, os.WriteFile(path, []byte(`{broken`), 0o644))
	rec = do(t, s, http.MethodPost, "/api/reload", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	// passes keep the copy that loaded before the reload
	rec = do(t, s, http.MethodGet, "/api/characters?url=https://novels.example/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "novels.example", decode[charactersResp](t, rec).Key)
}

func TestPostSuggestModel(t *testing.T) {
	inf := fakeInferencer{out: "```json\n" +
		`{"characters":[{"name":"Lin Feng","gender":"male","aliases":["Young Master Lin"]},{"name":"Mary","gender":"female","aliases":[]}]}` +
		"\n```"}
	s := newTestServer(t, testGlossary, inf)

	rec := do(t, s, http.MethodPost, "/api/suggest", `{"text":"Lin Feng bowed to Mary.","url":"https://x.example"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[suggestResp](t, rec)
	assert.Equal(t, "model", resp.Source)
	require.Len(t, resp.Characters, 1)
	assert.Equal(t, "Lin Feng", resp.Characters[0].Name)
	assert.Equal(t, "male", resp.Site.Characters["Lin Feng"].Gender)
	assert.Equal(t, []string{"Young Master Lin"}, resp.Site.Characters["Lin Feng"].Aliases)
}

func TestPostSuggestHeuristicFallback(t *testing.T) {
	s := newTestServer(t, testGlossary, fakeInferencer{err: errors.New("offline")})

	text := "Lady Alice greeted Bob. Alice smiled while Bob bowed. Then Carol left."
	rec := do(t, s, http.MethodPost, "/api/suggest", `{"text":`+jsonString(text)+`}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[suggestResp](t, rec)
	assert.Equal(t, "heuristic", resp.Source)
	names := make(map[string]string)
	for _, c := range resp.Characters {
		names[c.Name] = c.Gender
	}
	assert.Equal(t, map[string]string{"Alice": "female", "Bob": "unknown"}, names)
}

func TestPostSuggestEmpty(t *testing.T) {
	s := newTestServer(t, testGlossary, nil)
	rec := do(t, s, http.MethodPost, "/api/suggest", `{"text":"   "}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[suggestResp](t, rec).Characters)
}

func TestMergeSuggested(t *testing.T) {
	got := mergeSuggested(nil, []schema.SuggestedCharacter{
		{Name: " Su Yue ", Gender: "unknown", Aliases: []string{"Yue'er"}},
		{Name: "su yue", Gender: "female", Aliases: []string{"yue'er", "Su Yue", "Little Yue"}},
		{Name: "", Gender: "male"},
	})
	require.Len(t, got, 1)
	assert.Equal(t, "Su Yue", got[0].Name)
	assert.Equal(t, "female", got[0].Gender)
	assert.Equal(t, []string{"Yue'er", "Little Yue"}, got[0].Aliases)
}

func TestShutdownSavesReports(t *testing.T) {
	s := newTestServer(t, testGlossary, nil)
	s.ReportsPath = filepath.Join(t.TempDir(), "reports.json")
	s.Reports.Store("r1", pronoun.Report{ID: "r1", Changed: 3})
	require.NoError(t, s.Shutdown(context.Background()))

	restored := newTestServer(t, testGlossary, nil)
	restored.ReportsPath = s.ReportsPath
	require.NoError(t, restored.LoadReports())
	rep, ok := restored.Reports.Load("r1")
	require.True(t, ok)
	assert.Equal(t, 3, rep.Changed)
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
