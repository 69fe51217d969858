package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repo-rag/internal/database"
	"repo-rag/internal/docstore"
	"repo-rag/internal/llm"
	"repo-rag/internal/models"
	"repo-rag/internal/pipeline"
	"repo-rag/internal/prompt"
)

type fakeAnswerer struct {
	answer   *models.Answer
	err      error
	got      pipeline.Request
	deadline bool
	panicky  bool
}

func (f *fakeAnswerer) Answer(ctx context.Context, req pipeline.Request) (*models.Answer, error) {
	if f.panicky {
		panic("boom")
	}
	f.got = req
	_, f.deadline = ctx.Deadline()
	return f.answer, f.err
}

type testServer struct {
	router   *gin.Engine
	answerer *fakeAnswerer
	store    *database.MemoryStore
	docsDir  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ts := &testServer{
		answerer: &fakeAnswerer{answer: &models.Answer{
			FirstResponse:  "one",
			SecondResponse: "two",
			Sources:        []models.ScoredChunk{},
		}},
		store:   database.NewMemoryStore(),
		docsDir: t.TempDir(),
	}
	ts.router = NewRouter(Options{
		Answerer:     ts.answerer,
		Documents:    docstore.New(ts.docsDir),
		Settings:     ts.store,
		QueryTimeout: time.Minute,
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}

func TestQuery_Success(t *testing.T) {
	ts := newTestServer(t)
	ts.answerer.answer.Repository = &models.RepositoryInfo{URL: "https://github.com/acme/widgets.git", Name: "widgets"}

	w := ts.do(t, http.MethodPost, "/rag/query", QueryRequest{APIKey: "k", UserQuery: "what is this?"})

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "one", resp["first_response"])
	assert.Equal(t, "two", resp["second_response"])
	assert.Equal(t, []any{}, resp["sources"])
	assert.Equal(t, "widgets", resp["repository"].(map[string]any)["repo_name"])
	assert.NotContains(t, resp, "Prompt")

	assert.Equal(t, pipeline.Request{Query: "what is this?", APIKey: "k"}, ts.answerer.got)
	assert.True(t, ts.answerer.deadline)
}

func TestQuery_BadRequests(t *testing.T) {
	ts := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodPost, "/rag/query", `{`).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodPost, "/rag/query", QueryRequest{UserQuery: "   "}).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodPost, "/rag/query", QueryRequest{}).Code)
}

func TestQuery_BackendFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.answerer.err = &llm.BackendError{Turn: 2, Err: errors.New("503 from upstream")}

	w := ts.do(t, http.MethodPost, "/rag/query", QueryRequest{UserQuery: "q"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, decode(t, w)["detail"], "turn 2")
}

func TestQuery_UnexpectedError(t *testing.T) {
	ts := newTestServer(t)
	ts.answerer.err = errors.New("disk on fire")

	w := ts.do(t, http.MethodPost, "/rag/query", QueryRequest{UserQuery: "q"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRecovery(t *testing.T) {
	ts := newTestServer(t)
	ts.answerer.panicky = true

	w := ts.do(t, http.MethodPost, "/rag/query", QueryRequest{UserQuery: "q"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", decode(t, w)["error"])
}

func upload(t *testing.T, ts *testServer, filename, target, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if target != "" {
		require.NoError(t, mw.WriteField("path", target))
	}
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/rag/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func TestDocuments_Lifecycle(t *testing.T) {
	ts := newTestServer(t)

	w := upload(t, ts, "notes.md", "", "hello docs")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "notes.md", decode(t, w)["path"])

	w = upload(t, ts, "ignored.txt", "guides/setup.txt", "step one")
	require.Equal(t, http.StatusCreated, w.Code)

	data, err := os.ReadFile(filepath.Join(ts.docsDir, "guides", "setup.txt"))
	require.NoError(t, err)
	assert.Equal(t, "step one", string(data))

	w = ts.do(t, http.MethodGet, "/rag/documents", nil)
	require.Equal(t, http.StatusOK, w.Code)
	docs := decode(t, w)["documents"].([]any)
	require.Len(t, docs, 2)
	assert.Equal(t, "guides/setup.txt", docs[0].(map[string]any)["path"])

	assert.Equal(t, http.StatusNoContent, ts.do(t, http.MethodDelete, "/rag/documents/guides/setup.txt", nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodDelete, "/rag/documents/guides/setup.txt", nil).Code)
}

func TestDocuments_Rejections(t *testing.T) {
	ts := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, upload(t, ts, "x.md", "../x.md", "x").Code)
	assert.Equal(t, http.StatusBadRequest, upload(t, ts, ".env", "", "SECRET=1").Code)

	req := httptest.NewRequest(http.MethodPost, "/rag/documents", nil)
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code, "missing file field")
}

func TestSettings_Prompts(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/rag/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	effective := decode(t, w)["effective"].(map[string]any)
	assert.Equal(t, prompt.DefaultPreamble, effective["system_prompt"])
	assert.Equal(t, llm.DefaultFollowUp, effective["follow_up_prompt"])

	w = ts.do(t, http.MethodPut, "/rag/settings/prompts/follow_up", map[string]string{"content": "Verify each path."})
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusNotFound,
		ts.do(t, http.MethodPut, "/rag/settings/prompts/greeting", map[string]string{"content": "hi"}).Code)

	s, err := ts.store.Settings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Verify each path.", s.FollowUpPrompt)

	w = ts.do(t, http.MethodGet, "/rag/settings", nil)
	resp := decode(t, w)
	assert.Equal(t, "Verify each path.", resp["follow_up_prompt"])
	assert.Equal(t, "Verify each path.", resp["effective"].(map[string]any)["follow_up_prompt"])
}

func TestSettings_Project(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPut, "/rag/settings/project", projectRequest{Name: "Widgets", Description: "Widget toolkit"})
	require.Equal(t, http.StatusOK, w.Code)

	s, err := ts.store.Settings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.Project{Name: "Widgets", Description: "Widget toolkit"}, s.Project)
}

func TestSettings_Examples(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/rag/settings/examples", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{}, decode(t, w)["examples"])

	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodPost, "/rag/settings/examples", map[string]string{"content": " "}).Code)

	w = ts.do(t, http.MethodPost, "/rag/settings/examples", map[string]string{"content": "widget.New()"})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode(t, w)["id"].(float64)

	w = ts.do(t, http.MethodGet, "/rag/settings/examples", nil)
	assert.Len(t, decode(t, w)["examples"], 1)

	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodDelete, "/rag/settings/examples/abc", nil).Code)
	assert.Equal(t, http.StatusNoContent, ts.do(t, http.MethodDelete, "/rag/settings/examples/"+formatID(id), nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodDelete, "/rag/settings/examples/"+formatID(id), nil).Code)
}

func formatID(id float64) string {
	b, _ := json.Marshal(int64(id))
	return string(b)
}
