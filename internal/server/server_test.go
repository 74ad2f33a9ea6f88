// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/femcite/internal/export"
	"github.com/pdiddy/femcite/internal/format"
	"github.com/pdiddy/femcite/internal/generate"
	"github.com/pdiddy/femcite/internal/pipeline"
	"github.com/pdiddy/femcite/internal/search"
	"github.com/pdiddy/femcite/internal/session"
	"github.com/pdiddy/femcite/internal/synth"
	"github.com/pdiddy/femcite/pkg/types"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type testEnv struct {
	srv       *Server
	retrieved int
	genErr    error
	entries   []types.SourceEntry
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		entries: []types.SourceEntry{
			types.SourceEntry{Title: "Femme theory", Authors: "Blair, K. L., & Hoskin, R. A.", Year: 2019, DOI: "10.1/ft"}.WithCitation(),
			types.SourceEntry{Title: "Femmephobia", Authors: "Hoskin, R. A.", Year: 2017}.WithCitation(),
		},
	}

	retriever := search.RetrieverFunc(func(context.Context, string, int) ([]types.SourceEntry, error) {
		env.retrieved++
		return env.entries, nil
	})
	gen := generate.GeneratorFunc(func(_ context.Context, prompt string) (string, error) {
		if env.genErr != nil {
			return "", env.genErr
		}
		if strings.HasPrefix(prompt, "Format the following references") {
			return "Blair, K. L., & Hoskin, R. A. (2019). Femme theory.", nil
		}
		return "Femininity is devalued (Blair & Hoskin, 2019).", nil
	})

	writer := export.New(types.ExportConfig{Dir: t.TempDir(), PerSession: true}, nil)
	orch := pipeline.New(retriever, synth.New(gen, nil), format.New(gen, nil), writer, pipeline.Options{Verify: true}, nil)
	env.srv = New(session.NewManager(nil, nil), orch, writer, nil)
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) createSession(t *testing.T) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var out struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out.SessionID)
	return out.SessionID
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestQueryFlow(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t)

	rec := env.do(t, http.MethodPost, "/api/sessions/"+id+"/query", QueryRequest{Question: "femme theory", Style: "mla"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res pipeline.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, pipeline.StatusAnswered, res.Status)
	assert.Equal(t, "Femininity is devalued (Blair & Hoskin, 2019).", res.Answer)
	assert.Equal(t, types.StyleMLA, res.Style)
	assert.Empty(t, res.Warnings)
	require.Len(t, res.Turns, 3)

	// Repeating the question does no work.
	rec = env.do(t, http.MethodPost, "/api/sessions/"+id+"/query", QueryRequest{Question: "femme theory"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, pipeline.StatusUnchanged, res.Status)
	assert.Equal(t, 1, env.retrieved)

	rec = env.do(t, http.MethodGet, "/api/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var st session.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, "femme theory", st.LastQuestion)
	assert.Len(t, st.Turns, 3)

	rec = env.do(t, http.MethodGet, "/api/sessions/"+id+"/transcript", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="femcite_chat.txt"`)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "You:\nfemme theory\n\nFemCite:\n"))

	rec = env.do(t, http.MethodGet, "/api/sessions/"+id+"/bibliography", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/x-bibtex")
	assert.Contains(t, rec.Body.String(), "@article{femcite1,")
	assert.NotContains(t, rec.Body.String(), "femcite2")
}

func TestQueryNoResult(t *testing.T) {
	env := newTestEnv(t)
	env.entries = nil
	id := env.createSession(t)

	rec := env.do(t, http.MethodPost, "/api/sessions/"+id+"/query", QueryRequest{Question: "astrophysics"})
	require.Equal(t, http.StatusOK, rec.Code)
	var res pipeline.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, pipeline.StatusNoResult, res.Status)
	assert.Equal(t, pipeline.NoResultNotice, res.Notice)

	rec = env.do(t, http.MethodGet, "/api/sessions/"+id+"/transcript", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQueryErrors(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t)

	rec := env.do(t, http.MethodPost, "/api/sessions/"+id+"/query", QueryRequest{Question: "q", Style: "Harvard"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/sessions/missing/query", QueryRequest{Question: "q"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	env.genErr = errors.New("upstream down")
	rec = env.do(t, http.MethodPost, "/api/sessions/"+id+"/query", QueryRequest{Question: "q"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var out map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "synthesis", out["kind"])
	assert.NotEmpty(t, out["error"])

	req := httptest.NewRequest(http.MethodPost, "/api/sessions/"+id+"/query", strings.NewReader("{bad"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetSessionNotFound(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/sessions/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/sessions/nope/bibliography", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
