package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitayama-ai/x-viral-tweet-generator/internal/pipeline"
	"github.com/kitayama-ai/x-viral-tweet-generator/internal/research"
	"github.com/kitayama-ai/x-viral-tweet-generator/internal/rewrite"
	"github.com/kitayama-ai/x-viral-tweet-generator/internal/source"
	"github.com/kitayama-ai/x-viral-tweet-generator/internal/types"
)

type memorySink struct {
	bundles []types.ResultBundle
	updated map[int]string
}

func (s *memorySink) Append(ctx context.Context, b types.ResultBundle) (int, error) {
	s.bundles = append(s.bundles, b)
	return len(s.bundles), nil
}
func (s *memorySink) UpdateImageURL(ctx context.Context, row int, url string) error {
	if s.updated == nil {
		s.updated = map[int]string{}
	}
	s.updated[row] = url
	return nil
}
func (s *memorySink) Close() error { return nil }

func newTestServer(t *testing.T) (*Server, *memorySink) {
	t.Helper()
	researcher, err := research.New(research.Config{})
	require.NoError(t, err)
	store := &memorySink{}
	srv := New(Services{
		Source:     &source.MockSource{},
		Rewriter:   &rewrite.Rewriter{Mode: rewrite.ModeBestEffort},
		Sink:       store,
		Researcher: researcher,
		ImageDir:   t.TempDir(),
	}, nil)
	return srv, store
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestGenerateEmptyAccounts(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := postJSON(t, srv.Router(), "/api/generate", map[string]any{"accounts": []string{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateThresholdNotMet(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := postJSON(t, srv.Router(), "/api/generate", map[string]any{
		"accounts": []string{"alice"},
		"settings": map[string]any{"min_likes": 99999, "min_reposts": 99999},
	})

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "observed maxima")
}

func TestGenerateSuccess(t *testing.T) {
	srv, store := newTestServer(t)
	rec := postJSON(t, srv.Router(), "/api/generate", map[string]any{
		"accounts": []string{"alice"},
		"settings": map[string]any{
			"min_likes": 500, "min_reposts": 50,
			"tweets_to_analyze": 3, "tweets_to_rewrite": 2,
		},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp generateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RunID)
	assert.Len(t, resp.Results, 2)
	assert.Equal(t, 5, resp.Summary.Collected)
	assert.Equal(t, 3, resp.Summary.Analyzed)
	assert.Equal(t, 2, resp.Summary.Rewritten)
	assert.Len(t, store.bundles, 2)
}

func TestGenerateImageUnconfigured(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := postJSON(t, srv.Router(), "/api/generate-image", map[string]any{
		"row":       1,
		"rewritten": map[string]any{"main_text": "hello"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp generateImageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "not configured")
}

func TestGenerateImageMissingText(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := postJSON(t, srv.Router(), "/api/generate-image", map[string]any{"row": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResearch(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := postJSON(t, srv.Router(), "/api/research", map[string]any{"topic": "golang", "days": 7})

	require.Equal(t, http.StatusOK, rec.Code)
	var pack research.ContextPack
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pack))
	assert.NotEmpty(t, pack.Clusters)
}

func TestResearchMissingTopic(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := postJSON(t, srv.Router(), "/api/research", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServeImage(t *testing.T) {
	srv, _ := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(srv.svc.ImageDir, "a.png"), []byte("png-bytes"), 0o644))

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/images/a.png", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png-bytes", rec.Body.String())

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/images/missing.png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWatchUnknownRun(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/watch/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWatchStreamsEvents(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.runs.open("run-1")

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/watch/run-1"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	defer resp.Body.Close()

	srv.runs.publish("run-1", pipeline.Event{Stage: pipeline.StageCollecting, Message: "collecting @alice"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev pipeline.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, pipeline.StageCollecting, ev.Stage)
	assert.Equal(t, "collecting @alice", ev.Message)

	srv.runs.finish("run-1")
	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))
}

func TestRunHubReleasesFinishedRuns(t *testing.T) {
	hub := newRunHub()
	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("run-%d", i)
		hub.open(id)
		ch, cancel, ok := hub.subscribe(id)
		require.True(t, ok)
		hub.finish(id)
		_, open := <-ch
		assert.False(t, open)
		cancel() // after finish, must be a no-op

		_, _, ok = hub.subscribe(id)
		assert.False(t, ok)
	}

	hub.mu.RLock()
	defer hub.mu.RUnlock()
	assert.Empty(t, hub.runs)
}
