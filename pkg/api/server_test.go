package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourthplaces/rootsignal/pkg/config"
	"github.com/fourthplaces/rootsignal/pkg/graph"
	"github.com/fourthplaces/rootsignal/pkg/promote"
)

func newTestServer(backend *fakeBackend, store *fakeStore) *Server {
	cfg := &config.Config{
		Scopes: []config.Scope{{Name: "riverside", CenterLat: 1, CenterLng: 1, RadiusKM: 10}},
	}
	linkCfg := config.DefaultLinkPromoterConfig()
	return NewServer(cfg, store, graph.NewReader(backend), graph.NewProjector(backend, nil), promote.New(linkCfg))
}

func TestHealthHandlerHealthy(t *testing.T) {
	s := newTestServer(newFakeBackend(), &fakeStore{})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	s.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, healthStatusHealthy, resp.Status)
}

func TestHealthHandlerUnhealthyWhenPingFails(t *testing.T) {
	s := newTestServer(newFakeBackend(), &fakeStore{pingErr: assertErr})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	s.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestListRecentHandlerReturnsSignals(t *testing.T) {
	backend := newFakeBackend()
	backend.signals = []map[string]any{{"id": "sig-1", "title": "Cleanup day"}}
	s := newTestServer(backend, &fakeStore{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/nodes", nil)
	s.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Cleanup day")
}

func TestGetNodeDetailHandlerNotFound(t *testing.T) {
	s := newTestServer(newFakeBackend(), &fakeStore{})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/nodes/missing", nil)
	s.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetNodeDetailHandlerFound(t *testing.T) {
	backend := newFakeBackend()
	backend.signals = []map[string]any{{"id": "sig-1", "title": "Cleanup day"}}
	backend.citations["sig-1"] = []map[string]any{{"id": "cite-1", "source_url": "https://a.example"}}
	s := newTestServer(backend, &fakeStore{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/nodes/sig-1", nil)
	s.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "https://a.example")
}

func TestSubmitHandlerCreatesSubmissionAndSource(t *testing.T) {
	store := &fakeStore{}
	s := newTestServer(newFakeBackend(), store)

	body := `{"scope":"riverside","url":"https://new-source.example/page","reason":"neighbor flagged it"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/submissions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var resp submissionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SubmissionID)
	assert.Contains(t, resp.SourceCanonicalKey, "riverside:")

	require.Len(t, store.appended, 2)
	assert.Equal(t, "submission_received", string(store.appended[0].Type))
	assert.Equal(t, "source_registered", string(store.appended[1].Type))
}

func TestSubmitHandlerRejectsUnknownScope(t *testing.T) {
	s := newTestServer(newFakeBackend(), &fakeStore{})
	body := `{"scope":"nowhere","url":"https://a.example"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/submissions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitHandlerRejectsBlockedURL(t *testing.T) {
	store := &fakeStore{}
	cfg := &config.Config{Scopes: []config.Scope{{Name: "riverside", CenterLat: 1, CenterLng: 1, RadiusKM: 10}}}
	linkCfg := &config.LinkPromoterConfig{MaxPerReferringSource: 10, MaxPerRun: 50, BlockedSources: []config.BlockedSource{{Pattern: "blocked.example"}}}
	backend := newFakeBackend()
	s := NewServer(cfg, store, graph.NewReader(backend), graph.NewProjector(backend, nil), promote.New(linkCfg))

	body := `{"scope":"riverside","url":"https://blocked.example/page"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/submissions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, store.appended)
}

var assertErr = &staticError{"ping failed"}

type staticError struct{ msg string }

func (e *staticError) Error() string { return e.msg }
