package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kartavya/ragchat/internal/handler"
	"github.com/kartavya/ragchat/internal/service/generation"
	"github.com/kartavya/ragchat/internal/service/orchestrator"
	"github.com/kartavya/ragchat/internal/service/retrieval"
	"github.com/kartavya/ragchat/internal/service/session"
)

// setupService wires real clients against stub backends, so requests cross
// the same code paths as production.
func setupService(t *testing.T, retrieverBody, generatorBody string) http.Handler {
	t.Helper()

	retrieverBackend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(retrieverBody))
	}))
	t.Cleanup(retrieverBackend.Close)

	generatorBackend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(generatorBody))
	}))
	t.Cleanup(generatorBackend.Close)

	store := session.NewStore(session.NewMemoryKV(), 0)
	retriever := retrieval.NewClient(retrieverBackend.URL, 5*time.Second)
	generator := generation.NewClient(generatorBackend.URL, "test-model", "test-key", 5*time.Second)
	pipeline := orchestrator.NewService(retriever, generator, store, 5, nil)

	return handler.NewRouter(pipeline, store, "")
}

func doJSON(t *testing.T, router http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestQueryRoundTrip(t *testing.T) {
	router := setupService(t,
		`{"results":[{"text":"Event X occurred.","metadata":{"url":"http://a"}}]}`,
		`{"candidates":[{"content":{"parts":[{"text":"Event X occurred yesterday."}]}}]}`,
	)

	// create a session
	resp := doJSON(t, router, http.MethodPost, "/session", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("create session: expected 200, got %d", resp.Code)
	}
	var created map[string]string
	_ = json.Unmarshal(resp.Body.Bytes(), &created)
	sessionID := created["session_id"]
	if sessionID == "" {
		t.Fatal("no session_id returned")
	}

	// ask a question
	resp = doJSON(t, router, http.MethodPost, "/query", map[string]any{
		"session_id": sessionID,
		"query":      "What happened?",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("query: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var answer struct {
		Query  string `json:"query"`
		Answer string `json:"answer"`
		Source string `json:"source"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &answer); err != nil {
		t.Fatalf("decode query response: %v", err)
	}
	if answer.Query != "What happened?" || answer.Answer != "Event X occurred yesterday." || answer.Source != "http://a" {
		t.Fatalf("unexpected query response: %+v", answer)
	}

	// history holds the turn pair
	resp = doJSON(t, router, http.MethodGet, "/history?session_id="+sessionID, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("history: expected 200, got %d", resp.Code)
	}
	var history struct {
		History []struct {
			Role string `json:"role"`
			Text string `json:"text"`
		} `json:"history"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &history); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(history.History) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(history.History))
	}
	if history.History[0].Role != "user" || history.History[0].Text != "What happened?" {
		t.Fatalf("unexpected user turn: %+v", history.History[0])
	}
	if history.History[1].Role != "bot" || history.History[1].Text != "Event X occurred yesterday." {
		t.Fatalf("unexpected bot turn: %+v", history.History[1])
	}

	// clear the session
	resp = doJSON(t, router, http.MethodDelete, "/session", map[string]string{"session_id": sessionID})
	if resp.Code != http.StatusOK {
		t.Fatalf("clear: expected 200, got %d", resp.Code)
	}
	resp = doJSON(t, router, http.MethodGet, "/history?session_id="+sessionID, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("history after clear: expected 404, got %d", resp.Code)
	}
}

func TestQueryNoResultsNeverGenerates(t *testing.T) {
	generatorCalled := false
	generatorBackend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		generatorCalled = true
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer generatorBackend.Close()

	retrieverBackend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer retrieverBackend.Close()

	store := session.NewStore(session.NewMemoryKV(), 0)
	pipeline := orchestrator.NewService(
		retrieval.NewClient(retrieverBackend.URL, 5*time.Second),
		generation.NewClient(generatorBackend.URL, "test-model", "test-key", 5*time.Second),
		store, 5, nil,
	)
	router := handler.NewRouter(pipeline, store, "")

	resp := doJSON(t, router, http.MethodPost, "/query", map[string]any{
		"session_id": "s1", "query": "obscure",
	})
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	if generatorCalled {
		t.Fatal("generation backend must not be called when retrieval is empty")
	}
}

func TestQuerySentinelAnswerIsPersisted(t *testing.T) {
	router := setupService(t,
		`{"results":[{"text":"ctx","metadata":{"url":"http://a"}}]}`,
		`{"candidates":[]}`,
	)

	resp := doJSON(t, router, http.MethodPost, "/session", nil)
	var created map[string]string
	_ = json.Unmarshal(resp.Body.Bytes(), &created)
	sessionID := created["session_id"]

	resp = doJSON(t, router, http.MethodPost, "/query", map[string]any{
		"session_id": sessionID, "query": "q",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var answer struct {
		Answer string `json:"answer"`
	}
	_ = json.Unmarshal(resp.Body.Bytes(), &answer)
	if answer.Answer != "No answer generated." {
		t.Fatalf("expected sentinel answer, got %q", answer.Answer)
	}

	resp = doJSON(t, router, http.MethodGet, "/history?session_id="+sessionID, nil)
	var history struct {
		History []struct {
			Role string `json:"role"`
			Text string `json:"text"`
		} `json:"history"`
	}
	_ = json.Unmarshal(resp.Body.Bytes(), &history)
	if len(history.History) != 2 || history.History[1].Text != "No answer generated." {
		t.Fatalf("sentinel answer not persisted: %+v", history.History)
	}
}

func TestQueryUnknownSessionStillReturnsAnswer(t *testing.T) {
	router := setupService(t,
		`{"results":[{"text":"ctx","metadata":{"url":"http://a"}}]}`,
		`{"candidates":[{"content":{"parts":[{"text":"an answer"}]}}]}`,
	)

	resp := doJSON(t, router, http.MethodPost, "/query", map[string]any{
		"session_id": "never-created", "query": "q",
	})
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	var body struct {
		Answer string `json:"answer"`
		Error  string `json:"error"`
	}
	_ = json.Unmarshal(resp.Body.Bytes(), &body)
	if body.Answer != "an answer" || body.Error == "" {
		t.Fatalf("expected answer alongside error, got %+v", body)
	}
}

func TestQueryMissingFields(t *testing.T) {
	router := setupService(t, `{"results":[]}`, `{"candidates":[]}`)

	resp := doJSON(t, router, http.MethodPost, "/query", map[string]any{"query": "q"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestHealthz(t *testing.T) {
	router := setupService(t, `{"results":[]}`, `{"candidates":[]}`)

	resp := doJSON(t, router, http.MethodGet, "/healthz", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}
