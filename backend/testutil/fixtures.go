package testutil

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// AskResponse is what the fake backend sends for one /api/ask call
type AskResponse struct {
	Status int // 0 means 200
	Source string
	Body   string
}

// IngestRequest records one /api/ingest call
type IngestRequest struct {
	DocID string
	Path  string
}

// FakeBackend is an in-process HTTP server speaking the CloudGuide API
type FakeBackend struct {
	*httptest.Server

	mu        sync.Mutex
	askFunc   func(text string) AskResponse
	unhealthy bool
	queries   []string
	ingested  []IngestRequest
}

// NewFakeBackend starts a fake backend that is closed when the test ends.
// Without SetAsk it answers pricing questions from PRICING and everything
// else from LLM, the same split the real router makes.
func NewFakeBackend(t testing.TB) *FakeBackend {
	t.Helper()

	fb := &FakeBackend{askFunc: defaultAsk}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", fb.handleHealth)
	r.Get("/api/ask", fb.handleAskQuery)
	r.Post("/api/ask", fb.handleAskBody)
	r.Get("/api/ingest", fb.handleIngest)

	fb.Server = httptest.NewServer(r)
	t.Cleanup(fb.Close)
	return fb
}

// SetAsk replaces the /api/ask behaviour
func (fb *FakeBackend) SetAsk(fn func(text string) AskResponse) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.askFunc = fn
}

// SetHealthy controls the /healthz status
func (fb *FakeBackend) SetHealthy(healthy bool) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.unhealthy = !healthy
}

// Queries returns the decoded text of every ask received so far
func (fb *FakeBackend) Queries() []string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]string(nil), fb.queries...)
}

// Ingested returns every accepted ingest request
func (fb *FakeBackend) Ingested() []IngestRequest {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]IngestRequest(nil), fb.ingested...)
}

func (fb *FakeBackend) handleHealth(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	unhealthy := fb.unhealthy
	fb.mu.Unlock()

	if unhealthy {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	_, _ = io.WriteString(w, "ok")
}

func (fb *FakeBackend) handleAskQuery(w http.ResponseWriter, r *http.Request) {
	fb.answer(w, r.URL.Query().Get("text"))
}

func (fb *FakeBackend) handleAskBody(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	fb.answer(w, string(body))
}

func (fb *FakeBackend) answer(w http.ResponseWriter, text string) {
	fb.mu.Lock()
	fb.queries = append(fb.queries, text)
	askFunc := fb.askFunc
	fb.mu.Unlock()

	resp := askFunc(text)
	if resp.Source != "" {
		w.Header().Set("X-Source", resp.Source)
	}
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, resp.Body)
}

func (fb *FakeBackend) handleIngest(w http.ResponseWriter, r *http.Request) {
	docID := r.URL.Query().Get("docId")
	path := r.URL.Query().Get("path")
	if docID == "" || path == "" {
		http.Error(w, "docId and path are required", http.StatusBadRequest)
		return
	}

	fb.mu.Lock()
	fb.ingested = append(fb.ingested, IngestRequest{DocID: docID, Path: path})
	fb.mu.Unlock()

	w.WriteHeader(http.StatusAccepted)
	_, _ = io.WriteString(w, "queued")
}

func defaultAsk(text string) AskResponse {
	if strings.Contains(strings.ToLower(text), "price") {
		return AskResponse{Source: "PRICING", Body: fmt.Sprintf("Pricing lookup for %q", text)}
	}
	return AskResponse{Source: "LLM", Body: "You asked: " + text}
}
