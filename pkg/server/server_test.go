package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jeeves-ai/jeeves/pkg/config"
	"github.com/jeeves-ai/jeeves/pkg/gateway"
	"github.com/jeeves-ai/jeeves/pkg/models"
)

type fakeGateway struct {
	ans       models.Answer
	err       error
	reachable bool
	got       models.Request
}

func (f *fakeGateway) Answer(ctx context.Context, req models.Request) (models.Answer, error) {
	f.got = req
	return f.ans, f.err
}

func (f *fakeGateway) IsBackendReachable(ctx context.Context) bool { return f.reachable }

func newTestServer(gw *fakeGateway) *Server {
	return New(config.Default(), gw, nil, nil)
}

func TestHandleAnswer(t *testing.T) {
	gw := &fakeGateway{ans: models.Answer{
		RequestID: "r1",
		Text:      "pong",
		Source:    models.SourceLive,
		Model:     "gpt-3.5-turbo",
		Attempts:  1,
	}}
	srv := newTestServer(gw)

	req := httptest.NewRequest(http.MethodPost, "/v1/answer", strings.NewReader(`{"prompt":"ping"}`))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body)
	}
	if gw.got.Prompt != "ping" {
		t.Errorf("request not forwarded: %+v", gw.got)
	}
	if got := w.Header().Get("X-Jeeves-Source"); got != "live" {
		t.Errorf("expected live source header, got %q", got)
	}

	var ans models.Answer
	if err := json.Unmarshal(w.Body.Bytes(), &ans); err != nil {
		t.Fatal(err)
	}
	if ans.Text != "pong" || ans.Source != models.SourceLive || ans.RequestID != "r1" {
		t.Errorf("unexpected answer: %+v", ans)
	}
}

func TestHandleAnswerFallbackSourceHeader(t *testing.T) {
	gw := &fakeGateway{ans: models.Answer{Text: "sorry", Source: models.SourceFallback}}
	srv := newTestServer(gw)

	req := httptest.NewRequest(http.MethodPost, "/v1/answer", strings.NewReader(`{"prompt":"ping"}`))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if got := w.Header().Get("X-Jeeves-Source"); got != "fallback" {
		t.Errorf("expected fallback source header, got %q", got)
	}
}

func TestHandleAnswerInvalidRequest(t *testing.T) {
	gw := &fakeGateway{err: gateway.ErrInvalidRequest}
	srv := newTestServer(gw)

	req := httptest.NewRequest(http.MethodPost, "/v1/answer", strings.NewReader(`{"prompt":""}`))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestHandleAnswerBackendUnavailable(t *testing.T) {
	gw := &fakeGateway{err: gateway.ErrBackendUnavailable}
	srv := newTestServer(gw)

	req := httptest.NewRequest(http.MethodPost, "/v1/answer", strings.NewReader(`{"prompt":"ping"}`))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", w.Code)
	}
}

func TestHandleAnswerBadJSON(t *testing.T) {
	srv := newTestServer(&fakeGateway{})

	req := httptest.NewRequest(http.MethodPost, "/v1/answer", strings.NewReader(`{not json`))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestHandleAnswerMethodNotAllowed(t *testing.T) {
	srv := newTestServer(&fakeGateway{})

	req := httptest.NewRequest(http.MethodGet, "/v1/answer", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", w.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(&fakeGateway{reachable: true})

	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]bool
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if !body["reachable"] {
		t.Error("expected reachable true")
	}
}

func TestHandleCacheStatsDisabled(t *testing.T) {
	srv := newTestServer(&fakeGateway{})

	req := httptest.NewRequest(http.MethodGet, "/v1/cache/stats", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 when cache disabled, got %d", w.Code)
	}
}

func TestHandleBudgetDisabled(t *testing.T) {
	srv := newTestServer(&fakeGateway{})

	req := httptest.NewRequest(http.MethodGet, "/v1/budget", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 when budget disabled, got %d", w.Code)
	}
}
