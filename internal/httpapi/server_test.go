package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/discochess/bestmove"
	"github.com/discochess/bestmove/internal/engine"
	"github.com/discochess/bestmove/internal/pool"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

type stubEngine struct {
	answer    engine.Answer
	searchErr error
}

func (s *stubEngine) Configure(skillLevel, multiPV int) error { return nil }
func (s *stubEngine) SetPosition(fen string) error            { return nil }
func (s *stubEngine) Search(ctx context.Context, depth int) (engine.Answer, error) {
	if s.searchErr != nil {
		return engine.Answer{}, s.searchErr
	}
	return s.answer, nil
}
func (s *stubEngine) Reset() error { return nil }
func (s *stubEngine) Close() error { return nil }

func newTestRouter(t *testing.T, eng *stubEngine) http.Handler {
	t.Helper()
	factory := func(ctx context.Context) (bestmove.Engine, error) { return eng, nil }
	p, err := pool.New(factory, pool.Config{Size: 1})
	if err != nil {
		t.Fatalf("pool.New() error = %v", err)
	}
	svc, err := bestmove.New(bestmove.WithPool(p))
	if err != nil {
		t.Fatalf("bestmove.New() error = %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	return NewRouter(zap.NewNop(), svc)
}

func postMove(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/move", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestMoveEndpoint(t *testing.T) {
	cp := 35
	router := newTestRouter(t, &stubEngine{answer: engine.Answer{BestMove: "e2e4", CP: &cp}})

	rec := postMove(t, router, `{"fen":"`+startFEN+`","rating":1500}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var mv bestmove.Move
	if err := json.NewDecoder(rec.Body).Decode(&mv); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if mv.BestMove != "e2e4" || mv.SAN != "e4" || mv.Piece != "Pawn" {
		t.Errorf("move = %+v, want e2e4 / e4 / Pawn", mv)
	}
	if mv.Score != 35 {
		t.Errorf("Score = %d, want 35", mv.Score)
	}
}

func TestMoveEndpoint_Errors(t *testing.T) {
	tests := []struct {
		name       string
		engine     *stubEngine
		body       string
		wantStatus int
	}{
		{
			name:       "invalid json",
			engine:     &stubEngine{},
			body:       `{"fen":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing fen",
			engine:     &stubEngine{},
			body:       `{"rating":1500}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid fen",
			engine:     &stubEngine{},
			body:       `{"fen":"garbage","rating":1500}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "no legal move",
			engine:     &stubEngine{searchErr: engine.ErrNoMove},
			body:       `{"fen":"` + startFEN + `","rating":1500}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "engine failure",
			engine:     &stubEngine{searchErr: engine.ErrExited},
			body:       `{"fen":"` + startFEN + `","rating":1500}`,
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, tt.engine)
			rec := postMove(t, router, tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			var body map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decoding error body: %v", err)
			}
			if body["error"] == "" {
				t.Error("error body missing error field")
			}
		})
	}
}

func TestMoveEndpoint_MethodNotAllowed(t *testing.T) {
	router := newTestRouter(t, &stubEngine{})
	req := httptest.NewRequest(http.MethodGet, "/v1/move", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t, &stubEngine{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "ok" {
		t.Errorf("body = %q, want ok", rec.Body.String())
	}
}

func TestRequestIDPropagation(t *testing.T) {
	router := newTestRouter(t, &stubEngine{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "my-request")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "my-request" {
		t.Errorf("X-Request-ID = %q, want caller-supplied id echoed", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID missing, want generated id")
	}
}
