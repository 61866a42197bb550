package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/pprof"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/discochess/bestmove"
)

// Handler serves best-move requests over the move service.
type Handler struct {
	svc *bestmove.Service
	log *zap.Logger
}

// NewRouter creates the HTTP router for the move service.
func NewRouter(log *zap.Logger, svc *bestmove.Service) http.Handler {
	h := &Handler{svc: svc, log: log}

	mux := http.NewServeMux()
	mux.Handle("/healthz", http.HandlerFunc(h.health))
	mux.Handle("/readyz", http.HandlerFunc(h.health))
	mux.Handle("/v1/move", http.HandlerFunc(h.move))
	mux.Handle("/metrics", promhttp.Handler())

	// pprof endpoints
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	return RequestID(AccessLog(log, mux))
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// MoveRequest is the JSON body of a best-move request.
type MoveRequest struct {
	FEN    string `json:"fen"`
	Rating int    `json:"rating"`
}

func (h *Handler) move(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.FEN == "" {
		writeError(w, http.StatusBadRequest, "missing fen")
		return
	}

	mv, err := h.svc.BestMove(r.Context(), req.FEN, req.Rating)
	if err != nil {
		status := errorStatus(err)
		if status == http.StatusInternalServerError {
			h.log.Error("best move request failed",
				zap.String("rid", GetRequestID(r.Context())),
				zap.String("fen", req.FEN),
				zap.Error(err),
			)
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, mv)
}

// errorStatus maps service errors onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, bestmove.ErrInvalidPosition):
		return http.StatusBadRequest
	case errors.Is(err, bestmove.ErrNoLegalMove):
		return http.StatusBadRequest
	case errors.Is(err, bestmove.ErrSearchTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, bestmove.ErrPoolExhausted):
		return http.StatusTooManyRequests
	case errors.Is(err, bestmove.ErrPoolClosed), errors.Is(err, bestmove.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
