package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"svw.info/propagenda/internal/domain"
	"svw.info/propagenda/internal/usecase"
)

type Handler struct {
	UC     *usecase.Service
	Logger *slog.Logger
}

func New(uc *usecase.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{UC: uc, Logger: logger}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/agendas", h.handleAgendas)
	mux.HandleFunc("/api/evaluate", h.handleEvaluate)
	mux.HandleFunc("/api/next", h.handleNext)
	mux.HandleFunc("/ws", h.handleSession)
	mux.HandleFunc("/healthz", h.handleHealth)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(v)
}

func allow(w http.ResponseWriter, r *http.Request, method string) bool {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if r.Method != method {
		http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// ---- Agendas ----

type agendasResp struct {
	Agendas []domain.Agenda `json:"agendas"`
	Rounds  int             `json:"rounds"`
}

func (h *Handler) handleAgendas(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, agendasResp{Agendas: h.UC.Agendas(), Rounds: h.UC.Rounds()})
}

// ---- Evaluate ----

type evaluateReq struct {
	AgendaID string               `json:"agendaId"`
	Objects  []domain.BoardObject `json:"objects"`
}

type evaluateResp struct {
	Satisfied bool               `json:"satisfied"`
	Hints     []string           `json:"hints"`
	Conflicts []domain.CellCoord `json:"conflicts,omitempty"`
	Error     string             `json:"error,omitempty"`
}

func (h *Handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req evaluateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, evaluateResp{Error: "invalid JSON: " + err.Error()})
		return
	}
	if req.AgendaID == "" {
		writeJSON(w, http.StatusBadRequest, evaluateResp{Error: "missing agendaId"})
		return
	}
	v, conflicts, err := h.UC.Evaluate(r.Context(), req.AgendaID, req.Objects)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, evaluateResp{Conflicts: conflicts, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, evaluateResp{Satisfied: v.Satisfied, Hints: v.Hints})
}

// ---- Next ----

type nextReq struct {
	Completed []string `json:"completed"`
}

type nextResp struct {
	Agenda *domain.Agenda `json:"agenda,omitempty"`
	Round  int            `json:"round"`
	Rounds int            `json:"rounds"`
	Done   bool           `json:"done"`
	Error  string         `json:"error,omitempty"`
}

func (h *Handler) handleNext(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req nextReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, nextResp{Error: "invalid JSON: " + err.Error()})
		return
	}
	progress := h.UC.Progress(req.Completed)
	a, ok, err := h.UC.Next(progress.Completed)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, nextResp{Error: err.Error()})
		return
	}
	resp := nextResp{Round: len(progress.Completed), Rounds: h.UC.Rounds(), Done: !ok}
	if ok {
		resp.Agenda = &a
		resp.Round++
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "agendas": h.UC.Catalog().Len()})
}
