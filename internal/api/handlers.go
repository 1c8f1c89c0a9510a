// internal/api/handlers.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/valdraft/transferdesk/internal/ratelimit"
	"github.com/valdraft/transferdesk/internal/service"
	"github.com/valdraft/transferdesk/internal/transfers"
)

// Handlers serves the transfer API over one Service.
type Handlers struct {
	svc        *service.Service
	limiter    *ratelimit.Limiter
	trustProxy bool
}

func NewHandlers(svc *service.Service, limiter *ratelimit.Limiter, trustProxy bool) *Handlers {
	return &Handlers{svc: svc, limiter: limiter, trustProxy: trustProxy}
}

// Register mounts every route on mux.
func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/leagues", h.handleLeagues)
	mux.HandleFunc("GET /api/v1/leagues/{league}/window", h.handleWindowStatus)
	mux.HandleFunc("POST /api/v1/leagues/{league}/window/open", h.handleOpenWindow)
	mux.HandleFunc("POST /api/v1/leagues/{league}/window/close", h.handleCloseWindow)
	mux.HandleFunc("POST /api/v1/leagues/{league}/window/advance", h.handleAdvanceTurn)
	mux.HandleFunc("POST /api/v1/leagues/{league}/transfers/out", h.handleTransferOut)
	mux.HandleFunc("POST /api/v1/leagues/{league}/transfers/in", h.handleTransferIn)
	mux.HandleFunc("POST /api/v1/leagues/{league}/transfers/pick", h.handlePickTransferPlayer)
	mux.HandleFunc("POST /api/v1/leagues/{league}/transfers/revert", h.handleRevert)
	mux.HandleFunc("GET /api/v1/leagues/{league}/history", h.handleHistory)
	mux.HandleFunc("GET /api/v1/leagues/{league}/pool", h.handlePool)
	mux.HandleFunc("GET /api/v1/leagues/{league}/rosters", h.handleRosters)
	mux.HandleFunc("POST /api/v1/leagues/{league}/normalize", h.handleNormalize)
}

type transferRequest struct {
	Manager  string `json:"manager"`
	PlayerID int    `json:"player_id"`
	GW       int    `json:"gw"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// writeError maps domain errors onto HTTP statuses: precondition failures
// are the client's problem, everything else is ours.
func writeError(w http.ResponseWriter, err error) {
	var ve *transfers.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusConflict, errorResponse{Error: ve.Error(), Reason: string(ve.Reason)})
	case errors.Is(err, service.ErrUnknownLeague):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrWindowNotOpened):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, transfers.ErrNothingToRevert):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

// allowMutation applies the rate limiter to a mutating request. A nil
// limiter allows everything.
func (h *Handlers) allowMutation(w http.ResponseWriter, r *http.Request, manager string) bool {
	if h.limiter == nil {
		return true
	}
	ip := ratelimit.GetClientIP(r, h.trustProxy)
	result := h.limiter.CheckMutation(manager, ip)
	if !result.Allowed {
		ratelimit.LogRateLimitExceeded(manager, ip, result.Reason)
		w.Header().Set("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())+1))
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limited", Reason: result.Reason})
		return false
	}
	h.limiter.RecordMutation(manager, ip)
	return true
}

func (h *Handlers) handleLeagues(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"leagues": h.svc.Leagues()})
}

func (h *Handlers) handleWindowStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.svc.Status(r.Context(), r.PathValue("league"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *Handlers) handleOpenWindow(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GW int `json:"gw"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.svc.OpenWindow(r.Context(), r.PathValue("league"), req.GW); err != nil {
		writeError(w, err)
		return
	}
	status, err := h.svc.Status(r.Context(), r.PathValue("league"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, status)
}

func (h *Handlers) handleCloseWindow(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.CloseWindow(r.Context(), r.PathValue("league")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"active": false})
}

func (h *Handlers) handleAdvanceTurn(w http.ResponseWriter, r *http.Request) {
	league := r.PathValue("league")
	if err := h.svc.AdvanceTurn(r.Context(), league); err != nil {
		writeError(w, err)
		return
	}
	status, err := h.svc.Status(r.Context(), league)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *Handlers) handleTransferOut(w http.ResponseWriter, r *http.Request) {
	h.handleTransfer(w, r, h.svc.TransferOut)
}

func (h *Handlers) handleTransferIn(w http.ResponseWriter, r *http.Request) {
	h.handleTransfer(w, r, h.svc.TransferIn)
}

func (h *Handlers) handlePickTransferPlayer(w http.ResponseWriter, r *http.Request) {
	h.handleTransfer(w, r, h.svc.PickTransferPlayer)
}

type transferOp func(ctx context.Context, league, manager string, playerID, gw int) error

func (h *Handlers) handleTransfer(w http.ResponseWriter, r *http.Request, op transferOp) {
	var req transferRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Manager == "" || req.PlayerID == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "manager and player_id are required"})
		return
	}
	if !h.allowMutation(w, r, req.Manager) {
		return
	}
	league := r.PathValue("league")
	if err := op(r.Context(), league, req.Manager, req.PlayerID, req.GW); err != nil {
		writeError(w, err)
		return
	}
	status, err := h.svc.Status(r.Context(), league)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *Handlers) handleHistory(w http.ResponseWriter, r *http.Request) {
	manager := r.URL.Query().Get("manager")
	todayOnly := r.URL.Query().Get("today") == "true"
	entries, err := h.svc.History(r.Context(), r.PathValue("league"), manager, todayOnly)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []transfers.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, map[string][]transfers.HistoryEntry{"history": entries})
}

func (h *Handlers) handlePool(w http.ResponseWriter, r *http.Request) {
	league := r.PathValue("league")
	var players []transfers.Player
	var err error
	if r.URL.Query().Get("claimable") == "true" {
		players, err = h.svc.ClaimablePlayers(r.Context(), league)
	} else {
		players, err = h.svc.AvailablePlayers(r.Context(), league)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	if players == nil {
		players = []transfers.Player{}
	}
	writeJSON(w, http.StatusOK, map[string][]transfers.Player{"players": players})
}

func (h *Handlers) handleRosters(w http.ResponseWriter, r *http.Request) {
	rosters, err := h.svc.Rosters(r.Context(), r.PathValue("league"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]map[string][]transfers.Player{"rosters": rosters})
}

func (h *Handlers) handleRevert(w http.ResponseWriter, r *http.Request) {
	league := r.PathValue("league")
	if err := h.svc.RevertLastTransferOut(r.Context(), league); err != nil {
		writeError(w, err)
		return
	}
	status, err := h.svc.Status(r.Context(), league)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *Handlers) handleNormalize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GW int `json:"gw"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.svc.NormalizeAll(r.Context(), r.PathValue("league"), req.GW); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"normalized": true})
}
