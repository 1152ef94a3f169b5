package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/Tenniee/imposter/internal/service"
)

// RoomHandler handles room endpoints
type RoomHandler struct {
	gameSvc *service.GameService
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(gameSvc *service.GameService) *RoomHandler {
	return &RoomHandler{
		gameSvc: gameSvc,
	}
}

// CreateRoomRequest is the request body for creating a room
type CreateRoomRequest struct {
	HostName string `json:"hostName"`
}

// Create handles POST /v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.HostName == "" {
		writeError(w, http.StatusBadRequest, "hostName is required")
		return
	}

	state, err := h.gameSvc.CreateRoom(r.Context(), req.HostName)
	if err != nil {
		writeGameError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"roomCode": state.Code,
		"phase":    state.Phase,
		"players":  state.Players,
	})
}

// Get handles GET /v1/rooms/{code}. Falls back to the projection when the
// room is no longer live.
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	detail, err := h.gameSvc.RoomDetail(r.Context(), code)
	if err != nil {
		writeGameError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

// JoinRequest is the request body for joining a room
type JoinRequest struct {
	PlayerName string `json:"playerName"`
}

// Join handles POST /v1/rooms/{code}/join
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PlayerName == "" {
		writeError(w, http.StatusBadRequest, "playerName is required")
		return
	}

	joined, state, err := h.gameSvc.JoinRoom(r.Context(), code, req.PlayerName)
	if err != nil {
		writeGameError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"roomCode": state.Code,
		"phase":    state.Phase,
		"players":  state.Players,
		"playerId": joined.ID,
	})
}

// Start handles POST /v1/rooms/{code}/start
func (h *RoomHandler) Start(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	state, err := h.gameSvc.StartRound(r.Context(), code)
	if err != nil {
		writeGameError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, state)
}

// SubmitAnswerRequest is the request body for submitting an answer
type SubmitAnswerRequest struct {
	PlayerID string `json:"playerId"`
	Answer   string `json:"answer"`
}

// SubmitAnswer handles POST /v1/rooms/{code}/answers
func (h *RoomHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PlayerID == "" {
		writeError(w, http.StatusBadRequest, "playerId is required")
		return
	}

	phase, err := h.gameSvc.SubmitAnswer(r.Context(), code, req.PlayerID, req.Answer)
	if err != nil {
		writeGameError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "submitted",
		"phase":  phase,
	})
}

// BeginVoting handles POST /v1/rooms/{code}/begin-voting
func (h *RoomHandler) BeginVoting(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	state, err := h.gameSvc.BeginVoting(r.Context(), code)
	if err != nil {
		writeGameError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, state)
}

// CastVoteRequest is the request body for casting a vote
type CastVoteRequest struct {
	VoterID  string `json:"voterId"`
	TargetID string `json:"targetId"`
}

// CastVote handles POST /v1/rooms/{code}/votes
func (h *RoomHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.VoterID == "" || req.TargetID == "" {
		writeError(w, http.StatusBadRequest, "voterId and targetId are required")
		return
	}

	status, err := h.gameSvc.CastVote(r.Context(), code, req.VoterID, req.TargetID)
	if err != nil {
		writeGameError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, status)
}

// Restart handles POST /v1/rooms/{code}/restart
func (h *RoomHandler) Restart(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	state, err := h.gameSvc.RestartRound(r.Context(), code)
	if err != nil {
		writeGameError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, state)
}

// End handles POST /v1/rooms/{code}/end
func (h *RoomHandler) End(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	if err := h.gameSvc.EndRoom(r.Context(), code); err != nil {
		writeGameError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ended"})
}

// Leaderboard handles GET /v1/rooms/{code}/leaderboard
func (h *RoomHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	topStr := r.URL.Query().Get("top")
	top := 20
	if topStr != "" {
		if n, err := strconv.Atoi(topStr); err == nil && n > 0 {
			top = n
		}
	}

	rows, err := h.gameSvc.Leaderboard(r.Context(), code, top)
	if err != nil {
		writeGameError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"leaderboard": rows})
}
