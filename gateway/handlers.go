package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wayfarerlabs/tripmind/agent/contract"
	"github.com/wayfarerlabs/tripmind/agent/sanitize"
)

type chatRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
	UserID   string `json:"user_id"`
}

type clearRequest struct {
	UserID string `json:"user_id"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	userID, err := sanitize.UserID(req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	reply, err := s.chat.Chat(r.Context(), userID, req.Message)
	if err != nil {
		writeChatError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Response: reply, UserID: userID})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	var req clearRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	userID, err := sanitize.UserID(req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.chat.Clear(userID)
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "cleared",
		"user_id": userID,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := sanitize.UserID(mux.Vars(r)["userId"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	history := s.chat.History(userID)
	if history == nil {
		history = []contract.Message{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":  userID,
		"count":    len(history),
		"messages": history,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.stats.AllStats(r.Context())
	if err != nil {
		writeChatError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tools": stats})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeChatError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, contract.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, contract.ErrLockTimeout):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, contract.ErrUpstream):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
