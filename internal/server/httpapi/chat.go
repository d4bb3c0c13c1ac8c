package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/donna/internal/server/models"
)

type chatRequest struct {
	Message string `json:"message" validate:"max=8000"`
}

func (s *Server) sendChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	reply, err := s.chat.Send(r.Context(), ownerFrom(r.Context()), req.Message)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success":   true,
		"requestId": reply.RequestID,
		"response":  reply.Response,
	})
}

func (s *Server) chatHistory(w http.ResponseWriter, r *http.Request) {
	turns, err := s.chat.History(r.Context(), ownerFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if turns == nil {
		turns = []models.Turn{}
	}

	writeJSON(w, http.StatusOK, envelope{"success": true, "messages": turns})
}
