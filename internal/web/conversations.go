package web

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mfalkner/partdesk/internal/chat"
	"github.com/mfalkner/partdesk/internal/core"
)

// turnView is one transcript turn as the widget consumes it: the raw fields
// plus the rendered HTML projection.
type turnView struct {
	Role     string         `json:"role"`
	Content  string         `json:"content"`
	HTML     string         `json:"html"`
	Products []core.Product `json:"products,omitempty"`
	Orders   []core.Order   `json:"orders,omitempty"`
	FollowUp []string       `json:"follow_up,omitempty"`
}

// conversationView is the full conversation state returned by every endpoint.
type conversationView struct {
	ID    string     `json:"id"`
	Mode  string     `json:"mode"`
	Busy  bool       `json:"busy"`
	Turns []turnView `json:"turns"`
}

type selectModeRequest struct {
	Mode string `json:"mode"`
}

type sendMessageRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	id := uuid.New().String()
	ctrl := chat.New(s.assistant, chat.WithLogger(s.logger.WithConversation(id)))

	s.mu.Lock()
	s.convs[id] = ctrl
	s.mu.Unlock()

	s.logger.Info("conversation created", "conversation_id", id)
	s.respondConversation(w, http.StatusCreated, id, ctrl)
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	id, ctrl, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.respondConversation(w, http.StatusOK, id, ctrl)
}

func (s *Server) handleSelectMode(w http.ResponseWriter, r *http.Request) {
	id, ctrl, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var req selectModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := ctrl.SelectMode(req.Mode); err != nil {
		s.respondError(w, statusFor(err), err.Error())
		return
	}
	s.respondConversation(w, http.StatusOK, id, ctrl)
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	id, ctrl, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Submit blocks for the duration of the assistant call; the request
	// context bounds it alongside the client's own timeout.
	if err := ctrl.Submit(r.Context(), req.Message); err != nil {
		s.respondError(w, statusFor(err), err.Error())
		return
	}
	s.respondConversation(w, http.StatusOK, id, ctrl)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (string, *chat.Controller, bool) {
	id := chi.URLParam(r, "conversationID")

	s.mu.RLock()
	ctrl, ok := s.convs[id]
	s.mu.RUnlock()

	if !ok {
		s.respondError(w, http.StatusNotFound, "conversation not found")
		return "", nil, false
	}
	return id, ctrl, true
}

func (s *Server) respondConversation(w http.ResponseWriter, status int, id string, ctrl *chat.Controller) {
	transcript := ctrl.Transcript()
	views := make([]turnView, 0, len(transcript))
	for _, turn := range transcript {
		html, err := s.turns.Turn(turn)
		if err != nil {
			s.logger.Error("rendering turn", "error", err)
			s.respondError(w, http.StatusInternalServerError, "rendering transcript")
			return
		}
		views = append(views, turnView{
			Role:     string(turn.Role),
			Content:  turn.Content,
			HTML:     html,
			Products: turn.Products,
			Orders:   turn.Orders,
			FollowUp: turn.FollowUp,
		})
	}

	s.respondJSON(w, status, conversationView{
		ID:    id,
		Mode:  string(ctrl.Mode()),
		Busy:  ctrl.Busy(),
		Turns: views,
	})
}

// statusFor maps domain error categories to HTTP statuses.
func statusFor(err error) int {
	switch core.CategoryOf(err) {
	case core.ErrCatValidation:
		return http.StatusBadRequest
	case core.ErrCatState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
