package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/montplusa/tictactoe-evolve/pkg/ai/minimax"
	"github.com/montplusa/tictactoe-evolve/pkg/game"
	"github.com/montplusa/tictactoe-evolve/pkg/training"
)

type moveRequest struct {
	Position   *int   `json:"position"`
	Mode       string `json:"mode"`
	Difficulty string `json:"difficulty"`
}

type moveResponse struct {
	Status     string     `json:"status"` // "success" or "game_over"
	State      string     `json:"state"`
	Board      game.Board `json:"board"`
	EngineMove *int       `json:"engine_move,omitempty"`
}

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Status: "error", Message: msg})
}

func (s *Server) withSession(h func(http.ResponseWriter, *http.Request, *Session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.sessions.Get(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h(w, r, sess)
	}
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Create()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, sess.View())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request, sess *Session) {
	writeJSON(w, http.StatusOK, sess.View())
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request, sess *Session) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Position == nil {
		writeError(w, http.StatusBadRequest, "Invalid move")
		return
	}
	d := s.cfg.DefaultDifficulty
	if req.Difficulty != "" {
		var err error
		if d, err = minimax.ParseDifficulty(req.Difficulty); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	engine, err := s.engine(req.Mode, d)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid mode or neural network not trained")
		return
	}

	turn, err := sess.Play(*req.Position, engine)
	switch {
	case errors.Is(err, game.ErrOutOfRange), errors.Is(err, game.ErrOccupied):
		writeError(w, http.StatusBadRequest, "Invalid move")
		return
	case errors.Is(err, ErrGameOver):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := moveResponse{Status: "success", State: turn.State.String(), Board: turn.Board}
	if turn.EngineMove >= 0 {
		resp.EngineMove = &turn.EngineMove
	} else if turn.State.Over() {
		resp.Status = "game_over"
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request, sess *Session) {
	sess.Reset()
	v := sess.View()
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "id": v.ID, "board": v.Board})
}

func (s *Server) handleStartTraining(w http.ResponseWriter, r *http.Request) {
	err := s.supervisor.Start(s.cfg.Training)
	switch {
	case errors.Is(err, training.ErrTrainingActive):
		writeError(w, http.StatusConflict, "Training already in progress")
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{
		"status":  "success",
		"message": "Training started in the background",
	})
}

func (s *Server) status() statusPayload {
	st := statusPayload{Active: s.supervisor.Active(), Trained: s.Trained()}
	if err := s.supervisor.LastError(); err != nil {
		st.LastError = err.Error()
	}
	return st
}

func (s *Server) handleTrainingStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.status())
}
