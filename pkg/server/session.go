package server

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/uuid"

	"github.com/montplusa/tictactoe-evolve/pkg/game"
)

var (
	ErrNoSession = errors.New("unknown session")
	ErrGameOver  = errors.New("game is over")
)

// The human always plays X and the engine answers as O.
const (
	Human  = game.X
	Engine = game.O
)

// Session is one match between a human and an engine.
type Session struct {
	ID      uuid.UUID
	Created time.Time

	mu         sync.Mutex
	board      game.Board
	moves      []game.Move
	lastActive time.Time
}

// SessionView is the JSON form of a session.
type SessionView struct {
	ID    string      `json:"id"`
	Board game.Board  `json:"board"`
	State string      `json:"state"`
	Moves []game.Move `json:"moves"`
}

// Turn is the result of one human move and the engine's reply.
type Turn struct {
	Board      game.Board
	State      game.Result
	EngineMove int // -1 when the engine did not move
}

func (s *Session) View() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionView{
		ID:    s.ID.String(),
		Board: s.board,
		State: game.Evaluate(s.board).String(),
		Moves: append([]game.Move(nil), s.moves...),
	}
}

// Play places the human mark at position and, if the game goes on, lets
// engine reply. The board is left unchanged when position is illegal.
func (s *Session) Play(position int, engine game.AI) (Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()

	turn := Turn{EngineMove: -1}
	if game.Evaluate(s.board).Over() {
		return turn, ErrGameOver
	}
	if err := s.board.Play(position, Human); err != nil {
		return turn, err
	}
	s.moves = append(s.moves, game.Move{Player: Human, Index: position})

	turn.State = game.Evaluate(s.board)
	if !turn.State.Over() {
		idx, err := engine.Move(s.board, Engine)
		if err == nil {
			err = s.board.Play(idx, Engine)
		}
		if err != nil {
			// undo the human move
			s.board[position] = game.Empty
			s.moves = s.moves[:len(s.moves)-1]
			return turn, fmt.Errorf("%s: %w", engine.Name(), err)
		}
		s.moves = append(s.moves, game.Move{Player: Engine, Index: idx})
		turn.EngineMove = idx
		turn.State = game.Evaluate(s.board)
	}
	turn.Board = s.board
	return turn, nil
}

// Reset clears the board.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.board = game.Board{}
	s.moves = nil
	s.lastActive = time.Now()
}

// LastActive is the time of the last move or reset, or creation.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Store holds the live sessions.
type Store struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[uuid.UUID]*Session)}
}

func (st *Store) Create() (*Session, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("session id: %w", err)
	}
	now := time.Now()
	s := &Session{ID: id, Created: now, lastActive: now}
	st.mu.Lock()
	st.sessions[id] = s
	st.mu.Unlock()
	return s, nil
}

func (st *Store) Get(id string) (*Session, error) {
	u, err := uuid.FromString(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrNoSession, id)
	}
	st.mu.RLock()
	s, ok := st.sessions[u]
	st.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSession, id)
	}
	return s, nil
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Prune drops sessions with no activity since cutoff, except keep.
func (st *Store) Prune(cutoff time.Time, keep *Session) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	n := 0
	for id, s := range st.sessions {
		if s != keep && s.LastActive().Before(cutoff) {
			delete(st.sessions, id)
			n++
		}
	}
	return n
}
