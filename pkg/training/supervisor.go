package training

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/montplusa/tictactoe-evolve/pkg/logx"
)

// ErrTrainingActive is returned by Start while a run is in progress.
var ErrTrainingActive = errors.New("training already in progress")

// Supervisor runs at most one training run at a time in the background.
// Outcomes are observable through Active, LastError, LastResult and the
// saved weights.
type Supervisor struct {
	mu        sync.Mutex
	active    bool
	cancel    context.CancelFunc
	done      chan struct{}
	lastErr   error
	last      *Result
	onDone    func(Result)
	observers []Observer
}

// NewSupervisor returns an idle supervisor. onDone, if set, runs after each
// successful run, before Wait returns.
func NewSupervisor(onDone func(Result), observers ...Observer) *Supervisor {
	return &Supervisor{onDone: onDone, observers: observers}
}

// Start launches a run. Configuration errors are returned immediately and
// leave the supervisor idle.
func (s *Supervisor) Start(cfg Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return ErrTrainingActive
	}
	trainer, err := NewTrainer(cfg, s.observers...)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.active = true
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(ctx, trainer, s.done)
	return nil
}

func (s *Supervisor) run(ctx context.Context, trainer *Trainer, done chan struct{}) {
	var (
		res Result
		err error
	)
	defer close(done)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("training panicked: %v", r)
		}
		if err != nil {
			logx.Printf(logx.TRN, "%s", logx.Errorf("Error during training: %v", err))
		}

		s.mu.Lock()
		s.active = false
		s.cancel()
		s.lastErr = err
		if err == nil {
			s.last = &res
		}
		s.mu.Unlock()

		if err == nil && s.onDone != nil {
			s.onDone(res)
		}
	}()
	res, err = trainer.Run(ctx)
}

// Active reports whether a run is in progress.
func (s *Supervisor) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Cancel asks the current run to stop after its current generation.
func (s *Supervisor) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// Wait blocks until the current run, if any, has finished and returns its
// error.
func (s *Supervisor) Wait() error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
	return s.LastError()
}

// LastError is the error of the most recent finished run.
func (s *Supervisor) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// LastResult is the most recent successful run, or nil.
func (s *Supervisor) LastResult() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}
