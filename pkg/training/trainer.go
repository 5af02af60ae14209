package training

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/montplusa/tictactoe-evolve/pkg/ai/minimax"
	"github.com/montplusa/tictactoe-evolve/pkg/ai/perceptron"
	"github.com/montplusa/tictactoe-evolve/pkg/evolve"
	"github.com/montplusa/tictactoe-evolve/pkg/game"
	"github.com/montplusa/tictactoe-evolve/pkg/logx"
)

// ErrNoCandidate means no generation produced a network with positive fitness.
var ErrNoCandidate = errors.New("no candidate scored above zero")

// GenerationStats is reported to observers after every generation.
type GenerationStats struct {
	Generation     int // 1-based
	MaxGenerations int
	Difficulty     minimax.Difficulty
	RankedBest     float64 // best fitness seen while ranking
	Mean           float64
	Best           float64 // fresh evaluation of the new top elite
	ProbeFitness   float64 // mean of the calibration probes
	ProbeOpenings  []int   // solver opening moves on the empty board
	GlobalBest     float64
	GlobalBestGen  int
	Improved       bool
	Elapsed        time.Duration
	ETA            time.Duration
	TableSize      int // positions in the shared solver table
}

// Observer receives progress from a running Trainer. Calls happen on the
// trainer goroutine.
type Observer interface {
	OnGeneration(GenerationStats)
}

// ImprovementObserver is an optional extension of Observer, called after
// OnGeneration whenever the run best improves.
type ImprovementObserver interface {
	OnImprovement(s GenerationStats, best *perceptron.Network)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(GenerationStats)

func (f ObserverFunc) OnGeneration(s GenerationStats) { f(s) }

// Result describes a finished run.
type Result struct {
	Best        *perceptron.Network
	Fitness     float64
	Generation  int // generation at which Best was captured
	Generations int // generations actually run
	Reached     bool
	Path        string
	Duration    time.Duration
}

// Trainer runs the curriculum over one GA.
type Trainer struct {
	cfg        Config
	rng        *rand.Rand
	ga         *evolve.GA
	curriculum []minimax.Difficulty
	observers  []Observer
}

// NewTrainer validates cfg and builds the initial population. Curriculum
// errors are reported here, before any generation runs.
func NewTrainer(cfg Config, observers ...Observer) (*Trainer, error) {
	curriculum, err := Curriculum(cfg.MaxGenerations, cfg.EasyPercent, cfg.MediumPercent, cfg.HardPercent)
	if err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	ga, err := evolve.New(cfg.GA, rng)
	if err != nil {
		return nil, fmt.Errorf("create population: %w", err)
	}
	return &Trainer{
		cfg:        cfg,
		rng:        rng,
		ga:         ga,
		curriculum: curriculum,
		observers:  observers,
	}, nil
}

// Curriculum returns the per-generation difficulty schedule.
func (t *Trainer) Curriculum() []minimax.Difficulty { return t.curriculum }

// Run evolves until the target fitness or the generation limit is reached,
// then saves the best network. ctx is checked between generations.
func (t *Trainer) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	var res Result

	t.logf(logx.TRN, "Starting training: %d generations, population %d, curriculum %d/%d/%d",
		t.cfg.MaxGenerations, t.ga.Len(), t.cfg.EasyPercent, t.cfg.MediumPercent, t.cfg.HardPercent)

	for g := 0; g < t.cfg.MaxGenerations; g++ {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("training stopped at generation %d: %w", g+1, err)
		}
		d := DifficultyAt(t.curriculum, g)
		gen := t.ga.Evolve(d)

		stats := GenerationStats{
			Generation:     g + 1,
			MaxGenerations: t.cfg.MaxGenerations,
			Difficulty:     d,
			RankedBest:     gen.Best,
			Mean:           gen.Mean,
		}
		stats.ProbeFitness, stats.ProbeOpenings = t.probe(d)

		current := t.ga.Member(0)
		stats.Best = t.ga.Fitness(current, d)
		if stats.Best > res.Fitness {
			res.Best = current.Clone()
			res.Fitness = stats.Best
			res.Generation = g + 1
			stats.Improved = true
		}
		res.Generations = g + 1
		stats.GlobalBest = res.Fitness
		stats.GlobalBestGen = res.Generation
		stats.Elapsed = time.Since(start)
		stats.TableSize = minimax.SharedTableLen()
		if done := g + 1; done < t.cfg.MaxGenerations {
			perGen := stats.Elapsed / time.Duration(done)
			stats.ETA = perGen * time.Duration(t.cfg.MaxGenerations-done)
		}
		t.report(stats)
		if stats.Improved {
			t.improved(stats, res.Best)
		}

		if res.Fitness >= t.cfg.TargetFitness {
			res.Reached = true
			t.logf(logx.BEST, "Target fitness achieved in generation %d", g+1)
			break
		}
	}
	res.Duration = time.Since(start)

	if res.Best == nil {
		return res, ErrNoCandidate
	}
	if t.cfg.WeightsPath != "" {
		if err := perceptron.Save(t.cfg.WeightsPath, res.Best); err != nil {
			return res, fmt.Errorf("save best network: %w", err)
		}
		res.Path = t.cfg.WeightsPath
		t.logf(logx.TRN, "Model saved to: %s (fitness %.2f, generation %d)", logx.Highlight(res.Path), res.Fitness, res.Generation)
	}
	return res, nil
}

// probe replays the solver's opening and re-scores the current best. The
// results are diagnostics only; the population is not touched.
func (t *Trainer) probe(d minimax.Difficulty) (float64, []int) {
	if t.cfg.Probes <= 0 {
		return 0, nil
	}
	solver := minimax.New(d, t.rng)
	openings := make([]int, 0, t.cfg.Probes)
	total := 0.0
	for i := 0; i < t.cfg.Probes; i++ {
		if idx, err := solver.Move(game.Board{}, game.O); err == nil {
			openings = append(openings, idx)
		}
		total += t.ga.Fitness(t.ga.Member(0), d)
	}
	return total / float64(t.cfg.Probes), openings
}

func (t *Trainer) report(s GenerationStats) {
	if n := t.cfg.ReportInterval; n > 0 && (s.Generation%n == 0 || s.Improved || s.Generation == s.MaxGenerations) {
		t.logf(logx.GEN, "Generation %d/%d, Best Fitness of Generation: %s, Global Best Fitness: %s (Generation %d), Difficulty: %s | mean %.2f | Elapsed: %s | %s",
			s.Generation, s.MaxGenerations, logx.FitnessColor(s.Best), logx.FitnessColor(s.GlobalBest), s.GlobalBestGen,
			s.Difficulty, s.Mean, logx.FormatDuration(s.Elapsed), logx.Dim("ETA: "+logx.FormatDuration(s.ETA)))
		if len(s.ProbeOpenings) > 0 {
			t.logf(logx.EVAL, "probe %s over %d replays, solver openings %v, table %d positions",
				logx.FitnessColor(s.ProbeFitness), len(s.ProbeOpenings), s.ProbeOpenings, s.TableSize)
		}
	}
	for _, o := range t.observers {
		o.OnGeneration(s)
	}
}

func (t *Trainer) improved(s GenerationStats, best *perceptron.Network) {
	t.logf(logx.BEST, "New best %s at generation %d (%s)", logx.FitnessColor(s.GlobalBest), s.Generation, s.Difficulty)
	for _, o := range t.observers {
		if io, ok := o.(ImprovementObserver); ok {
			io.OnImprovement(s, best)
		}
	}
}

func (t *Trainer) logf(ch, format string, args ...any) {
	if t.cfg.ReportInterval <= 0 {
		return
	}
	logx.Printf(ch, format, args...)
}
