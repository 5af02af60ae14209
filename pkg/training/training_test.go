package training

import (
	"bytes"
	"context"
	"errors"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/montplusa/tictactoe-evolve/pkg/ai/minimax"
	"github.com/montplusa/tictactoe-evolve/pkg/ai/perceptron"
	"github.com/montplusa/tictactoe-evolve/pkg/logx"
)

func TestCurriculumSplit(t *testing.T) {
	got, err := Curriculum(8, 25, 25, 50)
	if err != nil {
		t.Fatal(err)
	}
	E, M, H := minimax.Easy, minimax.Medium, minimax.Hard
	want := []minimax.Difficulty{E, E, M, M, H, H, H, H}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestCurriculumRoundsDownIntoHard(t *testing.T) {
	got, err := Curriculum(3, 34, 33, 33)
	if err != nil {
		t.Fatal(err)
	}
	want := []minimax.Difficulty{minimax.Easy, minimax.Hard, minimax.Hard}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestCurriculumRejectsBadPercentages(t *testing.T) {
	for _, p := range [][3]int{{50, 50, 50}, {0, 0, 0}, {-10, 60, 50}} {
		if _, err := Curriculum(10, p[0], p[1], p[2]); !errors.Is(err, ErrCurriculum) {
			t.Errorf("%v: err = %v, want ErrCurriculum", p, err)
		}
	}
}

func TestDifficultyAtClamps(t *testing.T) {
	c := []minimax.Difficulty{minimax.Easy, minimax.Medium}
	if d := DifficultyAt(c, 5); d != minimax.Medium {
		t.Fatalf("got %v past the end", d)
	}
	if d := DifficultyAt(nil, 0); d != minimax.Hard {
		t.Fatalf("empty schedule gave %v", d)
	}
}

func constFitness(v float64) func(*perceptron.Network, minimax.Difficulty, *rand.Rand) float64 {
	return func(*perceptron.Network, minimax.Difficulty, *rand.Rand) float64 { return v }
}

func smallConfig(t *testing.T) Config {
	cfg := DefaultConfig()
	cfg.MaxGenerations = 4
	cfg.Probes = 2
	cfg.Seed = 7
	cfg.ReportInterval = 0
	cfg.WeightsPath = filepath.Join(t.TempDir(), "weights.zip")
	cfg.GA.PopulationSize = 6
	cfg.GA.TournamentSize = 3
	cfg.GA.Workers = 2
	cfg.GA.Evaluator.Episodes = 4
	return cfg
}

func TestTrainerSavesBestNetwork(t *testing.T) {
	cfg := smallConfig(t)
	cfg.MaxGenerations = 3
	cfg.EasyPercent, cfg.MediumPercent, cfg.HardPercent = 100, 0, 0
	cfg.GA.Evaluator.Episodes = 20
	var seen []GenerationStats
	tr, err := NewTrainer(cfg, ObserverFunc(func(s GenerationStats) { seen = append(seen, s) }))
	if err != nil {
		t.Fatal(err)
	}
	res, err := tr.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(seen) != res.Generations || res.Generations == 0 {
		t.Fatalf("observed %d generations, ran %d", len(seen), res.Generations)
	}
	for _, s := range seen {
		if s.Difficulty != DifficultyAt(tr.Curriculum(), s.Generation-1) {
			t.Errorf("generation %d played %v", s.Generation, s.Difficulty)
		}
		if s.GlobalBest < s.Best-1e-12 {
			t.Errorf("generation %d: global best %v below current %v", s.Generation, s.GlobalBest, s.Best)
		}
		if len(s.ProbeOpenings) != cfg.Probes {
			t.Errorf("generation %d: %d probe openings", s.Generation, len(s.ProbeOpenings))
		}
		if s.TableSize <= 0 {
			t.Errorf("generation %d: solver table reported %d positions", s.Generation, s.TableSize)
		}
	}
	loaded, err := perceptron.Load(res.Path)
	if err != nil {
		t.Fatal(err)
	}
	if !loaded.Equal(res.Best) {
		t.Fatalf("saved weights differ from the best network")
	}
}

func TestTrainerStopsAtTarget(t *testing.T) {
	cfg := smallConfig(t)
	cfg.MaxGenerations = 50
	cfg.GA.Fitness = constFitness(1)
	tr, err := NewTrainer(cfg)
	if err != nil {
		t.Fatal(err)
	}
	res, err := tr.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !res.Reached || res.Generations != 1 || res.Generation != 1 {
		t.Fatalf("got %+v, want a stop after generation 1", res)
	}
}

func TestTrainerWithoutCandidate(t *testing.T) {
	cfg := smallConfig(t)
	cfg.GA.Fitness = constFitness(0)
	tr, err := NewTrainer(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tr.Run(context.Background()); !errors.Is(err, ErrNoCandidate) {
		t.Fatalf("err = %v, want ErrNoCandidate", err)
	}
	if _, err := os.Stat(cfg.WeightsPath); !os.IsNotExist(err) {
		t.Fatalf("weights written without a candidate: %v", err)
	}
}

func TestTrainerHonoursCancellation(t *testing.T) {
	cfg := smallConfig(t)
	cfg.GA.Fitness = constFitness(0.5)
	tr, err := NewTrainer(cfg)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := tr.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestNewTrainerRejectsBadCurriculum(t *testing.T) {
	cfg := smallConfig(t)
	cfg.HardPercent = 10
	if _, err := NewTrainer(cfg); !errors.Is(err, ErrCurriculum) {
		t.Fatalf("err = %v", err)
	}
}

func TestSupervisorSingleRun(t *testing.T) {
	release := make(chan struct{})
	cfg := smallConfig(t)
	cfg.MaxGenerations = 2
	cfg.GA.Fitness = func(*perceptron.Network, minimax.Difficulty, *rand.Rand) float64 {
		<-release
		return 0.5
	}

	done := make(chan Result, 1)
	s := NewSupervisor(func(r Result) { done <- r })
	if err := s.Start(cfg); err != nil {
		t.Fatal(err)
	}
	if !s.Active() {
		t.Fatalf("supervisor idle after Start")
	}
	if err := s.Start(cfg); !errors.Is(err, ErrTrainingActive) {
		t.Fatalf("second Start: %v", err)
	}
	close(release)
	if err := s.Wait(); err != nil {
		t.Fatal(err)
	}
	if s.Active() {
		t.Fatalf("still active after Wait")
	}
	r := <-done
	if r.Path != cfg.WeightsPath || s.LastResult() == nil {
		t.Fatalf("result %+v", r)
	}
}

func TestSupervisorReportsConfigErrors(t *testing.T) {
	s := NewSupervisor(nil)
	cfg := smallConfig(t)
	cfg.EasyPercent = 90
	if err := s.Start(cfg); !errors.Is(err, ErrCurriculum) {
		t.Fatalf("err = %v", err)
	}
	if s.Active() {
		t.Fatalf("active after a rejected start")
	}
}

func TestSupervisorRecordsFailure(t *testing.T) {
	s := NewSupervisor(func(Result) { t.Errorf("onDone after a failed run") })
	cfg := smallConfig(t)
	cfg.GA.Fitness = constFitness(0)
	if err := s.Start(cfg); err != nil {
		t.Fatal(err)
	}
	if err := s.Wait(); !errors.Is(err, ErrNoCandidate) {
		t.Fatalf("err = %v", err)
	}
	if s.LastResult() != nil {
		t.Fatalf("failed run left a result")
	}
}

func TestLoadConfigOverlays(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.json")
	body := `{"max_generations": 12, "ga": {"population_size": 8, "mutation_rate": 0.1}}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	if err := LoadConfig(&cfg, path); err != nil {
		t.Fatal(err)
	}
	if cfg.MaxGenerations != 12 || cfg.GA.PopulationSize != 8 || cfg.GA.MutationRate != 0.1 {
		t.Fatalf("overlay not applied: %+v", cfg)
	}
	if cfg.HardPercent != 50 || cfg.GA.ElitismCount != 2 {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

type recorder struct {
	generations  int
	improvements []int
}

func (r *recorder) OnGeneration(GenerationStats) { r.generations++ }

func (r *recorder) OnImprovement(s GenerationStats, best *perceptron.Network) {
	if best == nil {
		panic("nil best")
	}
	r.improvements = append(r.improvements, s.Generation)
}

func TestImprovementObserverSeesEachNewBest(t *testing.T) {
	cfg := smallConfig(t)
	cfg.MaxGenerations = 3
	cfg.GA.Fitness = func(*perceptron.Network, minimax.Difficulty, *rand.Rand) float64 { return 0.1 }
	rec := &recorder{}
	tr, err := NewTrainer(cfg, rec)
	if err != nil {
		t.Fatal(err)
	}
	res, err := tr.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if rec.generations != 3 {
		t.Fatalf("observed %d generations", rec.generations)
	}
	// equal scores never replace the first capture
	if !reflect.DeepEqual(rec.improvements, []int{1}) || res.Generation != 1 {
		t.Fatalf("improvements %v, best from generation %d", rec.improvements, res.Generation)
	}
}

func TestSupervisorRecoversFitnessPanic(t *testing.T) {
	cfg := smallConfig(t)
	cfg.GA.Fitness = func(*perceptron.Network, minimax.Difficulty, *rand.Rand) float64 { panic("boom") }
	s := NewSupervisor(func(Result) { t.Errorf("onDone after a panic") })
	if err := s.Start(cfg); err != nil {
		t.Fatal(err)
	}
	err := s.Wait()
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("err = %v", err)
	}
	if s.Active() {
		t.Fatalf("still active after a panic")
	}
}

func TestTrainerLogsEvalReport(t *testing.T) {
	logx.SetColor(false)
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	cfg := smallConfig(t)
	cfg.MaxGenerations = 2
	cfg.ReportInterval = 1
	cfg.GA.Fitness = constFitness(0.25)
	tr, err := NewTrainer(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tr.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if n := strings.Count(out, "[EVAL] probe 0.25 over 2 replays"); n != 2 {
		t.Fatalf("%d eval lines in:\n%s", n, out)
	}
	if !strings.Contains(out, "ETA: ") {
		t.Fatalf("no ETA in:\n%s", out)
	}
}
