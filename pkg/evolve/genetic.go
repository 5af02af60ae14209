package evolve

import (
	"fmt"
	"math/rand"
	"runtime"
	"sort"
	"sync"

	"github.com/montplusa/tictactoe-evolve/pkg/ai/minimax"
	"github.com/montplusa/tictactoe-evolve/pkg/ai/perceptron"
)

// FitnessFunc scores one network. rng belongs to the call.
type FitnessFunc func(net *perceptron.Network, d minimax.Difficulty, rng *rand.Rand) float64

// Config holds the optimizer parameters.
type Config struct {
	PopulationSize  int     `json:"population_size"`
	MutationRate    float64 `json:"mutation_rate"`
	CrossoverRate   float64 `json:"crossover_rate"` // below 1, some children are mutated clones of parent 1
	ElitismCount    int     `json:"elitism_count"`
	TournamentSize  int     `json:"tournament_size"`
	EliteBias       float64 `json:"elite_bias"`       // chance a parent is the generation's best
	ExplorationRate float64 `json:"exploration_rate"` // chance a tournament returns a random entrant
	Workers         int     `json:"workers"`

	Evaluator Evaluator `json:"evaluator"`
	// Fitness overrides Evaluator when set.
	Fitness FitnessFunc `json:"-"`
}

func DefaultConfig() Config {
	return Config{
		PopulationSize:  50,
		MutationRate:    0.05,
		CrossoverRate:   1.0,
		ElitismCount:    2,
		TournamentSize:  5,
		EliteBias:       0.5,
		ExplorationRate: 0.3,
		Workers:         runtime.NumCPU(),
		Evaluator:       DefaultEvaluator(),
	}
}

func (c Config) validate() error {
	switch {
	case c.PopulationSize < 1:
		return fmt.Errorf("population size must be positive, got %d", c.PopulationSize)
	case c.ElitismCount < 0 || c.ElitismCount > c.PopulationSize:
		return fmt.Errorf("elitism count %d outside [0, %d]", c.ElitismCount, c.PopulationSize)
	case c.TournamentSize < 1 || c.TournamentSize > c.PopulationSize:
		return fmt.Errorf("tournament size %d outside [1, %d]", c.TournamentSize, c.PopulationSize)
	case c.MutationRate < 0 || c.MutationRate > 1:
		return fmt.Errorf("mutation rate %v outside [0, 1]", c.MutationRate)
	case c.CrossoverRate < 0 || c.CrossoverRate > 1:
		return fmt.Errorf("crossover rate %v outside [0, 1]", c.CrossoverRate)
	}
	return nil
}

// Scored pairs a population index with its fitness for one generation.
type Scored struct {
	Index   int
	Fitness float64
}

// Generation summarises one Evolve call. Ranking refers to the population
// that was evaluated, before it was replaced.
type Generation struct {
	Number     int
	Difficulty minimax.Difficulty
	Ranking    []Scored
	Best       float64
	Mean       float64
}

// GA evolves a fixed-size population of networks.
//
// The population is an arena: each slot owns its tensors. Elites are cloned
// into the next arena and every other child is built from fresh tensors, so
// no two slots ever share storage.
type GA struct {
	cfg        Config
	rng        *rand.Rand
	fitness    FitnessFunc
	population []perceptron.Network
	generation int
}

// New creates a random population. rng drives every random choice of the
// optimizer and must not be shared.
func New(cfg Config, rng *rand.Rand) (*GA, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	ga := &GA{cfg: cfg, rng: rng, fitness: cfg.Fitness}
	if ga.fitness == nil {
		ev := cfg.Evaluator
		ga.fitness = func(net *perceptron.Network, d minimax.Difficulty, rng *rand.Rand) float64 {
			return ev.Fitness(perceptron.NewAgent("candidate", net), d, rng)
		}
	}
	ga.population = make([]perceptron.Network, cfg.PopulationSize)
	for i := range ga.population {
		ga.population[i] = *perceptron.New(rng)
	}
	return ga, nil
}

func (ga *GA) Config() Config { return ga.cfg }

// Generation is the number of completed Evolve calls.
func (ga *GA) Generation() int { return ga.generation }

// Len is the population size.
func (ga *GA) Len() int { return len(ga.population) }

// Member returns slot i. Callers must not modify it.
func (ga *GA) Member(i int) *perceptron.Network { return &ga.population[i] }

// Best returns a copy of slot 0, which holds the top elite after Evolve.
func (ga *GA) Best() *perceptron.Network { return ga.population[0].Clone() }

// Fitness scores net with a private rng seeded from the optimizer's rng.
func (ga *GA) Fitness(net *perceptron.Network, d minimax.Difficulty) float64 {
	return ga.fitness(net, d, rand.New(rand.NewSource(ga.rng.Int63())))
}

// Rank scores every member at d and returns them best first. Members are
// evaluated concurrently; each gets an rng seeded in slot order, so the
// result does not depend on the number of workers. A panic inside the fitness
// function is re-raised on the calling goroutine.
func (ga *GA) Rank(d minimax.Difficulty) []Scored {
	seeds := make([]int64, len(ga.population))
	for i := range seeds {
		seeds[i] = ga.rng.Int63()
	}

	ranking := make([]Scored, len(ga.population))
	tasks := make(chan int, len(ga.population))
	var (
		wg        sync.WaitGroup
		panicOnce sync.Once
		panicked  any
	)
	for w := 0; w < ga.cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					panicOnce.Do(func() { panicked = r })
				}
			}()
			for i := range tasks {
				rng := rand.New(rand.NewSource(seeds[i]))
				ranking[i] = Scored{Index: i, Fitness: ga.fitness(&ga.population[i], d, rng)}
			}
		}()
	}
	for i := range ga.population {
		tasks <- i
	}
	close(tasks)
	wg.Wait()
	// re-raised here so the caller's recover sees it
	if panicked != nil {
		panic(fmt.Sprintf("fitness evaluation panicked: %v", panicked))
	}

	sortScores(ranking)
	return ranking
}

func sortScores(s []Scored) {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Fitness > s[j].Fitness })
}

// SelectParent picks a parent index from a ranking sorted best first.
func (ga *GA) SelectParent(ranking []Scored) int {
	if ga.rng.Float64() < ga.cfg.EliteBias {
		return ranking[0].Index
	}

	size := ga.cfg.TournamentSize
	if size > len(ranking) {
		size = len(ranking)
	}
	tournament := make([]Scored, size)
	for k, i := range ga.rng.Perm(len(ranking))[:size] {
		tournament[k] = ranking[i]
	}
	sortScores(tournament)

	if ga.rng.Float64() < ga.cfg.ExplorationRate {
		return tournament[ga.rng.Intn(size)].Index
	}
	return tournament[0].Index
}

// Evolve runs one generation at difficulty d and replaces the population.
func (ga *GA) Evolve(d minimax.Difficulty) Generation {
	ranking := ga.Rank(d)

	next := make([]perceptron.Network, 0, ga.cfg.PopulationSize)
	for i := 0; i < ga.cfg.ElitismCount; i++ {
		next = append(next, *ga.population[ranking[i].Index].Clone())
	}
	for len(next) < ga.cfg.PopulationSize {
		p1 := &ga.population[ga.SelectParent(ranking)]
		p2 := &ga.population[ga.SelectParent(ranking)]
		var child *perceptron.Network
		if ga.rng.Float64() < ga.cfg.CrossoverRate {
			child = Crossover(p1, p2, ga.rng)
		} else {
			child = p1.Clone()
		}
		Mutate(child, ga.cfg.MutationRate, ga.rng)
		next = append(next, *child)
	}
	ga.population = next
	ga.generation++

	g := Generation{
		Number:     ga.generation,
		Difficulty: d,
		Ranking:    ranking,
		Best:       ranking[0].Fitness,
	}
	for _, s := range ranking {
		g.Mean += s.Fitness
	}
	g.Mean /= float64(len(ranking))
	return g
}
