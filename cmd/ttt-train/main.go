package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/montplusa/tictactoe-evolve/pkg/logx"
	"github.com/montplusa/tictactoe-evolve/pkg/training"
	"github.com/montplusa/tictactoe-evolve/pkg/tui"
)

func main() {
	cfg := training.DefaultConfig()

	configPath := flag.String("config", "", "JSON config file, applied before the other flags")
	flag.IntVar(&cfg.MaxGenerations, "generations", cfg.MaxGenerations, "Maximum number of generations")
	flag.Float64Var(&cfg.TargetFitness, "target", cfg.TargetFitness, "Stop once the best fitness reaches this value")
	flag.IntVar(&cfg.EasyPercent, "easy", cfg.EasyPercent, "Percentage of generations against the easy solver")
	flag.IntVar(&cfg.MediumPercent, "medium", cfg.MediumPercent, "Percentage of generations against the medium solver")
	flag.IntVar(&cfg.HardPercent, "hard", cfg.HardPercent, "Percentage of generations against the hard solver")
	flag.IntVar(&cfg.GA.PopulationSize, "population", cfg.GA.PopulationSize, "Population size")
	flag.Float64Var(&cfg.GA.MutationRate, "mutation", cfg.GA.MutationRate, "Per-weight mutation probability")
	flag.IntVar(&cfg.GA.Evaluator.Episodes, "episodes", cfg.GA.Evaluator.Episodes, "Episodes per fitness evaluation")
	flag.Float64Var(&cfg.GA.Evaluator.Shaping.Draw, "draw-reward", cfg.GA.Evaluator.Shaping.Draw, "Reward for a draw (0.5 credits draws in fitness)")
	flag.IntVar(&cfg.GA.Workers, "workers", cfg.GA.Workers, "Concurrent fitness evaluations")
	flag.StringVar(&cfg.WeightsPath, "out", cfg.WeightsPath, "Where to save the best network")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed (0 uses the clock)")
	flag.IntVar(&cfg.ReportInterval, "report", cfg.ReportInterval, "Log progress every N generations")
	useTUI := flag.Bool("tui", false, "Show a terminal dashboard instead of log lines")
	noColor := flag.Bool("no-color", false, "Disable coloured log output")
	flag.Parse()
	if *noColor {
		logx.SetColor(false)
	}

	if *configPath != "" {
		// flags given on the command line win over the file
		explicit := map[string]string{}
		flag.Visit(func(f *flag.Flag) { explicit[f.Name] = f.Value.String() })
		if err := training.LoadConfig(&cfg, *configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		for name, value := range explicit {
			_ = flag.Set(name, value)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var observers []training.Observer
	var dash *tui.Dashboard
	if *useTUI {
		d, err := tui.Start(ctx, "ttt-train", cancel)
		if err != nil {
			log.Printf("%v, falling back to log output", err)
		} else {
			dash = d
			observers = append(observers, dash)
			cfg.ReportInterval = 0
		}
	}

	trainer, err := training.NewTrainer(cfg, observers...)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	res, err := trainer.Run(ctx)
	if dash != nil {
		if err != nil {
			dash.Event("ERROR", err.Error())
		} else {
			dash.Event("DONE", fmt.Sprintf("saved %s (fitness %.2f)", res.Path, res.Fitness))
		}
		dash.Stop()
	}
	if err != nil {
		if errors.Is(err, context.Canceled) && res.Best != nil {
			log.Printf("Interrupted after %d generations, best fitness %.2f (not saved)", res.Generations, res.Fitness)
		}
		log.Fatalf("Training failed: %v", err)
	}

	logx.Printf(logx.TRN, "%s", logx.Successf("Training complete in %s: fitness %.2f from generation %d, saved to %s",
		logx.FormatDuration(res.Duration), res.Fitness, res.Generation, res.Path))
}
