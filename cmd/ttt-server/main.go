package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/montplusa/tictactoe-evolve/pkg/ai/minimax"
	"github.com/montplusa/tictactoe-evolve/pkg/logx"
	"github.com/montplusa/tictactoe-evolve/pkg/server"
	"github.com/montplusa/tictactoe-evolve/pkg/training"
)

func main() {
	cfg := server.DefaultConfig()

	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "Listen address")
	flag.StringVar(&cfg.Training.WeightsPath, "weights", cfg.Training.WeightsPath, "Trained network to serve and to write on training")
	trainConfig := flag.String("train-config", "", "JSON training config used by POST /train")
	difficulty := flag.String("difficulty", cfg.DefaultDifficulty.String(), "Solver difficulty when a move request names none")
	flag.DurationVar(&cfg.SessionTTL, "session-ttl", cfg.SessionTTL, "Drop sessions idle longer than this (0 keeps them)")
	flag.BoolVar(&cfg.RequestLog, "log-requests", cfg.RequestLog, "Log every request")
	noColor := flag.Bool("no-color", false, "Disable coloured log output")
	flag.Parse()
	if *noColor {
		logx.SetColor(false)
	}

	d, err := minimax.ParseDifficulty(*difficulty)
	if err != nil {
		log.Fatalf("-difficulty: %v", err)
	}
	cfg.DefaultDifficulty = d

	if *trainConfig != "" {
		weights := cfg.Training.WeightsPath
		if err := training.LoadConfig(&cfg.Training, *trainConfig); err != nil {
			log.Fatalf("Failed to load training config: %v", err)
		}
		cfg.Training.WeightsPath = weights
	}

	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
