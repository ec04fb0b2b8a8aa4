package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/cgcardona/bugtopia/config"
	"github.com/cgcardona/bugtopia/engine"
	"github.com/cgcardona/bugtopia/genome"
	"github.com/cgcardona/bugtopia/telemetry"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	ticks := flag.Int64("ticks", 0, "Stop after N ticks (0 = unlimited)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = use config, overrides config otherwise)")
	outputDir := flag.String("out", "", "Base directory for run output (CSV + config archive)")
	recordDB := flag.String("record", "", "SQLite database path for cross-run records")
	logJSON := flag.Bool("log-json", false, "Emit JSON logs instead of text")

	flag.Parse()

	var handler slog.Handler
	if *logJSON {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	} else {
		handler = slog.NewTextHandler(os.Stdout, nil)
	}
	log := slog.New(handler)
	slog.SetDefault(log)

	if err := run(log, *configPath, *ticks, *seed, *outputDir, *recordDB); err != nil {
		log.Error("run_failed", "err", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger, configPath string, maxTicks, seed int64, outputDir, recordDB string) error {
	ctx := context.Background()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if seed != 0 {
		cfg.World.Seed = seed
	}

	out, err := telemetry.NewOutputManager(outputDir)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := out.WriteConfig(cfg); err != nil {
		return err
	}

	runID := out.RunID()
	if runID == uuid.Nil {
		runID = uuid.New()
	}
	recorder, err := telemetry.OpenRecorder(ctx, recordDB, runID, cfg.World.Seed)
	if err != nil {
		return err
	}
	defer recorder.Close()

	eng, err := engine.New(cfg, log)
	if err != nil {
		return err
	}
	defer eng.Close()
	eng.Start()

	log.Info("run_started",
		"run_id", runID,
		"seed", cfg.World.Seed,
		"max_ticks", maxTicks,
		"population", eng.Alive(),
	)

	start := time.Now()
	for eng.IsRunning() {
		eng.Step()

		if eng.ShouldFlush() {
			ws := eng.FlushWindow()
			ws.LogStats(log)
			if err := out.WriteTelemetry(ws); err != nil {
				return err
			}
			if err := recorder.RecordWindow(ctx, ws); err != nil {
				return err
			}
		}

		if maxTicks > 0 && eng.Tick() >= maxTicks {
			eng.Pause()
		}
		if eng.Alive() == 0 {
			log.Info("population_extinct", "tick", eng.Tick())
			eng.Pause()
		}
	}

	stats := eng.Stats()
	if err := recorder.Finish(ctx, eng.Tick(), eng.Alive(), eng.Generation()); err != nil {
		return err
	}

	elapsed := time.Since(start)
	perSec := float64(eng.Tick()) / elapsed.Seconds()
	fmt.Printf("\nRun complete: %s ticks in %s (%s ticks/sec)\n",
		humanize.Comma(eng.Tick()), elapsed.Round(time.Millisecond),
		humanize.CommafWithDigits(perSec, 0))
	fmt.Printf("Final population: %s bugs, generation %d\n",
		humanize.Comma(int64(eng.Alive())), eng.Generation())
	fmt.Printf("  herbivores %d, carnivores %d, omnivores %d, scavengers %d\n",
		stats.BySpecies[genome.Herbivore], stats.BySpecies[genome.Carnivore],
		stats.BySpecies[genome.Omnivore], stats.BySpecies[genome.Scavenger])
	if dir := out.Dir(); dir != "" {
		fmt.Printf("Output written to %s\n", dir)
	}

	return nil
}
