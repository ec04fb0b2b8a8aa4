package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Recorder persists run metadata and window statistics to a SQLite database,
// so runs can be compared across invocations without parsing CSVs.
type Recorder struct {
	db    *sql.DB
	runID uuid.UUID
}

// OpenRecorder opens (creating if needed) the run database at path and
// registers a new run row. Returns nil if path is empty (recording disabled).
func OpenRecorder(ctx context.Context, path string, runID uuid.UUID, seed int64) (*Recorder, error) {
	if path == "" {
		return nil, nil
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening run database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging run database: %w", err)
	}

	r := &Recorder{db: db, runID: runID}
	if err := r.createTables(ctx); err != nil {
		db.Close()
		return nil, err
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO runs (id, seed, started_at) VALUES (?, ?, ?)`,
		runID.String(), seed, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("registering run: %w", err)
	}
	return r, nil
}

func (r *Recorder) createTables(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			seed INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			final_tick INTEGER,
			final_population INTEGER,
			final_generation INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS windows (
			run_id TEXT NOT NULL REFERENCES runs(id),
			window_end INTEGER NOT NULL,
			population INTEGER NOT NULL,
			births INTEGER NOT NULL,
			deaths INTEGER NOT NULL,
			kills INTEGER NOT NULL,
			units_gathered INTEGER NOT NULL,
			units_delivered INTEGER NOT NULL,
			blueprints_completed INTEGER NOT NULL,
			blueprints_abandoned INTEGER NOT NULL,
			tool_uses INTEGER NOT NULL,
			energy_mean REAL NOT NULL,
			generation_max INTEGER NOT NULL,
			PRIMARY KEY (run_id, window_end)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating tables: %w", err)
		}
	}
	return nil
}

// RecordWindow inserts one flushed window for this run.
func (r *Recorder) RecordWindow(ctx context.Context, ws WindowStats) error {
	if r == nil {
		return nil
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO windows (
			run_id, window_end, population, births, deaths, kills,
			units_gathered, units_delivered,
			blueprints_completed, blueprints_abandoned, tool_uses,
			energy_mean, generation_max
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.runID.String(), ws.WindowEnd, ws.Population, ws.Births, ws.Deaths,
		ws.Kills, ws.UnitsGathered, ws.UnitsDelivered,
		ws.BlueprintsCompleted, ws.BlueprintsAbandoned, ws.ToolUses,
		ws.EnergyMean, ws.GenerationMax,
	)
	if err != nil {
		return fmt.Errorf("recording window: %w", err)
	}
	return nil
}

// Finish stamps the run row with its end state.
func (r *Recorder) Finish(ctx context.Context, finalTick int64, population int, generation int32) error {
	if r == nil {
		return nil
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, final_tick = ?, final_population = ?, final_generation = ?
		 WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), finalTick, population, generation,
		r.runID.String(),
	)
	if err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}
	return nil
}

// Close closes the database.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	return r.db.Close()
}
