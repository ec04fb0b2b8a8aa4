package telemetry

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func TestRecorderDisabledWhenPathEmpty(t *testing.T) {
	ctx := context.Background()
	r, err := OpenRecorder(ctx, "", uuid.New(), 42)
	if err != nil {
		t.Fatalf("disabled recorder: %v", err)
	}
	if r != nil {
		t.Fatal("empty path should disable recording")
	}

	// The nil recorder is a no-op, not a panic.
	if err := r.RecordWindow(ctx, WindowStats{}); err != nil {
		t.Errorf("nil RecordWindow: %v", err)
	}
	if err := r.Finish(ctx, 100, 5, 2); err != nil {
		t.Errorf("nil Finish: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("nil Close: %v", err)
	}
}

func TestRecorderWindowRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.db")
	runID := uuid.New()

	r, err := OpenRecorder(ctx, path, runID, 1234)
	if err != nil {
		t.Fatalf("opening recorder: %v", err)
	}
	defer r.Close()

	in := WindowStats{
		WindowEnd:           300,
		Population:          41,
		Births:              6,
		Deaths:              3,
		Kills:               2,
		UnitsGathered:       58,
		UnitsDelivered:      17,
		BlueprintsCompleted: 1,
		BlueprintsAbandoned: 0,
		ToolUses:            9,
		EnergyMean:          55.5,
		GenerationMax:       4,
	}
	if err := r.RecordWindow(ctx, in); err != nil {
		t.Fatalf("recording window: %v", err)
	}

	var out WindowStats
	row := r.db.QueryRowContext(ctx,
		`SELECT population, births, deaths, kills, units_gathered,
		        units_delivered, blueprints_completed, blueprints_abandoned,
		        tool_uses, energy_mean, generation_max
		 FROM windows WHERE run_id = ? AND window_end = ?`,
		runID.String(), in.WindowEnd)
	err = row.Scan(&out.Population, &out.Births, &out.Deaths, &out.Kills,
		&out.UnitsGathered, &out.UnitsDelivered,
		&out.BlueprintsCompleted, &out.BlueprintsAbandoned,
		&out.ToolUses, &out.EnergyMean, &out.GenerationMax)
	if err != nil {
		t.Fatalf("reading window back: %v", err)
	}
	out.WindowEnd = in.WindowEnd
	if out != in {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", out, in)
	}

	// The same window for the same run must not insert twice.
	if err := r.RecordWindow(ctx, in); err == nil {
		t.Error("duplicate window_end accepted for one run")
	}
}

func TestRecorderFinishStampsRun(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.db")
	runID := uuid.New()

	r, err := OpenRecorder(ctx, path, runID, 7)
	if err != nil {
		t.Fatalf("opening recorder: %v", err)
	}
	defer r.Close()

	if err := r.Finish(ctx, 9000, 123, 11); err != nil {
		t.Fatalf("finishing run: %v", err)
	}

	var seed, finalTick int64
	var population int
	var generation int32
	var finished string
	row := r.db.QueryRowContext(ctx,
		`SELECT seed, finished_at, final_tick, final_population, final_generation
		 FROM runs WHERE id = ?`, runID.String())
	if err := row.Scan(&seed, &finished, &finalTick, &population, &generation); err != nil {
		t.Fatalf("reading run row: %v", err)
	}
	if seed != 7 || finalTick != 9000 || population != 123 || generation != 11 {
		t.Errorf("run row = seed %d tick %d pop %d gen %d", seed, finalTick, population, generation)
	}
	if finished == "" {
		t.Error("finished_at not stamped")
	}
}

func TestRecorderSeparatesRuns(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.db")

	r1, err := OpenRecorder(ctx, path, uuid.New(), 1)
	if err != nil {
		t.Fatalf("opening first recorder: %v", err)
	}
	if err := r1.RecordWindow(ctx, WindowStats{WindowEnd: 300, Population: 10}); err != nil {
		t.Fatalf("first run window: %v", err)
	}
	r1.Close()

	// A second run against the same database shares tables, not rows.
	r2, err := OpenRecorder(ctx, path, uuid.New(), 2)
	if err != nil {
		t.Fatalf("opening second recorder: %v", err)
	}
	defer r2.Close()
	if err := r2.RecordWindow(ctx, WindowStats{WindowEnd: 300, Population: 20}); err != nil {
		t.Fatalf("second run window: %v", err)
	}

	var runs, windows int
	if err := r2.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&runs); err != nil {
		t.Fatalf("counting runs: %v", err)
	}
	if err := r2.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM windows`).Scan(&windows); err != nil {
		t.Fatalf("counting windows: %v", err)
	}
	if runs != 2 || windows != 2 {
		t.Errorf("runs = %d, windows = %d; want 2 and 2", runs, windows)
	}
}
