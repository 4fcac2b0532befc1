package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// run executes the root command with args and returns stdout and stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestSolve_Durations(t *testing.T) {
	out, _, err := run(t, "solve", "--durations", "5,3,8,2", "-m", "2", "--mode", "heuristic")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"# Tasks: 4", "Durations: [5, 3, 8, 2]", "Schedule @0: 2, 3", "Makespan: 10", "not proven optimal"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got:\n%s", want, out)
		}
	}
}

func TestSolve_JSON(t *testing.T) {
	out, _, err := run(t, "solve", "--durations", "3 3 2 2 2", "-m", "2", "--mode", "compare", "-f", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var results []solveOutput
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	r := results[0]
	if r.Heuristic == nil || r.Heuristic.Makespan != 7 {
		t.Errorf("expected heuristic makespan 7, got %+v", r.Heuristic)
	}
	if r.Best.Makespan != 6 {
		t.Errorf("expected best makespan 6, got %d", r.Best.Makespan)
	}
	if !r.Proven {
		t.Error("expected proven result")
	}
}

func TestSolve_Table(t *testing.T) {
	out, _, err := run(t, "solve", "--durations", "4,4", "-m", "2", "--name", "pair", "-f", "table")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"== pair ==", "@0", "@1", "Makespan: 4"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got:\n%s", want, out)
		}
	}
}

func TestSolve_File(t *testing.T) {
	path := writeFile(t, "jobs.yaml", `
instances:
  - name: first
    durations: [5, 3, 8, 2]
    processors: 2
  - name: second
    durations: [4, 4, 4, 4]
    processors: 2
`)

	out, _, err := run(t, "solve", path, "--mode", "optimal")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"== first ==", "== second ==", "Makespan: 10", "Makespan: 8"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got:\n%s", want, out)
		}
	}
}

func TestSolve_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "no input", args: []string{"solve"}, want: "--durations"},
		{name: "zero duration", args: []string{"solve", "--durations", "1,0", "-m", "2"}, want: "1 of 1 instances failed"},
		{name: "bad duration", args: []string{"solve", "--durations", "1,x"}, want: "x"},
		{name: "unknown mode", args: []string{"solve", "--durations", "1", "--mode", "fast"}, want: "fast"},
		{name: "unknown order", args: []string{"solve", "--durations", "1", "--order", "random"}, want: "random"},
		{name: "bad timeout", args: []string{"solve", "--durations", "1", "--timeout", "soon"}, want: "--timeout"},
		{name: "missing file", args: []string{"solve", filepath.Join(t.TempDir(), "nope.yaml")}, want: "nope.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.args...)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestGen_Deterministic(t *testing.T) {
	args := []string{"gen", "--count", "3", "--tasks", "5", "--processors", "2", "--seed", "42"}

	first, _, err := run(t, args...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, _, err := run(t, args...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Errorf("expected identical output for the same seed:\n%s\nvs\n%s", first, second)
	}
	if got := strings.Count(first, "durations:"); got != 3 {
		t.Errorf("expected 3 instances, got %d:\n%s", got, first)
	}
}

func TestGen_InvalidCounts(t *testing.T) {
	if _, _, err := run(t, "gen", "--count", "0"); err == nil {
		t.Error("expected error for --count 0")
	}
	if _, _, err := run(t, "gen", "--processors", "0"); err == nil {
		t.Error("expected error for --processors 0")
	}
}

func TestGenThenBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.yaml")
	if _, _, err := run(t, "gen", "--count", "4", "--tasks", "6", "--processors", "3", "--seed", "7", "--out", path); err != nil {
		t.Fatalf("gen: %v", err)
	}

	out, _, err := run(t, "batch", path, "--workers", "2", "--no-progress", "--timeout", "2s")
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	for _, want := range []string{"random-0", "random-3", "Solved 4/4 instances"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got:\n%s", want, out)
		}
	}
}

func TestBatch_ReportsFailures(t *testing.T) {
	path := writeFile(t, "jobs.yaml", `
instances:
  - name: good
    durations: [1, 2, 3]
    processors: 2
  - name: bad
    durations: [1, 2]
    processors: 0
`)

	out, _, err := run(t, "batch", path, "--no-progress")
	if err == nil {
		t.Fatal("expected error for failed instance")
	}
	if !strings.Contains(out, "Solved 1/2 instances") {
		t.Errorf("expected partial summary, got:\n%s", out)
	}
}

func TestHistory(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")

	out, _, err := run(t, "solve", "--durations", "5,3,8,2", "-m", "2", "--name", "archived", "-f", "json", "--db", db)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	var results []solveOutput
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(results) != 1 || !strings.HasPrefix(results[0].RunID, "run_") {
		t.Fatalf("expected one archived run, got %+v", results)
	}
	id := results[0].RunID

	out, _, err = run(t, "history", "--db", db)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "archived") || !strings.Contains(out, "Showing 1-1 of 1 runs") {
		t.Errorf("expected run in listing, got:\n%s", out)
	}

	out, _, err = run(t, "history", "--db", db, "--show", id)
	if err != nil {
		t.Fatalf("history --show: %v", err)
	}
	if !strings.Contains(out, "Makespan: 10") {
		t.Errorf("expected schedule table, got:\n%s", out)
	}

	if _, _, err := run(t, "history", "--db", db, "--delete", id); err != nil {
		t.Fatalf("history --delete: %v", err)
	}
	if _, _, err := run(t, "history", "--db", db, "--show", id); err == nil {
		t.Error("expected error showing a deleted run")
	}
}

func TestHistory_NoArchive(t *testing.T) {
	t.Setenv("MAKESPAN_DB", "")
	if _, _, err := run(t, "history"); err == nil {
		t.Error("expected error without a configured archive")
	}
}

func TestRoot_ConfigFile(t *testing.T) {
	path := writeFile(t, "makespan.yaml", `
solve:
  mode: heuristic
  order: id
`)

	out, _, err := run(t, "--config", path, "solve", "--durations", "5,3,8,2", "-m", "2", "-f", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var results []solveOutput
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	// in-order list scheduling gives 11, LPT would give 10
	if results[0].Best.Makespan != 11 {
		t.Errorf("expected makespan 11 from config order, got %d", results[0].Best.Makespan)
	}
	if results[0].Nodes != 0 {
		t.Errorf("expected no search in heuristic mode, got %d nodes", results[0].Nodes)
	}
}

func TestRoot_DebugLogging(t *testing.T) {
	_, stderr, err := run(t, "--debug", "gen", "--count", "1", "--seed", "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stderr, "generated instances") {
		t.Errorf("expected debug log on stderr, got:\n%s", stderr)
	}
}
