package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/utkarsh5026/makespan/batch"
	"github.com/utkarsh5026/makespan/internal/store"
	"github.com/utkarsh5026/makespan/schedule"
)

func init() {
	color.NoColor = true
}

func example(t *testing.T) *schedule.Schedule {
	t.Helper()
	s, err := schedule.New([]int{5, 3, 8, 2}, 3, []schedule.ScheduledTask{
		{ID: 0, Processor: 1},
		{ID: 1, Processor: 1},
		{ID: 2, Processor: 0},
		{ID: 3, Processor: 0},
	})
	if err != nil {
		t.Fatalf("new schedule: %v", err)
	}
	return s
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	if err := Summary(&buf, example(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "# Tasks: 4\nDurations: [5, 3, 8, 2]\n# Processors: 3\n" +
		"Schedule @0: 2, 3\nSchedule @1: 0, 1\nSchedule @2:\nMakespan: 10\n"
	if buf.String() != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, buf.String())
	}
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	if err := Table(&buf, example(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(strings.ToUpper(out), "PROCESSOR") {
		t.Errorf("expected processor header, got:\n%s", out)
	}
	for _, want := range []string{"@0", "2, 3", "@2", "Makespan: 10", "Lower bound: 8", "Utilization: 60.0%"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got:\n%s", want, out)
		}
	}
}

func TestOutcomes(t *testing.T) {
	gen, err := schedule.NewGenerator([]int{3, 3, 2, 2, 2}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	outcomes := []batch.Outcome{
		{Index: 0, Name: "small", Heuristic: gen.Heuristic(), Best: gen.Optimal(), Proven: true, Nodes: 12345, Elapsed: 1500 * time.Microsecond},
		{Index: 1, Name: "broken", Err: errors.New("processor count 0 < 1")},
	}

	var buf bytes.Buffer
	if err := Outcomes(&buf, outcomes); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"small", "1.167", "yes", "12,345", "1.50ms", "Failed instances:", "#1 broken", "Solved 1/2 instances"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got:\n%s", want, out)
		}
	}
}

func TestRuns(t *testing.T) {
	run := store.NewRun("nightly", "optimal", example(t))
	run.Proven = true

	var buf bytes.Buffer
	if err := Runs(&buf, []*store.Run{run}, 7, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"nightly", "optimal", "yes", "Showing 3-3 of 7 runs"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := Runs(&buf, nil, 0, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "No runs (0 archived)") {
		t.Errorf("expected empty message, got:\n%s", buf.String())
	}
}

func TestNewProgressBar(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgressBar(&buf, 3, "solving")

	for range 3 {
		if err := bar.Add(1); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if !bar.IsFinished() {
		t.Error("expected bar to be finished")
	}
}

func TestJSON_View(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, NewView(example(t))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got View
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Makespan != 10 || got.LowerBound != 8 || got.Tasks != 4 || len(got.Loads) != 3 {
		t.Errorf("unexpected view: %+v", got)
	}
	if !strings.Contains(buf.String(), "\n  \"tasks\"") {
		t.Errorf("expected indented output, got %s", buf.String())
	}
}

func TestFormatCount(t *testing.T) {
	tests := map[int64]string{
		0:        "0",
		999:      "999",
		1000:     "1,000",
		1234567:  "1,234,567",
		-1234567: "-1,234,567",
	}
	for in, want := range tests {
		if got := FormatCount(in); got != want {
			t.Errorf("FormatCount(%d): expected %q, got %q", in, want, got)
		}
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{in: 0, want: "0"},
		{in: 500, want: "500ns"},
		{in: 1500, want: "1.5µs"},
		{in: 2500 * time.Microsecond, want: "2.50ms"},
		{in: 3 * time.Second, want: "3.00s"},
	}
	for _, tt := range tests {
		if got := FormatElapsed(tt.in); got != tt.want {
			t.Errorf("FormatElapsed(%v): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}
