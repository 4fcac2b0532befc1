package instance

import (
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/utkarsh5026/makespan/schedule"
)

func TestParse_SingleInstance(t *testing.T) {
	got, err := Parse([]byte("name: small\ndurations: [5, 3, 8, 2]\nprocessors: 2\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 instance, got %d", len(got))
	}
	if got[0].Name != "small" || got[0].Processors != 2 || !slices.Equal(got[0].Durations, []int{5, 3, 8, 2}) {
		t.Errorf("unexpected instance: %+v", got[0])
	}
}

func TestParse_JSON(t *testing.T) {
	got, err := Parse([]byte(`{"durations": [4, 4], "processors": 2}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Processors != 2 {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestParse_List(t *testing.T) {
	doc := `
instances:
  - name: a
    durations: [1, 2, 3]
    processors: 2
  - durations: [7]
    processors: 1
`
	got, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 instances, got %d", len(got))
	}
	if got[0].Name != "a" {
		t.Errorf("expected first name a, got %q", got[0].Name)
	}
	if got[1].Name != "instance-1" {
		t.Errorf("expected generated name instance-1, got %q", got[1].Name)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "empty", doc: "   \n"},
		{name: "no fields", doc: "name: lonely\n"},
		{name: "unknown field", doc: "durations: [1]\nprocessors: 1\nmachines: 3\n"},
		{name: "not a list", doc: "durations: three\nprocessors: 1\n"},
		{name: "mixed", doc: "processors: 2\ninstances:\n  - durations: [1]\n    processors: 1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.doc)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}

	if _, err := Parse(nil); !errors.Is(err, ErrEmpty) {
		t.Errorf("expected ErrEmpty, got %v", err)
	}
}

func TestMarshal_ParseBack(t *testing.T) {
	in := []Instance{
		{Name: "first", Durations: []int{5, 3, 8, 2}, Processors: 2},
		{Name: "second", Durations: []int{1}, Processors: 3},
	}

	data, err := Marshal(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(string(data), "instances:") {
		t.Errorf("expected document to start with instances:, got %s", data)
	}

	out, err := Parse(data)
	if err != nil {
		t.Fatalf("parse marshalled document: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("expected %d instances, got %d", len(in), len(out))
	}
	for i := range in {
		if out[i].Name != in[i].Name || out[i].Processors != in[i].Processors ||
			!slices.Equal(out[i].Durations, in[i].Durations) {
			t.Errorf("instance %d: expected %+v, got %+v", i, in[i], out[i])
		}
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.yaml")
	if err := os.WriteFile(path, []byte("durations: [2, 2]\nprocessors: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Processors != 1 {
		t.Errorf("unexpected result: %+v", got)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      Instance
		wantErr bool
	}{
		{name: "valid", in: Instance{Durations: []int{1, 2}, Processors: 1}},
		{name: "no tasks", in: Instance{Processors: 1}},
		{name: "zero processors", in: Instance{Durations: []int{1}}, wantErr: true},
		{name: "zero duration", in: Instance{Name: "bad", Durations: []int{0}, Processors: 1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error=%v, got %v", tt.wantErr, err)
			}
			if err != nil && !errors.Is(err, schedule.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestInstance_Generator(t *testing.T) {
	gen, err := Instance{Durations: []int{5, 3, 8, 2}, Processors: 2}.Generator()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := gen.Heuristic().Makespan(); got != 10 {
		t.Errorf("expected makespan 10, got %d", got)
	}

	_, err = Instance{Name: "broken", Processors: 0}.Generator()
	if err == nil || !strings.Contains(err.Error(), `"broken"`) {
		t.Errorf("expected error naming the instance, got %v", err)
	}
}

func TestParseDurations(t *testing.T) {
	tests := []struct {
		in      string
		want    []int
		wantErr bool
	}{
		{in: "5,3,8,2", want: []int{5, 3, 8, 2}},
		{in: " 5, 3 ,8 ", want: []int{5, 3, 8}},
		{in: "1 2\t3", want: []int{1, 2, 3}},
		{in: "", want: []int{}},
		{in: "4,,4", want: []int{4, 4}},
		{in: "4,x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDurations(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error=%v, got %v", tt.wantErr, err)
			}
			if !tt.wantErr && !slices.Equal(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	in := Random(rng, "r", 50, 4, 3, 9)
	if len(in.Durations) != 50 || in.Processors != 4 || in.Name != "r" {
		t.Fatalf("unexpected instance: %+v", in)
	}
	for i, d := range in.Durations {
		if d < 3 || d > 9 {
			t.Errorf("duration %d = %d outside [3, 9]", i, d)
		}
	}

	swapped := Random(rng, "s", 20, 2, 10, 0)
	for i, d := range swapped.Durations {
		if d < 1 || d > 10 {
			t.Errorf("duration %d = %d outside [1, 10]", i, d)
		}
	}
	if err := swapped.Validate(); err != nil {
		t.Errorf("expected random instance to be valid, got %v", err)
	}
}
