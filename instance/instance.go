// Package instance describes scheduling problems as they travel between
// files, the command line and the HTTP API.
package instance

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/utkarsh5026/makespan/schedule"
)

// Instance is one set of task durations to be placed on Processors
// identical machines.
type Instance struct {
	Name       string `yaml:"name,omitempty" json:"name,omitempty"`
	Durations  []int  `yaml:"durations" json:"durations"`
	Processors int    `yaml:"processors" json:"processors"`
}

// Validate reports whether the instance can be scheduled. The error wraps
// schedule.ErrInvalidArgument.
func (in Instance) Validate() error {
	if schedule.AreValid(in.Durations, in.Processors) {
		return nil
	}
	// the generator produces the precise message
	_, err := schedule.NewGenerator(in.Durations, in.Processors)
	if in.Name != "" {
		return fmt.Errorf("instance %q: %w", in.Name, err)
	}
	return err
}

// Generator builds a schedule.Generator for the instance.
func (in Instance) Generator(opts ...schedule.GeneratorOption) (*schedule.Generator, error) {
	gen, err := schedule.NewGenerator(in.Durations, in.Processors, opts...)
	if err != nil && in.Name != "" {
		return nil, fmt.Errorf("instance %q: %w", in.Name, err)
	}
	return gen, err
}

// document is the on-disk shape: either a single instance at the top level
// or a list under "instances".
type document struct {
	Instance  `yaml:",inline"`
	Instances []Instance `yaml:"instances,omitempty"`
}

// ErrEmpty is returned when a document holds no instance at all.
var ErrEmpty = errors.New("instance: document holds no instances")

// Parse decodes a YAML (or JSON) document into instances. Instances are not
// validated; unnamed list entries are named "instance-<i>".
func Parse(data []byte) ([]Instance, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmpty
	}

	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("instance: decode: %w", err)
	}

	if len(doc.Instances) > 0 {
		if doc.Durations != nil || doc.Processors != 0 {
			return nil, fmt.Errorf("instance: document mixes a top-level instance with an instances list")
		}
		for i := range doc.Instances {
			if doc.Instances[i].Name == "" {
				doc.Instances[i].Name = "instance-" + strconv.Itoa(i)
			}
		}
		return doc.Instances, nil
	}

	if doc.Durations == nil && doc.Processors == 0 {
		return nil, ErrEmpty
	}
	return []Instance{doc.Instance}, nil
}

// Load reads and parses the file at path.
func Load(path string) ([]Instance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("instance: read %s: %w", path, err)
	}
	instances, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return instances, nil
}

// Marshal encodes instances as a YAML document that Parse accepts.
func Marshal(instances []Instance) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	list := struct {
		Instances []Instance `yaml:"instances"`
	}{Instances: instances}
	if err := enc.Encode(list); err != nil {
		return nil, fmt.Errorf("instance: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("instance: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// ParseDurations parses a comma or whitespace separated list such as
// "5,3,8,2". An empty string yields an empty, non-nil slice.
func ParseDurations(s string) ([]int, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})

	out := make([]int, 0, len(fields))
	for _, f := range fields {
		d, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("instance: duration %q: %w", f, err)
		}
		out = append(out, d)
	}
	return out, nil
}

// Random returns an instance with n tasks whose durations are uniform in
// [minDur, maxDur]. The bounds are swapped when given in reverse and clamped
// to at least 1, so the result is always valid for m >= 1.
func Random(rng *rand.Rand, name string, n, m, minDur, maxDur int) Instance {
	if minDur > maxDur {
		minDur, maxDur = maxDur, minDur
	}
	minDur = max(minDur, 1)
	maxDur = max(maxDur, minDur)

	durations := make([]int, max(n, 0))
	for i := range durations {
		durations[i] = minDur + rng.Intn(maxDur-minDur+1)
	}
	return Instance{Name: name, Durations: durations, Processors: m}
}
