// Package render formats schedules and batch outcomes for the terminal.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"

	"github.com/utkarsh5026/makespan/batch"
	"github.com/utkarsh5026/makespan/internal/store"
	"github.com/utkarsh5026/makespan/schedule"
)

var (
	Bold   = color.New(color.Bold)
	Green  = color.New(color.FgGreen)
	Red    = color.New(color.FgRed)
	Yellow = color.New(color.FgYellow)
)

// Summary writes the plain multi-line form of s followed by a newline.
func Summary(w io.Writer, s *schedule.Schedule) error {
	_, err := fmt.Fprintln(w, s.String())
	return err
}

// Table writes one row per processor and a coloured line with makespan,
// lower bound and utilization. The makespan is green when it meets the
// lower bound.
func Table(w io.Writer, s *schedule.Schedule) error {
	table := tablewriter.NewWriter(w)
	table.Header("Processor", "Tasks", "Load", "Idle")

	makespan := s.Makespan()
	for p, load := range s.Loads() {
		if err := table.Append(
			"@"+strconv.Itoa(p),
			joinIDs(s.TasksOn(p)),
			strconv.Itoa(load),
			strconv.Itoa(makespan-load),
		); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}

	bound := schedule.LowerBound(s.Durations(), s.Processors())
	spanColor := Yellow
	if makespan == bound {
		spanColor = Green
	}

	_, _ = Bold.Fprint(w, "Makespan: ")
	_, _ = spanColor.Fprint(w, makespan)
	_, err := fmt.Fprintf(w, "  Lower bound: %d  Utilization: %.1f%%\n", bound, 100*s.Utilization())
	return err
}

// Outcomes writes a comparison table for a batch, then lists the instances
// that failed.
func Outcomes(w io.Writer, outcomes []batch.Outcome) error {
	table := tablewriter.NewWriter(w)
	table.Header("#", "Name", "Tasks", "Procs", "Heuristic", "Best", "Bound", "Ratio", "Proven", "Nodes", "Time")

	var failed []batch.Outcome
	for _, o := range outcomes {
		if o.Err != nil || o.Best == nil {
			failed = append(failed, o)
			continue
		}

		heuristic, ratio := "-", "-"
		if o.Heuristic != nil {
			heuristic = strconv.Itoa(o.Heuristic.Makespan())
			ratio = fmt.Sprintf("%.3f", o.Ratio())
		}
		proven := "no"
		if o.Proven {
			proven = "yes"
		}

		if err := table.Append(
			strconv.Itoa(o.Index),
			o.Name,
			strconv.Itoa(o.Best.Len()),
			strconv.Itoa(o.Best.Processors()),
			heuristic,
			strconv.Itoa(o.Best.Makespan()),
			strconv.Itoa(schedule.LowerBound(o.Best.Durations(), o.Best.Processors())),
			ratio,
			proven,
			FormatCount(o.Nodes),
			FormatElapsed(o.Elapsed),
		); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}

	if len(failed) > 0 {
		fmt.Fprintln(w)
		_, _ = Red.Fprintln(w, "Failed instances:")
		for _, o := range failed {
			_, _ = Red.Fprintf(w, "  • #%d %s: %v\n", o.Index, o.Name, o.Err)
		}
	}

	solved := len(outcomes) - len(failed)
	c := Green
	if solved < len(outcomes) {
		c = Yellow
	}
	_, err := c.Fprintf(w, "\nSolved %d/%d instances\n", solved, len(outcomes))
	return err
}

// Runs writes archived runs, newest first as given, followed by a paging line.
func Runs(w io.Writer, runs []*store.Run, total, offset int) error {
	table := tablewriter.NewWriter(w)
	table.Header("ID", "Name", "Mode", "Tasks", "Procs", "Makespan", "Bound", "Proven", "Created")

	for _, r := range runs {
		proven := "no"
		if r.Proven {
			proven = "yes"
		}
		if err := table.Append(
			r.ID,
			r.Name,
			r.Mode,
			strconv.Itoa(len(r.Durations)),
			strconv.Itoa(r.Processors),
			strconv.Itoa(r.Makespan),
			strconv.Itoa(r.LowerBound),
			proven,
			r.CreatedAt.Local().Format(time.DateTime),
		); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}

	if len(runs) == 0 {
		_, err := fmt.Fprintf(w, "No runs (%d archived)\n", total)
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d-%d of %d runs\n", offset+1, offset+len(runs), total)
	return err
}

// NewProgressBar returns a bar counting up to total on w.
func NewProgressBar(w io.Writer, total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("inst"),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
	)
}

// View is the JSON form of a schedule.
type View struct {
	Tasks       int                      `json:"tasks"`
	Durations   []int                    `json:"durations"`
	Processors  int                      `json:"processors"`
	Assignments []schedule.ScheduledTask `json:"assignments"`
	Loads       []int                    `json:"loads"`
	Makespan    int                      `json:"makespan"`
	LowerBound  int                      `json:"lower_bound"`
	Utilization float64                  `json:"utilization"`
}

// NewView captures the queryable state of s.
func NewView(s *schedule.Schedule) View {
	durations := s.Durations()
	return View{
		Tasks:       s.Len(),
		Durations:   durations,
		Processors:  s.Processors(),
		Assignments: s.Assignments(),
		Loads:       s.Loads(),
		Makespan:    s.Makespan(),
		LowerBound:  schedule.LowerBound(durations, s.Processors()),
		Utilization: s.Utilization(),
	}
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// FormatCount formats n with comma separators.
func FormatCount(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}

// FormatElapsed formats d in the most readable unit.
func FormatElapsed(d time.Duration) string {
	switch {
	case d <= 0:
		return "0"
	case d < time.Microsecond:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	case d < time.Millisecond:
		return fmt.Sprintf("%.1fµs", float64(d.Nanoseconds())/1e3)
	case d < time.Second:
		return fmt.Sprintf("%.2fms", float64(d.Nanoseconds())/1e6)
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}

func joinIDs(ids []int) string {
	if len(ids) == 0 {
		return "-"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ", ")
}
