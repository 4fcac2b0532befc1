package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/utkarsh5026/makespan/batch"
	"github.com/utkarsh5026/makespan/instance"
	"github.com/utkarsh5026/makespan/internal/store"
	"github.com/utkarsh5026/makespan/schedule"
)

type createScheduleRequest struct {
	Name       string `json:"name"`
	Durations  []int  `json:"durations"`
	Processors int    `json:"processors"`
	Mode       string `json:"mode"`  // heuristic, optimal, compare (default)
	Order      string `json:"order"` // lpt (default), id
	TimeoutMS  int    `json:"timeout_ms"`
}

// runResponse is an archived run plus its rendered summary.
type runResponse struct {
	*store.Run
	Summary string `json:"summary,omitempty"`
}

func parseOrder(s string) (schedule.Order, bool) {
	switch s {
	case "", "lpt":
		return schedule.OrderLongestFirst, true
	case "id":
		return schedule.OrderByID, true
	default:
		return 0, false
	}
}

// checkSize enforces the per-request limits before anything is allocated
// for the instance.
func (s *Server) checkSize(tasks, processors int) error {
	if tasks > s.maxTasks {
		return fmt.Errorf("%d tasks exceed the limit of %d", tasks, s.maxTasks)
	}
	if processors > s.maxProcessors {
		return fmt.Errorf("%d processors exceed the limit of %d", processors, s.maxProcessors)
	}
	return nil
}

func (s *Server) handleCreateSchedule(w http.ResponseWriter, r *http.Request) {
	rp := s.replyTo(w, r)

	var req createScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rp.invalid("invalid JSON body: %v", err)
		return
	}

	mode, err := batch.ParseMode(req.Mode)
	if err != nil {
		rp.invalid("%v", err)
		return
	}
	order, ok := parseOrder(req.Order)
	if !ok {
		rp.invalid("unknown order %q", req.Order)
		return
	}
	if err := s.checkSize(len(req.Durations), req.Processors); err != nil {
		rp.invalid("%v", err)
		return
	}

	in := instance.Instance{Name: req.Name, Durations: req.Durations, Processors: req.Processors}
	if err := in.Validate(); err != nil {
		rp.invalid("%v", err)
		return
	}

	timeout := s.searchTimeout
	if req.TimeoutMS > 0 {
		timeout = min(timeout, time.Duration(req.TimeoutMS)*time.Millisecond)
	}

	solver := batch.NewSolver(
		batch.WithWorkerCount(1),
		batch.WithMode(mode),
		batch.WithOrder(order),
		batch.WithTimeout(timeout),
		batch.WithLogger(s.logger),
	)
	outcomes, err := solver.Solve(r.Context(), []instance.Instance{in})
	if err != nil {
		rp.fail(http.StatusServiceUnavailable, CodeUnavailable, err.Error())
		return
	}
	o := outcomes[0]
	if o.Err != nil {
		if errors.Is(o.Err, schedule.ErrInvalidArgument) {
			rp.invalid("%v", o.Err)
		} else {
			rp.fail(http.StatusInternalServerError, CodeInternal, o.Err.Error())
		}
		return
	}

	run := store.NewRun(req.Name, mode.String(), o.Best)
	run.Proven = o.Proven
	run.Nodes = o.Nodes
	run.Elapsed = o.Elapsed
	if o.Heuristic != nil {
		run.HeuristicMakespan = o.Heuristic.Makespan()
	}

	if s.store != nil {
		if err := s.store.SaveRun(r.Context(), run); err != nil {
			s.logger.Error("save run", "id", run.ID, "error", err)
			rp.fail(http.StatusInternalServerError, CodeInternal, "failed to archive run")
			return
		}
	}

	rp.created(runResponse{Run: run, Summary: o.Best.String()})
}

type validateScheduleRequest struct {
	Durations   []int                    `json:"durations"`
	Processors  int                      `json:"processors"`
	Assignments []schedule.ScheduledTask `json:"assignments"`
}

type validateScheduleResponse struct {
	Consistent  bool    `json:"consistent"`
	Makespan    int     `json:"makespan,omitempty"`
	Utilization float64 `json:"utilization,omitempty"`
	LowerBound  int     `json:"lower_bound"`
	Loads       []int   `json:"loads,omitempty"`
}

func (s *Server) handleValidateSchedule(w http.ResponseWriter, r *http.Request) {
	rp := s.replyTo(w, r)

	var req validateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rp.invalid("invalid JSON body: %v", err)
		return
	}
	if err := s.checkSize(len(req.Durations), req.Processors); err != nil {
		rp.invalid("%v", err)
		return
	}
	if !schedule.AreValid(req.Durations, req.Processors) {
		rp.invalid("durations must be >= 1 and processors >= 1")
		return
	}

	resp := validateScheduleResponse{
		LowerBound: schedule.LowerBound(req.Durations, req.Processors),
	}
	if sched, err := schedule.New(req.Durations, req.Processors, req.Assignments); err == nil {
		resp.Consistent = true
		resp.Makespan = sched.Makespan()
		resp.Utilization = sched.Utilization()
		resp.Loads = sched.Loads()
	}

	rp.ok(resp)
}

// listOptions reads limit and offset from the query. Absent values fall back
// to the store defaults; malformed ones are an error.
func listOptions(q url.Values) (store.ListOptions, error) {
	var opts store.ListOptions
	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"limit", &opts.Limit},
		{"offset", &opts.Offset},
	} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, fmt.Errorf("%s must be a non-negative integer, got %q", p.name, v)
		}
		*p.dst = n
	}
	opts.Clamp()
	return opts, nil
}

func (s *Server) handleListSchedules(w http.ResponseWriter, r *http.Request) {
	rp := s.replyTo(w, r)
	if s.store == nil {
		rp.fail(http.StatusServiceUnavailable, CodeUnavailable, "run archive is disabled")
		return
	}

	opts, err := listOptions(r.URL.Query())
	if err != nil {
		rp.invalid("%v", err)
		return
	}

	runs, total, err := s.store.ListRuns(r.Context(), opts)
	if err != nil {
		s.logger.Error("list runs", "error", err)
		rp.fail(http.StatusInternalServerError, CodeInternal, err.Error())
		return
	}
	if runs == nil {
		runs = []*store.Run{}
	}

	rp.page(runs, Page{
		Total:   total,
		Limit:   opts.Limit,
		Offset:  opts.Offset,
		HasMore: opts.Offset+len(runs) < total,
	})
}

// archiveError answers a failed store lookup: 404 for unknown IDs, 500
// otherwise.
func (s *Server) archiveError(rp reply, op, id string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		rp.fail(http.StatusNotFound, CodeNotFound, "run '"+id+"' not found")
		return
	}
	s.logger.Error(op+" run", "id", id, "error", err)
	rp.fail(http.StatusInternalServerError, CodeInternal, err.Error())
}

func (s *Server) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	rp := s.replyTo(w, r)
	if s.store == nil {
		rp.fail(http.StatusServiceUnavailable, CodeUnavailable, "run archive is disabled")
		return
	}

	id := chi.URLParam(r, "id")
	run, err := s.store.GetRun(r.Context(), id)
	if err != nil {
		s.archiveError(rp, "get", id, err)
		return
	}

	resp := runResponse{Run: run}
	if sched, err := run.Schedule(); err == nil {
		resp.Summary = sched.String()
	}
	rp.ok(resp)
}

func (s *Server) handleDeleteSchedule(w http.ResponseWriter, r *http.Request) {
	rp := s.replyTo(w, r)
	if s.store == nil {
		rp.fail(http.StatusServiceUnavailable, CodeUnavailable, "run archive is disabled")
		return
	}

	id := chi.URLParam(r, "id")
	if err := s.store.DeleteRun(r.Context(), id); err != nil {
		s.archiveError(rp, "delete", id, err)
		return
	}
	rp.ok(map[string]string{"deleted": id})
}
