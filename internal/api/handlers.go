package api

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"vrpsolve/internal/evolution"
	"vrpsolve/internal/metrics"
	"vrpsolve/internal/model"
	"vrpsolve/internal/objective"
)

// SolvesHandler handles POST/GET /v1/solves.
func (s *Server) SolvesHandler(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r) {
		return
	}
	switch r.Method {
	case http.MethodPost:
		if !s.limiter.Allow() {
			writeProblem(w, http.StatusTooManyRequests, "Rate limited", "solve submission rate exceeded", r.URL.Path)
			return
		}
		var req model.SolveRequest
		if err := decodeJSON(r, &req); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		if err := req.Problem.Validate(); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid problem", err.Error(), r.URL.Path)
			return
		}
		cfg, err := s.solverConfig(req)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid solve request", err.Error(), r.URL.Path)
			return
		}
		run, err := s.Store.CreateRun(r.Context())
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Create run failed", err.Error(), r.URL.Path)
			return
		}
		go s.runSolve(run.ID, req.Problem, cfg)
		writeJSON(w, http.StatusAccepted, run)
	case http.MethodGet:
		cursor := r.URL.Query().Get("cursor")
		limit := 20
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				limit = n
			}
		}
		items, next, err := s.Store.ListRuns(r.Context(), cursor, limit)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "List runs failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// SolveByIDHandler handles /v1/solves/{id} plus the /cancel, /stream and
// /ws subresources.
func (s *Server) SolveByIDHandler(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r) {
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/v1/solves/")
	id, sub := rest, ""
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		id, sub = rest[:i], rest[i+1:]
	}
	if id == "" {
		writeProblem(w, http.StatusNotFound, "Not found", "missing run id", r.URL.Path)
		return
	}
	switch sub {
	case "":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		run, err := s.Store.GetRun(r.Context(), id)
		if err != nil {
			writeStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, run)
	case "cancel":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if _, err := s.Store.GetRun(r.Context(), id); err != nil {
			writeStoreError(w, r, err)
			return
		}
		if !s.cancelRun(id) {
			writeProblem(w, http.StatusConflict, "Not running", "run already finished", r.URL.Path)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]any{"id": id, "status": "cancelling"})
	case "stream":
		s.streamSSE(w, r, id)
	case "ws":
		s.streamWS(w, r, id)
	default:
		writeProblem(w, http.StatusNotFound, "Not found", "unknown subresource", r.URL.Path)
	}
}

// solverConfig merges the request overrides onto the configured defaults.
func (s *Server) solverConfig(req model.SolveRequest) (evolution.Config, error) {
	sc := s.Cfg.Solver
	cfg := evolution.DefaultConfig()
	if sc.MaxGenerations > 0 {
		cfg.MaxGenerations = sc.MaxGenerations
	}
	if sc.MaxTimeSec > 0 {
		cfg.MaxTime = time.Duration(sc.MaxTimeSec) * time.Second
	}
	if sc.StagnationLimit > 0 {
		cfg.StagnationLimit = sc.StagnationLimit
	}
	if sc.Parallelism > 0 {
		cfg.Parallelism = sc.Parallelism
	}
	cfg.Population.EliteSize = sc.EliteSize
	cfg.Population.NodeSize = sc.NodeSize
	cfg.Population.MaxNodes = sc.MaxNodes
	cfg.Population.SpreadFactor = sc.SpreadFactor
	cfg.Population.LearningRate = sc.LearningRate
	cfg.Population.ExplorationRatio = sc.Exploration
	cfg.Selector.Decay = sc.RewardDecay
	cfg.Selector.Floor = sc.SelectionFloor

	if req.MaxGenerations > 0 {
		cfg.MaxGenerations = req.MaxGenerations
	}
	if req.TimeBudgetMs > 0 {
		cfg.MaxTime = time.Duration(req.TimeBudgetMs) * time.Millisecond
	}
	if req.StagnationLimit > 0 {
		cfg.StagnationLimit = req.StagnationLimit
	}
	if req.Parallelism > 0 {
		cfg.Parallelism = req.Parallelism
	}
	cfg.Seed = req.Seed
	obj, err := objective.FromNames(req.Objectives)
	if err != nil {
		return cfg, err
	}
	cfg.Objective = obj
	return cfg, nil
}

// runSolve executes one solve in the background, streaming generation
// events and persisting the terminal state.
func (s *Server) runSolve(id string, problem model.Problem, cfg evolution.Config) {
	ctx, cancel := context.WithCancel(context.Background())
	s.trackRun(id, cancel)
	defer func() {
		s.untrackRun(id)
		cancel()
	}()

	metrics.SolvesActive.Inc()
	defer metrics.SolvesActive.Dec()

	cfg.OnGeneration = func(evt evolution.TelemetryEvent) {
		metrics.Generations.Inc()
		if evt.Improved {
			metrics.Improvements.Inc()
			s.Broker.Publish(id, Event{Type: "solve.improved", Data: map[string]any{
				"generation": evt.Generation,
				"elapsedMs":  evt.Elapsed.Milliseconds(),
				"fitness":    []float64(evt.BestFitness),
				"phase":      evt.Phase.String(),
			}})
		}
	}

	solver, err := evolution.New(cfg)
	if err != nil {
		s.failRun(id, err.Error())
		return
	}
	res, err := solver.Solve(ctx, &problem, nil, nil)
	if err != nil {
		s.failRun(id, err.Error())
		return
	}

	for _, stat := range res.Summary.Operators {
		metrics.OperatorOutcomes.WithLabelValues(stat.Name, "applied").Add(float64(stat.Applications))
	}
	metrics.SolveDuration.WithLabelValues(res.Summary.State.String()).Observe(res.Summary.Elapsed.Seconds())

	run := model.SolveRun{
		ID:          id,
		Status:      res.Summary.State.String(),
		Generations: res.Summary.Generations,
		BestFitness: res.Summary.BestFitness,
		ElapsedMs:   res.Summary.Elapsed.Milliseconds(),
		Solution:    res.Best.Solution.Output(),
		Trajectory:  trajectoryOut(res.Summary.Trajectory),
	}
	if err := s.Store.CompleteRun(context.Background(), id, run); err != nil {
		log.Printf("complete run %s: %v", id, err)
	}
	log.Printf("solve %s %s: %d generations, best %v, %dms", id, run.Status, run.Generations, run.BestFitness, run.ElapsedMs)
	s.Broker.Publish(id, Event{Type: "solve.finished", Data: map[string]any{
		"status":      run.Status,
		"generations": run.Generations,
		"fitness":     run.BestFitness,
		"elapsedMs":   run.ElapsedMs,
	}})
	s.Pub.Emit(context.Background(), "run.completed", run)
}

func (s *Server) failRun(id, reason string) {
	log.Printf("solve %s failed: %s", id, reason)
	if err := s.Store.FailRun(context.Background(), id, reason); err != nil {
		log.Printf("fail run %s: %v", id, err)
	}
	s.Broker.Publish(id, Event{Type: "solve.failed", Data: map[string]any{"reason": reason}})
	s.Pub.Emit(context.Background(), "run.failed", map[string]any{"id": id, "reason": reason})
}

func trajectoryOut(points []evolution.TrajectoryPoint) []model.FitnessPoint {
	out := make([]model.FitnessPoint, 0, len(points))
	for _, p := range points {
		out = append(out, model.FitnessPoint{
			Generation: p.Generation,
			ElapsedMs:  p.Elapsed.Milliseconds(),
			Fitness:    p.Fitness,
		})
	}
	return out
}
