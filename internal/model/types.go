package model

// Core problem types consumed by the solver. All durations are seconds and
// all time windows are relative to the start of the planning horizon.

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type TimeWindow struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type Demand struct {
	Weight float64 `json:"weight,omitempty"`
	Volume float64 `json:"volume,omitempty"`
}

func (d Demand) Add(o Demand) Demand {
	return Demand{Weight: d.Weight + o.Weight, Volume: d.Volume + o.Volume}
}

type Job struct {
	ID         string      `json:"id"`
	Location   Location    `json:"location"`
	Demand     Demand      `json:"demand,omitempty"`
	ServiceSec int         `json:"serviceSec,omitempty"`
	TimeWindow *TimeWindow `json:"timeWindow,omitempty"`
	Skills     []string    `json:"skills,omitempty"`
	Priority   int         `json:"priority,omitempty"`
}

type Vehicle struct {
	ID        string      `json:"id"`
	Profile   string      `json:"profile,omitempty"`
	CapWeight float64     `json:"capWeight,omitempty"`
	CapVolume float64     `json:"capVolume,omitempty"`
	Skills    []string    `json:"skills,omitempty"`
	Start     *Location   `json:"start,omitempty"`
	End       *Location   `json:"end,omitempty"`
	Shift     *TimeWindow `json:"shift,omitempty"`
}

// HasSkills reports whether the vehicle covers every required skill.
func (v Vehicle) HasSkills(required []string) bool {
	if len(required) == 0 {
		return true
	}
	have := make(map[string]bool, len(v.Skills))
	for _, s := range v.Skills {
		have[s] = true
	}
	for _, s := range required {
		if !have[s] {
			return false
		}
	}
	return true
}

// Problem is the immutable solve input. The solver never mutates it.
type Problem struct {
	Jobs     []Job     `json:"jobs"`
	Vehicles []Vehicle `json:"vehicles"`
	SpeedKph float64   `json:"speedKph,omitempty"`
}

// SolveRequest is the API payload submitting a problem with overrides for
// the solver defaults.
type SolveRequest struct {
	Problem         Problem  `json:"problem"`
	MaxGenerations  int      `json:"maxGenerations,omitempty"`
	TimeBudgetMs    int      `json:"timeBudgetMs,omitempty"`
	StagnationLimit int      `json:"stagnationLimit,omitempty"`
	Parallelism     int      `json:"parallelism,omitempty"`
	Seed            int64    `json:"seed,omitempty"`
	Objectives      []string `json:"objectives,omitempty"`
}

// SolveRun is the persisted view of one solve.
type SolveRun struct {
	ID          string         `json:"id"`
	Status      string         `json:"status"` // running, converged, exhausted, cancelled, failed
	Reason      string         `json:"reason,omitempty"`
	Generations int            `json:"generations,omitempty"`
	BestFitness []float64      `json:"bestFitness,omitempty"`
	ElapsedMs   int64          `json:"elapsedMs,omitempty"`
	CreatedAt   string         `json:"createdAt,omitempty"`
	Solution    *SolutionOut   `json:"solution,omitempty"`
	Trajectory  []FitnessPoint `json:"trajectory,omitempty"`
}

// FitnessPoint is one sample of the best-known fitness over the solve.
type FitnessPoint struct {
	Generation int       `json:"generation"`
	ElapsedMs  int64     `json:"elapsedMs"`
	Fitness    []float64 `json:"fitness"`
}

// SolutionOut is the serialized best plan handed to reporting.
type SolutionOut struct {
	Routes     []RouteOut      `json:"routes"`
	Unassigned []UnassignedOut `json:"unassigned,omitempty"`
	Fitness    []float64       `json:"fitness,omitempty"`
}

type RouteOut struct {
	VehicleID string   `json:"vehicleId"`
	JobIDs    []string `json:"jobIds"`
	DistanceM float64  `json:"distanceM,omitempty"`
	DriveSec  float64  `json:"driveSec,omitempty"`
}

type UnassignedOut struct {
	JobID  string `json:"jobId"`
	Reason string `json:"reason"`
}

// Webhook subscriptions for run lifecycle events.
type SubscriptionRequest struct {
	URL    string   `json:"url"`
	Events []string `json:"events"`
	Secret string   `json:"secret"`
}

type Subscription struct {
	ID     string   `json:"id"`
	URL    string   `json:"url"`
	Events []string `json:"events"`
	Secret string   `json:"secret,omitempty"`
}
