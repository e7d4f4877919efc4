package model

import "fmt"

// ValidationError describes a structurally inconsistent Problem. It is fatal:
// the solver refuses malformed input instead of repairing it.
type ValidationError struct {
	Entity string
	ID     string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid problem: %s %q: %s", e.Entity, e.ID, e.Reason)
}

// Validate checks the Problem before a solve starts.
func (p *Problem) Validate() error {
	if len(p.Jobs) == 0 {
		return &ValidationError{Entity: "problem", Reason: "no jobs"}
	}
	if len(p.Vehicles) == 0 {
		return &ValidationError{Entity: "problem", Reason: "no vehicles"}
	}
	seen := make(map[string]bool, len(p.Jobs))
	for _, j := range p.Jobs {
		if j.ID == "" {
			return &ValidationError{Entity: "job", Reason: "empty id"}
		}
		if seen[j.ID] {
			return &ValidationError{Entity: "job", ID: j.ID, Reason: "duplicate id"}
		}
		seen[j.ID] = true
		if j.Demand.Weight < 0 || j.Demand.Volume < 0 {
			return &ValidationError{Entity: "job", ID: j.ID, Reason: "negative demand"}
		}
		if j.ServiceSec < 0 {
			return &ValidationError{Entity: "job", ID: j.ID, Reason: "negative service time"}
		}
		if tw := j.TimeWindow; tw != nil && tw.End < tw.Start {
			return &ValidationError{Entity: "job", ID: j.ID, Reason: "time window end before start"}
		}
	}
	vseen := make(map[string]bool, len(p.Vehicles))
	skills := map[string]bool{}
	for _, v := range p.Vehicles {
		if v.ID == "" {
			return &ValidationError{Entity: "vehicle", Reason: "empty id"}
		}
		if vseen[v.ID] {
			return &ValidationError{Entity: "vehicle", ID: v.ID, Reason: "duplicate id"}
		}
		vseen[v.ID] = true
		if v.CapWeight < 0 || v.CapVolume < 0 {
			return &ValidationError{Entity: "vehicle", ID: v.ID, Reason: "negative capacity"}
		}
		for _, s := range v.Skills {
			skills[s] = true
		}
	}
	// A skill no vehicle possesses makes the job permanently unservable and
	// points at an authoring mistake rather than an infeasible instance.
	for _, j := range p.Jobs {
		for _, s := range j.Skills {
			if !skills[s] {
				return &ValidationError{Entity: "job", ID: j.ID, Reason: fmt.Sprintf("requires skill %q not present on any vehicle", s)}
			}
		}
	}
	return nil
}
