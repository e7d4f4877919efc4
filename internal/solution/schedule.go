package solution

import "vrpsolve/internal/model"

// RouteStats are the cost components of one scheduled route.
type RouteStats struct {
	DriveSec  float64
	DistanceM float64
	WaitSec   float64
	LateSec   float64
	EndSec    float64
	Load      model.Demand
}

// ScheduleRoute propagates the timetable along the route: drive, wait for
// window opening, serve. Lateness past a window end is accumulated but does
// not stop the propagation; feasibility is judged by FeasibleRoute.
func (s *Solution) ScheduleRoute(r Route) RouteStats {
	st, _ := s.schedule(r)
	return st
}

// FeasibleRoute reports whether the route violates any hard constraint:
// capacity, required skills, or a time window that cannot be met.
func (s *Solution) FeasibleRoute(r Route) bool {
	_, ok := s.schedule(r)
	return ok
}

func (s *Solution) schedule(r Route) (RouteStats, bool) {
	p := s.Problem
	v := p.Vehicles[r.VehicleIdx]
	var st RouteStats
	feasible := true

	for _, j := range r.Order {
		st.Load = st.Load.Add(p.Jobs[j].Demand)
		if !v.HasSkills(p.Jobs[j].Skills) {
			feasible = false
		}
	}
	if v.CapWeight > 0 && st.Load.Weight > v.CapWeight {
		feasible = false
	}
	if v.CapVolume > 0 && st.Load.Volume > v.CapVolume {
		feasible = false
	}

	cur, t := s.startOf(r, v)
	for _, j := range r.Order {
		job := p.Jobs[j]
		d := s.Costs.Distance(v.Profile, cur, job.Location)
		drive := s.Costs.Duration(v.Profile, cur, job.Location)
		t += drive
		st.DriveSec += drive
		st.DistanceM += d
		if tw := job.TimeWindow; tw != nil {
			if t < tw.Start {
				st.WaitSec += tw.Start - t
				t = tw.Start
			}
			if t > tw.End {
				st.LateSec += t - tw.End
				feasible = false
			}
		}
		t += float64(job.ServiceSec)
		cur = job.Location
	}
	if v.End != nil && len(r.Order) > 0 {
		d := s.Costs.Distance(v.Profile, cur, *v.End)
		drive := s.Costs.Duration(v.Profile, cur, *v.End)
		t += drive
		st.DriveSec += drive
		st.DistanceM += d
	}
	if v.Shift != nil && t > v.Shift.End {
		feasible = false
	}
	st.EndSec = t
	return st, feasible
}

func (s *Solution) startOf(r Route, v model.Vehicle) (model.Location, float64) {
	t := 0.0
	if v.Shift != nil {
		t = v.Shift.Start
	}
	if v.Start != nil {
		return *v.Start, t
	}
	if len(r.Order) > 0 {
		return s.Problem.Jobs[r.Order[0]].Location, t
	}
	return model.Location{}, t
}

// CanServe checks capacity and skills for adding job j to route ri, without
// touching the timetable.
func (s *Solution) CanServe(ri, j int) (UnassignedReason, bool) {
	p := s.Problem
	r := s.Routes[ri]
	v := p.Vehicles[r.VehicleIdx]
	if !v.HasSkills(p.Jobs[j].Skills) {
		return ReasonSkills, false
	}
	load := p.Jobs[j].Demand
	for _, k := range r.Order {
		load = load.Add(p.Jobs[k].Demand)
	}
	if v.CapWeight > 0 && load.Weight > v.CapWeight {
		return ReasonCapacity, false
	}
	if v.CapVolume > 0 && load.Volume > v.CapVolume {
		return ReasonCapacity, false
	}
	return "", true
}

// CanInsertAt checks full feasibility of inserting job j at pos in route ri,
// including timetable propagation across the whole route.
func (s *Solution) CanInsertAt(ri, pos, j int) bool {
	if _, ok := s.CanServe(ri, j); !ok {
		return false
	}
	r := s.Routes[ri]
	if pos < 0 || pos > len(r.Order) {
		return false
	}
	tmp := Route{VehicleIdx: r.VehicleIdx, Order: make([]int, 0, len(r.Order)+1)}
	tmp.Order = append(tmp.Order, r.Order[:pos]...)
	tmp.Order = append(tmp.Order, j)
	tmp.Order = append(tmp.Order, r.Order[pos:]...)
	return s.FeasibleRoute(tmp)
}

// InsertionDelta approximates the marginal cost of inserting job j at pos in
// route ri: added legs minus the removed leg plus service time.
func (s *Solution) InsertionDelta(ri, pos, j int) float64 {
	p := s.Problem
	r := s.Routes[ri]
	v := p.Vehicles[r.VehicleIdx]
	var prev model.Location
	if pos == 0 {
		prev, _ = s.startOf(r, v)
	} else {
		prev = p.Jobs[r.Order[pos-1]].Location
	}
	next := prev
	if pos < len(r.Order) {
		next = p.Jobs[r.Order[pos]].Location
	} else if v.End != nil {
		next = *v.End
	}
	job := p.Jobs[j]
	add := s.Costs.Distance(v.Profile, prev, job.Location) + s.Costs.Distance(v.Profile, job.Location, next)
	rem := s.Costs.Distance(v.Profile, prev, next)
	return add - rem + float64(job.ServiceSec)
}
