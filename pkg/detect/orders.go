package detect

import (
	"sort"

	"cheatdetect/pkg/models"
)

// OrderFeatures are the timing and movement features of one driver on one order.
type OrderFeatures struct {
	models.OrderDriver

	PickCount   int // arrival (22) and driving-leg (20) picks
	AcceptCount int

	AvgTimePick        *float64
	AvgTimePickDriving *float64
	AvgTimeAccept      *float64

	Pick2s        int
	PickDriving2s int
	Accept2s      int
	Pick1s        int
	PickDriving1s int
	Accept1s      int

	SpeedyDriving int
	AcceptFromFar float64 // largest accept-to-en-route distance
	FarAccepts    int     // accept-to-en-route legs at or beyond AcceptDistanceLimit
}

// DriverOrderSummary rolls OrderFeatures up to the driver.
type DriverOrderSummary struct {
	DriverID string

	PickCount          int
	AcceptCount        int
	Pick2s             int
	PickDriving2s      int
	Accept2s           int
	Pick1s             int
	PickDriving1s      int
	Accept1s           int
	SpeedyDrivingCount int
	FarAcceptCount     int

	Pick2sPct    float64
	Pick1sPct    float64
	Accept2sPct  float64
	Accept1sPct  float64
	FarAcceptPct float64

	Pick2sPctPR    *float64
	Pick1sPctPR    *float64
	Accept2sPctPR  *float64
	Accept1sPctPR  *float64
	FarAcceptPctPR *float64
}

// RepeatPickSummary is the share of a driver's picked orders that were picked
// RepeatPickTimes times or more.
type RepeatPickSummary struct {
	DriverID        string
	OrdersPick      int
	RepeatPick      int
	RepeatPickPct   float64
	RepeatPickPctPR *float64
}

// StatusCounts are distinct orders per terminal driver action.
type StatusCounts struct {
	DriverID string
	Complete int
	Release  int
	Cancel   int
}

type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v *float64) {
	if v == nil {
		return
	}
	m.sum += *v
	m.n++
}

func (m mean) value() *float64 {
	if m.n == 0 {
		return nil
	}
	v := m.sum / float64(m.n)
	return &v
}

func driverEvents(events []*models.OrderEvent) []*models.OrderEvent {
	out := make([]*models.OrderEvent, 0, len(events))
	for _, e := range events {
		if e.IsDriverAction() && e.Driver() != "" {
			out = append(out, e)
		}
	}
	return out
}

func orderDriver(e *models.OrderEvent) models.OrderDriver {
	return models.OrderDriver{OrderID: e.OrderID, DriverID: e.Driver()}
}

func within(v *float64, limit float64) bool {
	return v != nil && *v <= limit
}

// PickAccept builds one OrderFeatures per (order, driver) pair that has any
// driver event, with pick/accept counts, mean response times and the fast
// action counters.
func PickAccept(events []*models.OrderEvent, th Thresholds) map[models.OrderDriver]*OrderFeatures {
	out := make(map[models.OrderDriver]*OrderFeatures)
	means := make(map[models.OrderDriver]*[3]mean)

	for _, e := range driverEvents(events) {
		key := orderDriver(e)
		f, ok := out[key]
		if !ok {
			f = &OrderFeatures{OrderDriver: key}
			out[key] = f
			means[key] = &[3]mean{}
		}
		m := means[key]

		fast := within(e.TimeDiffMs, th.FastActionMs)
		veryFast := within(e.TimeDiffMs, th.VeryFastActionMs)

		switch e.EventType {
		case models.EventPickArrival:
			f.PickCount++
			m[0].add(e.TimeDiffMs)
			if fast {
				f.Pick2s++
			}
			if veryFast {
				f.Pick1s++
			}
		case models.EventPickDriving:
			f.PickCount++
			m[1].add(e.TimeDiffMs)
			if fast {
				f.PickDriving2s++
			}
			if veryFast {
				f.PickDriving1s++
			}
		case models.EventAccept:
			f.AcceptCount++
			m[2].add(e.TimeDiffMs)
			if fast {
				f.Accept2s++
			}
			if veryFast {
				f.Accept1s++
			}
		}
	}

	for key, f := range out {
		m := means[key]
		f.AvgTimePick = m[0].value()
		f.AvgTimePickDriving = m[1].value()
		f.AvgTimeAccept = m[2].value()
	}
	return out
}

// SpeedyDriving counts accept and en-route events whose trip leg was both long
// and fast, per (order, driver).
func SpeedyDriving(events []*models.OrderEvent, th Thresholds) map[models.OrderDriver]int {
	out := make(map[models.OrderDriver]int)
	for _, e := range driverEvents(events) {
		if e.EventType != models.EventEnRoute && e.EventType != models.EventAccept {
			continue
		}
		if e.TripSpeed == nil || e.TripDistance == nil {
			continue
		}
		if *e.TripSpeed >= th.TravelSpeedLimit && *e.TripDistance >= th.TravelDistanceLimit {
			out[orderDriver(e)]++
		}
	}
	return out
}

// AcceptFromFar returns, per (order, driver), the trip distances of en-route
// events whose immediately preceding accept/en-route event was the accept, in
// time order. Only pairs with both an accept and an en-route event are
// considered, and only positive distances are kept. A driver who is released
// and accepts the same order again contributes one distance per leg.
func AcceptFromFar(events []*models.OrderEvent) map[models.OrderDriver][]float64 {
	legs := make(map[models.OrderDriver][]*models.OrderEvent)
	for _, e := range driverEvents(events) {
		if e.EventType == models.EventAccept || e.EventType == models.EventEnRoute {
			key := orderDriver(e)
			legs[key] = append(legs[key], e)
		}
	}

	out := make(map[models.OrderDriver][]float64)
	for key, evs := range legs {
		if !hasEvent(evs, models.EventAccept) || !hasEvent(evs, models.EventEnRoute) {
			continue
		}
		sort.SliceStable(evs, func(i, j int) bool {
			if !evs[i].CreatedAt.Equal(evs[j].CreatedAt) {
				return evs[i].CreatedAt.Before(evs[j].CreatedAt)
			}
			return evs[i].EventType < evs[j].EventType
		})
		for i := 1; i < len(evs); i++ {
			cur := evs[i]
			if evs[i-1].EventType != models.EventAccept || cur.EventType != models.EventEnRoute {
				continue
			}
			if cur.TripDistance == nil || *cur.TripDistance <= 0 {
				continue
			}
			out[key] = append(out[key], *cur.TripDistance)
		}
	}
	return out
}

func hasEvent(evs []*models.OrderEvent, code int) bool {
	for _, e := range evs {
		if e.EventType == code {
			return true
		}
	}
	return false
}

// ExtractOrderFeatures runs every per (order, driver) extractor and merges the
// results onto the PickAccept rows.
func ExtractOrderFeatures(events []*models.OrderEvent, th Thresholds) map[models.OrderDriver]*OrderFeatures {
	features := PickAccept(events, th)
	for key, n := range SpeedyDriving(events, th) {
		if f, ok := features[key]; ok {
			f.SpeedyDriving = n
		}
	}
	for key, distances := range AcceptFromFar(events) {
		f, ok := features[key]
		if !ok {
			continue
		}
		for _, d := range distances {
			if d > f.AcceptFromFar {
				f.AcceptFromFar = d
			}
			if d >= th.AcceptDistanceLimit {
				f.FarAccepts++
			}
		}
	}
	return features
}

// SummarizeDrivers sums order features per driver and derives the fast-action
// and far-accept percentages. Each percentage is ranked only among drivers
// with a nonzero numerator.
func SummarizeDrivers(features map[models.OrderDriver]*OrderFeatures) []*DriverOrderSummary {
	byDriver := make(map[string]*DriverOrderSummary)
	for _, f := range features {
		s, ok := byDriver[f.DriverID]
		if !ok {
			s = &DriverOrderSummary{DriverID: f.DriverID}
			byDriver[f.DriverID] = s
		}
		s.PickCount += f.PickCount
		s.AcceptCount += f.AcceptCount
		s.Pick2s += f.Pick2s
		s.PickDriving2s += f.PickDriving2s
		s.Accept2s += f.Accept2s
		s.Pick1s += f.Pick1s
		s.PickDriving1s += f.PickDriving1s
		s.Accept1s += f.Accept1s
		s.SpeedyDrivingCount += f.SpeedyDriving
		s.FarAcceptCount += f.FarAccepts
	}

	out := make([]*DriverOrderSummary, 0, len(byDriver))
	for _, s := range byDriver {
		s.Pick2sPct = ratio(s.Pick2s, s.PickCount)
		s.Pick1sPct = ratio(s.Pick1s, s.PickCount)
		s.Accept2sPct = ratio(s.Accept2s, s.AcceptCount)
		s.Accept1sPct = ratio(s.Accept1s, s.AcceptCount)
		s.FarAcceptPct = ratio(s.FarAcceptCount, s.AcceptCount)
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DriverID < out[j].DriverID })

	n := len(out)
	pick2s := RankWhere(n, func(i int) float64 { return out[i].Pick2sPct }, func(i int) bool { return out[i].Pick2s > 0 })
	pick1s := RankWhere(n, func(i int) float64 { return out[i].Pick1sPct }, func(i int) bool { return out[i].Pick1s > 0 })
	accept2s := RankWhere(n, func(i int) float64 { return out[i].Accept2sPct }, func(i int) bool { return out[i].Accept2s > 0 })
	accept1s := RankWhere(n, func(i int) float64 { return out[i].Accept1sPct }, func(i int) bool { return out[i].Accept1s > 0 })
	far := RankWhere(n, func(i int) float64 { return out[i].FarAcceptPct }, func(i int) bool { return out[i].FarAcceptCount > 0 })
	for i, s := range out {
		s.Pick2sPctPR = pick2s[i]
		s.Pick1sPctPR = pick1s[i]
		s.Accept2sPctPR = accept2s[i]
		s.Accept1sPctPR = accept1s[i]
		s.FarAcceptPctPR = far[i]
	}
	return out
}

// RepeatPick computes, for drivers with at least one picked order, how many of
// those orders were picked RepeatPickTimes times or more.
func RepeatPick(features map[models.OrderDriver]*OrderFeatures, th Thresholds) []*RepeatPickSummary {
	byDriver := make(map[string]*RepeatPickSummary)
	for _, f := range features {
		if f.PickCount == 0 {
			continue
		}
		s, ok := byDriver[f.DriverID]
		if !ok {
			s = &RepeatPickSummary{DriverID: f.DriverID}
			byDriver[f.DriverID] = s
		}
		s.OrdersPick++
		if f.PickCount >= th.RepeatPickTimes {
			s.RepeatPick++
		}
	}

	out := make([]*RepeatPickSummary, 0, len(byDriver))
	for _, s := range byDriver {
		s.RepeatPickPct = ratio(s.RepeatPick, s.OrdersPick)
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DriverID < out[j].DriverID })

	pr := RankWhere(len(out),
		func(i int) float64 { return out[i].RepeatPickPct },
		func(i int) bool { return out[i].RepeatPick > 0 },
	)
	for i, s := range out {
		s.RepeatPickPctPR = pr[i]
	}
	return out
}

// OrderStatusCounts counts distinct orders each driver completed, released or
// cancelled.
func OrderStatusCounts(events []*models.OrderEvent) []*StatusCounts {
	const (
		complete = iota
		release
		cancel
	)
	byDriver := make(map[string]*[3]map[string]struct{})
	for _, e := range driverEvents(events) {
		var kind int
		switch e.EventType {
		case models.EventComplete:
			kind = complete
		case models.EventRelease, models.EventReleaseAlt:
			kind = release
		case models.EventCancel:
			kind = cancel
		default:
			continue
		}
		sets, ok := byDriver[e.Driver()]
		if !ok {
			sets = &[3]map[string]struct{}{{}, {}, {}}
			byDriver[e.Driver()] = sets
		}
		sets[kind][e.OrderID] = struct{}{}
	}

	out := make([]*StatusCounts, 0, len(byDriver))
	for driver, sets := range byDriver {
		out = append(out, &StatusCounts{
			DriverID: driver,
			Complete: len(sets[complete]),
			Release:  len(sets[release]),
			Cancel:   len(sets[cancel]),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DriverID < out[j].DriverID })
	return out
}
