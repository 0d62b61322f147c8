package detect

import (
	"sort"

	"cheatdetect/pkg/models"
)

// IsSuspiciousOrder reports whether one driver's behaviour on one order
// warrants review on its own.
func IsSuspiciousOrder(f *OrderFeatures, th Thresholds) bool {
	return f.PickCount >= th.RepeatPickTimes ||
		f.Pick2s >= 1 ||
		f.PickDriving2s >= 1 ||
		f.Accept2s >= 1 ||
		f.SpeedyDriving >= 1 ||
		f.AcceptFromFar >= th.AcceptDistanceLimit
}

// NeedsSpecialHandling reports airport and carry-assistance orders, which are
// always reviewed regardless of score.
func NeedsSpecialHandling(e *models.OrderEvent, th Thresholds) bool {
	return th.isAirport(e.PickupRegion) ||
		th.isAirport(e.DestinationRegion) ||
		e.NeedCarry ||
		e.NeedCarryNoLift
}

// SelectSuspiciousOrders returns every event, of any actor, that belongs to a
// flagged order or to a driver whose GPS trace tripped fake_gps or repeat_gps.
// Each row carries the speedy-driving count and accept distance of its
// (order, driver) pair.
func SelectSuspiciousOrders(
	events []*models.OrderEvent,
	features map[models.OrderDriver]*OrderFeatures,
	gps []*GPSSummary,
	th Thresholds,
) []*models.SuspiciousOrder {
	orders := make(map[string]struct{})
	for key, f := range features {
		if IsSuspiciousOrder(f, th) {
			orders[key.OrderID] = struct{}{}
		}
	}
	for _, e := range events {
		if NeedsSpecialHandling(e, th) {
			orders[e.OrderID] = struct{}{}
		}
	}

	drivers := make(map[string]struct{})
	for _, s := range gps {
		if s.SpeedyCount >= th.SpeedyFrequency || s.RepeatGroupCount >= th.RepeatGPSFrequency {
			drivers[s.DriverID] = struct{}{}
		}
	}

	out := make([]*models.SuspiciousOrder, 0)
	for _, e := range events {
		_, byOrder := orders[e.OrderID]
		_, byDriver := drivers[e.Driver()]
		if !byOrder && !(byDriver && e.Driver() != "") {
			continue
		}
		row := &models.SuspiciousOrder{OrderEvent: *e}
		if f, ok := features[orderDriver(e)]; ok {
			row.SpeedyDrivingCount = f.SpeedyDriving
			row.AcceptFromFar = f.AcceptFromFar
		}
		out = append(out, row)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.OrderID != b.OrderID {
			return a.OrderID < b.OrderID
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		if a.ActorID != b.ActorID {
			return a.ActorID < b.ActorID
		}
		return a.EventType < b.EventType
	})
	return out
}
