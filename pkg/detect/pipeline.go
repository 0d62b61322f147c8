package detect

import (
	"sort"
	"strings"

	"cheatdetect/pkg/models"
)

// Input is one (date, country) worth of source rows.
type Input struct {
	Date    string
	Country string
	GPS     []*models.GpsPing
	Events  []*models.OrderEvent
}

// Result holds the two output tables of a run.
type Result struct {
	Drivers []*models.DriverDailyMetrics
	Orders  []*models.SuspiciousOrder
}

// Process runs the whole scoring pipeline. It is deterministic and total: an
// empty input yields an empty Result.
func Process(in Input, th Thresholds) Result {
	repeat := RepeatGPS(in.GPS, th.RepeatGPSTimes)
	speedy := SpeedyPings(in.GPS, th.SpeedLimit, th.DistanceLimit)
	gps := SummarizeGPS(in.GPS, speedy, repeat)

	features := ExtractOrderFeatures(in.Events, th)

	agg := newAggregator(in.Date, in.Country)
	agg.addGPS(gps)
	agg.addOrderSummaries(SummarizeDrivers(features))
	agg.addRepeatPick(RepeatPick(features, th))
	agg.addStatusCounts(OrderStatusCounts(in.Events))

	drivers := agg.rows()
	for _, m := range drivers {
		ApplyRules(m, th)
	}

	return Result{
		Drivers: drivers,
		Orders:  SelectSuspiciousOrders(in.Events, features, gps, th),
	}
}

// aggregator assembles one DriverDailyMetrics per driver/day from the feature
// tables. Any table may introduce a driver; fields it does not cover keep their
// zero value.
type aggregator struct {
	date    string
	country string
	byDay   map[models.DriverDay]*models.DriverDailyMetrics
}

func newAggregator(date, country string) *aggregator {
	return &aggregator{
		date:    date,
		country: strings.ToUpper(country),
		byDay:   make(map[models.DriverDay]*models.DriverDailyMetrics),
	}
}

func (a *aggregator) record(driverID, date string) *models.DriverDailyMetrics {
	if date == "" {
		date = a.date
	}
	key := models.DriverDay{DriverID: driverID, Date: date}
	m, ok := a.byDay[key]
	if !ok {
		m = &models.DriverDailyMetrics{DriverID: key.DriverID, Date: key.Date, Country: a.country}
		a.byDay[key] = m
	}
	return m
}

func (a *aggregator) addGPS(rows []*GPSSummary) {
	for _, s := range rows {
		m := a.record(s.DriverID, s.Date)
		m.GPSCount = s.Count
		m.FakeGPSCount = s.SpeedyCount
		m.FakeGPSPct = s.SpeedyPct
		m.FakeGPSCountPR = s.SpeedyCountPR
		m.FakeGPSPctPR = s.SpeedyPctPR
		m.RepeatGPSCount = s.RepeatGroupCount
	}
}

func (a *aggregator) addOrderSummaries(rows []*DriverOrderSummary) {
	for _, s := range rows {
		m := a.record(s.DriverID, a.date)
		m.PickCount = s.PickCount
		m.AcceptCount = s.AcceptCount
		m.Pick2sCount = s.Pick2s
		m.PickDriving2sCount = s.PickDriving2s
		m.Accept2sCount = s.Accept2s
		m.Pick1sCount = s.Pick1s
		m.PickDriving1sCount = s.PickDriving1s
		m.Accept1sCount = s.Accept1s
		m.Pick2sPct = s.Pick2sPct
		m.Pick1sPct = s.Pick1sPct
		m.Accept2sPct = s.Accept2sPct
		m.Accept1sPct = s.Accept1sPct
		m.Pick2sPctPR = s.Pick2sPctPR
		m.Pick1sPctPR = s.Pick1sPctPR
		m.Accept2sPctPR = s.Accept2sPctPR
		m.Accept1sPctPR = s.Accept1sPctPR
		m.SpeedyDrivingCount = s.SpeedyDrivingCount
		m.FarAcceptCount = s.FarAcceptCount
		m.FarAcceptPct = s.FarAcceptPct
		m.FarAcceptPctPR = s.FarAcceptPctPR
	}
}

func (a *aggregator) addRepeatPick(rows []*RepeatPickSummary) {
	for _, s := range rows {
		m := a.record(s.DriverID, a.date)
		m.OrdersPickCount = s.OrdersPick
		m.RepeatPickCount = s.RepeatPick
		m.RepeatPickPct = s.RepeatPickPct
		m.RepeatPickPctPR = s.RepeatPickPctPR
	}
}

func (a *aggregator) addStatusCounts(rows []*StatusCounts) {
	for _, s := range rows {
		m := a.record(s.DriverID, a.date)
		m.OrdersCompleteCount = s.Complete
		m.OrdersReleaseCount = s.Release
		m.OrdersCancelCount = s.Cancel
	}
}

// rows drops unidentifiable drivers and returns the rest ordered by driver, date.
func (a *aggregator) rows() []*models.DriverDailyMetrics {
	out := make([]*models.DriverDailyMetrics, 0, len(a.byDay))
	for key, m := range a.byDay {
		if key.DriverID == "" {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		return lessDay(
			models.DriverDay{DriverID: out[i].DriverID, Date: out[i].Date},
			models.DriverDay{DriverID: out[j].DriverID, Date: out[j].Date},
		)
	})
	return out
}
