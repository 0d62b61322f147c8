package detect

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"cheatdetect/pkg/models"
)

func TestPickAccept(t *testing.T) {
	system := event("O1", "", models.EventPickArrival, 0, f64(10))
	system.ActorType = models.ActorTypeSystem
	system.ActorID = "sys"

	events := []*models.OrderEvent{
		event("O1", "X", models.EventPickArrival, 1, f64(500)),
		event("O1", "X", models.EventPickArrival, 2, f64(1500)),
		event("O1", "X", models.EventPickDriving, 3, f64(3000)),
		event("O1", "X", models.EventAccept, 4, f64(800)),
		event("O1", "X", models.EventAccept, 5, nil),
		event("O1", "X", models.EventEnRoute, 6, f64(100)),
		system,
	}

	got := PickAccept(events, DefaultThresholds())
	want := map[models.OrderDriver]*OrderFeatures{
		{OrderID: "O1", DriverID: "X"}: {
			OrderDriver:        models.OrderDriver{OrderID: "O1", DriverID: "X"},
			PickCount:          3,
			AcceptCount:        2,
			AvgTimePick:        f64(1000),
			AvgTimePickDriving: f64(3000),
			AvgTimeAccept:      f64(800),
			Pick2s:             2,
			Pick1s:             1,
			Accept2s:           1,
			Accept1s:           1,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("PickAccept() mismatch (-want +got):\n%s", diff)
	}
}

func TestPickAcceptFallsBackToActorAsDriver(t *testing.T) {
	e := event("O1", "X", models.EventPickArrival, 0, f64(100))
	e.DriverID = ""

	got := PickAccept([]*models.OrderEvent{e}, DefaultThresholds())
	if _, ok := got[models.OrderDriver{OrderID: "O1", DriverID: "X"}]; !ok {
		t.Errorf("PickAccept() keys = %v, want the acting driver X", got)
	}
}

func TestSpeedyDriving(t *testing.T) {
	events := []*models.OrderEvent{
		trip(event("O1", "X", models.EventEnRoute, 0, nil), 1500, 150),
		trip(event("O1", "X", models.EventAccept, 1, nil), 1500, 150),
		trip(event("O1", "X", models.EventEnRoute, 2, nil), 900, 150),
		trip(event("O1", "X", models.EventPickArrival, 3, nil), 1500, 150),
		event("O1", "X", models.EventEnRoute, 4, nil),
	}

	got := SpeedyDriving(events, DefaultThresholds())
	want := map[models.OrderDriver]int{{OrderID: "O1", DriverID: "X"}: 2}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SpeedyDriving() mismatch (-want +got):\n%s", diff)
	}
}

func TestAcceptFromFar(t *testing.T) {
	events := []*models.OrderEvent{
		// accept then en-route: attributed
		event("O1", "X", models.EventAccept, 0, nil),
		trip(event("O1", "X", models.EventEnRoute, 10, nil), 6000, 10),
		// en-route before accept: nothing precedes the en-route
		trip(event("O2", "X", models.EventEnRoute, 0, nil), 7000, 10),
		event("O2", "X", models.EventAccept, 10, nil),
		// accept only
		trip(event("O3", "X", models.EventAccept, 0, nil), 8000, 10),
		// only the immediately following en-route carries the distance
		event("O4", "X", models.EventAccept, 0, nil),
		trip(event("O4", "X", models.EventEnRoute, 5, nil), 100, 10),
		trip(event("O4", "X", models.EventEnRoute, 10, nil), 9000, 10),
	}

	got := AcceptFromFar(events)
	want := map[models.OrderDriver][]float64{
		{OrderID: "O1", DriverID: "X"}: {6000},
		{OrderID: "O4", DriverID: "X"}: {100},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("AcceptFromFar() mismatch (-want +got):\n%s", diff)
	}
}

func TestAcceptFromFarIgnoresInputOrder(t *testing.T) {
	events := []*models.OrderEvent{
		trip(event("O1", "X", models.EventEnRoute, 10, nil), 6000, 10),
		event("O1", "X", models.EventAccept, 0, nil),
	}
	got := AcceptFromFar(events)
	if diff := cmp.Diff([]float64{6000}, got[models.OrderDriver{OrderID: "O1", DriverID: "X"}]); diff != "" {
		t.Errorf("AcceptFromFar() O1/X mismatch (-want +got):\n%s", diff)
	}
}

func TestAcceptFromFarCountsEveryReacceptedLeg(t *testing.T) {
	// accepted, drove far, released, accepted the same order again
	events := []*models.OrderEvent{
		event("O1", "X", models.EventAccept, 0, nil),
		trip(event("O1", "X", models.EventEnRoute, 10, nil), 6000, 10),
		event("O1", "X", models.EventRelease, 20, nil),
		event("O1", "X", models.EventAccept, 30, nil),
		trip(event("O1", "X", models.EventEnRoute, 40, nil), 7000, 10),
	}
	th := DefaultThresholds()

	key := models.OrderDriver{OrderID: "O1", DriverID: "X"}
	if diff := cmp.Diff([]float64{6000, 7000}, AcceptFromFar(events)[key]); diff != "" {
		t.Errorf("AcceptFromFar() mismatch (-want +got):\n%s", diff)
	}

	features := ExtractOrderFeatures(events, th)
	if f := features[key]; f.FarAccepts != 2 || f.AcceptFromFar != 7000 {
		t.Errorf("features = far accepts %d, accept_from_far %v, want 2 and 7000", f.FarAccepts, f.AcceptFromFar)
	}

	summary := SummarizeDrivers(features)
	if len(summary) != 1 {
		t.Fatalf("SummarizeDrivers() = %d rows, want 1", len(summary))
	}
	if summary[0].FarAcceptCount != 2 || summary[0].FarAcceptPct != 1 {
		t.Errorf("far accept count %d pct %v, want 2 and 1", summary[0].FarAcceptCount, summary[0].FarAcceptPct)
	}

	result := Process(Input{Date: testDate, Country: "sg", Events: events}, th)
	if len(result.Drivers) != 1 || !result.Drivers[0].FarAccept {
		t.Errorf("far_accept did not fire: %+v", result.Drivers)
	}
}

func TestSummarizeDrivers(t *testing.T) {
	features := map[models.OrderDriver]*OrderFeatures{
		{OrderID: "O1", DriverID: "X"}: {OrderDriver: models.OrderDriver{OrderID: "O1", DriverID: "X"}, PickCount: 4, Pick2s: 2, AcceptCount: 2, AcceptFromFar: 6000, FarAccepts: 1},
		{OrderID: "O2", DriverID: "X"}: {OrderDriver: models.OrderDriver{OrderID: "O2", DriverID: "X"}, AcceptCount: 2, SpeedyDriving: 1},
		{OrderID: "O3", DriverID: "Y"}: {OrderDriver: models.OrderDriver{OrderID: "O3", DriverID: "Y"}, PickCount: 2, Pick2s: 2, Pick1s: 2, AcceptCount: 1, Accept2s: 1, Accept1s: 1},
		{OrderID: "O4", DriverID: "Z"}: {OrderDriver: models.OrderDriver{OrderID: "O4", DriverID: "Z"}, PickCount: 1, AcceptCount: 1},
	}

	got := SummarizeDrivers(features)
	want := []*DriverOrderSummary{
		{
			DriverID: "X", PickCount: 4, AcceptCount: 4, Pick2s: 2, SpeedyDrivingCount: 1, FarAcceptCount: 1,
			Pick2sPct: 0.5, FarAcceptPct: 0.25,
			Pick2sPctPR: f64(0.5), FarAcceptPctPR: f64(1),
		},
		{
			DriverID: "Y", PickCount: 2, AcceptCount: 1, Pick2s: 2, Pick1s: 2, Accept2s: 1, Accept1s: 1,
			Pick2sPct: 1, Pick1sPct: 1, Accept2sPct: 1, Accept1sPct: 1,
			Pick2sPctPR: f64(1), Pick1sPctPR: f64(1), Accept2sPctPR: f64(1), Accept1sPctPR: f64(1),
		},
		{DriverID: "Z", PickCount: 1, AcceptCount: 1},
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("SummarizeDrivers() mismatch (-want +got):\n%s", diff)
	}
}

func TestRepeatPick(t *testing.T) {
	od := func(order, driver string, picks int) (models.OrderDriver, *OrderFeatures) {
		key := models.OrderDriver{OrderID: order, DriverID: driver}
		return key, &OrderFeatures{OrderDriver: key, PickCount: picks}
	}
	features := make(map[models.OrderDriver]*OrderFeatures)
	for _, f := range []struct {
		order, driver string
		picks         int
	}{
		{"O1", "X", 4}, {"O2", "X", 0}, {"O5", "X", 1},
		{"O3", "Y", 3}, {"O6", "Y", 3},
		{"O4", "Z", 1},
		{"O7", "W", 0},
	} {
		k, v := od(f.order, f.driver, f.picks)
		features[k] = v
	}

	got := RepeatPick(features, DefaultThresholds())
	want := []*RepeatPickSummary{
		{DriverID: "X", OrdersPick: 2, RepeatPick: 1, RepeatPickPct: 0.5, RepeatPickPctPR: f64(0.5)},
		{DriverID: "Y", OrdersPick: 2, RepeatPick: 2, RepeatPickPct: 1, RepeatPickPctPR: f64(1)},
		{DriverID: "Z", OrdersPick: 1},
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("RepeatPick() mismatch (-want +got):\n%s", diff)
	}
}

func TestOrderStatusCounts(t *testing.T) {
	systemCancel := event("O9", "X", models.EventCancel, 0, nil)
	systemCancel.ActorType = models.ActorTypeSystem

	events := []*models.OrderEvent{
		event("O1", "X", models.EventComplete, 0, nil),
		event("O1", "X", models.EventComplete, 1, nil),
		event("O2", "X", models.EventComplete, 2, nil),
		event("O3", "X", models.EventRelease, 3, nil),
		event("O4", "X", models.EventReleaseAlt, 4, nil),
		event("O5", "X", models.EventCancel, 5, nil),
		event("O6", "Y", models.EventCancel, 6, nil),
		event("O7", "Y", models.EventAccept, 7, nil),
		systemCancel,
	}

	got := OrderStatusCounts(events)
	want := []*StatusCounts{
		{DriverID: "X", Complete: 2, Release: 2, Cancel: 1},
		{DriverID: "Y", Cancel: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("OrderStatusCounts() mismatch (-want +got):\n%s", diff)
	}
}

func TestOrderExtractorsTolerateEmptyInput(t *testing.T) {
	th := DefaultThresholds()
	features := ExtractOrderFeatures(nil, th)
	if len(features) != 0 {
		t.Errorf("ExtractOrderFeatures(nil) = %d rows", len(features))
	}
	if got := SummarizeDrivers(features); len(got) != 0 {
		t.Errorf("SummarizeDrivers(empty) = %d rows", len(got))
	}
	if got := RepeatPick(features, th); len(got) != 0 {
		t.Errorf("RepeatPick(empty) = %d rows", len(got))
	}
	if got := OrderStatusCounts(nil); len(got) != 0 {
		t.Errorf("OrderStatusCounts(nil) = %d rows", len(got))
	}
}
