package models

import "time"

// DriverDailyMetrics is one row of the driver summary. Percentile fields are
// nil when the driver is outside the ranked population for that metric.
type DriverDailyMetrics struct {
	DriverID string
	Date     string
	Country  string

	FakeGPS        bool
	GPSCount       int
	FakeGPSCount   int
	FakeGPSPct     float64
	FakeGPSCountPR *float64
	FakeGPSPctPR   *float64

	RepeatGPS      bool
	RepeatGPSCount int

	PickAcceptBot       bool
	Pick2sCount         int
	PickDriving2sCount  int
	Accept2sCount       int
	Pick1sCount         int
	PickDriving1sCount  int
	Accept1sCount       int
	Pick2sPct           float64
	Pick1sPct           float64
	Accept2sPct         float64
	Accept1sPct         float64
	Pick2sPctPR         *float64
	Pick1sPctPR         *float64
	Accept2sPctPR       *float64
	Accept1sPctPR       *float64
	PickCount           int
	AcceptCount         int
	SpeedyDriving       bool
	SpeedyDrivingCount  int
	FarAccept           bool
	FarAcceptCount      int
	FarAcceptPct        float64
	FarAcceptPctPR      *float64
	RepeatPick          bool
	OrdersPickCount     int
	RepeatPickCount     int
	RepeatPickPct       float64
	RepeatPickPctPR     *float64
	OrdersCompleteCount int
	OrdersReleaseCount  int
	OrdersCancelCount   int

	CheatScore int
}

// SuspiciousOrder is one order-event row selected for manual review.
type SuspiciousOrder struct {
	OrderEvent

	SpeedyDrivingCount int
	AcceptFromFar      float64
}

// Run statuses recorded in the run ledger.
const (
	RunStatusRunning   = "running"
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

// DetectionRun is one (country, date) invocation as recorded in the ledger.
type DetectionRun struct {
	Country    string     `json:"country"`
	RunDate    string     `json:"run_date"`
	Status     string     `json:"status"`
	GPSRows    int        `json:"gps_rows"`
	EventRows  int        `json:"event_rows"`
	DriverRows int        `json:"driver_rows"`
	OrderRows  int        `json:"order_rows"`
	Error      string     `json:"error"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
}
