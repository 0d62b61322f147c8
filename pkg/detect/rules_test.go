package detect

import (
	"testing"

	"cheatdetect/pkg/models"
)

func TestRulesFireIndependently(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		name    string
		metrics models.DriverDailyMetrics
		want    Signals
	}{
		{name: "clean", want: Signals{}},
		{name: "fake gps", metrics: models.DriverDailyMetrics{FakeGPSCount: 2}, want: Signals{FakeGPS: true}},
		{name: "one speedy ping is not enough", metrics: models.DriverDailyMetrics{FakeGPSCount: 1}, want: Signals{}},
		{name: "repeat gps", metrics: models.DriverDailyMetrics{RepeatGPSCount: 2}, want: Signals{RepeatGPS: true}},
		{name: "pick 2s", metrics: models.DriverDailyMetrics{Pick2sPct: 0.5}, want: Signals{PickAcceptBot: true}},
		{name: "accept 2s", metrics: models.DriverDailyMetrics{Accept2sPct: 0.6}, want: Signals{PickAcceptBot: true}},
		{name: "pick 1s", metrics: models.DriverDailyMetrics{Pick1sPct: 0.5}, want: Signals{PickAcceptBot: true}},
		{name: "accept 1s", metrics: models.DriverDailyMetrics{Accept1sPct: 1}, want: Signals{PickAcceptBot: true}},
		{name: "below bot threshold", metrics: models.DriverDailyMetrics{Pick2sPct: 0.49, Accept2sPct: 0.49}, want: Signals{}},
		{name: "speedy driving", metrics: models.DriverDailyMetrics{SpeedyDrivingCount: 3}, want: Signals{SpeedyDriving: true}},
		{name: "far accept", metrics: models.DriverDailyMetrics{FarAcceptCount: 2}, want: Signals{FarAccept: true}},
		{name: "repeat pick", metrics: models.DriverDailyMetrics{RepeatPickCount: 2}, want: Signals{RepeatPick: true}},
		{
			name: "everything",
			metrics: models.DriverDailyMetrics{
				FakeGPSCount: 5, RepeatGPSCount: 5, Pick2sPct: 1, SpeedyDrivingCount: 5, FarAcceptCount: 5, RepeatPickCount: 5,
			},
			want: Signals{FakeGPS: true, RepeatGPS: true, PickAcceptBot: true, SpeedyDriving: true, FarAccept: true, RepeatPick: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.metrics
			got := ApplyRules(&m, th)
			if got != tt.want {
				t.Errorf("ApplyRules() = %+v, want %+v", got, tt.want)
			}
			if m.CheatScore != tt.want.Score() {
				t.Errorf("CheatScore = %d, want %d", m.CheatScore, tt.want.Score())
			}
			if m.CheatScore < 0 || m.CheatScore > 6 {
				t.Errorf("CheatScore %d outside 0..6", m.CheatScore)
			}
		})
	}
}

func TestScoreCountsSignals(t *testing.T) {
	for mask := 0; mask < 64; mask++ {
		s := Signals{
			FakeGPS:       mask&1 != 0,
			RepeatGPS:     mask&2 != 0,
			PickAcceptBot: mask&4 != 0,
			SpeedyDriving: mask&8 != 0,
			FarAccept:     mask&16 != 0,
			RepeatPick:    mask&32 != 0,
		}
		want := 0
		for b := mask; b != 0; b >>= 1 {
			want += b & 1
		}
		if got := s.Score(); got != want {
			t.Errorf("mask %06b: Score() = %d, want %d", mask, got, want)
		}
	}
}

func TestThresholdOverridesChangeOutcome(t *testing.T) {
	th := DefaultThresholds()
	th.SpeedyFrequency = 5
	m := models.DriverDailyMetrics{FakeGPSCount: 3}
	if FakeGPSRule(&m, th) {
		t.Error("FakeGPSRule fired below an overridden frequency of 5")
	}
	if !FakeGPSRule(&m, DefaultThresholds()) {
		t.Error("FakeGPSRule did not fire at default frequency")
	}
}
