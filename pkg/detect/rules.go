package detect

import "cheatdetect/pkg/models"

// Signals are the six independent rule outcomes for one driver/day.
type Signals struct {
	FakeGPS       bool
	RepeatGPS     bool
	PickAcceptBot bool
	SpeedyDriving bool
	FarAccept     bool
	RepeatPick    bool
}

// Score counts the signals that fired. All signals weigh the same.
func (s Signals) Score() int {
	score := 0
	for _, fired := range []bool{s.FakeGPS, s.RepeatGPS, s.PickAcceptBot, s.SpeedyDriving, s.FarAccept, s.RepeatPick} {
		if fired {
			score++
		}
	}
	return score
}

func FakeGPSRule(m *models.DriverDailyMetrics, th Thresholds) bool {
	return m.FakeGPSCount >= th.SpeedyFrequency
}

func RepeatGPSRule(m *models.DriverDailyMetrics, th Thresholds) bool {
	return m.RepeatGPSCount >= th.RepeatGPSFrequency
}

func PickAcceptBotRule(m *models.DriverDailyMetrics, th Thresholds) bool {
	return m.Pick2sPct >= th.PickAcceptThreshold ||
		m.Accept2sPct >= th.PickAcceptThreshold ||
		m.Pick1sPct >= th.PickAcceptThreshold ||
		m.Accept1sPct >= th.PickAcceptThreshold
}

func SpeedyDrivingRule(m *models.DriverDailyMetrics, th Thresholds) bool {
	return m.SpeedyDrivingCount >= th.TravelFrequency
}

func FarAcceptRule(m *models.DriverDailyMetrics, th Thresholds) bool {
	return m.FarAcceptCount >= th.AcceptDistanceFrequency
}

func RepeatPickRule(m *models.DriverDailyMetrics, th Thresholds) bool {
	return m.RepeatPickCount >= th.RepeatPickFrequency
}

func Evaluate(m *models.DriverDailyMetrics, th Thresholds) Signals {
	return Signals{
		FakeGPS:       FakeGPSRule(m, th),
		RepeatGPS:     RepeatGPSRule(m, th),
		PickAcceptBot: PickAcceptBotRule(m, th),
		SpeedyDriving: SpeedyDrivingRule(m, th),
		FarAccept:     FarAcceptRule(m, th),
		RepeatPick:    RepeatPickRule(m, th),
	}
}

// ApplyRules stamps the signals and the cheat score onto m.
func ApplyRules(m *models.DriverDailyMetrics, th Thresholds) Signals {
	s := Evaluate(m, th)
	m.FakeGPS = s.FakeGPS
	m.RepeatGPS = s.RepeatGPS
	m.PickAcceptBot = s.PickAcceptBot
	m.SpeedyDriving = s.SpeedyDriving
	m.FarAccept = s.FarAccept
	m.RepeatPick = s.RepeatPick
	m.CheatScore = s.Score()
	return s
}
