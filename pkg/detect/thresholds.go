package detect

// Thresholds is the full rule configuration for one run. It is passed by value
// and never mutated by the engine.
type Thresholds struct {
	// GPS
	RepeatGPSTimes     int     // pings at one spot before the spot counts as repeated (strictly greater)
	RepeatGPSFrequency int     // repeated spots before repeat_gps fires
	SpeedLimit         float64 // m/s between consecutive pings
	DistanceLimit      float64 // meters between consecutive pings
	SpeedyFrequency    int     // speedy pings before fake_gps fires

	// Trip
	TravelSpeedLimit    float64
	TravelDistanceLimit float64
	TravelFrequency     int

	// Pick / accept
	RepeatPickTimes         int
	RepeatPickFrequency     int
	PickAcceptThreshold     float64
	FastActionMs            float64
	VeryFastActionMs        float64
	AcceptDistanceLimit     float64
	AcceptDistanceFrequency int

	// AirportRegions are pickup/destination region names whose orders are
	// always sent for review.
	AirportRegions []string
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		RepeatGPSTimes:     10,
		RepeatGPSFrequency: 2,
		SpeedLimit:         100,
		DistanceLimit:      1000,
		SpeedyFrequency:    2,

		TravelSpeedLimit:    100,
		TravelDistanceLimit: 1000,
		TravelFrequency:     2,

		RepeatPickTimes:         3,
		RepeatPickFrequency:     2,
		PickAcceptThreshold:     0.5,
		FastActionMs:            2000,
		VeryFastActionMs:        1000,
		AcceptDistanceLimit:     5000,
		AcceptDistanceFrequency: 2,

		AirportRegions: []string{"機場"},
	}
}

func (t Thresholds) isAirport(region string) bool {
	if region == "" {
		return false
	}
	for _, r := range t.AirportRegions {
		if r == region {
			return true
		}
	}
	return false
}
