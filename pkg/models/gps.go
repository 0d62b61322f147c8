package models

import "time"

// GpsPing is one raw location update with the delta to the driver's previous ping
// of the day. The first ping of a driver has nil Prev*/Distance/TimeDeltaMicros.
type GpsPing struct {
	DriverID        string    `json:"driver_id"`
	Timestamp       time.Time `json:"datetime"`
	Lat             float64   `json:"lat"`
	Lon             float64   `json:"lon"`
	PrevLat         *float64  `json:"prev_lat"`
	PrevLon         *float64  `json:"prev_lon"`
	Date            string    `json:"date"`
	Distance        *float64  `json:"distance"`           // meters
	TimeDeltaMicros *int64    `json:"time_diff_in_mic_s"` // microseconds
	Speed           *float64  `json:"speed_in_m_per_s"`
}
