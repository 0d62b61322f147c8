package detect

import (
	"time"

	"cheatdetect/pkg/models"
)

const testDate = "2024-03-01"

var baseTime = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

func f64(v float64) *float64 { return &v }

func ping(driver string, lat, lon float64) *models.GpsPing {
	return &models.GpsPing{DriverID: driver, Lat: lat, Lon: lon, Date: testDate, Timestamp: baseTime}
}

func jump(driver string, distance, speed float64) *models.GpsPing {
	p := ping(driver, 0, 0)
	p.Distance = f64(distance)
	p.Speed = f64(speed)
	return p
}

func repeatPings(driver string, lat, lon float64, n int) []*models.GpsPing {
	out := make([]*models.GpsPing, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, ping(driver, lat, lon))
	}
	return out
}

// event builds a driver event offset seconds after baseTime.
func event(order, driver string, code int, offset int, diffMs *float64) *models.OrderEvent {
	return &models.OrderEvent{
		OrderID:    order,
		ActorID:    driver,
		ActorType:  models.ActorTypeDriver,
		DriverID:   driver,
		EventType:  code,
		CreatedAt:  baseTime.Add(time.Duration(offset) * time.Second),
		TimeDiffMs: diffMs,
		Date:       testDate,
		Country:    "SG",
	}
}

func trip(e *models.OrderEvent, distance, speed float64) *models.OrderEvent {
	e.TripDistance = f64(distance)
	e.TripSpeed = f64(speed)
	return e
}
