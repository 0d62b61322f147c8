package detect

import (
	"sort"

	"cheatdetect/pkg/models"
)

// GPSSummary is the per driver/day view of the GPS anomaly detector.
type GPSSummary struct {
	models.DriverDay

	Count            int
	SpeedyCount      int
	SpeedyPct        float64
	SpeedyCountPR    *float64
	SpeedyPctPR      *float64
	RepeatGroupCount int
}

type gpsSpot struct {
	day      models.DriverDay
	lat, lon float64
}

// RepeatGPS counts, per driver/day, the distinct coordinates that were reported
// more than repeatTimes times.
func RepeatGPS(pings []*models.GpsPing, repeatTimes int) map[models.DriverDay]int {
	counts := make(map[gpsSpot]int)
	for _, p := range pings {
		if p.DriverID == "" {
			continue
		}
		counts[gpsSpot{day: models.DriverDay{DriverID: p.DriverID, Date: p.Date}, lat: p.Lat, lon: p.Lon}]++
	}

	out := make(map[models.DriverDay]int)
	for spot, c := range counts {
		if c > repeatTimes {
			out[spot.day]++
		}
	}
	return out
}

// SpeedyPings returns the pings that jumped at least distanceLimit meters at
// speedLimit m/s or faster since the previous ping. Pings without a previous
// ping never qualify.
func SpeedyPings(pings []*models.GpsPing, speedLimit, distanceLimit float64) []*models.GpsPing {
	out := make([]*models.GpsPing, 0)
	for _, p := range pings {
		if p.Distance == nil || p.Speed == nil {
			continue
		}
		if *p.Distance >= distanceLimit && *p.Speed >= speedLimit {
			out = append(out, p)
		}
	}
	return out
}

// SummarizeGPS joins ping totals, speedy pings and repeated spots per
// driver/day. Speedy count and ratio are ranked only among driver/days with at
// least one speedy ping.
func SummarizeGPS(pings, speedy []*models.GpsPing, repeat map[models.DriverDay]int) []*GPSSummary {
	byDay := make(map[models.DriverDay]*GPSSummary)
	for _, p := range pings {
		if p.DriverID == "" {
			continue
		}
		day := models.DriverDay{DriverID: p.DriverID, Date: p.Date}
		s, ok := byDay[day]
		if !ok {
			s = &GPSSummary{DriverDay: day}
			byDay[day] = s
		}
		s.Count++
	}
	for _, p := range speedy {
		if s, ok := byDay[models.DriverDay{DriverID: p.DriverID, Date: p.Date}]; ok {
			s.SpeedyCount++
		}
	}

	out := make([]*GPSSummary, 0, len(byDay))
	for day, s := range byDay {
		s.RepeatGroupCount = repeat[day]
		s.SpeedyPct = ratio(s.SpeedyCount, s.Count)
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return lessDay(out[i].DriverDay, out[j].DriverDay)
	})

	triggered := func(i int) bool { return out[i].SpeedyCount > 0 }
	countPR := RankWhere(len(out), func(i int) float64 { return float64(out[i].SpeedyCount) }, triggered)
	pctPR := RankWhere(len(out), func(i int) float64 { return out[i].SpeedyPct }, triggered)
	for i, s := range out {
		s.SpeedyCountPR = countPR[i]
		s.SpeedyPctPR = pctPR[i]
	}
	return out
}

func lessDay(a, b models.DriverDay) bool {
	if a.DriverID != b.DriverID {
		return a.DriverID < b.DriverID
	}
	return a.Date < b.Date
}
