package f1

import (
	"context"
	"sort"
	"time"

	"f1databridge/pkg/failure"
	"f1databridge/pkg/frame"
	"f1databridge/pkg/openf1"
)

// positionLead widens the position query so the first car sample of a lap
// has a position sample before it.
const positionLead = 2 * time.Second

// Sample is one car data point merged with the car position at that moment.
type Sample struct {
	Date             time.Time
	SessionTime      time.Duration
	Time             time.Duration
	RPM              int
	Speed            float64
	NGear            int
	Throttle         int
	Brake            bool
	DRS              int
	Source           string
	Distance         float64
	RelativeDistance float64
	X                *float64
	Y                *float64
	Z                *float64
}

func (s Sample) Record() frame.Record {
	return frame.NewBuilder(15).
		Add("Date", s.Date).
		Add("SessionTime", s.SessionTime).
		Add("Time", s.Time).
		Add("RPM", s.RPM).
		Add("Speed", s.Speed).
		Add("nGear", s.NGear).
		Add("Throttle", s.Throttle).
		Add("Brake", s.Brake).
		Add("DRS", s.DRS).
		Add("Source", s.Source).
		Add("Distance", s.Distance).
		Add("RelativeDistance", s.RelativeDistance).
		Add("X", frame.Float(s.X)).
		Add("Y", frame.Float(s.Y)).
		Add("Z", frame.Float(s.Z)).
		Record()
}

type Telemetry []Sample

func (t Telemetry) Records() []frame.Record {
	out := make([]frame.Record, 0, len(t))
	for _, s := range t {
		out = append(out, s.Record())
	}
	return out
}

// Telemetry returns the car samples recorded during lap, in time order.
func (s *Session) Telemetry(ctx context.Context, lap Lap) (Telemetry, error) {
	if err := s.checkLoaded(); err != nil {
		return nil, err
	}
	if !s.telemetry {
		return nil, failure.Internal("telemetry was not loaded for %s %s", s.Event.EventName, s.Name)
	}
	if lap.IsEmpty() || lap.LapStartDate.IsZero() || lap.LapTime == nil {
		return nil, failure.NotFound("lap has no start date or lap time, telemetry cannot be sliced")
	}

	from := lap.LapStartDate
	to := from.Add(*lap.LapTime)
	car, err := s.client.openf1.CarData(ctx, s.key, lap.number, from, to)
	if err != nil {
		return nil, failure.Upstream(err, "failed to load car data")
	}
	pos, err := s.client.openf1.Location(ctx, s.key, lap.number, from.Add(-positionLead), to)
	if err != nil {
		return nil, failure.Upstream(err, "failed to load car positions")
	}
	return mergeTelemetry(car, pos, from, s.startedAt), nil
}

// mergeTelemetry pairs every car sample with the latest position sample at or
// before it and integrates speed into distance.
func mergeTelemetry(car []openf1.CarData, pos []openf1.Location, lapStart, sessionStart time.Time) Telemetry {
	sort.SliceStable(car, func(i, j int) bool { return car[i].Date.Before(car[j].Date) })
	sort.SliceStable(pos, func(i, j int) bool { return pos[i].Date.Before(pos[j].Date) })

	out := make(Telemetry, 0, len(car))
	p := -1
	var distance float64
	for i, c := range car {
		for p+1 < len(pos) && !pos[p+1].Date.After(c.Date) {
			p++
		}

		speed := float64(c.Speed)
		if i > 0 {
			dt := c.Date.Sub(car[i-1].Date).Seconds()
			distance += speed / 3.6 * dt
		}

		sample := Sample{
			Date:        c.Date,
			SessionTime: c.Date.Sub(sessionStart),
			Time:        c.Date.Sub(lapStart),
			RPM:         c.RPM,
			Speed:       speed,
			NGear:       c.NGear,
			Throttle:    c.Throttle,
			Brake:       c.Brake > 0,
			DRS:         c.DRS,
			Source:      "car",
			Distance:    distance,
		}
		if p >= 0 {
			x, y, z := float64(pos[p].X), float64(pos[p].Y), float64(pos[p].Z)
			sample.X, sample.Y, sample.Z = &x, &y, &z
		}
		out = append(out, sample)
	}

	if n := len(out); n > 0 && out[n-1].Distance > 0 {
		total := out[n-1].Distance
		for i := range out {
			out[i].RelativeDistance = out[i].Distance / total
		}
	}
	return out
}
