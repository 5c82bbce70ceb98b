package f1

import (
	"context"
	"sort"
	"strconv"
	"time"

	"f1databridge/pkg/failure"
	"f1databridge/pkg/openf1"
)

// Lap is one lap of one driver. Nil fields are missing in the timing data;
// the zero Lap is the empty lap returned when nothing qualifies.
type Lap struct {
	Time         *time.Duration
	Driver       string
	DriverNumber string
	LapTime      *time.Duration
	LapNumber    *int
	Stint        *int
	Sector1Time  *time.Duration
	Sector2Time  *time.Duration
	Sector3Time  *time.Duration
	SpeedI1      *float64
	SpeedI2      *float64
	SpeedST      *float64
	IsPitOutLap  *bool
	Compound     string
	TyreLife     *int
	FreshTyre    *bool
	Team         string
	LapStartTime *time.Duration
	LapStartDate time.Time

	number int
}

func (l Lap) IsEmpty() bool {
	return l.LapNumber == nil && l.Driver == ""
}

type Laps []Lap

// PickDriver keeps the laps of the driver given by abbreviation or number.
func (l Laps) PickDriver(identifier string) Laps {
	out := make(Laps, 0)
	for _, lap := range l {
		if lap.Driver == identifier || lap.DriverNumber == identifier {
			out = append(out, lap)
		}
	}
	return out
}

// PickFastest returns the lap with the lowest lap time, the first one on a
// tie, or the empty lap when no lap is timed.
func (l Laps) PickFastest() Lap {
	var fastest Lap
	found := false
	for _, lap := range l {
		if lap.LapTime == nil {
			continue
		}
		if !found || *lap.LapTime < *fastest.LapTime {
			fastest = lap
			found = true
		}
	}
	return fastest
}

// PickLap returns the first lap numbered n.
func (l Laps) PickLap(n int) (Lap, error) {
	for _, lap := range l {
		if lap.LapNumber != nil && *lap.LapNumber == n {
			return lap, nil
		}
	}
	return Lap{}, failure.NotFound("lap %d not found", n)
}

// LapTimes returns the present lap times in lap order.
func (l Laps) LapTimes() []time.Duration {
	out := make([]time.Duration, 0, len(l))
	for _, lap := range l {
		if lap.LapTime != nil {
			out = append(out, *lap.LapTime)
		}
	}
	return out
}

func (s *Session) loadLaps(ctx context.Context, drivers []openf1.Driver) (Laps, error) {
	c := s.client
	raw, err := c.openf1.Laps(ctx, s.key)
	if err != nil {
		return nil, failure.Upstream(err, "failed to load laps")
	}
	stints, err := c.openf1.Stints(ctx, s.key)
	if err != nil {
		return nil, failure.Upstream(err, "failed to load tyre stints")
	}

	order := make(map[int]int, len(drivers))
	byNumber := make(map[int]openf1.Driver, len(drivers))
	for i, d := range drivers {
		order[d.DriverNumber] = i
		byNumber[d.DriverNumber] = d
	}
	rank := func(number int) int {
		if i, ok := order[number]; ok {
			return i
		}
		return len(drivers) + number
	}
	sort.SliceStable(raw, func(i, j int) bool {
		ri, rj := rank(raw[i].DriverNumber), rank(raw[j].DriverNumber)
		if ri != rj {
			return ri < rj
		}
		return raw[i].LapNumber < raw[j].LapNumber
	})

	laps := make(Laps, 0, len(raw))
	for _, r := range raw {
		laps = append(laps, s.newLap(r, byNumber[r.DriverNumber], stints))
	}
	return laps, nil
}

func (s *Session) newLap(r openf1.Lap, d openf1.Driver, stints []openf1.Stint) Lap {
	lapNumber := r.LapNumber
	isPitOut := r.IsPitOutLap
	lap := Lap{
		Driver:       d.NameAcronym,
		DriverNumber: strconv.Itoa(r.DriverNumber),
		LapNumber:    &lapNumber,
		LapTime:      seconds(r.LapDuration),
		Sector1Time:  seconds(r.DurationSector1),
		Sector2Time:  seconds(r.DurationSector2),
		Sector3Time:  seconds(r.DurationSector3),
		SpeedI1:      speed(r.I1Speed),
		SpeedI2:      speed(r.I2Speed),
		SpeedST:      speed(r.STSpeed),
		IsPitOutLap:  &isPitOut,
		Team:         d.TeamName,
		number:       r.DriverNumber,
	}

	if r.DateStart != nil {
		lap.LapStartDate = *r.DateStart
		start := r.DateStart.Sub(s.startedAt)
		lap.LapStartTime = &start
		if lap.LapTime != nil {
			end := start + *lap.LapTime
			lap.Time = &end
		}
	}

	for _, st := range stints {
		if st.DriverNumber != r.DriverNumber || r.LapNumber < st.LapStart || r.LapNumber > st.LapEnd {
			continue
		}
		stint := st.StintNumber
		lap.Stint = &stint
		if st.Compound != "" && st.Compound != "UNKNOWN" {
			lap.Compound = st.Compound
		}
		if st.TyreAgeAtStart != nil {
			life := *st.TyreAgeAtStart + r.LapNumber - st.LapStart + 1
			fresh := *st.TyreAgeAtStart == 0
			lap.TyreLife = &life
			lap.FreshTyre = &fresh
		}
		break
	}
	return lap
}

func seconds(v *float64) *time.Duration {
	if v == nil {
		return nil
	}
	d := time.Duration(*v * float64(time.Second)).Round(time.Microsecond)
	return &d
}

func speed(v *int) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}
