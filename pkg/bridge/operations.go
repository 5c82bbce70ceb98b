package bridge

import (
	"context"
	"time"

	"f1databridge/pkg/f1"
	"f1databridge/pkg/frame"
	"f1databridge/pkg/helper"
	"f1databridge/pkg/serial"
)

func (b *Bridge) getEventSchedule(ctx context.Context, args []string) (any, error) {
	p, err := parseYearParams(GetEventSchedule, args)
	if err != nil {
		return nil, err
	}
	schedule, err := b.source.EventSchedule(ctx, p.Year)
	if err != nil {
		return nil, err
	}
	return serial.Records(schedule.Records()), nil
}

func (b *Bridge) getEventInfo(ctx context.Context, args []string) (any, error) {
	p, err := parseEventParams(args)
	if err != nil {
		return nil, err
	}
	ev, err := b.source.GetEvent(ctx, p.Year, p.Identifier)
	if err != nil {
		return nil, err
	}
	return serial.Record(ev.Record()), nil
}

func (b *Bridge) loadSession(ctx context.Context, p sessionParams, withTelemetry bool) (*f1.Session, error) {
	session, err := b.source.GetSession(ctx, p.Year, p.Event, p.Session)
	if err != nil {
		return nil, err
	}
	if err := session.Load(ctx, withTelemetry); err != nil {
		return nil, err
	}
	return session, nil
}

func (b *Bridge) getSessionResults(ctx context.Context, args []string) (any, error) {
	p, err := parseSessionParams(GetSessionResults, args)
	if err != nil {
		return nil, err
	}
	session, err := b.loadSession(ctx, p, false)
	if err != nil {
		return nil, err
	}
	results, err := session.Results()
	if err != nil {
		return nil, err
	}
	return serial.Records(f1.ResultRecords(results)), nil
}

func (b *Bridge) getDriverInfo(ctx context.Context, args []string) (any, error) {
	p, err := parseDriverParams(GetDriverInfo, args)
	if err != nil {
		return nil, err
	}
	session, err := b.loadSession(ctx, p.sessionParams, false)
	if err != nil {
		return nil, err
	}
	driver, err := session.GetDriver(p.Driver)
	if err != nil {
		return nil, err
	}
	return serial.Record(driver.Record()), nil
}

// driverLaps checks that identifier names a participant and returns its laps.
func driverLaps(session *f1.Session, identifier string) (f1.Laps, error) {
	if _, err := session.GetDriver(identifier); err != nil {
		return nil, err
	}
	laps, err := session.Laps()
	if err != nil {
		return nil, err
	}
	return laps.PickDriver(identifier), nil
}

func (b *Bridge) analyzeDriverPerformance(ctx context.Context, args []string) (any, error) {
	p, err := parseDriverParams(AnalyzeDriverPerformance, args)
	if err != nil {
		return nil, err
	}
	session, err := b.loadSession(ctx, p.sessionParams, true)
	if err != nil {
		return nil, err
	}
	laps, err := driverLaps(session, p.Driver)
	if err != nil {
		return nil, err
	}
	fastest := laps.PickFastest()

	lapTimes := make([]frame.Record, 0, len(laps))
	for _, lap := range laps {
		lapTimes = append(lapTimes, frame.NewBuilder(7).
			Add("LapNumber", optInt(lap.LapNumber)).
			Add("LapTime", optDuration(lap.LapTime)).
			Add("Compound", optString(lap.Compound)).
			Add("TyreLife", optInt(lap.TyreLife)).
			Add("Stint", optInt(lap.Stint)).
			Add("FreshTyre", optBool(lap.FreshTyre)).
			Add("LapStartTime", serial.JSONSerial(frame.Duration(lap.LapStartTime))).
			Record())
	}

	return frame.NewBuilder(5).
		Add("DriverCode", optString(fastest.Driver)).
		Add("TotalLaps", len(laps)).
		Add("FastestLap", optDuration(fastest.LapTime)).
		Add("AverageLapTime", averageLapTime(laps)).
		Add("LapTimes", lapTimes).
		Record(), nil
}

func (b *Bridge) compareDrivers(ctx context.Context, args []string) (any, error) {
	p, err := parseCompareParams(args)
	if err != nil {
		return nil, err
	}
	session, err := b.loadSession(ctx, p.sessionParams, true)
	if err != nil {
		return nil, err
	}

	out := make([]frame.Record, 0, len(p.Drivers))
	for _, driver := range p.Drivers {
		laps, err := driverLaps(session, driver)
		if err != nil {
			return nil, err
		}
		fastest := laps.PickFastest()
		out = append(out, frame.NewBuilder(5).
			Add("DriverCode", driver).
			Add("FastestLap", optDuration(fastest.LapTime)).
			Add("FastestLapNumber", optInt(fastest.LapNumber)).
			Add("TotalLaps", len(laps)).
			Add("AverageLapTime", averageLapTime(laps)).
			Record())
	}
	return out, nil
}

func (b *Bridge) getTelemetry(ctx context.Context, args []string) (any, error) {
	p, err := parseTelemetryParams(args)
	if err != nil {
		return nil, err
	}
	session, err := b.loadSession(ctx, p.sessionParams, true)
	if err != nil {
		return nil, err
	}
	laps, err := driverLaps(session, p.Driver)
	if err != nil {
		return nil, err
	}

	var lap f1.Lap
	if p.LapNumber != nil {
		lap, err = laps.PickLap(*p.LapNumber)
		if err != nil {
			return nil, err
		}
	} else {
		lap = laps.PickFastest()
	}

	telemetry, err := session.Telemetry(ctx, lap)
	if err != nil {
		return nil, err
	}

	lapInfo := frame.NewBuilder(4).
		Add("LapNumber", optInt(lap.LapNumber)).
		Add("LapTime", optDuration(lap.LapTime)).
		Add("Compound", optString(lap.Compound)).
		Add("TyreLife", optInt(lap.TyreLife)).
		Record()
	return frame.NewBuilder(2).
		Add("lapInfo", lapInfo).
		Add("telemetry", serial.Records(telemetry.Records())).
		Record(), nil
}

func (b *Bridge) getChampionshipStandings(ctx context.Context, args []string) (any, error) {
	p, err := parseStandingsParams(args)
	if err != nil {
		return nil, err
	}
	drivers, constructors, err := b.source.Standings(ctx, p.Year, p.Round)
	if err != nil {
		return nil, err
	}
	return frame.NewBuilder(2).
		Add("drivers", serial.Records(drivers)).
		Add("constructors", serial.Records(constructors)).
		Record(), nil
}

// averageLapTime is the mean of the timed laps in seconds, nil without any.
func averageLapTime(laps f1.Laps) any {
	times := laps.LapTimes()
	if len(times) == 0 {
		return nil
	}
	var total float64
	for _, d := range times {
		total += helper.TotalSeconds(d)
	}
	return total / float64(len(times))
}

func optInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func optBool(v *bool) any {
	if v == nil {
		return nil
	}
	return *v
}

func optString(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func optDuration(v *time.Duration) any {
	if v == nil {
		return nil
	}
	return helper.FormatTimedelta(*v)
}
