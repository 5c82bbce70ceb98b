package bridge

import (
	"strconv"
	"strings"

	"f1databridge/pkg/failure"
)

// Positional argument names, in order, per function.
var argNames = map[Function][]string{
	GetEventSchedule:         {"year"},
	GetEventInfo:             {"year", "identifier"},
	GetSessionResults:        {"year", "event_identifier", "session_name"},
	GetDriverInfo:            {"year", "event_identifier", "session_name", "driver_identifier"},
	AnalyzeDriverPerformance: {"year", "event_identifier", "session_name", "driver_identifier"},
	CompareDrivers:           {"year", "event_identifier", "session_name", "drivers"},
	GetTelemetry:             {"year", "event_identifier", "session_name", "driver_identifier"},
	GetChampionshipStandings: {"year"},
}

type yearParams struct {
	Year int
}

type eventParams struct {
	Year       int
	Identifier string
}

type sessionParams struct {
	Year    int
	Event   string
	Session string
}

type driverParams struct {
	sessionParams
	Driver string
}

type compareParams struct {
	sessionParams
	Drivers []string
}

type telemetryParams struct {
	driverParams
	LapNumber *int
}

type standingsParams struct {
	Year  int
	Round int // 0 means the latest round
}

func requireArgs(fn Function, args []string) error {
	want := argNames[fn]
	if len(args) < len(want) {
		return failure.MissingArgument(fn.String(), want, len(args))
	}
	return nil
}

// optionalArg returns the argument at i, "" when absent.
func optionalArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func parseInt(name, value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, failure.InvalidArgument(name, value, err)
	}
	return n, nil
}

func parseYearParams(fn Function, args []string) (yearParams, error) {
	if err := requireArgs(fn, args); err != nil {
		return yearParams{}, err
	}
	year, err := parseInt("year", args[0])
	return yearParams{Year: year}, err
}

func parseEventParams(args []string) (eventParams, error) {
	if err := requireArgs(GetEventInfo, args); err != nil {
		return eventParams{}, err
	}
	year, err := parseInt("year", args[0])
	if err != nil {
		return eventParams{}, err
	}
	return eventParams{Year: year, Identifier: args[1]}, nil
}

func parseSessionParams(fn Function, args []string) (sessionParams, error) {
	if err := requireArgs(fn, args); err != nil {
		return sessionParams{}, err
	}
	year, err := parseInt("year", args[0])
	if err != nil {
		return sessionParams{}, err
	}
	return sessionParams{Year: year, Event: args[1], Session: args[2]}, nil
}

func parseDriverParams(fn Function, args []string) (driverParams, error) {
	sp, err := parseSessionParams(fn, args)
	if err != nil {
		return driverParams{}, err
	}
	return driverParams{sessionParams: sp, Driver: args[3]}, nil
}

// parseCompareParams splits the driver list on commas and keeps every token
// as given, blanks included.
func parseCompareParams(args []string) (compareParams, error) {
	sp, err := parseSessionParams(CompareDrivers, args)
	if err != nil {
		return compareParams{}, err
	}
	return compareParams{sessionParams: sp, Drivers: strings.Split(args[3], ",")}, nil
}

func parseTelemetryParams(args []string) (telemetryParams, error) {
	dp, err := parseDriverParams(GetTelemetry, args)
	if err != nil {
		return telemetryParams{}, err
	}
	p := telemetryParams{driverParams: dp}
	if lap := optionalArg(args, 4); lap != "" {
		n, err := parseInt("lap_number", lap)
		if err != nil {
			return telemetryParams{}, err
		}
		p.LapNumber = &n
	}
	return p, nil
}

func parseStandingsParams(args []string) (standingsParams, error) {
	yp, err := parseYearParams(GetChampionshipStandings, args)
	if err != nil {
		return standingsParams{}, err
	}
	p := standingsParams{Year: yp.Year}
	if round := optionalArg(args, 1); round != "" {
		n, err := parseInt("round_num", round)
		if err != nil {
			return standingsParams{}, err
		}
		// rounds are numbered from 1
		if n < 1 {
			return standingsParams{}, failure.InvalidArgument("round_num", round, nil)
		}
		p.Round = n
	}
	return p, nil
}
