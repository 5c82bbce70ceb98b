package bridge

import (
	"context"
	"testing"

	"f1databridge/pkg/caster"
	"f1databridge/pkg/f1"
	"f1databridge/pkg/f1/f1test"
	"f1databridge/pkg/frame"
	"f1databridge/pkg/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBridge() *Bridge {
	client := f1.NewClient(&f1test.Ergast{}, &f1test.OpenF1{}, logging.Discard())
	return New(client, logging.Discard())
}

// dispatchLine returns the envelope exactly as it is printed.
func dispatchLine(t *testing.T, b *Bridge, args ...string) string {
	t.Helper()
	line, err := caster.JSONCaster[Envelope]{}.To(b.Dispatch(context.Background(), args))
	require.NoError(t, err)
	return line
}

// dispatch returns the printed envelope decoded back into generic JSON.
func dispatch(t *testing.T, b *Bridge, args ...string) map[string]any {
	t.Helper()
	out, err := caster.JSONCaster[map[string]any]{}.From(dispatchLine(t, b, args...))
	require.NoError(t, err)
	return out
}

func requireSuccess(t *testing.T, env map[string]any) any {
	t.Helper()
	require.Equal(t, "success", env["status"], "message: %v", env["message"])
	return env["data"]
}

func requireError(t *testing.T, env map[string]any) string {
	t.Helper()
	require.Equal(t, "error", env["status"])
	msg, _ := env["message"].(string)
	tb, _ := env["traceback"].(string)
	assert.NotEmpty(t, msg)
	assert.NotEmpty(t, tb)
	return msg
}

func TestDispatchErrors(t *testing.T) {
	b := newTestBridge()

	assert.Equal(t, `{"status":"error","message":"No function specified"}`, dispatchLine(t, b))
	assert.Equal(t, `{"status":"error","message":"Unknown function: get_lap"}`, dispatchLine(t, b, "get_lap", "2024"))
	assert.Equal(t, `{"status":"error","message":"Unknown function: GET_EVENT_SCHEDULE"}`, dispatchLine(t, b, "GET_EVENT_SCHEDULE"))
}

func TestParseFunction(t *testing.T) {
	for f := GetEventSchedule; f <= GetChampionshipStandings; f++ {
		got, ok := ParseFunction(f.String())
		require.True(t, ok, f.String())
		assert.Equal(t, f, got)
	}
	_, ok := ParseFunction("unknown")
	assert.False(t, ok)
	assert.Equal(t, "unknown", Function(42).String())
}

func TestGetEventSchedule(t *testing.T) {
	b := newTestBridge()

	line := dispatchLine(t, b, "get_event_schedule", "2024")
	assert.Contains(t, line, `{"status":"success","data":[{"RoundNumber":1,"Country":"Bahrain","Location":"Sakhir",`)

	data := requireSuccess(t, dispatch(t, b, "get_event_schedule", "2024", "ignored"))
	events, ok := data.([]any)
	require.True(t, ok)
	require.Len(t, events, 2)

	bahrain := events[0].(map[string]any)
	assert.Equal(t, 1.0, bahrain["RoundNumber"])
	assert.Equal(t, "conventional", bahrain["EventFormat"])
	assert.Equal(t, "2024-03-02T00:00:00+00:00", bahrain["EventDate"])
	assert.Equal(t, "Race", bahrain["Session5"])
	assert.Equal(t, "2024-03-02T18:00:00+03:00", bahrain["Session5Date"])
	assert.Equal(t, "2024-03-02T15:00:00+00:00", bahrain["Session5DateUtc"])
	assert.Equal(t, "true", bahrain["F1ApiSupport"])
}

func TestGetEventScheduleErrors(t *testing.T) {
	b := newTestBridge()

	msg := requireError(t, dispatch(t, b, "get_event_schedule", "abc"))
	assert.Contains(t, msg, `invalid year: "abc"`)

	msg = requireError(t, dispatch(t, b, "get_event_schedule"))
	assert.Contains(t, msg, "get_event_schedule() requires 1 arguments")

	requireError(t, dispatch(t, b, "get_event_schedule", "1900"))
}

func TestGetEventInfo(t *testing.T) {
	b := newTestBridge()

	byRound := requireSuccess(t, dispatch(t, b, "get_event_info", "2024", "5")).(map[string]any)
	byName := requireSuccess(t, dispatch(t, b, "get_event_info", "2024", "chinese grand prix")).(map[string]any)
	assert.Equal(t, byRound, byName)
	assert.Equal(t, "sprint_qualifying", byRound["EventFormat"])
	assert.Equal(t, "Sprint Qualifying", byRound["Session2"])

	msg := requireError(t, dispatch(t, b, "get_event_info", "2024", "Atlantis"))
	assert.Contains(t, msg, "Atlantis")

	requireError(t, dispatch(t, b, "get_event_info", "2024"))
}

func TestGetSessionResults(t *testing.T) {
	b := newTestBridge()

	rows := requireSuccess(t, dispatch(t, b, "get_session_results", "2024", "1", "R")).([]any)
	require.Len(t, rows, 3)

	ver := rows[0].(map[string]any)
	assert.Equal(t, "1", ver["DriverNumber"])
	assert.Equal(t, "VER", ver["Abbreviation"])
	assert.Equal(t, 1.0, ver["Position"])
	assert.Equal(t, "1", ver["ClassifiedPosition"])
	assert.Equal(t, "0 days 01:31:44.742000", ver["Time"])
	assert.Nil(t, ver["Q1"])

	per := rows[1].(map[string]any)
	assert.Equal(t, "0 days 00:00:22.457000", per["Time"])

	sar := rows[2].(map[string]any)
	assert.Nil(t, sar["Time"])
	assert.Equal(t, "Retired", sar["Status"])

	practice := requireSuccess(t, dispatch(t, b, "get_session_results", "2024", "Bahrain", "FP1")).([]any)
	require.Len(t, practice, 3)
	assert.Nil(t, practice[0].(map[string]any)["Position"])

	requireError(t, dispatch(t, b, "get_session_results", "2024", "1", "Sprint"))

	msg := requireError(t, dispatch(t, b, "get_session_results", "2024", "Atlantis", "R"))
	assert.Contains(t, msg, "Atlantis")
}

func TestRoute(t *testing.T) {
	fn, _, ok := Route([]string{"get_telemetry", "2024"})
	require.True(t, ok)
	assert.Equal(t, GetTelemetry, fn)

	_, env, ok := Route(nil)
	require.False(t, ok)
	assert.Equal(t, "No function specified", env.Message)
	assert.Nil(t, env.Traceback)

	_, env, ok = Route([]string{"get_events"})
	require.False(t, ok)
	assert.Equal(t, "Unknown function: get_events", env.Message)
}

func TestGetDriverInfo(t *testing.T) {
	b := newTestBridge()

	d := requireSuccess(t, dispatch(t, b, "get_driver_info", "2024", "1", "Q", "11")).(map[string]any)
	assert.Equal(t, "PER", d["Abbreviation"])
	assert.Equal(t, "Sergio PEREZ", d["FullName"])
	assert.Equal(t, "0 days 00:01:29.537000", d["Q3"])

	requireError(t, dispatch(t, b, "get_driver_info", "2024", "1", "Q", "XYZ"))
}

func TestAnalyzeDriverPerformance(t *testing.T) {
	b := newTestBridge()

	data := requireSuccess(t, dispatch(t, b, "analyze_driver_performance", "2024", "1", "R", "VER")).(map[string]any)
	assert.Equal(t, "VER", data["DriverCode"])
	assert.Equal(t, 3.0, data["TotalLaps"])
	assert.Equal(t, "0 days 00:01:36.500000", data["FastestLap"])
	assert.InDelta(t, (97.284+96.5)/2, data["AverageLapTime"], 1e-9)

	laps := data["LapTimes"].([]any)
	require.Len(t, laps, 3)
	first := laps[0].(map[string]any)
	assert.Equal(t, 1.0, first["LapNumber"])
	assert.Nil(t, first["LapTime"])
	assert.Nil(t, first["LapStartTime"])
	assert.Equal(t, "SOFT", first["Compound"])

	second := laps[1].(map[string]any)
	assert.Equal(t, "0 days 00:01:37.284000", second["LapTime"])
	assert.Equal(t, 2.0, second["TyreLife"])
	assert.Equal(t, 1.0, second["Stint"])
	assert.Equal(t, true, second["FreshTyre"])
	assert.Equal(t, "0 days 00:02:00", second["LapStartTime"])
}

func TestAnalyzeDriverWithoutTimedLaps(t *testing.T) {
	b := newTestBridge()

	data := requireSuccess(t, dispatch(t, b, "analyze_driver_performance", "2024", "1", "R", "SAR")).(map[string]any)
	assert.Nil(t, data["DriverCode"])
	assert.Nil(t, data["FastestLap"])
	assert.Nil(t, data["AverageLapTime"])
	assert.Equal(t, 1.0, data["TotalLaps"])
	assert.Contains(t, data, "AverageLapTime")

	requireError(t, dispatch(t, b, "analyze_driver_performance", "2024", "1", "R", "HAM"))
}

func TestCompareDrivers(t *testing.T) {
	b := newTestBridge()

	rows := requireSuccess(t, dispatch(t, b, "compare_drivers", "2024", "1", "R", "PER,VER,SAR")).([]any)
	require.Len(t, rows, 3)

	per := rows[0].(map[string]any)
	assert.Equal(t, "PER", per["DriverCode"])
	assert.Equal(t, "0 days 00:01:38", per["FastestLap"])
	assert.Equal(t, 2.0, per["FastestLapNumber"])
	assert.Equal(t, 2.0, per["TotalLaps"])
	assert.InDelta(t, 98.0, per["AverageLapTime"], 1e-9)

	ver := rows[1].(map[string]any)
	assert.Equal(t, "VER", ver["DriverCode"])
	assert.Equal(t, 3.0, ver["FastestLapNumber"])

	sar := rows[2].(map[string]any)
	assert.Nil(t, sar["FastestLap"])
	assert.Nil(t, sar["FastestLapNumber"])
	assert.Nil(t, sar["AverageLapTime"])

	// tokens are not trimmed, and one bad driver fails the whole call
	requireError(t, dispatch(t, b, "compare_drivers", "2024", "1", "R", "VER, PER"))
	requireError(t, dispatch(t, b, "compare_drivers", "2024", "1", "R", "VER,"))
}

func TestGetTelemetry(t *testing.T) {
	b := newTestBridge()

	data := requireSuccess(t, dispatch(t, b, "get_telemetry", "2024", "1", "R", "VER")).(map[string]any)
	info := data["lapInfo"].(map[string]any)
	assert.Equal(t, 3.0, info["LapNumber"])
	assert.Equal(t, "0 days 00:01:36.500000", info["LapTime"])
	assert.Equal(t, "HARD", info["Compound"])
	assert.Equal(t, 4.0, info["TyreLife"])

	samples := data["telemetry"].([]any)
	require.Len(t, samples, 3)
	first := samples[0].(map[string]any)
	assert.Equal(t, "2024-03-02T15:06:37.300000+00:00", first["Date"])
	assert.Equal(t, "0 days 00:00:00.016000", first["Time"])
	assert.Equal(t, 0.0, first["Distance"])
	assert.Equal(t, "car", first["Source"])
	assert.Equal(t, "false", first["Brake"])
	assert.Equal(t, 100.0, first["X"])

	last := samples[2].(map[string]any)
	assert.Equal(t, 1.0, last["RelativeDistance"])

	// an empty lap number means the fastest lap
	same := requireSuccess(t, dispatch(t, b, "get_telemetry", "2024", "1", "R", "VER", "")).(map[string]any)
	assert.Equal(t, data, same)
}

func TestGetTelemetryLapNumber(t *testing.T) {
	b := newTestBridge()

	data := requireSuccess(t, dispatch(t, b, "get_telemetry", "2024", "1", "R", "1", "3")).(map[string]any)
	assert.Equal(t, 3.0, data["lapInfo"].(map[string]any)["LapNumber"])

	msg := requireError(t, dispatch(t, b, "get_telemetry", "2024", "1", "R", "VER", "99"))
	assert.Contains(t, msg, "lap 99")

	msg = requireError(t, dispatch(t, b, "get_telemetry", "2024", "1", "R", "VER", "x"))
	assert.Contains(t, msg, "lap_number")

	// lap 1 has no start date
	requireError(t, dispatch(t, b, "get_telemetry", "2024", "1", "R", "VER", "1"))
}

func TestGetChampionshipStandings(t *testing.T) {
	b := newTestBridge()

	data := requireSuccess(t, dispatch(t, b, "get_championship_standings", "2024")).(map[string]any)
	drivers := data["drivers"].([]any)
	constructors := data["constructors"].([]any)
	require.Len(t, drivers, 2)
	require.Len(t, constructors, 2)

	ver := drivers[0].(map[string]any)
	assert.Equal(t, 1.0, ver["position"])
	assert.Equal(t, 26.0, ver["points"])
	assert.Equal(t, "VER", ver["driverCode"])
	assert.Equal(t, "1997-09-30T00:00:00+00:00", ver["dateOfBirth"])
	assert.Equal(t, "[red_bull]", ver["constructorIds"])

	team := constructors[0].(map[string]any)
	assert.Equal(t, "red_bull", team["constructorId"])

	requireSuccess(t, dispatch(t, b, "get_championship_standings", "2024", "1"))
	requireSuccess(t, dispatch(t, b, "get_championship_standings", "2024", ""))
	requireError(t, dispatch(t, b, "get_championship_standings", "2024", "last"))
	requireError(t, dispatch(t, b, "get_championship_standings", "2024", "-1"))
	msg := requireError(t, dispatch(t, b, "get_championship_standings", "2024", "0"))
	assert.Contains(t, msg, `invalid round_num: "0"`)
	requireError(t, dispatch(t, b, "get_championship_standings", "1999"))
}

type panicSource struct {
	Source
}

func (panicSource) EventSchedule(context.Context, int) (f1.Schedule, error) {
	var schedule f1.Schedule
	_ = schedule[3]
	return schedule, nil
}

func (panicSource) Standings(context.Context, int, int) ([]frame.Record, []frame.Record, error) {
	panic("standings exploded")
}

func TestPanicBecomesErrorEnvelope(t *testing.T) {
	b := New(panicSource{}, logging.Discard())

	msg := requireError(t, dispatch(t, b, "get_event_schedule", "2024"))
	assert.Contains(t, msg, "index out of range")

	msg = requireError(t, dispatch(t, b, "get_championship_standings", "2024"))
	assert.Contains(t, msg, "standings exploded")
}
