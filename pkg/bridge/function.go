package bridge

// Function identifies one of the operations the bridge answers.
type Function int

const (
	FunctionUnknown Function = iota
	GetEventSchedule
	GetEventInfo
	GetSessionResults
	GetDriverInfo
	AnalyzeDriverPerformance
	CompareDrivers
	GetTelemetry
	GetChampionshipStandings
)

var functionNames = [...]string{
	FunctionUnknown:          "unknown",
	GetEventSchedule:         "get_event_schedule",
	GetEventInfo:             "get_event_info",
	GetSessionResults:        "get_session_results",
	GetDriverInfo:            "get_driver_info",
	AnalyzeDriverPerformance: "analyze_driver_performance",
	CompareDrivers:           "compare_drivers",
	GetTelemetry:             "get_telemetry",
	GetChampionshipStandings: "get_championship_standings",
}

func (f Function) String() string {
	if f < 0 || int(f) >= len(functionNames) {
		return functionNames[FunctionUnknown]
	}
	return functionNames[f]
}

// ParseFunction maps a command line name to its Function. Names are case
// sensitive.
func ParseFunction(name string) (Function, bool) {
	for f := GetEventSchedule; f <= GetChampionshipStandings; f++ {
		if functionNames[f] == name {
			return f, true
		}
	}
	return FunctionUnknown, false
}
