package f1

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"f1databridge/pkg/ergast"
	"f1databridge/pkg/failure"
	"f1databridge/pkg/frame"
	"f1databridge/pkg/openf1"
)

const (
	FormatConventional     = "conventional"
	FormatSprint           = "sprint"
	FormatSprintShootout   = "sprint_shootout"
	FormatSprintQualifying = "sprint_qualifying"
)

const (
	Practice1        = "Practice 1"
	Practice2        = "Practice 2"
	Practice3        = "Practice 3"
	Qualifying       = "Qualifying"
	SprintShootout   = "Sprint Shootout"
	SprintQualifying = "Sprint Qualifying"
	Sprint           = "Sprint"
	Race             = "Race"
)

// firstOpenF1Season is the first season OpenF1 publishes lap and car data for.
const firstOpenF1Season = 2023

// sessionWindow bounds the distance between a calendar date and the matching
// OpenF1 session start.
const sessionWindow = 36 * time.Hour

var sessionOrder = map[string][5]string{
	FormatConventional:     {Practice1, Practice2, Practice3, Qualifying, Race},
	FormatSprint:           {Practice1, Qualifying, Practice2, Sprint, Race},
	FormatSprintShootout:   {Practice1, Qualifying, SprintShootout, Sprint, Race},
	FormatSprintQualifying: {Practice1, SprintQualifying, Sprint, Qualifying, Race},
}

type ScheduledSession struct {
	Name    string
	Date    time.Time // local time at the circuit when known, UTC otherwise
	DateUTC time.Time
}

// Event is one race weekend of the calendar.
type Event struct {
	Year              int
	RoundNumber       int
	Country           string
	Location          string
	OfficialEventName string
	EventDate         time.Time
	EventName         string
	EventFormat       string
	Sessions          [5]ScheduledSession
	F1ApiSupport      bool
}

// Record renders the event as a schedule row.
func (e Event) Record() frame.Record {
	b := frame.NewBuilder(23).
		Add("RoundNumber", e.RoundNumber).
		Add("Country", frame.String(e.Country)).
		Add("Location", frame.String(e.Location)).
		Add("OfficialEventName", frame.String(e.OfficialEventName)).
		Add("EventDate", frame.Time(e.EventDate)).
		Add("EventName", frame.String(e.EventName)).
		Add("EventFormat", frame.String(e.EventFormat))
	for i, s := range e.Sessions {
		n := i + 1
		b.Add(fmt.Sprintf("Session%d", n), frame.String(s.Name)).
			Add(fmt.Sprintf("Session%dDate", n), frame.Time(s.Date)).
			Add(fmt.Sprintf("Session%dDateUtc", n), frame.Time(s.DateUTC))
	}
	return b.Add("F1ApiSupport", e.F1ApiSupport).Record()
}

// Session returns the scheduled session called name.
func (e Event) Session(name string) (ScheduledSession, bool) {
	for _, s := range e.Sessions {
		if s.Name != "" && strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return ScheduledSession{}, false
}

type Schedule []Event

func (s Schedule) Records() []frame.Record {
	out := make([]frame.Record, 0, len(s))
	for _, e := range s {
		out = append(out, e.Record())
	}
	return out
}

func (s Schedule) GetEventByRound(round int) (Event, error) {
	for _, e := range s {
		if e.RoundNumber == round {
			return e, nil
		}
	}
	return Event{}, failure.NotFound("invalid round: %d", round)
}

// GetEventByName matches the event name exactly first, ignoring case, then
// looks for name inside the event name, official name, country and location.
func (s Schedule) GetEventByName(name string) (Event, error) {
	query := strings.ToLower(strings.TrimSpace(name))
	if query == "" {
		return Event{}, failure.NotFound("no event found matching %q", name)
	}
	for _, e := range s {
		if strings.ToLower(e.EventName) == query {
			return e, nil
		}
	}
	for _, e := range s {
		for _, field := range []string{e.EventName, e.OfficialEventName, e.Country, e.Location} {
			if field != "" && strings.Contains(strings.ToLower(field), query) {
				return e, nil
			}
		}
	}
	return Event{}, failure.NotFound("no event found matching %q", name)
}

// EventSchedule returns the calendar of a season in round order.
func (c *Client) EventSchedule(ctx context.Context, year int) (Schedule, error) {
	races, err := c.ergast.Races(ctx, year)
	if err != nil {
		return nil, failure.Upstream(err, fmt.Sprintf("failed to load the %d calendar", year))
	}
	if len(races) == 0 {
		return nil, failure.NotFound("no events found for season %d", year)
	}

	var sessions []openf1.Session
	if year >= firstOpenF1Season {
		// Only used for circuit time zones; the calendar stands without it.
		sessions, err = c.openf1.Sessions(ctx, year)
		if err != nil {
			c.log.Warn("openf1 sessions unavailable", slog.Int("year", year), slog.String("error", err.Error()))
			sessions = nil
		}
	}

	schedule := make(Schedule, 0, len(races))
	for _, race := range races {
		ev, err := newEvent(year, race, sessions)
		if err != nil {
			return nil, err
		}
		schedule = append(schedule, ev)
	}
	return schedule, nil
}

// GetEvent looks an event up by round number when identifier is all digits,
// by name otherwise.
func (c *Client) GetEvent(ctx context.Context, year int, identifier string) (Event, error) {
	schedule, err := c.EventSchedule(ctx, year)
	if err != nil {
		return Event{}, err
	}
	if isDigits(identifier) {
		round, err := strconv.Atoi(identifier)
		if err != nil {
			return Event{}, failure.InvalidArgument("round", identifier, err)
		}
		return schedule.GetEventByRound(round)
	}
	return schedule.GetEventByName(identifier)
}

func newEvent(year int, race ergast.Race, sessions []openf1.Session) (Event, error) {
	round, err := strconv.Atoi(race.Round)
	if err != nil {
		return Event{}, failure.Upstream(err, fmt.Sprintf("bad round number %q", race.Round))
	}

	ev := Event{
		Year:              year,
		RoundNumber:       round,
		Country:           race.Circuit.Location.Country,
		Location:          race.Circuit.Location.Locality,
		OfficialEventName: race.RaceName,
		EventName:         race.RaceName,
		EventFormat:       eventFormat(year, race),
		F1ApiSupport:      year >= firstOpenF1Season,
	}
	if d, err := time.Parse(time.DateOnly, race.Date); err == nil {
		ev.EventDate = d
	}

	for i, name := range sessionOrder[ev.EventFormat] {
		utc := sessionDate(race, name)
		ev.Sessions[i] = ScheduledSession{
			Name:    name,
			Date:    localTime(utc, sessions),
			DateUTC: utc,
		}
	}
	return ev, nil
}

func eventFormat(year int, race ergast.Race) string {
	if race.Sprint == nil {
		return FormatConventional
	}
	switch {
	case year < 2023:
		return FormatSprint
	case year == 2023:
		return FormatSprintShootout
	default:
		return FormatSprintQualifying
	}
}

func sessionDate(race ergast.Race, name string) time.Time {
	var dt *ergast.DateTime
	switch name {
	case Practice1:
		dt = race.FirstPractice
	case Practice2:
		dt = race.SecondPractice
	case Practice3:
		dt = race.ThirdPractice
	case Qualifying:
		dt = race.Qualifying
	case Sprint:
		dt = race.Sprint
	case SprintShootout, SprintQualifying:
		dt = race.SprintQualifying
		if dt == nil {
			dt = race.SprintShootout
		}
	case Race:
		dt = &ergast.DateTime{Date: race.Date, Time: race.Time}
	}
	if dt == nil {
		return time.Time{}
	}
	return parseDateTime(dt.Date, dt.Time)
}

func parseDateTime(date, clock string) time.Time {
	if date == "" {
		return time.Time{}
	}
	if clock == "" {
		t, err := time.Parse(time.DateOnly, date)
		if err != nil {
			return time.Time{}
		}
		return t
	}
	t, err := time.Parse(time.RFC3339, date+"T"+clock)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// localTime moves utc into the circuit's time zone, taken from any OpenF1
// session of the same weekend.
func localTime(utc time.Time, sessions []openf1.Session) time.Time {
	if utc.IsZero() {
		return utc
	}
	for _, s := range sessions {
		if absDuration(s.DateStart.Sub(utc)) > sessionWindow {
			continue
		}
		if loc, ok := parseGMTOffset(s.GMTOffset); ok {
			return utc.In(loc)
		}
	}
	return utc
}

// parseGMTOffset reads OpenF1 offsets such as "03:00:00" or "-04:00:00".
func parseGMTOffset(offset string) (*time.Location, bool) {
	if offset == "" {
		return nil, false
	}
	sign := 1
	switch offset[0] {
	case '-':
		sign = -1
		offset = offset[1:]
	case '+':
		offset = offset[1:]
	}
	parts := strings.Split(offset, ":")
	if len(parts) < 2 {
		return nil, false
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, false
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, false
	}
	seconds := sign * (hours*3600 + minutes*60)
	return time.FixedZone("", seconds), true
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
