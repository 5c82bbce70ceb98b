package f1

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"f1databridge/pkg/failure"
	"f1databridge/pkg/openf1"
)

var sessionAliases = map[string]string{
	"fp1":               Practice1,
	"fp2":               Practice2,
	"fp3":               Practice3,
	"q":                 Qualifying,
	"sq":                SprintQualifying,
	"ss":                SprintShootout,
	"s":                 Sprint,
	"r":                 Race,
	"practice 1":        Practice1,
	"practice 2":        Practice2,
	"practice 3":        Practice3,
	"qualifying":        Qualifying,
	"sprint qualifying": SprintQualifying,
	"sprint shootout":   SprintShootout,
	"sprint":            Sprint,
	"race":              Race,
}

// Session is one timed segment of an event. It holds no data until Load.
type Session struct {
	client *Client

	Event Event
	Name  string
	Date  time.Time

	key       int
	startedAt time.Time

	loaded    bool
	telemetry bool
	results   []DriverResult
	laps      Laps
}

// GetSession resolves the event and the session inside it. Sessions accept
// abbreviations (FP1, Q, SQ, SS, S, R), full names or a 1-based number.
func (c *Client) GetSession(ctx context.Context, year int, eventID, sessionID string) (*Session, error) {
	ev, err := c.GetEvent(ctx, year, eventID)
	if err != nil {
		return nil, err
	}
	name, err := resolveSessionName(ev, sessionID)
	if err != nil {
		return nil, err
	}
	scheduled, _ := ev.Session(name)
	return &Session{
		client: c,
		Event:  ev,
		Name:   name,
		Date:   scheduled.DateUTC,
	}, nil
}

func resolveSessionName(ev Event, identifier string) (string, error) {
	if isDigits(identifier) {
		n, err := strconv.Atoi(identifier)
		if err != nil || n < 1 || n > len(ev.Sessions) || ev.Sessions[n-1].Name == "" {
			return "", failure.NotFound("session number %s does not exist for %s", identifier, ev.EventName)
		}
		return ev.Sessions[n-1].Name, nil
	}

	name, ok := sessionAliases[strings.ToLower(strings.TrimSpace(identifier))]
	if !ok {
		return "", failure.InvalidArgument("session identifier", identifier, nil)
	}
	// SQ and SS name the same slot in 2023 and 2024+ weekends.
	switch {
	case name == SprintQualifying && ev.EventFormat == FormatSprintShootout:
		name = SprintShootout
	case name == SprintShootout && ev.EventFormat == FormatSprintQualifying:
		name = SprintQualifying
	}
	if _, ok := ev.Session(name); !ok {
		return "", failure.NotFound("session type %q does not exist for %s", identifier, ev.EventName)
	}
	return name, nil
}

// Load fetches participants, classification and laps. Telemetry can only be
// requested from a session loaded with withTelemetry.
func (s *Session) Load(ctx context.Context, withTelemetry bool) error {
	c := s.client
	started := time.Now()

	of1, err := s.findOpenF1Session(ctx)
	if err != nil {
		return err
	}

	var drivers []openf1.Driver
	if of1 != nil {
		s.key = of1.SessionKey
		s.startedAt = of1.DateStart
		drivers, err = c.openf1.Drivers(ctx, s.key)
		if err != nil {
			return failure.Upstream(err, "failed to load drivers")
		}
	}

	s.results, err = s.loadResults(ctx, drivers)
	if err != nil {
		return err
	}

	if of1 != nil {
		s.laps, err = s.loadLaps(ctx, drivers)
		if err != nil {
			return err
		}
	}

	s.loaded = true
	s.telemetry = withTelemetry
	c.log.Debug("session loaded",
		slog.Int("year", s.Event.Year),
		slog.String("event", s.Event.EventName),
		slog.String("session", s.Name),
		slog.Int("session_key", s.key),
		slog.Int("drivers", len(s.results)),
		slog.Int("laps", len(s.laps)),
		slog.Duration("took", time.Since(started)),
	)
	return nil
}

// findOpenF1Session returns nil when the season has no OpenF1 coverage.
func (s *Session) findOpenF1Session(ctx context.Context) (*openf1.Session, error) {
	if s.Event.Year < firstOpenF1Season {
		return nil, nil
	}
	sessions, err := s.client.openf1.Sessions(ctx, s.Event.Year)
	if err != nil {
		return nil, failure.Upstream(err, fmt.Sprintf("failed to load the %d sessions", s.Event.Year))
	}
	for i := range sessions {
		if s.matches(sessions[i]) {
			return &sessions[i], nil
		}
	}
	s.client.log.Info("no openf1 session",
		slog.Int("year", s.Event.Year),
		slog.String("event", s.Event.EventName),
		slog.String("session", s.Name),
	)
	return nil, nil
}

func (s *Session) matches(o openf1.Session) bool {
	if !strings.EqualFold(o.SessionName, s.Name) {
		return false
	}
	if !s.Date.IsZero() {
		return absDuration(o.DateStart.Sub(s.Date)) <= sessionWindow
	}
	return strings.EqualFold(o.Location, s.Event.Location) || strings.EqualFold(o.CountryName, s.Event.Country)
}

func (s *Session) checkLoaded() error {
	if !s.loaded {
		return failure.Internal("session %s %s has not been loaded", s.Event.EventName, s.Name)
	}
	return nil
}

// Results lists the participants, classified first.
func (s *Session) Results() ([]DriverResult, error) {
	if err := s.checkLoaded(); err != nil {
		return nil, err
	}
	return s.results, nil
}

// GetDriver finds a participant by abbreviation or racing number.
func (s *Session) GetDriver(identifier string) (DriverResult, error) {
	if err := s.checkLoaded(); err != nil {
		return DriverResult{}, err
	}
	for _, r := range s.results {
		if r.Abbreviation == identifier || r.DriverNumber == identifier {
			return r, nil
		}
	}
	return DriverResult{}, failure.NotFound("invalid driver identifier %q", identifier)
}

// Laps returns every lap of the session, grouped by driver.
func (s *Session) Laps() (Laps, error) {
	if err := s.checkLoaded(); err != nil {
		return nil, err
	}
	if s.key == 0 {
		return nil, failure.NotFound("no lap timing data for %d %s %s", s.Event.Year, s.Event.EventName, s.Name)
	}
	return s.laps, nil
}
