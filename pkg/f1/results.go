package f1

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"f1databridge/pkg/ergast"
	"f1databridge/pkg/failure"
	"f1databridge/pkg/frame"
	"f1databridge/pkg/helper"
	"f1databridge/pkg/openf1"
)

// DriverResult is one participant of a session with its classification.
// Classification fields stay nil for practice sessions.
type DriverResult struct {
	DriverNumber       string
	BroadcastName      string
	Abbreviation       string
	DriverID           string
	TeamName           string
	TeamColor          string
	TeamID             string
	FirstName          string
	LastName           string
	FullName           string
	HeadshotURL        string
	CountryCode        string
	Position           *float64
	ClassifiedPosition string
	GridPosition       *float64
	Q1                 *time.Duration
	Q2                 *time.Duration
	Q3                 *time.Duration
	Time               *time.Duration
	Status             string
	Points             *float64
	Laps               *float64
}

func (r DriverResult) Record() frame.Record {
	return frame.NewBuilder(22).
		Add("DriverNumber", frame.String(r.DriverNumber)).
		Add("BroadcastName", frame.String(r.BroadcastName)).
		Add("Abbreviation", frame.String(r.Abbreviation)).
		Add("DriverId", frame.String(r.DriverID)).
		Add("TeamName", frame.String(r.TeamName)).
		Add("TeamColor", frame.String(r.TeamColor)).
		Add("TeamId", frame.String(r.TeamID)).
		Add("FirstName", frame.String(r.FirstName)).
		Add("LastName", frame.String(r.LastName)).
		Add("FullName", frame.String(r.FullName)).
		Add("HeadshotUrl", frame.String(r.HeadshotURL)).
		Add("CountryCode", frame.String(r.CountryCode)).
		Add("Position", frame.Float(r.Position)).
		Add("ClassifiedPosition", frame.String(r.ClassifiedPosition)).
		Add("GridPosition", frame.Float(r.GridPosition)).
		Add("Q1", frame.Duration(r.Q1)).
		Add("Q2", frame.Duration(r.Q2)).
		Add("Q3", frame.Duration(r.Q3)).
		Add("Time", frame.Duration(r.Time)).
		Add("Status", frame.String(r.Status)).
		Add("Points", frame.Float(r.Points)).
		Add("Laps", frame.Float(r.Laps)).
		Record()
}

func ResultRecords(results []DriverResult) []frame.Record {
	out := make([]frame.Record, 0, len(results))
	for _, r := range results {
		out = append(out, r.Record())
	}
	return out
}

func (s *Session) loadResults(ctx context.Context, drivers []openf1.Driver) ([]DriverResult, error) {
	c := s.client
	year, round := s.Event.Year, s.Event.RoundNumber

	var classified []DriverResult
	switch s.Name {
	case Race, Sprint:
		fetch := c.ergast.Results
		if s.Name == Sprint {
			fetch = c.ergast.SprintResults
		}
		rows, err := fetch(ctx, year, round)
		if err != nil {
			return nil, failure.Upstream(err, fmt.Sprintf("failed to load %s results", s.Name))
		}
		classified = raceResults(rows)
	case Qualifying:
		rows, err := c.ergast.QualifyingResults(ctx, year, round)
		if err != nil {
			return nil, failure.Upstream(err, "failed to load qualifying results")
		}
		classified = qualifyingResults(rows)
	}

	byNumber := make(map[string]openf1.Driver, len(drivers))
	for _, d := range drivers {
		byNumber[strconv.Itoa(d.DriverNumber)] = d
	}

	out := make([]DriverResult, 0, len(drivers)+len(classified))
	seen := make(map[string]bool, len(classified))
	for _, r := range classified {
		if d, ok := byNumber[r.DriverNumber]; ok {
			r = mergeDriver(r, d)
		}
		seen[r.DriverNumber] = true
		out = append(out, r)
	}
	for _, d := range drivers {
		number := strconv.Itoa(d.DriverNumber)
		if seen[number] {
			continue
		}
		seen[number] = true
		out = append(out, mergeDriver(DriverResult{DriverNumber: number}, d))
	}

	if len(out) == 0 {
		return nil, failure.NotFound("no results available for %d %s %s", year, s.Event.EventName, s.Name)
	}
	return out, nil
}

func raceResults(rows []ergast.Result) []DriverResult {
	out := make([]DriverResult, 0, len(rows))
	var winner int64
	for i, row := range rows {
		r := fromErgastDriver(row.Number, row.Driver, row.Constructor)
		r.Position = parseFloat(row.Position)
		r.ClassifiedPosition = row.PositionText
		r.GridPosition = parseFloat(row.Grid)
		r.Status = row.Status
		r.Points = parseFloat(row.Points)
		r.Laps = parseFloat(row.Laps)

		if row.Time != nil {
			if millis, err := strconv.ParseInt(row.Time.Millis, 10, 64); err == nil {
				if i == 0 {
					winner = millis
				} else {
					millis -= winner
				}
				d := time.Duration(millis) * time.Millisecond
				r.Time = &d
			}
		}
		out = append(out, r)
	}
	return out
}

func qualifyingResults(rows []ergast.QualifyingResult) []DriverResult {
	out := make([]DriverResult, 0, len(rows))
	for _, row := range rows {
		r := fromErgastDriver(row.Number, row.Driver, row.Constructor)
		r.Position = parseFloat(row.Position)
		r.Q1 = parseLapTime(row.Q1)
		r.Q2 = parseLapTime(row.Q2)
		r.Q3 = parseLapTime(row.Q3)
		out = append(out, r)
	}
	return out
}

func fromErgastDriver(number string, d ergast.Driver, team ergast.Constructor) DriverResult {
	r := DriverResult{
		DriverNumber: number,
		Abbreviation: d.Code,
		DriverID:     d.DriverID,
		TeamName:     team.Name,
		TeamID:       team.ConstructorID,
		FirstName:    d.GivenName,
		LastName:     d.FamilyName,
	}
	if d.GivenName != "" || d.FamilyName != "" {
		r.FullName = d.GivenName + " " + d.FamilyName
	}
	return r
}

// mergeDriver fills r with the OpenF1 participant data, which wins over
// Ergast for naming and team presentation.
func mergeDriver(r DriverResult, d openf1.Driver) DriverResult {
	r.BroadcastName = d.BroadcastName
	r.TeamColor = d.TeamColour
	r.HeadshotURL = d.HeadshotURL
	r.CountryCode = d.CountryCode
	if d.NameAcronym != "" {
		r.Abbreviation = d.NameAcronym
	}
	if d.TeamName != "" {
		r.TeamName = d.TeamName
	}
	if d.FirstName != "" {
		r.FirstName = d.FirstName
	}
	if d.LastName != "" {
		r.LastName = d.LastName
	}
	if d.FullName != "" {
		r.FullName = d.FullName
	}
	return r
}

func parseFloat(s string) *float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseLapTime(s string) *time.Duration {
	if s == "" {
		return nil
	}
	d, err := helper.ParseLapTime(s)
	if err != nil {
		return nil
	}
	return &d
}
