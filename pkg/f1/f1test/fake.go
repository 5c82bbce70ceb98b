// Package f1test provides in-memory Ergast and OpenF1 sources loaded with a
// small 2024 season for tests.
package f1test

import (
	"context"
	"time"

	"f1databridge/pkg/ergast"
	"f1databridge/pkg/openf1"

	"github.com/pkg/errors"
)

const (
	RaceKey       = 9472
	QualifyingKey = 9468
	PracticeKey   = 9463
)

// RaceStart is the OpenF1 start of the Bahrain race session.
var RaceStart = time.Date(2024, 3, 2, 15, 3, 0, 0, time.UTC)

// Lap2Start and Lap3Start are VER's lap start dates in the Bahrain race.
var (
	Lap2Start = time.Date(2024, 3, 2, 15, 5, 0, 0, time.UTC)
	Lap3Start = Lap2Start.Add(97284 * time.Millisecond)
)

// Ergast serves the 2024 calendar, results and standings.
type Ergast struct {
	Err error
}

func (e *Ergast) Races(_ context.Context, year int) ([]ergast.Race, error) {
	if e.Err != nil {
		return nil, e.Err
	}
	if year != 2024 {
		return nil, nil
	}
	return []ergast.Race{
		{
			Season:   "2024",
			Round:    "1",
			RaceName: "Bahrain Grand Prix",
			Circuit: ergast.Circuit{
				CircuitID:   "bahrain",
				CircuitName: "Bahrain International Circuit",
				Location:    ergast.Location{Locality: "Sakhir", Country: "Bahrain"},
			},
			Date:           "2024-03-02",
			Time:           "15:00:00Z",
			FirstPractice:  &ergast.DateTime{Date: "2024-02-29", Time: "11:30:00Z"},
			SecondPractice: &ergast.DateTime{Date: "2024-02-29", Time: "15:00:00Z"},
			ThirdPractice:  &ergast.DateTime{Date: "2024-03-01", Time: "12:30:00Z"},
			Qualifying:     &ergast.DateTime{Date: "2024-03-01", Time: "16:00:00Z"},
		},
		{
			Season:   "2024",
			Round:    "5",
			RaceName: "Chinese Grand Prix",
			Circuit: ergast.Circuit{
				CircuitID:   "shanghai",
				CircuitName: "Shanghai International Circuit",
				Location:    ergast.Location{Locality: "Shanghai", Country: "China"},
			},
			Date:             "2024-04-21",
			Time:             "07:00:00Z",
			FirstPractice:    &ergast.DateTime{Date: "2024-04-19", Time: "03:30:00Z"},
			Qualifying:       &ergast.DateTime{Date: "2024-04-20", Time: "07:00:00Z"},
			Sprint:           &ergast.DateTime{Date: "2024-04-20", Time: "03:00:00Z"},
			SprintQualifying: &ergast.DateTime{Date: "2024-04-19", Time: "07:30:00Z"},
		},
	}, nil
}

var (
	verstappen = ergast.Driver{DriverID: "max_verstappen", PermanentNumber: "33", Code: "VER", URL: "http://en.wikipedia.org/wiki/Max_Verstappen", GivenName: "Max", FamilyName: "Verstappen", DateOfBirth: "1997-09-30", Nationality: "Dutch"}
	perez      = ergast.Driver{DriverID: "perez", PermanentNumber: "11", Code: "PER", GivenName: "Sergio", FamilyName: "Pérez", DateOfBirth: "1990-01-26", Nationality: "Mexican"}
	sargeant   = ergast.Driver{DriverID: "sargeant", PermanentNumber: "2", Code: "SAR", GivenName: "Logan", FamilyName: "Sargeant", DateOfBirth: "2000-12-31", Nationality: "American"}
	redBull    = ergast.Constructor{ConstructorID: "red_bull", URL: "http://en.wikipedia.org/wiki/Red_Bull_Racing", Name: "Red Bull", Nationality: "Austrian"}
	williams   = ergast.Constructor{ConstructorID: "williams", URL: "http://en.wikipedia.org/wiki/Williams_Grand_Prix_Engineering", Name: "Williams", Nationality: "British"}
)

func (e *Ergast) Results(_ context.Context, year, round int) ([]ergast.Result, error) {
	if e.Err != nil {
		return nil, e.Err
	}
	if year != 2024 || round != 1 {
		return nil, nil
	}
	return []ergast.Result{
		{Number: "1", Position: "1", PositionText: "1", Points: "26", Driver: verstappen, Constructor: redBull, Grid: "1", Laps: "57", Status: "Finished", Time: &ergast.RaceTime{Millis: "5504742", Time: "1:31:44.742"}},
		{Number: "11", Position: "2", PositionText: "2", Points: "18", Driver: perez, Constructor: redBull, Grid: "5", Laps: "57", Status: "Finished", Time: &ergast.RaceTime{Millis: "5527199", Time: "+22.457"}},
		{Number: "2", Position: "3", PositionText: "R", Points: "0", Driver: sargeant, Constructor: williams, Grid: "16", Laps: "40", Status: "Retired"},
	}, nil
}

func (e *Ergast) SprintResults(_ context.Context, _, _ int) ([]ergast.Result, error) {
	return nil, e.Err
}

func (e *Ergast) QualifyingResults(_ context.Context, year, round int) ([]ergast.QualifyingResult, error) {
	if e.Err != nil {
		return nil, e.Err
	}
	if year != 2024 || round != 1 {
		return nil, nil
	}
	return []ergast.QualifyingResult{
		{Number: "1", Position: "1", Driver: verstappen, Constructor: redBull, Q1: "1:30.031", Q2: "1:29.374", Q3: "1:29.179"},
		{Number: "11", Position: "2", Driver: perez, Constructor: redBull, Q1: "1:30.221", Q2: "1:29.932", Q3: "1:29.537"},
		{Number: "2", Position: "3", Driver: sargeant, Constructor: williams, Q1: "1:30.770"},
	}, nil
}

func (e *Ergast) DriverStandings(_ context.Context, year, _ int) ([]ergast.StandingsList, error) {
	if e.Err != nil {
		return nil, e.Err
	}
	if year != 2024 {
		return nil, nil
	}
	return []ergast.StandingsList{{
		Season: "2024",
		Round:  "1",
		DriverStandings: []ergast.DriverStanding{
			{Position: "1", PositionText: "1", Points: "26", Wins: "1", Driver: verstappen, Constructors: []ergast.Constructor{redBull}},
			{Position: "2", PositionText: "2", Points: "18", Wins: "0", Driver: perez, Constructors: []ergast.Constructor{redBull}},
		},
	}}, nil
}

func (e *Ergast) ConstructorStandings(_ context.Context, year, _ int) ([]ergast.StandingsList, error) {
	if e.Err != nil {
		return nil, e.Err
	}
	if year != 2024 {
		return nil, nil
	}
	return []ergast.StandingsList{{
		Season: "2024",
		Round:  "1",
		ConstructorStandings: []ergast.ConstructorStanding{
			{Position: "1", PositionText: "1", Points: "44", Wins: "1", Constructor: redBull},
			{Position: "2", PositionText: "2", Points: "0", Wins: "0", Constructor: williams},
		},
	}}, nil
}

// OpenF1 serves the Bahrain practice, qualifying and race sessions.
type OpenF1 struct {
	Err error
}

func (o *OpenF1) Sessions(_ context.Context, year int) ([]openf1.Session, error) {
	if o.Err != nil {
		return nil, o.Err
	}
	if year != 2024 {
		return nil, nil
	}
	base := openf1.Session{MeetingKey: 1229, GMTOffset: "03:00:00", Location: "Sakhir", CountryName: "Bahrain", CountryCode: "BRN", CircuitShortName: "Sakhir", Year: 2024}
	fp1, quali, race := base, base, base
	fp1.SessionKey, fp1.SessionName, fp1.SessionType = PracticeKey, "Practice 1", "Practice"
	fp1.DateStart = time.Date(2024, 2, 29, 11, 30, 0, 0, time.UTC)
	quali.SessionKey, quali.SessionName, quali.SessionType = QualifyingKey, "Qualifying", "Qualifying"
	quali.DateStart = time.Date(2024, 3, 1, 16, 0, 0, 0, time.UTC)
	race.SessionKey, race.SessionName, race.SessionType = RaceKey, "Race", "Race"
	race.DateStart = RaceStart
	return []openf1.Session{fp1, quali, race}, nil
}

func (o *OpenF1) Drivers(_ context.Context, sessionKey int) ([]openf1.Driver, error) {
	if o.Err != nil {
		return nil, o.Err
	}
	return []openf1.Driver{
		{SessionKey: sessionKey, DriverNumber: 1, BroadcastName: "M VERSTAPPEN", FullName: "Max VERSTAPPEN", NameAcronym: "VER", TeamName: "Red Bull Racing", TeamColour: "3671C6", FirstName: "Max", LastName: "Verstappen", HeadshotURL: "https://example.com/ver.png", CountryCode: "NED"},
		{SessionKey: sessionKey, DriverNumber: 11, BroadcastName: "S PEREZ", FullName: "Sergio PEREZ", NameAcronym: "PER", TeamName: "Red Bull Racing", TeamColour: "3671C6", FirstName: "Sergio", LastName: "Perez", CountryCode: "MEX"},
		{SessionKey: sessionKey, DriverNumber: 2, BroadcastName: "L SARGEANT", FullName: "Logan SARGEANT", NameAcronym: "SAR", TeamName: "Williams", TeamColour: "64C4FF", FirstName: "Logan", LastName: "Sargeant", CountryCode: "USA"},
	}, nil
}

func f(v float64) *float64 { return &v }
func n(v int) *int         { return &v }
func t(v time.Time) *time.Time {
	return &v
}

func (o *OpenF1) Laps(_ context.Context, sessionKey int) ([]openf1.Lap, error) {
	if o.Err != nil {
		return nil, o.Err
	}
	if sessionKey != RaceKey {
		return nil, nil
	}
	// unordered, the session sorts by driver then lap
	return []openf1.Lap{
		{SessionKey: RaceKey, DriverNumber: 11, LapNumber: 2, DateStart: t(Lap2Start.Add(2 * time.Second)), LapDuration: f(98.0)},
		{SessionKey: RaceKey, DriverNumber: 1, LapNumber: 3, DateStart: t(Lap3Start), LapDuration: f(96.5), DurationSector1: f(30.1), DurationSector2: f(42.0), DurationSector3: f(24.4), I1Speed: n(290), I2Speed: n(240), STSpeed: n(300)},
		{SessionKey: RaceKey, DriverNumber: 1, LapNumber: 1, DurationSector2: f(41.284), IsPitOutLap: false},
		{SessionKey: RaceKey, DriverNumber: 1, LapNumber: 2, DateStart: t(Lap2Start), LapDuration: f(97.284)},
		{SessionKey: RaceKey, DriverNumber: 11, LapNumber: 1},
		{SessionKey: RaceKey, DriverNumber: 2, LapNumber: 1},
	}, nil
}

func (o *OpenF1) Stints(_ context.Context, sessionKey int) ([]openf1.Stint, error) {
	if o.Err != nil {
		return nil, o.Err
	}
	if sessionKey != RaceKey {
		return nil, nil
	}
	return []openf1.Stint{
		{SessionKey: RaceKey, DriverNumber: 1, StintNumber: 1, LapStart: 1, LapEnd: 2, Compound: "SOFT", TyreAgeAtStart: n(0)},
		{SessionKey: RaceKey, DriverNumber: 1, StintNumber: 2, LapStart: 3, LapEnd: 57, Compound: "HARD", TyreAgeAtStart: n(3)},
		{SessionKey: RaceKey, DriverNumber: 11, StintNumber: 1, LapStart: 1, LapEnd: 57, Compound: "MEDIUM", TyreAgeAtStart: n(2)},
	}, nil
}

// CarData holds three samples one second apart inside VER's lap 3.
func (o *OpenF1) CarData(_ context.Context, sessionKey, driverNumber int, from, to time.Time) ([]openf1.CarData, error) {
	if o.Err != nil {
		return nil, o.Err
	}
	if sessionKey != RaceKey || driverNumber != 1 {
		return nil, errors.Errorf("unexpected car data query %d/%d", sessionKey, driverNumber)
	}
	all := []openf1.CarData{
		{Date: Lap3Start.Add(-time.Second), DriverNumber: 1, RPM: 10000, Speed: 250, NGear: 6},
		{Date: Lap3Start.Add(16 * time.Millisecond), DriverNumber: 1, RPM: 11000, Speed: 280, NGear: 7, Throttle: 100, DRS: 12},
		{Date: Lap3Start.Add(1016 * time.Millisecond), DriverNumber: 1, RPM: 11200, Speed: 290, NGear: 7, Throttle: 100, DRS: 12},
		{Date: Lap3Start.Add(2016 * time.Millisecond), DriverNumber: 1, RPM: 9000, Speed: 300, NGear: 6, Throttle: 0, Brake: 100, DRS: 8},
	}
	out := make([]openf1.CarData, 0, len(all))
	for _, c := range all {
		if !c.Date.Before(from) && c.Date.Before(to) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (o *OpenF1) Location(_ context.Context, sessionKey, driverNumber int, from, to time.Time) ([]openf1.Location, error) {
	if o.Err != nil {
		return nil, o.Err
	}
	all := []openf1.Location{
		{Date: Lap3Start.Add(-500 * time.Millisecond), DriverNumber: 1, X: 100, Y: 200, Z: 10},
		{Date: Lap3Start.Add(1500 * time.Millisecond), DriverNumber: 1, X: 150, Y: 260, Z: 11},
	}
	out := make([]openf1.Location, 0, len(all))
	for _, l := range all {
		if !l.Date.Before(from) && l.Date.Before(to) {
			out = append(out, l)
		}
	}
	return out, nil
}
