package ergast

import (
	"strconv"
	"time"

	"f1databridge/pkg/frame"
)

// DriverStandingRecords flattens driver standings into rows, one
// constructor column per attribute holding the list of the driver's teams.
func DriverStandingRecords(rows []DriverStanding) []frame.Record {
	out := make([]frame.Record, 0, len(rows))
	for _, r := range rows {
		ids := make([]string, 0, len(r.Constructors))
		urls := make([]string, 0, len(r.Constructors))
		names := make([]string, 0, len(r.Constructors))
		nationalities := make([]string, 0, len(r.Constructors))
		for _, c := range r.Constructors {
			ids = append(ids, c.ConstructorID)
			urls = append(urls, c.URL)
			names = append(names, c.Name)
			nationalities = append(nationalities, c.Nationality)
		}

		out = append(out, frame.NewBuilder(16).
			Add("position", intOrNA(r.Position)).
			Add("positionText", frame.String(r.PositionText)).
			Add("points", floatOrNA(r.Points)).
			Add("wins", intOrNA(r.Wins)).
			Add("driverId", frame.String(r.Driver.DriverID)).
			Add("driverNumber", intOrNA(r.Driver.PermanentNumber)).
			Add("driverCode", frame.String(r.Driver.Code)).
			Add("driverUrl", frame.String(r.Driver.URL)).
			Add("givenName", frame.String(r.Driver.GivenName)).
			Add("familyName", frame.String(r.Driver.FamilyName)).
			Add("dateOfBirth", dateOrNA(r.Driver.DateOfBirth)).
			Add("driverNationality", frame.String(r.Driver.Nationality)).
			Add("constructorIds", ids).
			Add("constructorUrls", urls).
			Add("constructorNames", names).
			Add("constructorNationalities", nationalities).
			Record())
	}
	return out
}

func ConstructorStandingRecords(rows []ConstructorStanding) []frame.Record {
	out := make([]frame.Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, frame.NewBuilder(8).
			Add("position", intOrNA(r.Position)).
			Add("positionText", frame.String(r.PositionText)).
			Add("points", floatOrNA(r.Points)).
			Add("wins", intOrNA(r.Wins)).
			Add("constructorId", frame.String(r.Constructor.ConstructorID)).
			Add("constructorUrl", frame.String(r.Constructor.URL)).
			Add("constructorName", frame.String(r.Constructor.Name)).
			Add("constructorNationality", frame.String(r.Constructor.Nationality)).
			Record())
	}
	return out
}

func intOrNA(s string) any {
	v, err := strconv.Atoi(s)
	if err != nil {
		return frame.NA
	}
	return v
}

func floatOrNA(s string) any {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return frame.NA
	}
	return v
}

func dateOrNA(s string) any {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return frame.NA
	}
	return t
}
