package ergast

// Response is the MRData envelope every Ergast endpoint answers with.
type Response struct {
	MRData MRData `json:"MRData"`
}

type MRData struct {
	Series         string          `json:"series"`
	URL            string          `json:"url"`
	Limit          string          `json:"limit"`
	Offset         string          `json:"offset"`
	Total          string          `json:"total"`
	RaceTable      *RaceTable      `json:"RaceTable,omitempty"`
	StandingsTable *StandingsTable `json:"StandingsTable,omitempty"`
}

type RaceTable struct {
	Season string `json:"season"`
	Round  string `json:"round"`
	Races  []Race `json:"Races"`
}

type DateTime struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type Location struct {
	Lat      string `json:"lat"`
	Long     string `json:"long"`
	Locality string `json:"locality"`
	Country  string `json:"country"`
}

type Circuit struct {
	CircuitID   string   `json:"circuitId"`
	URL         string   `json:"url"`
	CircuitName string   `json:"circuitName"`
	Location    Location `json:"Location"`
}

type Race struct {
	Season           string    `json:"season"`
	Round            string    `json:"round"`
	URL              string    `json:"url"`
	RaceName         string    `json:"raceName"`
	Circuit          Circuit   `json:"Circuit"`
	Date             string    `json:"date"`
	Time             string    `json:"time"`
	FirstPractice    *DateTime `json:"FirstPractice,omitempty"`
	SecondPractice   *DateTime `json:"SecondPractice,omitempty"`
	ThirdPractice    *DateTime `json:"ThirdPractice,omitempty"`
	Qualifying       *DateTime `json:"Qualifying,omitempty"`
	Sprint           *DateTime `json:"Sprint,omitempty"`
	SprintQualifying *DateTime `json:"SprintQualifying,omitempty"`
	SprintShootout   *DateTime `json:"SprintShootout,omitempty"`

	Results           []Result           `json:"Results,omitempty"`
	SprintResults     []Result           `json:"SprintResults,omitempty"`
	QualifyingResults []QualifyingResult `json:"QualifyingResults,omitempty"`
}

type Driver struct {
	DriverID        string `json:"driverId"`
	PermanentNumber string `json:"permanentNumber"`
	Code            string `json:"code"`
	URL             string `json:"url"`
	GivenName       string `json:"givenName"`
	FamilyName      string `json:"familyName"`
	DateOfBirth     string `json:"dateOfBirth"`
	Nationality     string `json:"nationality"`
}

type Constructor struct {
	ConstructorID string `json:"constructorId"`
	URL           string `json:"url"`
	Name          string `json:"name"`
	Nationality   string `json:"nationality"`
}

type RaceTime struct {
	Millis string `json:"millis"`
	Time   string `json:"time"`
}

type Result struct {
	Number       string      `json:"number"`
	Position     string      `json:"position"`
	PositionText string      `json:"positionText"`
	Points       string      `json:"points"`
	Driver       Driver      `json:"Driver"`
	Constructor  Constructor `json:"Constructor"`
	Grid         string      `json:"grid"`
	Laps         string      `json:"laps"`
	Status       string      `json:"status"`
	Time         *RaceTime   `json:"Time,omitempty"`
}

type QualifyingResult struct {
	Number      string      `json:"number"`
	Position    string      `json:"position"`
	Driver      Driver      `json:"Driver"`
	Constructor Constructor `json:"Constructor"`
	Q1          string      `json:"Q1"`
	Q2          string      `json:"Q2"`
	Q3          string      `json:"Q3"`
}

type StandingsTable struct {
	Season         string          `json:"season"`
	Round          string          `json:"round"`
	StandingsLists []StandingsList `json:"StandingsLists"`
}

// StandingsList is one block of standings, usually one per season/round pair.
type StandingsList struct {
	Season               string                `json:"season"`
	Round                string                `json:"round"`
	DriverStandings      []DriverStanding      `json:"DriverStandings,omitempty"`
	ConstructorStandings []ConstructorStanding `json:"ConstructorStandings,omitempty"`
}

type DriverStanding struct {
	Position     string        `json:"position"`
	PositionText string        `json:"positionText"`
	Points       string        `json:"points"`
	Wins         string        `json:"wins"`
	Driver       Driver        `json:"Driver"`
	Constructors []Constructor `json:"Constructors"`
}

type ConstructorStanding struct {
	Position     string      `json:"position"`
	PositionText string      `json:"positionText"`
	Points       string      `json:"points"`
	Wins         string      `json:"wins"`
	Constructor  Constructor `json:"Constructor"`
}
