package openf1

import "time"

type Session struct {
	SessionKey       int       `json:"session_key"`
	SessionName      string    `json:"session_name"`
	SessionType      string    `json:"session_type"`
	MeetingKey       int       `json:"meeting_key"`
	DateStart        time.Time `json:"date_start"`
	DateEnd          time.Time `json:"date_end"`
	GMTOffset        string    `json:"gmt_offset"`
	Location         string    `json:"location"`
	CountryName      string    `json:"country_name"`
	CountryCode      string    `json:"country_code"`
	CircuitShortName string    `json:"circuit_short_name"`
	Year             int       `json:"year"`
}

type Driver struct {
	SessionKey    int    `json:"session_key"`
	DriverNumber  int    `json:"driver_number"`
	BroadcastName string `json:"broadcast_name"`
	FullName      string `json:"full_name"`
	NameAcronym   string `json:"name_acronym"`
	TeamName      string `json:"team_name"`
	TeamColour    string `json:"team_colour"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	HeadshotURL   string `json:"headshot_url"`
	CountryCode   string `json:"country_code"`
}

// Lap fields are pointers where the API reports null for incomplete laps.
type Lap struct {
	SessionKey      int        `json:"session_key"`
	DriverNumber    int        `json:"driver_number"`
	LapNumber       int        `json:"lap_number"`
	DateStart       *time.Time `json:"date_start"`
	LapDuration     *float64   `json:"lap_duration"`
	DurationSector1 *float64   `json:"duration_sector_1"`
	DurationSector2 *float64   `json:"duration_sector_2"`
	DurationSector3 *float64   `json:"duration_sector_3"`
	I1Speed         *int       `json:"i1_speed"`
	I2Speed         *int       `json:"i2_speed"`
	STSpeed         *int       `json:"st_speed"`
	IsPitOutLap     bool       `json:"is_pit_out_lap"`
}

type Stint struct {
	SessionKey     int    `json:"session_key"`
	DriverNumber   int    `json:"driver_number"`
	StintNumber    int    `json:"stint_number"`
	LapStart       int    `json:"lap_start"`
	LapEnd         int    `json:"lap_end"`
	Compound       string `json:"compound"`
	TyreAgeAtStart *int   `json:"tyre_age_at_start"`
}

// CarData is one car telemetry sample, about 3.7 Hz.
type CarData struct {
	Date         time.Time `json:"date"`
	DriverNumber int       `json:"driver_number"`
	RPM          int       `json:"rpm"`
	Speed        int       `json:"speed"`
	NGear        int       `json:"n_gear"`
	Throttle     int       `json:"throttle"`
	Brake        int       `json:"brake"`
	DRS          int       `json:"drs"`
}

type Location struct {
	Date         time.Time `json:"date"`
	DriverNumber int       `json:"driver_number"`
	X            int       `json:"x"`
	Y            int       `json:"y"`
	Z            int       `json:"z"`
}
