// Package f1 assembles season calendars, sessions, laps and telemetry from the
// Ergast and OpenF1 APIs.
package f1

import (
	"context"
	"log/slog"
	"time"

	"f1databridge/pkg/ergast"
	"f1databridge/pkg/openf1"
)

// ErgastAPI is the part of the Ergast client the package relies on.
type ErgastAPI interface {
	Races(ctx context.Context, year int) ([]ergast.Race, error)
	Results(ctx context.Context, year, round int) ([]ergast.Result, error)
	SprintResults(ctx context.Context, year, round int) ([]ergast.Result, error)
	QualifyingResults(ctx context.Context, year, round int) ([]ergast.QualifyingResult, error)
	DriverStandings(ctx context.Context, year, round int) ([]ergast.StandingsList, error)
	ConstructorStandings(ctx context.Context, year, round int) ([]ergast.StandingsList, error)
}

// OpenF1API is the part of the OpenF1 client the package relies on.
type OpenF1API interface {
	Sessions(ctx context.Context, year int) ([]openf1.Session, error)
	Drivers(ctx context.Context, sessionKey int) ([]openf1.Driver, error)
	Laps(ctx context.Context, sessionKey int) ([]openf1.Lap, error)
	Stints(ctx context.Context, sessionKey int) ([]openf1.Stint, error)
	CarData(ctx context.Context, sessionKey, driverNumber int, from, to time.Time) ([]openf1.CarData, error)
	Location(ctx context.Context, sessionKey, driverNumber int, from, to time.Time) ([]openf1.Location, error)
}

type Client struct {
	ergast ErgastAPI
	openf1 OpenF1API
	log    *slog.Logger
}

func NewClient(ergastAPI ErgastAPI, openf1API OpenF1API, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		ergast: ergastAPI,
		openf1: openf1API,
		log:    logger,
	}
}
