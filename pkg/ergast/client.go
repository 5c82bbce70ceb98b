// Package ergast reads calendar, results and standings from an
// Ergast-compatible API.
package ergast

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

const pageLimit = 100

// Getter fetches a URL body.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

type Client struct {
	baseURL string
	getter  Getter
}

func NewClient(baseURL string, getter Getter) *Client {
	return &Client{
		baseURL: baseURL,
		getter:  getter,
	}
}

// Races returns the season calendar in round order.
func (c *Client) Races(ctx context.Context, year int) ([]Race, error) {
	table, err := c.raceTable(ctx, fmt.Sprintf("%d", year))
	if err != nil {
		return nil, err
	}
	return table.Races, nil
}

// Results returns the classified race results of one round, nil when the
// round has no results yet.
func (c *Client) Results(ctx context.Context, year, round int) ([]Result, error) {
	race, err := c.singleRace(ctx, fmt.Sprintf("%d/%d/results", year, round))
	if err != nil || race == nil {
		return nil, err
	}
	return race.Results, nil
}

func (c *Client) SprintResults(ctx context.Context, year, round int) ([]Result, error) {
	race, err := c.singleRace(ctx, fmt.Sprintf("%d/%d/sprint", year, round))
	if err != nil || race == nil {
		return nil, err
	}
	return race.SprintResults, nil
}

func (c *Client) QualifyingResults(ctx context.Context, year, round int) ([]QualifyingResult, error) {
	race, err := c.singleRace(ctx, fmt.Sprintf("%d/%d/qualifying", year, round))
	if err != nil || race == nil {
		return nil, err
	}
	return race.QualifyingResults, nil
}

// DriverStandings returns every standings list of the query. A round of 0
// asks for the latest standings of the season.
func (c *Client) DriverStandings(ctx context.Context, year, round int) ([]StandingsList, error) {
	table, err := c.standingsTable(ctx, standingsPath(year, round, "driverStandings"))
	if err != nil {
		return nil, err
	}
	return table.StandingsLists, nil
}

func (c *Client) ConstructorStandings(ctx context.Context, year, round int) ([]StandingsList, error) {
	table, err := c.standingsTable(ctx, standingsPath(year, round, "constructorStandings"))
	if err != nil {
		return nil, err
	}
	return table.StandingsLists, nil
}

func standingsPath(year, round int, endpoint string) string {
	if round > 0 {
		return fmt.Sprintf("%d/%d/%s", year, round, endpoint)
	}
	return fmt.Sprintf("%d/%s", year, endpoint)
}

func (c *Client) singleRace(ctx context.Context, path string) (*Race, error) {
	table, err := c.raceTable(ctx, path)
	if err != nil {
		return nil, err
	}
	if len(table.Races) == 0 {
		return nil, nil
	}
	return &table.Races[0], nil
}

func (c *Client) raceTable(ctx context.Context, path string) (*RaceTable, error) {
	resp, err := c.query(ctx, path)
	if err != nil {
		return nil, err
	}
	if resp.MRData.RaceTable == nil {
		return nil, errors.Errorf("ergast response for %s has no RaceTable", path)
	}
	return resp.MRData.RaceTable, nil
}

func (c *Client) standingsTable(ctx context.Context, path string) (*StandingsTable, error) {
	resp, err := c.query(ctx, path)
	if err != nil {
		return nil, err
	}
	if resp.MRData.StandingsTable == nil {
		return nil, errors.Errorf("ergast response for %s has no StandingsTable", path)
	}
	return resp.MRData.StandingsTable, nil
}

func (c *Client) query(ctx context.Context, path string) (*Response, error) {
	url := fmt.Sprintf("%s/%s.json?limit=%d", c.baseURL, path, pageLimit)
	body, err := c.getter.Get(ctx, url)
	if err != nil {
		return nil, err
	}

	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.Wrapf(err, "error decoding %s", url)
	}
	return &resp, nil
}
