package f1

import (
	"context"
	"fmt"

	"f1databridge/pkg/ergast"
	"f1databridge/pkg/failure"
	"f1databridge/pkg/frame"
)

// Standings returns driver and constructor standings of a season, after round
// when round is positive. Only the first standings list of each answer is used.
func (c *Client) Standings(ctx context.Context, year, round int) (drivers, constructors []frame.Record, err error) {
	dl, err := c.ergast.DriverStandings(ctx, year, round)
	if err != nil {
		return nil, nil, failure.Upstream(err, fmt.Sprintf("failed to load %d driver standings", year))
	}
	if len(dl) == 0 {
		return nil, nil, failure.NotFound("no driver standings available for %s", standingsLabel(year, round))
	}

	cl, err := c.ergast.ConstructorStandings(ctx, year, round)
	if err != nil {
		return nil, nil, failure.Upstream(err, fmt.Sprintf("failed to load %d constructor standings", year))
	}
	if len(cl) == 0 {
		return nil, nil, failure.NotFound("no constructor standings available for %s", standingsLabel(year, round))
	}

	return ergast.DriverStandingRecords(dl[0].DriverStandings),
		ergast.ConstructorStandingRecords(cl[0].ConstructorStandings),
		nil
}

func standingsLabel(year, round int) string {
	if round > 0 {
		return fmt.Sprintf("%d round %d", year, round)
	}
	return fmt.Sprintf("%d", year)
}
