// Package openf1 reads session, lap and telemetry data from the OpenF1 API.
package openf1

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"f1databridge/pkg/fetch"

	"github.com/pkg/errors"
)

const queryTimeLayout = "2006-01-02T15:04:05.000"

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

func (c *Client) Sessions(ctx context.Context, year int) ([]Session, error) {
	var out []Session
	err := c.query(ctx, fmt.Sprintf("sessions?year=%d", year), &out)
	return out, err
}

func (c *Client) Drivers(ctx context.Context, sessionKey int) ([]Driver, error) {
	var out []Driver
	err := c.query(ctx, fmt.Sprintf("drivers?session_key=%d", sessionKey), &out)
	return out, err
}

func (c *Client) Laps(ctx context.Context, sessionKey int) ([]Lap, error) {
	var out []Lap
	err := c.query(ctx, fmt.Sprintf("laps?session_key=%d", sessionKey), &out)
	return out, err
}

func (c *Client) Stints(ctx context.Context, sessionKey int) ([]Stint, error) {
	var out []Stint
	err := c.query(ctx, fmt.Sprintf("stints?session_key=%d", sessionKey), &out)
	return out, err
}

// CarData returns the samples of one car with from <= date < to.
func (c *Client) CarData(ctx context.Context, sessionKey, driverNumber int, from, to time.Time) ([]CarData, error) {
	var out []CarData
	err := c.query(ctx, "car_data?"+windowQuery(sessionKey, driverNumber, from, to), &out)
	return out, err
}

func (c *Client) Location(ctx context.Context, sessionKey, driverNumber int, from, to time.Time) ([]Location, error) {
	var out []Location
	err := c.query(ctx, "location?"+windowQuery(sessionKey, driverNumber, from, to), &out)
	return out, err
}

func windowQuery(sessionKey, driverNumber int, from, to time.Time) string {
	return fmt.Sprintf("session_key=%d&driver_number=%d&date>=%s&date<%s",
		sessionKey, driverNumber,
		from.UTC().Format(queryTimeLayout), to.UTC().Format(queryTimeLayout))
}

func (c *Client) query(ctx context.Context, path string, out any) error {
	url := c.baseURL + "/" + path
	body, err := c.getter.Get(ctx, url)
	if err != nil {
		// OpenF1 answers 404 when a filter matches nothing
		if fetch.IsNotFound(err) {
			return nil
		}
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrapf(err, "error decoding %s", url)
	}
	return nil
}
