// Package pvgis fetches hourly photovoltaic production from the European
// Commission PVGIS seriescalc API.
package pvgis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kilianp07/pvsim/core/model"
	"github.com/kilianp07/pvsim/core/series"
	"github.com/kilianp07/pvsim/infra/logger"
)

// DefaultBaseURL is the public seriescalc endpoint.
const DefaultBaseURL = "https://re.jrc.ec.europa.eu/api/v5_2/seriescalc"

// timeLayout is the PVGIS hourly stamp, e.g. 20240101:0010.
const timeLayout = "20060102:1504"

// Request describes the simulated installation.
type Request struct {
	Latitude    float64
	Longitude   float64
	StartYear   int
	EndYear     int
	PeakPowerKW float64
	LossPercent float64
	Angle       float64
	Aspect      float64
}

// DefaultRequest returns a 100 kWp building-mounted installation for one year.
func DefaultRequest(lat, lon float64, year int) Request {
	return Request{
		Latitude:    lat,
		Longitude:   lon,
		StartYear:   year,
		EndYear:     year,
		PeakPowerKW: 100,
		LossPercent: 14,
		Angle:       35,
		Aspect:      0,
	}
}

// Client queries PVGIS.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	log     logger.Logger
}

// NewClient returns a client for baseURL. An empty URL selects DefaultBaseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: timeout},
		log:     logger.New("pvgis"),
	}
}

type response struct {
	Outputs struct {
		Hourly []struct {
			Time string  `json:"time"`
			P    float64 `json:"P"`
		} `json:"hourly"`
	} `json:"outputs"`
}

func (r Request) values() url.Values {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	q := url.Values{}
	q.Set("lat", f(r.Latitude))
	q.Set("lon", f(r.Longitude))
	q.Set("startyear", strconv.Itoa(r.StartYear))
	q.Set("endyear", strconv.Itoa(r.EndYear))
	q.Set("pvcalculation", "1")
	q.Set("peakpower", f(r.PeakPowerKW))
	q.Set("loss", f(r.LossPercent))
	q.Set("mountingplace", "building")
	q.Set("angle", f(r.Angle))
	q.Set("aspect", f(r.Aspect))
	q.Set("outputformat", "json")
	return q
}

// FetchHourly returns hourly production in kW, stamped at the start of each
// hour in UTC.
func (c *Client) FetchHourly(ctx context.Context, r Request) (model.PowerSeries, error) {
	u := c.BaseURL + "?" + r.values().Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return model.PowerSeries{}, fmt.Errorf("failed to create request: %w", err)
	}
	c.log.Infof("fetching PVGIS series lat=%.4f lon=%.4f %d-%d", r.Latitude, r.Longitude, r.StartYear, r.EndYear)
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return model.PowerSeries{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return model.PowerSeries{}, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, body)
	}
	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return model.PowerSeries{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(out.Outputs.Hourly) == 0 {
		return model.PowerSeries{}, fmt.Errorf("unexpected PVGIS response: no hourly outputs")
	}

	s := model.PowerSeries{TimeStepHours: 1, Samples: make([]model.Sample, 0, len(out.Outputs.Hourly))}
	for _, h := range out.Outputs.Hourly {
		ts, err := time.ParseInLocation(timeLayout, h.Time, time.UTC)
		if err != nil {
			return model.PowerSeries{}, fmt.Errorf("parse time %q: %w", h.Time, err)
		}
		s.Samples = append(s.Samples, model.Sample{Timestamp: ts.Truncate(time.Hour), PowerKW: h.P / 1000})
	}
	if err := series.CheckOrder("pvgis", s); err != nil {
		return model.PowerSeries{}, err
	}
	return s, nil
}

// Fetch returns production resampled to stepHours.
func (c *Client) Fetch(ctx context.Context, r Request, stepHours float64) (model.PowerSeries, error) {
	hourly, err := c.FetchHourly(ctx, r)
	if err != nil {
		return model.PowerSeries{}, err
	}
	return series.Interpolate(hourly, stepHours)
}
