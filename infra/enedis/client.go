// Package enedis fetches the half-hourly electricity balance published by
// Enedis open data (dataset bilan-electrique-demi-heure, explore API v2.1).
//
// Records carry energies in Wh per half hour. Consumption is taken from
// consommation_totale when the record has it, otherwise from the net
// withdrawal from the transmission grid, soutirage_rte minus injection_rte.
package enedis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/kilianp07/pvsim/core/model"
	"github.com/kilianp07/pvsim/core/series"
	"github.com/kilianp07/pvsim/infra/logger"
)

// DefaultBaseURL is the public records endpoint of the dataset.
const DefaultBaseURL = "https://data.enedis.fr/api/explore/v2.1/catalog/datasets/bilan-electrique-demi-heure/records"

// StepHours is the native resolution of the dataset.
const StepHours = 0.5

// DefaultPageSize is the largest page the explore API serves.
const DefaultPageSize = 100

// Record is one half-hour of the balance.
type Record struct {
	Horodate           string   `json:"horodate"`
	ConsommationTotale *float64 `json:"consommation_totale"`
	InjectionRTE       *float64 `json:"injection_rte"`
	SoutirageRTE       *float64 `json:"soutirage_rte"`
}

// ConsumptionWh returns the energy consumed during the half hour.
func (r Record) ConsumptionWh() (float64, bool) {
	if r.ConsommationTotale != nil {
		return *r.ConsommationTotale, true
	}
	if r.SoutirageRTE == nil {
		return 0, false
	}
	v := *r.SoutirageRTE
	if r.InjectionRTE != nil {
		v -= *r.InjectionRTE
	}
	return v, true
}

type page struct {
	TotalCount int      `json:"total_count"`
	Results    []Record `json:"results"`
}

// Client queries the Enedis explore API.
type Client struct {
	BaseURL  string
	HTTP     *http.Client
	PageSize int
	log      logger.Logger
}

// NewClient returns a client for baseURL. An empty URL selects DefaultBaseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		BaseURL:  baseURL,
		HTTP:     &http.Client{Timeout: timeout},
		PageSize: DefaultPageSize,
		log:      logger.New("enedis"),
	}
}

// FetchMonth returns every record of the given month, following pages until
// the reported total is reached.
func (c *Client) FetchMonth(ctx context.Context, year int, month time.Month) ([]Record, error) {
	limit := c.PageSize
	if limit <= 0 {
		limit = DefaultPageSize
	}
	var out []Record
	for offset := 0; ; {
		p, err := c.fetchPage(ctx, year, month, offset, limit)
		if err != nil {
			return nil, fmt.Errorf("%d-%02d offset %d: %w", year, month, offset, err)
		}
		out = append(out, p.Results...)
		offset += len(p.Results)
		if len(p.Results) < limit || offset >= p.TotalCount {
			break
		}
	}
	return out, nil
}

func (c *Client) fetchPage(ctx context.Context, year int, month time.Month, offset, limit int) (page, error) {
	q := url.Values{}
	q.Set("refine", fmt.Sprintf("horodate:%d/%02d", year, int(month)))
	q.Set("order_by", "horodate")
	q.Set("select", "horodate,consommation_totale,injection_rte,soutirage_rte")
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return page{}, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return page{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return page{}, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, body)
	}
	var p page
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return page{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return p, nil
}

// FetchYear returns the half-hourly consumption of year in kW, stamped in
// UTC. Months are fetched one after the other; records without a usable
// value are dropped.
func (c *Client) FetchYear(ctx context.Context, year int) (model.PowerSeries, error) {
	c.log.Infof("fetching Enedis balance for %d", year)
	var records []Record
	for m := time.January; m <= time.December; m++ {
		recs, err := c.FetchMonth(ctx, year, m)
		if err != nil {
			return model.PowerSeries{}, err
		}
		c.log.Debugf("%d-%02d: %d record(s)", year, m, len(recs))
		records = append(records, recs...)
	}
	return ToSeries(records)
}

// ToSeries converts records to a kW series sorted by time. Duplicate stamps
// keep the first record.
func ToSeries(records []Record) (model.PowerSeries, error) {
	s := model.PowerSeries{TimeStepHours: StepHours}
	seen := make(map[int64]struct{}, len(records))
	for _, r := range records {
		wh, ok := r.ConsumptionWh()
		if !ok {
			continue
		}
		ts, err := time.Parse(time.RFC3339, r.Horodate)
		if err != nil {
			return model.PowerSeries{}, fmt.Errorf("parse horodate %q: %w", r.Horodate, err)
		}
		ts = ts.UTC()
		if _, dup := seen[ts.UnixNano()]; dup {
			continue
		}
		seen[ts.UnixNano()] = struct{}{}
		s.Samples = append(s.Samples, model.Sample{Timestamp: ts, PowerKW: wh / 1000 / StepHours})
	}
	if len(s.Samples) == 0 {
		return model.PowerSeries{}, fmt.Errorf("unexpected Enedis response: no usable records")
	}
	sort.Slice(s.Samples, func(i, j int) bool { return s.Samples[i].Timestamp.Before(s.Samples[j].Timestamp) })
	if err := series.CheckContiguous("enedis", s); err != nil {
		return model.PowerSeries{}, err
	}
	return s, nil
}

// Fetch returns the consumption of year resampled to stepHours.
func (c *Client) Fetch(ctx context.Context, year int, stepHours float64) (model.PowerSeries, error) {
	s, err := c.FetchYear(ctx, year)
	if err != nil {
		return model.PowerSeries{}, err
	}
	return series.Interpolate(s, stepHours)
}
