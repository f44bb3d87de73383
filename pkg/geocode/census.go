package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
)

const (
	censusOneLineURL = "https://geocoding.geo.census.gov/geocoder/locations/onelineaddress"
	censusBenchmark  = "Public_AR_Current"
)

// censusOneLineResponse is the JSON response from the Census single-address API.
type censusOneLineResponse struct {
	Result struct {
		AddressMatches []censusAddressMatch `json:"addressMatches"`
	} `json:"result"`
}

type censusAddressMatch struct {
	Coordinates struct {
		X float64 `json:"x"` // longitude
		Y float64 `json:"y"` // latitude
	} `json:"coordinates"`
	MatchedAddress string `json:"matchedAddress"`
}

// Locate implements Client using the Census one-line API.
func (g *geocoder) Locate(ctx context.Context, location string) (*Result, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return &Result{Matched: false}, nil
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "geocode: census rate limit")
	}

	params := url.Values{
		"address":   {location},
		"benchmark": {censusBenchmark},
		"format":    {"json"},
	}

	reqURL := g.baseURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: census build request")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: census request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("geocode: census returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: census read body")
	}

	var censusResp censusOneLineResponse
	if err := json.Unmarshal(body, &censusResp); err != nil {
		return nil, eris.Wrap(err, "geocode: census parse response")
	}

	if len(censusResp.Result.AddressMatches) == 0 {
		return &Result{Matched: false}, nil
	}

	match := censusResp.Result.AddressMatches[0]
	return &Result{
		Latitude:  match.Coordinates.Y,
		Longitude: match.Coordinates.X,
		Matched:   true,
	}, nil
}
