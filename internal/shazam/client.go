package shazam

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// throttle keeps requests at least 3 seconds apart, the same courtesy
// spacing the teacher's client enforced against the discovery endpoint.
var throttle = rate.NewLimiter(rate.Every(3*time.Second), 1)

// Process-wide, computed once at package init, read-only thereafter: the
// node id backing the two UUIDs Shazam's API expects baked into the request
// path. It's derived from a 48-bit id the same way the host MAC would be,
// and the process falls back to a random node id when no hardware MAC is
// available — cached here so both UUIDs below are derived from the same
// node, matching Python's uuid.getnode() memoizing at module scope.
var processNodeDecimal = strconv.FormatUint(processNode(), 10)

var (
	tagUUID1 = strings.ToUpper(uuid.NewSHA1(uuid.NameSpaceDNS, []byte(processNodeDecimal)).String())
	tagUUID2 = uuid.NewSHA1(uuid.NameSpaceURL, []byte(processNodeDecimal)).String()
)

const discoveryURLTemplate = "https://amp.shazam.com/discovery/v5/en/US/android/-/tag/%s/%s"

// Match is one candidate recognition result.
type Match struct {
	ID            string  `json:"id"`
	Offset        float64 `json:"offset"`
	TimeSkew      float64 `json:"timeskew"`
	FrequencySkew float64 `json:"frequencyskew"`
}

// Track carries the metadata Shazam returns for the top recognition match.
type Track struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Key      string `json:"key"`
	Images   struct {
		CoverArtHQ string `json:"coverarthq"`
	} `json:"images"`
	Genres struct {
		Primary string `json:"primary"`
	} `json:"genres"`
	Sections []struct {
		Type     string `json:"type"`
		Metadata []struct {
			Title string `json:"title"`
			Text  string `json:"text"`
		} `json:"metadata"`
	} `json:"sections"`
}

// Result is the parsed recognition response.
type Result struct {
	Matches []Match `json:"matches"`
	Track   Track   `json:"track"`
	Error   string  `json:"error,omitempty"`
}

// Metadata extracts the ID3-relevant fields from a successful match's
// track, following original_source/metaaudio.py's extractmetadata.
func (r Result) Metadata() (title, artist, album, genre, label, year, coverArtURL string) {
	title, artist = r.Track.Title, r.Track.Subtitle
	genre = r.Track.Genres.Primary
	coverArtURL = r.Track.Images.CoverArtHQ
	if len(r.Track.Sections) > 0 {
		for _, meta := range r.Track.Sections[0].Metadata {
			switch meta.Title {
			case "Album":
				album = meta.Text
			case "Label":
				label = meta.Text
			case "Released", "Sortie":
				year = meta.Text
			}
		}
	}
	return
}

// Client posts signatures to the Shazam discovery endpoint.
type Client struct {
	// HTTPClient defaults to a client with a 15 second timeout.
	HTTPClient *http.Client
	// Rand defaults to a source seeded from crypto-grade entropy; tests
	// may inject a deterministic source.
	Rand *rand.Rand
}

// NewClient returns a Client ready to make recognition requests.
func NewClient() *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) randFloat64() float64 {
	if c.Rand != nil {
		return c.Rand.Float64()
	}
	return rand.Float64()
}

func (c *Client) randIntn(n int) int {
	if c.Rand != nil {
		return c.Rand.Intn(n)
	}
	return rand.Intn(n)
}

// Recognise posts sig to the Shazam discovery endpoint and returns the
// parsed result. Network and decode failures are returned as errors; the
// caller is expected to retry with backoff per spec.md's driver policy.
func (c *Client) Recognise(ctx context.Context, sig Signature) (Result, error) {
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	body, err := c.buildRequestBody(sig)
	if err != nil {
		return Result{}, fmt.Errorf("request_failed: %w", err)
	}

	url := fmt.Sprintf(discoveryURLTemplate, tagUUID1, tagUUID2) +
		"?sync=true&webv3=true&sampling=true&connected=&shazamapiversion=v3&sharehub=true&video=v3"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("request_failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Language", "en-US")
	req.Header.Set("User-Agent", userAgents[c.randIntn(len(userAgents))])

	if err := throttle.Wait(ctx); err != nil {
		return Result{}, fmt.Errorf("request_failed: %w", err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return Result{Matches: []Match{}, Error: fmt.Sprintf("request_failed: %v", err)}, fmt.Errorf("request_failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		err := fmt.Errorf("request_failed: unexpected status %s: %s", resp.Status, string(respBody))
		return Result{Matches: []Match{}, Error: err.Error()}, err
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		wrapped := fmt.Errorf("invalid_json_response: %w", err)
		return Result{Matches: []Match{}, Error: wrapped.Error()}, wrapped
	}
	if result.Matches == nil {
		result.Matches = []Match{}
	}
	return result, nil
}

func (c *Client) buildRequestBody(sig Signature) ([]byte, error) {
	fuzz := c.randFloat64()*15.3 - 7.65

	altitude := c.randFloat64()*400 + 100 + fuzz
	latitude := clamp(c.randFloat64()*180-90+fuzz, -90, 90)
	longitude := clamp(c.randFloat64()*360-180+fuzz, -180, 180)

	now := time.Now().UnixMilli()

	payload := struct {
		Geolocation struct {
			Altitude  float64 `json:"altitude"`
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"geolocation"`
		Signature struct {
			SampleMS  int64  `json:"samplems"`
			Timestamp int64  `json:"timestamp"`
			URI       string `json:"uri"`
		} `json:"signature"`
		Timestamp int64  `json:"timestamp"`
		Timezone  string `json:"timezone"`
	}{}
	payload.Geolocation.Altitude = altitude
	payload.Geolocation.Latitude = latitude
	payload.Geolocation.Longitude = longitude
	payload.Signature.SampleMS = int64(float64(sig.NumberSamples) / float64(sig.SampleRateHz) * 1000)
	payload.Signature.Timestamp = now
	payload.Signature.URI = sig.URI()
	payload.Timestamp = now
	payload.Timezone = c.pickTimezone()

	return json.Marshal(payload)
}

func (c *Client) pickTimezone() string {
	zones := europeanTimezones()
	if len(zones) == 0 {
		return "UTC"
	}
	return zones[c.randIntn(len(zones))]
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
