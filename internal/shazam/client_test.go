package shazam

import (
	"encoding/json"
	"math/rand"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRequestBodyClampsGeolocation(t *testing.T) {
	c := &Client{Rand: rand.New(rand.NewSource(1))}
	sig := Signature{SampleRateHz: 16000, NumberSamples: 16000}

	for seed := int64(0); seed < 50; seed++ {
		c.Rand = rand.New(rand.NewSource(seed))
		body, err := c.buildRequestBody(sig)
		require.NoError(t, err)

		var decoded struct {
			Geolocation struct {
				Latitude  float64 `json:"latitude"`
				Longitude float64 `json:"longitude"`
			} `json:"geolocation"`
		}
		require.NoError(t, json.Unmarshal(body, &decoded))
		assert.GreaterOrEqual(t, decoded.Geolocation.Latitude, -90.0)
		assert.LessOrEqual(t, decoded.Geolocation.Latitude, 90.0)
		assert.GreaterOrEqual(t, decoded.Geolocation.Longitude, -180.0)
		assert.LessOrEqual(t, decoded.Geolocation.Longitude, 180.0)
	}
}

func TestBuildRequestBodyCarriesSignatureURI(t *testing.T) {
	c := &Client{Rand: rand.New(rand.NewSource(42))}
	sig := Signature{SampleRateHz: 16000, NumberSamples: 32000}
	body, err := c.buildRequestBody(sig)
	require.NoError(t, err)

	var decoded struct {
		Signature struct {
			URI      string `json:"uri"`
			SampleMS int64  `json:"samplems"`
		} `json:"signature"`
	}
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, sig.URI(), decoded.Signature.URI)
	assert.Equal(t, int64(2000), decoded.Signature.SampleMS)
}

func TestPickTimezoneReturnsAEuropeanZone(t *testing.T) {
	c := &Client{Rand: rand.New(rand.NewSource(7))}
	zone := c.pickTimezone()
	assert.Contains(t, europeanTimezones(), zone)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, clamp(-5, 0, 10))
	assert.Equal(t, 10.0, clamp(15, 0, 10))
	assert.Equal(t, 5.0, clamp(5, 0, 10))
}

func TestResultMetadataExtractsSectionFields(t *testing.T) {
	var r Result
	require.NoError(t, json.Unmarshal([]byte(`{
		"track": {
			"title": "Song",
			"subtitle": "Artist",
			"genres": {"primary": "Pop"},
			"images": {"coverarthq": "https://example.com/cover.jpg"},
			"sections": [{
				"type": "SONG",
				"metadata": [
					{"title": "Album", "text": "Greatest Hits"},
					{"title": "Label", "text": "Example Records"},
					{"title": "Released", "text": "2020"}
				]
			}]
		}
	}`), &r))

	title, artist, album, genre, label, year, coverArtURL := r.Metadata()
	assert.Equal(t, "Song", title)
	assert.Equal(t, "Artist", artist)
	assert.Equal(t, "Greatest Hits", album)
	assert.Equal(t, "Pop", genre)
	assert.Equal(t, "Example Records", label)
	assert.Equal(t, "2020", year)
	assert.Equal(t, "https://example.com/cover.jpg", coverArtURL)
}

func TestTagUUIDsAreStableAndDistinct(t *testing.T) {
	assert.NotEmpty(t, tagUUID1)
	assert.NotEmpty(t, tagUUID2)
	assert.NotEqual(t, tagUUID1, tagUUID2)
}

func TestTagUUIDsShareTheSameNode(t *testing.T) {
	node := processNodeDecimal
	assert.Equal(t, strings.ToUpper(uuid.NewSHA1(uuid.NameSpaceDNS, []byte(node)).String()), tagUUID1)
	assert.Equal(t, uuid.NewSHA1(uuid.NameSpaceURL, []byte(node)).String(), tagUUID2)
}
