package driver

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metaaudio/fingerprint/internal/decode"
	"github.com/metaaudio/fingerprint/internal/shazam"
)

// redirectTransport forwards every request to a fixed test server regardless
// of the request's original host, letting tests exercise Client.Recognise
// without reaching the real discovery endpoint.
type redirectTransport struct {
	target *url.URL
}

func (rt redirectTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.URL.Scheme = rt.target.Scheme
	req.URL.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

func newTestDriver(t *testing.T, handler http.HandlerFunc) *Driver {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	target, err := url.Parse(server.URL)
	require.NoError(t, err)

	client := shazam.NewClient()
	client.HTTPClient = &http.Client{Transport: redirectTransport{target: target}}
	return &Driver{Client: client, Logger: log.New(io.Discard)}
}

func TestRecogniseWithRetrySucceedsWithoutRetry(t *testing.T) {
	var calls int
	d := newTestDriver(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"matches":[{"id":"1"}],"track":{"title":"Song"}}`))
	})

	result, err := d.recogniseWithRetry(context.Background(), shazam.Signature{SampleRateHz: 16000}, Options{Delay: time.Millisecond}, "x.mp3")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Len(t, result.Matches, 1)
}

func TestRecogniseWithRetryGivesUpAfterMaxRetries(t *testing.T) {
	var calls int
	d := newTestDriver(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := d.recogniseWithRetry(context.Background(), shazam.Signature{SampleRateHz: 16000}, Options{Delay: time.Millisecond}, "x.mp3")
	require.Error(t, err)
	assert.Equal(t, maxRetries+1, calls)
}

func TestOptionsBaseDelayFloorsAtMinimum(t *testing.T) {
	o := Options{Delay: time.Millisecond}
	assert.Equal(t, minRetryDelay, o.baseDelay())

	o = Options{Delay: 2 * time.Second}
	assert.Equal(t, 2*time.Second, o.baseDelay())
}

func TestCenteredWindowPassesThroughShortFiles(t *testing.T) {
	decoded := decode.Decoded{Samples: make([]int16, 1000), Duration: 10 * time.Second}
	got := centeredWindow(decoded)
	assert.Len(t, got, 1000)
}

func TestCenteredWindowSlicesLongFiles(t *testing.T) {
	total := 60 * decode.TargetSampleRate
	decoded := decode.Decoded{Samples: make([]int16, total), Duration: 60 * time.Second}
	got := centeredWindow(decoded)
	assert.Len(t, got, centeredWindowSeconds*decode.TargetSampleRate)
}
