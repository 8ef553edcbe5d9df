package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-go-golems/skycast/pkg/security"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const parisJ1 = `{
  "current_condition": [{
    "temp_C": "22",
    "temp_F": "72",
    "FeelsLikeC": "23",
    "humidity": "40",
    "windspeedKmph": "11",
    "weatherDesc": [{"value": "Sunny"}]
  }]
}`

func newLocalClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, WithURLOptions(security.LocalServiceOptions))
}

func TestCurrent_ParsesJ1(t *testing.T) {
	c := newLocalClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/New York", r.URL.Path)
		assert.Equal(t, "j1", r.URL.Query().Get("format"))
		_, _ = w.Write([]byte(parisJ1))
	})

	conditions, err := c.Current(context.Background(), "New York")
	require.NoError(t, err)
	require.Equal(t, &Conditions{
		City:        "New York",
		TempC:       "22",
		TempF:       "72",
		FeelsLikeC:  "23",
		Humidity:    "40",
		Description: "Sunny",
		WindKmph:    "11",
	}, conditions)
}

func TestConditionsReport(t *testing.T) {
	c := &Conditions{City: "Paris", TempC: "22", TempF: "72", FeelsLikeC: "23", Humidity: "40", Description: "Sunny", WindKmph: "11"}
	report := c.Report()

	lines := strings.Split(report, "\n")
	require.Len(t, lines, 6)
	require.Equal(t, "Weather in Paris:", lines[0])
	require.Contains(t, lines[1], "22°C (72°F)")
	require.Contains(t, lines[2], "Feels like: 23°C")
	require.Contains(t, lines[3], "Conditions: Sunny")
	require.Contains(t, lines[4], "Humidity: 40%")
	require.Contains(t, lines[5], "Wind Speed: 11 km/h")
}

func TestGetWeather(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		payload  string
		expected string
	}{
		{name: "found", status: http.StatusOK, payload: parisJ1, expected: "Weather in Atlantis:"},
		{name: "not found", status: http.StatusNotFound, payload: "Unknown location", expected: "Sorry, I couldn't find weather data for Atlantis. Please check the city name."},
		{name: "bad payload", status: http.StatusOK, payload: "not json", expected: "Error fetching weather: "},
		{name: "no conditions", status: http.StatusOK, payload: `{"current_condition": []}`, expected: "Error fetching weather: "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newLocalClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.payload))
			})
			out := c.GetWeather(context.Background(), Request{City: "Atlantis"})
			require.True(t, strings.HasPrefix(out, tt.expected), out)
		})
	}
}

func TestNewClient_Timeouts(t *testing.T) {
	c := NewClient("")
	require.Equal(t, DefaultTimeout, c.httpClient.Timeout)

	c = NewClient("", WithHTTPClient(nil), WithTimeout(time.Second))
	require.Equal(t, time.Second, c.httpClient.Timeout)

	caller := &http.Client{}
	c = NewClient("", WithTimeout(time.Second), WithHTTPClient(caller))
	require.Equal(t, time.Second, c.httpClient.Timeout)
	require.Zero(t, caller.Timeout)
}

func TestCurrent_RejectsLocalURLByDefault(t *testing.T) {
	c := NewClient("http://127.0.0.1:1")
	_, err := c.Current(context.Background(), "Paris")
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrNotFound))

	require.Equal(t, DefaultBaseURL, NewClient("").BaseURL)
}
