package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-go-golems/skycast/pkg/security"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	DefaultBaseURL = "https://wttr.in"
	DefaultTimeout = 10 * time.Second
)

// ErrNotFound is returned when the weather service has no data for a city.
var ErrNotFound = errors.New("no weather data for city")

// Conditions are the current conditions for a city as reported by wttr.in.
type Conditions struct {
	City        string
	TempC       string
	TempF       string
	FeelsLikeC  string
	Humidity    string
	Description string
	WindKmph    string
}

// Report renders the conditions the way they are handed to the model.
func (c *Conditions) Report() string {
	return fmt.Sprintf(`Weather in %s:
🌡️ Temperature: %s°C (%s°F)
🤔 Feels like: %s°C
☁️ Conditions: %s
💧 Humidity: %s%%
💨 Wind Speed: %s km/h`,
		c.City, c.TempC, c.TempF, c.FeelsLikeC, c.Description, c.Humidity, c.WindKmph)
}

// j1Response is the subset of wttr.in's ?format=j1 payload we read.
type j1Response struct {
	CurrentCondition []struct {
		TempC       string `json:"temp_C"`
		TempF       string `json:"temp_F"`
		FeelsLikeC  string `json:"FeelsLikeC"`
		Humidity    string `json:"humidity"`
		WindKmph    string `json:"windspeedKmph"`
		WeatherDesc []struct {
			Value string `json:"value"`
		} `json:"weatherDesc"`
	} `json:"current_condition"`
}

type Client struct {
	httpClient *http.Client
	BaseURL    string
	urlOptions security.OutboundURLOptions

	timeout    time.Duration
	hasTimeout bool
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithURLOptions relaxes outbound URL validation, e.g. for a local mirror.
func WithURLOptions(opts security.OutboundURLOptions) Option {
	return func(c *Client) {
		c.urlOptions = opts
	}
}

// WithTimeout overrides DefaultTimeout. A client passed with WithHTTPClient is
// copied, not modified.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
		c.hasTimeout = true
	}
}

func NewClient(baseURL string, options ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	ret := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		BaseURL:    strings.TrimRight(baseURL, "/"),
	}
	for _, option := range options {
		option(ret)
	}
	if ret.httpClient == nil {
		ret.httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if ret.hasTimeout {
		httpClient := *ret.httpClient
		httpClient.Timeout = ret.timeout
		ret.httpClient = &httpClient
	}
	return ret
}

// Current fetches the current conditions for city.
func (c *Client) Current(ctx context.Context, city string) (*Conditions, error) {
	if err := security.ValidateOutboundURL(c.BaseURL, c.urlOptions); err != nil {
		return nil, errors.Wrap(err, "invalid weather service URL")
	}
	endpoint := fmt.Sprintf("%s/%s?format=j1", c.BaseURL, url.PathEscape(city))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("city", city).Str("url", req.URL.String()).Msg("fetching weather")

	// #nosec G107 -- base URL is validated above.
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(ErrNotFound, "status %d for %s", resp.StatusCode, city)
	}

	var data j1Response
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, errors.Wrap(err, "could not decode weather data")
	}
	if len(data.CurrentCondition) == 0 {
		return nil, errors.New("weather data has no current_condition")
	}
	current := data.CurrentCondition[0]
	if len(current.WeatherDesc) == 0 {
		return nil, errors.New("weather data has no weatherDesc")
	}

	return &Conditions{
		City:        city,
		TempC:       current.TempC,
		TempF:       current.TempF,
		FeelsLikeC:  current.FeelsLikeC,
		Humidity:    current.Humidity,
		Description: current.WeatherDesc[0].Value,
		WindKmph:    current.WindKmph,
	}, nil
}

// Request is the argument of the get_weather tool.
type Request struct {
	City string `json:"city" jsonschema:"required,description=Name of the city to get the current weather for"`
}

// GetWeather is the get_weather tool: it never fails, errors are reported as text
// so the model can relay them.
func (c *Client) GetWeather(ctx context.Context, req Request) string {
	conditions, err := c.Current(ctx, req.City)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Sprintf("Sorry, I couldn't find weather data for %s. Please check the city name.", req.City)
		}
		log.Warn().Err(err).Str("city", req.City).Msg("weather lookup failed")
		return fmt.Sprintf("Error fetching weather: %s", err)
	}
	return conditions.Report()
}
