package cmds

import (
	"github.com/go-go-golems/skycast/pkg/agent"
	"github.com/go-go-golems/skycast/pkg/logging"
	"github.com/go-go-golems/skycast/pkg/settings"
	"github.com/go-go-golems/skycast/pkg/weather"
	"github.com/spf13/cobra"
)

const weatherToolName = "get_weather"

var agentFlagBindings = flagBindings{
	"agent.model":      "model",
	"agent.base-url":   "base-url",
	"agent.api-key":    "api-key",
	"weather.base-url": "weather-url",
}

// addAgentFlags registers the flags shared by everything that runs the agent
// in-process.
func addAgentFlags(cmd *cobra.Command) {
	cmd.Flags().String("model", agent.DefaultModel, "Model name")
	cmd.Flags().String("base-url", agent.DefaultBaseURL, "OpenAI-compatible API base URL")
	cmd.Flags().String("api-key", "", "API key (default $"+settings.APIKeyEnv+")")
	cmd.Flags().String("weather-url", weather.DefaultBaseURL, "Weather service URL")
}

// newAgent wires the weather tool into an agent talking to the configured
// OpenAI-compatible endpoint.
func newAgent(s *settings.Settings) (*agent.Agent, error) {
	weatherClient := weather.NewClient(s.Weather.BaseURL, weather.WithTimeout(s.Weather.Timeout))

	tools, err := agent.NewToolbox(agent.Tool{
		Name:        weatherToolName,
		Description: "Get current weather for a city.",
		Func:        weatherClient.GetWeather,
	})
	if err != nil {
		return nil, err
	}

	openaiClient, err := agent.NewOpenAIClient(s.Agent)
	if err != nil {
		return nil, err
	}

	return agent.New(openaiClient, tools, s.Agent,
		agent.WithLogger(logging.NewWithComponent("agent")))
}
