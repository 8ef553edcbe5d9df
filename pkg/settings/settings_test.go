package settings

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-go-golems/skycast/pkg/agent"
	"github.com/go-go-golems/skycast/pkg/client"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func isolate(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv(APIKeyEnv, "")
	chdir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(chdir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestInitViper_ExplicitMissingFile(t *testing.T) {
	isolate(t)
	require.Error(t, InitViper(viper.New(), filepath.Join(t.TempDir(), "missing.yaml")))
}

func TestLoad_DefaultsWithoutConfigFile(t *testing.T) {
	isolate(t)

	v := viper.New()
	require.NoError(t, InitViper(v, ""))
	s, err := Load(v)
	require.NoError(t, err)

	require.Equal(t, client.DefaultBaseURL, s.Client.URL)
	require.Equal(t, time.Duration(0), s.Client.Timeout)
	require.Equal(t, ":8000", s.Server.Listen)
	require.Equal(t, agent.DefaultModel, s.Agent.Model)
	require.Equal(t, agent.DefaultMaxIterations, s.Agent.MaxIterations)
	require.InDelta(t, agent.DefaultTemperature, s.Agent.Temperature, 0.0001)
	require.Equal(t, "https://wttr.in", s.Weather.BaseURL)
	require.Equal(t, 10*time.Second, s.Weather.Timeout)
	require.Equal(t, "info", s.Logging.Level)
	require.Equal(t, "auto", s.UI.Style)
	require.Empty(t, s.Agent.APIKey)
}

func TestLoad_FileEnvAndFallbackKey(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
log-level: debug
client:
  url: http://weather.internal:9000
  timeout: 30s
agent:
  model: openai/gpt-4o-mini
ui:
  plain: true
`), 0o600))

	t.Setenv("SKYCAST_SERVER_LISTEN", ":9999")
	t.Setenv(APIKeyEnv, "sk-fallback")

	v := viper.New()
	require.NoError(t, InitViper(v, configPath))
	s, err := Load(v)
	require.NoError(t, err)

	require.Equal(t, "debug", s.Logging.Level)
	require.Equal(t, "http://weather.internal:9000", s.Client.URL)
	require.Equal(t, 30*time.Second, s.Client.Timeout)
	require.Equal(t, "openai/gpt-4o-mini", s.Agent.Model)
	require.True(t, s.UI.Plain)
	require.Equal(t, ":9999", s.Server.Listen)
	require.Equal(t, "sk-fallback", s.Agent.APIKey)

	t.Setenv("SKYCAST_AGENT_API_KEY", "sk-explicit")
	s, err = Load(v)
	require.NoError(t, err)
	require.Equal(t, "sk-explicit", s.Agent.APIKey)
}

func TestInitViper_BrokenConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("client: [unclosed"), 0o600))
	require.Error(t, InitViper(viper.New(), configPath))
}

func TestCloneAndRedaction(t *testing.T) {
	s := &Settings{Agent: agent.Config{APIKey: "sk-secret", Model: "m"}}

	c := s.Clone()
	c.Agent.Model = "other"
	require.Equal(t, "m", s.Agent.Model)

	var buf bytes.Buffer
	require.NoError(t, s.WriteYAML(&buf))
	require.NotContains(t, buf.String(), "sk-secret")
	require.Equal(t, "sk-secret", s.Agent.APIKey)

	var dumped map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &dumped))
	require.Equal(t, redacted, dumped["agent"].(map[string]interface{})["api-key"])
}
