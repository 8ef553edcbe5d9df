package settings

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-go-golems/skycast/pkg/agent"
	"github.com/go-go-golems/skycast/pkg/client"
	"github.com/go-go-golems/skycast/pkg/logging"
	"github.com/go-go-golems/skycast/pkg/server"
	"github.com/go-go-golems/skycast/pkg/weather"
	"github.com/huandu/go-clone"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	AppName   = "skycast"
	EnvPrefix = "SKYCAST"
	// APIKeyEnv is read when no agent.api-key is configured.
	APIKeyEnv = "OPENROUTER_API_KEY"

	redacted = "***"
)

// Settings is the whole configuration of skycast. Values come from defaults,
// the config file, SKYCAST_* environment variables and flags, in increasing
// precedence.
type Settings struct {
	Logging logging.Config  `mapstructure:",squash" yaml:",inline"`
	Client  ClientSettings  `mapstructure:"client" yaml:"client"`
	Server  ServerSettings  `mapstructure:"server" yaml:"server"`
	Agent   agent.Config    `mapstructure:"agent" yaml:"agent"`
	Weather WeatherSettings `mapstructure:"weather" yaml:"weather"`
	UI      UISettings      `mapstructure:"ui" yaml:"ui"`
}

type ClientSettings struct {
	URL string `mapstructure:"url" yaml:"url"`
	// Timeout bounds a chat request; 0 waits for as long as the backend takes.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type ServerSettings struct {
	Listen string `mapstructure:"listen" yaml:"listen"`
}

type WeatherSettings struct {
	BaseURL string        `mapstructure:"base-url" yaml:"base-url"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type UISettings struct {
	Plain bool `mapstructure:"plain" yaml:"plain"`
	// Style is a glamour style name; "auto" picks one from the terminal.
	Style string `mapstructure:"style" yaml:"style"`
	// ExportDir is where ctrl+s writes transcripts.
	ExportDir string `mapstructure:"export-dir" yaml:"export-dir"`
}

// SetDefaults registers every key, which also lets AutomaticEnv see them.
func SetDefaults(v *viper.Viper) {
	logDefaults := logging.DefaultConfig()
	v.SetDefault("log-level", logDefaults.Level)
	v.SetDefault("log-format", logDefaults.Format)
	v.SetDefault("log-file", "")
	v.SetDefault("with-caller", false)

	v.SetDefault("client.url", client.DefaultBaseURL)
	v.SetDefault("client.timeout", time.Duration(0))

	v.SetDefault("server.listen", server.DefaultListen)

	agentDefaults := agent.DefaultConfig()
	v.SetDefault("agent.base-url", agentDefaults.BaseURL)
	v.SetDefault("agent.api-key", "")
	v.SetDefault("agent.model", agentDefaults.Model)
	v.SetDefault("agent.temperature", agentDefaults.Temperature)
	v.SetDefault("agent.max-iterations", agentDefaults.MaxIterations)
	v.SetDefault("agent.system-prompt", agentDefaults.SystemPrompt)

	v.SetDefault("weather.base-url", weather.DefaultBaseURL)
	v.SetDefault("weather.timeout", weather.DefaultTimeout)

	v.SetDefault("ui.plain", false)
	v.SetDefault("ui.style", "auto")
	v.SetDefault("ui.export-dir", ".")
}

// InitViper sets up env handling and reads the config file. configPath wins
// over the search path (., ~/.skycast, /etc/skycast, the XDG config dir).
// A missing config file is not an error.
func InitViper(v *viper.Viper, configPath string) error {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/." + AppName)
		v.AddConfigPath("/etc/" + AppName)

		xdgConfigPath, err := os.UserConfigDir()
		if err == nil {
			v.AddConfigPath(xdgConfigPath + "/" + AppName)
		}
	}

	err := v.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "could not read config file")
	}
	return nil
}

// Load unmarshals the effective settings from v.
func Load(v *viper.Viper) (*Settings, error) {
	s := &Settings{}
	if err := v.Unmarshal(s); err != nil {
		return nil, errors.Wrap(err, "could not decode settings")
	}
	if s.Agent.APIKey == "" {
		s.Agent.APIKey = os.Getenv(APIKeyEnv)
	}
	return s, nil
}

func (s *Settings) Clone() *Settings {
	return clone.Clone(s).(*Settings)
}

// Redacted returns a copy with secrets masked.
func (s *Settings) Redacted() *Settings {
	ret := s.Clone()
	if ret.Agent.APIKey != "" {
		ret.Agent.APIKey = redacted
	}
	return ret
}

// WriteYAML writes the redacted settings as YAML.
func (s *Settings) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s.Redacted()); err != nil {
		return errors.Wrap(err, "could not encode settings")
	}
	return enc.Close()
}
