package cmds

import (
	"time"

	"github.com/go-go-golems/skycast/pkg/client"
	"github.com/go-go-golems/skycast/pkg/logging"
	"github.com/go-go-golems/skycast/pkg/session"
	"github.com/go-go-golems/skycast/pkg/settings"
	"github.com/spf13/cobra"
)

var clientFlagBindings = flagBindings{
	"client.url":     "url",
	"client.timeout": "timeout",
}

func addClientFlags(cmd *cobra.Command) {
	cmd.Flags().String("url", client.DefaultBaseURL, "Assistant backend URL")
	cmd.Flags().Duration("timeout", 0, "Request timeout (0 waits as long as the backend takes)")
}

// newSession builds a session answering through the remote backend, or through
// an in-process agent when local is set.
func newSession(s *settings.Settings, local bool) (*session.Session, error) {
	var assistant session.Assistant
	if local {
		a, err := newAgent(s)
		if err != nil {
			return nil, err
		}
		assistant = a
	} else {
		var opts []client.Option
		if s.Client.Timeout > time.Duration(0) {
			opts = append(opts, client.WithTimeout(s.Client.Timeout))
		}
		c, err := client.NewClient(s.Client.URL, opts...)
		if err != nil {
			return nil, err
		}
		assistant = c
	}

	return session.NewSession(assistant,
		session.WithLogger(logging.NewWithComponent("session"))), nil
}
