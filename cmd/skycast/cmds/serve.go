package cmds

import (
	"github.com/go-go-golems/skycast/pkg/logging"
	"github.com/go-go-golems/skycast/pkg/server"
	"github.com/go-go-golems/skycast/pkg/settings"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func NewServeCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Run the weather assistant backend (POST /chat)",
		Args:    cobra.NoArgs,
		PreRunE: bindFlagsPreRun(v, mergeBindings(agentFlagBindings, flagBindings{"server.listen": "listen"})),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := settings.Load(v)
			if err != nil {
				return err
			}

			a, err := newAgent(s)
			if err != nil {
				return err
			}

			srv := server.New(a, s.Server.Listen,
				server.WithLogger(logging.NewWithComponent("server")))

			return srv.ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().String("listen", server.DefaultListen, "Address to listen on")
	addAgentFlags(cmd)

	return cmd
}
