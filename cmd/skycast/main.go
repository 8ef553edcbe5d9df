package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-go-golems/skycast/cmd/skycast/cmds"
	"github.com/go-go-golems/skycast/pkg/logging"
	"github.com/go-go-golems/skycast/pkg/settings"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRootCommand(v *viper.Viper) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "skycast",
		Short:         "skycast is a chat client and backend for a weather assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// the config path is only known once flags are parsed
			if err := settings.InitViper(v, v.GetString("config")); err != nil {
				return err
			}
			s, err := settings.Load(v)
			if err != nil {
				return err
			}
			if err := logging.InitLogger(s.Logging); err != nil {
				return err
			}
			log.Debug().
				Str("config", v.ConfigFileUsed()).
				Msg("Loaded configuration")
			return nil
		},
	}

	// logging flags
	rootCmd.PersistentFlags().Bool("with-caller", false, "Log caller")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (trace, debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (json, text)")
	rootCmd.PersistentFlags().String("log-file", "", "Log file (default: stderr)")

	rootCmd.PersistentFlags().String("config", "", "Path to config file (default ~/.skycast/config.yaml)")

	cobra.CheckErr(v.BindPFlags(rootCmd.PersistentFlags()))

	rootCmd.AddCommand(
		cmds.NewChatCommand(v),
		cmds.NewAskCommand(v),
		cmds.NewServeCommand(v),
		cmds.NewConfigCommand(v),
	)

	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand(viper.New())
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("skycast failed")
		stop()
		os.Exit(1)
	}
}
