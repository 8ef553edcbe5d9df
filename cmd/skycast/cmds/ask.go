package cmds

import (
	"fmt"
	"strings"

	"github.com/go-go-golems/skycast/pkg/session"
	"github.com/go-go-golems/skycast/pkg/settings"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func NewAskCommand(v *viper.Viper) *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:     "ask <question...>",
		Short:   "Ask a single question and print the answer",
		Args:    cobra.MinimumNArgs(1),
		PreRunE: bindFlagsPreRun(v, mergeBindings(clientFlagBindings, agentFlagBindings)),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := settings.Load(v)
			if err != nil {
				return err
			}

			sess, err := newSession(s, local)
			if err != nil {
				return err
			}

			handle, err := sess.Submit(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			turn, err := handle.Wait()
			if err != nil {
				return err
			}

			if _, err := fmt.Fprintln(cmd.OutOrStdout(), turn.Content); err != nil {
				return err
			}
			if handle.Outcome() == session.OutcomeFailure {
				return errors.Wrap(handle.Cause(), "request failed")
			}
			return nil
		},
	}

	addClientFlags(cmd)
	addAgentFlags(cmd)
	cmd.Flags().BoolVar(&local, "local", false, "Answer with an in-process agent instead of the backend")

	return cmd
}
