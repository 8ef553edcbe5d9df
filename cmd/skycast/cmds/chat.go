package cmds

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-go-golems/skycast/pkg/events"
	"github.com/go-go-golems/skycast/pkg/helpers"
	"github.com/go-go-golems/skycast/pkg/logging"
	"github.com/go-go-golems/skycast/pkg/settings"
	"github.com/go-go-golems/skycast/pkg/ui"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

func NewChatCommand(v *viper.Viper) *cobra.Command {
	var (
		local      bool
		dumpEvents bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the weather assistant",
		Args:  cobra.NoArgs,
		PreRunE: bindFlagsPreRun(v, mergeBindings(clientFlagBindings, agentFlagBindings, flagBindings{
			"ui.plain":      "plain",
			"ui.style":      "style",
			"ui.export-dir": "export-dir",
		})),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := settings.Load(v)
			if err != nil {
				return err
			}

			interactive := !s.UI.Plain &&
				isatty.IsTerminal(os.Stdin.Fd()) &&
				isatty.IsTerminal(os.Stdout.Fd())
			if interactive {
				// the UI owns the terminal, logs only go to --log-file
				cfg := s.Logging
				cfg.Quiet = true
				if err := logging.InitLogger(cfg); err != nil {
					return err
				}
			}

			sess, err := newSession(s, local)
			if err != nil {
				return err
			}

			router, err := events.NewEventRouter(
				events.WithLogger(helpers.NewWatermill(logging.NewWithComponent("events"))),
				events.WithOutput(cmd.ErrOrStderr()),
			)
			if err != nil {
				return err
			}
			defer func() {
				_ = router.Close()
			}()

			manager := events.NewPublisherManager()
			manager.SubscribePublisher(events.TopicTurns, router.Publisher)
			sess.Log().AddObserver(events.NewTurnPublisher(manager, sess.SessionID, sess.IsPending))

			var queue *ui.TurnQueue
			if interactive {
				queue = ui.NewTurnQueue(0)
				router.AddTurnHandler("ui", events.TopicTurns, queue.Handler())
			}
			if dumpEvents && !interactive {
				router.AddHandler("dump", events.TopicTurns, router.DumpRawEvents)
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			eg := errgroup.Group{}
			eg.Go(func() error {
				defer cancel()
				if err := router.WaitRunning(ctx); err != nil {
					return err
				}

				if !interactive {
					width := ui.TerminalWidth(os.Stdout, 80)
					return ui.RunPlain(ctx, sess, cmd.InOrStdin(), cmd.OutOrStdout(), width)
				}

				model, err := ui.NewModel(sess, queue,
					ui.WithGlamourStyle(s.UI.Style),
					ui.WithExportDir(s.UI.ExportDir),
				)
				if err != nil {
					return err
				}
				p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
				if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
					return err
				}
				return nil
			})
			eg.Go(func() error {
				err := router.Run(ctx)
				if err != nil {
					cancel()
				}
				return err
			})

			err = eg.Wait()
			if sess.IsPending() {
				log.Debug().Msg("exiting with a request still pending")
			}
			return err
		},
	}

	addClientFlags(cmd)
	addAgentFlags(cmd)
	cmd.Flags().BoolVar(&local, "local", false, "Answer with an in-process agent instead of the backend")
	cmd.Flags().Bool("plain", false, "Line-oriented chat, also used when not attached to a terminal")
	cmd.Flags().String("style", "auto", "Markdown style for answers (auto, dark, light, notty, ...)")
	cmd.Flags().String("export-dir", ".", "Directory ctrl+s saves transcripts to")
	cmd.Flags().BoolVar(&dumpEvents, "dump-events", false, "Print every turn event as JSON on stderr (plain mode)")

	return cmd
}
