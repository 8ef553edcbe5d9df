package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-go-golems/skycast/pkg/conversation"
	"github.com/go-go-golems/skycast/pkg/session"
	"github.com/muesli/reflow/wordwrap"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

// TerminalWidth returns the width of f, or fallback when f is not a terminal.
func TerminalWidth(f *os.File, fallback int) int {
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return fallback
	}
	return width
}

// RunPlain is the line-oriented chat: one line per message, answers printed
// once they arrive. It returns at EOF or on "/quit".
func RunPlain(ctx context.Context, s *session.Session, in io.Reader, out io.Writer, width int) error {
	if s == nil {
		return session.ErrSessionNil
	}
	if width <= 0 {
		width = defaultWidth
	}

	for _, turn := range s.Snapshot() {
		if err := printTurn(out, turn, width); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines, readErr := readLines(ctx, in)
	for {
		if _, err := fmt.Fprint(out, "> "); err != nil {
			return err
		}

		var line string
		select {
		case <-ctx.Done():
			_, _ = fmt.Fprintln(out)
			return nil
		case l, ok := <-lines:
			if !ok {
				_, _ = fmt.Fprintln(out)
				return <-readErr
			}
			line = l
		}

		if strings.TrimSpace(line) == "/quit" {
			return nil
		}

		handle, err := s.Submit(ctx, line)
		if errors.Is(err, session.ErrEmptyPrompt) {
			continue
		}
		if err != nil {
			return err
		}

		if _, err := fmt.Fprintln(out, PendingText); err != nil {
			return err
		}
		turn, err := handle.Wait()
		if err != nil {
			return err
		}
		if err := printTurn(out, turn, width); err != nil {
			return err
		}
	}
}

// readLines feeds the lines of in to a channel, so that waiting for input can
// be interrupted. The reader stops once ctx is done.
func readLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				errc <- nil
				return
			}
		}
		errc <- scanner.Err()
	}()
	return lines, errc
}

func printTurn(out io.Writer, turn conversation.Turn, width int) error {
	label := UserLabel
	if turn.IsAssistant() {
		label = AssistantLabel
	}
	_, err := fmt.Fprintf(out, "%s:\n%s\n\n", label, wordwrap.String(turn.Content, width))
	return err
}
