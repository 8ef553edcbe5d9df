package ui

import (
	"os"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-go-golems/skycast/pkg/conversation"
	"github.com/go-go-golems/skycast/pkg/session"
	"github.com/pkg/errors"
)

type State string

const (
	StateIdle     State = "idle"
	StateAwaiting State = "awaiting"
)

const (
	Title             = "🌤️ Weather Assistant"
	UserLabel         = "You"
	AssistantLabel    = "AI Assistant"
	PendingText       = "Fetching weather data..."
	InputHint         = "Press Enter to send • Alt+Enter for new line"
	InputPlaceholder  = "Ask about the weather in any city..."
	defaultWidth      = 80
	defaultHeight     = 24
	inputHeight       = 3
	glamourAutoStyle  = "auto"
	glamourNoTTYStyle = "notty"
	glamourDarkStyle  = "dark"
	glamourLightStyle = "light"
)

// hasDarkBackground queries the terminal, which must not happen once the
// program owns stdin.
var hasDarkBackground = lipgloss.HasDarkBackground

type Model struct {
	session *session.Session
	queue   *TurnQueue

	// turns mirrors the log as seen through turn events
	turns []conversation.Turn

	viewport viewport.Model
	textArea textarea.Model
	spinner  spinner.Model
	help     help.Model

	keyMap KeyMap
	style  *Style

	glamourStyle string
	renderer     *glamour.TermRenderer
	exportDir    string
	now          func() time.Time

	state  State
	status string
	err    error

	width  int
	height int
}

type ModelOption func(*Model)

// WithGlamourStyle selects the markdown style for assistant turns. "auto"
// follows the terminal background, or plain text when NO_COLOR is set.
func WithGlamourStyle(style string) ModelOption {
	return func(m *Model) {
		m.glamourStyle = style
	}
}

func WithExportDir(dir string) ModelOption {
	return func(m *Model) {
		m.exportDir = dir
	}
}

func WithKeyMap(keyMap KeyMap) ModelOption {
	return func(m *Model) {
		m.keyMap = keyMap
	}
}

func WithClock(now func() time.Time) ModelOption {
	return func(m *Model) {
		m.now = now
	}
}

// NewModel builds the chat UI for s. Turn events for s's log must be fed into
// queue, see TurnQueue.Handler.
func NewModel(s *session.Session, queue *TurnQueue, options ...ModelOption) (Model, error) {
	if s == nil {
		return Model{}, session.ErrSessionNil
	}
	if queue == nil {
		return Model{}, errors.New("chat UI needs a turn queue")
	}

	ret := Model{
		session:      s,
		queue:        queue,
		turns:        s.Snapshot(),
		keyMap:       DefaultKeyMap,
		style:        DefaultStyles(),
		glamourStyle: glamourAutoStyle,
		exportDir:    ".",
		now:          time.Now,
		viewport:     viewport.New(defaultWidth, defaultHeight),
		help:         help.New(),
		state:        StateIdle,
		width:        defaultWidth,
		height:       defaultHeight,
	}
	for _, option := range options {
		option(&ret)
	}

	ta := textarea.New()
	ta.Placeholder = InputPlaceholder
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(inputHeight)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys(ret.keyMap.InsertNewline.Keys()...))
	ta.SetValue(s.Draft())
	ta.Focus()
	ret.textArea = ta

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	ret.spinner = sp

	// viewport paging keys are handled through keyMap
	ret.viewport.KeyMap = viewport.KeyMap{}

	ret.glamourStyle = resolveGlamourStyle(ret.glamourStyle)
	if err := ret.updateRenderer(); err != nil {
		return Model{}, err
	}
	ret.recomputeSize()

	return ret, nil
}

// resolveGlamourStyle turns "auto" into a concrete style name.
func resolveGlamourStyle(style string) string {
	if style != glamourAutoStyle && style != "" {
		return style
	}
	switch {
	case os.Getenv("NO_COLOR") != "":
		return glamourNoTTYStyle
	case hasDarkBackground():
		return glamourDarkStyle
	default:
		return glamourLightStyle
	}
}

// updateRenderer rebuilds the renderer for the current width, with the style
// resolved in NewModel.
func (m *Model) updateRenderer() error {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStylePath(m.glamourStyle),
		glamour.WithWordWrap(m.contentWidth()),
	)
	if err != nil {
		return errors.Wrap(err, "could not create markdown renderer")
	}
	m.renderer = renderer
	return nil
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.queue.Next())
}

func (m Model) State() State {
	return m.state
}

func (m Model) Turns() []conversation.Turn {
	return append([]conversation.Turn(nil), m.turns...)
}

func (m Model) contentWidth() int {
	w := m.width - m.style.AssistantMessage.GetHorizontalFrameSize()
	if w < 10 {
		w = 10
	}
	return w
}
