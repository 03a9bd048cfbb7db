// Package tui implements the terminal chat client: a Bubble Tea model that
// drives a conversation controller and renders the transcript with markdown
// and part/order cards.
package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/mfalkner/partdesk/internal/chat"
	"github.com/mfalkner/partdesk/internal/clip"
	"github.com/mfalkner/partdesk/internal/core"
	"github.com/mfalkner/partdesk/internal/logging"
)

const defaultExportName = "partdesk-transcript.md"

// submitResultMsg arrives when a submitted message has been fully handled by
// the controller, success or apology alike.
type submitResultMsg struct {
	err error
}

// Model is the Bubble Tea model for the chat client.
type Model struct {
	viewport viewport.Model
	input    textinput.Model
	spin     spinner.Model

	assistant core.Assistant
	logger    *logging.Logger
	ctrl      *chat.Controller
	commands  *CommandRegistry
	styles    *MessageStyles
	markdown  *glamour.TermRenderer

	suggestions   []string
	transcriptDir string

	width, height int
	ready         bool
	minimized     bool
	unread        int
	quitting      bool
	status        string
}

// Option configures the model.
type Option func(*Model)

// WithLogger sets the model logger.
func WithLogger(logger *logging.Logger) Option {
	return func(m *Model) {
		m.logger = logger.WithComponent("tui")
	}
}

// WithTranscriptDir sets the directory that /export writes to when no
// explicit path is given.
func WithTranscriptDir(dir string) Option {
	return func(m *Model) {
		m.transcriptDir = dir
	}
}

// NewModel creates a chat model bound to an assistant backend.
func NewModel(assistant core.Assistant, opts ...Option) Model {
	ti := textinput.New()
	ti.Placeholder = "Select an option above to begin"
	ti.CharLimit = 2048
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	m := Model{
		input:     ti,
		spin:      sp,
		assistant: assistant,
		logger:    logging.NewNop(),
		commands:  NewCommandRegistry(),
		styles:    NewMessageStyles(80),
	}
	for _, opt := range opts {
		opt(&m)
	}

	m.ctrl = chat.New(assistant, chat.WithLogger(m.logger))
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.styles = NewMessageStyles(msg.Width - 4)
		m.input.Width = msg.Width - 10

		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(min(msg.Width-6, 100)),
		)
		if err == nil {
			m.markdown = renderer
		}

		vpHeight := msg.Height - 7
		if vpHeight < 3 {
			vpHeight = 3
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width-2, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 2
			m.viewport.Height = vpHeight
		}
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case submitResultMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
		}
		if m.minimized {
			m.unread++
		}
		m.refreshViewport()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		if m.ctrl.Busy() {
			m.refreshViewport()
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.minimized && msg.String() != "ctrl+c" && msg.String() != "ctrl+t" {
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "ctrl+t":
		if m.minimized {
			m.minimized = false
			m.unread = 0
			m.refreshViewport()
		} else {
			m.minimized = true
		}
		return m, nil

	case "ctrl+y":
		m.copyLastReply()
		m.refreshViewport()
		return m, nil

	case "enter":
		return m.handleSubmit()

	case "tab":
		if len(m.suggestions) > 0 {
			m.input.SetValue("/" + m.suggestions[0] + " ")
			m.input.CursorEnd()
			m.suggestions = nil
		}
		return m, nil
	}

	// Number keys pick a mode while it is still unset.
	if !m.ctrl.Mode().IsSet() && m.input.Value() == "" {
		if n, err := strconv.Atoi(msg.String()); err == nil {
			modes := core.Modes()
			if n >= 1 && n <= len(modes) {
				m.selectMode(string(modes[n-1]))
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.updateSuggestions()
	return m, cmd
}

func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}

	if strings.HasPrefix(text, "/") {
		m.input.SetValue("")
		m.suggestions = nil
		return m.runCommand(text)
	}

	if m.ctrl.Busy() {
		m.status = "Still waiting on the previous message."
		return m, nil
	}

	m.input.SetValue("")
	m.status = ""
	ctrl := m.ctrl
	cmd := func() tea.Msg {
		return submitResultMsg{err: ctrl.Submit(context.Background(), text)}
	}
	return m, tea.Batch(cmd, m.spin.Tick)
}

func (m Model) runCommand(text string) (tea.Model, tea.Cmd) {
	cmd, args, ok := m.commands.Parse(text)
	if !ok || cmd == nil {
		m.status = "Unknown command. Try /help."
		return m, nil
	}

	switch cmd.Name {
	case "help":
		arg := ""
		if len(args) > 0 {
			arg = args[0]
		}
		m.status = m.commands.Help(arg)

	case "mode":
		if len(args) == 0 {
			m.status = "Usage: " + cmd.Usage
			break
		}
		m.selectMode(args[0])

	case "copy":
		m.copyLastReply()

	case "export":
		path := filepath.Join(m.transcriptDir, defaultExportName)
		if len(args) > 0 {
			path = args[0]
		}
		if err := m.ctrl.ExportMarkdown(path); err != nil {
			m.status = "Export failed: " + err.Error()
		} else {
			m.status = "Transcript written to " + path
		}

	case "end":
		m.ctrl = chat.New(m.assistant, chat.WithLogger(m.logger))
		m.unread = 0
		m.minimized = false
		m.status = ""

	case "quit":
		m.quitting = true
		return m, tea.Quit
	}

	m.refreshViewport()
	return m, nil
}

func (m *Model) selectMode(id string) {
	if err := m.ctrl.SelectMode(id); err != nil {
		m.status = err.Error()
		return
	}
	m.status = ""
	m.input.Placeholder = "Type your message..."
	m.refreshViewport()
}

func (m *Model) copyLastReply() {
	transcript := m.ctrl.Transcript()
	for i := len(transcript) - 1; i >= 0; i-- {
		if transcript[i].Role == core.RoleAssistant {
			result, err := clip.WriteAll(transcript[i].Content)
			if err != nil {
				m.status = "Copy failed: " + err.Error()
				return
			}
			switch result.Method {
			case clip.MethodFile:
				m.status = "Reply saved to " + result.FilePath
			default:
				m.status = "Reply copied to clipboard."
			}
			return
		}
	}
	m.status = "Nothing to copy yet."
}

func (m *Model) updateSuggestions() {
	value := m.input.Value()
	if strings.HasPrefix(value, "/") && !strings.Contains(value, " ") {
		m.suggestions = m.commands.Suggest(value)
	} else {
		m.suggestions = nil
	}
}

func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m Model) renderTranscript() string {
	var sections []string
	for _, turn := range m.ctrl.Transcript() {
		switch turn.Role {
		case core.RoleUser:
			sections = append(sections, m.styles.FormatUserTurn(turn.Content))
		case core.RoleAssistant:
			content := turn.Content
			if m.markdown != nil {
				if rendered, err := m.markdown.Render(turn.Content); err == nil {
					content = strings.TrimSpace(rendered)
				}
			}
			sections = append(sections, m.styles.FormatAssistantTurn(content, turn))
		}
	}

	if !m.ctrl.Mode().IsSet() {
		sections = append(sections, m.styles.FormatModePills())
	}

	if m.ctrl.Busy() {
		sections = append(sections, statusStyle.Render(m.spin.View()+" thinking..."))
	}

	return strings.Join(sections, "\n\n")
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.minimized {
		bar := "PartDesk chat minimized"
		if m.unread > 0 {
			bar += fmt.Sprintf(" • %d unread", m.unread)
		}
		bar += "  (ctrl+t to open)"
		return statusStyle.Render(bar) + "\n"
	}

	if !m.ready {
		return "Loading..."
	}

	var sb strings.Builder
	sb.WriteString(headerStyle.Render("PartDesk"))
	sb.WriteString(statusStyle.Render("  How can we help?"))
	if m.ctrl.Mode().IsSet() {
		sb.WriteString(statusStyle.Render("  [" + m.ctrl.Mode().Label() + "]"))
	}
	sb.WriteString("\n\n")
	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")

	if len(m.suggestions) > 0 {
		shown := m.suggestions
		if len(shown) > 5 {
			shown = shown[:5]
		}
		sb.WriteString(statusStyle.Render("/" + strings.Join(shown, "  /")))
		sb.WriteString("\n")
	}

	if m.status != "" {
		sb.WriteString(statusStyle.Render(m.status))
		sb.WriteString("\n")
	}

	sb.WriteString(inputBorderStyle.Width(max(m.width-4, 20)).Render(m.input.View()))
	sb.WriteString("\n")
	sb.WriteString(statusStyle.Render("enter send • tab complete • ctrl+y copy • ctrl+t minimize • ctrl+c quit"))
	return lipgloss.NewStyle().Padding(0, 1).Render(sb.String())
}

// Run starts the chat program and blocks until it exits.
func Run(assistant core.Assistant, opts ...Option) error {
	p := tea.NewProgram(NewModel(assistant, opts...), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
