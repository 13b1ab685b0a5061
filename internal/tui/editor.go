// Package tui provides the interactive prompt editor: a single-line input that is
// tokenized on every keystroke, with styled tokens and command suggestions.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"opla/internal/logger"
	"opla/internal/parser"
	"opla/internal/services"
	"opla/pkg/oplatypes"
)

// Keys holds the editor keyboard shortcuts.
type Keys struct {
	Complete string // Insert the selected suggestion
	Next     string // Select the next suggestion
	Prev     string // Select the previous suggestion
	Submit   string // Compile the prompt and exit
	Copy     string // Copy the normalized text
	Dismiss  string // Hide suggestions, exit when none are shown
	Quit     string // Exit without compiling
}

// DefaultKeys returns the default keyboard configuration.
func DefaultKeys() Keys {
	return Keys{
		Complete: "tab",
		Next:     "down",
		Prev:     "up",
		Submit:   "enter",
		Copy:     "ctrl+y",
		Dismiss:  "esc",
		Quit:     "ctrl+c",
	}
}

// Option configures a Model.
type Option func(*Model)

// WithKeys replaces the keyboard configuration.
func WithKeys(keys Keys) Option {
	return func(m *Model) { m.keys = keys }
}

// WithClipboard replaces the function the normalized text is copied with.
func WithClipboard(copyFn func(string) error) Option {
	return func(m *Model) { m.copy = copyFn }
}

// WithText starts the editor with text, the caret at its end.
func WithText(text string) Option {
	return func(m *Model) {
		m.input.SetValue(text)
		m.input.CursorEnd()
	}
}

// Model is the bubbletea model of the prompt editor.
type Model struct {
	input  textinput.Model
	prompt *services.PromptService
	render *services.RenderService
	keys   Keys
	copy   func(string) error
	log    *log.Logger

	parsed      oplatypes.ParsedPrompt
	suggestions []oplatypes.Command
	selected    int
	status      string
	request     *oplatypes.PromptRequest
}

// New creates an editor compiling prompts with prompt and drawing them with render.
func New(prompt *services.PromptService, render *services.RenderService, opts ...Option) Model {
	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "Type a message, @ for models, # for parameters, / for actions"
	input.CharLimit = 0
	input.Focus()

	m := Model{
		input:  input,
		prompt: prompt,
		render: render,
		keys:   DefaultKeys(),
		copy:   writeToClipboard,
		log:    logger.NewStyledLogger("Editor"),
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.refresh()
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
		m.input.Width = max(10, msg.Width-len(m.input.Prompt)-1)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case m.keys.Quit:
			return m, tea.Quit
		case m.keys.Dismiss:
			if len(m.suggestions) > 0 {
				m.suggestions = nil
				m.selected = 0
				return m, nil
			}
			return m, tea.Quit
		case m.keys.Complete:
			if len(m.suggestions) > 0 {
				m.complete()
			}
			return m, nil
		case m.keys.Next:
			if len(m.suggestions) > 0 {
				m.selected = (m.selected + 1) % len(m.suggestions)
			}
			return m, nil
		case m.keys.Prev:
			if len(m.suggestions) > 0 {
				m.selected = (m.selected - 1 + len(m.suggestions)) % len(m.suggestions)
			}
			return m, nil
		case m.keys.Submit:
			return m.submit()
		case m.keys.Copy:
			m.copyText()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.refresh()
	return m, cmd
}

// refresh parses the input again and recomputes the suggestions for the token under
// the caret.
func (m *Model) refresh() {
	parsed, err := m.prompt.ParseInput(m.input)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.parsed = parsed
	m.suggestions = m.suggest()
	if m.selected >= len(m.suggestions) {
		m.selected = 0
	}
}

func (m *Model) suggest() []oplatypes.Command {
	token, ok := m.parsed.CurrentToken()
	if !ok || token.State != oplatypes.PromptTokenStateEditing {
		return nil
	}
	commandType, isCommand := token.Type.CommandType()
	if !isCommand {
		return nil
	}
	word, _ := parser.CurrentWord(m.parsed.Raw, m.parsed.CaretPosition)
	return m.prompt.Registry().Filter(word, commandType)
}

func (m *Model) complete() {
	value := m.suggestions[m.selected].Value
	text, caret := parser.ReplaceTokenAtCaret(m.parsed, value)
	m.log.Debug("Completing", "command", value, "input", text)

	m.input.SetValue(text)
	m.input.SetCursor(caret)
	m.selected = 0
	m.refresh()
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	request, err := m.prompt.Compile(m.parsed)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.request = &request
	return m, tea.Quit
}

func (m *Model) copyText() {
	if m.copy == nil {
		m.status = "clipboard not available"
		return
	}
	if err := m.copy(m.parsed.Text); err != nil {
		m.status = err.Error()
		return
	}
	m.status = "copied to clipboard"
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.input.View())
	b.WriteString("\n")

	if m.parsed.Raw != "" {
		if preview, err := m.render.RenderPrompt(m.parsed); err == nil {
			b.WriteString("  " + preview + "\n")
		}
	}

	if len(m.suggestions) > 0 {
		if list, err := m.render.RenderSuggestions(m.suggestions, m.selected); err == nil {
			b.WriteString(list + "\n")
		}
	}

	if invalid := parser.InvalidTokens(m.parsed); len(invalid) > 0 {
		values := make([]string, 0, len(invalid))
		for _, token := range invalid {
			values = append(values, fmt.Sprintf("%s (%s)", token.Value, token.State))
		}
		b.WriteString("inactive: " + strings.Join(values, ", ") + "\n")
	}

	if m.status != "" {
		b.WriteString(m.status + "\n")
	}

	help := fmt.Sprintf("%s complete • %s send", m.keys.Complete, m.keys.Submit)
	if clipboardAvailable {
		help += fmt.Sprintf(" • %s copy", m.keys.Copy)
	}
	help += fmt.Sprintf(" • %s quit", m.keys.Dismiss)
	b.WriteString(help)
	return b.String()
}

// Value returns the current input.
func (m Model) Value() string {
	return m.input.Value()
}

// Parsed returns the prompt as parsed after the last edit.
func (m Model) Parsed() oplatypes.ParsedPrompt {
	return m.parsed
}

// Suggestions returns the commands offered for the token under the caret.
func (m Model) Suggestions() []oplatypes.Command {
	return m.suggestions
}

// Status returns the last status or error message.
func (m Model) Status() string {
	return m.status
}

// Request returns the compiled request once the prompt was submitted.
func (m Model) Request() (oplatypes.PromptRequest, bool) {
	if m.request == nil {
		return oplatypes.PromptRequest{}, false
	}
	return *m.request, true
}

// Run starts the editor on the terminal and returns the submitted request. The second
// result is false when the editor was left without submitting.
func Run(prompt *services.PromptService, render *services.RenderService, opts ...Option) (oplatypes.PromptRequest, bool, error) {
	final, err := tea.NewProgram(New(prompt, render, opts...)).Run()
	if err != nil {
		return oplatypes.PromptRequest{}, false, fmt.Errorf("editor failed: %w", err)
	}
	model, ok := final.(Model)
	if !ok {
		return oplatypes.PromptRequest{}, false, fmt.Errorf("editor returned unexpected model %T", final)
	}
	request, submitted := model.Request()
	return request, submitted, nil
}
