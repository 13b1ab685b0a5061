package services

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"opla/internal/logger"
	"opla/pkg/oplatypes"
)

// MarkdownService renders markdown to the terminal with Glamour. It backs the command
// listing and help output.
type MarkdownService struct {
	initialized bool
	style       string
	wordWrap    int
	renderer    *glamour.TermRenderer
}

// NewMarkdownService creates a new MarkdownService using the Glamour style matching
// the given theme name.
func NewMarkdownService(themeName string) *MarkdownService {
	return &MarkdownService{
		initialized: false,
		style:       mapThemeToGlamourStyle(themeName),
		wordWrap:    80,
	}
}

// Name returns the service name "markdown" for registration.
func (m *MarkdownService) Name() string {
	return "markdown"
}

// Initialize creates the Glamour renderer.
func (m *MarkdownService) Initialize() error {
	renderer, err := m.newRenderer(m.style, m.wordWrap)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	m.renderer = renderer
	m.initialized = true

	logger.Debug("MarkdownService initialized successfully", "style", m.style)
	return nil
}

func (m *MarkdownService) newRenderer(style string, wordWrap int) (*glamour.TermRenderer, error) {
	styleOption := glamour.WithStylePath(style)
	if style == "auto" {
		styleOption = glamour.WithAutoStyle()
	}
	return glamour.NewTermRenderer(styleOption, glamour.WithWordWrap(wordWrap))
}

// Render renders markdown content to ANSI terminal output.
func (m *MarkdownService) Render(markdown string) (string, error) {
	if !m.initialized {
		return "", fmt.Errorf("markdown service not initialized")
	}

	if strings.TrimSpace(markdown) == "" {
		return "", fmt.Errorf("markdown content cannot be empty")
	}

	rendered, err := m.renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}

	return rendered, nil
}

// SetWordWrap sets the word wrap width for markdown rendering.
func (m *MarkdownService) SetWordWrap(width int) error {
	if !m.initialized {
		return fmt.Errorf("markdown service not initialized")
	}

	if width <= 0 {
		return fmt.Errorf("word wrap width must be positive, got %d", width)
	}

	renderer, err := m.newRenderer(m.style, width)
	if err != nil {
		return fmt.Errorf("failed to create renderer with word wrap %d: %w", width, err)
	}

	m.renderer = renderer
	m.wordWrap = width
	logger.Debug("MarkdownService word wrap updated", "width", width)
	return nil
}

// RenderCommands renders a command listing grouped by command group.
func (m *MarkdownService) RenderCommands(commands []oplatypes.Command) (string, error) {
	if len(commands) == 0 {
		return m.Render("_No commands registered._")
	}
	return m.Render(CommandsMarkdown(commands))
}

var commandGroupTitles = []struct {
	group oplatypes.CommandGroup
	title string
}{
	{oplatypes.CommandGroupActions, "Actions"},
	{oplatypes.CommandGroupModels, "Models"},
	{oplatypes.CommandGroupParametersNumber, "Numeric parameters"},
	{oplatypes.CommandGroupParametersString, "Text parameters"},
	{oplatypes.CommandGroupParametersBoolean, "Flags"},
}

// CommandsMarkdown builds the markdown of a command listing. Commands keep their order
// within a group.
func CommandsMarkdown(commands []oplatypes.Command) string {
	grouped := make(map[oplatypes.CommandGroup][]oplatypes.Command)
	for _, cmd := range commands {
		grouped[cmd.Group] = append(grouped[cmd.Group], cmd)
	}

	var b strings.Builder
	for _, entry := range commandGroupTitles {
		cmds := grouped[entry.group]
		if len(cmds) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n", entry.title)
		for _, cmd := range cmds {
			fmt.Fprintf(&b, "- `%s`", cmd.Value)
			if cmd.Label != "" && cmd.Label != cmd.Name() {
				fmt.Fprintf(&b, " **%s**", cmd.Label)
			}
			if cmd.Tag != "" {
				fmt.Fprintf(&b, " (%s)", cmd.Tag)
			}
			if cmd.Description != "" {
				fmt.Fprintf(&b, ": %s", cmd.Description)
			}
			if cmd.Disabled {
				b.WriteString(" _(disabled)_")
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// mapThemeToGlamourStyle maps Opla theme names to Glamour styles.
func mapThemeToGlamourStyle(themeName string) string {
	switch strings.ToLower(strings.TrimSpace(themeName)) {
	case "dark":
		return "dark"
	case "light":
		return "light"
	case "plain":
		return "notty"
	default:
		return "auto"
	}
}
