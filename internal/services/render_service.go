package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"

	"opla/pkg/oplatypes"
)

// RenderService renders parsed prompts and command suggestions with the active theme.
type RenderService struct {
	initialized bool
	themes      *ThemeService
	themeName   string
	theme       *Theme
}

// NewRenderService creates a new RenderService using a theme of the theme service.
func NewRenderService(themes *ThemeService, themeName string) *RenderService {
	return &RenderService{
		initialized: false,
		themes:      themes,
		themeName:   themeName,
	}
}

// Name returns the service name "render" for registration.
func (r *RenderService) Name() string {
	return "render"
}

// Initialize resolves the configured theme. The theme service must be initialized first.
func (r *RenderService) Initialize() error {
	if r.themes == nil || !r.themes.initialized {
		return fmt.Errorf("theme service not initialized")
	}
	r.theme = r.themes.GetThemeByName(r.themeName)
	r.initialized = true
	return nil
}

// SetTheme switches the active theme.
func (r *RenderService) SetTheme(name string) error {
	if !r.initialized {
		return fmt.Errorf("render service not initialized")
	}
	r.themeName = name
	r.theme = r.themes.GetThemeByName(name)
	return nil
}

// Theme returns the active theme.
func (r *RenderService) Theme() *Theme {
	return r.theme
}

// RenderToken renders a single token with the style of its type and state.
func (r *RenderService) RenderToken(token oplatypes.PromptToken) string {
	if token.Type == oplatypes.PromptTokenNewline || r.theme == nil {
		return token.Value
	}
	return r.theme.TokenStyle(token).Render(token.Value)
}

// RenderPrompt renders every token of a parsed prompt. Stripped of escape sequences the
// result equals the raw prompt.
func (r *RenderService) RenderPrompt(parsed oplatypes.ParsedPrompt) (string, error) {
	if !r.initialized {
		return "", fmt.Errorf("render service not initialized")
	}

	var b strings.Builder
	for _, token := range parsed.Tokens {
		b.WriteString(r.RenderToken(token))
	}
	return b.String(), nil
}

// RenderSuggestions renders one line per command, the selected one highlighted.
// A selected index out of range highlights nothing.
func (r *RenderService) RenderSuggestions(commands []oplatypes.Command, selected int) (string, error) {
	if !r.initialized {
		return "", fmt.Errorf("render service not initialized")
	}

	width := 0
	for _, cmd := range commands {
		width = max(width, ansi.StringWidth(cmd.Value))
	}

	lines := make([]string, 0, len(commands))
	for i, cmd := range commands {
		line := cmd.Value + strings.Repeat(" ", width-ansi.StringWidth(cmd.Value))
		if cmd.Label != "" {
			line += "  " + cmd.Label
		}
		if cmd.Disabled {
			line += " (disabled)"
		}

		style := r.theme.Suggestion
		if i == selected {
			style = r.theme.Selected
		} else if cmd.Disabled {
			style = r.theme.Disabled.Inherit(style)
		}
		lines = append(lines, style.Render(line))
	}
	return strings.Join(lines, "\n"), nil
}

// Describe renders a table of the tokens of a parsed prompt, one row per token.
func (r *RenderService) Describe(parsed oplatypes.ParsedPrompt) (string, error) {
	if !r.initialized {
		return "", fmt.Errorf("render service not initialized")
	}

	rows := make([][]string, 0, len(parsed.Tokens))
	for i, token := range parsed.Tokens {
		current := ""
		if i == parsed.CurrentTokenIndex {
			current = "*"
		}
		blocks := ""
		if token.BlockOtherCommands {
			blocks = "yes"
		}
		rows = append(rows, []string{
			strconv.Itoa(i) + current,
			token.Type.String(),
			strconv.Quote(token.Value),
			strconv.Itoa(token.Index),
			token.State.String(),
			blocks,
		})
	}

	headerStyle := r.theme.Text.Bold(true).Padding(0, 1)
	cellStyle := r.theme.Text.Padding(0, 1)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "TYPE", "VALUE", "INDEX", "STATE", "BLOCKS").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 2 && row >= 0 && row < len(parsed.Tokens) {
				return r.theme.TokenStyle(parsed.Tokens[row]).Padding(0, 1)
			}
			return cellStyle
		})

	return t.Render(), nil
}
