package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"opla/internal/data/embedded"
	"opla/internal/logger"
	"opla/pkg/oplatypes"
)

// ThemeService provides the token themes prompts are rendered with.
type ThemeService struct {
	initialized bool
	renderer    *lipgloss.Renderer
	themes      map[string]*Theme
}

// Theme holds the lipgloss styles of every token type and state.
type Theme struct {
	Name           string
	Text           lipgloss.Style
	Mention        lipgloss.Style
	Hashtag        lipgloss.Style
	Action         lipgloss.Style
	ParameterValue lipgloss.Style
	Error          lipgloss.Style
	Editing        lipgloss.Style
	Disabled       lipgloss.Style
	Duplicate      lipgloss.Style
	Suggestion     lipgloss.Style
	Selected       lipgloss.Style
}

// NewThemeService creates a new ThemeService building styles with renderer.
// A nil renderer uses lipgloss' default renderer.
func NewThemeService(renderer *lipgloss.Renderer) *ThemeService {
	if renderer == nil {
		renderer = lipgloss.DefaultRenderer()
	}
	return &ThemeService{
		initialized: false,
		renderer:    renderer,
		themes:      make(map[string]*Theme),
	}
}

// Name returns the service name "theme" for registration.
func (t *ThemeService) Name() string {
	return "theme"
}

// Initialize loads the embedded themes.
func (t *ThemeService) Initialize() error {
	for _, themeName := range embedded.ThemeNames() {
		themeData, err := embedded.ThemeData(themeName)
		if err == nil {
			var theme *Theme
			if theme, err = t.LoadTheme(themeData); err == nil {
				t.themes[themeName] = theme
				continue
			}
		}
		logger.Error("Failed to load theme", "theme", themeName, "error", err)
		t.themes[themeName] = t.createFallbackTheme(themeName)
	}

	t.initialized = true
	return nil
}

// LoadTheme parses a theme YAML document into a Theme without registering it.
func (t *ThemeService) LoadTheme(data []byte) (*Theme, error) {
	var config oplatypes.ThemeConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse theme file: %w", err)
	}
	if config.Name == "" {
		return nil, fmt.Errorf("theme file has no name")
	}
	return t.convertThemeConfig(config), nil
}

// RegisterTheme adds or replaces a theme.
func (t *ThemeService) RegisterTheme(theme *Theme) {
	t.themes[strings.ToLower(theme.Name)] = theme
}

func (t *ThemeService) convertThemeConfig(config oplatypes.ThemeConfig) *Theme {
	styles := config.Styles
	return &Theme{
		Name:           config.Name,
		Text:           t.plainStyle(),
		Mention:        t.createStyle(styles.Mention),
		Hashtag:        t.createStyle(styles.Hashtag),
		Action:         t.createStyle(styles.Action),
		ParameterValue: t.createStyle(styles.ParameterValue),
		Error:          t.createStyle(styles.Error),
		Editing:        t.createStyle(styles.Editing),
		Disabled:       t.createStyle(styles.Disabled),
		Duplicate:      t.createStyle(styles.Duplicate),
		Suggestion:     t.createStyle(styles.Suggestion),
		Selected:       t.createStyle(styles.Selected),
	}
}

// plainStyle keeps tabs as typed so rendered tokens line up with the raw text.
func (t *ThemeService) plainStyle() lipgloss.Style {
	return t.renderer.NewStyle().TabWidth(lipgloss.NoTabConversion)
}

// createStyle converts a StyleConfig to a lipgloss.Style.
func (t *ThemeService) createStyle(config oplatypes.StyleConfig) lipgloss.Style {
	style := t.plainStyle()

	if config.Foreground != nil {
		if color := parseColor(config.Foreground); color != nil {
			style = style.Foreground(color)
		}
	}
	if config.Background != nil {
		if color := parseColor(config.Background); color != nil {
			style = style.Background(color)
		}
	}

	if config.Bold != nil && *config.Bold {
		style = style.Bold(true)
	}
	if config.Italic != nil && *config.Italic {
		style = style.Italic(true)
	}
	if config.Underline != nil && *config.Underline {
		style = style.Underline(true)
	}
	if config.Strikethrough != nil && *config.Strikethrough {
		style = style.Strikethrough(true)
	}
	if config.Faint != nil && *config.Faint {
		style = style.Faint(true)
	}

	return style
}

// parseColor parses a color value that can be a string or a {light, dark} map.
func parseColor(colorValue interface{}) lipgloss.TerminalColor {
	switch v := colorValue.(type) {
	case string:
		return lipgloss.Color(v)
	case map[string]interface{}:
		if light, hasLight := v["light"].(string); hasLight {
			if dark, hasDark := v["dark"].(string); hasDark {
				return lipgloss.AdaptiveColor{Light: light, Dark: dark}
			}
		}
		return nil
	default:
		return nil
	}
}

func (t *ThemeService) createFallbackTheme(name string) *Theme {
	plain := t.plainStyle()
	return &Theme{
		Name:           name,
		Text:           plain,
		Mention:        plain,
		Hashtag:        plain,
		Action:         plain,
		ParameterValue: plain,
		Error:          plain,
		Editing:        plain,
		Disabled:       plain,
		Duplicate:      plain,
		Suggestion:     plain,
		Selected:       plain,
	}
}

// GetAvailableThemes returns the sorted theme names.
func (t *ThemeService) GetAvailableThemes() []string {
	if !t.initialized {
		return []string{}
	}

	themes := make([]string, 0, len(t.themes))
	for name := range t.themes {
		themes = append(themes, name)
	}
	sort.Strings(themes)
	return themes
}

// GetTheme returns a specific theme by name
func (t *ThemeService) GetTheme(name string) (*Theme, bool) {
	if !t.initialized {
		return nil, false
	}

	theme, exists := t.themes[name]
	return theme, exists
}

// GetThemeByName retrieves a theme case-insensitively. Unknown names get the plain theme.
func (t *ThemeService) GetThemeByName(name string) *Theme {
	if !t.initialized {
		return t.createFallbackTheme("plain")
	}

	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		normalized = "default"
	}
	if theme, exists := t.themes[normalized]; exists {
		return theme
	}

	logger.Debug("Invalid theme requested, using plain theme", "theme", name, "available", t.GetAvailableThemes())
	if theme, exists := t.themes["plain"]; exists {
		return theme
	}
	return t.createFallbackTheme("plain")
}

// TokenStyle returns the style of a token: the style of its type with the style of its
// state layered on top.
func (th *Theme) TokenStyle(token oplatypes.PromptToken) lipgloss.Style {
	var base lipgloss.Style
	switch token.Type {
	case oplatypes.PromptTokenMention:
		base = th.Mention
	case oplatypes.PromptTokenHashtag:
		base = th.Hashtag
	case oplatypes.PromptTokenAction:
		base = th.Action
	case oplatypes.PromptTokenParameterValue:
		base = th.ParameterValue
	default:
		return th.Text
	}

	switch token.State {
	case oplatypes.PromptTokenStateError:
		return th.Error.Inherit(base)
	case oplatypes.PromptTokenStateEditing:
		return th.Editing.Inherit(base)
	case oplatypes.PromptTokenStateDisabled:
		return th.Disabled.Inherit(base)
	case oplatypes.PromptTokenStateDuplicate:
		return th.Duplicate.Inherit(base)
	default:
		return base
	}
}
