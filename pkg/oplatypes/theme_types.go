// Package oplatypes defines theme-related data structures for Opla's prompt rendering.
// This file contains the types a theme YAML file is decoded into.
package oplatypes

// ThemeConfig represents a theme configuration loaded from YAML.
type ThemeConfig struct {
	// Name is the theme identifier (e.g., "default", "dark", "light", "plain")
	Name string `yaml:"name" json:"name"`

	// Description provides a brief description of the theme
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Styles contains the style definitions for prompt tokens and suggestions
	Styles ThemeStyles `yaml:"styles" json:"styles"`
}

// ThemeStyles defines the styling of each token type and state.
// Type styles are applied first, state styles are layered on top.
type ThemeStyles struct {
	Mention        StyleConfig `yaml:"mention" json:"mention"`
	Hashtag        StyleConfig `yaml:"hashtag" json:"hashtag"`
	Action         StyleConfig `yaml:"action" json:"action"`
	ParameterValue StyleConfig `yaml:"parameter_value" json:"parameter_value"`

	Error     StyleConfig `yaml:"error" json:"error"`
	Editing   StyleConfig `yaml:"editing" json:"editing"`
	Disabled  StyleConfig `yaml:"disabled" json:"disabled"`
	Duplicate StyleConfig `yaml:"duplicate" json:"duplicate"`

	// Suggestion styles an autocomplete entry, Selected the highlighted one
	Suggestion StyleConfig `yaml:"suggestion" json:"suggestion"`
	Selected   StyleConfig `yaml:"selected" json:"selected"`
}

// StyleConfig defines the visual styling for a semantic element.
// Colors are either a plain string or a {light, dark} adaptive pair.
type StyleConfig struct {
	Foreground    interface{} `yaml:"foreground,omitempty" json:"foreground,omitempty"`
	Background    interface{} `yaml:"background,omitempty" json:"background,omitempty"`
	Bold          *bool       `yaml:"bold,omitempty" json:"bold,omitempty"`
	Italic        *bool       `yaml:"italic,omitempty" json:"italic,omitempty"`
	Underline     *bool       `yaml:"underline,omitempty" json:"underline,omitempty"`
	Strikethrough *bool       `yaml:"strikethrough,omitempty" json:"strikethrough,omitempty"`
	Faint         *bool       `yaml:"faint,omitempty" json:"faint,omitempty"`
}

// IsZero reports whether the style sets nothing.
func (s StyleConfig) IsZero() bool {
	return s.Foreground == nil && s.Background == nil && s.Bold == nil &&
		s.Italic == nil && s.Underline == nil && s.Strikethrough == nil && s.Faint == nil
}
