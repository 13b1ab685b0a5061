// Package oplatypes defines catalog data structures for Opla.
// This file contains the types decoded from the embedded YAML catalogs that populate
// the command registry: models, completion parameters and slash actions.
package oplatypes

// ModelCatalogEntry represents a model entry in the model catalog.
type ModelCatalogEntry struct {
	// Name is the model identifier used after the @ sigil (e.g., "llama3.1-8b")
	Name string `yaml:"name" json:"name"`

	// DisplayName is a human-readable name for the model (e.g., "Llama 3.1 8B")
	DisplayName string `yaml:"display_name" json:"display_name"`

	// Provider is the provider serving the model (e.g., "llama.cpp", "openai")
	Provider string `yaml:"provider" json:"provider"`

	// Description provides a brief description of the model
	Description string `yaml:"description" json:"description"`

	// ContextWindow is the maximum number of tokens the model can process
	ContextWindow int `yaml:"context_window" json:"context_window"`

	// Deprecated models stay resolvable but are registered disabled
	Deprecated bool `yaml:"deprecated,omitempty" json:"deprecated,omitempty"`
}

// CatalogHeader carries the fields shared by every catalog document.
type CatalogHeader struct {
	// Requires is a semantic version constraint the running binary must meet
	// (e.g., ">= 0.1.0"). Empty means any version.
	Requires string `yaml:"requires,omitempty" json:"requires,omitempty"`
}

// ModelCatalog is the models.yaml document.
type ModelCatalog struct {
	CatalogHeader `yaml:",inline"`

	Models []ModelCatalogEntry `yaml:"models" json:"models"`
}

// ParameterConstraints narrows the accepted values of a parameter.
type ParameterConstraints struct {
	Min        *float64 `yaml:"min,omitempty" json:"min,omitempty"`
	Max        *float64 `yaml:"max,omitempty" json:"max,omitempty"`
	Pattern    *string  `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	EnumValues []string `yaml:"enum,omitempty" json:"enum,omitempty"`
}

// ParameterDefinition describes a completion parameter addressable with a hashtag.
type ParameterDefinition struct {
	Name        string                `yaml:"name" json:"name"`
	Type        string                `yaml:"type" json:"type"` // string, int, float, bool, enum
	Description string                `yaml:"description" json:"description"`
	Required    bool                  `yaml:"required,omitempty" json:"required,omitempty"`
	Default     any                   `yaml:"default,omitempty" json:"default,omitempty"`
	Constraints *ParameterConstraints `yaml:"constraints,omitempty" json:"constraints,omitempty"`
}

// ParameterCatalog is the parameters.yaml document.
type ParameterCatalog struct {
	CatalogHeader `yaml:",inline"`

	Parameters []ParameterDefinition `yaml:"parameters" json:"parameters"`
}

// ActionDefinition describes a slash action.
type ActionDefinition struct {
	Name        string `yaml:"name" json:"name"`
	Label       string `yaml:"label" json:"label"`
	Description string `yaml:"description" json:"description"`

	// BlockOtherCommands makes the action consume the rest of the prompt as text.
	BlockOtherCommands bool `yaml:"block_other_commands,omitempty" json:"block_other_commands,omitempty"`
}

// ActionCatalog is the actions.yaml document.
type ActionCatalog struct {
	CatalogHeader `yaml:",inline"`

	Actions []ActionDefinition `yaml:"actions" json:"actions"`
}

// Catalog bundles every catalog the command registry is built from.
type Catalog struct {
	Models     []ModelCatalogEntry
	Parameters []ParameterDefinition
	Actions    []ActionDefinition
}
