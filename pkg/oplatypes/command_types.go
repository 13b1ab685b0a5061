// Package oplatypes defines command registry types for Opla.
// This file contains the command shape consumed by the prompt validator and the
// registry interface the validator looks commands up through.
package oplatypes

// CommandType identifies which sigil a command is invoked with.
type CommandType string

const (
	// CommandTypeMention commands are invoked with @ and select a model.
	CommandTypeMention CommandType = "mention"
	// CommandTypeHashtag commands are invoked with # and set a completion parameter.
	CommandTypeHashtag CommandType = "hashtag"
	// CommandTypeAction commands are invoked with / at the start of a prompt.
	CommandTypeAction CommandType = "action"
)

// Sigil returns the prefix character used to invoke commands of this type.
func (t CommandType) Sigil() string {
	switch t {
	case CommandTypeMention:
		return "@"
	case CommandTypeHashtag:
		return "#"
	case CommandTypeAction:
		return "/"
	default:
		return ""
	}
}

// CommandGroup groups commands for display and decides how hashtags are validated.
type CommandGroup string

const (
	// CommandGroupModels holds installed or remote models.
	CommandGroupModels CommandGroup = "models"
	// CommandGroupParametersBoolean holds flags that need no value.
	CommandGroupParametersBoolean CommandGroup = "parameters-boolean"
	// CommandGroupParametersString holds parameters taking a string value.
	CommandGroupParametersString CommandGroup = "parameters-string"
	// CommandGroupParametersNumber holds parameters taking a numeric value.
	CommandGroupParametersNumber CommandGroup = "parameters-number"
	// CommandGroupActions holds slash actions.
	CommandGroupActions CommandGroup = "actions"
)

// ExpectsValue reports whether a hashtag of this group needs a following value token.
func (g CommandGroup) ExpectsValue() bool {
	return g != CommandGroupParametersBoolean
}

// Command is an entry of the command registry. The validator only reads commands.
type Command struct {
	// Key uniquely identifies the command in the registry.
	Key string `json:"key"`

	// Value is the invocation text, sigil included (e.g. "@llama3", "#temperature").
	Value string `json:"value"`

	// Label is the human-readable name shown in suggestions.
	Label string `json:"label"`

	// Group is the display group, also used to tell boolean parameters apart.
	Group CommandGroup `json:"group"`

	// Type is the sigil family.
	Type CommandType `json:"type"`

	// Tag optionally scopes the command (e.g. the provider serving a model).
	Tag string `json:"tag,omitempty"`

	// Description is a short help text.
	Description string `json:"description,omitempty"`

	// Validate reports whether an accepted action blocks further commands.
	Validate func() bool `json:"-"`

	// Disabled commands are recognized but cannot be activated.
	Disabled bool `json:"disabled,omitempty"`
}

// Name returns the command value without its sigil.
func (c Command) Name() string {
	sigil := c.Type.Sigil()
	if sigil != "" && len(c.Value) >= len(sigil) && c.Value[:len(sigil)] == sigil {
		return c.Value[len(sigil):]
	}
	return c.Value
}

// BlocksOtherCommands evaluates the optional Validate hook.
func (c Command) BlocksOtherCommands() bool {
	if c.Validate == nil {
		return false
	}
	return c.Validate()
}

// CommandRegistry is the lookup the prompt validator consults. Implementations are
// owned and populated by the surrounding application.
type CommandRegistry interface {
	// GetCommand returns the command invoked by value for the given type, or nil.
	// An optional tag restricts the lookup to commands carrying that tag.
	GetCommand(value string, commandType CommandType, tag ...string) *Command
}
