package parser

import "opla/pkg/oplatypes"

// stubRegistry is a map-backed CommandRegistry keyed by type and value.
type stubRegistry map[string]oplatypes.Command

func (r stubRegistry) GetCommand(value string, commandType oplatypes.CommandType, tag ...string) *oplatypes.Command {
	command, ok := r[string(commandType)+value]
	if !ok {
		return nil
	}
	if len(tag) > 0 && tag[0] != "" && command.Tag != tag[0] {
		return nil
	}
	return &command
}

func newStubRegistry() stubRegistry {
	commands := []oplatypes.Command{
		{Value: "@llama3", Label: "Llama 3", Type: oplatypes.CommandTypeMention, Group: oplatypes.CommandGroupModels, Tag: "llama.cpp"},
		{Value: "@phi3", Label: "Phi 3", Type: oplatypes.CommandTypeMention, Group: oplatypes.CommandGroupModels, Tag: "llama.cpp"},
		{Value: "@retired", Label: "Retired", Type: oplatypes.CommandTypeMention, Group: oplatypes.CommandGroupModels, Disabled: true},
		{Value: "#temperature", Type: oplatypes.CommandTypeHashtag, Group: oplatypes.CommandGroupParametersNumber},
		{Value: "#stop", Type: oplatypes.CommandTypeHashtag, Group: oplatypes.CommandGroupParametersString},
		{Value: "#stream", Type: oplatypes.CommandTypeHashtag, Group: oplatypes.CommandGroupParametersBoolean},
		{Value: "/system", Type: oplatypes.CommandTypeAction, Group: oplatypes.CommandGroupActions, Validate: func() bool { return true }},
		{Value: "/clear", Type: oplatypes.CommandTypeAction, Group: oplatypes.CommandGroupActions},
	}

	registry := stubRegistry{}
	for _, command := range commands {
		registry[string(command.Type)+command.Value] = command
	}
	return registry
}
