package services

import (
	"errors"
	"fmt"
	"strings"

	"opla/internal/logger"
	"opla/internal/parser"
	"opla/pkg/oplatypes"
)

var (
	// ErrInvalidPrompt is returned when a prompt cannot be compiled into a request.
	ErrInvalidPrompt = errors.New("invalid prompt")

	// ErrNotInitialized is returned by services used before Initialize.
	ErrNotInitialized = errors.New("not initialized")
)

// PromptService parses chat input against the command registry and compiles accepted
// prompts into requests.
type PromptService struct {
	initialized  bool
	commands     *CommandService
	parameters   *ParameterValidatorService
	defaultModel string
}

// NewPromptService creates a new PromptService. defaultModel is used when a prompt
// mentions no model; it may be empty.
func NewPromptService(commands *CommandService, parameters *ParameterValidatorService, defaultModel string) *PromptService {
	return &PromptService{
		initialized:  false,
		commands:     commands,
		parameters:   parameters,
		defaultModel: defaultModel,
	}
}

// Name returns the service name "prompt" for registration.
func (p *PromptService) Name() string {
	return "prompt"
}

// Initialize checks the collaborators are in place.
func (p *PromptService) Initialize() error {
	if p.commands == nil {
		return fmt.Errorf("prompt service requires a command registry")
	}
	if p.parameters == nil {
		return fmt.Errorf("prompt service requires a parameter validator")
	}
	p.initialized = true
	return nil
}

// Registry returns the command registry prompts are validated against.
func (p *PromptService) Registry() *CommandService {
	return p.commands
}

// Parse tokenizes text with the caret at the given rune offset.
func (p *PromptService) Parse(text string, caret int) (oplatypes.ParsedPrompt, error) {
	if !p.initialized {
		return oplatypes.ParsedPrompt{}, fmt.Errorf("prompt service %w", ErrNotInitialized)
	}

	parsed := parser.ParsePrompt(parser.PromptInput{Text: text, CaretStartIndex: caret}, p.commands)
	logger.PromptParsed(text, len(parsed.Tokens), parsed.Locked)
	return parsed, nil
}

// ParseInput tokenizes the current value of a live text input at its caret.
func (p *PromptService) ParseInput(src parser.CaretSource) (oplatypes.ParsedPrompt, error) {
	if src == nil {
		return p.Parse("", 0)
	}
	return p.Parse(src.Value(), src.Position())
}

// Compile turns a parsed prompt into a request. The raw input is parsed again with the
// caret at the start so no token is left in the editing state. Prompts without text or
// action, and prompts with unknown or duplicate commands, are refused with ErrInvalidPrompt.
func (p *PromptService) Compile(parsed oplatypes.ParsedPrompt) (oplatypes.PromptRequest, error) {
	if !p.initialized {
		return oplatypes.PromptRequest{}, fmt.Errorf("prompt service %w", ErrNotInitialized)
	}

	final := parser.ParsePrompt(parser.PromptInput{Text: parsed.Raw}, p.commands)

	if parser.HasErrors(final) {
		var offending []string
		for _, token := range parser.InvalidTokens(final) {
			if token.State != oplatypes.PromptTokenStateDisabled {
				offending = append(offending, fmt.Sprintf("%s (%s)", token.Value, token.State))
			}
		}
		return oplatypes.PromptRequest{}, fmt.Errorf("%w: %s", ErrInvalidPrompt, strings.Join(offending, ", "))
	}
	if parser.IsEmpty(final) {
		return oplatypes.PromptRequest{}, fmt.Errorf("%w: empty prompt", ErrInvalidPrompt)
	}

	request := oplatypes.PromptRequest{
		Model:   p.defaultModel,
		Message: final.Text,
	}
	if mentions := parser.Mentions(final); len(mentions) > 0 {
		request.Model = strings.TrimPrefix(mentions[0].Value, oplatypes.CommandTypeMention.Sigil())
	}
	if action, ok := parser.Action(final); ok {
		request.Action = strings.TrimPrefix(action.Value, oplatypes.CommandTypeAction.Sigil())
	}

	parameters, err := p.parameters.ValidateParameters(parser.ParameterValues(final))
	if err != nil {
		return oplatypes.PromptRequest{}, fmt.Errorf("%w: %w", ErrInvalidPrompt, err)
	}
	if len(parameters) > 0 {
		request.Parameters = parameters
	}

	logger.ServiceOperation(p.Name(), "compile", "model", request.Model, "action", request.Action,
		"parameters", len(request.Parameters))
	return request, nil
}

// CompileText parses and compiles text in one step.
func (p *PromptService) CompileText(text string) (oplatypes.PromptRequest, error) {
	parsed, err := p.Parse(text, 0)
	if err != nil {
		return oplatypes.PromptRequest{}, err
	}
	return p.Compile(parsed)
}
