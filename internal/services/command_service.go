package services

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/google/uuid"
	"github.com/sahilm/fuzzy"

	"opla/internal/logger"
	"opla/pkg/oplatypes"
)

// CommandService is the command registry consulted by the prompt validator.
// It is populated from the catalogs and may be changed at runtime.
type CommandService struct {
	mu          sync.RWMutex
	initialized bool
	commands    map[string]oplatypes.Command
}

// NewCommandService creates a new CommandService with an empty registry.
func NewCommandService() *CommandService {
	return &CommandService{
		initialized: false,
		commands:    make(map[string]oplatypes.Command),
	}
}

// Name returns the service name "command" for registration.
func (c *CommandService) Name() string {
	return "command"
}

// Initialize sets up the CommandService for operation.
func (c *CommandService) Initialize() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.initialized = true
	return nil
}

// LoadCatalog registers a command for every model, parameter and action in the catalog.
// Models become mentions tagged with their provider, parameters become hashtags grouped
// by value type and actions become slash commands.
func (c *CommandService) LoadCatalog(catalog oplatypes.Catalog) error {
	for _, model := range catalog.Models {
		label := model.DisplayName
		if label == "" {
			label = model.Name
		}
		err := c.Register(oplatypes.Command{
			Value:       oplatypes.CommandTypeMention.Sigil() + model.Name,
			Label:       label,
			Group:       oplatypes.CommandGroupModels,
			Type:        oplatypes.CommandTypeMention,
			Tag:         model.Provider,
			Description: model.Description,
			Disabled:    model.Deprecated,
		})
		if err != nil {
			return err
		}
	}

	for _, parameter := range catalog.Parameters {
		err := c.Register(oplatypes.Command{
			Value:       oplatypes.CommandTypeHashtag.Sigil() + parameter.Name,
			Label:       parameter.Name,
			Group:       parameterGroup(parameter.Type),
			Type:        oplatypes.CommandTypeHashtag,
			Description: parameter.Description,
		})
		if err != nil {
			return err
		}
	}

	for _, action := range catalog.Actions {
		blocking := action.BlockOtherCommands
		label := action.Label
		if label == "" {
			label = action.Name
		}
		err := c.Register(oplatypes.Command{
			Value:       oplatypes.CommandTypeAction.Sigil() + action.Name,
			Label:       label,
			Group:       oplatypes.CommandGroupActions,
			Type:        oplatypes.CommandTypeAction,
			Description: action.Description,
			Validate:    func() bool { return blocking },
		})
		if err != nil {
			return err
		}
	}

	logger.ServiceOperation(c.Name(), "load_catalog", "commands", c.Count())
	return nil
}

// Register adds a command. A missing key is generated. The value must carry the sigil
// of the command type followed by a non-empty name.
func (c *CommandService) Register(cmd oplatypes.Command) error {
	sigil := cmd.Type.Sigil()
	if sigil == "" {
		return fmt.Errorf("command %q has unknown type %q", cmd.Value, cmd.Type)
	}
	if !strings.HasPrefix(cmd.Value, sigil) {
		return fmt.Errorf("command %q must start with %q", cmd.Value, sigil)
	}
	name := cmd.Name()
	if name == "" {
		return fmt.Errorf("command name cannot be empty")
	}
	if strings.ContainsFunc(name, func(r rune) bool { return !isCommandNameRune(r) }) {
		return fmt.Errorf("command %q contains characters not allowed in a command", cmd.Value)
	}
	if cmd.Key == "" {
		cmd.Key = uuid.New().String()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := commandKey(cmd.Type, cmd.Value)
	if _, exists := c.commands[key]; exists {
		return fmt.Errorf("command %s already registered", cmd.Value)
	}
	c.commands[key] = cmd
	return nil
}

// Unregister removes a command. Unknown commands are ignored.
func (c *CommandService) Unregister(value string, commandType oplatypes.CommandType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.commands, commandKey(commandType, value))
}

// SetDisabled toggles whether a registered command can be activated.
func (c *CommandService) SetDisabled(value string, commandType oplatypes.CommandType, disabled bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := commandKey(commandType, value)
	cmd, exists := c.commands[key]
	if !exists {
		return fmt.Errorf("unknown command: %s", value)
	}
	cmd.Disabled = disabled
	c.commands[key] = cmd
	return nil
}

// GetCommand returns a copy of the command invoked by value, or nil. Matching is exact
// and case-sensitive. When a tag is given, only a command carrying that tag matches.
func (c *CommandService) GetCommand(value string, commandType oplatypes.CommandType, tag ...string) *oplatypes.Command {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cmd, exists := c.commands[commandKey(commandType, value)]
	if !exists {
		return nil
	}
	if len(tag) > 0 && tag[0] != "" && cmd.Tag != tag[0] {
		return nil
	}
	return &cmd
}

// Commands returns the commands of a type sorted by value. An empty type returns all
// commands, grouped by type.
func (c *CommandService) Commands(commandType oplatypes.CommandType) []oplatypes.Command {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]oplatypes.Command, 0, len(c.commands))
	for _, cmd := range c.commands {
		if commandType == "" || cmd.Type == commandType {
			result = append(result, cmd)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Type != result[j].Type {
			return typeOrder(result[i].Type) < typeOrder(result[j].Type)
		}
		return result[i].Value < result[j].Value
	})
	return result
}

// Count returns the number of registered commands.
func (c *CommandService) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.commands)
}

// Filter returns the commands of a type matching query, best match first, with disabled
// commands after enabled ones. The query may carry the sigil. An empty query returns
// every command of the type.
func (c *CommandService) Filter(query string, commandType oplatypes.CommandType) []oplatypes.Command {
	candidates := c.Commands(commandType)
	query = strings.TrimPrefix(query, commandType.Sigil())

	var ranked []oplatypes.Command
	if query == "" {
		ranked = candidates
	} else {
		names := make([]string, len(candidates))
		for i, cmd := range candidates {
			names[i] = cmd.Name()
		}
		matches := fuzzy.Find(query, names)
		ranked = make([]oplatypes.Command, len(matches))
		for i, match := range matches {
			ranked[i] = candidates[match.Index]
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return !ranked[i].Disabled && ranked[j].Disabled
	})
	return ranked
}

func commandKey(commandType oplatypes.CommandType, value string) string {
	return string(commandType) + "\x00" + value
}

func typeOrder(commandType oplatypes.CommandType) int {
	switch commandType {
	case oplatypes.CommandTypeAction:
		return 0
	case oplatypes.CommandTypeMention:
		return 1
	case oplatypes.CommandTypeHashtag:
		return 2
	default:
		return 3
	}
}

// parameterGroup maps a catalog parameter type to its hashtag group.
func parameterGroup(paramType string) oplatypes.CommandGroup {
	switch paramType {
	case "bool":
		return oplatypes.CommandGroupParametersBoolean
	case "int", "float":
		return oplatypes.CommandGroupParametersNumber
	default:
		return oplatypes.CommandGroupParametersString
	}
}

// isCommandNameRune reports whether r may appear in a command name.
// Must stay in line with the scanner's name runes.
func isCommandNameRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '_' || r == '-'
}
