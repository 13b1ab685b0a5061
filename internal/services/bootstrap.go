package services

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"opla/pkg/oplatypes"
)

// Services gives typed access to the services of an initialized registry.
type Services struct {
	Registry      *Registry
	Configuration *ConfigurationService
	Catalog       *ModelCatalogService
	Commands      *CommandService
	Parameters    *ParameterValidatorService
	Prompt        *PromptService
	Themes        *ThemeService
	Render        *RenderService
	Markdown      *MarkdownService
}

// InitializeServices registers and initializes every service, then fills the command
// registry and parameter definitions from the catalogs. The configuration service is
// initialized first when it is not already. A nil renderer uses lipgloss' default.
func InitializeServices(config *ConfigurationService, renderer *lipgloss.Renderer) (*Services, error) {
	if err := config.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize configuration: %w", err)
	}

	s := &Services{Registry: NewRegistry(), Configuration: config}
	s.Catalog = NewModelCatalogService(config.CatalogDir())
	s.Commands = NewCommandService()
	s.Parameters = NewParameterValidatorService()
	s.Prompt = NewPromptService(s.Commands, s.Parameters, config.DefaultModel())
	s.Themes = NewThemeService(renderer)
	s.Render = NewRenderService(s.Themes, config.Theme())
	s.Markdown = NewMarkdownService(config.Theme())

	// Registration order is initialization order
	for _, service := range []oplatypes.Service{
		s.Configuration, s.Catalog, s.Commands, s.Parameters, s.Prompt, s.Themes, s.Render, s.Markdown,
	} {
		if err := s.Registry.RegisterService(service); err != nil {
			return nil, err
		}
	}
	if err := s.Registry.InitializeAll(); err != nil {
		return nil, err
	}

	catalog, err := s.Catalog.GetCatalog()
	if err != nil {
		return nil, err
	}
	if err := s.Commands.LoadCatalog(catalog); err != nil {
		return nil, fmt.Errorf("failed to load commands: %w", err)
	}
	s.Parameters.SetDefinitions(catalog.Parameters)

	return s, nil
}
