package services

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"opla/internal/data/embedded"
	"opla/internal/logger"
	"opla/internal/version"
	"opla/pkg/oplatypes"
)

// Catalog file names, both embedded and in an override directory.
const (
	ModelsCatalogFile     = "models.yaml"
	ParametersCatalogFile = "parameters.yaml"
	ActionsCatalogFile    = "actions.yaml"
)

// ModelCatalogService loads the model, parameter and action catalogs the command
// registry is built from. Catalogs are embedded; a catalog directory may override
// any of the files.
type ModelCatalogService struct {
	initialized bool
	catalogDir  string
}

// NewModelCatalogService creates a new ModelCatalogService. An empty catalogDir
// uses the embedded catalogs only.
func NewModelCatalogService(catalogDir string) *ModelCatalogService {
	return &ModelCatalogService{
		initialized: false,
		catalogDir:  catalogDir,
	}
}

// Name returns the service name "model_catalog" for registration.
func (m *ModelCatalogService) Name() string {
	return "model_catalog"
}

// Initialize sets up the ModelCatalogService for operation.
func (m *ModelCatalogService) Initialize() error {
	if m.catalogDir != "" {
		info, err := os.Stat(m.catalogDir)
		if err != nil {
			return fmt.Errorf("catalog directory: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("catalog directory %s is not a directory", m.catalogDir)
		}
	}
	m.initialized = true
	return nil
}

// GetCatalog loads and validates every catalog.
func (m *ModelCatalogService) GetCatalog() (oplatypes.Catalog, error) {
	if !m.initialized {
		return oplatypes.Catalog{}, fmt.Errorf("model catalog service not initialized")
	}

	var models oplatypes.ModelCatalog
	if err := m.load(ModelsCatalogFile, embedded.ModelsCatalogData, &models); err != nil {
		return oplatypes.Catalog{}, err
	}
	var parameters oplatypes.ParameterCatalog
	if err := m.load(ParametersCatalogFile, embedded.ParametersCatalogData, &parameters); err != nil {
		return oplatypes.Catalog{}, err
	}
	var actions oplatypes.ActionCatalog
	if err := m.load(ActionsCatalogFile, embedded.ActionsCatalogData, &actions); err != nil {
		return oplatypes.Catalog{}, err
	}

	catalog := oplatypes.Catalog{
		Models:     models.Models,
		Parameters: parameters.Parameters,
		Actions:    actions.Actions,
	}
	if err := validateCatalog(catalog); err != nil {
		return oplatypes.Catalog{}, fmt.Errorf("catalog validation failed: %w", err)
	}

	logger.ServiceOperation(m.Name(), "load",
		"models", len(catalog.Models), "parameters", len(catalog.Parameters), "actions", len(catalog.Actions))
	return catalog, nil
}

// GetModelCatalog returns the model catalog alone.
func (m *ModelCatalogService) GetModelCatalog() ([]oplatypes.ModelCatalogEntry, error) {
	catalog, err := m.GetCatalog()
	if err != nil {
		return nil, err
	}
	return catalog.Models, nil
}

// FindModel looks a model up by name, case-insensitively.
func (m *ModelCatalogService) FindModel(name string) (oplatypes.ModelCatalogEntry, error) {
	models, err := m.GetModelCatalog()
	if err != nil {
		return oplatypes.ModelCatalogEntry{}, err
	}
	for _, model := range models {
		if strings.EqualFold(model.Name, name) {
			return model, nil
		}
	}
	return oplatypes.ModelCatalogEntry{}, fmt.Errorf("model '%s' not found in catalog", name)
}

// load decodes the override file when present, the embedded data otherwise.
func (m *ModelCatalogService) load(file string, embeddedData []byte, out any) error {
	data := embeddedData
	if m.catalogDir != "" {
		override, err := os.ReadFile(filepath.Join(m.catalogDir, file))
		switch {
		case err == nil:
			logger.Debug("Using catalog override", "file", file, "dir", m.catalogDir)
			data = override
		case !errors.Is(err, fs.ErrNotExist):
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
	}

	var header oplatypes.CatalogHeader
	if err := yaml.Unmarshal(data, &header); err != nil {
		return fmt.Errorf("failed to parse %s: %w", file, err)
	}
	ok, err := version.Satisfies(header.Requires)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	if !ok {
		return fmt.Errorf("%s requires opla %s, running %s", file, header.Requires, version.GetVersion())
	}

	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", file, err)
	}
	return nil
}

// validateCatalog checks that names are present and unique (case-insensitive) per catalog.
func validateCatalog(catalog oplatypes.Catalog) error {
	modelNames := make([]string, 0, len(catalog.Models))
	for _, model := range catalog.Models {
		modelNames = append(modelNames, model.Name)
	}
	if err := validateUniqueNames("model", modelNames); err != nil {
		return err
	}

	parameterNames := make([]string, 0, len(catalog.Parameters))
	for _, parameter := range catalog.Parameters {
		if !isSupportedParameterType(parameter.Type) {
			return fmt.Errorf("parameter '%s' has unsupported type '%s'", parameter.Name, parameter.Type)
		}
		parameterNames = append(parameterNames, parameter.Name)
	}
	if err := validateUniqueNames("parameter", parameterNames); err != nil {
		return err
	}

	actionNames := make([]string, 0, len(catalog.Actions))
	for _, action := range catalog.Actions {
		actionNames = append(actionNames, action.Name)
	}
	return validateUniqueNames("action", actionNames)
}

func validateUniqueNames(kind string, names []string) error {
	seen := make(map[string]string)
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%s with empty name", kind)
		}
		if strings.ContainsFunc(name, func(r rune) bool { return !isCommandNameRune(r) }) {
			return fmt.Errorf("%s name '%s' contains characters not allowed in a command", kind, name)
		}
		lower := strings.ToLower(name)
		if existing, ok := seen[lower]; ok {
			return fmt.Errorf("duplicate %s name '%s' (conflicts with '%s')", kind, name, existing)
		}
		seen[lower] = name
	}
	return nil
}
