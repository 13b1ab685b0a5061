package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"opla/internal/logger"
)

// EnvPrefix is the prefix of environment variables read as configuration.
const EnvPrefix = "OPLA"

// Configuration keys.
const (
	KeyLogLevel     = "log-level"
	KeyLogFile      = "log-file"
	KeyTestMode     = "test-mode"
	KeyDefaultModel = "default-model"
	KeyCatalogDir   = "catalog-dir"
	KeyTheme        = "theme"
)

var configDefaults = map[string]any{
	KeyLogLevel:     "warn",
	KeyLogFile:      "",
	KeyTestMode:     false,
	KeyDefaultModel: "",
	KeyCatalogDir:   "",
	KeyTheme:        "default",
}

// ConfigPaths represents configuration file paths and their loading status
type ConfigPaths struct {
	ConfigDir        string // Configuration directory path
	ConfigDirExists  bool   // Whether configuration directory exists
	ConfigFilePath   string // config.yaml path (if loaded)
	ConfigFileLoaded bool   // Whether config.yaml was loaded
	ConfigEnvPath    string // Config .env file path
	ConfigEnvLoaded  bool   // Whether config .env was loaded
	LocalEnvPath     string // Local .env file path
	LocalEnvLoaded   bool   // Whether local .env was loaded
}

// ConfigurationService provides configuration management for Opla.
// Priority (highest to lowest): flags > environment variables > local .env > config .env >
// config.yaml > defaults.
type ConfigurationService struct {
	initialized bool
	v           *viper.Viper
	configDir   string
	workDir     string
	paths       ConfigPaths
}

// NewConfigurationService creates a new ConfigurationService reading into v. A nil v
// gets a fresh viper instance. Empty directories resolve to the user config directory
// and the working directory.
func NewConfigurationService(v *viper.Viper, configDir, workDir string) *ConfigurationService {
	if v == nil {
		v = viper.New()
	}
	return &ConfigurationService{
		initialized: false,
		v:           v,
		configDir:   configDir,
		workDir:     workDir,
	}
}

// Name returns the service name "configuration" for registration.
func (c *ConfigurationService) Name() string {
	return "configuration"
}

// Initialize loads every configuration source.
func (c *ConfigurationService) Initialize() error {
	if c.initialized {
		return nil
	}

	for key, value := range configDefaults {
		c.v.SetDefault(key, value)
	}
	c.v.SetEnvPrefix(EnvPrefix)
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()

	configDir, err := c.resolveConfigDir()
	if err != nil {
		// Config directory access failure is not fatal
		logger.Debug("No user config directory", "error", err)
	}
	workDir, err := c.resolveWorkDir()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	c.paths = ConfigPaths{ConfigDir: configDir}

	if configDir != "" {
		if info, statErr := os.Stat(configDir); statErr == nil && info.IsDir() {
			c.paths.ConfigDirExists = true
		}
		if err := c.loadConfigFile(configDir); err != nil {
			return err
		}
		c.paths.ConfigEnvPath = filepath.Join(configDir, ".env")
	}
	c.paths.LocalEnvPath = filepath.Join(workDir, ".env")

	if err := c.loadDotEnvFiles(); err != nil {
		return err
	}

	c.initialized = true
	logger.ServiceOperation(c.Name(), "initialize", "config_dir", configDir, "config_file", c.paths.ConfigFilePath)
	return nil
}

func (c *ConfigurationService) resolveConfigDir() (string, error) {
	if c.configDir != "" {
		return c.configDir, nil
	}

	// Get XDG config home or fall back to ~/.config
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		configHome = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configHome, "opla"), nil
}

func (c *ConfigurationService) resolveWorkDir() (string, error) {
	if c.workDir != "" {
		return c.workDir, nil
	}
	return os.Getwd()
}

// loadConfigFile reads config.yaml from the config directory. A missing file is not an error.
func (c *ConfigurationService) loadConfigFile(configDir string) error {
	c.v.SetConfigName("config")
	c.v.SetConfigType("yaml")
	c.v.AddConfigPath(configDir)

	if err := c.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	c.paths.ConfigFilePath = c.v.ConfigFileUsed()
	c.paths.ConfigFileLoaded = true
	return nil
}

// loadDotEnvFiles merges OPLA_ variables from the config and local .env files over the
// config file. Local values win over config values; the process environment wins over both.
func (c *ConfigurationService) loadDotEnvFiles() error {
	var files []string
	if c.paths.ConfigEnvPath != "" && fileExists(c.paths.ConfigEnvPath) {
		files = append(files, c.paths.ConfigEnvPath)
		c.paths.ConfigEnvLoaded = true
	}
	if fileExists(c.paths.LocalEnvPath) {
		files = append(files, c.paths.LocalEnvPath)
		c.paths.LocalEnvLoaded = true
	}
	if len(files) == 0 {
		return nil
	}

	envMap, err := godotenv.Read(files...)
	if err != nil {
		return fmt.Errorf("failed to parse .env file: %w", err)
	}

	values := make(map[string]any)
	for name, value := range envMap {
		if key, ok := configKeyFromEnv(name); ok {
			values[key] = value
		}
	}
	if err := c.v.MergeConfigMap(values); err != nil {
		return fmt.Errorf("failed to merge .env values: %w", err)
	}
	return nil
}

// configKeyFromEnv maps OPLA_DEFAULT_MODEL to default-model.
func configKeyFromEnv(name string) (string, bool) {
	rest, ok := strings.CutPrefix(name, EnvPrefix+"_")
	if !ok || rest == "" {
		return "", false
	}
	return strings.ReplaceAll(strings.ToLower(rest), "_", "-"), true
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// GetConfigValue retrieves a configuration value by key.
// Returns empty string if the configuration value doesn't exist (no error).
func (c *ConfigurationService) GetConfigValue(key string) (string, error) {
	if !c.initialized {
		return "", fmt.Errorf("configuration service not initialized")
	}
	return c.v.GetString(key), nil
}

// SetConfigValue overrides a configuration value.
// This is primarily for testing purposes.
func (c *ConfigurationService) SetConfigValue(key string, value any) error {
	if !c.initialized {
		return fmt.Errorf("configuration service not initialized")
	}
	c.v.Set(key, value)
	return nil
}

// GetAllConfigValues returns every known configuration key with its effective value.
func (c *ConfigurationService) GetAllConfigValues() (map[string]string, error) {
	if !c.initialized {
		return nil, fmt.Errorf("configuration service not initialized")
	}

	values := make(map[string]string, len(configDefaults))
	for key := range configDefaults {
		values[key] = c.v.GetString(key)
	}
	return values, nil
}

// Keys returns the known configuration keys, sorted.
func (c *ConfigurationService) Keys() []string {
	keys := make([]string, 0, len(configDefaults))
	for key := range configDefaults {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// GetConfigurationPaths returns configuration file paths and their loading status.
func (c *ConfigurationService) GetConfigurationPaths() (*ConfigPaths, error) {
	if !c.initialized {
		return nil, fmt.Errorf("configuration service not initialized")
	}
	paths := c.paths
	return &paths, nil
}

// LogLevel returns the configured log level.
func (c *ConfigurationService) LogLevel() string { return c.v.GetString(KeyLogLevel) }

// LogFile returns the configured log file, empty for stderr.
func (c *ConfigurationService) LogFile() string { return c.v.GetString(KeyLogFile) }

// TestMode reports whether deterministic test mode is on.
func (c *ConfigurationService) TestMode() bool { return c.v.GetBool(KeyTestMode) }

// DefaultModel returns the model used when a prompt mentions none.
func (c *ConfigurationService) DefaultModel() string { return c.v.GetString(KeyDefaultModel) }

// CatalogDir returns the catalog override directory.
func (c *ConfigurationService) CatalogDir() string { return c.v.GetString(KeyCatalogDir) }

// Theme returns the configured theme name.
func (c *ConfigurationService) Theme() string { return c.v.GetString(KeyTheme) }
