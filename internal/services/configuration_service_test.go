package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfiguration(t *testing.T) (*ConfigurationService, string, string) {
	t.Helper()
	configDir := t.TempDir()
	workDir := t.TempDir()
	return NewConfigurationService(viper.New(), configDir, workDir), configDir, workDir
}

func TestConfigurationService_Name(t *testing.T) {
	service := NewConfigurationService(nil, "", "")
	assert.Equal(t, "configuration", service.Name())
}

func TestConfigurationService_NotInitialized(t *testing.T) {
	service, _, _ := newTestConfiguration(t)

	_, err := service.GetConfigValue(KeyTheme)
	assert.Error(t, err)
	assert.Error(t, service.SetConfigValue(KeyTheme, "dark"))
	_, err = service.GetAllConfigValues()
	assert.Error(t, err)
	_, err = service.GetConfigurationPaths()
	assert.Error(t, err)
}

func TestConfigurationService_Defaults(t *testing.T) {
	service, configDir, _ := newTestConfiguration(t)
	require.NoError(t, service.Initialize())
	assert.True(t, service.initialized)

	assert.Equal(t, "warn", service.LogLevel())
	assert.Equal(t, "default", service.Theme())
	assert.Empty(t, service.DefaultModel())
	assert.Empty(t, service.CatalogDir())
	assert.Empty(t, service.LogFile())
	assert.False(t, service.TestMode())

	paths, err := service.GetConfigurationPaths()
	require.NoError(t, err)
	assert.Equal(t, configDir, paths.ConfigDir)
	assert.True(t, paths.ConfigDirExists)
	assert.False(t, paths.ConfigFileLoaded)
	assert.False(t, paths.ConfigEnvLoaded)
	assert.False(t, paths.LocalEnvLoaded)
}

func TestConfigurationService_ConfigurationPriority(t *testing.T) {
	service, configDir, workDir := newTestConfiguration(t)

	configYAML := `theme: light
default-model: from-yaml
catalog-dir: /srv/catalogs
log-level: info
`
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(configYAML), 0600))

	configEnv := `OPLA_DEFAULT_MODEL=from-config-env
OPLA_LOG_LEVEL=debug
UNRELATED_KEY=ignored
`
	require.NoError(t, os.WriteFile(filepath.Join(configDir, ".env"), []byte(configEnv), 0600))

	localEnv := `OPLA_LOG_LEVEL=error
`
	require.NoError(t, os.WriteFile(filepath.Join(workDir, ".env"), []byte(localEnv), 0600))

	t.Setenv("OPLA_THEME", "dark")

	require.NoError(t, service.Initialize())

	assert.Equal(t, "dark", service.Theme(), "environment wins over config file")
	assert.Equal(t, "from-config-env", service.DefaultModel(), "config .env wins over config file")
	assert.Equal(t, "error", service.LogLevel(), "local .env wins over config .env")
	assert.Equal(t, "/srv/catalogs", service.CatalogDir(), "config file wins over defaults")

	paths, err := service.GetConfigurationPaths()
	require.NoError(t, err)
	assert.True(t, paths.ConfigFileLoaded)
	assert.Equal(t, filepath.Join(configDir, "config.yaml"), paths.ConfigFilePath)
	assert.True(t, paths.ConfigEnvLoaded)
	assert.True(t, paths.LocalEnvLoaded)

	values, err := service.GetAllConfigValues()
	require.NoError(t, err)
	assert.Equal(t, "dark", values[KeyTheme])
	assert.NotContains(t, values, "unrelated-key")
}

func TestConfigurationService_MalformedConfigFile(t *testing.T) {
	service, configDir, _ := newTestConfiguration(t)
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte("theme: [dark"), 0600))

	err := service.Initialize()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestConfigurationService_SetConfigValue(t *testing.T) {
	service, _, _ := newTestConfiguration(t)
	require.NoError(t, service.Initialize())

	require.NoError(t, service.SetConfigValue(KeyDefaultModel, "llama3.1-8b"))
	value, err := service.GetConfigValue(KeyDefaultModel)
	require.NoError(t, err)
	assert.Equal(t, "llama3.1-8b", value)
	assert.Equal(t, "llama3.1-8b", service.DefaultModel())
}

func TestConfigurationService_Keys(t *testing.T) {
	service := NewConfigurationService(nil, "", "")
	assert.Equal(t, []string{
		KeyCatalogDir, KeyDefaultModel, KeyLogFile, KeyLogLevel, KeyTestMode, KeyTheme,
	}, service.Keys())
}

func TestConfigKeyFromEnv(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{name: "single word", input: "OPLA_THEME", want: "theme", wantOK: true},
		{name: "multiple words", input: "OPLA_DEFAULT_MODEL", want: "default-model", wantOK: true},
		{name: "other prefix", input: "NEURO_THEME"},
		{name: "prefix only", input: "OPLA_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := configKeyFromEnv(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
